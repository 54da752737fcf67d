package models

import "time"

// Availability is a doctor's working window for one weekday (Sunday = 0).
type Availability struct {
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Enabled   bool   `json:"enabled"`
}

const (
	DefaultStartTime = "09:00"
	DefaultEndTime   = "17:00"
)

var Weekdays = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

func ValidWeekday(day int) bool {
	return day >= int(time.Sunday) && day <= int(time.Saturday)
}
