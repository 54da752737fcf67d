package services

import (
	"context"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/models"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/session"
)

type ScheduleService struct {
	store *session.Store
}

func NewScheduleService(store *session.Store) *ScheduleService {
	return &ScheduleService{store: store}
}

// Schedule returns seven entries, Sunday first.
func (s *ScheduleService) Schedule(ctx context.Context, snap session.Snapshot) ([]models.Availability, error) {
	week, err := snap.Source.ListAvailability(ctx, snap.User.ID)
	if err != nil {
		return nil, err
	}
	return week, settle(s.store, snap)
}

// SaveDay stores one weekday and returns the refreshed week. Turning a day
// off and on again with the same times restores them.
func (s *ScheduleService) SaveDay(ctx context.Context, snap session.Snapshot, slot models.Availability) ([]models.Availability, error) {
	if !models.ValidWeekday(slot.DayOfWeek) {
		return nil, invalid("Day of week must be between 0 (Sunday) and 6 (Saturday)")
	}
	slot.StartTime = strings.TrimSpace(slot.StartTime)
	slot.EndTime = strings.TrimSpace(slot.EndTime)
	if slot.Enabled {
		if slot.StartTime == "" || slot.EndTime == "" {
			return nil, invalid("Please set start and end time")
		}
		if _, err := time.Parse(models.TimeLayout, slot.StartTime); err != nil {
			return nil, invalid("Start time must be HH:MM")
		}
		if _, err := time.Parse(models.TimeLayout, slot.EndTime); err != nil {
			return nil, invalid("End time must be HH:MM")
		}
	}

	if err := snap.Source.SaveAvailability(ctx, snap.User.ID, slot); err != nil {
		return nil, err
	}
	return s.Schedule(ctx, snap)
}
