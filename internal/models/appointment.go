package models

import "time"

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Party is the display summary of the other side of an appointment.
type Party struct {
	FullName       string `json:"full_name"`
	AvatarURL      string `json:"avatar_url,omitempty"`
	Specialization string `json:"specialization,omitempty"`
	ClinicAddress  string `json:"clinic_address,omitempty"`
}

// Appointment dates are YYYY-MM-DD and times HH:MM.
type Appointment struct {
	ID        string            `json:"id"`
	DoctorID  string            `json:"doctor_id"`
	PatientID string            `json:"patient_id"`
	Date      string            `json:"appointment_date"`
	Time      string            `json:"appointment_time"`
	Status    AppointmentStatus `json:"status"`
	Doctor    *Party            `json:"doctor,omitempty"`
	Patient   *Party            `json:"patient,omitempty"`
}

// NewAppointment is the insert payload for a booking.
type NewAppointment struct {
	DoctorID  string
	PatientID string
	Date      string
	Time      string
}

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// NormalizeDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the
// date part.
func NormalizeDate(s string) string {
	if len(s) >= len(DateLayout) {
		if _, err := time.Parse(DateLayout, s[:len(DateLayout)]); err == nil {
			return s[:len(DateLayout)]
		}
	}
	return s
}

// NormalizeTime trims HH:MM:SS down to HH:MM.
func NormalizeTime(s string) string {
	if len(s) == len("15:04:05") && s[2] == ':' && s[5] == ':' {
		return s[:5]
	}
	return s
}
