package services

import (
	"context"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/models"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/session"
)

const bookingDays = 5

var timeSlots = []string{"09:00", "09:30", "10:00", "10:30", "11:00", "14:00", "14:30", "15:00"}

type BookingOptions struct {
	Dates []string `json:"dates"`
	Times []string `json:"times"`
}

// Dashboard splits a doctor's appointments: Requests are pending, Upcoming
// are confirmed or completed. Both keep the oldest first.
type Dashboard struct {
	Requests []models.Appointment `json:"requests"`
	Upcoming []models.Appointment `json:"upcoming"`
}

type AppointmentService struct {
	store *session.Store
	now   func() time.Time
}

func NewAppointmentService(store *session.Store, now func() time.Time) *AppointmentService {
	if now == nil {
		now = time.Now
	}
	return &AppointmentService{store: store, now: now}
}

// BookingOptions offers the next five days starting today and a fixed list
// of times. Slots are not checked against availability or other bookings.
func (s *AppointmentService) BookingOptions() BookingOptions {
	today := s.now()
	dates := make([]string, 0, bookingDays)
	for d := 0; d < bookingDays; d++ {
		dates = append(dates, today.AddDate(0, 0, d).Format(models.DateLayout))
	}
	return BookingOptions{Dates: dates, Times: append([]string{}, timeSlots...)}
}

// Book inserts a pending appointment for the signed-in patient. A repeated
// submit creates another row.
func (s *AppointmentService) Book(ctx context.Context, snap session.Snapshot, doctorID, date, timeOfDay string) (*models.Appointment, error) {
	date = strings.TrimSpace(date)
	timeOfDay = strings.TrimSpace(timeOfDay)
	if date == "" || timeOfDay == "" {
		return nil, invalid("Please select date and time")
	}
	if strings.TrimSpace(doctorID) == "" {
		return nil, invalid("Please select a doctor")
	}
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return nil, invalid("Date must be YYYY-MM-DD")
	}
	if _, err := time.Parse(models.TimeLayout, timeOfDay); err != nil {
		return nil, invalid("Time must be HH:MM")
	}

	appt, err := snap.Source.CreateAppointment(ctx, models.NewAppointment{
		DoctorID:  doctorID,
		PatientID: snap.User.ID,
		Date:      date,
		Time:      timeOfDay,
	})
	if err != nil {
		return nil, err
	}
	if err := settle(s.store, snap); err != nil {
		return nil, err
	}
	return appt, nil
}

// PatientAppointments lists the signed-in patient's appointments, newest
// date first.
func (s *AppointmentService) PatientAppointments(ctx context.Context, snap session.Snapshot) ([]models.Appointment, error) {
	appts, err := snap.Source.ListPatientAppointments(ctx, snap.User.ID)
	if err != nil {
		return nil, err
	}
	return appts, settle(s.store, snap)
}

func (s *AppointmentService) Dashboard(ctx context.Context, snap session.Snapshot) (*Dashboard, error) {
	appts, err := snap.Source.ListDoctorAppointments(ctx, snap.User.ID)
	if err != nil {
		return nil, err
	}
	if err := settle(s.store, snap); err != nil {
		return nil, err
	}

	dash := &Dashboard{Requests: []models.Appointment{}, Upcoming: []models.Appointment{}}
	for _, a := range appts {
		switch a.Status {
		case models.StatusPending:
			dash.Requests = append(dash.Requests, a)
		case models.StatusConfirmed, models.StatusCompleted:
			dash.Upcoming = append(dash.Upcoming, a)
		}
	}
	return dash, nil
}

// UpdateStatus is the doctor's confirm or cancel action on one of their own
// pending requests; the refreshed dashboard is returned. Completion only
// happens through a prescription.
func (s *AppointmentService) UpdateStatus(ctx context.Context, snap session.Snapshot, id string, status models.AppointmentStatus) (*Dashboard, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalid("Appointment is required")
	}
	if status != models.StatusConfirmed && status != models.StatusCancelled {
		return nil, invalid("Appointments can only be confirmed or cancelled")
	}

	appt, err := snap.Source.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.DoctorID != snap.User.ID {
		return nil, ErrNotAllowed
	}
	if appt.Status != models.StatusPending {
		return nil, invalid("Only pending appointments can be confirmed or cancelled")
	}

	if err := snap.Source.UpdateAppointmentStatus(ctx, id, models.StatusPending, status); err != nil {
		return nil, err
	}
	return s.Dashboard(ctx, snap)
}

// Prescription returns the prescription issued for one of the patient's
// appointments.
func (s *AppointmentService) Prescription(ctx context.Context, snap session.Snapshot, appointmentID string) (*models.Prescription, error) {
	appt, err := snap.Source.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.PatientID != snap.User.ID {
		return nil, ErrNotAllowed
	}

	p, err := snap.Source.GetPrescription(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	return p, settle(s.store, snap)
}
