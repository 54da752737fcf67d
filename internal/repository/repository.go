package repository

import (
	"context"
	"errors"

	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/models"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict means the row no longer matches what the write expected,
	// such as an appointment that left the required status or already has a
	// prescription.
	ErrConflict = errors.New("conflict")
)

type Mode string

const (
	ModeLive Mode = "live"
	ModeDemo Mode = "demo"
)

// ProfileUpdate carries the editable profile fields. Exactly one of Patient
// or Doctor is applied, matching the user's role.
type ProfileUpdate struct {
	FullName string
	Phone    string
	Patient  *models.PatientDetails
	Doctor   *models.DoctorDetails
}

// DataSource is every read and write the screens need. The session store
// binds one implementation per session: Live for gateway sessions, Fixture
// for demo logins.
type DataSource interface {
	Mode() Mode

	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	GetProfileDetails(ctx context.Context, profile models.Profile) (*models.ProfileDetails, error)
	UpdateProfile(ctx context.Context, userID string, role models.Role, update ProfileUpdate) error
	SavePushToken(ctx context.Context, userID, token string) error

	ListDoctors(ctx context.Context) ([]models.Doctor, error)
	GetDoctor(ctx context.Context, id string) (*models.Doctor, error)

	ListPatientAppointments(ctx context.Context, patientID string) ([]models.Appointment, error)
	ListDoctorAppointments(ctx context.Context, doctorID string) ([]models.Appointment, error)
	GetAppointment(ctx context.Context, id string) (*models.Appointment, error)
	CreateAppointment(ctx context.Context, appt models.NewAppointment) (*models.Appointment, error)
	// UpdateAppointmentStatus moves an appointment from one status to
	// another. It fails with ErrConflict when the stored status is not from.
	UpdateAppointmentStatus(ctx context.Context, id string, from, to models.AppointmentStatus) error

	ListAvailability(ctx context.Context, doctorID string) ([]models.Availability, error)
	SaveAvailability(ctx context.Context, doctorID string, slot models.Availability) error

	// CreatePrescription fails with ErrConflict when the appointment already
	// has a prescription.
	CreatePrescription(ctx context.Context, appointmentID string, medicines []models.Medicine, instructions string) (*models.Prescription, error)
	GetPrescription(ctx context.Context, appointmentID string) (*models.Prescription, error)
	PatientHistory(ctx context.Context, patientID string) ([]models.HistoryEntry, error)
}

// weekSchedule expands stored rows into one entry per weekday, filling
// missing days with the default window.
func weekSchedule(rows []models.Availability, missingEnabled func(day int) bool) []models.Availability {
	week := make([]models.Availability, len(models.Weekdays))
	for day := range week {
		week[day] = models.Availability{
			DayOfWeek: day,
			StartTime: models.DefaultStartTime,
			EndTime:   models.DefaultEndTime,
			Enabled:   missingEnabled(day),
		}
	}
	for _, row := range rows {
		if models.ValidWeekday(row.DayOfWeek) {
			week[row.DayOfWeek] = row
		}
	}
	return week
}
