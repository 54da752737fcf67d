package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/gateway"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/models"
)

const (
	doctorListColumns      = "*,users(full_name,avatar_url)"
	patientApptColumns     = "*,doctors(specialization,clinic_address,users(full_name,avatar_url))"
	doctorApptColumns      = "*,patients(users(full_name,avatar_url))"
	appointmentColumns     = "*,doctors(specialization,clinic_address,users(full_name,avatar_url)),patients(users(full_name,avatar_url))"
	patientHistoryColumns  = "*,doctors(users(full_name)),prescriptions(*)"
	availabilityConflictOn = "doctor_id,day_of_week"
)

// Tables is the part of the gateway client the live data source needs.
type Tables interface {
	From(table string) *gateway.Query
}

// Live reads and writes rows through the gateway.
type Live struct {
	db Tables
}

func NewLive(db Tables) *Live {
	return &Live{db: db}
}

func (l *Live) Mode() Mode { return ModeLive }

func (l *Live) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var row userRow
	if err := l.db.From("users").Select("*").Eq("id", userID).Single().Execute(ctx, &row); err != nil {
		return nil, translate(err)
	}
	return row.toProfile(), nil
}

func (l *Live) GetProfileDetails(ctx context.Context, profile models.Profile) (*models.ProfileDetails, error) {
	details := &models.ProfileDetails{Profile: profile}

	switch profile.Role {
	case models.RolePatient:
		var row patientRow
		err := l.db.From("patients").Select("*").Eq("id", profile.ID).Single().Execute(ctx, &row)
		if err != nil && !errors.Is(err, gateway.ErrNotFound) {
			return nil, err
		}
		patient := row.details()
		details.Patient = &patient
	case models.RoleDoctor:
		var row doctorRow
		err := l.db.From("doctors").Select("*").Eq("id", profile.ID).Single().Execute(ctx, &row)
		if err != nil && !errors.Is(err, gateway.ErrNotFound) {
			return nil, err
		}
		doctor := row.details()
		details.Doctor = &doctor
	}
	return details, nil
}

func (l *Live) UpdateProfile(ctx context.Context, userID string, role models.Role, update ProfileUpdate) error {
	err := l.db.From("users").
		Update(map[string]any{"full_name": update.FullName, "phone": update.Phone}).
		Eq("id", userID).
		Execute(ctx, nil)
	if err != nil {
		return err
	}

	switch {
	case role == models.RolePatient && update.Patient != nil:
		return l.db.From("patients").Upsert(map[string]any{
			"id":              userID,
			"blood_group":     update.Patient.BloodGroup,
			"allergies":       update.Patient.Allergies,
			"medical_history": update.Patient.MedicalHistory,
		}, "id").Execute(ctx, nil)
	case role == models.RoleDoctor && update.Doctor != nil:
		return l.db.From("doctors").Upsert(map[string]any{
			"id":               userID,
			"specialization":   update.Doctor.Specialization,
			"qualifications":   update.Doctor.Qualifications,
			"experience_years": update.Doctor.ExperienceYears,
			"consultation_fee": update.Doctor.ConsultationFee,
			"bio":              update.Doctor.Bio,
			"clinic_address":   update.Doctor.ClinicAddress,
		}, "id").Execute(ctx, nil)
	}
	return nil
}

func (l *Live) SavePushToken(ctx context.Context, userID, token string) error {
	return l.db.From("users").Update(map[string]string{"push_token": token}).Eq("id", userID).Execute(ctx, nil)
}

func (l *Live) ListDoctors(ctx context.Context) ([]models.Doctor, error) {
	var rows []doctorRow
	if err := l.db.From("doctors").Select(doctorListColumns).Execute(ctx, &rows); err != nil {
		return nil, err
	}
	doctors := make([]models.Doctor, 0, len(rows))
	for _, row := range rows {
		doctors = append(doctors, row.toDoctor())
	}
	return doctors, nil
}

func (l *Live) GetDoctor(ctx context.Context, id string) (*models.Doctor, error) {
	var row doctorRow
	if err := l.db.From("doctors").Select(doctorListColumns).Eq("id", id).Single().Execute(ctx, &row); err != nil {
		return nil, translate(err)
	}
	doc := row.toDoctor()
	return &doc, nil
}

func (l *Live) ListPatientAppointments(ctx context.Context, patientID string) ([]models.Appointment, error) {
	var rows []appointmentRow
	err := l.db.From("appointments").
		Select(patientApptColumns).
		Eq("patient_id", patientID).
		Order("appointment_date", false).
		Execute(ctx, &rows)
	if err != nil {
		return nil, err
	}
	return toAppointments(rows), nil
}

func (l *Live) ListDoctorAppointments(ctx context.Context, doctorID string) ([]models.Appointment, error) {
	var rows []appointmentRow
	err := l.db.From("appointments").
		Select(doctorApptColumns).
		Eq("doctor_id", doctorID).
		Order("appointment_date", true).
		Order("appointment_time", true).
		Execute(ctx, &rows)
	if err != nil {
		return nil, err
	}
	return toAppointments(rows), nil
}

func (l *Live) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	var row appointmentRow
	if err := l.db.From("appointments").Select(appointmentColumns).Eq("id", id).Single().Execute(ctx, &row); err != nil {
		return nil, translate(err)
	}
	appt := row.toAppointment()
	return &appt, nil
}

func (l *Live) CreateAppointment(ctx context.Context, appt models.NewAppointment) (*models.Appointment, error) {
	var rows []appointmentRow
	err := l.db.From("appointments").Insert(map[string]string{
		"doctor_id":        appt.DoctorID,
		"patient_id":       appt.PatientID,
		"appointment_date": appt.Date,
		"appointment_time": appt.Time,
		"status":           string(models.StatusPending),
	}).Execute(ctx, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	created := rows[0].toAppointment()
	return &created, nil
}

// UpdateAppointmentStatus filters on the expected status so the gateway
// applies the change only if no other write moved the row first.
func (l *Live) UpdateAppointmentStatus(ctx context.Context, id string, from, to models.AppointmentStatus) error {
	var rows []appointmentRow
	err := l.db.From("appointments").
		Update(map[string]string{"status": string(to)}).
		Eq("id", id).
		Eq("status", string(from)).
		Execute(ctx, &rows)
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		return nil
	}

	current, err := l.GetAppointment(ctx, id)
	if err != nil {
		return err
	}
	return fmt.Errorf("appointment %s is %s, not %s: %w", id, current.Status, from, ErrConflict)
}

func (l *Live) ListAvailability(ctx context.Context, doctorID string) ([]models.Availability, error) {
	var rows []availabilityRow
	if err := l.db.From("doctor_availability").Select("*").Eq("doctor_id", doctorID).Execute(ctx, &rows); err != nil {
		return nil, err
	}
	stored := make([]models.Availability, 0, len(rows))
	for _, row := range rows {
		stored = append(stored, models.Availability{
			DayOfWeek: row.DayOfWeek,
			StartTime: models.NormalizeTime(row.StartTime),
			EndTime:   models.NormalizeTime(row.EndTime),
			Enabled:   true,
		})
	}
	// A stored row means the day is on; absent days are off.
	return weekSchedule(stored, func(int) bool { return false }), nil
}

func (l *Live) SaveAvailability(ctx context.Context, doctorID string, slot models.Availability) error {
	if slot.Enabled {
		return l.db.From("doctor_availability").Upsert(map[string]any{
			"doctor_id":   doctorID,
			"day_of_week": slot.DayOfWeek,
			"start_time":  slot.StartTime,
			"end_time":    slot.EndTime,
		}, availabilityConflictOn).Execute(ctx, nil)
	}
	return l.db.From("doctor_availability").
		Delete().
		Eq("doctor_id", doctorID).
		Eq("day_of_week", strconv.Itoa(slot.DayOfWeek)).
		Execute(ctx, nil)
}

// CreatePrescription refuses a second prescription for one appointment. The
// prescriptions table is expected to carry a unique appointment_id as well;
// its 23505 comes back as a 409 gateway error.
func (l *Live) CreatePrescription(ctx context.Context, appointmentID string, medicines []models.Medicine, instructions string) (*models.Prescription, error) {
	var existing []prescriptionRow
	err := l.db.From("prescriptions").Select("id").Eq("appointment_id", appointmentID).Limit(1).Execute(ctx, &existing)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("appointment %s already has a prescription: %w", appointmentID, ErrConflict)
	}

	var row prescriptionRow
	err = l.db.From("prescriptions").Insert(map[string]any{
		"appointment_id": appointmentID,
		"medicines":      medicines,
		"instructions":   instructions,
	}).Single().Execute(ctx, &row)
	if err != nil {
		return nil, err
	}
	p := row.toPrescription()
	return &p, nil
}

// GetPrescription returns the newest prescription so rows written before the
// unique constraint existed do not hide it.
func (l *Live) GetPrescription(ctx context.Context, appointmentID string) (*models.Prescription, error) {
	var rows []prescriptionRow
	err := l.db.From("prescriptions").
		Select("*").
		Eq("appointment_id", appointmentID).
		Order("created_at", false).
		Limit(1).
		Execute(ctx, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	p := rows[0].toPrescription()
	return &p, nil
}

func (l *Live) PatientHistory(ctx context.Context, patientID string) ([]models.HistoryEntry, error) {
	var rows []appointmentRow
	err := l.db.From("appointments").
		Select(patientHistoryColumns).
		Eq("patient_id", patientID).
		Eq("status", string(models.StatusCompleted)).
		Order("appointment_date", false).
		Execute(ctx, &rows)
	if err != nil {
		return nil, err
	}

	history := make([]models.HistoryEntry, 0, len(rows))
	for _, row := range rows {
		entry := models.HistoryEntry{Appointment: row.toAppointment(), Prescriptions: []models.Prescription{}}
		for _, p := range row.Prescriptions {
			entry.Prescriptions = append(entry.Prescriptions, p.toPrescription())
		}
		history = append(history, entry)
	}
	return history, nil
}

func toAppointments(rows []appointmentRow) []models.Appointment {
	appts := make([]models.Appointment, 0, len(rows))
	for _, row := range rows {
		appts = append(appts, row.toAppointment())
	}
	return appts
}

func translate(err error) error {
	if errors.Is(err, gateway.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
