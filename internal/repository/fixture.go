package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/models"
)

// Fixture is the in-memory data source behind demo logins. One instance is
// shared by every demo session in the process, so writes from one screen are
// visible to all others.
type Fixture struct {
	mu      sync.RWMutex
	latency time.Duration
	now     func() time.Time

	doctors       []models.Doctor
	profiles      map[string]*models.ProfileDetails
	appointments  []models.Appointment
	availability  map[string][]models.Availability
	prescriptions []models.Prescription
}

// NewFixture seeds the demo data relative to now. Every call waits for
// latency first; pass 0 to disable it.
func NewFixture(latency time.Duration, now func() time.Time) *Fixture {
	if now == nil {
		now = time.Now
	}
	f := &Fixture{
		latency:      latency,
		now:          now,
		doctors:      seedDoctors(),
		profiles:     seedProfiles(),
		availability: make(map[string][]models.Availability),
	}
	f.appointments = f.seedAppointments(now())
	return f
}

func (f *Fixture) Mode() Mode { return ModeDemo }

func (f *Fixture) wait(ctx context.Context) error {
	if f.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(f.latency)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *Fixture) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	p, ok := f.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	profile := p.Profile
	return &profile, nil
}

func (f *Fixture) GetProfileDetails(ctx context.Context, profile models.Profile) (*models.ProfileDetails, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	details := &models.ProfileDetails{Profile: profile}
	stored := f.profiles[profile.ID]
	switch profile.Role {
	case models.RolePatient:
		details.Patient = &models.PatientDetails{}
		if stored != nil && stored.Patient != nil {
			*details.Patient = *stored.Patient
		}
	case models.RoleDoctor:
		details.Doctor = &models.DoctorDetails{}
		if stored != nil && stored.Doctor != nil {
			*details.Doctor = *stored.Doctor
		}
	}
	return details, nil
}

func (f *Fixture) UpdateProfile(ctx context.Context, userID string, role models.Role, update ProfileUpdate) error {
	if err := f.wait(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.profiles[userID]
	if !ok {
		return ErrNotFound
	}
	p.FullName = update.FullName
	p.Phone = update.Phone
	switch {
	case role == models.RolePatient && update.Patient != nil:
		patient := *update.Patient
		p.Patient = &patient
	case role == models.RoleDoctor && update.Doctor != nil:
		doctor := *update.Doctor
		p.Doctor = &doctor
	}
	return nil
}

func (f *Fixture) SavePushToken(ctx context.Context, userID, token string) error {
	if err := f.wait(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.profiles[userID]
	if !ok {
		return ErrNotFound
	}
	p.PushToken = token
	return nil
}

func (f *Fixture) ListDoctors(ctx context.Context) ([]models.Doctor, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	doctors := make([]models.Doctor, len(f.doctors))
	copy(doctors, f.doctors)
	return doctors, nil
}

func (f *Fixture) GetDoctor(ctx context.Context, id string) (*models.Doctor, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, d := range f.doctors {
		if d.ID == id {
			doc := d
			return &doc, nil
		}
	}
	return nil, ErrNotFound
}

func (f *Fixture) ListPatientAppointments(ctx context.Context, patientID string) ([]models.Appointment, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.RLock()
	appts := f.filterAppointments(func(a models.Appointment) bool { return a.PatientID == patientID })
	f.mu.RUnlock()

	sort.SliceStable(appts, func(i, j int) bool { return appts[i].Date > appts[j].Date })
	return appts, nil
}

func (f *Fixture) ListDoctorAppointments(ctx context.Context, doctorID string) ([]models.Appointment, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.RLock()
	appts := f.filterAppointments(func(a models.Appointment) bool { return a.DoctorID == doctorID })
	f.mu.RUnlock()

	sort.SliceStable(appts, func(i, j int) bool {
		if appts[i].Date != appts[j].Date {
			return appts[i].Date < appts[j].Date
		}
		return appts[i].Time < appts[j].Time
	})
	return appts, nil
}

func (f *Fixture) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	i := f.appointmentIndex(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	appt := cloneAppointment(f.appointments[i])
	return &appt, nil
}

func (f *Fixture) CreateAppointment(ctx context.Context, appt models.NewAppointment) (*models.Appointment, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	created := models.Appointment{
		ID:        uuid.New().String(),
		DoctorID:  appt.DoctorID,
		PatientID: appt.PatientID,
		Date:      appt.Date,
		Time:      appt.Time,
		Status:    models.StatusPending,
		Doctor:    f.doctorParty(appt.DoctorID),
		Patient:   f.patientParty(appt.PatientID),
	}
	f.appointments = append(f.appointments, created)
	out := cloneAppointment(created)
	return &out, nil
}

func (f *Fixture) UpdateAppointmentStatus(ctx context.Context, id string, from, to models.AppointmentStatus) error {
	if err := f.wait(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.appointmentIndex(id)
	if i < 0 {
		return ErrNotFound
	}
	if f.appointments[i].Status != from {
		return fmt.Errorf("appointment %s is %s, not %s: %w", id, f.appointments[i].Status, from, ErrConflict)
	}
	f.appointments[i].Status = to
	return nil
}

func (f *Fixture) ListAvailability(ctx context.Context, doctorID string) ([]models.Availability, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	return weekSchedule(f.availability[doctorID], demoWorkday), nil
}

// SaveAvailability keeps disabled days with their times so re-enabling
// restores the previous window.
func (f *Fixture) SaveAvailability(ctx context.Context, doctorID string, slot models.Availability) error {
	if err := f.wait(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	rows := f.availability[doctorID]
	for i := range rows {
		if rows[i].DayOfWeek == slot.DayOfWeek {
			rows[i] = slot
			return nil
		}
	}
	f.availability[doctorID] = append(rows, slot)
	return nil
}

func (f *Fixture) CreatePrescription(ctx context.Context, appointmentID string, medicines []models.Medicine, instructions string) (*models.Prescription, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	// Checked under the same lock as the append so concurrent submits for
	// one appointment leave a single prescription.
	i := f.appointmentIndex(appointmentID)
	if i < 0 {
		return nil, ErrNotFound
	}
	if status := f.appointments[i].Status; status != models.StatusConfirmed {
		return nil, fmt.Errorf("appointment %s is %s: %w", appointmentID, status, ErrConflict)
	}
	for _, existing := range f.prescriptions {
		if existing.AppointmentID == appointmentID {
			return nil, fmt.Errorf("appointment %s already has a prescription: %w", appointmentID, ErrConflict)
		}
	}

	p := models.Prescription{
		ID:            uuid.New().String(),
		AppointmentID: appointmentID,
		Medicines:     append([]models.Medicine{}, medicines...),
		Instructions:  instructions,
		CreatedAt:     f.now(),
	}
	f.prescriptions = append(f.prescriptions, p)
	out := clonePrescription(p)
	return &out, nil
}

func (f *Fixture) GetPrescription(ctx context.Context, appointmentID string) (*models.Prescription, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	for i := len(f.prescriptions) - 1; i >= 0; i-- {
		if f.prescriptions[i].AppointmentID == appointmentID {
			p := clonePrescription(f.prescriptions[i])
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (f *Fixture) PatientHistory(ctx context.Context, patientID string) ([]models.HistoryEntry, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	appts := f.filterAppointments(func(a models.Appointment) bool {
		return a.PatientID == patientID && a.Status == models.StatusCompleted
	})
	sort.SliceStable(appts, func(i, j int) bool { return appts[i].Date > appts[j].Date })

	history := make([]models.HistoryEntry, 0, len(appts))
	for _, appt := range appts {
		entry := models.HistoryEntry{Appointment: appt, Prescriptions: []models.Prescription{}}
		for _, p := range f.prescriptions {
			if p.AppointmentID == appt.ID {
				entry.Prescriptions = append(entry.Prescriptions, clonePrescription(p))
			}
		}
		history = append(history, entry)
	}
	return history, nil
}

// filterAppointments must be called with mu held.
func (f *Fixture) filterAppointments(keep func(models.Appointment) bool) []models.Appointment {
	out := []models.Appointment{}
	for _, a := range f.appointments {
		if keep(a) {
			out = append(out, cloneAppointment(a))
		}
	}
	return out
}

func (f *Fixture) appointmentIndex(id string) int {
	for i := range f.appointments {
		if f.appointments[i].ID == id {
			return i
		}
	}
	return -1
}

func (f *Fixture) doctorParty(id string) *models.Party {
	for _, d := range f.doctors {
		if d.ID == id {
			return &models.Party{
				FullName:       d.FullName,
				AvatarURL:      d.AvatarURL,
				Specialization: d.Specialization,
				ClinicAddress:  d.ClinicAddress,
			}
		}
	}
	if p, ok := f.profiles[id]; ok && p.Role == models.RoleDoctor {
		party := &models.Party{FullName: p.FullName, AvatarURL: p.AvatarURL}
		if p.Doctor != nil {
			party.Specialization = p.Doctor.Specialization
			party.ClinicAddress = p.Doctor.ClinicAddress
		}
		return party
	}
	return &models.Party{FullName: models.UnknownDoctorName}
}

func (f *Fixture) patientParty(id string) *models.Party {
	if p, ok := f.profiles[id]; ok {
		return &models.Party{FullName: p.FullName, AvatarURL: p.AvatarURL}
	}
	return nil
}

func cloneAppointment(a models.Appointment) models.Appointment {
	if a.Doctor != nil {
		d := *a.Doctor
		a.Doctor = &d
	}
	if a.Patient != nil {
		p := *a.Patient
		a.Patient = &p
	}
	return a
}

func clonePrescription(p models.Prescription) models.Prescription {
	p.Medicines = append([]models.Medicine{}, p.Medicines...)
	return p
}
