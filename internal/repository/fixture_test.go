package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/models"
)

var fixedNow = time.Date(2026, time.March, 10, 8, 0, 0, 0, time.UTC)

func newTestFixture() *Fixture {
	return NewFixture(0, func() time.Time { return fixedNow })
}

func TestFixtureSeedsRelativeToNow(t *testing.T) {
	f := newTestFixture()
	ctx := context.Background()

	appts, err := f.ListPatientAppointments(ctx, DemoPatientID)
	require.NoError(t, err)
	require.Len(t, appts, 3)

	// newest first
	assert.Equal(t, "appt-2", appts[0].ID)
	assert.Equal(t, "2026-03-12", appts[0].Date)
	assert.Equal(t, "appt-1", appts[1].ID)
	assert.Equal(t, "appt-5", appts[2].ID)
	assert.Equal(t, "2026-03-09", appts[2].Date)
	assert.Equal(t, "Dr. Sarah Smith", appts[1].Doctor.FullName)
	assert.Equal(t, "Cardiologist", appts[1].Doctor.Specialization)
}

func TestFixtureDoctorAppointmentsOldestFirst(t *testing.T) {
	f := newTestFixture()

	appts, err := f.ListDoctorAppointments(context.Background(), DemoDoctorID)
	require.NoError(t, err)
	require.Len(t, appts, 2)
	assert.Equal(t, "appt-3", appts[0].ID)
	assert.Equal(t, "Alice Wonderland", appts[0].Patient.FullName)
	assert.Equal(t, "appt-4", appts[1].ID)
	assert.Equal(t, models.StatusPending, appts[1].Status)
}

func TestFixtureBookingIsVisibleToDoctor(t *testing.T) {
	f := newTestFixture()
	ctx := context.Background()
	tomorrow := fixedNow.AddDate(0, 0, 1).Format(models.DateLayout)

	created, err := f.CreateAppointment(ctx, models.NewAppointment{
		DoctorID:  "doc-1",
		PatientID: DemoPatientID,
		Date:      tomorrow,
		Time:      "10:00",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.StatusPending, created.Status)
	assert.Equal(t, "Jane Doe", created.Patient.FullName)

	mine, err := f.ListPatientAppointments(ctx, DemoPatientID)
	require.NoError(t, err)
	assert.Len(t, mine, 4)

	theirs, err := f.ListDoctorAppointments(ctx, "doc-1")
	require.NoError(t, err)
	var found bool
	for _, a := range theirs {
		if a.ID == created.ID {
			found = true
			assert.Equal(t, models.StatusPending, a.Status)
		}
	}
	assert.True(t, found)
}

func TestFixtureReturnsCopies(t *testing.T) {
	f := newTestFixture()
	ctx := context.Background()

	appt, err := f.GetAppointment(ctx, "appt-1")
	require.NoError(t, err)
	appt.Status = models.StatusCancelled
	appt.Doctor.FullName = "changed"

	again, err := f.GetAppointment(ctx, "appt-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, again.Status)
	assert.Equal(t, "Dr. Sarah Smith", again.Doctor.FullName)
}

func TestFixtureUpdateStatus(t *testing.T) {
	f := newTestFixture()
	ctx := context.Background()

	require.NoError(t, f.UpdateAppointmentStatus(ctx, "appt-4", models.StatusPending, models.StatusConfirmed))
	appt, err := f.GetAppointment(ctx, "appt-4")
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, appt.Status)

	err = f.UpdateAppointmentStatus(ctx, "appt-4", models.StatusPending, models.StatusCancelled)
	assert.ErrorIs(t, err, ErrConflict)
	appt, err = f.GetAppointment(ctx, "appt-4")
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, appt.Status)

	assert.ErrorIs(t, f.UpdateAppointmentStatus(ctx, "missing", models.StatusPending, models.StatusConfirmed), ErrNotFound)
}

func TestFixtureAvailability(t *testing.T) {
	f := newTestFixture()
	ctx := context.Background()

	week, err := f.ListAvailability(ctx, DemoDoctorID)
	require.NoError(t, err)
	require.Len(t, week, 7)
	assert.False(t, week[0].Enabled)
	for day := 1; day <= 5; day++ {
		assert.True(t, week[day].Enabled, models.Weekdays[day])
		assert.Equal(t, models.DefaultStartTime, week[day].StartTime)
	}
	assert.False(t, week[6].Enabled)

	require.NoError(t, f.SaveAvailability(ctx, DemoDoctorID, models.Availability{DayOfWeek: 1, StartTime: "10:00", EndTime: "14:00", Enabled: true}))
	require.NoError(t, f.SaveAvailability(ctx, DemoDoctorID, models.Availability{DayOfWeek: 1, StartTime: "10:00", EndTime: "14:00", Enabled: false}))

	week, err = f.ListAvailability(ctx, DemoDoctorID)
	require.NoError(t, err)
	assert.Equal(t, models.Availability{DayOfWeek: 1, StartTime: "10:00", EndTime: "14:00", Enabled: false}, week[1])
}

func TestFixturePrescriptionAndHistory(t *testing.T) {
	f := newTestFixture()
	ctx := context.Background()

	_, err := f.GetPrescription(ctx, "appt-3")
	assert.ErrorIs(t, err, ErrNotFound)

	meds := []models.Medicine{{Name: "Amoxicillin", Dosage: "500mg"}, {Name: "Ibuprofen"}}
	p, err := f.CreatePrescription(ctx, "appt-3", meds, "After meals")
	require.NoError(t, err)
	assert.Equal(t, fixedNow, p.CreatedAt)
	require.NoError(t, f.UpdateAppointmentStatus(ctx, "appt-3", models.StatusConfirmed, models.StatusCompleted))

	got, err := f.GetPrescription(ctx, "appt-3")
	require.NoError(t, err)
	assert.Equal(t, meds, got.Medicines)

	history, err := f.PatientHistory(ctx, "other-patient")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "appt-3", history[0].ID)
	require.Len(t, history[0].Prescriptions, 1)
	assert.Equal(t, "After meals", history[0].Prescriptions[0].Instructions)

	history, err = f.PatientHistory(ctx, DemoPatientID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "appt-5", history[0].ID)
	assert.Empty(t, history[0].Prescriptions)
}

func TestFixturePrescriptionRequiresConfirmedAppointment(t *testing.T) {
	f := newTestFixture()
	ctx := context.Background()
	meds := []models.Medicine{{Name: "A"}}

	_, err := f.CreatePrescription(ctx, "appt-4", meds, "")
	assert.ErrorIs(t, err, ErrConflict)
	_, err = f.CreatePrescription(ctx, "appt-5", meds, "")
	assert.ErrorIs(t, err, ErrConflict)
	_, err = f.CreatePrescription(ctx, "missing", meds, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFixtureConcurrentPrescriptionsKeepOne(t *testing.T) {
	f := NewFixture(20*time.Millisecond, func() time.Time { return fixedNow })
	ctx := context.Background()

	const submits = 4
	errs := make([]error, submits)
	var wg sync.WaitGroup
	for i := 0; i < submits; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.CreatePrescription(ctx, "appt-3", []models.Medicine{{Name: "A"}}, "")
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, ErrConflict)
	}
	assert.Equal(t, 1, created)

	require.NoError(t, f.UpdateAppointmentStatus(ctx, "appt-3", models.StatusConfirmed, models.StatusCompleted))
	history, err := f.PatientHistory(ctx, "other-patient")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Len(t, history[0].Prescriptions, 1)
}

func TestFixtureProfileUpdate(t *testing.T) {
	f := newTestFixture()
	ctx := context.Background()

	err := f.UpdateProfile(ctx, DemoDoctorID, models.RoleDoctor, ProfileUpdate{
		FullName: "Dr. Demo Updated",
		Phone:    "555-0100",
		Doctor:   &models.DoctorDetails{Specialization: "Dentist", ConsultationFee: 75},
	})
	require.NoError(t, err)

	profile, err := f.GetProfile(ctx, DemoDoctorID)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Demo Updated", profile.FullName)
	assert.Equal(t, models.RoleDoctor, profile.Role)

	details, err := f.GetProfileDetails(ctx, *profile)
	require.NoError(t, err)
	require.NotNil(t, details.Doctor)
	assert.Nil(t, details.Patient)
	assert.Equal(t, "Dentist", details.Doctor.Specialization)

	_, err = f.GetProfile(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFixtureLatencyHonoursCancel(t *testing.T) {
	f := NewFixture(time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.ListDoctors(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDemoProfile(t *testing.T) {
	doctor := DemoProfile(models.RoleDoctor)
	assert.Equal(t, DemoDoctorID, doctor.ID)
	assert.Equal(t, "doctor@demo.com", doctor.Email)
	assert.Equal(t, models.RoleDoctor, doctor.Role)

	patient := DemoProfile(models.RolePatient)
	assert.Equal(t, DemoPatientID, patient.ID)
	assert.Equal(t, "Jane Doe", patient.FullName)
}
