package services

import (
	"context"
	"strings"

	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/models"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/session"
)

const msgStatusNotUpdated = "Prescription saved but failed to update appointment status."

type PrescriptionService struct {
	store *session.Store
}

func NewPrescriptionService(store *session.Store) *PrescriptionService {
	return &PrescriptionService{store: store}
}

// Prescribe stores the prescription for one of the doctor's confirmed
// appointments and then marks the appointment completed. Medicines keep their submitted order.
func (s *PrescriptionService) Prescribe(ctx context.Context, snap session.Snapshot, appointmentID string, medicines []models.Medicine, instructions string) (*models.Prescription, error) {
	if strings.TrimSpace(appointmentID) == "" {
		return nil, invalid("Appointment is required")
	}
	if len(medicines) == 0 {
		return nil, invalid("Please add at least one medicine.")
	}
	for _, m := range medicines {
		if strings.TrimSpace(m.Name) == "" {
			return nil, invalid("Please fill in the medicine name for all entries.")
		}
	}

	appt, err := snap.Source.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.DoctorID != snap.User.ID {
		return nil, ErrNotAllowed
	}
	if appt.Status != models.StatusConfirmed {
		return nil, invalid("Prescriptions can only be added to confirmed appointments.")
	}

	// A concurrent submit that got here first makes this fail with
	// repository.ErrConflict.
	p, err := snap.Source.CreatePrescription(ctx, appointmentID, medicines, instructions)
	if err != nil {
		return nil, err
	}
	if err := snap.Source.UpdateAppointmentStatus(ctx, appointmentID, models.StatusConfirmed, models.StatusCompleted); err != nil {
		return nil, &PartialWriteError{Message: msgStatusNotUpdated, Err: err}
	}
	if err := settle(s.store, snap); err != nil {
		return nil, err
	}
	return p, nil
}

// PatientHistory lists a patient's completed appointments with their
// prescriptions, newest first.
func (s *PrescriptionService) PatientHistory(ctx context.Context, snap session.Snapshot, patientID string) ([]models.HistoryEntry, error) {
	if strings.TrimSpace(patientID) == "" {
		return nil, invalid("Patient is required")
	}
	history, err := snap.Source.PatientHistory(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return history, settle(s.store, snap)
}
