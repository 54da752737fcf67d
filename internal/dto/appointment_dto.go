package dto

import "github.com/ahmetcoskunkizilkaya/medbook-client/internal/models"

type BookAppointmentRequest struct {
	DoctorID string `json:"doctor_id"`
	Date     string `json:"date"`
	Time     string `json:"time"`
}

type BookAppointmentResponse struct {
	Appointment models.Appointment `json:"appointment"`
	Message     string             `json:"message"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type AvailabilityRequest struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Enabled   bool   `json:"enabled"`
}

type PrescriptionRequest struct {
	AppointmentID string            `json:"appointment_id"`
	Medicines     []models.Medicine `json:"medicines"`
	Instructions  string            `json:"instructions"`
}
