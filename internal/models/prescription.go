package models

import "time"

type Medicine struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	Duration  string `json:"duration"`
}

// Prescription belongs to exactly one appointment. Medicines keep the order
// they were submitted in.
type Prescription struct {
	ID            string     `json:"id"`
	AppointmentID string     `json:"appointment_id"`
	Medicines     []Medicine `json:"medicines"`
	Instructions  string     `json:"instructions"`
	CreatedAt     time.Time  `json:"created_at"`
}

// HistoryEntry is a completed appointment with the prescriptions issued for it.
type HistoryEntry struct {
	Appointment
	Prescriptions []Prescription `json:"prescriptions"`
}
