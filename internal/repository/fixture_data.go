package repository

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/models"
)

const (
	DemoDoctorID  = "demo-doctor-id"
	DemoPatientID = "demo-patient-id"
)

func seedDoctors() []models.Doctor {
	return []models.Doctor{
		{
			ID:        "doc-1",
			FullName:  "Dr. Sarah Smith",
			AvatarURL: "https://randomuser.me/api/portraits/women/68.jpg",
			DoctorDetails: models.DoctorDetails{
				Specialization:  "Cardiologist",
				Rating:          4.8,
				ExperienceYears: 12,
				ConsultationFee: 150,
				ClinicAddress:   "123 Heart Lane, Medical City",
				Bio:             "Expert in heart rhythm disorders and preventive cardiology.",
			},
		},
		{
			ID:        "doc-2",
			FullName:  "Dr. John Doe",
			AvatarURL: "https://randomuser.me/api/portraits/men/32.jpg",
			DoctorDetails: models.DoctorDetails{
				Specialization:  "Dermatologist",
				Rating:          4.5,
				ExperienceYears: 8,
				ConsultationFee: 100,
				ClinicAddress:   "456 Skin Care Blvd, Wellness Town",
				Bio:             "Specializing in cosmetic dermatology and skin cancer screening.",
			},
		},
		{
			ID:        "doc-3",
			FullName:  "Dr. Emily Blunt",
			AvatarURL: "https://randomuser.me/api/portraits/women/44.jpg",
			DoctorDetails: models.DoctorDetails{
				Specialization:  "Pediatrician",
				Rating:          4.9,
				ExperienceYears: 15,
				ConsultationFee: 120,
				ClinicAddress:   "789 Kids Corner, Happy Valley",
				Bio:             "Dedicated to the health and well-being of children from birth to young adulthood.",
			},
		},
		{
			ID:        "doc-4",
			FullName:  "Dr. Michael Chang",
			AvatarURL: "https://randomuser.me/api/portraits/men/64.jpg",
			DoctorDetails: models.DoctorDetails{
				Specialization:  "Neurologist",
				Rating:          4.7,
				ExperienceYears: 10,
				ConsultationFee: 180,
				ClinicAddress:   "321 Brain Ave, Neuro Park",
				Bio:             "Focusing on disorders of the nervous system.",
			},
		},
		{
			ID:        "doc-5",
			FullName:  "Dr. Robert Brown",
			AvatarURL: "https://randomuser.me/api/portraits/men/88.jpg",
			DoctorDetails: models.DoctorDetails{
				Specialization:  "Orthopedic",
				Rating:          4.6,
				ExperienceYears: 14,
				ConsultationFee: 160,
				ClinicAddress:   "654 Bone St, Joint City",
				Bio:             "Expert in musculoskeletal trauma, sports injuries, and degenerative diseases.",
			},
		},
	}
}

// DemoProfile returns the fabricated users row for a demo login.
func DemoProfile(role models.Role) models.Profile {
	if role == models.RoleDoctor {
		return models.Profile{
			User: models.User{ID: DemoDoctorID, Email: "doctor@demo.com", FullName: "Dr. Demo"},
			Role: models.RoleDoctor,
		}
	}
	return models.Profile{
		User: models.User{ID: DemoPatientID, Email: "patient@demo.com", FullName: "Jane Doe"},
		Role: models.RolePatient,
	}
}

func seedProfiles() map[string]*models.ProfileDetails {
	doctor := DemoProfile(models.RoleDoctor)
	patient := DemoProfile(models.RolePatient)
	return map[string]*models.ProfileDetails{
		DemoDoctorID: {
			Profile: doctor,
			Doctor:  &models.DoctorDetails{Specialization: "General", ExperienceYears: 5, ConsultationFee: 90},
		},
		DemoPatientID: {
			Profile: patient,
			Patient: &models.PatientDetails{},
		},
		"other-patient": {
			Profile: models.Profile{
				User: models.User{ID: "other-patient", FullName: "Alice Wonderland", AvatarURL: "https://randomuser.me/api/portraits/women/12.jpg"},
				Role: models.RolePatient,
			},
			Patient: &models.PatientDetails{},
		},
		"other-patient-2": {
			Profile: models.Profile{
				User: models.User{ID: "other-patient-2", FullName: "Bob Builder", AvatarURL: "https://randomuser.me/api/portraits/men/22.jpg"},
				Role: models.RolePatient,
			},
			Patient: &models.PatientDetails{},
		},
	}
}

type seedAppointment struct {
	id        string
	patientID string
	doctorID  string
	dayOffset int
	time      string
	status    models.AppointmentStatus
}

var appointmentSeeds = []seedAppointment{
	{"appt-1", DemoPatientID, "doc-1", 1, "10:00", models.StatusConfirmed},
	{"appt-2", DemoPatientID, "doc-2", 2, "14:30", models.StatusPending},
	{"appt-3", "other-patient", DemoDoctorID, 0, "09:00", models.StatusConfirmed},
	{"appt-4", "other-patient-2", DemoDoctorID, 1, "11:00", models.StatusPending},
	{"appt-5", DemoPatientID, "doc-3", -1, "16:00", models.StatusCompleted},
}

func (f *Fixture) seedAppointments(now time.Time) []models.Appointment {
	appts := make([]models.Appointment, 0, len(appointmentSeeds))
	for _, seed := range appointmentSeeds {
		appts = append(appts, models.Appointment{
			ID:        seed.id,
			DoctorID:  seed.doctorID,
			PatientID: seed.patientID,
			Date:      now.AddDate(0, 0, seed.dayOffset).Format(models.DateLayout),
			Time:      seed.time,
			Status:    seed.status,
			Doctor:    f.doctorParty(seed.doctorID),
			Patient:   f.patientParty(seed.patientID),
		})
	}
	return appts
}

// demoWorkday reports the initial state of a demo doctor's weekday: Monday
// through Friday are on.
func demoWorkday(day int) bool {
	return day > int(time.Sunday) && day < int(time.Saturday)
}
