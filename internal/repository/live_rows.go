package repository

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/models"
)

// Row shapes as the gateway returns them. Embedded relations arrive nested;
// everything is flattened into the canonical models here and nowhere else.

type userRow struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
	Phone     string `json:"phone"`
	PushToken string `json:"push_token"`
	Role      string `json:"role"`
}

func (r userRow) toProfile() *models.Profile {
	return &models.Profile{
		User: models.User{
			ID:        r.ID,
			Email:     r.Email,
			FullName:  r.FullName,
			AvatarURL: r.AvatarURL,
			Phone:     r.Phone,
			PushToken: r.PushToken,
		},
		Role: models.ParseRole(r.Role),
	}
}

type userRef struct {
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

type doctorRow struct {
	ID              string   `json:"id"`
	Specialization  string   `json:"specialization"`
	Qualifications  string   `json:"qualifications"`
	ExperienceYears int      `json:"experience_years"`
	ConsultationFee float64  `json:"consultation_fee"`
	Bio             string   `json:"bio"`
	ClinicAddress   string   `json:"clinic_address"`
	Rating          float64  `json:"rating"`
	Users           *userRef `json:"users"`
}

func (r doctorRow) details() models.DoctorDetails {
	return models.DoctorDetails{
		Specialization:  r.Specialization,
		Qualifications:  r.Qualifications,
		ExperienceYears: r.ExperienceYears,
		ConsultationFee: r.ConsultationFee,
		Bio:             r.Bio,
		ClinicAddress:   r.ClinicAddress,
		Rating:          r.Rating,
	}
}

func (r doctorRow) toDoctor() models.Doctor {
	doc := models.Doctor{ID: r.ID, FullName: models.UnknownDoctorName, DoctorDetails: r.details()}
	if r.Users != nil {
		if r.Users.FullName != "" {
			doc.FullName = r.Users.FullName
		}
		doc.AvatarURL = r.Users.AvatarURL
	}
	return doc
}

type patientRow struct {
	ID             string   `json:"id"`
	BloodGroup     string   `json:"blood_group"`
	Allergies      string   `json:"allergies"`
	MedicalHistory string   `json:"medical_history"`
	Users          *userRef `json:"users"`
}

func (r patientRow) details() models.PatientDetails {
	return models.PatientDetails{
		BloodGroup:     r.BloodGroup,
		Allergies:      r.Allergies,
		MedicalHistory: r.MedicalHistory,
	}
}

type prescriptionRow struct {
	ID            string            `json:"id"`
	AppointmentID string            `json:"appointment_id"`
	Medicines     []models.Medicine `json:"medicines"`
	Instructions  string            `json:"instructions"`
	CreatedAt     time.Time         `json:"created_at"`
}

func (r prescriptionRow) toPrescription() models.Prescription {
	medicines := r.Medicines
	if medicines == nil {
		medicines = []models.Medicine{}
	}
	return models.Prescription{
		ID:            r.ID,
		AppointmentID: r.AppointmentID,
		Medicines:     medicines,
		Instructions:  r.Instructions,
		CreatedAt:     r.CreatedAt,
	}
}

// prescriptionList accepts an embedded prescription as either an array or a
// single object; PostgREST picks the shape from the foreign key's uniqueness.
type prescriptionList []prescriptionRow

func (l *prescriptionList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*l = nil
		return nil
	case data[0] == '{':
		var row prescriptionRow
		if err := json.Unmarshal(data, &row); err != nil {
			return err
		}
		*l = prescriptionList{row}
		return nil
	default:
		var rows []prescriptionRow
		if err := json.Unmarshal(data, &rows); err != nil {
			return err
		}
		*l = rows
		return nil
	}
}

type appointmentRow struct {
	ID              string           `json:"id"`
	DoctorID        string           `json:"doctor_id"`
	PatientID       string           `json:"patient_id"`
	AppointmentDate string           `json:"appointment_date"`
	AppointmentTime string           `json:"appointment_time"`
	Status          string           `json:"status"`
	Doctors         *doctorRow       `json:"doctors"`
	Patients        *patientRow      `json:"patients"`
	Prescriptions   prescriptionList `json:"prescriptions"`
}

func (r appointmentRow) toAppointment() models.Appointment {
	appt := models.Appointment{
		ID:        r.ID,
		DoctorID:  r.DoctorID,
		PatientID: r.PatientID,
		Date:      models.NormalizeDate(r.AppointmentDate),
		Time:      models.NormalizeTime(r.AppointmentTime),
		Status:    models.AppointmentStatus(r.Status),
	}
	if r.Doctors != nil {
		party := &models.Party{
			FullName:       models.UnknownDoctorName,
			Specialization: r.Doctors.Specialization,
			ClinicAddress:  r.Doctors.ClinicAddress,
		}
		if r.Doctors.Users != nil {
			if r.Doctors.Users.FullName != "" {
				party.FullName = r.Doctors.Users.FullName
			}
			party.AvatarURL = r.Doctors.Users.AvatarURL
		}
		appt.Doctor = party
	}
	if r.Patients != nil && r.Patients.Users != nil {
		appt.Patient = &models.Party{
			FullName:  r.Patients.Users.FullName,
			AvatarURL: r.Patients.Users.AvatarURL,
		}
	}
	return appt
}

type availabilityRow struct {
	DoctorID  string `json:"doctor_id"`
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}
