package models

// Role discriminates the profile attached to a user. It is fixed at sign-up.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleUnknown Role = ""
)

// ParseRole maps a stored role value onto a known Role. Anything other than
// patient or doctor is RoleUnknown.
func ParseRole(s string) Role {
	switch Role(s) {
	case RolePatient, RoleDoctor:
		return Role(s)
	default:
		return RoleUnknown
	}
}

func (r Role) Valid() bool {
	return r == RolePatient || r == RoleDoctor
}

// User is the identity record behind a session.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Phone     string `json:"phone,omitempty"`
	PushToken string `json:"push_token,omitempty"`
}

// Profile is the application-level users row: identity plus role.
type Profile struct {
	User
	Role Role `json:"role"`
}

type PatientDetails struct {
	BloodGroup     string `json:"blood_group"`
	Allergies      string `json:"allergies"`
	MedicalHistory string `json:"medical_history"`
}

type DoctorDetails struct {
	Specialization  string  `json:"specialization"`
	Qualifications  string  `json:"qualifications"`
	ExperienceYears int     `json:"experience_years"`
	ConsultationFee float64 `json:"consultation_fee"`
	Bio             string  `json:"bio"`
	ClinicAddress   string  `json:"clinic_address"`
	Rating          float64 `json:"rating"`
}

// ProfileDetails is a profile together with its role-specific record. Exactly
// one of Patient or Doctor is set for a known role; both are nil otherwise.
type ProfileDetails struct {
	Profile
	Patient *PatientDetails `json:"patient,omitempty"`
	Doctor  *DoctorDetails  `json:"doctor,omitempty"`
}

// Doctor is the flattened doctor listing shape.
type Doctor struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url,omitempty"`
	DoctorDetails
}

const UnknownDoctorName = "Unknown Doctor"
