package dto

import "github.com/ahmetcoskunkizilkaya/medbook-client/internal/models"

// UpdateProfileRequest carries the editable fields. Only the block matching
// the signed-in role is applied.
type UpdateProfileRequest struct {
	FullName string                 `json:"full_name"`
	Phone    string                 `json:"phone"`
	Patient  *models.PatientDetails `json:"patient,omitempty"`
	Doctor   *models.DoctorDetails  `json:"doctor,omitempty"`
}

type SettingsRequest struct {
	Notifications *bool `json:"notifications"`
	DarkMode      *bool `json:"dark_mode"`
}

type PushTokenRequest struct {
	Platform          string `json:"platform"`
	IsPhysicalDevice  bool   `json:"is_physical_device"`
	PermissionGranted bool   `json:"permission_granted"`
	Token             string `json:"token"`
}
