package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/models"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type DemoLoginRequest struct {
	Role string `json:"role"`
}

// SessionResponse is the current store snapshot. AccessToken is the local API
// bearer token for this generation and is empty when signed out.
type SessionResponse struct {
	State       string          `json:"state"`
	Mode        string          `json:"mode,omitempty"`
	Generation  string          `json:"generation"`
	AccessToken string          `json:"access_token,omitempty"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`
	User        *models.User    `json:"user,omitempty"`
	Profile     *models.Profile `json:"profile,omitempty"`
}

type RegisterResponse struct {
	User              models.User `json:"user"`
	NeedsConfirmation bool        `json:"needs_confirmation"`
	Message           string      `json:"message"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Session   string `json:"session"`
	Mode      string `json:"mode,omitempty"`
	Gateway   string `json:"gateway"`
	Storage   string `json:"storage"`
}
