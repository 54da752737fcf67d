package session

import (
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/models"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/repository"
)

type State string

const (
	StateUnknown         State = "unknown"
	StateAuthenticated   State = "authenticated"
	StateUnauthenticated State = "unauthenticated"
)

// Snapshot is a copy of the store at one generation. Session, User and
// Profile are either all set (Authenticated) or all nil.
type Snapshot struct {
	State      State
	Generation string
	Session    *models.Session
	User       *models.User
	Profile    *models.Profile
	Source     repository.DataSource
}

func (s Snapshot) Authenticated() bool {
	return s.State == StateAuthenticated
}

// Role is RoleUnknown unless authenticated with a recognised role.
func (s Snapshot) Role() models.Role {
	if !s.Authenticated() || s.Profile == nil {
		return models.RoleUnknown
	}
	return s.Profile.Role
}

// Mode reports which data source the session is bound to; empty when none.
func (s Snapshot) Mode() repository.Mode {
	if s.Source == nil {
		return ""
	}
	return s.Source.Mode()
}

func (s Snapshot) clone() Snapshot {
	out := s
	if s.Session != nil {
		session := *s.Session
		out.Session = &session
	}
	if s.User != nil {
		user := *s.User
		out.User = &user
	}
	if s.Profile != nil {
		profile := *s.Profile
		out.Profile = &profile
	}
	return out
}
