package services

import (
	"context"
	"strings"
	"sync"

	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/models"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/repository"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/session"
)

// Settings are process-local preferences; they are never sent to the
// gateway.
type Settings struct {
	Notifications bool `json:"notifications"`
	DarkMode      bool `json:"dark_mode"`
}

type ProfileService struct {
	store *session.Store

	mu       sync.RWMutex
	settings Settings
}

func NewProfileService(store *session.Store) *ProfileService {
	return &ProfileService{
		store:    store,
		settings: Settings{Notifications: true},
	}
}

func (s *ProfileService) Profile(ctx context.Context, snap session.Snapshot) (*models.ProfileDetails, error) {
	details, err := snap.Source.GetProfileDetails(ctx, *snap.Profile)
	if err != nil {
		return nil, err
	}
	return details, settle(s.store, snap)
}

// UpdateProfile saves the users row, then the role's own record, and re-syncs
// the store's cached profile. The first failing write aborts.
func (s *ProfileService) UpdateProfile(ctx context.Context, snap session.Snapshot, update repository.ProfileUpdate) (*models.ProfileDetails, error) {
	update.FullName = strings.TrimSpace(update.FullName)
	if update.FullName == "" {
		return nil, invalid("Full name is required")
	}
	role := snap.Role()
	if role != models.RolePatient {
		update.Patient = nil
	}
	if role != models.RoleDoctor {
		update.Doctor = nil
	}

	if err := snap.Source.UpdateProfile(ctx, snap.User.ID, role, update); err != nil {
		return nil, err
	}
	profile, err := s.store.RefreshProfile(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Source.GetProfileDetails(ctx, *profile)
}

func (s *ProfileService) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

func (s *ProfileService) UpdateSettings(settings Settings) Settings {
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
	return settings
}
