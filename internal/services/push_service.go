package services

import (
	"context"
	"strings"

	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/session"
)

const PlatformWeb = "web"

type PushRegistration struct {
	Platform          string
	IsPhysicalDevice  bool
	PermissionGranted bool
	Token             string
}

// PushResult says whether the token was stored and, if not, why.
type PushResult struct {
	Registered bool   `json:"registered"`
	Reason     string `json:"reason,omitempty"`
}

type PushService struct {
	store           *session.Store
	defaultPlatform string
}

func NewPushService(store *session.Store, defaultPlatform string) *PushService {
	return &PushService{store: store, defaultPlatform: defaultPlatform}
}

// RegisterPushToken stores the device's push token on the user row. Web
// clients and simulators are skipped rather than rejected.
func (s *PushService) RegisterPushToken(ctx context.Context, snap session.Snapshot, reg PushRegistration) (*PushResult, error) {
	platform := strings.ToLower(strings.TrimSpace(reg.Platform))
	if platform == "" {
		platform = s.defaultPlatform
	}

	switch {
	case platform == PlatformWeb:
		return &PushResult{Reason: "Push notifications are not supported on web."}, nil
	case !reg.IsPhysicalDevice:
		return &PushResult{Reason: "Must use physical device for Push Notifications"}, nil
	case !reg.PermissionGranted:
		return &PushResult{Reason: "Failed to get push token for push notification!"}, nil
	}

	token := strings.TrimSpace(reg.Token)
	if token == "" {
		return nil, invalid("Push token is required")
	}
	if err := snap.Source.SavePushToken(ctx, snap.User.ID, token); err != nil {
		return nil, err
	}
	if err := settle(s.store, snap); err != nil {
		return nil, err
	}
	return &PushResult{Registered: true}, nil
}
