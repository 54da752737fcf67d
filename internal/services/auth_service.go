package services

import (
	"context"
	"strings"

	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/models"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/session"
)

const msgFillAllFields = "Please fill in all fields"

// SignedIn is the store snapshot plus a local API token for its generation.
type SignedIn struct {
	Snapshot session.Snapshot
	Token    string
}

type AuthService struct {
	store  *session.Store
	tokens *session.TokenIssuer
}

func NewAuthService(store *session.Store, tokens *session.TokenIssuer) *AuthService {
	return &AuthService{store: store, tokens: tokens}
}

// Current returns the snapshot, with a token when signed in.
func (s *AuthService) Current() (*SignedIn, error) {
	return s.signedIn(s.store.Current())
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*SignedIn, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, invalid(msgFillAllFields)
	}
	if err := s.store.Login(ctx, email, password); err != nil {
		return nil, err
	}
	return s.signedIn(s.store.Current())
}

// Register creates the account. The role defaults to patient.
func (s *AuthService) Register(ctx context.Context, email, password, fullName string, role models.Role) (*session.RegisterResult, error) {
	email = strings.TrimSpace(email)
	fullName = strings.TrimSpace(fullName)
	if email == "" || password == "" || fullName == "" {
		return nil, invalid(msgFillAllFields)
	}
	if role == models.RoleUnknown {
		role = models.RolePatient
	}
	if !role.Valid() {
		return nil, invalid("Role must be patient or doctor")
	}
	return s.store.Register(ctx, email, password, fullName, role)
}

func (s *AuthService) DemoLogin(ctx context.Context, role models.Role) (*SignedIn, error) {
	if !role.Valid() {
		return nil, invalid("Role must be patient or doctor")
	}
	if err := s.store.DemoLogin(ctx, role); err != nil {
		return nil, err
	}
	return s.signedIn(s.store.Current())
}

func (s *AuthService) SignOut(ctx context.Context) error {
	return s.store.SignOut(ctx)
}

func (s *AuthService) signedIn(snap session.Snapshot) (*SignedIn, error) {
	out := &SignedIn{Snapshot: snap}
	if !snap.Authenticated() {
		return out, nil
	}
	token, err := s.tokens.Issue(snap)
	if err != nil {
		return nil, err
	}
	out.Token = token
	return out, nil
}
