package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/gateway"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/models"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/repository"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/storage"
)

var (
	ErrAlreadyChecked     = errors.New("session already checked")
	ErrStaleSession       = errors.New("session changed while the request was in flight")
	ErrNotAuthenticated   = errors.New("not signed in")
	ErrGatewayUnavailable = errors.New("backend is not configured; use demo login")
	ErrInvalidRole        = errors.New("role must be patient or doctor")
	ErrNoProfile          = errors.New("no profile exists for this user")
)

const (
	demoAccessToken  = "demo-token"
	demoRefreshToken = "demo-refresh-token"
	demoSessionTTL   = time.Hour
)

// Auth is the part of the gateway the store drives.
type Auth interface {
	SetAccessToken(token string)
	SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error)
	SignUp(ctx context.Context, email, password string, metadata map[string]string) (*gateway.SignUpResult, error)
	RefreshSession(ctx context.Context, refreshToken string) (*models.Session, error)
	GetUser(ctx context.Context, accessToken string) (*models.User, error)
	SignOut(ctx context.Context, accessToken string) error
}

// Observer is told about every state transition.
type Observer interface {
	ObserveSessionTransition(state string, mode string)
}

type Options struct {
	// Auth and Live are nil when no backend is configured.
	Auth    Auth
	Live    repository.DataSource
	Fixture repository.DataSource
	Storage storage.Store

	Observer Observer
	Now      func() time.Time
}

// Store is the single authority on who is signed in and as what role. Every
// transition replaces the snapshot and its generation id.
type Store struct {
	auth     Auth
	live     repository.DataSource
	fixture  repository.DataSource
	storage  storage.Store
	observer Observer
	now      func() time.Time

	mu        sync.RWMutex
	snap      Snapshot
	checked   bool
	listeners map[int]func(Snapshot)
	nextID    int
}

func New(opts Options) *Store {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	store := opts.Storage
	if store == nil {
		store = storage.NewMemoryStore(nil)
	}
	return &Store{
		auth:      opts.Auth,
		live:      opts.Live,
		fixture:   opts.Fixture,
		storage:   store,
		observer:  opts.Observer,
		now:       now,
		snap:      Snapshot{State: StateUnknown, Generation: uuid.NewString()},
		listeners: make(map[int]func(Snapshot)),
	}
}

// Current returns a copy of the current snapshot.
func (s *Store) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.clone()
}

// Check returns the current snapshot if it is still the given generation and
// signed in.
func (s *Store) Check(generation string) (Snapshot, error) {
	snap := s.Current()
	if snap.Generation != generation {
		return snap, ErrStaleSession
	}
	if !snap.Authenticated() {
		return snap, ErrNotAuthenticated
	}
	return snap, nil
}

// Subscribe registers fn for every later transition and returns a function
// that removes it. fn runs on the goroutine that made the transition.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// CheckSession restores the persisted session, if any. It may run once; the
// store ends Authenticated or Unauthenticated. A returned error other than
// ErrAlreadyChecked explains why a stored session was dropped.
func (s *Store) CheckSession(ctx context.Context) error {
	s.mu.Lock()
	if s.checked {
		s.mu.Unlock()
		return ErrAlreadyChecked
	}
	s.checked = true
	gen := s.snap.Generation
	s.mu.Unlock()

	session, err := s.restore(ctx)
	if err != nil || session == nil {
		if clearErr := s.storage.Clear(ctx); clearErr != nil {
			slog.Warn("failed to clear stored session", "error", clearErr)
		}
		if commitErr := s.commit(Snapshot{State: StateUnauthenticated}, gen); commitErr != nil {
			return commitErr
		}
		return err
	}

	return s.bindLive(ctx, session, gen)
}

func (s *Store) restore(ctx context.Context) (*models.Session, error) {
	session, err := s.storage.Load(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}
	if s.auth == nil || s.live == nil {
		return nil, ErrGatewayUnavailable
	}

	if session.ExpiresAt.IsZero() {
		if claims, err := gateway.InspectAccessToken(session.AccessToken); err == nil {
			session.ExpiresAt = claims.Expiry()
		}
	}
	if session.Expired(s.now()) {
		if session.RefreshToken == "" {
			return nil, errors.New("stored session expired")
		}
		refreshed, err := s.auth.RefreshSession(ctx, session.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("failed to refresh stored session: %w", err)
		}
		session = refreshed
	}

	user, err := s.auth.GetUser(ctx, session.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("stored session rejected: %w", err)
	}
	session.User = *user
	return session, nil
}

// SetSession binds a freshly issued gateway session. A nil session signs the
// store out locally.
func (s *Store) SetSession(ctx context.Context, session *models.Session) error {
	gen := s.Current().Generation
	if session == nil {
		if err := s.storage.Clear(ctx); err != nil {
			slog.Warn("failed to clear stored session", "error", err)
		}
		return s.commit(Snapshot{State: StateUnauthenticated}, "")
	}
	return s.bindLive(ctx, session, gen)
}

func (s *Store) bindLive(ctx context.Context, session *models.Session, gen string) error {
	if s.auth == nil || s.live == nil {
		return ErrGatewayUnavailable
	}
	s.auth.SetAccessToken(session.AccessToken)

	profile, err := s.live.GetProfile(ctx, session.User.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = ErrNoProfile
		}
		s.auth.SetAccessToken("")
		if commitErr := s.commit(Snapshot{State: StateUnauthenticated}, gen); commitErr != nil {
			return commitErr
		}
		return err
	}

	user := session.User
	err = s.commit(Snapshot{
		State:   StateAuthenticated,
		Session: session,
		User:    &user,
		Profile: profile,
		Source:  s.live,
	}, gen)
	if err != nil {
		s.restoreAccessToken()
		return err
	}

	if err := s.storage.Save(ctx, session); err != nil {
		slog.Warn("failed to persist session", "error", err)
	}
	return nil
}

// restoreAccessToken puts back the token of whichever session won, after a
// superseded bind had swapped in its own.
func (s *Store) restoreAccessToken() {
	current := s.Current()
	if current.Mode() == repository.ModeLive && current.Session != nil {
		s.auth.SetAccessToken(current.Session.AccessToken)
		return
	}
	s.auth.SetAccessToken("")
}

// SignOut drops the session. The gateway sign-out is best effort and skipped
// for demo sessions. Signing out while already signed out changes nothing.
func (s *Store) SignOut(ctx context.Context) error {
	s.mu.RLock()
	prev := s.snap.clone()
	s.mu.RUnlock()

	if prev.State == StateUnauthenticated {
		return nil
	}

	if err := s.commit(Snapshot{State: StateUnauthenticated}, prev.Generation); err != nil {
		return err
	}

	if prev.Mode() == repository.ModeLive && prev.Session != nil && s.auth != nil {
		if err := s.auth.SignOut(ctx, prev.Session.AccessToken); err != nil {
			slog.Warn("gateway sign-out failed", "error", err)
		}
		s.auth.SetAccessToken("")
	}
	if err := s.storage.Clear(ctx); err != nil {
		slog.Warn("failed to clear stored session", "error", err)
	}
	return nil
}

// DemoLogin signs in as the fixed demo user for role without contacting the
// gateway. Demo sessions are never persisted.
func (s *Store) DemoLogin(ctx context.Context, role models.Role) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	if s.fixture == nil {
		return errors.New("demo mode is not available")
	}

	profile := repository.DemoProfile(role)
	user := profile.User
	session := &models.Session{
		AccessToken:  demoAccessToken,
		RefreshToken: demoRefreshToken,
		TokenType:    "bearer",
		ExpiresAt:    s.now().Add(demoSessionTTL),
		User:         user,
	}

	if err := s.commit(Snapshot{
		State:   StateAuthenticated,
		Session: session,
		User:    &user,
		Profile: &profile,
		Source:  s.fixture,
	}, ""); err != nil {
		return err
	}

	if s.auth != nil {
		s.auth.SetAccessToken("")
	}
	if err := s.storage.Clear(ctx); err != nil {
		slog.Warn("failed to clear stored session", "error", err)
	}
	return nil
}

// Login signs in against the gateway and binds the resulting session.
func (s *Store) Login(ctx context.Context, email, password string) error {
	if s.auth == nil {
		return ErrGatewayUnavailable
	}
	session, err := s.auth.SignInWithPassword(ctx, email, password)
	if err != nil {
		return err
	}
	return s.SetSession(ctx, session)
}

// RegisterResult tells the caller whether the new account still has to be
// confirmed by email before it can sign in.
type RegisterResult struct {
	User              models.User
	NeedsConfirmation bool
}

// Register creates an account. Backends that confirm email first return no
// session and the store stays as it was.
func (s *Store) Register(ctx context.Context, email, password, fullName string, role models.Role) (*RegisterResult, error) {
	if s.auth == nil {
		return nil, ErrGatewayUnavailable
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	result, err := s.auth.SignUp(ctx, email, password, map[string]string{
		"full_name": fullName,
		"role":      string(role),
	})
	if err != nil {
		return nil, err
	}
	if result.Session == nil {
		return &RegisterResult{User: result.User, NeedsConfirmation: true}, nil
	}
	if err := s.SetSession(ctx, result.Session); err != nil {
		return nil, err
	}
	return &RegisterResult{User: result.User}, nil
}

// RefreshProfile re-reads the profile row of the signed-in user, keeping the
// generation. Used after the profile screen saves.
func (s *Store) RefreshProfile(ctx context.Context) (*models.Profile, error) {
	snap := s.Current()
	if !snap.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	profile, err := snap.Source.GetProfile(ctx, snap.User.ID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.snap.Generation != snap.Generation {
		s.mu.Unlock()
		return nil, ErrStaleSession
	}
	s.snap.Profile = profile
	s.mu.Unlock()

	out := *profile
	return &out, nil
}

// commit installs next under a new generation. When expected is set and the
// store has moved on since, nothing changes and ErrStaleSession is returned.
func (s *Store) commit(next Snapshot, expected string) error {
	s.mu.Lock()
	if expected != "" && s.snap.Generation != expected {
		s.mu.Unlock()
		return ErrStaleSession
	}
	next.Generation = uuid.NewString()
	s.snap = next
	listeners := make([]func(Snapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	snap := s.snap.clone()
	s.mu.Unlock()

	slog.Info("session transition",
		"state", snap.State,
		"mode", snap.Mode(),
		"role", snap.Role(),
		"generation", snap.Generation,
	)
	if s.observer != nil {
		s.observer.ObserveSessionTransition(string(snap.State), string(snap.Mode()))
	}
	for _, fn := range listeners {
		fn(snap)
	}
	return nil
}
