package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/gateway"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/models"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/repository"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/storage"
)

type fakeAuth struct {
	mu          sync.Mutex
	token       string
	signIn      *models.Session
	signInErr   error
	signUp      *gateway.SignUpResult
	refreshed   *models.Session
	user        *models.User
	userErr     error
	signOuts    []string
	refreshUsed string
}

func (f *fakeAuth) SetAccessToken(token string) {
	f.mu.Lock()
	f.token = token
	f.mu.Unlock()
}

func (f *fakeAuth) currentToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeAuth) SignInWithPassword(_ context.Context, _, _ string) (*models.Session, error) {
	return f.signIn, f.signInErr
}

func (f *fakeAuth) SignUp(_ context.Context, _, _ string, _ map[string]string) (*gateway.SignUpResult, error) {
	return f.signUp, nil
}

func (f *fakeAuth) RefreshSession(_ context.Context, refreshToken string) (*models.Session, error) {
	f.refreshUsed = refreshToken
	if f.refreshed == nil {
		return nil, errors.New("Invalid Refresh Token")
	}
	return f.refreshed, nil
}

func (f *fakeAuth) GetUser(_ context.Context, _ string) (*models.User, error) {
	return f.user, f.userErr
}

func (f *fakeAuth) SignOut(_ context.Context, accessToken string) error {
	f.signOuts = append(f.signOuts, accessToken)
	return nil
}

type stubLive struct {
	repository.DataSource
	profiles map[string]*models.Profile
	err      error
	onFetch  func()
}

func (s *stubLive) Mode() repository.Mode { return repository.ModeLive }

func (s *stubLive) GetProfile(_ context.Context, userID string) (*models.Profile, error) {
	if s.onFetch != nil {
		s.onFetch()
	}
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *p
	return &out, nil
}

var testNow = time.Date(2026, time.March, 10, 8, 0, 0, 0, time.UTC)

func liveSession(id string) *models.Session {
	return &models.Session{
		AccessToken:  "at-" + id,
		RefreshToken: "rt-" + id,
		TokenType:    "bearer",
		ExpiresAt:    testNow.Add(time.Hour),
		User:         models.User{ID: id, Email: id + "@example.com"},
	}
}

type harness struct {
	store   *Store
	auth    *fakeAuth
	live    *stubLive
	storage *storage.MemoryStore
}

func newHarness() *harness {
	auth := &fakeAuth{}
	live := &stubLive{profiles: map[string]*models.Profile{
		"u1": {User: models.User{ID: "u1", FullName: "Jane"}, Role: models.RolePatient},
		"d1": {User: models.User{ID: "d1", FullName: "Dr. Who"}, Role: models.RoleDoctor},
		"x1": {User: models.User{ID: "x1"}, Role: models.RoleUnknown},
	}}
	mem := storage.NewMemoryStore(nil)
	store := New(Options{
		Auth:    auth,
		Live:    live,
		Fixture: repository.NewFixture(0, func() time.Time { return testNow }),
		Storage: mem,
		Now:     func() time.Time { return testNow },
	})
	return &harness{store: store, auth: auth, live: live, storage: mem}
}

func TestInitialStateIsUnknown(t *testing.T) {
	h := newHarness()
	snap := h.store.Current()
	assert.Equal(t, StateUnknown, snap.State)
	assert.NotEmpty(t, snap.Generation)
	assert.Nil(t, snap.Profile)
}

func TestDemoLogin(t *testing.T) {
	cases := []struct {
		role models.Role
		id   string
	}{
		{models.RolePatient, "demo-patient-id"},
		{models.RoleDoctor, "demo-doctor-id"},
	}
	for _, tc := range cases {
		t.Run(string(tc.role), func(t *testing.T) {
			h := newHarness()
			require.NoError(t, h.store.DemoLogin(context.Background(), tc.role))

			snap := h.store.Current()
			assert.Equal(t, StateAuthenticated, snap.State)
			assert.Equal(t, tc.role, snap.Profile.Role)
			assert.Equal(t, tc.id, snap.User.ID)
			assert.Equal(t, repository.ModeDemo, snap.Mode())
			assert.Equal(t, "demo-token", snap.Session.AccessToken)
			assert.Equal(t, testNow.Add(time.Hour), snap.Session.ExpiresAt)

			stored, err := h.storage.Load(context.Background())
			require.NoError(t, err)
			assert.Nil(t, stored)
		})
	}
}

func TestDemoLoginRejectsUnknownRole(t *testing.T) {
	h := newHarness()
	assert.ErrorIs(t, h.store.DemoLogin(context.Background(), models.Role("admin")), ErrInvalidRole)
	assert.Equal(t, StateUnknown, h.store.Current().State)
}

func TestCheckSessionWithoutPersistedSession(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.store.CheckSession(context.Background()))

	snap := h.store.Current()
	assert.False(t, snap.Authenticated())
	assert.Equal(t, StateUnauthenticated, snap.State)
	assert.Nil(t, snap.Profile)

	assert.ErrorIs(t, h.store.CheckSession(context.Background()), ErrAlreadyChecked)
	assert.Equal(t, snap.Generation, h.store.Current().Generation)
}

func TestCheckSessionRestores(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	require.NoError(t, h.storage.Save(ctx, liveSession("u1")))
	h.auth.user = &models.User{ID: "u1", Email: "u1@example.com"}

	require.NoError(t, h.store.CheckSession(ctx))

	snap := h.store.Current()
	assert.Equal(t, StateAuthenticated, snap.State)
	assert.Equal(t, models.RolePatient, snap.Role())
	assert.Equal(t, repository.ModeLive, snap.Mode())
	assert.Equal(t, "at-u1", h.auth.token)
}

func TestCheckSessionRefreshesExpired(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	expired := liveSession("u1")
	expired.ExpiresAt = testNow.Add(-time.Minute)
	require.NoError(t, h.storage.Save(ctx, expired))
	h.auth.refreshed = liveSession("u1")
	h.auth.refreshed.AccessToken = "at-fresh"
	h.auth.user = &models.User{ID: "u1"}

	require.NoError(t, h.store.CheckSession(ctx))

	assert.Equal(t, "rt-u1", h.auth.refreshUsed)
	snap := h.store.Current()
	require.True(t, snap.Authenticated())
	assert.Equal(t, "at-fresh", snap.Session.AccessToken)

	stored, err := h.storage.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "at-fresh", stored.AccessToken)
}

func TestCheckSessionRejectedClearsStorage(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	require.NoError(t, h.storage.Save(ctx, liveSession("u1")))
	h.auth.userErr = &gateway.Error{Status: 401, Message: "invalid JWT"}

	err := h.store.CheckSession(ctx)
	require.Error(t, err)

	snap := h.store.Current()
	assert.Equal(t, StateUnauthenticated, snap.State)
	assert.Nil(t, snap.User)
	stored, err := h.storage.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestCheckSessionWithoutGateway(t *testing.T) {
	mem := storage.NewMemoryStore(nil)
	require.NoError(t, mem.Save(context.Background(), liveSession("u1")))
	store := New(Options{Storage: mem})

	assert.ErrorIs(t, store.CheckSession(context.Background()), ErrGatewayUnavailable)
	assert.Equal(t, StateUnauthenticated, store.Current().State)
}

func TestSetSessionNilAlwaysClears(t *testing.T) {
	ctx := context.Background()

	fromUnknown := newHarness()
	require.NoError(t, fromUnknown.store.SetSession(ctx, nil))

	fromDemo := newHarness()
	require.NoError(t, fromDemo.store.DemoLogin(ctx, models.RoleDoctor))
	require.NoError(t, fromDemo.store.SetSession(ctx, nil))

	fromLive := newHarness()
	require.NoError(t, fromLive.store.SetSession(ctx, liveSession("u1")))
	require.NoError(t, fromLive.store.SetSession(ctx, nil))

	for _, h := range []*harness{fromUnknown, fromDemo, fromLive} {
		snap := h.store.Current()
		assert.Equal(t, StateUnauthenticated, snap.State)
		assert.Nil(t, snap.Session)
		assert.Nil(t, snap.User)
		assert.Nil(t, snap.Profile)
		assert.Nil(t, snap.Source)
	}
}

func TestSetSessionPersistsLiveSession(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	require.NoError(t, h.store.SetSession(ctx, liveSession("d1")))

	snap := h.store.Current()
	assert.Equal(t, models.RoleDoctor, snap.Role())
	assert.Equal(t, "Dr. Who", snap.Profile.FullName)

	stored, err := h.storage.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "d1", stored.User.ID)
}

func TestSetSessionProfileFailureLeavesUnauthenticated(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	require.NoError(t, h.store.DemoLogin(ctx, models.RolePatient))

	err := h.store.SetSession(ctx, liveSession("ghost"))
	assert.ErrorIs(t, err, ErrNoProfile)

	snap := h.store.Current()
	assert.Equal(t, StateUnauthenticated, snap.State)
	assert.Nil(t, snap.User)
	assert.Nil(t, snap.Profile)
	assert.Empty(t, h.auth.token)
}

func TestSetSessionKeepsUnknownRole(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.store.SetSession(context.Background(), liveSession("x1")))

	snap := h.store.Current()
	assert.True(t, snap.Authenticated())
	assert.Equal(t, models.RoleUnknown, snap.Role())
}

func TestSignOutIsIdempotent(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	require.NoError(t, h.store.SetSession(ctx, liveSession("u1")))

	require.NoError(t, h.store.SignOut(ctx))
	once := h.store.Current()
	require.NoError(t, h.store.SignOut(ctx))
	twice := h.store.Current()

	assert.Equal(t, once, twice)
	assert.Equal(t, StateUnauthenticated, twice.State)
	assert.Equal(t, []string{"at-u1"}, h.auth.signOuts)

	stored, err := h.storage.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestSignOutSkipsGatewayForDemo(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	require.NoError(t, h.store.DemoLogin(ctx, models.RolePatient))
	require.NoError(t, h.store.SignOut(ctx))

	assert.Empty(t, h.auth.signOuts)
	assert.Equal(t, StateUnauthenticated, h.store.Current().State)
}

func TestCheckRejectsOlderGeneration(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	require.NoError(t, h.store.DemoLogin(ctx, models.RolePatient))
	old := h.store.Current().Generation

	_, err := h.store.Check(old)
	require.NoError(t, err)

	require.NoError(t, h.store.DemoLogin(ctx, models.RoleDoctor))
	_, err = h.store.Check(old)
	assert.ErrorIs(t, err, ErrStaleSession)

	require.NoError(t, h.store.SignOut(ctx))
	_, err = h.store.Check(h.store.Current().Generation)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestLateProfileFetchIsDiscarded(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.live.onFetch = func() {
		h.live.onFetch = nil
		require.NoError(t, h.store.DemoLogin(ctx, models.RoleDoctor))
	}

	err := h.store.SetSession(ctx, liveSession("u1"))
	assert.ErrorIs(t, err, ErrStaleSession)

	snap := h.store.Current()
	assert.Equal(t, repository.ModeDemo, snap.Mode())
	assert.Equal(t, "demo-doctor-id", snap.User.ID)
}

func TestSupersededBindResetsAccessToken(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.live.onFetch = func() {
		h.live.onFetch = nil
		require.NoError(t, h.store.SignOut(ctx))
	}

	err := h.store.SetSession(ctx, liveSession("u1"))
	assert.ErrorIs(t, err, ErrStaleSession)
	assert.Equal(t, StateUnauthenticated, h.store.Current().State)
	assert.Empty(t, h.auth.currentToken())
}

func TestSupersededBindKeepsWinnerToken(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.live.onFetch = func() {
		h.live.onFetch = nil
		require.NoError(t, h.store.SetSession(ctx, liveSession("d1")))
	}

	err := h.store.SetSession(ctx, liveSession("u1"))
	assert.ErrorIs(t, err, ErrStaleSession)
	assert.Equal(t, "d1", h.store.Current().User.ID)
	assert.Equal(t, "at-d1", h.auth.currentToken())
}

func TestSubscribe(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	var states []State
	unsubscribe := h.store.Subscribe(func(s Snapshot) { states = append(states, s.State) })

	require.NoError(t, h.store.DemoLogin(ctx, models.RolePatient))
	require.NoError(t, h.store.SignOut(ctx))
	unsubscribe()
	require.NoError(t, h.store.DemoLogin(ctx, models.RolePatient))

	assert.Equal(t, []State{StateAuthenticated, StateUnauthenticated}, states)
}

func TestLoginAndRegister(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	h.auth.signInErr = &gateway.Error{Status: 400, Message: "Invalid login credentials"}
	err := h.store.Login(ctx, "u1@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid login credentials", err.Error())
	assert.Equal(t, StateUnknown, h.store.Current().State)

	h.auth.signInErr = nil
	h.auth.signIn = liveSession("u1")
	require.NoError(t, h.store.Login(ctx, "u1@example.com", "secret"))
	assert.Equal(t, models.RolePatient, h.store.Current().Role())

	h.auth.signUp = &gateway.SignUpResult{User: models.User{ID: "new"}}
	result, err := h.store.Register(ctx, "new@example.com", "secret", "New Person", models.RoleDoctor)
	require.NoError(t, err)
	assert.True(t, result.NeedsConfirmation)
	assert.Equal(t, "u1", h.store.Current().User.ID)

	_, err = h.store.Register(ctx, "new@example.com", "secret", "New Person", models.Role("nurse"))
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestRefreshProfile(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	require.NoError(t, h.store.SetSession(ctx, liveSession("u1")))
	gen := h.store.Current().Generation

	h.live.profiles["u1"].FullName = "Jane Updated"
	profile, err := h.store.RefreshProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Jane Updated", profile.FullName)

	snap := h.store.Current()
	assert.Equal(t, gen, snap.Generation)
	assert.Equal(t, "Jane Updated", snap.Profile.FullName)
}

func TestTokenIssuer(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.store.DemoLogin(context.Background(), models.RoleDoctor))
	snap := h.store.Current()

	issuer := NewTokenIssuer("local-secret", time.Hour)
	signed, err := issuer.Issue(snap)
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(signed, claims, func(*jwt.Token) (any, error) { return issuer.Secret(), nil })
	require.NoError(t, err)
	assert.Equal(t, snap.Generation, claims[GenerationClaim])
	assert.Equal(t, "demo-doctor-id", claims["sub"])
	assert.Equal(t, "doctor", claims["role"])

	_, err = issuer.Issue(Snapshot{State: StateUnauthenticated})
	assert.Error(t, err)
}
