package storage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/models"
)

func testSession() *models.Session {
	return &models.Session{
		AccessToken:  "at",
		RefreshToken: "rt",
		TokenType:    "bearer",
		ExpiresAt:    time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC),
		User:         models.User{ID: "u1", Email: "jane@example.com", FullName: "Jane"},
	}
}

func TestSealerRoundTrip(t *testing.T) {
	sealer, err := NewSealer("local secret")
	require.NoError(t, err)

	sealed, err := sealer.Seal([]byte("refresh-token"))
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "refresh-token")

	opened, err := sealer.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "refresh-token", string(opened))

	other, err := NewSealer("another secret")
	require.NoError(t, err)
	_, err = other.Open(sealed)
	assert.Error(t, err)

	_, err = sealer.Open([]byte("short"))
	assert.Error(t, err)
}

func TestNilSealerPassesThrough(t *testing.T) {
	sealer, err := NewSealer("")
	require.NoError(t, err)
	assert.Nil(t, sealer)

	out, err := sealer.Seal([]byte("plain"))
	require.NoError(t, err)
	assert.Equal(t, "plain", string(out))
}

func TestMemoryStore(t *testing.T) {
	sealer, err := NewSealer("secret")
	require.NoError(t, err)
	store := NewMemoryStore(sealer)
	ctx := context.Background()

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.Save(ctx, testSession()))
	got, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, testSession(), got)

	require.NoError(t, store.Clear(ctx))
	got, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sealer, err := NewSealer("secret")
	require.NoError(t, err)
	store := NewRedisStore(client, "medbook.auth.session", sealer)
	ctx := context.Background()

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.Save(ctx, testSession()))
	assert.True(t, mr.Exists("medbook.auth.session"))
	assert.Equal(t, time.Duration(0), mr.TTL("medbook.auth.session"))

	got, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, testSession(), got)

	require.NoError(t, store.Clear(ctx))
	assert.False(t, mr.Exists("medbook.auth.session"))
}

func TestRedisStoreCorruptPayload(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, mr.Set("k", "not a session"))

	_, err := NewRedisStore(client, "k", nil).Load(context.Background())
	assert.ErrorIs(t, err, ErrCorrupt)
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestGormStoreSave(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewGormStore(db, "medbook.auth.session", nil)

	mock.ExpectExec(`INSERT INTO "stored_sessions" .* ON CONFLICT \("key"\) DO UPDATE SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Save(context.Background(), testSession()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreLoad(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewGormStore(db, "medbook.auth.session", nil)

	payload, err := encode(nil, testSession())
	require.NoError(t, err)
	rows := sqlmock.NewRows([]string{"key", "payload", "user_id", "expires_at", "updated_at"}).
		AddRow("medbook.auth.session", payload, "u1", testSession().ExpiresAt, time.Now())
	mock.ExpectQuery(`SELECT \* FROM "stored_sessions" WHERE key = \$1`).WillReturnRows(rows)

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testSession(), got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreLoadMissing(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewGormStore(db, "medbook.auth.session", nil)

	mock.ExpectQuery(`SELECT \* FROM "stored_sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"key", "payload"}))

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGormStoreClear(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewGormStore(db, "medbook.auth.session", nil)

	mock.ExpectExec(`DELETE FROM "stored_sessions" WHERE key = \$1`).
		WithArgs("medbook.auth.session").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Clear(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
