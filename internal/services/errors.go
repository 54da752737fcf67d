package services

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/session"
)

// ErrNotAllowed is returned when the signed-in user is not a party to the
// appointment being read or changed.
var ErrNotAllowed = errors.New("appointment belongs to another account")

// ValidationError is a missing or malformed field caught before any write.
// Message is shown to the user as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// PartialWriteError reports a multi-step write where the first step stuck and
// a later one failed.
type PartialWriteError struct {
	Message string
	Err     error
}

func (e *PartialWriteError) Error() string { return e.Message }
func (e *PartialWriteError) Unwrap() error { return e.Err }

// settle fails with ErrStaleSession when the store moved to another session
// while the operation ran, so the caller does not render the result into it.
func settle(store *session.Store, snap session.Snapshot) error {
	if store == nil {
		return nil
	}
	if store.Current().Generation != snap.Generation {
		return session.ErrStaleSession
	}
	return nil
}
