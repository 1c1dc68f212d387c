// Package credstore persists the session record that proves a signed-in
// identity between process restarts. A store holds at most one record;
// saving replaces it and clearing removes it without touching account data.
package credstore

import (
	"context"

	"github.com/goliatone/go-errors"
	session "github.com/jobconnect/go-session"
)

// DefaultKey is the storage key used when none is configured.
const DefaultKey = "jobconnect.session"

// ErrNotFound is returned by Load when no session record is persisted.
var ErrNotFound = errors.New("no session record", errors.CategoryNotFound).
	WithTextCode("SESSION_RECORD_NOT_FOUND").
	WithCode(errors.CodeNotFound)

// ErrInvalidRecord is returned by Save for a nil or malformed session.
var ErrInvalidRecord = errors.New("invalid session record", errors.CategoryValidation).
	WithTextCode("SESSION_RECORD_INVALID").
	WithCode(errors.CodeBadRequest)

// IsNotFound reports whether err means the store holds no record.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var rich *errors.Error
	if errors.As(err, &rich) {
		return rich.TextCode == "SESSION_RECORD_NOT_FOUND"
	}
	return false
}

// Store is the persistence boundary for the session record.
type Store interface {
	Load(ctx context.Context) (*session.SessionObject, error)
	Save(ctx context.Context, sess *session.SessionObject) error
	Clear(ctx context.Context) error
}
