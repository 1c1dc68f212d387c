package session

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an authenticated identity
type Identity interface {
	ID() string
	Email() string
	Username() string
}

// AuthChangeEvent enumerates session transitions reported by a provider.
type AuthChangeEvent string

const (
	AuthChangeSignedIn  AuthChangeEvent = "SIGNED_IN"
	AuthChangeSignedOut AuthChangeEvent = "SIGNED_OUT"
	AuthChangeRestored  AuthChangeEvent = "INITIAL_SESSION"
)

// AuthChange describes a session transition reported by the identity
// provider's own subscription channel.
type AuthChange struct {
	Event   AuthChangeEvent
	Session *SessionObject
}

// IdentityProvider is the external identity boundary the Manager consumes.
// Every implementation must be treated as fallible and asynchronous; the
// local provider and a hosted provider share this contract.
//
// GetSession returns (nil, nil) when no session record is persisted.
type IdentityProvider interface {
	SignUp(ctx context.Context, input SignUpInput) (*SessionObject, error)
	SignInWithPassword(ctx context.Context, email, password string) (*SessionObject, error)
	SignOut(ctx context.Context) error
	SignInWithOAuth(ctx context.Context, provider string) (redirectURL string, err error)
	GetSession(ctx context.Context) (*SessionObject, error)
	OnAuthStateChange(fn func(AuthChange)) (unsubscribe func())
}

// RoleStore persists the worker/employer designation keyed by user id.
type RoleStore interface {
	Get(ctx context.Context, userID string) (Role, error)
	Set(ctx context.Context, userID string, role Role) error
}

// ProfileStore persists role-dependent profiles keyed by user id. Get for
// RoleUnset resolves the worker-shaped base variant.
type ProfileStore interface {
	Get(ctx context.Context, userID string, role Role) (Profile, error)
	Save(ctx context.Context, profile Profile) error
}

// TokenService mints and validates access tokens for the local provider.
type TokenService interface {
	Generate(identity Identity, role Role) (string, error)
	Validate(tokenString string) (AuthClaims, error)
}

// Config holds token and transport options
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() int
	GetIssuer() string
	GetAudience() []string
	GetContextKey() string
}

// DefaultLogger returns the fallback logger used when none is configured.
func DefaultLogger() Logger {
	return defLogger{}
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] SESSION "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] SESSION "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] SESSION "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] SESSION "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
