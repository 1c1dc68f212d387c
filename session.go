package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SessionUser is the user payload embedded in a persisted session record.
type SessionUser struct {
	ID        string         `json:"id"`
	Email     string         `json:"email"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// SessionObject is the persisted proof of authentication: an opaque access
// token plus the user it references. A session without a well-formed user is
// invalid and must never become observable.
type SessionObject struct {
	AccessToken string      `json:"access_token"`
	User        SessionUser `json:"user"`
}

// UserID returns the id of the user the session references.
func (s *SessionObject) UserID() string {
	if s == nil {
		return ""
	}
	return s.User.ID
}

// UserUUID parses the referenced user id as a UUID.
func (s *SessionObject) UserUUID() (uuid.UUID, error) {
	return uuid.Parse(s.UserID())
}

// Valid reports whether the record is well-formed enough to restore: a token
// and a user with id and email.
func (s *SessionObject) Valid() bool {
	if s == nil {
		return false
	}
	return s.AccessToken != "" && s.User.ID != "" && s.User.Email != ""
}

// MetadataString returns a string value from the session user metadata.
func (s *SessionObject) MetadataString(key string) string {
	if s == nil || s.User.Metadata == nil {
		return ""
	}
	if v, ok := s.User.Metadata[key].(string); ok {
		return v
	}
	return ""
}

// Clone returns a deep copy of the record.
func (s *SessionObject) Clone() *SessionObject {
	if s == nil {
		return nil
	}
	dup := *s
	if s.User.Metadata != nil {
		dup.User.Metadata = make(map[string]any, len(s.User.Metadata))
		for k, v := range s.User.Metadata {
			dup.User.Metadata[k] = v
		}
	}
	return &dup
}

func (s SessionObject) String() string {
	return fmt.Sprintf("user=%s email=%s token=%t", s.User.ID, s.User.Email, s.AccessToken != "")
}

// SessionFromClaims rebuilds a session record from validated token claims.
func SessionFromClaims(accessToken string, claims AuthClaims) (*SessionObject, error) {
	if claims == nil {
		return nil, ErrTokenMalformed
	}

	return &SessionObject{
		AccessToken: accessToken,
		User: SessionUser{
			ID:        claims.UserID(),
			Email:     claims.Email(),
			CreatedAt: claims.IssuedAt(),
		},
	}, nil
}

// UsernameFromEmail derives the default username from the local part of an
// email address, falling back to the given id.
func UsernameFromEmail(email, fallback string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	if email != "" {
		return email
	}
	return fallback
}
