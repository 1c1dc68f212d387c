package session

import (
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// DeterministicUserID derives a stable UUID from an email address so the same
// account registered twice maps to the same id. Falls back to a random UUID
// when derivation fails.
func DeterministicUserID(email string) uuid.UUID {
	if email != "" {
		if id, err := hashid.NewUUID(email); err == nil {
			return id
		}
	}
	return uuid.New()
}

func newTokenID() string {
	return uuid.NewString()
}
