package session_test

import (
	"testing"
	"time"

	session "github.com/jobconnect/go-session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionObjectValid(t *testing.T) {
	sess := fakeSession("u-1", "alice@example.com")
	assert.True(t, sess.Valid())

	assert.False(t, (&session.SessionObject{}).Valid())
	assert.False(t, (*session.SessionObject)(nil).Valid())

	missingUser := &session.SessionObject{AccessToken: "tok"}
	assert.False(t, missingUser.Valid(), "a session without its user is invalid")
}

func TestSessionObjectClone(t *testing.T) {
	sess := fakeSession("u-1", "alice@example.com")
	sess.User.Metadata = map[string]any{"plan": "free"}

	dup := sess.Clone()
	require.NotNil(t, dup)
	dup.User.Metadata["plan"] = "pro"
	dup.AccessToken = "other"

	assert.Equal(t, "free", sess.User.Metadata["plan"])
	assert.Equal(t, "token-u-1", sess.AccessToken)
}

func TestSessionStringRedactsToken(t *testing.T) {
	sess := fakeSession("u-1", "alice@example.com")
	out := sess.String()
	assert.NotContains(t, out, sess.AccessToken)
	assert.Contains(t, out, "alice@example.com")
}

func TestUsernameFromEmail(t *testing.T) {
	assert.Equal(t, "alice", session.UsernameFromEmail("alice@example.com", "fb"))
	assert.Equal(t, "no-at-sign", session.UsernameFromEmail("no-at-sign", "fb"))
	assert.Equal(t, "fb", session.UsernameFromEmail("", "fb"))
}

func TestDeterministicUserIDIsStable(t *testing.T) {
	a := session.DeterministicUserID("alice@example.com")
	b := session.DeterministicUserID("alice@example.com")
	c := session.DeterministicUserID("bob@example.com")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestSessionFromClaims(t *testing.T) {
	tokens := session.NewTokenService([]byte("test-key"), 1, "jobconnect", nil, nil)

	raw, err := tokens.Generate(testIdentity{id: "u-1", email: "alice@example.com"}, session.RoleWorker)
	require.NoError(t, err)

	claims, err := tokens.Validate(raw)
	require.NoError(t, err)

	sess, err := session.SessionFromClaims(raw, claims)
	require.NoError(t, err)
	assert.Equal(t, "u-1", sess.UserID())
	assert.Equal(t, "alice@example.com", sess.User.Email)
	assert.WithinDuration(t, time.Now(), sess.User.CreatedAt, time.Minute)
}

type testIdentity struct {
	id, email, username string
}

func (i testIdentity) ID() string       { return i.id }
func (i testIdentity) Email() string    { return i.email }
func (i testIdentity) Username() string { return i.username }
