package session

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventSignUpSuccess   ActivityEventType = "session.signup.success"
	ActivityEventSignUpFailure   ActivityEventType = "session.signup.failure"
	ActivityEventSignInSuccess   ActivityEventType = "session.signin.success"
	ActivityEventSignInFailure   ActivityEventType = "session.signin.failure"
	ActivityEventSignOut         ActivityEventType = "session.signout"
	ActivityEventRestored        ActivityEventType = "session.restored"
	ActivityEventRoleSelected    ActivityEventType = "session.role.selected"
	ActivityEventProfileUpdated  ActivityEventType = "session.profile.updated"
	ActivityEventSocialRedirect  ActivityEventType = "session.social.redirect"
	ActivityEventSocialUnwired   ActivityEventType = "session.social.unavailable"
)

// ActivityEvent captures audit-friendly information about a lifecycle action.
type ActivityEvent struct {
	EventType  ActivityEventType
	UserID     string
	FromState  State
	ToState    State
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}
