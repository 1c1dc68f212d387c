package session

import (
	"context"
	"time"
)

// State is the observable authentication state of the client.
type State string

const (
	// StateUnknown is the initial state, before the startup restore resolves.
	// Consumers must not trust the session value while in this state.
	StateUnknown State = "unknown"
	// StateAnonymous means no user is signed in.
	StateAnonymous State = "anonymous"
	// StateAuthenticated means a user and session are present; the role may
	// still be unset.
	StateAuthenticated State = "authenticated"
)

// TransitionContext is passed into hooks for additional processing.
type TransitionContext struct {
	From     State
	To       State
	UserID   string
	Metadata map[string]any
}

// TransitionHook is executed around a lifecycle transition.
type TransitionHook func(ctx context.Context, tc TransitionContext) error

// lifecycle validates state transitions and publishes activity events. The
// Manager owns one; it is not safe for use without external locking.
type lifecycle struct {
	transitions  map[State]map[State]struct{}
	now          func() time.Time
	activitySink ActivitySink
	logger       Logger
	beforeHooks  []TransitionHook
	afterHooks   []TransitionHook
}

func newLifecycle() *lifecycle {
	return &lifecycle{
		transitions: map[State]map[State]struct{}{
			StateUnknown: {
				StateAnonymous:     {},
				StateAuthenticated: {},
			},
			StateAnonymous: {
				StateAuthenticated: {},
			},
			StateAuthenticated: {
				// Replacing an active session (fresh sign-in) stays in
				// StateAuthenticated, handled as a self-transition below.
				StateAuthenticated: {},
				StateAnonymous:     {},
			},
		},
		now:          time.Now,
		activitySink: noopActivitySink{},
		logger:       defLogger{},
	}
}

func (lc *lifecycle) canTransition(from, to State) bool {
	if from == to && from != StateUnknown {
		return true
	}
	if allowed, ok := lc.transitions[from]; ok {
		_, exists := allowed[to]
		return exists
	}
	return false
}

// guard validates the transition and runs before-hooks. It returns the
// context handed to after-hooks on commit.
func (lc *lifecycle) guard(ctx context.Context, from, to State, userID string, metadata map[string]any) (TransitionContext, error) {
	tc := TransitionContext{
		From:     from,
		To:       to,
		UserID:   userID,
		Metadata: metadata,
	}

	if !lc.canTransition(from, to) {
		return tc, ErrInvalidTransition.WithMetadata(map[string]any{
			"from": string(from),
			"to":   string(to),
		})
	}

	for _, hook := range lc.beforeHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, tc); err != nil {
			return tc, err
		}
	}

	return tc, nil
}

func (lc *lifecycle) committed(ctx context.Context, tc TransitionContext, event ActivityEventType) {
	for _, hook := range lc.afterHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, tc); err != nil {
			lc.logger.Warn("after transition hook error: %v", err)
		}
	}

	lc.record(ctx, ActivityEvent{
		EventType: event,
		UserID:    tc.UserID,
		FromState: tc.From,
		ToState:   tc.To,
		Metadata:  tc.Metadata,
	})
}

func (lc *lifecycle) record(ctx context.Context, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = lc.now()
	}

	sink := normalizeActivitySink(lc.activitySink)
	if err := sink.Record(ctx, event); err != nil {
		lc.logger.Warn("activity sink record error: %v", err)
	}
}
