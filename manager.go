package session

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-errors"
)

// Snapshot is the immutable view of the session handed to subscribers and
// returned by Manager.Snapshot. Session and Profile are defensive copies.
type Snapshot struct {
	State   State
	Loading bool
	User    *SessionUser
	Session *SessionObject
	Role    Role
	Profile Profile
}

// Authenticated reports whether the snapshot carries an active session.
func (s Snapshot) Authenticated() bool {
	return s.State == StateAuthenticated && s.Session != nil
}

// Manager owns the session lifecycle: it drives the identity provider,
// materializes role and profile on every authenticated transition, emits one
// notification per operation and keeps observable state all-or-nothing. A
// mutating call while another is pending fails with ErrOperationInFlight.
type Manager struct {
	provider     IdentityProvider
	materializer *Materializer
	roles        RoleStore
	profiles     ProfileStore
	lifecycle    *lifecycle
	notifier     Notifier
	logger       Logger

	mu       sync.Mutex
	busy     bool
	restored bool
	state    State
	loading  bool
	session  *SessionObject
	role     Role
	profile  Profile

	subMu  sync.Mutex
	subs   map[int]func(Snapshot)
	nextID int
}

// NewManager wires a Manager over an identity provider and the role/profile
// stores. Use the With* methods to replace the defaults.
func NewManager(provider IdentityProvider, roles RoleStore, profiles ProfileStore) *Manager {
	m := &Manager{
		provider:     provider,
		materializer: NewMaterializer(roles, profiles),
		roles:        roles,
		profiles:     profiles,
		lifecycle:    newLifecycle(),
		notifier:     noopNotifier{},
		logger:       defLogger{},
		state:        StateUnknown,
		loading:      true,
		subs:         map[int]func(Snapshot){},
	}

	if provider != nil {
		provider.OnAuthStateChange(m.onProviderChange)
	}

	return m
}

// onProviderChange reacts to session events the provider reports on its own,
// such as a shared credential store cleared by another process. Events fired
// during one of the Manager's own operations are already reflected by that
// operation's commit and fail the busy guard here.
func (m *Manager) onProviderChange(change AuthChange) {
	if change.Event != AuthChangeSignedOut {
		return
	}

	if err := m.begin(); err != nil {
		return
	}
	defer m.end()

	m.mu.Lock()
	from := m.state
	userID := m.session.UserID()
	m.mu.Unlock()

	if from != StateAuthenticated {
		return
	}

	m.commitWithUser(context.Background(), from, StateAnonymous, nil, Materialized{}, ActivityEventSignOut, nil, userID)
}

// WithLogger replaces the default logger.
func (m *Manager) WithLogger(logger Logger) *Manager {
	if logger != nil {
		m.logger = logger
		m.lifecycle.logger = logger
		m.materializer.WithLogger(logger)
	}
	return m
}

// WithNotifier sets the notification side channel.
func (m *Manager) WithNotifier(n Notifier) *Manager {
	m.notifier = normalizeNotifier(n)
	return m
}

// WithActivitySink sets the audit sink for lifecycle events.
func (m *Manager) WithActivitySink(sink ActivitySink) *Manager {
	m.lifecycle.activitySink = normalizeActivitySink(sink)
	return m
}

// WithClock overrides the time source used for activity timestamps.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	if now != nil {
		m.lifecycle.now = now
	}
	return m
}

// WithBeforeTransition registers a hook that can veto transitions.
func (m *Manager) WithBeforeTransition(hook TransitionHook) *Manager {
	m.lifecycle.beforeHooks = append(m.lifecycle.beforeHooks, hook)
	return m
}

// WithAfterTransition registers a hook that observes committed transitions.
func (m *Manager) WithAfterTransition(hook TransitionHook) *Manager {
	m.lifecycle.afterHooks = append(m.lifecycle.afterHooks, hook)
	return m
}

// Subscribe registers fn to receive a Snapshot after every committed
// transition. The returned function removes the subscription.
func (m *Manager) Subscribe(fn func(Snapshot)) func() {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	id := m.nextID
	m.nextID++
	m.subs[id] = fn

	return func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()
		delete(m.subs, id)
	}
}

// Snapshot returns the current observable session state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Loading reports whether the startup restore is still pending.
func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// CurrentSession returns a copy of the active session, or nil.
func (m *Manager) CurrentSession() *SessionObject {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Clone()
}

// CurrentRole returns the materialized role for the active session.
func (m *Manager) CurrentRole() Role {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.role
}

// CurrentProfile returns a copy of the materialized profile, or nil.
func (m *Manager) CurrentProfile() Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.profile == nil {
		return nil
	}
	return m.profile.Clone()
}

// Restore resolves the Unknown startup state from the provider's persisted
// session record. It runs at most once; later calls are no-ops. Restore is
// silent: it emits no notification, only an activity event.
func (m *Manager) Restore(ctx context.Context) error {
	if err := m.begin(); err != nil {
		return err
	}
	defer m.end()

	m.mu.Lock()
	if m.restored {
		m.mu.Unlock()
		return nil
	}
	m.restored = true
	from := m.state
	m.mu.Unlock()

	sess, err := m.provider.GetSession(ctx)
	if err != nil {
		m.logger.Warn("session restore failed: %v", err)
		sess = nil
	}

	if sess == nil || !sess.Valid() {
		m.commit(ctx, from, StateAnonymous, nil, Materialized{}, ActivityEventRestored, nil)
		return nil
	}

	mat := m.materializer.Resolve(ctx, sess.UserID(), sess.User.Email)
	m.commit(ctx, from, StateAuthenticated, sess, mat, ActivityEventRestored, nil)
	return nil
}

// SignUp registers a new account, signs it in and materializes role and
// profile. If input.Role is set the role is persisted as part of the same
// operation; a role-persistence failure rolls the provider session back so
// no partial account becomes observable.
func (m *Manager) SignUp(ctx context.Context, input SignUpInput) error {
	if err := m.begin(); err != nil {
		return err
	}
	defer m.end()

	if err := input.Validate(); err != nil {
		m.notifyError(ctx, "Registration failed", userMessage(err))
		return err
	}

	sess, err := m.provider.SignUp(ctx, input)
	if err != nil {
		m.recordFailure(ctx, ActivityEventSignUpFailure, input.Email, err)
		m.notifyError(ctx, "Registration failed", userMessage(err))
		return err
	}

	if input.Role.IsSet() && m.roles != nil {
		// The provider's registration transaction has already committed at
		// this point. The rollback below clears only the session; account
		// and profile rows survive and re-registering the same email maps
		// back to them via the deterministic user id.
		if rerr := m.roles.Set(ctx, sess.UserID(), input.Role); rerr != nil {
			if serr := m.provider.SignOut(ctx); serr != nil {
				m.logger.Error("rollback sign-out failed: %v", serr)
			}
			m.recordFailure(ctx, ActivityEventSignUpFailure, input.Email, rerr)
			m.notifyError(ctx, "Registration failed", "Could not save your role, please try again.")
			return errors.Wrap(rerr, errors.CategoryOperation, "persisting role during sign up")
		}
	}

	mat := m.materializer.Resolve(ctx, sess.UserID(), sess.User.Email)

	m.mu.Lock()
	from := m.state
	m.mu.Unlock()

	notif := &Notification{
		Kind:    NotificationSuccess,
		Title:   "Welcome to JobConnect!",
		Message: "Your account has been created.",
	}
	m.commit(ctx, from, StateAuthenticated, sess, mat, ActivityEventSignUpSuccess, notif)
	return nil
}

// SignIn authenticates an existing account. An unknown email fails with
// ErrNoAccount and leaves the session anonymous; success restores the
// persisted role and profile.
func (m *Manager) SignIn(ctx context.Context, email, password string) error {
	if err := m.begin(); err != nil {
		return err
	}
	defer m.end()

	sess, err := m.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		m.recordFailure(ctx, ActivityEventSignInFailure, email, err)
		m.notifyError(ctx, "Sign in failed", userMessage(err))
		return err
	}

	mat := m.materializer.Resolve(ctx, sess.UserID(), sess.User.Email)

	m.mu.Lock()
	from := m.state
	m.mu.Unlock()

	notif := &Notification{
		Kind:    NotificationSuccess,
		Title:   "Welcome back!",
		Message: "You are signed in.",
	}
	m.commit(ctx, from, StateAuthenticated, sess, mat, ActivityEventSignInSuccess, notif)
	return nil
}

// SignOut clears the active session and the in-memory role and profile.
// Persisted role and profile records are untouched and come back on the
// next sign-in.
func (m *Manager) SignOut(ctx context.Context) error {
	if err := m.begin(); err != nil {
		return err
	}
	defer m.end()

	m.mu.Lock()
	from := m.state
	userID := m.session.UserID()
	m.mu.Unlock()

	if from != StateAuthenticated {
		return ErrNotAuthenticated
	}

	if err := m.provider.SignOut(ctx); err != nil {
		m.notifyError(ctx, "Sign out failed", userMessage(err))
		return err
	}

	notif := &Notification{
		Kind:    NotificationSuccess,
		Title:   "Signed out",
		Message: "See you soon.",
	}
	m.commitWithUser(ctx, from, StateAnonymous, nil, Materialized{}, ActivityEventSignOut, notif, userID)
	return nil
}

// SetRole persists the worker/employer designation for the signed-in user
// and re-materializes the profile for the selected role. Calling it again
// with the same role leaves observable state unchanged.
func (m *Manager) SetRole(ctx context.Context, role Role) error {
	if err := m.begin(); err != nil {
		return err
	}
	defer m.end()

	if !role.IsValid() {
		return ErrInvalidRole.WithMetadata(map[string]any{"role": string(role)})
	}

	m.mu.Lock()
	from := m.state
	sess := m.session
	m.mu.Unlock()

	if from != StateAuthenticated || sess == nil {
		return ErrNotAuthenticated
	}

	if m.roles != nil {
		if err := m.roles.Set(ctx, sess.UserID(), role); err != nil {
			m.notifyError(ctx, "Role selection failed", "Could not save your role, please try again.")
			return errors.Wrap(err, errors.CategoryOperation, "persisting role selection")
		}
	}

	mat := Materialized{
		Role:    role,
		Profile: m.materializer.resolveProfile(ctx, sess.UserID(), sess.User.Email, role),
	}

	notif := &Notification{
		Kind:    NotificationSuccess,
		Title:   "Role selected",
		Message: "You are set up as " + role.String() + ".",
	}
	m.commit(ctx, from, StateAuthenticated, sess, mat, ActivityEventRoleSelected, notif)
	return nil
}

// UpdateProfile applies a patch to the materialized profile and persists the
// result. Nil patch fields keep the current values; a patch for the wrong
// profile variant fails with ErrProfileMismatch and changes nothing.
func (m *Manager) UpdateProfile(ctx context.Context, patch ProfilePatch) error {
	if err := m.begin(); err != nil {
		return err
	}
	defer m.end()

	m.mu.Lock()
	from := m.state
	sess := m.session
	current := m.profile
	role := m.role
	m.mu.Unlock()

	if from != StateAuthenticated || sess == nil {
		return ErrNotAuthenticated
	}

	if current == nil {
		current = DefaultProfile(sess.UserID(), sess.User.Email, role)
	}

	updated, err := patch.Apply(current)
	if err != nil {
		m.notifyError(ctx, "Profile update failed", userMessage(err))
		return err
	}

	if m.profiles != nil {
		if err := m.profiles.Save(ctx, updated); err != nil {
			m.notifyError(ctx, "Profile update failed", "Could not save your profile, please try again.")
			return errors.Wrap(err, errors.CategoryOperation, "persisting profile update")
		}
	}

	mat := Materialized{Role: role, Profile: updated}
	notif := &Notification{
		Kind:    NotificationSuccess,
		Title:   "Profile updated",
		Message: "Your changes have been saved.",
	}
	m.commit(ctx, from, StateAuthenticated, sess, mat, ActivityEventProfileUpdated, notif)
	return nil
}

// SignInWithGoogle starts the Google OAuth flow.
func (m *Manager) SignInWithGoogle(ctx context.Context) (string, error) {
	return m.signInWithOAuth(ctx, "google", "Google")
}

// SignInWithGithub starts the GitHub OAuth flow.
func (m *Manager) SignInWithGithub(ctx context.Context) (string, error) {
	return m.signInWithOAuth(ctx, "github", "GitHub")
}

// signInWithOAuth delegates to the provider's OAuth path. An unconfigured
// provider is not an error for callers: it surfaces as an informational
// notification and leaves the session untouched.
func (m *Manager) signInWithOAuth(ctx context.Context, name, label string) (string, error) {
	if err := m.begin(); err != nil {
		return "", err
	}
	defer m.end()

	redirectURL, err := m.provider.SignInWithOAuth(ctx, name)
	if err != nil {
		if IsProviderUnavailable(err) {
			m.lifecycle.record(ctx, ActivityEvent{
				EventType: ActivityEventSocialUnwired,
				Metadata:  map[string]any{"provider": name},
			})
			m.notify(ctx, Notification{
				Kind:    NotificationInfo,
				Title:   "Coming Soon",
				Message: label + " sign in is not available yet.",
			})
			return "", nil
		}
		m.notifyError(ctx, "Sign in failed", userMessage(err))
		return "", err
	}

	m.lifecycle.record(ctx, ActivityEvent{
		EventType: ActivityEventSocialRedirect,
		Metadata:  map[string]any{"provider": name},
	})
	m.notify(ctx, Notification{
		Kind:    NotificationInfo,
		Title:   "Continue with " + label,
		Message: "Redirecting you to " + label + ".",
	})
	return redirectURL, nil
}

func (m *Manager) begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.busy {
		return ErrOperationInFlight
	}
	m.busy = true
	return nil
}

func (m *Manager) end() {
	m.mu.Lock()
	m.busy = false
	m.mu.Unlock()
}

// commit validates the transition, swaps observable state atomically and
// fans out activity, notification and subscriber callbacks. On a lifecycle
// violation nothing changes and subscribers stay silent.
func (m *Manager) commit(ctx context.Context, from, to State, sess *SessionObject, mat Materialized, event ActivityEventType, notif *Notification) {
	m.commitWithUser(ctx, from, to, sess, mat, event, notif, sess.UserID())
}

func (m *Manager) commitWithUser(ctx context.Context, from, to State, sess *SessionObject, mat Materialized, event ActivityEventType, notif *Notification, userID string) {
	tc, err := m.lifecycle.guard(ctx, from, to, userID, nil)
	if err != nil {
		m.logger.Error("lifecycle commit rejected: %v", err)
		return
	}

	m.mu.Lock()
	m.state = to
	m.loading = false
	m.session = sess
	m.role = mat.Role
	m.profile = mat.Profile
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.lifecycle.committed(ctx, tc, event)

	if notif != nil {
		m.notify(ctx, *notif)
	}

	m.publish(snap)
}

func (m *Manager) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:   m.state,
		Loading: m.loading,
		Role:    m.role,
	}
	if m.session != nil {
		snap.Session = m.session.Clone()
		user := snap.Session.User
		snap.User = &user
	}
	if m.profile != nil {
		snap.Profile = m.profile.Clone()
	}
	return snap
}

func (m *Manager) publish(snap Snapshot) {
	m.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		if fn != nil {
			fns = append(fns, fn)
		}
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (m *Manager) notify(ctx context.Context, n Notification) {
	normalizeNotifier(m.notifier).Notify(ctx, n)
}

func (m *Manager) notifyError(ctx context.Context, title, message string) {
	m.notify(ctx, Notification{
		Kind:    NotificationError,
		Title:   title,
		Message: message,
	})
}

func (m *Manager) recordFailure(ctx context.Context, event ActivityEventType, email string, err error) {
	m.lifecycle.record(ctx, ActivityEvent{
		EventType: event,
		Metadata: map[string]any{
			"email": email,
			"error": err.Error(),
		},
	})
}

// userMessage extracts a message safe to surface in a notification.
func userMessage(err error) string {
	var rich *errors.Error
	if errors.As(err, &rich) && rich.Message != "" {
		return rich.Message
	}
	return err.Error()
}
