package session_test

import (
	"context"
	"sync"
	"time"

	session "github.com/jobconnect/go-session"
)

// fakeProvider is a configurable in-memory IdentityProvider. It registers
// accounts at sign-up and verifies them at sign-in the way the local
// provider does, without a database.
type fakeProvider struct {
	mu       sync.Mutex
	accounts map[string]fakeAccount
	record   *session.SessionObject

	signUpErr  error
	signInErr  error
	signOutErr error
	oauthURL   string
	oauthErr   error

	// signInStarted and signInRelease make concurrency tests
	// deterministic. Both are optional.
	signInStarted chan struct{}
	signInRelease chan struct{}

	listeners []func(session.AuthChange)
}

type fakeAccount struct {
	id       string
	password string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		accounts: map[string]fakeAccount{},
		oauthErr: session.ErrProviderUnavailable,
	}
}

func (f *fakeProvider) SignUp(ctx context.Context, input session.SignUpInput) (*session.SessionObject, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.accounts[input.Email]; exists {
		return nil, session.ErrRegistrationRejected
	}

	id := session.DeterministicUserID(input.Email).String()
	f.accounts[input.Email] = fakeAccount{id: id, password: input.Password}

	sess := fakeSession(id, input.Email)
	f.record = sess.Clone()
	return sess, nil
}

func (f *fakeProvider) SignInWithPassword(ctx context.Context, email, password string) (*session.SessionObject, error) {
	if f.signInStarted != nil {
		f.signInStarted <- struct{}{}
	}
	if f.signInRelease != nil {
		<-f.signInRelease
	}

	if f.signInErr != nil {
		return nil, f.signInErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	account, ok := f.accounts[email]
	if !ok {
		return nil, session.ErrNoAccount
	}
	if account.password != password {
		return nil, session.ErrInvalidCredentials
	}

	sess := fakeSession(account.id, email)
	f.record = sess.Clone()
	return sess, nil
}

func (f *fakeProvider) SignOut(ctx context.Context) error {
	if f.signOutErr != nil {
		return f.signOutErr
	}

	f.mu.Lock()
	f.record = nil
	f.mu.Unlock()

	f.emit(session.AuthChange{Event: session.AuthChangeSignedOut})
	return nil
}

// emit reports a provider-side session event to every subscriber, the way
// the local provider fans out auth changes.
func (f *fakeProvider) emit(change session.AuthChange) {
	f.mu.Lock()
	fns := append([]func(session.AuthChange){}, f.listeners...)
	f.mu.Unlock()

	for _, fn := range fns {
		fn(change)
	}
}

func (f *fakeProvider) SignInWithOAuth(ctx context.Context, provider string) (string, error) {
	if f.oauthErr != nil {
		return "", f.oauthErr
	}
	return f.oauthURL, nil
}

func (f *fakeProvider) GetSession(ctx context.Context) (*session.SessionObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.record == nil {
		return nil, nil
	}
	return f.record.Clone(), nil
}

func (f *fakeProvider) OnAuthStateChange(fn func(session.AuthChange)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, fn)
	return func() {}
}

func fakeSession(id, email string) *session.SessionObject {
	return &session.SessionObject{
		AccessToken: "token-" + id,
		User: session.SessionUser{
			ID:        id,
			Email:     email,
			CreatedAt: time.Now(),
		},
	}
}

// memRoleStore is an in-memory RoleStore.
type memRoleStore struct {
	mu    sync.Mutex
	roles map[string]session.Role

	setErr error
	getErr error
}

func newMemRoleStore() *memRoleStore {
	return &memRoleStore{roles: map[string]session.Role{}}
}

func (m *memRoleStore) Get(ctx context.Context, userID string) (session.Role, error) {
	if m.getErr != nil {
		return session.RoleUnset, m.getErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	role, ok := m.roles[userID]
	if !ok {
		return session.RoleUnset, nil
	}
	return role, nil
}

func (m *memRoleStore) Set(ctx context.Context, userID string, role session.Role) error {
	if m.setErr != nil {
		return m.setErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles[userID] = role
	return nil
}

// memProfileStore is an in-memory ProfileStore keyed by user id and variant.
type memProfileStore struct {
	mu      sync.Mutex
	workers map[string]*session.WorkerProfile
	company map[string]*session.EmployerProfile

	saveErr error
}

func newMemProfileStore() *memProfileStore {
	return &memProfileStore{
		workers: map[string]*session.WorkerProfile{},
		company: map[string]*session.EmployerProfile{},
	}
}

func (m *memProfileStore) Get(ctx context.Context, userID string, role session.Role) (session.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if role.IsEmployer() {
		if p, ok := m.company[userID]; ok {
			return p.Clone(), nil
		}
		return nil, nil
	}

	if p, ok := m.workers[userID]; ok {
		return p.Clone(), nil
	}
	return nil, nil
}

func (m *memProfileStore) Save(ctx context.Context, profile session.Profile) error {
	if m.saveErr != nil {
		return m.saveErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	switch p := profile.(type) {
	case *session.WorkerProfile:
		m.workers[p.UserID] = p.Clone().(*session.WorkerProfile)
	case *session.EmployerProfile:
		m.company[p.UserID] = p.Clone().(*session.EmployerProfile)
	}
	return nil
}

// captureNotifier records every notification in order.
type captureNotifier struct {
	mu    sync.Mutex
	items []session.Notification
}

func (c *captureNotifier) Notify(ctx context.Context, n session.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, n)
}

func (c *captureNotifier) all() []session.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]session.Notification(nil), c.items...)
}

func (c *captureNotifier) last() (session.Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.items) == 0 {
		return session.Notification{}, false
	}
	return c.items[len(c.items)-1], true
}

// captureSink records activity events.
type captureSink struct {
	mu     sync.Mutex
	events []session.ActivityEvent
}

func (c *captureSink) Record(ctx context.Context, event session.ActivityEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *captureSink) all() []session.ActivityEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]session.ActivityEvent(nil), c.events...)
}
