package local_test

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	session "github.com/jobconnect/go-session"
	"github.com/uptrace/bun"
)

// fakeRepo backs the provider with in-memory tables. The embedded
// repository interfaces cover the generic surface the provider never
// touches.
type fakeRepo struct {
	users    *fakeUsers
	roles    *fakeRoles
	profiles *fakeProfiles
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:    &fakeUsers{byEmail: map[string]*session.User{}},
		roles:    &fakeRoles{assigned: map[string]session.Role{}},
		profiles: &fakeProfiles{saved: map[string]session.Profile{}},
	}
}

func (r *fakeRepo) Users() session.Users                     { return r.users }
func (r *fakeRepo) RoleAssignments() session.RoleAssignments { return r.roles }
func (r *fakeRepo) Profiles() session.Profiles               { return r.profiles }
func (r *fakeRepo) Validate() error                          { return nil }
func (r *fakeRepo) MustValidate()                            {}

func (r *fakeRepo) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

type fakeUsers struct {
	session.Users

	mu      sync.Mutex
	byEmail map[string]*session.User
}

func (u *fakeUsers) Register(ctx context.Context, user *session.User) (*session.User, error) {
	return u.RegisterTx(ctx, nil, user)
}

func (u *fakeUsers) RegisterTx(ctx context.Context, tx bun.IDB, user *session.User) (*session.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(user.Email))
	user.Email = email
	if user.ID == uuid.Nil {
		user.ID = session.DeterministicUserID(email)
	}
	if user.Username == "" {
		user.Username = session.UsernameFromEmail(email, user.ID.String())
	}
	now := time.Now()
	user.CreatedAt = &now

	u.byEmail[email] = user
	return user, nil
}

func (u *fakeUsers) GetByEmail(ctx context.Context, email string) (*session.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	user, ok := u.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{"email": email})
	}
	return user, nil
}

func (u *fakeUsers) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*session.User, error) {
	return u.GetByEmail(ctx, email)
}

type fakeRoles struct {
	mu       sync.Mutex
	assigned map[string]session.Role
}

func (r *fakeRoles) Get(ctx context.Context, userID string) (session.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	role, ok := r.assigned[userID]
	if !ok {
		return session.RoleUnset, repository.NewRecordNotFound()
	}
	return role, nil
}

func (r *fakeRoles) Set(ctx context.Context, userID string, role session.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assigned[userID] = role
	return nil
}

func (r *fakeRoles) SetTx(ctx context.Context, tx bun.IDB, userID string, role session.Role) error {
	return r.Set(ctx, userID, role)
}

type fakeProfiles struct {
	mu    sync.Mutex
	saved map[string]session.Profile
}

func (p *fakeProfiles) Get(ctx context.Context, userID string, role session.Role) (session.Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saved[userID], nil
}

func (p *fakeProfiles) Save(ctx context.Context, profile session.Profile) error {
	return p.SaveTx(ctx, nil, profile)
}

func (p *fakeProfiles) SaveTx(ctx context.Context, tx bun.IDB, profile session.Profile) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saved[profile.ProfileUserID()] = profile
	return nil
}

func (p *fakeProfiles) ListWorkers(ctx context.Context, q session.WorkerQuery) ([]*session.WorkerProfile, error) {
	return nil, nil
}
