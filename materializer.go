package session

import (
	"context"

	"github.com/goliatone/go-errors"
)

// Materialized is the read model attached to an authenticated session: the
// user's role designation plus the profile shaped for that role.
type Materialized struct {
	Role    Role
	Profile Profile
}

// Materializer resolves role and profile data for a signed-in user. Resolve
// never fails: lookup errors degrade to defaults so a storage outage cannot
// block a sign-in.
type Materializer struct {
	roles    RoleStore
	profiles ProfileStore
	logger   Logger
}

// NewMaterializer builds a Materializer over the given stores.
func NewMaterializer(roles RoleStore, profiles ProfileStore) *Materializer {
	return &Materializer{
		roles:    roles,
		profiles: profiles,
		logger:   defLogger{},
	}
}

// WithLogger replaces the default logger.
func (m *Materializer) WithLogger(logger Logger) *Materializer {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// Resolve fetches role and profile for userID. Absent records resolve to
// RoleUnset and a worker-shaped base profile; email seeds the default
// username.
func (m *Materializer) Resolve(ctx context.Context, userID, email string) Materialized {
	role := m.resolveRole(ctx, userID)
	profile := m.resolveProfile(ctx, userID, email, role)
	return Materialized{Role: role, Profile: profile}
}

func (m *Materializer) resolveRole(ctx context.Context, userID string) Role {
	if m.roles == nil {
		return RoleUnset
	}

	role, err := m.roles.Get(ctx, userID)
	if err != nil {
		if !errors.IsNotFound(err) {
			m.logger.Warn("role lookup failed for %s: %v", userID, err)
		}
		return RoleUnset
	}

	if !role.IsValid() {
		return RoleUnset
	}

	return role
}

func (m *Materializer) resolveProfile(ctx context.Context, userID, email string, role Role) Profile {
	if m.profiles != nil {
		profile, err := m.profiles.Get(ctx, userID, role)
		if err == nil && profile != nil {
			return profile
		}
		if err != nil && !errors.IsNotFound(err) {
			m.logger.Warn("profile lookup failed for %s: %v", userID, err)
		}
	}

	return DefaultProfile(userID, email, role)
}

// DefaultProfile builds the profile a freshly registered account starts
// with. Employers get the employer variant; everyone else gets the
// worker-shaped base with empty skill and job-role lists.
func DefaultProfile(userID, email string, role Role) Profile {
	username := UsernameFromEmail(email, userID)

	if role.IsEmployer() {
		return &EmployerProfile{
			UserID:   userID,
			Username: username,
		}
	}

	return &WorkerProfile{
		UserID:            userID,
		Username:          username,
		PreferredJobRoles: []string{},
		Skills:            []string{},
	}
}
