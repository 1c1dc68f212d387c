package session

import "strings"

// Role is the marketplace designation a user picks once after registration.
type Role string

const (
	// RoleWorker browses jobs and maintains a worker profile.
	RoleWorker Role = "worker"
	// RoleEmployer posts jobs and maintains a company profile.
	RoleEmployer Role = "employer"
	// RoleUnset is the state before the role-selection step completes.
	RoleUnset Role = ""
)

// IsValid checks if the role is one of the persistable roles. RoleUnset is a
// legal in-memory state but never a persisted value.
func (r Role) IsValid() bool {
	switch r {
	case RoleWorker, RoleEmployer:
		return true
	default:
		return false
	}
}

// IsSet reports whether the role-selection step has completed.
func (r Role) IsSet() bool {
	return r != RoleUnset
}

// IsWorker reports whether the role is the worker designation.
func (r Role) IsWorker() bool {
	return r == RoleWorker
}

// IsEmployer reports whether the role is the employer designation.
func (r Role) IsEmployer() bool {
	return r == RoleEmployer
}

func (r Role) String() string {
	if r == RoleUnset {
		return "unset"
	}
	return string(r)
}

// AllRoles returns the persistable roles.
func AllRoles() []Role {
	return []Role{RoleWorker, RoleEmployer}
}

// ParseRole safely parses a string into a Role. Matching is
// case-insensitive.
func ParseRole(s string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(s)))
	return role, role.IsValid()
}
