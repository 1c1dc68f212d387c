package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the identity record created at sign-up. It is immutable after
// creation except for the free-form metadata bag.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string         `bun:"email,notnull,unique" json:"email,omitempty"`
	Username      string         `bun:"username,notnull" json:"username,omitempty"`
	Mobile        string         `bun:"mobile" json:"mobile,omitempty"`
	PasswordHash  string         `bun:"password_hash" json:"-"`
	Metadata      map[string]any `bun:"metadata,type:jsonb" json:"metadata,omitempty"`
	CreatedAt     *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time     `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// AddMetadata will append information to the metadata attribute
func (u *User) AddMetadata(key string, val any) *User {
	if u.Metadata == nil {
		u.Metadata = make(map[string]any)
	}
	u.Metadata[key] = val
	return u
}

// RoleAssignment persists the worker/employer designation keyed by user id.
// It lives outside the session so it survives sign-out and re-login.
type RoleAssignment struct {
	bun.BaseModel `bun:"table:role_assignments,alias:ra"`
	UserID        string     `bun:"user_id,pk" json:"user_id,omitempty"`
	Role          Role       `bun:"role,notnull" json:"role,omitempty"`
	AssignedAt    *time.Time `bun:"assigned_at,nullzero,default:current_timestamp" json:"assigned_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Profile is the role-dependent record of user-supplied descriptive data.
// Concrete variants are WorkerProfile and EmployerProfile; callers switch on
// ProfileRole rather than sharing optional fields across variants.
type Profile interface {
	ProfileUserID() string
	ProfileRole() Role
	DisplayName() string
	Clone() Profile
}

// ProfilePatch applies a partial update to a Profile. Nil fields keep their
// prior value; applying a patch to the wrong variant fails with
// ErrProfileMismatch.
type ProfilePatch interface {
	Apply(Profile) (Profile, error)
}

// WorkerProfile is the worker variant. It also serves as the base shape
// materialized for accounts that have not picked a role yet.
type WorkerProfile struct {
	bun.BaseModel     `bun:"table:worker_profiles,alias:wp"`
	UserID            string     `bun:"user_id,pk" json:"user_id,omitempty"`
	Username          string     `bun:"username" json:"username,omitempty"`
	Mobile            string     `bun:"mobile" json:"mobile,omitempty"`
	ProfilePhoto      string     `bun:"profile_photo" json:"profile_photo,omitempty"`
	PreferredJobRoles []string   `bun:"preferred_job_roles,type:jsonb" json:"preferred_job_roles"`
	Skills            []string   `bun:"skills,type:jsonb" json:"skills"`
	Address           string     `bun:"address" json:"address,omitempty"`
	City              string     `bun:"city" json:"city,omitempty"`
	ExperienceLevel   string     `bun:"experience_level" json:"experience_level,omitempty"`
	Description       string     `bun:"description" json:"description,omitempty"`
	CreatedAt         *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt         *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

func (p *WorkerProfile) ProfileUserID() string { return p.UserID }
func (p *WorkerProfile) ProfileRole() Role     { return RoleWorker }
func (p *WorkerProfile) DisplayName() string   { return p.Username }

// Clone returns a deep copy so committed snapshots stay immutable.
func (p *WorkerProfile) Clone() Profile {
	if p == nil {
		return nil
	}
	dup := *p
	dup.PreferredJobRoles = append([]string(nil), p.PreferredJobRoles...)
	dup.Skills = append([]string(nil), p.Skills...)
	return &dup
}

// EmployerProfile is the employer variant with company details.
type EmployerProfile struct {
	bun.BaseModel      `bun:"table:employer_profiles,alias:ep"`
	UserID             string     `bun:"user_id,pk" json:"user_id,omitempty"`
	Username           string     `bun:"username" json:"username,omitempty"`
	Mobile             string     `bun:"mobile" json:"mobile,omitempty"`
	ProfilePhoto       string     `bun:"profile_photo" json:"profile_photo,omitempty"`
	CompanyName        string     `bun:"company_name" json:"company_name,omitempty"`
	CompanyType        string     `bun:"company_type" json:"company_type,omitempty"`
	Industry           string     `bun:"industry" json:"industry,omitempty"`
	CompanySize        string     `bun:"company_size" json:"company_size,omitempty"`
	Website            string     `bun:"website" json:"website,omitempty"`
	CompanyDescription string     `bun:"company_description" json:"company_description,omitempty"`
	Address            string     `bun:"address" json:"address,omitempty"`
	CreatedAt          *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt          *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

func (p *EmployerProfile) ProfileUserID() string { return p.UserID }
func (p *EmployerProfile) ProfileRole() Role     { return RoleEmployer }

func (p *EmployerProfile) DisplayName() string {
	if p.CompanyName != "" {
		return p.CompanyName
	}
	return p.Username
}

// Clone returns a deep copy so committed snapshots stay immutable.
func (p *EmployerProfile) Clone() Profile {
	if p == nil {
		return nil
	}
	dup := *p
	return &dup
}

// WorkerProfilePatch is the partial-update shape for the worker variant.
type WorkerProfilePatch struct {
	Username          *string
	Mobile            *string
	ProfilePhoto      *string
	PreferredJobRoles *[]string
	Skills            *[]string
	Address           *string
	City              *string
	ExperienceLevel   *string
	Description       *string
}

// Apply merges the patch into a WorkerProfile; unspecified fields retain
// their prior value.
func (wp WorkerProfilePatch) Apply(profile Profile) (Profile, error) {
	current, ok := profile.(*WorkerProfile)
	if !ok || current == nil {
		return nil, ErrProfileMismatch.WithMetadata(map[string]any{
			"patch": "worker",
		})
	}

	next := current.Clone().(*WorkerProfile)
	if wp.Username != nil {
		next.Username = *wp.Username
	}
	if wp.Mobile != nil {
		next.Mobile = *wp.Mobile
	}
	if wp.ProfilePhoto != nil {
		next.ProfilePhoto = *wp.ProfilePhoto
	}
	if wp.PreferredJobRoles != nil {
		next.PreferredJobRoles = append([]string(nil), (*wp.PreferredJobRoles)...)
	}
	if wp.Skills != nil {
		next.Skills = append([]string(nil), (*wp.Skills)...)
	}
	if wp.Address != nil {
		next.Address = *wp.Address
	}
	if wp.City != nil {
		next.City = *wp.City
	}
	if wp.ExperienceLevel != nil {
		next.ExperienceLevel = *wp.ExperienceLevel
	}
	if wp.Description != nil {
		next.Description = *wp.Description
	}
	return next, nil
}

// EmployerProfilePatch is the partial-update shape for the employer variant.
type EmployerProfilePatch struct {
	Username           *string
	Mobile             *string
	ProfilePhoto       *string
	CompanyName        *string
	CompanyType        *string
	Industry           *string
	CompanySize        *string
	Website            *string
	CompanyDescription *string
	Address            *string
}

// Apply merges the patch into an EmployerProfile; unspecified fields retain
// their prior value.
func (ep EmployerProfilePatch) Apply(profile Profile) (Profile, error) {
	current, ok := profile.(*EmployerProfile)
	if !ok || current == nil {
		return nil, ErrProfileMismatch.WithMetadata(map[string]any{
			"patch": "employer",
		})
	}

	next := current.Clone().(*EmployerProfile)
	if ep.Username != nil {
		next.Username = *ep.Username
	}
	if ep.Mobile != nil {
		next.Mobile = *ep.Mobile
	}
	if ep.ProfilePhoto != nil {
		next.ProfilePhoto = *ep.ProfilePhoto
	}
	if ep.CompanyName != nil {
		next.CompanyName = *ep.CompanyName
	}
	if ep.CompanyType != nil {
		next.CompanyType = *ep.CompanyType
	}
	if ep.Industry != nil {
		next.Industry = *ep.Industry
	}
	if ep.CompanySize != nil {
		next.CompanySize = *ep.CompanySize
	}
	if ep.Website != nil {
		next.Website = *ep.Website
	}
	if ep.CompanyDescription != nil {
		next.CompanyDescription = *ep.CompanyDescription
	}
	if ep.Address != nil {
		next.Address = *ep.Address
	}
	return next, nil
}

var (
	_ Profile      = (*WorkerProfile)(nil)
	_ Profile      = (*EmployerProfile)(nil)
	_ ProfilePatch = WorkerProfilePatch{}
	_ ProfilePatch = EmployerProfilePatch{}
)
