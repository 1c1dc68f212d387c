package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// WorkerQuery filters the worker directory listing. Zero values match
// everything.
type WorkerQuery struct {
	Search          string
	Skill           string
	City            string
	ExperienceLevel string
	Limit           int
	Offset          int
}

// Profiles persists both profile variants and serves the worker directory.
type Profiles interface {
	ProfileStore
	SaveTx(ctx context.Context, tx bun.IDB, profile Profile) error
	ListWorkers(ctx context.Context, q WorkerQuery) ([]*WorkerProfile, error)
}

type profiles struct {
	db *bun.DB
}

var _ Profiles = (*profiles)(nil)

func NewProfilesRepository(db *bun.DB) Profiles {
	return &profiles{db: db}
}

// Get resolves the profile variant for the role. RoleUnset reads the
// worker-shaped base record.
func (p *profiles) Get(ctx context.Context, userID string, role Role) (Profile, error) {
	if role.IsEmployer() {
		record := &EmployerProfile{}
		if err := p.scanByUser(ctx, record, userID); err != nil {
			return nil, err
		}
		return record, nil
	}

	record := &WorkerProfile{}
	if err := p.scanByUser(ctx, record, userID); err != nil {
		return nil, err
	}
	return record, nil
}

func (p *profiles) scanByUser(ctx context.Context, model any, userID string) error {
	err := p.db.NewSelect().
		Model(model).
		Where("?TableAlias.user_id = ?", userID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return repository.NewRecordNotFound().
				WithMetadata(map[string]any{"user_id": userID})
		}
		return err
	}
	return nil
}

func (p *profiles) Save(ctx context.Context, profile Profile) error {
	return p.SaveTx(ctx, p.db, profile)
}

func (p *profiles) SaveTx(ctx context.Context, tx bun.IDB, profile Profile) error {
	switch record := profile.(type) {
	case *WorkerProfile:
		_, err := tx.NewInsert().
			Model(record).
			On("CONFLICT (user_id) DO UPDATE").
			Set("username = EXCLUDED.username").
			Set("mobile = EXCLUDED.mobile").
			Set("profile_photo = EXCLUDED.profile_photo").
			Set("preferred_job_roles = EXCLUDED.preferred_job_roles").
			Set("skills = EXCLUDED.skills").
			Set("address = EXCLUDED.address").
			Set("city = EXCLUDED.city").
			Set("experience_level = EXCLUDED.experience_level").
			Set("description = EXCLUDED.description").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		return err
	case *EmployerProfile:
		_, err := tx.NewInsert().
			Model(record).
			On("CONFLICT (user_id) DO UPDATE").
			Set("username = EXCLUDED.username").
			Set("mobile = EXCLUDED.mobile").
			Set("profile_photo = EXCLUDED.profile_photo").
			Set("company_name = EXCLUDED.company_name").
			Set("company_type = EXCLUDED.company_type").
			Set("industry = EXCLUDED.industry").
			Set("company_size = EXCLUDED.company_size").
			Set("website = EXCLUDED.website").
			Set("company_description = EXCLUDED.company_description").
			Set("address = EXCLUDED.address").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		return err
	default:
		return ErrProfileMismatch.WithMetadata(map[string]any{
			"variant": fmt.Sprintf("%T", profile),
		})
	}
}

// ListWorkers serves the worker directory. Search matches username, skills
// and description case-insensitively.
func (p *profiles) ListWorkers(ctx context.Context, q WorkerQuery) ([]*WorkerProfile, error) {
	var records []*WorkerProfile

	query := p.db.NewSelect().Model(&records)

	if q.Search != "" {
		term := "%" + strings.ToLower(q.Search) + "%"
		query.WhereGroup(" AND ", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.
				Where("LOWER(?TableAlias.username) LIKE ?", term).
				WhereOr("LOWER(?TableAlias.skills) LIKE ?", term).
				WhereOr("LOWER(?TableAlias.description) LIKE ?", term)
		})
	}

	if q.Skill != "" {
		query.Where("LOWER(?TableAlias.skills) LIKE ?", "%"+strings.ToLower(q.Skill)+"%")
	}

	if q.City != "" {
		query.Where("LOWER(?TableAlias.city) = ?", strings.ToLower(q.City))
	}

	if q.ExperienceLevel != "" {
		query.Where("?TableAlias.experience_level = ?", q.ExperienceLevel)
	}

	if q.Limit > 0 {
		query.Limit(q.Limit)
	}
	if q.Offset > 0 {
		query.Offset(q.Offset)
	}

	if err := query.Order("username ASC").Scan(ctx); err != nil {
		return nil, err
	}

	return records, nil
}
