package jobs

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository persists job postings.
type Repository interface {
	repository.Repository[*Job]

	Post(ctx context.Context, job *Job) (*Job, error)
	ListOpen(ctx context.Context, q Query) ([]*Job, error)
	ListByEmployer(ctx context.Context, employerID string) ([]*Job, error)
	Close(ctx context.Context, id uuid.UUID, employerID string) error
}

type repo struct {
	repository.Repository[*Job]
	db *bun.DB
}

var _ Repository = (*repo)(nil)

// NewRepository builds the bun-backed job repository.
func NewRepository(db *bun.DB) Repository {
	base := repository.NewRepository[*Job](db, repository.ModelHandlers[*Job]{
		NewRecord: func() *Job { return &Job{} },
		GetID: func(j *Job) uuid.UUID {
			if j == nil {
				return uuid.Nil
			}
			return j.ID
		},
		SetID: func(j *Job, id uuid.UUID) {
			if j != nil {
				j.ID = id
			}
		},
	})

	return &repo{
		Repository: base,
		db:         db,
	}
}

func (r *repo) Post(ctx context.Context, job *Job) (*Job, error) {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.Status == "" {
		job.Status = StatusOpen
	}
	return r.Repository.Create(ctx, job)
}

// ListOpen loads open postings and applies the query in memory, matching
// the browse page's filter semantics.
func (r *repo) ListOpen(ctx context.Context, q Query) ([]*Job, error) {
	var records []*Job
	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.status = ?", StatusOpen).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return FilterSort(records, q), nil
}

func (r *repo) ListByEmployer(ctx context.Context, employerID string) ([]*Job, error) {
	var records []*Job
	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.employer_id = ?", employerID).
		Order("posted_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Close marks a posting closed. The employer filter keeps one account from
// closing another's posting.
func (r *repo) Close(ctx context.Context, id uuid.UUID, employerID string) error {
	res, err := r.db.NewUpdate().
		Model((*Job)(nil)).
		Set("status = ?", StatusClosed).
		Where("id = ?", id).
		Where("employer_id = ?", employerID).
		Exec(ctx)
	if err != nil {
		return err
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{"job_id": id.String()})
	}
	return nil
}
