package jobs

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	session "github.com/jobconnect/go-session"
)

// ErrEmployerOnly is returned when a non-employer tries to post a job.
var ErrEmployerOnly = errors.New("only employers can post jobs", errors.CategoryAuthz).
	WithTextCode("EMPLOYER_ONLY").
	WithCode(errors.CodeForbidden)

// Service gates posting behind the employer role and exposes browsing.
type Service struct {
	repo   Repository
	logger session.Logger
}

// NewService builds a job service over the repository.
func NewService(repo Repository) *Service {
	return &Service{
		repo:   repo,
		logger: session.DefaultLogger(),
	}
}

// WithLogger replaces the default logger.
func (s *Service) WithLogger(logger session.Logger) *Service {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Post validates the payload and creates an opening for the signed-in
// employer. Workers and role-unset accounts are rejected.
func (s *Service) Post(ctx context.Context, employerID string, role session.Role, input PostJobInput) (*Job, error) {
	if employerID == "" {
		return nil, session.ErrNotAuthenticated
	}

	if !role.IsEmployer() {
		return nil, ErrEmployerOnly.WithMetadata(map[string]any{
			"role": role.String(),
		})
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	job := &Job{
		EmployerID:     employerID,
		Title:          input.Title,
		Company:        input.Company,
		Category:       input.Category,
		Location:       input.Location,
		JobType:        input.JobType,
		SalaryMin:      input.SalaryMin,
		SalaryMax:      input.SalaryMax,
		Description:    input.Description,
		RequiredSkills: input.RequiredSkills,
		Benefits:       input.Benefits,
		Urgent:         input.Urgent,
		Status:         StatusOpen,
	}

	created, err := s.repo.Post(ctx, job)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "creating job posting")
	}

	s.logger.Info("job posted: %s by %s", created.Title, employerID)
	return created, nil
}

// ClosePosting marks one of the employer's own postings closed. Closing a
// posting that belongs to another account fails with a not-found error.
func (s *Service) ClosePosting(ctx context.Context, employerID string, role session.Role, id uuid.UUID) error {
	if employerID == "" {
		return session.ErrNotAuthenticated
	}

	if !role.IsEmployer() {
		return ErrEmployerOnly.WithMetadata(map[string]any{
			"role": role.String(),
		})
	}

	if err := s.repo.Close(ctx, id, employerID); err != nil {
		return err
	}

	s.logger.Info("job closed: %s by %s", id, employerID)
	return nil
}

// Browse lists open postings with the query applied.
func (s *Service) Browse(ctx context.Context, q Query) ([]*Job, error) {
	return s.repo.ListOpen(ctx, q)
}

// MyPostings lists every posting owned by the employer, open or closed.
func (s *Service) MyPostings(ctx context.Context, employerID string) ([]*Job, error) {
	if employerID == "" {
		return nil, session.ErrNotAuthenticated
	}
	return s.repo.ListByEmployer(ctx, employerID)
}
