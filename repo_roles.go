package session

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// RoleAssignments persists the worker/employer designation, one row per
// user, last write wins.
type RoleAssignments interface {
	RoleStore
	SetTx(ctx context.Context, tx bun.IDB, userID string, role Role) error
}

type roleAssignments struct {
	db *bun.DB
}

var _ RoleAssignments = (*roleAssignments)(nil)

func NewRoleAssignmentsRepository(db *bun.DB) RoleAssignments {
	return &roleAssignments{db: db}
}

func (r *roleAssignments) Get(ctx context.Context, userID string) (Role, error) {
	record := &RoleAssignment{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.user_id = ?", userID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return RoleUnset, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"user_id": userID})
		}
		return RoleUnset, err
	}
	return record.Role, nil
}

func (r *roleAssignments) Set(ctx context.Context, userID string, role Role) error {
	return r.SetTx(ctx, r.db, userID, role)
}

func (r *roleAssignments) SetTx(ctx context.Context, tx bun.IDB, userID string, role Role) error {
	if !role.IsValid() {
		return ErrInvalidRole.WithMetadata(map[string]any{"role": string(role)})
	}

	record := &RoleAssignment{
		UserID: userID,
		Role:   role,
	}

	_, err := tx.NewInsert().
		Model(record).
		On("CONFLICT (user_id) DO UPDATE").
		Set("role = EXCLUDED.role").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}
