package session

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// RegisterAccountMessage carries everything needed to create an account in
// one transaction: credentials, optional contact details, optional role and
// the fields for the initial profile variant.
type RegisterAccountMessage struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
	Mobile   string `json:"mobile"`
	Role     Role   `json:"role"`
}

func (e RegisterAccountMessage) Type() string { return "account.register" }

// RegisterAccountHandler creates the user row, the optional role assignment
// and the initial profile atomically.
type RegisterAccountHandler struct {
	repo RepositoryManager
}

func NewRegisterAccountHandler(repo RepositoryManager) *RegisterAccountHandler {
	return &RegisterAccountHandler{repo: repo}
}

func (h *RegisterAccountHandler) Execute(ctx context.Context, event RegisterAccountMessage) (*User, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterAccountHandler) execute(ctx context.Context, event RegisterAccountMessage) (*User, error) {
	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := HashPassword(event.Password)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user.PasswordHash = hash
		user.Email = event.Email
		user.Mobile = event.Mobile
		user.Username = event.Username

		if user, err = h.repo.Users().RegisterTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user").
				WithTextCode(textCodeRegistrationRejected)
		}

		if event.Role.IsSet() {
			if err := h.repo.RoleAssignments().SetTx(ctx, tx, user.ID.String(), event.Role); err != nil {
				return goerrors.Wrap(err, goerrors.CategoryOperation, "could not assign role")
			}
		}

		profile := DefaultProfile(user.ID.String(), user.Email, event.Role)
		switch p := profile.(type) {
		case *WorkerProfile:
			p.Mobile = event.Mobile
		case *EmployerProfile:
			p.Mobile = event.Mobile
		}

		if err := h.repo.Profiles().SaveTx(ctx, tx, profile); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryOperation, "could not create profile")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}

		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "account registration transaction failed")
	}

	return user, nil
}
