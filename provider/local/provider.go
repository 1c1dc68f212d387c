// Package local implements the identity provider backed by the module's own
// user store: bcrypt credentials, JWT access tokens and a credstore-persisted
// session record.
package local

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-errors"
	session "github.com/jobconnect/go-session"
	"github.com/jobconnect/go-session/credstore"
	"github.com/jobconnect/go-session/social"
)

// Provider implements session.IdentityProvider over the repository manager.
type Provider struct {
	repo     session.RepositoryManager
	tokens   session.TokenService
	creds    credstore.Store
	register *session.RegisterAccountHandler
	social   *social.Registry
	logger   session.Logger

	oauthRedirectURL string

	mu        sync.Mutex
	listeners map[int]func(session.AuthChange)
	nextID    int
}

var _ session.IdentityProvider = (*Provider)(nil)

// New wires the local provider.
func New(repo session.RepositoryManager, tokens session.TokenService, creds credstore.Store) *Provider {
	return &Provider{
		repo:      repo,
		tokens:    tokens,
		creds:     creds,
		register:  session.NewRegisterAccountHandler(repo),
		listeners: map[int]func(session.AuthChange){},
	}
}

// WithLogger replaces the default logger.
func (p *Provider) WithLogger(logger session.Logger) *Provider {
	if logger != nil {
		p.logger = logger
	}
	return p
}

// WithSocial enables OAuth sign-in through the given registry.
func (p *Provider) WithSocial(registry *social.Registry, redirectURL string) *Provider {
	p.social = registry
	p.oauthRedirectURL = redirectURL
	return p
}

// SignUp registers the account in one transaction, mints a token and
// persists the session record.
func (p *Provider) SignUp(ctx context.Context, input session.SignUpInput) (*session.SessionObject, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	if existing, err := p.repo.Users().GetByEmail(ctx, input.Email); err == nil && existing != nil {
		return nil, session.ErrRegistrationRejected.WithMetadata(map[string]any{
			"email":  input.Email,
			"reason": "email already registered",
		})
	} else if err != nil && !errors.IsNotFound(err) {
		return nil, errors.Wrap(err, errors.CategoryOperation, "checking existing account")
	}

	user, err := p.register.Execute(ctx, session.RegisterAccountMessage{
		Email:    input.Email,
		Password: input.Password,
		Username: input.Username,
		Mobile:   input.Mobile,
		Role:     input.Role,
	})
	if err != nil {
		return nil, err
	}

	return p.openSession(ctx, user, input.Role)
}

// SignInWithPassword verifies the bcrypt credential and opens a session. An
// unknown email fails with ErrNoAccount.
func (p *Provider) SignInWithPassword(ctx context.Context, email, password string) (*session.SessionObject, error) {
	user, err := p.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, session.ErrNoAccount.WithMetadata(map[string]any{"email": email})
		}
		return nil, errors.Wrap(err, errors.CategoryOperation, "looking up account")
	}

	if err := session.ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, session.ErrInvalidCredentials
	}

	role, err := p.repo.RoleAssignments().Get(ctx, user.ID.String())
	if err != nil {
		role = session.RoleUnset
	}

	return p.openSession(ctx, user, role)
}

// SignOut deletes the persisted session record. Account, role and profile
// rows are untouched.
func (p *Provider) SignOut(ctx context.Context) error {
	if err := p.creds.Clear(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "clearing session record")
	}

	p.emit(session.AuthChange{Event: session.AuthChangeSignedOut})
	return nil
}

// SignInWithOAuth begins the OAuth flow for the named provider. Without a
// registry every provider is unavailable.
func (p *Provider) SignInWithOAuth(ctx context.Context, name string) (string, error) {
	if p.social == nil {
		return "", session.ErrProviderUnavailable.WithMetadata(map[string]any{
			"provider": name,
		})
	}

	redirectURL, err := p.social.Begin(ctx, name, p.oauthRedirectURL)
	if err != nil {
		if errors.IsNotFound(err) {
			return "", session.ErrProviderUnavailable.WithMetadata(map[string]any{
				"provider": name,
			})
		}
		return "", err
	}

	return redirectURL, nil
}

// CompleteOAuth finishes the callback leg of an OAuth flow: it validates
// the state token, resolves the provider profile and opens a session for
// the matching account, registering one when the email is new.
func (p *Provider) CompleteOAuth(ctx context.Context, name, code, stateToken string) (*session.SessionObject, error) {
	if p.social == nil {
		return nil, session.ErrProviderUnavailable.WithMetadata(map[string]any{
			"provider": name,
		})
	}

	profile, err := p.social.Complete(ctx, name, code, stateToken)
	if err != nil {
		return nil, err
	}

	if profile.Email == "" || !profile.EmailVerified {
		return nil, social.ErrEmailNotVerified.WithMetadata(map[string]any{
			"provider": name,
		})
	}

	user, err := p.repo.Users().GetByEmail(ctx, profile.Email)
	if err != nil {
		if !errors.IsNotFound(err) {
			return nil, errors.Wrap(err, errors.CategoryOperation, "looking up account")
		}

		user, err = p.register.Execute(ctx, session.RegisterAccountMessage{
			Email:    profile.Email,
			Password: session.RandomPasswordHash(),
			Username: profile.Username,
		})
		if err != nil {
			return nil, err
		}
	}

	role, err := p.repo.RoleAssignments().Get(ctx, user.ID.String())
	if err != nil {
		role = session.RoleUnset
	}

	return p.openSession(ctx, user, role)
}

// GetSession loads and validates the persisted session record. A missing,
// expired or malformed record resolves to (nil, nil) after clearing the
// store, so startup restore lands in the anonymous state.
func (p *Provider) GetSession(ctx context.Context) (*session.SessionObject, error) {
	record, err := p.creds.Load(ctx)
	if err != nil {
		if credstore.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	if _, err := p.tokens.Validate(record.AccessToken); err != nil {
		if cerr := p.creds.Clear(ctx); cerr != nil {
			p.log().Warn("clearing stale session record: %v", cerr)
		}
		return nil, nil
	}

	return record, nil
}

// OnAuthStateChange registers fn for provider-side session events.
func (p *Provider) OnAuthStateChange(fn func(session.AuthChange)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++
	p.listeners[id] = fn

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.listeners, id)
	}
}

func (p *Provider) openSession(ctx context.Context, user *session.User, role session.Role) (*session.SessionObject, error) {
	token, err := p.tokens.Generate(identity{user: user}, role)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "minting access token")
	}

	createdAt := time.Now()
	if user.CreatedAt != nil {
		createdAt = *user.CreatedAt
	}

	sess := &session.SessionObject{
		AccessToken: token,
		User: session.SessionUser{
			ID:        user.ID.String(),
			Email:     user.Email,
			Metadata:  user.Metadata,
			CreatedAt: createdAt,
		},
	}

	if err := p.creds.Save(ctx, sess); err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "persisting session record")
	}

	p.emit(session.AuthChange{Event: session.AuthChangeSignedIn, Session: sess.Clone()})
	return sess, nil
}

func (p *Provider) emit(change session.AuthChange) {
	p.mu.Lock()
	fns := make([]func(session.AuthChange), 0, len(p.listeners))
	for _, fn := range p.listeners {
		if fn != nil {
			fns = append(fns, fn)
		}
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(change)
	}
}

func (p *Provider) log() session.Logger {
	if p.logger != nil {
		return p.logger
	}
	return session.DefaultLogger()
}

// identity adapts a stored user to the token service's identity contract.
type identity struct {
	user *session.User
}

func (i identity) ID() string       { return i.user.ID.String() }
func (i identity) Email() string    { return i.user.Email }
func (i identity) Username() string { return i.user.Username }
