package social

import (
	"context"
	"strings"
)

// Registry holds the configured providers and issues the state-protected
// redirect URL that begins an OAuth flow.
type Registry struct {
	providers map[string]Provider
	state     StateManager
}

// NewRegistry builds a registry over the given state manager.
func NewRegistry(state StateManager, providers ...Provider) *Registry {
	r := &Registry{
		providers: map[string]Provider{},
		state:     state,
	}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register adds or replaces a provider under its own name.
func (r *Registry) Register(p Provider) {
	if p == nil {
		return
	}
	r.providers[strings.ToLower(p.Name())] = p
}

// Provider looks up a configured provider by name.
func (r *Registry) Provider(name string) (Provider, error) {
	p, ok := r.providers[strings.ToLower(name)]
	if !ok {
		return nil, ErrProviderNotFound.WithMetadata(map[string]any{
			"provider": name,
		})
	}
	return p, nil
}

// Names lists the configured provider names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}

// Begin encodes a fresh state parameter and returns the provider's
// authorization URL.
func (r *Registry) Begin(ctx context.Context, name, redirectURL string) (string, error) {
	p, err := r.Provider(name)
	if err != nil {
		return "", err
	}

	state, err := r.state.Encode(&OAuthState{
		Provider:    p.Name(),
		RedirectURL: redirectURL,
	})
	if err != nil {
		return "", err
	}

	return p.AuthCodeURL(state), nil
}

// Complete validates the callback state, exchanges the code and returns the
// normalized profile.
func (r *Registry) Complete(ctx context.Context, name, code, stateToken string) (*Profile, error) {
	p, err := r.Provider(name)
	if err != nil {
		return nil, err
	}

	state, err := r.state.Decode(stateToken)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(state.Provider, p.Name()) {
		return nil, ErrInvalidState.WithMetadata(map[string]any{
			"expected": p.Name(),
			"got":      state.Provider,
		})
	}

	token, err := p.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	profile, err := p.UserInfo(ctx, token)
	if err != nil {
		return nil, err
	}

	return profile, nil
}
