// Package github implements the GitHub OAuth provider.
package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jobconnect/go-session/social"
)

const (
	defaultAuthURL     = "https://github.com/login/oauth/authorize"
	defaultTokenURL    = "https://github.com/login/oauth/access_token"
	defaultUserInfoURL = "https://api.github.com/user"
	defaultEmailsURL   = "https://api.github.com/user/emails"
)

// Config holds GitHub OAuth configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	Scopes       []string

	AuthURL     string
	TokenURL    string
	UserInfoURL string
	EmailsURL   string

	HTTPClient *http.Client
}

// DefaultScopes returns the default GitHub scopes.
func DefaultScopes() []string {
	return []string{"read:user", "user:email"}
}

// Provider implements social.Provider for GitHub.
type Provider struct {
	config     Config
	httpClient *http.Client
}

var _ social.Provider = (*Provider)(nil)

// New creates a new GitHub provider.
func New(cfg Config) *Provider {
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = DefaultScopes()
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = defaultAuthURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = defaultTokenURL
	}
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = defaultUserInfoURL
	}
	if cfg.EmailsURL == "" {
		cfg.EmailsURL = defaultEmailsURL
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &Provider{
		config:     cfg,
		httpClient: client,
	}
}

// Name implements social.Provider.
func (p *Provider) Name() string {
	return "github"
}

// AuthCodeURL implements social.Provider.
func (p *Provider) AuthCodeURL(state string) string {
	params := url.Values{
		"client_id":    {p.config.ClientID},
		"redirect_uri": {p.config.CallbackURL},
		"scope":        {strings.Join(p.config.Scopes, " ")},
		"state":        {state},
	}

	return p.config.AuthURL + "?" + params.Encode()
}

// Exchange implements social.Provider.
func (p *Provider) Exchange(ctx context.Context, code string) (*social.Token, error) {
	data := url.Values{
		"client_id":     {p.config.ClientID},
		"client_secret": {p.config.ClientSecret},
		"code":          {code},
		"redirect_uri":  {p.config.CallbackURL},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, social.ErrTokenExchangeFailed.WithMetadata(map[string]any{
			"provider": p.Name(),
			"cause":    err.Error(),
		})
	}
	defer resp.Body.Close()

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		Scope       string `json:"scope"`
		Error       string `json:"error"`
		ErrorDesc   string `json:"error_description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, social.ErrTokenExchangeFailed.WithMetadata(map[string]any{
			"provider": p.Name(),
			"status":   resp.StatusCode,
		})
	}

	if resp.StatusCode != http.StatusOK || tokenResp.Error != "" || tokenResp.AccessToken == "" {
		return nil, social.ErrTokenExchangeFailed.WithMetadata(map[string]any{
			"provider":    p.Name(),
			"status":      resp.StatusCode,
			"error":       tokenResp.Error,
			"description": tokenResp.ErrorDesc,
		})
	}

	token := &social.Token{
		AccessToken: tokenResp.AccessToken,
		TokenType:   tokenResp.TokenType,
	}
	if tokenResp.Scope != "" {
		token.Scopes = strings.Split(tokenResp.Scope, ",")
	}

	return token, nil
}

// UserInfo implements social.Provider. GitHub may hide the email on the
// user endpoint, so a second call to the emails endpoint resolves the
// primary verified address.
func (p *Provider) UserInfo(ctx context.Context, token *social.Token) (*social.Profile, error) {
	var info struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
		HTMLURL   string `json:"html_url"`
	}
	if err := p.getJSON(ctx, p.config.UserInfoURL, token, &info); err != nil {
		return nil, err
	}

	profile := &social.Profile{
		ProviderUserID: strconv.FormatInt(info.ID, 10),
		Provider:       p.Name(),
		Email:          info.Email,
		Name:           info.Name,
		Username:       info.Login,
		AvatarURL:      info.AvatarURL,
	}

	if profile.Email == "" {
		email, verified, err := p.primaryEmail(ctx, token)
		if err != nil {
			return nil, err
		}
		profile.Email = email
		profile.EmailVerified = verified
	} else {
		profile.EmailVerified = true
	}

	return profile, nil
}

func (p *Provider) primaryEmail(ctx context.Context, token *social.Token) (string, bool, error) {
	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := p.getJSON(ctx, p.config.EmailsURL, token, &emails); err != nil {
		return "", false, err
	}

	for _, e := range emails {
		if e.Primary {
			return e.Email, e.Verified, nil
		}
	}
	if len(emails) > 0 {
		return emails[0].Email, emails[0].Verified, nil
	}

	return "", false, social.ErrUserInfoFailed.WithMetadata(map[string]any{
		"provider": p.Name(),
		"reason":   "no email available",
	})
}

func (p *Provider) getJSON(ctx context.Context, endpoint string, token *social.Token, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return social.ErrUserInfoFailed.WithMetadata(map[string]any{
			"provider": p.Name(),
			"cause":    err.Error(),
		})
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return social.ErrUserInfoFailed.WithMetadata(map[string]any{
			"provider": p.Name(),
			"status":   resp.StatusCode,
		})
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
