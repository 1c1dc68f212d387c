// Package jwks validates access tokens issued by an external identity
// provider that publishes its signing keys as a JWK Set.
package jwks

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	session "github.com/jobconnect/go-session"
)

// Config describes where the JWK Set lives and which tokens to accept.
type Config struct {
	// JWKSURL is the provider's JWK Set endpoint.
	JWKSURL string

	// Issuer, when set, is enforced against the iss claim.
	Issuer string

	// Audience, when set, is enforced against the aud claim.
	Audience []string

	// RefreshInterval bounds how often keys are refetched. Defaults to
	// one hour.
	RefreshInterval time.Duration

	Logger session.Logger
}

// TokenValidator validates externally issued JWTs against a cached JWK Set.
type TokenValidator struct {
	config Config
	jwks   *keyfunc.JWKS
}

var _ session.TokenValidator = (*TokenValidator)(nil)

// NewTokenValidator fetches the JWK Set and keeps it refreshed in the
// background until ctx is cancelled.
func NewTokenValidator(ctx context.Context, cfg Config) (*TokenValidator, error) {
	if cfg.JWKSURL == "" {
		return nil, fmt.Errorf("jwks: JWKSURL is required")
	}

	refresh := cfg.RefreshInterval
	if refresh == 0 {
		refresh = time.Hour
	}

	logger := cfg.Logger
	if logger == nil {
		logger = session.DefaultLogger()
	}

	set, err := keyfunc.Get(cfg.JWKSURL, keyfunc.Options{
		Ctx:             ctx,
		RefreshInterval: refresh,
		RefreshErrorHandler: func(err error) {
			logger.Warn("jwks refresh failed: %v", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("jwks: fetching key set: %w", err)
	}

	return &TokenValidator{
		config: cfg,
		jwks:   set,
	}, nil
}

// Validate implements session.TokenValidator.
func (v *TokenValidator) Validate(tokenString string) (session.AuthClaims, error) {
	claims := &session.JWTClaims{}

	opts := []jwt.ParserOption{}
	if v.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.config.Issuer))
	}
	for _, aud := range v.config.Audience {
		opts = append(opts, jwt.WithAudience(aud))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, v.jwks.Keyfunc, opts...)
	if err != nil {
		return nil, normalizeValidationError(err)
	}

	if !token.Valid {
		return nil, session.ErrTokenMalformed
	}

	return claims, nil
}

func normalizeValidationError(err error) error {
	if err == nil {
		return nil
	}

	clone := session.ErrTokenMalformed.Clone()
	if stderrors.Is(err, jwt.ErrTokenExpired) {
		clone = session.ErrTokenExpired.Clone()
	}

	clone.Source = err
	return clone.WithMetadata(map[string]any{
		"provider": "jwks",
		"cause":    err.Error(),
	})
}
