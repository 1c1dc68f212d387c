// Package fiberauth guards Fiber routes with the module's token validation:
// it extracts the access token from the Authorization header or the session
// cookie, validates it and stores the claims in request locals.
package fiberauth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
	session "github.com/jobconnect/go-session"
)

const (
	// DefaultContextKey is the locals key claims are stored under.
	DefaultContextKey = "session_claims"

	// DefaultCookieName is the cookie carrying the access token.
	DefaultCookieName = "jobconnect_session"

	defaultAuthScheme = "Bearer"
)

// Config configures the guard.
type Config struct {
	// TokenValidator validates extracted tokens. Required.
	TokenValidator session.TokenValidator

	// ContextKey overrides DefaultContextKey.
	ContextKey string

	// CookieName overrides DefaultCookieName.
	CookieName string

	// AuthScheme overrides the Authorization header scheme.
	AuthScheme string

	// Filter skips the guard for matching requests.
	Filter func(*fiber.Ctx) bool

	// RequiredRole, when set, rejects tokens whose role claim differs.
	RequiredRole session.Role

	// ErrorHandler overrides the default 401 response.
	ErrorHandler fiber.ErrorHandler

	// Debug dumps validation failures to the log.
	Debug bool

	Logger session.Logger
}

// New builds the route guard.
func New(cfg Config) fiber.Handler {
	if cfg.TokenValidator == nil {
		panic("fiberauth: TokenValidator is required")
	}
	if cfg.ContextKey == "" {
		cfg.ContextKey = DefaultContextKey
	}
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	if cfg.AuthScheme == "" {
		cfg.AuthScheme = defaultAuthScheme
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = defaultErrorHandler(cfg)
	}

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		token := extractToken(c, cfg)
		if token == "" {
			return cfg.ErrorHandler(c, session.ErrNotAuthenticated)
		}

		claims, err := cfg.TokenValidator.Validate(token)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		if cfg.RequiredRole.IsSet() && claims.Role() != string(cfg.RequiredRole) {
			return cfg.ErrorHandler(c, session.ErrInvalidRole.WithMetadata(map[string]any{
				"required": string(cfg.RequiredRole),
				"got":      claims.Role(),
			}))
		}

		c.Locals(cfg.ContextKey, claims)
		c.SetUserContext(session.WithClaimsContext(c.UserContext(), claims))
		return c.Next()
	}
}

// ClaimsFromCtx returns the validated claims stored by the guard.
func ClaimsFromCtx(c *fiber.Ctx, contextKey string) (session.AuthClaims, bool) {
	if contextKey == "" {
		contextKey = DefaultContextKey
	}
	claims, ok := c.Locals(contextKey).(session.AuthClaims)
	return claims, ok
}

// SetSessionCookie stores the access token in the session cookie.
func SetSessionCookie(c *fiber.Ctx, name, token string, expires time.Time) {
	if name == "" {
		name = DefaultCookieName
	}
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    token,
		Expires:  expires,
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *fiber.Ctx, name string) {
	if name == "" {
		name = DefaultCookieName
	}
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

func extractToken(c *fiber.Ctx, cfg Config) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], cfg.AuthScheme) {
			return strings.TrimSpace(parts[1])
		}
	}

	return c.Cookies(cfg.CookieName)
}

func defaultErrorHandler(cfg Config) fiber.ErrorHandler {
	logger := cfg.Logger
	if logger == nil {
		logger = session.DefaultLogger()
	}

	return func(c *fiber.Ctx, err error) error {
		if cfg.Debug {
			logger.Debug("auth rejected: %s", print.MaybePrettyJSON(map[string]any{
				"path":  c.Path(),
				"error": err.Error(),
			}))
		}

		status := fiber.StatusUnauthorized
		if session.IsOperationInFlight(err) {
			status = fiber.StatusConflict
		}

		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}
