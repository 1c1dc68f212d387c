package session

import (
	"github.com/goliatone/go-errors"
)

const (
	textCodeRegistrationRejected = "REGISTRATION_REJECTED"
	textCodeNoAccount            = "NO_ACCOUNT"
	textCodeInvalidCredentials   = "INVALID_CREDENTIALS"
	textCodeProviderUnavailable  = "PROVIDER_UNAVAILABLE"
	textCodeOperationInFlight    = "OPERATION_IN_FLIGHT"
	textCodeNotAuthenticated     = "NOT_AUTHENTICATED"
	textCodeInvalidTransition    = "INVALID_SESSION_TRANSITION"
	textCodeInvalidRole          = "INVALID_ROLE"
	textCodeProfileMismatch      = "PROFILE_VARIANT_MISMATCH"
)

// ErrRegistrationRejected is returned when the identity provider rejects a
// sign-up (duplicate email, malformed input, policy violation).
var ErrRegistrationRejected = errors.New("registration rejected", errors.CategoryValidation).
	WithTextCode(textCodeRegistrationRejected).
	WithCode(errors.CodeBadRequest)

// ErrNoAccount is returned when signing in with an email that was never
// registered.
var ErrNoAccount = errors.New("no account found, please sign up first", errors.CategoryAuth).
	WithTextCode(textCodeNoAccount).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidCredentials is returned when the password does not match the
// stored credential.
var ErrInvalidCredentials = errors.New("invalid email or password", errors.CategoryAuth).
	WithTextCode(textCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrProviderUnavailable is returned when an OAuth/social path is not
// configured or the provider cannot be reached.
var ErrProviderUnavailable = errors.New("identity provider unavailable", errors.CategoryOperation).
	WithTextCode(textCodeProviderUnavailable)

// ErrOperationInFlight is returned when a mutating session operation is
// attempted while another one is still pending.
var ErrOperationInFlight = errors.New("another session operation is in flight", errors.CategoryConflict).
	WithTextCode(textCodeOperationInFlight).
	WithCode(errors.CodeConflict)

// ErrNotAuthenticated is returned when an operation that requires an active
// session runs while the session is anonymous.
var ErrNotAuthenticated = errors.New("no active session", errors.CategoryAuth).
	WithTextCode(textCodeNotAuthenticated).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidTransition is returned when a requested lifecycle change is not
// allowed by the session state machine.
var ErrInvalidTransition = errors.New("invalid session state transition", errors.CategoryValidation).
	WithTextCode(textCodeInvalidTransition).
	WithCode(errors.CodeBadRequest)

// ErrInvalidRole is returned when a role value outside worker/employer is
// submitted.
var ErrInvalidRole = errors.New("role must be worker or employer", errors.CategoryValidation).
	WithTextCode(textCodeInvalidRole).
	WithCode(errors.CodeBadRequest)

// ErrProfileMismatch is returned when a profile patch targets a different
// profile variant than the one materialized for the current role.
var ErrProfileMismatch = errors.New("patch does not match profile variant", errors.CategoryValidation).
	WithTextCode(textCodeProfileMismatch).
	WithCode(errors.CodeBadRequest)

// ErrTokenExpired is returned for expired access tokens.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode("TOKEN_EXPIRED").
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens that cannot be parsed.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode("TOKEN_MALFORMED").
	WithCode(errors.CodeUnauthorized)

// hasTextCode walks the cause chain so predicates keep working after an
// error is wrapped with extra context.
func hasTextCode(err error, code string) bool {
	for err != nil {
		var rich *errors.Error
		if !errors.As(err, &rich) {
			return false
		}
		if rich.TextCode == code {
			return true
		}
		err = rich.Source
	}
	return false
}

// IsNoAccount will check for the unknown-account sign-in failure.
func IsNoAccount(err error) bool {
	return hasTextCode(err, textCodeNoAccount)
}

// IsRegistrationRejected will check for provider-side sign-up rejections.
func IsRegistrationRejected(err error) bool {
	return hasTextCode(err, textCodeRegistrationRejected)
}

// IsProviderUnavailable will check for unreachable or unconfigured providers.
func IsProviderUnavailable(err error) bool {
	return hasTextCode(err, textCodeProviderUnavailable)
}

// IsOperationInFlight will check for the concurrent-mutation guard.
func IsOperationInFlight(err error) bool {
	return hasTextCode(err, textCodeOperationInFlight)
}

// IsTokenExpiredError will check for expired tokens.
func IsTokenExpiredError(err error) bool {
	return hasTextCode(err, "TOKEN_EXPIRED")
}

// IsMalformedError will check for unparsable tokens.
func IsMalformedError(err error) bool {
	return hasTextCode(err, "TOKEN_MALFORMED")
}
