package session

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/nyaruka/phonenumbers"
)

// DefaultMobileRegion is the region used to parse mobile numbers submitted
// without a country prefix.
var DefaultMobileRegion = "US"

// SignUpInput is the payload for registering a new account. Username and
// Mobile are optional; Role may be provided to skip the role-selection step.
type SignUpInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username,omitempty"`
	Mobile   string `json:"mobile,omitempty"`
	Role     Role   `json:"role,omitempty"`
}

// Validate checks the payload shape, password policy, optional mobile number
// and optional role. Failures carry the registration text code so callers
// can treat them as provider rejections.
func (i SignUpInput) Validate() error {
	err := validation.ValidateStruct(&i,
		validation.Field(&i.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&i.Password, validation.Required),
		validation.Field(&i.Username, validation.Length(0, 200)),
	)
	if err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "invalid registration payload").
			WithTextCode(textCodeRegistrationRejected)
	}

	if err := ValidatePassword(i.Password); err != nil {
		return err
	}

	if i.Mobile != "" {
		if _, err := NormalizeMobile(i.Mobile); err != nil {
			return err
		}
	}

	if i.Role != RoleUnset && !i.Role.IsValid() {
		return ErrInvalidRole.WithMetadata(map[string]any{"role": string(i.Role)})
	}

	return nil
}

// NormalizeMobile parses a mobile number and returns its E.164 form.
func NormalizeMobile(raw string) (string, error) {
	num, err := phonenumbers.Parse(raw, DefaultMobileRegion)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryValidation, "invalid mobile number").
			WithTextCode(textCodeRegistrationRejected)
	}

	if !phonenumbers.IsValidNumber(num) {
		return "", errors.New("invalid mobile number", errors.CategoryValidation).
			WithTextCode(textCodeRegistrationRejected).
			WithMetadata(map[string]any{"mobile": raw})
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}
