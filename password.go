package session

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
)

var (
	reUpper   = regexp.MustCompile(`[A-Z]`)
	reLower   = regexp.MustCompile(`[a-z]`)
	reDigit   = regexp.MustCompile(`[0-9]`)
	reSpecial = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>\/?]`)
)

// ValidatePassword enforces the registration password policy: at least 8
// characters with an uppercase letter, a lowercase letter, a number and a
// special character.
func ValidatePassword(password string) error {
	err := validation.Validate(password,
		validation.Required.Error("password is required"),
		validation.Length(8, 0).Error("password must be at least 8 characters long"),
		validation.Match(reUpper).Error("password must contain at least one uppercase letter"),
		validation.Match(reLower).Error("password must contain at least one lowercase letter"),
		validation.Match(reDigit).Error("password must contain at least one number"),
		validation.Match(reSpecial).Error("password must contain at least one special character"),
	)
	if err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "password does not meet policy").
			WithTextCode(textCodeRegistrationRejected)
	}
	return nil
}

// PasswordStrength scores a candidate password from 0 to 6 with a
// human-readable label.
func PasswordStrength(password string) (int, string) {
	strength := 0

	if len(password) >= 8 {
		strength++
	}
	if len(password) >= 12 {
		strength++
	}
	if reUpper.MatchString(password) {
		strength++
	}
	if reLower.MatchString(password) {
		strength++
	}
	if reDigit.MatchString(password) {
		strength++
	}
	if reSpecial.MatchString(password) {
		strength++
	}

	switch {
	case strength <= 2:
		return strength, "weak"
	case strength <= 4:
		return strength, "medium"
	default:
		return strength, "strong"
	}
}
