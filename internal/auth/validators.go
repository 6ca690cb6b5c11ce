package auth

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/farmstack/farm-backend/internal/apperror"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	phonePattern    = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
	namePattern     = regexp.MustCompile(`^[a-zA-Z\s]{1,50}$`)

	upperPattern   = regexp.MustCompile(`[A-Z]`)
	lowerPattern   = regexp.MustCompile(`[a-z]`)
	digitPattern   = regexp.MustCompile(`\d`)
	specialPattern = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>\/?]`)
)

// ValidateEmail normalizes and validates an address.
func ValidateEmail(email string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil || addr.Name != "" {
		return "", apperror.Invalid("email", "email address is not valid")
	}
	return strings.ToLower(addr.Address), nil
}

func ValidateUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if !usernamePattern.MatchString(username) {
		return "", apperror.Invalid("username",
			"Username must be 3-20 characters long and can only contain letters, numbers, and underscores.")
	}
	return username, nil
}

func ValidatePhoneNumber(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if !phonePattern.MatchString(phone) {
		return "", apperror.Invalid("phone_number",
			"Phone number must be in E.164 format (e.g., +1234567890)")
	}
	return phone, nil
}

func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if !namePattern.MatchString(name) {
		return "", apperror.Invalid("name",
			"Name must be 1-50 characters long and can only contain letters and spaces.")
	}
	return name, nil
}

// ValidateStrongPassword enforces length plus character-class checks.
func ValidateStrongPassword(password string) error {
	if len(password) < 8 {
		return apperror.Invalid("password", "Password must be at least 8 characters long")
	}
	checks := []struct {
		re  *regexp.Regexp
		msg string
	}{
		{upperPattern, "Password must contain at least one uppercase letter"},
		{lowerPattern, "Password must contain at least one lowercase letter"},
		{digitPattern, "Password must contain at least one digit"},
		{specialPattern, "Password must contain at least one special character"},
	}
	for _, c := range checks {
		if !c.re.MatchString(password) {
			return apperror.Invalid("password", c.msg)
		}
	}
	return nil
}
