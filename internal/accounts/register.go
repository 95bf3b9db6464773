package accounts

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrUsernameTooShort = errors.New("username must be at least 3 characters long")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters long")
	ErrInvalidEmail     = errors.New("invalid email address supplied")
	ErrUsernameTaken    = errors.New("username is already taken")
	ErrEmailTaken       = errors.New("email is already registered")
	ErrBadCredentials   = errors.New("invalid credentials")
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type RegisterInput struct {
	Username string
	Password string
	Email    string
	Role     Role
}

// Normalize trims the username, lowercases the email and validates the
// result. Role defaults to customer.
func (in *RegisterInput) Normalize() error {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Role == "" {
		in.Role = RoleCustomer
	}
	if in.Role != RoleCustomer && in.Role != RoleSeller {
		return errors.New("role must be customer or seller")
	}
	if len(in.Username) < 3 {
		return ErrUsernameTooShort
	}
	if len(in.Password) < 6 {
		return ErrPasswordTooShort
	}
	if in.Email != "" && !emailRe.MatchString(in.Email) {
		return ErrInvalidEmail
	}
	return nil
}
