package validation

import (
	"regexp"
	"unicode/utf8"
)

// Registration rules run in a fixed order and only the first failure is
// reported, so client-facing messages stay stable.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type RuleError struct {
	Message string
}

func (e *RuleError) Error() string { return e.Message }

type RegisterInput struct {
	Name     *string
	Email    *string
	Password *string
	// EmailTaken is an advisory pre-check; the unique constraint on the store
	// remains the source of truth for duplicates.
	EmailTaken bool
}

// Register returns the first failing rule for a registration request, or nil.
// It performs no I/O; the caller decides what to do with the outcome.
func Register(in RegisterInput) *RuleError {
	switch {
	case in.Name == nil:
		return &RuleError{Message: "Please enter your name"}
	case utf8.RuneCountInString(*in.Name) < 3:
		return &RuleError{Message: "Name should be 3 character or more"}
	case utf8.RuneCountInString(*in.Name) > 20:
		return &RuleError{Message: "Name cannot be greater than 20 character"}
	case in.Email == nil:
		return &RuleError{Message: "Please enter your email"}
	case !emailPattern.MatchString(*in.Email):
		return &RuleError{Message: "Invalid email address"}
	case in.Password == nil:
		return &RuleError{Message: "Please enter your password"}
	case utf8.RuneCountInString(*in.Password) < 8:
		return &RuleError{Message: "Password should be greater than 8 character"}
	case utf8.RuneCountInString(*in.Password) > 20:
		return &RuleError{Message: "Password cannot be greater than 20 character"}
	case in.EmailTaken:
		return &RuleError{Message: "User already exist with this email"}
	default:
		return nil
	}
}
