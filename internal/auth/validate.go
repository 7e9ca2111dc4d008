package auth

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"taskr/internal/service"
)

// Form messages shown next to the email and password fields.
const (
	MsgEmailRequired    = "Email is required"
	MsgEmailInvalid     = "Please enter a valid email address"
	MsgPasswordRequired = "Password is required"
	MsgPasswordShort    = "Password must be at least 6 characters"
)

// MinPasswordLength is the shortest password accepted by the form.
const MinPasswordLength = 6

// Field names used in validation errors.
const (
	FieldEmail    = "email"
	FieldPassword = "password"
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// Validate checks the login/signup form. It returns nil when both fields are
// acceptable.
func Validate(email, password string) *service.ValidationError {
	fields := make(map[string]string)

	switch {
	case strings.TrimSpace(email) == "":
		fields[FieldEmail] = MsgEmailRequired
	case !emailPattern.MatchString(email):
		fields[FieldEmail] = MsgEmailInvalid
	}

	switch {
	case password == "":
		fields[FieldPassword] = MsgPasswordRequired
	case utf8.RuneCountInString(password) < MinPasswordLength:
		fields[FieldPassword] = MsgPasswordShort
	}

	if len(fields) == 0 {
		return nil
	}
	return &service.ValidationError{Fields: fields}
}
