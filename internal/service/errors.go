package service

import (
	"errors"
	"fmt"

	"github.com/Skotchmaster/yummy_recipes/internal/validation"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateIdentity  = errors.New("duplicate identity")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrNotFound           = errors.New("not found")
	ErrCategoryNotFound   = fmt.Errorf("category %w", ErrNotFound)
	ErrRecipeNotFound     = fmt.Errorf("recipe %w", ErrNotFound)
	ErrInfrastructure     = errors.New("infrastructure failure")
)

// ValidationError carries per-field messages keyed "<field>_message".
type ValidationError struct {
	Fields validation.Errors
	kind   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %v", e.kind, e.Fields)
}

func (e *ValidationError) Unwrap() error { return e.kind }

func invalid(fields validation.Errors) error {
	return &ValidationError{Fields: fields, kind: ErrValidation}
}

func duplicate(field, msg string) error {
	return &ValidationError{Fields: validation.Errors{field + "_message": msg}, kind: ErrDuplicateIdentity}
}

type Reason string

const (
	ReasonMalformedHeader Reason = "malformed_header"
	ReasonInvalidToken    Reason = "invalid_token"
	ReasonTokenExpired    Reason = "token_expired"
	ReasonUserNotFound    Reason = "user_not_found"
)

var reasonMessages = map[Reason]string{
	ReasonMalformedHeader: "Sorry, user could not be authenticated.",
	ReasonInvalidToken:    "Sorry, this token is invalid.",
	ReasonTokenExpired:    "Sorry, this token has expired. Please log in again.",
	ReasonUserNotFound:    "Sorry, user could not be found.",
}

type AuthError struct {
	Reason Reason
}

func (e *AuthError) Error() string { return "unauthenticated: " + string(e.Reason) }

func (e *AuthError) Unwrap() error { return ErrUnauthenticated }

func (e *AuthError) Message() string { return reasonMessages[e.Reason] }

func unauthenticated(r Reason) error { return &AuthError{Reason: r} }

func infra(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrInfrastructure, err)
}
