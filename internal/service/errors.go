package service

import (
	"fmt"

	"github.com/google/uuid"
)

// ErrInvalidReference indicates a user reference that is neither a UUID nor an email
type ErrInvalidReference struct {
	Ref string
}

func (e *ErrInvalidReference) Error() string {
	return fmt.Sprintf("invalid user reference: %q", e.Ref)
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	Ref string
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.Ref)
}

// ErrNoAnswers indicates the user has not submitted onboarding answers
type ErrNoAnswers struct {
	UserID uuid.UUID
}

func (e *ErrNoAnswers) Error() string {
	return fmt.Sprintf("no onboarding answers for user %s", e.UserID)
}

// ErrBundleNotFound indicates no bundle has been generated for the user yet
type ErrBundleNotFound struct {
	UserID uuid.UUID
}

func (e *ErrBundleNotFound) Error() string {
	return fmt.Sprintf("no resource bundle for user %s", e.UserID)
}

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}
