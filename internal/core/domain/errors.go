package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrPermissionDenied is returned whenever the policy engine denies an
	// operation. The message is part of the API contract.
	ErrPermissionDenied = errors.New("You don't have the permission")

	// ErrIncorrectPassword is returned when the current password supplied on a
	// self-service credential update does not verify against the stored hash.
	ErrIncorrectPassword = errors.New("Password is incorrect")

	// ErrUserNotFound is the repository-level sentinel for a missing record.
	// The service layer wraps it into a NotFoundError naming the operation.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials covers a failed login attempt.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidRole rejects a role outside the enumerated set.
	ErrInvalidRole = errors.New("invalid role")
)

// NotFoundError reports a missing target record. Op names the attempted
// operation ("update", "delete", ...) so update-not-found and delete-not-found
// stay distinct, caller-visible messages.
type NotFoundError struct {
	Op string
}

func (e *NotFoundError) Error() string {
	if e.Op == "" {
		return "User does not exist"
	}
	return fmt.Sprintf("User to %s does not exist", e.Op)
}

func (e *NotFoundError) Unwrap() error { return ErrUserNotFound }

// ConflictError reports a uniqueness violation on a single field. Field is
// the capitalized field name ("Email" or "Username").
type ConflictError struct {
	Field string
	Value string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s already exists.", e.Field, e.Value)
}
