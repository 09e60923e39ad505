package services

import (
	"fmt"
	"strings"
)

// ValidationError carries every rule an input violated.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// AuthError is returned when credentials or a session token are rejected.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// ConflictError is returned when a write would duplicate a unique record.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// NotFoundError is returned when a record does not exist or belongs to someone else.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// StorageError wraps a failure of the underlying store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

const (
	msgInvalidCredentials = "Invalid credentials"
	msgUserExists         = "User already exists"
	msgNotLoggedIn        = "User not logged in"
	msgNoToken            = "Authentication required: No token provided."
	msgBadToken           = "Authentication failed: Invalid or expired token."
	msgUserGone           = "Authentication failed: User not found."
	msgExpenseNotFound    = "Expense not found or unauthorized."
)
