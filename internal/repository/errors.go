// Package repository defines sentinel errors shared across repositories so
// handlers can map failure modes onto HTTP status codes. Not-found cases
// surface as sql.ErrNoRows from the individual lookup methods.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own, e.g. adding dishes to another owner's
// restaurant. Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrOrderCompleted is returned when a mutation targets an order whose
// completed flag is already set. Completed orders are frozen; handlers
// translate this into HTTP 409.
var ErrOrderCompleted = errors.New("order already completed")

// ErrEmailExists is returned by user creation when the email is taken.
// Handlers translate this into HTTP 409.
var ErrEmailExists = errors.New("email already exists")
