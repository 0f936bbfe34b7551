// Package repository contains data access logic separated from HTTP
// handlers. This file defines error values shared across the
// repositories. These sentinels let handlers map failure scenarios to
// distinct HTTP responses without inspecting driver errors: a missing
// row becomes 404, a duplicate email 409, an illegal lifecycle
// transition 409, and a pagination overflow 400.
package repository

import "errors"

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned on signup when the email is taken.
var ErrEmailExists = errors.New("email already exists")

// ErrInvalidState is returned when a lifecycle transition is not
// permitted from the listing's current state, e.g. restoring a
// listing that is already published.
var ErrInvalidState = errors.New("invalid state transition")

// ErrPageOutOfRange is returned when the requested page number
// exceeds the total page count for a non-empty result set.
var ErrPageOutOfRange = errors.New("page number exceeds total pages")
