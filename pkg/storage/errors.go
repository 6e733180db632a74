package storage

import "errors"

// ErrInsufficientFunds is returned when a spend is attempted against a
// freshly re-read balance that cannot cover the cost.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrStoreUnavailable marks a transient remote-store fault. Operations
// wrapping it are safe to retry.
var ErrStoreUnavailable = errors.New("preference store unavailable")

// ErrAccountNotFound is returned when no preference document exists for a user.
var ErrAccountNotFound = errors.New("account not found")

// ErrUnauthorized is returned when the store rejects the caller's session.
var ErrUnauthorized = errors.New("unauthorized")
