package domain

import "errors"

// Domain errors
var (
	ErrNotFound         = errors.New("not found")
	ErrPetNotFound      = errors.New("pet not found")
	ErrInvalidAction    = errors.New("invalid action type")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrStoreUnavailable = errors.New("storage unavailable")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrInternalError    = errors.New("internal server error")
)

// IsNotFoundError checks if an error is a not-found type error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrPetNotFound)
}
