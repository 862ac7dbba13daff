package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrRewardNotFound  = fmt.Errorf("reward %w", ErrNotFound)
	ErrAccountNotFound = fmt.Errorf("account %w", ErrNotFound)
	ErrClientNotFound  = fmt.Errorf("client %w", ErrNotFound)
	ErrCompanyNotFound = fmt.Errorf("company %w", ErrNotFound)

	ErrInvalidInput    = errors.New("invalid input")
	ErrPointsInvalid   = fmt.Errorf("%w: points must be a positive integer not above 2147483647", ErrInvalidInput)
	ErrRewardNameEmpty = fmt.Errorf("%w: reward name must not be empty", ErrInvalidInput)

	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")

	ErrAccountAlreadyExists = errors.New("account already exists")
	ErrCompanyAlreadyExists = errors.New("company already exists")

	// Business rule rejection, use errors.As with *InsufficientPointsError to get amounts
	ErrInsufficientPoints = errors.New("insufficient points")

	// Concurrent redemption touched the same balance; safe to retry
	ErrConflict = errors.New("concurrent modification conflict")

	// Transient infrastructure failure; no partial state is left behind
	ErrStorageFault = errors.New("storage fault")
)

// InsufficientPointsError carries the balance observed inside the redemption
// transaction and the reward cost it was checked against
type InsufficientPointsError struct {
	Current  int64
	Required int64
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("insufficient points: current %d, required %d", e.Current, e.Required)
}

func (e *InsufficientPointsError) Is(target error) bool {
	return target == ErrInsufficientPoints
}
