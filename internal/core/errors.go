package core

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the ledger matches exactly one of
// these via errors.Is; specific sentinels below wrap ErrValidation so
// callers can branch on either the kind or the exact cause.
var (
	ErrValidation  = errors.New("invalid input")
	ErrNotFound    = errors.New("record not found")
	ErrPersistence = errors.New("persistence failure")
)

var (
	ErrUnknownCategory      = fmt.Errorf("%w: unknown category", ErrValidation)
	ErrUnknownPaymentMethod = fmt.Errorf("%w: unknown payment method", ErrValidation)
	ErrUnknownGoalType      = fmt.Errorf("%w: unknown goal type", ErrValidation)
	ErrInvalidAmount        = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrInvalidTarget        = fmt.Errorf("%w: target must be positive", ErrValidation)
	ErrEmptyName            = fmt.Errorf("%w: empty name", ErrValidation)
	ErrEmptyDescription     = fmt.Errorf("%w: empty description", ErrValidation)
	ErrNegativeAllocation   = fmt.Errorf("%w: allocation cannot be negative", ErrValidation)
)
