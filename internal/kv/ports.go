// Package kv defines the port for the durable key-value collaborator the
// ledger persists its collections through.
package kv

import (
	"context"
	"errors"
)

// ErrNoKey is returned by Get when the key has never been written.
var ErrNoKey = errors.New("key not found")

// Store is the outbound persistence port. One key per collection; values
// are opaque serialized bytes that must round-trip exactly.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// Collection keys used by the ledger.
const (
	KeyExpenses = "expenses"
	KeyBudgets  = "budgets"
	KeyGoals    = "goals"
	KeyUnlocks  = "unlocks"
)
