// Package export pushes ledger data to external sinks, currently a
// Google Sheets spreadsheet. Exports are one-way and best-effort: the
// ledger never depends on the sink.
package export

import (
	"context"
	"fmt"

	"tally/internal/core"
)

// Ports for outbound sinks.
type (
	// ExpenseWriter appends a single expense row.
	ExpenseWriter interface {
		Append(ctx context.Context, e core.Expense) (rowRef string, err error)
	}

	// SheetReplacer rewrites the whole expense sheet from scratch.
	SheetReplacer interface {
		Replace(ctx context.Context, expenses []core.Expense) (rows int, err error)
	}
)

// SyncAll replaces the sink's contents with the full expense list when
// the writer supports it, falling back to row-by-row appends.
func SyncAll(ctx context.Context, w ExpenseWriter, expenses []core.Expense) (int, error) {
	if r, ok := w.(SheetReplacer); ok {
		return r.Replace(ctx, expenses)
	}
	for i, e := range expenses {
		if _, err := w.Append(ctx, e); err != nil {
			return i, fmt.Errorf("append expense %s: %w", e.ID, err)
		}
	}
	return len(expenses), nil
}
