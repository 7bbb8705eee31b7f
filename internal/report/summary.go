// Package report computes read-only spending summaries over a snapshot of
// expenses. All functions are pure: they take the collections and a
// reference time and never touch the store.
package report

import (
	"sort"
	"time"

	"tally/internal/core"
)

// TimeframeKind selects how a Timeframe resolves to a concrete interval.
type TimeframeKind string

const (
	Week    TimeframeKind = "week"
	Month   TimeframeKind = "month"
	Year    TimeframeKind = "year"
	AllTime TimeframeKind = "all"
	Custom  TimeframeKind = "custom"
)

// Timeframe is a date filter resolved against "now". The relative kinds
// use calendar offsets: week = now-7d, month = now-1 calendar month,
// year = now-1 calendar year.
type Timeframe struct {
	Kind  TimeframeKind
	Start time.Time // custom only
	End   time.Time // custom only
}

// Resolve returns the [start, end] interval the timeframe covers at now.
// AllTime returns a zero start, matching every expense.
func (tf Timeframe) Resolve(now time.Time) (time.Time, time.Time) {
	switch tf.Kind {
	case Week:
		return now.AddDate(0, 0, -7), now
	case Month:
		return now.AddDate(0, -1, 0), now
	case Year:
		return now.AddDate(-1, 0, 0), now
	case Custom:
		return tf.Start, tf.End
	default:
		return time.Time{}, now
	}
}

// CategoryShare is one category's slice of the summarized spending.
type CategoryShare struct {
	Category core.Category
	Amount   core.Money
	Percent  float64
}

// Summary aggregates the expenses matching a timeframe. Total sums the
// magnitude of every match, so refunds count toward activity too.
type Summary struct {
	Total      core.Money
	Count      int
	Categories []CategoryShare
}

// Summarize filters expenses by timeframe and breaks spending down by
// category, sorted by descending amount. Percentages are of the total
// and are 0 when the total is 0.
func Summarize(expenses []core.Expense, tf Timeframe, now time.Time) Summary {
	start, end := tf.Resolve(now)

	byCategory := make(map[core.Category]int64)
	var total int64
	var count int
	for _, e := range expenses {
		if !start.IsZero() && e.Date.Before(start) {
			continue
		}
		if e.Date.After(end) {
			continue
		}
		amount := e.Amount.Abs().Cents
		total += amount
		count++
		byCategory[e.Category] += amount
	}

	shares := make([]CategoryShare, 0, len(byCategory))
	for cat, cents := range byCategory {
		share := CategoryShare{Category: cat, Amount: core.Money{Cents: cents}}
		if total > 0 {
			share.Percent = float64(cents) / float64(total) * 100
		}
		shares = append(shares, share)
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Amount.Cents != shares[j].Amount.Cents {
			return shares[i].Amount.Cents > shares[j].Amount.Cents
		}
		return shares[i].Category < shares[j].Category
	})

	return Summary{
		Total:      core.Money{Cents: total},
		Count:      count,
		Categories: shares,
	}
}

// TopCategories returns the n largest categories of the summary.
func (s Summary) TopCategories(n int) []CategoryShare {
	if n > len(s.Categories) {
		n = len(s.Categories)
	}
	return s.Categories[:n]
}
