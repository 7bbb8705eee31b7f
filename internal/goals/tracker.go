// Package goals computes read-only progress views over savings goals:
// time remaining, the contribution rate needed to finish on time, and
// whether a goal has fallen behind its planned pace.
package goals

import (
	"math"
	"time"

	"tally/internal/core"
)

// Period buckets the remaining time of a goal.
type Period string

const (
	Days   Period = "days"
	Months Period = "months"
	Years  Period = "years"
)

// Length in days of each period bucket.
func (p Period) lengthDays() int {
	switch p {
	case Years:
		return 365
	case Months:
		return 30
	default:
		return 1
	}
}

// Remaining describes the time left until a goal's target date.
type Remaining struct {
	PastDue bool
	Days    int    // whole days left, rounded up
	Period  Period // bucket the count is expressed in
	Count   int    // days left expressed in Period units
}

// behindRatio is the fixed threshold under which a goal counts as behind
// schedule: actual progress below 70% of the expected pace.
const behindRatio = 0.7

// Progress returns current/target as a percentage, unclamped. A zero
// target yields 0.
func Progress(current, target core.Money) float64 {
	if target.Cents <= 0 {
		return 0
	}
	return float64(current.Cents) / float64(target.Cents) * 100
}

// TimeRemaining computes the time left until the goal's target date,
// rounded up to whole days and re-bucketed to years (>365 days), months
// (>30 days) or days.
func TimeRemaining(g core.Goal, now time.Time) Remaining {
	left := g.TargetDate.Sub(now)
	if left <= 0 {
		return Remaining{PastDue: true}
	}
	days := int(math.Ceil(left.Hours() / 24))

	switch {
	case days > 365:
		return Remaining{Days: days, Period: Years, Count: days / 365}
	case days > 30:
		return Remaining{Days: days, Period: Months, Count: days / 30}
	default:
		return Remaining{Days: days, Period: Days, Count: days}
	}
}

// RequiredContribution returns the amount to put aside per remaining
// period to reach the target on time. It is only defined while the goal
// is not past due and not yet reached; ok is false otherwise.
func RequiredContribution(g core.Goal, now time.Time) (amount core.Money, per Period, ok bool) {
	rem := TimeRemaining(g, now)
	if rem.PastDue || g.Current.Cents >= g.Target.Cents {
		return core.Money{}, "", false
	}

	periods := rem.Days / rem.Period.lengthDays()
	if periods < 1 {
		periods = 1
	}
	outstanding := g.Target.Sub(g.Current)
	return core.Money{Cents: outstanding.Cents / int64(periods)}, rem.Period, true
}

// IsBehindSchedule compares actual progress against the pace implied by
// the goal's planned window: expected = elapsed/total planned days x 100.
// A goal is behind when actual progress is below 70% of that.
func IsBehindSchedule(g core.Goal, now time.Time) bool {
	totalDays := g.TargetDate.Sub(g.CreatedAt).Hours() / 24
	if totalDays <= 0 {
		return false
	}
	elapsedDays := now.Sub(g.CreatedAt).Hours() / 24
	if elapsedDays <= 0 {
		return false
	}

	expected := elapsedDays / totalDays * 100
	return Progress(g.Current, g.Target) < expected*behindRatio
}

// OnSchedule reports whether an active goal is keeping pace: not past
// due and not behind schedule.
func OnSchedule(g core.Goal, now time.Time) bool {
	return !TimeRemaining(g, now).PastDue && !IsBehindSchedule(g, now)
}
