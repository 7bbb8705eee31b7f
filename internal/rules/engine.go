// Package rules evaluates declarative predicates over a ledger snapshot
// to drive achievements (one-way unlocks), challenges (accept/complete
// lifecycle) and stateless insights. Everything here is pure: the engine
// takes a Snapshot plus the prior unlock state and returns the next
// state, so it can be unit-tested without a store or UI.
package rules

import (
	"fmt"

	"tally/internal/core"
)

// Counter keys supplied by the caller. The engine never derives these
// longitudinal signals itself; absent keys read as 0, which keeps the
// rules they gate unsatisfied until a real source provides them.
const (
	CounterTrackingStreakDays = "tracking_streak_days"
	CounterNoDiningStreakDays = "no_dining_streak_days"
)

// Snapshot is the read-only bundle a predicate sees. Counters is opaque
// auxiliary input; see the Counter constants.
type Snapshot struct {
	Expenses []core.Expense
	Budgets  []core.Budget
	Goals    []core.Goal
	Counters map[string]float64
}

// Counter returns the named counter, 0 when absent.
func (s Snapshot) Counter(name string) float64 {
	return s.Counters[name]
}

// Rule pairs an id with a pure predicate and the points awarded when it
// is satisfied.
type Rule struct {
	ID          string
	Title       string
	Description string
	Points      int
	Predicate   func(Snapshot) bool
}

// Engine evaluates a fixed achievement and challenge catalog.
type Engine struct {
	achievements []Rule
	challenges   []Rule
	byID         map[string]Rule
}

// NewEngine builds an engine over the default catalogs.
func NewEngine() *Engine {
	return NewEngineWithCatalog(AchievementCatalog(), ChallengeCatalog())
}

// NewEngineWithCatalog builds an engine over explicit catalogs. Tests
// use this to drive small synthetic rule sets.
func NewEngineWithCatalog(achievements, challenges []Rule) *Engine {
	e := &Engine{
		achievements: achievements,
		challenges:   challenges,
		byID:         make(map[string]Rule, len(achievements)+len(challenges)),
	}
	for _, r := range achievements {
		e.byID[r.ID] = r
	}
	for _, r := range challenges {
		e.byID[r.ID] = r
	}
	return e
}

// Achievements returns the achievement catalog.
func (e *Engine) Achievements() []Rule { return e.achievements }

// Challenges returns the challenge catalog.
func (e *Engine) Challenges() []Rule { return e.challenges }

// EvaluateAchievements scans every achievement against the snapshot.
// A rule whose predicate is true and whose id is not yet unlocked is
// added to the returned state; ids never leave the unlocked set, so
// re-evaluation after the predicate turns false changes nothing.
func (e *Engine) EvaluateAchievements(snap Snapshot, st core.UnlockState) (core.UnlockState, []Rule) {
	next := st.Clone()
	var unlocked []Rule
	for _, r := range e.achievements {
		if next.Achievements.Has(r.ID) {
			continue
		}
		if r.Predicate(snap) {
			next.Achievements.Add(r.ID)
			unlocked = append(unlocked, r)
		}
	}
	return next, unlocked
}

// AcceptChallenge moves a challenge into the active set. Acceptance is a
// user action, independent of the predicate. Unknown ids fail with
// core.ErrNotFound; accepting an already active or completed challenge
// is a no-op.
func (e *Engine) AcceptChallenge(st core.UnlockState, id string) (core.UnlockState, error) {
	if _, ok := e.challengeByID(id); !ok {
		return st, fmt.Errorf("challenge %s: %w", id, core.ErrNotFound)
	}
	next := st.Clone()
	if next.CompletedChallenges.Has(id) || next.ActiveChallenges.Has(id) {
		return next, nil
	}
	next.ActiveChallenges.Add(id)
	return next, nil
}

// EvaluateChallenges completes every active challenge whose predicate is
// satisfied: the id moves from active to completed and its points are
// awarded exactly once. Completed challenges are terminal and are never
// re-evaluated.
func (e *Engine) EvaluateChallenges(snap Snapshot, st core.UnlockState) (core.UnlockState, []Rule) {
	next := st.Clone()
	var completed []Rule
	for _, r := range e.challenges {
		if !next.ActiveChallenges.Has(r.ID) || next.CompletedChallenges.Has(r.ID) {
			continue
		}
		if r.Predicate(snap) {
			next.ActiveChallenges.Remove(r.ID)
			next.CompletedChallenges.Add(r.ID)
			completed = append(completed, r)
		}
	}
	return next, completed
}

// TotalPoints sums the points of every unlocked achievement and every
// completed challenge. Sets guarantee each id counts once.
func (e *Engine) TotalPoints(st core.UnlockState) int {
	var total int
	for id := range st.Achievements {
		if r, ok := e.byID[id]; ok {
			total += r.Points
		}
	}
	for id := range st.CompletedChallenges {
		if r, ok := e.byID[id]; ok {
			total += r.Points
		}
	}
	return total
}

func (e *Engine) challengeByID(id string) (Rule, bool) {
	for _, r := range e.challenges {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}
