package rules

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tally/internal/core"
)

func alwaysTrue(Snapshot) bool  { return true }
func alwaysFalse(Snapshot) bool { return false }

func expenseCountRule(id string, points, min int) Rule {
	return Rule{
		ID:     id,
		Points: points,
		Predicate: func(s Snapshot) bool {
			return len(s.Expenses) >= min
		},
	}
}

func snapshotWithExpenses(n int) Snapshot {
	exp := make([]core.Expense, n)
	for i := range exp {
		exp[i] = core.Expense{
			ID:          "e",
			Amount:      core.Money{Cents: -100},
			Category:    core.CategoryFood,
			Description: "x",
		}
	}
	return Snapshot{Expenses: exp}
}

func TestEvaluateAchievementsUnlocksOnce(t *testing.T) {
	e := NewEngineWithCatalog([]Rule{expenseCountRule("three", 10, 3)}, nil)

	st, unlocked := e.EvaluateAchievements(snapshotWithExpenses(3), core.NewUnlockState())
	require.Len(t, unlocked, 1)
	assert.Equal(t, "three", unlocked[0].ID)
	assert.True(t, st.Achievements.Has("three"))

	// Second pass over the same snapshot reports nothing new.
	st2, unlocked := e.EvaluateAchievements(snapshotWithExpenses(3), st)
	assert.Empty(t, unlocked)
	assert.True(t, st2.Achievements.Has("three"))
}

func TestAchievementsStayUnlockedWhenPredicateTurnsFalse(t *testing.T) {
	e := NewEngineWithCatalog([]Rule{expenseCountRule("three", 10, 3)}, nil)

	st, _ := e.EvaluateAchievements(snapshotWithExpenses(3), core.NewUnlockState())
	require.True(t, st.Achievements.Has("three"))

	// Expenses were deleted; the unlock must survive.
	st, unlocked := e.EvaluateAchievements(snapshotWithExpenses(0), st)
	assert.Empty(t, unlocked)
	assert.True(t, st.Achievements.Has("three"))
	assert.Equal(t, 10, e.TotalPoints(st))
}

func TestAcceptChallengeUnknownID(t *testing.T) {
	e := NewEngineWithCatalog(nil, []Rule{{ID: "c1", Predicate: alwaysFalse}})

	_, err := e.AcceptChallenge(core.NewUnlockState(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestAcceptChallengeIdempotent(t *testing.T) {
	e := NewEngineWithCatalog(nil, []Rule{{ID: "c1", Predicate: alwaysFalse}})

	st, err := e.AcceptChallenge(core.NewUnlockState(), "c1")
	require.NoError(t, err)
	assert.True(t, st.ActiveChallenges.Has("c1"))

	st, err = e.AcceptChallenge(st, "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, st.ActiveChallenges.Len())
}

func TestChallengeRequiresAcceptance(t *testing.T) {
	e := NewEngineWithCatalog(nil, []Rule{{ID: "c1", Points: 40, Predicate: alwaysTrue}})

	// Predicate is satisfied but the challenge was never accepted.
	st, completed := e.EvaluateChallenges(Snapshot{}, core.NewUnlockState())
	assert.Empty(t, completed)
	assert.Equal(t, 0, st.CompletedChallenges.Len())
}

func TestChallengeCompletionIsTerminal(t *testing.T) {
	e := NewEngineWithCatalog(nil, []Rule{{ID: "c1", Points: 40, Predicate: alwaysTrue}})

	st, err := e.AcceptChallenge(core.NewUnlockState(), "c1")
	require.NoError(t, err)

	st, completed := e.EvaluateChallenges(Snapshot{}, st)
	require.Len(t, completed, 1)
	assert.False(t, st.ActiveChallenges.Has("c1"))
	assert.True(t, st.CompletedChallenges.Has("c1"))

	// Re-evaluating or re-accepting never awards again.
	st, completed = e.EvaluateChallenges(Snapshot{}, st)
	assert.Empty(t, completed)
	st, err = e.AcceptChallenge(st, "c1")
	require.NoError(t, err)
	assert.False(t, st.ActiveChallenges.Has("c1"))
	assert.Equal(t, 40, e.TotalPoints(st))
}

func TestDoubleEvaluationAwardsPointsOnce(t *testing.T) {
	e := NewEngineWithCatalog(
		[]Rule{expenseCountRule("a", 10, 1)},
		[]Rule{{ID: "c", Points: 40, Predicate: func(s Snapshot) bool { return len(s.Expenses) >= 1 }}},
	)

	snap := snapshotWithExpenses(1)
	st, err := e.AcceptChallenge(core.NewUnlockState(), "c")
	require.NoError(t, err)

	st, _ = e.EvaluateAchievements(snap, st)
	st, _ = e.EvaluateChallenges(snap, st)
	require.Equal(t, 50, e.TotalPoints(st))

	st, unlocked := e.EvaluateAchievements(snap, st)
	st, completed := e.EvaluateChallenges(snap, st)
	assert.Empty(t, unlocked)
	assert.Empty(t, completed)
	assert.Equal(t, 50, e.TotalPoints(st))
}

func TestTotalPointsIgnoresUnknownIDs(t *testing.T) {
	e := NewEngineWithCatalog([]Rule{{ID: "a", Points: 10, Predicate: alwaysTrue}}, nil)

	st := core.NewUnlockState()
	st.Achievements.Add("a")
	st.Achievements.Add("retired_rule")
	assert.Equal(t, 10, e.TotalPoints(st))
}

func TestCounterGatedAchievement(t *testing.T) {
	e := NewEngine()

	snap := snapshotWithExpenses(1)
	st, unlocked := e.EvaluateAchievements(snap, core.NewUnlockState())
	require.NotEmpty(t, unlocked)
	assert.False(t, st.Achievements.Has("week_streak"))

	snap.Counters = map[string]float64{CounterTrackingStreakDays: 7}
	st, _ = e.EvaluateAchievements(snap, st)
	assert.True(t, st.Achievements.Has("week_streak"))
}

func TestDefaultCatalogIDsAreUnique(t *testing.T) {
	e := NewEngine()
	seen := make(map[string]bool)
	for _, r := range append(e.Achievements(), e.Challenges()...) {
		assert.False(t, seen[r.ID], "duplicate id %s", r.ID)
		seen[r.ID] = true
		assert.NotNil(t, r.Predicate, "rule %s has no predicate", r.ID)
		assert.Greater(t, r.Points, 0, "rule %s has no points", r.ID)
	}
}
