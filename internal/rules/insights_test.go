package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tally/internal/core"
	"tally/internal/report"
)

var insightNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func expenseAt(cat core.Category, cents int64, date time.Time) core.Expense {
	return core.Expense{
		ID:          "e",
		Amount:      core.Money{Cents: cents},
		Category:    cat,
		Date:        date,
		Description: "x",
	}
}

func TestBucketOfCoversEveryCategory(t *testing.T) {
	for _, c := range core.Categories() {
		b := BucketOf(c)
		assert.Contains(t, []Bucket{Needs, Wants, Savings}, b, "category %s", c)
	}
	assert.Equal(t, Savings, BucketOf(core.CategorySavings))
	assert.Equal(t, Needs, BucketOf(core.CategoryHousing))
	assert.Equal(t, Wants, BucketOf(core.CategoryDining))
}

func TestBudgetRecommendationsFlagsHeavyNeeds(t *testing.T) {
	// Everything goes to housing: needs swallow 100% of spending while
	// the estimated ideal is 62.5%, and savings sit at zero.
	snap := Snapshot{Expenses: []core.Expense{
		expenseAt(core.CategoryHousing, -100000, insightNow.AddDate(0, 0, -3)),
	}}

	recs := BudgetRecommendations(snap, report.Timeframe{Kind: report.Month}, insightNow)
	require.Len(t, recs, 2)

	assert.Equal(t, Needs, recs[0].Bucket)
	assert.True(t, recs[0].Over)
	assert.Equal(t, int64(100000), recs[0].Actual.Cents)
	assert.Equal(t, int64(62500), recs[0].Ideal.Cents)

	assert.Equal(t, Savings, recs[1].Bucket)
	assert.False(t, recs[1].Over)
	assert.Equal(t, int64(0), recs[1].Actual.Cents)
}

func TestBudgetRecommendationsQuietWhenBalanced(t *testing.T) {
	// 50/20/30 needs/wants/savings of actual spend keeps every bucket
	// inside the tolerance band around the income-derived ideals.
	snap := Snapshot{Expenses: []core.Expense{
		expenseAt(core.CategoryHousing, -50000, insightNow.AddDate(0, 0, -5)),
		expenseAt(core.CategoryDining, -20000, insightNow.AddDate(0, 0, -4)),
		expenseAt(core.CategorySavings, -30000, insightNow.AddDate(0, 0, -2)),
	}}

	recs := BudgetRecommendations(snap, report.Timeframe{Kind: report.Month}, insightNow)
	assert.Empty(t, recs)
}

func TestBudgetRecommendationsIgnoresOutOfWindowSpend(t *testing.T) {
	snap := Snapshot{Expenses: []core.Expense{
		expenseAt(core.CategoryHousing, -100000, insightNow.AddDate(0, -2, 0)),
	}}

	recs := BudgetRecommendations(snap, report.Timeframe{Kind: report.Month}, insightNow)
	assert.Empty(t, recs)
}

func TestHealthScore(t *testing.T) {
	onPace := core.Goal{
		ID: "g", Name: "g", Type: core.GoalOther,
		Target:     core.Money{Cents: 100000},
		Current:    core.Money{Cents: 50000},
		Progress:   50,
		CreatedAt:  insightNow.AddDate(0, -1, 0),
		TargetDate: insightNow.AddDate(0, 1, 0),
	}
	savingsExp := expenseAt(core.CategorySavings, -10000, insightNow)

	tests := []struct {
		name   string
		snap   Snapshot
		score  int
		rating Rating
	}{
		{
			name:   "empty ledger",
			snap:   Snapshot{},
			score:  35, // 70 -10 budgets -15 goals -10 savings
			rating: Poor,
		},
		{
			name: "solid baseline",
			snap: Snapshot{
				Expenses: []core.Expense{savingsExp},
				Budgets:  []core.Budget{{Category: core.CategoryFood, Allocated: core.Money{Cents: 10000}, Spent: core.Money{Cents: 5000}}},
				Goals:    []core.Goal{onPace},
			},
			score:  75,
			rating: Good,
		},
		{
			name: "over budget and in debt",
			snap: Snapshot{
				Expenses: []core.Expense{
					expenseAt(core.CategoryDebt, -5000, insightNow),
				},
				Budgets: []core.Budget{
					{Category: core.CategoryFood, Allocated: core.Money{Cents: 1000}, Spent: core.Money{Cents: 2000}},
					{Category: core.CategoryDining, Allocated: core.Money{Cents: 1000}, Spent: core.Money{Cents: 2000}},
				},
			},
			score:  30, // 70 -5 -5 over, -15 goals, -10 savings, -5 debt
			rating: Poor,
		},
		{
			name: "four goals on pace",
			snap: Snapshot{
				Expenses: []core.Expense{savingsExp},
				Budgets:  []core.Budget{{Category: core.CategoryFood, Allocated: core.Money{Cents: 10000}}},
				Goals:    []core.Goal{onPace, onPace, onPace, onPace},
			},
			score:  90,
			rating: Excellent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, rating := HealthScore(tt.snap, insightNow)
			assert.Equal(t, tt.score, score)
			assert.Equal(t, tt.rating, rating)
		})
	}
}

func TestHealthScoreClamped(t *testing.T) {
	onPace := core.Goal{
		ID: "g", Name: "g", Type: core.GoalOther,
		Target:     core.Money{Cents: 100},
		Current:    core.Money{Cents: 90},
		Progress:   90,
		CreatedAt:  insightNow.AddDate(0, -1, 0),
		TargetDate: insightNow.AddDate(0, 1, 0),
	}
	goals := make([]core.Goal, 10)
	for i := range goals {
		goals[i] = onPace
	}
	snap := Snapshot{
		Expenses: []core.Expense{expenseAt(core.CategorySavings, -100, insightNow)},
		Budgets:  []core.Budget{{Category: core.CategoryFood, Allocated: core.Money{Cents: 1000}}},
		Goals:    goals,
	}

	score, rating := HealthScore(snap, insightNow)
	assert.Equal(t, 100, score)
	assert.Equal(t, Excellent, rating)
}

func TestInsightsOverBudgetWarning(t *testing.T) {
	snap := Snapshot{
		Budgets: []core.Budget{{
			Category:  core.CategoryDining,
			Allocated: core.Money{Cents: 10000},
			Spent:     core.Money{Cents: 15000},
		}},
	}

	warnings := FilterInsights(Insights(snap, insightNow), Warning)
	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[0].Title, "dining")
	assert.NotEmpty(t, warnings[0].Actions)
}

func TestInsightsPlanningNudges(t *testing.T) {
	planning := FilterInsights(Insights(Snapshot{}, insightNow), Planning)
	require.Len(t, planning, 2)
	assert.Equal(t, "No budgets set", planning[0].Title)
	assert.Equal(t, "No savings goals", planning[1].Title)
}

func TestInsightsBehindScheduleGoal(t *testing.T) {
	// Halfway through the window with almost no progress.
	behind := core.Goal{
		ID: "g", Name: "Trip", Type: core.GoalVacation,
		Target:     core.Money{Cents: 100000},
		Current:    core.Money{Cents: 1000},
		Progress:   1,
		CreatedAt:  insightNow.AddDate(0, -1, 0),
		TargetDate: insightNow.AddDate(0, 1, 0),
	}
	snap := Snapshot{Goals: []core.Goal{behind}}

	warnings := FilterInsights(Insights(snap, insightNow), Warning)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Title, "Trip")
	require.NotEmpty(t, warnings[0].Actions)
	assert.Contains(t, warnings[0].Actions[0], "Contribute")
}

func TestInsightsCompletedGoalSuccess(t *testing.T) {
	done := core.Goal{
		ID: "g", Name: "Laptop", Type: core.GoalPurchase,
		Target:   core.Money{Cents: 50000},
		Current:  core.Money{Cents: 52500},
		Progress: 105,
	}
	snap := Snapshot{Goals: []core.Goal{done}}

	successes := FilterInsights(Insights(snap, insightNow), Success)
	require.Len(t, successes, 1)
	assert.Contains(t, successes[0].Title, "Laptop")
}

func TestInsightsAlwaysEndWithAssessment(t *testing.T) {
	out := Insights(Snapshot{}, insightNow)
	require.NotEmpty(t, out)
	last := out[len(out)-1]
	assert.Equal(t, Assessment, last.Category)
	assert.Contains(t, last.Title, "Financial health")
}
