package rules

import (
	"time"

	"tally/internal/core"
	"tally/internal/goals"
)

// AchievementCatalog is the static one-way unlock table. Predicates are
// pure functions of the snapshot; ids are stable and persisted, so they
// must never be renamed.
func AchievementCatalog() []Rule {
	return []Rule{
		{
			ID:          "first_expense",
			Title:       "Getting Started",
			Description: "Record your first expense",
			Points:      10,
			Predicate: func(s Snapshot) bool {
				return len(s.Expenses) > 0
			},
		},
		{
			ID:          "ten_expenses",
			Title:       "Habit Forming",
			Description: "Record 10 expenses",
			Points:      25,
			Predicate: func(s Snapshot) bool {
				return len(s.Expenses) >= 10
			},
		},
		{
			ID:          "hundred_expenses",
			Title:       "Meticulous",
			Description: "Record 100 expenses",
			Points:      100,
			Predicate: func(s Snapshot) bool {
				return len(s.Expenses) >= 100
			},
		},
		{
			ID:          "first_goal",
			Title:       "Dreamer",
			Description: "Create your first savings goal",
			Points:      15,
			Predicate: func(s Snapshot) bool {
				return len(s.Goals) > 0
			},
		},
		{
			ID:          "goal_reached",
			Title:       "Goal Getter",
			Description: "Reach a savings goal",
			Points:      75,
			Predicate: func(s Snapshot) bool {
				for _, g := range s.Goals {
					if g.Completed() {
						return true
					}
				}
				return false
			},
		},
		{
			ID:          "savings_starter",
			Title:       "Pay Yourself First",
			Description: "Record a savings contribution",
			Points:      20,
			Predicate: func(s Snapshot) bool {
				return hasCategory(s.Expenses, core.CategorySavings)
			},
		},
		{
			ID:          "budget_keeper",
			Title:       "Budget Keeper",
			Description: "Stay within every budget",
			Points:      50,
			Predicate: func(s Snapshot) bool {
				if len(s.Budgets) == 0 {
					return false
				}
				for _, b := range s.Budgets {
					if b.IsOverBudget() {
						return false
					}
				}
				// Only meaningful once something was spent.
				for _, b := range s.Budgets {
					if b.Spent.Cents > 0 {
						return true
					}
				}
				return false
			},
		},
		{
			ID:          "week_streak",
			Title:       "Consistency",
			Description: "Track expenses 7 days in a row",
			Points:      30,
			Predicate: func(s Snapshot) bool {
				return s.Counter(CounterTrackingStreakDays) >= 7
			},
		},
	}
}

// ChallengeCatalog is the static challenge table. A challenge only
// completes while the user has accepted it.
func ChallengeCatalog() []Rule {
	return []Rule{
		{
			ID:          "log_twenty",
			Title:       "Twenty Entries",
			Description: "Record 20 expenses",
			Points:      40,
			Predicate: func(s Snapshot) bool {
				return len(s.Expenses) >= 20
			},
		},
		{
			ID:          "no_dining_week",
			Title:       "Home Cooking",
			Description: "Go 7 days without a dining expense",
			Points:      60,
			Predicate: func(s Snapshot) bool {
				return s.Counter(CounterNoDiningStreakDays) >= 7
			},
		},
		{
			ID:          "fund_a_goal",
			Title:       "Fund It",
			Description: "Put at least 500 toward any goal",
			Points:      50,
			Predicate: func(s Snapshot) bool {
				for _, g := range s.Goals {
					if g.Current.Cents >= 50000 {
						return true
					}
				}
				return false
			},
		},
		{
			ID:          "all_goals_on_pace",
			Title:       "Pace Setter",
			Description: "Keep every goal on schedule",
			Points:      45,
			Predicate: func(s Snapshot) bool {
				if len(s.Goals) == 0 {
					return false
				}
				now := time.Now()
				for _, g := range s.Goals {
					if !g.Completed() && !goals.OnSchedule(g, now) {
						return false
					}
				}
				return true
			},
		},
	}
}

func hasCategory(expenses []core.Expense, cat core.Category) bool {
	for _, e := range expenses {
		if e.Category == cat {
			return true
		}
	}
	return false
}
