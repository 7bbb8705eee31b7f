package rules

import (
	"fmt"
	"time"

	"tally/internal/core"
	"tally/internal/goals"
	"tally/internal/report"
)

// InsightCategory ranks an insight for display.
type InsightCategory string

const (
	Warning     InsightCategory = "warning"
	Opportunity InsightCategory = "opportunity"
	Planning    InsightCategory = "planning"
	Assessment  InsightCategory = "assessment"
	Success     InsightCategory = "success"
)

// Insight is a stateless recommendation recomputed fresh from every
// snapshot; nothing here is persisted.
type Insight struct {
	Title       string
	Description string
	Category    InsightCategory
	Actions     []string
}

// Recommendation is one 50/30/20 bucket that deviates from its ideal.
type Recommendation struct {
	Bucket Bucket
	Actual core.Money
	Ideal  core.Money
	Over   bool // true: spending above ideal; false: savings shortfall
}

// deviationTolerance is the slack around the ideal split before a
// recommendation fires: 10% either way.
const deviationTolerance = 0.10

// BudgetRecommendations applies the 50/30/20 heuristic over the selected
// timeframe. With no declared income, income is estimated as
// totalSpent/0.8 (spend assumed to be 80% of income). A bucket is
// reported when needs or wants exceed their ideal by more than 10%, or
// savings fall short of ideal by more than 10%.
func BudgetRecommendations(snap Snapshot, tf report.Timeframe, now time.Time) []Recommendation {
	spent := make(map[Bucket]int64)
	var total int64
	start, end := tf.Resolve(now)
	for _, e := range snap.Expenses {
		if !start.IsZero() && e.Date.Before(start) {
			continue
		}
		if e.Date.After(end) {
			continue
		}
		amount := e.Amount.Abs().Cents
		spent[BucketOf(e.Category)] += amount
		total += amount
	}
	if total == 0 {
		return nil
	}

	income := float64(total) / 0.8
	var recs []Recommendation
	for _, bucket := range []Bucket{Needs, Wants, Savings} {
		ideal := income * idealShare[bucket]
		actual := float64(spent[bucket])
		rec := Recommendation{
			Bucket: bucket,
			Actual: core.Money{Cents: spent[bucket]},
			Ideal:  core.Money{Cents: int64(ideal)},
		}
		switch bucket {
		case Savings:
			if actual < ideal*(1-deviationTolerance) {
				recs = append(recs, rec)
			}
		default:
			if actual > ideal*(1+deviationTolerance) {
				rec.Over = true
				recs = append(recs, rec)
			}
		}
	}
	return recs
}

// Rating is a financial-health band.
type Rating string

const (
	Excellent Rating = "Excellent"
	VeryGood  Rating = "Very Good"
	Good      Rating = "Good"
	Fair      Rating = "Fair"
	Caution   Rating = "Caution"
	Poor      Rating = "Poor"
)

// HealthScore grades the snapshot on a 0-100 scale. Baseline 70, then:
// -5 per over-budget category, -10 with no budgets at all, +5 per active
// on-schedule goal, -15 with no goals, -10 when no savings-category
// expense was ever recorded, -5 when any debt-category expense exists.
func HealthScore(snap Snapshot, now time.Time) (int, Rating) {
	score := 70

	if len(snap.Budgets) == 0 {
		score -= 10
	} else {
		for _, b := range snap.Budgets {
			if b.IsOverBudget() {
				score -= 5
			}
		}
	}

	if len(snap.Goals) == 0 {
		score -= 15
	} else {
		for _, g := range snap.Goals {
			if !g.Completed() && goals.OnSchedule(g, now) {
				score += 5
			}
		}
	}

	if !hasCategory(snap.Expenses, core.CategorySavings) {
		score -= 10
	}
	if hasCategory(snap.Expenses, core.CategoryDebt) {
		score -= 5
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, ratingFor(score)
}

func ratingFor(score int) Rating {
	switch {
	case score >= 90:
		return Excellent
	case score >= 80:
		return VeryGood
	case score >= 70:
		return Good
	case score >= 60:
		return Fair
	case score >= 50:
		return Caution
	default:
		return Poor
	}
}

// Insights derives the full stateless insight list from the snapshot:
// over-budget warnings, spending concentration, missing budgets or
// goals, behind-schedule goals, the 50/30/20 recommendations and the
// health assessment.
func Insights(snap Snapshot, now time.Time) []Insight {
	var out []Insight

	for _, b := range snap.Budgets {
		if b.IsOverBudget() {
			over := b.Spent.Sub(b.Allocated)
			out = append(out, Insight{
				Title:       fmt.Sprintf("Over budget on %s", b.Category),
				Description: fmt.Sprintf("Spending on %s is %s over the %s allocation.", b.Category, over, b.Allocated),
				Category:    Warning,
				Actions: []string{
					fmt.Sprintf("Review recent %s expenses", b.Category),
					"Raise the allocation if the limit is unrealistic",
				},
			})
		}
	}

	summary := report.Summarize(snap.Expenses, report.Timeframe{Kind: report.Month}, now)
	if top := summary.TopCategories(1); len(top) > 0 && top[0].Percent > 40 {
		out = append(out, Insight{
			Title:       fmt.Sprintf("Spending concentrated in %s", top[0].Category),
			Description: fmt.Sprintf("%s accounts for %.0f%% of the last month's spending.", top[0].Category, top[0].Percent),
			Category:    Opportunity,
			Actions:     []string{fmt.Sprintf("Look for savings in %s", top[0].Category)},
		})
	}

	if len(snap.Budgets) == 0 {
		out = append(out, Insight{
			Title:       "No budgets set",
			Description: "Budgets turn raw expenses into signals; set one per spending category.",
			Category:    Planning,
			Actions:     []string{"Set an allocation for your top categories"},
		})
	}
	if len(snap.Goals) == 0 {
		out = append(out, Insight{
			Title:       "No savings goals",
			Description: "A target with a date makes saving concrete.",
			Category:    Planning,
			Actions:     []string{"Create a goal with a target amount and date"},
		})
	}

	for _, g := range snap.Goals {
		if g.Completed() {
			out = append(out, Insight{
				Title:       fmt.Sprintf("Goal reached: %s", g.Name),
				Description: fmt.Sprintf("%s hit %.0f%% of its target.", g.Name, g.Progress),
				Category:    Success,
			})
			continue
		}
		if goals.IsBehindSchedule(g, now) {
			insight := Insight{
				Title:       fmt.Sprintf("Goal behind schedule: %s", g.Name),
				Description: fmt.Sprintf("%s is at %.0f%%, below the pace needed for %s.", g.Name, g.Progress, g.TargetDate.Format("2006-01-02")),
				Category:    Warning,
			}
			if amount, per, ok := goals.RequiredContribution(g, now); ok {
				insight.Actions = append(insight.Actions,
					fmt.Sprintf("Contribute %s per %s to finish on time", amount, perNoun(per)))
			}
			out = append(out, insight)
		}
	}

	for _, rec := range BudgetRecommendations(snap, report.Timeframe{Kind: report.Month}, now) {
		if rec.Over {
			out = append(out, Insight{
				Title:       fmt.Sprintf("High %s spending", rec.Bucket),
				Description: fmt.Sprintf("%s spending is %s against an ideal of %s (50/30/20).", rec.Bucket, rec.Actual, rec.Ideal),
				Category:    Opportunity,
				Actions:     []string{fmt.Sprintf("Trim %s toward %s", rec.Bucket, rec.Ideal)},
			})
		} else {
			out = append(out, Insight{
				Title:       "Savings below target",
				Description: fmt.Sprintf("Savings of %s fall short of the 20%% ideal (%s).", rec.Actual, rec.Ideal),
				Category:    Opportunity,
				Actions:     []string{"Automate a transfer to savings"},
			})
		}
	}

	score, rating := HealthScore(snap, now)
	out = append(out, Insight{
		Title:       fmt.Sprintf("Financial health: %s", rating),
		Description: fmt.Sprintf("Overall score %d/100.", score),
		Category:    Assessment,
	})

	return out
}

// FilterInsights keeps only the insights in the given category.
func FilterInsights(insights []Insight, cat InsightCategory) []Insight {
	var out []Insight
	for _, in := range insights {
		if in.Category == cat {
			out = append(out, in)
		}
	}
	return out
}

func perNoun(p goals.Period) string {
	switch p {
	case goals.Years:
		return "year"
	case goals.Months:
		return "month"
	default:
		return "day"
	}
}
