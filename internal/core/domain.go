package core

import (
	"strings"
	"time"
)

// Category is the closed set of expense and budget tags. Unknown tags are
// rejected at the ledger boundary; rule tables and the needs/wants/savings
// bucket mapping rely on this list being exhaustive.
type Category string

const (
	CategoryFood           Category = "food"
	CategoryDining         Category = "dining"
	CategoryTransportation Category = "transportation"
	CategoryHousing        Category = "housing"
	CategoryUtilities      Category = "utilities"
	CategoryEntertainment  Category = "entertainment"
	CategoryShopping       Category = "shopping"
	CategoryHealthcare     Category = "healthcare"
	CategoryEducation      Category = "education"
	CategoryTravel         Category = "travel"
	CategorySavings        Category = "savings"
	CategoryDebt           Category = "debt"
	CategoryOther          Category = "other"
)

// Categories lists every valid category in display order.
func Categories() []Category {
	return []Category{
		CategoryFood, CategoryDining, CategoryTransportation,
		CategoryHousing, CategoryUtilities, CategoryEntertainment,
		CategoryShopping, CategoryHealthcare, CategoryEducation,
		CategoryTravel, CategorySavings, CategoryDebt, CategoryOther,
	}
}

func (c Category) Valid() bool {
	switch c {
	case CategoryFood, CategoryDining, CategoryTransportation,
		CategoryHousing, CategoryUtilities, CategoryEntertainment,
		CategoryShopping, CategoryHealthcare, CategoryEducation,
		CategoryTravel, CategorySavings, CategoryDebt, CategoryOther:
		return true
	}
	return false
}

// PaymentMethod is the closed set of payment instruments.
type PaymentMethod string

const (
	PayCash       PaymentMethod = "cash"
	PayCreditCard PaymentMethod = "credit_card"
	PayBank       PaymentMethod = "bank"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PayCash, PayCreditCard, PayBank:
		return true
	}
	return false
}

// GoalType is the closed set of savings-goal classifications.
type GoalType string

const (
	GoalEmergency  GoalType = "emergency"
	GoalVacation   GoalType = "vacation"
	GoalPurchase   GoalType = "purchase"
	GoalDebtPayoff GoalType = "debt_payoff"
	GoalRetirement GoalType = "retirement"
	GoalOther      GoalType = "other"
)

func (g GoalType) Valid() bool {
	switch g {
	case GoalEmergency, GoalVacation, GoalPurchase,
		GoalDebtPayoff, GoalRetirement, GoalOther:
		return true
	}
	return false
}

// Expense is a single ledger entry. The ID is assigned by the store and
// never changes; every other field is mutable through UpdateExpense.
// Negative amounts are money spent, positive amounts credits or refunds.
type Expense struct {
	ID          string        `json:"id"`
	Amount      Money         `json:"amount"`
	Category    Category      `json:"category"`
	Date        time.Time     `json:"date"`
	Description string        `json:"description"`
	Method      PaymentMethod `json:"paymentMethod"`
	CreatedAt   time.Time     `json:"timestamp"`
}

// Validate checks the closed enumerations and required fields. Amount sign
// is unconstrained at this layer.
func (e Expense) Validate() error {
	if !e.Category.Valid() {
		return ErrUnknownCategory
	}
	if e.Method != "" && !e.Method.Valid() {
		return ErrUnknownPaymentMethod
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	return nil
}

// Budget tracks a spending limit for one category. Spent is derived: it
// always equals the sum of |amount| over the current expenses in the
// category and is maintained by the store, never edited directly.
type Budget struct {
	Category  Category `json:"category"`
	Allocated Money    `json:"allocated"`
	Spent     Money    `json:"spent"`
}

// IsOverBudget reports whether spending exceeds the allocation.
func (b Budget) IsOverBudget() bool {
	return b.Spent.Cents > b.Allocated.Cents
}

// Utilization returns spent/allocated, or 0 when nothing is allocated.
func (b Budget) Utilization() float64 {
	if b.Allocated.Cents == 0 {
		return 0
	}
	return float64(b.Spent.Cents) / float64(b.Allocated.Cents)
}

// Goal is a savings target. Progress is derived from Current and Target
// and deliberately unclamped: over-contribution pushes it past 100.
type Goal struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Target     Money     `json:"target"`
	Current    Money     `json:"current"`
	Progress   float64   `json:"progress"`
	Type       GoalType  `json:"category"`
	TargetDate time.Time `json:"targetDate"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (g Goal) Validate() error {
	if len(strings.TrimSpace(g.Name)) == 0 {
		return ErrEmptyName
	}
	if g.Target.Cents <= 0 {
		return ErrInvalidTarget
	}
	if !g.Type.Valid() {
		return ErrUnknownGoalType
	}
	return nil
}

// Completed reports whether the goal has reached its target.
func (g Goal) Completed() bool {
	return g.Current.Cents >= g.Target.Cents
}
