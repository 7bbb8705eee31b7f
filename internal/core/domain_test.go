package core

import (
	"errors"
	"testing"
	"time"
)

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		Amount:      Money{Cents: -4200},
		Category:    CategoryFood,
		Date:        time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Description: "groceries",
		Method:      PayCreditCard,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		e    Expense
		want error
	}{
		{"unknown category", Expense{Category: "snacks", Description: "x"}, ErrUnknownCategory},
		{"unknown method", Expense{Category: CategoryFood, Description: "x", Method: "cheque"}, ErrUnknownPaymentMethod},
		{"empty description", Expense{Category: CategoryFood, Description: "   "}, ErrEmptyDescription},
	}
	for _, tc := range cases {
		err := tc.e.Validate()
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, err, tc.want)
		}
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: %v should match ErrValidation", tc.name, err)
		}
	}
}

func TestGoalValidate(t *testing.T) {
	good := Goal{Name: "Emergency fund", Target: Money{Cents: 100000}, Type: GoalEmergency}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		g    Goal
		want error
	}{
		{Goal{Name: "", Target: Money{Cents: 1}, Type: GoalOther}, ErrEmptyName},
		{Goal{Name: "x", Target: Money{Cents: 0}, Type: GoalOther}, ErrInvalidTarget},
		{Goal{Name: "x", Target: Money{Cents: 1}, Type: "yacht"}, ErrUnknownGoalType},
	}
	for i, tc := range bads {
		if err := tc.g.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d: got %v, want %v", i, err, tc.want)
		}
	}
}

func TestBudgetDerived(t *testing.T) {
	cases := []struct {
		allocated, spent int64
		over             bool
		util             float64
	}{
		{10000, 8000, false, 0.8},
		{10000, 10000, false, 1.0},
		{10000, 10001, true, 1.0001},
		{0, 500, true, 0}, // zero allocation guards utilization to 0
		{0, 0, false, 0},
	}
	for i, tc := range cases {
		b := Budget{Category: CategoryFood, Allocated: Money{Cents: tc.allocated}, Spent: Money{Cents: tc.spent}}
		if got := b.IsOverBudget(); got != tc.over {
			t.Fatalf("case %d: IsOverBudget = %v, want %v", i, got, tc.over)
		}
		if got := b.Utilization(); got != tc.util {
			t.Fatalf("case %d: Utilization = %v, want %v", i, got, tc.util)
		}
	}
}

func TestCategoryEnumeration(t *testing.T) {
	for _, c := range Categories() {
		if !c.Valid() {
			t.Fatalf("category %q from Categories() should be valid", c)
		}
	}
	if Category("petrol").Valid() {
		t.Fatal("unknown category should be invalid")
	}
}
