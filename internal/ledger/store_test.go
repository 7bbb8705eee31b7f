package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tally/internal/core"
	"tally/internal/kv"
	"tally/internal/kv/memory"
)

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, backend *memory.Store) *Store {
	t.Helper()
	var seq int
	s := New(backend,
		WithClock(func() time.Time { return testNow }),
		WithIDFunc(func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		}),
	)
	require.NoError(t, s.Hydrate(context.Background()))
	return s
}

func spentFor(t *testing.T, s *Store, cat core.Category) int64 {
	t.Helper()
	for _, b := range s.Budgets() {
		if b.Category == cat {
			return b.Spent.Cents
		}
	}
	t.Fatalf("no budget row for %s", cat)
	return 0
}

func TestAddExpenseUpdatesBudget(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, memory.New())
	_, err := s.SetBudgetAllocation(ctx, core.CategoryFood, core.Money{Cents: 10000})
	require.NoError(t, err)

	for _, cents := range []int64{-5000, -3000} {
		_, err := s.AddExpense(ctx, ExpenseDraft{
			Amount:      core.Money{Cents: cents},
			Category:    core.CategoryFood,
			Description: "meal",
			Method:      core.PayCash,
		})
		require.NoError(t, err)
	}

	assert.Equal(t, int64(8000), spentFor(t, s, core.CategoryFood))
	for _, b := range s.Budgets() {
		if b.Category == core.CategoryFood {
			assert.False(t, b.IsOverBudget())
		}
	}
}

func TestAddExpenseRejectsUnknownCategory(t *testing.T) {
	s := newTestStore(t, memory.New())
	_, err := s.AddExpense(context.Background(), ExpenseDraft{
		Amount:      core.Money{Cents: -100},
		Category:    "lattes",
		Description: "x",
	})
	assert.ErrorIs(t, err, core.ErrValidation)
	assert.Empty(t, s.Expenses())
}

func TestBudgetConsistencyInvariant(t *testing.T) {
	// After an arbitrary add/update/delete sequence, spent per category
	// equals the sum of |amount| over the expenses still present.
	ctx := context.Background()
	s := newTestStore(t, memory.New())

	e1, err := s.AddExpense(ctx, ExpenseDraft{Amount: core.Money{Cents: -4000}, Category: core.CategoryFood, Description: "a"})
	require.NoError(t, err)
	e2, err := s.AddExpense(ctx, ExpenseDraft{Amount: core.Money{Cents: -2500}, Category: core.CategoryDining, Description: "b"})
	require.NoError(t, err)
	_, err = s.AddExpense(ctx, ExpenseDraft{Amount: core.Money{Cents: 1000}, Category: core.CategoryFood, Description: "refund"})
	require.NoError(t, err)

	newAmount := core.Money{Cents: -6000}
	_, err = s.UpdateExpense(ctx, e1.ID, ExpensePatch{Amount: &newAmount})
	require.NoError(t, err)
	require.NoError(t, s.DeleteExpense(ctx, e2.ID))

	want := map[core.Category]int64{}
	for _, e := range s.Expenses() {
		want[e.Category] += e.Amount.Abs().Cents
	}
	for _, b := range s.Budgets() {
		assert.Equal(t, want[b.Category], b.Spent.Cents, "category %s", b.Category)
	}
}

func TestUpdateExpenseMovesBetweenCategories(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, memory.New())
	_, err := s.SetBudgetAllocation(ctx, core.CategoryFood, core.Money{Cents: 10000})
	require.NoError(t, err)
	_, err = s.SetBudgetAllocation(ctx, core.CategoryTransportation, core.Money{Cents: 10000})
	require.NoError(t, err)

	e, err := s.AddExpense(ctx, ExpenseDraft{
		Amount: core.Money{Cents: -4000}, Category: core.CategoryFood, Description: "x"})
	require.NoError(t, err)

	before := spentFor(t, s, core.CategoryFood) + spentFor(t, s, core.CategoryTransportation)

	cat := core.CategoryTransportation
	_, err = s.UpdateExpense(ctx, e.ID, ExpensePatch{Category: &cat})
	require.NoError(t, err)

	assert.Equal(t, int64(0), spentFor(t, s, core.CategoryFood))
	assert.Equal(t, int64(4000), spentFor(t, s, core.CategoryTransportation))
	after := spentFor(t, s, core.CategoryFood) + spentFor(t, s, core.CategoryTransportation)
	assert.Equal(t, before, after, "total across both budgets unchanged")
}

func TestUpdateExpenseSameCategoryNetsToZero(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, memory.New())
	e, err := s.AddExpense(ctx, ExpenseDraft{
		Amount: core.Money{Cents: -4000}, Category: core.CategoryFood, Description: "x"})
	require.NoError(t, err)

	desc := "renamed"
	_, err = s.UpdateExpense(ctx, e.ID, ExpensePatch{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, int64(4000), spentFor(t, s, core.CategoryFood))
}

func TestDeltaDroppedWithoutBudgetRow(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	// Start with an explicitly empty budget table: no rows at all.
	require.NoError(t, backend.Set(ctx, kv.KeyBudgets, []byte(`[]`)))
	s := newTestStore(t, backend)

	_, err := s.AddExpense(ctx, ExpenseDraft{
		Amount: core.Money{Cents: -4000}, Category: core.CategoryFood, Description: "x"})
	require.NoError(t, err)
	assert.Empty(t, s.Budgets(), "no auto-created budget rows")
}

func TestExpenseNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, memory.New())
	_, err := s.UpdateExpense(ctx, "nope", ExpensePatch{})
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.ErrorIs(t, s.DeleteExpense(ctx, "nope"), core.ErrNotFound)
}

func TestGoalLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, memory.New())

	g, err := s.AddGoal(ctx, GoalDraft{
		Name:       "Vacation",
		Target:     core.Money{Cents: 100000},
		Type:       core.GoalVacation,
		TargetDate: testNow.AddDate(0, 6, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), g.Current.Cents)
	assert.Equal(t, float64(0), g.Progress)

	g, completed, err := s.ContributeToGoal(ctx, g.ID, core.Money{Cents: 25000})
	require.NoError(t, err)
	assert.False(t, completed)
	assert.Equal(t, int64(25000), g.Current.Cents)
	assert.Equal(t, float64(25), g.Progress)

	// Over-contribution completes and stays unclamped.
	g, completed, err = s.ContributeToGoal(ctx, g.ID, core.Money{Cents: 80000})
	require.NoError(t, err)
	assert.True(t, completed)
	assert.Equal(t, int64(105000), g.Current.Cents)
	assert.Equal(t, float64(105), g.Progress)

	require.NoError(t, s.DeleteGoal(ctx, g.ID))
	assert.Empty(t, s.Goals())
}

func TestContributeRejectsNonPositive(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, memory.New())
	g, err := s.AddGoal(ctx, GoalDraft{
		Name: "x", Target: core.Money{Cents: 1000}, Type: core.GoalOther,
		TargetDate: testNow.AddDate(1, 0, 0)})
	require.NoError(t, err)

	for _, cents := range []int64{0, -100} {
		_, _, err := s.ContributeToGoal(ctx, g.ID, core.Money{Cents: cents})
		assert.ErrorIs(t, err, core.ErrValidation)
	}
}

func TestUpdateGoalRecomputesProgress(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, memory.New())
	g, err := s.AddGoal(ctx, GoalDraft{
		Name: "x", Target: core.Money{Cents: 100000}, Type: core.GoalOther,
		TargetDate: testNow.AddDate(1, 0, 0)})
	require.NoError(t, err)

	cur := core.Money{Cents: 50000}
	g, err = s.UpdateGoal(ctx, g.ID, GoalPatch{Current: &cur})
	require.NoError(t, err)
	assert.Equal(t, float64(50), g.Progress)

	// Changing target recomputes using the existing current value.
	target := core.Money{Cents: 200000}
	g, err = s.UpdateGoal(ctx, g.ID, GoalPatch{Target: &target})
	require.NoError(t, err)
	assert.Equal(t, float64(25), g.Progress)

	// A name-only patch leaves progress untouched.
	name := "renamed"
	g, err = s.UpdateGoal(ctx, g.ID, GoalPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, float64(25), g.Progress)
}

func TestSetBudgetAllocationLeavesSpentAlone(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, memory.New())
	_, err := s.AddExpense(ctx, ExpenseDraft{
		Amount: core.Money{Cents: -3000}, Category: core.CategoryFood, Description: "x"})
	require.NoError(t, err)

	b, err := s.SetBudgetAllocation(ctx, core.CategoryFood, core.Money{Cents: 77700})
	require.NoError(t, err)
	assert.Equal(t, int64(77700), b.Allocated.Cents)
	assert.Equal(t, int64(3000), spentFor(t, s, core.CategoryFood))

	_, err = s.SetBudgetAllocation(ctx, core.CategoryFood, core.Money{Cents: -1})
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestPersistFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	s := newTestStore(t, backend)
	_, err := s.AddExpense(ctx, ExpenseDraft{
		Amount: core.Money{Cents: -1000}, Category: core.CategoryFood, Description: "keep"})
	require.NoError(t, err)

	backend.FailSet = errors.New("disk full")
	_, err = s.AddExpense(ctx, ExpenseDraft{
		Amount: core.Money{Cents: -9000}, Category: core.CategoryFood, Description: "lost"})
	assert.ErrorIs(t, err, core.ErrPersistence)

	// In-memory state is still consistent with durable storage: one
	// expense, spent unchanged.
	assert.Len(t, s.Expenses(), 1)
	assert.Equal(t, int64(1000), spentFor(t, s, core.CategoryFood))

	// A later mutation succeeds once the backend recovers.
	backend.FailSet = nil
	_, err = s.AddExpense(ctx, ExpenseDraft{
		Amount: core.Money{Cents: -500}, Category: core.CategoryFood, Description: "ok"})
	require.NoError(t, err)
	assert.Equal(t, int64(1500), spentFor(t, s, core.CategoryFood))
}

func TestHydrateRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	s := newTestStore(t, backend)

	e, err := s.AddExpense(ctx, ExpenseDraft{
		Amount: core.Money{Cents: -4321}, Category: core.CategoryTravel,
		Description: "flight", Method: core.PayCreditCard,
		Date: testNow.AddDate(0, 0, -2)})
	require.NoError(t, err)
	g, err := s.AddGoal(ctx, GoalDraft{
		Name: "Trip", Target: core.Money{Cents: 50000}, Type: core.GoalVacation,
		TargetDate: testNow.AddDate(0, 3, 0)})
	require.NoError(t, err)

	st := s.UnlockState()
	st.Achievements.Add("first_expense")
	require.NoError(t, s.SetUnlockState(ctx, st))

	// A second store over the same backend sees exactly what was written.
	reloaded := New(backend, WithClock(func() time.Time { return testNow }))
	require.NoError(t, reloaded.Hydrate(ctx))

	require.Len(t, reloaded.Expenses(), 1)
	assert.Equal(t, e, reloaded.Expenses()[0])
	require.Len(t, reloaded.Goals(), 1)
	assert.Equal(t, g, reloaded.Goals()[0])
	assert.Equal(t, s.Budgets(), reloaded.Budgets())
	assert.True(t, reloaded.UnlockState().Achievements.Has("first_expense"))
}

func TestHydrateSeedsStarterBudgets(t *testing.T) {
	s := newTestStore(t, memory.New())
	budgets := s.Budgets()
	require.Len(t, budgets, len(DefaultStarterAllocations()))
	for _, b := range budgets {
		assert.Equal(t, DefaultStarterAllocations()[b.Category], b.Allocated)
		assert.Equal(t, int64(0), b.Spent.Cents)
	}

	// Reads return copies; mutating them must not leak into the store.
	budgets[0].Spent = core.Money{Cents: 999}
	assert.Equal(t, int64(0), s.Budgets()[0].Spent.Cents)
}

type recordingPublisher struct {
	events []Event
}

func (r *recordingPublisher) PublishLedgerEvent(_ context.Context, evt Event) error {
	r.events = append(r.events, evt)
	return nil
}

func TestMutationsPublishEvents(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	var seq int
	s := New(memory.New(),
		WithClock(func() time.Time { return testNow }),
		WithIDFunc(func() string { seq++; return fmt.Sprintf("id-%d", seq) }),
		WithPublisher(pub),
	)
	require.NoError(t, s.Hydrate(ctx))

	e, err := s.AddExpense(ctx, ExpenseDraft{
		Amount: core.Money{Cents: -100}, Category: core.CategoryFood, Description: "x"})
	require.NoError(t, err)
	require.NoError(t, s.DeleteExpense(ctx, e.ID))

	require.Len(t, pub.events, 2)
	assert.Equal(t, "add", pub.events[0].Op)
	assert.Equal(t, "delete", pub.events[1].Op)
	assert.Equal(t, e.ID, pub.events[0].ID)
}
