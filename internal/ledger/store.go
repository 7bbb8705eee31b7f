// Package ledger owns the in-memory Expense, Budget, Goal and unlock
// collections and keeps them consistent with the durable key-value
// collaborator. All mutations are serialized behind one mutex; the
// in-memory change and its persistence write form a single critical
// section so writes for the same collection never interleave.
//
// Persistence policy: commit-after-persist. New collection values are
// written to the store first and the in-memory state is replaced only
// once every affected key succeeded, so memory never runs ahead of
// durable storage. If a later key fails after an earlier one was
// written, the earlier key is restored best-effort to its previous
// bytes before the error is returned.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"tally/internal/core"
	"tally/internal/kv"
)

// Publisher receives a best-effort notification after every committed
// mutation. A nil publisher is skipped; publish failures are logged and
// never fail the mutation.
type Publisher interface {
	PublishLedgerEvent(ctx context.Context, evt Event) error
}

// Event describes one committed ledger mutation.
type Event struct {
	Collection string    `json:"collection"`
	Op         string    `json:"op"`
	ID         string    `json:"id,omitempty"`
	At         time.Time `json:"at"`
}

// Store is the single owner of the ledger collections. Construct with
// New, then Hydrate before use.
type Store struct {
	mu  sync.Mutex
	kv  kv.Store
	pub Publisher

	now   func() time.Time
	newID func() string

	starter map[core.Category]core.Money

	expenses []core.Expense
	budgets  map[core.Category]core.Budget
	goals    []core.Goal
	unlocks  core.UnlockState
}

// Option configures a Store.
type Option func(*Store)

// WithPublisher attaches a mutation event publisher.
func WithPublisher(p Publisher) Option {
	return func(s *Store) { s.pub = p }
}

// WithClock overrides the time source. Tests use this.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDFunc overrides id assignment. Tests use this.
func WithIDFunc(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithStarterAllocations overrides the default starter budget table used
// when no budgets exist in durable storage.
func WithStarterAllocations(alloc map[core.Category]core.Money) Option {
	return func(s *Store) { s.starter = alloc }
}

func New(store kv.Store, opts ...Option) *Store {
	s := &Store{
		kv:      store,
		now:     time.Now,
		newID:   uuid.NewString,
		starter: DefaultStarterAllocations(),
		budgets: make(map[core.Category]core.Budget),
		unlocks: core.NewUnlockState(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExpenseDraft is the caller-supplied part of a new expense; the store
// assigns id and creation timestamp.
type ExpenseDraft struct {
	Amount      core.Money
	Category    core.Category
	Date        time.Time
	Description string
	Method      core.PaymentMethod
}

// AddExpense validates the draft, assigns id and timestamp, applies the
// budget delta for the category and persists expenses and budgets.
func (s *Store) AddExpense(ctx context.Context, draft ExpenseDraft) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := core.Expense{
		ID:          s.newID(),
		Amount:      draft.Amount,
		Category:    draft.Category,
		Date:        draft.Date,
		Description: draft.Description,
		Method:      draft.Method,
		CreatedAt:   s.now(),
	}
	if e.Date.IsZero() {
		e.Date = e.CreatedAt
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	newExpenses := append(s.copyExpenses(), e)
	newBudgets := applyDelta(s.copyBudgets(), e.Category, e.Amount.Abs())

	if err := s.persist(ctx,
		write{kv.KeyExpenses, marshalExpenses(newExpenses), s.marshalCurrent(kv.KeyExpenses)},
		write{kv.KeyBudgets, marshalBudgets(newBudgets), s.marshalCurrent(kv.KeyBudgets)},
	); err != nil {
		return core.Expense{}, err
	}

	s.expenses = newExpenses
	s.budgets = newBudgets
	s.publish(ctx, Event{Collection: kv.KeyExpenses, Op: "add", ID: e.ID, At: s.now()})

	slog.InfoContext(ctx, "Expense added",
		"id", e.ID, "category", e.Category, "amount_cents", e.Amount.Cents)
	return e, nil
}

// ExpensePatch carries the mutable expense fields; nil fields are left
// unchanged.
type ExpensePatch struct {
	Amount      *core.Money
	Category    *core.Category
	Date        *time.Time
	Description *string
	Method      *core.PaymentMethod
}

// UpdateExpense applies the patch. When category or amount changes the
// prior contribution is subtracted from the prior category and the new
// contribution added to the new one: two deltas, never a recompute, so
// same-category edits net out exactly.
func (s *Store) UpdateExpense(ctx context.Context, id string, patch ExpensePatch) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findExpense(id)
	if idx < 0 {
		return core.Expense{}, fmt.Errorf("expense %s: %w", id, core.ErrNotFound)
	}

	prior := s.expenses[idx]
	next := prior
	if patch.Amount != nil {
		next.Amount = *patch.Amount
	}
	if patch.Category != nil {
		next.Category = *patch.Category
	}
	if patch.Date != nil {
		next.Date = *patch.Date
	}
	if patch.Description != nil {
		next.Description = *patch.Description
	}
	if patch.Method != nil {
		next.Method = *patch.Method
	}
	if err := next.Validate(); err != nil {
		return core.Expense{}, err
	}

	newExpenses := s.copyExpenses()
	newExpenses[idx] = next

	newBudgets := s.copyBudgets()
	if prior.Category != next.Category || prior.Amount != next.Amount {
		newBudgets = applyDelta(newBudgets, prior.Category, core.Money{Cents: -prior.Amount.Abs().Cents})
		newBudgets = applyDelta(newBudgets, next.Category, next.Amount.Abs())
	}

	if err := s.persist(ctx,
		write{kv.KeyExpenses, marshalExpenses(newExpenses), s.marshalCurrent(kv.KeyExpenses)},
		write{kv.KeyBudgets, marshalBudgets(newBudgets), s.marshalCurrent(kv.KeyBudgets)},
	); err != nil {
		return core.Expense{}, err
	}

	s.expenses = newExpenses
	s.budgets = newBudgets
	s.publish(ctx, Event{Collection: kv.KeyExpenses, Op: "update", ID: id, At: s.now()})
	return next, nil
}

// DeleteExpense removes the expense and reverses its budget contribution.
func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findExpense(id)
	if idx < 0 {
		return fmt.Errorf("expense %s: %w", id, core.ErrNotFound)
	}
	removed := s.expenses[idx]

	newExpenses := s.copyExpenses()
	newExpenses = append(newExpenses[:idx], newExpenses[idx+1:]...)
	newBudgets := applyDelta(s.copyBudgets(), removed.Category,
		core.Money{Cents: -removed.Amount.Abs().Cents})

	if err := s.persist(ctx,
		write{kv.KeyExpenses, marshalExpenses(newExpenses), s.marshalCurrent(kv.KeyExpenses)},
		write{kv.KeyBudgets, marshalBudgets(newBudgets), s.marshalCurrent(kv.KeyBudgets)},
	); err != nil {
		return err
	}

	s.expenses = newExpenses
	s.budgets = newBudgets
	s.publish(ctx, Event{Collection: kv.KeyExpenses, Op: "delete", ID: id, At: s.now()})
	return nil
}

// GoalDraft is the caller-supplied part of a new goal; the store assigns
// id and creation timestamp and starts current and progress at zero.
type GoalDraft struct {
	Name       string
	Target     core.Money
	Type       core.GoalType
	TargetDate time.Time
}

func (s *Store) AddGoal(ctx context.Context, draft GoalDraft) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := core.Goal{
		ID:         s.newID(),
		Name:       draft.Name,
		Target:     draft.Target,
		Type:       draft.Type,
		TargetDate: draft.TargetDate,
		CreatedAt:  s.now(),
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}

	newGoals := append(s.copyGoals(), g)
	if err := s.persist(ctx,
		write{kv.KeyGoals, marshalGoals(newGoals), s.marshalCurrent(kv.KeyGoals)},
	); err != nil {
		return core.Goal{}, err
	}

	s.goals = newGoals
	s.publish(ctx, Event{Collection: kv.KeyGoals, Op: "add", ID: g.ID, At: s.now()})
	slog.InfoContext(ctx, "Goal added", "id", g.ID, "name", g.Name, "target_cents", g.Target.Cents)
	return g, nil
}

// GoalPatch carries the mutable goal fields; nil fields are left
// unchanged.
type GoalPatch struct {
	Name       *string
	Target     *core.Money
	Current    *core.Money
	Type       *core.GoalType
	TargetDate *time.Time
}

// UpdateGoal applies the patch and recomputes progress from the patched
// current and target whenever either changed.
func (s *Store) UpdateGoal(ctx context.Context, id string, patch GoalPatch) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findGoal(id)
	if idx < 0 {
		return core.Goal{}, fmt.Errorf("goal %s: %w", id, core.ErrNotFound)
	}

	next := s.goals[idx]
	if patch.Name != nil {
		next.Name = *patch.Name
	}
	if patch.Target != nil {
		next.Target = *patch.Target
	}
	if patch.Current != nil {
		next.Current = *patch.Current
	}
	if patch.Type != nil {
		next.Type = *patch.Type
	}
	if patch.TargetDate != nil {
		next.TargetDate = *patch.TargetDate
	}
	if err := next.Validate(); err != nil {
		return core.Goal{}, err
	}
	if patch.Target != nil || patch.Current != nil {
		next.Progress = progress(next.Current, next.Target)
	}

	newGoals := s.copyGoals()
	newGoals[idx] = next
	if err := s.persist(ctx,
		write{kv.KeyGoals, marshalGoals(newGoals), s.marshalCurrent(kv.KeyGoals)},
	); err != nil {
		return core.Goal{}, err
	}

	s.goals = newGoals
	s.publish(ctx, Event{Collection: kv.KeyGoals, Op: "update", ID: id, At: s.now()})
	return next, nil
}

func (s *Store) DeleteGoal(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findGoal(id)
	if idx < 0 {
		return fmt.Errorf("goal %s: %w", id, core.ErrNotFound)
	}

	newGoals := s.copyGoals()
	newGoals = append(newGoals[:idx], newGoals[idx+1:]...)
	if err := s.persist(ctx,
		write{kv.KeyGoals, marshalGoals(newGoals), s.marshalCurrent(kv.KeyGoals)},
	); err != nil {
		return err
	}

	s.goals = newGoals
	s.publish(ctx, Event{Collection: kv.KeyGoals, Op: "delete", ID: id, At: s.now()})
	return nil
}

// ContributeToGoal adds a positive amount to the goal's current value
// and recomputes progress. Neither current nor progress is clamped;
// completed reports current >= target so the caller can celebrate.
func (s *Store) ContributeToGoal(ctx context.Context, id string, amount core.Money) (g core.Goal, completed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if amount.Cents <= 0 {
		return core.Goal{}, false, core.ErrInvalidAmount
	}
	idx := s.findGoal(id)
	if idx < 0 {
		return core.Goal{}, false, fmt.Errorf("goal %s: %w", id, core.ErrNotFound)
	}

	next := s.goals[idx]
	next.Current = next.Current.Add(amount)
	next.Progress = progress(next.Current, next.Target)

	newGoals := s.copyGoals()
	newGoals[idx] = next
	if err := s.persist(ctx,
		write{kv.KeyGoals, marshalGoals(newGoals), s.marshalCurrent(kv.KeyGoals)},
	); err != nil {
		return core.Goal{}, false, err
	}

	s.goals = newGoals
	s.publish(ctx, Event{Collection: kv.KeyGoals, Op: "contribute", ID: id, At: s.now()})
	slog.InfoContext(ctx, "Goal contribution",
		"id", id, "amount_cents", amount.Cents, "progress", next.Progress)
	return next, next.Completed(), nil
}

// SetBudgetAllocation edits the one non-derived budget field. The row is
// created when absent so the category starts receiving deltas; spent is
// never touched.
func (s *Store) SetBudgetAllocation(ctx context.Context, category core.Category, allocated core.Money) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !category.Valid() {
		return core.Budget{}, core.ErrUnknownCategory
	}
	if allocated.Cents < 0 {
		return core.Budget{}, core.ErrNegativeAllocation
	}

	newBudgets := s.copyBudgets()
	row, ok := newBudgets[category]
	if !ok {
		row = core.Budget{Category: category}
	}
	row.Allocated = allocated
	newBudgets[category] = row

	if err := s.persist(ctx,
		write{kv.KeyBudgets, marshalBudgets(newBudgets), s.marshalCurrent(kv.KeyBudgets)},
	); err != nil {
		return core.Budget{}, err
	}

	s.budgets = newBudgets
	s.publish(ctx, Event{Collection: kv.KeyBudgets, Op: "allocate", ID: string(category), At: s.now()})
	return row, nil
}

// SetUnlockState replaces the persisted unlock state. The rule engine
// calls this after an evaluation produced new unlocks or completions.
func (s *Store) SetUnlockState(ctx context.Context, st core.UnlockState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st = st.Clone()
	if err := s.persist(ctx,
		write{kv.KeyUnlocks, marshalUnlocks(st), s.marshalCurrent(kv.KeyUnlocks)},
	); err != nil {
		return err
	}

	s.unlocks = st
	s.publish(ctx, Event{Collection: kv.KeyUnlocks, Op: "update", At: s.now()})
	return nil
}

// Expenses returns a copy of the current expense collection.
func (s *Store) Expenses() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyExpenses()
}

// Budgets returns a copy of the current budgets sorted by category.
func (s *Store) Budgets() []core.Budget {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedBudgets(s.budgets)
}

// Goals returns a copy of the current goal collection.
func (s *Store) Goals() []core.Goal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyGoals()
}

// UnlockState returns a copy of the current unlock state.
func (s *Store) UnlockState() core.UnlockState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unlocks.Clone()
}

// write pairs a collection key with its new serialized value and the
// bytes to restore should a later key in the same operation fail.
type write struct {
	key  string
	data []byte
	prev []byte
}

func (s *Store) persist(ctx context.Context, writes ...write) error {
	for i, w := range writes {
		if err := s.kv.Set(ctx, w.key, w.data); err != nil {
			for _, done := range writes[:i] {
				if rerr := s.kv.Set(ctx, done.key, done.prev); rerr != nil {
					slog.ErrorContext(ctx, "Failed to restore collection after write failure",
						"key", done.key, "error", rerr)
				}
			}
			return fmt.Errorf("persist %s: %w: %w", w.key, core.ErrPersistence, err)
		}
	}
	return nil
}

// marshalCurrent serializes the committed in-memory value of a key, used
// as the restore image for multi-key operations.
func (s *Store) marshalCurrent(key string) []byte {
	switch key {
	case kv.KeyExpenses:
		return marshalExpenses(s.expenses)
	case kv.KeyBudgets:
		return marshalBudgets(s.budgets)
	case kv.KeyGoals:
		return marshalGoals(s.goals)
	default:
		return marshalUnlocks(s.unlocks)
	}
}

func (s *Store) publish(ctx context.Context, evt Event) {
	if s.pub == nil {
		return
	}
	if err := s.pub.PublishLedgerEvent(ctx, evt); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"collection", evt.Collection, "op", evt.Op, "error", err)
	}
}

func (s *Store) findExpense(id string) int {
	for i, e := range s.expenses {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) findGoal(id string) int {
	for i, g := range s.goals {
		if g.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) copyExpenses() []core.Expense {
	return append([]core.Expense(nil), s.expenses...)
}

func (s *Store) copyGoals() []core.Goal {
	return append([]core.Goal(nil), s.goals...)
}

func (s *Store) copyBudgets() map[core.Category]core.Budget {
	out := make(map[core.Category]core.Budget, len(s.budgets))
	for k, v := range s.budgets {
		out[k] = v
	}
	return out
}

// applyDelta adds delta to the category's spent accumulator. Deltas for
// categories without a budget row are dropped; SetBudgetAllocation is
// how callers ensure coverage.
func applyDelta(budgets map[core.Category]core.Budget, category core.Category, delta core.Money) map[core.Category]core.Budget {
	row, ok := budgets[category]
	if !ok {
		return budgets
	}
	row.Spent = row.Spent.Add(delta)
	budgets[category] = row
	return budgets
}

func progress(current, target core.Money) float64 {
	if target.Cents <= 0 {
		return 0
	}
	return float64(current.Cents) / float64(target.Cents) * 100
}

func sortedBudgets(budgets map[core.Category]core.Budget) []core.Budget {
	out := make([]core.Budget, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

func marshalExpenses(expenses []core.Expense) []byte {
	return mustMarshal(expenses)
}

func marshalBudgets(budgets map[core.Category]core.Budget) []byte {
	return mustMarshal(sortedBudgets(budgets))
}

func marshalGoals(goals []core.Goal) []byte {
	return mustMarshal(goals)
}

func marshalUnlocks(st core.UnlockState) []byte {
	return mustMarshal(st)
}

// mustMarshal never fails for our collection types; a failure would be a
// programming error, not runtime input.
func mustMarshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("marshal ledger collection: %v", err))
	}
	if data == nil || string(data) == "null" {
		return []byte("[]")
	}
	return data
}
