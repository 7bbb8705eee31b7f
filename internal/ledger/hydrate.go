package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"tally/internal/core"
	"tally/internal/kv"
)

// DefaultStarterAllocations is the budget table a fresh ledger starts
// with when durable storage holds no budgets yet. Amounts are monthly.
func DefaultStarterAllocations() map[core.Category]core.Money {
	return map[core.Category]core.Money{
		core.CategoryFood:           {Cents: 50000},
		core.CategoryDining:         {Cents: 20000},
		core.CategoryTransportation: {Cents: 20000},
		core.CategoryHousing:        {Cents: 150000},
		core.CategoryUtilities:      {Cents: 25000},
		core.CategoryEntertainment:  {Cents: 15000},
		core.CategoryShopping:       {Cents: 20000},
		core.CategoryHealthcare:     {Cents: 10000},
		core.CategoryEducation:      {Cents: 5000},
		core.CategoryTravel:         {Cents: 10000},
		core.CategorySavings:        {Cents: 40000},
		core.CategoryDebt:           {Cents: 20000},
		core.CategoryOther:          {Cents: 10000},
	}
}

// Hydrate loads the four collections from durable storage, which is the
// sole source of truth across restarts. The keys are fetched
// concurrently. Missing budgets fall back to the starter allocation
// table; missing expenses, goals and unlock state start empty.
func (s *Store) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		expenses []core.Expense
		budgets  []core.Budget
		goals    []core.Goal
		unlocks  core.UnlockState
		seeded   bool
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.load(ctx, kv.KeyExpenses, &expenses)
		return err
	})
	g.Go(func() error {
		_, err := s.load(ctx, kv.KeyGoals, &goals)
		return err
	})
	g.Go(func() error {
		_, err := s.load(ctx, kv.KeyUnlocks, &unlocks)
		return err
	})
	g.Go(func() error {
		found, err := s.load(ctx, kv.KeyBudgets, &budgets)
		seeded = !found
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	s.expenses = expenses
	s.goals = goals
	unlocks.Normalize()
	s.unlocks = unlocks

	s.budgets = make(map[core.Category]core.Budget, len(budgets))
	if seeded {
		for cat, allocated := range s.starter {
			s.budgets[cat] = core.Budget{Category: cat, Allocated: allocated}
		}
		// Write the seeded table back so the next start finds it.
		if err := s.persist(ctx,
			write{kv.KeyBudgets, marshalBudgets(s.budgets), nil},
		); err != nil {
			return err
		}
	} else {
		for _, b := range budgets {
			s.budgets[b.Category] = b
		}
	}

	slog.InfoContext(ctx, "Ledger hydrated",
		"expenses", len(s.expenses),
		"budgets", len(s.budgets),
		"goals", len(s.goals),
		"seeded_budgets", seeded)
	return nil
}

// load fetches and decodes one collection key. A key that was never
// written reports found=false so the caller applies its default; any
// other failure is a persistence error.
func (s *Store) load(ctx context.Context, key string, out any) (found bool, err error) {
	data, err := s.kv.Get(ctx, key)
	if errors.Is(err, kv.ErrNoKey) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s: %w: %w", key, core.ErrPersistence, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decode %s: %w: %w", key, core.ErrPersistence, err)
	}
	return true, nil
}
