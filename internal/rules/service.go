package rules

import (
	"context"
	"log/slog"
	"time"

	"tally/internal/core"
	"tally/internal/ledger"
)

// CounterSource supplies the caller-maintained counters for a snapshot.
// Implementations must not mutate the returned map after handing it out.
type CounterSource interface {
	Counters() map[string]float64
}

// StaticCounters is a fixed CounterSource, typically loaded from the
// plan file.
type StaticCounters map[string]float64

func (c StaticCounters) Counters() map[string]float64 { return c }

// Service runs the engine against a ledger store: it captures a
// snapshot, evaluates, and persists the resulting unlock state.
type Service struct {
	engine   *Engine
	store    *ledger.Store
	counters CounterSource
	logger   *slog.Logger
}

// NewService wires an engine to a store. counters may be nil, in which
// case counter-gated rules stay unsatisfied.
func NewService(engine *Engine, store *ledger.Store, counters CounterSource, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if counters == nil {
		counters = StaticCounters(nil)
	}
	return &Service{engine: engine, store: store, counters: counters, logger: logger}
}

// Engine exposes the underlying engine for catalog listings.
func (s *Service) Engine() *Engine { return s.engine }

func (s *Service) snapshot() Snapshot {
	return Snapshot{
		Expenses: s.store.Expenses(),
		Budgets:  s.store.Budgets(),
		Goals:    s.store.Goals(),
		Counters: s.counters.Counters(),
	}
}

// Evaluate runs one full pass: achievements first, then active
// challenges, against the same snapshot. The merged unlock state is
// persisted only when something changed.
func (s *Service) Evaluate(ctx context.Context) (unlocked, completed []Rule, err error) {
	snap := s.snapshot()
	state := s.store.UnlockState()

	state, unlocked = s.engine.EvaluateAchievements(snap, state)
	state, completed = s.engine.EvaluateChallenges(snap, state)

	if len(unlocked) == 0 && len(completed) == 0 {
		return nil, nil, nil
	}
	if err := s.store.SetUnlockState(ctx, state); err != nil {
		return nil, nil, err
	}
	for _, r := range unlocked {
		s.logger.InfoContext(ctx, "AchievementUnlocked", "id", r.ID, "points", r.Points)
	}
	for _, r := range completed {
		s.logger.InfoContext(ctx, "ChallengeCompleted", "id", r.ID, "points", r.Points)
	}
	return unlocked, completed, nil
}

// Accept marks a challenge as active and persists the new state.
func (s *Service) Accept(ctx context.Context, id string) error {
	state, err := s.engine.AcceptChallenge(s.store.UnlockState(), id)
	if err != nil {
		return err
	}
	if err := s.store.SetUnlockState(ctx, state); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "ChallengeAccepted", "id", id)
	return nil
}

// Points returns the current point total.
func (s *Service) Points() int {
	return s.engine.TotalPoints(s.store.UnlockState())
}

// State returns a copy of the persisted unlock state.
func (s *Service) State() core.UnlockState {
	return s.store.UnlockState()
}

// Insights recomputes the stateless insight list from a fresh snapshot.
func (s *Service) Insights(now time.Time) []Insight {
	return Insights(s.snapshot(), now)
}

// Health grades the current snapshot.
func (s *Service) Health(now time.Time) (int, Rating) {
	return HealthScore(s.snapshot(), now)
}
