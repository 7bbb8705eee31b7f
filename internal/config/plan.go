package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"tally/internal/core"
)

// Plan is the optional user plan file. Allocations are monthly budget
// limits in currency units keyed by category; counters feed the
// counter-gated achievement and challenge rules.
type Plan struct {
	Allocations map[string]float64 `toml:"allocations"`
	Counters    map[string]float64 `toml:"counters"`
}

// DefaultPlanPath returns the XDG-compliant plan file location.
func DefaultPlanPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tally", "plan.toml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "tally", "plan.toml")
}

// LoadPlan reads the plan file. A missing file is not an error: it
// yields an empty plan and the ledger falls back to its starter
// allocations.
func LoadPlan(path string) (Plan, error) {
	var plan Plan

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return plan, nil
		}
		return plan, fmt.Errorf("reading plan: %w", err)
	}

	if err := toml.Unmarshal(data, &plan); err != nil {
		return plan, fmt.Errorf("parsing plan: %w", err)
	}

	return plan, nil
}

// SavePlan writes the plan to disk, creating the directory as needed.
func SavePlan(path string, plan Plan) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating plan dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating plan file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(plan)
}

// StarterAllocations converts the plan's allocation table to budget
// seed money. Unknown categories and negative amounts are rejected.
func (p Plan) StarterAllocations() (map[core.Category]core.Money, error) {
	if len(p.Allocations) == 0 {
		return nil, nil
	}
	out := make(map[core.Category]core.Money, len(p.Allocations))
	for name, units := range p.Allocations {
		cat := core.Category(name)
		if !cat.Valid() {
			return nil, fmt.Errorf("allocation for %q: %w", name, core.ErrUnknownCategory)
		}
		if units < 0 {
			return nil, fmt.Errorf("allocation for %q: %w", name, core.ErrNegativeAllocation)
		}
		out[cat] = core.Money{Cents: int64(units*100 + 0.5)}
	}
	return out, nil
}
