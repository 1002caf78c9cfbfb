package dispatch

import (
	"fmt"

	"github.com/emberops/wildfire/core/catalog"
	"github.com/emberops/wildfire/core/model"
)

// Lookahead selects the greedy dispatcher's non-blocking test.
type Lookahead string

const (
	// LookaheadNext rejects a primary-pass assignment whose busy-until time
	// would pass the next incident's report time.
	LookaheadNext Lookahead = "next"
	// LookaheadNone disables the non-blocking test.
	LookaheadNone Lookahead = "none"
)

// Config defines dispatch-related settings.
type Config struct {
	// Strategy is "greedy" or "optimal".
	Strategy string `json:"strategy"`
	// Ordering is the greedy scan order: cost_priority, cost_time or priority.
	Ordering string `json:"ordering"`
	// Lookahead is the greedy non-blocking policy: next or none.
	Lookahead string `json:"lookahead"`
	// SolveTimeoutSeconds bounds the optimal strategy's per-day solve.
	SolveTimeoutSeconds int `json:"solve_timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Strategy == "" {
		c.Strategy = "greedy"
	}
	if c.Ordering == "" {
		c.Ordering = string(catalog.OrderCostPriority)
	}
	if c.Lookahead == "" {
		c.Lookahead = string(LookaheadNext)
	}
	if c.SolveTimeoutSeconds <= 0 {
		c.SolveTimeoutSeconds = 30
	}
}

// Validate checks the policy names.
func (c Config) Validate() error {
	if c.Strategy != "greedy" && c.Strategy != "optimal" {
		return fmt.Errorf("unknown strategy %q", c.Strategy)
	}
	switch catalog.Ordering(c.Ordering) {
	case catalog.OrderCostPriority, catalog.OrderCostTime, catalog.OrderPriority:
	default:
		return fmt.Errorf("unknown ordering %q", c.Ordering)
	}
	switch Lookahead(c.Lookahead) {
	case LookaheadNext, LookaheadNone:
	default:
		return fmt.Errorf("unknown lookahead %q", c.Lookahead)
	}
	return nil
}

// NewStrategy builds the configured strategy implementation.
func NewStrategy(cat *catalog.Catalog, cfg Config) (Strategy, error) {
	switch cfg.Strategy {
	case "optimal":
		return NewOptimal(cat, cfg)
	case "greedy", "":
		return NewGreedy(cat, cfg)
	default:
		return nil, &model.ConfigError{Reason: fmt.Sprintf("unknown strategy %q", cfg.Strategy)}
	}
}
