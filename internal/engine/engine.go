// Package engine implements the debt amortization and repayment-strategy
// engine: schedule generation, ledger reconciliation, payment allocation,
// and portfolio planning. Every operation is a pure function over immutable
// inputs; the engine holds no state beyond its configuration and performs
// no I/O.
package engine

import (
	"fmt"

	"github.com/ledgersmith/payoff/internal/money"
)

// Config tunes the engine's reconciliation and rounding behavior.
type Config struct {
	// Tolerance is the drift magnitude that separates on_track from
	// ahead/off_track. When nil, one scheduled payment's amount is used.
	Tolerance *money.Money
	// MaterialityBps is the divergence between actual and scheduled
	// remaining balance, in basis points of the original principal, beyond
	// which a recalculation is recommended.
	MaterialityBps int64
	// RoundUpUnit is the minor-unit multiple the round_up extra-payment
	// policy lifts each payment to.
	RoundUpUnit int64
}

// DefaultConfig returns the default tuning: tolerance of one scheduled
// payment, 1% materiality, round-up to the next whole major unit.
func DefaultConfig() Config {
	return Config{
		MaterialityBps: 100,
		RoundUpUnit:    100,
	}
}

// Engine evaluates debts against their schedules and ledgers. It is safe
// for concurrent use.
type Engine struct {
	cfg Config
}

// New creates an engine with the default configuration.
func New() *Engine {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates an engine with custom tuning. Zero-valued fields
// fall back to the defaults.
func NewWithConfig(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.MaterialityBps <= 0 {
		cfg.MaterialityBps = def.MaterialityBps
	}
	if cfg.RoundUpUnit <= 0 {
		cfg.RoundUpUnit = def.RoundUpUnit
	}
	return &Engine{cfg: cfg}
}

// ConfigError reports debt parameters that cannot produce a valid schedule.
// Generation never returns a partial schedule alongside one.
type ConfigError struct {
	DebtID string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.DebtID == "" {
		return fmt.Sprintf("invalid debt configuration: %s", e.Reason)
	}
	return fmt.Sprintf("invalid configuration for debt %s: %s", e.DebtID, e.Reason)
}
