package model

import (
	"time"

	"github.com/ledgersmith/payoff/internal/money"
)

// Status classifies how a debt's actual payments track its schedule.
type Status string

const (
	// StatusPending means no schedule period has come due yet.
	StatusPending Status = "pending"
	// StatusAhead means cumulative payments exceed plan by at least the
	// tolerance.
	StatusAhead Status = "ahead"
	// StatusOnTrack means cumulative payments are within tolerance of plan.
	StatusOnTrack Status = "on_track"
	// StatusOffTrack means cumulative payments lag plan by at least the
	// tolerance.
	StatusOffTrack Status = "off_track"
)

// ProgressStatus is the derived reconciliation result for one debt. It is
// recomputed on demand from (Schedule, Ledger, asOf) and never persisted as
// a source of truth.
type ProgressStatus struct {
	AsOf               time.Time
	Status             Status
	PeriodIndex        int
	ActualPaid         money.Money
	PlannedPaid        money.Money
	Drift              money.Money
	NeedsRecalculation bool
}
