package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ledgersmith/payoff/internal/cli"
	"github.com/ledgersmith/payoff/internal/config"
	"github.com/ledgersmith/payoff/internal/ledger"
	"github.com/ledgersmith/payoff/internal/model"
	"github.com/ledgersmith/payoff/internal/service"
	"github.com/ledgersmith/payoff/internal/storage"
)

// systemClock is the production Clock; commands take their as-of timestamps
// from it so reconciliation stays testable.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

var clock service.Clock = systemClock{}

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	// Get database path from config
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	// Initialize storage
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// loadLedger rebuilds a debt's payment ledger from storage.
func loadLedger(ctx context.Context, store service.Storage, debt *model.Debt) (ledger.Ledger, error) {
	payments, err := store.GetPayments(ctx, debt.ID)
	if err != nil {
		return ledger.Ledger{}, fmt.Errorf("failed to load payments for %s: %w", debt.ID, err)
	}
	return ledger.FromPayments(debt.ID, debt.Currency(), payments)
}

// archiveIfPaidOff archives the debt when its principal is fully repaid.
func archiveIfPaidOff(cmd *cobra.Command, store service.Storage, debt *model.Debt, asOf time.Time) error {
	ctx := cmd.Context()

	lgr, err := loadLedger(ctx, store, debt)
	if err != nil {
		return err
	}
	remaining, err := debt.Principal.Sub(lgr.PrincipalPaid(asOf))
	if err != nil {
		return fmt.Errorf("failed to compute remaining balance: %w", err)
	}
	if remaining.IsPositive() {
		return nil
	}

	if err := store.ArchiveDebt(ctx, debt.ID, asOf); err != nil {
		return fmt.Errorf("failed to archive paid-off debt: %w", err)
	}
	slog.Info("Debt paid off", "debt", debt.ID, "name", debt.Name)
	fmt.Println(cli.FormatSuccess(debt.Name + " is paid off! Archived."))
	return nil
}

// retryOptions reads storage retry settings from config.
func retryOptions() service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  viper.GetInt("storage.retry.max_attempts"),
		InitialDelay: viper.GetDuration("storage.retry.initial_delay"),
		MaxDelay:     viper.GetDuration("storage.retry.max_delay"),
		Multiplier:   viper.GetFloat64("storage.retry.multiplier"),
	}
}
