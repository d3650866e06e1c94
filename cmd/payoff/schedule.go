package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ledgersmith/payoff/internal/cli"
	"github.com/ledgersmith/payoff/internal/engine"
)

func scheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Inspect and maintain amortization schedules",
	}

	cmd.AddCommand(scheduleShowCmd())
	cmd.AddCommand(scheduleRecalculateCmd())

	return cmd
}

func scheduleShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <debt-id>",
		Short: "Print a debt's full amortization schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			debt, err := store.GetDebt(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to load debt: %w", err)
			}
			schedule, err := store.GetSchedule(ctx, debt.ID)
			if err != nil {
				return fmt.Errorf("failed to load schedule: %w", err)
			}

			fmt.Println(cli.FormatTitle(debt.Name))
			fmt.Println(cli.RenderScheduleTable(schedule))
			return nil
		},
	}
}

func scheduleRecalculateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recalculate <debt-id>",
		Short: "Re-amortize the remaining balance over the remaining term",
		Long: `Re-amortize a debt whose actual balance has drifted from the plan,
producing a fresh schedule from the current balance over the periods left.
Payment history is preserved; only the forward-looking schedule changes.`,
		Args: cobra.ExactArgs(1),
		RunE: runScheduleRecalculate,
	}
	cmd.Flags().Bool("force", false, "recalculate even when drift is immaterial")
	return cmd
}

func runScheduleRecalculate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	force, _ := cmd.Flags().GetBool("force")

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	debt, err := store.GetDebt(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to load debt: %w", err)
	}
	schedule, err := store.GetSchedule(ctx, debt.ID)
	if err != nil {
		return fmt.Errorf("failed to load schedule: %w", err)
	}
	lgr, err := loadLedger(ctx, store, debt)
	if err != nil {
		return err
	}

	eng := engine.New()
	now := clock.Now()

	if !force {
		progress, evalErr := eng.Evaluate(*schedule, lgr, now)
		if evalErr != nil {
			return fmt.Errorf("failed to reconcile: %w", evalErr)
		}
		if !progress.NeedsRecalculation {
			fmt.Println(cli.FormatInfo("Drift is immaterial, schedule left alone (use --force to override)"))
			return nil
		}
	}

	successor, fresh, err := eng.Recalculate(*debt, *schedule, lgr, now)
	if err != nil {
		return fmt.Errorf("failed to recalculate: %w", err)
	}

	if err := store.ReplaceSchedule(ctx, &successor, &fresh); err != nil {
		return fmt.Errorf("failed to persist recalculated schedule: %w", err)
	}

	slog.Info("Schedule recalculated",
		"debt", debt.ID,
		"remaining_periods", len(fresh.Entries),
		"level_payment", fresh.LevelPayment)

	fmt.Println(cli.FormatSuccess("Recalculated " + debt.Name))
	fmt.Println(cli.RenderScheduleTable(&fresh))
	return nil
}
