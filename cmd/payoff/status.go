package main

import (
	"fmt"
	"sort"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ledgersmith/payoff/internal/cli"
	"github.com/ledgersmith/payoff/internal/engine"
	"github.com/ledgersmith/payoff/internal/model"
)

func statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [debt-id]",
		Short: "Reconcile actual payments against the schedule",
		Long: `Compare a debt's payment ledger against its amortization schedule and
report whether it is ahead, on track, or off track, along with the drift
amount and whether the schedule should be recalculated.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runStatus,
	}
	cmd.Flags().Bool("all", false, "reconcile every active debt")
	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	all, _ := cmd.Flags().GetBool("all")

	if !all && len(args) == 0 {
		return fmt.Errorf("provide a debt id or --all")
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	now := clock.Now()
	eng := engine.New()

	evaluate := func(debt *model.Debt) (*model.ProgressStatus, error) {
		schedule, err := store.GetSchedule(ctx, debt.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load schedule for %s: %w", debt.ID, err)
		}
		lgr, err := loadLedger(ctx, store, debt)
		if err != nil {
			return nil, err
		}
		progress, err := eng.Evaluate(*schedule, lgr, now)
		if err != nil {
			return nil, fmt.Errorf("failed to reconcile %s: %w", debt.ID, err)
		}
		return &progress, nil
	}

	if !all {
		debt, err := store.GetDebt(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to load debt: %w", err)
		}
		progress, err := evaluate(debt)
		if err != nil {
			return err
		}
		fmt.Println(cli.RenderStatus(debt, progress))
		return nil
	}

	debts, err := store.ListDebts(ctx, false)
	if err != nil {
		return fmt.Errorf("failed to list debts: %w", err)
	}
	if len(debts) == 0 {
		fmt.Println(cli.FormatInfo("No active debts"))
		return nil
	}

	// The engine is pure CPU; the schedule and ledger loads are what
	// benefit from running concurrently.
	type result struct {
		debt     model.Debt
		progress *model.ProgressStatus
	}
	var (
		mu      sync.Mutex
		results []result
	)

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, debt := range debts {
		debt := debt
		g.Go(func() error {
			progress, evalErr := evaluate(&debt)
			if evalErr != nil {
				return evalErr
			}
			mu.Lock()
			results = append(results, result{debt: debt, progress: progress})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].debt.Name < results[j].debt.Name
	})
	for _, r := range results {
		fmt.Println(cli.RenderStatus(&r.debt, r.progress))
	}
	return nil
}
