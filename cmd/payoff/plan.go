package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgersmith/payoff/internal/cli"
	"github.com/ledgersmith/payoff/internal/engine"
	"github.com/ledgersmith/payoff/internal/model"
	"github.com/ledgersmith/payoff/internal/money"
)

func planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Rank debts under a payoff strategy and project the impact of a surplus",
		Long: `Rank all active debts under the avalanche (highest rate first) or
snowball (lowest balance first) strategy. With a monthly surplus, the plan
shows the accelerated schedule for the top-ranked debt and the interest the
surplus saves.`,
		Example: `  payoff plan --policy avalanche --surplus 200`,
		RunE:    runPlan,
	}

	cmd.Flags().String("policy", string(model.PolicyAvalanche), "strategy policy (avalanche, snowball)")
	cmd.Flags().String("surplus", "0", "extra amount available per period, in major units")

	return cmd
}

func runPlan(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	policyStr, _ := cmd.Flags().GetString("policy")
	surplusStr, _ := cmd.Flags().GetString("surplus")

	policy := model.Policy(policyStr)
	if err := policy.Validate(); err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	debts, err := store.ListDebts(ctx, false)
	if err != nil {
		return fmt.Errorf("failed to list debts: %w", err)
	}
	if len(debts) == 0 {
		fmt.Println(cli.FormatInfo("No active debts to plan for"))
		return nil
	}

	surplus, err := money.ParseAmount(surplusStr, debts[0].Currency())
	if err != nil {
		return fmt.Errorf("invalid --surplus: %w", err)
	}

	inputs := make([]engine.PlanInput, 0, len(debts))
	for i := range debts {
		debt := &debts[i]
		schedule, loadErr := store.GetSchedule(ctx, debt.ID)
		if loadErr != nil {
			return fmt.Errorf("failed to load schedule for %s: %w", debt.ID, loadErr)
		}
		lgr, loadErr := loadLedger(ctx, store, debt)
		if loadErr != nil {
			return loadErr
		}
		inputs = append(inputs, engine.PlanInput{
			Debt:     *debt,
			Schedule: *schedule,
			Ledger:   lgr,
		})
	}

	plan, err := engine.New().Plan(inputs, policy, surplus, clock.Now())
	if err != nil {
		return fmt.Errorf("failed to build plan: %w", err)
	}

	fmt.Println(cli.RenderPlan(&plan))
	return nil
}
