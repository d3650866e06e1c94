package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ledgersmith/payoff/internal/cli"
	"github.com/ledgersmith/payoff/internal/engine"
	"github.com/ledgersmith/payoff/internal/model"
	"github.com/ledgersmith/payoff/internal/money"
)

func debtCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debt",
		Short: "Manage debts",
	}

	cmd.AddCommand(debtAddCmd())
	cmd.AddCommand(debtListCmd())
	cmd.AddCommand(debtArchiveCmd())

	return cmd
}

func debtAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a debt and generate its amortization schedule",
		Example: `  payoff debt add --name "Car loan" --principal 12500 --rate 18.0 \
    --term 24 --frequency monthly --start 2026-01-15`,
		RunE: runDebtAdd,
	}

	cmd.Flags().String("name", "", "display name for the debt")
	cmd.Flags().String("principal", "", "starting balance in major units, e.g. 12500.00")
	cmd.Flags().Float64("rate", 0, "annual interest rate in percent, e.g. 18.0")
	cmd.Flags().Int("term", 0, "number of payment periods")
	cmd.Flags().String("frequency", "monthly", "payment frequency (weekly, biweekly, monthly)")
	cmd.Flags().String("start", "", "first period start date, YYYY-MM-DD")
	cmd.Flags().String("currency", "USD", "ISO currency code")
	cmd.Flags().String("fixed-payment", "", "override the computed level payment")
	cmd.Flags().String("extra", "", "fixed extra amount applied to every payment")
	cmd.Flags().Bool("round-up", false, "round each payment up to the next whole major unit")

	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("principal")
	_ = cmd.MarkFlagRequired("term")
	_ = cmd.MarkFlagRequired("start")

	return cmd
}

func runDebtAdd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	name, _ := cmd.Flags().GetString("name")
	principalStr, _ := cmd.Flags().GetString("principal")
	rate, _ := cmd.Flags().GetFloat64("rate")
	term, _ := cmd.Flags().GetInt("term")
	frequency, _ := cmd.Flags().GetString("frequency")
	startStr, _ := cmd.Flags().GetString("start")
	currency, _ := cmd.Flags().GetString("currency")
	fixedStr, _ := cmd.Flags().GetString("fixed-payment")
	extraStr, _ := cmd.Flags().GetString("extra")
	roundUp, _ := cmd.Flags().GetBool("round-up")

	cur := money.Currency(currency)
	principal, err := money.ParseAmount(principalStr, cur)
	if err != nil {
		return fmt.Errorf("invalid --principal: %w", err)
	}
	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return fmt.Errorf("invalid --start date: %w", err)
	}

	debt := model.Debt{
		ID:            uuid.New().String(),
		Name:          name,
		Principal:     principal,
		AnnualRateBps: int64(rate * 100),
		TermPeriods:   term,
		Frequency:     model.Frequency(frequency),
		StartDate:     start,
		ExtraPolicy:   model.ExtraPolicyNone,
	}

	if fixedStr != "" {
		fixed, parseErr := money.ParseAmount(fixedStr, cur)
		if parseErr != nil {
			return fmt.Errorf("invalid --fixed-payment: %w", parseErr)
		}
		debt.FixedPayment = &fixed
	}
	switch {
	case extraStr != "" && roundUp:
		return fmt.Errorf("--extra and --round-up are mutually exclusive")
	case extraStr != "":
		extra, parseErr := money.ParseAmount(extraStr, cur)
		if parseErr != nil {
			return fmt.Errorf("invalid --extra: %w", parseErr)
		}
		debt.ExtraPolicy = model.ExtraPolicyFixed
		debt.ExtraAmount = &extra
	case roundUp:
		debt.ExtraPolicy = model.ExtraPolicyRoundUp
	}

	if err := debt.Validate(); err != nil {
		return fmt.Errorf("invalid debt: %w", err)
	}

	schedule, err := engine.New().Generate(debt)
	if err != nil {
		return fmt.Errorf("failed to generate schedule: %w", err)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	tx, err := store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.SaveDebt(ctx, &debt); err != nil {
		return fmt.Errorf("failed to save debt: %w", err)
	}
	if err := tx.SaveSchedule(ctx, &schedule); err != nil {
		return fmt.Errorf("failed to save schedule: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	slog.Info("Debt registered", "id", debt.ID, "name", debt.Name, "periods", len(schedule.Entries))
	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Registered %s (%s)", debt.Name, debt.ID)))
	fmt.Printf("Level payment: %s over %d %s periods\n",
		cli.FormatMoney(schedule.LevelPayment), len(schedule.Entries), debt.Frequency)
	fmt.Printf("Total interest: %s\n", cli.FormatMoney(schedule.TotalInterest()))

	return nil
}

func debtListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List debts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			includeArchived, _ := cmd.Flags().GetBool("all")

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			debts, err := store.ListDebts(ctx, includeArchived)
			if err != nil {
				return fmt.Errorf("failed to list debts: %w", err)
			}

			fmt.Println(cli.RenderDebtsTable(debts))
			return nil
		},
	}
	cmd.Flags().Bool("all", false, "include archived debts")
	return cmd
}

func debtArchiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive <debt-id>",
		Short: "Archive a debt, hiding it from lists and plans",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			if err := store.ArchiveDebt(ctx, args[0], clock.Now()); err != nil {
				return fmt.Errorf("failed to archive debt: %w", err)
			}

			fmt.Println(cli.FormatSuccess("Archived " + args[0]))
			return nil
		},
	}
}
