package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ledgersmith/payoff/internal/cli"
	"github.com/ledgersmith/payoff/internal/common"
	"github.com/ledgersmith/payoff/internal/engine"
	"github.com/ledgersmith/payoff/internal/money"
)

func payCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pay <debt-id> <amount>",
		Short: "Record a payment against a debt",
		Long: `Record a payment. The amount is split into interest and principal against
the current balance; extra payments go entirely to principal.`,
		Example: `  payoff pay 4f3c... 624.05
  payoff pay 4f3c... 100 --extra`,
		Args: cobra.ExactArgs(2),
		RunE: runPay,
	}

	cmd.Flags().Bool("extra", false, "apply the full amount to principal")
	cmd.Flags().String("date", "", "payment date, YYYY-MM-DD (default: today)")

	return cmd
}

func runPay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	isExtra, _ := cmd.Flags().GetBool("extra")
	dateStr, _ := cmd.Flags().GetString("date")

	paidAt := clock.Now()
	if dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
		paidAt = parsed
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	debt, err := store.GetDebt(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to load debt: %w", err)
	}
	if debt.IsArchived() {
		return common.NewUserError("cannot record payments against an archived debt", nil)
	}

	amount, err := money.ParseAmount(args[1], debt.Currency())
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}

	lgr, err := loadLedger(ctx, store, debt)
	if err != nil {
		return err
	}

	payment, err := engine.New().AllocatePayment(*debt, lgr, uuid.New().String(), amount, paidAt, isExtra)
	if err != nil {
		return fmt.Errorf("failed to allocate payment: %w", err)
	}

	// SQLite under WAL still serializes writers, so retry on transient
	// busy errors instead of failing the recording.
	err = common.WithRetry(ctx, func() error {
		return store.AppendPayment(ctx, &payment)
	}, retryOptions())
	if err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}

	slog.Info("Payment recorded",
		"debt", debt.ID,
		"payment", payment.ID,
		"amount", payment.Amount,
		"interest", payment.Interest,
		"principal", payment.Principal,
		"extra", payment.IsExtra)

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Recorded %s against %s", cli.FormatMoney(payment.Amount), debt.Name)))
	fmt.Printf("Interest: %s  Principal: %s\n",
		cli.FormatMoney(payment.Interest), cli.FormatMoney(payment.Principal))

	return archiveIfPaidOff(cmd, store, debt, paidAt)
}

func paymentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payments",
		Short: "Inspect and correct the payment ledger",
	}

	cmd.AddCommand(paymentsListCmd())
	cmd.AddCommand(paymentsReverseCmd())

	return cmd
}

func paymentsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <debt-id>",
		Short: "List all ledger entries for a debt",
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
			lgr, err := loadLedger(ctx, store, debt)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatTitle(debt.Name + " ledger"))
			for _, p := range lgr.Entries() {
				line := fmt.Sprintf("%s  %s  interest %s  principal %s  [%s]",
					p.PaidAt.Format("2006-01-02"),
					cli.FormatMoney(p.Amount),
					cli.FormatMoney(p.Interest),
					cli.FormatMoney(p.Principal),
					p.ID)
				switch {
				case p.IsReversal():
					line += "  reverses " + p.Reverses
					fmt.Println(cli.WarningStyle.Render(line))
				case p.IsExtra:
					line += "  extra"
					fmt.Println(cli.SuccessStyle.Render(line))
				default:
					fmt.Println(line)
				}
			}
			fmt.Printf("\nTotal paid: %s (interest %s, principal %s)\n",
				cli.FormatMoney(lgr.TotalPaid(clock.Now())),
				cli.FormatMoney(lgr.InterestPaid(clock.Now())),
				cli.FormatMoney(lgr.PrincipalPaid(clock.Now())))
			return nil
		},
	}
}

func paymentsReverseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reverse <debt-id> <payment-id>",
		Short: "Reverse a mis-recorded payment",
		Long: `Reverse a payment by appending a negating entry. The original entry is
never modified or deleted; the ledger keeps the full history.`,
		Args: cobra.ExactArgs(2),
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
			lgr, err := loadLedger(ctx, store, debt)
			if err != nil {
				return err
			}

			_, reversal, err := lgr.Reverse(args[1], uuid.New().String(), clock.Now())
			if err != nil {
				return fmt.Errorf("failed to reverse payment: %w", err)
			}

			err = common.WithRetry(ctx, func() error {
				return store.AppendPayment(ctx, &reversal)
			}, retryOptions())
			if err != nil {
				return fmt.Errorf("failed to record reversal: %w", err)
			}

			slog.Info("Payment reversed", "debt", debt.ID, "payment", args[1], "reversal", reversal.ID)
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Reversed %s (%s)", args[1], cli.FormatMoney(reversal.Amount.Abs()))))
			return nil
		},
	}
}
