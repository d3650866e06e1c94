package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ledgersmith/payoff/internal/model"
	"github.com/ledgersmith/payoff/internal/money"
)

// FormatMoney renders a monetary amount for display, e.g. "1,250.00 USD".
func FormatMoney(m money.Money) string {
	d := m.Decimal().Shift(-2)
	s := d.StringFixed(2)

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	parts := strings.SplitN(s, ".", 2)
	whole := parts[0]

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteRune(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + "." + parts[1]
	if neg {
		out = "-" + out
	}
	if m.Currency() != "" {
		out += " " + string(m.Currency())
	}
	return out
}

// StatusStyle returns the style appropriate for a reconciliation status.
func StatusStyle(status model.Status) lipgloss.Style {
	switch status {
	case model.StatusAhead:
		return SuccessStyle
	case model.StatusOnTrack:
		return InfoStyle
	case model.StatusOffTrack:
		return ErrorStyle
	default:
		return SubtleStyle
	}
}

func renderRow(widths []int, cells []string) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = TableCellStyle.Width(widths[i]).Render(cell)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func renderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h) + 2
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell) + 2; w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	b.WriteString(TableHeaderStyle.Render(renderRow(widths, headers)))
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString(renderRow(widths, row))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderDebtsTable renders the debt list.
func RenderDebtsTable(debts []model.Debt) string {
	if len(debts) == 0 {
		return SubtleStyle.Render("No debts on file.")
	}

	headers := []string{"ID", "Name", "Principal", "Rate", "Term", "Frequency", "Status"}
	rows := make([][]string, 0, len(debts))
	for _, d := range debts {
		status := "active"
		if d.IsArchived() {
			status = SubtleStyle.Render("archived")
		}
		rows = append(rows, []string{
			d.ID,
			d.Name,
			FormatMoney(d.Principal),
			fmt.Sprintf("%.2f%%", float64(d.AnnualRateBps)/100),
			fmt.Sprintf("%d", d.TermPeriods),
			string(d.Frequency),
			status,
		})
	}
	return renderTable(headers, rows)
}

// RenderScheduleTable renders an amortization schedule.
func RenderScheduleTable(schedule *model.Schedule) string {
	headers := []string{"#", "Due", "Payment", "Interest", "Principal", "Balance"}
	rows := make([][]string, 0, len(schedule.Entries))
	for _, e := range schedule.Entries {
		rows = append(rows, []string{
			fmt.Sprintf("%d", e.PaymentNumber),
			e.DueDate.Format("2006-01-02"),
			FormatMoney(e.Payment),
			FormatMoney(e.Interest),
			FormatMoney(e.Principal),
			FormatMoney(e.BalanceAfter),
		})
	}

	summary := fmt.Sprintf("Level payment %s, total interest %s over %d payments",
		FormatMoney(schedule.LevelPayment),
		FormatMoney(schedule.TotalInterest()),
		len(schedule.Entries))

	return renderTable(headers, rows) + "\n" + SubtitleStyle.Render(summary)
}

// RenderStatus renders a debt's reconciliation snapshot.
func RenderStatus(debt *model.Debt, progress *model.ProgressStatus) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s  %s\n",
		BoldStyle.Render(debt.Name),
		StatusStyle(progress.Status).Render(string(progress.Status))))
	b.WriteString(fmt.Sprintf("Period:       %d of %d\n", progress.PeriodIndex, debt.TermPeriods))
	b.WriteString(fmt.Sprintf("Paid:         %s\n", FormatMoney(progress.ActualPaid)))
	b.WriteString(fmt.Sprintf("Planned:      %s\n", FormatMoney(progress.PlannedPaid)))

	drift := FormatMoney(progress.Drift)
	switch {
	case progress.Drift.IsPositive():
		drift = SuccessStyle.Render("+" + drift)
	case progress.Drift.IsNegative():
		drift = ErrorStyle.Render(drift)
	}
	b.WriteString(fmt.Sprintf("Drift:        %s\n", drift))

	if progress.NeedsRecalculation {
		b.WriteString(FormatWarning("schedule has drifted materially, run payoff schedule recalculate"))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderPlan renders a strategy plan with its payoff ordering and the
// interest impact of the surplus.
func RenderPlan(plan *model.StrategyPlan) string {
	var b strings.Builder

	b.WriteString(FormatTitle(fmt.Sprintf("Payoff plan (%s)", plan.Policy)))
	b.WriteString("\n")

	headers := []string{"Rank", "Debt", "Remaining", "Rate", "Status", "Next focus"}
	rows := make([][]string, 0, len(plan.Positions))
	for _, pos := range plan.Positions {
		focus := ""
		if pos.Accelerated != nil {
			focus = SuccessStyle.Render(fmt.Sprintf("+%s/period", FormatMoney(plan.Surplus)))
		}
		remaining := pos.Debt.Principal
		if entry := pos.Schedule.EntryAt(pos.Progress.PeriodIndex); entry != nil {
			remaining = entry.BalanceAfter
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", pos.Rank),
			pos.Debt.Name,
			FormatMoney(remaining),
			fmt.Sprintf("%.2f%%", float64(pos.Debt.AnnualRateBps)/100),
			StatusStyle(pos.Progress.Status).Render(string(pos.Progress.Status)),
			focus,
		})
	}
	b.WriteString(renderTable(headers, rows))
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("Projected payoff:  %s\n", plan.ProjectedPayoffDate.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Baseline interest: %s\n", FormatMoney(plan.BaselineInterest)))
	b.WriteString(fmt.Sprintf("Planned interest:  %s\n", FormatMoney(plan.TotalInterest)))
	if plan.InterestSaved.IsPositive() {
		b.WriteString(SuccessStyle.Render(fmt.Sprintf("Interest saved:    %s", FormatMoney(plan.InterestSaved))))
		b.WriteString("\n")
	}
	return b.String()
}
