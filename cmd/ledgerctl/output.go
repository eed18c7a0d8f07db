package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"carteira/internal/ledger"
	"carteira/internal/money"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
)

func (a *app) table(headers []string, rows [][]string) error {
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)

	styled := make([]string, len(headers))
	for i, h := range headers {
		styled[i] = headerStyle.Render(h)
	}
	if _, err := fmt.Fprintln(w, strings.Join(styled, "\t")); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(w, strings.Join(row, "\t")); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return w.Flush()
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *app) printDrifts(drifts []ledger.Drift, verb string) error {
	if len(drifts) == 0 {
		a.printf("%s\n", okStyle.Render("Ledger consistent: every balance matches its PAID transactions."))
		return nil
	}

	a.printf("%s\n", warnStyle.Render(fmt.Sprintf("%d account(s) %s:", len(drifts), verb)))
	rows := make([][]string, 0, len(drifts))
	for _, d := range drifts {
		rows = append(rows, []string{
			d.AccountID,
			d.AccountName,
			money.Format(d.Stored),
			money.Format(d.Expected),
			money.Format(d.Delta()),
		})
	}
	return a.table([]string{"ACCOUNT", "NAME", "STORED", "EXPECTED", "DELTA"}, rows)
}
