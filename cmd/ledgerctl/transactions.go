package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"carteira/internal/events"
	"carteira/internal/ledger"
	"carteira/internal/models"
	"carteira/internal/money"
	"carteira/internal/pagination"
	"carteira/internal/services"
)

func (a *app) accountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List a user's accounts and balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := a.user(true)
			if err != nil {
				return err
			}
			return a.withDB(func(db *gorm.DB, _ events.Publisher) error {
				page := pagination.PageRequest{Page: 1, PageSize: pagination.MaxPageSize}
				result, err := services.NewAccountService(db).GetUserAccounts(cmd.Context(), userID, true, page)
				if err != nil {
					return err
				}

				rows := make([][]string, 0, len(result.Data))
				for _, acc := range result.Data {
					rows = append(rows, []string{acc.ID, acc.Name, string(acc.Kind), money.Format(acc.Balance), strconv.FormatBool(acc.IsActive)})
				}
				return a.table([]string{"ID", "NAME", "KIND", "BALANCE", "ACTIVE"}, rows)
			})
		},
	}
}

func (a *app) listCmd() *cobra.Command {
	var (
		limit  int
		kind   string
		status string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's most recent transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := a.user(true)
			if err != nil {
				return err
			}

			var filter services.TransactionFilter
			if kind != "" {
				k := models.TransactionKind(kind)
				if !k.Valid() {
					return fmt.Errorf("invalid --kind %q", kind)
				}
				filter.Kind = &k
			}
			if status != "" {
				s := models.TransactionStatus(status)
				if !s.Valid() {
					return fmt.Errorf("invalid --status %q", status)
				}
				filter.Status = &s
			}

			return a.withDB(func(db *gorm.DB, publisher events.Publisher) error {
				svc := services.NewTransactionService(db, publisher)
				result, err := svc.GetUserTransactions(cmd.Context(), userID, pagination.PageRequest{Page: 1, PageSize: limit}, filter)
				if err != nil {
					return err
				}

				rows := make([][]string, 0, len(result.Data))
				for _, t := range result.Data {
					route := accountName(t.SourceAccount, t.SourceAccountID)
					if t.DestinationAccountID != nil {
						route += " -> " + accountName(t.DestinationAccount, *t.DestinationAccountID)
					}
					rows = append(rows, []string{
						t.Date.Format("2006-01-02"),
						string(t.Kind),
						string(t.Status),
						money.Format(t.Amount),
						route,
						t.Description,
					})
				}
				if err := a.table([]string{"DATE", "KIND", "STATUS", "AMOUNT", "ACCOUNTS", "DESCRIPTION"}, rows); err != nil {
					return err
				}
				a.printf("%d of %d transaction(s)\n", len(result.Data), result.TotalItems)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", pagination.DefaultPageSize, "maximum rows to show")
	cmd.Flags().StringVar(&kind, "kind", "", "INCOME, EXPENSE or TRANSFER")
	cmd.Flags().StringVar(&status, "status", "", "PAID, PENDING or CANCELLED")
	return cmd
}

func accountName(acc *models.Account, id string) string {
	if acc != nil && acc.Name != "" {
		return acc.Name
	}
	return id
}

func (a *app) addCmd() *cobra.Command {
	var (
		kind         string
		amount       string
		status       string
		from         string
		to           string
		categories   []string
		description  string
		counterparty string
		date         string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction through the ledger",
		Example: `  ledgerctl add --user $ID --from $CHECKING --category $FOOD --amount 42,90 --description "Market"
  ledgerctl add --user $ID --kind TRANSFER --from $CHECKING --to $SAVINGS --category $MOVE --amount 500`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := a.user(true)
			if err != nil {
				return err
			}
			cents, err := money.ParseAmount(amount)
			if err != nil {
				return err
			}

			p := ledger.Proposal{
				Kind:             models.TransactionKind(kind),
				AmountMinorUnits: cents,
				Description:      description,
				Counterparty:     counterparty,
				Status:           models.TransactionStatus(status),
				CategoryIDs:      categories,
				SourceAccountID:  from,
			}
			if to != "" {
				p.DestinationAccountID = &to
			}
			if date != "" {
				d, err := time.Parse("2006-01-02", date)
				if err != nil {
					return fmt.Errorf("invalid --date %q: use YYYY-MM-DD", date)
				}
				p.Date = &d
			}

			return a.withDB(func(db *gorm.DB, publisher events.Publisher) error {
				t, err := services.NewTransactionService(db, publisher).CreateTransaction(cmd.Context(), userID, p)
				if err != nil {
					return err
				}
				a.printf("%s %s %s %s (%s)\n", okStyle.Render("Recorded"), t.ID, t.Kind, money.Format(t.Amount), t.Status)
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&kind, "kind", string(models.TransactionKindExpense), "INCOME, EXPENSE or TRANSFER")
	flags.StringVar(&amount, "amount", "", "amount, e.g. 10.50 or 10,50")
	flags.StringVar(&status, "status", string(models.TransactionStatusPaid), "PAID, PENDING or CANCELLED")
	flags.StringVar(&from, "from", "", "source account id")
	flags.StringVar(&to, "to", "", "destination account id (transfers)")
	flags.StringSliceVar(&categories, "category", nil, "category id (repeatable)")
	flags.StringVar(&description, "description", "", "description")
	flags.StringVar(&counterparty, "counterparty", "", "counterparty")
	flags.StringVar(&date, "date", "", "date as YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}
