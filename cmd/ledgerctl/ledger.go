package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"carteira/internal/events"
	"carteira/internal/services"
)

// errDrift makes verify exit non-zero so it can gate scripts.
var errDrift = errors.New("ledger has drifted balances; run ledgerctl repair")

func (a *app) verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Recompute balances from PAID transactions and report drift",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := a.user(false)
			if err != nil {
				return err
			}
			return a.withDB(func(db *gorm.DB, publisher events.Publisher) error {
				drifts, err := services.NewLedgerService(db, publisher).Verify(cmd.Context(), userID)
				if err != nil {
					return err
				}
				if err := a.printDrifts(drifts, "drifted"); err != nil {
					return err
				}
				if len(drifts) > 0 {
					return errDrift
				}
				return nil
			})
		},
	}
}

func (a *app) repairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repair",
		Short: "Rewrite drifted balances to the value implied by PAID transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := a.user(false)
			if err != nil {
				return err
			}
			return a.withDB(func(db *gorm.DB, publisher events.Publisher) error {
				drifts, err := services.NewLedgerService(db, publisher).Repair(cmd.Context(), userID)
				if err != nil {
					return fmt.Errorf("repair failed: %w", err)
				}
				return a.printDrifts(drifts, "repaired")
			})
		},
	}
}
