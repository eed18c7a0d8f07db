package ledger

import (
	"context"

	"carteira/internal/models"
)

// Drift describes an account whose stored balance disagrees with the net
// effect of its PAID transactions.
type Drift struct {
	AccountID   string `json:"account_id"`
	AccountName string `json:"account_name"`
	Stored      int64  `json:"stored"`
	Expected    int64  `json:"expected"`
}

// Delta is the correction that brings Stored to Expected.
func (d Drift) Delta() int64 { return d.Expected - d.Stored }

// Verify recomputes every balance from the transaction log and reports the
// accounts that drifted. Accounts start at zero, so the expected balance is
// exactly the summed effect of the PAID transactions touching them.
func (e *Engine) Verify(ctx context.Context) ([]Drift, error) {
	var drifts []Drift
	err := e.atomic(ctx, "verify", func(tx Store) error {
		var err error
		drifts, err = findDrifts(ctx, tx)
		return err
	})
	return drifts, err
}

// Repair corrects every drifted balance with a relative adjustment, inside
// one atomic unit, and returns what it corrected.
func (e *Engine) Repair(ctx context.Context) ([]Drift, error) {
	var drifts []Drift
	err := e.atomic(ctx, "repair", func(tx Store) error {
		var err error
		drifts, err = findDrifts(ctx, tx)
		if err != nil {
			return err
		}
		fix := Effect{}
		for _, d := range drifts {
			fix.add(d.AccountID, d.Delta())
		}
		return fix.apply(ctx, tx)
	})
	if err != nil {
		return nil, err
	}
	return drifts, nil
}

func findDrifts(ctx context.Context, tx Store) ([]Drift, error) {
	accounts, err := tx.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	transactions, err := tx.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	return diffBalances(accounts, transactions), nil
}

func diffBalances(accounts []models.Account, transactions []models.Transaction) []Drift {
	expected := Effect{}
	for i := range transactions {
		expected.Merge(EffectOf(&transactions[i]))
	}

	var drifts []Drift
	for _, a := range accounts {
		if a.Balance == expected[a.ID] {
			continue
		}
		drifts = append(drifts, Drift{
			AccountID:   a.ID,
			AccountName: a.Name,
			Stored:      a.Balance,
			Expected:    expected[a.ID],
		})
	}
	return drifts
}
