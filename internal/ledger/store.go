// Package ledger keeps account balances consistent with the set of PAID
// transactions. It validates transaction proposals, computes the balance
// deltas they imply and applies or reverses those deltas in the same atomic
// unit that persists the transaction row.
//
// The engine is user-agnostic. Callers hand it a Store already scoped to the
// owner of the ids involved.
package ledger

import (
	"context"
	"errors"

	"carteira/internal/models"
)

// ErrNoRows is returned by a Store when a point lookup or keyed write
// matches nothing.
var ErrNoRows = errors.New("ledger: no rows")

// Lookup is the read side the validator needs.
type Lookup interface {
	// FindAccount returns the account with the given id, active or not.
	FindAccount(ctx context.Context, id string) (*models.Account, error)
	// MissingCategories returns the subset of ids that do not resolve,
	// in input order.
	MissingCategories(ctx context.Context, ids []string) ([]string, error)
}

// Store is the narrow contract the engine consumes.
type Store interface {
	Lookup

	// Atomic runs fn inside one unit of work. Everything fn does through
	// the Store it receives commits when fn returns nil and rolls back
	// otherwise.
	Atomic(ctx context.Context, fn func(tx Store) error) error

	// FindTransaction returns the stored row without associations.
	FindTransaction(ctx context.Context, id string) (*models.Transaction, error)
	// LoadTransaction returns the row with categories and both accounts.
	LoadTransaction(ctx context.Context, id string) (*models.Transaction, error)
	ListTransactions(ctx context.Context) ([]models.Transaction, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)
	ListCategories(ctx context.Context) ([]models.Category, error)

	InsertTransaction(ctx context.Context, t *models.Transaction) error
	UpdateTransaction(ctx context.Context, t *models.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
	// ReplaceCategories drops every link of the transaction and inserts
	// the given ones. An empty slice only drops.
	ReplaceCategories(ctx context.Context, transactionID string, categoryIDs []string) error

	// AdjustBalance adds delta to the account balance as a relative update
	// (balance = balance + delta). It returns ErrNoRows when the account
	// no longer exists.
	AdjustBalance(ctx context.Context, accountID string, delta int64) error
}
