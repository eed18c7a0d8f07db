package ledger

import (
	"context"
	"errors"
	"time"

	apperrors "carteira/internal/errors"
	"carteira/internal/logger"
	"carteira/internal/models"
)

// Engine orchestrates transaction writes so that account balances always
// equal the net effect of the PAID transactions referencing them.
type Engine struct {
	store Store
	now   func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the clock used to default missing transaction dates.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an Engine on top of store.
func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{store: store, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateTransaction validates p, persists it with its category links and
// applies its effect, all in one atomic unit.
func (e *Engine) CreateTransaction(ctx context.Context, p Proposal) (*models.Transaction, error) {
	var created *models.Transaction
	err := e.atomic(ctx, "create", func(tx Store) error {
		valid, err := Validate(ctx, tx, p)
		if err != nil {
			return err
		}

		row := e.toRow(valid)
		if err := tx.InsertTransaction(ctx, row); err != nil {
			return err
		}
		if err := tx.ReplaceCategories(ctx, row.ID, valid.CategoryIDs); err != nil {
			return err
		}
		if err := EffectOf(row).apply(ctx, tx); err != nil {
			return err
		}

		created, err = tx.LoadTransaction(ctx, row.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateTransaction replaces the transaction with id by p. The effect of the
// row as stored before the edit is reversed first, then the new effect is
// applied; category links are replaced wholesale.
func (e *Engine) UpdateTransaction(ctx context.Context, id string, p Proposal) (*models.Transaction, error) {
	var updated *models.Transaction
	err := e.atomic(ctx, "update", func(tx Store) error {
		valid, err := Validate(ctx, tx, p)
		if err != nil {
			return err
		}

		existing, err := tx.FindTransaction(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNoRows) {
				return apperrors.ErrTransactionNotFound
			}
			return err
		}

		if err := EffectOf(existing).Reverse().apply(ctx, tx); err != nil {
			return err
		}

		row := e.toRow(valid)
		row.ID = existing.ID
		row.UserID = existing.UserID
		row.CreatedAt = existing.CreatedAt
		if err := tx.UpdateTransaction(ctx, row); err != nil {
			return err
		}
		if err := tx.ReplaceCategories(ctx, row.ID, valid.CategoryIDs); err != nil {
			return err
		}
		if err := EffectOf(row).apply(ctx, tx); err != nil {
			return err
		}

		updated, err = tx.LoadTransaction(ctx, row.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteTransaction reverses the effect of the transaction with id and
// removes it together with its category links.
func (e *Engine) DeleteTransaction(ctx context.Context, id string) error {
	return e.atomic(ctx, "delete", func(tx Store) error {
		existing, err := tx.FindTransaction(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNoRows) {
				return apperrors.ErrTransactionNotFound
			}
			return err
		}

		if err := EffectOf(existing).Reverse().apply(ctx, tx); err != nil {
			return err
		}
		if err := tx.ReplaceCategories(ctx, existing.ID, nil); err != nil {
			return err
		}
		return tx.DeleteTransaction(ctx, existing.ID)
	})
}

// GetTransaction returns the transaction with its categories and accounts.
func (e *Engine) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	t, err := e.store.LoadTransaction(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNoRows) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, e.boundary("get", err)
	}
	return t, nil
}

// ListTransactions returns every transaction, newest first.
func (e *Engine) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	list, err := e.store.ListTransactions(ctx)
	if err != nil {
		return nil, e.boundary("list", err)
	}
	return list, nil
}

// ListAccounts returns every account, active or not.
func (e *Engine) ListAccounts(ctx context.Context) ([]models.Account, error) {
	list, err := e.store.ListAccounts(ctx)
	if err != nil {
		return nil, e.boundary("list_accounts", err)
	}
	return list, nil
}

// ListCategories returns every category.
func (e *Engine) ListCategories(ctx context.Context) ([]models.Category, error) {
	list, err := e.store.ListCategories(ctx)
	if err != nil {
		return nil, e.boundary("list_categories", err)
	}
	return list, nil
}

func (e *Engine) toRow(p Proposal) *models.Transaction {
	date := e.now()
	if p.Date != nil && !p.Date.IsZero() {
		date = *p.Date
	}
	return &models.Transaction{
		Kind:                 p.Kind,
		Amount:               p.AmountMinorUnits,
		Description:          p.Description,
		Counterparty:         p.Counterparty,
		Date:                 date,
		Status:               p.Status,
		SourceAccountID:      p.SourceAccountID,
		DestinationAccountID: p.DestinationAccountID,
	}
}

func (e *Engine) atomic(ctx context.Context, op string, fn func(tx Store) error) error {
	return e.boundary(op, e.store.Atomic(ctx, fn))
}

// boundary passes domain errors through untouched and turns anything else
// into a generic system error, logging the cause.
func (e *Engine) boundary(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	logger.Get().Errorw("ledger operation failed",
		"op", op,
		"error", err,
	)
	return apperrors.Wrap(apperrors.ErrSystem, err)
}
