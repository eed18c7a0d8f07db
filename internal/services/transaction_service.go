package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	apperrors "carteira/internal/errors"
	"carteira/internal/events"
	"carteira/internal/ledger"
	"carteira/internal/logger"
	"carteira/internal/models"
	"carteira/internal/pagination"
	"carteira/internal/store"
)

// transactionService handles transaction-related business logic. Writes
// are delegated to a ledger engine scoped to the calling user; reads that
// need filtering or paging query the database directly.
type transactionService struct {
	db        *gorm.DB
	store     *store.GormStore
	publisher events.Publisher
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, publisher events.Publisher) TransactionServicer {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &transactionService{
		db:        db,
		store:     store.NewGormStore(db),
		publisher: publisher,
	}
}

func (s *transactionService) engine(userID string) *ledger.Engine {
	return ledger.NewEngine(s.store.ForUser(userID))
}

// CreateTransaction records a transaction and applies its balance effect.
func (s *transactionService) CreateTransaction(ctx context.Context, userID string, p ledger.Proposal) (*models.Transaction, error) {
	created, err := s.engine(userID).CreateTransaction(ctx, p)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.New(events.TransactionCreated, userID, created.ID, ledger.EffectOf(created)))
	return created, nil
}

// UpdateTransaction replaces a transaction, moving balances from its old
// effect to its new one.
func (s *transactionService) UpdateTransaction(ctx context.Context, userID, transactionID string, p ledger.Proposal) (*models.Transaction, error) {
	updated, err := s.engine(userID).UpdateTransaction(ctx, transactionID, p)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.New(events.TransactionUpdated, userID, updated.ID, ledger.EffectOf(updated)))
	return updated, nil
}

// DeleteTransaction removes a transaction and reverses its effect.
func (s *transactionService) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	if err := s.engine(userID).DeleteTransaction(ctx, transactionID); err != nil {
		return err
	}
	s.publish(ctx, events.New(events.TransactionDeleted, userID, transactionID, nil))
	return nil
}

// GetTransactionByID retrieves a transaction with its associations.
func (s *transactionService) GetTransactionByID(ctx context.Context, userID, transactionID string) (*models.Transaction, error) {
	return s.engine(userID).GetTransaction(ctx, transactionID)
}

// GetUserTransactions retrieves a paginated, filtered list of transactions,
// newest first.
func (s *transactionService) GetUserTransactions(ctx context.Context, userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.WithContext(ctx).Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := withTransactionAssociations(base).
		Scopes(pagination.Paginate(page)).
		Order("created_at DESC").Order("id DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page, totalItems)
	return &result, nil
}

// GetCalendar returns the month's transactions grouped by day, in date
// order. Days without transactions are omitted.
func (s *transactionService) GetCalendar(ctx context.Context, userID string, year int, month time.Month) ([]CalendarDay, error) {
	if month < time.January || month > time.December {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "month must be between 1 and 12")
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var transactions []models.Transaction
	err := withTransactionAssociations(s.db.WithContext(ctx)).
		Where("user_id = ? AND date >= ? AND date < ?", userID, start, end).
		Order("date ASC").Order("created_at ASC").
		Find(&transactions).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	days := []CalendarDay{}
	for _, t := range transactions {
		key := t.Date.UTC().Format("2006-01-02")
		if len(days) == 0 || days[len(days)-1].Date != key {
			days = append(days, CalendarDay{Date: key})
		}
		day := &days[len(days)-1]
		day.Transactions = append(day.Transactions, t)
		if t.Status != models.TransactionStatusPaid {
			continue
		}
		switch t.Kind {
		case models.TransactionKindIncome:
			day.Income += t.Amount
		case models.TransactionKindExpense:
			day.Expense += t.Amount
		}
	}
	return days, nil
}

// VerifyBalances reports the user's accounts whose balance disagrees with
// their PAID transactions.
func (s *transactionService) VerifyBalances(ctx context.Context, userID string) ([]ledger.Drift, error) {
	return s.engine(userID).Verify(ctx)
}

// publish runs after commit. A broker outage never fails the request.
func (s *transactionService) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		logger.Get().Warnw("failed to publish event",
			"type", e.Type,
			"resource_id", e.ResourceID,
			"error", err,
		)
	}
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", *f.ToDate)
	}
	if f.Kind != nil {
		q = q.Where("kind = ?", *f.Kind)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.AccountID != nil {
		q = q.Where("(source_account_id = ? OR destination_account_id = ?)", *f.AccountID, *f.AccountID)
	}
	if f.CategoryID != nil {
		q = q.Where("EXISTS (SELECT 1 FROM transaction_categories tc WHERE tc.transaction_id = transactions.id AND tc.category_id = ?)", *f.CategoryID)
	}
	return q
}

func withTransactionAssociations(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Categories", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Preload("SourceAccount").
		Preload("DestinationAccount")
}
