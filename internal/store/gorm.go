// Package store implements ledger.Store on top of GORM.
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"carteira/internal/ledger"
	"carteira/internal/models"
)

// GormStore is a ledger.Store backed by a relational database. A store
// created with ForUser only sees and touches rows owned by that user.
type GormStore struct {
	db     *gorm.DB
	userID string
}

// NewGormStore creates an unscoped store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// ForUser returns a copy of the store scoped to userID.
func (s *GormStore) ForUser(userID string) *GormStore {
	return &GormStore{db: s.db, userID: userID}
}

var _ ledger.Store = (*GormStore)(nil)

// query returns a session bound to ctx with the owner filter applied.
func (s *GormStore) query(ctx context.Context) *gorm.DB {
	q := s.db.WithContext(ctx)
	if s.userID != "" {
		q = q.Where("user_id = ?", s.userID)
	}
	return q
}

// Atomic runs fn inside a database transaction.
func (s *GormStore) Atomic(ctx context.Context, fn func(tx ledger.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, userID: s.userID})
	})
}

// FindAccount looks up an account by id.
func (s *GormStore) FindAccount(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	if err := s.query(ctx).Where("id = ?", id).First(&account).Error; err != nil {
		return nil, notFound(err)
	}
	return &account, nil
}

// MissingCategories returns the ids with no matching category.
func (s *GormStore) MissingCategories(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []string
	if err := s.query(ctx).Model(&models.Category{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}

	have := make(map[string]struct{}, len(found))
	for _, id := range found {
		have[id] = struct{}{}
	}
	var missing []string
	for _, id := range ids {
		if _, ok := have[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// FindTransaction returns the bare transaction row.
func (s *GormStore) FindTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	var t models.Transaction
	if err := s.query(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// LoadTransaction returns the transaction with its associations resolved.
func (s *GormStore) LoadTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	var t models.Transaction
	if err := withAssociations(s.query(ctx)).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// ListTransactions returns every visible transaction, newest first.
func (s *GormStore) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	var list []models.Transaction
	if err := withAssociations(s.query(ctx)).
		Order("created_at DESC").Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// ListAccounts returns every visible account ordered by name.
func (s *GormStore) ListAccounts(ctx context.Context) ([]models.Account, error) {
	var list []models.Account
	if err := s.query(ctx).Order("name ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// ListCategories returns every visible category, newest first.
func (s *GormStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	var list []models.Category
	if err := s.query(ctx).Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// InsertTransaction persists a new row, stamping the owner when scoped.
func (s *GormStore) InsertTransaction(ctx context.Context, t *models.Transaction) error {
	if s.userID != "" {
		t.UserID = s.userID
	}
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(t).Error
}

// UpdateTransaction overwrites the mutable columns of an existing row,
// including zero values and a cleared destination.
func (s *GormStore) UpdateTransaction(ctx context.Context, t *models.Transaction) error {
	result := s.query(ctx).Model(t).
		Select("kind", "amount", "description", "counterparty", "date", "status",
			"source_account_id", "destination_account_id", "updated_at").
		Omit(clause.Associations).
		Updates(t)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ledger.ErrNoRows
	}
	return nil
}

// DeleteTransaction removes a row.
func (s *GormStore) DeleteTransaction(ctx context.Context, id string) error {
	result := s.query(ctx).Where("id = ?", id).Delete(&models.Transaction{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ledger.ErrNoRows
	}
	return nil
}

// ReplaceCategories rewrites the category links of a transaction.
func (s *GormStore) ReplaceCategories(ctx context.Context, transactionID string, categoryIDs []string) error {
	db := s.db.WithContext(ctx)
	if err := db.Where("transaction_id = ?", transactionID).Delete(&models.TransactionCategory{}).Error; err != nil {
		return err
	}
	if len(categoryIDs) == 0 {
		return nil
	}

	links := make([]models.TransactionCategory, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		links = append(links, models.TransactionCategory{TransactionID: transactionID, CategoryID: id})
	}
	return db.Create(&links).Error
}

// AdjustBalance applies a relative balance update.
func (s *GormStore) AdjustBalance(ctx context.Context, accountID string, delta int64) error {
	result := s.query(ctx).Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("balance", gorm.Expr("balance + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("account %s: %w", accountID, ledger.ErrNoRows)
	}
	return nil
}

func withAssociations(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Categories", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Preload("SourceAccount").
		Preload("DestinationAccount")
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ledger.ErrNoRows
	}
	return err
}
