package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "carteira/internal/errors"
	"carteira/internal/models"
	"carteira/internal/pagination"
)

// accountService handles account-related business logic. It never writes
// the balance column.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

// CreateAccount opens an active account with a zero balance.
func (s *accountService) CreateAccount(ctx context.Context, userID, name string, kind models.AccountKind, color string) (*models.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}
	if !kind.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid account kind")
	}
	if err := s.ensureUniqueName(ctx, userID, name, ""); err != nil {
		return nil, err
	}

	account := &models.Account{
		UserID:   userID,
		Name:     name,
		Kind:     kind,
		IsActive: true,
		Color:    color,
	}
	if err := s.db.WithContext(ctx).Create(account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateAccountName
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return account, nil
}

// GetUserAccounts retrieves a paginated list of accounts ordered by name.
func (s *accountService) GetUserAccounts(ctx context.Context, userID string, includeInactive bool, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error) {
	page.Defaults()

	base := s.db.WithContext(ctx).Model(&models.Account{}).Where("user_id = ?", userID)
	if !includeInactive {
		base = base.Where("is_active = ?", true)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var accounts []models.Account
	if err := base.Scopes(pagination.Paginate(page)).Order("name ASC").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(accounts, page, totalItems)
	return &result, nil
}

// GetAccountByID retrieves an account, active or not, owned by the user.
func (s *accountService) GetAccountByID(ctx context.Context, userID, accountID string) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// UpdateAccount changes the descriptive attributes of an account.
func (s *accountService) UpdateAccount(ctx context.Context, userID, accountID string, fields AccountUpdateFields) (*models.Account, error) {
	account, err := s.GetAccountByID(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.Name != nil {
		name := strings.TrimSpace(*fields.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
		}
		if name != account.Name {
			if err := s.ensureUniqueName(ctx, userID, name, account.ID); err != nil {
				return nil, err
			}
			updates["name"] = name
		}
	}
	if fields.Kind != nil && *fields.Kind != account.Kind {
		if !fields.Kind.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid account kind")
		}
		updates["kind"] = *fields.Kind
	}
	if fields.Color != nil && *fields.Color != account.Color {
		updates["color"] = *fields.Color
	}

	if len(updates) == 0 {
		return account, nil
	}
	return s.apply(ctx, account, updates)
}

// DeactivateAccount hides an account from new transactions. Its history and
// balance stay intact and it can still receive transfers.
func (s *accountService) DeactivateAccount(ctx context.Context, userID, accountID string) (*models.Account, error) {
	return s.setActive(ctx, userID, accountID, false)
}

// ActivateAccount reverses DeactivateAccount.
func (s *accountService) ActivateAccount(ctx context.Context, userID, accountID string) (*models.Account, error) {
	return s.setActive(ctx, userID, accountID, true)
}

func (s *accountService) setActive(ctx context.Context, userID, accountID string, active bool) (*models.Account, error) {
	account, err := s.GetAccountByID(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}
	if account.IsActive == active {
		return account, nil
	}
	return s.apply(ctx, account, map[string]interface{}{"is_active": active})
}

// apply writes the updates and reloads the row so the balance reflects any
// concurrent ledger activity.
func (s *accountService) apply(ctx context.Context, account *models.Account, updates map[string]interface{}) (*models.Account, error) {
	db := s.db.WithContext(ctx)
	if err := db.Model(account).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateAccountName
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := db.Where("id = ?", account.ID).First(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return account, nil
}

func (s *accountService) ensureUniqueName(ctx context.Context, userID, name, exceptID string) error {
	q := s.db.WithContext(ctx).Model(&models.Account{}).Where("user_id = ? AND name = ?", userID, name)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateAccountName
	}
	return nil
}
