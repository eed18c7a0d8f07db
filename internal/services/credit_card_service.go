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

// creditCardService keeps card records. Cards carry no balance logic.
type creditCardService struct {
	db *gorm.DB
}

// NewCreditCardService creates a new CreditCardServicer.
func NewCreditCardService(db *gorm.DB) CreditCardServicer {
	return &creditCardService{db: db}
}

// CreateCreditCard registers a card.
func (s *creditCardService) CreateCreditCard(ctx context.Context, userID, name string, limitCents int64, closingDay, dueDay int, color string) (*models.CreditCard, error) {
	card := &models.CreditCard{
		UserID:     userID,
		Name:       strings.TrimSpace(name),
		LimitCents: limitCents,
		ClosingDay: closingDay,
		DueDay:     dueDay,
		Color:      color,
	}
	if err := validateCard(card); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, userID, card.Name, ""); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(card).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateCardName
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return card, nil
}

// GetUserCreditCards lists cards ordered by name.
func (s *creditCardService) GetUserCreditCards(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.CreditCard], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.WithContext(ctx).Model(&models.CreditCard{}).Where("user_id = ?", userID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var cards []models.CreditCard
	if err := base.Scopes(pagination.Paginate(page)).Order("name ASC").Find(&cards).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(cards, page, totalItems)
	return &result, nil
}

// GetCreditCardByID retrieves a card with its invoices, latest period first.
func (s *creditCardService) GetCreditCardByID(ctx context.Context, userID, cardID string) (*models.CreditCard, error) {
	var card models.CreditCard
	err := s.db.WithContext(ctx).
		Preload("Invoices", func(db *gorm.DB) *gorm.DB { return db.Order("year DESC").Order("month DESC") }).
		Where("id = ? AND user_id = ?", cardID, userID).
		First(&card).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCreditCardNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &card, nil
}

// UpdateCreditCard applies the non-nil fields.
func (s *creditCardService) UpdateCreditCard(ctx context.Context, userID, cardID string, fields CreditCardFields) (*models.CreditCard, error) {
	card, err := s.GetCreditCardByID(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}

	updated := *card
	if fields.Name != nil {
		updated.Name = strings.TrimSpace(*fields.Name)
	}
	if fields.LimitCents != nil {
		updated.LimitCents = *fields.LimitCents
	}
	if fields.ClosingDay != nil {
		updated.ClosingDay = *fields.ClosingDay
	}
	if fields.DueDay != nil {
		updated.DueDay = *fields.DueDay
	}
	if fields.Color != nil {
		updated.Color = *fields.Color
	}
	if err := validateCard(&updated); err != nil {
		return nil, err
	}
	if updated.Name != card.Name {
		if err := s.ensureUniqueName(ctx, userID, updated.Name, card.ID); err != nil {
			return nil, err
		}
	}

	err = s.db.WithContext(ctx).Model(card).Updates(map[string]interface{}{
		"name":        updated.Name,
		"limit_cents": updated.LimitCents,
		"closing_day": updated.ClosingDay,
		"due_day":     updated.DueDay,
		"color":       updated.Color,
	}).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateCardName
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetCreditCardByID(ctx, userID, cardID)
}

// DeleteCreditCard removes a card and its invoices.
func (s *creditCardService) DeleteCreditCard(ctx context.Context, userID, cardID string) error {
	card, err := s.GetCreditCardByID(ctx, userID, cardID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("credit_card_id = ?", card.ID).Delete(&models.CardInvoice{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(&models.CreditCard{}, "id = ?", card.ID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

func (s *creditCardService) ensureUniqueName(ctx context.Context, userID, name, exceptID string) error {
	q := s.db.WithContext(ctx).Model(&models.CreditCard{}).Where("user_id = ? AND name = ?", userID, name)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateCardName
	}
	return nil
}

func validateCard(card *models.CreditCard) error {
	switch {
	case card.Name == "":
		return apperrors.WithField(apperrors.WithMessage(apperrors.ErrInvalidInput, "card name is required"), "name")
	case card.LimitCents <= 0:
		return apperrors.WithField(apperrors.WithMessage(apperrors.ErrInvalidInput, "limit must be greater than zero"), "limit")
	case card.ClosingDay < 1 || card.ClosingDay > 31:
		return apperrors.WithField(apperrors.WithMessage(apperrors.ErrInvalidInput, "closing day must be between 1 and 31"), "closing_day")
	case card.DueDay < 1 || card.DueDay > 31:
		return apperrors.WithField(apperrors.WithMessage(apperrors.ErrInvalidInput, "due day must be between 1 and 31"), "due_day")
	}
	return nil
}
