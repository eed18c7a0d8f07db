package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "carteira/internal/errors"
	"carteira/internal/models"
	"carteira/internal/money"
	"carteira/internal/pagination"
	"carteira/internal/services"
)

// CreditCardHandler handles credit card requests. Cards are records only;
// they never touch account balances.
type CreditCardHandler struct {
	cardService  services.CreditCardServicer
	auditService services.AuditServicer
}

// NewCreditCardHandler creates a new CreditCardHandler.
func NewCreditCardHandler(cardService services.CreditCardServicer, auditService services.AuditServicer) *CreditCardHandler {
	return &CreditCardHandler{cardService: cardService, auditService: auditService}
}

// CreateCreditCardRequest represents the request payload for registering a card.
type CreateCreditCardRequest struct {
	Name       string          `json:"name" binding:"required,max=100"`
	Limit      decimal.Decimal `json:"limit" swaggertype:"string" example:"5000.00"`
	ClosingDay int             `json:"closing_day" binding:"required,min=1,max=31"`
	DueDay     int             `json:"due_day" binding:"required,min=1,max=31"`
	Color      string          `json:"color" binding:"omitempty,hex_color"`
}

// UpdateCreditCardRequest holds the card fields to change.
type UpdateCreditCardRequest struct {
	Name       *string          `json:"name" binding:"omitempty,max=100"`
	Limit      *decimal.Decimal `json:"limit" swaggertype:"string"`
	ClosingDay *int             `json:"closing_day" binding:"omitempty,min=1,max=31"`
	DueDay     *int             `json:"due_day" binding:"omitempty,min=1,max=31"`
	Color      *string          `json:"color" binding:"omitempty,hex_color"`
}

// CardInvoiceResponse is one statement period of a card.
type CardInvoiceResponse struct {
	ID         string `json:"id"`
	Month      int    `json:"month"`
	Year       int    `json:"year"`
	TotalCents int64  `json:"total_cents"`
	Total      string `json:"total"`
	Paid       bool   `json:"paid"`
}

// CreditCardResponse represents a card in the response.
type CreditCardResponse struct {
	ID         string                `json:"id"`
	Name       string                `json:"name"`
	LimitCents int64                 `json:"limit_cents"`
	Limit      string                `json:"limit"`
	ClosingDay int                   `json:"closing_day"`
	DueDay     int                   `json:"due_day"`
	Color      string                `json:"color"`
	Invoices   []CardInvoiceResponse `json:"invoices,omitempty"`
}

func toCreditCardResponse(card models.CreditCard) CreditCardResponse {
	resp := CreditCardResponse{
		ID:         card.ID,
		Name:       card.Name,
		LimitCents: card.LimitCents,
		Limit:      money.Format(card.LimitCents),
		ClosingDay: card.ClosingDay,
		DueDay:     card.DueDay,
		Color:      card.Color,
	}
	for _, inv := range card.Invoices {
		resp.Invoices = append(resp.Invoices, CardInvoiceResponse{
			ID:         inv.ID,
			Month:      inv.Month,
			Year:       inv.Year,
			TotalCents: inv.TotalCents,
			Total:      money.Format(inv.TotalCents),
			Paid:       inv.Paid,
		})
	}
	return resp
}

func limitCents(d decimal.Decimal) (int64, error) {
	cents, err := money.FromDecimal(d)
	if err != nil {
		return 0, apperrors.WithField(apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()), "limit")
	}
	return cents, nil
}

// CreateCreditCard registers a card
// @Summary     Create a credit card
// @Tags        credit-cards
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateCreditCardRequest true "Card details"
// @Success     201 {object} CreditCardResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /credit-cards [post]
func (h *CreditCardHandler) CreateCreditCard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateCreditCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	limit, err := limitCents(req.Limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	card, err := h.cardService.CreateCreditCard(c.Request.Context(), userID, req.Name, limit, req.ClosingDay, req.DueDay, req.Color)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "CREATE_CREDIT_CARD", "credit_card", card.ID, c.ClientIP(),
		map[string]any{"name": card.Name, "limit_cents": card.LimitCents})
	c.JSON(http.StatusCreated, gin.H{"credit_card": toCreditCardResponse(*card)})
}

// GetUserCreditCards lists the user's cards
// @Summary     List credit cards
// @Tags        credit-cards
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} pagination.PageResponse[CreditCardResponse]
// @Router      /credit-cards [get]
func (h *CreditCardHandler) GetUserCreditCards(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	result, err := h.cardService.GetUserCreditCards(c.Request.Context(), userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.Map(*result, toCreditCardResponse))
}

// GetCreditCardByID returns a card with its invoices
// @Summary     Get a credit card
// @Tags        credit-cards
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Card ID"
// @Success     200 {object} CreditCardResponse
// @Failure     404 {object} ErrorResponse "Card not found"
// @Router      /credit-cards/{id} [get]
func (h *CreditCardHandler) GetCreditCardByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	cardID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	card, err := h.cardService.GetCreditCardByID(c.Request.Context(), userID, cardID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"credit_card": toCreditCardResponse(*card)})
}

// UpdateCreditCard changes card fields
// @Summary     Update a credit card
// @Tags        credit-cards
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Card ID"
// @Param       request body UpdateCreditCardRequest true "Fields to change"
// @Success     200 {object} CreditCardResponse
// @Router      /credit-cards/{id} [put]
func (h *CreditCardHandler) UpdateCreditCard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	cardID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateCreditCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	fields := services.CreditCardFields{
		Name:       req.Name,
		ClosingDay: req.ClosingDay,
		DueDay:     req.DueDay,
		Color:      req.Color,
	}
	if req.Limit != nil {
		limit, err := limitCents(*req.Limit)
		if err != nil {
			respondWithError(c, err)
			return
		}
		fields.LimitCents = &limit
	}

	card, err := h.cardService.UpdateCreditCard(c.Request.Context(), userID, cardID, fields)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "UPDATE_CREDIT_CARD", "credit_card", card.ID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, gin.H{"credit_card": toCreditCardResponse(*card)})
}

// DeleteCreditCard removes a card and its invoices
// @Summary     Delete a credit card
// @Tags        credit-cards
// @Security    BearerAuth
// @Param       id path string true "Card ID"
// @Success     204
// @Router      /credit-cards/{id} [delete]
func (h *CreditCardHandler) DeleteCreditCard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	cardID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.cardService.DeleteCreditCard(c.Request.Context(), userID, cardID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "DELETE_CREDIT_CARD", "credit_card", cardID, c.ClientIP(), nil)
	c.Status(http.StatusNoContent)
}
