package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carteira/internal/models"
	"carteira/internal/money"
	"carteira/internal/pagination"
	"carteira/internal/services"
)

// AccountHandler handles account-related requests.
type AccountHandler struct {
	accountService services.AccountServicer
	auditService   services.AuditServicer
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService services.AccountServicer, auditService services.AuditServicer) *AccountHandler {
	return &AccountHandler{accountService: accountService, auditService: auditService}
}

// CreateAccountRequest represents the request payload for creating an account.
// Accounts always open with a zero balance.
type CreateAccountRequest struct {
	Name  string             `json:"name" binding:"required,min=1,max=100"`
	Kind  models.AccountKind `json:"kind" binding:"required,account_kind"`
	Color string             `json:"color" binding:"omitempty,hex_color"`
}

// UpdateAccountRequest holds the editable attributes. The balance is not one.
type UpdateAccountRequest struct {
	Name  *string             `json:"name" binding:"omitempty,min=1,max=100"`
	Kind  *models.AccountKind `json:"kind" binding:"omitempty,account_kind"`
	Color *string             `json:"color" binding:"omitempty,hex_color"`
}

// ListAccountsQuery holds the list filters.
type ListAccountsQuery struct {
	pagination.PageRequest
	IncludeInactive bool `form:"include_inactive"`
}

// AccountResponse represents an account in the response
type AccountResponse struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Kind         models.AccountKind `json:"kind"`
	BalanceCents int64              `json:"balance_cents"`
	Balance      string             `json:"balance"`
	IsActive     bool               `json:"is_active"`
	Color        string             `json:"color"`
}

func toAccountResponse(a models.Account) AccountResponse {
	return AccountResponse{
		ID:           a.ID,
		Name:         a.Name,
		Kind:         a.Kind,
		BalanceCents: a.Balance,
		Balance:      money.Format(a.Balance),
		IsActive:     a.IsActive,
		Color:        a.Color,
	}
}

// CreateAccount handles the creation of a new account
// @Summary     Create an account
// @Description Create a new account for the authenticated user
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateAccountRequest true "Account details"
// @Success     201 {object} AccountResponse "Account created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Duplicate name"
// @Router      /accounts [post]
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), userID, req.Name, req.Kind, req.Color)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "CREATE_ACCOUNT", "account", account.ID, c.ClientIP(),
		map[string]any{"name": account.Name, "kind": account.Kind})

	c.JSON(http.StatusCreated, gin.H{"account": toAccountResponse(*account)})
}

// GetUserAccounts handles the retrieval of accounts for a user
// @Summary     List accounts
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page"
// @Param       page_size query int false "Page size"
// @Param       include_inactive query bool false "Include deactivated accounts"
// @Success     200 {object} pagination.PageResponse[AccountResponse]
// @Router      /accounts [get]
func (h *AccountHandler) GetUserAccounts(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q ListAccountsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	result, err := h.accountService.GetUserAccounts(c.Request.Context(), userID, q.IncludeInactive, q.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, pagination.Map(*result, toAccountResponse))
}

// GetAccountByID handles the retrieval of a specific account for a user
// @Summary     Get an account
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account ID"
// @Success     200 {object} AccountResponse
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /accounts/{id} [get]
func (h *AccountHandler) GetAccountByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	account, err := h.accountService.GetAccountByID(c.Request.Context(), userID, accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": toAccountResponse(*account)})
}

// UpdateAccount handles renaming, recoloring or changing the kind of an account.
// @Summary     Update an account
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account ID"
// @Param       request body UpdateAccountRequest true "Fields to change"
// @Success     200 {object} AccountResponse
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /accounts/{id} [put]
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	account, err := h.accountService.UpdateAccount(c.Request.Context(), userID, accountID, services.AccountUpdateFields{
		Name:  req.Name,
		Kind:  req.Kind,
		Color: req.Color,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "UPDATE_ACCOUNT", "account", account.ID, c.ClientIP(),
		map[string]any{"name": req.Name, "kind": req.Kind, "color": req.Color})

	c.JSON(http.StatusOK, gin.H{"account": toAccountResponse(*account)})
}

// DeactivateAccount stops an account from being used as a transaction source.
// @Summary     Deactivate an account
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account ID"
// @Success     200 {object} AccountResponse
// @Router      /accounts/{id}/deactivate [post]
func (h *AccountHandler) DeactivateAccount(c *gin.Context) {
	h.setActive(c, false)
}

// ActivateAccount re-enables a deactivated account.
// @Summary     Activate an account
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account ID"
// @Success     200 {object} AccountResponse
// @Router      /accounts/{id}/activate [post]
func (h *AccountHandler) ActivateAccount(c *gin.Context) {
	h.setActive(c, true)
}

func (h *AccountHandler) setActive(c *gin.Context, active bool) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var account *models.Account
	action := "DEACTIVATE_ACCOUNT"
	if active {
		action = "ACTIVATE_ACCOUNT"
		account, err = h.accountService.ActivateAccount(c.Request.Context(), userID, accountID)
	} else {
		account, err = h.accountService.DeactivateAccount(c.Request.Context(), userID, accountID)
	}
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, action, "account", account.ID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, gin.H{"account": toAccountResponse(*account)})
}
