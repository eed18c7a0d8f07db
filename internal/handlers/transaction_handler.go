package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "carteira/internal/errors"
	"carteira/internal/ledger"
	"carteira/internal/models"
	"carteira/internal/money"
	"carteira/internal/pagination"
	"carteira/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// TransactionRequest is the payload for creating or replacing a transaction.
// Kind, status and amount are checked by the ledger so that each rule
// reports its own error code.
type TransactionRequest struct {
	Kind                 models.TransactionKind   `json:"kind" example:"EXPENSE"`
	Amount               decimal.Decimal          `json:"amount" swaggertype:"string" example:"10.50"`
	Description          string                   `json:"description" binding:"max=500"`
	Counterparty         string                   `json:"counterparty" binding:"max=200"`
	Date                 *string                  `json:"date" example:"2026-03-02"`
	Status               models.TransactionStatus `json:"status" example:"PAID"`
	CategoryIDs          []string                 `json:"category_ids"`
	SourceAccountID      string                   `json:"source_account_id"`
	DestinationAccountID *string                  `json:"destination_account_id"`
}

// ListTransactionsQuery holds the list filters. Dates are YYYY-MM-DD and
// inclusive.
type ListTransactionsQuery struct {
	pagination.PageRequest
	FromDate   string `form:"from_date"`
	ToDate     string `form:"to_date"`
	Kind       string `form:"kind" binding:"omitempty,transaction_kind"`
	Status     string `form:"status" binding:"omitempty,transaction_status"`
	AccountID  string `form:"account_id" binding:"omitempty,uuid"`
	CategoryID string `form:"category_id" binding:"omitempty,uuid"`
}

// CalendarQuery selects one month.
type CalendarQuery struct {
	Year  int `form:"year" binding:"required,min=1970,max=9999"`
	Month int `form:"month" binding:"required,min=1,max=12"`
}

// TransactionAccountRef names an account touched by a transaction.
type TransactionAccountRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TransactionCategoryRef names a category of a transaction.
type TransactionCategoryRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// TransactionResponse represents a transaction in the response
type TransactionResponse struct {
	ID                 string                   `json:"id"`
	Kind               models.TransactionKind   `json:"kind"`
	AmountCents        int64                    `json:"amount_cents"`
	Amount             string                   `json:"amount"`
	Description        string                   `json:"description"`
	Counterparty       string                   `json:"counterparty"`
	Date               time.Time                `json:"date"`
	Status             models.TransactionStatus `json:"status"`
	SourceAccount      TransactionAccountRef    `json:"source_account"`
	DestinationAccount *TransactionAccountRef   `json:"destination_account,omitempty"`
	Categories         []TransactionCategoryRef `json:"categories"`
	CreatedAt          time.Time                `json:"created_at"`
}

// CalendarDayResponse is one day of the calendar view.
type CalendarDayResponse struct {
	Date         string                `json:"date"`
	IncomeCents  int64                 `json:"income_cents"`
	ExpenseCents int64                 `json:"expense_cents"`
	Transactions []TransactionResponse `json:"transactions"`
}

func toTransactionResponse(t models.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:            t.ID,
		Kind:          t.Kind,
		AmountCents:   t.Amount,
		Amount:        money.Format(t.Amount),
		Description:   t.Description,
		Counterparty:  t.Counterparty,
		Date:          t.Date,
		Status:        t.Status,
		SourceAccount: TransactionAccountRef{ID: t.SourceAccountID},
		Categories:    make([]TransactionCategoryRef, 0, len(t.Categories)),
		CreatedAt:     t.CreatedAt,
	}
	if t.SourceAccount != nil {
		resp.SourceAccount.Name = t.SourceAccount.Name
	}
	if t.DestinationAccountID != nil {
		resp.DestinationAccount = &TransactionAccountRef{ID: *t.DestinationAccountID}
		if t.DestinationAccount != nil {
			resp.DestinationAccount.Name = t.DestinationAccount.Name
		}
	}
	for _, c := range t.Categories {
		resp.Categories = append(resp.Categories, TransactionCategoryRef{ID: c.ID, Name: c.Name, Color: c.Color})
	}
	return resp
}

// parseFlexibleTime accepts RFC 3339 timestamps and plain dates.
func parseFlexibleTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC 3339", s)
	}
	return t, nil
}

func (r TransactionRequest) proposal() (ledger.Proposal, error) {
	amount, err := money.FromDecimal(r.Amount)
	if err != nil {
		// Kind is checked before amount.
		if !r.Kind.Valid() {
			return ledger.Proposal{}, apperrors.ErrInvalidKind
		}
		return ledger.Proposal{}, apperrors.WithMessage(apperrors.ErrInvalidAmount, err.Error())
	}

	p := ledger.Proposal{
		Kind:                 r.Kind,
		AmountMinorUnits:     amount,
		Description:          r.Description,
		Counterparty:         r.Counterparty,
		Status:               r.Status,
		CategoryIDs:          r.CategoryIDs,
		SourceAccountID:      r.SourceAccountID,
		DestinationAccountID: r.DestinationAccountID,
	}
	if r.Date != nil && *r.Date != "" {
		date, err := parseFlexibleTime(*r.Date)
		if err != nil {
			return ledger.Proposal{}, apperrors.WithField(apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()), "date")
		}
		p.Date = &date
	}
	return p, nil
}

func (q ListTransactionsQuery) filter() (services.TransactionFilter, error) {
	var f services.TransactionFilter
	if q.FromDate != "" {
		from, err := time.Parse("2006-01-02", q.FromDate)
		if err != nil {
			return f, apperrors.WithField(apperrors.WithMessage(apperrors.ErrInvalidInput, "from_date must be YYYY-MM-DD"), "from_date")
		}
		f.FromDate = &from
	}
	if q.ToDate != "" {
		to, err := time.Parse("2006-01-02", q.ToDate)
		if err != nil {
			return f, apperrors.WithField(apperrors.WithMessage(apperrors.ErrInvalidInput, "to_date must be YYYY-MM-DD"), "to_date")
		}
		end := to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		f.ToDate = &end
	}
	if q.Kind != "" {
		kind := models.TransactionKind(q.Kind)
		f.Kind = &kind
	}
	if q.Status != "" {
		status := models.TransactionStatus(q.Status)
		f.Status = &status
	}
	if q.AccountID != "" {
		f.AccountID = &q.AccountID
	}
	if q.CategoryID != "" {
		f.CategoryID = &q.CategoryID
	}
	return f, nil
}

// CreateTransaction records a transaction and moves balances when it is PAID
// @Summary     Create a transaction
// @Description Validate and record an INCOME, EXPENSE or TRANSFER. PAID transactions move account balances.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body TransactionRequest true "Transaction"
// @Success     201 {object} TransactionResponse
// @Failure     400 {object} ErrorResponse "Validation failed"
// @Failure     404 {object} ErrorResponse "Account or category not found"
// @Failure     500 {object} ErrorResponse "System error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	p, err := req.proposal()
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.CreateTransaction(c.Request.Context(), userID, p)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "CREATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(),
		map[string]any{"kind": transaction.Kind, "amount": transaction.Amount, "status": transaction.Status, "source_account_id": transaction.SourceAccountID})

	c.JSON(http.StatusCreated, gin.H{"transaction": toTransactionResponse(*transaction)})
}

// GetUserTransactions lists transactions, newest first
// @Summary     List transactions
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page"
// @Param       page_size query int false "Page size"
// @Param       from_date query string false "From date (YYYY-MM-DD)"
// @Param       to_date query string false "To date (YYYY-MM-DD, inclusive)"
// @Param       kind query string false "INCOME, EXPENSE or TRANSFER"
// @Param       status query string false "PAID, PENDING or CANCELLED"
// @Param       account_id query string false "Source or destination account"
// @Param       category_id query string false "Category"
// @Success     200 {object} pagination.PageResponse[TransactionResponse]
// @Router      /transactions [get]
func (h *TransactionHandler) GetUserTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q ListTransactionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	filter, err := q.filter()
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetUserTransactions(c.Request.Context(), userID, q.PageRequest, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.Map(*result, toTransactionResponse))
}

// GetTransactionByID returns one transaction
// @Summary     Get a transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} TransactionResponse
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(c.Request.Context(), userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": toTransactionResponse(*transaction)})
}

// UpdateTransaction replaces a transaction
// @Summary     Update a transaction
// @Description Replace every field of a transaction. The old balance effect is reversed before the new one is applied.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Param       request body TransactionRequest true "Transaction"
// @Success     200 {object} TransactionResponse
// @Failure     400 {object} ErrorResponse "Validation failed"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	p, err := req.proposal()
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.UpdateTransaction(c.Request.Context(), userID, transactionID, p)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "UPDATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(),
		map[string]any{"kind": transaction.Kind, "amount": transaction.Amount, "status": transaction.Status})

	c.JSON(http.StatusOK, gin.H{"transaction": toTransactionResponse(*transaction)})
}

// DeleteTransaction removes a transaction and reverses its balance effect
// @Summary     Delete a transaction
// @Tags        transactions
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     204
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(c.Request.Context(), userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "DELETE_TRANSACTION", "transaction", transactionID, c.ClientIP(), nil)
	c.Status(http.StatusNoContent)
}

// GetCalendar groups one month of transactions by day
// @Summary     Transaction calendar
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       year query int true "Year"
// @Param       month query int true "Month (1-12)"
// @Success     200 {array} CalendarDayResponse
// @Router      /transactions/calendar [get]
func (h *TransactionHandler) GetCalendar(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q CalendarQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	days, err := h.transactionService.GetCalendar(c.Request.Context(), userID, q.Year, time.Month(q.Month))
	if err != nil {
		respondWithError(c, err)
		return
	}

	out := make([]CalendarDayResponse, 0, len(days))
	for _, d := range days {
		day := CalendarDayResponse{
			Date:         d.Date,
			IncomeCents:  d.Income,
			ExpenseCents: d.Expense,
			Transactions: make([]TransactionResponse, 0, len(d.Transactions)),
		}
		for _, t := range d.Transactions {
			day.Transactions = append(day.Transactions, toTransactionResponse(t))
		}
		out = append(out, day)
	}
	c.JSON(http.StatusOK, gin.H{"days": out})
}

// VerifyBalances reports accounts whose balance disagrees with their PAID transactions
// @Summary     Verify balances
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} ledger.Drift
// @Router      /transactions/verify [get]
func (h *TransactionHandler) VerifyBalances(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	drifts, err := h.transactionService.VerifyBalances(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if drifts == nil {
		drifts = []ledger.Drift{}
	}
	c.JSON(http.StatusOK, gin.H{"consistent": len(drifts) == 0, "drifts": drifts})
}
