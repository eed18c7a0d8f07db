package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"carteira/internal/ledger"
	"carteira/internal/services"
)

// LedgerHandler serves the whole-ledger maintenance endpoints. They sit
// behind the ops API key rather than a user token.
type LedgerHandler struct {
	ledgerService services.LedgerServicer
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerService services.LedgerServicer) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// LedgerQuery optionally narrows an audit to one user.
type LedgerQuery struct {
	UserID string `form:"user_id" binding:"omitempty,uuid"`
}

// DriftResponse lists drifted accounts.
type DriftResponse struct {
	Consistent bool           `json:"consistent"`
	Drifts     []ledger.Drift `json:"drifts"`
}

// Verify recomputes balances and reports drift
// @Summary     Verify ledger
// @Tags        ops
// @Produce     json
// @Param       X-API-Key header string true "Ops API key"
// @Param       user_id query string false "Limit to one user"
// @Success     200 {object} DriftResponse
// @Router      /ops/ledger/verify [get]
func (h *LedgerHandler) Verify(c *gin.Context) {
	h.run(c, h.ledgerService.Verify)
}

// Repair corrects drifted balances
// @Summary     Repair ledger
// @Tags        ops
// @Produce     json
// @Param       X-API-Key header string true "Ops API key"
// @Param       user_id query string false "Limit to one user"
// @Success     200 {object} DriftResponse
// @Router      /ops/ledger/repair [post]
func (h *LedgerHandler) Repair(c *gin.Context) {
	h.run(c, h.ledgerService.Repair)
}

func (h *LedgerHandler) run(c *gin.Context, op func(ctx context.Context, userID string) ([]ledger.Drift, error)) {
	var q LedgerQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	drifts, err := op(c.Request.Context(), q.UserID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if drifts == nil {
		drifts = []ledger.Drift{}
	}
	c.JSON(http.StatusOK, DriftResponse{Consistent: len(drifts) == 0, Drifts: drifts})
}
