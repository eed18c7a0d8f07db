package ledger_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "carteira/internal/errors"
	"carteira/internal/ledger"
	"carteira/internal/models"
)

const (
	accountA        = "0190a1b2-0000-7000-8000-00000000000a"
	accountB        = "0190a1b2-0000-7000-8000-00000000000b"
	accountInactive = "0190a1b2-0000-7000-8000-00000000000c"
	accountUnknown  = "0190a1b2-0000-7000-8000-0000000000ff"
	categoryFood    = "0190a1b2-0000-7000-8000-0000000000f1"
	categoryRent    = "0190a1b2-0000-7000-8000-0000000000f2"
	categoryTravel  = "0190a1b2-0000-7000-8000-0000000000e1"
	categoryGifts   = "0190a1b2-0000-7000-8000-0000000000e2"
)

// fakeLookup resolves accounts and categories from maps.
type fakeLookup struct {
	accounts   map[string]*models.Account
	categories map[string]bool
	err        error
}

func newFakeLookup() *fakeLookup {
	return &fakeLookup{
		accounts: map[string]*models.Account{
			accountA:        {Base: models.Base{ID: accountA}, IsActive: true},
			accountB:        {Base: models.Base{ID: accountB}, IsActive: true},
			accountInactive: {Base: models.Base{ID: accountInactive}, IsActive: false},
		},
		categories: map[string]bool{categoryFood: true, categoryRent: true},
	}
}

func (f *fakeLookup) FindAccount(_ context.Context, id string) (*models.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.accounts[id]
	if !ok {
		return nil, ledger.ErrNoRows
	}
	return a, nil
}

func (f *fakeLookup) MissingCategories(_ context.Context, ids []string) ([]string, error) {
	var missing []string
	for _, id := range ids {
		if !f.categories[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func validProposal() ledger.Proposal {
	return ledger.Proposal{
		Kind:             models.TransactionKindExpense,
		AmountMinorUnits: 1000,
		Status:           models.TransactionStatusPaid,
		SourceAccountID:  accountA,
		CategoryIDs:      []string{categoryFood},
		Counterparty:     "Grocer",
	}
}

func TestValidateRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *ledger.Proposal)
		code   string
	}{
		{"unknown kind", func(p *ledger.Proposal) { p.Kind = "REFUND" }, "INVALID_KIND"},
		{"zero amount", func(p *ledger.Proposal) { p.AmountMinorUnits = 0 }, "INVALID_AMOUNT"},
		{"negative amount", func(p *ledger.Proposal) { p.AmountMinorUnits = -5 }, "INVALID_AMOUNT"},
		{"unknown status", func(p *ledger.Proposal) { p.Status = "DONE" }, "INVALID_STATUS"},
		{"missing source", func(p *ledger.Proposal) { p.SourceAccountID = "" }, "SOURCE_ACCOUNT_NOT_FOUND"},
		{"unknown source", func(p *ledger.Proposal) { p.SourceAccountID = accountUnknown }, "SOURCE_ACCOUNT_NOT_FOUND"},
		{"malformed source", func(p *ledger.Proposal) { p.SourceAccountID = "zzz" }, "SOURCE_ACCOUNT_NOT_FOUND"},
		{"inactive source", func(p *ledger.Proposal) { p.SourceAccountID = accountInactive }, "SOURCE_ACCOUNT_NOT_FOUND"},
		{"no categories", func(p *ledger.Proposal) { p.CategoryIDs = nil }, "MISSING_CATEGORY"},
		{"blank categories", func(p *ledger.Proposal) { p.CategoryIDs = []string{" ", ""} }, "MISSING_CATEGORY"},
		{"unknown category", func(p *ledger.Proposal) { p.CategoryIDs = []string{categoryFood, categoryTravel} }, "CATEGORY_NOT_FOUND"},
		{"malformed category", func(p *ledger.Proposal) { p.CategoryIDs = []string{"travel"} }, "CATEGORY_NOT_FOUND"},
		{"transfer without destination", func(p *ledger.Proposal) { p.Kind = models.TransactionKindTransfer }, "MISSING_DESTINATION"},
		{"transfer to unknown account", func(p *ledger.Proposal) {
			p.Kind = models.TransactionKindTransfer
			p.DestinationAccountID = ptr(accountUnknown)
		}, "DESTINATION_ACCOUNT_NOT_FOUND"},
		{"transfer to malformed account", func(p *ledger.Proposal) {
			p.Kind = models.TransactionKindTransfer
			p.DestinationAccountID = ptr("zzz")
		}, "DESTINATION_ACCOUNT_NOT_FOUND"},
		{"transfer to self", func(p *ledger.Proposal) {
			p.Kind = models.TransactionKindTransfer
			p.DestinationAccountID = ptr(accountA)
		}, "SAME_ACCOUNT_TRANSFER"},
		{"transfer to self spelled in uppercase", func(p *ledger.Proposal) {
			p.Kind = models.TransactionKindTransfer
			p.DestinationAccountID = ptr(strings.ToUpper(accountA))
		}, "SAME_ACCOUNT_TRANSFER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProposal()
			tt.mutate(&p)
			_, err := ledger.Validate(context.Background(), newFakeLookup(), p)
			requireCode(t, err, tt.code)
		})
	}
}

func TestValidateStopsAtFirstFailure(t *testing.T) {
	p := validProposal()
	p.Kind = "BOGUS"
	p.AmountMinorUnits = 0
	p.SourceAccountID = ""

	_, err := ledger.Validate(context.Background(), newFakeLookup(), p)
	requireCode(t, err, "INVALID_KIND")
}

func TestValidateReportsMissingCategories(t *testing.T) {
	p := validProposal()
	p.CategoryIDs = []string{categoryTravel, categoryFood, "gifts", categoryGifts}

	_, err := ledger.Validate(context.Background(), newFakeLookup(), p)
	requireCode(t, err, "CATEGORY_NOT_FOUND")
	assert.Contains(t, err.Error(), categoryTravel)
	assert.Contains(t, err.Error(), categoryGifts)
	assert.Contains(t, err.Error(), "gifts,")
	assert.NotContains(t, err.Error(), categoryFood)
}

func TestValidateNormalizes(t *testing.T) {
	t.Run("non-transfer drops destination", func(t *testing.T) {
		p := validProposal()
		p.DestinationAccountID = ptr(accountB)
		p.CategoryIDs = []string{categoryFood, strings.ToUpper(categoryFood), " " + categoryRent + " "}

		got, err := ledger.Validate(context.Background(), newFakeLookup(), p)
		require.NoError(t, err)
		assert.Nil(t, got.DestinationAccountID)
		assert.Equal(t, []string{categoryFood, categoryRent}, got.CategoryIDs)
		assert.Equal(t, "Grocer", got.Counterparty)
	})

	t.Run("transfer forces self counterparty", func(t *testing.T) {
		p := validProposal()
		p.Kind = models.TransactionKindTransfer
		p.DestinationAccountID = ptr(accountB)

		got, err := ledger.Validate(context.Background(), newFakeLookup(), p)
		require.NoError(t, err)
		assert.Equal(t, ledger.SelfCounterparty, got.Counterparty)
	})

	t.Run("ids come back canonical", func(t *testing.T) {
		p := validProposal()
		p.Kind = models.TransactionKindTransfer
		p.SourceAccountID = strings.ToUpper(accountA)
		p.DestinationAccountID = ptr("{" + accountB + "}")

		got, err := ledger.Validate(context.Background(), newFakeLookup(), p)
		require.NoError(t, err)
		assert.Equal(t, accountA, got.SourceAccountID)
		require.NotNil(t, got.DestinationAccountID)
		assert.Equal(t, accountB, *got.DestinationAccountID)
	})

	t.Run("inactive destination is accepted", func(t *testing.T) {
		p := validProposal()
		p.Kind = models.TransactionKindTransfer
		p.DestinationAccountID = ptr(accountInactive)

		_, err := ledger.Validate(context.Background(), newFakeLookup(), p)
		require.NoError(t, err)
	})
}

func TestValidateSelfTransferForEveryAmountAndStatus(t *testing.T) {
	for _, status := range []models.TransactionStatus{models.TransactionStatusPaid, models.TransactionStatusPending, models.TransactionStatusCancelled} {
		for _, amount := range []int64{1, 500, 1 << 32} {
			p := validProposal()
			p.Kind = models.TransactionKindTransfer
			p.Status = status
			p.AmountMinorUnits = amount
			p.DestinationAccountID = ptr(accountA)

			_, err := ledger.Validate(context.Background(), newFakeLookup(), p)
			requireCode(t, err, "SAME_ACCOUNT_TRANSFER")
		}
	}
}

func TestValidatePassesLookupFailuresThrough(t *testing.T) {
	boom := errors.New("connection reset")
	lookup := newFakeLookup()
	lookup.err = boom

	_, err := ledger.Validate(context.Background(), lookup, validProposal())
	require.ErrorIs(t, err, boom)
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code, "message: %s", appErr.Message)
}
