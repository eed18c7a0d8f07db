package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"carteira/internal/ledger"
	"carteira/internal/models"
	"carteira/internal/pagination"
	"carteira/internal/services"
	"carteira/internal/validator"
)

const (
	testUserID    = "0190c6a8-0000-7000-8000-000000000001"
	testAccountID = "0190c6a8-0000-7000-8000-0000000000a1"
	testOtherID   = "0190c6a8-0000-7000-8000-0000000000a2"
	testCatID     = "0190c6a8-0000-7000-8000-0000000000c1"
	testTxID      = "0190c6a8-0000-7000-8000-0000000000f1"
)

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func doRequestWithKey(r *gin.Engine, method, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, http.NoBody)
	req.Header.Set("X-API-Key", key)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

// --- mock audit service ---

type auditEntry struct {
	UserID, Action, ResourceType, ResourceID string
}

type mockAuditService struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (m *mockAuditService) Log(_ context.Context, userID, action, resourceType, resourceID, _ string, _ map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, auditEntry{userID, action, resourceType, resourceID})
}

func (m *mockAuditService) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Action)
	}
	return out
}

var _ services.AuditServicer = (*mockAuditService)(nil)

// --- mock user service ---

type mockUserService struct {
	createUserFn   func(email, password, firstName, lastName string) (*models.User, error)
	attemptLoginFn func(email, password string) (*models.User, error)
	getUserByIDFn  func(id string) (*models.User, error)

	mu          sync.Mutex
	refreshHash map[string]string
}

func (m *mockUserService) CreateUser(_ context.Context, email, password, firstName, lastName string) (*models.User, error) {
	if m.createUserFn != nil {
		return m.createUserFn(email, password, firstName, lastName)
	}
	return &models.User{Base: models.Base{ID: testUserID}, Email: email}, nil
}

func (m *mockUserService) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return &models.User{Base: models.Base{ID: testUserID}, Email: email}, nil
}

func (m *mockUserService) GetUserByID(_ context.Context, id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{Base: models.Base{ID: id}, Email: "user@test.com"}, nil
}

func (m *mockUserService) VerifyPassword(_ *models.User, _ string) bool { return true }

func (m *mockUserService) AttemptLogin(_ context.Context, email, password string) (*models.User, error) {
	if m.attemptLoginFn != nil {
		return m.attemptLoginFn(email, password)
	}
	return &models.User{Base: models.Base{ID: testUserID}, Email: email}, nil
}

func (m *mockUserService) StoreRefreshTokenHash(_ context.Context, userID, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.refreshHash == nil {
		m.refreshHash = map[string]string{}
	}
	m.refreshHash[userID] = tokenHash
	return nil
}

func (m *mockUserService) GetRefreshTokenHash(_ context.Context, userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshHash[userID], nil
}

var _ services.UserServicer = (*mockUserService)(nil)

// --- mock account service ---

type mockAccountService struct {
	createAccountFn   func(userID, name string, kind models.AccountKind, color string) (*models.Account, error)
	getUserAccountsFn func(userID string, includeInactive bool, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	getAccountByIDFn  func(userID, accountID string) (*models.Account, error)
	updateAccountFn   func(userID, accountID string, fields services.AccountUpdateFields) (*models.Account, error)
	setActiveFn       func(userID, accountID string, active bool) (*models.Account, error)
}

func (m *mockAccountService) CreateAccount(_ context.Context, userID, name string, kind models.AccountKind, color string) (*models.Account, error) {
	if m.createAccountFn != nil {
		return m.createAccountFn(userID, name, kind, color)
	}
	return &models.Account{Base: models.Base{ID: testAccountID}, UserID: userID, Name: name, Kind: kind, IsActive: true}, nil
}

func (m *mockAccountService) GetUserAccounts(_ context.Context, userID string, includeInactive bool, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error) {
	if m.getUserAccountsFn != nil {
		return m.getUserAccountsFn(userID, includeInactive, page)
	}
	resp := pagination.NewPageResponse([]models.Account{}, page, 0)
	return &resp, nil
}

func (m *mockAccountService) GetAccountByID(_ context.Context, userID, accountID string) (*models.Account, error) {
	if m.getAccountByIDFn != nil {
		return m.getAccountByIDFn(userID, accountID)
	}
	return &models.Account{Base: models.Base{ID: accountID}, UserID: userID}, nil
}

func (m *mockAccountService) UpdateAccount(_ context.Context, userID, accountID string, fields services.AccountUpdateFields) (*models.Account, error) {
	if m.updateAccountFn != nil {
		return m.updateAccountFn(userID, accountID, fields)
	}
	return &models.Account{Base: models.Base{ID: accountID}, UserID: userID}, nil
}

func (m *mockAccountService) DeactivateAccount(_ context.Context, userID, accountID string) (*models.Account, error) {
	if m.setActiveFn != nil {
		return m.setActiveFn(userID, accountID, false)
	}
	return &models.Account{Base: models.Base{ID: accountID}, UserID: userID}, nil
}

func (m *mockAccountService) ActivateAccount(_ context.Context, userID, accountID string) (*models.Account, error) {
	if m.setActiveFn != nil {
		return m.setActiveFn(userID, accountID, true)
	}
	return &models.Account{Base: models.Base{ID: accountID}, UserID: userID, IsActive: true}, nil
}

var _ services.AccountServicer = (*mockAccountService)(nil)

// --- mock category service ---

type mockCategoryService struct {
	createCategoryFn func(userID, name, color string) (*models.Category, error)
	deleteCategoryFn func(userID, categoryID string) error
}

func (m *mockCategoryService) CreateCategory(_ context.Context, userID, name, color string) (*models.Category, error) {
	if m.createCategoryFn != nil {
		return m.createCategoryFn(userID, name, color)
	}
	return &models.Category{Base: models.Base{ID: testCatID}, UserID: userID, Name: name, Color: color}, nil
}

func (m *mockCategoryService) GetUserCategories(_ context.Context, _ string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	resp := pagination.NewPageResponse([]models.Category{}, page, 0)
	return &resp, nil
}

func (m *mockCategoryService) GetCategoryByID(_ context.Context, userID, categoryID string) (*models.Category, error) {
	return &models.Category{Base: models.Base{ID: categoryID}, UserID: userID}, nil
}

func (m *mockCategoryService) UpdateCategory(_ context.Context, userID, categoryID string, name, color *string) (*models.Category, error) {
	c := &models.Category{Base: models.Base{ID: categoryID}, UserID: userID}
	if name != nil {
		c.Name = *name
	}
	if color != nil {
		c.Color = *color
	}
	return c, nil
}

func (m *mockCategoryService) DeleteCategory(_ context.Context, userID, categoryID string) error {
	if m.deleteCategoryFn != nil {
		return m.deleteCategoryFn(userID, categoryID)
	}
	return nil
}

var _ services.CategoryServicer = (*mockCategoryService)(nil)

// --- mock credit card service ---

type mockCreditCardService struct {
	createFn func(userID, name string, limitCents int64, closingDay, dueDay int, color string) (*models.CreditCard, error)
	updateFn func(userID, cardID string, fields services.CreditCardFields) (*models.CreditCard, error)
}

func (m *mockCreditCardService) CreateCreditCard(_ context.Context, userID, name string, limitCents int64, closingDay, dueDay int, color string) (*models.CreditCard, error) {
	if m.createFn != nil {
		return m.createFn(userID, name, limitCents, closingDay, dueDay, color)
	}
	return &models.CreditCard{Base: models.Base{ID: testOtherID}, UserID: userID, Name: name, LimitCents: limitCents}, nil
}

func (m *mockCreditCardService) GetUserCreditCards(_ context.Context, _ string, page pagination.PageRequest) (*pagination.PageResponse[models.CreditCard], error) {
	resp := pagination.NewPageResponse([]models.CreditCard{}, page, 0)
	return &resp, nil
}

func (m *mockCreditCardService) GetCreditCardByID(_ context.Context, userID, cardID string) (*models.CreditCard, error) {
	return &models.CreditCard{Base: models.Base{ID: cardID}, UserID: userID}, nil
}

func (m *mockCreditCardService) UpdateCreditCard(_ context.Context, userID, cardID string, fields services.CreditCardFields) (*models.CreditCard, error) {
	if m.updateFn != nil {
		return m.updateFn(userID, cardID, fields)
	}
	return &models.CreditCard{Base: models.Base{ID: cardID}, UserID: userID}, nil
}

func (m *mockCreditCardService) DeleteCreditCard(_ context.Context, _, _ string) error { return nil }

var _ services.CreditCardServicer = (*mockCreditCardService)(nil)

// --- mock transaction service ---

type mockTransactionService struct {
	createFn   func(userID string, p ledger.Proposal) (*models.Transaction, error)
	updateFn   func(userID, id string, p ledger.Proposal) (*models.Transaction, error)
	deleteFn   func(userID, id string) error
	getFn      func(userID, id string) (*models.Transaction, error)
	listFn     func(userID string, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	calendarFn func(userID string, year int, month time.Month) ([]services.CalendarDay, error)
	verifyFn   func(userID string) ([]ledger.Drift, error)
}

func (m *mockTransactionService) CreateTransaction(_ context.Context, userID string, p ledger.Proposal) (*models.Transaction, error) {
	if m.createFn != nil {
		return m.createFn(userID, p)
	}
	return txFromProposal(testTxID, userID, p), nil
}

func (m *mockTransactionService) UpdateTransaction(_ context.Context, userID, id string, p ledger.Proposal) (*models.Transaction, error) {
	if m.updateFn != nil {
		return m.updateFn(userID, id, p)
	}
	return txFromProposal(id, userID, p), nil
}

func (m *mockTransactionService) DeleteTransaction(_ context.Context, userID, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(userID, id)
	}
	return nil
}

func (m *mockTransactionService) GetTransactionByID(_ context.Context, userID, id string) (*models.Transaction, error) {
	if m.getFn != nil {
		return m.getFn(userID, id)
	}
	return &models.Transaction{Base: models.Base{ID: id}, UserID: userID}, nil
}

func (m *mockTransactionService) GetUserTransactions(_ context.Context, userID string, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if m.listFn != nil {
		return m.listFn(userID, page, filter)
	}
	resp := pagination.NewPageResponse([]models.Transaction{}, page, 0)
	return &resp, nil
}

func (m *mockTransactionService) GetCalendar(_ context.Context, userID string, year int, month time.Month) ([]services.CalendarDay, error) {
	if m.calendarFn != nil {
		return m.calendarFn(userID, year, month)
	}
	return nil, nil
}

func (m *mockTransactionService) VerifyBalances(_ context.Context, userID string) ([]ledger.Drift, error) {
	if m.verifyFn != nil {
		return m.verifyFn(userID)
	}
	return nil, nil
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

func txFromProposal(id, userID string, p ledger.Proposal) *models.Transaction {
	t := &models.Transaction{
		Base:                 models.Base{ID: id},
		UserID:               userID,
		Kind:                 p.Kind,
		Amount:               p.AmountMinorUnits,
		Description:          p.Description,
		Counterparty:         p.Counterparty,
		Status:               p.Status,
		SourceAccountID:      p.SourceAccountID,
		DestinationAccountID: p.DestinationAccountID,
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	return t
}

// --- mock dashboard and ledger services ---

type mockDashboardService struct {
	months int
}

func (m *mockDashboardService) GetSummary(_ context.Context, _ string, months int) (*services.DashboardSummary, error) {
	m.months = months
	return &services.DashboardSummary{Net: 1050, NetDisplay: "10.50", AverageMonthlyExpense: "0.00"}, nil
}

var _ services.DashboardServicer = (*mockDashboardService)(nil)

type mockLedgerService struct {
	drifts   []ledger.Drift
	lastUser string
	repaired bool
}

func (m *mockLedgerService) Verify(_ context.Context, userID string) ([]ledger.Drift, error) {
	m.lastUser = userID
	return m.drifts, nil
}

func (m *mockLedgerService) Repair(_ context.Context, userID string) ([]ledger.Drift, error) {
	m.lastUser = userID
	m.repaired = true
	return m.drifts, nil
}

var _ services.LedgerServicer = (*mockLedgerService)(nil)
