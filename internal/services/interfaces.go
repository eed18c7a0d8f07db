package services

import (
	"context"
	"time"

	"carteira/internal/ledger"
	"carteira/internal/models"
	"carteira/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(ctx context.Context, email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(ctx context.Context, email, password string) (*models.User, error)
	StoreRefreshTokenHash(ctx context.Context, userID, tokenHash string) error
	GetRefreshTokenHash(ctx context.Context, userID string) (string, error)
}

// AccountUpdateFields holds the editable account attributes. Nil means
// unchanged. The balance is deliberately absent: only the ledger moves it.
type AccountUpdateFields struct {
	Name  *string
	Kind  *models.AccountKind
	Color *string
}

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	CreateAccount(ctx context.Context, userID, name string, kind models.AccountKind, color string) (*models.Account, error)
	GetUserAccounts(ctx context.Context, userID string, includeInactive bool, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	GetAccountByID(ctx context.Context, userID, accountID string) (*models.Account, error)
	UpdateAccount(ctx context.Context, userID, accountID string, fields AccountUpdateFields) (*models.Account, error)
	DeactivateAccount(ctx context.Context, userID, accountID string) (*models.Account, error)
	ActivateAccount(ctx context.Context, userID, accountID string) (*models.Account, error)
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(ctx context.Context, userID, name, color string) (*models.Category, error)
	GetUserCategories(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(ctx context.Context, userID, categoryID string) (*models.Category, error)
	UpdateCategory(ctx context.Context, userID, categoryID string, name, color *string) (*models.Category, error)
	DeleteCategory(ctx context.Context, userID, categoryID string) error
}

// CreditCardFields holds the editable card attributes. Nil means unchanged.
type CreditCardFields struct {
	Name       *string
	LimitCents *int64
	ClosingDay *int
	DueDay     *int
	Color      *string
}

// CreditCardServicer defines the contract for credit card bookkeeping.
type CreditCardServicer interface {
	CreateCreditCard(ctx context.Context, userID, name string, limitCents int64, closingDay, dueDay int, color string) (*models.CreditCard, error)
	GetUserCreditCards(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.CreditCard], error)
	GetCreditCardByID(ctx context.Context, userID, cardID string) (*models.CreditCard, error)
	UpdateCreditCard(ctx context.Context, userID, cardID string, fields CreditCardFields) (*models.CreditCard, error)
	DeleteCreditCard(ctx context.Context, userID, cardID string) error
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	Kind       *models.TransactionKind
	Status     *models.TransactionStatus
	AccountID  *string
	CategoryID *string
}

// CalendarDay groups the transactions dated on one day.
type CalendarDay struct {
	Date         string               `json:"date"`
	Income       int64                `json:"income"`
	Expense      int64                `json:"expense"`
	Transactions []models.Transaction `json:"transactions"`
}

// TransactionServicer defines the contract for transaction-related business
// logic. Every mutation goes through the ledger engine.
type TransactionServicer interface {
	CreateTransaction(ctx context.Context, userID string, p ledger.Proposal) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, transactionID string, p ledger.Proposal) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, transactionID string) error
	GetTransactionByID(ctx context.Context, userID, transactionID string) (*models.Transaction, error)
	GetUserTransactions(ctx context.Context, userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetCalendar(ctx context.Context, userID string, year int, month time.Month) ([]CalendarDay, error)
	VerifyBalances(ctx context.Context, userID string) ([]ledger.Drift, error)
}

// MonthlyTotal is the PAID income and expense of one calendar month.
type MonthlyTotal struct {
	Year    int    `json:"year"`
	Month   int    `json:"month"`
	Income  int64  `json:"income"`
	Expense int64  `json:"expense"`
	Net     string `json:"net"`
}

// DashboardSummary aggregates PAID transactions. Amounts are minor units;
// the *Display fields carry the same values as decimal strings.
type DashboardSummary struct {
	Net                   int64          `json:"net"`
	MonthIncome           int64          `json:"month_income"`
	MonthExpense          int64          `json:"month_expense"`
	MonthNet              int64          `json:"month_net"`
	TotalBalance          int64          `json:"total_balance"`
	AverageMonthlyExpense string         `json:"average_monthly_expense"`
	NetDisplay            string         `json:"net_display"`
	TotalBalanceDisplay   string         `json:"total_balance_display"`
	Monthly               []MonthlyTotal `json:"monthly"`
}

// DashboardServicer defines the contract for summary figures.
type DashboardServicer interface {
	GetSummary(ctx context.Context, userID string, months int) (*DashboardSummary, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(ctx context.Context, userID, action, resourceType, resourceID, ipAddress string, changes map[string]any)
}

// LedgerServicer checks and repairs stored balances. An empty userID covers
// every account in the database.
type LedgerServicer interface {
	Verify(ctx context.Context, userID string) ([]ledger.Drift, error)
	Repair(ctx context.Context, userID string) ([]ledger.Drift, error)
}
