package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"carteira/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserWithEmail(t, db, fmt.Sprintf("user%d@test.com", nextID()))
}

// CreateTestUserWithEmail creates a user with the given email and the
// password "password123".
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestAccount creates an active checking account with zero balance.
func CreateTestAccount(t *testing.T, db *gorm.DB, userID string) *models.Account {
	t.Helper()
	return CreateTestAccountWithBalance(t, db, userID, 0)
}

// CreateTestAccountWithBalance creates an active checking account holding
// balance minor units. Only fixtures may seed a balance directly.
func CreateTestAccountWithBalance(t *testing.T, db *gorm.DB, userID string, balance int64) *models.Account {
	t.Helper()

	account := &models.Account{
		UserID:   userID,
		Name:     fmt.Sprintf("Test Account %d", nextID()),
		Kind:     models.AccountKindChecking,
		Balance:  balance,
		IsActive: true,
		Color:    "#1e90ff",
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateInactiveTestAccount creates a deactivated account.
func CreateInactiveTestAccount(t *testing.T, db *gorm.DB, userID string) *models.Account {
	t.Helper()

	account := CreateTestAccount(t, db, userID)
	if err := db.Model(account).Update("is_active", false).Error; err != nil {
		t.Fatalf("failed to deactivate test account: %v", err)
	}
	account.IsActive = false
	return account
}

// CreateTestCategory creates a category with a unique name.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: userID,
		Name:   fmt.Sprintf("Test Category %d", nextID()),
		Color:  "#ff8800",
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestCreditCard creates a card with a 5000.00 limit.
func CreateTestCreditCard(t *testing.T, db *gorm.DB, userID string) *models.CreditCard {
	t.Helper()

	card := &models.CreditCard{
		UserID:     userID,
		Name:       fmt.Sprintf("Test Card %d", nextID()),
		LimitCents: 500000,
		ClosingDay: 3,
		DueDay:     10,
		Color:      "#222222",
	}
	if err := db.Create(card).Error; err != nil {
		t.Fatalf("failed to create test credit card: %v", err)
	}
	return card
}

// CreateRawTransaction inserts a transaction row without touching any
// balance. Tests use it to simulate drift.
func CreateRawTransaction(t *testing.T, db *gorm.DB, userID, accountID string, kind models.TransactionKind, status models.TransactionStatus, amount int64) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:          userID,
		Kind:            kind,
		Amount:          amount,
		Date:            time.Now(),
		Status:          status,
		SourceAccountID: accountID,
	}
	if err := db.Omit("Categories", "SourceAccount", "DestinationAccount").Create(tx).Error; err != nil {
		t.Fatalf("failed to create raw transaction: %v", err)
	}
	return tx
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
