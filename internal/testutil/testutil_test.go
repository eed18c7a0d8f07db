package testutil_test

import (
	"testing"

	"carteira/internal/errors"
	"carteira/internal/models"
	"carteira/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	var count int64
	for _, table := range []string{"users", "accounts", "categories", "transactions", "transaction_categories", "credit_cards", "card_invoices", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestSetupTestDBIsolated(t *testing.T) {
	first := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, first)
	second := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, second)

	testutil.CreateTestUser(t, first)

	var count int64
	second.Model(&models.User{}).Count(&count)
	if count != 0 {
		t.Errorf("expected an empty second database, found %d users", count)
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == "" {
		t.Fatal("user should have an ID")
	}

	account := testutil.CreateTestAccountWithBalance(t, db, user.ID, 5000)
	testutil.AssertBalance(t, db, account.ID, 5000)

	inactive := testutil.CreateInactiveTestAccount(t, db, user.ID)
	var reloaded models.Account
	db.First(&reloaded, "id = ?", inactive.ID)
	if reloaded.IsActive {
		t.Error("expected account to be inactive")
	}

	category := testutil.CreateTestCategory(t, db, user.ID)
	if category.UserID != user.ID {
		t.Errorf("expected category owned by %s, got %s", user.ID, category.UserID)
	}

	tx := testutil.CreateRawTransaction(t, db, user.ID, account.ID, models.TransactionKindIncome, models.TransactionStatusPaid, 1000)
	if tx.Amount != 1000 {
		t.Errorf("expected amount 1000, got %d", tx.Amount)
	}
	testutil.AssertBalance(t, db, account.ID, 5000)

	card := testutil.CreateTestCreditCard(t, db, user.ID)
	if card.LimitCents != 500000 {
		t.Errorf("expected limit 500000, got %d", card.LimitCents)
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrAccountNotFound, "custom message")
	testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
