package services

import (
	"context"
	"testing"

	"carteira/internal/models"
	"carteira/internal/pagination"
	"carteira/internal/testutil"
)

func TestCreateAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)

		account, err := svc.CreateAccount(ctx, user.ID, "  Nubank  ", models.AccountKindChecking, "#820ad1")
		testutil.AssertNoError(t, err)

		if account.ID == "" {
			t.Fatal("expected account ID")
		}
		if account.Name != "Nubank" {
			t.Errorf("expected trimmed name Nubank, got %q", account.Name)
		}
		if account.Balance != 0 {
			t.Errorf("expected zero balance, got %d", account.Balance)
		}
		if !account.IsActive {
			t.Error("expected account to be active")
		}
	})

	t.Run("duplicate_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateAccount(ctx, user.ID, "Wallet", models.AccountKindChecking, "")
		testutil.AssertNoError(t, err)
		_, err = svc.CreateAccount(ctx, user.ID, "Wallet", models.AccountKindSavings, "")
		testutil.AssertAppError(t, err, "DUPLICATE_ACCOUNT_NAME")
	})

	t.Run("same_name_other_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)

		_, err := svc.CreateAccount(ctx, testutil.CreateTestUser(t, db).ID, "Wallet", models.AccountKindChecking, "")
		testutil.AssertNoError(t, err)
		_, err = svc.CreateAccount(ctx, testutil.CreateTestUser(t, db).ID, "Wallet", models.AccountKindChecking, "")
		testutil.AssertNoError(t, err)
	})

	t.Run("invalid_kind", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateAccount(ctx, user.ID, "Wallet", "cash", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("empty_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateAccount(ctx, user.ID, " ", models.AccountKindChecking, "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetUserAccounts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAccountService(db)
	ctx := context.Background()
	user := testutil.CreateTestUser(t, db)

	testutil.CreateTestAccount(t, db, user.ID)
	testutil.CreateTestAccount(t, db, user.ID)
	testutil.CreateInactiveTestAccount(t, db, user.ID)
	testutil.CreateTestAccount(t, db, testutil.CreateTestUser(t, db).ID)

	active, err := svc.GetUserAccounts(ctx, user.ID, false, pagination.PageRequest{})
	testutil.AssertNoError(t, err)
	if active.TotalItems != 2 {
		t.Errorf("expected 2 active accounts, got %d", active.TotalItems)
	}

	all, err := svc.GetUserAccounts(ctx, user.ID, true, pagination.PageRequest{Page: 1, PageSize: 2})
	testutil.AssertNoError(t, err)
	if all.TotalItems != 3 || len(all.Data) != 2 || all.TotalPages != 2 {
		t.Errorf("unexpected page: total=%d len=%d pages=%d", all.TotalItems, len(all.Data), all.TotalPages)
	}
}

func TestUpdateAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("changes_descriptive_fields_only", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccountWithBalance(t, db, user.ID, 4200)

		name := "Renamed"
		kind := models.AccountKindSavings
		color := "#00ff00"
		updated, err := svc.UpdateAccount(ctx, user.ID, account.ID, AccountUpdateFields{Name: &name, Kind: &kind, Color: &color})
		testutil.AssertNoError(t, err)

		if updated.Name != "Renamed" || updated.Kind != models.AccountKindSavings || updated.Color != "#00ff00" {
			t.Errorf("unexpected account after update: %+v", updated)
		}
		if updated.Balance != 4200 {
			t.Errorf("balance must be untouched, got %d", updated.Balance)
		}
	})

	t.Run("duplicate_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)
		first := testutil.CreateTestAccount(t, db, user.ID)
		second := testutil.CreateTestAccount(t, db, user.ID)

		_, err := svc.UpdateAccount(ctx, user.ID, second.ID, AccountUpdateFields{Name: &first.Name})
		testutil.AssertAppError(t, err, "DUPLICATE_ACCOUNT_NAME")
	})

	t.Run("keeping_own_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)

		_, err := svc.UpdateAccount(ctx, user.ID, account.ID, AccountUpdateFields{Name: &account.Name})
		testutil.AssertNoError(t, err)
	})

	t.Run("other_users_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		owner := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, owner.ID)

		name := "Mine now"
		_, err := svc.UpdateAccount(ctx, testutil.CreateTestUser(t, db).ID, account.ID, AccountUpdateFields{Name: &name})
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})
}

func TestDeactivateAndActivateAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAccountService(db)
	ctx := context.Background()
	user := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestAccount(t, db, user.ID)

	deactivated, err := svc.DeactivateAccount(ctx, user.ID, account.ID)
	testutil.AssertNoError(t, err)
	if deactivated.IsActive {
		t.Fatal("expected account to be inactive")
	}

	// Still readable while inactive.
	if _, err := svc.GetAccountByID(ctx, user.ID, account.ID); err != nil {
		t.Fatalf("expected inactive account to be readable: %v", err)
	}

	activated, err := svc.ActivateAccount(ctx, user.ID, account.ID)
	testutil.AssertNoError(t, err)
	if !activated.IsActive {
		t.Error("expected account to be active again")
	}

	_, err = svc.DeactivateAccount(ctx, user.ID, "missing")
	testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
}
