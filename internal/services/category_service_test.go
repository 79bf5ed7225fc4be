package services

import (
	"testing"
	"time"

	"pitaka/internal/models"
	"pitaka/internal/testutil"
)

func TestUpdateCategory(t *testing.T) {
	t.Run("updates_display_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, user.ID)

		updated, err := svc.UpdateCategory(user.ID, category.ID, "Groceries", "cart", "#00FF00")
		testutil.AssertNoError(t, err)
		if updated.Name != "Groceries" || updated.Icon != "cart" || updated.Color != "#00FF00" {
			t.Errorf("unexpected updated category: %+v", updated)
		}
	})

	t.Run("type_is_immutable", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategoryWithType(t, db, user.ID, models.CategoryTypeExpense)

		updated, err := svc.UpdateCategory(user.ID, category.ID, "Renamed", "", "")
		testutil.AssertNoError(t, err)
		if updated.Type != models.CategoryTypeExpense {
			t.Errorf("expected type to stay expense, got %s", updated.Type)
		}
	})

	t.Run("wrong_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, user.ID)

		_, err := svc.UpdateCategory(other.ID, category.ID, "Hijacked", "", "")
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestDeleteCategory(t *testing.T) {
	t.Run("blocked_by_transactions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)
		category := testutil.CreateTestCategory(t, db, user.ID)
		testutil.CreateTestExpense(t, db, user.ID, account.ID, &category.ID, 1000,
			time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))

		err := svc.DeleteCategory(user.ID, category.ID)
		testutil.AssertAppError(t, err, "CATEGORY_IN_USE")
	})

	t.Run("blocked_by_fee_references", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		from := testutil.CreateTestAccount(t, db, user.ID)
		to := testutil.CreateTestAccount(t, db, user.ID)
		feeCategory := testutil.CreateTestCategory(t, db, user.ID)

		fee := int64(1800)
		transfer := testutil.CreateTestTransfer(t, db, user.ID, from.ID, to.ID, 500000, &fee,
			time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))
		testutil.AssertNoError(t, db.Model(transfer).Update("fee_category_id", feeCategory.ID).Error)

		err := svc.DeleteCategory(user.ID, feeCategory.ID)
		testutil.AssertAppError(t, err, "CATEGORY_IN_USE")
	})

	t.Run("deletes_unreferenced", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, user.ID)

		testutil.AssertNoError(t, svc.DeleteCategory(user.ID, category.ID))

		_, err := svc.GetCategoryByID(user.ID, category.ID)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}
