package services

import (
	"testing"
	"time"

	"pitaka/internal/testutil"
)

func TestCardAvailableCredit(t *testing.T) {
	t.Run("override_wins", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCreditCardService(db, NewLedgerService(db))
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestCreditCardAccount(t, db, user.ID, -300000)
		limit := int64(5000000)
		card := testutil.CreateTestCreditCard(t, db, user.ID, account.ID, 15, 3, &limit)
		override := int64(1234500)
		db.Model(card).Update("available_override", override)
		card.AvailableOverride = &override

		available, err := svc.AvailableCredit(card)
		testutil.AssertNoError(t, err)
		if available == nil || *available != 1234500 {
			t.Errorf("expected override 1234500, got %v", available)
		}
	})

	t.Run("limit_plus_negative_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCreditCardService(db, NewLedgerService(db))
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestCreditCardAccount(t, db, user.ID, 0)
		limit := int64(5000000)
		card := testutil.CreateTestCreditCard(t, db, user.ID, account.ID, 15, 3, &limit)

		// Spend 12,000.00 on the card.
		testutil.CreateTestExpense(t, db, user.ID, account.ID, nil, 1200000,
			time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))

		available, err := svc.AvailableCredit(card)
		testutil.AssertNoError(t, err)
		if available == nil || *available != 3800000 {
			t.Errorf("expected available 3800000, got %v", available)
		}
	})

	t.Run("no_limit_is_undefined", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCreditCardService(db, NewLedgerService(db))
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestCreditCardAccount(t, db, user.ID, 0)
		card := testutil.CreateTestCreditCard(t, db, user.ID, account.ID, 15, 3, nil)

		available, err := svc.AvailableCredit(card)
		testutil.AssertNoError(t, err)
		if available != nil {
			t.Errorf("expected nil availability without a limit, got %d", *available)
		}
	})

	t.Run("line_member_defers_to_line", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCreditCardService(db, NewLedgerService(db))
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestCreditCardAccount(t, db, user.ID, 0)
		limit := int64(5000000)
		card := testutil.CreateTestCreditCard(t, db, user.ID, account.ID, 15, 3, &limit)
		lineLimit := int64(10000000)
		line := testutil.CreateTestCreditLine(t, db, user.ID, &lineLimit)
		db.Model(card).Update("credit_line_id", line.ID)
		card.CreditLineID = &line.ID

		available, err := svc.AvailableCredit(card)
		testutil.AssertNoError(t, err)
		if available != nil {
			t.Errorf("expected nil for line member card, got %d", *available)
		}
	})
}

func TestCardBillingSummary(t *testing.T) {
	t.Run("derives_cycle_from_reference_date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCreditCardService(db, NewLedgerService(db))
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestCreditCardAccount(t, db, user.ID, 0)
		card := testutil.CreateTestCreditCard(t, db, user.ID, account.ID, 15, 3, nil)

		ref := time.Date(2026, 2, 19, 0, 0, 0, 0, time.UTC)
		summary := svc.BillingSummary(card, ref)

		wantStart := time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC)
		wantEnd := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
		if !summary.ClosedPeriod.Start.Equal(wantStart) || !summary.ClosedPeriod.End.Equal(wantEnd) {
			t.Errorf("closed period = %v..%v, want %v..%v",
				summary.ClosedPeriod.Start, summary.ClosedPeriod.End, wantStart, wantEnd)
		}

		wantDue := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
		if !summary.DueDate.Equal(wantDue) {
			t.Errorf("due date = %v, want %v", summary.DueDate, wantDue)
		}
		if summary.DaysUntilDue != 12 {
			t.Errorf("days until due = %d, want 12", summary.DaysUntilDue)
		}
	})
}

func TestCreateCreditCard(t *testing.T) {
	t.Run("rejects_non_credit_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCreditCardService(db, NewLedgerService(db))
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)

		_, err := svc.CreateCreditCard(user.ID, CreditCardInput{
			AccountID:    account.ID,
			LastFour:     "1111",
			StatementDay: 15,
			DueDay:       3,
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("rejects_out_of_range_cycle_days", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCreditCardService(db, NewLedgerService(db))
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestCreditCardAccount(t, db, user.ID, 0)

		_, err := svc.CreateCreditCard(user.ID, CreditCardInput{
			AccountID:    account.ID,
			LastFour:     "1111",
			StatementDay: 31,
			DueDay:       3,
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}
