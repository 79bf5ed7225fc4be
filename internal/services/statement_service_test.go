package services

import (
	"testing"
	"time"

	"pitaka/internal/models"
	"pitaka/internal/notify"
	"pitaka/internal/testutil"
)

func TestGenerateStatement(t *testing.T) {
	t.Run("totals_closed_period_spend", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		ledger := NewLedgerService(db)
		cards := NewCreditCardService(db, ledger)
		svc := NewStatementService(db, ledger, cards, notify.NoopNotifier{})
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestCreditCardAccount(t, db, user.ID, 0)
		card := testutil.CreateTestCreditCard(t, db, user.ID, account.ID, 15, 3, nil)

		// Closed period for Feb 19 is Jan 16 .. Feb 15.
		inPeriod := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
		afterClose := time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC)
		testutil.CreateTestExpense(t, db, user.ID, account.ID, nil, 250000, inPeriod)
		testutil.CreateTestExpense(t, db, user.ID, account.ID, nil, 90000, afterClose)

		ref := time.Date(2026, 2, 19, 0, 0, 0, 0, time.UTC)
		statement, err := svc.GenerateStatement(user.ID, card.ID, ref)
		testutil.AssertNoError(t, err)

		if statement.TotalAmount != 250000 {
			t.Errorf("expected total 250000, got %d", statement.TotalAmount)
		}
		wantDue := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
		if !statement.DueDate.Equal(wantDue) {
			t.Errorf("expected due date %v, got %v", wantDue, statement.DueDate)
		}
		if statement.IsPaid {
			t.Error("expected new statement to be unpaid")
		}
	})

	t.Run("idempotent_per_period", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		ledger := NewLedgerService(db)
		cards := NewCreditCardService(db, ledger)
		svc := NewStatementService(db, ledger, cards, notify.NoopNotifier{})
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestCreditCardAccount(t, db, user.ID, 0)
		card := testutil.CreateTestCreditCard(t, db, user.ID, account.ID, 15, 3, nil)

		ref := time.Date(2026, 2, 19, 0, 0, 0, 0, time.UTC)
		first, err := svc.GenerateStatement(user.ID, card.ID, ref)
		testutil.AssertNoError(t, err)
		second, err := svc.GenerateStatement(user.ID, card.ID, ref.AddDate(0, 0, 3))
		testutil.AssertNoError(t, err)

		if first.ID != second.ID {
			t.Error("expected same statement for same closed period")
		}

		var count int64
		db.Model(&models.Statement{}).Count(&count)
		if count != 1 {
			t.Errorf("expected 1 statement, got %d", count)
		}
	})
}

func TestCheckDueStatements(t *testing.T) {
	ref := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("reminds_at_seven_and_one_days", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		ledger := NewLedgerService(db)
		cards := NewCreditCardService(db, ledger)
		svc := NewStatementService(db, ledger, cards, notify.NoopNotifier{})
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestCreditCardAccount(t, db, user.ID, 0)
		card := testutil.CreateTestCreditCard(t, db, user.ID, account.ID, 15, 3, nil)

		testutil.CreateTestStatement(t, db, user.ID, card.ID, ref.AddDate(0, 0, 7), 300000)
		testutil.CreateTestStatement(t, db, user.ID, card.ID, ref.AddDate(0, 0, 1), 150000)
		testutil.CreateTestStatement(t, db, user.ID, card.ID, ref.AddDate(0, 0, 3), 90000)

		created, err := svc.CheckDueStatements(ref)
		testutil.AssertNoError(t, err)
		if created != 2 {
			t.Errorf("expected 2 reminders, got %d", created)
		}

		var count int64
		db.Model(&models.Notification{}).Where("type = ?", models.NotificationStatementDue).Count(&count)
		if count != 2 {
			t.Errorf("expected 2 statement_due notifications, got %d", count)
		}
	})

	t.Run("rerun_does_not_duplicate", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		ledger := NewLedgerService(db)
		cards := NewCreditCardService(db, ledger)
		svc := NewStatementService(db, ledger, cards, notify.NoopNotifier{})
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestCreditCardAccount(t, db, user.ID, 0)
		card := testutil.CreateTestCreditCard(t, db, user.ID, account.ID, 15, 3, nil)

		testutil.CreateTestStatement(t, db, user.ID, card.ID, ref.AddDate(0, 0, 7), 300000)

		created, err := svc.CheckDueStatements(ref)
		testutil.AssertNoError(t, err)
		if created != 1 {
			t.Fatalf("expected 1 reminder on first run, got %d", created)
		}

		created, err = svc.CheckDueStatements(ref)
		testutil.AssertNoError(t, err)
		if created != 0 {
			t.Errorf("expected 0 reminders on rerun, got %d", created)
		}
	})

	t.Run("paid_statements_skipped", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		ledger := NewLedgerService(db)
		cards := NewCreditCardService(db, ledger)
		svc := NewStatementService(db, ledger, cards, notify.NoopNotifier{})
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestCreditCardAccount(t, db, user.ID, 0)
		card := testutil.CreateTestCreditCard(t, db, user.ID, account.ID, 15, 3, nil)

		statement := testutil.CreateTestStatement(t, db, user.ID, card.ID, ref.AddDate(0, 0, 7), 300000)
		db.Model(statement).Update("is_paid", true)

		created, err := svc.CheckDueStatements(ref)
		testutil.AssertNoError(t, err)
		if created != 0 {
			t.Errorf("expected paid statement to be skipped, got %d reminders", created)
		}
	})
}

func TestMarkPaid(t *testing.T) {
	t.Run("sets_flag", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		ledger := NewLedgerService(db)
		cards := NewCreditCardService(db, ledger)
		svc := NewStatementService(db, ledger, cards, notify.NoopNotifier{})
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestCreditCardAccount(t, db, user.ID, 0)
		card := testutil.CreateTestCreditCard(t, db, user.ID, account.ID, 15, 3, nil)
		statement := testutil.CreateTestStatement(t, db, user.ID, card.ID,
			time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), 100000)

		updated, err := svc.MarkPaid(user.ID, statement.ID)
		testutil.AssertNoError(t, err)
		if !updated.IsPaid {
			t.Error("expected statement to be marked paid")
		}
	})
}
