package services

import (
	"testing"

	"pitaka/internal/testutil"
)

func TestDeleteInstitution(t *testing.T) {
	t.Run("unlinks_accounts_and_lines", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInstitutionService(db)
		user := testutil.CreateTestUser(t, db)

		institution, err := svc.CreateInstitution(user.ID, "Test Bank", "")
		testutil.AssertNoError(t, err)

		account := testutil.CreateTestAccount(t, db, user.ID)
		testutil.AssertNoError(t, db.Model(account).Update("institution_id", institution.ID).Error)
		line := testutil.CreateTestCreditLine(t, db, user.ID, nil)
		testutil.AssertNoError(t, db.Model(line).Update("institution_id", institution.ID).Error)

		testutil.AssertNoError(t, svc.DeleteInstitution(user.ID, institution.ID))

		testutil.AssertNoError(t, db.First(account, "id = ?", account.ID).Error)
		if account.InstitutionID != nil {
			t.Error("expected account institution link to be cleared")
		}
		testutil.AssertNoError(t, db.First(line, "id = ?", line.ID).Error)
		if line.InstitutionID != nil {
			t.Error("expected credit line institution link to be cleared")
		}
	})

	t.Run("wrong_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInstitutionService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)

		institution, err := svc.CreateInstitution(user.ID, "Test Bank", "")
		testutil.AssertNoError(t, err)

		err = svc.DeleteInstitution(other.ID, institution.ID)
		testutil.AssertAppError(t, err, "INSTITUTION_NOT_FOUND")
	})
}

func TestResolveCardInstitution(t *testing.T) {
	t.Run("line_member_inherits_line_institution", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInstitutionService(db)
		user := testutil.CreateTestUser(t, db)

		institution, err := svc.CreateInstitution(user.ID, "Line Bank", "")
		testutil.AssertNoError(t, err)
		line := testutil.CreateTestCreditLine(t, db, user.ID, nil)
		testutil.AssertNoError(t, db.Model(line).Update("institution_id", institution.ID).Error)

		account := testutil.CreateTestCreditCardAccount(t, db, user.ID, 0)
		card := testutil.CreateTestCreditCard(t, db, user.ID, account.ID, 15, 3, nil)
		testutil.AssertNoError(t, db.Model(card).Update("credit_line_id", line.ID).Error)
		testutil.AssertNoError(t, db.First(card, "id = ?", card.ID).Error)

		resolved, err := svc.ResolveCardInstitution(card)
		testutil.AssertNoError(t, err)
		if resolved == nil || resolved.ID != institution.ID {
			t.Errorf("expected line institution %s, got %+v", institution.ID, resolved)
		}
	})

	t.Run("standalone_card_inherits_account_institution", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInstitutionService(db)
		user := testutil.CreateTestUser(t, db)

		institution, err := svc.CreateInstitution(user.ID, "Card Bank", "")
		testutil.AssertNoError(t, err)
		account := testutil.CreateTestCreditCardAccount(t, db, user.ID, 0)
		testutil.AssertNoError(t, db.Model(account).Update("institution_id", institution.ID).Error)
		card := testutil.CreateTestCreditCard(t, db, user.ID, account.ID, 15, 3, nil)

		resolved, err := svc.ResolveCardInstitution(card)
		testutil.AssertNoError(t, err)
		if resolved == nil || resolved.ID != institution.ID {
			t.Errorf("expected account institution %s, got %+v", institution.ID, resolved)
		}
	})

	t.Run("unlinked_card_resolves_to_nil", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInstitutionService(db)
		user := testutil.CreateTestUser(t, db)

		account := testutil.CreateTestCreditCardAccount(t, db, user.ID, 0)
		card := testutil.CreateTestCreditCard(t, db, user.ID, account.ID, 15, 3, nil)

		resolved, err := svc.ResolveCardInstitution(card)
		testutil.AssertNoError(t, err)
		if resolved != nil {
			t.Errorf("expected nil institution, got %+v", resolved)
		}
	})
}
