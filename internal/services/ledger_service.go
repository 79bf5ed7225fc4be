package services

import (
	"time"

	"gorm.io/gorm"

	apperrors "pitaka/internal/errors"
	"pitaka/internal/models"
)

// ledgerService derives balances and spending totals from the transaction
// log. The ledger is append-only: opening_balance plus the signed sum of
// every surviving entry is the one source of truth for an account's balance.
type ledgerService struct {
	db *gorm.DB
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(db *gorm.DB) LedgerServicer {
	return &ledgerService{db: db}
}

// CurrentBalance computes a single account's balance:
//
//	opening + income + transfers in - expenses - transfers out - fees
//
// Fees are charged to the originating account only; the receiving side of a
// transfer gets the principal untouched.
func (s *ledgerService) CurrentBalance(account *models.Account) (int64, error) {
	var out struct {
		Income      int64
		Expense     int64
		TransferOut int64
		Fees        int64
	}
	err := s.db.Model(&models.Transaction{}).
		Select(`COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE 0 END), 0) AS income,
			COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE 0 END), 0) AS expense,
			COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE 0 END), 0) AS transfer_out,
			COALESCE(SUM(COALESCE(fee_amount, 0)), 0) AS fees`,
			models.TransactionTypeIncome, models.TransactionTypeExpense, models.TransactionTypeTransfer).
		Where("account_id = ?", account.ID).
		Scan(&out).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transferIn int64
	err = s.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("to_account_id = ? AND type = ?", account.ID, models.TransactionTypeTransfer).
		Scan(&transferIn).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return account.OpeningBalance + out.Income + transferIn - out.Expense - out.TransferOut - out.Fees, nil
}

// BalancesBulk computes balances for many accounts in two grouped queries
// instead of 2N single-account ones. The result maps account ID to balance
// and always contains an entry for every input account.
func (s *ledgerService) BalancesBulk(accounts []models.Account) (map[string]int64, error) {
	balances := make(map[string]int64, len(accounts))
	if len(accounts) == 0 {
		return balances, nil
	}

	ids := make([]string, 0, len(accounts))
	for _, a := range accounts {
		ids = append(ids, a.ID)
		balances[a.ID] = a.OpeningBalance
	}

	type delta struct {
		ID    string
		Total int64
	}

	// Pass 1: everything charged against the originating account.
	var outflows []delta
	err := s.db.Model(&models.Transaction{}).
		Select(`account_id AS id,
			COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE -amount END), 0)
			- COALESCE(SUM(COALESCE(fee_amount, 0)), 0) AS total`,
			models.TransactionTypeIncome).
		Where("account_id IN ?", ids).
		Group("account_id").
		Scan(&outflows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, d := range outflows {
		balances[d.ID] += d.Total
	}

	// Pass 2: transfer principal landing on the receiving account.
	var inflows []delta
	err = s.db.Model(&models.Transaction{}).
		Select("to_account_id AS id, COALESCE(SUM(amount), 0) AS total").
		Where("to_account_id IN ? AND type = ?", ids, models.TransactionTypeTransfer).
		Group("to_account_id").
		Scan(&inflows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, d := range inflows {
		balances[d.ID] += d.Total
	}

	return balances, nil
}

// MonthSpending sums expense amounts hitting the budget's target within the
// calendar month containing ref. Only expense principal counts; transfers
// and fees are movement, not spend.
func (s *ledgerService) MonthSpending(userID string, budget *models.Budget, ref time.Time) (int64, error) {
	start, end := monthWindow(ref)

	q := s.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND type = ? AND date >= ? AND date < ?",
			userID, models.TransactionTypeExpense, start, end)
	if budget.TargetsCategory() {
		q = q.Where("category_id = ?", *budget.CategoryID)
	} else {
		q = q.Where("account_id = ?", *budget.AccountID)
	}

	var spent int64
	if err := q.Scan(&spent).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return spent, nil
}

// PeriodSpending sums expense principal plus fees charged to an account
// within [start, end]. Used to total a statement period.
func (s *ledgerService) PeriodSpending(accountID string, start, end time.Time) (int64, error) {
	var total int64
	err := s.db.Model(&models.Transaction{}).
		Select(`COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE 0 END), 0)
			+ COALESCE(SUM(COALESCE(fee_amount, 0)), 0)`,
			models.TransactionTypeExpense).
		Where("account_id = ? AND date >= ? AND date <= ?", accountID, start, end).
		Scan(&total).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return total, nil
}

// monthWindow returns the half-open [start, end) bounds of the calendar
// month containing ref, in ref's location.
func monthWindow(ref time.Time) (time.Time, time.Time) {
	start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	return start, start.AddDate(0, 1, 0)
}
