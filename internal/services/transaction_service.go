package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "pitaka/internal/errors"
	"pitaka/internal/logger"
	"pitaka/internal/models"
	"pitaka/internal/pagination"
)

// transactionService handles transaction-related business logic. Writes go
// through here so that every ledger entry is validated against the accounts
// it touches and budget thresholds are re-evaluated afterwards.
type transactionService struct {
	db     *gorm.DB
	alerts AlertServicer
}

// NewTransactionService creates a new transaction service.
func NewTransactionService(db *gorm.DB, alerts AlertServicer) TransactionServicer {
	return &transactionService{db: db, alerts: alerts}
}

// CreateTransaction validates and stores a new ledger entry, then triggers
// budget alert evaluation. Alert failures are logged, never returned: the
// write already committed and must not appear to have failed.
func (s *transactionService) CreateTransaction(userID string, input TransactionInput) (*models.Transaction, error) {
	if input.Amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
	}
	if input.FeeAmount != nil && *input.FeeAmount < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "fee amount cannot be negative")
	}

	switch input.Type {
	case models.TransactionTypeIncome, models.TransactionTypeExpense:
		if input.ToAccountID != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "only transfers may have a destination account")
		}
	case models.TransactionTypeTransfer:
		if input.SubType != nil && *input.SubType == models.SubTypeOwnAccount && input.ToAccountID == nil {
			return nil, apperrors.ErrTransferNeedsToAccount
		}
		if input.ToAccountID != nil && *input.ToAccountID == input.AccountID {
			return nil, apperrors.ErrSameAccountTransfer
		}
	default:
		return nil, apperrors.ErrInvalidTransactionType
	}

	if err := s.verifyAccount(userID, input.AccountID); err != nil {
		return nil, err
	}
	if input.ToAccountID != nil {
		if err := s.verifyAccount(userID, *input.ToAccountID); err != nil {
			return nil, err
		}
	}
	if input.CategoryID != nil {
		if err := s.verifyCategory(userID, *input.CategoryID); err != nil {
			return nil, err
		}
	}
	if input.FeeCategoryID != nil {
		if err := s.verifyCategory(userID, *input.FeeCategoryID); err != nil {
			return nil, err
		}
	}

	source := input.Source
	if source == "" {
		source = models.SourceManual
	}

	transaction := &models.Transaction{
		UserID:        userID,
		AccountID:     input.AccountID,
		CategoryID:    input.CategoryID,
		ToAccountID:   input.ToAccountID,
		Type:          input.Type,
		SubType:       input.SubType,
		Amount:        input.Amount,
		Description:   input.Description,
		Date:          input.Date,
		Source:        source,
		FeeAmount:     input.FeeAmount,
		FeeCategoryID: input.FeeCategoryID,
		CreatedBy:     userID,
	}
	if err := s.db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if input.Type == models.TransactionTypeExpense {
		if err := s.alerts.CheckBudgetAlerts(userID, input.Date); err != nil {
			logger.Get().Errorw("budget alert check failed",
				"user_id", userID,
				"transaction_id", transaction.ID,
				"error", err.Error(),
			)
		}
	}

	return transaction, nil
}

// GetUserTransactions returns a filtered page of the user's transactions,
// newest first.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyFilter(base, filter)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	err := base.Session(&gorm.Session{}).
		Order("date DESC, created_at DESC").
		Scopes(pagination.Paginate(page)).
		Find(&transactions).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(transactions, page.Page, page.PageSize, total)
	return &resp, nil
}

// GetAccountTransactions returns transactions where the account is either
// side of the entry.
func (s *transactionService) GetAccountTransactions(userID, accountID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	base := s.db.Model(&models.Transaction{}).
		Where("user_id = ?", userID).
		Where("account_id = ? OR to_account_id = ?", accountID, accountID)
	base = applyFilter(base, filter)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	err := base.Session(&gorm.Session{}).
		Order("date DESC, created_at DESC").
		Scopes(pagination.Paginate(page)).
		Find(&transactions).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(transactions, page.Page, page.PageSize, total)
	return &resp, nil
}

// GetTransactionByID returns the transaction if it belongs to the user.
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// DeleteTransaction soft-deletes a ledger entry. Balances are derived, so
// removal is just the entry dropping out of every sum.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(transaction).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *transactionService) verifyAccount(userID, accountID string) error {
	var count int64
	err := s.db.Model(&models.Account{}).
		Where("id = ? AND user_id = ?", accountID, userID).
		Count(&count).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrAccountNotFound
	}
	return nil
}

func (s *transactionService) verifyCategory(userID, categoryID string) error {
	var count int64
	err := s.db.Model(&models.Category{}).
		Where("id = ? AND user_id = ?", categoryID, userID).
		Count(&count).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrCategoryNotFound
	}
	return nil
}

func applyFilter(q *gorm.DB, filter TransactionFilter) *gorm.DB {
	if filter.FromDate != nil {
		q = q.Where("date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		q = q.Where("date <= ?", *filter.ToDate)
	}
	if filter.Type != nil {
		q = q.Where("type = ?", *filter.Type)
	}
	if filter.CategoryID != nil {
		q = q.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.AccountID != nil {
		q = q.Where("account_id = ?", *filter.AccountID)
	}
	if filter.MinAmount != nil {
		q = q.Where("amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		q = q.Where("amount <= ?", *filter.MaxAmount)
	}
	return q
}
