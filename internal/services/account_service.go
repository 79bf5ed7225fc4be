package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "pitaka/internal/errors"
	"pitaka/internal/models"
	"pitaka/internal/pagination"
)

// accountService handles account-related business logic.
type accountService struct {
	db     *gorm.DB
	ledger LedgerServicer
}

// NewAccountService creates a new account service.
func NewAccountService(db *gorm.DB, ledger LedgerServicer) AccountServicer {
	return &accountService{db: db, ledger: ledger}
}

// CreateAccount creates a new account for the user. The opening balance is
// fixed at creation; everything after it lives in the transaction log.
func (s *accountService) CreateAccount(userID, name string, accountType models.AccountType, openingBalance int64, currency string, institutionID *string) (*models.Account, error) {
	if currency == "" {
		currency = "PHP"
	}
	if institutionID != nil {
		if err := s.verifyInstitution(userID, *institutionID); err != nil {
			return nil, err
		}
	}

	account := &models.Account{
		UserID:         userID,
		Name:           name,
		Type:           accountType,
		OpeningBalance: openingBalance,
		Currency:       currency,
		InstitutionID:  institutionID,
		IsActive:       true,
	}
	if err := s.db.Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return account, nil
}

// GetUserAccounts returns a page of the user's accounts, each enriched with
// its derived balance via a single bulk ledger pass.
func (s *accountService) GetUserAccounts(userID string, page pagination.PageRequest) (*pagination.PageResponse[AccountWithBalance], error) {
	var total int64
	if err := s.db.Model(&models.Account{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var accounts []models.Account
	err := s.db.Where("user_id = ?", userID).
		Order("created_at ASC").
		Scopes(pagination.Paginate(page)).
		Find(&accounts).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	balances, err := s.ledger.BalancesBulk(accounts)
	if err != nil {
		return nil, err
	}

	enriched := make([]AccountWithBalance, 0, len(accounts))
	for _, a := range accounts {
		enriched = append(enriched, AccountWithBalance{Account: a, CurrentBalance: balances[a.ID]})
	}

	resp := pagination.NewPageResponse(enriched, page.Page, page.PageSize, total)
	return &resp, nil
}

// GetAccountByID returns the account if it belongs to the user.
func (s *accountService) GetAccountByID(userID, accountID string) (*models.Account, error) {
	var account models.Account
	err := s.db.Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// GetAccountWithBalance returns the account with its derived balance.
func (s *accountService) GetAccountWithBalance(userID, accountID string) (*AccountWithBalance, error) {
	account, err := s.GetAccountByID(userID, accountID)
	if err != nil {
		return nil, err
	}
	balance, err := s.ledger.CurrentBalance(account)
	if err != nil {
		return nil, err
	}
	return &AccountWithBalance{Account: *account, CurrentBalance: balance}, nil
}

// UpdateAccount applies the given optional field updates. The opening
// balance and type are immutable after creation.
func (s *accountService) UpdateAccount(userID, accountID string, fields AccountUpdateFields) (*models.Account, error) {
	account, err := s.GetAccountByID(userID, accountID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if fields.Name != nil {
		updates["name"] = *fields.Name
	}
	if fields.InstitutionID != nil {
		if *fields.InstitutionID == "" {
			updates["institution_id"] = nil
		} else {
			if err := s.verifyInstitution(userID, *fields.InstitutionID); err != nil {
				return nil, err
			}
			updates["institution_id"] = *fields.InstitutionID
		}
	}
	if fields.IsActive != nil {
		updates["is_active"] = *fields.IsActive
	}
	if len(updates) == 0 {
		return account, nil
	}

	if err := s.db.Model(account).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return account, nil
}

// DeleteAccount removes an account that no transaction references. Accounts
// with history should be deactivated instead so the ledger stays replayable.
func (s *accountService) DeleteAccount(userID, accountID string) error {
	account, err := s.GetAccountByID(userID, accountID)
	if err != nil {
		return err
	}

	var refs int64
	err = s.db.Unscoped().Model(&models.Transaction{}).
		Where("account_id = ? OR to_account_id = ?", accountID, accountID).
		Count(&refs).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if refs > 0 {
		return apperrors.ErrAccountInUse
	}

	if err := s.db.Delete(account).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *accountService) verifyInstitution(userID, institutionID string) error {
	var count int64
	err := s.db.Model(&models.Institution{}).
		Where("id = ? AND user_id = ?", institutionID, userID).
		Count(&count).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrInstitutionNotFound
	}
	return nil
}
