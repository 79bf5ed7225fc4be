package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "pitaka/internal/errors"
	"pitaka/internal/models"
	"pitaka/internal/pagination"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db     *gorm.DB
	ledger LedgerServicer
}

// NewBudgetService creates a new budget service.
func NewBudgetService(db *gorm.DB, ledger LedgerServicer) BudgetServicer {
	return &budgetService{db: db, ledger: ledger}
}

// CreateBudget creates a budget targeting exactly one category or one
// account.
func (s *budgetService) CreateBudget(userID string, categoryID, accountID *string, amount int64, period models.BudgetPeriod, alertAt80, alertAt100 bool) (*models.Budget, error) {
	if (categoryID == nil) == (accountID == nil) {
		return nil, apperrors.ErrBudgetTargetConflict
	}
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget amount must be positive")
	}
	if period == "" {
		period = models.BudgetPeriodMonthly
	}

	if categoryID != nil {
		var count int64
		if err := s.db.Model(&models.Category{}).Where("id = ? AND user_id = ?", *categoryID, userID).Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return nil, apperrors.ErrCategoryNotFound
		}
	}
	if accountID != nil {
		var count int64
		if err := s.db.Model(&models.Account{}).Where("id = ? AND user_id = ?", *accountID, userID).Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return nil, apperrors.ErrAccountNotFound
		}
	}

	budget := &models.Budget{
		UserID:     userID,
		CategoryID: categoryID,
		AccountID:  accountID,
		Amount:     amount,
		Period:     period,
		AlertAt80:  alertAt80,
		AlertAt100: alertAt100,
		IsActive:   true,
	}
	if err := s.db.Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budget, nil
}

// GetUserBudgets returns a page of the user's budgets, optionally filtered
// by active state.
func (s *budgetService) GetUserBudgets(userID string, page pagination.PageRequest, isActive *bool) (*pagination.PageResponse[models.Budget], error) {
	base := s.db.Model(&models.Budget{}).Where("user_id = ?", userID)
	if isActive != nil {
		base = base.Where("is_active = ?", *isActive)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	err := base.Session(&gorm.Session{}).
		Order("created_at ASC").
		Scopes(pagination.Paginate(page)).
		Find(&budgets).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(budgets, page.Page, page.PageSize, total)
	return &resp, nil
}

// GetBudgetByID returns the budget if it belongs to the user.
func (s *budgetService) GetBudgetByID(userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	err := s.db.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// UpdateBudget updates the amount, alert flags, or active state. The target
// is immutable; retarget by creating a new budget.
func (s *budgetService) UpdateBudget(userID, budgetID string, amount *int64, alertAt80, alertAt100, isActive *bool) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if amount != nil {
		if *amount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget amount must be positive")
		}
		updates["amount"] = *amount
	}
	if alertAt80 != nil {
		updates["alert_at_80"] = *alertAt80
	}
	if alertAt100 != nil {
		updates["alert_at_100"] = *alertAt100
	}
	if isActive != nil {
		updates["is_active"] = *isActive
	}
	if len(updates) == 0 {
		return budget, nil
	}

	if err := s.db.Model(budget).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budget, nil
}

// DeleteBudget soft-deletes a budget.
func (s *budgetService) DeleteBudget(userID, budgetID string) error {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetBudgetProgress returns spend vs budget for the calendar month
// containing ref. Weekly budgets are reported against the same monthly
// window for now; only monthly budgets feed the alert engine.
func (s *budgetService) GetBudgetProgress(userID, budgetID string, ref time.Time) (*BudgetProgress, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	spent, err := s.ledger.MonthSpending(userID, budget, ref)
	if err != nil {
		return nil, err
	}

	var percent float64
	if budget.Amount > 0 {
		percent = float64(spent) / float64(budget.Amount) * 100
	}

	status := models.BudgetStatusOK
	switch {
	case percent >= exceededThreshold:
		status = models.BudgetStatusExceeded
	case percent >= warningThreshold:
		status = models.BudgetStatusWarning
	}

	return &BudgetProgress{
		BudgetID: budget.ID,
		Budgeted: budget.Amount,
		Spent:    spent,
		Percent:  percent,
		Status:   status,
	}, nil
}
