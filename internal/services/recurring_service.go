package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"pitaka/internal/billing"
	apperrors "pitaka/internal/errors"
	"pitaka/internal/logger"
	"pitaka/internal/models"
	"pitaka/internal/notify"
	"pitaka/internal/pagination"
)

// errAlreadySwept marks a rule whose cursor another sweep advanced first.
var errAlreadySwept = errors.New("rule already swept")

// recurringService manages recurring-transaction rules and the sweep that
// materializes them into the ledger.
type recurringService struct {
	db       *gorm.DB
	notifier notify.Notifier
}

// NewRecurringService creates a new recurring transaction service.
func NewRecurringService(db *gorm.DB, notifier notify.Notifier) RecurringServicer {
	return &recurringService{db: db, notifier: notifier}
}

// CreateRecurring creates a rule with its cursor at the start date.
func (s *recurringService) CreateRecurring(userID string, input RecurringInput) (*models.RecurringTransaction, error) {
	if input.Amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
	}
	if input.Type == models.TransactionTypeTransfer {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "recurring transfers are not supported")
	}
	if input.EndDate != nil && input.EndDate.Before(input.StartDate) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "end date cannot precede start date")
	}
	if err := s.verifyAccount(userID, input.AccountID); err != nil {
		return nil, err
	}
	if input.CategoryID != nil {
		if err := s.verifyCategory(userID, *input.CategoryID); err != nil {
			return nil, err
		}
	}

	rule := &models.RecurringTransaction{
		UserID:      userID,
		AccountID:   input.AccountID,
		CategoryID:  input.CategoryID,
		Amount:      input.Amount,
		Description: input.Description,
		Type:        input.Type,
		SubType:     input.SubType,
		Frequency:   input.Frequency,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		NextDueDate: input.StartDate,
		IsActive:    true,
	}
	if err := s.db.Create(rule).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rule, nil
}

// GetUserRecurring returns a page of the user's recurring rules.
func (s *recurringService) GetUserRecurring(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.RecurringTransaction], error) {
	var total int64
	if err := s.db.Model(&models.RecurringTransaction{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var rules []models.RecurringTransaction
	err := s.db.Where("user_id = ?", userID).
		Order("next_due_date ASC").
		Scopes(pagination.Paginate(page)).
		Find(&rules).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(rules, page.Page, page.PageSize, total)
	return &resp, nil
}

// GetRecurringByID returns the rule if it belongs to the user.
func (s *recurringService) GetRecurringByID(userID, recurringID string) (*models.RecurringTransaction, error) {
	var rule models.RecurringTransaction
	err := s.db.Where("id = ? AND user_id = ?", recurringID, userID).First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecurringNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &rule, nil
}

// UpdateRecurring updates the amount, end date, or active state of a rule.
// Cadence and target are immutable; recreate the rule to change them.
func (s *recurringService) UpdateRecurring(userID, recurringID string, amount *int64, endDate *time.Time, isActive *bool) (*models.RecurringTransaction, error) {
	rule, err := s.GetRecurringByID(userID, recurringID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if amount != nil {
		if *amount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
		}
		updates["amount"] = *amount
	}
	if endDate != nil {
		updates["end_date"] = *endDate
	}
	if isActive != nil {
		updates["is_active"] = *isActive
	}
	if len(updates) == 0 {
		return rule, nil
	}

	if err := s.db.Model(rule).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rule, nil
}

// DeleteRecurring soft-deletes a rule. Transactions it already materialized
// stay in the ledger.
func (s *recurringService) DeleteRecurring(userID, recurringID string) error {
	rule, err := s.GetRecurringByID(userID, recurringID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(rule).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Sweep materializes every due rule exactly once. A rule overdue by several
// periods still produces a single transaction per sweep; the cursor advances
// one period at a time and there is no catch-up. Two sweeps running
// concurrently cannot double-materialize: the cursor advance is a guarded
// update, and zero rows affected means the other sweep owns this rule.
func (s *recurringService) Sweep(ref time.Time) (int, error) {
	var rules []models.RecurringTransaction
	err := s.db.Where("is_active = ? AND next_due_date <= ?", true, ref).Find(&rules).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	processed := 0
	for i := range rules {
		notification, err := s.processRule(&rules[i])
		if err != nil {
			if errors.Is(err, errAlreadySwept) {
				continue
			}
			logger.Get().Errorw("recurring sweep failed for rule",
				"recurring_id", rules[i].ID,
				"error", err.Error(),
			)
			continue
		}
		processed++
		s.notifier.Send(notification.UserID, notification.Title, notification.Message)
	}
	return processed, nil
}

// processRule advances one rule's cursor and writes the materialized
// transaction and its notification in a single database transaction.
func (s *recurringService) processRule(rule *models.RecurringTransaction) (*models.Notification, error) {
	next := billing.AdvanceDate(rule.NextDueDate, rule.Frequency)
	stillActive := rule.EndDate == nil || !next.After(*rule.EndDate)

	var notification *models.Notification
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.RecurringTransaction{}).
			Where("id = ? AND next_due_date = ?", rule.ID, rule.NextDueDate).
			Updates(map[string]interface{}{
				"next_due_date": next,
				"is_active":     stillActive,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errAlreadySwept
		}

		transaction := &models.Transaction{
			UserID:      rule.UserID,
			AccountID:   rule.AccountID,
			CategoryID:  rule.CategoryID,
			RecurringID: &rule.ID,
			Type:        rule.Type,
			SubType:     rule.SubType,
			Amount:      rule.Amount,
			Description: rule.Description,
			Date:        rule.NextDueDate,
			Source:      models.SourceRecurring,
			CreatedBy:   rule.UserID,
		}
		if err := tx.Create(transaction).Error; err != nil {
			return err
		}

		notification = &models.Notification{
			UserID:  rule.UserID,
			Type:    models.NotificationRecurringCreated,
			Title:   "Recurring transaction posted",
			Message: fmt.Sprintf("%s (%s) was posted automatically.", rule.Description, formatCentavos(rule.Amount)),
			Metadata: models.Metadata{
				"recurring_id":   rule.ID,
				"transaction_id": transaction.ID,
				"date":           rule.NextDueDate.Format("2006-01-02"),
			},
		}
		return tx.Create(notification).Error
	})
	if err != nil {
		if errors.Is(err, errAlreadySwept) {
			return nil, errAlreadySwept
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return notification, nil
}

func (s *recurringService) verifyAccount(userID, accountID string) error {
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

func (s *recurringService) verifyCategory(userID, categoryID string) error {
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
