package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "pitaka/internal/errors"
	"pitaka/internal/logger"
	"pitaka/internal/models"
	"pitaka/internal/notify"
)

// Budget thresholds, in percent of the budgeted amount.
const (
	warningThreshold  = 80.0
	exceededThreshold = 100.0
)

// alertService evaluates budget spend against thresholds and records
// notifications. One notification per budget, threshold, and calendar month:
// the dedupe key's unique index is the arbiter, so concurrent evaluations
// collapse to a single row no matter how many writers race.
type alertService struct {
	db       *gorm.DB
	ledger   LedgerServicer
	notifier notify.Notifier
}

// NewAlertService creates a new alert service.
func NewAlertService(db *gorm.DB, ledger LedgerServicer, notifier notify.Notifier) AlertServicer {
	return &alertService{db: db, ledger: ledger, notifier: notifier}
}

// CheckBudgetAlerts evaluates all of the user's active monthly budgets for
// the month containing ref. Only the highest crossed enabled threshold fires;
// an exceeded budget does not also emit a warning.
func (s *alertService) CheckBudgetAlerts(userID string, ref time.Time) error {
	var budgets []models.Budget
	err := s.db.Where("user_id = ? AND is_active = ? AND period = ?",
		userID, true, models.BudgetPeriodMonthly).
		Find(&budgets).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for i := range budgets {
		if err := s.checkBudget(&budgets[i], ref); err != nil {
			logger.Get().Errorw("budget evaluation failed",
				"budget_id", budgets[i].ID,
				"error", err.Error(),
			)
		}
	}
	return nil
}

func (s *alertService) checkBudget(budget *models.Budget, ref time.Time) error {
	if budget.Amount <= 0 {
		return nil
	}

	spent, err := s.ledger.MonthSpending(budget.UserID, budget, ref)
	if err != nil {
		return err
	}
	percent := float64(spent) / float64(budget.Amount) * 100

	// Highest enabled threshold wins. With the exceeded alert turned off, an
	// over-budget spend still crosses 80% and warns.
	switch {
	case percent >= exceededThreshold && budget.AlertAt100:
		return s.emit(budget, models.NotificationBudgetExceeded, spent, percent, ref)
	case percent >= warningThreshold && budget.AlertAt80:
		return s.emit(budget, models.NotificationBudgetWarning, spent, percent, ref)
	}
	return nil
}

// emit stores the notification and hands it to the external notifier. A
// duplicate-key error means another writer already alerted this month, which
// is the idempotency working, not a failure.
func (s *alertService) emit(budget *models.Budget, kind models.NotificationType, spent int64, percent float64, ref time.Time) error {
	dedupeKey := fmt.Sprintf("budget:%s:%s:%s", budget.ID, kind, ref.Format("2006-01"))

	title := "Budget warning"
	if kind == models.NotificationBudgetExceeded {
		title = "Budget exceeded"
	}
	message := fmt.Sprintf("You have spent %s of your %s budget (%.0f%%).",
		formatCentavos(spent), formatCentavos(budget.Amount), percent)

	notification := &models.Notification{
		UserID:    budget.UserID,
		Type:      kind,
		Title:     title,
		Message:   message,
		DedupeKey: &dedupeKey,
		Metadata: models.Metadata{
			"budget_id": budget.ID,
			"period":    ref.Format("2006-01"),
			"spent":     spent,
			"budgeted":  budget.Amount,
		},
	}
	if err := s.db.Create(notification).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.notifier.Send(budget.UserID, title, message)
	return nil
}
