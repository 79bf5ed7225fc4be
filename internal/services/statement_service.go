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

// Reminder offsets, in days before the due date.
var dueReminderDays = []int{7, 1}

// statementService manages closed billing-cycle records and the due-date
// reminder sweep.
type statementService struct {
	db       *gorm.DB
	ledger   LedgerServicer
	cards    CreditCardServicer
	notifier notify.Notifier
}

// NewStatementService creates a new statement service.
func NewStatementService(db *gorm.DB, ledger LedgerServicer, cards CreditCardServicer, notifier notify.Notifier) StatementServicer {
	return &statementService{db: db, ledger: ledger, cards: cards, notifier: notifier}
}

// GenerateStatement records the card's most recently closed billing period
// as of ref. Generating twice for the same period returns the existing
// statement instead of duplicating it.
func (s *statementService) GenerateStatement(userID, cardID string, ref time.Time) (*models.Statement, error) {
	card, err := s.cards.GetCreditCardByID(userID, cardID)
	if err != nil {
		return nil, err
	}

	period := billing.ClosedStatementPeriod(card.StatementDay, ref)

	var existing models.Statement
	err = s.db.Where("credit_card_id = ? AND period_end = ?", card.ID, period.End).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	total, err := s.ledger.PeriodSpending(card.AccountID, period.Start, period.End)
	if err != nil {
		return nil, err
	}

	statement := &models.Statement{
		UserID:       userID,
		CreditCardID: card.ID,
		PeriodStart:  period.Start,
		PeriodEnd:    period.End,
		DueDate:      billing.DueDate(card.StatementDay, card.DueDay, ref),
		TotalAmount:  total,
		IsPaid:       false,
	}
	if err := s.db.Create(statement).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return statement, nil
}

// GetUserStatements returns a page of the user's statements, most recent
// period first.
func (s *statementService) GetUserStatements(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Statement], error) {
	var total int64
	if err := s.db.Model(&models.Statement{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var statements []models.Statement
	err := s.db.Where("user_id = ?", userID).
		Order("period_end DESC").
		Scopes(pagination.Paginate(page)).
		Find(&statements).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(statements, page.Page, page.PageSize, total)
	return &resp, nil
}

// GetStatementByID returns the statement if it belongs to the user.
func (s *statementService) GetStatementByID(userID, statementID string) (*models.Statement, error) {
	var statement models.Statement
	err := s.db.Where("id = ? AND user_id = ?", statementID, userID).First(&statement).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrStatementNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &statement, nil
}

// MarkPaid flags a statement as settled. Paid statements drop out of the
// reminder sweep.
func (s *statementService) MarkPaid(userID, statementID string) (*models.Statement, error) {
	statement, err := s.GetStatementByID(userID, statementID)
	if err != nil {
		return nil, err
	}
	if statement.IsPaid {
		return statement, nil
	}

	if err := s.db.Model(statement).Update("is_paid", true).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return statement, nil
}

// CheckDueStatements reminds owners of unpaid statements falling due in 7
// or 1 days. Each statement gets at most one reminder per offset; reruns
// and concurrent sweeps collapse on the dedupe key.
func (s *statementService) CheckDueStatements(ref time.Time) (int, error) {
	created := 0
	for _, days := range dueReminderDays {
		target := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location()).AddDate(0, 0, days)

		var statements []models.Statement
		err := s.db.Where("is_paid = ? AND due_date >= ? AND due_date < ?",
			false, target, target.AddDate(0, 0, 1)).
			Find(&statements).Error
		if err != nil {
			return created, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		for i := range statements {
			ok, err := s.remind(&statements[i], days)
			if err != nil {
				logger.Get().Errorw("statement reminder failed",
					"statement_id", statements[i].ID,
					"error", err.Error(),
				)
				continue
			}
			if ok {
				created++
			}
		}
	}
	return created, nil
}

// remind stores one reminder notification. Returns false when the dedupe
// key shows this reminder already went out.
func (s *statementService) remind(statement *models.Statement, days int) (bool, error) {
	dedupeKey := fmt.Sprintf("statement:%s:%d", statement.ID, days)

	noun := "days"
	if days == 1 {
		noun = "day"
	}
	title := "Credit card payment due"
	message := fmt.Sprintf("A payment of %s is due in %d %s (%s).",
		formatCentavos(statement.TotalAmount), days, noun, statement.DueDate.Format("Jan 2"))

	notification := &models.Notification{
		UserID:    statement.UserID,
		Type:      models.NotificationStatementDue,
		Title:     title,
		Message:   message,
		DedupeKey: &dedupeKey,
		Metadata: models.Metadata{
			"statement_id": statement.ID,
			"due_date":     statement.DueDate.Format("2006-01-02"),
			"days_before":  days,
		},
	}
	if err := s.db.Create(notification).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, err
	}

	s.notifier.Send(statement.UserID, title, message)
	return true, nil
}
