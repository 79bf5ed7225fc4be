package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"pitaka/internal/billing"
	apperrors "pitaka/internal/errors"
	"pitaka/internal/models"
	"pitaka/internal/pagination"
)

// creditCardService handles credit-card business logic. Availability and
// billing-cycle dates are always derived at read time, never stored.
type creditCardService struct {
	db     *gorm.DB
	ledger LedgerServicer
}

// NewCreditCardService creates a new credit card service.
func NewCreditCardService(db *gorm.DB, ledger LedgerServicer) CreditCardServicer {
	return &creditCardService{db: db, ledger: ledger}
}

// CreateCreditCard registers a card against an existing credit_card account.
func (s *creditCardService) CreateCreditCard(userID string, input CreditCardInput) (*models.CreditCard, error) {
	account, err := s.lookupAccount(userID, input.AccountID)
	if err != nil {
		return nil, err
	}
	if account.Type != models.AccountTypeCreditCard {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account must be a credit card account")
	}
	if err := validateCycleDays(input.StatementDay, input.DueDay); err != nil {
		return nil, err
	}
	if input.CreditLineID != nil {
		if err := s.verifyLine(userID, *input.CreditLineID); err != nil {
			return nil, err
		}
	}

	card := &models.CreditCard{
		UserID:            userID,
		AccountID:         input.AccountID,
		LastFour:          input.LastFour,
		CardName:          input.CardName,
		StatementDay:      input.StatementDay,
		DueDay:            input.DueDay,
		CreditLimit:       input.CreditLimit,
		CreditLineID:      input.CreditLineID,
		AvailableOverride: input.AvailableOverride,
	}
	if err := s.db.Create(card).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return card, nil
}

// GetUserCreditCards returns a page of the user's cards enriched with
// derived availability and cycle dates for today.
func (s *creditCardService) GetUserCreditCards(userID string, page pagination.PageRequest) (*pagination.PageResponse[CreditCardWithDerived], error) {
	var total int64
	if err := s.db.Model(&models.CreditCard{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var cards []models.CreditCard
	err := s.db.Where("user_id = ?", userID).
		Order("created_at ASC").
		Scopes(pagination.Paginate(page)).
		Find(&cards).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	now := time.Now()
	enriched := make([]CreditCardWithDerived, 0, len(cards))
	for i := range cards {
		available, err := s.AvailableCredit(&cards[i])
		if err != nil {
			return nil, err
		}
		summary := s.BillingSummary(&cards[i], now)
		enriched = append(enriched, CreditCardWithDerived{
			CreditCard:      cards[i],
			AvailableCredit: available,
			Billing:         &summary,
		})
	}

	resp := pagination.NewPageResponse(enriched, page.Page, page.PageSize, total)
	return &resp, nil
}

// GetCreditCardByID returns the card if it belongs to the user.
func (s *creditCardService) GetCreditCardByID(userID, cardID string) (*models.CreditCard, error) {
	var card models.CreditCard
	err := s.db.Where("id = ? AND user_id = ?", cardID, userID).First(&card).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCreditCardNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &card, nil
}

// GetCreditCardWithDerived returns the card enriched with availability and
// the billing cycle as of ref.
func (s *creditCardService) GetCreditCardWithDerived(userID, cardID string, ref time.Time) (*CreditCardWithDerived, error) {
	card, err := s.GetCreditCardByID(userID, cardID)
	if err != nil {
		return nil, err
	}
	available, err := s.AvailableCredit(card)
	if err != nil {
		return nil, err
	}
	summary := s.BillingSummary(card, ref)
	return &CreditCardWithDerived{
		CreditCard:      *card,
		AvailableCredit: available,
		Billing:         &summary,
	}, nil
}

// UpdateCreditCard updates a card's mutable fields. The backing account is
// immutable.
func (s *creditCardService) UpdateCreditCard(userID, cardID string, input CreditCardInput) (*models.CreditCard, error) {
	card, err := s.GetCreditCardByID(userID, cardID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.CardName != "" {
		updates["card_name"] = input.CardName
	}
	if input.LastFour != "" {
		updates["last_four"] = input.LastFour
	}
	if input.StatementDay != 0 || input.DueDay != 0 {
		statementDay, dueDay := card.StatementDay, card.DueDay
		if input.StatementDay != 0 {
			statementDay = input.StatementDay
		}
		if input.DueDay != 0 {
			dueDay = input.DueDay
		}
		if err := validateCycleDays(statementDay, dueDay); err != nil {
			return nil, err
		}
		updates["statement_day"] = statementDay
		updates["due_day"] = dueDay
	}
	if input.CreditLimit != nil {
		updates["credit_limit"] = *input.CreditLimit
	}
	if input.AvailableOverride != nil {
		updates["available_override"] = *input.AvailableOverride
	}
	if input.CreditLineID != nil {
		if *input.CreditLineID == "" {
			updates["credit_line_id"] = nil
		} else {
			if err := s.verifyLine(userID, *input.CreditLineID); err != nil {
				return nil, err
			}
			updates["credit_line_id"] = *input.CreditLineID
		}
	}
	if len(updates) == 0 {
		return card, nil
	}

	if err := s.db.Model(card).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return card, nil
}

// DeleteCreditCard removes the card record. The backing account and its
// transactions are untouched.
func (s *creditCardService) DeleteCreditCard(userID, cardID string) error {
	card, err := s.GetCreditCardByID(userID, cardID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(card).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// AvailableCredit resolves a standalone card's available credit:
// override wins outright, otherwise limit plus the account's (negative)
// balance. Cards in a credit line and cards without a limit return nil.
func (s *creditCardService) AvailableCredit(card *models.CreditCard) (*int64, error) {
	if card.CreditLineID != nil {
		return nil, nil
	}
	if card.AvailableOverride != nil {
		v := *card.AvailableOverride
		return &v, nil
	}
	if card.CreditLimit == nil {
		return nil, nil
	}

	var account models.Account
	err := s.db.Where("id = ?", card.AccountID).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	balance, err := s.ledger.CurrentBalance(&account)
	if err != nil {
		return nil, err
	}

	available := *card.CreditLimit + balance
	return &available, nil
}

// BillingSummary derives the card's closed and open statement periods and
// payment due date as of ref.
func (s *creditCardService) BillingSummary(card *models.CreditCard, ref time.Time) BillingSummary {
	due := billing.DueDate(card.StatementDay, card.DueDay, ref)
	return BillingSummary{
		ClosedPeriod: billing.ClosedStatementPeriod(card.StatementDay, ref),
		OpenPeriod:   billing.OpenBillingPeriod(card.StatementDay, ref),
		DueDate:      due,
		DaysUntilDue: billing.DaysUntilDue(due, ref),
	}
}

func (s *creditCardService) lookupAccount(userID, accountID string) (*models.Account, error) {
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

func (s *creditCardService) verifyLine(userID, lineID string) error {
	var count int64
	err := s.db.Model(&models.CreditLine{}).
		Where("id = ? AND user_id = ?", lineID, userID).
		Count(&count).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrCreditLineNotFound
	}
	return nil
}

func validateCycleDays(statementDay, dueDay int) error {
	if statementDay < 1 || statementDay > 28 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "statement day must be between 1 and 28")
	}
	if dueDay < 1 || dueDay > 28 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "due day must be between 1 and 28")
	}
	return nil
}
