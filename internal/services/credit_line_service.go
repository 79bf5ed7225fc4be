package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "pitaka/internal/errors"
	"pitaka/internal/models"
	"pitaka/internal/pagination"
)

// creditLineService handles shared credit pools. A line's availability is
// its limit minus the combined debt of every card drawing on it.
type creditLineService struct {
	db     *gorm.DB
	ledger LedgerServicer
}

// NewCreditLineService creates a new credit line service.
func NewCreditLineService(db *gorm.DB, ledger LedgerServicer) CreditLineServicer {
	return &creditLineService{db: db, ledger: ledger}
}

// CreateCreditLine creates a new credit line for the user.
func (s *creditLineService) CreateCreditLine(userID, name string, institutionID *string, totalLimit, availableOverride *int64) (*models.CreditLine, error) {
	if institutionID != nil {
		var count int64
		if err := s.db.Model(&models.Institution{}).Where("id = ? AND user_id = ?", *institutionID, userID).Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return nil, apperrors.ErrInstitutionNotFound
		}
	}

	line := &models.CreditLine{
		UserID:            userID,
		Name:              name,
		InstitutionID:     institutionID,
		TotalLimit:        totalLimit,
		AvailableOverride: availableOverride,
	}
	if err := s.db.Create(line).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return line, nil
}

// GetUserCreditLines returns a page of the user's credit lines with derived
// pooled availability.
func (s *creditLineService) GetUserCreditLines(userID string, page pagination.PageRequest) (*pagination.PageResponse[CreditLineWithDerived], error) {
	var total int64
	if err := s.db.Model(&models.CreditLine{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var lines []models.CreditLine
	err := s.db.Where("user_id = ?", userID).
		Order("created_at ASC").
		Scopes(pagination.Paginate(page)).
		Find(&lines).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	enriched := make([]CreditLineWithDerived, 0, len(lines))
	for i := range lines {
		available, err := s.AvailableCredit(&lines[i])
		if err != nil {
			return nil, err
		}
		enriched = append(enriched, CreditLineWithDerived{CreditLine: lines[i], AvailableCredit: available})
	}

	resp := pagination.NewPageResponse(enriched, page.Page, page.PageSize, total)
	return &resp, nil
}

// GetCreditLineByID returns the line if it belongs to the user.
func (s *creditLineService) GetCreditLineByID(userID, lineID string) (*models.CreditLine, error) {
	var line models.CreditLine
	err := s.db.Where("id = ? AND user_id = ?", lineID, userID).First(&line).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCreditLineNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &line, nil
}

// UpdateCreditLine updates the line's name, limit, or override.
func (s *creditLineService) UpdateCreditLine(userID, lineID string, name *string, totalLimit, availableOverride *int64) (*models.CreditLine, error) {
	line, err := s.GetCreditLineByID(userID, lineID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if name != nil {
		updates["name"] = *name
	}
	if totalLimit != nil {
		updates["total_limit"] = *totalLimit
	}
	if availableOverride != nil {
		updates["available_override"] = *availableOverride
	}
	if len(updates) == 0 {
		return line, nil
	}

	if err := s.db.Model(line).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return line, nil
}

// DeleteCreditLine detaches every card from the line, then deletes it. The
// cards survive as standalone cards with whatever limit they carry.
func (s *creditLineService) DeleteCreditLine(userID, lineID string) error {
	line, err := s.GetCreditLineByID(userID, lineID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.CreditCard{}).
			Where("credit_line_id = ?", lineID).
			Update("credit_line_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(line).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// AvailableCredit resolves the line's pooled availability: override wins,
// no limit means undefined, otherwise the limit plus the summed (negative)
// balances of every member card's backing account. A line with zero cards
// has its full limit available.
func (s *creditLineService) AvailableCredit(line *models.CreditLine) (*int64, error) {
	if line.AvailableOverride != nil {
		v := *line.AvailableOverride
		return &v, nil
	}
	if line.TotalLimit == nil {
		return nil, nil
	}

	var cards []models.CreditCard
	if err := s.db.Where("credit_line_id = ?", line.ID).Find(&cards).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	available := *line.TotalLimit
	if len(cards) > 0 {
		ids := make([]string, 0, len(cards))
		for _, c := range cards {
			ids = append(ids, c.AccountID)
		}
		var accounts []models.Account
		if err := s.db.Where("id IN ?", ids).Find(&accounts).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		balances, err := s.ledger.BalancesBulk(accounts)
		if err != nil {
			return nil, err
		}
		for _, b := range balances {
			available += b
		}
	}
	return &available, nil
}
