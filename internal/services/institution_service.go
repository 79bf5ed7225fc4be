package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "pitaka/internal/errors"
	"pitaka/internal/models"
	"pitaka/internal/pagination"
)

// institutionService handles institution-related business logic.
type institutionService struct {
	db *gorm.DB
}

// NewInstitutionService creates a new institution service.
func NewInstitutionService(db *gorm.DB) InstitutionServicer {
	return &institutionService{db: db}
}

// CreateInstitution creates a new institution for the user.
func (s *institutionService) CreateInstitution(userID, name, notes string) (*models.Institution, error) {
	institution := &models.Institution{
		UserID: userID,
		Name:   name,
		Notes:  notes,
	}
	if err := s.db.Create(institution).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return institution, nil
}

// GetUserInstitutions returns a page of the user's institutions.
func (s *institutionService) GetUserInstitutions(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Institution], error) {
	var total int64
	if err := s.db.Model(&models.Institution{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var institutions []models.Institution
	err := s.db.Where("user_id = ?", userID).
		Order("name ASC").
		Scopes(pagination.Paginate(page)).
		Find(&institutions).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(institutions, page.Page, page.PageSize, total)
	return &resp, nil
}

// GetInstitutionByID returns the institution if it belongs to the user.
func (s *institutionService) GetInstitutionByID(userID, institutionID string) (*models.Institution, error) {
	var institution models.Institution
	err := s.db.Where("id = ? AND user_id = ?", institutionID, userID).First(&institution).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInstitutionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &institution, nil
}

// UpdateInstitution updates an institution's name and notes.
func (s *institutionService) UpdateInstitution(userID, institutionID, name, notes string) (*models.Institution, error) {
	institution, err := s.GetInstitutionByID(userID, institutionID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if name != "" {
		updates["name"] = name
	}
	if notes != "" {
		updates["notes"] = notes
	}
	if len(updates) == 0 {
		return institution, nil
	}

	if err := s.db.Model(institution).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return institution, nil
}

// DeleteInstitution removes an institution. Accounts and credit lines that
// pointed at it keep working; their institution link just goes dangling-free
// because the foreign keys are nullable.
func (s *institutionService) DeleteInstitution(userID, institutionID string) error {
	institution, err := s.GetInstitutionByID(userID, institutionID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Account{}).
			Where("institution_id = ?", institutionID).
			Update("institution_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.CreditLine{}).
			Where("institution_id = ?", institutionID).
			Update("institution_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(institution).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ResolveCardInstitution resolves the institution behind a credit card with
// explicit lookups, never via preloaded chains: a card in a credit line
// inherits the line's institution, a standalone card inherits its backing
// account's. Returns nil with no error when nothing is linked.
func (s *institutionService) ResolveCardInstitution(card *models.CreditCard) (*models.Institution, error) {
	var institutionID *string

	if card.CreditLineID != nil {
		var line models.CreditLine
		err := s.db.Where("id = ?", *card.CreditLineID).First(&line).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrCreditLineNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		institutionID = line.InstitutionID
	} else {
		var account models.Account
		err := s.db.Where("id = ?", card.AccountID).First(&account).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrAccountNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		institutionID = account.InstitutionID
	}

	if institutionID == nil {
		return nil, nil
	}

	var institution models.Institution
	err := s.db.Where("id = ?", *institutionID).First(&institution).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &institution, nil
}
