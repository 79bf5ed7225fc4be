package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "pitaka/internal/errors"
	"pitaka/internal/services"
)

// CreditCardHandler handles credit-card requests.
type CreditCardHandler struct {
	cardService        services.CreditCardServicer
	institutionService services.InstitutionServicer
}

// NewCreditCardHandler creates a new CreditCardHandler.
func NewCreditCardHandler(cardService services.CreditCardServicer, institutionService services.InstitutionServicer) *CreditCardHandler {
	return &CreditCardHandler{cardService: cardService, institutionService: institutionService}
}

// CreateCreditCardRequest represents the request payload for registering a card.
type CreateCreditCardRequest struct {
	AccountID         string  `json:"account_id" binding:"required,uuid"`
	LastFour          string  `json:"last_four" binding:"required,len=4,numeric"`
	CardName          string  `json:"card_name" binding:"max=100"`
	StatementDay      int     `json:"statement_day" binding:"required,min=1,max=28"`
	DueDay            int     `json:"due_day" binding:"required,min=1,max=28"`
	CreditLimit       *int64  `json:"credit_limit" binding:"omitempty,gt=0"`
	CreditLineID      *string `json:"credit_line_id" binding:"omitempty,uuid"`
	AvailableOverride *int64  `json:"available_override"`
}

// UpdateCreditCardRequest represents the request payload for updating a card.
type UpdateCreditCardRequest struct {
	LastFour          string  `json:"last_four" binding:"omitempty,len=4,numeric"`
	CardName          string  `json:"card_name" binding:"omitempty,max=100"`
	StatementDay      int     `json:"statement_day" binding:"omitempty,min=1,max=28"`
	DueDay            int     `json:"due_day" binding:"omitempty,min=1,max=28"`
	CreditLimit       *int64  `json:"credit_limit" binding:"omitempty,gt=0"`
	CreditLineID      *string `json:"credit_line_id"`
	AvailableOverride *int64  `json:"available_override"`
}

// CreateCreditCard registers a credit card
// @Summary     Register a credit card
// @Description Attach billing-cycle and limit data to a credit_card account
// @Tags        credit-cards
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateCreditCardRequest true "Card details"
// @Success     201 {object} models.CreditCard
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /credit-cards [post]
func (h *CreditCardHandler) CreateCreditCard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateCreditCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	card, err := h.cardService.CreateCreditCard(userID, services.CreditCardInput{
		AccountID:         req.AccountID,
		LastFour:          req.LastFour,
		CardName:          req.CardName,
		StatementDay:      req.StatementDay,
		DueDay:            req.DueDay,
		CreditLimit:       req.CreditLimit,
		CreditLineID:      req.CreditLineID,
		AvailableOverride: req.AvailableOverride,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"credit_card": card})
}

// ListCreditCards lists the user's cards with derived data
// @Summary     List credit cards
// @Description List cards with available credit and billing-cycle dates
// @Tags        credit-cards
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} pagination.PageResponse[services.CreditCardWithDerived]
// @Router      /credit-cards [get]
func (h *CreditCardHandler) ListCreditCards(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	page, err := bindPage(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp, err := h.cardService.GetUserCreditCards(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetCreditCard returns one card with derived data and its institution
// @Summary     Get a credit card
// @Tags        credit-cards
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Card ID"
// @Success     200 {object} services.CreditCardWithDerived
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /credit-cards/{id} [get]
func (h *CreditCardHandler) GetCreditCard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	card, err := h.cardService.GetCreditCardWithDerived(userID, c.Param("id"), time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	institution, err := h.institutionService.ResolveCardInstitution(&card.CreditCard)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"credit_card": card, "institution": institution})
}

// UpdateCreditCard updates a card
// @Summary     Update a credit card
// @Tags        credit-cards
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Card ID"
// @Param       request body UpdateCreditCardRequest true "Fields to update"
// @Success     200 {object} models.CreditCard
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /credit-cards/{id} [patch]
func (h *CreditCardHandler) UpdateCreditCard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateCreditCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	card, err := h.cardService.UpdateCreditCard(userID, c.Param("id"), services.CreditCardInput{
		LastFour:          req.LastFour,
		CardName:          req.CardName,
		StatementDay:      req.StatementDay,
		DueDay:            req.DueDay,
		CreditLimit:       req.CreditLimit,
		CreditLineID:      req.CreditLineID,
		AvailableOverride: req.AvailableOverride,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"credit_card": card})
}

// DeleteCreditCard removes a card record
// @Summary     Delete a credit card
// @Tags        credit-cards
// @Security    BearerAuth
// @Param       id path string true "Card ID"
// @Success     204 "Deleted"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /credit-cards/{id} [delete]
func (h *CreditCardHandler) DeleteCreditCard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.cardService.DeleteCreditCard(userID, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
