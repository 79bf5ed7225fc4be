package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "pitaka/internal/errors"
	"pitaka/internal/models"
	"pitaka/internal/services"
)

// RecurringHandler handles recurring-transaction rule requests.
type RecurringHandler struct {
	recurringService services.RecurringServicer
}

// NewRecurringHandler creates a new RecurringHandler.
func NewRecurringHandler(recurringService services.RecurringServicer) *RecurringHandler {
	return &RecurringHandler{recurringService: recurringService}
}

// CreateRecurringRequest represents the request payload for a recurring rule.
// Transfers cannot recur; only income and expense rules are accepted.
type CreateRecurringRequest struct {
	AccountID   string  `json:"account_id" binding:"required,uuid"`
	CategoryID  *string `json:"category_id" binding:"omitempty,uuid"`
	Amount      int64   `json:"amount" binding:"required,gt=0"`
	Description string  `json:"description" binding:"max=500"`
	Type        string  `json:"type" binding:"required,transaction_type"`
	SubType     *string `json:"sub_type" binding:"omitempty,transaction_sub_type"`
	Frequency   string  `json:"frequency" binding:"required,recurrence_frequency"`
	StartDate   string  `json:"start_date" binding:"required"`
	EndDate     *string `json:"end_date"`
}

// UpdateRecurringRequest represents the request payload for updating a rule.
type UpdateRecurringRequest struct {
	Amount   *int64  `json:"amount" binding:"omitempty,gt=0"`
	EndDate  *string `json:"end_date"`
	IsActive *bool   `json:"is_active"`
}

// CreateRecurring creates a recurring rule
// @Summary     Create a recurring rule
// @Description Schedule an income or expense to materialize on a cadence
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateRecurringRequest true "Rule details"
// @Success     201 {object} models.RecurringTransaction
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /recurring [post]
func (h *RecurringHandler) CreateRecurring(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "start_date must be YYYY-MM-DD"))
		return
	}
	var endDate *time.Time
	if req.EndDate != nil {
		end, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "end_date must be YYYY-MM-DD"))
			return
		}
		endDate = &end
	}

	var subType *models.TransactionSubType
	if req.SubType != nil {
		st := models.TransactionSubType(*req.SubType)
		subType = &st
	}

	rule, err := h.recurringService.CreateRecurring(userID, services.RecurringInput{
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		Description: req.Description,
		Type:        models.TransactionType(req.Type),
		SubType:     subType,
		Frequency:   models.RecurrenceFrequency(req.Frequency),
		StartDate:   startDate,
		EndDate:     endDate,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"recurring_transaction": rule})
}

// ListRecurring lists the user's recurring rules
// @Summary     List recurring rules
// @Tags        recurring
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} pagination.PageResponse[models.RecurringTransaction]
// @Router      /recurring [get]
func (h *RecurringHandler) ListRecurring(c *gin.Context) {
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

	resp, err := h.recurringService.GetUserRecurring(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetRecurring returns one recurring rule
// @Summary     Get a recurring rule
// @Tags        recurring
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Rule ID"
// @Success     200 {object} models.RecurringTransaction
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /recurring/{id} [get]
func (h *RecurringHandler) GetRecurring(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	rule, err := h.recurringService.GetRecurringByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recurring_transaction": rule})
}

// UpdateRecurring updates a recurring rule
// @Summary     Update a recurring rule
// @Description Amount, end date, and active state are mutable; cadence is not
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Rule ID"
// @Param       request body UpdateRecurringRequest true "Fields to update"
// @Success     200 {object} models.RecurringTransaction
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /recurring/{id} [patch]
func (h *RecurringHandler) UpdateRecurring(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var endDate *time.Time
	if req.EndDate != nil {
		end, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "end_date must be YYYY-MM-DD"))
			return
		}
		endDate = &end
	}

	rule, err := h.recurringService.UpdateRecurring(userID, c.Param("id"), req.Amount, endDate, req.IsActive)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recurring_transaction": rule})
}

// DeleteRecurring deletes a recurring rule
// @Summary     Delete a recurring rule
// @Description Already-materialized transactions are kept
// @Tags        recurring
// @Security    BearerAuth
// @Param       id path string true "Rule ID"
// @Success     204 "Deleted"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /recurring/{id} [delete]
func (h *RecurringHandler) DeleteRecurring(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.recurringService.DeleteRecurring(userID, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
