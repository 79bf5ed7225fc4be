package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "pitaka/internal/errors"
	"pitaka/internal/services"
)

// CreditLineHandler handles shared credit-line requests.
type CreditLineHandler struct {
	lineService services.CreditLineServicer
}

// NewCreditLineHandler creates a new CreditLineHandler.
func NewCreditLineHandler(lineService services.CreditLineServicer) *CreditLineHandler {
	return &CreditLineHandler{lineService: lineService}
}

// CreateCreditLineRequest represents the request payload for creating a line.
type CreateCreditLineRequest struct {
	Name              string  `json:"name" binding:"required,min=1,max=100"`
	InstitutionID     *string `json:"institution_id" binding:"omitempty,uuid"`
	TotalLimit        *int64  `json:"total_limit" binding:"omitempty,gt=0"`
	AvailableOverride *int64  `json:"available_override"`
}

// UpdateCreditLineRequest represents the request payload for updating a line.
type UpdateCreditLineRequest struct {
	Name              *string `json:"name" binding:"omitempty,min=1,max=100"`
	TotalLimit        *int64  `json:"total_limit" binding:"omitempty,gt=0"`
	AvailableOverride *int64  `json:"available_override"`
}

// CreateCreditLine creates a credit line
// @Summary     Create a credit line
// @Description Create a shared limit that multiple cards can draw from
// @Tags        credit-lines
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateCreditLineRequest true "Line details"
// @Success     201 {object} models.CreditLine
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /credit-lines [post]
func (h *CreditLineHandler) CreateCreditLine(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateCreditLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	line, err := h.lineService.CreateCreditLine(userID, req.Name, req.InstitutionID, req.TotalLimit, req.AvailableOverride)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"credit_line": line})
}

// ListCreditLines lists the user's credit lines with pooled availability
// @Summary     List credit lines
// @Tags        credit-lines
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} pagination.PageResponse[services.CreditLineWithDerived]
// @Router      /credit-lines [get]
func (h *CreditLineHandler) ListCreditLines(c *gin.Context) {
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

	resp, err := h.lineService.GetUserCreditLines(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetCreditLine returns one credit line with pooled availability
// @Summary     Get a credit line
// @Tags        credit-lines
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Line ID"
// @Success     200 {object} services.CreditLineWithDerived
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /credit-lines/{id} [get]
func (h *CreditLineHandler) GetCreditLine(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	line, err := h.lineService.GetCreditLineByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	available, err := h.lineService.AvailableCredit(line)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"credit_line": services.CreditLineWithDerived{
		CreditLine:      *line,
		AvailableCredit: available,
	}})
}

// UpdateCreditLine updates a credit line
// @Summary     Update a credit line
// @Tags        credit-lines
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Line ID"
// @Param       request body UpdateCreditLineRequest true "Fields to update"
// @Success     200 {object} models.CreditLine
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /credit-lines/{id} [patch]
func (h *CreditLineHandler) UpdateCreditLine(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateCreditLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	line, err := h.lineService.UpdateCreditLine(userID, c.Param("id"), req.Name, req.TotalLimit, req.AvailableOverride)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"credit_line": line})
}

// DeleteCreditLine deletes a credit line, detaching its cards first
// @Summary     Delete a credit line
// @Description Member cards are detached and revert to standalone limits
// @Tags        credit-lines
// @Security    BearerAuth
// @Param       id path string true "Line ID"
// @Success     204 "Deleted"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /credit-lines/{id} [delete]
func (h *CreditLineHandler) DeleteCreditLine(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.lineService.DeleteCreditLine(userID, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
