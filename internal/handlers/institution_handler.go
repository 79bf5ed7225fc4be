package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "pitaka/internal/errors"
	"pitaka/internal/services"
)

// InstitutionHandler handles institution-related requests.
type InstitutionHandler struct {
	institutionService services.InstitutionServicer
}

// NewInstitutionHandler creates a new InstitutionHandler.
func NewInstitutionHandler(institutionService services.InstitutionServicer) *InstitutionHandler {
	return &InstitutionHandler{institutionService: institutionService}
}

// InstitutionRequest represents the request payload for creating or updating
// an institution.
type InstitutionRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=100"`
	Notes string `json:"notes" binding:"max=500"`
}

// CreateInstitution creates an institution
// @Summary     Create an institution
// @Tags        institutions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body InstitutionRequest true "Institution details"
// @Success     201 {object} models.Institution
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /institutions [post]
func (h *InstitutionHandler) CreateInstitution(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req InstitutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	institution, err := h.institutionService.CreateInstitution(userID, req.Name, req.Notes)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"institution": institution})
}

// ListInstitutions lists the user's institutions
// @Summary     List institutions
// @Tags        institutions
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} pagination.PageResponse[models.Institution]
// @Router      /institutions [get]
func (h *InstitutionHandler) ListInstitutions(c *gin.Context) {
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

	resp, err := h.institutionService.GetUserInstitutions(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetInstitution returns one institution
// @Summary     Get an institution
// @Tags        institutions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Institution ID"
// @Success     200 {object} models.Institution
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /institutions/{id} [get]
func (h *InstitutionHandler) GetInstitution(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	institution, err := h.institutionService.GetInstitutionByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"institution": institution})
}

// UpdateInstitution updates an institution
// @Summary     Update an institution
// @Tags        institutions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Institution ID"
// @Param       request body InstitutionRequest true "Fields to update"
// @Success     200 {object} models.Institution
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /institutions/{id} [patch]
func (h *InstitutionHandler) UpdateInstitution(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req InstitutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	institution, err := h.institutionService.UpdateInstitution(userID, c.Param("id"), req.Name, req.Notes)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"institution": institution})
}

// DeleteInstitution deletes an institution, unlinking accounts and lines
// @Summary     Delete an institution
// @Description Accounts and credit lines referencing it are unlinked, not deleted
// @Tags        institutions
// @Security    BearerAuth
// @Param       id path string true "Institution ID"
// @Success     204 "Deleted"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /institutions/{id} [delete]
func (h *InstitutionHandler) DeleteInstitution(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.institutionService.DeleteInstitution(userID, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
