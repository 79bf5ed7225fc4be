package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "pitaka/internal/errors"
	"pitaka/internal/services"
)

// StatementHandler handles credit-card statement requests.
type StatementHandler struct {
	statementService services.StatementServicer
}

// NewStatementHandler creates a new StatementHandler.
func NewStatementHandler(statementService services.StatementServicer) *StatementHandler {
	return &StatementHandler{statementService: statementService}
}

// GenerateStatementRequest represents the request payload for generating a
// statement for the most recently closed billing period.
type GenerateStatementRequest struct {
	CreditCardID string `json:"credit_card_id" binding:"required,uuid"`
}

// GenerateStatement generates a statement for the closed billing period
// @Summary     Generate a statement
// @Description Idempotent per card and period; regenerating returns the existing statement
// @Tags        statements
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body GenerateStatementRequest true "Card reference"
// @Success     201 {object} models.Statement
// @Failure     404 {object} ErrorResponse "Card not found"
// @Router      /statements [post]
func (h *StatementHandler) GenerateStatement(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req GenerateStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	statement, err := h.statementService.GenerateStatement(userID, req.CreditCardID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"statement": statement})
}

// ListStatements lists the user's statements
// @Summary     List statements
// @Tags        statements
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} pagination.PageResponse[models.Statement]
// @Router      /statements [get]
func (h *StatementHandler) ListStatements(c *gin.Context) {
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

	resp, err := h.statementService.GetUserStatements(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetStatement returns one statement
// @Summary     Get a statement
// @Tags        statements
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Statement ID"
// @Success     200 {object} models.Statement
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /statements/{id} [get]
func (h *StatementHandler) GetStatement(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	statement, err := h.statementService.GetStatementByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"statement": statement})
}

// MarkPaid marks a statement as paid
// @Summary     Mark a statement paid
// @Description Idempotent; a paid statement stops producing due reminders
// @Tags        statements
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Statement ID"
// @Success     200 {object} models.Statement
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /statements/{id}/pay [post]
func (h *StatementHandler) MarkPaid(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	statement, err := h.statementService.MarkPaid(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"statement": statement})
}
