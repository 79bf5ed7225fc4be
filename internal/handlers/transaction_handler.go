package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "pitaka/internal/errors"
	"pitaka/internal/models"
	"pitaka/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// CreateTransactionRequest represents the request payload for a new ledger entry.
// Amounts are centavos.
type CreateTransactionRequest struct {
	AccountID     string  `json:"account_id" binding:"required,uuid"`
	CategoryID    *string `json:"category_id" binding:"omitempty,uuid"`
	ToAccountID   *string `json:"to_account_id" binding:"omitempty,uuid"`
	Type          string  `json:"type" binding:"required,transaction_type"`
	SubType       *string `json:"sub_type" binding:"omitempty,transaction_sub_type"`
	Amount        int64   `json:"amount" binding:"required,gt=0"`
	Description   string  `json:"description" binding:"max=500"`
	Date          string  `json:"date" binding:"required"`
	FeeAmount     *int64  `json:"fee_amount" binding:"omitempty,gte=0"`
	FeeCategoryID *string `json:"fee_category_id" binding:"omitempty,uuid"`
}

// transactionFilterQuery holds the list-endpoint filter parameters.
type transactionFilterQuery struct {
	FromDate   string  `form:"from_date"`
	ToDate     string  `form:"to_date"`
	Type       string  `form:"type" binding:"omitempty,transaction_type"`
	CategoryID *string `form:"category_id" binding:"omitempty,uuid"`
	AccountID  *string `form:"account_id" binding:"omitempty,uuid"`
	MinAmount  *int64  `form:"min_amount"`
	MaxAmount  *int64  `form:"max_amount"`
}

func (q *transactionFilterQuery) toFilter() (services.TransactionFilter, error) {
	var filter services.TransactionFilter
	if q.FromDate != "" {
		from, err := time.Parse("2006-01-02", q.FromDate)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "from_date must be YYYY-MM-DD")
		}
		filter.FromDate = &from
	}
	if q.ToDate != "" {
		to, err := time.Parse("2006-01-02", q.ToDate)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "to_date must be YYYY-MM-DD")
		}
		filter.ToDate = &to
	}
	if q.Type != "" {
		t := models.TransactionType(q.Type)
		filter.Type = &t
	}
	filter.CategoryID = q.CategoryID
	filter.AccountID = q.AccountID
	filter.MinAmount = q.MinAmount
	filter.MaxAmount = q.MaxAmount
	return filter, nil
}

// CreateTransaction records a new ledger entry
// @Summary     Create a transaction
// @Description Record an income, expense, or transfer; triggers budget alert evaluation
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Account or category not found"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "date must be YYYY-MM-DD"))
		return
	}

	var subType *models.TransactionSubType
	if req.SubType != nil {
		st := models.TransactionSubType(*req.SubType)
		subType = &st
	}

	transaction, err := h.transactionService.CreateTransaction(userID, services.TransactionInput{
		AccountID:     req.AccountID,
		CategoryID:    req.CategoryID,
		ToAccountID:   req.ToAccountID,
		Type:          models.TransactionType(req.Type),
		SubType:       subType,
		Amount:        req.Amount,
		Description:   req.Description,
		Date:          date,
		FeeAmount:     req.FeeAmount,
		FeeCategoryID: req.FeeCategoryID,
		Source:        models.SourceManual,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// ListTransactions returns the user's transactions
// @Summary     List transactions
// @Description List the authenticated user's transactions, newest first, with optional filters
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Param       from_date query string false "Start date (YYYY-MM-DD)"
// @Param       to_date query string false "End date (YYYY-MM-DD)"
// @Param       type query string false "Transaction type"
// @Success     200 {object} pagination.PageResponse[models.Transaction]
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
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

	var query transactionFilterQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	filter, err := query.toFilter()
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp, err := h.transactionService.GetUserTransactions(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetTransaction returns one transaction
// @Summary     Get a transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction removes a ledger entry
// @Summary     Delete a transaction
// @Description Remove a ledger entry; derived balances adjust automatically
// @Tags        transactions
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     204 "Deleted"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(userID, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
