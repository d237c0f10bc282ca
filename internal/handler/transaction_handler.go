package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"coinhub/internal/auth"
	"coinhub/internal/model"
	"coinhub/internal/service"
)

// TransactionHandler handles transaction endpoints.
type TransactionHandler struct {
	transactionService service.TransactionService
}

// NewTransactionHandler creates a new transaction handler.
func NewTransactionHandler(transactionService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// CreateTransactionRequest represents a new transaction. Date accepts
// RFC 3339 or YYYY-MM-DD.
type CreateTransactionRequest struct {
	IsIncome    *bool            `json:"isIncome" validate:"required"`
	Amount      *decimal.Decimal `json:"amount" validate:"required" swaggertype:"number"`
	Description *string          `json:"description"`
	Date        string           `json:"date" validate:"required"`
	AccountID   uint             `json:"accountId" validate:"required"`
	CategoryID  uint             `json:"categoryId" validate:"required"`
}

// UpdateTransactionRequest lists the transaction fields that may change.
type UpdateTransactionRequest struct {
	IsIncome    *bool            `json:"isIncome"`
	Amount      *decimal.Decimal `json:"amount" swaggertype:"number"`
	Description *string          `json:"description"`
	Date        *string          `json:"date"`
	CategoryID  *uint            `json:"categoryId"`
}

// TransactionResponse wraps one transaction.
type TransactionResponse struct {
	Message     string            `json:"message"`
	Transaction model.Transaction `json:"transaction"`
}

// TransactionsResponse wraps a list of transactions.
type TransactionsResponse struct {
	Message      string              `json:"message"`
	Transactions []model.Transaction `json:"transactions"`
}

// CreateTransaction godoc
// @Summary Record a transaction on one of the caller's accounts
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTransactionRequest true "Transaction data"
// @Success 201 {object} TransactionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /transactions [post]
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	callerID, err := auth.CallerID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req CreateTransactionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return err
	}

	txn, err := h.transactionService.CreateTransaction(c.Request().Context(), callerID, service.CreateTransactionInput{
		IsIncome:    *req.IsIncome,
		Amount:      *req.Amount,
		Description: req.Description,
		Date:        date,
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, TransactionResponse{Message: "Transaction created successfully", Transaction: *txn})
}

// ListTransactions godoc
// @Summary List transactions across the caller's accounts
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} TransactionsResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /transactions [get]
func (h *TransactionHandler) ListTransactions(c echo.Context) error {
	callerID, err := auth.CallerID(c)
	if err != nil {
		return respondError(c, err)
	}
	txns, err := h.transactionService.ListTransactions(c.Request().Context(), callerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, TransactionsResponse{Message: "Transactions retrieved successfully", Transactions: txns})
}

// ListTransactionsByAccount godoc
// @Summary List transactions of one account, newest first
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param accountId path int true "Account ID"
// @Success 200 {object} TransactionsResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /transactions/account/{accountId} [get]
func (h *TransactionHandler) ListTransactionsByAccount(c echo.Context) error {
	callerID, err := auth.CallerID(c)
	if err != nil {
		return respondError(c, err)
	}
	accountID, err := pathID(c, "accountId", "account")
	if err != nil {
		return err
	}
	txns, err := h.transactionService.ListTransactionsByAccount(c.Request().Context(), callerID, accountID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, TransactionsResponse{Message: "Transactions retrieved successfully", Transactions: txns})
}

// GetTransaction godoc
// @Summary Get a transaction
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 200 {object} TransactionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	callerID, err := auth.CallerID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id", "transaction")
	if err != nil {
		return err
	}
	txn, err := h.transactionService.GetTransaction(c.Request().Context(), callerID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, TransactionResponse{Message: "Transaction retrieved successfully", Transaction: *txn})
}

// UpdateTransaction godoc
// @Summary Update a transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Param request body UpdateTransactionRequest true "Fields to change"
// @Success 200 {object} TransactionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	callerID, err := auth.CallerID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id", "transaction")
	if err != nil {
		return err
	}
	var req UpdateTransactionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	in := service.UpdateTransactionInput{
		IsIncome:    req.IsIncome,
		Amount:      req.Amount,
		Description: req.Description,
		CategoryID:  req.CategoryID,
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			return err
		}
		in.Date = &date
	}

	txn, err := h.transactionService.UpdateTransaction(c.Request().Context(), callerID, id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, TransactionResponse{Message: "Transaction updated successfully", Transaction: *txn})
}

// DeleteTransaction godoc
// @Summary Delete a transaction
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	callerID, err := auth.CallerID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id", "transaction")
	if err != nil {
		return err
	}
	if err := h.transactionService.DeleteTransaction(c.Request().Context(), callerID, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Transaction deleted successfully"})
}
