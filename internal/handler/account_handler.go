package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"coinhub/internal/auth"
	"coinhub/internal/model"
	"coinhub/internal/service"
)

// AccountHandler handles account endpoints.
type AccountHandler struct {
	accountService service.AccountService
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(accountService service.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// CreateAccountRequest represents a new account.
type CreateAccountRequest struct {
	Name           string           `json:"name" validate:"required"`
	InitialBalance *decimal.Decimal `json:"initialBalance" validate:"required" swaggertype:"number"`
	Currency       string           `json:"currency" validate:"required"`
}

// UpdateAccountRequest lists the account fields that may change.
type UpdateAccountRequest struct {
	Name           *string          `json:"name"`
	InitialBalance *decimal.Decimal `json:"initialBalance" swaggertype:"number"`
	Currency       *string          `json:"currency"`
}

// AccountResponse wraps one account.
type AccountResponse struct {
	Message string        `json:"message"`
	Account model.Account `json:"account"`
}

// AccountsResponse wraps a list of accounts.
type AccountsResponse struct {
	Message  string          `json:"message"`
	Accounts []model.Account `json:"accounts"`
}

// BalanceResponse represents an account balance response.
type BalanceResponse struct {
	AccountID uint   `json:"accountId"`
	Balance   string `json:"balance"`
}

// CreateAccount godoc
// @Summary Create an account for the caller
// @Tags accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateAccountRequest true "Account data"
// @Success 201 {object} AccountResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /accounts [post]
func (h *AccountHandler) CreateAccount(c echo.Context) error {
	callerID, err := auth.CallerID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req CreateAccountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	account, err := h.accountService.CreateAccount(c.Request().Context(), callerID, service.CreateAccountInput{
		Name:           req.Name,
		InitialBalance: *req.InitialBalance,
		Currency:       req.Currency,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, AccountResponse{Message: "Account created successfully", Account: *account})
}

// ListAccounts godoc
// @Summary List the caller's accounts
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} AccountsResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /accounts [get]
func (h *AccountHandler) ListAccounts(c echo.Context) error {
	callerID, err := auth.CallerID(c)
	if err != nil {
		return respondError(c, err)
	}
	accounts, err := h.accountService.ListAccounts(c.Request().Context(), callerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, AccountsResponse{Message: "Accounts retrieved successfully", Accounts: accounts})
}

// ListAccountsByUser godoc
// @Summary List accounts of a user (the caller only)
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Success 200 {object} AccountsResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /accounts/user/{userId} [get]
func (h *AccountHandler) ListAccountsByUser(c echo.Context) error {
	callerID, err := auth.CallerID(c)
	if err != nil {
		return respondError(c, err)
	}
	userID, err := pathID(c, "userId", "user")
	if err != nil {
		return err
	}
	accounts, err := h.accountService.ListAccountsByUser(c.Request().Context(), callerID, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, AccountsResponse{Message: "Accounts retrieved successfully", Accounts: accounts})
}

// GetAccount godoc
// @Summary Get an account
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Account ID"
// @Success 200 {object} AccountResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /accounts/{id} [get]
func (h *AccountHandler) GetAccount(c echo.Context) error {
	callerID, err := auth.CallerID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id", "account")
	if err != nil {
		return err
	}
	account, err := h.accountService.GetAccount(c.Request().Context(), callerID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, AccountResponse{Message: "Account retrieved successfully", Account: *account})
}

// UpdateAccount godoc
// @Summary Update an account
// @Tags accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Account ID"
// @Param request body UpdateAccountRequest true "Fields to change"
// @Success 200 {object} AccountResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /accounts/{id} [put]
func (h *AccountHandler) UpdateAccount(c echo.Context) error {
	callerID, err := auth.CallerID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id", "account")
	if err != nil {
		return err
	}
	var req UpdateAccountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	account, err := h.accountService.UpdateAccount(c.Request().Context(), callerID, id, service.UpdateAccountInput{
		Name:           req.Name,
		InitialBalance: req.InitialBalance,
		Currency:       req.Currency,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, AccountResponse{Message: "Account updated successfully", Account: *account})
}

// DeleteAccount godoc
// @Summary Delete an account and its transactions
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Account ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /accounts/{id} [delete]
func (h *AccountHandler) DeleteAccount(c echo.Context) error {
	callerID, err := auth.CallerID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id", "account")
	if err != nil {
		return err
	}
	if err := h.accountService.DeleteAccount(c.Request().Context(), callerID, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Account deleted successfully"})
}

// GetBalance godoc
// @Summary Get account balance
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Account ID"
// @Success 200 {object} BalanceResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /accounts/{id}/balance [get]
func (h *AccountHandler) GetBalance(c echo.Context) error {
	callerID, err := auth.CallerID(c)
	if err != nil {
		return respondError(c, err)
	}
	accountID, err := pathID(c, "id", "account")
	if err != nil {
		return err
	}

	balance, err := h.accountService.GetBalance(c.Request().Context(), callerID, accountID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, BalanceResponse{
		AccountID: accountID,
		Balance:   balance.StringFixed(2),
	})
}
