package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"

	"simple-bank-api/internal/config"
	"simple-bank-api/internal/dto"
	"simple-bank-api/internal/errors"
	"simple-bank-api/internal/formatters"
	"simple-bank-api/internal/models"
	"simple-bank-api/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// PaginationHeader carries the page metadata of a list response as JSON
const PaginationHeader = "X-Pagination"

// AccountHandler handles account-related HTTP requests
type AccountHandler struct {
	accountService services.AccountServiceInterface
	formatters     *formatters.Registry
	pagination     config.PaginationConfig
	logger         *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(
	accountService services.AccountServiceInterface,
	formatters *formatters.Registry,
	pagination config.PaginationConfig,
	logger *slog.Logger,
) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		formatters:     formatters,
		pagination:     pagination,
		logger:         logger,
	}
}

// RegisterRoutes mounts the account endpoints on g
func (h *AccountHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.CreateAccount)
	g.GET("/all", h.GetAllAccounts)
	g.POST("/transfers", h.TransferFunds)
	g.GET("/:id", h.GetAccount)
	g.GET("/:id/converts", h.GetConvertedCurrency)
	g.GET("/:id/converts/:currencyCodes", h.GetConvertedCurrency)
	g.POST("/:id/deposits", h.DepositFunds)
	g.POST("/:id/withdrawals", h.WithdrawFunds)
}

// GetAccount retrieves a specific account by ID
// @Summary Get account by ID
// @Tags Accounts
// @Produce json,text/csv
// @Param id path string true "Account ID (UUID)"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} errors.ErrorResponse "ACCOUNT_002 - Invalid account ID format"
// @Failure 404 {object} errors.ErrorResponse "ACCOUNT_001 - Account not found"
// @Router /api/accounts/{id} [get]
func (h *AccountHandler) GetAccount(c echo.Context) error {
	id, err := parseAccountID(c.Param("id"))
	if err != nil {
		return SendError(c, errors.AccountInvalidID)
	}

	account, err := h.accountService.FindAccount(c.Request().Context(), id)
	if err != nil {
		return h.sendServiceError(c, err)
	}

	response := dto.NewAccountResponse(account)
	return h.respond(c, http.StatusOK, formatters.KindAccount, response, response)
}

// GetAllAccounts retrieves the accounts matching the query, one page at a time.
// Page metadata is returned in the X-Pagination header; an empty match yields 204.
// @Summary Search, filter, sort and page accounts
// @Tags Accounts
// @Produce json,text/csv
// @Param searchTerm query string false "Exact name match, case-insensitive"
// @Param filterTerm query string false "Name substring match, case-insensitive"
// @Param sortBy query string false "NAME or BALANCE"
// @Param sortOrder query string false "ASC or DESC"
// @Param pageSize query int false "Page size"
// @Param currentPage query int false "Page number, starting at 1"
// @Success 200 {array} dto.AccountResponse
// @Success 204 "No accounts matched the query"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001/VALIDATION_004 - Invalid query"
// @Router /api/accounts/all [get]
func (h *AccountHandler) GetAllAccounts(c echo.Context) error {
	query := models.NewAccountQuery()
	if h.pagination.DefaultPageSize > 0 {
		query.PageSize = h.pagination.DefaultPageSize
	}

	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &query); err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("pageSize and currentPage must be integers"))
	}
	if h.pagination.MaxPageSize > 0 && query.PageSize > h.pagination.MaxPageSize {
		query.PageSize = h.pagination.MaxPageSize
	}

	page, err := h.accountService.GetAllAccounts(c.Request().Context(), query)
	if err != nil {
		return h.sendServiceError(c, err)
	}

	metadata, err := json.Marshal(page.Pagination)
	if err != nil {
		return h.sendSystemError(c, err)
	}
	c.Response().Header().Set(PaginationHeader, string(metadata))

	accounts := dto.NewAccountListResponse(page.Accounts)
	items := make([]interface{}, 0, len(accounts))
	for _, a := range accounts {
		items = append(items, a)
	}
	return h.respond(c, http.StatusOK, formatters.KindAccount, accounts, items...)
}

// GetConvertedCurrency expresses the account balance in other currencies
// @Summary Convert an account balance
// @Tags Accounts
// @Produce json,text/csv
// @Param id path string true "Account ID (UUID)"
// @Param currencyCodes path string false "Comma-separated currency codes; empty for all"
// @Success 200 {array} models.ConvertedBalance
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Invalid currency codes"
// @Failure 500 {object} errors.ErrorResponse "ACCOUNT_004/CURRENCY_001 - Conversion failed"
// @Router /api/accounts/{id}/converts/{currencyCodes} [get]
func (h *AccountHandler) GetConvertedCurrency(c echo.Context) error {
	id, err := parseAccountID(c.Param("id"))
	if err != nil {
		return SendError(c, errors.AccountInvalidID)
	}

	converted, err := h.accountService.GetConvertedCurrency(c.Request().Context(), id, c.Param("currencyCodes"))
	if err != nil {
		return h.sendServiceError(c, err)
	}

	items := make([]interface{}, 0, len(converted))
	for _, cb := range converted {
		items = append(items, cb)
	}
	return h.respond(c, http.StatusOK, formatters.KindConvertedBalance, converted, items...)
}

// CreateAccount opens a new account with a zero balance
// @Summary Create an account
// @Tags Accounts
// @Accept json
// @Produce json,text/csv
// @Param request body dto.CreateAccountRequest true "Account holder name"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Invalid name"
// @Router /api/accounts [post]
func (h *AccountHandler) CreateAccount(c echo.Context) error {
	var req dto.CreateAccountRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	account, err := h.accountService.CreateAccount(c.Request().Context(), req.Name)
	if err != nil {
		return h.sendServiceError(c, err)
	}

	response := dto.NewAccountResponse(account)
	return h.respond(c, http.StatusOK, formatters.KindAccount, response, response)
}

// DepositFunds adds funds to an account
// @Summary Deposit funds
// @Tags Accounts
// @Accept json
// @Produce json,text/csv
// @Param id path string true "Account ID (UUID)"
// @Param request body dto.AmountRequest true "Amount to deposit"
// @Success 200 {object} dto.AccountBalanceResponse
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_004 - Negative amount"
// @Failure 404 {object} errors.ErrorResponse "ACCOUNT_001 - Account not found"
// @Router /api/accounts/{id}/deposits [post]
func (h *AccountHandler) DepositFunds(c echo.Context) error {
	return h.changeBalance(c, h.accountService.DepositFunds)
}

// WithdrawFunds takes funds from an account
// @Summary Withdraw funds
// @Tags Accounts
// @Accept json
// @Produce json,text/csv
// @Param id path string true "Account ID (UUID)"
// @Param request body dto.AmountRequest true "Amount to withdraw"
// @Success 200 {object} dto.AccountBalanceResponse
// @Failure 400 {object} errors.ErrorResponse "ACCOUNT_003 - Insufficient funds"
// @Failure 404 {object} errors.ErrorResponse "ACCOUNT_001 - Account not found"
// @Router /api/accounts/{id}/withdrawals [post]
func (h *AccountHandler) WithdrawFunds(c echo.Context) error {
	return h.changeBalance(c, h.accountService.WithdrawFunds)
}

type balanceOperation func(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*models.Account, error)

func (h *AccountHandler) changeBalance(c echo.Context, op balanceOperation) error {
	id, err := parseAccountID(c.Param("id"))
	if err != nil {
		return SendError(c, errors.AccountInvalidID)
	}

	var req dto.AmountRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationRequiredField, errors.WithDetails(err.Error()))
	}

	account, err := op(c.Request().Context(), id, *req.Amount)
	if err != nil {
		return h.sendServiceError(c, err)
	}

	response := dto.NewAccountBalanceResponse(account)
	return h.respond(c, http.StatusOK, formatters.KindAccountBalance, response, response)
}

// TransferFunds moves funds between two accounts
// @Summary Transfer funds
// @Tags Accounts
// @Accept json
// @Produce json,text/csv
// @Param request body dto.TransferRequest true "Sender, recipient and amount"
// @Success 200 {object} dto.TransferResponse
// @Failure 400 {object} errors.ErrorResponse "ACCOUNT_003 - Insufficient funds"
// @Failure 404 {object} errors.ErrorResponse "ACCOUNT_001 - Sender and/or recipient not found"
// @Router /api/accounts/transfers [post]
func (h *AccountHandler) TransferFunds(c echo.Context) error {
	var req dto.TransferRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	senderID, err := parseAccountID(req.SenderID)
	if err != nil {
		return SendError(c, errors.AccountInvalidID, errors.WithDetails("senderId"))
	}
	recipientID, err := parseAccountID(req.RecipientID)
	if err != nil {
		return SendError(c, errors.AccountInvalidID, errors.WithDetails("recipientId"))
	}

	result, err := h.accountService.TransferFunds(c.Request().Context(), senderID, recipientID, *req.Amount)
	if err != nil {
		return h.sendServiceError(c, err)
	}

	response := dto.NewTransferResponse(result)
	return h.respond(c, http.StatusOK, formatters.KindTransfer, response, response)
}

// respond writes payload as JSON, or items through the CSV formatter for kind
func (h *AccountHandler) respond(c echo.Context, status int, kind string, payload interface{}, items ...interface{}) error {
	switch negotiate(c.Request().Header.Get(echo.HeaderAccept)) {
	case echo.MIMEApplicationJSON:
		return c.JSON(status, payload)
	case formatters.MIMETextCSV:
		body, err := h.formatters.Render(kind, items...)
		if err != nil {
			return h.sendSystemError(c, err)
		}
		return c.Blob(status, formatters.MIMETextCSV, body)
	default:
		return SendError(c, errors.RequestNotAcceptable)
	}
}

// sendServiceError maps a service failure onto the API error contract
func (h *AccountHandler) sendServiceError(c echo.Context, err error) error {
	var serviceErr *services.ServiceError
	if !stderrors.As(err, &serviceErr) {
		return h.sendSystemError(c, err)
	}

	switch serviceErr.Kind {
	case services.KindNoResults:
		return c.NoContent(http.StatusNoContent)
	case services.KindArgument:
		return SendError(c, errors.ValidationGeneral, errors.WithMessage(serviceErr.Message))
	case services.KindOutOfRange:
		return SendError(c, errors.ValidationOutOfRange, errors.WithMessage(serviceErr.Message))
	case services.KindNotFound:
		return SendError(c, errors.AccountNotFound, errors.WithMessage(serviceErr.Message))
	case services.KindInvalidOperation:
		return SendError(c, errors.AccountInsufficientBalance, errors.WithMessage(serviceErr.Message))
	case services.KindNullAccount:
		return SendError(c, errors.AccountNullAccount, errors.WithMessage(serviceErr.Message))
	case services.KindRateProvider:
		h.logger.ErrorContext(c.Request().Context(), "currency conversion failed", "error", err)
		return SendError(c, errors.CurrencyRateUnavailable, errors.WithMessage(serviceErr.Message))
	default:
		return h.sendSystemError(c, err)
	}
}

func (h *AccountHandler) sendSystemError(c echo.Context, err error) error {
	h.logger.ErrorContext(c.Request().Context(), "request failed",
		"path", c.Path(),
		"method", c.Request().Method,
		"error", err,
	)
	return SendSystemError(c)
}
