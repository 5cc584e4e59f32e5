package dto

import (
	"simple-bank-api/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account Request DTOs

// CreateAccountRequest represents the request payload for opening an account.
// The name is checked by the account service so its messages reach the client unchanged.
type CreateAccountRequest struct {
	Name string `json:"name"`
}

// AmountRequest represents the request payload for a deposit or withdrawal.
// The amount may be sent as a JSON number or a numeric string.
type AmountRequest struct {
	Amount *decimal.Decimal `json:"amount" validate:"required"`
}

// TransferRequest represents the request payload for transferring funds between accounts
type TransferRequest struct {
	SenderID    string           `json:"senderId" validate:"required,uuid"`
	RecipientID string           `json:"recipientId" validate:"required,uuid"`
	Amount      *decimal.Decimal `json:"amount" validate:"required"`
}

// Account Response DTOs

// AccountResponse represents a single account in API responses
type AccountResponse struct {
	ID      uuid.UUID       `json:"id"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// NewAccountResponse converts an account for the wire
func NewAccountResponse(a *models.Account) AccountResponse {
	return AccountResponse{ID: a.ID, Name: a.Name, Balance: a.Balance}
}

// NewAccountListResponse converts a page of accounts for the wire
func NewAccountListResponse(accounts []models.Account) []AccountResponse {
	list := make([]AccountResponse, 0, len(accounts))
	for i := range accounts {
		list = append(list, NewAccountResponse(&accounts[i]))
	}
	return list
}

// AccountBalanceResponse is returned after a deposit or withdrawal
type AccountBalanceResponse struct {
	ID      uuid.UUID       `json:"id"`
	Balance decimal.Decimal `json:"balance"`
}

// NewAccountBalanceResponse converts an account into its balance view
func NewAccountBalanceResponse(a *models.Account) AccountBalanceResponse {
	return AccountBalanceResponse{ID: a.ID, Balance: a.Balance}
}

// TransferResponse represents the response after a successful transfer
type TransferResponse struct {
	Sender    AccountResponse `json:"sender"`
	Recipient AccountResponse `json:"recipient"`
}

// NewTransferResponse converts a transfer result for the wire
func NewTransferResponse(result *models.TransferResult) TransferResponse {
	return TransferResponse{
		Sender:    NewAccountResponse(result.Sender),
		Recipient: NewAccountResponse(result.Recipient),
	}
}

// ConvertedBalanceResponse is one entry of a currency conversion response
type ConvertedBalanceResponse = models.ConvertedBalance

// HealthResponse represents the health check payload
type HealthResponse struct {
	Status   string            `json:"status"`
	Checks   map[string]string `json:"checks,omitempty"`
	Database string            `json:"database,omitempty"`
}
