package repositories

import (
	"context"
	"errors"

	"simple-bank-api/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountExists     = errors.New("account already exists")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNoResults         = errors.New("no accounts matched the query")
)

// AccountRepositoryInterface defines the contract for account storage.
// Balance mutations are applied atomically by the store; a mutation that would
// leave a balance negative is rejected with ErrInsufficientFunds and changes nothing.
type AccountRepositoryInterface interface {
	// Get returns ErrAccountNotFound when no account has the given id
	Get(ctx context.Context, id uuid.UUID) (*models.Account, error)
	// GetAll runs the account query engine and returns ErrNoResults when nothing matches
	GetAll(ctx context.Context, query models.AccountQuery) ([]models.Account, models.PaginationMetadata, error)
	Add(ctx context.Context, account *models.Account) error
	// Update applies balance += delta and returns the updated account
	Update(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (*models.Account, error)
	// Transfer debits the sender and credits the recipient in one atomic step
	Transfer(ctx context.Context, senderID, recipientID uuid.UUID, amount decimal.Decimal) (sender, recipient *models.Account, err error)
}
