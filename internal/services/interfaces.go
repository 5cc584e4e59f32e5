package services

import (
	"context"
	"time"

	"simple-bank-api/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountServiceInterface defines account-related business operations.
// Expected failures are returned as *ServiceError.
type AccountServiceInterface interface {
	CreateAccount(ctx context.Context, name string) (*models.Account, error)
	FindAccount(ctx context.Context, id uuid.UUID) (*models.Account, error)
	GetAllAccounts(ctx context.Context, query models.AccountQuery) (*models.AccountPage, error)
	DepositFunds(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*models.Account, error)
	WithdrawFunds(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*models.Account, error)
	TransferFunds(ctx context.Context, senderID, recipientID uuid.UUID, amount decimal.Decimal) (*models.TransferResult, error)
	GetConvertedCurrency(ctx context.Context, id uuid.UUID, currencyCodes string) ([]models.ConvertedBalance, error)
}

// CurrencyRateProviderInterface supplies conversion rates from the base currency.
// An empty code list means every supported currency. Codes come back upper-cased.
type CurrencyRateProviderInterface interface {
	GetConversionRates(ctx context.Context, currencyCodes string) ([]models.CurrencyRate, error)
}

// RateCacheInterface stores conversion rate lookups keyed by the normalized code list
type RateCacheInterface interface {
	Get(ctx context.Context, key string) ([]models.CurrencyRate, bool, error)
	Set(ctx context.Context, key string, rates []models.CurrencyRate) error
}

type MetricsRecorderInterface interface {
	IncrementCounter(name string, tags map[string]string)
	RecordProcessingTime(name string, duration time.Duration)
	RecordGauge(name string, value float64, tags map[string]string)
}

type CircuitBreakerInterface interface {
	IsOpen() bool
	RecordSuccess()
	RecordFailure()
	GetState() models.CircuitBreakerState
	Reset()
	GetFailureCount() int
}
