package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"simple-bank-api/internal/models"
	"simple-bank-api/internal/repositories"
	"simple-bank-api/internal/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Operation names used for metrics and logs
const (
	OperationCreate   = "create"
	OperationFind     = "find"
	OperationList     = "list"
	OperationDeposit  = "deposit"
	OperationWithdraw = "withdraw"
	OperationTransfer = "transfer"
	OperationConvert  = "convert"
)

// accountService implements AccountServiceInterface interface
type accountService struct {
	accountRepo  repositories.AccountRepositoryInterface
	rateProvider CurrencyRateProviderInterface
	rules        *validation.Registry
	metrics      MetricsRecorderInterface
	logger       *slog.Logger
}

// NewAccountService creates an account service. metrics may be nil.
func NewAccountService(
	accountRepo repositories.AccountRepositoryInterface,
	rateProvider CurrencyRateProviderInterface,
	rules *validation.Registry,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) AccountServiceInterface {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &accountService{
		accountRepo:  accountRepo,
		rateProvider: rateProvider,
		rules:        rules,
		metrics:      metrics,
		logger:       logger,
	}
}

// CreateAccount opens a zero-balance account for name
func (s *accountService) CreateAccount(ctx context.Context, name string) (account *models.Account, err error) {
	defer s.observe(OperationCreate, time.Now(), &err)

	if err := s.validate(validation.RuleName, name); err != nil {
		return nil, err
	}

	account = models.NewAccount(name)
	if err := s.accountRepo.Add(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.Info("account created", "account_id", account.ID)
	return account, nil
}

// FindAccount returns the account with the given id
func (s *accountService) FindAccount(ctx context.Context, id uuid.UUID) (account *models.Account, err error) {
	defer s.observe(OperationFind, time.Now(), &err)

	return s.getAccount(ctx, id)
}

// GetAllAccounts validates the query and returns the requested page
func (s *accountService) GetAllAccounts(ctx context.Context, query models.AccountQuery) (page *models.AccountPage, err error) {
	defer s.observe(OperationList, time.Now(), &err)

	if err := s.validate(validation.RuleQuery, query); err != nil {
		return nil, err
	}

	accounts, metadata, err := s.accountRepo.GetAll(ctx, query)
	if err != nil {
		if errors.Is(err, repositories.ErrNoResults) {
			return nil, newServiceError(KindNoResults, MsgNoResults)
		}
		return nil, fmt.Errorf("failed to get accounts: %w", err)
	}

	return &models.AccountPage{Accounts: accounts, Pagination: metadata}, nil
}

// DepositFunds adds amount to the account balance
func (s *accountService) DepositFunds(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (account *models.Account, err error) {
	defer s.observe(OperationDeposit, time.Now(), &err)

	if err := checkAmount(amount); err != nil {
		return nil, err
	}

	if _, err := s.getAccount(ctx, id); err != nil {
		return nil, err
	}

	account, err = s.accountRepo.Update(ctx, id, amount)
	if err != nil {
		return nil, s.mapBalanceError(err, "failed to deposit funds")
	}

	s.logger.Info("funds deposited", "account_id", id, "amount", amount.String())
	return account, nil
}

// WithdrawFunds removes amount from the account balance.
// The store re-checks the balance atomically, so concurrent withdrawals cannot overdraw.
func (s *accountService) WithdrawFunds(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (account *models.Account, err error) {
	defer s.observe(OperationWithdraw, time.Now(), &err)

	if err := checkAmount(amount); err != nil {
		return nil, err
	}

	current, err := s.getAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.CanWithdraw(amount) {
		return nil, newServiceError(KindInvalidOperation, MsgInsufficientFunds)
	}

	account, err = s.accountRepo.Update(ctx, id, amount.Neg())
	if err != nil {
		return nil, s.mapBalanceError(err, "failed to withdraw funds")
	}

	s.logger.Info("funds withdrawn", "account_id", id, "amount", amount.String())
	return account, nil
}

// TransferFunds moves amount from the sender to the recipient. Either both balances change or neither does.
func (s *accountService) TransferFunds(ctx context.Context, senderID, recipientID uuid.UUID, amount decimal.Decimal) (result *models.TransferResult, err error) {
	defer s.observe(OperationTransfer, time.Now(), &err)

	if err := checkAmount(amount); err != nil {
		return nil, err
	}

	sender, senderErr := s.accountRepo.Get(ctx, senderID)
	recipient, recipientErr := s.accountRepo.Get(ctx, recipientID)

	senderMissing := errors.Is(senderErr, repositories.ErrAccountNotFound)
	recipientMissing := errors.Is(recipientErr, repositories.ErrAccountNotFound)
	switch {
	case senderMissing && recipientMissing:
		return nil, newServiceError(KindNotFound, MsgTransferBothMissing)
	case senderMissing:
		return nil, newServiceError(KindNotFound, MsgTransferSenderMissing)
	case recipientMissing:
		return nil, newServiceError(KindNotFound, MsgTransferRecipientMissing)
	case senderErr != nil:
		return nil, fmt.Errorf("failed to get sender account: %w", senderErr)
	case recipientErr != nil:
		return nil, fmt.Errorf("failed to get recipient account: %w", recipientErr)
	}

	if !sender.CanWithdraw(amount) {
		return nil, newServiceError(KindInvalidOperation, MsgInsufficientFunds)
	}

	sender, recipient, err = s.accountRepo.Transfer(ctx, senderID, recipientID, amount)
	if err != nil {
		return nil, s.mapBalanceError(err, "failed to transfer funds")
	}

	amountValue, _ := amount.Float64()
	s.metrics.RecordGauge("transfer_amount", amountValue, nil)
	s.logger.Info("funds transferred",
		"sender_id", senderID,
		"recipient_id", recipientID,
		"amount", amount.String(),
	)

	return &models.TransferResult{Sender: sender, Recipient: recipient}, nil
}

// GetConvertedCurrency expresses the account balance in each requested currency,
// in the order the rate provider returned the rates
func (s *accountService) GetConvertedCurrency(ctx context.Context, id uuid.UUID, currencyCodes string) (converted []models.ConvertedBalance, err error) {
	defer s.observe(OperationConvert, time.Now(), &err)

	if err := s.validate(validation.RuleCurrency, currencyCodes); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, newServiceError(KindNullAccount, MsgNullAccount)
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	rates, err := s.rateProvider.GetConversionRates(ctx, currencyCodes)
	if err != nil {
		var serviceErr *ServiceError
		if errors.As(err, &serviceErr) {
			return nil, serviceErr
		}
		return nil, wrapServiceError(KindRateProvider, MsgRateProviderFailed, err)
	}

	converted = make([]models.ConvertedBalance, 0, len(rates))
	for _, rate := range rates {
		converted = append(converted, models.ConvertedBalance{
			CurrencyCode:     rate.Code,
			ConvertedBalance: rate.Rate.Mul(account.Balance),
		})
	}

	return converted, nil
}

// checkAmount rejects amounts the store cannot hold exactly
func checkAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return newServiceError(KindOutOfRange, MsgNegativeAmount)
	}
	if !models.FitsBalanceScale(amount) {
		return newServiceError(KindOutOfRange, MsgAmountPrecision)
	}
	return nil
}

// getAccount fetches an account, mapping absence to the not-found failure
func (s *accountService) getAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	account, err := s.accountRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, newServiceError(KindNotFound, MsgAccountNotFound)
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// mapBalanceError translates store errors from a balance mutation
func (s *accountService) mapBalanceError(err error, action string) error {
	switch {
	case errors.Is(err, repositories.ErrInsufficientFunds):
		return newServiceError(KindInvalidOperation, MsgInsufficientFunds)
	case errors.Is(err, repositories.ErrAccountNotFound):
		return newServiceError(KindNotFound, MsgAccountNotFound)
	default:
		return fmt.Errorf("%s: %w", action, err)
	}
}

// validate runs the registered rule for key and converts its rejection into a ServiceError
func (s *accountService) validate(key string, value interface{}) error {
	rule, ok := s.rules.Get(key)
	if !ok {
		return fmt.Errorf("validation rule %q is not registered", key)
	}

	err := rule.Validate(value)
	if err == nil {
		return nil
	}

	var ruleErr *validation.RuleError
	if !errors.As(err, &ruleErr) {
		return fmt.Errorf("failed to validate %s: %w", key, err)
	}

	kind := KindArgument
	if ruleErr.Kind == validation.KindOutOfRange {
		kind = KindOutOfRange
	}
	return newServiceError(kind, ruleErr.Message)
}

// observe records the outcome and duration of an operation
func (s *accountService) observe(operation string, start time.Time, errp *error) {
	status := "success"
	if err := *errp; err != nil {
		var serviceErr *ServiceError
		if errors.As(err, &serviceErr) {
			status = serviceErr.Kind.String()
		} else {
			status = "error"
			s.logger.Error("account operation failed", "operation", operation, "error", err)
		}
	}

	tags := map[string]string{"operation": operation, "status": status}
	s.metrics.IncrementCounter("account_operation", tags)
	s.metrics.RecordProcessingTime("account_operation", time.Since(start))
}
