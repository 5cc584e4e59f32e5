package services

import "fmt"

// FailureKind classifies an expected business failure
type FailureKind int

const (
	KindArgument FailureKind = iota + 1
	KindOutOfRange
	KindNotFound
	KindNullAccount
	KindInvalidOperation
	KindNoResults
	KindRateProvider
)

func (k FailureKind) String() string {
	switch k {
	case KindArgument:
		return "argument"
	case KindOutOfRange:
		return "out_of_range"
	case KindNotFound:
		return "not_found"
	case KindNullAccount:
		return "null_account"
	case KindInvalidOperation:
		return "invalid_operation"
	case KindNoResults:
		return "no_results"
	case KindRateProvider:
		return "rate_provider"
	default:
		return "unknown"
	}
}

// Messages carried by ServiceError. Callers depend on the exact wording.
const (
	MsgAccountNotFound          = "Could not find an account with the provided ID"
	MsgNegativeAmount           = "Cannot give a negative amount"
	MsgAmountPrecision          = "Amount cannot have more than 4 decimal places"
	MsgInsufficientFunds        = "Insufficient funds"
	MsgTransferBothMissing      = "Could not find the sender and recipient account(s)"
	MsgTransferSenderMissing    = "Could not find the sender account(s)"
	MsgTransferRecipientMissing = "Could not find the recipient account(s)"
	MsgNullAccount              = "The account you are trying to access does not exist"
	MsgNoResults                = "No accounts matched the query"
	MsgRateProviderFailed       = "Could not retrieve currency conversion rates"
)

// ServiceError is the typed failure returned by the account service for expected conditions.
// Unexpected failures (for example an unavailable store) are returned as plain wrapped errors.
type ServiceError struct {
	Kind    FailureKind
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Is matches another ServiceError of the same kind. A target without a message
// matches on kind alone, so the Err* sentinels below work with errors.Is.
func (e *ServiceError) Is(target error) bool {
	t, ok := target.(*ServiceError)
	if !ok {
		return false
	}
	if e.Kind != t.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// Sentinels for errors.Is matching by kind
var (
	ErrArgument         = &ServiceError{Kind: KindArgument}
	ErrOutOfRange       = &ServiceError{Kind: KindOutOfRange}
	ErrNotFound         = &ServiceError{Kind: KindNotFound}
	ErrNullAccount      = &ServiceError{Kind: KindNullAccount}
	ErrInvalidOperation = &ServiceError{Kind: KindInvalidOperation}
	ErrNoResults        = &ServiceError{Kind: KindNoResults}
	ErrRateProvider     = &ServiceError{Kind: KindRateProvider}
)

func newServiceError(kind FailureKind, message string) *ServiceError {
	return &ServiceError{Kind: kind, Message: message}
}

func wrapServiceError(kind FailureKind, message string, err error) *ServiceError {
	return &ServiceError{Kind: kind, Message: message, Err: err}
}
