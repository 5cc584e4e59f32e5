package validation

import (
	"fmt"

	"simple-bank-api/internal/models"
)

// Messages returned by the rules. Callers depend on the exact wording.
const (
	MsgNameEmpty        = "Name field cannot be empty or white space"
	MsgNameInvalidChars = "Name cannot contain special characters or numbers"
	MsgCurrencyCodes    = "Cannot include numbers or special characters in currency codes. Please enter 3-letter currency codes separated by commas if entering multiple codes."
	MsgQueryTerms       = "Search and filter terms cannot contain special characters or numbers"
	MsgPageSize         = "Page size must be greater than 0"
	MsgPageNumber       = "Page number must be greater than 0"
	MsgSortBy           = "Must sort by one of the allowed values or leave the field empty."
	MsgSortOrder        = "Must order by one of the allowed values or leave the field empty."
)

// RuleKind distinguishes malformed input from numeric input outside its domain
type RuleKind int

const (
	KindInvalidArgument RuleKind = iota + 1
	KindOutOfRange
)

// RuleError is returned by a Rule when its input is rejected
type RuleError struct {
	Kind    RuleKind
	Field   string
	Message string
}

func (e *RuleError) Error() string {
	return e.Message
}

func invalidArgument(field, message string) *RuleError {
	return &RuleError{Kind: KindInvalidArgument, Field: field, Message: message}
}

func outOfRange(field, message string) *RuleError {
	return &RuleError{Kind: KindOutOfRange, Field: field, Message: message}
}

// Rule checks a raw input and returns a *RuleError when it is rejected
type Rule interface {
	Validate(value interface{}) error
}

// NameRule checks account holder names
type NameRule struct {
	v *Validator
}

// NewNameRule creates a name rule backed by v
func NewNameRule(v *Validator) *NameRule {
	return &NameRule{v: v}
}

// Validate implements Rule for a string name
func (r *NameRule) Validate(value interface{}) error {
	name, ok := value.(string)
	if !ok {
		return fmt.Errorf("name rule expects a string, got %T", value)
	}

	if err := r.v.Var(name, "not_blank"); err != nil {
		return invalidArgument("name", MsgNameEmpty)
	}
	if err := r.v.Var(name, "letters_spaces"); err != nil {
		return invalidArgument("name", MsgNameInvalidChars)
	}
	return nil
}

// CurrencyRule checks a comma-separated list of currency codes
type CurrencyRule struct {
	v *Validator
}

// NewCurrencyRule creates a currency code rule backed by v
func NewCurrencyRule(v *Validator) *CurrencyRule {
	return &CurrencyRule{v: v}
}

// Validate implements Rule for a comma-separated code list
func (r *CurrencyRule) Validate(value interface{}) error {
	codes, ok := value.(string)
	if !ok {
		return fmt.Errorf("currency rule expects a string, got %T", value)
	}

	if err := r.v.Var(codes, "currency_codes"); err != nil {
		return invalidArgument("currencyCodes", MsgCurrencyCodes)
	}
	return nil
}

// QueryRule checks an account query before it reaches the store
type QueryRule struct {
	v *Validator
}

// NewQueryRule creates a query rule backed by v
func NewQueryRule(v *Validator) *QueryRule {
	return &QueryRule{v: v}
}

// Validate implements Rule for models.AccountQuery.
// Checks run in a fixed order and the first failure wins.
func (r *QueryRule) Validate(value interface{}) error {
	var q models.AccountQuery
	switch t := value.(type) {
	case models.AccountQuery:
		q = t
	case *models.AccountQuery:
		if t == nil {
			return fmt.Errorf("query rule received a nil query")
		}
		q = *t
	default:
		return fmt.Errorf("query rule expects models.AccountQuery, got %T", value)
	}

	if r.v.Var(q.SearchTerm, "letters_spaces") != nil || r.v.Var(q.FilterTerm, "letters_spaces") != nil {
		return invalidArgument("searchTerm", MsgQueryTerms)
	}
	if err := r.v.Var(q.PageSize, "gt=0"); err != nil {
		return outOfRange("pageSize", MsgPageSize)
	}
	if err := r.v.Var(q.CurrentPage, "gt=0"); err != nil {
		return outOfRange("currentPage", MsgPageNumber)
	}
	if err := r.v.Var(q.SortBy, "sort_by"); err != nil {
		return invalidArgument("sortBy", MsgSortBy)
	}
	if err := r.v.Var(q.SortOrder, "sort_order"); err != nil {
		return invalidArgument("sortOrder", MsgSortOrder)
	}
	return nil
}
