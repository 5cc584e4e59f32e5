package formatters

import (
	"bytes"
	"fmt"
	"strings"

	"simple-bank-api/internal/dto"
	"simple-bank-api/internal/models"
)

// MIMETextCSV is the media type served by the CSV formatters
const MIMETextCSV = "text/csv"

// Registry keys, one per response payload
const (
	KindAccount          = "account"
	KindAccountBalance   = "account_balance"
	KindConvertedBalance = "converted_balance"
	KindTransfer         = "transfer"
)

// Formatter appends the CSV form of one item to buf
type Formatter interface {
	Format(buf *bytes.Buffer, item interface{}) error
}

// Registry resolves formatters by payload kind. It is built once at startup and read-only afterwards.
type Registry struct {
	formatters map[string]Formatter
}

// NewRegistry creates a registry holding the given formatters
func NewRegistry(formatters map[string]Formatter) *Registry {
	r := &Registry{formatters: make(map[string]Formatter, len(formatters))}
	for kind, f := range formatters {
		r.formatters[kind] = f
	}
	return r
}

// DefaultRegistry wires the CSV formatters for every account response
func DefaultRegistry() *Registry {
	return NewRegistry(map[string]Formatter{
		KindAccount:          AccountFormatter{},
		KindAccountBalance:   AccountBalanceFormatter{},
		KindConvertedBalance: ConvertedBalanceFormatter{},
		KindTransfer:         TransferFormatter{},
	})
}

// Get returns the formatter registered under kind
func (r *Registry) Get(kind string) (Formatter, bool) {
	f, ok := r.formatters[kind]
	return f, ok
}

// Render formats items in order with the formatter registered under kind
func (r *Registry) Render(kind string, items ...interface{}) ([]byte, error) {
	f, ok := r.Get(kind)
	if !ok {
		return nil, fmt.Errorf("no formatter registered for %q", kind)
	}

	var buf bytes.Buffer
	for _, item := range items {
		if err := f.Format(&buf, item); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// AccountFormatter writes "id","name",balance
type AccountFormatter struct{}

func (AccountFormatter) Format(buf *bytes.Buffer, item interface{}) error {
	account, ok := item.(dto.AccountResponse)
	if !ok {
		return unexpectedType(KindAccount, item)
	}
	writeAccountLine(buf, account)
	return nil
}

// AccountBalanceFormatter writes the bare balance
type AccountBalanceFormatter struct{}

func (AccountBalanceFormatter) Format(buf *bytes.Buffer, item interface{}) error {
	balance, ok := item.(dto.AccountBalanceResponse)
	if !ok {
		return unexpectedType(KindAccountBalance, item)
	}
	buf.WriteString(balance.Balance.String())
	return nil
}

// ConvertedBalanceFormatter writes "CODE",amount
type ConvertedBalanceFormatter struct{}

func (ConvertedBalanceFormatter) Format(buf *bytes.Buffer, item interface{}) error {
	converted, ok := item.(models.ConvertedBalance)
	if !ok {
		return unexpectedType(KindConvertedBalance, item)
	}
	buf.WriteString(quote(converted.CurrencyCode))
	buf.WriteByte(',')
	buf.WriteString(converted.ConvertedBalance.String())
	buf.WriteByte('\n')
	return nil
}

// TransferFormatter writes the sender line followed by the recipient line
type TransferFormatter struct{}

func (TransferFormatter) Format(buf *bytes.Buffer, item interface{}) error {
	transfer, ok := item.(dto.TransferResponse)
	if !ok {
		return unexpectedType(KindTransfer, item)
	}
	writeAccountLine(buf, transfer.Sender)
	writeAccountLine(buf, transfer.Recipient)
	return nil
}

func writeAccountLine(buf *bytes.Buffer, account dto.AccountResponse) {
	buf.WriteString(quote(account.ID.String()))
	buf.WriteByte(',')
	buf.WriteString(quote(account.Name))
	buf.WriteByte(',')
	buf.WriteString(account.Balance.String())
	buf.WriteByte('\n')
}

// quote always encloses s in double quotes, doubling any embedded quote
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func unexpectedType(kind string, item interface{}) error {
	return fmt.Errorf("%s formatter cannot format %T", kind, item)
}
