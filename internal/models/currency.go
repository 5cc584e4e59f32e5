package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencyRate is a conversion multiplier from the base currency into Code
type CurrencyRate struct {
	Code string          `json:"code"`
	Rate decimal.Decimal `json:"rate"`
}

// ConvertedBalance is an account balance expressed in another currency
type ConvertedBalance struct {
	CurrencyCode     string          `json:"currencyCode"`
	ConvertedBalance decimal.Decimal `json:"convertedBalance"`
}

// ParseCurrencyCodes splits a comma-separated list into trimmed upper-case
// codes, dropping blanks and duplicates while keeping the first occurrence order.
func ParseCurrencyCodes(codes string) []string {
	seen := make(map[string]bool)
	var result []string
	for _, raw := range strings.Split(codes, ",") {
		code := strings.ToUpper(strings.TrimSpace(raw))
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		result = append(result, code)
	}
	return result
}

// CircuitBreakerState is the state of an outbound circuit breaker
type CircuitBreakerState int
