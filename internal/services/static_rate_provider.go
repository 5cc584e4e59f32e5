package services

import (
	"context"
	"sort"
	"strings"

	"simple-bank-api/internal/models"

	"github.com/shopspring/decimal"
)

// StaticRateProvider answers every request with one fixed rate.
// It is used when no currency API key is configured.
type StaticRateProvider struct {
	rate      decimal.Decimal
	supported []string
}

// NewStaticRateProvider returns rate for each requested code. An empty request yields the supported codes.
func NewStaticRateProvider(rate decimal.Decimal, supported ...string) CurrencyRateProviderInterface {
	codes := make([]string, 0, len(supported))
	for _, code := range supported {
		codes = append(codes, strings.ToUpper(code))
	}
	sort.Strings(codes)
	return &StaticRateProvider{rate: rate, supported: codes}
}

func (p *StaticRateProvider) GetConversionRates(ctx context.Context, currencyCodes string) ([]models.CurrencyRate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	codes := models.ParseCurrencyCodes(currencyCodes)
	if len(codes) == 0 {
		codes = p.supported
	}

	rates := make([]models.CurrencyRate, 0, len(codes))
	for _, code := range codes {
		rates = append(rates, models.CurrencyRate{Code: code, Rate: p.rate})
	}
	return rates, nil
}
