package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"simple-bank-api/internal/config"
	"simple-bank-api/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// APIKeyTransport adds the currency API key to every outgoing request
type APIKeyTransport struct {
	apiKey string
	base   http.RoundTripper
}

func (t *APIKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())

	query := req.URL.Query()
	query.Set("apikey", t.apiKey)
	req.URL.RawQuery = query.Encode()
	req.Header.Set("Accept", "application/json")

	return t.base.RoundTrip(req)
}

// latestRatesResponse is the body of GET /v1/latest
type latestRatesResponse struct {
	Data map[string]decimal.Decimal `json:"data"`
}

// CurrencyClient fetches conversion rates from the freecurrencyapi service
type CurrencyClient struct {
	config  *config.CurrencyConfig
	client  *http.Client
	limiter *rate.Limiter
	breaker CircuitBreakerInterface
	metrics MetricsRecorderInterface
	logger  *slog.Logger
}

// NewCurrencyClient creates a rate provider backed by the currency HTTP API. metrics may be nil.
func NewCurrencyClient(
	cfg *config.CurrencyConfig,
	breaker CircuitBreakerInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) CurrencyRateProviderInterface {
	if metrics == nil {
		metrics = noopMetrics{}
	}

	transport := &APIKeyTransport{
		apiKey: cfg.APIKey,
		base:   http.DefaultTransport,
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &CurrencyClient{
		config: cfg,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		limiter: rate.NewLimiter(limit, 1),
		breaker: breaker,
		metrics: metrics,
		logger:  logger,
	}
}

// GetConversionRates returns rates in the order codes were requested.
// With no codes every supported currency is returned, sorted by code.
func (c *CurrencyClient) GetConversionRates(ctx context.Context, currencyCodes string) ([]models.CurrencyRate, error) {
	if c.breaker.IsOpen() {
		c.metrics.IncrementCounter("currency_rate_request", map[string]string{"status": "rejected"})
		return nil, ErrCircuitBreakerOpen
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("currency API rate limit wait: %w", err)
	}

	codes := models.ParseCurrencyCodes(currencyCodes)

	data, err := c.fetchLatest(ctx, codes)
	if err != nil {
		c.breaker.RecordFailure()
		c.metrics.IncrementCounter("currency_rate_request", map[string]string{"status": "failed"})
		return nil, err
	}

	c.breaker.RecordSuccess()
	c.metrics.IncrementCounter("currency_rate_request", map[string]string{"status": "success"})

	return orderRates(data, codes)
}

func (c *CurrencyClient) fetchLatest(ctx context.Context, codes []string) (map[string]decimal.Decimal, error) {
	endpoint, err := url.Parse(strings.TrimRight(c.config.BaseURL, "/") + "/v1/latest")
	if err != nil {
		return nil, fmt.Errorf("parse currency API url: %w", err)
	}
	if len(codes) > 0 {
		query := endpoint.Query()
		query.Set("currencies", strings.Join(codes, ","))
		endpoint.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("currency API request failed", "url", endpoint.Redacted(), "error", err)
		return nil, fmt.Errorf("currency API request: %w", err)
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("currency API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("unexpected currency API response (%d): %s", resp.StatusCode, string(body))
	}

	var latest latestRatesResponse
	if err := json.Unmarshal(body, &latest); err != nil {
		return nil, fmt.Errorf("decode currency API response: %w", err)
	}

	return latest.Data, nil
}

// orderRates upper-cases the returned codes and arranges them in request order
func orderRates(data map[string]decimal.Decimal, requested []string) ([]models.CurrencyRate, error) {
	normalized := make(map[string]decimal.Decimal, len(data))
	for code, value := range data {
		normalized[strings.ToUpper(code)] = value
	}

	if len(requested) == 0 {
		rates := make([]models.CurrencyRate, 0, len(normalized))
		for code, value := range normalized {
			rates = append(rates, models.CurrencyRate{Code: code, Rate: value})
		}
		sort.Slice(rates, func(i, j int) bool { return rates[i].Code < rates[j].Code })
		return rates, nil
	}

	rates := make([]models.CurrencyRate, 0, len(requested))
	for _, code := range requested {
		value, ok := normalized[code]
		if !ok {
			return nil, fmt.Errorf("currency API returned no rate for %s", code)
		}
		rates = append(rates, models.CurrencyRate{Code: code, Rate: value})
	}
	return rates, nil
}
