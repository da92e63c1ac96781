package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	cache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"crypto-support-bot/models"
)

// MarketService fetches live quotes from the price provider. Responses
// are cached for a short TTL and outbound calls are rate limited so a
// burst of price queries never hammers the provider's free tier.
type MarketService struct {
	baseURL string
	client  *http.Client
	cache   *cache.Cache
	limiter *rate.Limiter
}

// NewMarketService creates a price provider client. ttl bounds how
// stale a served quote can be; timeout bounds every outbound call.
func NewMarketService(baseURL string, ttl, timeout time.Duration) *MarketService {
	return &MarketService{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		cache:   cache.New(ttl, 2*ttl),
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 5),
	}
}

// GetQuote returns the current quote for a ticker symbol. The symbol is
// resolved through the ticker table first; unmapped symbols go to the
// provider unchanged. Errors are retryable from the caller's point of
// view, never a silent empty quote.
func (s *MarketService) GetQuote(ctx context.Context, symbol string) (*models.MarketQuote, error) {
	providerID := ProviderID(symbol)
	cacheKey := "quote:" + providerID

	if cached, found := s.cache.Get(cacheKey); found {
		return cached.(*models.MarketQuote), nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd&include_24hr_change=true&include_market_cap=true&include_24hr_vol=true",
		s.baseURL, providerID)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("price provider request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Error("Price provider returned non-OK status",
			"status", resp.StatusCode,
			"providerID", providerID,
		)
		return nil, fmt.Errorf("price provider: %s", resp.Status)
	}

	var result map[string]struct {
		USD          float64 `json:"usd"`
		USDChange24h float64 `json:"usd_24h_change"`
		USDMarketCap float64 `json:"usd_market_cap"`
		USDVolume24h float64 `json:"usd_24h_vol"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode price response: %w", err)
	}

	data, ok := result[providerID]
	if !ok {
		return nil, fmt.Errorf("no price data for %q", providerID)
	}

	quote := &models.MarketQuote{
		Symbol:     strings.ToLower(symbol),
		ProviderID: providerID,
		Price:      data.USD,
		Change24h:  data.USDChange24h,
		MarketCap:  data.USDMarketCap,
		Volume24h:  data.USDVolume24h,
		FetchedAt:  time.Now(),
	}

	s.cache.Set(cacheKey, quote, cache.DefaultExpiration)

	slog.Info("Fetched market quote",
		"symbol", quote.Symbol,
		"providerID", providerID,
		"price", quote.Price,
	)

	return quote, nil
}

// FormatQuote renders a quote as a user-facing reply
func FormatQuote(q *models.MarketQuote) string {
	return fmt.Sprintf("%s: $%s (24h: %+.2f%%)\nMarket cap: $%s\n24h volume: $%s",
		strings.ToUpper(q.Symbol),
		formatAmount(q.Price),
		q.Change24h,
		formatAmount(q.MarketCap),
		formatAmount(q.Volume24h),
	)
}

// formatAmount keeps small prices precise and large caps readable
func formatAmount(v float64) string {
	switch {
	case v >= 1_000_000_000:
		return fmt.Sprintf("%.2fB", v/1_000_000_000)
	case v >= 1_000_000:
		return fmt.Sprintf("%.2fM", v/1_000_000)
	case v >= 1:
		return fmt.Sprintf("%.2f", v)
	default:
		return fmt.Sprintf("%.6f", v)
	}
}
