package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"time"

	cache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"crypto-support-bot/models"
)

// ExplorerService talks to an Etherscan-style block explorer API for
// gas oracle readings and wallet balances. Same caching and rate
// limiting discipline as the price provider.
type ExplorerService struct {
	baseURL string
	apiKey  string
	client  *http.Client
	cache   *cache.Cache
	limiter *rate.Limiter
}

// NewExplorerService creates a block explorer client
func NewExplorerService(baseURL, apiKey string, ttl, timeout time.Duration) *ExplorerService {
	return &ExplorerService{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		cache:   cache.New(ttl, 2*ttl),
		limiter: rate.NewLimiter(rate.Every(time.Second), 3),
	}
}

type explorerResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

func (s *ExplorerService) get(ctx context.Context, query string) (json.RawMessage, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	url := fmt.Sprintf("%s?%s&apikey=%s", s.baseURL, query, s.apiKey)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("explorer request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Error("Explorer returned non-OK status", "status", resp.StatusCode)
		return nil, fmt.Errorf("explorer: %s", resp.Status)
	}

	var body explorerResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode explorer response: %w", err)
	}

	if body.Status != "1" {
		return nil, fmt.Errorf("explorer error: %s", body.Message)
	}

	return body.Result, nil
}

// GasOracle returns the current gas price tiers in gwei
func (s *ExplorerService) GasOracle(ctx context.Context) (*models.GasQuote, error) {
	if cached, found := s.cache.Get("gas"); found {
		return cached.(*models.GasQuote), nil
	}

	result, err := s.get(ctx, "module=gastracker&action=gasoracle")
	if err != nil {
		return nil, err
	}

	var oracle struct {
		SafeGasPrice    string `json:"SafeGasPrice"`
		ProposeGasPrice string `json:"ProposeGasPrice"`
		FastGasPrice    string `json:"FastGasPrice"`
	}
	if err := json.Unmarshal(result, &oracle); err != nil {
		return nil, fmt.Errorf("decode gas oracle: %w", err)
	}

	safe, _ := strconv.ParseFloat(oracle.SafeGasPrice, 64)
	propose, _ := strconv.ParseFloat(oracle.ProposeGasPrice, 64)
	fast, _ := strconv.ParseFloat(oracle.FastGasPrice, 64)

	quote := &models.GasQuote{
		Safe:      safe,
		Propose:   propose,
		Fast:      fast,
		FetchedAt: time.Now(),
	}

	s.cache.Set("gas", quote, cache.DefaultExpiration)

	return quote, nil
}

// WalletBalance returns the ether balance of an address. The explorer
// reports wei as a decimal string; conversion goes through big.Float to
// survive balances beyond float64's integer range.
func (s *ExplorerService) WalletBalance(ctx context.Context, address string) (float64, error) {
	cacheKey := "balance:" + strings.ToLower(address)
	if cached, found := s.cache.Get(cacheKey); found {
		return cached.(float64), nil
	}

	result, err := s.get(ctx, "module=account&action=balance&address="+address+"&tag=latest")
	if err != nil {
		return 0, err
	}

	var weiStr string
	if err := json.Unmarshal(result, &weiStr); err != nil {
		return 0, fmt.Errorf("decode balance: %w", err)
	}

	wei, ok := new(big.Float).SetString(weiStr)
	if !ok {
		return 0, fmt.Errorf("invalid balance value %q", weiStr)
	}

	ether, _ := new(big.Float).Quo(wei, big.NewFloat(1e18)).Float64()

	s.cache.Set(cacheKey, ether, cache.DefaultExpiration)

	return ether, nil
}

// FormatGasQuote renders a gas oracle reading as a user-facing reply
func FormatGasQuote(q *models.GasQuote) string {
	return fmt.Sprintf("Current gas prices (gwei):\nSafe: %.0f\nStandard: %.0f\nFast: %.0f",
		q.Safe, q.Propose, q.Fast)
}
