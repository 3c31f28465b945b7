// Package market implements the quote provider over the Financial Modeling
// Prep API. Lookups are cached (redis when configured, an in-process cache
// otherwise) so repeated trades against the same ticker do not hammer the
// upstream. Without an API key the client serves deterministic simulated
// quotes, which keeps local development and tests offline.
package market

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"papertrade/src/config"
	"papertrade/src/utils"
	redis_utils "papertrade/src/utils/redis"
)

var ErrTickerNotFound = errors.New("ticker not found")

type Client struct {
	http     *resty.Client
	apiKey   string
	cacheTTL time.Duration
	redis    *redis_utils.RedisHandler
	local    *utils.Cache[map[string]Quote]
}

// NewClient builds the market client. redisHandler may be nil; quotes then
// fall back to the in-process cache.
func NewClient(cfg *config.Config, redisHandler *redis_utils.RedisHandler) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.ExternalClients.Market.BaseURL).
		SetTimeout(cfg.ExternalClients.Market.Timeout).
		SetHeader("Accept", "application/json")

	cacheTTL := cfg.ExternalClients.Market.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = time.Minute
	}

	return &Client{
		http:     httpClient,
		apiKey:   cfg.ExternalClients.Market.APIKey,
		cacheTTL: cacheTTL,
		redis:    redisHandler,
		local:    utils.NewCache[map[string]Quote](),
	}
}

// GetQuote returns the latest quote for a ticker, serving from cache when a
// fresh entry exists.
func (c *Client) GetQuote(ctx context.Context, ticker string) (Quote, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return Quote{}, ErrTickerNotFound
	}

	if quote, ok := c.cachedQuote(ticker); ok {
		return quote, nil
	}

	quote, err := c.fetchQuote(ctx, ticker)
	if err != nil {
		return Quote{}, err
	}

	c.storeQuote(quote)
	return quote, nil
}

// QuotePrice adapts GetQuote to the price-only shape the trade engine
// consumes.
func (c *Client) QuotePrice(ctx context.Context, ticker string) (decimal.Decimal, error) {
	quote, err := c.GetQuote(ctx, ticker)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return quote.Price, nil
}

// Search finds assets matching the query string.
func (c *Client) Search(ctx context.Context, query string) ([]Asset, error) {
	if c.apiKey == "" {
		return simulatedSearch(query), nil
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"query":    query,
			"limit":    "10",
			"exchange": "NASDAQ,NYSE",
			"apikey":   c.apiKey,
		}).
		Get("/search-ticker")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("market search failed: %s", resp.Status())
	}

	var assets []Asset
	if err := json.Unmarshal(resp.Body(), &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

func (c *Client) fetchQuote(ctx context.Context, ticker string) (Quote, error) {
	if c.apiKey == "" {
		return simulatedQuote(ticker), nil
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("apikey", c.apiKey).
		Get("/quote/" + ticker)
	if err != nil {
		return Quote{}, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return Quote{}, ErrTickerNotFound
	}
	if resp.StatusCode() != http.StatusOK {
		return Quote{}, fmt.Errorf("market quote failed: %s", resp.Status())
	}

	var raw []fmpQuote
	decoder := json.NewDecoder(bytes.NewReader(resp.Body()))
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return Quote{}, err
	}
	// The upstream answers an unknown ticker with an empty list.
	if len(raw) == 0 {
		return Quote{}, ErrTickerNotFound
	}

	price, err := decimal.NewFromString(raw[0].Price.String())
	if err != nil {
		return Quote{}, fmt.Errorf("unparseable price for %s: %w", ticker, err)
	}

	return Quote{Symbol: raw[0].Symbol, Name: raw[0].Name, Price: price}, nil
}

func (c *Client) cachedQuote(ticker string) (Quote, bool) {
	if c.redis != nil {
		var quote Quote
		if err := c.redis.Get(quoteKey(ticker), &quote); err == nil {
			return quote, true
		}
		return Quote{}, false
	}

	quotes, ok := c.local.Get()
	if !ok {
		return Quote{}, false
	}
	quote, ok := quotes[ticker]
	return quote, ok
}

func (c *Client) storeQuote(quote Quote) {
	if c.redis != nil {
		_ = c.redis.Set(quoteKey(quote.Symbol), quote, c.cacheTTL)
		return
	}

	quotes, ok := c.local.Get()
	if !ok {
		quotes = map[string]Quote{}
	} else {
		copied := make(map[string]Quote, len(quotes)+1)
		for k, v := range quotes {
			copied[k] = v
		}
		quotes = copied
	}
	quotes[quote.Symbol] = quote
	c.local.Set(quotes, c.cacheTTL)
}

func quoteKey(ticker string) string {
	return "quote:" + ticker
}

// Simulated data used when no API key is configured, mirroring the upstream
// response shapes.
var simulatedPrices = map[string]string{
	"AAPL": "175.50",
	"TSLA": "250.00",
	"AMZN": "185.20",
	"MSFT": "410.00",
}

func simulatedQuote(ticker string) Quote {
	price, ok := simulatedPrices[ticker]
	if !ok {
		price = "150.00"
	}
	return Quote{
		Symbol: ticker,
		Name:   "Simulated Asset",
		Price:  decimal.RequireFromString(price),
	}
}

func simulatedSearch(query string) []Asset {
	return []Asset{
		{Symbol: "AAPL", Name: "Apple Inc.", Currency: "USD", StockExchange: "NASDAQ"},
		{Symbol: "AMZN", Name: "Amazon.com, Inc.", Currency: "USD", StockExchange: "NASDAQ"},
	}
}
