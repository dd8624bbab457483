// Package pricefeed supplies spot prices from the CoinGecko REST API with a
// short-lived cache, plus an optional websocket ticker stream.
package pricefeed

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Source describes how fresh a quote is.
type Source string

const (
	SourceFresh      Source = "fresh"       // fetched or cached within TTL
	SourceStaleCache Source = "stale_cache" // fetch failed, serving expired cache
	SourceDefault    Source = "default"     // no data at all
)

// Quote is a price with its provenance. Consumers can skip acting on
// degraded quotes.
type Quote struct {
	Price  float64 `json:"price"`
	Source Source  `json:"source"`
}

// Config holds client settings.
type Config struct {
	BaseURL    string
	CacheTTL   time.Duration
	Timeout    time.Duration
	VsCurrency string
}

type cachedPrice struct {
	price     float64
	fetchedAt time.Time
}

// Client fetches simple prices from CoinGecko. Instrument names are
// CoinGecko coin ids (bitcoin, ethereum, ...).
type Client struct {
	baseURL    string
	vsCurrency string
	cacheTTL   time.Duration
	httpClient *http.Client
	logger     zerolog.Logger

	mu    sync.Mutex
	cache map[string]cachedPrice
}

// NewClient creates a price client.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		vsCurrency: cfg.VsCurrency,
		cacheTTL:   cfg.CacheTTL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With().Str("component", "pricefeed").Logger(),
		cache:      make(map[string]cachedPrice),
	}
}

// GetQuote returns the current price for one instrument. Within the cache
// TTL the cached price is served without a network call. On fetch failure
// an expired cache entry is served as stale; with no cache at all a zero
// default quote is returned along with the error.
func (c *Client) GetQuote(instrument string) (Quote, error) {
	c.mu.Lock()
	cached, haveCache := c.cache[instrument]
	c.mu.Unlock()

	if haveCache && time.Since(cached.fetchedAt) < c.cacheTTL {
		return Quote{Price: cached.price, Source: SourceFresh}, nil
	}

	prices, err := c.fetchPrices([]string{instrument})
	if err == nil {
		if price, ok := prices[instrument]; ok {
			c.store(instrument, price)
			return Quote{Price: price, Source: SourceFresh}, nil
		}
		err = fmt.Errorf("pricefeed: no price returned for %s", instrument)
	}

	if haveCache {
		c.logger.Debug().Str("instrument", instrument).Err(err).Msg("serving stale cached price")
		return Quote{Price: cached.price, Source: SourceStaleCache}, nil
	}
	return Quote{Source: SourceDefault}, err
}

// GetQuotes fetches prices for several instruments in one request. Every
// requested instrument gets an entry; failures degrade per instrument to
// stale cache or the zero default.
func (c *Client) GetQuotes(instruments []string) map[string]Quote {
	quotes := make(map[string]Quote, len(instruments))

	var missing []string
	for _, instrument := range instruments {
		c.mu.Lock()
		cached, ok := c.cache[instrument]
		c.mu.Unlock()
		if ok && time.Since(cached.fetchedAt) < c.cacheTTL {
			quotes[instrument] = Quote{Price: cached.price, Source: SourceFresh}
		} else {
			missing = append(missing, instrument)
		}
	}
	if len(missing) == 0 {
		return quotes
	}

	prices, err := c.fetchPrices(missing)
	for _, instrument := range missing {
		if err == nil {
			if price, ok := prices[instrument]; ok {
				c.store(instrument, price)
				quotes[instrument] = Quote{Price: price, Source: SourceFresh}
				continue
			}
		}
		c.mu.Lock()
		cached, ok := c.cache[instrument]
		c.mu.Unlock()
		if ok {
			quotes[instrument] = Quote{Price: cached.price, Source: SourceStaleCache}
		} else {
			quotes[instrument] = Quote{Source: SourceDefault}
		}
	}
	if err != nil {
		c.logger.Warn().Err(err).Int("instruments", len(missing)).Msg("price fetch failed")
	}
	return quotes
}

// UpdatePrice injects a price from an external source (the websocket
// stream) into the cache so REST polling can skip it.
func (c *Client) UpdatePrice(instrument string, price float64) {
	c.store(instrument, price)
}

// ClearCache drops all cached prices.
func (c *Client) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]cachedPrice)
}

func (c *Client) store(instrument string, price float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[instrument] = cachedPrice{price: price, fetchedAt: time.Now()}
}

func (c *Client) fetchPrices(instruments []string) (map[string]float64, error) {
	params := url.Values{}
	params.Set("ids", strings.Join(instruments, ","))
	params.Set("vs_currencies", c.vsCurrency)

	endpoint := fmt.Sprintf("%s/simple/price?%s", c.baseURL, params.Encode())

	resp, err := c.httpClient.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("error fetching prices: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error: %s", string(body))
	}

	var raw map[string]map[string]float64
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("error parsing prices: %w", err)
	}

	prices := make(map[string]float64, len(raw))
	for id, currencies := range raw {
		if price, ok := currencies[c.vsCurrency]; ok {
			prices[id] = price
		}
	}
	return prices, nil
}
