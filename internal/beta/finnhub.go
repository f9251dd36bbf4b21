package beta

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/seenimoa/regwacc/internal/infra"
)

// DefaultFinnhubURL is the Finnhub REST base.
const DefaultFinnhubURL = "https://finnhub.io/api/v1"

// FinnhubOptions configures the Finnhub source.
type FinnhubOptions struct {
	APIKey    string
	BaseURL   string        // defaults to DefaultFinnhubURL
	CacheTTL  time.Duration // defaults to one hour
	CacheSize int           // defaults to DefaultCacheEntries
	RateLimit int           // requests per minute; 0 disables limiting
	Client    *http.Client
	Logger    *zap.Logger
}

// DefaultCacheEntries bounds each live source's cache. Tickers come from
// clients, so misses must not accumulate without limit.
const DefaultCacheEntries = 1024

// defaultFetchTimeout bounds a shared Finnhub request when the client has
// no timeout of its own.
const defaultFetchTimeout = 10 * time.Second

// Finnhub reads beta from Finnhub's basic-financials endpoint.
// Without an API key it is inert and always reports absence.
type Finnhub struct {
	apiKey       string
	baseURL      string
	client       *http.Client
	fetchTimeout time.Duration
	cache        *infra.Cache[finnhubHit]
	limiter      *infra.RateLimiter
	group        singleflight.Group
	logger       *zap.Logger
}

// finnhubHit caches both hits and misses so a ticker Finnhub does not
// cover is not re-queried on every request.
type finnhubHit struct {
	value float64
	ok    bool
}

// NewFinnhub creates a Finnhub source.
func NewFinnhub(opts FinnhubOptions) *Finnhub {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultFinnhubURL
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheEntries
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: defaultFetchTimeout}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	fetchTimeout := opts.Client.Timeout
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}
	return &Finnhub{
		apiKey:       opts.APIKey,
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		client:       opts.Client,
		fetchTimeout: fetchTimeout,
		cache:        infra.NewCache[finnhubHit](opts.CacheTTL, opts.CacheSize),
		limiter:      infra.NewRateLimiter(opts.RateLimit, time.Minute),
		logger:       opts.Logger.With(zap.String("source", "finnhub")),
	}
}

// Name returns the source name.
func (f *Finnhub) Name() string { return "finnhub" }

// Enabled reports whether an API key is configured.
func (f *Finnhub) Enabled() bool { return f.apiKey != "" }

// Lookup returns the first non-zero of metric.beta, metric.beta_2y and
// metric.beta_5y. Every failure is logged and folded into absence.
func (f *Finnhub) Lookup(ctx context.Context, ticker string) (float64, bool) {
	if !f.Enabled() || ticker == "" {
		return 0, false
	}
	if hit, ok := f.cache.Get(ticker); ok {
		return hit.value, hit.ok
	}

	// The fetch is shared by every caller in the flight and must not inherit
	// the first caller's deadline; each caller still waits on its own ctx.
	ch := f.group.DoChan(ticker, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.fetchTimeout)
		defer cancel()
		v, err := f.fetch(fetchCtx, ticker)
		if err != nil {
			return finnhubHit{}, err
		}
		return v, nil
	})

	select {
	case <-ctx.Done():
		return 0, false
	case res := <-ch:
		if res.Err != nil {
			f.logger.Debug("lookup failed", zap.String("ticker", ticker), zap.Error(res.Err))
			return 0, false
		}
		hit := res.Val.(finnhubHit)
		return hit.value, hit.ok
	}
}

type finnhubMetricResponse struct {
	Metric map[string]any `json:"metric"`
}

// fetch queries Finnhub once. Transport and status errors are returned
// uncached; a well-formed response without beta is cached as a miss.
func (f *Finnhub) fetch(ctx context.Context, ticker string) (finnhubHit, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return finnhubHit{}, fmt.Errorf("rate limit: %w", err)
	}

	q := url.Values{}
	q.Set("symbol", ticker)
	q.Set("metric", "all")
	q.Set("token", f.apiKey)
	endpoint := f.baseURL + "/stock/metric?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return finnhubHit{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return finnhubHit{}, fmt.Errorf("GET stock/metric: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return finnhubHit{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload finnhubMetricResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return finnhubHit{}, fmt.Errorf("decode stock/metric: %w", err)
	}

	hit := finnhubHit{}
	for _, key := range []string{"beta", "beta_2y", "beta_5y"} {
		if v, ok := payload.Metric[key].(float64); ok && v != 0 {
			hit = finnhubHit{value: v, ok: true}
			break
		}
	}
	f.cache.Set(ticker, hit)
	return hit, nil
}
