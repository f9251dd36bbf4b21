package beta

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/seenimoa/regwacc/internal/infra"
)

// DefaultUserAgent is sent with scrape requests.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// Scrape reads beta from an HTML quote page. The URL template must contain
// one %s, replaced by the escaped ticker.
type Scrape struct {
	urlTemplate string
	client      *http.Client
	cache       *infra.Cache[float64]
	logger      *zap.Logger
}

// NewScrape creates an HTML scrape source.
func NewScrape(urlTemplate string, client *http.Client, logger *zap.Logger) *Scrape {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scrape{
		urlTemplate: urlTemplate,
		client:      client,
		cache:       infra.NewCache[float64](time.Hour, DefaultCacheEntries),
		logger:      logger.With(zap.String("source", "scrape")),
	}
}

// Name returns the source name.
func (s *Scrape) Name() string { return "scrape" }

// Lookup fetches and parses the quote page for ticker.
func (s *Scrape) Lookup(ctx context.Context, ticker string) (float64, bool) {
	if ticker == "" {
		return 0, false
	}
	if v, ok := s.cache.Get(ticker); ok {
		return v, true
	}

	doc, err := s.fetchPage(ctx, ticker)
	if err != nil {
		s.logger.Debug("fetch failed", zap.String("ticker", ticker), zap.Error(err))
		return 0, false
	}
	v, ok := ParseBetaHTML(doc)
	if ok {
		s.cache.Set(ticker, v)
	}
	return v, ok
}

func (s *Scrape) fetchPage(ctx context.Context, ticker string) (*goquery.Document, error) {
	endpoint := fmt.Sprintf(s.urlTemplate, url.PathEscape(ticker))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1024)) //nolint:errcheck
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, endpoint)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

// ParseBetaHTML finds the first labelled beta in a page. It understands
// table rows (label cell followed by value cell) and dt/dd pairs.
func ParseBetaHTML(doc *goquery.Document) (float64, bool) {
	var (
		val   float64
		found bool
	)

	doc.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("th, td")
		if cells.Length() < 2 {
			return true
		}
		if !isBetaLabel(cells.First().Text()) {
			return true
		}
		val, found = parseBetaNumber(cells.Eq(1).Text())
		return !found
	})
	if found {
		return val, true
	}

	doc.Find("dt").EachWithBreak(func(_ int, dt *goquery.Selection) bool {
		if !isBetaLabel(dt.Text()) {
			return true
		}
		val, found = parseBetaNumber(dt.NextFiltered("dd").Text())
		return !found
	})
	return val, found
}

func isBetaLabel(s string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(s)), "beta")
}

// parseBetaNumber parses values such as "0.65", " 0.65 ", "N/A" or "--".
func parseBetaNumber(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" || s == "--" || strings.EqualFold(s, "n/a") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
