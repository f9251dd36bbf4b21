package capm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/seenimoa/regwacc/internal/beta"
	"github.com/seenimoa/regwacc/internal/config"
	"github.com/seenimoa/regwacc/internal/examples"
)

// LoadDataset returns the configured example dataset, or the built-in
// one when no file is set.
func LoadDataset(cfg *config.Config) (*examples.Dataset, error) {
	if cfg == nil || cfg.Examples.File == "" {
		return examples.Default(), nil
	}
	d, err := examples.LoadFile(cfg.Examples.File)
	if err != nil {
		return nil, fmt.Errorf("load examples: %w", err)
	}
	return d, nil
}

// BuildChain assembles the beta source chain: Finnhub when a key is set,
// the HTML scraper when a URL template is set, then the example dataset.
func BuildChain(cfg *config.Config, data *examples.Dataset, logger *zap.Logger) *beta.Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = &config.Config{}
	}

	var sources []beta.Source
	if cfg.Beta.FinnhubKey != "" {
		sources = append(sources, beta.NewFinnhub(beta.FinnhubOptions{
			APIKey:    cfg.Beta.FinnhubKey,
			BaseURL:   cfg.Beta.FinnhubURL,
			CacheTTL:  cfg.Beta.CacheDuration(),
			RateLimit: cfg.Beta.RatePerMin,
			Logger:    logger,
		}))
	}
	if cfg.Beta.ScrapeURL != "" {
		sources = append(sources, beta.NewScrape(cfg.Beta.ScrapeURL, nil, logger))
	}
	if data != nil {
		sources = append(sources, beta.NewExamples(data))
	}

	chain := beta.NewChain(logger, cfg.Beta.Timeout(), sources...)
	logger.Debug("beta chain ready", zap.Strings("sources", chain.Sources()))
	return chain
}

// NewFromConfig wires a Service from configuration.
func NewFromConfig(cfg *config.Config, logger *zap.Logger) (*Service, error) {
	data, err := LoadDataset(cfg)
	if err != nil {
		return nil, err
	}
	resolver := beta.NewResolver(BuildChain(cfg, data, logger))
	return NewService(resolver, data, logger), nil
}
