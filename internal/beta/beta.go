// Package beta resolves the equity beta used in a cost-of-equity
// calculation. A beta is either supplied directly or derived from a
// comparator ticker by walking an ordered chain of sources; the first
// source that has a value wins.
package beta

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/seenimoa/regwacc/internal/finance"
)

// --- Input sum type ---

// Input selects how the beta is obtained. It is either Direct or
// Comparator.
type Input interface {
	isInput()
}

// Direct is a caller-supplied beta.
type Direct struct {
	Value float64
}

// Comparator asks the source chain for the beta of a listed company.
type Comparator struct {
	Ticker string
}

func (Direct) isInput()     {}
func (Comparator) isInput() {}

// Estimate is a resolved beta and where it came from.
type Estimate struct {
	Value  float64 `json:"value"`
	Source string  `json:"source"`
	Ticker string  `json:"ticker,omitempty"`
}

// SourceDirect labels a caller-supplied beta.
const SourceDirect = "direct"

// --- Errors ---

// ErrNoBeta is matched by every NoBetaError.
var ErrNoBeta = errors.New("no beta available")

// NoBetaError reports that no source produced a beta for Ticker.
type NoBetaError struct {
	Ticker string
}

func (e *NoBetaError) Error() string {
	if e.Ticker == "" {
		return "no beta available: no ticker given"
	}
	return fmt.Sprintf("no beta available for %s", e.Ticker)
}

func (e *NoBetaError) Is(target error) bool { return target == ErrNoBeta }

// --- Sources ---

// Source looks up a beta for a ticker. A missing value is reported as
// ok == false, never as an error.
type Source interface {
	Name() string
	Lookup(ctx context.Context, ticker string) (value float64, ok bool)
}

// DefaultSourceTimeout bounds a single source lookup.
const DefaultSourceTimeout = 5 * time.Second

// Chain tries sources in order and returns the first present value.
type Chain struct {
	sources []Source
	timeout time.Duration
	logger  *zap.Logger
}

// NewChain builds a chain. A non-positive timeout uses DefaultSourceTimeout;
// nil sources are skipped.
func NewChain(logger *zap.Logger, timeout time.Duration, sources ...Source) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultSourceTimeout
	}
	c := &Chain{timeout: timeout, logger: logger}
	for _, s := range sources {
		if s != nil {
			c.sources = append(c.sources, s)
		}
	}
	return c
}

// Sources returns the names of the configured sources in order.
func (c *Chain) Sources() []string {
	names := make([]string, len(c.sources))
	for i, s := range c.sources {
		names[i] = s.Name()
	}
	return names
}

// Lookup walks the chain. It returns a *NoBetaError when every source
// comes up empty or the context is done.
func (c *Chain) Lookup(ctx context.Context, ticker string) (Estimate, error) {
	if ticker == "" {
		return Estimate{}, &NoBetaError{}
	}
	for _, s := range c.sources {
		if ctx.Err() != nil {
			break
		}
		v, ok := c.try(ctx, s, ticker)
		if ok {
			c.logger.Debug("beta resolved",
				zap.String("ticker", ticker),
				zap.String("source", s.Name()),
				zap.Float64("beta", v))
			return Estimate{Value: v, Source: s.Name(), Ticker: ticker}, nil
		}
	}
	c.logger.Info("no beta available", zap.String("ticker", ticker), zap.Strings("sources", c.Sources()))
	return Estimate{}, &NoBetaError{Ticker: ticker}
}

// try runs one source under the per-source timeout. A source that ignores
// its context is abandoned when the timeout fires; panics count as absence.
func (c *Chain) try(ctx context.Context, s Source, ticker string) (float64, bool) {
	sctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	type outcome struct {
		v  float64
		ok bool
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				c.logger.Warn("beta source panicked", zap.String("source", s.Name()), zap.Any("panic", r))
				done <- outcome{}
			}
		}()
		v, ok := s.Lookup(sctx, ticker)
		done <- outcome{v, ok}
	}()

	select {
	case o := <-done:
		if o.ok && (math.IsNaN(o.v) || math.IsInf(o.v, 0)) {
			c.logger.Warn("beta source returned non-finite value", zap.String("source", s.Name()))
			return 0, false
		}
		return o.v, o.ok
	case <-sctx.Done():
		c.logger.Debug("beta source timed out", zap.String("source", s.Name()), zap.String("ticker", ticker))
		return 0, false
	}
}

// --- Resolver ---

// Resolver turns an Input into an Estimate.
type Resolver struct {
	chain *Chain
}

// NewResolver wraps chain. A nil chain resolves only Direct inputs.
func NewResolver(chain *Chain) *Resolver {
	if chain == nil {
		chain = NewChain(nil, 0)
	}
	return &Resolver{chain: chain}
}

// Resolve returns the beta for in.
func (r *Resolver) Resolve(ctx context.Context, in Input) (Estimate, error) {
	switch v := in.(type) {
	case Direct:
		if math.IsNaN(v.Value) || math.IsInf(v.Value, 0) {
			return Estimate{}, &finance.InputError{Field: "equity_beta", Value: v.Value, Err: finance.ErrNonFiniteInput}
		}
		return Estimate{Value: v.Value, Source: SourceDirect}, nil
	case Comparator:
		return r.chain.Lookup(ctx, v.Ticker)
	case nil:
		return Estimate{}, &NoBetaError{}
	default:
		return Estimate{}, fmt.Errorf("unsupported beta input %T", in)
	}
}

// Chain exposes the underlying source chain.
func (r *Resolver) Chain() *Chain { return r.chain }
