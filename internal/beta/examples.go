package beta

import (
	"context"

	"github.com/seenimoa/regwacc/internal/examples"
)

// Examples serves betas from the static example dataset.
type Examples struct {
	data *examples.Dataset
}

// NewExamples wraps a dataset.
func NewExamples(data *examples.Dataset) *Examples {
	return &Examples{data: data}
}

// Name returns the source name.
func (e *Examples) Name() string { return "examples" }

// Lookup returns the example's equity beta.
func (e *Examples) Lookup(_ context.Context, ticker string) (float64, bool) {
	ex, ok := e.data.Get(ticker)
	if !ok {
		return 0, false
	}
	return ex.EquityBeta, true
}
