package capm

import (
	"fmt"
	"strings"

	"github.com/seenimoa/regwacc/internal/finance"
	"github.com/seenimoa/regwacc/pkg/models"
)

// Lever de-levers or re-levers a beta.
func Lever(req models.LeverRequest) (*models.LeverResponse, error) {
	req.Mode = models.LeverMode(strings.ToLower(strings.TrimSpace(string(req.Mode))))

	var (
		out float64
		err error
	)
	switch req.Mode {
	case models.LeverModeDelever:
		out, err = finance.DeleverEquityBeta(req.Beta, req.Gearing, req.TaxRate)
	case models.LeverModeRelever:
		out, err = finance.ReleverAssetBeta(req.Beta, req.Gearing, req.TaxRate)
	default:
		return nil, &ValidationError{Field: "mode", Msg: fmt.Sprintf("unknown mode %q (want delever or relever)", req.Mode)}
	}
	if err != nil {
		return nil, financeError(err)
	}
	de, err := finance.DebtToEquity(req.Gearing)
	if err != nil {
		return nil, financeError(err)
	}
	return &models.LeverResponse{LeverRequest: req, DebtToEquity: de, Result: out}, nil
}

// ConvertBasis converts a rate between nominal and real terms.
func ConvertBasis(req models.BasisRequest) (*models.BasisResponse, error) {
	from, err := finance.ParseBasis(strings.ToLower(strings.TrimSpace(req.From)))
	if err != nil {
		return nil, &ValidationError{Field: "from", Err: err}
	}
	to, err := finance.ParseBasis(strings.ToLower(strings.TrimSpace(req.To)))
	if err != nil {
		return nil, &ValidationError{Field: "to", Err: err}
	}
	if req.To == "" {
		to = from.Other()
	}
	out, err := finance.ConvertBasis(req.Rate, req.InflationRate, from, to)
	if err != nil {
		return nil, financeError(err)
	}
	req.From, req.To = string(from), string(to)
	return &models.BasisResponse{BasisRequest: req, Result: out}, nil
}
