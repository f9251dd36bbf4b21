package finance

import "fmt"

// Basis tags whether rates are real or nominal.
type Basis string

const (
	BasisReal    Basis = "real"
	BasisNominal Basis = "nominal"
)

// ParseBasis accepts "real" or "nominal"; the empty string means nominal.
func ParseBasis(s string) (Basis, error) {
	switch Basis(s) {
	case BasisReal:
		return BasisReal, nil
	case BasisNominal, "":
		return BasisNominal, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBasis, s)
}

// Other returns the opposite basis.
func (b Basis) Other() Basis {
	if b == BasisReal {
		return BasisNominal
	}
	return BasisReal
}

// RealFromNominal applies the exact Fisher relation (1+n)/(1+i) − 1.
// inflationRate = −1 is degenerate and not guarded here.
func RealFromNominal(nominalRate, inflationRate float64) float64 {
	return (1+nominalRate)/(1+inflationRate) - 1
}

// NominalFromReal is the inverse Fisher relation (1+r)(1+i) − 1.
func NominalFromReal(realRate, inflationRate float64) float64 {
	return (1+realRate)*(1+inflationRate) - 1
}

// ConvertBasis re-expresses rate on the target basis. Unlike the raw Fisher
// helpers it rejects non-finite values and inflation at or below −100%.
func ConvertBasis(rate, inflationRate float64, from, to Basis) (float64, error) {
	if err := checkFinite(field{"rate", rate}, field{"inflation_rate", inflationRate}); err != nil {
		return 0, err
	}
	if inflationRate <= -1 {
		return 0, &InputError{Field: "inflation_rate", Value: inflationRate, Err: ErrInvalidRange}
	}
	switch {
	case from != BasisReal && from != BasisNominal:
		return 0, fmt.Errorf("%w: %q", ErrUnknownBasis, from)
	case to != BasisReal && to != BasisNominal:
		return 0, fmt.Errorf("%w: %q", ErrUnknownBasis, to)
	case from == to:
		return rate, nil
	case from == BasisNominal:
		return RealFromNominal(rate, inflationRate), nil
	default:
		return NominalFromReal(rate, inflationRate), nil
	}
}
