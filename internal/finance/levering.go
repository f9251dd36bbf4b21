package finance

// DebtToEquity converts gearing D/(D+E) into D/E.
// Gearing must lie in [0,1); at 1 the ratio is undefined.
func DebtToEquity(gearing float64) (float64, error) {
	if err := checkFinite(field{"gearing", gearing}); err != nil {
		return 0, err
	}
	if gearing < 0 || gearing >= 1 {
		return 0, &InputError{Field: "gearing", Value: gearing, Err: ErrInvalidRange}
	}
	return gearing / (1 - gearing), nil
}

// leverFactor is 1 + (1 − t) × D/E, the Modigliani–Miller scaling between
// asset and equity beta.
func leverFactor(gearing, taxRate float64) (float64, error) {
	if err := checkFinite(field{"tax_rate", taxRate}); err != nil {
		return 0, err
	}
	if err := checkUnit("tax_rate", taxRate); err != nil {
		return 0, err
	}
	de, err := DebtToEquity(gearing)
	if err != nil {
		return 0, err
	}
	return 1 + (1-taxRate)*de, nil
}

// DeleverEquityBeta strips financial risk from an observed equity beta:
// βa = βe / (1 + (1 − t) × D/E).
func DeleverEquityBeta(equityBeta, gearing, taxRate float64) (float64, error) {
	if err := checkFinite(field{"equity_beta", equityBeta}); err != nil {
		return 0, err
	}
	f, err := leverFactor(gearing, taxRate)
	if err != nil {
		return 0, err
	}
	return equityBeta / f, nil
}

// ReleverAssetBeta is the inverse of DeleverEquityBeta:
// βe = βa × (1 + (1 − t) × D/E).
func ReleverAssetBeta(assetBeta, gearing, taxRate float64) (float64, error) {
	if err := checkFinite(field{"asset_beta", assetBeta}); err != nil {
		return 0, err
	}
	f, err := leverFactor(gearing, taxRate)
	if err != nil {
		return 0, err
	}
	return assetBeta * f, nil
}

// RenotionaliseBeta moves an equity beta observed at actualGearing onto the
// notional capital structure: de-lever at the actual gearing, re-lever at
// the notional one. Equal gearings return the input beta.
func RenotionaliseBeta(equityBeta, actualGearing, notionalGearing, taxRate float64) (assetBeta, notionalBeta float64, err error) {
	assetBeta, err = DeleverEquityBeta(equityBeta, actualGearing, taxRate)
	if err != nil {
		return 0, 0, err
	}
	notionalBeta, err = ReleverAssetBeta(assetBeta, notionalGearing, taxRate)
	if err != nil {
		return 0, 0, err
	}
	return assetBeta, notionalBeta, nil
}
