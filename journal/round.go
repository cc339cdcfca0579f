package journal

import "github.com/shopspring/decimal"

// round2 rounds half away from zero to two decimal places.
func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// ratio returns round2(num/den), or 0 when den is zero.
func ratio(num decimal.Decimal, den int) float64 {
	if den == 0 {
		return 0
	}
	return round2(num.Div(decimal.NewFromInt(int64(den))))
}

// profitFactor divides gross wins by gross losses. A zero loss total is
// replaced by 1, so a bucket with no losing trades reports its win amount.
func profitFactor(winAmount, lossAmount decimal.Decimal) float64 {
	if lossAmount.IsZero() {
		lossAmount = decimal.NewFromInt(1)
	}
	return round2(winAmount.Div(lossAmount))
}

func decimalOf(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
