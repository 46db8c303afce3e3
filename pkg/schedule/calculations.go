package schedule

import (
	"math"

	"github.com/duyet/finance-hub-sub000/pkg/constants"
)

// PeriodInterest returns one period's interest on balance at the given
// nominal annual rate, using the annual-rate-divided-by-twelve monthly
// convention. The result is unrounded; rounding to currency precision
// happens only when an installment is finalized. Returns 0 when balance or
// rate is not positive.
func PeriodInterest(balance, annualRatePercent float64) float64 {
	if balance <= 0 || annualRatePercent <= 0 {
		return 0
	}
	return balance * annualRatePercent / (constants.PercentageMultiplier * constants.MonthsPerYear)
}

// EMI returns the fixed periodic payment for a reducing-balance loan using
// the standard amortization formula. The value is fixed for the life of the
// rate regime that produced it; a rate change derives a new one for the
// remaining term. Returns 0 when principal, rate, or term is not positive.
func EMI(principal, annualRatePercent float64, termPeriods int) float64 {
	if principal <= 0 || annualRatePercent <= 0 || termPeriods <= 0 {
		return 0
	}
	monthlyRate := annualRatePercent / (constants.PercentageMultiplier * constants.MonthsPerYear)
	power := math.Pow(1.00+monthlyRate, float64(termPeriods))
	return principal * monthlyRate * power / (power - 1.00)
}

// FlatInterestTotal returns the total interest charged over the whole term
// of a flat-rate loan, computed once on the original principal. Returns 0
// when principal, rate, or term is not positive.
func FlatInterestTotal(principal, annualRatePercent float64, termPeriods int) float64 {
	if principal <= 0 || annualRatePercent <= 0 || termPeriods <= 0 {
		return 0
	}
	return principal * annualRatePercent * float64(termPeriods) /
		(constants.MonthsPerYear * constants.PercentageMultiplier)
}
