// Package finance формулы оценки сделки. Все функции чистые и ничего не
// обрезают: отрицательный денежный поток даёт отрицательную доходность.
package finance

import (
	"fmt"
	"math"

	"propinvest/internal/domain"
	"propinvest/pkg/errcodes"
)

const (
	DefaultServiceabilityBufferPct   = 3.0
	MortgageInsuranceLVRThresholdPct = 80.0

	weeksPerYear  = 52.0
	monthsPerYear = 12
)

// MonthlyRepayment аннуитетный платёж (основной долг + проценты).
func MonthlyRepayment(principal, annualRatePct float64, years int) (float64, error) {
	if !finite(principal) || !finite(annualRatePct) {
		return 0, domain.NewError(errcodes.InvalidInput, "principal and rate must be finite")
	}

	n := years * monthsPerYear
	if n <= 0 {
		return 0, domain.NewError(errcodes.InvalidInput, fmt.Sprintf("loan term must be positive, got %d years", years))
	}

	r := annualRatePct / 100 / monthsPerYear //nolint:mnd
	if r == 0 {
		return principal / float64(n), nil
	}

	growth := math.Pow(1+r, float64(n))

	return principal * r * growth / (growth - 1), nil
}

// AssessedRate ставка, по которой банк проверяет платёжеспособность.
func AssessedRate(userRatePct, bufferPct float64) float64 {
	return userRatePct + bufferPct
}

// LVRPct отношение кредита к стоимости, в процентах.
func LVRPct(price, deposit float64) float64 {
	if price <= 0 {
		return 0
	}

	return 100 * (1 - deposit/price) //nolint:mnd
}

// LikelyMortgageInsurance LMI обычно требуется при LVR строго выше 80%.
func LikelyMortgageInsurance(lvrPct float64) bool {
	return lvrPct > MortgageInsuranceLVRThresholdPct
}

func GrossYieldPct(price, weeklyRent float64) float64 {
	if price <= 0 {
		return 0
	}

	return weeklyRent * weeksPerYear / price * 100 //nolint:mnd
}

func NetYieldPct(price, weeklyRent, annualExpenses float64) float64 {
	if price <= 0 {
		return 0
	}

	return (weeklyRent*weeksPerYear - annualExpenses) / price * 100 //nolint:mnd
}

// AnnualNetCashflow аренда за год минус расходы и двенадцать платежей по кредиту.
func AnnualNetCashflow(weeklyRent, annualExpenses, monthlyRepayment float64) float64 {
	return weeklyRent*weeksPerYear - annualExpenses - monthsPerYear*monthlyRepayment
}

// CashOnCashPct годовой денежный поток к вложенным собственным средствам.
func CashOnCashPct(annualNetCashflow, deposit, duty, closingCosts, mortgageInsurance float64) float64 {
	denom := deposit + duty + closingCosts + mortgageInsurance
	if denom <= 0 {
		return 0
	}

	return annualNetCashflow / denom * 100 //nolint:mnd
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
