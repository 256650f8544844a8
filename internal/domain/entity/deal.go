package entity

import (
	"propinvest/internal/domain/value"
)

// DealInput параметры оцениваемой сделки.
type DealInput struct {
	Price          float64
	WeeklyRent     float64
	AnnualExpenses float64
	DepositFrac    float64 // доля первого взноса, 0..1
	AnnualRatePct  float64
	TermYears      int
	Jurisdiction   value.Jurisdiction
	Occupancy      value.Occupancy
	ClosingCosts   float64

	// Стоимость страховки LMI, если уже известна
	MortgageInsuranceCost float64
	// Надбавка к ставке для проверки платёжеспособности, nil - по умолчанию
	ServiceabilityBufferPct *float64
}

type DealResult struct {
	Deposit                  float64
	Loan                     float64
	MonthlyRepayment         float64
	AssessedRatePct          float64
	AssessedMonthlyRepayment float64
	LVRPct                   float64
	MortgageInsuranceLikely  bool
	GrossYieldPct            float64
	NetYieldPct              float64
	AnnualNetCashflow        float64 // аренда - расходы - 12 платежей
	CashOnCashPct            float64
	Duty                     DutyEstimate
}
