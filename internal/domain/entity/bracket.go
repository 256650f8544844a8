package entity

import (
	"github.com/shopspring/decimal"

	"propinvest/internal/domain/value"
)

// DutyBracket строка таблицы пошлины.
// Пошлина = Base + MarginalRatePct/100 * max(0, price - MarginalAboveThreshold).
type DutyBracket struct {
	Jurisdiction           value.Jurisdiction
	Occupancy              value.Occupancy
	BracketMin             decimal.Decimal
	BracketMax             decimal.Decimal
	Base                   decimal.Decimal
	MarginalRatePct        decimal.Decimal
	MarginalAboveThreshold decimal.Decimal
}

// Contains границы включительные с обеих сторон.
func (b DutyBracket) Contains(price decimal.Decimal) bool {
	return b.BracketMin.LessThanOrEqual(price) && price.LessThanOrEqual(b.BracketMax)
}

// BracketTable строки в порядке таблицы; порядок важен при пересечении диапазонов.
type BracketTable []DutyBracket

// For строки одной пары штат/тип владения.
func (t BracketTable) For(j value.Jurisdiction, o value.Occupancy) BracketTable {
	var out BracketTable

	for _, b := range t {
		if b.Jurisdiction == j && b.Occupancy == o {
			out = append(out, b)
		}
	}

	return out
}

// BracketKey пара штат/тип владения, для которой публикуется отдельная таблица.
type BracketKey struct {
	Jurisdiction value.Jurisdiction
	Occupancy    value.Occupancy
}

func (k BracketKey) String() string {
	return k.Jurisdiction.String() + ":" + k.Occupancy.String()
}

type DutyOutcome string

const (
	DutyOutcomeFound              DutyOutcome = "found"
	DutyOutcomeTopBracketFallback DutyOutcome = "top_bracket_fallback"
)

// DutyEstimate сумма пошлины и то, как была выбрана строка таблицы.
type DutyEstimate struct {
	Amount  decimal.Decimal
	Outcome DutyOutcome
	Bracket DutyBracket
}

func (e DutyEstimate) IsEstimate() bool {
	return e.Outcome == DutyOutcomeTopBracketFallback
}

func (e DutyEstimate) AmountFloat() float64 {
	return e.Amount.InexactFloat64()
}
