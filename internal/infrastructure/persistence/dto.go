package persistence

import (
	"github.com/shopspring/decimal"

	"propinvest/internal/domain/entity"
	"propinvest/internal/domain/value"
)

// areaSchema строка таблицы area_features. Столбцы факторов совпадают с их именами.
type areaSchema struct {
	Code             string   `db:"code"`
	Name             string   `db:"name"`
	Position         int      `db:"position"`
	GrossYield       *float64 `db:"gross_yield"`
	VacancyRate      *float64 `db:"vacancy_rate"`
	OwnershipPct     *float64 `db:"ownership_pct"`
	PriceMomentumQoQ *float64 `db:"price_momentum_qoq"`
	IRSADRank        *float64 `db:"irsad_rank"`
	DistanceCBDKm    *float64 `db:"distance_cbd_km"`
}

func fromFeatureRow(r entity.FeatureRow, position int) areaSchema {
	get := func(f value.Factor) *float64 {
		v, ok := r.Value(f)
		if !ok {
			return nil
		}

		return &v
	}

	return areaSchema{
		Code:             r.Code,
		Name:             r.Name,
		Position:         position,
		GrossYield:       get(value.FactorGrossYield),
		VacancyRate:      get(value.FactorVacancyRate),
		OwnershipPct:     get(value.FactorOwnershipPct),
		PriceMomentumQoQ: get(value.FactorPriceMomentumQoQ),
		IRSADRank:        get(value.FactorIRSADRank),
		DistanceCBDKm:    get(value.FactorDistanceCBDKm),
	}
}

func (s areaSchema) toDomain() entity.FeatureRow {
	return entity.FeatureRow{
		Code: s.Code,
		Name: s.Name,
		Values: map[value.Factor]*float64{
			value.FactorGrossYield:       s.GrossYield,
			value.FactorVacancyRate:      s.VacancyRate,
			value.FactorOwnershipPct:     s.OwnershipPct,
			value.FactorPriceMomentumQoQ: s.PriceMomentumQoQ,
			value.FactorIRSADRank:        s.IRSADRank,
			value.FactorDistanceCBDKm:    s.DistanceCBDKm,
		},
	}
}

// bracketSchema строка таблицы duty_brackets.
type bracketSchema struct {
	Jurisdiction           string          `db:"jurisdiction"`
	Occupancy              string          `db:"occupancy"`
	Position               int             `db:"position"`
	BracketMin             decimal.Decimal `db:"bracket_min"`
	BracketMax             decimal.Decimal `db:"bracket_max"`
	Base                   decimal.Decimal `db:"base"`
	MarginalRatePct        decimal.Decimal `db:"marginal_rate_pct"`
	MarginalAboveThreshold decimal.Decimal `db:"marginal_above_threshold"`
}

func fromDutyBracket(b entity.DutyBracket, position int) bracketSchema {
	return bracketSchema{
		Jurisdiction:           b.Jurisdiction.String(),
		Occupancy:              b.Occupancy.String(),
		Position:               position,
		BracketMin:             b.BracketMin,
		BracketMax:             b.BracketMax,
		Base:                   b.Base,
		MarginalRatePct:        b.MarginalRatePct,
		MarginalAboveThreshold: b.MarginalAboveThreshold,
	}
}

func (s bracketSchema) toDomain() (entity.DutyBracket, error) {
	j, err := value.ParseJurisdiction(s.Jurisdiction)
	if err != nil {
		return entity.DutyBracket{}, err
	}

	o, err := value.ParseOccupancy(s.Occupancy)
	if err != nil {
		return entity.DutyBracket{}, err
	}

	return entity.DutyBracket{
		Jurisdiction:           j,
		Occupancy:              o,
		BracketMin:             s.BracketMin,
		BracketMax:             s.BracketMax,
		Base:                   s.Base,
		MarginalRatePct:        s.MarginalRatePct,
		MarginalAboveThreshold: s.MarginalAboveThreshold,
	}, nil
}
