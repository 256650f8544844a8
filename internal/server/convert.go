package server

import (
	"fmt"
	"math"

	"github.com/samber/lo"

	"propinvest/internal/domain/entity"
	"propinvest/internal/domain/value"
	"propinvest/pkg/rest"
)

func newRESTFactor(f value.Factor, _ int) rest.Factor {
	return rest.Factor{
		Name:          f.String(),
		Direction:     int(f.Direction()),
		DefaultWeight: f.DefaultWeight(),
	}
}

// newDomainFeatureRow неизвестные ключи показателей игнорируются так же, как веса.
func newDomainFeatureRow(row rest.FeatureRow, _ int) entity.FeatureRow {
	values := make(map[value.Factor]*float64, len(row.Values))

	for k, v := range row.Values {
		f, err := value.ParseFactor(k)
		if err != nil {
			continue
		}

		values[f] = v
	}

	return entity.FeatureRow{
		Code:   row.Code,
		Name:   row.Name,
		Values: values,
	}
}

func newRESTScoredArea(row entity.ScoredRow, _ int) rest.ScoredArea {
	return rest.ScoredArea{
		Code:          row.Code,
		Name:          row.Name,
		Rank:          row.Rank,
		Score:         row.Score,
		DisplayScore:  row.DisplayScore,
		Normalized:    factorMap(row.Normalized),
		Contributions: factorMap(row.Contributions),
	}
}

func newRESTRanking(rows []entity.ScoredRow, weights value.Weights, ignored []string) rest.Ranking {
	return rest.Ranking{
		Areas:          lo.Map(rows, newRESTScoredArea),
		Weights:        weights.Resolved().ToMap(),
		IgnoredWeights: ignored,
	}
}

func newRESTSnapshot(s entity.RankingSnapshot, limit int) rest.Snapshot {
	return rest.Snapshot{
		ID:         s.ID.String(),
		CreatedAt:  s.CreatedAt,
		Weights:    s.Weights.ToMap(),
		TotalAreas: len(s.Rows),
		Areas:      lo.Map(s.Top(limit), newRESTScoredArea),
	}
}

func newDomainDealInput(req rest.DealRequest) (entity.DealInput, error) {
	j, err := value.ParseJurisdiction(req.Jurisdiction)
	if err != nil {
		return entity.DealInput{}, fmt.Errorf("value.ParseJurisdiction: %w", err)
	}

	o, err := value.ParseOccupancy(req.Occupancy)
	if err != nil {
		return entity.DealInput{}, fmt.Errorf("value.ParseOccupancy: %w", err)
	}

	return entity.DealInput{
		Price:                   req.Price,
		WeeklyRent:              req.WeeklyRent,
		AnnualExpenses:          req.AnnualExpenses,
		DepositFrac:             req.DepositPct / 100, //nolint:mnd
		AnnualRatePct:           req.AnnualRatePct,
		TermYears:               req.TermYears,
		Jurisdiction:            j,
		Occupancy:               o,
		ClosingCosts:            req.ClosingCosts,
		MortgageInsuranceCost:   req.MortgageInsuranceCost,
		ServiceabilityBufferPct: req.ServiceabilityBufferPct,
	}, nil
}

func newRESTDeal(res entity.DealResult) rest.DealResponse {
	return rest.DealResponse{
		Deposit:                  round2(res.Deposit),
		Loan:                     round2(res.Loan),
		MonthlyRepayment:         round2(res.MonthlyRepayment),
		AssessedRatePct:          res.AssessedRatePct,
		AssessedMonthlyRepayment: round2(res.AssessedMonthlyRepayment),
		LVRPct:                   res.LVRPct,
		MortgageInsuranceLikely:  res.MortgageInsuranceLikely,
		GrossYieldPct:            res.GrossYieldPct,
		NetYieldPct:              res.NetYieldPct,
		AnnualNetCashflow:        round2(res.AnnualNetCashflow),
		CashOnCashPct:            res.CashOnCashPct,
		Duty:                     newRESTDutyEstimate(res.Duty),
	}
}

func newRESTDutyEstimate(e entity.DutyEstimate) rest.DutyEstimate {
	return rest.DutyEstimate{
		Amount:   e.Amount.Round(2), //nolint:mnd
		Outcome:  string(e.Outcome),
		Estimate: e.IsEstimate(),
		Bracket:  newRESTDutyBracket(e.Bracket),
	}
}

func newRESTDutyBracket(b entity.DutyBracket) rest.DutyBracket {
	return rest.DutyBracket{
		BracketMin:             b.BracketMin,
		BracketMax:             b.BracketMax,
		Base:                   b.Base,
		MarginalRatePct:        b.MarginalRatePct,
		MarginalAboveThreshold: b.MarginalAboveThreshold,
	}
}

func newDomainDutyBracket(b rest.DutyBracket, _ int) entity.DutyBracket {
	return entity.DutyBracket{
		BracketMin:             b.BracketMin,
		BracketMax:             b.BracketMax,
		Base:                   b.Base,
		MarginalRatePct:        b.MarginalRatePct,
		MarginalAboveThreshold: b.MarginalAboveThreshold,
	}
}

func newRESTBracketKey(k entity.BracketKey, _ int) rest.BracketKey {
	return rest.BracketKey{
		Jurisdiction: k.Jurisdiction.String(),
		Occupancy:    k.Occupancy.String(),
	}
}

func factorMap(m map[value.Factor]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for f, v := range m {
		out[f.String()] = v
	}

	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100 //nolint:mnd
}
