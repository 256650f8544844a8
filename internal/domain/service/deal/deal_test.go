package deal_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"propinvest/internal/domain"
	"propinvest/internal/domain/entity"
	"propinvest/internal/domain/service/deal"
	"propinvest/internal/domain/value"
	"propinvest/pkg/errcodes"
)

type fakeBrackets struct {
	tables map[string]entity.BracketTable
	calls  int
	err    error
}

func newFakeBrackets() *fakeBrackets {
	d := decimal.RequireFromString

	return &fakeBrackets{
		tables: map[string]entity.BracketTable{
			"VIC:INV": {
				{BracketMin: d("0"), BracketMax: d("25000"), Base: d("0"), MarginalRatePct: d("1.4"), MarginalAboveThreshold: d("0")},
				{BracketMin: d("25001"), BracketMax: d("130000"), Base: d("350"), MarginalRatePct: d("2.4"), MarginalAboveThreshold: d("25000")},
				{BracketMin: d("130001"), BracketMax: d("960000"), Base: d("2870"), MarginalRatePct: d("6"), MarginalAboveThreshold: d("130000")},
				{BracketMin: d("960001"), BracketMax: d("2000000"), Base: d("55000"), MarginalRatePct: d("5.5"), MarginalAboveThreshold: d("0")},
			},
		},
	}
}

func (f *fakeBrackets) ListBrackets(_ context.Context, j value.Jurisdiction, o value.Occupancy) (entity.BracketTable, error) {
	f.calls++

	if f.err != nil {
		return nil, f.err
	}

	rows := f.tables[j.String()+":"+o.String()]
	out := make(entity.BracketTable, len(rows))

	for i, b := range rows {
		b.Jurisdiction, b.Occupancy = j, o
		out[i] = b
	}

	return out, nil
}

func (f *fakeBrackets) ReplaceBrackets(_ context.Context, j value.Jurisdiction, o value.Occupancy, table entity.BracketTable) error {
	f.tables[j.String()+":"+o.String()] = table
	return nil
}

func (f *fakeBrackets) ListKeys(context.Context) ([]entity.BracketKey, error) {
	keys := make([]entity.BracketKey, 0, len(f.tables))

	for k := range f.tables {
		j, o, _ := strings.Cut(k, ":")
		keys = append(keys, entity.BracketKey{Jurisdiction: value.Jurisdiction(j), Occupancy: value.Occupancy(o)})
	}

	return keys, nil
}

func scenario() entity.DealInput {
	return entity.DealInput{
		Price:          800000,
		WeeklyRent:     700,
		AnnualExpenses: 6000,
		DepositFrac:    0.2,
		AnnualRatePct:  6.5,
		TermYears:      30,
		Jurisdiction:   value.JurisdictionVIC,
		Occupancy:      value.OccupancyInvestor,
		ClosingCosts:   2000,
	}
}

func TestEvaluateScenario(t *testing.T) {
	rq := require.New(t)

	svc := deal.NewService(newFakeBrackets())

	res, err := svc.Evaluate(context.Background(), scenario())
	rq.NoError(err)

	rq.InDelta(160000, res.Deposit, 1e-6)
	rq.InDelta(640000, res.Loan, 1e-6)
	rq.InDelta(4045.24, res.MonthlyRepayment, 0.01)
	rq.InDelta(9.5, res.AssessedRatePct, 1e-9)
	rq.Greater(res.AssessedMonthlyRepayment, res.MonthlyRepayment)
	rq.InDelta(80.0, res.LVRPct, 1e-9)
	rq.False(res.MortgageInsuranceLikely)
	rq.InDelta(4.55, res.GrossYieldPct, 0.001)
	rq.InDelta(3.80, res.NetYieldPct, 0.001)
	rq.InDelta(36400-6000-12*res.MonthlyRepayment, res.AnnualNetCashflow, 1e-6)

	rq.Equal(entity.DutyOutcomeFound, res.Duty.Outcome)
	rq.True(decimal.NewFromInt(43070).Equal(res.Duty.Amount))
	rq.InDelta(res.AnnualNetCashflow/(160000+43070+2000)*100, res.CashOnCashPct, 1e-9)
	rq.Less(res.CashOnCashPct, 0.0)
}

func TestEvaluateHighLVR(t *testing.T) {
	rq := require.New(t)

	in := scenario()
	in.DepositFrac = 0.1

	res, err := deal.NewService(newFakeBrackets()).Evaluate(context.Background(), in)
	rq.NoError(err)
	rq.InDelta(90.0, res.LVRPct, 1e-9)
	rq.True(res.MortgageInsuranceLikely)
}

func TestEvaluateBuffer(t *testing.T) {
	rq := require.New(t)

	svc := deal.NewService(newFakeBrackets()).WithServiceabilityBuffer(2.5)

	res, err := svc.Evaluate(context.Background(), scenario())
	rq.NoError(err)
	rq.InDelta(9.0, res.AssessedRatePct, 1e-9)

	in := scenario()
	override := 1.0
	in.ServiceabilityBufferPct = &override

	res, err = svc.Evaluate(context.Background(), in)
	rq.NoError(err)
	rq.InDelta(7.5, res.AssessedRatePct, 1e-9)
}

func TestEvaluateZeroPrice(t *testing.T) {
	rq := require.New(t)

	in := scenario()
	in.Price = 0

	res, err := deal.NewService(newFakeBrackets()).Evaluate(context.Background(), in)
	rq.NoError(err)
	rq.Zero(res.LVRPct)
	rq.Zero(res.GrossYieldPct)
	rq.Zero(res.NetYieldPct)
	rq.Zero(res.MonthlyRepayment)
}

func TestEvaluateTopBracketFallback(t *testing.T) {
	rq := require.New(t)

	in := scenario()
	in.Price = 3000000

	res, err := deal.NewService(newFakeBrackets()).Evaluate(context.Background(), in)
	rq.NoError(err)
	rq.True(res.Duty.IsEstimate())
	rq.True(decimal.NewFromInt(220000).Equal(res.Duty.Amount))
}

func TestEvaluateInvalidInput(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*entity.DealInput)
	}{
		{name: "Zero term", mutate: func(in *entity.DealInput) { in.TermYears = 0 }},
		{name: "Deposit above one", mutate: func(in *entity.DealInput) { in.DepositFrac = 1.2 }},
		{name: "Negative deposit", mutate: func(in *entity.DealInput) { in.DepositFrac = -0.1 }},
		{name: "NaN rent", mutate: func(in *entity.DealInput) { in.WeeklyRent = math.NaN() }},
		{name: "Inf rate", mutate: func(in *entity.DealInput) { in.AnnualRatePct = math.Inf(1) }},
		{name: "NaN buffer", mutate: func(in *entity.DealInput) {
			b := math.NaN()
			in.ServiceabilityBufferPct = &b
		}},
	}

	svc := deal.NewService(newFakeBrackets())

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			in := scenario()
			tc.mutate(&in)

			_, err := svc.Evaluate(context.Background(), in)
			rq.True(domain.HasCode(err, errcodes.InvalidInput), "got %v", err)
		})
	}
}

func TestEvaluateInvalidInputNamesFirstField(t *testing.T) {
	rq := require.New(t)

	in := scenario()
	in.Price = math.NaN()
	in.WeeklyRent = math.Inf(-1)
	in.ClosingCosts = math.NaN()

	svc := deal.NewService(newFakeBrackets())

	for range 50 {
		_, err := svc.Evaluate(context.Background(), in)
		rq.True(domain.HasCode(err, errcodes.InvalidInput))
		rq.Contains(err.Error(), "price must be a finite number")
	}
}

func TestEvaluateMissingBrackets(t *testing.T) {
	rq := require.New(t)

	in := scenario()
	in.Jurisdiction = value.JurisdictionNT

	_, err := deal.NewService(newFakeBrackets()).Evaluate(context.Background(), in)
	rq.True(domain.HasCode(err, errcodes.MissingReferenceData))
}

func TestEvaluateRepositoryError(t *testing.T) {
	rq := require.New(t)

	repo := newFakeBrackets()
	repo.err = errors.New("connection refused")

	_, err := deal.NewService(repo).Evaluate(context.Background(), scenario())
	rq.ErrorIs(err, repo.err)
}

func TestBracketCache(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	repo := newFakeBrackets()
	svc := deal.NewService(repo).WithBracketCacheTTL(time.Minute)

	for range 3 {
		_, err := svc.EstimateDuty(ctx, decimal.NewFromInt(500000), value.JurisdictionVIC, value.OccupancyInvestor)
		rq.NoError(err)
	}

	rq.Equal(1, repo.calls)

	d := decimal.RequireFromString
	err := svc.ImportBrackets(ctx, value.JurisdictionVIC, value.OccupancyInvestor, entity.BracketTable{
		{BracketMin: d("0"), BracketMax: d("10000000"), Base: d("0"), MarginalRatePct: d("1"), MarginalAboveThreshold: d("0")},
	})
	rq.NoError(err)

	est, err := svc.EstimateDuty(ctx, decimal.NewFromInt(500000), value.JurisdictionVIC, value.OccupancyInvestor)
	rq.NoError(err)
	rq.Equal(2, repo.calls)
	rq.True(decimal.NewFromInt(5000).Equal(est.Amount))
	rq.Equal(value.JurisdictionVIC, est.Bracket.Jurisdiction)
}

func TestImportBracketsInvalid(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	d := decimal.RequireFromString

	svc := deal.NewService(newFakeBrackets())

	err := svc.ImportBrackets(ctx, value.JurisdictionSA, value.OccupancyInvestor, nil)
	rq.True(domain.HasCode(err, errcodes.InvalidInput))

	err = svc.ImportBrackets(ctx, value.JurisdictionSA, value.OccupancyInvestor, entity.BracketTable{
		{BracketMin: d("10"), BracketMax: d("5"), Base: d("0"), MarginalRatePct: d("1"), MarginalAboveThreshold: d("0")},
	})
	rq.True(domain.HasCode(err, errcodes.InvalidInput))

	err = svc.ImportBrackets(ctx, value.JurisdictionSA, value.OccupancyInvestor, entity.BracketTable{
		{BracketMin: d("0"), BracketMax: d("5"), Base: d("0"), MarginalRatePct: d("-1"), MarginalAboveThreshold: d("0")},
	})
	rq.True(domain.HasCode(err, errcodes.InvalidInput))
}

func TestTables(t *testing.T) {
	rq := require.New(t)

	keys, err := deal.NewService(newFakeBrackets()).Tables(context.Background())
	rq.NoError(err)
	rq.Equal([]entity.BracketKey{{Jurisdiction: value.JurisdictionVIC, Occupancy: value.OccupancyInvestor}}, keys)
}
