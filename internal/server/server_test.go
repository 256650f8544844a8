package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"propinvest/internal/domain"
	"propinvest/internal/domain/entity"
	"propinvest/internal/domain/service/deal"
	"propinvest/internal/domain/service/ranking"
	"propinvest/internal/domain/value"
	"propinvest/internal/server"
	"propinvest/pkg/errcodes"
	"propinvest/pkg/middlewarex"
	"propinvest/pkg/rest"
	"propinvest/pkg/tests"
)

type memAreas struct {
	mu   sync.Mutex
	rows []entity.FeatureRow
}

func (m *memAreas) ListAreas(context.Context) ([]entity.FeatureRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]entity.FeatureRow(nil), m.rows...), nil
}

func (m *memAreas) UpsertAreas(_ context.Context, rows []entity.FeatureRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rows = append(m.rows, rows...)

	return nil
}

type memSnapshots struct {
	snapshot *entity.RankingSnapshot
}

func (m *memSnapshots) Save(_ context.Context, s entity.RankingSnapshot) error {
	m.snapshot = &s
	return nil
}

func (m *memSnapshots) Latest(context.Context) (entity.RankingSnapshot, error) {
	if m.snapshot == nil {
		return entity.RankingSnapshot{}, domain.NewError(errcodes.SnapshotNotFound, "no ranking snapshot yet")
	}

	return *m.snapshot, nil
}

type memBrackets struct {
	mu     sync.Mutex
	tables map[entity.BracketKey]entity.BracketTable
}

func (m *memBrackets) ListBrackets(_ context.Context, j value.Jurisdiction, o value.Occupancy) (entity.BracketTable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.tables[entity.BracketKey{Jurisdiction: j, Occupancy: o}], nil
}

func (m *memBrackets) ReplaceBrackets(_ context.Context, j value.Jurisdiction, o value.Occupancy, table entity.BracketTable) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tables[entity.BracketKey{Jurisdiction: j, Occupancy: o}] = table

	return nil
}

func (m *memBrackets) ListKeys(context.Context) ([]entity.BracketKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]entity.BracketKey, 0, len(m.tables))
	for k := range m.tables {
		keys = append(keys, k)
	}

	return keys, nil
}

type fakeQueue struct {
	taskID string
}

func (q fakeQueue) Enqueue(context.Context) (string, error) {
	return q.taskID, nil
}

type env struct {
	client    tests.APIClient
	snapshots *memSnapshots
}

func newEnv(t *testing.T) env {
	t.Helper()

	snapshots := &memSnapshots{}
	rankings := ranking.NewService(&memAreas{}, snapshots)
	deals := deal.NewService(&memBrackets{tables: map[entity.BracketKey]entity.BracketTable{}})

	router := chi.NewRouter()
	router.Use(middlewarex.TraceID)

	server.NewServer(
		server.NewRankingServer(rankings, fakeQueue{taskID: "task-1"}),
		server.NewDealServer(deals),
	).RegisterRoutes(router)

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	return env{
		client:    tests.NewAPIClient(ts.URL, ts.Client()),
		snapshots: snapshots,
	}
}

func ptr(v float64) *float64 {
	return &v
}

func vicInvestorBrackets() rest.BracketTableRequest {
	d := decimal.RequireFromString

	return rest.BracketTableRequest{
		Brackets: []rest.DutyBracket{
			{BracketMin: d("0"), BracketMax: d("25000"), Base: d("0"), MarginalRatePct: d("1.4"), MarginalAboveThreshold: d("0")},
			{BracketMin: d("25001"), BracketMax: d("130000"), Base: d("350"), MarginalRatePct: d("2.4"), MarginalAboveThreshold: d("25000")},
			{BracketMin: d("130001"), BracketMax: d("960000"), Base: d("2870"), MarginalRatePct: d("6"), MarginalAboveThreshold: d("130000")},
			{BracketMin: d("960001"), BracketMax: d("2000000"), Base: d("55000"), MarginalRatePct: d("5.5"), MarginalAboveThreshold: d("0")},
		},
	}
}

func TestFactors(t *testing.T) {
	rq := require.New(t)
	e := newEnv(t)

	var factors []rest.Factor

	resp, err := e.client.Get(context.Background(), "/v1/factors", nil, &factors, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Len(factors, 6)
	rq.Equal("gross_yield", factors[0].Name)
	rq.Equal(1, factors[0].Direction)
	rq.InDelta(0.25, factors[0].DefaultWeight, 1e-12)
	rq.Equal("distance_cbd_km", factors[5].Name)
	rq.Equal(-1, factors[5].Direction)
}

func TestPostRankings(t *testing.T) {
	rq := require.New(t)
	e := newEnv(t)
	ctx := context.Background()

	request := rest.RankRequest{
		Rows: []rest.FeatureRow{
			{Code: "C", Values: map[string]*float64{"gross_yield": ptr(3)}},
			{Code: "A", Values: map[string]*float64{"gross_yield": ptr(5)}},
			{Code: "B", Values: map[string]*float64{"gross_yield": ptr(4), "vacancy_rate": nil}},
		},
		Weights: map[string]float64{"gross_yield": 1, "crime_rate": 1},
	}

	var ranking rest.Ranking

	resp, err := e.client.Post(ctx, "/v1/rankings", nil, request, &ranking, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Equal([]string{"crime_rate"}, ranking.IgnoredWeights)
	rq.Len(ranking.Areas, 3)
	rq.Equal("A", ranking.Areas[0].Code)
	rq.Equal(1, ranking.Areas[0].Rank)
	rq.InDelta(100, ranking.Areas[0].DisplayScore, 1e-9)
	rq.Equal("C", ranking.Areas[2].Code)
	rq.InDelta(0, ranking.Areas[2].DisplayScore, 1e-9)
	rq.InDelta(1.0, ranking.Weights["gross_yield"], 1e-12)
	rq.InDelta(0.15, ranking.Weights["vacancy_rate"], 1e-12)

	request.Limit = 1

	resp, err = e.client.Post(ctx, "/v1/rankings", nil, request, &ranking, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Len(ranking.Areas, 1)
}

func TestPostRankingsErrors(t *testing.T) {
	rq := require.New(t)
	e := newEnv(t)
	ctx := context.Background()

	testCases := []struct {
		name    string
		request rest.RankRequest
		status  int
		code    string
	}{
		{
			name: "duplicate codes",
			request: rest.RankRequest{Rows: []rest.FeatureRow{
				{Code: "A"}, {Code: "A"},
			}},
			status: http.StatusBadRequest,
			code:   string(errcodes.DuplicateAreaCode),
		},
		{
			name: "negative weight",
			request: rest.RankRequest{
				Rows:    []rest.FeatureRow{{Code: "A"}},
				Weights: map[string]float64{"vacancy_rate": -0.1},
			},
			status: http.StatusBadRequest,
			code:   string(errcodes.InvalidWeights),
		},
		{
			name:    "missing code",
			request: rest.RankRequest{Rows: []rest.FeatureRow{{Name: "no code"}}},
			status:  http.StatusBadRequest,
			code:    string(errcodes.ValidationError),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var restErr rest.Error

			resp, err := e.client.Post(ctx, "/v1/rankings", nil, tc.request, nil, &restErr)
			rq.NoError(err)
			rq.Equal(tc.status, resp.StatusCode)
			rq.Equal(tc.code, string(restErr.Code))
		})
	}
}

func TestStoredAreasRanking(t *testing.T) {
	rq := require.New(t)
	e := newEnv(t)
	ctx := context.Background()

	resp, err := e.client.Put(ctx, "/v1/areas", nil, rest.ImportAreasRequest{
		Areas: []rest.FeatureRow{
			{Code: "201011001", Name: "Ballarat", Values: map[string]*float64{"gross_yield": ptr(4.8), "distance_cbd_km": ptr(115)}},
			{Code: "206041122", Name: "Richmond", Values: map[string]*float64{"gross_yield": ptr(3.1), "distance_cbd_km": ptr(3)}},
		},
	}, nil, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)

	var ranking rest.Ranking

	resp, err = e.client.Get(ctx, "/v1/rankings?limit=1&weight.distance_cbd_km=0", nil, &ranking, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Len(ranking.Areas, 1)
	rq.Equal("201011001", ranking.Areas[0].Code)
	rq.Equal("Ballarat", ranking.Areas[0].Name)

	var restErr rest.Error

	resp, err = e.client.Get(ctx, "/v1/rankings?weight.gross_yield=abc", nil, nil, &restErr)
	rq.NoError(err)
	rq.Equal(http.StatusBadRequest, resp.StatusCode)
	rq.Equal(string(errcodes.ValidationError), string(restErr.Code))
}

func TestLatestAndRefresh(t *testing.T) {
	rq := require.New(t)
	e := newEnv(t)
	ctx := context.Background()

	var restErr rest.Error

	resp, err := e.client.Get(ctx, "/v1/rankings/latest", nil, nil, &restErr)
	rq.NoError(err)
	rq.Equal(http.StatusNotFound, resp.StatusCode)
	rq.Equal(string(errcodes.SnapshotNotFound), string(restErr.Code))

	var refresh rest.RefreshResponse

	resp, err = e.client.Post(ctx, "/v1/rankings/refresh", nil, nil, &refresh, nil)
	rq.NoError(err)
	rq.Equal(http.StatusAccepted, resp.StatusCode)
	rq.True(refresh.Queued)
	rq.Equal("task-1", refresh.TaskID)

	rq.NoError(e.snapshots.Save(ctx, entity.RankingSnapshot{
		Weights: value.DefaultWeights(),
		Rows: []entity.ScoredRow{
			{FeatureRow: entity.FeatureRow{Code: "A"}, Rank: 1, DisplayScore: 100},
			{FeatureRow: entity.FeatureRow{Code: "B"}, Rank: 2, DisplayScore: 0},
		},
	}))

	var snapshot rest.Snapshot

	resp, err = e.client.Get(ctx, "/v1/rankings/latest?limit=1", nil, &snapshot, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Equal(2, snapshot.TotalAreas)
	rq.Len(snapshot.Areas, 1)
	rq.Equal("A", snapshot.Areas[0].Code)
}

func TestDealEvaluate(t *testing.T) {
	rq := require.New(t)
	e := newEnv(t)
	ctx := context.Background()

	var restErr rest.Error

	request := rest.DealRequest{
		Price:          800000,
		WeeklyRent:     650,
		AnnualExpenses: 6500,
		DepositPct:     20,
		AnnualRatePct:  6.5,
		TermYears:      30,
		Jurisdiction:   "vic",
		Occupancy:      "investor",
	}

	resp, err := e.client.Post(ctx, "/v1/deals/evaluate", nil, request, nil, &restErr)
	rq.NoError(err)
	rq.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
	rq.Equal(string(errcodes.MissingReferenceData), string(restErr.Code))

	resp, err = e.client.Put(ctx, "/v1/duty-brackets/VIC/INV", nil, vicInvestorBrackets(), nil, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)

	var res rest.DealResponse

	resp, err = e.client.Post(ctx, "/v1/deals/evaluate", nil, request, &res, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.InDelta(160000, res.Deposit, 1e-9)
	rq.InDelta(640000, res.Loan, 1e-9)
	rq.InDelta(4045.24, res.MonthlyRepayment, 1e-9)
	rq.InDelta(9.5, res.AssessedRatePct, 1e-9)
	rq.InDelta(80, res.LVRPct, 1e-9)
	rq.False(res.MortgageInsuranceLikely)
	rq.InDelta(4.225, res.GrossYieldPct, 1e-9)
	rq.Equal("43070", res.Duty.Amount.String())
	rq.Equal("found", res.Duty.Outcome)
	rq.False(res.Duty.Estimate)

	var keys []rest.BracketKey

	resp, err = e.client.Get(ctx, "/v1/duty-brackets", nil, &keys, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Equal([]rest.BracketKey{{Jurisdiction: "VIC", Occupancy: "INV"}}, keys)
}

func TestDealEvaluateValidation(t *testing.T) {
	rq := require.New(t)
	e := newEnv(t)
	ctx := context.Background()

	testCases := []struct {
		name    string
		request rest.DealRequest
		code    string
	}{
		{
			name:    "unknown jurisdiction",
			request: rest.DealRequest{Price: 1, TermYears: 30, Jurisdiction: "XX", Occupancy: "OO"},
			code:    string(errcodes.InvalidJurisdiction),
		},
		{
			name:    "unknown occupancy",
			request: rest.DealRequest{Price: 1, TermYears: 30, Jurisdiction: "NSW", Occupancy: "holiday"},
			code:    string(errcodes.InvalidOccupancy),
		},
		{
			name:    "zero term",
			request: rest.DealRequest{Price: 1, Jurisdiction: "NSW", Occupancy: "OO"},
			code:    string(errcodes.ValidationError),
		},
		{
			name:    "deposit over 100 percent",
			request: rest.DealRequest{Price: 1, DepositPct: 120, TermYears: 30, Jurisdiction: "NSW", Occupancy: "OO"},
			code:    string(errcodes.ValidationError),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var restErr rest.Error

			resp, err := e.client.Post(ctx, "/v1/deals/evaluate", nil, tc.request, nil, &restErr)
			rq.NoError(err)
			rq.Equal(http.StatusBadRequest, resp.StatusCode)
			rq.Equal(tc.code, string(restErr.Code))
		})
	}
}

func TestDuty(t *testing.T) {
	rq := require.New(t)
	e := newEnv(t)
	ctx := context.Background()

	resp, err := e.client.Put(ctx, "/v1/duty-brackets/vic/investor", nil, vicInvestorBrackets(), nil, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)

	var est rest.DutyEstimate

	resp, err = e.client.Get(ctx, "/v1/duty?price=3000000&jurisdiction=VIC&occupancy=INV", nil, &est, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Equal("220000", est.Amount.String())
	rq.Equal("top_bracket_fallback", est.Outcome)
	rq.True(est.Estimate)

	var restErr rest.Error

	resp, err = e.client.Get(ctx, "/v1/duty?price=abc&jurisdiction=VIC&occupancy=INV", nil, nil, &restErr)
	rq.NoError(err)
	rq.Equal(http.StatusBadRequest, resp.StatusCode)
	rq.Equal(string(errcodes.ValidationError), string(restErr.Code))

	resp, err = e.client.Get(ctx, "/v1/duty?price=500000&jurisdiction=NSW&occupancy=OO", nil, nil, &restErr)
	rq.NoError(err)
	rq.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
	rq.Equal(string(errcodes.MissingReferenceData), string(restErr.Code))
}
