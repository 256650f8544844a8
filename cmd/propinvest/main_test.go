package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	featuresSample = "../../data/area_features_sample.csv"
	bracketsSample = "../../data/duty_brackets_sample.csv"
)

func run(t *testing.T, args ...string) (*bytes.Buffer, error) {
	t.Helper()

	var out, errOut bytes.Buffer

	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut

	return &out, app.Run(append([]string{"propinvest"}, args...))
}

func TestRankCommand(t *testing.T) {
	rq := require.New(t)

	out, err := run(t, "--format", "json", "rank", "--features", featuresSample, "--top", "3")
	rq.NoError(err)

	var areas []rankedArea
	rq.NoError(json.Unmarshal(out.Bytes(), &areas))
	rq.Len(areas, 3)

	for i, a := range areas {
		rq.Equal(i+1, a.Rank)
		rq.NotEmpty(a.Code)
		rq.Len(a.Contributions, 6)
	}

	rq.GreaterOrEqual(areas[0].Score, areas[1].Score)
	rq.InDelta(100, areas[0].DisplayScore, 1e-9)
}

func TestRankCommandTable(t *testing.T) {
	rq := require.New(t)

	out, err := run(t, "rank", "--features", featuresSample, "-w", "gross_yield=1", "-w", "distance_cbd_km=0")
	rq.NoError(err)
	rq.Contains(out.String(), featuresSample)
	rq.Contains(out.String(), "Broadmeadows")
}

func TestRankCommandBadWeight(t *testing.T) {
	rq := require.New(t)

	_, err := run(t, "rank", "--features", featuresSample, "-w", "gross_yield")
	rq.Error(err)

	_, err = run(t, "rank", "--features", featuresSample, "-w", "gross_yield=-1")
	rq.Error(err)
}

func TestDutyCommand(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		name    string
		price   string
		amount  string
		outcome string
	}{
		{name: "inside brackets", price: "800000", amount: "43070.00", outcome: "found"},
		{name: "above top bracket", price: "3000000", amount: "220000.00", outcome: "top_bracket_fallback"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := run(t, "--format", "json", "duty",
				"--brackets", bracketsSample, "-j", "vic", "-o", "INV", "--price", tc.price)
			rq.NoError(err)

			var view dutyView
			rq.NoError(json.Unmarshal(out.Bytes(), &view))
			rq.Equal(tc.amount, view.Amount)
			rq.Equal(tc.outcome, view.Outcome)
		})
	}

	_, err := run(t, "duty", "--brackets", bracketsSample, "-j", "WA", "--price", "500000")
	rq.Error(err)
}

func TestDealCommand(t *testing.T) {
	rq := require.New(t)

	out, err := run(t, "--format", "json", "deal",
		"--brackets", bracketsSample, "-j", "VIC",
		"--price", "800000", "--weekly-rent", "650", "--expenses", "6500",
		"--deposit-pct", "20", "--rate", "6.5", "--term", "30",
	)
	rq.NoError(err)

	var view dealView
	rq.NoError(json.Unmarshal(out.Bytes(), &view))
	rq.InDelta(640000, view.Loan, 1e-6)
	rq.InDelta(4045.24, view.MonthlyRepayment, 0.01)
	rq.InDelta(9.5, view.AssessedRatePct, 1e-9)
	rq.False(view.MortgageInsuranceLikely)
	rq.Equal("43070.00", view.Duty.Amount)

	_, err = run(t, "deal", "--brackets", bracketsSample, "-j", "VIC", "--price", "800000", "--term", "0")
	rq.Error(err)
}
