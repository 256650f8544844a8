package csvsource_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"propinvest/internal/domain"
	"propinvest/internal/domain/value"
	"propinvest/internal/infrastructure/csvsource"
	"propinvest/pkg/errcodes"
)

func TestReadFeatures(t *testing.T) {
	rq := require.New(t)

	input := `area_code,area_name,gross_yield,vacancy_rate,irsad_rank,unused
206041122,Melbourne,3.2,2.1,10,x
213011337,Sunshine,,0.9,NA,y
`

	rows, err := csvsource.ReadFeatures(strings.NewReader(input))
	rq.NoError(err)
	rq.Len(rows, 2)

	rq.Equal("206041122", rows[0].Code)
	rq.Equal("Melbourne", rows[0].Name)

	v, ok := rows[0].Value(value.FactorIRSADRank)
	rq.True(ok)
	rq.InDelta(10.0, v, 0)

	_, ok = rows[1].Value(value.FactorGrossYield)
	rq.False(ok)

	_, ok = rows[1].Value(value.FactorIRSADRank)
	rq.False(ok)

	_, ok = rows[1].Value(value.FactorDistanceCBDKm)
	rq.False(ok)
}

func TestReadFeaturesErrors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{name: "Empty", input: ""},
		{name: "No code column", input: "name,gross_yield\nA,1\n"},
		{name: "Bad number", input: "code,gross_yield\nA,abc\n"},
		{name: "Ragged row", input: "code,gross_yield\nA,1,2\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			_, err := csvsource.ReadFeatures(strings.NewReader(tc.input))
			rq.True(domain.HasCode(err, errcodes.InvalidInput), "got %v", err)
		})
	}
}

func TestReadFeaturesReportsFirstBadColumn(t *testing.T) {
	rq := require.New(t)

	input := "code,distance_cbd_km,vacancy_rate,gross_yield\nA,far,high,low\n"

	for range 50 {
		_, err := csvsource.ReadFeatures(strings.NewReader(input))
		rq.ErrorContains(err, `line 2: bad gross_yield value "low"`)
	}
}

func TestReadBrackets(t *testing.T) {
	rq := require.New(t)

	input := `state,occupancy,bracket_min,bracket_max,base,rate_pct,marginal_above
vic,INV,0,25000,0,1.4,0
VIC,oo,25001,130000,350,2.4,25000
`

	table, err := csvsource.ReadBrackets(strings.NewReader(input))
	rq.NoError(err)
	rq.Len(table, 2)

	rq.Equal(value.JurisdictionVIC, table[0].Jurisdiction)
	rq.Equal(value.OccupancyInvestor, table[0].Occupancy)
	rq.True(decimal.RequireFromString("1.4").Equal(table[0].MarginalRatePct))
	rq.Equal(value.OccupancyOwnerOccupier, table[1].Occupancy)
	rq.True(decimal.NewFromInt(25000).Equal(table[1].MarginalAboveThreshold))
}

func TestReadBracketsErrors(t *testing.T) {
	rq := require.New(t)

	_, err := csvsource.ReadBrackets(strings.NewReader("state,occupancy\nVIC,INV\n"))
	rq.True(domain.HasCode(err, errcodes.InvalidInput))
	rq.ErrorContains(err, "bracket column bracket_min is missing")

	_, err = csvsource.ReadBrackets(strings.NewReader(
		"state,occupancy,bracket_min,bracket_max,base,rate_pct,marginal_above\nVIC,INV,x,y,z,1,0\n"))
	rq.ErrorContains(err, "bracket_min \"x\"")

	_, err = csvsource.ReadBrackets(strings.NewReader(
		"state,occupancy,bracket_min,bracket_max,base,rate_pct,marginal_above\nXX,INV,0,1,0,1,0\n"))
	rq.True(domain.HasCode(err, errcodes.InvalidJurisdiction))

	_, err = csvsource.ReadBrackets(strings.NewReader(
		"state,occupancy,bracket_min,bracket_max,base,rate_pct,marginal_above\nVIC,LANDLORD,0,1,0,1,0\n"))
	rq.True(domain.HasCode(err, errcodes.InvalidOccupancy))
	rq.ErrorContains(err, "line 2")

	_, err = csvsource.ReadBrackets(strings.NewReader(
		"state,occupancy,bracket_min,bracket_max,base,rate_pct,marginal_above\nVIC,INV,0,lots,0,1,0\n"))
	rq.True(domain.HasCode(err, errcodes.InvalidInput))
	rq.ErrorContains(err, "line 2")
}

func TestFirstExisting(t *testing.T) {
	rq := require.New(t)
	dir := t.TempDir()

	empty := filepath.Join(dir, "full.csv")
	sample := filepath.Join(dir, "sample.csv")
	missing := filepath.Join(dir, "missing.csv")

	rq.NoError(os.WriteFile(empty, nil, 0o600))
	rq.NoError(os.WriteFile(sample, []byte("code\nA\n"), 0o600))

	path, err := csvsource.FirstExisting(missing, empty, sample)
	rq.NoError(err)
	rq.Equal(sample, path)

	_, err = csvsource.FirstExisting(missing, empty)
	rq.ErrorIs(err, csvsource.ErrNoSource)

	rows, used, err := csvsource.ReadFeaturesFile(missing, sample)
	rq.NoError(err)
	rq.Equal(sample, used)
	rq.Len(rows, 1)
}

func TestSampleData(t *testing.T) {
	rq := require.New(t)

	rows, _, err := csvsource.ReadFeaturesFile("../../../data/area_features_sample.csv")
	rq.NoError(err)
	rq.NotEmpty(rows)

	table, _, err := csvsource.ReadBracketsFile("../../../data/duty_brackets_sample.csv")
	rq.NoError(err)
	rq.NotEmpty(table.For(value.JurisdictionVIC, value.OccupancyInvestor))
}
