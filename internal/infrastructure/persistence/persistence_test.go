package persistence_test

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"propinvest/internal/domain/entity"
	"propinvest/internal/domain/value"
	"propinvest/internal/infrastructure/persistence"
	"propinvest/pkg/dbtest"
)

func newDB(t *testing.T) *sqlx.DB {
	t.Helper()

	return dbtest.NewSQLite(t, "../../../migrations/001_init.sql")
}

func ptr(v float64) *float64 {
	return &v
}

func TestAreaRepository(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	repo := persistence.NewAreaRepository(newDB(t))

	rows, err := repo.ListAreas(ctx)
	rq.NoError(err)
	rq.Empty(rows)

	rq.NoError(repo.UpsertAreas(ctx, []entity.FeatureRow{
		{Code: "b", Name: "Brunswick", Values: map[value.Factor]*float64{
			value.FactorGrossYield: ptr(3.4),
			value.FactorIRSADRank:  ptr(9),
		}},
		{Code: "a", Name: "Altona", Values: map[value.Factor]*float64{
			value.FactorVacancyRate: ptr(1.1),
		}},
	}))

	rq.NoError(repo.UpsertAreas(ctx, []entity.FeatureRow{
		{Code: "c", Name: "Coburg"},
		{Code: "b", Name: "Brunswick East", Values: map[value.Factor]*float64{
			value.FactorGrossYield: ptr(3.6),
		}},
	}))

	rows, err = repo.ListAreas(ctx)
	rq.NoError(err)
	rq.Len(rows, 3)

	// Порядок первого импорта сохраняется при обновлении.
	rq.Equal("b", rows[0].Code)
	rq.Equal("a", rows[1].Code)
	rq.Equal("c", rows[2].Code)

	rq.Equal("Brunswick East", rows[0].Name)

	v, ok := rows[0].Value(value.FactorGrossYield)
	rq.True(ok)
	rq.InDelta(3.6, v, 1e-12)

	_, ok = rows[0].Value(value.FactorIRSADRank)
	rq.False(ok)

	v, ok = rows[1].Value(value.FactorVacancyRate)
	rq.True(ok)
	rq.InDelta(1.1, v, 1e-12)

	rq.Len(rows[2].Values, len(value.Factors()))
}

func TestBracketRepository(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	d := decimal.RequireFromString

	repo := persistence.NewBracketRepository(newDB(t))
	vic, inv := value.JurisdictionVIC, value.OccupancyInvestor

	table, err := repo.ListBrackets(ctx, vic, inv)
	rq.NoError(err)
	rq.Empty(table)

	rq.NoError(repo.ReplaceBrackets(ctx, vic, inv, entity.BracketTable{
		{BracketMin: d("130001"), BracketMax: d("960000"), Base: d("2870"), MarginalRatePct: d("6"), MarginalAboveThreshold: d("130000")},
		{BracketMin: d("0"), BracketMax: d("25000"), Base: d("0"), MarginalRatePct: d("1.4"), MarginalAboveThreshold: d("0")},
	}))

	rq.NoError(repo.ReplaceBrackets(ctx, value.JurisdictionNSW, value.OccupancyOwnerOccupier, entity.BracketTable{
		{BracketMin: d("0"), BracketMax: d("1000000"), Base: d("10"), MarginalRatePct: d("4.5"), MarginalAboveThreshold: d("0")},
	}))

	table, err = repo.ListBrackets(ctx, vic, inv)
	rq.NoError(err)
	rq.Len(table, 2)

	// Порядок таблицы сохраняется как есть.
	rq.True(d("130001").Equal(table[0].BracketMin))
	rq.True(d("1.4").Equal(table[1].MarginalRatePct))
	rq.Equal(vic, table[0].Jurisdiction)
	rq.Equal(inv, table[0].Occupancy)

	rq.NoError(repo.ReplaceBrackets(ctx, vic, inv, entity.BracketTable{
		{BracketMin: d("0"), BracketMax: d("5000000"), Base: d("1"), MarginalRatePct: d("5.5"), MarginalAboveThreshold: d("0")},
	}))

	table, err = repo.ListBrackets(ctx, vic, inv)
	rq.NoError(err)
	rq.Len(table, 1)
	rq.True(d("5.5").Equal(table[0].MarginalRatePct))

	keys, err := repo.ListKeys(ctx)
	rq.NoError(err)
	rq.Equal([]entity.BracketKey{
		{Jurisdiction: value.JurisdictionNSW, Occupancy: value.OccupancyOwnerOccupier},
		{Jurisdiction: vic, Occupancy: inv},
	}, keys)
}
