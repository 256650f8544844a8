package normalize_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"propinvest/internal/domain/service/normalize"
	"propinvest/pkg/tests"
)

func ptr(v float64) *float64 {
	return &v
}

func TestZScore(t *testing.T) {
	testCases := []struct {
		name   string
		column []*float64
		want   []float64
	}{
		{
			name:   "Empty",
			column: nil,
			want:   []float64{},
		},
		{
			name:   "Single value",
			column: []*float64{ptr(4.2)},
			want:   []float64{0},
		},
		{
			name:   "Constant",
			column: []*float64{ptr(5), ptr(5), ptr(5)},
			want:   []float64{0, 0, 0},
		},
		{
			name:   "Constant fraction",
			column: []*float64{ptr(0.1), ptr(0.1), ptr(0.1), ptr(0.1), ptr(0.1), ptr(0.1), ptr(0.1)},
			want:   []float64{0, 0, 0, 0, 0, 0, 0},
		},
		{
			name:   "All missing",
			column: []*float64{nil, nil},
			want:   []float64{0, 0},
		},
		{
			name:   "Two values",
			column: []*float64{ptr(1), ptr(3)},
			want:   []float64{-1, 1},
		},
		{
			name:   "Three values",
			column: []*float64{ptr(1), ptr(2), ptr(3)},
			want:   []float64{-math.Sqrt(1.5), 0, math.Sqrt(1.5)},
		},
		{
			name:   "Missing imputed with mean",
			column: []*float64{ptr(1), nil, ptr(3)},
			want:   []float64{-math.Sqrt(1.5), 0, math.Sqrt(1.5)},
		},
		{
			name:   "NaN and Inf treated as missing",
			column: []*float64{ptr(1), ptr(math.NaN()), ptr(3), ptr(math.Inf(-1))},
			want:   []float64{-math.Sqrt(2), 0, math.Sqrt(2), 0},
		},
		{
			name:   "One present value among missing",
			column: []*float64{nil, ptr(7), nil},
			want:   []float64{0, 0, 0},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			got := normalize.ZScore(tc.column)

			rq.Len(got, len(tc.want))

			for i := range tc.want {
				rq.InDelta(tc.want[i], got[i], 1e-12, "index %d", i)
			}
		})
	}
}

func TestZScoreConstantIsExactlyZero(t *testing.T) {
	rq := require.New(t)

	got := normalize.ZScore([]*float64{ptr(0.3), ptr(0.3), nil, ptr(0.3)})

	for _, v := range got {
		rq.Zero(v)
	}
}

func TestZScoreMoments(t *testing.T) {
	rq := require.New(t)
	random := tests.NewRandomizer()

	for range 50 {
		column := make([]*float64, 25)
		for i := range column {
			if random.Bool() && i > 1 {
				continue
			}

			column[i] = ptr(random.Float64() * 1000)
		}

		got := normalize.ZScore(column)

		var sum, sq float64
		for _, v := range got {
			sum += v
		}

		mean := sum / float64(len(got))
		for _, v := range got {
			sq += (v - mean) * (v - mean)
		}

		rq.InDelta(0, mean, 1e-9)
		rq.InDelta(1, math.Sqrt(sq/float64(len(got))), 1e-9)
	}
}
