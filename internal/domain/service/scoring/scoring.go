// Package scoring считает композитную инвестиционную оценку районов.
package scoring

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"propinvest/internal/domain/entity"
	"propinvest/internal/domain/service/normalize"
	"propinvest/internal/domain/value"
)

const displayMidpoint = 50.0

type Engine struct {
	parallelism int
}

func NewEngine() *Engine {
	return &Engine{
		parallelism: len(value.Factors()),
	}
}

// WithParallelism ограничивает число столбцов, нормализуемых одновременно.
func (e *Engine) WithParallelism(n int) *Engine {
	if n > 0 {
		e.parallelism = n
	}

	return e
}

// Score нормализует каждый фактор по всей совокупности и складывает вклады
// в фиксированном порядке факторов. Порядок строк сохраняется.
func (e *Engine) Score(rows []entity.FeatureRow, weights value.Weights) []entity.ScoredRow {
	out := make([]entity.ScoredRow, len(rows))
	if len(rows) == 0 {
		return out
	}

	factors := value.Factors()
	columns := make([][]float64, len(factors))

	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(e.parallelism)

	for i, f := range factors {
		g.Go(func() error {
			column := make([]*float64, len(rows))
			for j, row := range rows {
				if v, ok := row.Value(f); ok {
					column[j] = &v
				}
			}

			columns[i] = normalize.ZScore(column)

			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // горутины не возвращают ошибок

	for j, row := range rows {
		scored := entity.ScoredRow{
			FeatureRow:    row,
			Normalized:    make(map[value.Factor]float64, len(factors)),
			Contributions: make(map[value.Factor]float64, len(factors)),
		}

		for i, f := range factors {
			z := f.Direction() * columns[i][j]
			c := weights.Weight(f) * z

			scored.Normalized[f] = z
			scored.Contributions[f] = c
			scored.Score += c
		}

		out[j] = scored
	}

	return out
}

// Rank сортирует по убыванию оценки; при равенстве сохраняется входной порядок.
// Заполняет Rank и DisplayScore. Исходный срез не меняется.
func Rank(rows []entity.ScoredRow) []entity.ScoredRow {
	out := make([]entity.ScoredRow, len(rows))
	copy(out, rows)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	DisplayScale(out)

	for i := range out {
		out[i].Rank = i + 1
	}

	return out
}

// DisplayScale линейно переводит оценки в 0..100 для отображения.
// Если все оценки равны, каждой строке ставится 50.
func DisplayScale(rows []entity.ScoredRow) {
	if len(rows) == 0 {
		return
	}

	lo, hi := rows[0].Score, rows[0].Score
	for _, r := range rows[1:] {
		lo = min(lo, r.Score)
		hi = max(hi, r.Score)
	}

	for i := range rows {
		if hi == lo {
			rows[i].DisplayScore = displayMidpoint
			continue
		}

		rows[i].DisplayScore = (rows[i].Score - lo) / (hi - lo) * 100 //nolint:mnd
	}
}

// Limit первые n строк; n <= 0 означает все.
func Limit(rows []entity.ScoredRow, n int) []entity.ScoredRow {
	if n <= 0 || n >= len(rows) {
		return rows
	}

	return rows[:n]
}
