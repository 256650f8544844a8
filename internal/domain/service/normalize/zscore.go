// Package normalize приводит столбцы показателей к общей шкале.
package normalize

import (
	"math"
)

// ZScore нормализует столбец по всей совокупности (σ генеральной совокупности).
//
// nil, NaN и бесконечности считаются отсутствующими и заменяются средним по
// присутствующим значениям, поэтому их z-оценка ровно 0. Если присутствующих
// значений нет или все они равны, результат целиком из нулей.
func ZScore(column []*float64) []float64 {
	out := make([]float64, len(column))

	present := make([]float64, 0, len(column))
	for _, v := range column {
		if ok(v) {
			present = append(present, *v)
		}
	}

	if len(present) == 0 || constant(present) {
		return out
	}

	var sum float64
	for _, v := range present {
		sum += v
	}

	mean := sum / float64(len(present))

	// Импутированные значения равны среднему и не вносят вклад в дисперсию,
	// но делитель считается по всей совокупности.
	var sq float64
	for _, v := range present {
		d := v - mean
		sq += d * d
	}

	sigma := math.Sqrt(sq / float64(len(column)))
	if sigma == 0 || math.IsNaN(sigma) || math.IsInf(sigma, 0) {
		return out
	}

	for i, v := range column {
		if ok(v) {
			out[i] = (*v - mean) / sigma
		}
	}

	return out
}

func ok(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

func constant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}

	return true
}
