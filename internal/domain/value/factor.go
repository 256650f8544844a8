package value

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"propinvest/internal/domain"
	"propinvest/pkg/errcodes"
)

// Factor показатель района, участвующий в композитной оценке.
type Factor string

const (
	FactorGrossYield       Factor = "gross_yield"
	FactorVacancyRate      Factor = "vacancy_rate"
	FactorOwnershipPct     Factor = "ownership_pct"
	FactorPriceMomentumQoQ Factor = "price_momentum_qoq"
	FactorIRSADRank        Factor = "irsad_rank"
	FactorDistanceCBDKm    Factor = "distance_cbd_km"
)

type factorMeta struct {
	direction     float64
	defaultWeight float64
}

//nolint:gochecknoglobals
var factorOrder = []Factor{
	FactorGrossYield,
	FactorVacancyRate,
	FactorOwnershipPct,
	FactorPriceMomentumQoQ,
	FactorIRSADRank,
	FactorDistanceCBDKm,
}

//nolint:gochecknoglobals,mnd
var factorMetas = map[Factor]factorMeta{
	FactorGrossYield:       {direction: +1, defaultWeight: 0.25},
	FactorVacancyRate:      {direction: -1, defaultWeight: 0.15},
	FactorOwnershipPct:     {direction: +1, defaultWeight: 0.15},
	FactorPriceMomentumQoQ: {direction: -1, defaultWeight: 0.20},
	FactorIRSADRank:        {direction: +1, defaultWeight: 0.15},
	FactorDistanceCBDKm:    {direction: -1, defaultWeight: 0.10},
}

// Factors возвращает все факторы в фиксированном порядке суммирования.
func Factors() []Factor {
	out := make([]Factor, len(factorOrder))
	copy(out, factorOrder)

	return out
}

func ParseFactor(s string) (Factor, error) {
	f := Factor(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := factorMetas[f]; !ok {
		return "", domain.NewError(errcodes.ValidationError, fmt.Sprintf("unknown factor %q", s))
	}

	return f, nil
}

func (f Factor) String() string {
	return string(f)
}

// Direction +1, если большее значение лучше, иначе -1.
func (f Factor) Direction() float64 {
	return factorMetas[f].direction
}

func (f Factor) DefaultWeight() float64 {
	return factorMetas[f].defaultWeight
}

// Weights веса факторов. Сумма не обязана быть равна 1.
type Weights map[Factor]float64

func DefaultWeights() Weights {
	w := make(Weights, len(factorOrder))
	for _, f := range factorOrder {
		w[f] = f.DefaultWeight()
	}

	return w
}

// WeightsFromMap строит веса из произвольных ключей. Неизвестные ключи
// отбрасываются и возвращаются отдельно (по алфавиту), чтобы вызывающий мог их залогировать.
// Если несколько ключей указывают на один фактор, побеждает точное имя фактора,
// иначе первый ключ по алфавиту.
func WeightsFromMap(raw map[string]float64) (Weights, []string) {
	w := make(Weights, len(raw))
	exact := make(map[Factor]bool, len(raw))

	var unknown []string

	for _, k := range slices.Sorted(maps.Keys(raw)) {
		f, err := ParseFactor(k)
		if err != nil {
			unknown = append(unknown, k)
			continue
		}

		isExact := k == string(f)
		if _, seen := w[f]; seen && (exact[f] || !isExact) {
			continue
		}

		w[f] = raw[k]
		exact[f] = isExact
	}

	return w, unknown
}

// Weight вес фактора; если вызывающий его не задал, берётся вес по умолчанию.
func (w Weights) Weight(f Factor) float64 {
	if v, ok := w[f]; ok {
		return v
	}

	return f.DefaultWeight()
}

// Resolved возвращает полный набор весов с подставленными значениями по умолчанию.
func (w Weights) Resolved() Weights {
	out := make(Weights, len(factorOrder))
	for _, f := range factorOrder {
		out[f] = w.Weight(f)
	}

	return out
}

func (w Weights) Validate() error {
	for _, f := range factorOrder {
		v, ok := w[f]
		if !ok {
			continue
		}

		if math.IsNaN(v) || math.IsInf(v, 0) {
			return domain.NewError(errcodes.InvalidWeights, fmt.Sprintf("weight of %s is not a finite number", f))
		}

		if v < 0 {
			return domain.NewError(errcodes.InvalidWeights, fmt.Sprintf("weight of %s is negative", f))
		}
	}

	return nil
}

func (w Weights) ToMap() map[string]float64 {
	out := make(map[string]float64, len(w))
	for f, v := range w {
		out[f.String()] = v
	}

	return out
}
