package entity

import (
	"math"
	"time"

	"github.com/google/uuid"

	"propinvest/internal/domain/value"
)

// FeatureRow исходные показатели одного района. nil означает отсутствие значения.
type FeatureRow struct {
	Code   string
	Name   string
	Values map[value.Factor]*float64
}

// Value значение фактора; NaN и бесконечности считаются отсутствующими.
func (r FeatureRow) Value(f value.Factor) (float64, bool) {
	v, ok := r.Values[f]
	if !ok || v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, false
	}

	return *v, true
}

// ScoredRow район с нормализованными показателями и итоговой оценкой.
type ScoredRow struct {
	FeatureRow

	// Z-оценка, уже умноженная на направление фактора
	Normalized map[value.Factor]float64
	// Normalized * вес
	Contributions map[value.Factor]float64

	Score        float64 // не ограничена, сравнима только внутри одного расчёта
	Rank         int     // 1-based, заполняется при ранжировании
	DisplayScore float64 // 0..100 только для отображения
}

// RankingSnapshot сохранённый результат пересчёта рейтинга.
type RankingSnapshot struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Weights   value.Weights
	Rows      []ScoredRow
}

// Top первые n строк снимка.
func (s RankingSnapshot) Top(n int) []ScoredRow {
	if n <= 0 || n >= len(s.Rows) {
		return s.Rows
	}

	return s.Rows[:n]
}
