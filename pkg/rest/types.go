// Данный файл должен быть сгенерирован из openapi спецификации и называться types.gen.go
package rest

import (
	"time"

	"github.com/shopspring/decimal"
)

// Factor Описание фактора оценки
type Factor struct {
	Name          string  `json:"name"`
	Direction     int     `json:"direction"`
	DefaultWeight float64 `json:"defaultWeight"`
}

// FeatureRow Показатели района. null или отсутствие ключа означает пропуск
type FeatureRow struct {
	Code   string              `json:"code" validate:"required"`
	Name   string              `json:"name"`
	Values map[string]*float64 `json:"values"`
}

// RankRequest Запрос на оценку переданных районов
type RankRequest struct {
	Rows    []FeatureRow       `json:"rows" validate:"dive"`
	Weights map[string]float64 `json:"weights"`
	Limit   int                `json:"limit" validate:"gte=0"`
}

// ScoredArea Район с итоговой оценкой
type ScoredArea struct {
	Code          string             `json:"code"`
	Name          string             `json:"name"`
	Rank          int                `json:"rank"`
	Score         float64            `json:"score"`
	DisplayScore  float64            `json:"displayScore"`
	Normalized    map[string]float64 `json:"normalized"`
	Contributions map[string]float64 `json:"contributions"`
}

// Ranking Результат оценки
type Ranking struct {
	Areas          []ScoredArea       `json:"areas"`
	Weights        map[string]float64 `json:"weights"`
	IgnoredWeights []string           `json:"ignoredWeights,omitempty"`
}

// Snapshot Сохранённый рейтинг
type Snapshot struct {
	ID         string             `json:"id"`
	CreatedAt  time.Time          `json:"createdAt"`
	Weights    map[string]float64 `json:"weights"`
	TotalAreas int                `json:"totalAreas"`
	Areas      []ScoredArea       `json:"areas"`
}

// RefreshResponse Результат постановки пересчёта в очередь
type RefreshResponse struct {
	TaskID string `json:"taskId,omitempty"`
	Queued bool   `json:"queued"`
}

// ImportAreasRequest Загрузка таблицы районов
type ImportAreasRequest struct {
	Areas []FeatureRow `json:"areas" validate:"required,min=1,dive"`
}

// DealRequest Параметры сделки
type DealRequest struct {
	Address                 string   `json:"address,omitempty"`
	Price                   float64  `json:"price" validate:"gte=0"`
	WeeklyRent              float64  `json:"weeklyRent" validate:"gte=0"`
	AnnualExpenses          float64  `json:"annualExpenses" validate:"gte=0"`
	DepositPct              float64  `json:"depositPct" validate:"gte=0,lte=100"`
	AnnualRatePct           float64  `json:"annualRatePct" validate:"gte=0"`
	TermYears               int      `json:"termYears" validate:"required,gt=0"`
	Jurisdiction            string   `json:"jurisdiction" validate:"required"`
	Occupancy               string   `json:"occupancy" validate:"required"`
	ClosingCosts            float64  `json:"closingCosts" validate:"gte=0"`
	MortgageInsuranceCost   float64  `json:"mortgageInsuranceCost" validate:"gte=0"`
	ServiceabilityBufferPct *float64 `json:"serviceabilityBufferPct,omitempty"`
}

// DealResponse Расчёт по сделке
type DealResponse struct {
	Deposit                  float64      `json:"deposit"`
	Loan                     float64      `json:"loan"`
	MonthlyRepayment         float64      `json:"monthlyRepayment"`
	AssessedRatePct          float64      `json:"assessedRatePct"`
	AssessedMonthlyRepayment float64      `json:"assessedMonthlyRepayment"`
	LVRPct                   float64      `json:"lvrPct"`
	MortgageInsuranceLikely  bool         `json:"mortgageInsuranceLikely"`
	GrossYieldPct            float64      `json:"grossYieldPct"`
	NetYieldPct              float64      `json:"netYieldPct"`
	AnnualNetCashflow        float64      `json:"annualNetCashflow"`
	CashOnCashPct            float64      `json:"cashOnCashPct"`
	Duty                     DutyEstimate `json:"duty"`
}

// DutyEstimate Пошлина. estimate=true, если цена вне опубликованных ступеней
type DutyEstimate struct {
	Amount   decimal.Decimal `json:"amount"`
	Outcome  string          `json:"outcome"`
	Estimate bool            `json:"estimate"`
	Bracket  DutyBracket     `json:"bracket"`
}

// DutyBracket Ступень таблицы пошлины
type DutyBracket struct {
	BracketMin             decimal.Decimal `json:"bracketMin"`
	BracketMax             decimal.Decimal `json:"bracketMax"`
	Base                   decimal.Decimal `json:"base"`
	MarginalRatePct        decimal.Decimal `json:"marginalRatePct"`
	MarginalAboveThreshold decimal.Decimal `json:"marginalAboveThreshold"`
}

// BracketTableRequest Замена таблицы пошлины
type BracketTableRequest struct {
	Brackets []DutyBracket `json:"brackets" validate:"required,min=1"`
}

// BracketKey Штат и тип владения, для которых загружена таблица
type BracketKey struct {
	Jurisdiction string `json:"jurisdiction"`
	Occupancy    string `json:"occupancy"`
}

// Error Модель ошибок
type Error struct {
	// Code Код ошибки
	Code ErrorCode `json:"code"`

	// Message Сообщение об ошибке (для отображения в UI в будущем)
	Message string `json:"message"`

	// SupportID Идентификатор запроса для обращения в поддержку
	SupportID string `json:"supportId"`
}

// ErrorCode Код ошибки
type ErrorCode string
