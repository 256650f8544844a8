package handler

import (
	"context"

	"github.com/shopspring/decimal"

	"propinvest/internal/domain/entity"
	"propinvest/internal/domain/value"
)

const defaultPageSize = 10

type rankingReader interface {
	Latest(ctx context.Context) (entity.RankingSnapshot, error)
}

type dutyEstimator interface {
	EstimateDuty(ctx context.Context, price decimal.Decimal, j value.Jurisdiction, o value.Occupancy) (entity.DutyEstimate, error)
}

type refreshQueue interface {
	Enqueue(ctx context.Context) (string, error)
}

type Handler struct {
	rankings rankingReader
	duty     dutyEstimator
	refresh  refreshQueue
	pageSize int
}

func New(rankings rankingReader, duty dutyEstimator, refresh refreshQueue) *Handler {
	return &Handler{
		rankings: rankings,
		duty:     duty,
		refresh:  refresh,
		pageSize: defaultPageSize,
	}
}

// WithPageSize сколько районов показывать на одной странице /top.
func (h *Handler) WithPageSize(n int) *Handler {
	if n > 0 {
		h.pageSize = n
	}

	return h
}
