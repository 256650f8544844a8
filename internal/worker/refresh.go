package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"propinvest/internal/domain/entity"
	"propinvest/pkg/logx"
)

const (
	TypeRankingRefresh = "ranking:refresh"

	QueueDefault = "default"

	refreshUniqueTTL = time.Minute
	refreshTimeout   = 5 * time.Minute
)

type RankingRefresher interface {
	Refresh(ctx context.Context) (entity.RankingSnapshot, error)
}

// NewRefreshTask задача пересчёта рейтинга. Повторная постановка в течение
// минуты отклоняется asynq как дубликат.
func NewRefreshTask() *asynq.Task {
	return asynq.NewTask(
		TypeRankingRefresh,
		nil,
		asynq.Queue(QueueDefault),
		asynq.Unique(refreshUniqueTTL),
		asynq.Timeout(refreshTimeout),
	)
}

type RefreshHandler struct {
	ranking RankingRefresher
}

func NewRefreshHandler(ranking RankingRefresher) *RefreshHandler {
	return &RefreshHandler{ranking: ranking}
}

func (h *RefreshHandler) Handle(ctx context.Context, task *asynq.Task) error {
	start := time.Now()

	snapshot, err := h.ranking.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("ranking.Refresh: %w", err)
	}

	logger(ctx).Info("refresh task done",
		slog.String(logx.FieldTaskType, task.Type()),
		slog.String(logx.FieldSnapshotID, snapshot.ID.String()),
		slog.Int(logx.FieldAreas, len(snapshot.Rows)),
		slog.Int64(logx.FieldDurationMs, time.Since(start).Milliseconds()),
	)

	return nil
}
