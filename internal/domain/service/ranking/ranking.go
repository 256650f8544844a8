// Package ranking собирает рейтинг районов поверх движка оценки.
package ranking

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"propinvest/internal/domain"
	"propinvest/internal/domain/entity"
	"propinvest/internal/domain/service/scoring"
	"propinvest/internal/domain/value"
	"propinvest/pkg/errcodes"
	"propinvest/pkg/logx"
)

type AreaRepository interface {
	ListAreas(ctx context.Context) ([]entity.FeatureRow, error)
	UpsertAreas(ctx context.Context, rows []entity.FeatureRow) error
}

type SnapshotStore interface {
	Save(ctx context.Context, snapshot entity.RankingSnapshot) error
	Latest(ctx context.Context) (entity.RankingSnapshot, error)
}

type Service struct {
	areas     AreaRepository
	snapshots SnapshotStore
	engine    *scoring.Engine
	digest    chan<- entity.RankingSnapshot
	now       func() time.Time
}

func NewService(areas AreaRepository, snapshots SnapshotStore) *Service {
	return &Service{
		areas:     areas,
		snapshots: snapshots,
		engine:    scoring.NewEngine(),
		now:       time.Now,
	}
}

// WithDigest канал, в который публикуется каждый пересчитанный снимок.
// Отправка неблокирующая: если получатель не успевает, снимок пропускается.
func (s *Service) WithDigest(ch chan<- entity.RankingSnapshot) *Service {
	s.digest = ch
	return s
}

func (s *Service) WithEngine(engine *scoring.Engine) *Service {
	s.engine = engine
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// RankRows оценивает переданные строки. limit <= 0 возвращает все.
func (s *Service) RankRows(
	ctx context.Context,
	rows []entity.FeatureRow,
	weights value.Weights,
	limit int,
) ([]entity.ScoredRow, error) {
	if err := validateRows(rows); err != nil {
		return nil, err
	}

	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("weights.Validate: %w", err)
	}

	start := time.Now()
	ranked := scoring.Rank(s.engine.Score(rows, weights))

	scoringDuration.Observe(time.Since(start).Seconds())

	logger(ctx).Debug("areas ranked",
		slog.Int(logx.FieldAreas, len(rows)),
		slog.Any(logx.FieldWeights, weights.Resolved().ToMap()),
	)

	return scoring.Limit(ranked, limit), nil
}

// Rank оценивает сохранённую таблицу районов.
func (s *Service) Rank(ctx context.Context, weights value.Weights, limit int) ([]entity.ScoredRow, error) {
	rows, err := s.areas.ListAreas(ctx)
	if err != nil {
		return nil, fmt.Errorf("areas.ListAreas: %w", err)
	}

	return s.RankRows(ctx, rows, weights, limit)
}

// Refresh пересчитывает рейтинг с весами по умолчанию и сохраняет снимок.
func (s *Service) Refresh(ctx context.Context) (entity.RankingSnapshot, error) {
	weights := value.DefaultWeights()

	rows, err := s.Rank(ctx, weights, 0)
	if err != nil {
		return entity.RankingSnapshot{}, fmt.Errorf("s.Rank: %w", err)
	}

	snapshot := entity.RankingSnapshot{
		ID:        uuid.New(),
		CreatedAt: s.now().UTC(),
		Weights:   weights,
		Rows:      rows,
	}

	if err := s.snapshots.Save(ctx, snapshot); err != nil {
		return entity.RankingSnapshot{}, fmt.Errorf("snapshots.Save: %w", err)
	}

	refreshes.Inc()
	rankedAreas.Set(float64(len(rows)))

	logger(ctx).Info("ranking refreshed",
		slog.String(logx.FieldSnapshotID, snapshot.ID.String()),
		slog.Int(logx.FieldAreas, len(rows)),
	)

	s.publish(ctx, snapshot)

	return snapshot, nil
}

func (s *Service) Latest(ctx context.Context) (entity.RankingSnapshot, error) {
	snapshot, err := s.snapshots.Latest(ctx)
	if err != nil {
		return entity.RankingSnapshot{}, fmt.Errorf("snapshots.Latest: %w", err)
	}

	return snapshot, nil
}

func (s *Service) ImportAreas(ctx context.Context, rows []entity.FeatureRow) error {
	if len(rows) == 0 {
		return domain.NewError(errcodes.InvalidInput, "no areas to import")
	}

	if err := validateRows(rows); err != nil {
		return err
	}

	if err := s.areas.UpsertAreas(ctx, rows); err != nil {
		return fmt.Errorf("areas.UpsertAreas: %w", err)
	}

	logger(ctx).Info("areas imported", slog.Int(logx.FieldAreas, len(rows)))

	return nil
}

func (s *Service) publish(ctx context.Context, snapshot entity.RankingSnapshot) {
	if s.digest == nil {
		return
	}

	select {
	case s.digest <- snapshot:
	default:
		logger(ctx).Warn("digest channel is full, snapshot skipped",
			slog.String(logx.FieldSnapshotID, snapshot.ID.String()),
		)
	}
}

func validateRows(rows []entity.FeatureRow) error {
	for i, r := range rows {
		if strings.TrimSpace(r.Code) == "" {
			return domain.NewError(errcodes.InvalidInput, fmt.Sprintf("area %d has empty code", i))
		}
	}

	dup := lo.FindDuplicatesBy(rows, func(r entity.FeatureRow) string { return r.Code })
	if len(dup) > 0 {
		codes := lo.Map(dup, func(r entity.FeatureRow, _ int) string { return r.Code })
		return domain.NewError(errcodes.DuplicateAreaCode, "duplicate area codes: "+strings.Join(codes, ", "))
	}

	return nil
}
