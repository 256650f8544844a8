// Package snapshot хранит последний пересчитанный рейтинг в Redis.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"propinvest/internal/domain"
	"propinvest/internal/domain/entity"
	"propinvest/internal/domain/value"
	"propinvest/pkg/errcodes"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

const (
	defaultKey = "propinvest:ranking:latest"
	defaultTTL = 7 * 24 * time.Hour
)

type RedisStore struct {
	client redis.Cmdable
	key    string
	ttl    time.Duration
}

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{
		client: client,
		key:    defaultKey,
		ttl:    defaultTTL,
	}
}

func (s *RedisStore) WithKey(key string) *RedisStore {
	s.key = key
	return s
}

// WithTTL 0 хранит снимок без срока.
func (s *RedisStore) WithTTL(ttl time.Duration) *RedisStore {
	s.ttl = ttl
	return s
}

func (s *RedisStore) Save(ctx context.Context, snapshot entity.RankingSnapshot) error {
	b, err := encode(snapshot)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to encode snapshot")
	}

	if err := s.client.Set(ctx, s.key, b, s.ttl).Err(); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to store snapshot")
	}

	return nil
}

func (s *RedisStore) Latest(ctx context.Context) (entity.RankingSnapshot, error) {
	b, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return entity.RankingSnapshot{}, domain.NewError(errcodes.SnapshotNotFound, "ranking has not been computed yet")
		}

		return entity.RankingSnapshot{}, domain.WrapError(err, errcodes.InternalServerError, "failed to load snapshot")
	}

	snapshot, err := decode(b)
	if err != nil {
		return entity.RankingSnapshot{}, domain.WrapError(err, errcodes.InternalServerError, "failed to decode snapshot")
	}

	return snapshot, nil
}

type snapshotDTO struct {
	ID        string             `json:"id"`
	CreatedAt time.Time          `json:"createdAt"`
	Weights   map[string]float64 `json:"weights"`
	Rows      []rowDTO           `json:"rows"`
}

type rowDTO struct {
	Code          string              `json:"code"`
	Name          string              `json:"name"`
	Values        map[string]*float64 `json:"values"`
	Normalized    map[string]float64  `json:"normalized"`
	Contributions map[string]float64  `json:"contributions"`
	Score         float64             `json:"score"`
	Rank          int                 `json:"rank"`
	DisplayScore  float64             `json:"displayScore"`
}

func encode(s entity.RankingSnapshot) ([]byte, error) {
	dto := snapshotDTO{
		ID:        s.ID.String(),
		CreatedAt: s.CreatedAt,
		Weights:   s.Weights.ToMap(),
		Rows:      make([]rowDTO, len(s.Rows)),
	}

	for i, r := range s.Rows {
		values := make(map[string]*float64, len(r.Values))
		for f := range r.Values {
			if v, ok := r.Value(f); ok {
				values[f.String()] = &v
			}
		}

		dto.Rows[i] = rowDTO{
			Code:          r.Code,
			Name:          r.Name,
			Values:        values,
			Normalized:    factorMap(r.Normalized),
			Contributions: factorMap(r.Contributions),
			Score:         r.Score,
			Rank:          r.Rank,
			DisplayScore:  r.DisplayScore,
		}
	}

	b, err := json.Marshal(dto)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	return b, nil
}

func decode(b []byte) (entity.RankingSnapshot, error) {
	var dto snapshotDTO
	if err := json.Unmarshal(b, &dto); err != nil {
		return entity.RankingSnapshot{}, fmt.Errorf("json.Unmarshal: %w", err)
	}

	id, err := uuid.Parse(dto.ID)
	if err != nil {
		return entity.RankingSnapshot{}, fmt.Errorf("uuid.Parse: %w", err)
	}

	weights, _ := value.WeightsFromMap(dto.Weights)

	out := entity.RankingSnapshot{
		ID:        id,
		CreatedAt: dto.CreatedAt,
		Weights:   weights,
		Rows:      make([]entity.ScoredRow, len(dto.Rows)),
	}

	for i, r := range dto.Rows {
		values := make(map[value.Factor]*float64, len(r.Values))
		for k, v := range r.Values {
			values[value.Factor(k)] = v
		}

		out.Rows[i] = entity.ScoredRow{
			FeatureRow: entity.FeatureRow{
				Code:   r.Code,
				Name:   r.Name,
				Values: values,
			},
			Normalized:    domainMap(r.Normalized),
			Contributions: domainMap(r.Contributions),
			Score:         r.Score,
			Rank:          r.Rank,
			DisplayScore:  r.DisplayScore,
		}
	}

	return out, nil
}

func factorMap(m map[value.Factor]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for f, v := range m {
		out[f.String()] = v
	}

	return out
}

func domainMap(m map[string]float64) map[value.Factor]float64 {
	out := make(map[value.Factor]float64, len(m))
	for k, v := range m {
		out[value.Factor(k)] = v
	}

	return out
}
