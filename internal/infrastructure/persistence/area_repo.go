package persistence

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"propinvest/internal/domain"
	"propinvest/internal/domain/entity"
	"propinvest/pkg/errcodes"
)

type AreaRepository struct {
	db *sqlx.DB
}

func NewAreaRepository(db *sqlx.DB) *AreaRepository {
	return &AreaRepository{db: db}
}

// ListAreas возвращает районы в порядке первого импорта.
func (r *AreaRepository) ListAreas(ctx context.Context) ([]entity.FeatureRow, error) {
	query := `
		SELECT code, name, position, gross_yield, vacancy_rate, ownership_pct,
		       price_momentum_qoq, irsad_rank, distance_cbd_km
		FROM area_features
		ORDER BY position, code`

	var schemas []areaSchema
	if err := r.db.SelectContext(ctx, &schemas, query); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list areas")
	}

	rows := make([]entity.FeatureRow, 0, len(schemas))
	for _, s := range schemas {
		rows = append(rows, s.toDomain())
	}

	return rows, nil
}

// UpsertAreas обновляет показатели существующих районов и добавляет новые в конец.
func (r *AreaRepository) UpsertAreas(ctx context.Context, rows []entity.FeatureRow) error {
	if len(rows) == 0 {
		return nil
	}

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var last int
		if err := tx.GetContext(ctx, &last, `SELECT COALESCE(MAX(position), 0) FROM area_features`); err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to read last position")
		}

		query := `
			INSERT INTO area_features (
				code, name, position, gross_yield, vacancy_rate, ownership_pct,
				price_momentum_qoq, irsad_rank, distance_cbd_km
			) VALUES (
				:code, :name, :position, :gross_yield, :vacancy_rate, :ownership_pct,
				:price_momentum_qoq, :irsad_rank, :distance_cbd_km
			)
			ON CONFLICT (code) DO UPDATE SET
				name               = excluded.name,
				gross_yield        = excluded.gross_yield,
				vacancy_rate       = excluded.vacancy_rate,
				ownership_pct      = excluded.ownership_pct,
				price_momentum_qoq = excluded.price_momentum_qoq,
				irsad_rank         = excluded.irsad_rank,
				distance_cbd_km    = excluded.distance_cbd_km`

		for i, row := range rows {
			if _, err := tx.NamedExecContext(ctx, query, fromFeatureRow(row, last+i+1)); err != nil {
				return domain.WrapError(err, errcodes.InternalServerError,
					fmt.Sprintf("failed to upsert area %s", row.Code))
			}
		}

		return nil
	})
}
