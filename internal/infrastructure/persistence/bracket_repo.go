package persistence

import (
	"context"

	"github.com/jmoiron/sqlx"

	"propinvest/internal/domain"
	"propinvest/internal/domain/entity"
	"propinvest/internal/domain/value"
	"propinvest/pkg/errcodes"
)

type BracketRepository struct {
	db *sqlx.DB
}

func NewBracketRepository(db *sqlx.DB) *BracketRepository {
	return &BracketRepository{db: db}
}

// ListBrackets строки таблицы в исходном порядке. Пустой результат не ошибка.
func (r *BracketRepository) ListBrackets(
	ctx context.Context,
	j value.Jurisdiction,
	o value.Occupancy,
) (entity.BracketTable, error) {
	query := r.db.Rebind(`
		SELECT jurisdiction, occupancy, position, bracket_min, bracket_max,
		       base, marginal_rate_pct, marginal_above_threshold
		FROM duty_brackets
		WHERE jurisdiction = ? AND occupancy = ?
		ORDER BY position`)

	var schemas []bracketSchema
	if err := r.db.SelectContext(ctx, &schemas, query, j.String(), o.String()); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list duty brackets")
	}

	table := make(entity.BracketTable, 0, len(schemas))

	for _, s := range schemas {
		b, err := s.toDomain()
		if err != nil {
			return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to convert duty bracket")
		}

		table = append(table, b)
	}

	return table, nil
}

// ReplaceBrackets атомарно заменяет таблицу для пары штат/тип владения.
func (r *BracketRepository) ReplaceBrackets(
	ctx context.Context,
	j value.Jurisdiction,
	o value.Occupancy,
	table entity.BracketTable,
) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		del := tx.Rebind(`DELETE FROM duty_brackets WHERE jurisdiction = ? AND occupancy = ?`)
		if _, err := tx.ExecContext(ctx, del, j.String(), o.String()); err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to delete duty brackets")
		}

		query := `
			INSERT INTO duty_brackets (
				jurisdiction, occupancy, position, bracket_min, bracket_max,
				base, marginal_rate_pct, marginal_above_threshold
			) VALUES (
				:jurisdiction, :occupancy, :position, :bracket_min, :bracket_max,
				:base, :marginal_rate_pct, :marginal_above_threshold
			)`

		for i, b := range table {
			b.Jurisdiction, b.Occupancy = j, o

			if _, err := tx.NamedExecContext(ctx, query, fromDutyBracket(b, i)); err != nil {
				return domain.WrapError(err, errcodes.InternalServerError, "failed to insert duty bracket")
			}
		}

		return nil
	})
}

// ListKeys пары штат/тип владения, для которых есть таблицы.
func (r *BracketRepository) ListKeys(ctx context.Context) ([]entity.BracketKey, error) {
	query := `
		SELECT DISTINCT jurisdiction, occupancy
		FROM duty_brackets
		ORDER BY jurisdiction, occupancy`

	var keys []struct {
		Jurisdiction string `db:"jurisdiction"`
		Occupancy    string `db:"occupancy"`
	}

	if err := r.db.SelectContext(ctx, &keys, query); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list jurisdictions")
	}

	out := make([]entity.BracketKey, 0, len(keys))

	for _, k := range keys {
		j, err := value.ParseJurisdiction(k.Jurisdiction)
		if err != nil {
			return nil, domain.WrapError(err, errcodes.InternalServerError, "bad jurisdiction in storage")
		}

		o, err := value.ParseOccupancy(k.Occupancy)
		if err != nil {
			return nil, domain.WrapError(err, errcodes.InternalServerError, "bad occupancy in storage")
		}

		out = append(out, entity.BracketKey{Jurisdiction: j, Occupancy: o})
	}

	return out, nil
}
