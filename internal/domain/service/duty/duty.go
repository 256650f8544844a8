// Package duty оценивает гербовый сбор (stamp duty) по таблице ступеней.
package duty

import (
	"fmt"

	"github.com/shopspring/decimal"

	"propinvest/internal/domain"
	"propinvest/internal/domain/entity"
	"propinvest/internal/domain/value"
	"propinvest/pkg/errcodes"
)

var hundred = decimal.NewFromInt(100) //nolint:gochecknoglobals,mnd

// Estimate выбирает первую по порядку таблицы ступень, в которую попадает цена.
// Если такой нет, берётся ступень с наибольшей верхней границей, а результат
// помечается как оценка. Без строк для пары штат/тип владения возвращается ошибка.
func Estimate(
	price decimal.Decimal,
	jurisdiction value.Jurisdiction,
	occupancy value.Occupancy,
	table entity.BracketTable,
) (entity.DutyEstimate, error) {
	rows := table.For(jurisdiction, occupancy)
	if len(rows) == 0 {
		return entity.DutyEstimate{}, domain.NewError(
			errcodes.MissingReferenceData,
			fmt.Sprintf("no duty brackets for %s/%s", jurisdiction, occupancy),
		)
	}

	for _, b := range rows {
		if b.Contains(price) {
			return entity.DutyEstimate{
				Amount:  Amount(price, b),
				Outcome: entity.DutyOutcomeFound,
				Bracket: b,
			}, nil
		}
	}

	top := rows[0]
	for _, b := range rows[1:] {
		// >= : при равных границах побеждает более поздняя строка
		if b.BracketMax.GreaterThanOrEqual(top.BracketMax) {
			top = b
		}
	}

	return entity.DutyEstimate{
		Amount:  Amount(price, top),
		Outcome: entity.DutyOutcomeTopBracketFallback,
		Bracket: top,
	}, nil
}

// Amount base + rate/100 * max(0, price - threshold).
func Amount(price decimal.Decimal, b entity.DutyBracket) decimal.Decimal {
	above := decimal.Max(decimal.Zero, price.Sub(b.MarginalAboveThreshold))

	return b.Base.Add(b.MarginalRatePct.Div(hundred).Mul(above))
}
