package middleware

import (
	"log/slog"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"propinvest/pkg/contextx"
)

// AdminOnly пропускает дальше только обновления от adminID. adminID == 0 запрещает всё.
func AdminOnly(adminID int64) th.Handler {
	return func(ctx *th.Context, update telego.Update) error {
		var from *telego.User

		switch {
		case update.Message != nil:
			from = update.Message.From
		case update.CallbackQuery != nil:
			from = &update.CallbackQuery.From
		}

		if from == nil {
			return nil
		}

		if adminID != 0 && from.ID == adminID {
			return ctx.Next(update)
		}

		contextx.LoggerFromContextOrDefault(ctx).Warn("admin command rejected", slog.Int64("user-id", from.ID))

		return nil
	}
}
