package bot

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"propinvest/internal/transport/bot/handler"
	"propinvest/pkg/contextx"
	"propinvest/pkg/logx"
)

const longPollingTimeout = 60

// Bot Telegram-бот с командами просмотра рейтинга и расчёта пошлины.
type Bot struct {
	bot        *telego.Bot
	botHandler *th.BotHandler
}

func New(ctx context.Context, token string, adminID int64, h *handler.Handler) (*Bot, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("telego.NewBot: %w", err)
	}

	updates, err := bot.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		Timeout: longPollingTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("bot.UpdatesViaLongPolling: %w", err)
	}

	botHandler, err := th.NewBotHandler(bot, updates)
	if err != nil {
		return nil, fmt.Errorf("th.NewBotHandler: %w", err)
	}

	h.RegisterRoutes(botHandler, adminID)

	return &Bot{
		bot:        bot,
		botHandler: botHandler,
	}, nil
}

// Run обрабатывает обновления до отмены контекста.
func (b *Bot) Run(ctx context.Context) error {
	log := contextx.LoggerFromContextOrDefault(ctx)

	go func() {
		if err := b.botHandler.Start(); err != nil {
			log.Error("botHandler.Start", logx.Error(err))
		}
	}()

	log.Info("telegram command bot started")

	<-ctx.Done()

	if err := b.botHandler.Stop(); err != nil {
		log.Error("botHandler.Stop", logx.Error(err))
	}

	return ctx.Err()
}
