package notifier

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"propinvest/internal/domain/entity"
	"propinvest/pkg/logx"
)

const defaultTopN = 10

type TelegramBot struct {
	bot    *telego.Bot
	chatID int64
	topN   int
}

func NewTelegramBot(token string, chatID int64) (*TelegramBot, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("telego.NewBot: %w", err)
	}

	return &TelegramBot{
		bot:    bot,
		chatID: chatID,
		topN:   defaultTopN,
	}, nil
}

// WithTopN сколько районов попадает в сводку.
func (b *TelegramBot) WithTopN(n int) *TelegramBot {
	if n > 0 {
		b.topN = n
	}

	return b
}

// Run отправляет сводку по каждому снимку из канала.
func (b *TelegramBot) Run(ctx context.Context, snapshots <-chan entity.RankingSnapshot) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snapshot, ok := <-snapshots:
			if !ok {
				return nil
			}

			if err := b.SendDigest(ctx, snapshot); err != nil {
				logger(ctx).Error("failed to send ranking digest",
					slog.String(logx.FieldSnapshotID, snapshot.ID.String()),
					logx.Error(err),
				)
			}
		}
	}
}

func (b *TelegramBot) SendDigest(ctx context.Context, snapshot entity.RankingSnapshot) error {
	msg := tu.Message(
		tu.ID(b.chatID),
		FormatDigest(snapshot, b.topN),
	).WithParseMode(telego.ModeHTML)

	if _, err := b.bot.SendMessage(ctx, msg); err != nil {
		return fmt.Errorf("bot.SendMessage: %w", err)
	}

	return nil
}

// SendText отправляет простое текстовое сообщение.
func (b *TelegramBot) SendText(ctx context.Context, text string) error {
	msg := tu.Message(tu.ID(b.chatID), text)

	if _, err := b.bot.SendMessage(ctx, msg); err != nil {
		return fmt.Errorf("bot.SendMessage: %w", err)
	}

	return nil
}

// FormatDigest HTML-сводка с первыми n районами снимка.
func FormatDigest(snapshot entity.RankingSnapshot, n int) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "🏘 <b>Area ranking</b> %s\n", snapshot.CreatedAt.Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(&sb, "Areas scored: %d\n\n", len(snapshot.Rows))

	top := snapshot.Top(n)
	if len(top) == 0 {
		sb.WriteString("<i>No areas loaded.</i>")
		return sb.String()
	}

	for _, r := range top {
		sb.WriteString(FormatRow(r))
		sb.WriteByte('\n')
	}

	return strings.TrimRight(sb.String(), "\n")
}

// FormatRow строка района в HTML-разметке Telegram.
func FormatRow(r entity.ScoredRow) string {
	name := r.Name
	if name == "" {
		name = r.Code
	}

	return fmt.Sprintf("%d. <b>%s</b> (%s) score %.3f · %.0f/100",
		r.Rank,
		html.EscapeString(name),
		html.EscapeString(r.Code),
		r.Score,
		r.DisplayScore,
	)
}
