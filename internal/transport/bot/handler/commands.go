package handler

import (
	"fmt"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/shopspring/decimal"

	"propinvest/internal/domain"
	"propinvest/internal/domain/entity"
	"propinvest/internal/domain/value"
	"propinvest/internal/infrastructure/notifier"
	"propinvest/internal/transport/bot/view"
	"propinvest/pkg/contextx"
	"propinvest/pkg/errcodes"
	"propinvest/pkg/logx"
)

func (h *Handler) OnStart(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, view.StartMessage)
}

func (h *Handler) OnTop(ctx *th.Context, msg telego.Message) error {
	snapshot, err := h.rankings.Latest(ctx)
	if err != nil {
		if domain.HasCode(err, errcodes.SnapshotNotFound) {
			return h.sendHTML(ctx, msg.Chat.ID, view.TopEmpty)
		}

		contextx.LoggerFromContextOrDefault(ctx).Error("rankings.Latest", logx.Error(err))

		return h.sendHTML(ctx, msg.Chat.ID, view.TopError)
	}

	text, totalPages := TopPage(snapshot, 1, h.pageSize)

	params := &telego.SendMessageParams{
		ChatID:    tu.ID(msg.Chat.ID),
		Text:      text,
		ParseMode: telego.ModeHTML,
	}

	if totalPages > 1 {
		params.ReplyMarkup = paginationKeyboard(1, totalPages)
	}

	_, err = ctx.Bot().SendMessage(ctx, params)

	return err
}

// OnTopPage листает страницы последнего снимка. Формат данных: "top_page:<n>".
func (h *Handler) OnTopPage(ctx *th.Context, query telego.CallbackQuery) error {
	var page int

	if _, err := fmt.Sscanf(query.Data, view.TopPageCallback, &page); err != nil || page < 1 {
		page = 1
	}

	snapshot, err := h.rankings.Latest(ctx)
	if err != nil {
		_ = ctx.Bot().AnswerCallbackQuery(ctx, tu.CallbackQuery(query.ID).
			WithText(view.TopError).WithShowAlert())

		return fmt.Errorf("rankings.Latest: %w", err)
	}

	text, totalPages := TopPage(snapshot, page, h.pageSize)
	if page > totalPages {
		page = totalPages
	}

	if query.Message != nil {
		// Telegram отвечает ошибкой, если текст не изменился.
		_, _ = ctx.Bot().EditMessageText(ctx, &telego.EditMessageTextParams{
			ChatID:      tu.ID(query.Message.GetChat().ID),
			MessageID:   query.Message.GetMessageID(),
			Text:        text,
			ParseMode:   telego.ModeHTML,
			ReplyMarkup: paginationKeyboard(page, totalPages),
		})
	}

	return ctx.Bot().AnswerCallbackQuery(ctx, tu.CallbackQuery(query.ID))
}

func (h *Handler) OnDuty(ctx *th.Context, msg telego.Message) error {
	price, j, o, err := ParseDutyArgs(msg.Text)
	if err != nil {
		return h.sendHTML(ctx, msg.Chat.ID, view.DutyUsage)
	}

	est, err := h.duty.EstimateDuty(ctx, price, j, o)
	if err != nil {
		if domain.HasCode(err, errcodes.MissingReferenceData) {
			return h.sendHTML(ctx, msg.Chat.ID, fmt.Sprintf(view.DutyNoTable, j, o))
		}

		contextx.LoggerFromContextOrDefault(ctx).Error("duty.EstimateDuty", logx.Error(err))

		return h.sendHTML(ctx, msg.Chat.ID, view.DutyError)
	}

	return h.sendHTML(ctx, msg.Chat.ID, FormatDuty(price, j, o, est))
}

func (h *Handler) OnRefresh(ctx *th.Context, msg telego.Message) error {
	taskID, err := h.refresh.Enqueue(ctx)
	if err != nil {
		contextx.LoggerFromContextOrDefault(ctx).Error("refresh.Enqueue", logx.Error(err))
		return h.sendHTML(ctx, msg.Chat.ID, view.RefreshError)
	}

	if taskID == "" {
		return h.sendHTML(ctx, msg.Chat.ID, view.RefreshPending)
	}

	return h.sendHTML(ctx, msg.Chat.ID, fmt.Sprintf(view.RefreshQueued, taskID))
}

// ParseDutyArgs разбирает "/duty <price> <state> [OO|INV]". Тип владения по умолчанию INV.
func ParseDutyArgs(text string) (decimal.Decimal, value.Jurisdiction, value.Occupancy, error) {
	args := strings.Fields(text)
	if len(args) < 3 { //nolint:mnd
		return decimal.Decimal{}, "", "", domain.NewError(errcodes.InvalidInput, "price and state are required")
	}

	price, err := decimal.NewFromString(strings.ReplaceAll(args[1], ",", ""))
	if err != nil || price.IsNegative() {
		return decimal.Decimal{}, "", "", domain.NewError(errcodes.InvalidInput, "price must be a non-negative number")
	}

	j, err := value.ParseJurisdiction(args[2])
	if err != nil {
		return decimal.Decimal{}, "", "", err
	}

	o := value.OccupancyInvestor

	if len(args) > 3 { //nolint:mnd
		if o, err = value.ParseOccupancy(args[3]); err != nil {
			return decimal.Decimal{}, "", "", err
		}
	}

	return price, j, o, nil
}

func FormatDuty(price decimal.Decimal, j value.Jurisdiction, o value.Occupancy, est entity.DutyEstimate) string {
	text := fmt.Sprintf(view.DutyTemplate, j, o, price.StringFixed(0), est.Amount.StringFixed(2)) //nolint:mnd
	if est.IsEstimate() {
		text += view.DutyEstimate
	}

	return text
}

// TopPage текст страницы page (с 1) и общее число страниц; не меньше одной.
func TopPage(snapshot entity.RankingSnapshot, page, size int) (string, int) {
	total := len(snapshot.Rows)
	totalPages := max(1, (total+size-1)/size)
	page = min(max(page, 1), totalPages)

	var sb strings.Builder

	fmt.Fprintf(&sb, view.TopPageTemplate,
		snapshot.CreatedAt.Format("2006-01-02 15:04 MST"), total, page, totalPages)

	start := (page - 1) * size
	end := min(start+size, total)

	if start >= end {
		sb.WriteString("<i>No areas loaded.</i>")
		return sb.String(), totalPages
	}

	for _, r := range snapshot.Rows[start:end] {
		sb.WriteString(notifier.FormatRow(r))
		sb.WriteByte('\n')
	}

	return strings.TrimRight(sb.String(), "\n"), totalPages
}

func paginationKeyboard(page, totalPages int) *telego.InlineKeyboardMarkup {
	var buttons []telego.InlineKeyboardButton

	if page > 1 {
		buttons = append(buttons, tu.InlineKeyboardButton("⬅️").
			WithCallbackData(fmt.Sprintf(view.TopPageCallback, page-1)))
	}

	buttons = append(buttons, tu.InlineKeyboardButton(fmt.Sprintf("%d / %d", page, totalPages)).
		WithCallbackData(view.CallbackNoop))

	if page < totalPages {
		buttons = append(buttons, tu.InlineKeyboardButton("➡️").
			WithCallbackData(fmt.Sprintf(view.TopPageCallback, page+1)))
	}

	return tu.InlineKeyboard(tu.InlineKeyboardRow(buttons...))
}

func (h *Handler) sendHTML(ctx *th.Context, chatID int64, text string) error {
	_, err := ctx.Bot().SendMessage(ctx, &telego.SendMessageParams{
		ChatID:    tu.ID(chatID),
		Text:      text,
		ParseMode: telego.ModeHTML,
	})

	return err
}
