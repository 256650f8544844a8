package handler

import (
	th "github.com/mymmrac/telego/telegohandler"

	"propinvest/internal/transport/bot/middleware"
	"propinvest/internal/transport/bot/view"
)

func (h *Handler) RegisterRoutes(bh *th.BotHandler, adminID int64) {
	bh.HandleMessage(h.OnStart, th.CommandEqual("start"))
	bh.HandleMessage(h.OnStart, th.CommandEqual("help"))
	bh.HandleMessage(h.OnTop, th.CommandEqual("top"))
	bh.HandleMessage(h.OnDuty, th.CommandEqual("duty"))

	bh.HandleCallbackQuery(h.OnTopPage, th.CallbackDataPrefix(view.TopPagePrefix))

	adminGroup := bh.Group(th.AnyMessage())
	adminGroup.Use(middleware.AdminOnly(adminID))

	adminGroup.HandleMessage(h.OnRefresh, th.CommandEqual("refresh"))
}
