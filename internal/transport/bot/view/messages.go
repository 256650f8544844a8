package view

const (
	StartMessage = `🏘 <b>Area investment bot</b>

/top - latest ranking snapshot
/duty <code>price state OO|INV</code> - stamp duty
/refresh - recalculate the ranking (admin)`

	TopPageTemplate = "🏘 <b>Area ranking</b> %s\nAreas scored: %d (page %d/%d)\n\n"
	TopEmpty        = "📭 No ranking yet. Load areas and run /refresh."
	TopError        = "❌ Failed to load the ranking"

	DutyUsage    = "❌ Usage: /duty <code>price state OO|INV</code>\n\nExample: /duty 800000 VIC INV"
	DutyTemplate = "🧾 <b>Stamp duty</b> %s %s\nPrice: %s\nDuty: <b>%s</b>"
	DutyEstimate = "\n⚠️ Price is outside the published brackets, top bracket used."
	DutyNoTable  = "❌ No duty table loaded for %s %s"
	DutyError    = "❌ Failed to calculate duty"

	RefreshQueued   = "✅ Ranking refresh queued (task <code>%s</code>)"
	RefreshPending  = "⏳ Refresh is already queued"
	RefreshError    = "❌ Failed to queue the refresh"
	CallbackNoop    = "noop"
	TopPagePrefix   = "top_page"
	TopPageCallback = TopPagePrefix + ":%d"
)
