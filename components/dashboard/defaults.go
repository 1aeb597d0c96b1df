package dashboard

import "time"

// DefaultToastDelay is how long a toast stays visible.
const DefaultToastDelay = 3500 * time.Millisecond

// MaxMetricsLength mirrors the backend column size for report metrics.
const MaxMetricsLength = 500

// ChartPalette is the fixed repeating palette used for slices and bars.
var ChartPalette = []string{
	"#355872", "#7aaace", "#9cd5ff", "#27ae60",
	"#e67e22", "#6f42c1", "#e74c3c", "#f4a923",
}

const (
	msgAnalyticsFailed = "Failed to load analytics data. Please check your token."
	msgReportsFailed   = "Failed to load reports."
	msgReportCreated   = "Report created successfully!"
	msgReportUpdated   = "Report updated successfully!"
	msgReportFailed    = "Failed to save report."
	msgReportInvalid   = "Scope and metrics are required."
	msgReportDeleted   = "Report deleted."
	msgDeleteFailed    = "Failed to delete report."
	msgTokenBlank      = "Please paste a valid JWT token."
	msgTokenStored     = "Token stored! Refreshing data…"
	msgTokenFailed     = "Failed to store token."
	msgTokenCleared    = "Token cleared."
)

var defaultChartCards = []ChartCard{
	{
		Slot:       SlotParticipationStatus,
		Title:      "Participation Status",
		Kind:       ChartPie,
		Source:     SourceParticipationStatus,
		BadgeIcon:  "bi-pie-chart-fill",
		BadgeLabel: "Pie",
	},
	{
		Slot:       SlotDepartmentReach,
		Title:      "Departmental Reach",
		Kind:       ChartBar,
		Source:     SourceParticipationDepartment,
		BadgeIcon:  "bi-bar-chart-fill",
		BadgeLabel: "Bar",
	},
	{
		Slot:       SlotMonthlyTrend,
		Title:      "Monthly Trend",
		Kind:       ChartLine,
		Source:     SourceMonthlyTrend,
		BadgeIcon:  "bi-graph-up",
		BadgeLabel: "Line",
	},
	{
		Slot:       SlotCategoryParticipation,
		Title:      "Category Participation",
		Kind:       ChartBar,
		Source:     SourceParticipationCategory,
		BadgeIcon:  "bi-bar-chart-steps",
		BadgeLabel: "Bar",
	},
}

// DefaultChartCards returns the four dashboard cards in display order.
func DefaultChartCards() []ChartCard {
	return append([]ChartCard(nil), defaultChartCards...)
}

// CardFor looks up the card definition for a slot.
func CardFor(cards []ChartCard, slot ChartSlot) (ChartCard, bool) {
	for _, card := range cards {
		if card.Slot == slot {
			return card, true
		}
	}
	return ChartCard{}, false
}
