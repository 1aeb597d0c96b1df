package dashboard

import (
	"context"
	"errors"
)

// ReportRepository performs report CRUD against the analytics backend.
// Implementations issue exactly one remote call per method.
type ReportRepository interface {
	ListReports(ctx context.Context) ([]Report, error)
	CreateReport(ctx context.Context, input ReportInput) (Report, error)
	UpdateReport(ctx context.Context, id int64, input ReportInput) (Report, error)
	DeleteReport(ctx context.Context, id int64) error
}

// ChartRepository loads pre-aggregated chart datasets.
type ChartRepository interface {
	FetchChart(ctx context.Context, source ChartSource) (ChartDataset, error)
}

// RefreshHook notifies transports (REST/WebSocket) about state changes.
type RefreshHook interface {
	StateChanged(ctx context.Context, event StateEvent) error
}

// Report is a user-authored record pairing a scope with a metrics description.
type Report struct {
	ID            *int64 `json:"reportId,omitempty"`
	Scope         string `json:"scope"`
	Metrics       string `json:"metrics"`
	GeneratedDate string `json:"generatedDate,omitempty"`
}

// HasID reports whether the backend assigned an identifier.
func (r Report) HasID() bool {
	return r.ID != nil
}

// IDValue returns the identifier or zero.
func (r Report) IDValue() int64 {
	if r.ID == nil {
		return 0
	}
	return *r.ID
}

func (r Report) clone() Report {
	out := r
	if r.ID != nil {
		id := *r.ID
		out.ID = &id
	}
	return out
}

// ReportInput is the payload accepted by create and update calls.
type ReportInput struct {
	Scope   string `json:"scope"`
	Metrics string `json:"metrics"`
}

// Int64 returns a pointer to v.
func Int64(v int64) *int64 {
	return &v
}

// ChartPoint is a single (category, value) pair ready for rendering.
type ChartPoint struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// ChartDataset is a labelled, ordered sequence of points.
type ChartDataset struct {
	Label  string       `json:"label"`
	Points []ChartPoint `json:"points"`
}

// Empty reports whether the dataset has nothing to plot.
func (d ChartDataset) Empty() bool {
	return len(d.Points) == 0
}

// Total sums every point value.
func (d ChartDataset) Total() float64 {
	var sum float64
	for _, p := range d.Points {
		sum += p.Value
	}
	return sum
}

func (d ChartDataset) clone() ChartDataset {
	out := ChartDataset{Label: d.Label}
	if d.Points != nil {
		out.Points = make([]ChartPoint, len(d.Points))
		copy(out.Points, d.Points)
	}
	return out
}

// ChartKind selects the visualization used for a dataset.
type ChartKind string

const (
	ChartPie  ChartKind = "pie"
	ChartBar  ChartKind = "bar"
	ChartLine ChartKind = "line"
)

// ChartSource identifies a backend chart endpoint.
type ChartSource string

const (
	SourceParticipationStatus     ChartSource = "participation/status"
	SourceParticipationDepartment ChartSource = "participation/department"
	SourceParticipationProgram    ChartSource = "participation/program"
	SourceParticipationCategory   ChartSource = "participation/category"
	SourceMonthlyTrend            ChartSource = "trend/monthly"
	SourceGoalStatus              ChartSource = "goal/status"
	SourceChallengeCompletion     ChartSource = "challenge/completion"
	SourceDepartmentEngagement    ChartSource = "engagement/department"
	SourceManagerTeamSize         ChartSource = "manager/team-size"
	SourceActivityCompletion      ChartSource = "activity/completion-status"
	SourceProgramStatus           ChartSource = "program/status"
)

// ErrUnknownChartSource is returned for sources the backend does not expose.
var ErrUnknownChartSource = errors.New("dashboard: unknown chart source")

// ChartSources lists every chart endpoint exposed by the backend.
func ChartSources() []ChartSource {
	return []ChartSource{
		SourceParticipationStatus,
		SourceParticipationDepartment,
		SourceParticipationProgram,
		SourceParticipationCategory,
		SourceMonthlyTrend,
		SourceGoalStatus,
		SourceChallengeCompletion,
		SourceDepartmentEngagement,
		SourceManagerTeamSize,
		SourceActivityCompletion,
		SourceProgramStatus,
	}
}

// ParseChartSource validates a source path such as "trend/monthly".
func ParseChartSource(value string) (ChartSource, error) {
	for _, src := range ChartSources() {
		if string(src) == value {
			return src, nil
		}
	}
	return "", ErrUnknownChartSource
}

// ChartSlot names one of the dashboard chart cards.
type ChartSlot string

const (
	SlotParticipationStatus   ChartSlot = "participation_status"
	SlotDepartmentReach       ChartSlot = "department_reach"
	SlotMonthlyTrend          ChartSlot = "monthly_trend"
	SlotCategoryParticipation ChartSlot = "category_participation"
)

// ChartCard describes how a slot is fetched and presented.
type ChartCard struct {
	Slot       ChartSlot
	Title      string
	Kind       ChartKind
	Source     ChartSource
	BadgeIcon  string
	BadgeLabel string
}

// View is the active top-level page.
type View string

const (
	ViewDashboard View = "dashboard"
	ViewReports   View = "reports"
)

// ParseView validates a view name.
func ParseView(value string) (View, bool) {
	switch View(value) {
	case ViewDashboard, ViewReports:
		return View(value), true
	default:
		return "", false
	}
}

// StateEvent describes changes that transports might care about.
type StateEvent struct {
	Reason string `json:"reason"`
	Slot   string `json:"slot,omitempty"`
}
