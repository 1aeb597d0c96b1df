package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"
)

const defaultPageTemplate = "dashboard"

// StateSource is the part of Service the controller reads from.
type StateSource interface {
	Mount(ctx context.Context)
	Snapshot() State
}

// ChartHTMLRenderer turns datasets into embeddable chart markup.
type ChartHTMLRenderer interface {
	Render(kind ChartKind, title string, dataset ChartDataset, scale ChartScale) (string, error)
}

// ControllerOptions wires the controller collaborators.
type ControllerOptions struct {
	Service  StateSource
	Renderer Renderer
	Charts   ChartHTMLRenderer
	Template string
	BasePath string
	Logger   *zap.Logger
}

// Controller renders the dashboard page and JSON state for transports.
type Controller struct {
	service  StateSource
	renderer Renderer
	charts   ChartHTMLRenderer
	template string
	basePath string
	log      *zap.Logger
}

// NewController wires the service into a controller.
func NewController(opts ControllerOptions) *Controller {
	if opts.Charts == nil {
		opts.Charts = NewChartRenderer()
	}
	if opts.Template == "" {
		opts.Template = defaultPageTemplate
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Controller{
		service:  opts.Service,
		renderer: opts.Renderer,
		charts:   opts.Charts,
		template: opts.Template,
		basePath: opts.BasePath,
		log:      opts.Logger.Named("controller"),
	}
}

// RenderTemplate renders the full page. The first render triggers the
// initial load.
func (c *Controller) RenderTemplate(ctx context.Context, out io.Writer) error {
	if c.service == nil {
		return errors.New("dashboard: controller requires service")
	}
	if c.renderer == nil {
		return errors.New("dashboard: controller requires renderer")
	}
	c.service.Mount(ctx)
	data := c.ViewData(c.service.Snapshot())
	if _, err := c.renderer.Render(c.template, data, out); err != nil {
		return fmt.Errorf("dashboard: render %s: %w", c.template, err)
	}
	return nil
}

// StatePayload returns the JSON representation of the current state.
func (c *Controller) StatePayload(ctx context.Context) (StatePayload, error) {
	if c.service == nil {
		return StatePayload{}, errors.New("dashboard: controller requires service")
	}
	c.service.Mount(ctx)
	return NewStatePayload(c.service.Snapshot()), nil
}

// ViewData maps a state snapshot into template data.
func (c *Controller) ViewData(state State) map[string]any {
	stats := state.Stats()
	data := map[string]any{
		"base_path":     c.basePath,
		"view":          string(state.View),
		"reports_count": len(state.Reports),
		"reports_label": reportsLabel(len(state.Reports)),
		"loading":       state.ChartsLoading,
		"stats": []map[string]any{
			{"icon": "bi-people-fill", "class": "", "value": formatNumber(stats.TotalParticipation), "label": "Total Participation"},
			{"icon": "bi-building", "class": "total", "value": strconv.Itoa(stats.Departments), "label": "Departments"},
			{"icon": "bi-grid-fill", "class": "programs", "value": strconv.Itoa(stats.Categories), "label": "Categories"},
			{"icon": "bi-file-text-fill", "class": "closed", "value": strconv.Itoa(stats.SavedReports), "label": "Saved Reports"},
		},
		"cards":   c.cardViews(state),
		"reports": reportViews(state.Reports),
		"modal":   c.modalView(state.Modal),
		"toast":   toastView(state.Toast),
	}
	return data
}

func (c *Controller) cardViews(state State) []map[string]any {
	views := make([]map[string]any, 0, len(state.Cards))
	for _, card := range state.Cards {
		dataset := state.Dataset(card.Slot)
		view := map[string]any{
			"slot":        string(card.Slot),
			"title":       card.Title,
			"kind":        string(card.Kind),
			"badge_icon":  card.BadgeIcon,
			"badge_label": card.BadgeLabel,
			"loading":     state.ChartsLoading,
			"empty":       dataset.Empty(),
			"chart_html":  "",
		}
		if !state.ChartsLoading && !dataset.Empty() {
			html, err := c.charts.Render(card.Kind, card.Title, dataset, ScaleCard)
			if err != nil {
				c.log.Warn("render chart failed", zap.Error(err), zap.String("slot", string(card.Slot)))
				view["empty"] = true
			} else {
				view["chart_html"] = html
			}
		}
		views = append(views, view)
	}
	return views
}

func (c *Controller) modalView(modal Modal) map[string]any {
	switch m := modal.(type) {
	case ChartModal:
		view := map[string]any{
			"kind":       "chart",
			"title":      m.Card.Title,
			"icon":       chartIcon(m.Card.Kind),
			"chart_html": "",
		}
		html, err := c.charts.Render(m.Card.Kind, m.Card.Title, m.Dataset, ScaleEnlarged)
		if err != nil {
			c.log.Warn("render enlarged chart failed", zap.Error(err), zap.String("slot", string(m.Card.Slot)))
		} else {
			view["chart_html"] = html
		}
		return view
	case ReportFormModal:
		view := map[string]any{
			"kind":    "report_form",
			"is_edit": m.IsEdit(),
			"scope":   m.Draft.Scope,
			"metrics": m.Draft.Metrics,
		}
		if m.IsEdit() {
			view["report_id"] = *m.Editing.ID
		}
		return view
	case TokenModal:
		return map[string]any{"kind": "token", "input": m.Input}
	default:
		return map[string]any{"kind": ""}
	}
}

func reportViews(reports []Report) []map[string]any {
	views := make([]map[string]any, len(reports))
	for i, r := range reports {
		date := r.GeneratedDate
		if date == "" {
			date = "—"
		}
		view := map[string]any{
			"has_id":         r.HasID(),
			"id":             r.IDValue(),
			"scope":          r.Scope,
			"metrics":        r.Metrics,
			"generated_date": date,
		}
		views[i] = view
	}
	return views
}

func toastView(t Toast) map[string]any {
	class, icon := "toast-info", "bi-info-circle-fill"
	switch t.Severity {
	case SeveritySuccess:
		class, icon = "toast-success", "bi-check-circle-fill"
	case SeverityError:
		class, icon = "toast-error", "bi-x-circle-fill"
	}
	return map[string]any{
		"visible":  t.Visible,
		"message":  t.Message,
		"severity": string(t.Severity),
		"class":    class,
		"icon":     icon,
	}
}

func chartIcon(kind ChartKind) string {
	switch kind {
	case ChartPie:
		return "bi-pie-chart-fill"
	case ChartLine:
		return "bi-graph-up"
	default:
		return "bi-bar-chart-fill"
	}
}

func reportsLabel(n int) string {
	if n == 1 {
		return "1 report"
	}
	return strconv.Itoa(n) + " reports"
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// StatePayload is the JSON shape of the view-model.
type StatePayload struct {
	View          string                  `json:"view"`
	Modal         string                  `json:"modal"`
	ChartsLoading bool                    `json:"chartsLoading"`
	Charts        map[string]ChartDataset `json:"charts"`
	Reports       []Report                `json:"reports"`
	Toast         Toast                   `json:"toast"`
}

// NewStatePayload converts a snapshot into its JSON payload.
func NewStatePayload(state State) StatePayload {
	charts := make(map[string]ChartDataset, len(state.Charts))
	for slot, dataset := range state.Charts {
		charts[string(slot)] = dataset
	}
	reports := state.Reports
	if reports == nil {
		reports = []Report{}
	}
	return StatePayload{
		View:          string(state.View),
		Modal:         ModalKind(state.Modal),
		ChartsLoading: state.ChartsLoading,
		Charts:        charts,
		Reports:       reports,
		Toast:         state.Toast,
	}
}
