package dashboard

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStateSource struct {
	state  State
	mounts int
}

func (s *stubStateSource) Mount(context.Context) { s.mounts++ }

func (s *stubStateSource) Snapshot() State { return s.state }

type stubRenderer struct {
	lastTemplate string
	lastPayload  map[string]any
	err          error
}

func (r *stubRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	r.lastTemplate = name
	if payload, ok := data.(map[string]any); ok {
		r.lastPayload = payload
	}
	if len(out) > 0 && out[0] != nil {
		out[0].Write([]byte("<html></html>"))
	}
	return "<html></html>", r.err
}

type stubCharts struct {
	calls []ChartScale
	err   error
}

func (s *stubCharts) Render(_ ChartKind, title string, _ ChartDataset, scale ChartScale) (string, error) {
	s.calls = append(s.calls, scale)
	if s.err != nil {
		return "", s.err
	}
	return "<div>" + title + "</div>", nil
}

func loadedState() State {
	return State{
		View:  ViewDashboard,
		Cards: DefaultChartCards(),
		Charts: map[ChartSlot]ChartDataset{
			SlotParticipationStatus: {Label: "Status", Points: []ChartPoint{{Name: "DONE", Value: 3}, {Name: "OPEN", Value: 2}}},
			SlotDepartmentReach:     {Label: "Dept", Points: []ChartPoint{{Name: "Eng", Value: 4}}},
		},
		Reports: []Report{
			{ID: Int64(1), Scope: "Eng", Metrics: "rate", GeneratedDate: "2026-10-01"},
			{Scope: "Draft", Metrics: "pending"},
		},
	}
}

func TestControllerRenderTemplate(t *testing.T) {
	source := &stubStateSource{state: loadedState()}
	renderer := &stubRenderer{}
	controller := NewController(ControllerOptions{
		Service:  source,
		Renderer: renderer,
		Charts:   &stubCharts{},
		BasePath: "/admin",
	})

	var buf bytes.Buffer
	require.NoError(t, controller.RenderTemplate(context.Background(), &buf))
	assert.Equal(t, defaultPageTemplate, renderer.lastTemplate)
	assert.Equal(t, 1, source.mounts)
	assert.NotZero(t, buf.Len())
	assert.Equal(t, "/admin", renderer.lastPayload["base_path"])
	assert.Equal(t, "2 reports", renderer.lastPayload["reports_label"])
}

func TestControllerRenderTemplateWrapsRendererError(t *testing.T) {
	renderer := &stubRenderer{err: errors.New("boom")}
	controller := NewController(ControllerOptions{
		Service:  &stubStateSource{state: loadedState()},
		Renderer: renderer,
		Charts:   &stubCharts{},
	})
	err := controller.RenderTemplate(context.Background(), io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestControllerRequiresCollaborators(t *testing.T) {
	controller := NewController(ControllerOptions{Renderer: &stubRenderer{}})
	assert.Error(t, controller.RenderTemplate(context.Background(), io.Discard))
	_, err := controller.StatePayload(context.Background())
	assert.Error(t, err)

	controller = NewController(ControllerOptions{Service: &stubStateSource{}})
	assert.Error(t, controller.RenderTemplate(context.Background(), io.Discard))
}

func TestControllerViewDataCards(t *testing.T) {
	charts := &stubCharts{}
	controller := NewController(ControllerOptions{Charts: charts})

	data := controller.ViewData(loadedState())
	cards := data["cards"].([]map[string]any)
	require.Len(t, cards, 4)

	assert.Equal(t, "Participation Status", cards[0]["title"])
	assert.Equal(t, false, cards[0]["empty"])
	assert.Equal(t, "<div>Participation Status</div>", cards[0]["chart_html"])
	assert.Equal(t, true, cards[2]["empty"], "monthly trend has no data")
	assert.Equal(t, "", cards[2]["chart_html"])
	assert.Equal(t, []ChartScale{ScaleCard, ScaleCard}, charts.calls)

	stats := data["stats"].([]map[string]any)
	assert.Equal(t, "5", stats[0]["value"])
	assert.Equal(t, "1", stats[1]["value"])
	assert.Equal(t, "0", stats[2]["value"])
	assert.Equal(t, "2", stats[3]["value"])
}

func TestControllerViewDataLoadingSkipsCharts(t *testing.T) {
	charts := &stubCharts{}
	controller := NewController(ControllerOptions{Charts: charts})
	state := loadedState()
	state.ChartsLoading = true

	cards := controller.ViewData(state)["cards"].([]map[string]any)
	for _, card := range cards {
		assert.Equal(t, true, card["loading"])
	}
	assert.Empty(t, charts.calls)
}

func TestControllerViewDataChartFailureShowsEmpty(t *testing.T) {
	controller := NewController(ControllerOptions{Charts: &stubCharts{err: errors.New("render")}})
	cards := controller.ViewData(loadedState())["cards"].([]map[string]any)
	assert.Equal(t, true, cards[0]["empty"])
}

func TestControllerViewDataReports(t *testing.T) {
	controller := NewController(ControllerOptions{Charts: &stubCharts{}})
	reports := controller.ViewData(loadedState())["reports"].([]map[string]any)
	require.Len(t, reports, 2)
	assert.Equal(t, true, reports[0]["has_id"])
	assert.Equal(t, int64(1), reports[0]["id"])
	assert.Equal(t, false, reports[1]["has_id"])
	assert.Equal(t, "—", reports[1]["generated_date"])
}

func TestControllerViewDataModals(t *testing.T) {
	charts := &stubCharts{}
	controller := NewController(ControllerOptions{Charts: charts})
	state := loadedState()

	state.Modal = ChartModal{Card: DefaultChartCards()[0], Dataset: state.Charts[SlotParticipationStatus]}
	modal := controller.ViewData(state)["modal"].(map[string]any)
	assert.Equal(t, "chart", modal["kind"])
	assert.Equal(t, "bi-pie-chart-fill", modal["icon"])
	assert.Contains(t, charts.calls, ScaleEnlarged)

	state.Modal = ReportFormModal{Editing: &state.Reports[0], Draft: ReportInput{Scope: "Eng", Metrics: "rate"}}
	modal = controller.ViewData(state)["modal"].(map[string]any)
	assert.Equal(t, "report_form", modal["kind"])
	assert.Equal(t, true, modal["is_edit"])
	assert.Equal(t, int64(1), modal["report_id"])

	state.Modal = TokenModal{Input: "abc"}
	modal = controller.ViewData(state)["modal"].(map[string]any)
	assert.Equal(t, "token", modal["kind"])
	assert.Equal(t, "abc", modal["input"])

	state.Modal = nil
	modal = controller.ViewData(state)["modal"].(map[string]any)
	assert.Equal(t, "", modal["kind"])
}

func TestControllerViewDataToast(t *testing.T) {
	controller := NewController(ControllerOptions{Charts: &stubCharts{}})
	state := loadedState()
	state.Toast = Toast{ID: "t1", Message: "Report deleted.", Severity: SeverityInfo, Visible: true}
	toast := controller.ViewData(state)["toast"].(map[string]any)
	assert.Equal(t, true, toast["visible"])
	assert.Equal(t, "toast-info", toast["class"])
}

func TestControllerStatePayload(t *testing.T) {
	source := &stubStateSource{state: loadedState()}
	source.state.Modal = TokenModal{}
	controller := NewController(ControllerOptions{Service: source})

	payload, err := controller.StatePayload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "dashboard", payload.View)
	assert.Equal(t, "token", payload.Modal)
	assert.Len(t, payload.Charts, 2)
	assert.Contains(t, payload.Charts, string(SlotDepartmentReach))
	assert.Len(t, payload.Reports, 2)
}

func TestNewStatePayloadNeverNilReports(t *testing.T) {
	payload := NewStatePayload(State{View: ViewReports})
	assert.NotNil(t, payload.Reports)
	assert.Empty(t, payload.Modal)
}

func TestEmbeddedTemplatesPresent(t *testing.T) {
	data, err := embeddedTemplates.ReadFile("templates/dashboard.html")
	require.NoError(t, err)
	assert.Contains(t, string(data), "/dashboard/ws")

	renderer, err := NewTemplateRenderer()
	require.NoError(t, err)
	assert.NotNil(t, renderer)
}
