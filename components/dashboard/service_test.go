package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReports struct {
	mu      sync.Mutex
	reports []Report
	nextID  int64
	listErr error
	saveErr error
	delErr  error
	lists   int
	creates []ReportInput
	updates map[int64]ReportInput
	deletes []int64
}

func (f *fakeReports) ListReports(context.Context) ([]Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]Report(nil), f.reports...), nil
}

func (f *fakeReports) CreateReport(_ context.Context, input ReportInput) (Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return Report{}, f.saveErr
	}
	f.creates = append(f.creates, input)
	f.nextID++
	report := Report{ID: Int64(100 + f.nextID), Scope: input.Scope, Metrics: input.Metrics, GeneratedDate: "2026-10-15"}
	f.reports = append(f.reports, report)
	return report, nil
}

func (f *fakeReports) UpdateReport(_ context.Context, id int64, input ReportInput) (Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return Report{}, f.saveErr
	}
	if f.updates == nil {
		f.updates = map[int64]ReportInput{}
	}
	f.updates[id] = input
	return Report{ID: Int64(id), Scope: input.Scope, Metrics: input.Metrics}, nil
}

func (f *fakeReports) DeleteReport(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return f.delErr
	}
	f.deletes = append(f.deletes, id)
	return nil
}

func (f *fakeReports) listCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}

type fakeCharts struct {
	mu       sync.Mutex
	datasets map[ChartSource]ChartDataset
	fail     map[ChartSource]error
	calls    map[ChartSource]int
}

func newFakeCharts() *fakeCharts {
	return &fakeCharts{
		datasets: map[ChartSource]ChartDataset{
			SourceParticipationStatus: {Label: "Participation Status", Points: []ChartPoint{
				{Name: "ENROLLED", Value: 12}, {Name: "COMPLETED", Value: 30},
			}},
			SourceParticipationDepartment: {Label: "By Department", Points: []ChartPoint{
				{Name: "Engineering", Value: 20}, {Name: "Sales", Value: 8}, {Name: "HR", Value: 4},
			}},
			SourceMonthlyTrend: {Label: "Monthly", Points: []ChartPoint{
				{Name: "2026-08", Value: 5}, {Name: "2026-09", Value: 9},
			}},
			SourceParticipationCategory: {Label: "By Category", Points: []ChartPoint{
				{Name: "Wellness", Value: 11}, {Name: "Learning", Value: 7},
			}},
		},
		fail:  map[ChartSource]error{},
		calls: map[ChartSource]int{},
	}
}

func (f *fakeCharts) FetchChart(_ context.Context, source ChartSource) (ChartDataset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[source]++
	if err := f.fail[source]; err != nil {
		return ChartDataset{}, err
	}
	return f.datasets[source], nil
}

func (f *fakeCharts) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

type recordingHook struct {
	mu     sync.Mutex
	events []StateEvent
}

func (h *recordingHook) StateChanged(_ context.Context, event StateEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

func (h *recordingHook) reasons() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.events))
	for i, e := range h.events {
		out[i] = e.Reason
	}
	return out
}

type recordingTelemetry struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

type serviceFixture struct {
	service   *Service
	reports   *fakeReports
	charts    *fakeCharts
	creds     *InMemoryCredentialStore
	hook      *recordingHook
	telemetry *recordingTelemetry
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		reports: &fakeReports{reports: []Report{
			{ID: Int64(7), Scope: "Engineering", Metrics: "participation rate", GeneratedDate: "2026-09-01"},
		}},
		charts:    newFakeCharts(),
		creds:     NewInMemoryCredentialStore(""),
		hook:      &recordingHook{},
		telemetry: &recordingTelemetry{},
	}
	service, err := NewService(Options{
		Reports:     f.reports,
		Charts:      f.charts,
		Credentials: f.creds,
		RefreshHook: f.hook,
		Telemetry:   f.telemetry,
		ToastDelay:  50 * time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(service.Close)
	f.service = service
	return f
}

func TestNewServiceRequiresCollaborators(t *testing.T) {
	_, err := NewService(Options{Charts: newFakeCharts(), Credentials: NewInMemoryCredentialStore("")})
	assert.ErrorIs(t, err, errMissingReports)
	_, err = NewService(Options{Reports: &fakeReports{}, Credentials: NewInMemoryCredentialStore("")})
	assert.ErrorIs(t, err, errMissingCharts)
	_, err = NewService(Options{Reports: &fakeReports{}, Charts: newFakeCharts()})
	assert.ErrorIs(t, err, errMissingCredentials)
}

func TestServiceMountLoadsChartsAndReportsOnce(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.service.Mount(ctx)
	f.service.Mount(ctx)
	f.service.Wait()

	state := f.service.Snapshot()
	assert.False(t, state.ChartsLoading)
	assert.Equal(t, ViewDashboard, state.View)
	assert.Nil(t, state.Modal)
	assert.Len(t, state.Charts, 4)
	assert.Equal(t, 4, f.charts.totalCalls())
	assert.Equal(t, 1, f.reports.listCalls())
	require.Len(t, state.Reports, 1)
	assert.Equal(t, int64(7), state.Reports[0].IDValue())

	stats := state.Stats()
	assert.Equal(t, float64(42), stats.TotalParticipation)
	assert.Equal(t, 3, stats.Departments)
	assert.Equal(t, 2, stats.Categories)
	assert.Equal(t, 1, stats.SavedReports)

	assert.Contains(t, f.hook.reasons(), "charts.loading")
	assert.Contains(t, f.hook.reasons(), "charts.loaded")
	assert.Contains(t, f.hook.reasons(), "reports.loaded")
}

func TestServiceAnalyticsFailureClearsEverySlot(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.service.RefreshAnalytics(ctx)
	f.service.Wait()
	require.Len(t, f.service.Snapshot().Charts, 4)

	f.charts.mu.Lock()
	f.charts.fail[SourceMonthlyTrend] = errors.New("401")
	f.charts.mu.Unlock()

	f.service.RefreshAnalytics(ctx)
	f.service.Wait()

	state := f.service.Snapshot()
	for _, card := range state.Cards {
		assert.True(t, state.Dataset(card.Slot).Empty(), "slot %s should be cleared", card.Slot)
	}
	assert.True(t, state.Toast.Visible)
	assert.Equal(t, SeverityError, state.Toast.Severity)
	assert.Equal(t, msgAnalyticsFailed, state.Toast.Message)
}

func TestServiceReportsFailureKeepsPreviousList(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.service.RefreshReports(ctx)
	f.service.Wait()
	f.reports.mu.Lock()
	f.reports.listErr = errors.New("boom")
	f.reports.mu.Unlock()

	f.service.RefreshReports(ctx)
	f.service.Wait()

	state := f.service.Snapshot()
	assert.Len(t, state.Reports, 1)
	assert.Equal(t, msgReportsFailed, state.Toast.Message)
}

func TestServiceOpenChartIsNoopForEmptyDataset(t *testing.T) {
	f := newServiceFixture(t)
	f.charts.datasets[SourceParticipationStatus] = ChartDataset{Label: "Participation Status"}
	ctx := context.Background()

	f.service.RefreshAnalytics(ctx)
	f.service.Wait()

	state := f.service.Snapshot()
	assert.True(t, state.Dataset(SlotParticipationStatus).Empty())
	assert.False(t, f.service.OpenChart(ctx, SlotParticipationStatus))
	assert.Nil(t, f.service.Snapshot().Modal)

	require.True(t, f.service.OpenChart(ctx, SlotMonthlyTrend))
	modal, ok := f.service.Snapshot().Modal.(ChartModal)
	require.True(t, ok)
	assert.Equal(t, "Monthly Trend", modal.Card.Title)
	assert.Len(t, modal.Dataset.Points, 2)

	f.service.CloseModal(ctx)
	assert.Nil(t, f.service.Snapshot().Modal)
}

func TestServiceSubmitReportCreatesAndRefetches(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.service.OpenNewReport(ctx)
	assert.Equal(t, "report_form", ModalKind(f.service.Snapshot().Modal))

	err := f.service.SubmitReport(ctx, ReportInput{Scope: "Sales", Metrics: "completion rate"})
	require.NoError(t, err)
	f.service.Wait()

	state := f.service.Snapshot()
	assert.Nil(t, state.Modal)
	assert.Equal(t, []ReportInput{{Scope: "Sales", Metrics: "completion rate"}}, f.reports.creates)
	assert.Equal(t, 1, f.reports.listCalls())
	assert.Len(t, state.Reports, 2)
	assert.True(t, state.Toast.Visible)
	assert.Equal(t, SeveritySuccess, state.Toast.Severity)
	assert.Equal(t, msgReportCreated, state.Toast.Message)
	assert.Contains(t, f.telemetry.events, "dashboard.report.create")

	assert.Eventually(t, func() bool {
		if f.service.Snapshot().Toast.Visible {
			return false
		}
		for _, reason := range f.hook.reasons() {
			if reason == "toast.dismiss" {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)
}

func TestServiceSubmitReportRejectsBlankFields(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.service.OpenNewReport(ctx)
	err := f.service.SubmitReport(ctx, ReportInput{Scope: "  ", Metrics: "x"})
	require.ErrorIs(t, err, ErrInvalidReport)

	state := f.service.Snapshot()
	assert.Empty(t, f.reports.creates)
	form, ok := state.Modal.(ReportFormModal)
	require.True(t, ok, "form stays open")
	assert.Equal(t, "  ", form.Draft.Scope)
	assert.Equal(t, msgReportInvalid, state.Toast.Message)
}

func TestServiceSubmitReportUpdatesEditedReport(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.service.RefreshReports(ctx)
	f.service.Wait()

	require.NoError(t, f.service.OpenEditReport(ctx, 7))
	form := f.service.Snapshot().Modal.(ReportFormModal)
	assert.True(t, form.IsEdit())
	assert.Equal(t, "Engineering", form.Draft.Scope)

	require.NoError(t, f.service.SubmitReport(ctx, ReportInput{Scope: "Engineering", Metrics: "weekly"}))
	f.service.Wait()

	assert.Empty(t, f.reports.creates)
	assert.Equal(t, ReportInput{Scope: "Engineering", Metrics: "weekly"}, f.reports.updates[7])
	assert.Equal(t, msgReportUpdated, f.service.Snapshot().Toast.Message)
}

func TestServiceSubmitReportBackendFailure(t *testing.T) {
	f := newServiceFixture(t)
	f.reports.saveErr = errors.New("500")
	ctx := context.Background()

	f.service.OpenNewReport(ctx)
	err := f.service.SubmitReport(ctx, ReportInput{Scope: "Sales", Metrics: "rate"})
	require.Error(t, err)

	state := f.service.Snapshot()
	assert.Equal(t, "report_form", ModalKind(state.Modal))
	assert.Equal(t, msgReportFailed, state.Toast.Message)
	assert.Equal(t, 0, f.reports.listCalls())
}

func TestServiceOpenEditReportUnknownID(t *testing.T) {
	f := newServiceFixture(t)
	err := f.service.OpenEditReport(context.Background(), 99)
	assert.ErrorIs(t, err, ErrReportNotFound)
	assert.Nil(t, f.service.Snapshot().Modal)
}

func TestServiceDeleteReportRequiresConfirmation(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.DeleteReport(ctx, 7, false))
	f.service.Wait()
	assert.Empty(t, f.reports.deletes)
	assert.Equal(t, 0, f.reports.listCalls())
	assert.False(t, f.service.Snapshot().Toast.Visible)

	require.NoError(t, f.service.DeleteReport(ctx, 7, true))
	f.service.Wait()
	assert.Equal(t, []int64{7}, f.reports.deletes)
	assert.Equal(t, 1, f.reports.listCalls())
	toast := f.service.Snapshot().Toast
	assert.Equal(t, SeverityInfo, toast.Severity)
	assert.Equal(t, msgReportDeleted, toast.Message)
}

func TestServiceDeleteReportFailure(t *testing.T) {
	f := newServiceFixture(t)
	f.reports.delErr = errors.New("404")

	err := f.service.DeleteReport(context.Background(), 7, true)
	require.Error(t, err)
	assert.Equal(t, msgDeleteFailed, f.service.Snapshot().Toast.Message)
	assert.Equal(t, 0, f.reports.listCalls())
}

func TestServiceSaveTokenRejectsBlank(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	require.NoError(t, f.creds.SetToken(ctx, "old"))

	err := f.service.SaveToken(ctx, "   ")
	require.ErrorIs(t, err, ErrBlankToken)
	f.service.Wait()

	token, _ := f.creds.Token(ctx)
	assert.Equal(t, "old", token)
	assert.Equal(t, 0, f.charts.totalCalls())
	assert.Equal(t, 0, f.reports.listCalls())
	assert.Equal(t, msgTokenBlank, f.service.Snapshot().Toast.Message)
}

func TestServiceSaveTokenStoresTrimmedAndReloads(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.OpenTokenDialog(ctx))
	assert.Equal(t, "token", ModalKind(f.service.Snapshot().Modal))

	require.NoError(t, f.service.SaveToken(ctx, "  abc123\n"))
	f.service.Wait()

	token, _ := f.creds.Token(ctx)
	assert.Equal(t, "abc123", token)
	state := f.service.Snapshot()
	assert.Nil(t, state.Modal)
	assert.Equal(t, 4, f.charts.totalCalls())
	assert.Equal(t, 1, f.reports.listCalls())
	assert.Equal(t, msgTokenStored, state.Toast.Message)
}

func TestServiceClearTokenRemovesCredentialAndReloads(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	require.NoError(t, f.creds.SetToken(ctx, "stale"))
	require.NoError(t, f.service.OpenTokenDialog(ctx))

	require.NoError(t, f.service.ClearToken(ctx))
	f.service.Wait()

	token, _ := f.creds.Token(ctx)
	assert.Empty(t, token)
	state := f.service.Snapshot()
	assert.Nil(t, state.Modal)
	assert.Equal(t, msgTokenCleared, state.Toast.Message)
	assert.Equal(t, 4, f.charts.totalCalls())
	assert.Equal(t, 1, f.reports.listCalls())
}

func TestServiceOpenTokenDialogPrefillsStoredToken(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	require.NoError(t, f.creds.SetToken(ctx, "stored"))

	require.NoError(t, f.service.OpenTokenDialog(ctx))
	modal, ok := f.service.Snapshot().Modal.(TokenModal)
	require.True(t, ok)
	assert.Equal(t, "stored", modal.Input)
}

func TestServiceSwitchView(t *testing.T) {
	f := newServiceFixture(t)
	f.service.SwitchView(context.Background(), ViewReports)
	assert.Equal(t, ViewReports, f.service.Snapshot().View)
}

func TestServiceSnapshotIsIsolated(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.service.Mount(ctx)
	f.service.Wait()

	state := f.service.Snapshot()
	state.Reports[0].Scope = "mutated"
	*state.Reports[0].ID = 1
	state.Charts[SlotMonthlyTrend].Points[0].Value = 999

	fresh := f.service.Snapshot()
	assert.Equal(t, "Engineering", fresh.Reports[0].Scope)
	assert.Equal(t, int64(7), fresh.Reports[0].IDValue())
	assert.Equal(t, float64(5), fresh.Dataset(SlotMonthlyTrend).Points[0].Value)
}
