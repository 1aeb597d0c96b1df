package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	errMissingReports     = errors.New("dashboard: report repository not configured")
	errMissingCharts      = errors.New("dashboard: chart repository not configured")
	errMissingCredentials = errors.New("dashboard: credential store not configured")

	// ErrBlankToken is returned when a blank token is submitted.
	ErrBlankToken = errors.New("dashboard: token is blank")
	// ErrReportNotFound is returned when an id is not in the current list.
	ErrReportNotFound = errors.New("dashboard: report not found")
)

// Options configures the dashboard Service. Every collaborator is provided via
// interface so applications can swap implementations.
type Options struct {
	Reports     ReportRepository
	Charts      ChartRepository
	Credentials CredentialStore
	Validator   ReportValidator
	RefreshHook RefreshHook
	Telemetry   Telemetry
	Logger      *zap.Logger
	Cards       []ChartCard
	ToastDelay  time.Duration
}

// Service owns the view-model of one running client: fetched datasets, the
// report list, UI modes and the toast.
type Service struct {
	opts    Options
	log     *zap.Logger
	toaster *toaster

	mu           sync.Mutex
	mounted      bool
	view         View
	modal        Modal
	charts       map[ChartSlot]ChartDataset
	chartFetches int
	reports      []Report
	inflight     sync.WaitGroup
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) (*Service, error) {
	if opts.Reports == nil {
		return nil, errMissingReports
	}
	if opts.Charts == nil {
		return nil, errMissingCharts
	}
	if opts.Credentials == nil {
		return nil, errMissingCredentials
	}
	if opts.Validator == nil {
		opts.Validator = NewJSONSchemaValidator()
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if len(opts.Cards) == 0 {
		opts.Cards = DefaultChartCards()
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		opts:   opts,
		log:    logger.Named("dashboard"),
		view:   ViewDashboard,
		charts: map[ChartSlot]ChartDataset{},
	}
	s.toaster = newToaster(opts.ToastDelay, func(t Toast) {
		s.emit(context.Background(), StateEvent{Reason: "toast.dismiss"})
	})
	return s, nil
}

// Cards returns the chart card definitions in display order.
func (s *Service) Cards() []ChartCard {
	return append([]ChartCard(nil), s.opts.Cards...)
}

// Mount runs the initial load once: charts and reports are fetched in
// parallel. Later calls are no-ops.
func (s *Service) Mount(ctx context.Context) {
	s.mu.Lock()
	if s.mounted {
		s.mu.Unlock()
		return
	}
	s.mounted = true
	s.mu.Unlock()
	s.log.Info("initial load")
	s.RefreshAnalytics(ctx)
	s.RefreshReports(ctx)
}

// RefreshAnalytics fetches every chart card dataset in the background. The
// fetches are awaited jointly: one failure clears all slots.
func (s *Service) RefreshAnalytics(ctx context.Context) {
	s.mu.Lock()
	s.chartFetches++
	s.mu.Unlock()
	s.emit(ctx, StateEvent{Reason: "charts.loading"})
	s.background(ctx, s.loadAnalytics)
}

// RefreshReports fetches the report list in the background.
func (s *Service) RefreshReports(ctx context.Context) {
	s.background(ctx, s.loadReports)
}

// Wait blocks until all background fetches have finished.
func (s *Service) Wait() {
	s.inflight.Wait()
}

// Close stops the toast timer and waits for in-flight fetches.
func (s *Service) Close() {
	s.toaster.stop()
	s.Wait()
}

// background runs fn detached from ctx cancellation. Fetches are never
// aborted; whichever resolves last determines the displayed state.
func (s *Service) background(ctx context.Context, fn func(context.Context)) {
	if ctx == nil {
		ctx = context.Background()
	}
	detached := context.WithoutCancel(ctx)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		fn(detached)
	}()
}

func (s *Service) loadAnalytics(ctx context.Context) {
	cards := s.opts.Cards
	results := make([]ChartDataset, len(cards))
	var group errgroup.Group
	for i, card := range cards {
		group.Go(func() error {
			dataset, err := s.opts.Charts.FetchChart(ctx, card.Source)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", card.Source, err)
			}
			results[i] = dataset
			return nil
		})
	}
	err := group.Wait()

	s.mu.Lock()
	s.chartFetches--
	if err != nil {
		s.charts = map[ChartSlot]ChartDataset{}
	} else {
		charts := make(map[ChartSlot]ChartDataset, len(cards))
		for i, card := range cards {
			charts[card.Slot] = results[i]
		}
		s.charts = charts
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Warn("analytics fetch failed", zap.Error(err))
		s.toast(ctx, msgAnalyticsFailed, SeverityError)
		s.record(ctx, "dashboard.charts.error", map[string]any{"error": err.Error()})
		return
	}
	s.record(ctx, "dashboard.charts.loaded", map[string]any{"count": len(cards)})
	s.emit(ctx, StateEvent{Reason: "charts.loaded"})
}

func (s *Service) loadReports(ctx context.Context) {
	reports, err := s.opts.Reports.ListReports(ctx)
	if err != nil {
		s.log.Warn("report fetch failed", zap.Error(err))
		s.toast(ctx, msgReportsFailed, SeverityError)
		s.record(ctx, "dashboard.reports.error", map[string]any{"error": err.Error()})
		return
	}
	list := make([]Report, len(reports))
	for i, r := range reports {
		list[i] = r.clone()
	}
	s.mu.Lock()
	s.reports = list
	s.mu.Unlock()
	s.record(ctx, "dashboard.reports.loaded", map[string]any{"count": len(list)})
	s.emit(ctx, StateEvent{Reason: "reports.loaded"})
}

// SwitchView changes the active page.
func (s *Service) SwitchView(ctx context.Context, view View) {
	s.mu.Lock()
	s.view = view
	s.mu.Unlock()
	s.emit(ctx, StateEvent{Reason: "view"})
}

// OpenChart enlarges a card. It is a no-op when the card has no data.
func (s *Service) OpenChart(ctx context.Context, slot ChartSlot) bool {
	card, ok := CardFor(s.opts.Cards, slot)
	if !ok {
		return false
	}
	s.mu.Lock()
	dataset := s.charts[slot]
	if dataset.Empty() {
		s.mu.Unlock()
		return false
	}
	s.modal = ChartModal{Card: card, Dataset: dataset.clone()}
	s.mu.Unlock()
	s.emit(ctx, StateEvent{Reason: "modal.chart", Slot: string(slot)})
	return true
}

// CloseModal dismisses whichever dialog is open.
func (s *Service) CloseModal(ctx context.Context) {
	s.mu.Lock()
	s.modal = nil
	s.mu.Unlock()
	s.emit(ctx, StateEvent{Reason: "modal.close"})
}

// OpenNewReport opens an empty report form.
func (s *Service) OpenNewReport(ctx context.Context) {
	s.mu.Lock()
	s.modal = ReportFormModal{}
	s.mu.Unlock()
	s.emit(ctx, StateEvent{Reason: "modal.report_form"})
}

// OpenEditReport opens the form pre-filled with an existing report.
func (s *Service) OpenEditReport(ctx context.Context, id int64) error {
	s.mu.Lock()
	var found *Report
	for _, r := range s.reports {
		if r.HasID() && *r.ID == id {
			editing := r.clone()
			found = &editing
			break
		}
	}
	if found == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrReportNotFound, id)
	}
	s.modal = ReportFormModal{
		Editing: found,
		Draft:   ReportInput{Scope: found.Scope, Metrics: found.Metrics},
	}
	s.mu.Unlock()
	s.emit(ctx, StateEvent{Reason: "modal.report_form"})
	return nil
}

// SubmitReport creates or updates a report depending on the open form. On
// success the form closes and the list is refetched; nothing is inserted
// locally.
func (s *Service) SubmitReport(ctx context.Context, input ReportInput) error {
	s.mu.Lock()
	form, _ := s.modal.(ReportFormModal)
	form.Draft = input
	if _, open := s.modal.(ReportFormModal); open {
		s.modal = form
	}
	s.mu.Unlock()

	if err := s.opts.Validator.Validate(input); err != nil {
		s.toast(ctx, msgReportInvalid, SeverityError)
		return err
	}

	var (
		saved   Report
		err     error
		message string
		event   string
	)
	if form.IsEdit() {
		saved, err = s.opts.Reports.UpdateReport(ctx, *form.Editing.ID, input)
		message, event = msgReportUpdated, "dashboard.report.update"
	} else {
		saved, err = s.opts.Reports.CreateReport(ctx, input)
		message, event = msgReportCreated, "dashboard.report.create"
	}
	if err != nil {
		s.log.Warn("save report failed", zap.Error(err), zap.Bool("edit", form.IsEdit()))
		s.toast(ctx, msgReportFailed, SeverityError)
		return fmt.Errorf("dashboard: save report: %w", err)
	}

	s.mu.Lock()
	if _, open := s.modal.(ReportFormModal); open {
		s.modal = nil
	}
	s.mu.Unlock()
	s.log.Info("report saved", zap.Int64("report_id", saved.IDValue()))
	s.record(ctx, event, map[string]any{"report_id": saved.IDValue()})
	s.toast(ctx, message, SeveritySuccess)
	s.RefreshReports(ctx)
	return nil
}

// DeleteReport removes a report once the user confirmed. Without
// confirmation nothing happens and no call is made.
func (s *Service) DeleteReport(ctx context.Context, id int64, confirmed bool) error {
	if !confirmed {
		return nil
	}
	if err := s.opts.Reports.DeleteReport(ctx, id); err != nil {
		s.log.Warn("delete report failed", zap.Error(err), zap.Int64("report_id", id))
		s.toast(ctx, msgDeleteFailed, SeverityError)
		return fmt.Errorf("dashboard: delete report %d: %w", id, err)
	}
	s.log.Info("report deleted", zap.Int64("report_id", id))
	s.record(ctx, "dashboard.report.delete", map[string]any{"report_id": id})
	s.toast(ctx, msgReportDeleted, SeverityInfo)
	s.RefreshReports(ctx)
	return nil
}

// OpenTokenDialog opens the token dialog pre-filled with the stored token.
func (s *Service) OpenTokenDialog(ctx context.Context) error {
	token, err := s.opts.Credentials.Token(ctx)
	if err != nil {
		return fmt.Errorf("dashboard: read token: %w", err)
	}
	s.mu.Lock()
	s.modal = TokenModal{Input: token}
	s.mu.Unlock()
	s.emit(ctx, StateEvent{Reason: "modal.token"})
	return nil
}

// SaveToken stores a trimmed token and reloads charts and reports. Blank
// input is rejected without touching storage.
func (s *Service) SaveToken(ctx context.Context, raw string) error {
	token := strings.TrimSpace(raw)
	if token == "" {
		s.toast(ctx, msgTokenBlank, SeverityError)
		return ErrBlankToken
	}
	if err := s.opts.Credentials.SetToken(ctx, token); err != nil {
		s.log.Error("store token failed", zap.Error(err))
		s.toast(ctx, msgTokenFailed, SeverityError)
		return fmt.Errorf("dashboard: store token: %w", err)
	}
	s.mu.Lock()
	if _, open := s.modal.(TokenModal); open {
		s.modal = nil
	}
	s.mu.Unlock()
	s.log.Info("token stored")
	s.record(ctx, "dashboard.token.save", nil)
	s.toast(ctx, msgTokenStored, SeveritySuccess)
	s.RefreshAnalytics(ctx)
	s.RefreshReports(ctx)
	return nil
}

// ClearToken removes the stored credential, closes the token dialog and
// reloads both fetch groups unauthenticated.
func (s *Service) ClearToken(ctx context.Context) error {
	if err := s.opts.Credentials.Clear(ctx); err != nil {
		s.log.Error("clear token failed", zap.Error(err))
		s.toast(ctx, msgTokenFailed, SeverityError)
		return fmt.Errorf("dashboard: clear token: %w", err)
	}
	s.mu.Lock()
	if _, open := s.modal.(TokenModal); open {
		s.modal = nil
	}
	s.mu.Unlock()
	s.log.Info("token cleared")
	s.record(ctx, "dashboard.token.clear", nil)
	s.toast(ctx, msgTokenCleared, SeverityInfo)
	s.RefreshAnalytics(ctx)
	s.RefreshReports(ctx)
	return nil
}

// Snapshot returns a deep copy of the current state.
func (s *Service) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	charts := make(map[ChartSlot]ChartDataset, len(s.charts))
	for slot, dataset := range s.charts {
		charts[slot] = dataset.clone()
	}
	reports := make([]Report, len(s.reports))
	for i, r := range s.reports {
		reports[i] = r.clone()
	}
	return State{
		View:          s.view,
		Modal:         cloneModal(s.modal),
		Cards:         append([]ChartCard(nil), s.opts.Cards...),
		Charts:        charts,
		ChartsLoading: s.chartFetches > 0,
		Reports:       reports,
		Toast:         s.toaster.snapshot(),
	}
}

func (s *Service) toast(ctx context.Context, message string, severity Severity) {
	t := s.toaster.show(message, severity)
	s.emit(ctx, StateEvent{Reason: "toast." + string(t.Severity)})
}

func (s *Service) emit(ctx context.Context, event StateEvent) {
	if err := s.opts.RefreshHook.StateChanged(ctx, event); err != nil {
		s.log.Warn("refresh hook failed", zap.Error(err), zap.String("reason", event.Reason))
	}
}

func (s *Service) record(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

type noopRefreshHook struct{}

func (noopRefreshHook) StateChanged(context.Context, StateEvent) error {
	return nil
}
