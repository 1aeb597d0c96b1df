package httpapi

import (
	"context"
	"errors"
	"net/http"

	dashboard "github.com/goliatone/go-analytics-console/components/dashboard"
	"github.com/goliatone/go-analytics-console/components/dashboard/commands"
	gocommand "github.com/goliatone/go-command"
)

// Executor runs UI actions on behalf of a transport.
type Executor interface {
	Navigate(ctx context.Context, input commands.NavigateInput) error
	Refresh(ctx context.Context, input commands.RefreshInput) error
	SubmitReport(ctx context.Context, input dashboard.ReportInput) error
	DeleteReport(ctx context.Context, input commands.DeleteReportInput) error
	SaveToken(ctx context.Context, input commands.SaveTokenInput) error
}

// CommandExecutor adapts go-command commanders to Executor.
type CommandExecutor struct {
	NavigateCommander gocommand.Commander[commands.NavigateInput]
	RefreshCommander  gocommand.Commander[commands.RefreshInput]
	SubmitCommander   gocommand.Commander[dashboard.ReportInput]
	DeleteCommander   gocommand.Commander[commands.DeleteReportInput]
	TokenCommander    gocommand.Commander[commands.SaveTokenInput]
}

var errCommandMissing = errors.New("httpapi: command not configured")

func (e *CommandExecutor) Navigate(ctx context.Context, input commands.NavigateInput) error {
	if e.NavigateCommander == nil {
		return errCommandMissing
	}
	return e.NavigateCommander.Execute(ctx, input)
}

func (e *CommandExecutor) Refresh(ctx context.Context, input commands.RefreshInput) error {
	if e.RefreshCommander == nil {
		return errCommandMissing
	}
	return e.RefreshCommander.Execute(ctx, input)
}

func (e *CommandExecutor) SubmitReport(ctx context.Context, input dashboard.ReportInput) error {
	if e.SubmitCommander == nil {
		return errCommandMissing
	}
	return e.SubmitCommander.Execute(ctx, input)
}

func (e *CommandExecutor) DeleteReport(ctx context.Context, input commands.DeleteReportInput) error {
	if e.DeleteCommander == nil {
		return errCommandMissing
	}
	return e.DeleteCommander.Execute(ctx, input)
}

func (e *CommandExecutor) SaveToken(ctx context.Context, input commands.SaveTokenInput) error {
	if e.TokenCommander == nil {
		return errCommandMissing
	}
	return e.TokenCommander.Execute(ctx, input)
}

// ServiceCommands is the service surface every command needs.
type ServiceCommands interface {
	SwitchView(ctx context.Context, view dashboard.View)
	OpenChart(ctx context.Context, slot dashboard.ChartSlot) bool
	CloseModal(ctx context.Context)
	OpenNewReport(ctx context.Context)
	OpenEditReport(ctx context.Context, id int64) error
	OpenTokenDialog(ctx context.Context) error
	RefreshAnalytics(ctx context.Context)
	RefreshReports(ctx context.Context)
	SubmitReport(ctx context.Context, input dashboard.ReportInput) error
	DeleteReport(ctx context.Context, id int64, confirmed bool) error
	SaveToken(ctx context.Context, raw string) error
	ClearToken(ctx context.Context) error
}

// NewCommandExecutor wires every command against one service.
func NewCommandExecutor(service ServiceCommands, telemetry commands.Telemetry) *CommandExecutor {
	return &CommandExecutor{
		NavigateCommander: commands.NewNavigateCommand(service, telemetry),
		RefreshCommander:  commands.NewRefreshCommand(service, telemetry),
		SubmitCommander:   commands.NewSubmitReportCommand(service, telemetry),
		DeleteCommander:   commands.NewDeleteReportCommand(service, telemetry),
		TokenCommander:    commands.NewSaveTokenCommand(service, telemetry),
	}
}

// ActionResponse is returned by every action endpoint.
type ActionResponse struct {
	State dashboard.StatePayload `json:"state"`
	Error string                 `json:"error,omitempty"`
}

// ActionStatus maps an action error to an HTTP status. Domain failures are
// already surfaced as toasts, so only malformed input is a client error.
func ActionStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, commands.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, errCommandMissing):
		return http.StatusNotImplemented
	default:
		return http.StatusOK
	}
}

// ReportsStatus maps a reports listing error to an HTTP status.
func ReportsStatus(err error) int {
	if errors.Is(err, dashboard.ErrReportNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
