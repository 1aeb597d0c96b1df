package commands

import (
	"context"
	"errors"

	dashboard "github.com/goliatone/go-analytics-console/components/dashboard"
	gocommand "github.com/goliatone/go-command"
)

type reportSubmitter interface {
	SubmitReport(ctx context.Context, input dashboard.ReportInput) error
}

// SubmitReportCommand saves the open report form (create or update).
type SubmitReportCommand struct {
	service   reportSubmitter
	telemetry Telemetry
}

// NewSubmitReportCommand creates the command.
func NewSubmitReportCommand(service reportSubmitter, telemetry Telemetry) *SubmitReportCommand {
	return &SubmitReportCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[dashboard.ReportInput] = (*SubmitReportCommand)(nil)

// Execute delegates to the dashboard service.
func (c *SubmitReportCommand) Execute(ctx context.Context, msg dashboard.ReportInput) error {
	if c.service == nil {
		return errors.New("submit report command requires service")
	}
	if err := c.service.SubmitReport(ctx, msg); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.report.submit", map[string]any{"scope": msg.Scope})
	return nil
}

// DeleteReportInput identifies the report and carries the user's answer to
// the confirmation prompt.
type DeleteReportInput struct {
	ID        int64 `json:"id"`
	Confirmed bool  `json:"confirmed"`
}

type reportDeleter interface {
	DeleteReport(ctx context.Context, id int64, confirmed bool) error
}

// DeleteReportCommand removes a report after confirmation.
type DeleteReportCommand struct {
	service   reportDeleter
	telemetry Telemetry
}

// NewDeleteReportCommand creates the command.
func NewDeleteReportCommand(service reportDeleter, telemetry Telemetry) *DeleteReportCommand {
	return &DeleteReportCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DeleteReportInput] = (*DeleteReportCommand)(nil)

// Execute delegates to the dashboard service.
func (c *DeleteReportCommand) Execute(ctx context.Context, msg DeleteReportInput) error {
	if c.service == nil {
		return errors.New("delete report command requires service")
	}
	if err := c.service.DeleteReport(ctx, msg.ID, msg.Confirmed); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.report.delete_request", map[string]any{
		"report_id": msg.ID,
		"confirmed": msg.Confirmed,
	})
	return nil
}
