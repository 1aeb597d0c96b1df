package commands

import (
	"context"
	"errors"
	"fmt"

	gocommand "github.com/goliatone/go-command"
)

// Refresh targets. An empty target reloads both groups.
const (
	RefreshAll       = ""
	RefreshAnalytics = "analytics"
	RefreshReports   = "reports"
)

// RefreshInput selects which data group to reload.
type RefreshInput struct {
	Target string `json:"target,omitempty"`
}

type refresher interface {
	RefreshAnalytics(ctx context.Context)
	RefreshReports(ctx context.Context)
}

// RefreshCommand starts background fetches; it returns before they finish.
type RefreshCommand struct {
	service   refresher
	telemetry Telemetry
}

// NewRefreshCommand creates the command.
func NewRefreshCommand(service refresher, telemetry Telemetry) *RefreshCommand {
	return &RefreshCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshInput] = (*RefreshCommand)(nil)

// Execute triggers the requested fetch group(s).
func (c *RefreshCommand) Execute(ctx context.Context, msg RefreshInput) error {
	if c.service == nil {
		return errors.New("refresh command requires service")
	}
	switch msg.Target {
	case RefreshAll:
		c.service.RefreshAnalytics(ctx)
		c.service.RefreshReports(ctx)
	case RefreshAnalytics:
		c.service.RefreshAnalytics(ctx)
	case RefreshReports:
		c.service.RefreshReports(ctx)
	default:
		return fmt.Errorf("%w: unknown refresh target %q", ErrInvalidInput, msg.Target)
	}
	c.telemetry.Record(ctx, "dashboard.refresh", map[string]any{"target": msg.Target})
	return nil
}
