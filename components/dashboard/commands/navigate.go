package commands

import (
	"context"
	"errors"
	"fmt"

	dashboard "github.com/goliatone/go-analytics-console/components/dashboard"
	gocommand "github.com/goliatone/go-command"
)

// ErrInvalidInput marks malformed command payloads. Transports map it to 400.
var ErrInvalidInput = errors.New("commands: invalid input")

// Navigation actions understood by NavigateCommand.
const (
	ActionView       = "view"
	ActionOpenChart  = "open_chart"
	ActionNewReport  = "new_report"
	ActionEditReport = "edit_report"
	ActionOpenToken  = "open_token"
	ActionCloseModal = "close_modal"
)

// NavigateInput switches views and opens or closes dialogs.
type NavigateInput struct {
	Action string `json:"action"`
	View   string `json:"view,omitempty"`
	Slot   string `json:"slot,omitempty"`
	ID     int64  `json:"id,omitempty"`
}

type navigator interface {
	SwitchView(ctx context.Context, view dashboard.View)
	OpenChart(ctx context.Context, slot dashboard.ChartSlot) bool
	CloseModal(ctx context.Context)
	OpenNewReport(ctx context.Context)
	OpenEditReport(ctx context.Context, id int64) error
	OpenTokenDialog(ctx context.Context) error
}

// NavigateCommand drives the UI mode machine.
type NavigateCommand struct {
	service   navigator
	telemetry Telemetry
}

// NewNavigateCommand creates the command.
func NewNavigateCommand(service navigator, telemetry Telemetry) *NavigateCommand {
	return &NavigateCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[NavigateInput] = (*NavigateCommand)(nil)

// Execute applies the navigation action.
func (c *NavigateCommand) Execute(ctx context.Context, msg NavigateInput) error {
	if c.service == nil {
		return errors.New("navigate command requires service")
	}
	switch msg.Action {
	case ActionView:
		view, ok := dashboard.ParseView(msg.View)
		if !ok {
			return fmt.Errorf("%w: unknown view %q", ErrInvalidInput, msg.View)
		}
		c.service.SwitchView(ctx, view)
	case ActionOpenChart:
		c.service.OpenChart(ctx, dashboard.ChartSlot(msg.Slot))
	case ActionNewReport:
		c.service.OpenNewReport(ctx)
	case ActionEditReport:
		if err := c.service.OpenEditReport(ctx, msg.ID); err != nil {
			return err
		}
	case ActionOpenToken:
		if err := c.service.OpenTokenDialog(ctx); err != nil {
			return err
		}
	case ActionCloseModal:
		c.service.CloseModal(ctx)
	default:
		return fmt.Errorf("%w: unknown action %q", ErrInvalidInput, msg.Action)
	}
	c.telemetry.Record(ctx, "dashboard.navigate", map[string]any{
		"action": msg.Action,
		"view":   msg.View,
		"slot":   msg.Slot,
	})
	return nil
}
