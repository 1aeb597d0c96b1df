package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// SaveTokenInput carries the pasted bearer token. Clear removes the stored
// token instead and ignores Token.
type SaveTokenInput struct {
	Token string `json:"token"`
	Clear bool   `json:"clear,omitempty"`
}

type tokenSaver interface {
	SaveToken(ctx context.Context, raw string) error
	ClearToken(ctx context.Context) error
}

// SaveTokenCommand stores a token and reloads all data.
type SaveTokenCommand struct {
	service   tokenSaver
	telemetry Telemetry
}

// NewSaveTokenCommand creates the command.
func NewSaveTokenCommand(service tokenSaver, telemetry Telemetry) *SaveTokenCommand {
	return &SaveTokenCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SaveTokenInput] = (*SaveTokenCommand)(nil)

// Execute delegates to the dashboard service. The token itself is never
// recorded.
func (c *SaveTokenCommand) Execute(ctx context.Context, msg SaveTokenInput) error {
	if c.service == nil {
		return errors.New("save token command requires service")
	}
	if msg.Clear {
		if err := c.service.ClearToken(ctx); err != nil {
			return err
		}
		c.telemetry.Record(ctx, "dashboard.token.cleared", nil)
		return nil
	}
	if err := c.service.SaveToken(ctx, msg.Token); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.token.saved", nil)
	return nil
}
