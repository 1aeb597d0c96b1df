package commands

import (
	"context"

	dashboard "github.com/goliatone/go-analytics-console/components/dashboard"
)

// Telemetry is the sink commands report executed actions to.
type Telemetry = dashboard.Telemetry

type discardTelemetry struct{}

func (discardTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return discardTelemetry{}
	}
	return t
}
