package queries

import (
	"context"

	dashboard "github.com/goliatone/go-analytics-console/components/dashboard"
	gocommand "github.com/goliatone/go-command"
)

type stateSource interface {
	Snapshot() dashboard.State
}

// StateInput selects nothing today; it exists so the query fits the
// Querier contract.
type StateInput struct{}

// DashboardStateQuery returns the JSON view of the current state.
type DashboardStateQuery struct {
	service stateSource
}

// NewDashboardStateQuery builds the query.
func NewDashboardStateQuery(service stateSource) *DashboardStateQuery {
	return &DashboardStateQuery{service: service}
}

var _ gocommand.Querier[StateInput, dashboard.StatePayload] = (*DashboardStateQuery)(nil)

// Query snapshots the service.
func (q *DashboardStateQuery) Query(_ context.Context, _ StateInput) (dashboard.StatePayload, error) {
	return dashboard.NewStatePayload(q.service.Snapshot()), nil
}
