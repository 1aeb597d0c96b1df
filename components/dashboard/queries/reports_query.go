package queries

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	dashboard "github.com/goliatone/go-analytics-console/components/dashboard"
	gocommand "github.com/goliatone/go-command"
)

// ReportsInput optionally narrows the listing to one report id.
type ReportsInput struct {
	ID *int64
}

// ParseReportsInput reads the optional id filter from a query string value.
func ParseReportsInput(rawID string) (ReportsInput, error) {
	rawID = strings.TrimSpace(rawID)
	if rawID == "" {
		return ReportsInput{}, nil
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return ReportsInput{}, fmt.Errorf("invalid report id %q", rawID)
	}
	return ReportsInput{ID: &id}, nil
}

// ReportsQuery lists the reports currently held by the view-model.
type ReportsQuery struct {
	service stateSource
}

// NewReportsQuery builds the query.
func NewReportsQuery(service stateSource) *ReportsQuery {
	return &ReportsQuery{service: service}
}

var _ gocommand.Querier[ReportsInput, []dashboard.Report] = (*ReportsQuery)(nil)

// Query returns the loaded reports, or the single matching one.
func (q *ReportsQuery) Query(_ context.Context, in ReportsInput) ([]dashboard.Report, error) {
	state := q.service.Snapshot()
	if in.ID == nil {
		return state.Reports, nil
	}
	report, ok := state.FindReport(*in.ID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", dashboard.ErrReportNotFound, *in.ID)
	}
	return []dashboard.Report{report}, nil
}

type reportGetter interface {
	GetReport(ctx context.Context, id int64) (dashboard.Report, error)
}

// RemoteReportQuery loads one report straight from the backend.
type RemoteReportQuery struct {
	client reportGetter
}

// NewRemoteReportQuery builds the query.
func NewRemoteReportQuery(client reportGetter) *RemoteReportQuery {
	return &RemoteReportQuery{client: client}
}

var _ gocommand.Querier[int64, dashboard.Report] = (*RemoteReportQuery)(nil)

// Query fetches the report by id.
func (q *RemoteReportQuery) Query(ctx context.Context, id int64) (dashboard.Report, error) {
	return q.client.GetReport(ctx, id)
}
