package analytics

import (
	"context"

	dashboard "github.com/goliatone/go-analytics-console/components/dashboard"
)

// ReportClient performs report CRUD against the analytics backend.
type ReportClient interface {
	ListReports(ctx context.Context) ([]dashboard.Report, error)
	GetReport(ctx context.Context, id int64) (dashboard.Report, error)
	CreateReport(ctx context.Context, input dashboard.ReportInput) (dashboard.Report, error)
	UpdateReport(ctx context.Context, id int64, input dashboard.ReportInput) (dashboard.Report, error)
	DeleteReport(ctx context.Context, id int64) error
}

// ChartClient fetches pre-aggregated chart datasets.
type ChartClient interface {
	FetchChart(ctx context.Context, source dashboard.ChartSource) (dashboard.ChartDataset, error)
}

// Client is a convenience union for backends that serve reports and charts.
type Client interface {
	ReportClient
	ChartClient
}

// TokenSource supplies the bearer token for each request. An empty token
// means the request goes out unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}
