package analytics

import (
	"context"

	dashboard "github.com/goliatone/go-analytics-console/components/dashboard"
)

// NewReportRepository adapts an analytics client into the dashboard report repository.
func NewReportRepository(client ReportClient) dashboard.ReportRepository {
	return &reportRepository{client: client}
}

type reportRepository struct {
	client ReportClient
}

func (r *reportRepository) ListReports(ctx context.Context) ([]dashboard.Report, error) {
	return r.client.ListReports(ctx)
}

func (r *reportRepository) CreateReport(ctx context.Context, input dashboard.ReportInput) (dashboard.Report, error) {
	return r.client.CreateReport(ctx, input)
}

func (r *reportRepository) UpdateReport(ctx context.Context, id int64, input dashboard.ReportInput) (dashboard.Report, error) {
	return r.client.UpdateReport(ctx, id, input)
}

func (r *reportRepository) DeleteReport(ctx context.Context, id int64) error {
	return r.client.DeleteReport(ctx, id)
}

// NewChartRepository adapts the analytics client for chart cards.
func NewChartRepository(client ChartClient) dashboard.ChartRepository {
	return &chartRepository{client: client}
}

type chartRepository struct {
	client ChartClient
}

func (r *chartRepository) FetchChart(ctx context.Context, source dashboard.ChartSource) (dashboard.ChartDataset, error) {
	return r.client.FetchChart(ctx, source)
}
