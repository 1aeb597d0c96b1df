package analytics

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	dashboard "github.com/goliatone/go-analytics-console/components/dashboard"
)

// Operation names a client call for failure injection.
type Operation string

const (
	OpListReports  Operation = "list_reports"
	OpGetReport    Operation = "get_report"
	OpCreateReport Operation = "create_report"
	OpUpdateReport Operation = "update_report"
	OpDeleteReport Operation = "delete_report"
	OpFetchChart   Operation = "fetch_chart"
)

// MockData seeds deterministic analytics responses for tests or local demos.
type MockData struct {
	Reports  []dashboard.Report
	Datasets map[dashboard.ChartSource]dashboard.ChartDataset
}

// MockClient implements Client using in-memory fixtures. Reports created
// through it get sequential ids and today's date.
type MockClient struct {
	mu       sync.RWMutex
	reports  map[int64]dashboard.Report
	nextID   int64
	datasets map[dashboard.ChartSource]dashboard.ChartDataset
	failures map[Operation]error
	sources  map[dashboard.ChartSource]error
	now      func() time.Time
}

// NewMockClient builds a mock analytics client from the provided fixtures.
func NewMockClient(data MockData) *MockClient {
	c := &MockClient{
		reports:  map[int64]dashboard.Report{},
		datasets: map[dashboard.ChartSource]dashboard.ChartDataset{},
		failures: map[Operation]error{},
		sources:  map[dashboard.ChartSource]error{},
		now:      time.Now,
	}
	for _, r := range data.Reports {
		if !r.HasID() {
			c.nextID++
			r.ID = dashboard.Int64(c.nextID)
		}
		if *r.ID > c.nextID {
			c.nextID = *r.ID
		}
		c.reports[*r.ID] = cloneReport(r)
	}
	for src, ds := range data.Datasets {
		c.datasets[src] = cloneDataset(ds)
	}
	return c
}

// FailOn makes every later call of op return err. A nil err clears it.
func (c *MockClient) FailOn(op Operation, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		delete(c.failures, op)
		return
	}
	c.failures[op] = err
}

// FailSource makes FetchChart fail only for source.
func (c *MockClient) FailSource(source dashboard.ChartSource, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		delete(c.sources, source)
		return
	}
	c.sources[source] = err
}

// SetDataset replaces the dataset served for source.
func (c *MockClient) SetDataset(source dashboard.ChartSource, dataset dashboard.ChartDataset) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.datasets[source] = cloneDataset(dataset)
}

// ListReports returns the stored reports ordered by id.
func (c *MockClient) ListReports(context.Context) ([]dashboard.Report, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.failures[OpListReports]; err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(c.reports))
	for id := range c.reports {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]dashboard.Report, len(ids))
	for i, id := range ids {
		out[i] = cloneReport(c.reports[id])
	}
	return out, nil
}

// GetReport returns one report or a 404 status error.
func (c *MockClient) GetReport(_ context.Context, id int64) (dashboard.Report, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.failures[OpGetReport]; err != nil {
		return dashboard.Report{}, err
	}
	r, ok := c.reports[id]
	if !ok {
		return dashboard.Report{}, notFound("GET", reportPath(id))
	}
	return cloneReport(r), nil
}

// CreateReport stores input under the next id.
func (c *MockClient) CreateReport(_ context.Context, input dashboard.ReportInput) (dashboard.Report, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.failures[OpCreateReport]; err != nil {
		return dashboard.Report{}, err
	}
	c.nextID++
	r := dashboard.Report{
		ID:            dashboard.Int64(c.nextID),
		Scope:         input.Scope,
		Metrics:       input.Metrics,
		GeneratedDate: c.now().Format(time.DateOnly),
	}
	c.reports[c.nextID] = r
	return cloneReport(r), nil
}

// UpdateReport replaces scope and metrics and refreshes the date.
func (c *MockClient) UpdateReport(_ context.Context, id int64, input dashboard.ReportInput) (dashboard.Report, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.failures[OpUpdateReport]; err != nil {
		return dashboard.Report{}, err
	}
	r, ok := c.reports[id]
	if !ok {
		return dashboard.Report{}, notFound("PUT", reportPath(id))
	}
	r.Scope = input.Scope
	r.Metrics = input.Metrics
	r.GeneratedDate = c.now().Format(time.DateOnly)
	c.reports[id] = r
	return cloneReport(r), nil
}

// DeleteReport removes a report or returns a 404 status error.
func (c *MockClient) DeleteReport(_ context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.failures[OpDeleteReport]; err != nil {
		return err
	}
	if _, ok := c.reports[id]; !ok {
		return notFound("DELETE", reportPath(id))
	}
	delete(c.reports, id)
	return nil
}

// FetchChart returns the seeded dataset; unseeded sources are empty.
func (c *MockClient) FetchChart(_ context.Context, source dashboard.ChartSource) (dashboard.ChartDataset, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.failures[OpFetchChart]; err != nil {
		return dashboard.ChartDataset{}, err
	}
	if err := c.sources[source]; err != nil {
		return dashboard.ChartDataset{}, err
	}
	if _, err := dashboard.ParseChartSource(string(source)); err != nil {
		return dashboard.ChartDataset{}, fmt.Errorf("analytics: %w: %q", err, source)
	}
	return cloneDataset(c.datasets[source]), nil
}

func notFound(method, path string) error {
	return &StatusError{Method: method, Path: path, Code: 404}
}

func cloneReport(r dashboard.Report) dashboard.Report {
	out := r
	if r.ID != nil {
		out.ID = dashboard.Int64(*r.ID)
	}
	return out
}

func cloneDataset(ds dashboard.ChartDataset) dashboard.ChartDataset {
	out := dashboard.ChartDataset{Label: ds.Label}
	if ds.Points != nil {
		out.Points = append([]dashboard.ChartPoint(nil), ds.Points...)
	}
	return out
}

// DemoData returns a small wellness-program data set covering every chart
// source, used by the CLI --mock flag.
func DemoData() MockData {
	pts := func(pairs ...any) []dashboard.ChartPoint {
		out := make([]dashboard.ChartPoint, 0, len(pairs)/2)
		for i := 0; i+1 < len(pairs); i += 2 {
			out = append(out, dashboard.ChartPoint{Name: pairs[i].(string), Value: float64(pairs[i+1].(int))})
		}
		return out
	}
	return MockData{
		Reports: []dashboard.Report{
			{ID: dashboard.Int64(1), Scope: "Engineering", Metrics: "Participation rate by program, Q3", GeneratedDate: "2026-09-30"},
			{ID: dashboard.Int64(2), Scope: "Company-wide", Metrics: "Monthly enrollment trend", GeneratedDate: "2026-10-01"},
		},
		Datasets: map[dashboard.ChartSource]dashboard.ChartDataset{
			dashboard.SourceParticipationStatus:     {Label: "Participation by Status", Points: pts("ENROLLED", 48, "IN_PROGRESS", 35, "COMPLETED", 62, "DROPPED", 9)},
			dashboard.SourceParticipationDepartment: {Label: "Participation by Department", Points: pts("Engineering", 41, "Sales", 27, "Marketing", 19, "HR", 12, "Finance", 15)},
			dashboard.SourceParticipationProgram:    {Label: "Participation by Program", Points: pts("Step Challenge", 38, "Mindfulness", 24, "Nutrition 101", 17)},
			dashboard.SourceParticipationCategory:   {Label: "Participation by Category", Points: pts("Fitness", 52, "Mental Health", 33, "Nutrition", 21, "Financial", 8)},
			dashboard.SourceMonthlyTrend:            {Label: "Monthly Enrollment", Points: pts("2026-05", 14, "2026-06", 22, "2026-07", 19, "2026-08", 31, "2026-09", 37)},
			dashboard.SourceGoalStatus:              {Label: "Goals by Status", Points: pts("ACHIEVED", 44, "IN_PROGRESS", 58, "MISSED", 11)},
			dashboard.SourceChallengeCompletion:     {Label: "Challenge Completion", Points: pts("Completed", 29, "Not Completed", 17)},
			dashboard.SourceDepartmentEngagement:    {Label: "Engagement by Department", Points: pts("Engineering", 78, "Sales", 64, "Marketing", 71, "HR", 83)},
			dashboard.SourceManagerTeamSize:         {Label: "Team Size by Manager", Points: pts("A. Rivera", 8, "J. Chen", 6, "M. Okafor", 11)},
			dashboard.SourceActivityCompletion:      {Label: "Activity Completion", Points: pts("COMPLETED", 120, "PENDING", 45)},
			dashboard.SourceProgramStatus:           {Label: "Programs by Status", Points: pts("ACTIVE", 6, "UPCOMING", 3, "CLOSED", 4)},
		},
	}
}
