package queries

import (
	"context"
	"errors"
	"testing"

	dashboard "github.com/goliatone/go-analytics-console/components/dashboard"
)

type stubStateSource struct {
	calls int
	state dashboard.State
}

func (s *stubStateSource) Snapshot() dashboard.State {
	s.calls++
	return s.state
}

type stubGetter struct {
	ids []int64
}

func (s *stubGetter) GetReport(_ context.Context, id int64) (dashboard.Report, error) {
	s.ids = append(s.ids, id)
	return dashboard.Report{ID: dashboard.Int64(id), Scope: "remote"}, nil
}

func sampleState() dashboard.State {
	return dashboard.State{
		View: dashboard.ViewReports,
		Reports: []dashboard.Report{
			{ID: dashboard.Int64(1), Scope: "Eng", Metrics: "rate"},
			{ID: dashboard.Int64(2), Scope: "Sales", Metrics: "trend"},
		},
	}
}

func TestDashboardStateQuery(t *testing.T) {
	service := &stubStateSource{state: sampleState()}
	query := NewDashboardStateQuery(service)
	payload, err := query.Query(context.Background(), StateInput{})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if service.calls != 1 {
		t.Fatalf("expected 1 call, got %d", service.calls)
	}
	if payload.View != "reports" || len(payload.Reports) != 2 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestReportsQuery(t *testing.T) {
	service := &stubStateSource{state: sampleState()}
	query := NewReportsQuery(service)

	all, err := query.Query(context.Background(), ReportsInput{})
	if err != nil || len(all) != 2 {
		t.Fatalf("expected 2 reports, got %v, %v", all, err)
	}

	one, err := query.Query(context.Background(), ReportsInput{ID: dashboard.Int64(2)})
	if err != nil || len(one) != 1 || one[0].Scope != "Sales" {
		t.Fatalf("expected report 2, got %v, %v", one, err)
	}

	_, err = query.Query(context.Background(), ReportsInput{ID: dashboard.Int64(9)})
	if !errors.Is(err, dashboard.ErrReportNotFound) {
		t.Fatalf("expected ErrReportNotFound, got %v", err)
	}
}

func TestRemoteReportQuery(t *testing.T) {
	client := &stubGetter{}
	query := NewRemoteReportQuery(client)
	report, err := query.Query(context.Background(), 5)
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if report.IDValue() != 5 || len(client.ids) != 1 {
		t.Fatalf("unexpected result %+v / %v", report, client.ids)
	}
}

func TestParseReportsInput(t *testing.T) {
	in, err := ParseReportsInput("")
	if err != nil || in.ID != nil {
		t.Fatalf("expected empty filter, got %+v, %v", in, err)
	}
	in, err = ParseReportsInput(" 7 ")
	if err != nil || in.ID == nil || *in.ID != 7 {
		t.Fatalf("expected id 7, got %+v, %v", in, err)
	}
	if _, err := ParseReportsInput("seven"); err == nil {
		t.Fatalf("expected error for non-numeric id")
	}
}
