package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	dashboard "github.com/goliatone/go-analytics-console/components/dashboard"
)

// DefaultBaseURL is the backend mount point used when none is configured.
const DefaultBaseURL = "http://localhost:8080/api/analytics"

const maxErrorBody = 4 << 10

// HTTPConfig configures the HTTP analytics client.
type HTTPConfig struct {
	BaseURL    string
	Tokens     TokenSource
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// HTTPClient talks to the analytics REST backend. Every method issues
// exactly one request; nothing is retried or cached.
type HTTPClient struct {
	baseURL string
	tokens  TokenSource
	client  *http.Client
	log     *zap.Logger
}

// NewHTTPClient builds a client for the backend at cfg.BaseURL.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("analytics: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		baseURL: base,
		tokens:  cfg.Tokens,
		client:  httpClient,
		log:     logger.Named("analytics"),
	}, nil
}

// BaseURL returns the normalized backend URL.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// ListReports returns every stored report.
func (c *HTTPClient) ListReports(ctx context.Context) ([]dashboard.Report, error) {
	var reports []dashboard.Report
	if err := c.do(ctx, http.MethodGet, "/reports", nil, &reports); err != nil {
		return nil, err
	}
	if reports == nil {
		reports = []dashboard.Report{}
	}
	return reports, nil
}

// GetReport loads a single report.
func (c *HTTPClient) GetReport(ctx context.Context, id int64) (dashboard.Report, error) {
	var report dashboard.Report
	if err := c.do(ctx, http.MethodGet, reportPath(id), nil, &report); err != nil {
		return dashboard.Report{}, err
	}
	return report, nil
}

// CreateReport stores a new report; the backend assigns id and date.
func (c *HTTPClient) CreateReport(ctx context.Context, input dashboard.ReportInput) (dashboard.Report, error) {
	var report dashboard.Report
	if err := c.do(ctx, http.MethodPost, "/reports", input, &report); err != nil {
		return dashboard.Report{}, err
	}
	return report, nil
}

// UpdateReport replaces scope and metrics of an existing report.
func (c *HTTPClient) UpdateReport(ctx context.Context, id int64, input dashboard.ReportInput) (dashboard.Report, error) {
	var report dashboard.Report
	if err := c.do(ctx, http.MethodPut, reportPath(id), input, &report); err != nil {
		return dashboard.Report{}, err
	}
	return report, nil
}

// DeleteReport removes a report. The response body is ignored.
func (c *HTTPClient) DeleteReport(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, reportPath(id), nil, nil)
}

// FetchChart loads one chart dataset and converts it into points.
func (c *HTTPClient) FetchChart(ctx context.Context, source dashboard.ChartSource) (dashboard.ChartDataset, error) {
	if _, err := dashboard.ParseChartSource(string(source)); err != nil {
		return dashboard.ChartDataset{}, fmt.Errorf("analytics: %w: %q", err, source)
	}
	var resp graphResponse
	if err := c.do(ctx, http.MethodGet, "/"+string(source), nil, &resp); err != nil {
		return dashboard.ChartDataset{}, err
	}
	return resp.toDataset(), nil
}

func reportPath(id int64) string {
	return "/reports/" + strconv.FormatInt(id, 10)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload any, target any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("analytics: encode payload: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("analytics: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := c.authorize(ctx, req); err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()
	c.log.Debug("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method: method,
			Path:   path,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(raw)),
		}
	}
	if target == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrDecode, method, path, err)
	}
	return nil
}

func (c *HTTPClient) authorize(ctx context.Context, req *http.Request) error {
	if c.tokens == nil {
		return nil
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("analytics: read token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return nil
}

type graphResponse struct {
	Label string       `json:"label"`
	Data  []graphPoint `json:"data"`
}

type graphPoint struct {
	X json.RawMessage `json:"x"`
	Y *float64        `json:"y"`
}

func (r graphResponse) toDataset() dashboard.ChartDataset {
	points := make([]dashboard.ChartPoint, len(r.Data))
	for i, p := range r.Data {
		var value float64
		if p.Y != nil {
			value = *p.Y
		}
		points[i] = dashboard.ChartPoint{Name: categoryName(p.X), Value: value}
	}
	return dashboard.ChartDataset{Label: r.Label, Points: points}
}

// categoryName renders x as text: strings verbatim, other scalars as
// their JSON literal, null as "".
func categoryName(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
