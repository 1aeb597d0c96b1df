package dashboard

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	core "github.com/goliatone/go-analytics-console/components/dashboard"
	"github.com/goliatone/go-analytics-console/components/dashboard/httpapi"
	"github.com/goliatone/go-analytics-console/components/dashboard/queries"
	"github.com/goliatone/go-analytics-console/pkg/analytics"
)

// Service exposes the underlying components/dashboard.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// NewService proxies to the internal constructor.
func NewService(opts Options) (*Service, error) {
	return core.NewService(opts)
}

// Config describes a fully wired console.
type Config struct {
	Client        analytics.Client
	Credentials   core.CredentialStore
	Logger        *zap.Logger
	BasePath      string
	AssetsHost    string
	ChartCacheTTL time.Duration
	ToastDelay    time.Duration
}

// Console bundles the service with its presentation and action layers so
// transports only need to mount it.
type Console struct {
	Service    *core.Service
	Controller *core.Controller
	Broadcast  *core.BroadcastHook
	Executor   *httpapi.CommandExecutor
	State      *queries.DashboardStateQuery
	Reports    *queries.ReportsQuery
	cache      *core.ChartCache
	logger     *zap.Logger
}

// New wires the service, chart renderer, page template and command layer.
func New(cfg Config) (*Console, error) {
	if cfg.Client == nil {
		return nil, errors.New("dashboard: analytics client is required")
	}
	if cfg.Credentials == nil {
		return nil, errors.New("dashboard: credential store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	telemetry := core.NewZapTelemetry(logger)
	broadcast := core.NewBroadcastHook()

	service, err := core.NewService(core.Options{
		Reports:     analytics.NewReportRepository(cfg.Client),
		Charts:      analytics.NewChartRepository(cfg.Client),
		Credentials: cfg.Credentials,
		Validator:   core.NewJSONSchemaValidator(),
		RefreshHook: broadcast,
		Telemetry:   telemetry,
		Logger:      logger.Named("service"),
		ToastDelay:  cfg.ToastDelay,
	})
	if err != nil {
		return nil, err
	}

	renderer, err := core.NewTemplateRenderer()
	if err != nil {
		return nil, err
	}
	var cache *core.ChartCache
	chartOpts := []core.ChartRendererOption{}
	if cfg.ChartCacheTTL > 0 {
		cache = core.NewChartCache(cfg.ChartCacheTTL)
		chartOpts = append(chartOpts, core.WithChartCache(cache))
	}
	if cfg.AssetsHost != "" {
		chartOpts = append(chartOpts, core.WithChartAssetsHost(cfg.AssetsHost))
	}

	controller := core.NewController(core.ControllerOptions{
		Service:  service,
		Renderer: renderer,
		Charts:   core.NewChartRenderer(chartOpts...),
		BasePath: cfg.BasePath,
		Logger:   logger.Named("controller"),
	})

	return &Console{
		Service:    service,
		Controller: controller,
		Broadcast:  broadcast,
		Executor:   httpapi.NewCommandExecutor(service, telemetry),
		State:      queries.NewDashboardStateQuery(service),
		Reports:    queries.NewReportsQuery(service),
		cache:      cache,
		logger:     logger,
	}, nil
}

// Handlers returns the net/http transport for the console.
func (c *Console) Handlers() *httpapi.Handlers {
	return &httpapi.Handlers{
		Executor:  c.Executor,
		State:     c.State,
		Reports:   c.Reports,
		Page:      c.Controller,
		Broadcast: c.Broadcast,
		Logger:    c.logger.Named("http"),
	}
}

// PurgeCharts drops expired chart markup every interval until ctx is done.
// It returns immediately when no chart cache is configured.
func (c *Console) PurgeCharts(ctx context.Context, every time.Duration) {
	if c.cache == nil || every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			remaining := c.cache.Purge()
			c.logger.Debug("chart cache purged", zap.Int("remaining", remaining))
		}
	}
}

// Close stops background work and disconnects event subscribers.
func (c *Console) Close() {
	c.Service.Close()
	c.Broadcast.Close()
}
