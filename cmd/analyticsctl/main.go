package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-analytics-console/components/dashboard"
	"github.com/goliatone/go-analytics-console/pkg/analytics"
)

type cli struct {
	Globals

	Serve   serveCmd   `cmd:"" help:"Run the analytics dashboard web client."`
	Token   tokenCmd   `cmd:"" help:"Manage the stored bearer token."`
	Reports reportsCmd `cmd:"" help:"List and edit reports on the analytics backend."`
	Charts  chartsCmd  `cmd:"" help:"Inspect chart datasets served by the backend."`
}

// Globals are shared by every command.
type Globals struct {
	APIBase   string        `name:"api-base" env:"ANALYTICS_API_BASE" default:"${default_api}" help:"Base URL of the analytics backend."`
	Storage   string        `env:"ANALYTICS_STORAGE" default:"${default_storage}" type:"path" help:"Credential storage file."`
	Timeout   time.Duration `default:"10s" help:"Per-request timeout for backend calls."`
	LogLevel  string        `name:"log-level" env:"ANALYTICS_LOG_LEVEL" default:"info" enum:"debug,info,warn,error" help:"Log level."`
	LogFormat string        `name:"log-format" env:"ANALYTICS_LOG_FORMAT" default:"console" enum:"console,json" help:"Log encoding."`
	Mock      bool          `help:"Use the in-memory demo backend instead of --api-base."`
}

type runtime struct {
	ctx     context.Context
	globals *Globals
	logger  *zap.Logger
	out     io.Writer
}

func main() {
	var app cli
	kctx := kong.Parse(&app,
		kong.Name("analyticsctl"),
		kong.Description("Analytics dashboard client and backend utility."),
		kong.UsageOnError(),
		kong.Vars{
			"default_api":     analytics.DefaultBaseURL,
			"default_storage": dashboard.DefaultCredentialPath(),
		},
	)

	logger, err := newLogger(app.LogLevel, app.LogFormat)
	kctx.FatalIfErrorf(err)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = kctx.Run(&runtime{
		ctx:     ctx,
		globals: &app.Globals,
		logger:  logger,
		out:     os.Stdout,
	})
	kctx.FatalIfErrorf(err)
}

func newLogger(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("analyticsctl: log level: %w", err)
	}
	cfg := zap.NewProductionConfig()
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func (g *Globals) credentials() (*dashboard.FileCredentialStore, error) {
	return dashboard.NewFileCredentialStore(g.Storage)
}

// client returns the backend selected by the global flags.
func (g *Globals) client(logger *zap.Logger, tokens analytics.TokenSource) (analytics.Client, error) {
	if g.Mock {
		return analytics.NewMockClient(analytics.DemoData()), nil
	}
	return analytics.NewHTTPClient(analytics.HTTPConfig{
		BaseURL:    g.APIBase,
		Tokens:     tokens,
		HTTPClient: &http.Client{Timeout: g.Timeout},
		Logger:     logger.Named("analytics"),
	})
}

// backend resolves the credential store and a client authenticated by it.
func (rt *runtime) backend() (analytics.Client, *dashboard.FileCredentialStore, error) {
	store, err := rt.globals.credentials()
	if err != nil {
		return nil, nil, err
	}
	client, err := rt.globals.client(rt.logger, store)
	if err != nil {
		return nil, nil, err
	}
	return client, store, nil
}
