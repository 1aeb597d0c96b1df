package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-analytics-console/components/dashboard/gorouter"
	console "github.com/goliatone/go-analytics-console/pkg/dashboard"
)

const shutdownTimeout = 5 * time.Second

type serveCmd struct {
	Listen     string        `default:":9876" env:"ANALYTICS_LISTEN" help:"Address to listen on."`
	Transport  string        `default:"fiber" enum:"fiber,nethttp" help:"HTTP stack: fiber (go-router) or nethttp (chi)."`
	AssetsHost string        `name:"assets-host" help:"Host serving the ECharts JavaScript assets."`
	ChartCache time.Duration `name:"chart-cache" default:"5m" help:"How long rendered chart markup is reused."`
	ToastDelay time.Duration `name:"toast-delay" default:"3.5s" help:"How long toasts stay visible."`
}

func (cmd *serveCmd) Run(rt *runtime) error {
	client, store, err := rt.backend()
	if err != nil {
		return err
	}
	app, err := console.New(console.Config{
		Client:        client,
		Credentials:   store,
		Logger:        rt.logger,
		AssetsHost:    cmd.AssetsHost,
		ChartCacheTTL: cmd.ChartCache,
		ToastDelay:    cmd.ToastDelay,
	})
	if err != nil {
		return err
	}
	defer app.Close()
	app.Service.Mount(rt.ctx)

	rt.logger.Info("dashboard ready",
		zap.String("url", fmt.Sprintf("http://localhost%s/dashboard", cmd.Listen)),
		zap.String("transport", cmd.Transport),
		zap.Bool("mock", rt.globals.Mock),
	)

	if cmd.Transport == "nethttp" {
		return serveNetHTTP(rt.ctx, cmd.Listen, app)
	}
	return serveFiber(rt.ctx, cmd.Listen, app)
}

func serveFiber(ctx context.Context, addr string, app *console.Console) error {
	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:     server.Router(),
		Controller: app.Controller,
		API:        app.Executor,
		State:      app.State,
		Reports:    app.Reports,
		Broadcast:  app.Broadcast,
	}); err != nil {
		return fmt.Errorf("analyticsctl: register routes: %w", err)
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return server.Serve(addr)
	})
	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	group.Go(func() error {
		app.PurgeCharts(gctx, time.Minute)
		return nil
	})
	return group.Wait()
}

func serveNetHTTP(ctx context.Context, addr string, app *console.Console) error {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Mount("/dashboard", app.Handlers().Routes())

	server := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	group.Go(func() error {
		app.PurgeCharts(gctx, time.Minute)
		return nil
	})
	return group.Wait()
}
