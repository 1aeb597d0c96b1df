package gorouter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	router "github.com/goliatone/go-router"

	dashboard "github.com/goliatone/go-analytics-console/components/dashboard"
	"github.com/goliatone/go-analytics-console/components/dashboard/commands"
	"github.com/goliatone/go-analytics-console/components/dashboard/httpapi"
	"github.com/goliatone/go-analytics-console/components/dashboard/queries"
	gocommand "github.com/goliatone/go-command"
)

// Config wires go-router with the dashboard controller, action executor and
// refresh broadcast.
type Config[T any] struct {
	Router     router.Router[T]
	Controller *dashboard.Controller
	API        httpapi.Executor
	State      gocommand.Querier[queries.StateInput, dashboard.StatePayload]
	Reports    gocommand.Querier[queries.ReportsInput, []dashboard.Report]
	Broadcast  *dashboard.BroadcastHook
	BasePath   string
	Routes     RouteConfig
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	HTML      string
	State     string
	Navigate  string
	Refresh   string
	Reports   string
	ReportID  string
	Token     string
	WebSocket string
}

// Register mounts the dashboard page, state snapshot, action endpoints and
// the refresh WebSocket on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	state := cfg.stateFn()

	group := cfg.Router.Group(cfg.BasePath)

	group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		var buf bytes.Buffer
		if err := cfg.Controller.RenderTemplate(ctx.Context(), &buf); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	group.Get(routes.State, router.WrapHandler(func(ctx router.Context) error {
		payload, err := state(ctx)
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, payload)
	}))

	if cfg.Reports != nil {
		reports := cfg.Reports
		group.Get(routes.Reports, router.WrapHandler(func(ctx router.Context) error {
			in, err := queries.ParseReportsInput(ctx.Query("id"))
			if err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
			list, err := reports.Query(ctx.Context(), in)
			if err != nil {
				return respondError(ctx, httpapi.ReportsStatus(err), err)
			}
			return ctx.JSON(http.StatusOK, list)
		}))
	}

	if cfg.API != nil {
		registerAPI(group, cfg.API, state, routes)
	}

	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}

	return nil
}

type stateFunc func(router.Context) (dashboard.StatePayload, error)

func (cfg Config[T]) stateFn() stateFunc {
	if cfg.State != nil {
		return func(ctx router.Context) (dashboard.StatePayload, error) {
			return cfg.State.Query(ctx.Context(), queries.StateInput{})
		}
	}
	return func(ctx router.Context) (dashboard.StatePayload, error) {
		return cfg.Controller.StatePayload(ctx.Context())
	}
}

func registerAPI[T any](r router.Router[T], api httpapi.Executor, state stateFunc, routes RouteConfig) {
	r.Post(routes.Navigate, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.NavigateInput
		if err := decodeBody(ctx.Body(), &payload, false); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		return respondAction(ctx, state, api.Navigate(ctx.Context(), payload))
	}))

	r.Post(routes.Refresh, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.RefreshInput
		if err := decodeBody(ctx.Body(), &payload, true); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		return respondAction(ctx, state, api.Refresh(ctx.Context(), payload))
	}))

	r.Post(routes.Reports, router.WrapHandler(func(ctx router.Context) error {
		var payload dashboard.ReportInput
		if err := decodeBody(ctx.Body(), &payload, false); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		return respondAction(ctx, state, api.SubmitReport(ctx.Context(), payload))
	}))

	r.Delete(routes.ReportID, router.WrapHandler(func(ctx router.Context) error {
		payload, err := deleteInput(ctx.Param("id"), ctx.Body(), ctx.Query("confirmed"))
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		return respondAction(ctx, state, api.DeleteReport(ctx.Context(), payload))
	}))

	r.Post(routes.Token, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.SaveTokenInput
		if err := decodeBody(ctx.Body(), &payload, false); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		return respondAction(ctx, state, api.SaveToken(ctx.Context(), payload))
	}))
}

func registerWebSocket[T any](r router.Router[T], hook *dashboard.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe()
		defer cancel()
		peer, stop := dashboard.WatchPeer(ws.Context(), func() error {
			_, _, err := ws.ReadMessage()
			return err
		})
		defer stop()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return ws.Close()
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-peer.Done():
				return ws.Close()
			}
		}
	})
}

func respondAction(ctx router.Context, state stateFunc, actionErr error) error {
	resp := httpapi.ActionResponse{}
	if actionErr != nil {
		resp.Error = actionErr.Error()
	}
	payload, err := state(ctx)
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, err)
	}
	resp.State = payload
	return ctx.JSON(httpapi.ActionStatus(actionErr), resp)
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

// decodeBody unmarshals a JSON request body. Blank bodies are accepted only
// when allowEmpty is set.
func decodeBody(body []byte, target any, allowEmpty bool) error {
	if len(bytes.TrimSpace(body)) == 0 {
		if allowEmpty {
			return nil
		}
		return errors.New("request body is required")
	}
	return json.Unmarshal(body, target)
}

func deleteInput(rawID string, body []byte, confirmedQuery string) (commands.DeleteReportInput, error) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return commands.DeleteReportInput{}, fmt.Errorf("invalid report id %q", rawID)
	}
	var payload commands.DeleteReportInput
	if err := decodeBody(body, &payload, true); err != nil {
		return commands.DeleteReportInput{}, err
	}
	payload.ID = id
	if confirmed, err := strconv.ParseBool(confirmedQuery); err == nil && confirmed {
		payload.Confirmed = true
	}
	return payload, nil
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/dashboard"
	}
	if routes.State == "" {
		routes.State = "/dashboard/_state"
	}
	if routes.Navigate == "" {
		routes.Navigate = "/dashboard/navigate"
	}
	if routes.Refresh == "" {
		routes.Refresh = "/dashboard/refresh"
	}
	if routes.Reports == "" {
		routes.Reports = "/dashboard/reports"
	}
	if routes.ReportID == "" {
		routes.ReportID = "/dashboard/reports/:id"
	}
	if routes.Token == "" {
		routes.Token = "/dashboard/token"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/dashboard/ws"
	}
	return routes
}
