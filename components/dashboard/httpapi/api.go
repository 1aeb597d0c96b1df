package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	dashboard "github.com/goliatone/go-analytics-console/components/dashboard"
	"github.com/goliatone/go-analytics-console/components/dashboard/commands"
	"github.com/goliatone/go-analytics-console/components/dashboard/queries"
	gocommand "github.com/goliatone/go-command"
)

// PageRenderer renders the full dashboard page.
type PageRenderer interface {
	RenderTemplate(ctx context.Context, out io.Writer) error
}

// Handlers exposes the dashboard over net/http, backed by shared commands.
type Handlers struct {
	Executor  Executor
	State     gocommand.Querier[queries.StateInput, dashboard.StatePayload]
	Reports   gocommand.Querier[queries.ReportsInput, []dashboard.Report]
	Page      PageRenderer
	Broadcast *dashboard.BroadcastHook
	Logger    *zap.Logger
}

// Routes returns a chi router with every dashboard endpoint relative to
// its mount point.
func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	if h.Page != nil {
		r.Get("/", h.HandlePage)
	}
	r.Get("/_state", h.HandleState)
	r.Post("/navigate", h.HandleNavigate)
	r.Post("/refresh", h.HandleRefresh)
	if h.Reports != nil {
		r.Get("/reports", h.HandleListReports)
	}
	r.Post("/reports", h.HandleSubmitReport)
	r.Delete("/reports/{id}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleDeleteReport(w, r, chi.URLParam(r, "id"))
	})
	r.Post("/token", h.HandleSaveToken)
	if h.Broadcast != nil {
		r.Get("/events", h.Broadcast.ServeSSE)
		r.Get("/ws", h.Broadcast.ServeWebSocket)
	}
	return r
}

func (h *Handlers) HandlePage(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.Page.RenderTemplate(r.Context(), &buf); err != nil {
		h.logger().Error("render page failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (h *Handlers) HandleState(w http.ResponseWriter, r *http.Request) {
	payload, err := h.state(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *Handlers) HandleListReports(w http.ResponseWriter, r *http.Request) {
	in, err := queries.ParseReportsInput(r.URL.Query().Get("id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	reports, err := h.Reports.Query(r.Context(), in)
	if err != nil {
		http.Error(w, err.Error(), ReportsStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

func (h *Handlers) HandleNavigate(w http.ResponseWriter, r *http.Request) {
	var payload commands.NavigateInput
	if !decode(w, r, &payload, false) {
		return
	}
	h.respond(w, r, "navigate", h.Executor.Navigate(r.Context(), payload))
}

func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var payload commands.RefreshInput
	if !decode(w, r, &payload, true) {
		return
	}
	h.respond(w, r, "refresh", h.Executor.Refresh(r.Context(), payload))
}

func (h *Handlers) HandleSubmitReport(w http.ResponseWriter, r *http.Request) {
	var payload dashboard.ReportInput
	if !decode(w, r, &payload, false) {
		return
	}
	h.respond(w, r, "submit_report", h.Executor.SubmitReport(r.Context(), payload))
}

func (h *Handlers) HandleDeleteReport(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid report id %q", rawID), http.StatusBadRequest)
		return
	}
	payload := commands.DeleteReportInput{ID: id}
	if !decode(w, r, &payload, true) {
		return
	}
	payload.ID = id
	if confirmed, err := strconv.ParseBool(r.URL.Query().Get("confirmed")); err == nil && confirmed {
		payload.Confirmed = true
	}
	h.respond(w, r, "delete_report", h.Executor.DeleteReport(r.Context(), payload))
}

func (h *Handlers) HandleSaveToken(w http.ResponseWriter, r *http.Request) {
	var payload commands.SaveTokenInput
	if !decode(w, r, &payload, false) {
		return
	}
	h.respond(w, r, "save_token", h.Executor.SaveToken(r.Context(), payload))
}

func (h *Handlers) respond(w http.ResponseWriter, r *http.Request, action string, actionErr error) {
	status := ActionStatus(actionErr)
	resp := ActionResponse{}
	if actionErr != nil {
		resp.Error = actionErr.Error()
		h.logger().Info("action failed", zap.String("action", action), zap.Error(actionErr), zap.Int("status", status))
	} else {
		h.logger().Info("action", zap.String("action", action))
	}
	state, err := h.state(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	resp.State = state
	writeJSON(w, status, resp)
}

func (h *Handlers) state(ctx context.Context) (dashboard.StatePayload, error) {
	if h.State == nil {
		return dashboard.StatePayload{}, errors.New("httpapi: state query not configured")
	}
	return h.State.Query(ctx, queries.StateInput{})
}

func (h *Handlers) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

// decode reads a JSON body into target. An empty body is accepted only
// when allowEmpty is set.
func decode(w http.ResponseWriter, r *http.Request, target any, allowEmpty bool) bool {
	err := json.NewDecoder(r.Body).Decode(target)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return true
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
