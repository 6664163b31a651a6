package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/mwantia/mystrava/pkg/activity"
	"github.com/mwantia/mystrava/pkg/aggregate"
	"github.com/mwantia/mystrava/pkg/db/models"
	"github.com/mwantia/mystrava/pkg/log"
	"github.com/mwantia/mystrava/pkg/view"
)

// SyncRunLister lists the recorded synchronisations.
type SyncRunLister interface {
	SyncRuns(ctx context.Context, limit int) ([]models.SyncRun, error)
}

// API exposes the view controller as JSON over HTTP.
type API struct {
	view *view.Controller
	runs SyncRunLister
	log  log.LoggerService
}

type activitiesResponse struct {
	Activities  []activity.Activity `json:"activities"`
	Count       int                 `json:"count"`
	Totals      aggregate.Totals    `json:"totals"`
	SpeedOrPace string              `json:"speed_or_pace"`
}

type statusResponse struct {
	view.Status
	Error string `json:"error,omitempty"`
}

func NewAPI(ctrl *view.Controller, runs SyncRunLister, logger log.LoggerService) *API {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &API{view: ctrl, runs: runs, log: logger}
}

func (api *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", api.handleHealth)

	mux.HandleFunc("GET /api/status", api.handleStatus)
	mux.HandleFunc("GET /api/profile", api.handleProfile)
	mux.HandleFunc("GET /api/selection", api.handleSelection)
	mux.HandleFunc("PUT /api/selection", api.handleSelect)
	mux.HandleFunc("POST /api/selection/sort/{column}", api.handleSort)
	mux.HandleFunc("GET /api/activities", api.handleActivities)
	mux.HandleFunc("GET /api/gears", api.handleGears)
	mux.HandleFunc("GET /api/totals", api.handleTotals)
	mux.HandleFunc("GET /api/syncs", api.handleSyncRuns)

	mux.HandleFunc("POST /api/sync", api.mutation(func(c *view.Controller, ctx context.Context) error {
		return Resync(ctx, c)
	}))
	mux.HandleFunc("POST /api/sync/activities", api.mutation((*view.Controller).SyncActivities))
	mux.HandleFunc("POST /api/sync/gears", api.mutation((*view.Controller).SyncGears))
	mux.HandleFunc("POST /api/rebuild", api.mutation((*view.Controller).Rebuild))
	mux.HandleFunc("POST /api/activities/{id}/refresh", api.handleRefresh)
	mux.HandleFunc("DELETE /api/activities/{id}", api.handleDelete)

	return api.logRequests(mux)
}

func (api *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (api *API) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.view.Status())
}

func (api *API) handleProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"profile": api.view.Profile()})
}

func (api *API) handleSelection(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.view.Selection())
}

// handleSelect merges the body into the current selection, so a client may
// send only the fields it changes.
func (api *API) handleSelect(w http.ResponseWriter, r *http.Request) {
	sel := api.view.Selection()
	if err := json.NewDecoder(r.Body).Decode(&sel); err != nil {
		writeError(w, http.StatusBadRequest, "invalid selection: "+err.Error())
		return
	}

	api.view.Select(sel)
	writeJSON(w, http.StatusOK, api.view.Selection())
}

func (api *API) handleSort(w http.ResponseWriter, r *http.Request) {
	api.view.SetSort(r.PathValue("column"))
	writeJSON(w, http.StatusOK, api.view.Selection())
}

func (api *API) handleActivities(w http.ResponseWriter, r *http.Request) {
	visible := api.view.Visible()
	writeJSON(w, http.StatusOK, activitiesResponse{
		Activities:  visible,
		Count:       len(visible),
		Totals:      api.view.Totals(),
		SpeedOrPace: api.view.SpeedOrPace(),
	})
}

func (api *API) handleGears(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.view.Gears())
}

func (api *API) handleTotals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.view.Totals())
}

func (api *API) handleSyncRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := api.runs.SyncRuns(r.Context(), limit)
	if err != nil {
		api.log.Error("Unable to list sync runs: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (api *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	id, ok := activityID(w, r)
	if !ok {
		return
	}
	api.respond(w, api.view.RefreshActivity(r.Context(), id))
}

func (api *API) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := activityID(w, r)
	if !ok {
		return
	}
	api.respond(w, api.view.DeleteActivity(r.Context(), id))
}

func (api *API) mutation(op func(*view.Controller, context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		api.respond(w, op(api.view, r.Context()))
	}
}

// respond writes the controller status. Upstream failures are reported as
// 502 with the error next to the status.
func (api *API) respond(w http.ResponseWriter, err error) {
	resp := statusResponse{Status: api.view.Status()}
	if err != nil {
		resp.Error = err.Error()
		writeJSON(w, http.StatusBadGateway, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func activityID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid activity id")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.code = code
	sr.ResponseWriter.WriteHeader(code)
}

func (api *API) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		api.log.Debug("%s %s %d (%s)", r.Method, r.URL.Path, rec.code, time.Since(start))
	})
}

func (msa *MyStravaAgent) startServer() {
	if msa.cfg.HTTP.Address == "" {
		msa.log.Info("HTTP API disabled")
		return
	}

	logger := msa.log.Named("http")
	msa.server = &http.Server{
		Addr:              msa.cfg.HTTP.Address,
		Handler:           NewAPI(msa.view, msa.service, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	msa.wait.Add(1)
	go func() {
		defer msa.wait.Done()
		logger.Info("Listening on http://%s", msa.cfg.HTTP.Address)
		if err := msa.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error: %v", err)
		}
	}()
}
