package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/We-are-incomplete/war-record-only-read/internal/api/response"
	"github.com/We-are-incomplete/war-record-only-read/internal/metrics"
	"github.com/We-are-incomplete/war-record-only-read/internal/storage/models"
	"github.com/We-are-incomplete/war-record-only-read/internal/version"
)

// recentImports is how many import runs the status endpoint lists.
const recentImports = 5

// SystemHandler handles health and status requests.
type SystemHandler struct {
	svc     Analyzer
	store   StatusStore
	metrics MetricsSummary
	clients func() int
}

// NewSystemHandler creates a new SystemHandler. store, m and clients may
// be nil.
func NewSystemHandler(svc Analyzer, store StatusStore, m MetricsSummary, clients func() int) *SystemHandler {
	return &SystemHandler{svc: svc, store: store, metrics: m, clients: clients}
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
	Records  int    `json:"records"`
}

// Health reports liveness. A failing database ping degrades the status
// but the snapshot keeps serving, so the code stays 200.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Records: h.svc.Snapshot().Len()}
	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.Database = err.Error()
		}
	}
	response.JSON(w, http.StatusOK, resp)
}

// StatusResponse describes the snapshot in service.
type StatusResponse struct {
	AppVersion    string             `json:"app_version"`
	Version       uint64             `json:"version"`
	Records       int                `json:"records"`
	Source        string             `json:"source"`
	LoadedAt      *time.Time         `json:"loaded_at"`
	Clients       int                `json:"clients"`
	Metrics       metrics.Summary    `json:"metrics"`
	RecentImports []models.ImportRun `json:"recent_imports"`
}

// GetStatus returns the snapshot version, reload counters and the latest
// imports.
func (h *SystemHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	snap := h.svc.Snapshot()
	resp := StatusResponse{
		AppVersion:    version.GetVersion(),
		Version:       snap.Version,
		Records:       snap.Len(),
		Source:        snap.Source,
		RecentImports: []models.ImportRun{},
	}
	if !snap.LoadedAt.IsZero() {
		loaded := snap.LoadedAt
		resp.LoadedAt = &loaded
	}
	if h.clients != nil {
		resp.Clients = h.clients()
	}
	if h.metrics != nil {
		resp.Metrics = h.metrics.Summary()
	}
	if h.store != nil {
		runs, err := h.store.RecentImports(r.Context(), recentImports)
		if err != nil {
			response.InternalError(w, err)
			return
		}
		if runs != nil {
			resp.RecentImports = runs
		}
	}
	response.Success(w, resp)
}
