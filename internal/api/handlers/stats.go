package handlers

import (
	"net/http"

	"github.com/We-are-incomplete/war-record-only-read/internal/api/response"
	"github.com/We-are-incomplete/war-record-only-read/internal/stats"
	"github.com/We-are-incomplete/war-record-only-read/internal/storage/models"
)

// StatsHandler handles statistics queries.
type StatsHandler struct {
	svc Analyzer
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(svc Analyzer) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// GetOptions returns the seasons, environments and archetypes present in
// the snapshot.
func (h *StatsHandler) GetOptions(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, h.svc.Options())
}

// GetArchetypes returns the archetypes among the filtered records.
func (h *StatsHandler) GetArchetypes(w http.ResponseWriter, r *http.Request) {
	var req FilterRequest
	if err := decodeRequest(w, r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}
	response.Success(w, h.svc.Archetypes(req.ToFilter()))
}

// GetTypes returns the type choices of one archetype, ALL first.
func (h *StatsHandler) GetTypes(w http.ResponseWriter, r *http.Request) {
	var req TypesRequest
	if err := decodeRequest(w, r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}
	response.Success(w, h.svc.Types(req.ToFilter(), req.Archetype))
}

// GetOverview returns one summary row per archetype.
func (h *StatsHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	var req FilterRequest
	if err := decodeRequest(w, r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	rows, err := h.svc.Overview(req.ToFilter())
	if err != nil {
		engineError(w, err)
		return
	}
	if rows == nil {
		rows = []stats.ArchetypeSummary{}
	}
	response.Success(w, rows)
}

// GetFocus returns the focus report for an archetype key. An archetype
// with no records yields an empty report.
func (h *StatsHandler) GetFocus(w http.ResponseWriter, r *http.Request) {
	var req FocusRequest
	if err := decodeRequest(w, r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	report, err := h.svc.Focus(req.ToFilter(), req.Key())
	if err != nil {
		engineError(w, err)
		return
	}
	response.Success(w, report)
}

// GetRecords returns the filtered records, newest first.
func (h *StatsHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	var req FilterRequest
	if err := decodeRequest(w, r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	records := h.svc.Records(req.ToFilter())
	if records == nil {
		records = []models.MatchRecord{}
	}
	response.Success(w, records)
}
