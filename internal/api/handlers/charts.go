package handlers

import (
	"bytes"
	"net/http"

	"github.com/We-are-incomplete/war-record-only-read/internal/api/response"
	"github.com/We-are-incomplete/war-record-only-read/internal/charts"
)

// ChartHandler serves HTML charts.
type ChartHandler struct {
	svc    Analyzer
	config charts.ChartConfig
}

// NewChartHandler creates a new ChartHandler.
func NewChartHandler(svc Analyzer) *ChartHandler {
	return &ChartHandler{svc: svc, config: charts.DefaultChartConfig()}
}

// Overview renders the archetype overview chart.
func (h *ChartHandler) Overview(w http.ResponseWriter, r *http.Request) {
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

	var buf bytes.Buffer
	if err := charts.RenderOverview(&buf, rows, h.config); err != nil {
		response.InternalError(w, err)
		return
	}
	response.HTML(w)
	_, _ = buf.WriteTo(w)
}

// Focus renders the matchup chart of an archetype key.
func (h *ChartHandler) Focus(w http.ResponseWriter, r *http.Request) {
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

	var buf bytes.Buffer
	if err := charts.RenderFocus(&buf, report, h.config); err != nil {
		response.InternalError(w, err)
		return
	}
	response.HTML(w)
	_, _ = buf.WriteTo(w)
}
