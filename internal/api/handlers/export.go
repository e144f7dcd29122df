package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/We-are-incomplete/war-record-only-read/internal/api/response"
	"github.com/We-are-incomplete/war-record-only-read/internal/export"
)

// ExportHandler serves table downloads.
type ExportHandler struct {
	svc Analyzer
	now func() time.Time
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(svc Analyzer) *ExportHandler {
	return &ExportHandler{svc: svc, now: time.Now}
}

// Export writes the table named by the {table} path parameter as a CSV or
// JSON attachment.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	table, err := export.ParseTable(chi.URLParam(r, "table"))
	if err != nil {
		response.NotFound(w, err)
		return
	}

	var req ExportRequest
	if err := decodeRequest(w, r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}
	if table.NeedsFocus() && req.Archetype == "" {
		response.BadRequest(w, errors.New("archetype is required for the "+string(table)+" table"))
		return
	}
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	rows, err := h.rows(table, &req)
	if err != nil {
		engineError(w, err)
		return
	}

	// Encode fully before committing headers so a failure is still a
	// JSON error.
	var buf bytes.Buffer
	if err := export.ExportToWriter(&buf, format, rows, false); err != nil {
		response.InternalError(w, err)
		return
	}
	response.Attachment(w, format.ContentType(), export.GenerateFilename(string(table), format, h.now()))
	_, _ = buf.WriteTo(w)
}

func (h *ExportHandler) rows(table export.Table, req *ExportRequest) (any, error) {
	filter := req.ToFilter()
	switch table {
	case export.TableRecords:
		return export.RecordRows(h.svc.Records(filter)), nil
	case export.TableOverview:
		summaries, err := h.svc.Overview(filter)
		if err != nil {
			return nil, err
		}
		return export.OverviewRows(summaries), nil
	}

	focus := FocusRequest{Archetype: req.Archetype, Type: req.Type}
	report, err := h.svc.Focus(filter, focus.Key())
	if err != nil {
		return nil, err
	}
	if table == export.TableMatchups {
		return export.MatchupRows(report), nil
	}
	return export.MemoRows(report), nil
}
