package stats

import (
	"github.com/We-are-incomplete/war-record-only-read/internal/storage/models"
)

// Request is one engine query. A nil Focus asks for the overview.
type Request struct {
	Filter models.RecordFilter
	Focus  *models.ArchetypeKey
}

// Result holds exactly one of Overview or Focus.
type Result struct {
	Overview []ArchetypeSummary `json:"overview,omitempty"`
	Focus    *FocusReport       `json:"focus,omitempty"`
}

// Evaluate filters records and computes the overview or the focus report.
func Evaluate(records []models.MatchRecord, req Request) (*Result, error) {
	selected := req.Filter.Apply(records)

	if req.Focus != nil {
		report, err := BuildFocusReport(selected, *req.Focus)
		if err != nil {
			return nil, err
		}
		return &Result{Focus: report}, nil
	}

	rows, err := BuildOverview(selected)
	if err != nil {
		return nil, err
	}
	return &Result{Overview: rows}, nil
}
