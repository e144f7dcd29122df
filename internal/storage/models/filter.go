package models

// RecordFilter narrows a record set before aggregation.
// Zero value selects everything.
type RecordFilter struct {
	// Season keeps records whose season equals this value. Empty means unset.
	Season string `json:"season,omitempty"`

	// Environments keeps records whose environment is in this set. Empty means unset.
	Environments []string `json:"environments,omitempty"`
}

// IsZero reports whether the filter selects every record.
func (f RecordFilter) IsZero() bool {
	return f.Season == "" && len(f.Environments) == 0
}

// Match reports whether a single record passes the filter.
func (f RecordFilter) Match(r *MatchRecord) bool {
	if f.Season != "" && r.Season != f.Season {
		return false
	}
	if len(f.Environments) == 0 {
		return true
	}
	for _, env := range f.Environments {
		if r.Environment == env {
			return true
		}
	}
	return false
}

// Apply returns the records that pass the filter, in their original order.
// The input slice is never modified.
func (f RecordFilter) Apply(records []MatchRecord) []MatchRecord {
	out := make([]MatchRecord, 0, len(records))
	for i := range records {
		if f.Match(&records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}
