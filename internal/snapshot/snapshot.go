// Package snapshot serves an immutable view of the records and keeps it in
// step with the source file.
package snapshot

import (
	"sync/atomic"
	"time"

	"github.com/We-are-incomplete/war-record-only-read/internal/storage/models"
)

// Snapshot is one loaded generation of records. It is never mutated after
// it is published; readers may hold it for as long as they like.
type Snapshot struct {
	Version  uint64
	Records  []models.MatchRecord
	Source   string
	LoadedAt time.Time
}

// Len returns the number of records.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Records)
}

// Holder publishes snapshots. Swaps are atomic: a request sees either the
// old generation or the new one in full.
type Holder struct {
	current atomic.Pointer[Snapshot]
	version atomic.Uint64
	now     func() time.Time
}

// NewHolder creates a holder serving an empty snapshot at version 0.
func NewHolder() *Holder {
	h := &Holder{now: time.Now}
	h.current.Store(&Snapshot{Records: []models.MatchRecord{}, LoadedAt: h.now().UTC()})
	return h
}

// Current returns the snapshot in service.
func (h *Holder) Current() *Snapshot {
	return h.current.Load()
}

// Publish copies records into a new snapshot and puts it in service.
func (h *Holder) Publish(records []models.MatchRecord, source string) *Snapshot {
	owned := make([]models.MatchRecord, len(records))
	copy(owned, records)

	s := &Snapshot{
		Version:  h.version.Add(1),
		Records:  owned,
		Source:   source,
		LoadedAt: h.now().UTC(),
	}
	h.current.Store(s)
	return s
}
