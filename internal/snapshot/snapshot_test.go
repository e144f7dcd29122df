package snapshot

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/We-are-incomplete/war-record-only-read/internal/storage/models"
)

func TestHolder_Publish(t *testing.T) {
	h := NewHolder()

	empty := h.Current()
	require.NotNil(t, empty)
	assert.Equal(t, uint64(0), empty.Version)
	assert.Equal(t, 0, empty.Len())

	records := []models.MatchRecord{{MyDeck: "Alpha"}, {MyDeck: "Beta"}}
	s := h.Publish(records, "records.csv")
	assert.Equal(t, uint64(1), s.Version)
	assert.Equal(t, 2, s.Len())
	assert.Same(t, s, h.Current())

	// The snapshot owns its slice.
	records[0].MyDeck = "changed"
	assert.Equal(t, "Alpha", h.Current().Records[0].MyDeck)

	// Old readers keep their generation.
	h.Publish(nil, "records.csv")
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, uint64(2), h.Current().Version)
}

func TestHolder_ConcurrentReaders(t *testing.T) {
	h := NewHolder()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				h.Publish([]models.MatchRecord{{MyDeck: "A"}}, "x")
				return
			}
			s := h.Current()
			assert.LessOrEqual(t, s.Len(), 1)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, uint64(4), h.Current().Version)
}
