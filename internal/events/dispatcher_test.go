package events

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/We-are-incomplete/war-record-only-read/internal/logging"
)

func TestDispatcher_DispatchFiltersByType(t *testing.T) {
	d := NewDispatcher(logging.NewNop())

	var got []string
	reloads := NewFuncObserver("reloads", func(e Event) error {
		got = append(got, "reloads:"+e.Type)
		return nil
	}, RecordsReloaded)
	all := NewFuncObserver("all", func(e Event) error {
		got = append(got, "all:"+e.Type)
		return nil
	})

	d.Register(reloads)
	d.Register(all)
	assert.Equal(t, 2, d.ObserverCount())

	d.Dispatch(NewEvent(context.Background(), RecordsReloaded, RecordsReloadedEvent{Records: 3}))
	d.Dispatch(NewEvent(context.Background(), ReloadFailed, ReloadFailedEvent{Error: "boom"}))

	assert.Equal(t, []string{
		"reloads:records:reloaded",
		"all:records:reloaded",
		"all:records:reload_failed",
	}, got)

	d.Unregister(reloads)
	assert.Equal(t, 1, d.ObserverCount())
}

func TestDispatcher_ObserverErrorDoesNotStopDelivery(t *testing.T) {
	var buf bytes.Buffer
	d := NewDispatcher(logging.NewWriter(&buf, logging.LevelDebug))

	delivered := false
	d.Register(NewFuncObserver("failing", func(Event) error { return errors.New("nope") }))
	d.Register(NewFuncObserver("ok", func(Event) error {
		delivered = true
		return nil
	}))

	d.Dispatch(NewEvent(context.Background(), RecordsReloaded, RecordsReloadedEvent{}))

	assert.True(t, delivered)
	assert.True(t, strings.Contains(buf.String(), "observer failed to handle event"))
}

func TestDispatcher_DispatchAsync(t *testing.T) {
	d := NewDispatcher(logging.NewNop())

	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		d.Register(NewFuncObserver("async", func(Event) error {
			wg.Done()
			return nil
		}))
	}

	d.DispatchAsync(NewEvent(context.Background(), RecordsReloaded, RecordsReloadedEvent{}))

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("async observers were not notified")
	}
}

func TestDataAs(t *testing.T) {
	event := NewEvent(context.Background(), RecordsReloaded, RecordsReloadedEvent{Version: 7, Records: 12})

	data, ok := DataAs[RecordsReloadedEvent](event)
	require.True(t, ok)
	assert.Equal(t, uint64(7), data.Version)

	_, ok = DataAs[ReloadFailedEvent](event)
	assert.False(t, ok)

	_, ok = DataAs[RecordsReloadedEvent](Event{Type: RecordsReloaded})
	assert.False(t, ok)
}
