package websocket

import (
	"github.com/We-are-incomplete/war-record-only-read/internal/events"
)

// Observer forwards reload notifications to WebSocket clients.
type Observer struct {
	name string
	hub  *Hub
}

// NewObserver creates an observer broadcasting through hub.
func NewObserver(hub *Hub) *Observer {
	return &Observer{
		name: "WebSocketObserver",
		hub:  hub,
	}
}

// OnEvent broadcasts the event payload to every client.
func (o *Observer) OnEvent(event events.Event) error {
	if o.hub == nil {
		return nil
	}

	o.hub.BroadcastEvent(Event{
		Type: event.Type,
		Data: event.Data,
	})
	return nil
}

// Name returns the observer's name.
func (o *Observer) Name() string {
	return o.name
}

// ShouldHandle selects the events clients care about.
func (o *Observer) ShouldHandle(eventType string) bool {
	switch eventType {
	case events.RecordsReloaded, events.ReloadFailed, events.DataImported:
		return true
	}
	return false
}

var _ events.Observer = (*Observer)(nil)
