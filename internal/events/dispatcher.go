// Package events distributes domain notifications to registered observers.
package events

import (
	"context"
	"sync"

	"github.com/We-are-incomplete/war-record-only-read/internal/logging"
)

// Event is a domain notification dispatched to observers.
type Event struct {
	// Type is the event type, e.g. "records:reloaded".
	Type string

	// Data is the typed payload, one of the structs in messages.go.
	Data any

	Context context.Context
}

// NewEvent creates an event carrying data.
func NewEvent[T any](ctx context.Context, eventType string, data T) Event {
	return Event{Type: eventType, Data: data, Context: ctx}
}

// DataAs extracts the payload of an event.
// Returns the zero value and false if the payload is not a T.
func DataAs[T any](event Event) (T, bool) {
	typed, ok := event.Data.(T)
	return typed, ok
}

// Observer is notified of dispatched events.
type Observer interface {
	// OnEvent handles an event. A returned error is logged and does not
	// stop delivery to other observers.
	OnEvent(event Event) error

	// Name identifies the observer in logs.
	Name() string

	// ShouldHandle filters the event types the observer receives.
	ShouldHandle(eventType string) bool
}

// Dispatcher fans events out to observers. Safe for concurrent use.
type Dispatcher struct {
	observers []Observer
	logger    *logging.Logger
	mu        sync.RWMutex
}

// NewDispatcher creates a dispatcher logging through logger.
func NewDispatcher(logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{
		observers: make([]Observer, 0),
		logger:    logger.Named("events"),
	}
}

// Register adds an observer for all future events.
func (d *Dispatcher) Register(observer Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.observers = append(d.observers, observer)
	d.logger.Debug("registered observer", "observer", observer.Name())
}

// Unregister removes an observer.
func (d *Dispatcher) Unregister(observer Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, obs := range d.observers {
		if obs == observer {
			d.observers = append(d.observers[:i], d.observers[i+1:]...)
			d.logger.Debug("unregistered observer", "observer", observer.Name())
			return
		}
	}
}

// Dispatch notifies observers sequentially in registration order.
func (d *Dispatcher) Dispatch(event Event) {
	for _, observer := range d.snapshot() {
		if !observer.ShouldHandle(event.Type) {
			continue
		}
		d.notify(observer, event)
	}
}

// DispatchAsync notifies each interested observer on its own goroutine.
func (d *Dispatcher) DispatchAsync(event Event) {
	for _, observer := range d.snapshot() {
		if !observer.ShouldHandle(event.Type) {
			continue
		}
		go d.notify(observer, event)
	}
}

// ObserverCount returns the number of registered observers.
func (d *Dispatcher) ObserverCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.observers)
}

func (d *Dispatcher) snapshot() []Observer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	observers := make([]Observer, len(d.observers))
	copy(observers, d.observers)
	return observers
}

func (d *Dispatcher) notify(observer Observer, event Event) {
	if err := observer.OnEvent(event); err != nil {
		d.logger.Warn("observer failed to handle event",
			"observer", observer.Name(), "event", event.Type, "error", err)
	}
}
