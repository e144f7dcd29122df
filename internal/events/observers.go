package events

import "github.com/We-are-incomplete/war-record-only-read/internal/logging"

// LoggingObserver logs every event.
type LoggingObserver struct {
	logger *logging.Logger
}

// NewLoggingObserver creates an observer that logs events through logger.
func NewLoggingObserver(logger *logging.Logger) *LoggingObserver {
	return &LoggingObserver{logger: logger}
}

// OnEvent logs the event type and payload.
func (o *LoggingObserver) OnEvent(event Event) error {
	o.logger.Info("event", "type", event.Type, "data", event.Data)
	return nil
}

func (o *LoggingObserver) Name() string {
	return "LoggingObserver"
}

func (o *LoggingObserver) ShouldHandle(string) bool {
	return true
}

// FuncObserver adapts a function to the Observer interface for the given
// event types. No types means every event.
type FuncObserver struct {
	name  string
	types map[string]struct{}
	fn    func(Event) error
}

// NewFuncObserver creates a FuncObserver.
func NewFuncObserver(name string, fn func(Event) error, eventTypes ...string) *FuncObserver {
	types := make(map[string]struct{}, len(eventTypes))
	for _, t := range eventTypes {
		types[t] = struct{}{}
	}
	return &FuncObserver{name: name, types: types, fn: fn}
}

func (o *FuncObserver) OnEvent(event Event) error {
	return o.fn(event)
}

func (o *FuncObserver) Name() string {
	return o.name
}

func (o *FuncObserver) ShouldHandle(eventType string) bool {
	if len(o.types) == 0 {
		return true
	}
	_, ok := o.types[eventType]
	return ok
}
