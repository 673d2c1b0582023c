package eventbus

import (
	evbus "github.com/asaskevich/EventBus"
)

// Topics published on the bus.
const (
	EventAuthChanged      = "auth:changed"
	EventAnalysisStarted  = "analysis:started"
	EventAnalysisFinished = "analysis:finished"
	EventAnalysisFailed   = "analysis:failed"
)

// AuthEventData describes an authentication state transition.
type AuthEventData struct {
	Authenticated bool   `json:"authenticated"`
	UserID        string `json:"user_id,omitempty"`
	Email         string `json:"email,omitempty"`
}

// AnalysisEventData describes the lifecycle of one analysis run.
type AnalysisEventData struct {
	RequestID string `json:"request_id"`
	UserID    string `json:"user_id,omitempty"`
	Kind      string `json:"kind"`
	Error     string `json:"error,omitempty"`
}

// Bus is an explicitly constructed event bus. Consumers receive an
// instance instead of mutating ambient global state, and every
// subscription hands back its own unsubscribe function.
type Bus struct {
	inner evbus.Bus
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{inner: evbus.New()}
}

// Publish delivers an event synchronously to all subscribers.
func (b *Bus) Publish(topic string, args ...interface{}) {
	b.inner.Publish(topic, args...)
}

// Subscribe registers fn for topic and returns an unsubscribe function.
func (b *Bus) Subscribe(topic string, fn interface{}) (func(), error) {
	if err := b.inner.Subscribe(topic, fn); err != nil {
		return nil, err
	}
	return func() {
		_ = b.inner.Unsubscribe(topic, fn)
	}, nil
}

// SubscribeAsync registers fn to run on its own goroutine per event.
func (b *Bus) SubscribeAsync(topic string, fn interface{}) (func(), error) {
	if err := b.inner.SubscribeAsync(topic, fn, false); err != nil {
		return nil, err
	}
	return func() {
		_ = b.inner.Unsubscribe(topic, fn)
	}, nil
}

// WaitAsync blocks until all async handlers have completed.
func (b *Bus) WaitAsync() {
	b.inner.WaitAsync()
}
