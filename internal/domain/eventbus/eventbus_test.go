package eventbus

import (
	"testing"
)

func TestSubscribePublishUnsubscribe(t *testing.T) {
	bus := New()

	var received []AuthEventData
	unsubscribe, err := bus.Subscribe(EventAuthChanged, func(data AuthEventData) {
		received = append(received, data)
	})
	if err != nil {
		t.Fatalf("Subscribe returned error: %v", err)
	}

	bus.Publish(EventAuthChanged, AuthEventData{Authenticated: true, UserID: "u1"})
	if len(received) != 1 {
		t.Fatalf("expected 1 event, got %d", len(received))
	}
	if !received[0].Authenticated || received[0].UserID != "u1" {
		t.Fatalf("unexpected event payload: %+v", received[0])
	}

	unsubscribe()
	bus.Publish(EventAuthChanged, AuthEventData{Authenticated: false})
	if len(received) != 1 {
		t.Fatalf("expected no delivery after unsubscribe, got %d events", len(received))
	}
}

func TestIndependentBuses(t *testing.T) {
	a := New()
	b := New()

	count := 0
	if _, err := a.Subscribe(EventAnalysisStarted, func(AnalysisEventData) { count++ }); err != nil {
		t.Fatalf("Subscribe returned error: %v", err)
	}

	b.Publish(EventAnalysisStarted, AnalysisEventData{RequestID: "r1"})
	if count != 0 {
		t.Fatalf("event crossed bus instances")
	}

	a.Publish(EventAnalysisStarted, AnalysisEventData{RequestID: "r2"})
	if count != 1 {
		t.Fatalf("expected 1 event on own bus, got %d", count)
	}
}
