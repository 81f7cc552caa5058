package events

import (
	"encoding/json"
	"testing"
)

func TestBus(t *testing.T) {
	bus := NewBus()

	var received *Event
	var callCount int

	bus.Subscribe(EventBookingConfirmed, func(event *Event) error {
		received = event
		callCount++
		return nil
	})

	payload := BookingActionPayload{BookingID: 7, DisplayID: "BK007", Status: "CONFIRMED"}
	if err := bus.PublishJSON(EventBookingConfirmed, payload); err != nil {
		t.Fatalf("PublishJSON failed: %v", err)
	}

	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}

	var decoded BookingActionPayload
	if err := json.Unmarshal(received.Payload, &decoded); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}

	if decoded.BookingID != 7 || decoded.DisplayID != "BK007" {
		t.Errorf("unexpected payload: %+v", decoded)
	}
}

func TestBusMultipleSubscribers(t *testing.T) {
	bus := NewBus()
	var count1, count2 int

	bus.Subscribe("event", func(_ *Event) error { count1++; return nil })
	bus.Subscribe("event", func(_ *Event) error { count2++; return nil })

	bus.Publish(&Event{Type: "event"})

	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both handlers to be called once, got %d and %d", count1, count2)
	}
}

func TestBusNilSafety(t *testing.T) {
	var bus *Bus
	if err := bus.PublishJSON("event", map[string]string{"a": "b"}); err != nil {
		t.Errorf("nil bus publish should be a no-op, got %v", err)
	}
}
