package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventBookingConfirmed = "booking_confirmed"
	EventBookingCancelled = "booking_cancelled"
	EventReviewSubmitted  = "review_submitted"
)

// BookingActionPayload is the snapshot published after a successful owner
// action. RefundAmount is zero unless the backend reported a refund.
type BookingActionPayload struct {
	BookingID    int64  `json:"booking_id"`
	DisplayID    string `json:"display_id"`
	OwnerID      int64  `json:"owner_id"`
	GuestName    string `json:"guest_name"`
	Property     string `json:"property"`
	Status       string `json:"status"`
	RefundAmount int64  `json:"refund_amount,omitempty"`
}

// ReviewPayload is published after a customer review reaches the backend.
type ReviewPayload struct {
	BookingID  int64 `json:"booking_id"`
	PropertyID int64 `json:"property_id"`
	Rating     int   `json:"rating"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// Handler reacts to an event.
type Handler func(event *Event) error

// Bus provides in-process pub/sub for events.
type Bus struct {
	subscribers map[string][]Handler
	mu          sync.RWMutex
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[string][]Handler)}
}

// Subscribe registers a handler for a given event type.
func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *Bus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event. Safe on a nil
// bus so publishing stays optional for callers.
func (b *Bus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
