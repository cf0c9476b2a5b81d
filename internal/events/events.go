package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventReservationCreated    = "reservation_created"
	EventReservationCheckedOut = "reservation_checked_out"
)

// ReservationEventPayload is the minimal reservation snapshot handed
// to event consumers.
type ReservationEventPayload struct {
	ReservationID int64     `json:"reservation_id"`
	RoomName      string    `json:"room_name"`
	GuestName     string    `json:"guest_name"`
	CheckIn       time.Time `json:"check_in"`
	CheckOut      time.Time `json:"check_out"`
	Nights        int       `json:"nights"`
	TotalCost     int64     `json:"total_cost"`
	Channel       string    `json:"channel"`
	Status        string    `json:"status,omitempty"`
}

// CheckoutEventPayload extends the reservation snapshot with billing
// fields for checkout consumers.
type CheckoutEventPayload struct {
	ReservationID int64  `json:"reservation_id"`
	RoomName      string `json:"room_name"`
	GuestName     string `json:"guest_name"`
	PaymentMethod string `json:"payment_method"`
	DaysStayed    int    `json:"days_stayed"`
	TotalAmount   int64  `json:"total_amount"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
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
