package notify

import (
	"testing"
	"time"

	"innkeep/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func newTestNotifier(sender *fakeSender) *StaffNotifier {
	return &StaffNotifier{sender: sender, chatID: 42, logger: zerolog.Nop()}
}

func TestNotifierOnReservationCreated(t *testing.T) {
	sender := &fakeSender{}
	notifier := newTestNotifier(sender)

	bus := events.NewEventBus()
	notifier.SubscribeTo(bus)

	payload := events.ReservationEventPayload{
		ReservationID: 7,
		RoomName:      "Twin Room",
		GuestName:     "Ana Reyes",
		CheckIn:       time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:      time.Date(2026, 6, 13, 0, 0, 0, 0, time.UTC),
		Nights:        3,
		TotalCost:     4500,
		Channel:       "online",
	}
	require.NoError(t, bus.PublishJSON(events.EventReservationCreated, payload))

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Contains(t, msg.Text, "booking #7")
	assert.Contains(t, msg.Text, "Twin Room")
	assert.Contains(t, msg.Text, "Ana Reyes")
	assert.Contains(t, msg.Text, "2026-06-10")
	assert.Contains(t, msg.Text, "3 nights")
}

func TestNotifierOnReservationCheckedOut(t *testing.T) {
	sender := &fakeSender{}
	notifier := newTestNotifier(sender)

	bus := events.NewEventBus()
	notifier.SubscribeTo(bus)

	payload := events.CheckoutEventPayload{
		ReservationID: 7,
		RoomName:      "Twin Room",
		GuestName:     "Ana Reyes",
		PaymentMethod: "gcash",
		DaysStayed:    3,
		TotalAmount:   4500,
	}
	require.NoError(t, bus.PublishJSON(events.EventReservationCheckedOut, payload))

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Contains(t, msg.Text, "Checkout #7")
	assert.Contains(t, msg.Text, "gcash")
	assert.Contains(t, msg.Text, "₱4500")
}

func TestNotifierIgnoresMalformedPayload(t *testing.T) {
	sender := &fakeSender{}
	notifier := newTestNotifier(sender)

	err := notifier.onReservationCreated(&events.Event{
		Type:    events.EventReservationCreated,
		Payload: []byte("not json"),
	})
	assert.Error(t, err)
	assert.Empty(t, sender.sent)
}
