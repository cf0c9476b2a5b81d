package notify

import (
	"encoding/json"
	"fmt"

	"innkeep/internal/config"
	"innkeep/internal/events"
	"innkeep/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// messageSender abstracts the Telegram API client so notifications can
// be tested without network access.
type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// StaffNotifier pushes booking lifecycle events to the staff chat.
type StaffNotifier struct {
	sender messageSender
	chatID int64
	logger zerolog.Logger
}

func NewStaffNotifier(cfg config.TelegramConfig, logger *zerolog.Logger) (*StaffNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	log := zerolog.Nop()
	if logger != nil {
		log = logger.With().Str("component", "staff-notifier").Logger()
	}
	log.Info().Str("bot", bot.Self.UserName).Msg("telegram notifier authorized")

	return &StaffNotifier{sender: bot, chatID: cfg.StaffChatID, logger: log}, nil
}

// SubscribeTo wires the notifier to the event bus.
func (n *StaffNotifier) SubscribeTo(bus *events.EventBus) {
	bus.Subscribe(events.EventReservationCreated, n.onReservationCreated)
	bus.Subscribe(events.EventReservationCheckedOut, n.onReservationCheckedOut)
}

func (n *StaffNotifier) onReservationCreated(event *events.Event) error {
	var payload events.ReservationEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		n.logger.Error().Err(err).Msg("failed to decode reservation event")
		return err
	}

	text := fmt.Sprintf(
		"🔔 New %s booking #%d\nRoom: %s\nGuest: %s\nStay: %s — %s (%d nights)\nTotal: ₱%d",
		payload.Channel,
		payload.ReservationID,
		payload.RoomName,
		payload.GuestName,
		payload.CheckIn.Format(models.DateLayout),
		payload.CheckOut.Format(models.DateLayout),
		payload.Nights,
		payload.TotalCost,
	)
	return n.send(text)
}

func (n *StaffNotifier) onReservationCheckedOut(event *events.Event) error {
	var payload events.CheckoutEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		n.logger.Error().Err(err).Msg("failed to decode checkout event")
		return err
	}

	text := fmt.Sprintf(
		"✅ Checkout #%d\nRoom: %s\nGuest: %s\nDays stayed: %d\nPaid: ₱%d (%s)",
		payload.ReservationID,
		payload.RoomName,
		payload.GuestName,
		payload.DaysStayed,
		payload.TotalAmount,
		payload.PaymentMethod,
	)
	return n.send(text)
}

func (n *StaffNotifier) send(text string) error {
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.sender.Send(msg); err != nil {
		n.logger.Error().Err(err).Msg("failed to send staff notification")
		return err
	}
	return nil
}
