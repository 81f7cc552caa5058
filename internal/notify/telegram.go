package notify

import (
	"encoding/json"
	"fmt"

	"stayfront/internal/config"
	"stayfront/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Sender is the slice of the Telegram bot API the notifier uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier pushes booking and review events to the owner's chat.
// Owners without a configured chat are skipped silently.
type TelegramNotifier struct {
	bot        Sender
	ownerChats map[int64]int64
	logger     zerolog.Logger
}

func NewTelegramNotifier(cfg config.TelegramConfig, logger zerolog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, ownerChats: cfg.OwnerChats, logger: logger}, nil
}

// NewTelegramNotifierWithSender позволяет подставить отправителя в тестах.
func NewTelegramNotifierWithSender(sender Sender, ownerChats map[int64]int64, logger zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{bot: sender, ownerChats: ownerChats, logger: logger}
}

// Attach subscribes the notifier to the booking action events.
func (n *TelegramNotifier) Attach(bus *events.Bus) {
	bus.Subscribe(events.EventBookingConfirmed, n.handleBookingAction)
	bus.Subscribe(events.EventBookingCancelled, n.handleBookingAction)
}

func (n *TelegramNotifier) handleBookingAction(event *events.Event) error {
	var payload events.BookingActionPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		n.logger.Error().Err(err).Str("event", event.Type).Msg("failed to decode event payload")
		return err
	}

	chatID, ok := n.ownerChats[payload.OwnerID]
	if !ok {
		return nil
	}

	text := n.formatBookingAction(event.Type, payload)
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send telegram notification")
		return err
	}
	return nil
}

func (n *TelegramNotifier) formatBookingAction(eventType string, p events.BookingActionPayload) string {
	switch eventType {
	case events.EventBookingConfirmed:
		return fmt.Sprintf("✅ Booking %s confirmed\nGuest: %s\nProperty: %s", p.DisplayID, p.GuestName, p.Property)
	case events.EventBookingCancelled:
		text := fmt.Sprintf("❌ Booking %s cancelled\nGuest: %s\nProperty: %s", p.DisplayID, p.GuestName, p.Property)
		if p.RefundAmount > 0 {
			text += fmt.Sprintf("\nRefund issued: $%d", p.RefundAmount)
		}
		return text
	default:
		return fmt.Sprintf("Booking %s updated", p.DisplayID)
	}
}
