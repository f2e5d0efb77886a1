package notify

import (
	"context"
	"fmt"
	"html"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const displayDateLayout = "02.01.2006"

// TelegramNotifier sends operator notifications to the admin chat.
type TelegramNotifier struct {
	api         *tgbotapi.BotAPI
	adminChatID int64
}

// NewTelegramNotifier creates a notifier posting to the given admin chat.
func NewTelegramNotifier(api *tgbotapi.BotAPI, adminChatID int64) *TelegramNotifier {
	return &TelegramNotifier{api: api, adminChatID: adminChatID}
}

// Notify formats the event as an HTML admin message and sends it.
func (n *TelegramNotifier) Notify(_ context.Context, event Event) error {
	var text string
	username := event.Username
	if username == "" {
		username = "не указан"
	}

	switch event.Action {
	case ActionCreated:
		text = fmt.Sprintf(
			"🚨 <b>НОВАЯ ЗАЯВКА НА БРОНИРОВАНИЕ</b>\n\n"+
				"👤 Пользователь: @%s (ID: %d)\n"+
				"🏨 Гостиница: %s\n"+
				"🛏️ Категория: %s\n"+
				"📅 Даты: %s — %s\n\n"+
				"❗ Свяжитесь с клиентом для подтверждения.",
			html.EscapeString(username), event.UserID,
			html.EscapeString(event.HotelName), html.EscapeString(event.RoomCategoryName),
			event.CheckIn.Format(displayDateLayout), event.CheckOut.Format(displayDateLayout))
	case ActionCancelled:
		text = fmt.Sprintf(
			"🗑️ <b>БРОНИРОВАНИЕ ОТМЕНЕНО</b>\n\n"+
				"👤 Пользователь: @%s (ID: %d)\n"+
				"🏨 Гостиница: %s\n"+
				"🛏️ Категория: %s\n"+
				"📅 Даты: %s — %s",
			html.EscapeString(username), event.UserID,
			html.EscapeString(event.HotelName), html.EscapeString(event.RoomCategoryName),
			event.CheckIn.Format(displayDateLayout), event.CheckOut.Format(displayDateLayout))
	default:
		return fmt.Errorf("unknown notification action: %s", event.Action)
	}

	msg := tgbotapi.NewMessage(n.adminChatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send admin notification: %w", err)
	}
	return nil
}

// ConsoleNotifier logs events instead of delivering them. Used when no admin
// chat is configured.
type ConsoleNotifier struct{}

// NewConsoleNotifier creates a console notifier.
func NewConsoleNotifier() *ConsoleNotifier {
	return &ConsoleNotifier{}
}

// Notify logs the event.
func (n *ConsoleNotifier) Notify(_ context.Context, event Event) error {
	zap.L().Info("Operator notification",
		zap.String("action", string(event.Action)),
		zap.Int64("user_id", event.UserID),
		zap.String("hotel", event.HotelName),
		zap.String("room_category", event.RoomCategoryName),
		zap.String("check_in", event.CheckIn.Format(displayDateLayout)),
		zap.String("check_out", event.CheckOut.Format(displayDateLayout)))
	return nil
}
