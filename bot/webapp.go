package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ryab476/hotel-booking/booking"
)

// handleWebAppData ingests a one-shot structured submission from the
// embedded mini-app form.
func (b *Bot) handleWebAppData(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	chatID := message.Chat.ID

	b.logger.Debug("Received mini-app data",
		zap.Int64("user_id", userID),
		zap.String("raw", message.WebAppData.Data))

	var raw map[string]any
	if err := json.Unmarshal([]byte(message.WebAppData.Data), &raw); err != nil {
		b.send(chatID, reply{text: "❌ Ошибка разбора данных из формы."})
		return
	}

	confirmation, err := b.svc.Ingest(ctx, userID, username(message.From), raw)

	var incomplete *booking.IncompleteError
	switch {
	case errors.As(err, &incomplete):
		b.send(chatID, reply{text: fmt.Sprintf(
			"❌ Не все данные заполнены. Отсутствуют: %s\nПожалуйста, проверьте форму.",
			strings.Join(incomplete.Missing, ", "))})
	case errors.Is(err, booking.ErrInvalidPayload):
		b.send(chatID, reply{text: "❌ Ошибка в данных формы. Пожалуйста, заполните её заново."})
	case errors.Is(err, booking.ErrInvalidRange):
		b.send(chatID, reply{text: "❌ Дата заезда должна быть раньше даты выезда."})
	case errors.Is(err, booking.ErrConflict):
		b.send(chatID, reply{text: "❌ У вас уже есть бронирование на эти даты!\n" +
			"Невозможно создать новое бронирование с пересекающимися датами."})
	case errors.Is(err, booking.ErrNotFound):
		b.send(chatID, reply{text: "❌ Гостиница или категория номера не найдена."})
	case err != nil:
		b.logger.Error("Failed to process mini-app submission", zap.Int64("user_id", userID), zap.Error(err))
		b.send(chatID, reply{text: "❌ Произошла ошибка при сохранении заявки."})
	default:
		b.send(chatID, reply{
			text: fmt.Sprintf(
				"✅ *Бронирование успешно создано!*\n\n"+
					"🏨 %s\n"+
					"🛏️ %s\n"+
					"📅 %s — %s\n\n"+
					"Спасибо за заявку!",
				confirmation.HotelName, confirmation.RoomCategoryName,
				confirmation.CheckIn.Format(booking.DateLayout),
				confirmation.CheckOut.Format(booking.DateLayout)),
			keyboard:  mainKeyboard(b.opts.MiniAppURL),
			parseMode: "Markdown",
		})
	}
}
