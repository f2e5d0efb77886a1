package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ryab476/hotel-booking/booking"
	"github.com/ryab476/hotel-booking/storage"
)

// handleMessage handles incoming messages
func (b *Bot) handleMessage(message *tgbotapi.Message) {
	userID := message.From.ID
	chatID := message.Chat.ID
	ctx := context.Background()

	// Structured submissions from the embedded form arrive as web-app data
	// and bypass any guided-form state.
	if message.WebAppData != nil {
		b.handleWebAppData(ctx, message)
		return
	}

	if message.IsCommand() {
		switch message.Command() {
		case "start":
			b.sessions.Delete(userID)
			b.handleStartCommand(message)
		case "help":
			b.handleHelpCommand(message)
		case "book":
			b.sendAll(chatID, b.form.Start(userID))
		case "cancel":
			b.handleCancelCommand(message)
		default:
			b.send(chatID, reply{text: "Неизвестная команда. Используйте /help для списка команд."})
		}
		return
	}

	// Main menu buttons work from any point and interrupt the guided form,
	// except the labels the form itself owns.
	switch message.Text {
	case btnHotels:
		b.sessions.Delete(userID)
		b.handleHotelList(chatID)
		return
	case btnStartForm:
		b.sendAll(chatID, b.form.Start(userID))
		return
	case btnMyBookings:
		b.sessions.Delete(userID)
		b.handleMyBookings(ctx, userID, chatID)
		return
	case btnContact:
		b.sessions.Delete(userID)
		b.handleContactAdmin(chatID)
		return
	}

	if replies, handled := b.form.Handle(ctx, userID, username(message.From), message.Text); handled {
		b.sendAll(chatID, replies)
		return
	}

	b.send(chatID, reply{text: "Выберите действие с помощью кнопок меню или используйте /help."})
}

// sendAll delivers a batch of form replies in order
func (b *Bot) sendAll(chatID int64, replies []reply) {
	for _, r := range replies {
		b.send(chatID, r)
	}
}

// handleStartCommand greets the user and shows the main menu
func (b *Bot) handleStartCommand(message *tgbotapi.Message) {
	text := "🌟 *Добро пожаловать в сервис бронирования гостиниц!* 🌟\n\n" +
		"Здесь вы можете:\n" +
		"• *«🏨 Выбрать гостиницу»* — посмотреть доступные гостиницы и категории номеров.\n" +
		"• *«📤 Отправить заявку»* — оставить заявку прямо в Telegram.\n" +
		"• *«🎫 Мои брони»* — посмотреть отправленные заявки и отменить их.\n" +
		"• *«📞 Связаться с админом»* — получить контактную информацию.\n"
	if b.opts.MiniAppURL != "" {
		text += "• *«📅 Забронировать»* — заполнить полную форму в мини-приложении.\n"
	}

	msg := reply{text: text, keyboard: mainKeyboard(b.opts.MiniAppURL), parseMode: "Markdown"}
	b.send(message.Chat.ID, msg)
}

// handleHelpCommand lists the available commands
func (b *Bot) handleHelpCommand(message *tgbotapi.Message) {
	b.send(message.Chat.ID, reply{text: "Доступные команды:\n" +
		"/book - Отправить заявку на бронирование\n" +
		"/cancel - Отменить текущую операцию\n" +
		"/help - Показать эту справку"})
}

// handleCancelCommand discards any in-flight guided form
func (b *Bot) handleCancelCommand(message *tgbotapi.Message) {
	b.sessions.Delete(message.From.ID)
	b.send(message.Chat.ID, reply{text: "Операция отменена.", keyboard: mainKeyboard(b.opts.MiniAppURL)})
}

// handleHotelList sends the formatted hotel catalogue
func (b *Bot) handleHotelList(chatID int64) {
	hotels, err := b.store.ListHotels("name", false)
	if err != nil {
		b.logger.Error("Failed to fetch hotels", zap.Error(err))
		b.send(chatID, reply{text: "Ошибка загрузки гостиниц."})
		return
	}
	if len(hotels) == 0 {
		b.send(chatID, reply{text: "🏨 Нет доступных гостиниц."})
		return
	}

	var sb strings.Builder
	sb.WriteString("🏨 <b>Доступные гостиницы:</b>\n\n")
	for _, h := range hotels {
		address := h.Address
		if address == "" {
			address = "Адрес не указан"
		}
		sb.WriteString(fmt.Sprintf("• <b>%s</b>\n  📍 %s\n", html.EscapeString(h.Name), html.EscapeString(address)))
		if h.Description != "" {
			sb.WriteString(fmt.Sprintf("  %s\n", html.EscapeString(h.Description)))
		}
		sb.WriteString("\n")
	}

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send hotel list", zap.Error(err))
	}
}

// handleMyBookings sends one message per active booking, each with an inline
// cancel button.
func (b *Bot) handleMyBookings(ctx context.Context, userID, chatID int64) {
	bookings, err := b.svc.ListActive(ctx, userID)
	if err != nil {
		b.logger.Error("Failed to fetch user bookings", zap.Int64("user_id", userID), zap.Error(err))
		b.send(chatID, reply{text: "Ошибка загрузки броней. Попробуйте позже."})
		return
	}
	if len(bookings) == 0 {
		b.send(chatID, reply{text: "🎫 У вас пока нет активных бронирований."})
		return
	}

	for _, view := range bookings {
		text := fmt.Sprintf(
			"• <b>Гостиница:</b> %s\n"+
				"<b>Категория номера:</b> %s\n"+
				"<b>Дата заезда:</b> %s\n"+
				"<b>Дата выезда:</b> %s\n"+
				"<b>Статус:</b> %s",
			html.EscapeString(view.HotelName), html.EscapeString(view.RoomCategoryName),
			view.CheckIn.Format(booking.DateLayout), view.CheckOut.Format(booking.DateLayout),
			statusDisplay(view.Status))

		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.ReplyMarkup = cancelBookingKeyboard(view.ID)
		if _, err := b.api.Send(msg); err != nil {
			b.logger.Error("Failed to send booking entry", zap.Int64("booking_id", view.ID), zap.Error(err))
		}
	}
}

// handleContactAdmin sends the operator contact card
func (b *Bot) handleContactAdmin(chatID int64) {
	text := fmt.Sprintf(
		"📞 *Контактная информация*\n\n"+
			"*Администратор: %s*\n\n"+
			"%s\n\n"+
			"Вы можете связаться напрямую или написать в Telegram.",
		b.opts.AdminName, b.opts.AdminContact)
	b.send(chatID, reply{text: text, parseMode: "Markdown"})
}

// handleCallbackQuery handles callback queries from inline keyboards
func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	userID := query.From.ID
	ctx := context.Background()

	parts := strings.SplitN(query.Data, ":", 2)
	if len(parts) < 2 {
		b.logger.Warn("Invalid callback data format", zap.String("data", query.Data))
		b.answerCallbackQuery(query.ID, "Ошибка данных", false)
		return
	}

	switch parts[0] {
	case "cancel_booking":
		bookingID, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			b.answerCallbackQuery(query.ID, "Ошибка данных", false)
			return
		}
		b.handleCancelBooking(ctx, query, bookingID, userID)
	default:
		b.logger.Warn("Unhandled callback action", zap.String("action", parts[0]))
		b.answerCallbackQuery(query.ID, "", false)
	}
}

// handleCancelBooking cancels a booking from the "my bookings" list. A
// booking that is absent or owned by someone else yields the same answer.
func (b *Bot) handleCancelBooking(ctx context.Context, query *tgbotapi.CallbackQuery, bookingID, userID int64) {
	result, err := b.svc.Cancel(ctx, bookingID, userID, username(query.From))
	if errors.Is(err, booking.ErrNotFound) {
		b.answerCallbackQuery(query.ID, "❌ Бронирование не найдено или вы не можете его отменить.", true)
		return
	}
	if err != nil {
		b.logger.Error("Failed to cancel booking", zap.Int64("booking_id", bookingID), zap.Error(err))
		b.answerCallbackQuery(query.ID, "Ошибка отмены. Попробуйте позже.", true)
		return
	}
	if result.AlreadyCancelled {
		b.answerCallbackQuery(query.ID, "✅ Бронирование уже отменено.", true)
		return
	}

	view := result.Booking
	text := fmt.Sprintf(
		"✅ Бронирование в *%s* отменено.\n\n"+
			"Гостиница: %s\n"+
			"Номер: %s\n"+
			"Даты: %s — %s",
		view.HotelName, view.HotelName, view.RoomCategoryName,
		view.CheckIn.Format(booking.DateLayout), view.CheckOut.Format(booking.DateLayout))

	edit := tgbotapi.NewEditMessageText(query.Message.Chat.ID, query.Message.MessageID, text)
	edit.ParseMode = "Markdown"
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Error("Failed to edit cancelled booking message", zap.Error(err))
	}
	b.answerCallbackQuery(query.ID, "", false)
}

// statusDisplay maps stored statuses to user-facing labels
func statusDisplay(status storage.BookingStatus) string {
	switch status {
	case storage.BookingStatusRequested:
		return "Заявка"
	case storage.BookingStatusCancelled:
		return "Отменено"
	default:
		return string(status)
	}
}
