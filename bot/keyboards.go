package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ryab476/hotel-booking/storage"
)

// Main menu and form button labels. The guided form matches user input
// against these exact strings.
const (
	btnHotels     = "🏨 Выбрать гостиницу"
	btnStartForm  = "📤 Отправить заявку"
	btnMyBookings = "🎫 Мои брони"
	btnContact    = "📞 Связаться с админом"
	btnWebApp     = "📅 Забронировать"

	btnBack          = "◀️ Назад"
	btnCancelForm    = "◀️ Отмена"
	btnConfirm       = "✅ Подтвердить"
	btnConfirmCancel = "❌ Отмена"
)

// mainKeyboard returns the persistent main menu. The web-app button is only
// present when a mini-app URL is configured.
func mainKeyboard(miniAppURL string) tgbotapi.ReplyKeyboardMarkup {
	rows := [][]tgbotapi.KeyboardButton{
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnHotels),
			tgbotapi.NewKeyboardButton(btnStartForm),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnMyBookings),
			tgbotapi.NewKeyboardButton(btnContact),
		),
	}
	if miniAppURL != "" {
		rows = append(rows, []tgbotapi.KeyboardButton{{
			Text:   btnWebApp,
			WebApp: &tgbotapi.WebAppInfo{URL: miniAppURL},
		}})
	}
	keyboard := tgbotapi.NewReplyKeyboard(rows...)
	keyboard.ResizeKeyboard = true
	return keyboard
}

// hotelKeyboard presents one button per hotel plus a cancel row
func hotelKeyboard(hotels []storage.Hotel) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	for _, h := range hotels {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(h.Name)))
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancelForm)))
	keyboard := tgbotapi.NewReplyKeyboard(rows...)
	keyboard.ResizeKeyboard = true
	return keyboard
}

// categoryKeyboard presents "Name — price руб." buttons plus a back row
func categoryKeyboard(categories []storage.RoomCategory) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	for _, rc := range categories {
		label := fmt.Sprintf("%s — %s руб.", rc.Name, rc.Price.StringFixed(2))
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(label)))
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnBack)))
	keyboard := tgbotapi.NewReplyKeyboard(rows...)
	keyboard.ResizeKeyboard = true
	return keyboard
}

// datesKeyboard offers only the back button while the user types dates
func datesKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnBack)),
	)
	keyboard.ResizeKeyboard = true
	return keyboard
}

// confirmKeyboard offers confirm and cancel
func confirmKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnConfirm),
			tgbotapi.NewKeyboardButton(btnConfirmCancel),
		),
	)
	keyboard.ResizeKeyboard = true
	return keyboard
}

// cancelBookingKeyboard is the inline keyboard attached to each booking in
// the "my bookings" list.
func cancelBookingKeyboard(bookingID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Отменить", fmt.Sprintf("cancel_booking:%d", bookingID)),
		),
	)
}
