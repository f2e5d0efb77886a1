package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ryab476/hotel-booking/booking"
	"github.com/ryab476/hotel-booking/storage"
)

// reply is a message the form asks the transport to send. A nil keyboard
// leaves the previous reply keyboard in place.
type reply struct {
	text      string
	keyboard  any
	parseMode string
}

// Form drives the multi-step guided booking conversation. All state lives in
// the session store; every method is a pure transition plus the replies to
// send, so the flow is testable without a live Telegram connection.
type Form struct {
	store      storage.Store
	svc        *booking.Service
	sessions   *sessionStore
	miniAppURL string
	logger     *zap.Logger
}

// NewForm creates the guided form state machine.
func NewForm(store storage.Store, svc *booking.Service, sessions *sessionStore, miniAppURL string, logger *zap.Logger) *Form {
	return &Form{
		store:      store,
		svc:        svc,
		sessions:   sessions,
		miniAppURL: miniAppURL,
		logger:     logger,
	}
}

// Start begins a fresh guided form, discarding any in-flight state for the
// user unconditionally.
func (f *Form) Start(userID int64) []reply {
	hotels, err := f.store.ListHotels("name", false)
	if err != nil {
		f.logger.Error("Failed to list hotels for guided form", zap.Error(err))
		f.sessions.Delete(userID)
		return []reply{{text: msgStoreFailure, keyboard: mainKeyboard(f.miniAppURL)}}
	}
	if len(hotels) == 0 {
		f.sessions.Delete(userID)
		return []reply{{text: "❌ Нет доступных гостиниц.", keyboard: mainKeyboard(f.miniAppURL)}}
	}

	f.sessions.Put(userID, &FormState{Step: StepChoosingHotel})
	return []reply{{text: "🏨 Выберите гостиницу:", keyboard: hotelKeyboard(hotels)}}
}

// Handle processes one message from a user with an active form session.
// The second return value reports whether the form consumed the message.
func (f *Form) Handle(ctx context.Context, userID int64, username, text string) ([]reply, bool) {
	state := f.sessions.Get(userID)
	if state == nil {
		return nil, false
	}

	if text == btnCancelForm {
		f.sessions.Delete(userID)
		return []reply{{text: "✅ Заявка отменена.", keyboard: mainKeyboard(f.miniAppURL)}}, true
	}

	switch state.Step {
	case StepChoosingHotel:
		return f.chooseHotel(state, userID, text), true
	case StepChoosingRoom:
		return f.chooseRoom(state, userID, text), true
	case StepEnteringDates:
		return f.enterDates(state, userID, text), true
	case StepConfirming:
		return f.confirm(ctx, state, userID, username, text), true
	default:
		f.logger.Warn("Unknown form step, discarding session",
			zap.Int64("user_id", userID), zap.Int("step", int(state.Step)))
		f.sessions.Delete(userID)
		return nil, false
	}
}

// chooseHotel matches the message against hotel display names. No match
// re-prompts without changing state.
func (f *Form) chooseHotel(state *FormState, userID int64, text string) []reply {
	hotel, err := f.store.GetHotelByName(text)
	if err != nil {
		f.logger.Error("Failed to look up hotel by name", zap.Error(err))
		f.sessions.Delete(userID)
		return []reply{{text: msgStoreFailure, keyboard: mainKeyboard(f.miniAppURL)}}
	}
	if hotel == nil {
		return []reply{{text: "❌ Гостиница не найдена. Попробуйте снова."}}
	}

	return f.presentCategories(state, userID, hotel)
}

// presentCategories stores the hotel selection and advances to room choice
func (f *Form) presentCategories(state *FormState, userID int64, hotel *storage.Hotel) []reply {
	categories, err := f.store.ListRoomCategories(hotel.ID)
	if err != nil {
		f.logger.Error("Failed to list room categories", zap.Error(err))
		f.sessions.Delete(userID)
		return []reply{{text: msgStoreFailure, keyboard: mainKeyboard(f.miniAppURL)}}
	}
	if len(categories) == 0 {
		f.sessions.Delete(userID)
		return []reply{{
			text:      fmt.Sprintf("❌ В гостинице *%s* нет доступных категорий номеров.", hotel.Name),
			keyboard:  mainKeyboard(f.miniAppURL),
			parseMode: "Markdown",
		}}
	}

	state.Step = StepChoosingRoom
	state.HotelID = hotel.ID
	state.HotelName = hotel.Name
	f.sessions.Touch(userID)

	return []reply{{
		text:      fmt.Sprintf("🛏️ *Выберите категорию номера в гостинице %s*", hotel.Name),
		keyboard:  categoryKeyboard(categories),
		parseMode: "Markdown",
	}}
}

// chooseRoom matches the message against category names of the chosen hotel.
// Users echo buttons labelled "Name — price руб."; the price suffix is
// stripped before matching.
func (f *Form) chooseRoom(state *FormState, userID int64, text string) []reply {
	if text == btnBack {
		state.Step = StepChoosingHotel
		f.sessions.Touch(userID)
		hotels, err := f.store.ListHotels("name", false)
		if err != nil {
			f.logger.Error("Failed to list hotels for back navigation", zap.Error(err))
			f.sessions.Delete(userID)
			return []reply{{text: msgStoreFailure, keyboard: mainKeyboard(f.miniAppURL)}}
		}
		return []reply{{text: "🏨 Выберите гостиницу:", keyboard: hotelKeyboard(hotels)}}
	}

	name := text
	if idx := strings.Index(text, " — "); idx >= 0 {
		name = text[:idx]
	}

	category, err := f.store.GetRoomCategoryByName(state.HotelID, name)
	if err != nil {
		f.logger.Error("Failed to look up room category", zap.Error(err))
		f.sessions.Delete(userID)
		return []reply{{text: msgStoreFailure, keyboard: mainKeyboard(f.miniAppURL)}}
	}
	if category == nil {
		return []reply{{text: "❌ Категория номера не найдена. Попробуйте снова."}}
	}

	state.Step = StepEnteringDates
	state.RoomCategoryID = category.ID
	state.RoomCategoryName = category.Name
	f.sessions.Touch(userID)

	return []reply{{
		text: "📅 *Введите даты бронирования в формате:*\n\n" +
			"*С 20.11.2025 по 25.11.2025*\n\n" +
			"(можно ввести просто даты через пробел или дефис)",
		keyboard:  datesKeyboard(),
		parseMode: "Markdown",
	}}
}

// enterDates parses a date pair out of free text. Parse failures and
// misordered dates re-prompt without changing state.
func (f *Form) enterDates(state *FormState, userID int64, text string) []reply {
	if text == btnBack {
		hotel := &storage.Hotel{ID: state.HotelID, Name: state.HotelName}
		return f.presentCategories(state, userID, hotel)
	}

	checkIn, checkOut, err := booking.ParseDateRange(text)
	if errors.Is(err, booking.ErrUnparseableDates) {
		return []reply{{
			text: "❌ Не удалось распознать даты. Пожалуйста, введите в формате:\n\n" +
				"*С 20.11.2025 по 25.11.2025*",
			parseMode: "Markdown",
		}}
	}
	if err != nil {
		return []reply{{text: "❌ Дата заезда должна быть раньше даты выезда."}}
	}

	state.Step = StepConfirming
	state.CheckIn = checkIn
	state.CheckOut = checkOut
	f.sessions.Touch(userID)

	return []reply{{
		text: fmt.Sprintf(
			"✅ *Подтвердите вашу заявку:*\n\n"+
				"🏨 *%s*\n"+
				"🛏️ *%s*\n"+
				"📅 *Даты: %s — %s*\n\n"+
				"Нажмите ✅ *Подтвердить*, чтобы отправить заявку.",
			state.HotelName, state.RoomCategoryName,
			checkIn.Format(booking.DateLayout), checkOut.Format(booking.DateLayout)),
		keyboard:  confirmKeyboard(),
		parseMode: "Markdown",
	}}
}

// confirm submits the accumulated request. Only confirm and cancel are
// recognized; anything else is ignored without a transition.
func (f *Form) confirm(ctx context.Context, state *FormState, userID int64, username, text string) []reply {
	switch text {
	case btnConfirm:
	case btnConfirmCancel:
		f.sessions.Delete(userID)
		return []reply{{text: "✅ Заявка отменена.", keyboard: mainKeyboard(f.miniAppURL)}}
	default:
		return nil
	}

	// The session ends here no matter how the submission goes; on conflict
	// the user restarts the form.
	f.sessions.Delete(userID)

	_, err := f.svc.Submit(ctx, booking.SubmitRequest{
		UserID:         userID,
		Username:       username,
		HotelID:        state.HotelID,
		RoomCategoryID: state.RoomCategoryID,
		CheckIn:        state.CheckIn,
		CheckOut:       state.CheckOut,
	})
	switch {
	case errors.Is(err, booking.ErrConflict):
		return []reply{{
			text: "❌ У вас уже есть бронирование на эти даты!\n" +
				"Невозможно создать новое бронирование с пересекающимися датами.",
			keyboard: mainKeyboard(f.miniAppURL),
		}}
	case errors.Is(err, booking.ErrNotFound):
		return []reply{{text: "❌ Гостиница или категория номера больше недоступна.", keyboard: mainKeyboard(f.miniAppURL)}}
	case errors.Is(err, booking.ErrInvalidRange):
		return []reply{{text: "❌ Дата заезда должна быть раньше даты выезда.", keyboard: mainKeyboard(f.miniAppURL)}}
	case err != nil:
		f.logger.Error("Guided form submission failed", zap.Int64("user_id", userID), zap.Error(err))
		return []reply{{text: msgStoreFailure, keyboard: mainKeyboard(f.miniAppURL)}}
	}

	return []reply{{
		text: "✅ *Заявка успешно отправлена администратору!*\n\n" +
			"Ожидайте подтверждения в течение 24 часов.\n\n" +
			"Вы можете посмотреть свои заявки в разделе «🎫 Мои брони».",
		keyboard:  mainKeyboard(f.miniAppURL),
		parseMode: "Markdown",
	}}
}
