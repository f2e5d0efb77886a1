package bot

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ryab476/hotel-booking/booking"
	"github.com/ryab476/hotel-booking/notify"
	"github.com/ryab476/hotel-booking/storage"
)

func newTestForm(t *testing.T) (*Form, *sessionStore, *booking.Service) {
	t.Helper()

	store := storage.NewMemoryStorage()
	store.AddHotel(storage.Hotel{ID: 1, Name: "Альфа", Description: "Описание гостиницы Альфа"})
	store.AddHotel(storage.Hotel{ID: 2, Name: "Бетта", Description: "Описание гостиницы Бетта"})
	store.AddRoomCategory(storage.RoomCategory{ID: 1, HotelID: 1, Name: "Стандарт", Price: decimal.NewFromInt(3500)})
	store.AddRoomCategory(storage.RoomCategory{ID: 2, HotelID: 1, Name: "Люкс", Price: decimal.NewFromInt(7000)})

	svc := booking.NewService(store, notify.NewConsoleNotifier(), zap.NewNop())
	sessions := newSessionStore()
	form := NewForm(store, svc, sessions, "", zap.NewNop())
	return form, sessions, svc
}

const testUser int64 = 42

func TestFormStartCreatesSession(t *testing.T) {
	form, sessions, _ := newTestForm(t)

	replies := form.Start(testUser)
	require.Len(t, replies, 1)
	assert.Equal(t, "🏨 Выберите гостиницу:", replies[0].text)

	state := sessions.Get(testUser)
	require.NotNil(t, state)
	assert.Equal(t, StepChoosingHotel, state.Step)
}

func TestFormStartResetsInFlightSession(t *testing.T) {
	form, sessions, _ := newTestForm(t)
	ctx := context.Background()

	form.Start(testUser)
	_, handled := form.Handle(ctx, testUser, "guest", "Альфа")
	require.True(t, handled)
	require.Equal(t, StepChoosingRoom, sessions.Get(testUser).Step)

	// Starting over discards the previous selections unconditionally
	form.Start(testUser)
	state := sessions.Get(testUser)
	assert.Equal(t, StepChoosingHotel, state.Step)
	assert.Zero(t, state.HotelID)
}

func TestFormUnknownHotelDoesNotAdvance(t *testing.T) {
	form, sessions, _ := newTestForm(t)
	ctx := context.Background()

	form.Start(testUser)
	replies, handled := form.Handle(ctx, testUser, "guest", "Гостиница Ромашка")
	require.True(t, handled)
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].text, "не найдена")
	assert.Equal(t, StepChoosingHotel, sessions.Get(testUser).Step)
}

func TestFormHappyPath(t *testing.T) {
	form, sessions, svc := newTestForm(t)
	ctx := context.Background()

	form.Start(testUser)

	_, handled := form.Handle(ctx, testUser, "guest", "Альфа")
	require.True(t, handled)
	state := sessions.Get(testUser)
	require.Equal(t, StepChoosingRoom, state.Step)
	assert.Equal(t, int64(1), state.HotelID)

	// Users echo the button label with the price suffix
	_, handled = form.Handle(ctx, testUser, "guest", "Стандарт — 3500.00 руб.")
	require.True(t, handled)
	state = sessions.Get(testUser)
	require.Equal(t, StepEnteringDates, state.Step)
	assert.Equal(t, int64(1), state.RoomCategoryID)

	replies, handled := form.Handle(ctx, testUser, "guest", "С 20.11.2025 по 25.11.2025")
	require.True(t, handled)
	state = sessions.Get(testUser)
	require.Equal(t, StepConfirming, state.Step)
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].text, "Подтвердите вашу заявку")
	assert.Contains(t, replies[0].text, "20.11.2025 — 25.11.2025")

	replies, handled = form.Handle(ctx, testUser, "guest", btnConfirm)
	require.True(t, handled)
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].text, "успешно отправлена")
	assert.Nil(t, sessions.Get(testUser))

	views, err := svc.ListActive(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Альфа", views[0].HotelName)
}

func TestFormCategoryNameWithoutPriceSuffix(t *testing.T) {
	form, sessions, _ := newTestForm(t)
	ctx := context.Background()

	form.Start(testUser)
	form.Handle(ctx, testUser, "guest", "Альфа")
	_, handled := form.Handle(ctx, testUser, "guest", "Люкс")
	require.True(t, handled)
	assert.Equal(t, StepEnteringDates, sessions.Get(testUser).Step)
}

func TestFormUnknownCategoryDoesNotAdvance(t *testing.T) {
	form, sessions, _ := newTestForm(t)
	ctx := context.Background()

	form.Start(testUser)
	form.Handle(ctx, testUser, "guest", "Альфа")
	replies, _ := form.Handle(ctx, testUser, "guest", "Президентский")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].text, "не найдена")
	assert.Equal(t, StepChoosingRoom, sessions.Get(testUser).Step)
}

func TestFormInvalidDatesDoNotAdvance(t *testing.T) {
	form, sessions, _ := newTestForm(t)
	ctx := context.Background()

	form.Start(testUser)
	form.Handle(ctx, testUser, "guest", "Альфа")
	form.Handle(ctx, testUser, "guest", "Стандарт")

	replies, _ := form.Handle(ctx, testUser, "guest", "на следующей неделе")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].text, "Не удалось распознать даты")
	assert.Equal(t, StepEnteringDates, sessions.Get(testUser).Step)

	replies, _ = form.Handle(ctx, testUser, "guest", "25.11.2025 20.11.2025")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].text, "раньше даты выезда")
	assert.Equal(t, StepEnteringDates, sessions.Get(testUser).Step)
}

func TestFormBackNavigation(t *testing.T) {
	form, sessions, _ := newTestForm(t)
	ctx := context.Background()

	form.Start(testUser)
	form.Handle(ctx, testUser, "guest", "Альфа")
	form.Handle(ctx, testUser, "guest", "Стандарт")
	require.Equal(t, StepEnteringDates, sessions.Get(testUser).Step)

	// Back from dates re-presents the categories of the stored hotel
	replies, _ := form.Handle(ctx, testUser, "guest", btnBack)
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].text, "Альфа")
	assert.Equal(t, StepChoosingRoom, sessions.Get(testUser).Step)

	// Back from categories re-presents the hotel list
	replies, _ = form.Handle(ctx, testUser, "guest", btnBack)
	require.Len(t, replies, 1)
	assert.Equal(t, "🏨 Выберите гостиницу:", replies[0].text)
	assert.Equal(t, StepChoosingHotel, sessions.Get(testUser).Step)
}

func TestFormCancelDiscardsSession(t *testing.T) {
	form, sessions, _ := newTestForm(t)
	ctx := context.Background()

	for _, inputs := range [][]string{
		{},
		{"Альфа"},
		{"Альфа", "Стандарт"},
		{"Альфа", "Стандарт", "20.11.2025 25.11.2025"},
	} {
		form.Start(testUser)
		for _, input := range inputs {
			form.Handle(ctx, testUser, "guest", input)
		}
		replies, handled := form.Handle(ctx, testUser, "guest", btnCancelForm)
		require.True(t, handled)
		require.Len(t, replies, 1)
		assert.Contains(t, replies[0].text, "отменена")
		assert.Nil(t, sessions.Get(testUser))
	}
}

func TestFormConfirmIgnoresOtherInput(t *testing.T) {
	form, sessions, _ := newTestForm(t)
	ctx := context.Background()

	form.Start(testUser)
	form.Handle(ctx, testUser, "guest", "Альфа")
	form.Handle(ctx, testUser, "guest", "Стандарт")
	form.Handle(ctx, testUser, "guest", "20.11.2025 25.11.2025")

	replies, handled := form.Handle(ctx, testUser, "guest", "а можно со скидкой?")
	assert.True(t, handled)
	assert.Empty(t, replies)
	assert.Equal(t, StepConfirming, sessions.Get(testUser).Step)
}

func TestFormConflictEndsSession(t *testing.T) {
	form, sessions, svc := newTestForm(t)
	ctx := context.Background()

	checkIn, _ := time.Parse("02.01.2006", "20.11.2025")
	checkOut, _ := time.Parse("02.01.2006", "25.11.2025")
	_, err := svc.Submit(ctx, booking.SubmitRequest{
		UserID: testUser, HotelID: 1, RoomCategoryID: 1,
		CheckIn: checkIn, CheckOut: checkOut,
	})
	require.NoError(t, err)

	form.Start(testUser)
	form.Handle(ctx, testUser, "guest", "Альфа")
	form.Handle(ctx, testUser, "guest", "Стандарт")
	form.Handle(ctx, testUser, "guest", "22.11.2025 23.11.2025")

	replies, _ := form.Handle(ctx, testUser, "guest", btnConfirm)
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].text, "пересекающимися датами")
	assert.Nil(t, sessions.Get(testUser))
}

func TestFormHandleWithoutSession(t *testing.T) {
	form, _, _ := newTestForm(t)

	replies, handled := form.Handle(context.Background(), testUser, "guest", "Альфа")
	assert.False(t, handled)
	assert.Nil(t, replies)
}

func TestSessionStoreDeleteIdle(t *testing.T) {
	sessions := newSessionStore()
	sessions.Put(1, &FormState{Step: StepChoosingHotel})
	sessions.Put(2, &FormState{Step: StepChoosingRoom})

	// Age one session past the TTL
	sessions.states[1].UpdatedAt = time.Now().Add(-2 * time.Hour)

	removed := sessions.DeleteIdle(time.Hour)
	assert.Equal(t, 1, removed)
	assert.Nil(t, sessions.Get(1))
	assert.NotNil(t, sessions.Get(2))
}
