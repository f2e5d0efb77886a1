package booking

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ryab476/hotel-booking/notify"
	"github.com/ryab476/hotel-booking/storage"
)

// recordingNotifier captures operator events, optionally failing delivery.
type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
	fail   bool
}

func (n *recordingNotifier) Notify(_ context.Context, event notify.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("delivery failed")
	}
	n.events = append(n.events, event)
	return nil
}

func (n *recordingNotifier) recorded() []notify.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notify.Event, len(n.events))
	copy(out, n.events)
	return out
}

func seededStore() *storage.MemoryStorage {
	store := storage.NewMemoryStorage()
	store.AddHotel(storage.Hotel{ID: 1, Name: "Альфа", Description: "Описание гостиницы Альфа"})
	store.AddHotel(storage.Hotel{ID: 2, Name: "Бетта", Description: "Описание гостиницы Бетта"})
	store.AddRoomCategory(storage.RoomCategory{ID: 1, HotelID: 1, Name: "Стандарт", Price: decimal.NewFromInt(3500)})
	store.AddRoomCategory(storage.RoomCategory{ID: 2, HotelID: 1, Name: "Люкс", Price: decimal.NewFromInt(7000)})
	store.AddRoomCategory(storage.RoomCategory{ID: 3, HotelID: 2, Name: "Стандарт", Price: decimal.NewFromInt(2800)})
	return store
}

func newTestService() (*Service, *storage.MemoryStorage, *recordingNotifier) {
	store := seededStore()
	notifier := &recordingNotifier{}
	return NewService(store, notifier, zap.NewNop()), store, notifier
}

func submitReq(t *testing.T, userID int64, in, out string) SubmitRequest {
	return SubmitRequest{
		UserID:         userID,
		Username:       "guest",
		HotelID:        1,
		RoomCategoryID: 1,
		CheckIn:        date(t, in),
		CheckOut:       date(t, out),
	}
}

func TestSubmitCreatesRequestedBooking(t *testing.T) {
	svc, store, notifier := newTestService()
	ctx := context.Background()

	confirmation, err := svc.Submit(ctx, submitReq(t, 100, "2025-11-20", "2025-11-25"))
	require.NoError(t, err)
	assert.Equal(t, "Альфа", confirmation.HotelName)
	assert.Equal(t, "Стандарт", confirmation.RoomCategoryName)
	assert.True(t, confirmation.Price.Equal(decimal.NewFromInt(3500)))

	ranges, err := store.ListActiveBookingRanges(100)
	require.NoError(t, err)
	require.Len(t, ranges, 1)
	assert.Equal(t, storage.BookingStatusRequested, ranges[0].Status)

	events := notifier.recorded()
	require.Len(t, events, 1)
	assert.Equal(t, notify.ActionCreated, events[0].Action)
	assert.Equal(t, "Альфа", events[0].HotelName)
}

func TestSubmitConflictingRange(t *testing.T) {
	svc, store, notifier := newTestService()
	ctx := context.Background()

	_, err := svc.Submit(ctx, submitReq(t, 100, "2025-11-20", "2025-11-25"))
	require.NoError(t, err)

	// Contained range for the same user conflicts: 22 < 25 and 20 < 23
	_, err = svc.Submit(ctx, submitReq(t, 100, "2025-11-22", "2025-11-23"))
	assert.ErrorIs(t, err, ErrConflict)

	// Exactly one booking and one conflict, no second insert
	ranges, _ := store.ListActiveBookingRanges(100)
	assert.Len(t, ranges, 1)
	assert.Len(t, notifier.recorded(), 1)
}

func TestSubmitSameRangeTwice(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Submit(ctx, submitReq(t, 100, "2025-11-20", "2025-11-25"))
	require.NoError(t, err)
	_, err = svc.Submit(ctx, submitReq(t, 100, "2025-11-20", "2025-11-25"))
	assert.ErrorIs(t, err, ErrConflict)

	ranges, _ := store.ListActiveBookingRanges(100)
	assert.Len(t, ranges, 1)
}

func TestSubmitBackToBackRangesAllowed(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Submit(ctx, submitReq(t, 100, "2025-11-20", "2025-11-25"))
	require.NoError(t, err)
	_, err = svc.Submit(ctx, submitReq(t, 100, "2025-11-25", "2025-11-28"))
	assert.NoError(t, err)
}

func TestSubmitOtherUserUnaffected(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Submit(ctx, submitReq(t, 100, "2025-11-20", "2025-11-25"))
	require.NoError(t, err)
	_, err = svc.Submit(ctx, submitReq(t, 200, "2025-11-20", "2025-11-25"))
	assert.NoError(t, err)
}

func TestSubmitInvalidRange(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	// Zero-night stay
	_, err := svc.Submit(ctx, submitReq(t, 100, "2025-11-20", "2025-11-20"))
	assert.ErrorIs(t, err, ErrInvalidRange)

	// Reversed
	_, err = svc.Submit(ctx, submitReq(t, 100, "2025-11-25", "2025-11-20"))
	assert.ErrorIs(t, err, ErrInvalidRange)

	ranges, _ := store.ListActiveBookingRanges(100)
	assert.Empty(t, ranges)
}

func TestSubmitUnknownHotelOrCategory(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	req := submitReq(t, 100, "2025-11-20", "2025-11-25")
	req.HotelID = 99
	_, err := svc.Submit(ctx, req)
	assert.ErrorIs(t, err, ErrNotFound)

	req = submitReq(t, 100, "2025-11-20", "2025-11-25")
	req.RoomCategoryID = 99
	_, err = svc.Submit(ctx, req)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitCategoryOfDifferentHotel(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	// Category 3 belongs to hotel 2, not hotel 1
	req := submitReq(t, 100, "2025-11-20", "2025-11-25")
	req.RoomCategoryID = 3
	_, err := svc.Submit(ctx, req)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitNotificationFailureDoesNotFailBooking(t *testing.T) {
	svc, store, notifier := newTestService()
	notifier.fail = true
	ctx := context.Background()

	_, err := svc.Submit(ctx, submitReq(t, 100, "2025-11-20", "2025-11-25"))
	assert.NoError(t, err)

	ranges, _ := store.ListActiveBookingRanges(100)
	assert.Len(t, ranges, 1)
}

func TestCancelOwnBooking(t *testing.T) {
	svc, store, notifier := newTestService()
	ctx := context.Background()

	confirmation, err := svc.Submit(ctx, submitReq(t, 100, "2025-11-20", "2025-11-25"))
	require.NoError(t, err)

	result, err := svc.Cancel(ctx, confirmation.BookingID, 100, "guest")
	require.NoError(t, err)
	assert.False(t, result.AlreadyCancelled)
	assert.Equal(t, storage.BookingStatusCancelled, result.Booking.Status)

	// Cancelled bookings free the range and leave the active list
	active, _ := store.ListActiveBookings(100)
	assert.Empty(t, active)
	_, err = svc.Submit(ctx, submitReq(t, 100, "2025-11-20", "2025-11-25"))
	assert.NoError(t, err)

	events := notifier.recorded()
	require.Len(t, events, 3)
	assert.Equal(t, notify.ActionCancelled, events[1].Action)
}

func TestCancelIsIdempotent(t *testing.T) {
	svc, _, notifier := newTestService()
	ctx := context.Background()

	confirmation, err := svc.Submit(ctx, submitReq(t, 100, "2025-11-20", "2025-11-25"))
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, confirmation.BookingID, 100, "guest")
	require.NoError(t, err)

	result, err := svc.Cancel(ctx, confirmation.BookingID, 100, "guest")
	require.NoError(t, err)
	assert.True(t, result.AlreadyCancelled)

	// One created + one cancelled event, nothing for the repeat
	assert.Len(t, notifier.recorded(), 2)
}

func TestCancelHidesForeignBookings(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	confirmation, err := svc.Submit(ctx, submitReq(t, 100, "2025-11-20", "2025-11-25"))
	require.NoError(t, err)

	// Another user's cancel attempt reads exactly like a missing booking
	_, foreignErr := svc.Cancel(ctx, confirmation.BookingID, 200, "other")
	_, missingErr := svc.Cancel(ctx, 99999, 200, "other")
	assert.ErrorIs(t, foreignErr, ErrNotFound)
	assert.ErrorIs(t, missingErr, ErrNotFound)
	assert.Equal(t, foreignErr.Error(), missingErr.Error())
}

func TestListActiveOrdering(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Submit(ctx, submitReq(t, 100, "2025-11-01", "2025-11-05"))
	require.NoError(t, err)
	second, err := svc.Submit(ctx, submitReq(t, 100, "2025-11-10", "2025-11-15"))
	require.NoError(t, err)

	views, err := svc.ListActive(ctx, 100)
	require.NoError(t, err)
	require.Len(t, views, 2)
	// Most recent first
	assert.Equal(t, second.BookingID, views[0].ID)
	assert.Equal(t, first.BookingID, views[1].ID)
}

func TestConcurrentSubmitsSameUser(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	req := submitReq(t, 100, "2025-11-20", "2025-11-25")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Submit(ctx, req)
		}()
	}
	wg.Wait()

	// The per-user lock admits exactly one of the racing submissions
	ranges, err := store.ListActiveBookingRanges(100)
	require.NoError(t, err)
	assert.Len(t, ranges, 1)
}
