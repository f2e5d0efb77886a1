package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ryab476/hotel-booking/notify"
	"github.com/ryab476/hotel-booking/storage"
)

// SubmitRequest is a normalized booking request. Both the guided form and the
// structured submission path reduce to this tuple before reaching Submit.
type SubmitRequest struct {
	UserID         int64
	Username       string
	HotelID        int64
	RoomCategoryID int64
	CheckIn        time.Time
	CheckOut       time.Time
}

// Confirmation echoes the created booking with display data resolved, so the
// transport can render a summary without another round of lookups.
type Confirmation struct {
	BookingID        int64
	HotelName        string
	RoomCategoryName string
	Price            decimal.Decimal
	CheckIn          time.Time
	CheckOut         time.Time
}

// CancelResult reports the outcome of a cancellation.
type CancelResult struct {
	// AlreadyCancelled is set when the booking was cancelled before this
	// call. Cancellation is idempotent: this is not a failure, but it is
	// reported distinctly and emits no duplicate notification.
	AlreadyCancelled bool
	Booking          storage.BookingView
}

// Service implements the booking lifecycle: submission with overlap
// validation, cancellation, and active-booking listing.
type Service struct {
	store    storage.Store
	notifier notify.Notifier
	logger   *zap.Logger

	// Per-user locks serialize the overlap-check-then-insert sequence, so
	// two near-simultaneous submissions from one user cannot both pass
	// validation. Different users never contend.
	mu        sync.Mutex
	userLocks map[int64]*sync.Mutex
}

// NewService creates a booking service.
func NewService(store storage.Store, notifier notify.Notifier, logger *zap.Logger) *Service {
	return &Service{
		store:     store,
		notifier:  notifier,
		logger:    logger,
		userLocks: make(map[int64]*sync.Mutex),
	}
}

func (s *Service) userLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[userID] = lock
	}
	return lock
}

// Submit validates a booking request and creates it with status "requested".
// Returns ErrInvalidRange, ErrNotFound (hotel or category, or a category that
// belongs to a different hotel) or ErrConflict without mutating anything.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*Confirmation, error) {
	if !req.CheckIn.Before(req.CheckOut) {
		return nil, ErrInvalidRange
	}

	hotel, err := s.store.GetHotel(req.HotelID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve hotel: %w", err)
	}
	if hotel == nil {
		return nil, ErrNotFound
	}

	category, err := s.store.GetRoomCategory(req.RoomCategoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve room category: %w", err)
	}
	// A category under a different hotel is as absent as no category at all
	if category == nil || category.HotelID != hotel.ID {
		return nil, ErrNotFound
	}

	lock := s.userLock(req.UserID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.store.ListActiveBookingRanges(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load active bookings: %w", err)
	}
	if HasOverlap(existing, req.CheckIn, req.CheckOut) {
		return nil, ErrConflict
	}

	id, err := s.store.InsertBooking(req.UserID, hotel.ID, category.ID, req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, fmt.Errorf("failed to insert booking: %w", err)
	}

	s.notifyBestEffort(ctx, notify.Event{
		Action:           notify.ActionCreated,
		UserID:           req.UserID,
		Username:         req.Username,
		HotelName:        hotel.Name,
		RoomCategoryName: category.Name,
		CheckIn:          req.CheckIn,
		CheckOut:         req.CheckOut,
	})

	s.logger.Info("Booking created",
		zap.Int64("booking_id", id),
		zap.Int64("user_id", req.UserID),
		zap.String("hotel", hotel.Name),
		zap.String("room_category", category.Name))

	return &Confirmation{
		BookingID:        id,
		HotelName:        hotel.Name,
		RoomCategoryName: category.Name,
		Price:            category.Price,
		CheckIn:          req.CheckIn,
		CheckOut:         req.CheckOut,
	}, nil
}

// Cancel sets the booking status to cancelled. A booking that does not exist
// or belongs to another user yields ErrNotFound; the caller cannot tell the
// two apart. Cancelling an already-cancelled booking is a reported no-op.
func (s *Service) Cancel(ctx context.Context, bookingID, userID int64, username string) (*CancelResult, error) {
	view, err := s.store.GetBooking(bookingID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	if view == nil {
		return nil, ErrNotFound
	}

	if view.Status == storage.BookingStatusCancelled {
		return &CancelResult{AlreadyCancelled: true, Booking: *view}, nil
	}

	if err := s.store.SetBookingStatus(bookingID, storage.BookingStatusCancelled); err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}
	view.Status = storage.BookingStatusCancelled

	s.notifyBestEffort(ctx, notify.Event{
		Action:           notify.ActionCancelled,
		UserID:           userID,
		Username:         username,
		HotelName:        view.HotelName,
		RoomCategoryName: view.RoomCategoryName,
		CheckIn:          view.CheckIn,
		CheckOut:         view.CheckOut,
	})

	s.logger.Info("Booking cancelled",
		zap.Int64("booking_id", bookingID),
		zap.Int64("user_id", userID))

	return &CancelResult{Booking: *view}, nil
}

// ListActive returns the user's non-cancelled bookings, most recent first.
func (s *Service) ListActive(_ context.Context, userID int64) ([]storage.BookingView, error) {
	views, err := s.store.ListActiveBookings(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return views, nil
}

// notifyBestEffort delivers an operator notification. Failures are logged and
// swallowed: the booking mutation has already committed.
func (s *Service) notifyBestEffort(ctx context.Context, event notify.Event) {
	if err := s.notifier.Notify(ctx, event); err != nil {
		s.logger.Error("Failed to deliver operator notification",
			zap.String("action", string(event.Action)),
			zap.Int64("user_id", event.UserID),
			zap.Error(err))
	}
}
