package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookingStatus is the lifecycle status of a booking request.
type BookingStatus string

const (
	// BookingStatusRequested is the sole active status. A requested booking
	// counts against the user's date-overlap exclusivity.
	BookingStatusRequested BookingStatus = "requested"
	// BookingStatusCancelled is terminal. Cancelled bookings are kept forever
	// and never physically deleted.
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Hotel represents a hotel available for booking. Hotels are seed data:
// the application reads them but never mutates them.
type Hotel struct {
	ID          int64
	Name        string
	Description string
	Address     string
}

// RoomCategory represents a room category belonging to exactly one hotel.
type RoomCategory struct {
	ID          int64
	HotelID     int64
	Name        string
	Description string
	Price       decimal.Decimal
}

// Booking is a user's booking request. CheckIn and CheckOut are date-valued
// (UTC midnight); the stay covers the half-open interval [CheckIn, CheckOut).
type Booking struct {
	ID             int64
	UserID         int64
	HotelID        int64
	RoomCategoryID int64
	CheckIn        time.Time
	CheckOut       time.Time
	Status         BookingStatus
	CreatedAt      time.Time
}

// BookingView is the join projection used for listing a user's bookings.
type BookingView struct {
	ID               int64
	HotelName        string
	RoomCategoryName string
	CheckIn          time.Time
	CheckOut         time.Time
	Status           BookingStatus
}
