package storage

import "time"

// Store defines the interface for storage implementations
type Store interface {
	// ListHotels returns all hotels ordered by the given sort key
	// ("name" or "created"; unknown keys fall back to "name").
	ListHotels(sortKey string, desc bool) ([]Hotel, error)

	// GetHotel returns the hotel with the given ID, or nil if absent
	GetHotel(id int64) (*Hotel, error)

	// GetHotelByName returns the hotel whose display name matches exactly, or nil
	GetHotelByName(name string) (*Hotel, error)

	// ListRoomCategories returns all room categories of a hotel
	ListRoomCategories(hotelID int64) ([]RoomCategory, error)

	// GetRoomCategory returns the room category with the given ID, or nil if absent
	GetRoomCategory(id int64) (*RoomCategory, error)

	// GetRoomCategoryByName returns the category of the hotel whose display
	// name matches exactly, or nil
	GetRoomCategoryByName(hotelID int64, name string) (*RoomCategory, error)

	// ListActiveBookings returns the user's non-cancelled bookings with hotel
	// and category names resolved, most recent first
	ListActiveBookings(userID int64) ([]BookingView, error)

	// ListActiveBookingRanges returns the raw date ranges of the user's
	// non-cancelled bookings, for overlap validation
	ListActiveBookingRanges(userID int64) ([]Booking, error)

	// GetBooking returns the user's booking with the given ID, or nil if it
	// does not exist or belongs to a different user
	GetBooking(id, userID int64) (*BookingView, error)

	// InsertBooking creates a booking with status "requested" and returns its ID
	InsertBooking(userID, hotelID, roomCategoryID int64, checkIn, checkOut time.Time) (int64, error)

	// SetBookingStatus updates the status of a booking
	SetBookingStatus(id int64, status BookingStatus) error

	// Close releases the underlying resources
	Close() error
}
