package storage

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStorage is a thread-safe in-memory implementation of Store. It backs
// tests and token-only runs where no database file is wanted.
type MemoryStorage struct {
	mu            sync.RWMutex
	hotels        []Hotel
	categories    []RoomCategory
	bookings      []Booking
	nextBookingID int64
}

// NewMemoryStorage creates an empty in-memory storage instance
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{nextBookingID: 1}
}

// AddHotel registers a hotel. Intended for seeding and tests.
func (s *MemoryStorage) AddHotel(h Hotel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hotels = append(s.hotels, h)
}

// AddRoomCategory registers a room category. Intended for seeding and tests.
func (s *MemoryStorage) AddRoomCategory(rc RoomCategory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = append(s.categories, rc)
}

// ListHotels returns all hotels ordered by the given sort key
func (s *MemoryStorage) ListHotels(sortKey string, desc bool) ([]Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hotels := make([]Hotel, len(s.hotels))
	copy(hotels, s.hotels)

	// "created" keeps insertion order; anything else sorts by name
	if sortKey != "created" {
		sort.Slice(hotels, func(i, j int) bool {
			return strings.Compare(hotels[i].Name, hotels[j].Name) < 0
		})
	}
	if desc {
		for i, j := 0, len(hotels)-1; i < j; i, j = i+1, j-1 {
			hotels[i], hotels[j] = hotels[j], hotels[i]
		}
	}
	return hotels, nil
}

// GetHotel returns the hotel with the given ID, or nil if absent
func (s *MemoryStorage) GetHotel(id int64) (*Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, h := range s.hotels {
		if h.ID == id {
			hotel := h
			return &hotel, nil
		}
	}
	return nil, nil
}

// GetHotelByName returns the hotel whose display name matches exactly, or nil
func (s *MemoryStorage) GetHotelByName(name string) (*Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, h := range s.hotels {
		if h.Name == name {
			hotel := h
			return &hotel, nil
		}
	}
	return nil, nil
}

// ListRoomCategories returns all room categories of a hotel
func (s *MemoryStorage) ListRoomCategories(hotelID int64) ([]RoomCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var categories []RoomCategory
	for _, rc := range s.categories {
		if rc.HotelID == hotelID {
			categories = append(categories, rc)
		}
	}
	return categories, nil
}

// GetRoomCategory returns the room category with the given ID, or nil if absent
func (s *MemoryStorage) GetRoomCategory(id int64) (*RoomCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rc := range s.categories {
		if rc.ID == id {
			category := rc
			return &category, nil
		}
	}
	return nil, nil
}

// GetRoomCategoryByName returns the category of the hotel whose display name
// matches exactly, or nil
func (s *MemoryStorage) GetRoomCategoryByName(hotelID int64, name string) (*RoomCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rc := range s.categories {
		if rc.HotelID == hotelID && rc.Name == name {
			category := rc
			return &category, nil
		}
	}
	return nil, nil
}

// ListActiveBookings returns the user's non-cancelled bookings, most recent first
func (s *MemoryStorage) ListActiveBookings(userID int64) ([]BookingView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var views []BookingView
	for _, b := range s.bookings {
		if b.UserID == userID && b.Status != BookingStatusCancelled {
			views = append(views, s.viewLocked(b))
		}
	}
	sort.Slice(views, func(i, j int) bool { return views[i].ID > views[j].ID })
	return views, nil
}

// ListActiveBookingRanges returns the raw date ranges of the user's
// non-cancelled bookings
func (s *MemoryStorage) ListActiveBookingRanges(userID int64) ([]Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var bookings []Booking
	for _, b := range s.bookings {
		if b.UserID == userID && b.Status != BookingStatusCancelled {
			bookings = append(bookings, b)
		}
	}
	return bookings, nil
}

// GetBooking returns the user's booking with the given ID, or nil if it does
// not exist or belongs to a different user
func (s *MemoryStorage) GetBooking(id, userID int64) (*BookingView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.bookings {
		if b.ID == id && b.UserID == userID {
			view := s.viewLocked(b)
			return &view, nil
		}
	}
	return nil, nil
}

// InsertBooking creates a booking with status "requested" and returns its ID
func (s *MemoryStorage) InsertBooking(userID, hotelID, roomCategoryID int64, checkIn, checkOut time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextBookingID
	s.nextBookingID++
	s.bookings = append(s.bookings, Booking{
		ID:             id,
		UserID:         userID,
		HotelID:        hotelID,
		RoomCategoryID: roomCategoryID,
		CheckIn:        checkIn,
		CheckOut:       checkOut,
		Status:         BookingStatusRequested,
		CreatedAt:      time.Now().UTC(),
	})
	return id, nil
}

// SetBookingStatus updates the status of a booking
func (s *MemoryStorage) SetBookingStatus(id int64, status BookingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bookings {
		if s.bookings[i].ID == id {
			s.bookings[i].Status = status
			return nil
		}
	}
	return nil
}

// Close is a no-op for the in-memory storage
func (s *MemoryStorage) Close() error {
	return nil
}

func (s *MemoryStorage) viewLocked(b Booking) BookingView {
	view := BookingView{
		ID:       b.ID,
		CheckIn:  b.CheckIn,
		CheckOut: b.CheckOut,
		Status:   b.Status,
	}
	for _, h := range s.hotels {
		if h.ID == b.HotelID {
			view.HotelName = h.Name
		}
	}
	for _, rc := range s.categories {
		if rc.ID == b.RoomCategoryID {
			view.RoomCategoryName = rc.Name
		}
	}
	return view
}
