package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// SQLiteStorage represents a persistent storage using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dbPath == "" {
		dbPath = "hotelbooking.db" // Default database file
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Create tables if they don't exist
	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	if err := seedHotels(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed hotels: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// createTables creates the necessary tables in the database
func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS hotels (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT UNIQUE NOT NULL,
			description TEXT,
			address TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create hotels table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS room_categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			hotel_id INTEGER NOT NULL REFERENCES hotels(id),
			name TEXT NOT NULL,
			description TEXT,
			-- Stored as text so decimal prices round-trip exactly
			price TEXT NOT NULL DEFAULT '0'
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create room_categories table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS bookings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			hotel_id INTEGER NOT NULL REFERENCES hotels(id),
			room_category_id INTEGER NOT NULL REFERENCES room_categories(id),
			check_in TEXT NOT NULL,
			check_out TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'requested',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create bookings table: %w", err)
	}

	// Index for the per-user overlap and listing queries
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_bookings_user_status ON bookings(user_id, status)`)
	if err != nil {
		return fmt.Errorf("failed to create bookings index: %w", err)
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_room_categories_hotel ON room_categories(hotel_id)`)
	if err != nil {
		zap.L().Warn("failed to create room_categories index", zap.Error(err))
	}

	return nil
}

// seedHotels inserts the initial hotel set on an empty database
func seedHotels(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM hotels").Scan(&count); err != nil {
		return fmt.Errorf("failed to count hotels: %w", err)
	}
	if count > 0 {
		return nil
	}

	seed := []struct {
		name, description string
	}{
		{"Альфа", "Описание гостиницы Альфа"},
		{"Бетта", "Описание гостиницы Бетта"},
		{"Гамма-Дельта", "Описание гостиницы Гамма-Дельта"},
	}
	for _, h := range seed {
		if _, err := db.Exec("INSERT INTO hotels (name, description) VALUES (?, ?)", h.name, h.description); err != nil {
			return fmt.Errorf("failed to insert hotel %q: %w", h.name, err)
		}
	}
	zap.L().Info("Seeded initial hotels", zap.Int("count", len(seed)))
	return nil
}

// ListHotels returns all hotels ordered by the given sort key
func (s *SQLiteStorage) ListHotels(sortKey string, desc bool) ([]Hotel, error) {
	// Sort keys are whitelisted, never interpolated from raw input
	orderField := "name"
	if sortKey == "created" {
		orderField = "created_at"
	}
	order := "ASC"
	if desc {
		order = "DESC"
	}

	rows, err := s.db.Query(fmt.Sprintf(
		"SELECT id, name, COALESCE(description, ''), COALESCE(address, '') FROM hotels ORDER BY %s %s",
		orderField, order))
	if err != nil {
		return nil, fmt.Errorf("failed to query hotels: %w", err)
	}
	defer rows.Close()

	var hotels []Hotel
	for rows.Next() {
		var h Hotel
		if err := rows.Scan(&h.ID, &h.Name, &h.Description, &h.Address); err != nil {
			return nil, fmt.Errorf("failed to scan hotel row: %w", err)
		}
		hotels = append(hotels, h)
	}
	return hotels, rows.Err()
}

// GetHotel returns the hotel with the given ID, or nil if absent
func (s *SQLiteStorage) GetHotel(id int64) (*Hotel, error) {
	return s.scanHotel(s.db.QueryRow(
		"SELECT id, name, COALESCE(description, ''), COALESCE(address, '') FROM hotels WHERE id = ?", id))
}

// GetHotelByName returns the hotel whose display name matches exactly, or nil
func (s *SQLiteStorage) GetHotelByName(name string) (*Hotel, error) {
	return s.scanHotel(s.db.QueryRow(
		"SELECT id, name, COALESCE(description, ''), COALESCE(address, '') FROM hotels WHERE name = ?", name))
}

func (s *SQLiteStorage) scanHotel(row *sql.Row) (*Hotel, error) {
	var h Hotel
	err := row.Scan(&h.ID, &h.Name, &h.Description, &h.Address)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan hotel: %w", err)
	}
	return &h, nil
}

// ListRoomCategories returns all room categories of a hotel
func (s *SQLiteStorage) ListRoomCategories(hotelID int64) ([]RoomCategory, error) {
	rows, err := s.db.Query(
		"SELECT id, hotel_id, name, COALESCE(description, ''), price FROM room_categories WHERE hotel_id = ? ORDER BY id",
		hotelID)
	if err != nil {
		return nil, fmt.Errorf("failed to query room categories: %w", err)
	}
	defer rows.Close()

	var categories []RoomCategory
	for rows.Next() {
		rc, err := scanRoomCategoryRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *rc)
	}
	return categories, rows.Err()
}

// GetRoomCategory returns the room category with the given ID, or nil if absent
func (s *SQLiteStorage) GetRoomCategory(id int64) (*RoomCategory, error) {
	row := s.db.QueryRow(
		"SELECT id, hotel_id, name, COALESCE(description, ''), price FROM room_categories WHERE id = ?", id)
	rc, err := scanRoomCategoryRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rc, err
}

// GetRoomCategoryByName returns the category of the hotel whose display name
// matches exactly, or nil
func (s *SQLiteStorage) GetRoomCategoryByName(hotelID int64, name string) (*RoomCategory, error) {
	row := s.db.QueryRow(
		"SELECT id, hotel_id, name, COALESCE(description, ''), price FROM room_categories WHERE hotel_id = ? AND name = ?",
		hotelID, name)
	rc, err := scanRoomCategoryRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rc, err
}

func scanRoomCategoryRow(scan func(...any) error) (*RoomCategory, error) {
	var rc RoomCategory
	var price string
	err := scan(&rc.ID, &rc.HotelID, &rc.Name, &rc.Description, &price)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan room category: %w", err)
	}
	rc.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("invalid stored price %q: %w", price, err)
	}
	return &rc, nil
}

// ListActiveBookings returns the user's non-cancelled bookings, most recent first
func (s *SQLiteStorage) ListActiveBookings(userID int64) ([]BookingView, error) {
	rows, err := s.db.Query(`
		SELECT b.id, h.name, rc.name, b.check_in, b.check_out, b.status
		FROM bookings b
		JOIN hotels h ON b.hotel_id = h.id
		JOIN room_categories rc ON b.room_category_id = rc.id
		WHERE b.user_id = ? AND b.status != ?
		ORDER BY b.created_at DESC, b.id DESC
	`, userID, BookingStatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("failed to query user bookings: %w", err)
	}
	defer rows.Close()

	var views []BookingView
	for rows.Next() {
		v, err := scanBookingViewRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, rows.Err()
}

// ListActiveBookingRanges returns the raw date ranges of the user's
// non-cancelled bookings
func (s *SQLiteStorage) ListActiveBookingRanges(userID int64) ([]Booking, error) {
	rows, err := s.db.Query(
		"SELECT id, user_id, hotel_id, room_category_id, check_in, check_out, status FROM bookings WHERE user_id = ? AND status != ?",
		userID, BookingStatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("failed to query booking ranges: %w", err)
	}
	defer rows.Close()

	var bookings []Booking
	for rows.Next() {
		var b Booking
		var in, out, status string
		if err := rows.Scan(&b.ID, &b.UserID, &b.HotelID, &b.RoomCategoryID, &in, &out, &status); err != nil {
			return nil, fmt.Errorf("failed to scan booking row: %w", err)
		}
		if b.CheckIn, err = time.Parse(dateLayout, in); err != nil {
			return nil, fmt.Errorf("invalid stored check_in %q: %w", in, err)
		}
		if b.CheckOut, err = time.Parse(dateLayout, out); err != nil {
			return nil, fmt.Errorf("invalid stored check_out %q: %w", out, err)
		}
		b.Status = BookingStatus(status)
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// GetBooking returns the user's booking with the given ID, or nil if it does
// not exist or belongs to a different user
func (s *SQLiteStorage) GetBooking(id, userID int64) (*BookingView, error) {
	row := s.db.QueryRow(`
		SELECT b.id, h.name, rc.name, b.check_in, b.check_out, b.status
		FROM bookings b
		JOIN hotels h ON b.hotel_id = h.id
		JOIN room_categories rc ON b.room_category_id = rc.id
		WHERE b.id = ? AND b.user_id = ?
	`, id, userID)
	v, err := scanBookingViewRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return v, err
}

func scanBookingViewRow(scan func(...any) error) (*BookingView, error) {
	var v BookingView
	var in, out, status string
	err := scan(&v.ID, &v.HotelName, &v.RoomCategoryName, &in, &out, &status)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan booking view: %w", err)
	}
	if v.CheckIn, err = time.Parse(dateLayout, in); err != nil {
		return nil, fmt.Errorf("invalid stored check_in %q: %w", in, err)
	}
	if v.CheckOut, err = time.Parse(dateLayout, out); err != nil {
		return nil, fmt.Errorf("invalid stored check_out %q: %w", out, err)
	}
	v.Status = BookingStatus(status)
	return &v, nil
}

// InsertBooking creates a booking with status "requested" and returns its ID
func (s *SQLiteStorage) InsertBooking(userID, hotelID, roomCategoryID int64, checkIn, checkOut time.Time) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO bookings (user_id, hotel_id, room_category_id, check_in, check_out, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`, userID, hotelID, roomCategoryID,
		checkIn.Format(dateLayout), checkOut.Format(dateLayout), BookingStatusRequested)
	if err != nil {
		return 0, fmt.Errorf("failed to insert booking: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted booking id: %w", err)
	}
	return id, nil
}

// SetBookingStatus updates the status of a booking
func (s *SQLiteStorage) SetBookingStatus(id int64, status BookingStatus) error {
	if _, err := s.db.Exec("UPDATE bookings SET status = ? WHERE id = ?", status, id); err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	return nil
}

// Close closes the underlying database
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
