// Package notify delivers operator notifications about booking activity.
// Delivery is fire and forget: callers log failures and move on, a failed
// notification never rolls back a committed booking.
package notify

import (
	"context"
	"time"
)

// Action tags what happened to a booking.
type Action string

const (
	ActionCreated   Action = "created"
	ActionCancelled Action = "cancelled"
)

// Event carries everything the operator message needs.
type Event struct {
	Action           Action
	UserID           int64
	Username         string
	HotelName        string
	RoomCategoryName string
	CheckIn          time.Time
	CheckOut         time.Time
}

// Notifier is the operator-notification collaborator. Implementations decide
// the channel (Telegram admin chat, console, ...).
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}
