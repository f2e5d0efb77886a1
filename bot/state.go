package bot

import (
	"sync"
	"time"
)

// FormStep represents the current step of a user's guided booking form
type FormStep int

const (
	StepChoosingHotel FormStep = iota + 1
	StepChoosingRoom
	StepEnteringDates
	StepConfirming
)

// FormState accumulates the user's selections across the guided form.
// It exists only for the duration of a session and is discarded on
// completion, cancellation, or by the idle-session reaper.
type FormState struct {
	Step             FormStep
	HotelID          int64
	HotelName        string
	RoomCategoryID   int64
	RoomCategoryName string
	CheckIn          time.Time
	CheckOut         time.Time
	UpdatedAt        time.Time
}

// sessionStore keys guided-form state by user ID. It is owned by this
// package alone; nothing outside the bot touches conversation state.
type sessionStore struct {
	mu     sync.Mutex
	states map[int64]*FormState
}

func newSessionStore() *sessionStore {
	return &sessionStore{states: make(map[int64]*FormState)}
}

func (s *sessionStore) Get(userID int64) *FormState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[userID]
}

func (s *sessionStore) Put(userID int64, state *FormState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state.UpdatedAt = time.Now()
	s.states[userID] = state
}

// Touch refreshes the idle timer after a state mutation done in place.
func (s *sessionStore) Touch(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.states[userID]; ok {
		state.UpdatedAt = time.Now()
	}
}

func (s *sessionStore) Delete(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, userID)
}

// DeleteIdle removes sessions untouched for longer than ttl and returns how
// many were dropped.
func (s *sessionStore) DeleteIdle(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-ttl)
	removed := 0
	for userID, state := range s.states {
		if state.UpdatedAt.Before(cutoff) {
			delete(s.states, userID)
			removed++
		}
	}
	return removed
}
