// Package worker runs the background maintenance loop: it discards
// guided-form sessions their users abandoned mid-flow.
package worker

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// SessionReaper is the part of the bot the worker drives.
type SessionReaper interface {
	ReapIdleSessions(ttl time.Duration) int
}

// Reaper periodically drops idle guided-form sessions
type Reaper struct {
	target       SessionReaper
	ttl          time.Duration
	interval     time.Duration
	stopCh       chan struct{}
	wg           sync.WaitGroup
	isRunning    bool
	runningMutex sync.Mutex
	logger       *zap.Logger
}

// NewReaper creates a reaper dropping sessions idle longer than ttl. A zero
// ttl disables the reaper entirely.
func NewReaper(target SessionReaper, ttl time.Duration, logger *zap.Logger) *Reaper {
	return &Reaper{
		target:   target,
		ttl:      ttl,
		interval: time.Hour,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

// Start starts the background loop
func (r *Reaper) Start() {
	r.runningMutex.Lock()
	defer r.runningMutex.Unlock()

	if r.isRunning || r.ttl <= 0 {
		return
	}
	r.isRunning = true

	r.wg.Add(1)
	go r.run()
}

// Stop stops the background loop and waits for it to finish
func (r *Reaper) Stop() {
	r.runningMutex.Lock()
	defer r.runningMutex.Unlock()

	if !r.isRunning {
		return
	}
	close(r.stopCh)
	r.wg.Wait()
	r.isRunning = false
}

func (r *Reaper) run() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := r.target.ReapIdleSessions(r.ttl); removed > 0 {
				r.logger.Info("Discarded idle form sessions", zap.Int("count", removed))
			}
		case <-r.stopCh:
			return
		}
	}
}
