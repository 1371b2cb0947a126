// Package persist coalesces rapid position writes into debounced store
// calls: at most one pending write per item, always carrying the latest
// coordinates at fire time.
package persist

import (
	"context"
	"sync"
	"time"

	"corkboard-cli/internal/model"
)

// DefaultDelay is the reference debounce window for drag repositioning.
const DefaultDelay = 500 * time.Millisecond

// PositionWriter is the slice of the item store this package needs.
type PositionWriter interface {
	UpdateItemPosition(ctx context.Context, itemID string, x, y float64) error
}

// Scheduler owns one debounce timer per item id. Scheduling a position for
// an item that already has a live timer cancels and restarts it, so rapid
// drags of the same item produce exactly one persisted write.
//
// Pending writes survive view teardown: callers must Flush before
// discarding the scheduler or data is silently lost.
type Scheduler struct {
	writer  PositionWriter
	delay   time.Duration
	onError func(itemID string, err error)

	mu      sync.Mutex
	timers  map[string]*time.Timer
	pending map[string]model.Position
}

func NewScheduler(w PositionWriter, delay time.Duration, onError func(itemID string, err error)) *Scheduler {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if onError == nil {
		onError = func(string, error) {}
	}
	return &Scheduler{
		writer:  w,
		delay:   delay,
		onError: onError,
		timers:  map[string]*time.Timer{},
		pending: map[string]model.Position{},
	}
}

// Schedule records pos as the item's latest coordinates and (re)arms its
// debounce timer.
func (s *Scheduler) Schedule(itemID string, pos model.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduleLocked(itemID, pos)
}

// ScheduleAll schedules a batch of placements as one logical operation
// (used by auto-arrange). Each item still follows the per-item debounce
// discipline, so a manual drag right after an arrange coalesces correctly.
func (s *Scheduler) ScheduleAll(placements map[string]model.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, pos := range placements {
		s.scheduleLocked(id, pos)
	}
}

func (s *Scheduler) scheduleLocked(itemID string, pos model.Position) {
	s.pending[itemID] = pos
	if t, ok := s.timers[itemID]; ok {
		t.Stop()
	}
	s.timers[itemID] = time.AfterFunc(s.delay, func() { s.fire(itemID) })
}

func (s *Scheduler) fire(itemID string) {
	s.mu.Lock()
	pos, ok := s.pending[itemID]
	if ok {
		delete(s.pending, itemID)
		delete(s.timers, itemID)
	}
	s.mu.Unlock()
	if !ok {
		// A Flush (or a newer Schedule's fire) already took it.
		return
	}
	if err := s.writer.UpdateItemPosition(context.Background(), itemID, pos.X, pos.Y); err != nil {
		s.onError(itemID, err)
	}
}

// Flush writes every pending position immediately and stops all timers.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	batch := s.pending
	s.pending = map[string]model.Position{}
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()

	for id, pos := range batch {
		if err := s.writer.UpdateItemPosition(context.Background(), id, pos.X, pos.Y); err != nil {
			s.onError(id, err)
		}
	}
}

// PendingCount reports how many items have an unflushed write.
func (s *Scheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
