// Package repository holds what every store driver shares: sentinel errors,
// date ranges and the watch/subscription plumbing.
package repository

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
	// ErrSlotTaken is returned when a confirmed appointment already holds the slot.
	ErrSlotTaken = errors.New("time slot is already booked")
)

// DateRange is an inclusive range of "YYYY-MM-DD" dates.
type DateRange struct {
	From string
	To   string
}

// Day is the range covering a single date.
func Day(date string) DateRange {
	return DateRange{From: date, To: date}
}

// Month is "YYYY-MM-01" to "YYYY-MM-31". Day 31 is fine for short months
// because dates compare as strings.
func Month(month string) DateRange {
	return DateRange{From: month + "-01", To: month + "-31"}
}

func (r DateRange) Contains(date string) bool {
	return date >= r.From && date <= r.To
}

// Subscription is the handle returned by a watch. The owner must Close it;
// once Close returns no further callbacks are delivered.
type Subscription interface {
	Close() error
}

type subscription struct {
	once   sync.Once
	cancel context.CancelFunc
	done   <-chan struct{}
	stop   func()
}

// NewSubscription wraps the cancel function of a watch goroutine and the
// channel it closes on exit. stop, when set, runs after cancel.
func NewSubscription(cancel context.CancelFunc, done <-chan struct{}, stop func()) Subscription {
	return &subscription{cancel: cancel, done: done, stop: stop}
}

func (s *subscription) Close() error {
	s.once.Do(func() {
		s.cancel()
		if s.stop != nil {
			s.stop()
		}
		<-s.done
	})
	return nil
}

// WatchLoop calls fn with a fresh load right away and again after every
// signal on changes, until ctx ends or a load fails. A failed load is
// delivered to fn and ends the watch. stop runs when the subscription closes.
func WatchLoop[T any](ctx context.Context, changes <-chan struct{}, load func(context.Context) ([]T, error), fn func([]T, error), stop func()) Subscription {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			items, err := load(ctx)
			if ctx.Err() != nil {
				return
			}
			fn(items, err)
			if err != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
			}
		}
	}()

	return NewSubscription(cancel, done, stop)
}

// Hub fans change signals out to the subscribers of one professional.
// Signals coalesce: a subscriber that is busy reloading sees one pending change.
type Hub struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]chan struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[int]chan struct{})}
}

// Subscribe returns the signal channel and the function that removes it.
func (h *Hub) Subscribe(professionalID string) (<-chan struct{}, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan struct{}, 1)
	id := h.next
	h.next++
	if h.subs[professionalID] == nil {
		h.subs[professionalID] = make(map[int]chan struct{})
	}
	h.subs[professionalID][id] = ch

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs[professionalID], id)
		if len(h.subs[professionalID]) == 0 {
			delete(h.subs, professionalID)
		}
	}
}

// Notify signals every subscriber of professionalID without blocking.
func (h *Hub) Notify(professionalID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[professionalID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscribers reports how many watches are open for professionalID.
func (h *Hub) Subscribers(professionalID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[professionalID])
}
