// Package mirror holds read-only copies of backend listings for rendering.
// A mirror is never authoritative: it is replaced wholesale by each fetch and
// dropped when the session ends.
package mirror

import (
	"sync"
	"time"
)

// Snapshot is a point-in-time copy of a mirrored listing.
type Snapshot[T any] struct {
	Items     []T
	Total     int
	FetchedAt time.Time
}

// Empty reports whether nothing has been fetched since the last reset.
func (s Snapshot[T]) Empty() bool {
	return s.FetchedAt.IsZero()
}

type List[T any] struct {
	mu    sync.RWMutex
	snap  Snapshot[T]
	clock func() time.Time
}

func NewList[T any]() *List[T] {
	return &List[T]{clock: time.Now}
}

// Replace stores a copy of items as the latest fetch.
func (l *List[T]) Replace(items []T, total int) {
	copied := append([]T(nil), items...)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snap = Snapshot[T]{Items: copied, Total: total, FetchedAt: l.clock()}
}

func (l *List[T]) Snapshot() Snapshot[T] {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s := l.snap
	s.Items = append([]T(nil), s.Items...)
	return s
}

// Find returns the first mirrored item match accepts.
func (l *List[T]) Find(match func(T) bool) (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, item := range l.snap.Items {
		if match(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func (l *List[T]) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snap = Snapshot[T]{}
}
