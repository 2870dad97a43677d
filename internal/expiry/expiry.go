// Package expiry holds values that disappear after a fixed time to live.
//
// Reads take an explicit "now" and never return expired entries, whether or
// not they have been swept yet.
package expiry

import (
	"sort"
	"time"
)

type entry[T any] struct {
	id      uint64
	value   T
	expires time.Time
}

// Set is not safe for concurrent use; the scene touches it only from its
// loop goroutine.
type Set[T any] struct {
	ttl     time.Duration
	next    uint64
	entries []entry[T]
}

func New[T any](ttl time.Duration) *Set[T] {
	return &Set[T]{ttl: ttl}
}

func (s *Set[T]) TTL() time.Duration { return s.ttl }

// SetTTL applies to entries inserted from now on.
func (s *Set[T]) SetTTL(ttl time.Duration) { s.ttl = ttl }

// Insert adds v at now and returns its id and expiry time.
func (s *Set[T]) Insert(v T, now time.Time) (uint64, time.Time) {
	s.next++
	exp := now.Add(s.ttl)
	s.entries = append(s.entries, entry[T]{id: s.next, value: v, expires: exp})
	return s.next, exp
}

// Item is a live entry as seen by Items.
type Item[T any] struct {
	ID      uint64
	Value   T
	Expires time.Time
}

// Items returns the entries still alive at now, oldest first.
func (s *Set[T]) Items(now time.Time) []Item[T] {
	var out []Item[T]
	for _, e := range s.entries {
		if now.Before(e.expires) {
			out = append(out, Item[T]{ID: e.id, Value: e.value, Expires: e.expires})
		}
	}
	return out
}

// Live returns the values still alive at now, oldest first.
func (s *Set[T]) Live(now time.Time) []T {
	var out []T
	for _, e := range s.entries {
		if now.Before(e.expires) {
			out = append(out, e.value)
		}
	}
	return out
}

func (s *Set[T]) Len(now time.Time) int {
	n := 0
	for _, e := range s.entries {
		if now.Before(e.expires) {
			n++
		}
	}
	return n
}

// Sweep drops expired entries and reports how many were removed.
func (s *Set[T]) Sweep(now time.Time) int {
	kept := s.entries[:0]
	for _, e := range s.entries {
		if now.Before(e.expires) {
			kept = append(kept, e)
		}
	}
	removed := len(s.entries) - len(kept)
	clear(s.entries[len(kept):])
	s.entries = kept
	return removed
}

// Remove drops the entry with id ahead of its expiry.
func (s *Set[T]) Remove(id uint64) bool {
	i := sort.Search(len(s.entries), func(i int) bool { return s.entries[i].id >= id })
	if i == len(s.entries) || s.entries[i].id != id {
		return false
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	return true
}

// NextExpiry is the earliest pending expiry, if any entry remains.
func (s *Set[T]) NextExpiry() (time.Time, bool) {
	if len(s.entries) == 0 {
		return time.Time{}, false
	}
	earliest := s.entries[0].expires
	for _, e := range s.entries[1:] {
		if e.expires.Before(earliest) {
			earliest = e.expires
		}
	}
	return earliest, true
}
