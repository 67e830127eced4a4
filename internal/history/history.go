// Package history keeps the formulas rendered during a session.
package history

import (
	"strings"
	"time"
)

// TimeLayout formats CapturedAt like a locale time string.
const TimeLayout = "15:04:05"

// Entry is a remembered formula.
type Entry struct {
	Text       string
	MathMode   bool
	CapturedAt string
}

// Store is an ordered, de-duplicated list of entries, newest first. It is
// owned by a single session and is not safe for concurrent use.
type Store struct {
	entries []Entry
	now     func() time.Time
}

// New returns an empty store using the wall clock.
func New() *Store {
	return &Store{now: time.Now}
}

// NewWithClock returns an empty store reading time from now.
func NewWithClock(now func() time.Time) *Store {
	return &Store{now: now}
}

// Append records text unless it is blank or already present verbatim. It
// reports whether an entry was added.
func (s *Store) Append(text string, mathMode bool) bool {
	if strings.TrimSpace(text) == "" || s.Contains(text) {
		return false
	}
	entry := Entry{
		Text:       text,
		MathMode:   mathMode,
		CapturedAt: s.now().Format(TimeLayout),
	}
	s.entries = append([]Entry{entry}, s.entries...)
	return true
}

// Contains reports whether an entry with exactly text exists.
func (s *Store) Contains(text string) bool {
	for _, entry := range s.entries {
		if entry.Text == text {
			return true
		}
	}
	return false
}

// Clear removes every entry.
func (s *Store) Clear() {
	s.entries = nil
}

// List returns a copy of the entries, newest first.
func (s *Store) List() []Entry {
	return append([]Entry(nil), s.entries...)
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// At returns the entry at index i in List order.
func (s *Store) At(i int) (Entry, bool) {
	if i < 0 || i >= len(s.entries) {
		return Entry{}, false
	}
	return s.entries[i], true
}
