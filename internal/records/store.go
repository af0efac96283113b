// Package records provides a generic in-memory entity store with sequential,
// prefix-scoped ids.
package records

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"sync"
	"time"
)

// ErrNotFound is returned by callers that need to surface a missing id as an error.
// Store methods themselves report absence through their boolean results.
var ErrNotFound = errors.New("record not found")

// DateLayout is the calendar-date format used for CreatedAt.
const DateLayout = "2006-01-02"

var trailingDigits = regexp.MustCompile(`(\d+)$`)

// Meta holds the identity fields every stored record carries.
type Meta struct {
	ID        string `json:"id" yaml:"id"`
	CreatedAt string `json:"created_at" yaml:"created_at"`
}

// RecordMeta exposes the embedded metadata to the store.
func (m *Meta) RecordMeta() *Meta { return m }

// Record is satisfied by pointers to structs that embed Meta.
type Record[T any] interface {
	*T
	RecordMeta() *Meta
}

// Config parameterizes a Store.
type Config[T any] struct {
	// IDPrefix is prepended to the zero-padded sequence number, e.g. "CLT".
	IDPrefix string
	// Now defaults to time.Now.
	Now func() time.Time
	// BeforeCreate may fill in derived fields on a new record.
	BeforeCreate func(*T)

	OnCreated func(T)
	OnUpdated func(T)
	OnDeleted func(T)
}

// Store is a mutex-guarded collection of records of one kind.
type Store[T any, P Record[T]] struct {
	cfg Config[T]

	mu    sync.RWMutex
	items []T
}

// New returns a store seeded with a copy of initial.
func New[T any, P Record[T]](cfg Config[T], initial []T) *Store[T, P] {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	items := make([]T, len(initial))
	copy(items, initial)
	return &Store[T, P]{cfg: cfg, items: items}
}

// Prefix returns the id prefix of the store.
func (s *Store[T, P]) Prefix() string {
	return s.cfg.IDPrefix
}

// Create assigns the next id and today's date to fields, stores it and returns
// the stored record.
func (s *Store[T, P]) Create(fields T) T {
	s.mu.Lock()
	record := fields
	meta := Meta{
		ID:        s.nextIDLocked(),
		CreatedAt: s.cfg.Now().Format(DateLayout),
	}
	*P(&record).RecordMeta() = meta
	if s.cfg.BeforeCreate != nil {
		s.cfg.BeforeCreate(&record)
		*P(&record).RecordMeta() = meta
	}
	s.items = append(s.items, record)
	s.mu.Unlock()

	if s.cfg.OnCreated != nil {
		s.cfg.OnCreated(record)
	}
	return record
}

// Update applies patch to the record with the given id. ID and CreatedAt are
// restored after the patch runs. It reports whether the record existed.
func (s *Store[T, P]) Update(id string, patch func(*T)) bool {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	found := s.items[idx]
	merged := found
	meta := *P(&found).RecordMeta()
	if patch != nil {
		patch(&merged)
	}
	*P(&merged).RecordMeta() = meta
	s.items[idx] = merged
	s.mu.Unlock()

	if s.cfg.OnUpdated != nil {
		s.cfg.OnUpdated(found)
	}
	return true
}

// Delete removes the record with the given id and reports whether it existed.
func (s *Store[T, P]) Delete(id string) bool {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	removed := s.items[idx]
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	s.mu.Unlock()

	if s.cfg.OnDeleted != nil {
		s.cfg.OnDeleted(removed)
	}
	return true
}

// FindByID returns the record with the given id, if present.
func (s *Store[T, P]) FindByID(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		var zero T
		return zero, false
	}
	return s.items[idx], true
}

// Items returns a copy of all records in insertion order.
func (s *Store[T, P]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of stored records.
func (s *Store[T, P]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store[T, P]) indexLocked(id string) int {
	for i := range s.items {
		if P(&s.items[i]).RecordMeta().ID == id {
			return i
		}
	}
	return -1
}

// nextIDLocked scans existing ids for their trailing number and increments the
// maximum. Deleting the highest id therefore frees it for reuse.
func (s *Store[T, P]) nextIDLocked() string {
	maxSeq := 0
	for i := range s.items {
		m := trailingDigits.FindStringSubmatch(P(&s.items[i]).RecordMeta().ID)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > maxSeq {
			maxSeq = n
		}
	}
	return FormatID(s.cfg.IDPrefix, maxSeq+1)
}

// FormatID renders a prefixed, zero-padded id such as CLT-007.
func FormatID(prefix string, seq int) string {
	return fmt.Sprintf("%s-%03d", prefix, seq)
}
