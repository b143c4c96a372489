// Package history keeps the capped, deduplicated list of past lookups and the
// selection used for bulk deletion.
package history

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"ipgeo-client/internal/models"
	"ipgeo-client/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultKey is the storage key the history is persisted under.
	DefaultKey = "geoclient_geo_history"
	// DefaultLimit is the maximum number of entries kept.
	DefaultLimit = 50
)

// Store owns the ordered history (newest first) and the selection set.
// Storage failures are logged and swallowed: history is best effort.
type Store struct {
	mu       sync.Mutex
	kv       storage.KeyValue
	log      zerolog.Logger
	key      string
	limit    int
	now      func() time.Time
	newID    func() string
	entries  []models.HistoryEntry
	selected map[string]struct{}
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithLimit overrides the entry cap. Non-positive values are ignored.
func WithLimit(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithClock sets the time source for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator sets the entry id source.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithLogger sets the logger used for swallowed storage errors.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// NewStore creates a store on kv and hydrates it from storage.
func NewStore(ctx context.Context, kv storage.KeyValue, opts ...Option) *Store {
	s := &Store{
		kv:       kv,
		log:      zerolog.Nop(),
		key:      DefaultKey,
		limit:    DefaultLimit,
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
		selected: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Load(ctx)
	return s
}

// Load rereads the persisted history, replacing the in-memory list. Missing,
// unreadable or malformed data yields an empty history.
func (s *Store) Load(ctx context.Context) []models.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = s.read(ctx)
	s.pruneSelectionLocked()
	return s.snapshotLocked()
}

// Entries returns a copy of the current history, newest first.
func (s *Store) Entries() []models.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Find returns the entry recorded for ip.
func (s *Store) Find(ip string) (models.HistoryEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.IP == ip {
			return e, true
		}
	}
	return models.HistoryEntry{}, false
}

// Add records a lookup. Any previous entry for the same ip is replaced, the new
// entry goes first and the list is cut to the limit before being persisted.
func (s *Store) Add(ctx context.Context, ip string, geo models.GeoRecord) models.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now().UnixMilli()
	for _, e := range s.entries {
		if e.Timestamp > ts {
			ts = e.Timestamp
		}
	}

	entry := models.HistoryEntry{
		ID:        s.newID(),
		IP:        ip,
		GeoData:   geo,
		Timestamp: ts,
	}

	next := make([]models.HistoryEntry, 0, len(s.entries)+1)
	next = append(next, entry)
	for _, e := range s.entries {
		if e.IP != ip {
			next = append(next, e)
		}
	}
	if len(next) > s.limit {
		next = next[:s.limit]
	}

	s.entries = next
	s.pruneSelectionLocked()
	s.persistLocked(ctx)
	return entry
}

// Remove deletes every entry whose id is in ids. Survivors keep their order.
func (s *Store) Remove(ctx context.Context, ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	next := make([]models.HistoryEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if _, ok := drop[e.ID]; !ok {
			next = append(next, e)
		}
	}

	s.entries = next
	s.pruneSelectionLocked()
	s.persistLocked(ctx)
}

// Clear empties the history and the selection.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	s.selected = make(map[string]struct{})
	s.persistLocked(ctx)
}

// Toggle flips the selection of id. Unknown ids are ignored.
func (s *Store) Toggle(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
		return
	}
	if s.indexLocked(id) >= 0 {
		s.selected[id] = struct{}{}
	}
}

// ToggleAll clears the selection when every entry is selected and selects
// every entry otherwise.
func (s *Store) ToggleAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.selected) == len(s.entries) {
		s.selected = make(map[string]struct{})
		return
	}
	s.selected = make(map[string]struct{}, len(s.entries))
	for _, e := range s.entries {
		s.selected[e.ID] = struct{}{}
	}
}

// ClearSelection deselects everything.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = make(map[string]struct{})
}

// Selected returns the selected ids in history order.
func (s *Store) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.selected))
	for _, e := range s.entries {
		if _, ok := s.selected[e.ID]; ok {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// IsSelected reports whether id is selected.
func (s *Store) IsSelected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.selected[id]
	return ok
}

// AllSelected reports whether a non-empty history is fully selected.
func (s *Store) AllSelected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries) > 0 && len(s.selected) == len(s.entries)
}

func (s *Store) indexLocked(id string) int {
	for i, e := range s.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) pruneSelectionLocked() {
	if len(s.selected) == 0 {
		return
	}
	live := make(map[string]struct{}, len(s.entries))
	for _, e := range s.entries {
		live[e.ID] = struct{}{}
	}
	for id := range s.selected {
		if _, ok := live[id]; !ok {
			delete(s.selected, id)
		}
	}
}

func (s *Store) snapshotLocked() []models.HistoryEntry {
	out := make([]models.HistoryEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Store) read(ctx context.Context) []models.HistoryEntry {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", s.key).Msg("history: read failed, starting empty")
		return nil
	}
	if !ok || raw == "" {
		return nil
	}

	var stored []models.HistoryEntry
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		s.log.Warn().Err(err).Str("key", s.key).Msg("history: malformed data, starting empty")
		return nil
	}

	seen := make(map[string]struct{}, len(stored))
	entries := make([]models.HistoryEntry, 0, len(stored))
	for _, e := range stored {
		if e.ID == "" || e.IP == "" {
			continue
		}
		if _, dup := seen[e.IP]; dup {
			continue
		}
		seen[e.IP] = struct{}{}
		entries = append(entries, e)
		if len(entries) == s.limit {
			break
		}
	}
	return entries
}

func (s *Store) persistLocked(ctx context.Context) {
	list := s.entries
	if list == nil {
		list = []models.HistoryEntry{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		s.log.Warn().Err(err).Msg("history: encode failed")
		return
	}
	if err := s.kv.Set(ctx, s.key, string(raw)); err != nil {
		s.log.Warn().Err(err).Str("key", s.key).Msg("history: write failed")
	}
}
