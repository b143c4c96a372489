package history

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"ipgeo-client/internal/models"
	"ipgeo-client/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingKV returns errors for every call.
type failingKV struct{}

func (failingKV) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("storage unavailable")
}
func (failingKV) Set(context.Context, string, string) error { return errors.New("storage unavailable") }
func (failingKV) Remove(context.Context, string) error      { return errors.New("storage unavailable") }

type fixture struct {
	kv    *storage.Memory
	store *Store
	clock *time.Time
}

func newFixture(t *testing.T, opts ...Option) fixture {
	t.Helper()
	kv := storage.NewMemory()
	now := time.UnixMilli(1_700_000_000_000)
	clock := &now
	n := 0
	base := []Option{
		WithClock(func() time.Time { return *clock }),
		WithIDGenerator(func() string {
			n++
			return "id-" + strconv.Itoa(n)
		}),
	}
	store := NewStore(context.Background(), kv, append(base, opts...)...)
	return fixture{kv: kv, store: store, clock: clock}
}

func (f fixture) tick(d time.Duration) { *f.clock = f.clock.Add(d) }

func ips(entries []models.HistoryEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.IP
	}
	return out
}

func TestStore_LoadEdgeCases(t *testing.T) {
	tests := []struct {
		name     string
		raw      *string
		kv       storage.KeyValue
		expected []string
	}{
		{name: "missing key", expected: []string{}},
		{name: "parse failure", raw: ptr("{not json"), expected: []string{}},
		{name: "object instead of array", raw: ptr(`{"id":"a"}`), expected: []string{}},
		{name: "empty string", raw: ptr(""), expected: []string{}},
		{name: "storage error", kv: failingKV{}, expected: []string{}},
		{
			name:     "drops entries without id or ip and duplicate ips",
			raw:      ptr(`[{"id":"1","ip":"1.1.1.1"},{"id":"","ip":"2.2.2.2"},{"id":"3","ip":""},{"id":"4","ip":"1.1.1.1"},{"id":"5","ip":"5.5.5.5"}]`),
			expected: []string{"1.1.1.1", "5.5.5.5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := tt.kv
			if kv == nil {
				mem := storage.NewMemory()
				if tt.raw != nil {
					require.NoError(t, mem.Set(context.Background(), DefaultKey, *tt.raw))
				}
				kv = mem
			}

			store := NewStore(context.Background(), kv)

			assert.Equal(t, tt.expected, ips(store.Entries()))
		})
	}
}

func TestStore_LoadTruncatesOversizedData(t *testing.T) {
	kv := storage.NewMemory()
	raw := "["
	for i := 0; i < 60; i++ {
		if i > 0 {
			raw += ","
		}
		raw += fmt.Sprintf(`{"id":"%d","ip":"10.0.0.%d"}`, i, i)
	}
	raw += "]"
	require.NoError(t, kv.Set(context.Background(), DefaultKey, raw))

	store := NewStore(context.Background(), kv)

	assert.Equal(t, DefaultLimit, store.Len())
}

func TestStore_AddNeverExceedsLimitOrDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 120; i++ {
		ip := fmt.Sprintf("10.0.%d.%d", i%7, i%67)
		f.store.Add(ctx, ip, models.GeoRecord{IP: ip})
		f.tick(time.Millisecond)

		entries := f.store.Entries()
		require.LessOrEqual(t, len(entries), DefaultLimit)
		seen := map[string]bool{}
		for _, e := range entries {
			require.False(t, seen[e.IP], "duplicate ip %s", e.IP)
			seen[e.IP] = true
		}
		require.Equal(t, ip, entries[0].IP)
	}
}

func TestStore_AddEvictsOldest(t *testing.T) {
	f := newFixture(t, WithLimit(3))
	ctx := context.Background()

	for _, ip := range []string{"a", "b", "c", "d"} {
		f.store.Add(ctx, ip, models.GeoRecord{IP: ip})
	}

	assert.Equal(t, []string{"d", "c", "b"}, ips(f.store.Entries()))
}

func TestStore_AddSameIPReplaces(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.store.Add(ctx, "1.1.1.1", models.GeoRecord{IP: "1.1.1.1", City: "Old"})
	f.store.Add(ctx, "9.9.9.9", models.GeoRecord{IP: "9.9.9.9"})
	f.store.Add(ctx, "1.1.1.1", models.GeoRecord{IP: "1.1.1.1", City: "New"})

	entries := f.store.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "1.1.1.1", entries[0].IP)
	assert.Equal(t, "New", entries[0].GeoData.City)
	assert.Equal(t, "9.9.9.9", entries[1].IP)
}

func TestStore_TimestampsNonDecreasing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.store.Add(ctx, "a", models.GeoRecord{IP: "a"})
	f.tick(-time.Hour) // clock moved backwards
	second := f.store.Add(ctx, "b", models.GeoRecord{IP: "b"})

	assert.GreaterOrEqual(t, second.Timestamp, first.Timestamp)
}

func TestStore_ReSearchUpdatesTimestamp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	geo := models.GeoRecord{IP: "8.8.8.8", City: "Mountain View", Country: "US"}

	first := f.store.Add(ctx, "8.8.8.8", geo)
	require.Equal(t, 1, f.store.Len())

	f.tick(5 * time.Second)
	second := f.store.Add(ctx, "8.8.8.8", geo)

	entries := f.store.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "8.8.8.8", entries[0].IP)
	assert.Equal(t, second.ID, entries[0].ID)
	assert.Greater(t, entries[0].Timestamp, first.Timestamp)
}

func TestStore_RemoveSurvivesReload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []string
	for _, ip := range []string{"a", "b", "c", "d", "e"} {
		ids = append(ids, f.store.Add(ctx, ip, models.GeoRecord{IP: ip}).ID)
	}
	// history order is e d c b a
	f.store.Remove(ctx, ids[1], ids[3]) // b, d

	reloaded := NewStore(ctx, f.kv)
	assert.Equal(t, []string{"e", "c", "a"}, ips(reloaded.Entries()))
	assert.Equal(t, []string{"e", "c", "a"}, ips(f.store.Load(ctx)))
}

func TestStore_RemovePrunesSelection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.store.Add(ctx, "a", models.GeoRecord{IP: "a"})
	b := f.store.Add(ctx, "b", models.GeoRecord{IP: "b"})
	c := f.store.Add(ctx, "c", models.GeoRecord{IP: "c"})

	f.store.Toggle(a.ID)
	f.store.Toggle(b.ID)
	f.store.Remove(ctx, a.ID, c.ID)

	assert.False(t, f.store.IsSelected(a.ID))
	assert.False(t, f.store.IsSelected(c.ID))
	assert.Equal(t, []string{b.ID}, f.store.Selected())
}

func TestStore_AddPrunesReplacedSelection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	old := f.store.Add(ctx, "a", models.GeoRecord{IP: "a"})
	f.store.Toggle(old.ID)
	f.store.Add(ctx, "a", models.GeoRecord{IP: "a"})

	assert.Empty(t, f.store.Selected())
}

func TestStore_Clear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e := f.store.Add(ctx, "a", models.GeoRecord{IP: "a"})
	f.store.Toggle(e.ID)
	f.store.Clear(ctx)

	assert.Zero(t, f.store.Len())
	assert.Empty(t, f.store.Selected())

	raw, ok, err := f.kv.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", raw)
}

func TestStore_Toggle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.store.Add(ctx, "a", models.GeoRecord{IP: "a"})

	f.store.Toggle(e.ID)
	assert.True(t, f.store.IsSelected(e.ID))
	f.store.Toggle(e.ID)
	assert.False(t, f.store.IsSelected(e.ID))

	f.store.Toggle("unknown")
	assert.Empty(t, f.store.Selected())
}

func TestStore_ToggleAll(t *testing.T) {
	tests := []struct {
		name      string
		preselect []int
		expected  []int
	}{
		{name: "none selected selects all", preselect: nil, expected: []int{0, 1, 2}},
		{name: "partial selection selects all", preselect: []int{1}, expected: []int{0, 1, 2}},
		{name: "all selected clears", preselect: []int{0, 1, 2}, expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			for _, ip := range []string{"a", "b", "c"} {
				f.store.Add(ctx, ip, models.GeoRecord{IP: ip})
			}
			entries := f.store.Entries()
			for _, i := range tt.preselect {
				f.store.Toggle(entries[i].ID)
			}

			f.store.ToggleAll()

			expected := []string{}
			for _, i := range tt.expected {
				expected = append(expected, entries[i].ID)
			}
			assert.Equal(t, expected, f.store.Selected())
		})
	}
}

func TestStore_ToggleAllTwiceRestores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, ip := range []string{"a", "b", "c"} {
		f.store.Add(ctx, ip, models.GeoRecord{IP: ip})
	}

	before := f.store.Selected()
	f.store.ToggleAll()
	f.store.ToggleAll()
	assert.Equal(t, before, f.store.Selected())

	f.store.ToggleAll()
	full := f.store.Selected()
	assert.True(t, f.store.AllSelected())
	f.store.ToggleAll()
	f.store.ToggleAll()
	assert.Equal(t, full, f.store.Selected())
}

func TestStore_AllSelectedEmptyHistory(t *testing.T) {
	f := newFixture(t)
	f.store.ToggleAll()
	assert.False(t, f.store.AllSelected())
}

func TestStore_StorageFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ctx, failingKV{})

	e := store.Add(ctx, "a", models.GeoRecord{IP: "a"})
	assert.Equal(t, "a", e.IP)
	assert.Equal(t, 1, store.Len())

	store.Remove(ctx, e.ID)
	assert.Zero(t, store.Len())

	store.Clear(ctx)
	assert.Empty(t, store.Load(ctx))
}

func TestStore_Find(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	added := f.store.Add(ctx, "a", models.GeoRecord{IP: "a", City: "X"})

	got, ok := f.store.Find("a")
	assert.True(t, ok)
	assert.Equal(t, added, got)

	_, ok = f.store.Find("b")
	assert.False(t, ok)
}

func ptr(s string) *string { return &s }
