package playlist

import (
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"soundbex/internal/core"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	cfg := core.DefaultConfig()
	return NewStore(&cfg.Playlist, zap.NewNop(), opts...)
}

func songs(ids ...string) []core.SongEntry {
	out := make([]core.SongEntry, 0, len(ids))
	for _, id := range ids {
		out = append(out, core.SongEntry{Title: "Song " + id, Artist: "Artist", Duration: "3:00", VideoID: id})
	}
	return out
}

func TestStore_NextWrapsAround(t *testing.T) {
	store := newTestStore(t)

	id, err := store.Create(songs("a", "b", "c"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tests := []struct {
		wantID       string
		wantIndex    int
		wantNext     bool
		wantPrevious bool
	}{
		{"b", 1, true, true},
		{"c", 2, false, true},
		{"a", 0, true, false},
	}

	for i, tt := range tests {
		got, err := store.Next(id)
		if err != nil {
			t.Fatalf("Next() #%d error = %v", i+1, err)
		}
		if got.Song.VideoID != tt.wantID || got.CurrentIndex != tt.wantIndex {
			t.Errorf("Next() #%d = %s@%d, want %s@%d", i+1, got.Song.VideoID, got.CurrentIndex, tt.wantID, tt.wantIndex)
		}
		if got.HasNext != tt.wantNext || got.HasPrevious != tt.wantPrevious {
			t.Errorf("Next() #%d flags = (next %v, previous %v), want (%v, %v)",
				i+1, got.HasNext, got.HasPrevious, tt.wantNext, tt.wantPrevious)
		}
		if got.TotalSongs != 3 {
			t.Errorf("Next() #%d TotalSongs = %d, want 3", i+1, got.TotalSongs)
		}
	}
}

func TestStore_PreviousWrapsAround(t *testing.T) {
	store := newTestStore(t)
	id, _ := store.Create(songs("a", "b", "c"))

	got, err := store.Previous(id)
	if err != nil {
		t.Fatalf("Previous() error = %v", err)
	}
	if got.Song.VideoID != "c" || got.CurrentIndex != 2 {
		t.Errorf("Previous() = %s@%d, want c@2", got.Song.VideoID, got.CurrentIndex)
	}
	if got.HasNext || !got.HasPrevious {
		t.Errorf("Previous() flags = (next %v, previous %v), want (false, true)", got.HasNext, got.HasPrevious)
	}
}

func TestStore_CurrentDoesNotMove(t *testing.T) {
	store := newTestStore(t)
	id, _ := store.Create(songs("a", "b"))

	for range 3 {
		got, err := store.Current(id)
		if err != nil {
			t.Fatalf("Current() error = %v", err)
		}
		if got.CurrentIndex != 0 || got.Song.VideoID != "a" {
			t.Errorf("Current() = %s@%d, want a@0", got.Song.VideoID, got.CurrentIndex)
		}
	}
}

func TestStore_SingleSong(t *testing.T) {
	store := newTestStore(t)
	id, _ := store.Create(songs("a"))

	got, err := store.Next(id)
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if got.CurrentIndex != 0 || got.HasNext || got.HasPrevious {
		t.Errorf("Next() on single song = %+v", got)
	}
}

func TestStore_CreateValidation(t *testing.T) {
	store := newTestStore(t)

	tests := []struct {
		name  string
		songs []core.SongEntry
	}{
		{"nil list", nil},
		{"empty list", []core.SongEntry{}},
		{"missing videoId", []core.SongEntry{{Title: "x"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.Create(tt.songs); !errors.Is(err, core.ErrValidation) {
				t.Errorf("Create() error = %v, want ErrValidation", err)
			}
		})
	}

	if store.Len() != 0 {
		t.Errorf("Len() = %d after failed creates, want 0", store.Len())
	}
}

func TestStore_UnknownID(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Next("missing"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Next() error = %v, want ErrNotFound", err)
	}
	if _, err := store.Current("missing"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Current() error = %v, want ErrNotFound", err)
	}
}

func TestStore_Expiry(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	store := newTestStore(t, WithClock(clock.Now))

	id, err := store.Create(songs("a", "b"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	clock.Advance(59 * time.Minute)
	if _, err := store.Current(id); err != nil {
		t.Fatalf("Current() before expiry error = %v", err)
	}

	clock.Advance(time.Minute)
	if _, err := store.Next(id); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Next() after expiry error = %v, want ErrNotFound", err)
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d after expiry, want 0", store.Len())
	}
}

func TestStore_CopiesInput(t *testing.T) {
	store := newTestStore(t)
	input := songs("a", "a", "b")

	id, _ := store.Create(input)
	input[0].VideoID = "mutated"

	p, err := store.Get(id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if p.Songs[0].VideoID != "a" || p.Songs[1].VideoID != "a" {
		t.Errorf("stored songs = %+v, want duplicates preserved and input copied", p.Songs)
	}
}

func TestStore_UniqueIDs(t *testing.T) {
	store := newTestStore(t)
	seen := make(map[string]bool)

	for range 100 {
		id, err := store.Create(songs("a"))
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate playlist id %s", id)
		}
		seen[id] = true
	}

	if store.Len() != 100 {
		t.Errorf("Len() = %d, want 100", store.Len())
	}
}

func TestStore_CapacityEvictsOldest(t *testing.T) {
	cfg := core.PlaylistConfig{TTL: time.Hour, MaxLists: 2}
	store := NewStore(&cfg, zap.NewNop())

	first, _ := store.Create(songs("a"))
	_, _ = store.Create(songs("b"))
	_, _ = store.Create(songs("c"))

	if _, err := store.Current(first); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Current() on evicted playlist error = %v, want ErrNotFound", err)
	}
	if store.Len() != 2 {
		t.Errorf("Len() = %d, want 2", store.Len())
	}
}

func TestStore_CapacityIgnoresReads(t *testing.T) {
	cfg := core.PlaylistConfig{TTL: time.Hour, MaxLists: 2}
	store := NewStore(&cfg, zap.NewNop())

	first, _ := store.Create(songs("a"))
	second, _ := store.Create(songs("b"))
	if _, err := store.Current(first); err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if _, err := store.Get(first); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	_, _ = store.Create(songs("c"))

	if _, err := store.Current(first); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Current() on oldest playlist error = %v, want ErrNotFound", err)
	}
	if _, err := store.Current(second); err != nil {
		t.Errorf("Current() on newer playlist error = %v, want nil", err)
	}
}

func TestStore_ConcurrentNext(t *testing.T) {
	store := newTestStore(t)
	id, _ := store.Create(songs("a", "b", "c", "d", "e"))

	const calls = 53
	var wg sync.WaitGroup
	for range calls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Next(id); err != nil {
				t.Errorf("Next() error = %v", err)
			}
		}()
	}
	wg.Wait()

	got, _ := store.Current(id)
	if got.CurrentIndex != calls%5 {
		t.Errorf("CurrentIndex = %d after %d concurrent Next calls, want %d", got.CurrentIndex, calls, calls%5)
	}
}
