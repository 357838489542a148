// Package playlist keeps short-lived server-side playlists with a navigation cursor.
package playlist

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"soundbex/internal/core"
)

// Playlist is an ordered list of songs with the index of the current one.
type Playlist struct {
	ID        string
	Songs     []core.SongEntry
	Cursor    int
	CreatedAt time.Time
}

// entry guards a playlist's cursor.
type entry struct {
	mu       sync.Mutex
	playlist Playlist
}

// Store holds playlists in memory. Playlists expire a fixed time after creation and the
// oldest playlists are evicted once the capacity is reached.
type Store struct {
	lists  *expirable.LRU[string, *entry]
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a playlist store with the retention and capacity in config.
func NewStore(config *core.PlaylistConfig, logger *zap.Logger, opts ...Option) *Store {
	ttl := config.TTL
	if ttl <= 0 {
		ttl = core.DefaultPlaylistTTLMins * time.Minute
	}
	maxLists := config.MaxLists
	if maxLists <= 0 {
		maxLists = core.DefaultPlaylistMax
	}

	s := &Store{
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	// The LRU runs a reaper goroutine for its whole lifetime. The server holds a single
	// Store, so it is never stopped.
	s.lists = expirable.NewLRU[string, *entry](maxLists, func(id string, _ *entry) {
		s.logger.Debug("Playlist removed", zap.String("playlistID", id))
	}, ttl)

	return s
}

// Create stores a copy of songs and returns the new playlist's id. The cursor starts at 0.
func (s *Store) Create(songs []core.SongEntry) (string, error) {
	if len(songs) == 0 {
		return "", fmt.Errorf("%w: songs must not be empty", core.ErrValidation)
	}
	for i, song := range songs {
		if strings.TrimSpace(song.VideoID) == "" {
			return "", fmt.Errorf("%w: song %d has no videoId", core.ErrValidation, i)
		}
	}

	id := uuid.NewString()
	e := &entry{
		playlist: Playlist{
			ID:        id,
			Songs:     append([]core.SongEntry(nil), songs...),
			CreatedAt: s.now(),
		},
	}
	s.lists.Add(id, e)

	s.logger.Info("Playlist created",
		zap.String("playlistID", id),
		zap.Int("songs", len(songs)))

	return id, nil
}

// Next advances the cursor, wrapping from the last song to the first.
func (s *Store) Next(id string) (core.PlaylistView, error) {
	return s.move(id, 1)
}

// Previous moves the cursor back, wrapping from the first song to the last.
func (s *Store) Previous(id string) (core.PlaylistView, error) {
	return s.move(id, -1)
}

// Current returns the song under the cursor without moving it.
func (s *Store) Current(id string) (core.PlaylistView, error) {
	return s.move(id, 0)
}

// Get returns a copy of the playlist.
func (s *Store) Get(id string) (Playlist, error) {
	e, err := s.lookup(id)
	if err != nil {
		return Playlist{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.playlist
	p.Songs = append([]core.SongEntry(nil), p.Songs...)
	return p, nil
}

// Len returns the number of playlists currently held, including expired ones not yet reaped.
func (s *Store) Len() int {
	return s.lists.Len()
}

func (s *Store) move(id string, delta int) (core.PlaylistView, error) {
	e, err := s.lookup(id)
	if err != nil {
		return core.PlaylistView{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	n := len(e.playlist.Songs)
	e.playlist.Cursor = ((e.playlist.Cursor+delta)%n + n) % n

	return view(&e.playlist), nil
}

func (s *Store) lookup(id string) (*entry, error) {
	// Peek leaves the eviction order alone, so capacity eviction stays oldest-first.
	e, ok := s.lists.Peek(id)
	if !ok {
		return nil, fmt.Errorf("%w: playlist %s", core.ErrNotFound, id)
	}

	// The LRU reaps on its own schedule; the creation time is authoritative.
	if !s.now().Before(e.playlist.CreatedAt.Add(s.ttl)) {
		s.lists.Remove(id)
		return nil, fmt.Errorf("%w: playlist %s expired", core.ErrNotFound, id)
	}

	return e, nil
}

// view computes navigation flags from the cursor alone, so a wrap to index 0 reports
// no previous song.
func view(p *Playlist) core.PlaylistView {
	n := len(p.Songs)
	return core.PlaylistView{
		Song:         p.Songs[p.Cursor],
		CurrentIndex: p.Cursor,
		TotalSongs:   n,
		HasNext:      p.Cursor < n-1,
		HasPrevious:  p.Cursor > 0,
	}
}
