package core

import "regexp"

var videoIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// SongResult is a search hit in the canonical shape served to clients.
type SongResult struct {
	Title     string  `json:"title"`
	Author    string  `json:"author"`
	Duration  string  `json:"duration"`
	Thumbnail *string `json:"thumbnail"`
	VideoID   string  `json:"videoId"`
}

// StreamKind tells clients whether a resolved URL is playable audio or a degraded page link.
type StreamKind string

const (
	// KindDirectAudio is a URL pointing at an audio stream or file.
	KindDirectAudio StreamKind = "direct_audio"
	// KindRawPageFallback is the platform's own watch page, returned when nothing resolved.
	KindRawPageFallback StreamKind = "raw_page_fallback"
)

// ResolvedStream is the outcome of resolving a video id to something playable.
type ResolvedStream struct {
	URL         string
	Source      string
	Kind        StreamKind
	BitrateKbps *int
	Format      *string
}

// SongEntry is the denormalized copy of a song kept inside a playlist.
type SongEntry struct {
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	Duration  string `json:"duration"`
	Thumbnail string `json:"thumbnail,omitempty"`
	VideoID   string `json:"videoId"`
}

// PlaylistView is the song under a playlist's cursor together with its navigation state.
type PlaylistView struct {
	Song         SongEntry `json:"song"`
	CurrentIndex int       `json:"currentIndex"`
	TotalSongs   int       `json:"totalSongs"`
	HasNext      bool      `json:"hasNext"`
	HasPrevious  bool      `json:"hasPrevious"`
}

// WatchURL returns the canonical page URL of a video on the upstream platform.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// ValidVideoID reports whether id has the shape of an upstream video id.
func ValidVideoID(id string) bool {
	return videoIDRegex.MatchString(id)
}
