package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"soundbex/internal/core"
)

type searchResponse struct {
	Success      bool              `json:"success"`
	Result       []core.SongResult `json:"result"`
	Query        string            `json:"query"`
	TotalResults int               `json:"totalResults"`
}

type streamResponse struct {
	Success   bool    `json:"success"`
	StreamURL string  `json:"streamUrl"`
	VideoID   string  `json:"videoId"`
	Type      string  `json:"type"`
	Source    string  `json:"source,omitempty"`
	Bitrate   *int    `json:"bitrate,omitempty"`
	Format    *string `json:"format,omitempty"`
}

type songBody struct {
	Title     string  `json:"title"`
	Artist    string  `json:"artist"`
	Duration  string  `json:"duration"`
	Thumbnail *string `json:"thumbnail"`
	VideoID   string  `json:"videoId"`
}

type songResponse struct {
	Success bool     `json:"success"`
	Song    songBody `json:"song"`
}

// songInput accepts the thumbnail under either "thumbnail" or "image".
type songInput struct {
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	Duration  string `json:"duration"`
	Thumbnail string `json:"thumbnail"`
	Image     string `json:"image"`
	VideoID   string `json:"videoId"`
}

type createPlaylistRequest struct {
	Songs []songInput `json:"songs"`
}

type createPlaylistResponse struct {
	Success    bool   `json:"success"`
	PlaylistID string `json:"playlistId"`
	TotalSongs int    `json:"totalSongs"`
}

type playlistViewResponse struct {
	Success bool `json:"success"`
	core.PlaylistView
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "SoundBex backend is running",
		"version": core.Version,
		"service": core.ServiceName,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   core.ServiceName,
		"timestamp": s.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": core.ServiceName})
}

func (s *Server) handleReadyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready", "service": core.ServiceName})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "q parameter is required")
		return
	}

	results, err := s.services.Search.Search(r.Context(), query)
	if err != nil {
		s.logger.Error("Search failed", zap.String("query", query), zap.Error(err))
		writeError(w, statusForError(err), fmt.Sprintf("search failed: %v", err))
		return
	}

	s.metrics.RecordSearch(len(results))
	writeJSON(w, http.StatusOK, searchResponse{
		Success:      true,
		Result:       results,
		Query:        query,
		TotalResults: len(results),
	})
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	videoID := strings.TrimSpace(r.URL.Query().Get("videoId"))
	if videoID == "" {
		writeError(w, http.StatusBadRequest, "videoId parameter is required")
		return
	}
	if !core.ValidVideoID(videoID) {
		writeError(w, http.StatusBadRequest, "videoId is malformed")
		return
	}

	stream := s.services.Resolver.Resolve(r.Context(), videoID)

	writeJSON(w, http.StatusOK, streamResponse{
		Success:   true,
		StreamURL: stream.URL,
		VideoID:   videoID,
		Type:      string(stream.Kind),
		Source:    stream.Source,
		Bitrate:   stream.BitrateKbps,
		Format:    stream.Format,
	})
}

func (s *Server) handleSong(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoID")
	if !core.ValidVideoID(videoID) {
		writeError(w, http.StatusBadRequest, "videoId is malformed")
		return
	}

	song, err := s.services.Songs.Song(r.Context(), videoID)
	if err != nil {
		s.logger.Warn("Song lookup failed", zap.String("videoID", videoID), zap.Error(err))
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, songResponse{
		Success: true,
		Song: songBody{
			Title:     song.Title,
			Artist:    song.Author,
			Duration:  song.Duration,
			Thumbnail: song.Thumbnail,
			VideoID:   song.VideoID,
		},
	})
}

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var req createPlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	songs := make([]core.SongEntry, 0, len(req.Songs))
	for _, in := range req.Songs {
		thumbnail := in.Thumbnail
		if thumbnail == "" {
			thumbnail = in.Image
		}
		songs = append(songs, core.SongEntry{
			Title:     in.Title,
			Artist:    in.Artist,
			Duration:  in.Duration,
			Thumbnail: thumbnail,
			VideoID:   in.VideoID,
		})
	}

	id, err := s.services.Playlists.Create(songs)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, createPlaylistResponse{
		Success:    true,
		PlaylistID: id,
		TotalSongs: len(songs),
	})
}

func (s *Server) handlePlaylistNext(w http.ResponseWriter, r *http.Request) {
	s.writePlaylistView(w, r, s.services.Playlists.Next)
}

func (s *Server) handlePlaylistPrevious(w http.ResponseWriter, r *http.Request) {
	s.writePlaylistView(w, r, s.services.Playlists.Previous)
}

func (s *Server) handlePlaylistCurrent(w http.ResponseWriter, r *http.Request) {
	s.writePlaylistView(w, r, s.services.Playlists.Current)
}

func (s *Server) writePlaylistView(w http.ResponseWriter, r *http.Request, op func(string) (core.PlaylistView, error)) {
	view, err := op(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, playlistViewResponse{Success: true, PlaylistView: view})
}
