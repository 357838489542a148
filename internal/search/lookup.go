package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"soundbex/internal/core"
	"soundbex/internal/upstream"
	"soundbex/pkg/metadata"
)

const (
	// OEmbedURL is the YouTube oEmbed endpoint.
	OEmbedURL     = "https://www.youtube.com/oembed"
	oEmbedService = "youtube oembed"
)

type oEmbedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// OEmbedLookup fetches metadata for a single video through oEmbed.
type OEmbedLookup struct {
	endpoint string
	http     *http.Client
	logger   *zap.Logger
}

// NewOEmbedLookup creates a lookup. An empty endpoint selects OEmbedURL.
func NewOEmbedLookup(endpoint string, client *http.Client, logger *zap.Logger) *OEmbedLookup {
	if endpoint == "" {
		endpoint = OEmbedURL
	}
	return &OEmbedLookup{
		endpoint: endpoint,
		http:     client,
		logger:   logger,
	}
}

// Song returns the metadata of videoID. Unknown, private and embed-disabled videos
// yield core.ErrNotFound.
func (l *OEmbedLookup) Song(ctx context.Context, videoID string) (core.SongResult, error) {
	if !core.ValidVideoID(videoID) {
		return core.SongResult{}, fmt.Errorf("%w: malformed video id %q", core.ErrValidation, videoID)
	}

	reqURL := fmt.Sprintf("%s?url=%s&format=json", l.endpoint, url.QueryEscape(core.WatchURL(videoID)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return core.SongResult{}, err
	}

	body, err := upstream.Fetch(l.http, req, oEmbedService, upstream.DefaultMaxReadSize)
	if err != nil {
		var statusErr *upstream.StatusError
		if errors.As(err, &statusErr) && isMissingVideoStatus(statusErr.StatusCode) {
			return core.SongResult{}, fmt.Errorf("%w: video %s", core.ErrNotFound, videoID)
		}
		l.logger.Warn("oEmbed lookup failed", zap.String("videoID", videoID), zap.Error(err))
		return core.SongResult{}, err
	}

	var resp oEmbedResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return core.SongResult{}, upstream.ShapeError(oEmbedService, "failed to decode response: %v", err)
	}

	title := metadata.CleanTitle(resp.Title)
	if title == "" {
		title = UnknownTitle
	}
	author := metadata.ExtractArtist(resp.Title, resp.AuthorName)
	if author == "" {
		author = UnknownArtist
	}

	var thumbnail *string
	if resp.ThumbnailURL != "" {
		thumbnail = &resp.ThumbnailURL
	}

	return core.SongResult{
		Title:     title,
		Author:    author,
		Duration:  metadata.UnknownDuration,
		Thumbnail: thumbnail,
		VideoID:   videoID,
	}, nil
}

// isMissingVideoStatus reports whether oEmbed answered that the video cannot be shown.
func isMissingVideoStatus(code int) bool {
	switch code {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return true
	}
	return false
}
