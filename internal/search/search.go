// Package search turns free-text queries into canonical song results using an
// upstream video-search capability.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"soundbex/internal/core"
	"soundbex/pkg/metadata"
)

const (
	// UnknownTitle replaces a missing title.
	UnknownTitle = "Unknown Title"
	// UnknownArtist replaces a missing channel name.
	UnknownArtist = "Unknown Artist"
)

// RawVideo is one upstream search hit before normalization.
type RawVideo struct {
	ID        string
	Title     string
	Channel   string
	Duration  any // whole seconds, a "M:SS" string, or nil
	Thumbnail string
}

// Upstream is a video-search capability of the third-party platform.
type Upstream interface {
	// SearchVideos returns up to limit raw hits for query.
	SearchVideos(ctx context.Context, query string, limit int) ([]RawVideo, error)
	// Name identifies the upstream in logs.
	Name() string
}

// Adapter filters, truncates and maps raw upstream hits into core.SongResult values.
type Adapter struct {
	upstream   Upstream
	limit      int
	maxResults int
	timeout    time.Duration
	logger     *zap.Logger
}

// NewAdapter creates a search adapter over upstream using the limits in config.
func NewAdapter(upstream Upstream, config *core.SearchConfig, logger *zap.Logger) *Adapter {
	limit := config.Limit
	if limit <= 0 {
		limit = core.DefaultSearchLimit
	}
	maxResults := config.MaxResults
	if maxResults <= 0 {
		maxResults = core.DefaultSearchMaxResults
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = core.DefaultSearchTimeoutSecs * time.Second
	}

	return &Adapter{
		upstream:   upstream,
		limit:      limit,
		maxResults: maxResults,
		timeout:    timeout,
		logger:     logger,
	}
}

// Search returns at most maxResults songs for query. A blank query returns an empty
// slice without contacting the upstream.
func (a *Adapter) Search(ctx context.Context, query string) ([]core.SongResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []core.SongResult{}, nil
	}

	a.logger.Debug("Searching upstream",
		zap.String("upstream", a.upstream.Name()),
		zap.String("query", query))

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	raw, err := a.upstream.SearchVideos(ctx, query, a.limit)
	if err != nil {
		a.logger.Warn("Upstream search failed",
			zap.String("upstream", a.upstream.Name()),
			zap.String("query", query),
			zap.Error(err))
		if errors.Is(err, core.ErrUpstreamShape) || errors.Is(err, core.ErrUpstreamUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", core.ErrUpstreamUnavailable, err)
	}

	results := make([]core.SongResult, 0, min(len(raw), a.maxResults))
	for _, video := range raw {
		if len(results) >= a.maxResults {
			break
		}
		if strings.TrimSpace(video.ID) == "" || strings.TrimSpace(video.Title) == "" {
			continue
		}
		results = append(results, toSongResult(video))
	}

	a.logger.Info("Search completed",
		zap.String("query", query),
		zap.Int("raw", len(raw)),
		zap.Int("results", len(results)))

	return results, nil
}

func toSongResult(video RawVideo) core.SongResult {
	title := metadata.CleanText(video.Title)
	if title == "" {
		title = UnknownTitle
	}

	author := metadata.CleanText(video.Channel)
	if author == "" {
		author = UnknownArtist
	}

	var thumbnail *string
	if video.Thumbnail != "" {
		thumb := video.Thumbnail
		thumbnail = &thumb
	}

	return core.SongResult{
		Title:     title,
		Author:    author,
		Duration:  metadata.FormatDuration(video.Duration),
		Thumbnail: thumbnail,
		VideoID:   strings.TrimSpace(video.ID),
	}
}
