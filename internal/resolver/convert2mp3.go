package resolver

import (
	"context"
	"net/http"
	"net/url"

	"soundbex/internal/core"
)

const (
	// Convert2MP3URL is the convert2mp3.cc converter endpoint.
	Convert2MP3URL     = "https://convert2mp3.cc/api/converter"
	convert2mp3Service = "convert2mp3"
)

// Convert2MP3Strategy posts the watch URL to convert2mp3.cc.
type Convert2MP3Strategy struct {
	endpoint string
	client   *http.Client
}

// NewConvert2MP3Strategy creates the convert2mp3 strategy.
func NewConvert2MP3Strategy(client *http.Client) *Convert2MP3Strategy {
	return &Convert2MP3Strategy{
		endpoint: Convert2MP3URL,
		client:   client,
	}
}

// Name implements Strategy.
func (s *Convert2MP3Strategy) Name() string {
	return "convert2mp3"
}

// Attempt implements Strategy.
func (s *Convert2MP3Strategy) Attempt(ctx context.Context, videoID string) (*core.ResolvedStream, error) {
	doc, err := postForm(ctx, s.client, convert2mp3Service, s.endpoint, url.Values{
		"url":    {core.WatchURL(videoID)},
		"format": {"mp3"},
	})
	if err != nil {
		return nil, err
	}

	link, err := requireURL(doc, convert2mp3Service, "url")
	if err != nil {
		return nil, err
	}

	return &core.ResolvedStream{
		URL:    link,
		Source: s.Name(),
		Kind:   core.KindDirectAudio,
		Format: stringPtr("mp3"),
	}, nil
}
