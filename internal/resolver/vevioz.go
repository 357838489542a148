package resolver

import (
	"context"
	"net/http"
	"net/url"

	"soundbex/internal/core"
)

const (
	// VeviozButtonURL is the vevioz mp3 button API. The video id is appended.
	VeviozButtonURL = "https://api.vevioz.com/api/button/mp3/"
	veviozService   = "vevioz"
)

// VeviozStrategy reads the download link from the vevioz button API.
type VeviozStrategy struct {
	baseURL string
	client  *http.Client
}

// NewVeviozStrategy creates the vevioz strategy.
func NewVeviozStrategy(client *http.Client) *VeviozStrategy {
	return &VeviozStrategy{
		baseURL: VeviozButtonURL,
		client:  client,
	}
}

// Name implements Strategy.
func (s *VeviozStrategy) Name() string {
	return "vevioz"
}

// Attempt implements Strategy.
func (s *VeviozStrategy) Attempt(ctx context.Context, videoID string) (*core.ResolvedStream, error) {
	doc, err := getJSON(ctx, s.client, veviozService, s.baseURL+url.PathEscape(videoID))
	if err != nil {
		return nil, err
	}

	link, err := requireURL(doc, veviozService, "url")
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
