package resolver

import (
	"context"
	"net/http"
	"net/url"

	"soundbex/internal/core"
)

const (
	// Y2MateAnalyzeURL lists the conversions available for a video.
	Y2MateAnalyzeURL = "https://www.y2mate.com/mates/analyzeV2/ajax"
	// Y2MateConvertURL turns a conversion key into a download link.
	Y2MateConvertURL = "https://www.y2mate.com/mates/convertV2/index"
	y2mateService    = "y2mate"
	y2mateBitrate    = 128
)

// Y2MateStrategy asks y2mate for its 128 kbps mp3 conversion.
type Y2MateStrategy struct {
	analyzeURL string
	convertURL string
	client     *http.Client
}

// NewY2MateStrategy creates the y2mate strategy.
func NewY2MateStrategy(client *http.Client) *Y2MateStrategy {
	return &Y2MateStrategy{
		analyzeURL: Y2MateAnalyzeURL,
		convertURL: Y2MateConvertURL,
		client:     client,
	}
}

// Name implements Strategy.
func (s *Y2MateStrategy) Name() string {
	return "y2mate"
}

// Attempt implements Strategy with an analyze call followed by a convert call.
func (s *Y2MateStrategy) Attempt(ctx context.Context, videoID string) (*core.ResolvedStream, error) {
	analyze, err := postForm(ctx, s.client, y2mateService, s.analyzeURL, url.Values{
		"url":    {core.WatchURL(videoID)},
		"q_auto": {"0"},
		"ajax":   {"1"},
	})
	if err != nil {
		return nil, err
	}

	key, err := requireURL(analyze, y2mateService, "result.links.mp3.mp3128.k")
	if err != nil {
		return nil, err
	}

	converted, err := postForm(ctx, s.client, y2mateService, s.convertURL, url.Values{
		"vid": {videoID},
		"k":   {key},
	})
	if err != nil {
		return nil, err
	}

	link, err := requireURL(converted, y2mateService, "dlink")
	if err != nil {
		return nil, err
	}

	return &core.ResolvedStream{
		URL:         link,
		Source:      s.Name(),
		Kind:        core.KindDirectAudio,
		BitrateKbps: intPtr(y2mateBitrate),
		Format:      stringPtr("mp3"),
	}, nil
}
