package resolver

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/kkdai/youtube/v2"

	"soundbex/internal/core"
	"soundbex/internal/upstream"
)

const nativeService = "youtube player"

// playerClient is the subset of *youtube.Client the native strategy needs.
type playerClient interface {
	GetVideoContext(ctx context.Context, url string) (*youtube.Video, error)
	GetStreamURLContext(ctx context.Context, video *youtube.Video, format *youtube.Format) (string, error)
}

// NativeStrategy reads the platform's player response directly and picks the best
// audio-only format.
type NativeStrategy struct {
	player playerClient
}

// NewNativeStrategy creates the native player strategy on top of client.
func NewNativeStrategy(client *http.Client) *NativeStrategy {
	return &NativeStrategy{
		player: &youtube.Client{HTTPClient: client},
	}
}

// Name implements Strategy.
func (s *NativeStrategy) Name() string {
	return "innertube"
}

// Attempt implements Strategy.
func (s *NativeStrategy) Attempt(ctx context.Context, videoID string) (*core.ResolvedStream, error) {
	video, err := s.player.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrUpstreamUnavailable, nativeService, err)
	}

	format := pickAudioFormat(video.Formats)
	if format == nil {
		return nil, upstream.ShapeError(nativeService, "no audio-only formats")
	}

	link, err := s.player.GetStreamURLContext(ctx, video, format)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrUpstreamUnavailable, nativeService, err)
	}
	if link == "" {
		return nil, upstream.ShapeError(nativeService, "empty stream URL")
	}

	stream := &core.ResolvedStream{
		URL:    link,
		Source: s.Name(),
		Kind:   core.KindDirectAudio,
	}
	if kbps := bitrateForFormat(format) / 1000; kbps > 0 {
		stream.BitrateKbps = intPtr(kbps)
	}
	if container := containerForMime(format.MimeType); container != "" {
		stream.Format = stringPtr(container)
	}
	return stream, nil
}

// pickAudioFormat returns the audio-only format with the highest bitrate, or nil.
func pickAudioFormat(formats youtube.FormatList) *youtube.Format {
	var best *youtube.Format
	for i := range formats {
		f := &formats[i]
		if f.AudioChannels == 0 || f.Width != 0 || f.Height != 0 {
			continue
		}
		if best == nil || bitrateForFormat(f) > bitrateForFormat(best) {
			best = f
		}
	}
	return best
}

func bitrateForFormat(f *youtube.Format) int {
	if f.AverageBitrate > 0 {
		return f.AverageBitrate
	}
	return f.Bitrate
}

// containerForMime maps `audio/webm; codecs="opus"` to "webm".
func containerForMime(mime string) string {
	mime, _, _ = strings.Cut(mime, ";")
	_, sub, ok := strings.Cut(strings.TrimSpace(mime), "/")
	if !ok {
		return ""
	}
	return sub
}
