package resolver

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"soundbex/internal/core"
	"soundbex/internal/upstream"
)

const (
	// LoaderDownloadURL starts a conversion job on loader.to.
	LoaderDownloadURL = "https://loader.to/ajax/download.php"
	// LoaderProgressURL reports the state of a loader.to job.
	LoaderProgressURL = "https://p.oceansaver.in/ajax/progress.php"
	loaderService     = "loader.to"
	loaderPoll        = time.Second
)

// LoaderStrategy starts an mp3 conversion on loader.to and polls until it finishes.
type LoaderStrategy struct {
	downloadURL  string
	progressURL  string
	pollInterval time.Duration
	client       *http.Client
}

// NewLoaderStrategy creates the loader.to strategy.
func NewLoaderStrategy(client *http.Client) *LoaderStrategy {
	return &LoaderStrategy{
		downloadURL:  LoaderDownloadURL,
		progressURL:  LoaderProgressURL,
		pollInterval: loaderPoll,
		client:       client,
	}
}

// Name implements Strategy.
func (s *LoaderStrategy) Name() string {
	return "loader.to"
}

// Attempt implements Strategy. Polling stops when ctx is done.
func (s *LoaderStrategy) Attempt(ctx context.Context, videoID string) (*core.ResolvedStream, error) {
	query := url.Values{}
	query.Set("format", "mp3")
	query.Set("url", core.WatchURL(videoID))

	job, err := getJSON(ctx, s.client, loaderService, s.downloadURL+"?"+query.Encode())
	if err != nil {
		return nil, err
	}
	if !job.Get("success").Bool() {
		return nil, upstream.ShapeError(loaderService, "job rejected")
	}
	jobID := job.Get("id").String()
	if jobID == "" {
		return nil, upstream.ShapeError(loaderService, "missing id")
	}

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		progress, err := getJSON(ctx, s.client, loaderService, s.progressURL+"?id="+url.QueryEscape(jobID))
		if err != nil {
			return nil, err
		}

		if progress.Get("success").Int() == 1 {
			link, err := requireURL(progress, loaderService, "download_url")
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

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
