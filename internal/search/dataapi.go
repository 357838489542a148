package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"soundbex/internal/upstream"
	"soundbex/pkg/metadata"
)

const (
	// DataAPISearchURL is the YouTube Data API v3 search endpoint.
	DataAPISearchURL = "https://www.googleapis.com/youtube/v3/search"
	dataAPIService   = "youtube data api"
)

// DataAPIClient searches through the official YouTube Data API. It needs an API key.
type DataAPIClient struct {
	apiKey    string
	searchURL string
	http      *http.Client
	logger    *zap.Logger
}

// NewDataAPIClient creates a Data API upstream. An empty searchURL selects DataAPISearchURL.
func NewDataAPIClient(apiKey, searchURL string, client *http.Client, logger *zap.Logger) *DataAPIClient {
	if searchURL == "" {
		searchURL = DataAPISearchURL
	}
	return &DataAPIClient{
		apiKey:    apiKey,
		searchURL: searchURL,
		http:      client,
		logger:    logger,
	}
}

// Name identifies the upstream in logs.
func (c *DataAPIClient) Name() string {
	return "youtube-data-api"
}

type ytSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
			Thumbnails   struct {
				Default struct {
					URL string `json:"url"`
				} `json:"default"`
				Medium struct {
					URL string `json:"url"`
				} `json:"medium"`
				High struct {
					URL string `json:"url"`
				} `json:"high"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

type ytVideosResponse struct {
	Items []struct {
		ID             string `json:"id"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// SearchVideos runs a video search and enriches the hits with their durations.
func (c *DataAPIClient) SearchVideos(ctx context.Context, query string, limit int) ([]RawVideo, error) {
	val := url.Values{}
	val.Set("part", "snippet")
	val.Set("type", "video")
	val.Set("maxResults", strconv.Itoa(limit))
	val.Set("q", query)
	val.Set("key", c.apiKey)

	var body ytSearchResponse
	if err := c.getJSON(ctx, c.searchURL+"?"+val.Encode(), &body); err != nil {
		return nil, err
	}

	out := make([]RawVideo, 0, len(body.Items))
	videoIDs := make([]string, 0, len(body.Items))

	for _, it := range body.Items {
		thumbs := it.Snippet.Thumbnails
		thumb := thumbs.High.URL
		if thumb == "" {
			thumb = thumbs.Medium.URL
		}
		if thumb == "" {
			thumb = thumbs.Default.URL
		}

		out = append(out, RawVideo{
			ID:        it.ID.VideoID,
			Title:     it.Snippet.Title,
			Channel:   it.Snippet.ChannelTitle,
			Thumbnail: thumb,
		})
		if it.ID.VideoID != "" {
			videoIDs = append(videoIDs, it.ID.VideoID)
		}
	}

	if len(videoIDs) == 0 {
		return out, nil
	}

	durations, err := c.fetchDurations(ctx, videoIDs)
	if err != nil {
		// Results are still useful without durations.
		c.logger.Warn("Failed to fetch video durations", zap.Error(err))
		return out, nil
	}

	for i := range out {
		if d, ok := durations[out[i].ID]; ok && d > 0 {
			out[i].Duration = d
		}
	}

	return out, nil
}

func (c *DataAPIClient) fetchDurations(ctx context.Context, ids []string) (map[string]int, error) {
	val := url.Values{}
	val.Set("part", "contentDetails")
	val.Set("id", strings.Join(ids, ","))
	val.Set("key", c.apiKey)

	var body ytVideosResponse
	if err := c.getJSON(ctx, c.videosURL()+"?"+val.Encode(), &body); err != nil {
		return nil, err
	}

	durations := make(map[string]int, len(body.Items))
	for _, item := range body.Items {
		durations[item.ID] = metadata.ParseISO8601Seconds(item.ContentDetails.Duration)
	}
	return durations, nil
}

// videosURL derives the videos endpoint from the configured search endpoint.
func (c *DataAPIClient) videosURL() string {
	if base, ok := strings.CutSuffix(c.searchURL, "/search"); ok {
		return base + "/videos"
	}
	return "https://www.googleapis.com/youtube/v3/videos"
}

func (c *DataAPIClient) getJSON(ctx context.Context, reqURL string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return err
	}

	body, err := upstream.Fetch(c.http, req, dataAPIService, upstream.DefaultMaxReadSize)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return upstream.ShapeError(dataAPIService, "failed to decode response: %v", err)
	}
	return nil
}
