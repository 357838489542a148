package search

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"soundbex/internal/upstream"
)

const (
	// InnerTubeSearchURL is the web client's search endpoint. It needs no API key.
	InnerTubeSearchURL = "https://www.youtube.com/youtubei/v1/search?prettyPrint=false"
	innerTubeService   = "youtube innertube"
	// innerTubeVideoFilter restricts results to videos.
	innerTubeVideoFilter = "EgIQAQ%3D%3D"
	innerTubeClientName  = "WEB"
	innerTubeClientVer   = "2.20240726.00.00"
)

// InnerTubeClient searches through the endpoint used by the YouTube web client.
type InnerTubeClient struct {
	searchURL string
	http      *http.Client
}

// NewInnerTubeClient creates a keyless upstream. An empty searchURL selects InnerTubeSearchURL.
func NewInnerTubeClient(searchURL string, client *http.Client) *InnerTubeClient {
	if searchURL == "" {
		searchURL = InnerTubeSearchURL
	}
	return &InnerTubeClient{
		searchURL: searchURL,
		http:      client,
	}
}

// Name identifies the upstream in logs.
func (c *InnerTubeClient) Name() string {
	return "youtube-innertube"
}

type innerTubeRequest struct {
	Context struct {
		Client struct {
			ClientName    string `json:"clientName"`
			ClientVersion string `json:"clientVersion"`
			HL            string `json:"hl"`
			GL            string `json:"gl"`
		} `json:"client"`
	} `json:"context"`
	Query  string `json:"query"`
	Params string `json:"params"`
}

// SearchVideos posts the query and walks the renderer tree for video hits.
func (c *InnerTubeClient) SearchVideos(ctx context.Context, query string, limit int) ([]RawVideo, error) {
	var payload innerTubeRequest
	payload.Context.Client.ClientName = innerTubeClientName
	payload.Context.Client.ClientVersion = innerTubeClientVer
	payload.Context.Client.HL = "en"
	payload.Context.Client.GL = "US"
	payload.Query = query
	payload.Params = innerTubeVideoFilter

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.searchURL, bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := upstream.Fetch(c.http, req, innerTubeService, upstream.DefaultMaxReadSize)
	if err != nil {
		return nil, err
	}

	return parseInnerTubeSearch(body, limit)
}

func parseInnerTubeSearch(body []byte, limit int) ([]RawVideo, error) {
	if !gjson.ValidBytes(body) {
		return nil, upstream.ShapeError(innerTubeService, "invalid JSON")
	}

	sections := gjson.GetBytes(body, "contents.twoColumnSearchResultsRenderer.primaryContents.sectionListRenderer.contents")
	if !sections.Exists() {
		return nil, upstream.ShapeError(innerTubeService, "missing section list")
	}

	var out []RawVideo
	for _, section := range sections.Array() {
		for _, item := range section.Get("itemSectionRenderer.contents").Array() {
			renderer := item.Get("videoRenderer")
			if !renderer.Exists() {
				continue
			}

			out = append(out, videoFromRenderer(renderer))
			if limit > 0 && len(out) >= limit {
				return out, nil
			}
		}
	}

	return out, nil
}

func videoFromRenderer(renderer gjson.Result) RawVideo {
	title := renderer.Get("title.runs.0.text").String()
	if title == "" {
		title = renderer.Get("title.simpleText").String()
	}

	channel := renderer.Get("ownerText.runs.0.text").String()
	if channel == "" {
		channel = renderer.Get("longBylineText.runs.0.text").String()
	}

	video := RawVideo{
		ID:      renderer.Get("videoId").String(),
		Title:   title,
		Channel: channel,
	}

	// Live streams carry no length.
	if length := renderer.Get("lengthText.simpleText"); length.Exists() {
		video.Duration = length.String()
	}

	thumbs := renderer.Get("thumbnail.thumbnails").Array()
	if len(thumbs) > 0 {
		thumb := thumbs[len(thumbs)-1].Get("url").String()
		if strings.HasPrefix(thumb, "//") {
			thumb = "https:" + thumb
		}
		video.Thumbnail = thumb
	}

	return video
}
