package search

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"soundbex/internal/core"
)

type RoundTripFunc func(req *http.Request) *http.Response

func (f RoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

func NewMockClient(fn RoundTripFunc) *http.Client {
	return &http.Client{Transport: fn}
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func TestDataAPIClientSearchVideos(t *testing.T) {
	client := NewMockClient(func(req *http.Request) *http.Response {
		switch {
		case strings.HasSuffix(req.URL.Path, "/search"):
			assert.Equal(t, "secret", req.URL.Query().Get("key"))
			assert.Equal(t, "video", req.URL.Query().Get("type"))
			assert.Equal(t, "25", req.URL.Query().Get("maxResults"))
			return jsonResponse(http.StatusOK, `{"items":[
				{"id":{"videoId":"dQw4w9WgXcQ"},"snippet":{"title":"Never Gonna Give You Up","channelTitle":"Rick Astley",
				 "thumbnails":{"default":{"url":"d.jpg"},"high":{"url":"h.jpg"}}}},
				{"id":{"videoId":"xxxxxxxxxxx"},"snippet":{"title":"Other","channelTitle":"X","thumbnails":{}}}]}`)
		case strings.HasSuffix(req.URL.Path, "/videos"):
			assert.Equal(t, "dQw4w9WgXcQ,xxxxxxxxxxx", req.URL.Query().Get("id"))
			return jsonResponse(http.StatusOK, `{"items":[{"id":"dQw4w9WgXcQ","contentDetails":{"duration":"PT3M33S"}}]}`)
		}
		return jsonResponse(http.StatusNotFound, `{}`)
	})

	up := NewDataAPIClient("secret", "https://www.googleapis.com/youtube/v3/search", client, zap.NewNop())
	videos, err := up.SearchVideos(context.Background(), "rick", 25)
	require.NoError(t, err)
	require.Len(t, videos, 2)

	assert.Equal(t, "dQw4w9WgXcQ", videos[0].ID)
	assert.Equal(t, "h.jpg", videos[0].Thumbnail)
	assert.Equal(t, 213, videos[0].Duration)
	assert.Nil(t, videos[1].Duration)
	assert.Empty(t, videos[1].Thumbnail)
}

func TestDataAPIClientDurationFailureKeepsResults(t *testing.T) {
	client := NewMockClient(func(req *http.Request) *http.Response {
		if strings.HasSuffix(req.URL.Path, "/videos") {
			return jsonResponse(http.StatusInternalServerError, `{}`)
		}
		return jsonResponse(http.StatusOK, `{"items":[{"id":{"videoId":"dQw4w9WgXcQ"},"snippet":{"title":"T","channelTitle":"C"}}]}`)
	})

	up := NewDataAPIClient("k", "", client, zap.NewNop())
	videos, err := up.SearchVideos(context.Background(), "q", 5)
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Nil(t, videos[0].Duration)
}

func TestDataAPIClientErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"forbidden", http.StatusForbidden, `{"error":{}}`, core.ErrUpstreamUnavailable},
		{"garbage", http.StatusOK, `not json`, core.ErrUpstreamShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewMockClient(func(*http.Request) *http.Response {
				return jsonResponse(tt.status, tt.body)
			})
			_, err := NewDataAPIClient("k", "", client, zap.NewNop()).SearchVideos(context.Background(), "q", 5)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

const innerTubeFixture = `{"contents":{"twoColumnSearchResultsRenderer":{"primaryContents":{"sectionListRenderer":{"contents":[
	{"itemSectionRenderer":{"contents":[
		{"adSlotRenderer":{}},
		{"videoRenderer":{"videoId":"dQw4w9WgXcQ","title":{"runs":[{"text":"Never Gonna Give You Up"}]},
		 "ownerText":{"runs":[{"text":"Rick Astley"}]},"lengthText":{"simpleText":"3:33"},
		 "thumbnail":{"thumbnails":[{"url":"//i.ytimg.com/small.jpg"},{"url":"//i.ytimg.com/big.jpg"}]}}},
		{"videoRenderer":{"videoId":"live0000000","title":{"simpleText":"Live radio"},
		 "longBylineText":{"runs":[{"text":"Lofi Girl"}]}}}
	]}},
	{"continuationItemRenderer":{}}
]}}}}}`

func TestInnerTubeClientSearchVideos(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"query":"rick"`)
		assert.Contains(t, string(body), `"clientName":"WEB"`)
		_, _ = w.Write([]byte(innerTubeFixture))
	}))
	defer server.Close()

	videos, err := NewInnerTubeClient(server.URL, server.Client()).SearchVideos(context.Background(), "rick", 25)
	require.NoError(t, err)
	require.Len(t, videos, 2)

	assert.Equal(t, RawVideo{
		ID:        "dQw4w9WgXcQ",
		Title:     "Never Gonna Give You Up",
		Channel:   "Rick Astley",
		Duration:  "3:33",
		Thumbnail: "https://i.ytimg.com/big.jpg",
	}, videos[0])
	assert.Equal(t, "Live radio", videos[1].Title)
	assert.Equal(t, "Lofi Girl", videos[1].Channel)
	assert.Nil(t, videos[1].Duration)
}

func TestParseInnerTubeSearch(t *testing.T) {
	videos, err := parseInnerTubeSearch([]byte(innerTubeFixture), 1)
	require.NoError(t, err)
	assert.Len(t, videos, 1)

	_, err = parseInnerTubeSearch([]byte(`{"contents":{}}`), 10)
	assert.ErrorIs(t, err, core.ErrUpstreamShape)

	_, err = parseInnerTubeSearch([]byte(`<html>`), 10)
	assert.ErrorIs(t, err, core.ErrUpstreamShape)
}

func TestOEmbedLookupSong(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    core.SongResult
		wantErr error
	}{
		{
			name:   "vevo channel",
			status: http.StatusOK,
			body:   `{"title":"Rick Astley - Never Gonna Give You Up (Official Music Video)","author_name":"RickAstleyVEVO","thumbnail_url":"https://i.ytimg.com/hq.jpg"}`,
			want: core.SongResult{
				Title:    "Rick Astley - Never Gonna Give You Up",
				Author:   "Rick Astley",
				Duration: "N/A",
				VideoID:  "dQw4w9WgXcQ",
			},
		},
		{name: "unknown video", status: http.StatusNotFound, body: `Not Found`, wantErr: core.ErrNotFound},
		{name: "private video", status: http.StatusUnauthorized, body: `Unauthorized`, wantErr: core.ErrNotFound},
		{name: "bad request", status: http.StatusBadRequest, body: `Bad Request`, wantErr: core.ErrNotFound},
		{name: "server error", status: http.StatusBadGateway, body: ``, wantErr: core.ErrUpstreamUnavailable},
		{name: "garbage", status: http.StatusOK, body: `<html>`, wantErr: core.ErrUpstreamShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", r.URL.Query().Get("url"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			lookup := NewOEmbedLookup(server.URL, server.Client(), zap.NewNop())
			song, err := lookup.Song(context.Background(), "dQw4w9WgXcQ")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, song.Thumbnail)
			assert.Equal(t, "https://i.ytimg.com/hq.jpg", *song.Thumbnail)
			song.Thumbnail = nil
			assert.Equal(t, tt.want, song)
		})
	}
}

func TestOEmbedLookupRejectsMalformedID(t *testing.T) {
	lookup := NewOEmbedLookup("http://127.0.0.1:0", http.DefaultClient, zap.NewNop())
	_, err := lookup.Song(context.Background(), "bad id")
	assert.ErrorIs(t, err, core.ErrValidation)
}
