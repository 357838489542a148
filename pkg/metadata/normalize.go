package metadata

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	// expectedSplitParts is the expected number of parts when splitting "Artist - Title".
	expectedSplitParts = 2
	// titleSeparator separates artist and title in most uploaded video titles.
	titleSeparator = " - "
)

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	camelCaseRegex  = regexp.MustCompile(`([a-z])([A-Z])`)

	// videoMarkerRegex matches the video-specific decorations uploaders append to song titles.
	videoMarkerRegex = regexp.MustCompile(`(?i)\s*[\(\[]\s*(?:official\s+(?:music\s+)?(?:video|audio)|lyric\s+video|lyrics|visualizer|hd|4k)\s*[\)\]]`)
)

// CleanText returns s in Unicode NFC form with runs of whitespace collapsed to a single
// space and surrounding whitespace removed.
func CleanText(s string) string {
	s = norm.NFC.String(s)
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// CleanTitle strips markers like "(Official Video)" or "[HD]" from a video title.
func CleanTitle(title string) string {
	return CleanText(videoMarkerRegex.ReplaceAllString(title, ""))
}

// ExtractArtist guesses the performing artist from a video title and its channel name.
//
// VEVO channels ("RickAstleyVEVO") and auto-generated "- Topic" channels name the
// artist directly. Otherwise an "Artist - Title" title wins over the channel name.
func ExtractArtist(title, channel string) string {
	channel = CleanText(channel)

	if strings.HasSuffix(channel, "VEVO") {
		return splitCamelCase(strings.TrimSuffix(channel, "VEVO"))
	}

	if strings.HasSuffix(channel, " - Topic") {
		return strings.TrimSuffix(channel, " - Topic")
	}

	if strings.Contains(title, titleSeparator) {
		parts := strings.SplitN(title, titleSeparator, expectedSplitParts)
		if len(parts) == expectedSplitParts {
			if artist := CleanText(parts[0]); artist != "" {
				return artist
			}
		}
	}

	return channel
}

func splitCamelCase(s string) string {
	return camelCaseRegex.ReplaceAllString(s, "$1 $2")
}
