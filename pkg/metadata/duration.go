// Package metadata normalizes the heterogeneous song metadata returned by upstream
// video platforms into the canonical shapes served to clients.
package metadata

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// UnknownDuration is emitted when no usable duration is available.
	UnknownDuration = "N/A"
	// secondsPerMinute is used to split a duration into minutes and seconds.
	secondsPerMinute = 60
	// secondsPerHour is used when converting ISO-8601 durations.
	secondsPerHour = 3600
	// secondsPerDay is used when converting ISO-8601 durations with a day component.
	secondsPerDay = 86400
)

var iso8601Regex = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// FormatDuration renders a duration as "M:SS".
//
// Numeric values are whole seconds. Strings that already contain a colon are
// returned unchanged. Zero, negative, empty and unrecognized values yield "N/A".
func FormatDuration(value any) string {
	switch v := value.(type) {
	case nil:
		return UnknownDuration
	case string:
		if strings.Contains(v, ":") {
			return v
		}
		return UnknownDuration
	case int:
		return formatSeconds(int64(v))
	case int32:
		return formatSeconds(int64(v))
	case int64:
		return formatSeconds(v)
	case float32:
		return formatSeconds(int64(v))
	case float64:
		return formatSeconds(int64(v))
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return formatSeconds(n)
		}
		if f, err := v.Float64(); err == nil {
			return formatSeconds(int64(f))
		}
		return UnknownDuration
	case time.Duration:
		return formatSeconds(int64(v / time.Second))
	default:
		return UnknownDuration
	}
}

func formatSeconds(total int64) string {
	if total <= 0 {
		return UnknownDuration
	}
	return fmt.Sprintf("%d:%02d", total/secondsPerMinute, total%secondsPerMinute)
}

// ParseISO8601Seconds converts durations such as "PT3M4S" or "P1DT1H" into seconds.
// Unparseable input returns 0.
func ParseISO8601Seconds(duration string) int {
	matches := iso8601Regex.FindStringSubmatch(strings.TrimSpace(duration))
	if matches == nil {
		return 0
	}

	parts := make([]int, len(matches)-1)
	for i, m := range matches[1:] {
		if m == "" {
			continue
		}
		n, err := strconv.Atoi(m)
		if err != nil {
			return 0
		}
		parts[i] = n
	}

	return parts[0]*secondsPerDay + parts[1]*secondsPerHour + parts[2]*secondsPerMinute + parts[3]
}
