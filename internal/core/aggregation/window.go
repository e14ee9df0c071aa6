package aggregation

import (
	"fmt"
	"strings"
	"time"
)

// ParseWindowSize parses a duration string, accepting Go duration syntax
// ("30m", "1h") plus "Xd" for days.
func ParseWindowSize(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("window size must not be empty")
	}

	// time.ParseDuration has no day unit.
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err != nil {
			return 0, fmt.Errorf("invalid window size %q: %w", s, err)
		}
		if days <= 0 {
			return 0, fmt.Errorf("window size must be positive, got %q", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid window size %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("window size must be positive, got %q", s)
	}
	return d, nil
}

// ParseGranularity accepts "hour"/"day" or the equivalent window sizes "1h"/"1d".
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case GranularityHour, GranularityDay:
		return g, nil
	}

	size, err := ParseWindowSize(s)
	if err != nil {
		return "", fmt.Errorf("invalid granularity %q: expected hour or day", s)
	}
	switch size {
	case time.Hour:
		return GranularityHour, nil
	case 24 * time.Hour:
		return GranularityDay, nil
	}
	return "", fmt.Errorf("unsupported granularity %q: only 1h and 1d buckets are materialized", s)
}

// BucketFor truncates a timestamp to a UTC granularity boundary.
// Example: BucketFor(10:35:42, time.Hour) → 10:00:00
func BucketFor(t time.Time, granularity time.Duration) time.Time {
	return t.UTC().Truncate(granularity)
}

// HourStart returns the start of the UTC hour containing t.
func HourStart(t time.Time) time.Time {
	return BucketFor(t, time.Hour)
}

// DayStart returns the start of the UTC day containing t.
func DayStart(t time.Time) time.Time {
	return BucketFor(t, 24*time.Hour)
}

// Starts lists every bucket start of granularity g overlapping [from, to).
func Starts(g Granularity, from, to time.Time) []time.Time {
	step := g.Duration()
	var out []time.Time
	for cur := BucketFor(from, step); cur.Before(to); cur = cur.Add(step) {
		out = append(out, cur)
	}
	return out
}
