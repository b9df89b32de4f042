package model

import (
	"math"
	"strconv"
	"strings"
)

// ParseMetricValue converts a display string like "1.2K" or "3,400" to an
// absolute count. Returns 0 for empty or unparseable input. Supports the
// K/M suffixes streaming pages use for viewer and like counts.
func ParseMetricValue(s string) int {
	if s == "" {
		return 0
	}
	clean := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))

	multiplier := 1.0
	switch {
	case strings.Contains(clean, "k"):
		multiplier = 1_000
	case strings.Contains(clean, "m"):
		multiplier = 1_000_000
	}

	clean = strings.Map(func(r rune) rune {
		if r == 'k' || r == 'm' {
			return -1
		}
		return r
	}, clean)

	n, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(n) {
		return 0
	}
	return int(math.Floor(n * multiplier))
}

// FormatMetricValue renders a count the way streaming pages display it:
// 999 → "999", 1200 → "1.2K", 3400000 → "3.4M".
func FormatMetricValue(n int) string {
	switch {
	case n >= 1_000_000:
		return trimZero(strconv.FormatFloat(float64(n)/1_000_000, 'f', 1, 64)) + "M"
	case n >= 1_000:
		return trimZero(strconv.FormatFloat(float64(n)/1_000, 'f', 1, 64)) + "K"
	default:
		return strconv.Itoa(n)
	}
}

func trimZero(s string) string {
	return strings.TrimSuffix(s, ".0")
}
