package cli

import (
	"fmt"
	"time"
)

// FormatDuration formats a duration to a human readable string with
// millisecond resolution
func FormatDuration(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	secs := float64(ms) / 1000
	if secs < 60 {
		return fmt.Sprintf("%.1fs", secs)
	}
	mins := int(secs / 60)
	secs = secs - float64(mins*60)
	return fmt.Sprintf("%dm%.1fs", mins, secs)
}

// FormatBytes formats bytes to human readable string
func FormatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatSamples formats a sample count with its duration at sampleRate,
// e.g. "10200 (231ms)"
func FormatSamples(samples, sampleRate int) string {
	if sampleRate <= 0 {
		return fmt.Sprintf("%d", samples)
	}
	d := time.Duration(samples) * time.Second / time.Duration(sampleRate)
	return fmt.Sprintf("%d (%s)", samples, FormatDuration(d))
}
