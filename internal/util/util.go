package util

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatDuration renders whole seconds as H:MM:SS, with a "N day(s), " prefix
// for durations of one day or more.
func FormatDuration(seconds float64) string {
	if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}

	total := int64(seconds)
	days := total / 86400
	total %= 86400
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60

	hms := fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)

	switch {
	case days == 1:
		return fmt.Sprintf("1 day, %s", hms)
	case days > 1:
		return fmt.Sprintf("%d days, %s", days, hms)
	}

	return hms
}

// FormatETA returns mm:ss or hh:mm:ss, or an empty string if eta is unknown.
func FormatETA(eta time.Duration) string {
	sec := int(eta.Seconds())
	if sec <= 0 {
		return ""
	}

	hours := sec / 3600
	minutes := (sec % 3600) / 60
	seconds := sec % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}

	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// HumanSize formats a byte count with SI units ("2.5 MB").
func HumanSize(size int64) string {
	if size < 0 {
		size = 0
	}

	return humanize.Bytes(uint64(size))
}

// HumanSpeed formats a transfer rate in bytes per second, or returns an empty
// string if the rate is unknown.
func HumanSpeed(bps float64) string {
	if bps <= 0 || math.IsNaN(bps) || math.IsInf(bps, 0) {
		return ""
	}

	return humanize.Bytes(uint64(bps)) + "/s"
}

// ClampPercent limits p to [0, 100]. NaN becomes 0.
func ClampPercent(p float64) float64 {
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 100:
		return 100
	}

	return p
}
