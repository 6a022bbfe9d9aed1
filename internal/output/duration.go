package output

import (
	"fmt"
	"time"
)

// FormatDuration renders an uptime with at most two units, dropping a zero
// second unit: 30s, 5m, 1h, 1h 15m, 1d, 1d 3h. Sub-second parts are ignored.
func FormatDuration(d time.Duration) string {
	secs := int64(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	if secs < 60 {
		return fmt.Sprintf("%ds", secs)
	}

	minutes := secs / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}

	hours := minutes / 60
	if hours < 24 {
		if m := minutes % 60; m > 0 {
			return fmt.Sprintf("%dh %dm", hours, m)
		}
		return fmt.Sprintf("%dh", hours)
	}

	days := hours / 24
	if h := hours % 24; h > 0 {
		return fmt.Sprintf("%dd %dh", days, h)
	}
	return fmt.Sprintf("%dd", days)
}
