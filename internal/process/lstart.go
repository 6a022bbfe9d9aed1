package process

import (
	"strconv"
	"strings"
	"time"

	"github.com/lu-zhengda/ports/internal/port"
)

var months = map[string]time.Month{
	"Jan": time.January,
	"Feb": time.February,
	"Mar": time.March,
	"Apr": time.April,
	"May": time.May,
	"Jun": time.June,
	"Jul": time.July,
	"Aug": time.August,
	"Sep": time.September,
	"Oct": time.October,
	"Nov": time.November,
	"Dec": time.December,
}

// ParseLstart parses the output of ps -o lstart=, e.g. "Wed Jan  1 12:34:56 2025",
// interpreting it in loc. Single-digit days are space padded by ps, so the
// text is split on runs of whitespace.
func ParseLstart(text string, loc *time.Location) (time.Time, error) {
	fields := strings.Fields(text)
	if len(fields) != 5 {
		return time.Time{}, port.FormatError("invalid lstart format: %q", text)
	}

	month, ok := months[fields[1]]
	if !ok {
		return time.Time{}, port.FormatError("unknown month %q in %q", fields[1], text)
	}

	day, err := strconv.Atoi(fields[2])
	if err != nil {
		return time.Time{}, port.FormatError("invalid day %q in %q", fields[2], text)
	}

	clock := strings.Split(fields[3], ":")
	if len(clock) != 3 {
		return time.Time{}, port.FormatError("invalid time %q in %q", fields[3], text)
	}
	var hms [3]int
	for i, part := range clock {
		n, err := strconv.Atoi(part)
		if err != nil {
			return time.Time{}, port.FormatError("invalid time %q in %q", fields[3], text)
		}
		hms[i] = n
	}

	year, err := strconv.Atoi(fields[4])
	if err != nil {
		return time.Time{}, port.FormatError("invalid year %q in %q", fields[4], text)
	}

	if loc == nil {
		loc = time.Local
	}
	t := time.Date(year, month, day, hms[0], hms[1], hms[2], 0, loc)

	// time.Date normalises out-of-range values (Feb 30 -> Mar 2), so compare
	// the result against the input to reject impossible dates.
	if t.Year() != year || t.Month() != month || t.Day() != day ||
		t.Hour() != hms[0] || t.Minute() != hms[1] || t.Second() != hms[2] {
		return time.Time{}, port.FormatError("invalid date: %q", text)
	}
	return t, nil
}
