package report

import (
	"fmt"
	"strconv"
	"strings"
)

// DurationNotComputable is the sentinel carried into a report when the
// start or end time cannot be parsed. Malformed input never aborts a flow.
const DurationNotComputable = "not computable"

// DurationText computes the elapsed time between two HH:MM clock values as
// "<n> jam <m> menit". An end before the start is treated as spanning
// midnight. Times are stored as the requester typed them, so any parse
// failure yields the sentinel instead of an error.
func DurationText(start, end string) string {
	startMin, ok := parseClock(start)
	if !ok {
		return DurationNotComputable
	}
	endMin, ok := parseClock(end)
	if !ok {
		return DurationNotComputable
	}

	elapsed := endMin - startMin
	if elapsed < 0 {
		elapsed += 24 * 60
	}

	return fmt.Sprintf("%d jam %d menit", elapsed/60, elapsed%60)
}

// parseClock parses "HH:MM" into minutes since midnight
func parseClock(value string) (int, bool) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, false
	}

	hours, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, false
	}

	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, false
	}

	return hours*60 + minutes, true
}
