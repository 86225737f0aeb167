package takeout

import (
	"math"
	"regexp"
	"strconv"
	"time"
)

var isoDurationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseDuration converts a YouTube contentDetails duration such as "PT4M13S"
// into a time.Duration. It reports false for values it cannot interpret,
// including day-based durations ("P1DT2H"), live placeholders ("P0D") and
// values too large for a time.Duration.
func ParseDuration(s string) (time.Duration, bool) {
	m := isoDurationPattern.FindStringSubmatch(s)
	if m == nil || (m[1] == "" && m[2] == "" && m[3] == "") {
		return 0, false
	}

	var total time.Duration
	units := []time.Duration{time.Hour, time.Minute, time.Second}
	for i, unit := range units {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.ParseInt(m[i+1], 10, 64)
		if err != nil || n > math.MaxInt64/int64(unit) {
			return 0, false
		}
		part := time.Duration(n) * unit
		if total > math.MaxInt64-part {
			return 0, false
		}
		total += part
	}

	return total, true
}
