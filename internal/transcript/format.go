package transcript

import (
	"fmt"
	"math"
)

// FormatTimestamp renders a seconds value as zero-padded HH:MM:SS.
// Negative, NaN or infinite input yields "00:00:00" rather than an error;
// a bad timestamp should never break a response.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return "00:00:00"
	}
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}
