package display

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// Distance formats kilometres with thousands separators: "4,794 km".
// Distances under 10 km keep one decimal.
func Distance(km float64) string {
	if km < 10 {
		return humanize.FtoaWithDigits(math.Round(km*10)/10, 1) + " km"
	}
	return humanize.Comma(int64(math.Round(km))) + " km"
}

// Bearing formats a compass bearing: "118.9° (ESE)".
func Bearing(degrees float64, compass string) string {
	return fmt.Sprintf("%.1f° (%s)", degrees, compass)
}

// Ordinal returns "1st", "2nd", "29th".
func Ordinal(n int) string {
	return humanize.Ordinal(n)
}
