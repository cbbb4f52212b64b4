package util

import (
	"fmt"
	"math"
)

// Round rounds to 2 decimals
func Round(f float64) float64 {
	return math.Round(f*100) / 100
}

// Percent returns part as a percentage of whole, rounded to 2 decimals.
// It returns 0 when whole is 0.
func Percent[T ~int | ~int64](part, whole T) float64 {
	if whole == 0 {
		return 0
	}
	return Round(float64(part) / float64(whole) * 100)
}

// HumanBytes formats a size in bytes with a binary unit, e.g. 1.5 KiB.
func HumanBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
