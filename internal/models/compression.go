package models

import "time"

// CompressionStat describes one output of a compression run. The entry for
// the input file has Algorithm "original".
type CompressionStat struct {
	Algorithm string        `json:"algorithm"`
	Path      string        `json:"path"`
	Size      int64         `json:"size"`
	Duration  time.Duration `json:"duration"`
}
