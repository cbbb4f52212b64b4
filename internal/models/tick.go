package models

import "time"

// Tick is one successful emission of the ticker.
type Tick struct {
	Seq     int           `json:"seq"`
	Elapsed time.Duration `json:"elapsed"`
	At      time.Time     `json:"at"`
}
