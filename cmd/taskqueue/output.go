package main

import (
	"github.com/fatih/color"
)

var (
	success = color.New(color.FgGreen).SprintFunc()
	failure = color.New(color.FgRed).SprintFunc()
	warning = color.New(color.FgYellow).SprintFunc()
	header  = color.New(color.Bold, color.FgCyan).SprintFunc()
	faint   = color.New(color.Faint).SprintFunc()
)

// shortID keeps the first block of a uuid for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
