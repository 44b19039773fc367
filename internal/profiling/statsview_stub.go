//go:build !statsview

package profiling

import "io"

// StatsAddress is where the statistics viewer would listen.
const StatsAddress = "localhost:12600"

// LaunchStatsView does nothing without the statsview build tag.
func LaunchStatsView(output io.Writer) {}

// StatsViewAvailable reports whether the binary was built with the
// statsview tag.
func StatsViewAvailable() bool { return false }
