//go:build statsview

package profiling

import (
	"fmt"
	"io"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

// StatsAddress is where the statistics viewer listens.
const StatsAddress = "localhost:12600"

const statsPath = "/debug/statsview"

// LaunchStatsView serves live runtime charts, and the standard pprof
// handlers, on StatsAddress in a new goroutine.
func LaunchStatsView(output io.Writer) {
	go func() {
		viewer.SetConfiguration(viewer.WithAddr(StatsAddress))
		statsview.New().Start()
	}()
	fmt.Fprintf(output, "stats viewer available at http://%s%s\n", StatsAddress, statsPath)
}

// StatsViewAvailable reports whether the binary was built with the
// statsview tag.
func StatsViewAvailable() bool { return true }
