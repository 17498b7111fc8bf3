package main

import (
	"fmt"
	"io"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

const statsviewAddr = "localhost:12600"

// launchStatsview serves the Go runtime statistics in a new goroutine. The
// returned function shuts the server down.
func launchStatsview(output io.Writer) (stop func()) {
	viewer.SetConfiguration(viewer.WithAddr(statsviewAddr))
	mgr := statsview.New()
	go mgr.Start()

	fmt.Fprintf(output, "stats server available at http://%s/debug/statsview\n", statsviewAddr)
	return mgr.Stop
}
