package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/chrissnell/stormtide/pkg/tidephase"
)

func main() {
	var timeStr string
	flag.StringVar(&timeStr, "time", "", "UTC time to classify (RFC3339, e.g. 2015-10-02T12:00:00Z)")
	flag.Parse()

	var t time.Time
	if timeStr == "" {
		t = time.Now().UTC()
	} else {
		var err error
		t, err = time.Parse(time.RFC3339, timeStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing time: %v\n", err)
			os.Exit(1)
		}
	}

	phase := tidephase.Calculate(t)

	fmt.Printf("Tidal phase for %s\n", t.Format(time.RFC3339))
	fmt.Printf("  Tide:           %s\n", phase.ClassName())
	fmt.Printf("  Moon Phase:     %s\n", phase.MoonPhase)
	fmt.Printf("  Illumination:   %.1f%%\n", phase.Illumination*100)
	fmt.Printf("  Elongation:     %.1f°\n", phase.Elongation)
	fmt.Printf("  Nearest syzygy: %s (%.1f days)\n", phase.Syzygy.Format(time.RFC3339), phase.DaysToSyzygy)
}
