package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/chrissnell/stormtide/internal/app"
	"github.com/chrissnell/stormtide/internal/log"
	"github.com/chrissnell/stormtide/pkg/config"
)

const version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH

func main() {
	cfgFile := flag.String("config", "stormtide.yaml", "Path to the run configuration (YAML)")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")

	outputName := flag.String("output-name", "", "Override output_name")
	outputDir := flag.String("output-dir", "", "Override output_dir")
	seaFile := flag.String("sea-file", "", "Override sea.file")
	airFile := flag.String("air-file", "", "Override air.file")
	sea4Hz := flag.Bool("sea-4hz", false, "Compute wave statistics from a 4 Hz sea record")
	formats := flag.String("formats", "", "Override outputs.formats (comma separated: xlsx,pdf,msgpack,json)")
	ledgerPath := flag.String("ledger", "", "Record the run in this SQLite ledger")
	textfile := flag.String("metrics-textfile", "", "Write Prometheus metrics to this textfile")
	flag.Parse()

	if *showVersion {
		fmt.Printf("stormtide %s\n", version)
		os.Exit(0)
	}

	// Set up logging
	if err := log.Init(*debug); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	overrides := []config.Override{func(c *config.RunConfig) {
		if *outputName != "" {
			c.OutputName = *outputName
		}
		if *outputDir != "" {
			c.OutputDir = *outputDir
		}
		if *seaFile != "" {
			c.Sea.File = *seaFile
		}
		if *airFile != "" {
			c.Air.File = *airFile
		}
		if set["sea-4hz"] {
			c.Sea4Hz = *sea4Hz
		}
		if *formats != "" {
			c.Outputs.Formats = strings.Split(*formats, ",")
		}
		if *ledgerPath != "" {
			c.Ledger.Path = *ledgerPath
		}
		if *textfile != "" {
			c.Metrics.TextfilePath = *textfile
		}
	}}

	filename, _ := filepath.Abs(*cfgFile)
	application := app.New(config.NewYAMLProvider(filename, overrides...), log.GetSugaredLogger())
	res, err := application.Run(context.Background())
	if err != nil {
		log.Errorf("Failed to load configuration. Did you pass the -config flag? Run with -h for help: %v", err)
		os.Exit(1)
	}

	for _, code := range res.Codes() {
		fmt.Println(code)
	}
}
