// # cmd/tangle/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"tangle/internal/config"
)

var (
	configPath = flag.String("config", "./tangle.toml", "Path to config file")
	rootDir    = flag.String("root", "", "Analysis root (overrides config)")
	jsonOut    = flag.Bool("json", false, "Print the serialized graph as JSON")
	dotOut     = flag.Bool("dot", false, "Print the graph in Graphviz DOT format")
	mermaidOut = flag.Bool("mermaid", false, "Print the graph as a Mermaid flowchart")
	tsvOut     = flag.Bool("tsv", false, "Print the edge list as TSV")
	serveAddr  = flag.String("serve", "", "Serve the graph API on this address (e.g. :8080)")
	watch      = flag.Bool("watch", false, "Rebuild on file changes")
	ui         = flag.Bool("ui", false, "Enable terminal UI mode")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging and diagnostics")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("tangle v%s\n", VERSION)
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}

	var output io.Writer = os.Stderr
	if *ui {
		// In UI mode, avoid stderr logs corrupting the TUI.
		output = io.Discard
	}
	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg := config.LoadOrDefault(*configPath)
	if *rootDir != "" {
		cfg.Root = *rootDir
	}

	app := NewApp(cfg, *verbose)
	ctx := context.Background()

	var err error
	switch {
	case *serveAddr != "":
		err = app.RunServe(*serveAddr)
	case *ui:
		err = app.RunUI(ctx)
	case *watch:
		err = app.RunWatch(ctx)
	default:
		format := formatSummary
		switch {
		case *jsonOut:
			format = formatJSON
		case *dotOut:
			format = formatDOT
		case *mermaidOut:
			format = formatMermaid
		case *tsvOut:
			format = formatTSV
		}
		err = app.RunOnce(ctx, format)
	}
	if err != nil {
		slog.Error("tangle failed", "error", err)
		os.Exit(1)
	}
}
