// # cmd/tangle/app.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tangle/internal/config"
	"tangle/internal/diag"
	"tangle/internal/graph"
	"tangle/internal/output"
	"tangle/internal/parser"
	"tangle/internal/server"
	"tangle/internal/watcher"
)

const watchDebounce = 500 * time.Millisecond

type App struct {
	cfg     *config.Config
	parser  *parser.Parser
	verbose bool
}

func NewApp(cfg *config.Config, verbose bool) *App {
	return &App{
		cfg:     cfg,
		parser:  parser.NewParser(parser.NewGrammarLoader()),
		verbose: verbose,
	}
}

// sink returns the diagnostic sink for a build: verbose runs stream typed
// events through slog, quiet runs discard them.
func (a *App) sink() diag.Sink {
	if a.verbose {
		return diag.NewSlogSink(slog.Default())
	}
	return diag.Nop()
}

func (a *App) BuildGraph(ctx context.Context) (*graph.Graph, error) {
	builder, err := graph.NewBuilder(a.cfg.Root, a.cfg, a.parser, a.sink())
	if err != nil {
		return nil, err
	}
	return builder.Build(ctx)
}

type outputFormat int

const (
	formatSummary outputFormat = iota
	formatJSON
	formatDOT
	formatMermaid
	formatTSV
)

func (a *App) RunOnce(ctx context.Context, format outputFormat) error {
	g, err := a.BuildGraph(ctx)
	if err != nil {
		return err
	}

	switch format {
	case formatJSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(g.Serialize())
	case formatDOT:
		dot, err := output.NewDOTGenerator(g).Generate()
		if err != nil {
			return err
		}
		fmt.Print(dot)
		return nil
	case formatMermaid:
		mmd, err := output.NewMermaidGenerator(g).Generate()
		if err != nil {
			return err
		}
		fmt.Print(mmd)
		return nil
	case formatTSV:
		tsv, err := output.NewTSVGenerator(g).Generate()
		if err != nil {
			return err
		}
		fmt.Print(tsv)
		return nil
	}

	printSummary(g)
	return nil
}

func printSummary(g *graph.Graph) {
	circular := g.CircularEdges()
	fmt.Printf("%d files, %d imports, %d circular edges\n",
		g.NodeCount(), g.EdgeCount(), len(circular))
	for _, e := range circular {
		fmt.Printf("  circular: %s -> %s\n", e.Source, e.Target)
	}
}

func (a *App) RunServe(addr string) error {
	srv := server.New(addr, a.cfg, a.parser)

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-done:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Stop(ctx)
	}
}

func (a *App) RunWatch(ctx context.Context) error {
	g, err := a.BuildGraph(ctx)
	if err != nil {
		return err
	}
	printSummary(g)
	lastCircular := len(g.CircularEdges())

	w, err := watcher.New(watchDebounce, a.cfg.Exclude, func(paths []string) {
		slog.Info("rebuilding", "changed", len(paths))
		g, err := a.BuildGraph(ctx)
		if err != nil {
			slog.Error("rebuild failed", "error", err)
			return
		}
		circular := len(g.CircularEdges())
		if circular != lastCircular {
			slog.Warn("circular edge count changed", "was", lastCircular, "now", circular)
		}
		lastCircular = circular
		printSummary(g)
	})
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Watch(a.cfg.Root); err != nil {
		return err
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)
	<-done
	return nil
}

func (a *App) RunUI(ctx context.Context) error {
	g, err := a.BuildGraph(ctx)
	if err != nil {
		return err
	}

	program := tea.NewProgram(newModel(), tea.WithAltScreen())

	w, err := watcher.New(watchDebounce, a.cfg.Exclude, func(paths []string) {
		g, err := a.BuildGraph(ctx)
		if err != nil {
			slog.Error("rebuild failed", "error", err)
			return
		}
		program.Send(graphMsg{graph: g})
	})
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Watch(a.cfg.Root); err != nil {
		return err
	}

	go program.Send(graphMsg{graph: g})

	_, err = program.Run()
	return err
}
