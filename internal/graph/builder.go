// # internal/graph/builder.go
package graph

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"tangle/internal/config"
	"tangle/internal/diag"
	tangleerrors "tangle/internal/errors"
	"tangle/internal/observability"
	"tangle/internal/parser"
	"tangle/internal/resolver"
	"tangle/internal/scanner"
)

// Builder orchestrates scanner, parser and resolver into a Graph.
// One Builder builds one Graph per Build call; nothing is shared between
// builds except the read-only configuration.
type Builder struct {
	root     string
	cfg      *config.Config
	parser   *parser.Parser
	scanner  *scanner.Scanner
	resolver *resolver.Resolver
	sink     diag.Sink
}

// NewBuilder validates the root directory up front. A missing root or a
// root that is not a directory rejects the build before any scanning; it
// is the only condition that prevents a build from starting.
func NewBuilder(root string, cfg *config.Config, p *parser.Parser, sink diag.Sink) (*Builder, error) {
	if sink == nil {
		sink = diag.Nop()
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, tangleerrors.Wrap(err, tangleerrors.CodeValidationError, "invalid root path")
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		de := &tangleerrors.DomainError{Code: tangleerrors.CodeNotFound, Message: "root directory not found", Err: err}
		return nil, de.WithContext(tangleerrors.CtxPath, root)
	}
	if !info.IsDir() {
		de := &tangleerrors.DomainError{Code: tangleerrors.CodeValidationError, Message: "root is not a directory"}
		return nil, de.WithContext(tangleerrors.CtxPath, root)
	}

	aliases := make([]resolver.Alias, 0, len(cfg.Aliases))
	for _, a := range cfg.Aliases {
		aliases = append(aliases, resolver.Alias{Pattern: a.Pattern, Targets: a.Targets})
	}

	return &Builder{
		root:     absRoot,
		cfg:      cfg,
		parser:   p,
		scanner:  scanner.New(cfg.Extensions, cfg.Include, cfg.Exclude, sink),
		resolver: resolver.New(absRoot, cfg.BaseDir, cfg.Extensions, aliases, sink),
		sink:     sink,
	}, nil
}

// Build runs the full pipeline: scan, two graph passes, cycle annotation.
// The pipeline is synchronous and single-threaded over a filesystem
// snapshot; a file that disappears between passes is skipped, not fatal.
func (b *Builder) Build(ctx context.Context) (*Graph, error) {
	ctx, span := observability.Tracer.Start(ctx, "builder.Build",
		trace.WithAttributes(attribute.String("root", b.root)))
	defer span.End()

	start := time.Now()

	files, err := b.scan(ctx)
	if err != nil {
		return nil, err
	}

	g := New()

	// Pass 1: one node per file, so pass 2 checks targets against the
	// complete node set regardless of file order.
	for _, rel := range files {
		g.AddNode(&Node{
			ID:           rel,
			Label:        DisplayLabel(rel, b.cfg.ShowFullPath),
			AbsolutePath: filepath.Join(b.root, filepath.FromSlash(rel)),
		})
	}

	// Pass 2: read, extract, resolve, wire edges.
	b.link(ctx, g, files)

	b.detect(ctx, g)

	observability.BuildDuration.Observe(time.Since(start).Seconds())
	observability.GraphNodes.Set(float64(g.NodeCount()))
	observability.GraphEdges.Set(float64(g.EdgeCount()))
	observability.CircularEdges.Set(float64(len(g.CircularEdges())))

	return g, nil
}

func (b *Builder) scan(ctx context.Context) ([]string, error) {
	_, span := observability.Tracer.Start(ctx, "builder.scan")
	defer span.End()

	files, err := b.scanner.Scan(b.root)
	if err != nil {
		return nil, err
	}
	observability.FilesScanned.Add(float64(len(files)))
	return files, nil
}

func (b *Builder) link(ctx context.Context, g *Graph, files []string) {
	_, span := observability.Tracer.Start(ctx, "builder.link")
	defer span.End()

	for _, rel := range files {
		node, _ := g.Node(rel)

		content, err := os.ReadFile(node.AbsolutePath)
		if err != nil {
			// Recoverable: the node stays with empty imports.
			b.sink.Emit(diag.FileSkipped{Path: rel, Err: err})
			continue
		}

		file, err := b.parser.ParseFile(rel, content)
		if err != nil {
			b.sink.Emit(diag.FileSkipped{Path: rel, Err: err})
			continue
		}

		imports := make(map[string]bool)
		for _, specifier := range file.Specifiers() {
			if !b.resolver.IsCandidate(specifier) {
				// External package reference: silently dropped.
				continue
			}

			target, ok := b.resolver.Resolve(specifier, rel)
			if !ok {
				b.sink.Emit(diag.ImportUnresolved{Specifier: specifier, FromFile: rel})
				node.Unresolved = append(node.Unresolved, specifier)
				continue
			}

			// A resolved path pointing at an out-of-graph or excluded file
			// never becomes an edge.
			if !g.Has(target) || b.scanner.Excluded(target) {
				continue
			}
			imports[target] = true
		}

		targets := make([]string, 0, len(imports))
		for target := range imports {
			targets = append(targets, target)
		}
		node.Imports = sortedCopy(targets)
		for _, target := range node.Imports {
			if !g.AddEdge(rel, target) {
				slog.Warn("edge endpoint missing", "source", rel, "target", target)
			}
		}
	}
}

func (b *Builder) detect(ctx context.Context, g *Graph) {
	_, span := observability.Tracer.Start(ctx, "builder.detect")
	defer span.End()

	g.AnnotateCycles()
}
