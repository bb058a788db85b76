// # internal/graph/builder_test.go
package graph

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tangle/internal/config"
	"tangle/internal/diag"
	tangleerrors "tangle/internal/errors"
	"tangle/internal/parser"
)

func writeFixture(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	}
}

func buildFixture(t *testing.T, root string, cfg *config.Config) *Graph {
	t.Helper()
	p := parser.NewParser(parser.NewGrammarLoader())
	b, err := NewBuilder(root, cfg, p, diag.Nop())
	require.NoError(t, err)
	g, err := b.Build(context.Background())
	require.NoError(t, err)
	return g
}

func TestBuildRejectsMissingRoot(t *testing.T) {
	p := parser.NewParser(parser.NewGrammarLoader())
	_, err := NewBuilder(filepath.Join(t.TempDir(), "nope"), config.Default(), p, diag.Nop())
	require.Error(t, err)
	assert.True(t, tangleerrors.IsCode(err, tangleerrors.CodeNotFound))
}

func TestBuildRejectsFileRoot(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a.ts")
	require.NoError(t, os.WriteFile(file, []byte(""), 0o644))

	p := parser.NewParser(parser.NewGrammarLoader())
	_, err := NewBuilder(file, config.Default(), p, diag.Nop())
	require.Error(t, err)
	assert.True(t, tangleerrors.IsCode(err, tangleerrors.CodeValidationError))
}

func TestBuildBasicGraph(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, map[string]string{
		"a.ts":          `import { c } from "./lib/common";`,
		"b.ts":          `import { c } from "lib/common";`,
		"lib/common.ts": `export const c = 1;`,
	})

	cfg := config.Default()
	cfg.Aliases = []config.Alias{{Pattern: "lib/*", Targets: []string{"lib/*"}}}
	g := buildFixture(t, root, cfg)

	require.Equal(t, 3, g.NodeCount())

	// Identity collapse: alias-based and relative imports of the same file
	// produce the identical node id.
	a, ok := g.Node("a.ts")
	require.True(t, ok)
	assert.Equal(t, []string{"lib/common.ts"}, a.Imports)

	b, ok := g.Node("b.ts")
	require.True(t, ok)
	assert.Equal(t, []string{"lib/common.ts"}, b.Imports)

	common, ok := g.Node("lib/common.ts")
	require.True(t, ok)
	importers := append([]string(nil), common.ImportedBy...)
	sort.Strings(importers)
	assert.Equal(t, []string{"a.ts", "b.ts"}, importers)

	assert.Equal(t, 2, g.EdgeCount())
	assert.Empty(t, g.CircularEdges())
}

func TestBuildNoExternalLeakage(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, map[string]string{
		"a.ts": `
import x from "react";
import fs from "node:fs";
import { c } from "./b";
`,
		"b.ts": `export const c = 1;`,
	})

	g := buildFixture(t, root, config.Default())

	require.Equal(t, 2, g.NodeCount())
	a, _ := g.Node("a.ts")
	assert.Equal(t, []string{"b.ts"}, a.Imports)
	// Bare package names are silently dropped, not recorded as unresolved.
	assert.Empty(t, a.Unresolved)
}

func TestBuildUnresolvedDiagnostic(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, map[string]string{
		"a.ts": `import { gone } from "./missing";`,
	})

	collector := &diag.Collector{}
	p := parser.NewParser(parser.NewGrammarLoader())
	b, err := NewBuilder(root, config.Default(), p, collector)
	require.NoError(t, err)
	g, err := b.Build(context.Background())
	require.NoError(t, err)

	a, _ := g.Node("a.ts")
	assert.Empty(t, a.Imports)
	assert.Equal(t, []string{"./missing"}, a.Unresolved)

	events := collector.ByKind("import_unresolved")
	require.Len(t, events, 1)
	ev := events[0].(diag.ImportUnresolved)
	assert.Equal(t, "./missing", ev.Specifier)
	assert.Equal(t, "a.ts", ev.FromFile)
}

func TestBuildReadFailureSkipsFile(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, map[string]string{
		"a.ts": `import { c } from "./b";`,
		"b.ts": `export const c = 1;`,
	})
	// A dangling symlink survives the scan as a candidate but fails at read
	// time; the build must degrade to a file_skipped diagnostic, not abort.
	require.NoError(t, os.Symlink(filepath.Join(root, "gone.ts"), filepath.Join(root, "ghost.ts")))

	collector := &diag.Collector{}
	p := parser.NewParser(parser.NewGrammarLoader())
	b, err := NewBuilder(root, config.Default(), p, collector)
	require.NoError(t, err)
	g, err := b.Build(context.Background())
	require.NoError(t, err)

	require.Equal(t, 3, g.NodeCount())

	ghost, ok := g.Node("ghost.ts")
	require.True(t, ok, "unreadable files keep their node")
	assert.Empty(t, ghost.Imports)
	assert.Empty(t, ghost.Unresolved)

	events := collector.ByKind("file_skipped")
	require.Len(t, events, 1)
	assert.Equal(t, "ghost.ts", events[0].(diag.FileSkipped).Path)

	// Sibling files are linked as usual.
	a, _ := g.Node("a.ts")
	assert.Equal(t, []string{"b.ts"}, a.Imports)
}

func TestBuildExcludeRemovesNodeAndEdges(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, map[string]string{
		"a.ts":      `import { t } from "./b.test";`,
		"b.test.ts": `export const t = 1;`,
	})

	cfg := config.Default()
	cfg.Exclude = []string{"*.test.*"}
	g := buildFixture(t, root, cfg)

	assert.False(t, g.Has("b.test.ts"), "excluded files must not become nodes")
	a, _ := g.Node("a.ts")
	assert.Empty(t, a.Imports, "edges targeting excluded files must be dropped")
	assert.Equal(t, 0, g.EdgeCount())
}

func TestBuildIncludePolicy(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, map[string]string{
		"src/a.ts":   `export const a = 1;`,
		"other/b.ts": `export const b = 1;`,
	})

	cfg := config.Default()
	cfg.Include = []string{"src/*"}
	g := buildFixture(t, root, cfg)

	assert.True(t, g.Has("src/a.ts"))
	assert.False(t, g.Has("other/b.ts"))
}

func TestBuildCircularAnnotation(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, map[string]string{
		"p.ts": `import "./q";`,
		"q.ts": `import "./r";`,
		"r.ts": `import "./p";`,
		"s.ts": `import "./p";`,
	})

	g := buildFixture(t, root, config.Default())

	circular := make(map[[2]string]bool)
	for _, e := range g.CircularEdges() {
		circular[[2]string{e.Source, e.Target}] = true
	}
	assert.Len(t, circular, 3)
	assert.True(t, circular[[2]string{"p.ts", "q.ts"}])
	assert.True(t, circular[[2]string{"q.ts", "r.ts"}])
	assert.True(t, circular[[2]string{"r.ts", "p.ts"}])
	assert.False(t, circular[[2]string{"s.ts", "p.ts"}])
}

func TestBuildSelfImport(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, map[string]string{
		"loop.ts": `import "./loop";`,
	})

	g := buildFixture(t, root, config.Default())

	edges := g.CircularEdges()
	require.Len(t, edges, 1)
	assert.Equal(t, "loop.ts", edges[0].Source)
	assert.Equal(t, "loop.ts", edges[0].Target)
}

func TestBuildIdempotence(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, map[string]string{
		"a.ts":         `import "./b"; import "./lib";`,
		"b.ts":         `import "./a";`,
		"lib/index.ts": `export {};`,
		"c.test.ts":    `import "./a";`,
	})

	cfg := config.Default()
	cfg.Exclude = []string{"*.test.*"}

	first := buildFixture(t, root, cfg)
	second := buildFixture(t, root, cfg)

	require.True(t, reflect.DeepEqual(first.Serialize(), second.Serialize()),
		"two builds over an unchanged tree must be equal")
}

func TestBuildShortLabels(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, map[string]string{
		"lib/common.ts": `export {};`,
	})

	cfg := config.Default()
	cfg.ShowFullPath = false
	g := buildFixture(t, root, cfg)

	n, _ := g.Node("lib/common.ts")
	assert.Equal(t, "common.ts", n.Label)
	assert.Equal(t, "lib/common.ts", n.ID, "labels never feed identity")
}
