// # internal/output/dot.go
package output

import (
	"fmt"
	"strings"

	"tangle/internal/graph"
)

type DOTGenerator struct {
	graph *graph.Graph
}

func NewDOTGenerator(g *graph.Graph) *DOTGenerator {
	return &DOTGenerator{graph: g}
}

func (d *DOTGenerator) Generate() (string, error) {
	var buf strings.Builder

	buf.WriteString("digraph dependencies {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=rounded, fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=8, penwidth=1.2];\n")
	buf.WriteString("  ranksep=1.5;\n")
	buf.WriteString("  nodesep=0.6;\n")
	buf.WriteString("  splines=polyline;\n")
	buf.WriteString("  overlap=false;\n\n")

	// Nodes touched by a circular edge get highlighted.
	inCycle := make(map[string]bool)
	for _, e := range d.graph.CircularEdges() {
		inCycle[e.Source] = true
		inCycle[e.Target] = true
	}

	buf.WriteString("  subgraph cluster_files {\n")
	buf.WriteString("    label=\"Source Files\";\n")
	buf.WriteString("    style=filled;\n")
	buf.WriteString("    color=\"whitesmoke\";\n")
	buf.WriteString("    node [fillcolor=\"white\", style=\"rounded,filled\"];\n")

	for _, node := range d.graph.Nodes() {
		label := fmt.Sprintf("%s\\n(%d imports, %d importers)",
			node.Label, len(node.Imports), len(node.ImportedBy))
		if inCycle[node.ID] {
			buf.WriteString(fmt.Sprintf("    \"%s\" [label=\"%s\", fillcolor=\"mistyrose\", color=\"red\", penwidth=2.0];\n", node.ID, label))
		} else {
			buf.WriteString(fmt.Sprintf("    \"%s\" [label=\"%s\", color=\"darkslategrey\"];\n", node.ID, label))
		}
	}
	buf.WriteString("  }\n\n")

	// Unresolved specifiers render as grey placeholder nodes so gaps in the
	// tree stay visible in the rendered diagram.
	unresolved := make(map[string]bool)
	for _, node := range d.graph.Nodes() {
		for _, spec := range node.Unresolved {
			unresolved[spec] = true
		}
	}
	if len(unresolved) > 0 {
		buf.WriteString("  // Unresolved imports\n")
		buf.WriteString("  node [fillcolor=\"gainsboro\", style=\"rounded,filled\", color=\"grey\"];\n")
		for spec := range unresolved {
			buf.WriteString(fmt.Sprintf("  \"%s\" [label=\"%s\"];\n", spec, spec))
		}
		buf.WriteString("\n")
	}

	for _, e := range d.graph.Edges() {
		if e.Circular {
			buf.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\" [color=\"red\", penwidth=3.0, label=\"CYCLE\"];\n", e.Source, e.Target))
		} else {
			buf.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\" [color=\"forestgreen\", penwidth=1.8];\n", e.Source, e.Target))
		}
	}
	for _, node := range d.graph.Nodes() {
		for _, spec := range node.Unresolved {
			buf.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\" [color=\"grey\", style=dashed];\n", node.ID, spec))
		}
	}

	buf.WriteString("\n  subgraph cluster_legend {\n")
	buf.WriteString("    label=\"Legend\";\n")
	buf.WriteString("    style=dashed;\n")
	buf.WriteString("    legend_file [label=\"Source File\", fillcolor=\"white\", style=\"rounded,filled\"];\n")
	buf.WriteString("    legend_cycle [label=\"Circular Import\", fillcolor=\"mistyrose\", color=\"red\", style=\"rounded,filled\"];\n")
	buf.WriteString("    legend_unresolved [label=\"Unresolved Import\", fillcolor=\"gainsboro\", style=\"rounded,filled\"];\n")
	buf.WriteString("  }\n")

	buf.WriteString("}\n")

	return buf.String(), nil
}
