// # internal/output/tsv.go
package output

import (
	"fmt"
	"strings"

	"tangle/internal/graph"
)

type TSVGenerator struct {
	graph *graph.Graph
}

func NewTSVGenerator(g *graph.Graph) *TSVGenerator {
	return &TSVGenerator{graph: g}
}

func (t *TSVGenerator) Generate() (string, error) {
	var buf strings.Builder

	buf.WriteString("Source\tTarget\tCircular\n")
	for _, e := range t.graph.Edges() {
		buf.WriteString(fmt.Sprintf("%s\t%s\t%t\n", e.Source, e.Target, e.Circular))
	}

	return buf.String(), nil
}

// GenerateUnresolved lists every specifier that no resolution strategy could
// map to an in-tree file, one row per importing file.
func (t *TSVGenerator) GenerateUnresolved() (string, error) {
	var buf strings.Builder

	buf.WriteString("Type\tFile\tSpecifier\n")
	for _, node := range t.graph.Nodes() {
		for _, spec := range node.Unresolved {
			buf.WriteString(fmt.Sprintf("unresolved_import\t%s\t%s\n", node.ID, spec))
		}
	}

	return buf.String(), nil
}
