package output

import (
	"fmt"
	"strings"
	"unicode"

	"tangle/internal/graph"
)

type MermaidGenerator struct {
	graph *graph.Graph
}

func NewMermaidGenerator(g *graph.Graph) *MermaidGenerator {
	return &MermaidGenerator{graph: g}
}

func (m *MermaidGenerator) Generate() (string, error) {
	var b strings.Builder
	b.WriteString("%%{init: {'flowchart': {'nodeSpacing': 80, 'rankSpacing': 110, 'curve': 'basis'}}}%%\n")
	b.WriteString("flowchart LR\n")

	nodes := m.graph.Nodes()
	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		names = append(names, n.ID)
	}
	ids := makeMermaidIDs(names)

	cycleNodes := make(map[string]bool)
	for _, e := range m.graph.CircularEdges() {
		cycleNodes[e.Source] = true
		cycleNodes[e.Target] = true
	}

	for _, n := range nodes {
		b.WriteString(fmt.Sprintf("  %s[\"%s\"]\n", ids[n.ID], escapeMermaidLabel(n.Label)))
	}

	b.WriteString("\n")
	b.WriteString("  classDef fileNode fill:#f7fbff,stroke:#4d6480,stroke-width:1px;\n")
	if len(names) > 0 {
		b.WriteString("  class ")
		b.WriteString(strings.Join(toIDs(names, ids), ","))
		b.WriteString(" fileNode;\n")
	}
	if len(cycleNodes) > 0 {
		cycleNames := make([]string, 0, len(cycleNodes))
		for _, name := range names {
			if cycleNodes[name] {
				cycleNames = append(cycleNames, name)
			}
		}
		b.WriteString("  classDef cycleNode fill:#ffecec,stroke:#cc0000,stroke-width:2px;\n")
		b.WriteString("  class ")
		b.WriteString(strings.Join(toIDs(cycleNames, ids), ","))
		b.WriteString(" cycleNode;\n")
	}

	b.WriteString("\n")
	linkIndex := 0
	cycleLinkIndexes := make([]int, 0)
	for _, e := range m.graph.Edges() {
		edgeLabel := ""
		if e.Circular {
			edgeLabel = "|CYCLE|"
			cycleLinkIndexes = append(cycleLinkIndexes, linkIndex)
		}
		b.WriteString(fmt.Sprintf("  %s -->%s %s\n", ids[e.Source], edgeLabel, ids[e.Target]))
		linkIndex++
	}

	if len(cycleLinkIndexes) > 0 {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("  linkStyle %s stroke:#cc0000,stroke-width:3px;\n", joinInts(cycleLinkIndexes)))
	}

	return b.String(), nil
}

// sanitizeMermaidID maps a file path onto the identifier charset Mermaid
// accepts; collisions get a numeric suffix in makeMermaidIDs.
func sanitizeMermaidID(path string) string {
	if path == "" {
		return "f"
	}
	var b strings.Builder
	for _, r := range path {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteRune('_')
	}
	out := b.String()
	if out == "" {
		return "f"
	}
	if unicode.IsDigit(rune(out[0])) {
		return "f_" + out
	}
	return out
}

func makeMermaidIDs(names []string) map[string]string {
	ids := make(map[string]string, len(names))
	used := make(map[string]int, len(names))
	for _, name := range names {
		base := sanitizeMermaidID(name)
		idx := used[base]
		used[base] = idx + 1
		if idx == 0 {
			ids[name] = base
			continue
		}
		ids[name] = fmt.Sprintf("%s_%d", base, idx+1)
	}
	return ids
}

func escapeMermaidLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func toIDs(names []string, ids map[string]string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if id, ok := ids[name]; ok {
			out = append(out, id)
		}
	}
	return out
}

func joinInts(v []int) string {
	if len(v) == 0 {
		return ""
	}
	parts := make([]string, 0, len(v))
	for _, n := range v {
		parts = append(parts, fmt.Sprintf("%d", n))
	}
	return strings.Join(parts, ",")
}
