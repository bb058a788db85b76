// # internal/graph/graph.go
package graph

import (
	"path"
	"sort"
)

// Node represents one source file. ID is the file's path relative to the
// analysis root and is the join key for all adjacency; Label is
// presentation-only and never feeds identity or resolution.
type Node struct {
	ID           string   `json:"id"`
	Label        string   `json:"label"`
	AbsolutePath string   `json:"absolutePath"`
	Imports      []string `json:"imports"`
	ImportedBy   []string `json:"importedBy"`
	Unresolved   []string `json:"unresolved,omitempty"`
}

// Edge is a directed source-imports-target relation. Circular is set
// exactly once by the cycle detector post-pass.
type Edge struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Circular bool   `json:"circular"`
}

// Graph owns the id-to-node mapping and the edge list for one build.
// Builds never share a Graph; once built it is read-only.
type Graph struct {
	nodes map[string]*Node
	order []string
	edges []Edge
}

func New() *Graph {
	return &Graph{
		nodes: make(map[string]*Node),
	}
}

func (g *Graph) AddNode(n *Node) {
	if _, exists := g.nodes[n.ID]; !exists {
		g.order = append(g.order, n.ID)
	}
	g.nodes[n.ID] = n
}

func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// AddEdge appends a source→target edge and maintains the importedBy
// transpose on the target. Both endpoints must already be in the graph.
func (g *Graph) AddEdge(source, target string) bool {
	if _, ok := g.nodes[source]; !ok {
		return false
	}
	tgt, ok := g.nodes[target]
	if !ok {
		return false
	}
	g.edges = append(g.edges, Edge{Source: source, Target: target})
	tgt.ImportedBy = append(tgt.ImportedBy, source)
	return true
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

func (g *Graph) Edges() []Edge {
	return g.edges
}

func (g *Graph) NodeCount() int { return len(g.nodes) }
func (g *Graph) EdgeCount() int { return len(g.edges) }

// CircularEdges returns the edges flagged by the cycle detector.
func (g *Graph) CircularEdges() []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.Circular {
			out = append(out, e)
		}
	}
	return out
}

// Payload is the serialization surface toward any presentation or
// transport layer; the core has no knowledge of how it is served.
type Payload struct {
	Nodes []*Node `json:"nodes"`
	Edges []Edge  `json:"edges"`
}

func (g *Graph) Serialize() *Payload {
	return &Payload{
		Nodes: g.Nodes(),
		Edges: g.edges,
	}
}

// DisplayLabel derives a node label from an id: either the full
// root-relative path or the bare filename.
func DisplayLabel(id string, fullPath bool) string {
	if fullPath {
		return id
	}
	return path.Base(id)
}

func sortedCopy(values []string) []string {
	out := append([]string(nil), values...)
	sort.Strings(out)
	return out
}
