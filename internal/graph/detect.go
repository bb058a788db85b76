// # internal/graph/detect.go
package graph

type edgePair struct {
	source string
	target string
}

// AnnotateCycles runs a depth-first traversal from every not-yet-visited
// node, collecting every directed pair that lies on at least one cycle,
// then flips Circular on the matching edges in a single post-pass.
//
// Cycle membership is a property of the edge, not the node: a node can
// have circular and non-circular outgoing edges at the same time, so the
// result is edge-granular.
func (g *Graph) AnnotateCycles() {
	visited := make(map[string]bool, len(g.nodes))
	onStack := make(map[string]bool, len(g.nodes))
	circular := make(map[edgePair]bool)

	var walk func(curr string, path []string)
	walk = func(curr string, path []string) {
		visited[curr] = true
		onStack[curr] = true
		path = append(path, curr)

		for _, next := range g.nodes[curr].Imports {
			// Imports naming ids outside the node map cannot lie on a cycle.
			if _, ok := g.nodes[next]; !ok {
				continue
			}
			if onStack[next] {
				// The suffix of the path from next to curr plus the closing
				// edge back to next forms a cycle; mark every pair on it.
				start := -1
				for i, id := range path {
					if id == next {
						start = i
						break
					}
				}
				if start != -1 {
					for i := start; i < len(path)-1; i++ {
						circular[edgePair{path[i], path[i+1]}] = true
					}
					circular[edgePair{curr, next}] = true
				}
			} else if !visited[next] {
				walk(next, path)
			}
		}

		onStack[curr] = false
	}

	for _, id := range g.order {
		if !visited[id] {
			walk(id, nil)
		}
	}

	for i := range g.edges {
		if circular[edgePair{g.edges[i].Source, g.edges[i].Target}] {
			g.edges[i].Circular = true
		}
	}
}
