package engine

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/objtok/internal/resolve"
	"github.com/roach88/objtok/internal/token"
)

// Cycle is a chain of token paths whose values reference each other.
//
// A cycle never converges: Tokenize on the same graph fails with a self
// reference error.
type Cycle struct {
	Path    []string `json:"path"`    // Cycle path: ["a", "b", "a"]
	Message string   `json:"message"` // Human-readable description
}

// Cycles performs static cycle analysis on the tokens of input.
//
// The algorithm:
//  1. Collect the token paths found in input (as Inspect does)
//  2. Resolve each path against lookup; the tokens in its value are edges
//  3. Use Tarjan's algorithm to find strongly connected components
//  4. Report each component with more than one path, or a self-loop
//
// Paths that do not resolve have no edges and never take part in a cycle.
// A nil lookup means input is its own lookup root.
func (e *Engine) Cycles(input, lookup any) ([]Cycle, error) {
	if lookup == nil {
		lookup = input
	}
	findings, err := e.Inspect(input, lookup)
	if err != nil {
		return nil, err
	}

	roots := make([]string, 0, len(findings))
	for _, f := range findings {
		roots = append(roots, f.Path)
	}
	graph := buildReferenceGraph(roots, lookup)

	var cycles []Cycle
	for _, scc := range cyclicSCCs(graph) {
		cycles = append(cycles, sccToCycle(scc, graph))
	}
	return cycles, nil
}

// cyclicToken reports whether the paths of residual lead to a cycle in
// lookup. The returned token is the first residual token whose own path is
// on a cycle, or the first residual token when the cycle is only reachable.
func cyclicToken(residual []string, lookup any) (string, bool) {
	if lookup == nil || len(residual) == 0 {
		return "", false
	}

	roots := make([]string, 0, len(residual))
	for _, raw := range residual {
		roots = append(roots, token.PathOf(raw))
	}
	graph := buildReferenceGraph(roots, lookup)

	onCycle := make(map[string]bool)
	for _, scc := range cyclicSCCs(graph) {
		for _, node := range scc {
			onCycle[node] = true
		}
	}
	if len(onCycle) == 0 {
		return "", false
	}
	for i, path := range roots {
		if onCycle[path] {
			return residual[i], true
		}
	}
	return residual[0], true
}

// referenceGraph maps a token path to the token paths in its value.
type referenceGraph map[string][]string

// buildReferenceGraph follows token paths breadth-first from roots.
func buildReferenceGraph(roots []string, lookup any) referenceGraph {
	graph := make(referenceGraph)
	queue := slices.Clone(roots)
	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]
		if _, done := graph[path]; done {
			continue
		}
		graph[path] = []string{}

		value, ok := resolve.Resolve(lookup, path)
		if !ok {
			continue
		}
		for _, m := range token.Find(resolve.Stringify(value)) {
			if !slices.Contains(graph[path], m.Path) {
				graph[path] = append(graph[path], m.Path)
			}
			queue = append(queue, m.Path)
		}
	}
	return graph
}

// cyclicSCCs returns the components of graph that form a cycle.
func cyclicSCCs(graph referenceGraph) [][]string {
	var out [][]string
	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			out = append(out, scc)
		}
	}
	return out
}

// hasSelfLoop checks if a node has an edge to itself.
func hasSelfLoop(node string, graph referenceGraph) bool {
	return slices.Contains(graph[node], node)
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
//
// Nodes are visited in sorted order so that the result is deterministic.
// Single-node SCCs without self-loops are NOT cycles.
func tarjanSCC(graph referenceGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root node: pop the stack and create an SCC
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			slices.Sort(scc)
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	slices.Sort(nodes)
	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	slices.SortFunc(sccs, func(a, b []string) int { return strings.Compare(a[0], b[0]) })
	return sccs
}

func sccToCycle(scc []string, graph referenceGraph) Cycle {
	if len(scc) == 1 {
		path := scc[0]
		return Cycle{
			Path:    []string{path, path},
			Message: fmt.Sprintf("@%s@ references itself", path),
		}
	}

	path := reconstructCyclePath(scc, graph)
	return Cycle{
		Path:    path,
		Message: fmt.Sprintf("token cycle: %s", strings.Join(path, " → ")),
	}
}

// reconstructCyclePath walks edges inside the SCC from its first node until
// it returns there.
func reconstructCyclePath(scc []string, graph referenceGraph) []string {
	members := make(map[string]bool, len(scc))
	for _, node := range scc {
		members[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if members[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next == "" {
			break
		}

		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}

	return path
}
