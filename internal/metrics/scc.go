package metrics

import (
	"sort"
	"strconv"

	"github.com/untangle/untangle/internal/graph"
	"github.com/untangle/untangle/internal/model"
)

// tarjanSCCs computes strongly connected components with Tarjan's
// linear-time algorithm, keeps only components of size >= 2 (single-node
// self-loops are not SCCs for this purpose, per spec §4.4), assigns stable
// ascending ids by smallest-canonical-path among members, and sorts each
// component's member list by canonical path.
func tarjanSCCs(g *graph.Graph) []model.SccInfo {
	nodes := g.Nodes()

	index := make(map[string]int, len(nodes))
	lowlink := make(map[string]int, len(nodes))
	onStack := make(map[string]bool, len(nodes))
	var stack []string
	counter := 0

	var rawComponents [][]string

	var strongconnect func(v string)
	strongconnect = func(v string) {
		index[v] = counter
		lowlink[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.Successors(v) {
			if _, seen := index[w]; !seen {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if index[w] < lowlink[v] {
					lowlink[v] = index[w]
				}
			}
		}

		if lowlink[v] == index[v] {
			var comp []string
			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			rawComponents = append(rawComponents, comp)
		}
	}

	for _, v := range nodes {
		if _, seen := index[v]; !seen {
			strongconnect(v)
		}
	}

	var sccs []model.SccInfo
	for _, comp := range rawComponents {
		if len(comp) < 2 {
			continue
		}
		sort.Strings(comp)
		internal := internalEdgeCount(g, comp)
		sccs = append(sccs, model.SccInfo{Members: comp, InternalEdges: internal})
	}

	sort.Slice(sccs, func(i, j int) bool {
		return sccs[i].Members[0] < sccs[j].Members[0]
	})
	for i := range sccs {
		sccs[i].ID = i
	}
	return sccs
}

func internalEdgeCount(g *graph.Graph, members []string) int {
	set := make(map[string]struct{}, len(members))
	for _, m := range members {
		set[m] = struct{}{}
	}
	count := 0
	for _, m := range members {
		for _, t := range g.Successors(m) {
			if _, ok := set[t]; ok {
				count++
			}
		}
	}
	return count
}

// condensationDepth contracts each SCC to a super-node, producing a DAG, and
// returns (max_depth, avg_depth) as defined by spec §4.4: max_depth is the
// longest root-to-leaf path measured in edges; avg_depth is the mean, over
// every super-node that is the source of at least one path, of the longest
// path starting there (0 for an empty DAG). Ties are broken by smallest id,
// which falls out naturally here because super-node keys are the
// deterministic "scc:<id>" or plain canonical-path strings compared in the
// usual string order during memoized recursion below.
func condensationDepth(g *graph.Graph, sccs []model.SccInfo, sccOfNode map[string]int) (int, float64) {
	superOf := func(node string) string {
		if id, ok := sccOfNode[node]; ok {
			return sccSuperName(id)
		}
		return node
	}

	// Build the condensation adjacency: superEdges[a][b] for a != b.
	superEdges := make(map[string]map[string]struct{})
	superNodes := make(map[string]struct{})
	for _, node := range g.Nodes() {
		s := superOf(node)
		superNodes[s] = struct{}{}
		if _, ok := superEdges[s]; !ok {
			superEdges[s] = make(map[string]struct{})
		}
		for _, t := range g.Successors(node) {
			st := superOf(t)
			if st != s {
				superEdges[s][st] = struct{}{}
			}
		}
	}

	if len(superNodes) == 0 {
		return 0, 0
	}

	memo := make(map[string]int)
	var longestFrom func(n string, visiting map[string]bool) int
	longestFrom = func(n string, visiting map[string]bool) int {
		if v, ok := memo[n]; ok {
			return v
		}
		if visiting[n] {
			// Condensation is acyclic by construction; this guard only
			// protects against a logic error, never a real cycle.
			return 0
		}
		visiting[n] = true
		best := 0
		for t := range superEdges[n] {
			if d := longestFrom(t, visiting) + 1; d > best {
				best = d
			}
		}
		visiting[n] = false
		memo[n] = best
		return best
	}

	maxDepth := 0
	sumDepth := 0
	sources := 0
	names := make([]string, 0, len(superNodes))
	for n := range superNodes {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, n := range names {
		depth := longestFrom(n, map[string]bool{})
		if depth > maxDepth {
			maxDepth = depth
		}
		if len(superEdges[n]) > 0 {
			sumDepth += depth
			sources++
		}
	}

	avg := 0.0
	if sources > 0 {
		avg = float64(sumDepth) / float64(sources)
	}
	return maxDepth, avg
}

func sccSuperName(id int) string {
	// Distinguish super-node keys from plain canonical paths unambiguously;
	// canonical paths never contain a leading NUL byte.
	return "\x00scc:" + strconv.Itoa(id)
}
