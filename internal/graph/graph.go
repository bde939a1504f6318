// Package graph is the dependency-graph intermediate representation: a
// directed, deduplicated, weighted multi-edge graph keyed by canonical node
// path, plus the builder that assembles one from a stream of resolved
// imports.
package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/untangle/untangle/internal/model"
)

// Graph is a directed, deduplicated, weighted dependency graph.
//
// Identity is the canonical path; edges[a][b] holds the single edge from a
// to b, if any. reverse mirrors edges for O(1) fan-in and impact queries.
type Graph struct {
	nodes   map[string]model.GraphNode
	edges   map[string]map[string]*model.GraphEdge
	reverse map[string]map[string]struct{}
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes:   make(map[string]model.GraphNode),
		edges:   make(map[string]map[string]*model.GraphEdge),
		reverse: make(map[string]map[string]struct{}),
	}
}

// Touch ensures a node exists without adding any edge. Used for modules that
// have no outgoing or incoming resolved imports but were still discovered.
func (g *Graph) Touch(canonicalPath, displayName string) {
	if canonicalPath == "" {
		return
	}
	if _, ok := g.nodes[canonicalPath]; !ok {
		g.nodes[canonicalPath] = model.GraphNode{CanonicalPath: canonicalPath, DisplayName: displayName}
	}
	if _, ok := g.edges[canonicalPath]; !ok {
		g.edges[canonicalPath] = make(map[string]*model.GraphEdge)
	}
	if _, ok := g.reverse[canonicalPath]; !ok {
		g.reverse[canonicalPath] = make(map[string]struct{})
	}
}

// AddEdge records one resolved import as a contribution to the edge from
// source to target. If the edge already exists, loc is appended to its
// source locations and its weight is incremented; otherwise a new edge of
// weight 1 is created. Self-loops are permitted and counted.
func (g *Graph) AddEdge(source, target string, loc model.SourceLocation) {
	if source == "" || target == "" {
		return
	}
	g.Touch(source, source)
	g.Touch(target, target)

	if _, ok := g.edges[source]; !ok {
		g.edges[source] = make(map[string]*model.GraphEdge)
	}
	if e, ok := g.edges[source][target]; ok {
		e.Locations = append(e.Locations, loc)
		e.Weight = len(e.Locations)
	} else {
		g.edges[source][target] = &model.GraphEdge{
			Source:    source,
			Target:    target,
			Locations: []model.SourceLocation{loc},
			Weight:    1,
		}
	}

	if _, ok := g.reverse[target]; !ok {
		g.reverse[target] = make(map[string]struct{})
	}
	g.reverse[target][source] = struct{}{}
}

// Nodes returns every node's canonical path, sorted.
func (g *Graph) Nodes() []string {
	out := make([]string, 0, len(g.nodes))
	for n := range g.nodes {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// NodeCount returns the number of distinct nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// Node returns the node value for a canonical path, if present.
func (g *Graph) Node(canonicalPath string) (model.GraphNode, bool) {
	n, ok := g.nodes[canonicalPath]
	return n, ok
}

// Edges returns every edge, sorted by (source, target).
func (g *Graph) Edges() []model.GraphEdge {
	out := make([]model.GraphEdge, 0)
	for _, targets := range g.edges {
		for _, e := range targets {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Target < out[j].Target
	})
	return out
}

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, targets := range g.edges {
		n += len(targets)
	}
	return n
}

// Edge returns the edge from source to target, if one exists.
func (g *Graph) Edge(source, target string) (model.GraphEdge, bool) {
	targets, ok := g.edges[source]
	if !ok {
		return model.GraphEdge{}, false
	}
	e, ok := targets[target]
	if !ok {
		return model.GraphEdge{}, false
	}
	return *e, true
}

// Successors returns the sorted set of distinct targets reachable from node
// by one edge (fan-out's neighbor set).
func (g *Graph) Successors(node string) []string {
	targets, ok := g.edges[node]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(targets))
	for t := range targets {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Predecessors returns the sorted set of distinct nodes with an edge into
// node (fan-in's neighbor set).
func (g *Graph) Predecessors(node string) []string {
	preds, ok := g.reverse[node]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(preds))
	for p := range preds {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// FanOut is the number of distinct outgoing edges of node.
func (g *Graph) FanOut(node string) int {
	return len(g.edges[node])
}

// FanIn is the number of distinct incoming edges of node.
func (g *Graph) FanIn(node string) int {
	return len(g.reverse[node])
}

// OutWeights returns the multiset of outgoing edge weights for node, used by
// the entropy calculation.
func (g *Graph) OutWeights(node string) []int {
	targets, ok := g.edges[node]
	if !ok {
		return nil
	}
	out := make([]int, 0, len(targets))
	for _, e := range targets {
		out = append(out, e.Weight)
	}
	return out
}

// Impacted returns every node that directly or indirectly depends on start,
// i.e. the transitive closure of the reverse-adjacency walk. start itself is
// never included unless it is reachable via a cycle back to itself.
func (g *Graph) Impacted(start string) []string {
	visited := map[string]bool{}
	var dfs func(n string)
	dfs = func(n string) {
		for pred := range g.reverse[n] {
			if !visited[pred] {
				visited[pred] = true
				dfs(pred)
			}
		}
	}
	dfs(start)
	out := make([]string, 0, len(visited))
	for n := range visited {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// jsonGraph is the wire shape for MarshalJSON, independent of the tool's
// full analysis envelope (used by the `graph` subcommand's raw projection).
type jsonGraph struct {
	Nodes []model.GraphNode `json:"nodes"`
	Edges []model.GraphEdge `json:"edges"`
}

// MarshalJSON renders the graph as a flat nodes+edges document.
func (g *Graph) MarshalJSON() ([]byte, error) {
	nodes := make([]model.GraphNode, 0, len(g.nodes))
	for _, path := range g.Nodes() {
		nodes = append(nodes, g.nodes[path])
	}
	return json.Marshal(jsonGraph{Nodes: nodes, Edges: g.Edges()})
}

// WriteDOT renders the graph as a minimal Graphviz digraph, edge weight as a
// label, for the `graph --format dot` projection (SPEC_FULL.md §10.2). No
// example repo in the corpus vendors a Graphviz binding, so this is a direct
// fmt.Fprintf writer rather than a library call.
func (g *Graph) WriteDOT(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "digraph untangle {"); err != nil {
		return err
	}
	for _, n := range g.Nodes() {
		if _, err := fmt.Fprintf(w, "  %q;\n", n); err != nil {
			return err
		}
	}
	for _, e := range g.Edges() {
		if _, err := fmt.Fprintf(w, "  %q -> %q [label=%q];\n", e.Source, e.Target, fmt.Sprintf("%d", e.Weight)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}
