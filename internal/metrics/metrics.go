// Package metrics computes fan-out/fan-in, Shannon entropy, strongly
// connected components, condensation depth, and aggregate summaries over a
// dependency graph.
package metrics

import (
	"math"
	"sort"

	"github.com/untangle/untangle/internal/graph"
	"github.com/untangle/untangle/internal/model"
)

// Calculator computes metrics for one graph. It caches SCC membership so
// that per-node adjusted-entropy queries don't re-run Tarjan.
type Calculator struct {
	g          *graph.Graph
	sccs       []model.SccInfo
	sccOfNode  map[string]int // canonical path -> SCC id, only for members of non-trivial SCCs
}

// NewCalculator computes SCCs once up front and returns a ready Calculator.
func NewCalculator(g *graph.Graph) *Calculator {
	c := &Calculator{g: g}
	c.sccs = tarjanSCCs(g)
	c.sccOfNode = make(map[string]int, len(c.sccs)*2)
	for _, scc := range c.sccs {
		for _, m := range scc.Members {
			c.sccOfNode[m] = scc.ID
		}
	}
	return c
}

// Entropy returns the Shannon entropy, in bits, of node's outgoing edge
// weight distribution. Entropy is 0 when the node has at most one outgoing
// edge or when all outgoing weights sum to zero (which cannot happen for a
// real edge, but is guarded defensively).
func Entropy(weights []int) float64 {
	if len(weights) <= 1 {
		return 0
	}
	total := 0
	for _, w := range weights {
		total += w
	}
	if total == 0 {
		return 0
	}
	h := 0.0
	for _, w := range weights {
		if w == 0 {
			continue
		}
		p := float64(w) / float64(total)
		h -= p * math.Log2(p)
	}
	return h
}

// NodeEntropy returns the Shannon entropy of node's outgoing edges.
func (c *Calculator) NodeEntropy(node string) float64 {
	return Entropy(c.g.OutWeights(node))
}

// SCCs returns the non-trivial strongly connected components, in ascending
// id order.
func (c *Calculator) SCCs() []model.SccInfo {
	return c.sccs
}

// SCCOf returns the SCC a node belongs to, if it is a member of a
// non-trivial SCC.
func (c *Calculator) SCCOf(node string) (model.SccInfo, bool) {
	id, ok := c.sccOfNode[node]
	if !ok {
		return model.SccInfo{}, false
	}
	for _, scc := range c.sccs {
		if scc.ID == id {
			return scc, true
		}
	}
	return model.SccInfo{}, false
}

// AdjustedEntropy multiplies a node's entropy by (1 + ln k) when the node
// belongs to a non-trivial SCC of size k; otherwise it equals NodeEntropy.
func (c *Calculator) AdjustedEntropy(node string) float64 {
	h := c.NodeEntropy(node)
	if scc, ok := c.SCCOf(node); ok {
		k := len(scc.Members)
		return h * (1 + math.Log(float64(k)))
	}
	return h
}

// Summary computes the aggregate statistics over the whole graph.
func (c *Calculator) Summary() model.Summary {
	nodes := c.g.Nodes()
	n := len(nodes)

	fanouts := make([]int, n)
	fanins := make([]int, n)
	entropies := make([]float64, n)
	for i, node := range nodes {
		fanouts[i] = c.g.FanOut(node)
		fanins[i] = c.g.FanIn(node)
		entropies[i] = c.NodeEntropy(node)
	}

	sccCount := len(c.sccs)
	largest := 0
	nodesInSccs := 0
	for _, scc := range c.sccs {
		if len(scc.Members) > largest {
			largest = len(scc.Members)
		}
		nodesInSccs += len(scc.Members)
	}

	maxDepth, avgDepth := condensationDepth(c.g, c.sccs, c.sccOfNode)

	edgeCount := c.g.EdgeCount()

	return model.Summary{
		MeanFanOut:  mean(fanouts),
		P90FanOut:   float64(percentileInt(fanouts, 90)),
		MaxFanOut:   maxInt(fanouts),
		MeanFanIn:   mean(fanins),
		P90FanIn:    float64(percentileInt(fanins, 90)),
		MaxFanIn:    maxInt(fanins),
		MeanEntropy: meanFloat(entropies),

		SccCount:    sccCount,
		LargestScc:  largest,
		NodesInSccs: nodesInSccs,
		MaxDepth:    maxDepth,
		AvgDepth:    avgDepth,

		NodeCount:       n,
		EdgeCount:       edgeCount,
		TotalComplexity: n + edgeCount + maxDepth,
	}
}

func mean(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0
	for _, x := range xs {
		sum += x
	}
	return float64(sum) / float64(len(xs))
}

func meanFloat(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func maxInt(xs []int) int {
	m := 0
	for _, x := range xs {
		if x > m {
			m = x
		}
	}
	return m
}

// percentileInt returns the nearest-rank p-th percentile of xs (ascending).
func percentileInt(xs []int, p int) int {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]int(nil), xs...)
	sort.Ints(sorted)
	rank := int(math.Ceil(float64(p) / 100.0 * float64(len(sorted))))
	if rank < 1 {
		rank = 1
	}
	if rank > len(sorted) {
		rank = len(sorted)
	}
	return sorted[rank-1]
}
