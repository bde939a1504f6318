// Package diff compares two analyses of the same project at different
// revisions: node/edge deltas, SCC evolution, and the fail-on policy that
// gates CI on structural regressions.
package diff

import (
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/untangle/untangle/internal/graph"
	"github.com/untangle/untangle/internal/metrics"
	"github.com/untangle/untangle/internal/model"
)

// Analysis bundles the graph and computed metrics for one revision, the
// unit diff.Compute takes for base and head.
type Analysis struct {
	Graph   *graph.Graph
	Metrics *metrics.Calculator
	Summary model.Summary
}

// Compute builds the full DiffResult for baseRef/headRef given their
// analyses and the fail-on condition list (spec §4.6). elapsedMs and
// modulesPerSecond are supplied by the caller, which owns timing.
func Compute(baseRef, headRef string, base, head Analysis, conditions []string, elapsedMs int64, modulesPerSecond float64) model.DiffResult {
	nodesAdded, nodesRemoved := nodeDelta(base.Graph, head.Graph)
	newEdges, removedEdges := edgeDelta(base.Graph, head.Graph)
	fanoutChanges := fanoutDelta(base, head)
	sccChanges := matchSCCs(base.Metrics.SCCs(), head.Metrics.SCCs())
	summaryDelta := deltaSummary(base.Summary, head.Summary)

	result := model.DiffResult{
		RunID:            uuid.NewString(),
		BaseRef:          baseRef,
		HeadRef:          headRef,
		ElapsedMs:        elapsedMs,
		ModulesPerSecond: modulesPerSecond,
		SummaryDelta:     summaryDelta,
		NodesAdded:       nodesAdded,
		NodesRemoved:     nodesRemoved,
		NewEdges:         newEdges,
		RemovedEdges:     removedEdges,
		FanoutChanges:    fanoutChanges,
		SccChanges:       sccChanges,
	}

	reasons := evaluatePolicy(conditions, result, head)
	result.Reasons = reasons
	if len(reasons) > 0 {
		result.Verdict = "fail"
	} else {
		result.Verdict = "pass"
	}
	return result
}

func nodeDelta(base, head *graph.Graph) (added, removed []string) {
	baseSet := toSet(base.Nodes())
	headSet := toSet(head.Nodes())

	for n := range headSet {
		if !baseSet[n] {
			added = append(added, n)
		}
	}
	for n := range baseSet {
		if !headSet[n] {
			removed = append(removed, n)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}

func toSet(xs []string) map[string]bool {
	set := make(map[string]bool, len(xs))
	for _, x := range xs {
		set[x] = true
	}
	return set
}

func edgeDelta(base, head *graph.Graph) (newEdges, removedEdges [][2]string) {
	baseEdges := edgeSet(base)
	headEdges := edgeSet(head)

	for e := range headEdges {
		if !baseEdges[e] {
			newEdges = append(newEdges, e)
		}
	}
	for e := range baseEdges {
		if !headEdges[e] {
			removedEdges = append(removedEdges, e)
		}
	}
	sortPairs(newEdges)
	sortPairs(removedEdges)
	return newEdges, removedEdges
}

func edgeSet(g *graph.Graph) map[[2]string]bool {
	set := make(map[[2]string]bool)
	for _, e := range g.Edges() {
		set[[2]string{e.Source, e.Target}] = true
	}
	return set
}

func sortPairs(pairs [][2]string) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
}

func fanoutDelta(base, head Analysis) []model.FanoutChange {
	baseSet := toSet(base.Graph.Nodes())
	headSet := toSet(head.Graph.Nodes())

	var out []model.FanoutChange
	for node := range baseSet {
		if !headSet[node] {
			continue
		}
		before := base.Graph.FanOut(node)
		after := head.Graph.FanOut(node)
		if before == after {
			continue
		}
		out = append(out, model.FanoutChange{
			Node:       node,
			Before:     before,
			After:      after,
			Delta:      after - before,
			Entropy:    head.Metrics.NodeEntropy(node),
			NewTargets: newTargets(base.Graph, head.Graph, node),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Node < out[j].Node })
	return out
}

func newTargets(base, head *graph.Graph, node string) []string {
	baseTargets := toSet(base.Successors(node))
	var out []string
	for _, t := range head.Successors(node) {
		if !baseTargets[t] {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

// matchSCCs implements spec §4.6's greedy-by-descending-Jaccard matching:
// every base/head pair with similarity > 0.5 is a candidate, strongest
// matches are taken first, and each SCC matches at most one counterpart.
func matchSCCs(base, head []model.SccInfo) model.SccChanges {
	type candidate struct {
		b, h  int
		score float64
	}
	var candidates []candidate
	for i, b := range base {
		for j, h := range head {
			score := jaccard(b.Members, h.Members)
			if score > 0.5 {
				candidates = append(candidates, candidate{b: i, h: j, score: score})
			}
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	matchedBase := make(map[int]int) // base idx -> head idx
	matchedHead := make(map[int]bool)
	for _, c := range candidates {
		if _, ok := matchedBase[c.b]; ok {
			continue
		}
		if matchedHead[c.h] {
			continue
		}
		matchedBase[c.b] = c.h
		matchedHead[c.h] = true
	}

	var changes model.SccChanges
	for j, h := range head {
		if !matchedHead[j] {
			changes.New = append(changes.New, h)
		}
	}
	for i, b := range base {
		hj, ok := matchedBase[i]
		if !ok {
			changes.Resolved = append(changes.Resolved, b)
			continue
		}
		if len(head[hj].Members) > len(b.Members) {
			changes.Enlarged = append(changes.Enlarged, head[hj])
		}
	}
	return changes
}

func jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	setA := toSet(a)
	setB := toSet(b)
	inter := 0
	for m := range setA {
		if setB[m] {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func deltaSummary(base, head model.Summary) model.SummaryDelta {
	return model.SummaryDelta{
		MeanFanOutDelta:  head.MeanFanOut - base.MeanFanOut,
		P90FanOutDelta:   head.P90FanOut - base.P90FanOut,
		MaxFanOutDelta:   head.MaxFanOut - base.MaxFanOut,
		MeanFanInDelta:   head.MeanFanIn - base.MeanFanIn,
		P90FanInDelta:    head.P90FanIn - base.P90FanIn,
		MaxFanInDelta:    head.MaxFanIn - base.MaxFanIn,
		MeanEntropyDelta: head.MeanEntropy - base.MeanEntropy,

		SccCountDelta:    head.SccCount - base.SccCount,
		LargestSccDelta:  head.LargestScc - base.LargestScc,
		NodesInSccsDelta: head.NodesInSccs - base.NodesInSccs,
		MaxDepthDelta:    head.MaxDepth - base.MaxDepth,
		AvgDepthDelta:    head.AvgDepth - base.AvgDepth,

		NodeCountDelta:       head.NodeCount - base.NodeCount,
		EdgeCountDelta:       head.EdgeCount - base.EdgeCount,
		TotalComplexityDelta: head.TotalComplexity - base.TotalComplexity,
	}
}

// evaluatePolicy evaluates every condition unconditionally so that all
// triggering reasons are reported, per spec §4.6.
func evaluatePolicy(conditions []string, result model.DiffResult, head Analysis) []string {
	var reasons []string
	for _, cond := range conditions {
		if strings.HasPrefix(cond, "fanout-threshold=") {
			nStr := strings.TrimPrefix(cond, "fanout-threshold=")
			n, err := strconv.Atoi(nStr)
			if err != nil {
				continue
			}
			if anyFanoutAbove(head.Graph, n) {
				reasons = append(reasons, cond)
			}
			continue
		}

		switch cond {
		case "fanout-increase":
			if anyFanoutIncrease(result.FanoutChanges) {
				reasons = append(reasons, cond)
			}
		case "new-scc":
			if len(result.SccChanges.New) > 0 {
				reasons = append(reasons, cond)
			}
		case "scc-growth":
			if len(result.SccChanges.Enlarged) > 0 {
				reasons = append(reasons, cond)
			}
		case "entropy-increase":
			if result.SummaryDelta.MeanEntropyDelta > 0 {
				reasons = append(reasons, cond)
			}
		case "new-edge":
			if len(result.NewEdges) > 0 {
				reasons = append(reasons, cond)
			}
		default:
			// Unknown condition names are ignored rather than fatal, so a
			// config typo doesn't crash CI; callers surfacing config should
			// validate condition names up front.
		}
	}
	return reasons
}

func anyFanoutIncrease(changes []model.FanoutChange) bool {
	for _, c := range changes {
		if c.Delta > 0 {
			return true
		}
	}
	return false
}

func anyFanoutAbove(g *graph.Graph, n int) bool {
	for _, node := range g.Nodes() {
		if g.FanOut(node) > n {
			return true
		}
	}
	return false
}

// ConditionNames splits a comma-separated --fail-on flag value.
func ConditionNames(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
