package graph

import (
	"github.com/ethereum/go-ethereum/common"

	"txflow/internal/model"
)

type PruneOptions struct {
	KeepZeroAddress bool
}

type PruneStats struct {
	IsolatedNodes int
	ZeroNodes     int
	ZeroEdges     int
}

// Prune drops nodes without edges, then the all-zero address together with
// its incident edges. Nodes isolated by the second step are kept.
func Prune(g *model.Graph, opts PruneOptions) PruneStats {
	var stats PruneStats
	if g == nil {
		return stats
	}

	degree := make(map[string]int, len(g.Nodes))
	for _, e := range g.Edges {
		degree[e.From]++
		degree[e.To]++
	}
	nodes := g.Nodes[:0]
	for _, n := range g.Nodes {
		if degree[n.ID] == 0 {
			stats.IsolatedNodes++
			continue
		}
		nodes = append(nodes, n)
	}
	g.Nodes = nodes

	if opts.KeepZeroAddress {
		return stats
	}

	nodes = g.Nodes[:0]
	for _, n := range g.Nodes {
		if IsZeroAddress(n.ID) {
			stats.ZeroNodes++
			continue
		}
		nodes = append(nodes, n)
	}
	g.Nodes = nodes

	edges := g.Edges[:0]
	for _, e := range g.Edges {
		if IsZeroAddress(e.From) || IsZeroAddress(e.To) {
			stats.ZeroEdges++
			continue
		}
		edges = append(edges, e)
	}
	g.Edges = edges
	return stats
}

// IsZeroAddress reports whether id is a hex address of all zeros.
func IsZeroAddress(id string) bool {
	return common.IsHexAddress(id) && common.HexToAddress(id) == (common.Address{})
}
