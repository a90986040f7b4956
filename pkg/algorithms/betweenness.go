// Package algorithms implements the graph computations the resilience engine
// needs: edge betweenness centrality, weighted shortest paths, and directed
// reachability over a network snapshot.
package algorithms

import (
	"container/list"
	"sort"

	"github.com/urbansim/roadshock/pkg/network"
)

// RankedPair holds an unordered node pair with its betweenness score.
type RankedPair struct {
	Pair  network.NodePair
	Score float64
}

// undirectedView collapses the directed multigraph into simple undirected
// adjacency: one logical edge per unordered node pair, regardless of how many
// directed or parallel edges connect the pair. Neighbor lists follow edge
// insertion order, which keeps ranking ties stable.
type undirectedView struct {
	nodes     []network.NodeID
	neighbors map[network.NodeID][]network.NodeID
	pairs     []network.NodePair
}

func buildUndirectedView(g *network.RoadNetwork) *undirectedView {
	view := &undirectedView{
		nodes:     g.Nodes(),
		neighbors: make(map[network.NodeID][]network.NodeID, g.NumNodes()),
	}
	seen := make(map[network.NodePair]bool, g.NumEdges())
	for _, id := range g.Edges() {
		pair := id.Unordered()
		if seen[pair] || pair.A == pair.B {
			continue
		}
		seen[pair] = true
		view.pairs = append(view.pairs, pair)
		view.neighbors[pair.A] = append(view.neighbors[pair.A], pair.B)
		view.neighbors[pair.B] = append(view.neighbors[pair.B], pair.A)
	}
	return view
}

// EdgeBetweenness computes betweenness centrality for every unordered node
// pair of the undirected simplification, using a Brandes pass per source with
// back-propagation onto the edges of each shortest-path DAG. Scores carry the
// standard undirected normalisation 2/(n*(n-1)); ranking is unaffected by it.
func EdgeBetweenness(g *network.RoadNetwork) map[network.NodePair]float64 {
	view := buildUndirectedView(g)
	scores := make(map[network.NodePair]float64, len(view.pairs))
	for _, pair := range view.pairs {
		scores[pair] = 0.0
	}

	for _, source := range view.nodes {
		stack := make([]network.NodeID, 0, len(view.nodes))
		predecessors := make(map[network.NodeID][]network.NodeID)
		sigma := make(map[network.NodeID]float64, len(view.nodes))
		distance := make(map[network.NodeID]int, len(view.nodes))

		sigma[source] = 1.0
		distance[source] = 0

		queue := list.New()
		queue.PushBack(source)

		for queue.Len() > 0 {
			v, ok := queue.Remove(queue.Front()).(network.NodeID)
			if !ok {
				continue
			}
			stack = append(stack, v)

			for _, w := range view.neighbors[v] {
				if _, found := distance[w]; !found {
					queue.PushBack(w)
					distance[w] = distance[v] + 1
				}
				if distance[w] == distance[v]+1 {
					sigma[w] += sigma[v]
					predecessors[w] = append(predecessors[w], v)
				}
			}
		}

		// Back-propagation: accumulate dependency onto each DAG edge.
		delta := make(map[network.NodeID]float64, len(stack))
		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range predecessors[w] {
				contribution := (sigma[v] / sigma[w]) * (1.0 + delta[w])
				delta[v] += contribution
				scores[network.PairOf(v, w)] += contribution
			}
		}
	}

	n := len(view.nodes)
	if n > 1 {
		normFactor := 2.0 / float64(n*(n-1))
		for pair := range scores {
			scores[pair] *= normFactor
		}
	}

	return scores
}

// RankedPairs returns every unordered node pair sorted by betweenness score,
// descending. Ties keep the pairs' first-seen edge order (stable sort), so
// the ranking is deterministic for a given snapshot.
func RankedPairs(g *network.RoadNetwork) []RankedPair {
	view := buildUndirectedView(g)
	scores := EdgeBetweenness(g)

	ranked := make([]RankedPair, 0, len(view.pairs))
	for _, pair := range view.pairs {
		ranked = append(ranked, RankedPair{Pair: pair, Score: scores[pair]})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return ranked
}
