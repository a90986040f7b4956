package algorithms

import (
	"container/heap"
	"math"

	"github.com/paulmach/orb/geo"

	"github.com/urbansim/roadshock/pkg/network"
)

// Weight names the edge attribute used for path costs within one simulation
// call. The same attribute is applied to baseline and damaged searches.
type Weight int

const (
	// WeightTravelTime uses the derived per-edge travel time in seconds.
	WeightTravelTime Weight = iota
	// WeightLength uses the edge length in meters.
	WeightLength
)

// String returns the attribute name.
func (w Weight) String() string {
	if w == WeightTravelTime {
		return "travel_time"
	}
	return "length"
}

// SelectWeight picks the weighting attribute for a run by inspecting the
// first edge in iteration order: travel time when present, otherwise length.
func SelectWeight(g *network.RoadNetwork) Weight {
	if e, ok := g.FirstEdge(); ok && e.TravelTime > 0 {
		return WeightTravelTime
	}
	return WeightLength
}

func edgeCost(e *network.Edge, w Weight) float64 {
	if w == WeightTravelTime {
		return e.TravelTime
	}
	return e.Length
}

// PathSearcher runs admissible shortest-path searches over one snapshot. The
// heuristic is the haversine distance to the goal scaled by the lowest
// weight-per-chord-meter ratio of any edge: no edge, and so no path, can
// undercut it, and the triangle inequality of the haversine metric keeps it
// consistent, so the first settled goal is optimal. Edge weights are raw
// data and may fall below the geometric chord between their endpoints; the
// scale absorbs that. A zero scale (some edge costs nothing, or there are no
// edges) degrades to plain Dijkstra.
type PathSearcher struct {
	g      *network.RoadNetwork
	weight Weight
	scale  float64
}

// NewPathSearcher prepares a searcher for the given snapshot and weight.
func NewPathSearcher(g *network.RoadNetwork, w Weight) *PathSearcher {
	ps := &PathSearcher{g: g, weight: w, scale: math.Inf(1)}
	for _, id := range g.Edges() {
		e, ok := g.Edge(id)
		if !ok {
			continue
		}
		from, okFrom := g.Node(e.From)
		to, okTo := g.Node(e.To)
		if !okFrom || !okTo {
			continue
		}
		chord := geo.DistanceHaversine(from.Point(), to.Point())
		if chord <= 0 {
			continue
		}
		if ratio := edgeCost(e, w) / chord; ratio < ps.scale {
			ps.scale = ratio
		}
	}
	if math.IsInf(ps.scale, 1) {
		ps.scale = 0
	}
	return ps
}

// Weight returns the attribute this searcher costs edges with.
func (ps *PathSearcher) Weight() Weight {
	return ps.weight
}

func (ps *PathSearcher) heuristic(from, goal *network.Node) float64 {
	if ps.scale <= 0 {
		return 0
	}
	return ps.scale * geo.DistanceHaversine(from.Point(), goal.Point())
}

// pqItem is a frontier entry: g is the cost from the start, f = g + h.
type pqItem struct {
	nodeID network.NodeID
	g      float64
	f      float64
	index  int
}

type searchQueue []*pqItem

func (q searchQueue) Len() int           { return len(q) }
func (q searchQueue) Less(i, j int) bool { return q[i].f < q[j].f }
func (q searchQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *searchQueue) Push(x any) {
	item := x.(*pqItem)
	item.index = len(*q)
	*q = append(*q, item)
}

func (q *searchQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

// Length returns the cost of the cheapest directed path from start to goal,
// or false when the goal is unreachable.
func (ps *PathSearcher) Length(start, goal network.NodeID) (float64, bool) {
	if start == goal {
		return 0, true
	}
	goalNode, ok := ps.g.Node(goal)
	if !ok {
		return 0, false
	}
	startNode, ok := ps.g.Node(start)
	if !ok {
		return 0, false
	}

	dist := map[network.NodeID]float64{start: 0}
	settled := make(map[network.NodeID]bool)

	q := &searchQueue{}
	heap.Init(q)
	heap.Push(q, &pqItem{nodeID: start, g: 0, f: ps.heuristic(startNode, goalNode)})

	for q.Len() > 0 {
		current := heap.Pop(q).(*pqItem)
		if settled[current.nodeID] {
			continue
		}
		settled[current.nodeID] = true

		if current.nodeID == goal {
			return current.g, true
		}

		for _, edge := range ps.g.OutEdges(current.nodeID) {
			if settled[edge.To] {
				continue
			}
			newDist := current.g + edgeCost(edge, ps.weight)
			if oldDist, seen := dist[edge.To]; seen && newDist >= oldDist {
				continue
			}
			dist[edge.To] = newDist

			toNode, ok := ps.g.Node(edge.To)
			if !ok {
				continue
			}
			heap.Push(q, &pqItem{
				nodeID: edge.To,
				g:      newDist,
				f:      newDist + ps.heuristic(toNode, goalNode),
			})
		}
	}

	return 0, false
}
