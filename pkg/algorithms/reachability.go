package algorithms

import (
	"container/list"

	"github.com/urbansim/roadshock/pkg/network"
)

// HasDirectedPath reports whether any directed path leads from start to goal.
// When within is non-nil the search is restricted to that node set; a weakly
// connected component does not guarantee mutual reachability, so sampling
// uses this to test each candidate pair.
func HasDirectedPath(g *network.RoadNetwork, start, goal network.NodeID, within map[network.NodeID]bool) bool {
	if start == goal {
		return true
	}
	if within != nil && (!within[start] || !within[goal]) {
		return false
	}

	visited := map[network.NodeID]bool{start: true}
	queue := list.New()
	queue.PushBack(start)

	for queue.Len() > 0 {
		current, ok := queue.Remove(queue.Front()).(network.NodeID)
		if !ok {
			continue
		}
		for _, edge := range g.OutEdges(current) {
			if visited[edge.To] {
				continue
			}
			if within != nil && !within[edge.To] {
				continue
			}
			if edge.To == goal {
				return true
			}
			visited[edge.To] = true
			queue.PushBack(edge.To)
		}
	}

	return false
}
