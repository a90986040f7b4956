package network

import (
	"container/list"
)

// WeaklyConnectedComponents finds all weakly-connected components (direction
// ignored) via BFS over outgoing and incoming edges. Components are returned
// in order of their first node's insertion position; within a component,
// nodes appear in BFS visit order.
func (g *RoadNetwork) WeaklyConnectedComponents() [][]NodeID {
	visited := make(map[NodeID]bool, len(g.nodes))
	components := make([][]NodeID, 0)

	for _, start := range g.nodeOrder {
		if visited[start] {
			continue
		}

		component := make([]NodeID, 0)
		queue := list.New()
		queue.PushBack(start)
		visited[start] = true

		for queue.Len() > 0 {
			nodeID, ok := queue.Remove(queue.Front()).(NodeID)
			if !ok {
				continue
			}
			component = append(component, nodeID)

			for _, edge := range g.OutEdges(nodeID) {
				if !visited[edge.To] {
					visited[edge.To] = true
					queue.PushBack(edge.To)
				}
			}
			for _, edge := range g.InEdges(nodeID) {
				if !visited[edge.From] {
					visited[edge.From] = true
					queue.PushBack(edge.From)
				}
			}
		}

		components = append(components, component)
	}

	return components
}

// LargestComponent returns the node set of the largest weakly-connected
// component. When several components share the maximum node count, the one
// containing the lowest node ID wins, so the choice is deterministic across
// runs and independent of iteration order.
func (g *RoadNetwork) LargestComponent() []NodeID {
	var best []NodeID
	var bestMin NodeID

	for _, component := range g.WeaklyConnectedComponents() {
		min := component[0]
		for _, id := range component[1:] {
			if id < min {
				min = id
			}
		}
		if best == nil || len(component) > len(best) || (len(component) == len(best) && min < bestMin) {
			best = component
			bestMin = min
		}
	}

	return best
}
