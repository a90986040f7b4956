package scenario

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/paulmach/orb"

	"github.com/urbansim/roadshock/pkg/algorithms"
	"github.com/urbansim/roadshock/pkg/network"
)

// majorHighwayClasses are the road classes flooded when no hazard polygons
// are available.
var majorHighwayClasses = map[string]bool{
	"motorway":  true,
	"trunk":     true,
	"primary":   true,
	"secondary": true,
}

// SelectEdges maps a scenario spec to the edges to remove from the snapshot.
// The returned identifiers are only meaningful for this snapshot. An empty
// result is a valid no-op, not an error.
func SelectEdges(g *network.RoadNetwork, spec Spec) ([]network.EdgeKey, error) {
	switch spec.Scenario {
	case BridgeCollapse:
		return taggedEdges(g, func(e *network.Edge) bool { return e.Bridge != "" }), nil
	case TunnelClosure:
		return taggedEdges(g, func(e *network.Edge) bool { return e.Tunnel != "" }), nil
	case HighwayFlood:
		if len(spec.Hazards) > 0 {
			return floodedEdges(g, spec.Hazards), nil
		}
		return taggedEdges(g, isMajorHighway), nil
	case TargetedAttack:
		return targetedEdges(g, spec.Severity), nil
	case RandomFailure:
		return randomEdges(g, spec.Severity, spec.Seed), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScenario, spec.Scenario)
	}
}

// taggedEdges selects every edge matching the predicate, in iteration order.
func taggedEdges(g *network.RoadNetwork, match func(*network.Edge) bool) []network.EdgeKey {
	selected := make([]network.EdgeKey, 0)
	for _, id := range g.Edges() {
		if e, ok := g.Edge(id); ok && match(e) {
			selected = append(selected, id)
		}
	}
	return selected
}

// isMajorHighway matches when any class of a (possibly multi-valued) highway
// tag is a major class.
func isMajorHighway(e *network.Edge) bool {
	for _, class := range e.Highway {
		if majorHighwayClasses[class] {
			return true
		}
	}
	return false
}

// floodedEdges selects every edge whose geometry intersects any hazard
// polygon.
func floodedEdges(g *network.RoadNetwork, hazards []orb.Polygon) []network.EdgeKey {
	selected := make([]network.EdgeKey, 0)
	for _, id := range g.Edges() {
		e, ok := g.Edge(id)
		if !ok {
			continue
		}
		for _, hazard := range hazards {
			if lineIntersectsPolygon(e.Geometry, hazard) {
				selected = append(selected, id)
				break
			}
		}
	}
	return selected
}

// targetedEdges implements the two-step targeted attack: rank the unordered
// node pairs of the undirected simplification by edge betweenness, keep the
// top max(1, ceil(severity * ranked-pair count)) pairs without renormalising
// ties, then expand the selection to every directed and parallel edge whose
// endpoints match a kept pair. The expansion can remove more directed edges
// than the nominal top-k count; that is the intended behavior.
func targetedEdges(g *network.RoadNetwork, severity float64) []network.EdgeKey {
	ranked := algorithms.RankedPairs(g)
	if len(ranked) == 0 {
		return nil
	}

	nTop := ceilFraction(severity, len(ranked))
	if nTop > len(ranked) {
		nTop = len(ranked)
	}

	top := make(map[network.NodePair]bool, nTop)
	for _, rp := range ranked[:nTop] {
		top[rp.Pair] = true
	}

	selected := make([]network.EdgeKey, 0)
	for _, id := range g.Edges() {
		if top[id.Unordered()] {
			selected = append(selected, id)
		}
	}
	return selected
}

// randomEdges removes a uniform random fraction of all edges. The generator
// is seeded locally from the call's seed: same seed, same removal set.
func randomEdges(g *network.RoadNetwork, severity float64, seed int64) []network.EdgeKey {
	all := g.Edges()
	if len(all) == 0 {
		return nil
	}

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(all), func(i, j int) {
		all[i], all[j] = all[j], all[i]
	})

	n := ceilFraction(severity, len(all))
	if n > len(all) {
		n = len(all)
	}
	return all[:n]
}

// ceilFraction returns max(1, ceil(fraction * total)): every ranked or random
// scenario removes at least one edge on a nonempty edge set.
func ceilFraction(fraction float64, total int) int {
	n := int(math.Ceil(fraction * float64(total)))
	if n < 1 {
		n = 1
	}
	return n
}
