package simulation

import (
	"fmt"
	"math/rand"

	"github.com/urbansim/roadshock/pkg/algorithms"
	"github.com/urbansim/roadshock/pkg/network"
)

// retryFactor bounds the sampler: at most retryFactor * count draws.
const retryFactor = 20

// ODPair is an ordered origin-destination pair. Both endpoints lie in the
// largest weakly-connected component of the network it was sampled from, and
// a directed path from Origin to Dest existed there at sampling time.
type ODPair struct {
	Origin network.NodeID
	Dest   network.NodeID
}

// SampleODPairs draws up to count OD pairs from the largest weakly-connected
// component. Each draw picks two distinct nodes uniformly (without
// replacement within the draw) and accepts the pair only if Dest is reachable
// from Origin; weak connectivity does not guarantee directed reachability.
//
// Identical (network, count, seed) inputs produce the identical pair
// sequence. Fewer than count pairs may be returned; finding none at all
// within the retry budget is ErrSamplingExhausted.
func SampleODPairs(g *network.RoadNetwork, count int, seed int64) ([]ODPair, error) {
	component := g.LargestComponent()
	if len(component) < 2 {
		return nil, fmt.Errorf("%w: largest component has %d node(s)", ErrSamplingExhausted, len(component))
	}

	members := make(map[network.NodeID]bool, len(component))
	for _, id := range component {
		members[id] = true
	}

	rng := rand.New(rand.NewSource(seed))
	pairs := make([]ODPair, 0, count)
	maxAttempts := count * retryFactor

	for attempts := 0; len(pairs) < count && attempts < maxAttempts; attempts++ {
		i := rng.Intn(len(component))
		j := rng.Intn(len(component) - 1)
		if j >= i {
			j++
		}
		origin, dest := component[i], component[j]

		if algorithms.HasDirectedPath(g, origin, dest, members) {
			pairs = append(pairs, ODPair{Origin: origin, Dest: dest})
		}
	}

	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: budget of %d draws exhausted", ErrSamplingExhausted, maxAttempts)
	}
	return pairs, nil
}
