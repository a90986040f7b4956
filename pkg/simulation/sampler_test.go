package simulation

import (
	"errors"
	"testing"

	"github.com/urbansim/roadshock/pkg/network"
)

// buildRing creates a directed cycle over the given node IDs, so every node
// reaches every other.
func buildRing(t *testing.T, ids ...network.NodeID) *network.RoadNetwork {
	t.Helper()
	g := network.New("Testville")
	for i, id := range ids {
		g.AddNode(id, float64(i)*0.01, 0)
	}
	for i := range ids {
		next := ids[(i+1)%len(ids)]
		if _, err := g.AddEdge(network.Edge{From: ids[i], To: next, Key: -1, Length: 100, TravelTime: 10}); err != nil {
			t.Fatalf("AddEdge failed: %v", err)
		}
	}
	return g
}

func TestSampleODPairsBasics(t *testing.T) {
	g := buildRing(t, 1, 2, 3, 4, 5)

	pairs, err := SampleODPairs(g, 10, 42)
	if err != nil {
		t.Fatalf("SampleODPairs failed: %v", err)
	}
	if len(pairs) != 10 {
		t.Fatalf("expected 10 pairs on a fully connected ring, got %d", len(pairs))
	}
	for _, p := range pairs {
		if p.Origin == p.Dest {
			t.Errorf("pair with equal endpoints: %v", p)
		}
	}
}

func TestSampleODPairsDeterministic(t *testing.T) {
	g := buildRing(t, 1, 2, 3, 4, 5, 6)

	first, err := SampleODPairs(g, 8, 7)
	if err != nil {
		t.Fatal(err)
	}
	second, err := SampleODPairs(g, 8, 7)
	if err != nil {
		t.Fatal(err)
	}

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("pair[%d] differs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestSampleODPairsIgnoresSmallerComponents(t *testing.T) {
	g := buildRing(t, 1, 2, 3, 4, 5)
	// Second, smaller component.
	g.AddNode(100, 1, 1)
	g.AddNode(101, 1.01, 1)
	if _, err := g.AddEdge(network.Edge{From: 100, To: 101, Key: -1}); err != nil {
		t.Fatal(err)
	}

	pairs, err := SampleODPairs(g, 20, 11)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range pairs {
		if p.Origin >= 100 || p.Dest >= 100 {
			t.Errorf("pair %v drawn outside the largest component", p)
		}
	}
}

func TestSampleODPairsRejectsUnreachableDest(t *testing.T) {
	// Star flowing into a sink: 1 -> 4, 2 -> 4, 3 -> 4. The only valid
	// destinations are pairs ending at 4.
	g := network.New("Testville")
	for i := network.NodeID(1); i <= 4; i++ {
		g.AddNode(i, float64(i)*0.01, 0)
	}
	for _, from := range []network.NodeID{1, 2, 3} {
		if _, err := g.AddEdge(network.Edge{From: from, To: 4, Key: -1}); err != nil {
			t.Fatal(err)
		}
	}

	pairs, err := SampleODPairs(g, 5, 3)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range pairs {
		if p.Dest != 4 {
			t.Errorf("accepted unreachable pair %v", p)
		}
	}
}

func TestSampleODPairsTinyComponent(t *testing.T) {
	g := network.New("Testville")
	g.AddNode(1, 0, 0)

	if _, err := SampleODPairs(g, 5, 1); !errors.Is(err, ErrSamplingExhausted) {
		t.Fatalf("expected ErrSamplingExhausted, got %v", err)
	}

	empty := network.New("Testville")
	if _, err := SampleODPairs(empty, 5, 1); !errors.Is(err, ErrSamplingExhausted) {
		t.Fatalf("expected ErrSamplingExhausted on empty network, got %v", err)
	}
}
