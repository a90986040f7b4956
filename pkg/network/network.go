// Package network holds the in-memory road-network snapshot: a directed
// multigraph with geotagged nodes and weighted, tagged edges. A snapshot is
// read-mostly; damage is only ever applied to a Clone, never in place.
package network

import (
	"github.com/paulmach/orb"
)

// NodeID identifies a junction node. IDs come from the upstream map data and
// are only meaningful relative to one snapshot.
type NodeID int64

// EdgeKey uniquely identifies one directed edge. Key distinguishes parallel
// edges between the same ordered node pair.
type EdgeKey struct {
	From NodeID `json:"from"`
	To   NodeID `json:"to"`
	Key  int    `json:"key"`
}

// NodePair is an unordered node pair in canonical (A <= B) form.
type NodePair struct {
	A NodeID
	B NodeID
}

// PairOf returns the canonical unordered pair for two node IDs.
func PairOf(u, v NodeID) NodePair {
	if v < u {
		u, v = v, u
	}
	return NodePair{A: u, B: v}
}

// Unordered returns the edge's endpoints as a canonical pair.
func (k EdgeKey) Unordered() NodePair {
	return PairOf(k.From, k.To)
}

// Node is a junction with geographic coordinates (WGS84 lon/lat).
type Node struct {
	ID  NodeID
	Lon float64
	Lat float64
}

// Point returns the node position as an orb point.
func (n *Node) Point() orb.Point {
	return orb.Point{n.Lon, n.Lat}
}

// Edge is one directed road segment. Bridge and Tunnel hold the raw tag value
// ("" means untagged). Highway may carry multiple classes for merged ways.
// Length is meters, SpeedKPH km/h, TravelTime seconds.
type Edge struct {
	From    NodeID
	To      NodeID
	Key     int
	Bridge  string
	Tunnel  string
	Highway []string
	// Geometry is used for hazard intersection tests; at minimum the two
	// endpoint positions.
	Geometry   orb.LineString
	Length     float64
	SpeedKPH   float64
	TravelTime float64
}

// EdgeID returns the edge's identifying triple.
func (e *Edge) EdgeID() EdgeKey {
	return EdgeKey{From: e.From, To: e.To, Key: e.Key}
}

// RoadNetwork is a directed multigraph snapshot for one city.
//
// Iteration over nodes and edges follows insertion order, which makes every
// downstream selection and sampling decision reproducible for a given
// snapshot and seed.
type RoadNetwork struct {
	city string

	nodes     map[NodeID]*Node
	nodeOrder []NodeID

	edges     map[EdgeKey]*Edge
	edgeOrder []EdgeKey

	out map[NodeID][]EdgeKey
	in  map[NodeID][]EdgeKey
}

// New creates an empty network snapshot for the named city.
func New(city string) *RoadNetwork {
	return &RoadNetwork{
		city:  city,
		nodes: make(map[NodeID]*Node),
		edges: make(map[EdgeKey]*Edge),
		out:   make(map[NodeID][]EdgeKey),
		in:    make(map[NodeID][]EdgeKey),
	}
}

// City returns the city identifier this snapshot was loaded for.
func (g *RoadNetwork) City() string {
	return g.city
}

// AddNode inserts a node. Re-adding an existing ID updates its coordinates
// without changing iteration order.
func (g *RoadNetwork) AddNode(id NodeID, lon, lat float64) {
	if existing, ok := g.nodes[id]; ok {
		existing.Lon = lon
		existing.Lat = lat
		return
	}
	g.nodes[id] = &Node{ID: id, Lon: lon, Lat: lat}
	g.nodeOrder = append(g.nodeOrder, id)
}

// Node returns the node with the given ID.
func (g *RoadNetwork) Node(id NodeID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// AddEdge inserts a directed edge. Both endpoints must already exist. If
// e.Key is negative the next free parallel key for (From, To) is assigned.
// Returns the edge's identifying triple.
func (g *RoadNetwork) AddEdge(e Edge) (EdgeKey, error) {
	if _, ok := g.nodes[e.From]; !ok {
		return EdgeKey{}, &GraphError{Op: "AddEdge", Kind: "node", Cause: ErrNodeNotFound}
	}
	if _, ok := g.nodes[e.To]; !ok {
		return EdgeKey{}, &GraphError{Op: "AddEdge", Kind: "node", Cause: ErrNodeNotFound}
	}

	if e.Key < 0 {
		key := 0
		for {
			if _, exists := g.edges[EdgeKey{From: e.From, To: e.To, Key: key}]; !exists {
				break
			}
			key++
		}
		e.Key = key
	}

	id := e.EdgeID()
	if _, exists := g.edges[id]; exists {
		return EdgeKey{}, &GraphError{Op: "AddEdge", Kind: "edge", Cause: ErrDuplicateEdge}
	}

	if len(e.Geometry) == 0 {
		from := g.nodes[e.From]
		to := g.nodes[e.To]
		e.Geometry = orb.LineString{from.Point(), to.Point()}
	}

	stored := e
	g.edges[id] = &stored
	g.edgeOrder = append(g.edgeOrder, id)
	g.out[e.From] = append(g.out[e.From], id)
	g.in[e.To] = append(g.in[e.To], id)
	return id, nil
}

// Edge returns the edge with the given identifier.
func (g *RoadNetwork) Edge(id EdgeKey) (*Edge, bool) {
	e, ok := g.edges[id]
	return e, ok
}

// HasEdge reports whether the identified edge is present.
func (g *RoadNetwork) HasEdge(id EdgeKey) bool {
	_, ok := g.edges[id]
	return ok
}

// RemoveEdge deletes the identified edge. Removing an absent identifier is a
// no-op; the return value reports whether anything was removed.
func (g *RoadNetwork) RemoveEdge(id EdgeKey) bool {
	if _, ok := g.edges[id]; !ok {
		return false
	}
	delete(g.edges, id)
	g.out[id.From] = dropKey(g.out[id.From], id)
	g.in[id.To] = dropKey(g.in[id.To], id)
	return true
}

func dropKey(keys []EdgeKey, id EdgeKey) []EdgeKey {
	for i, k := range keys {
		if k == id {
			return append(keys[:i], keys[i+1:]...)
		}
	}
	return keys
}

// NumNodes returns the node count.
func (g *RoadNetwork) NumNodes() int {
	return len(g.nodes)
}

// NumEdges returns the directed edge count.
func (g *RoadNetwork) NumEdges() int {
	return len(g.edges)
}

// Nodes returns node IDs in insertion order.
func (g *RoadNetwork) Nodes() []NodeID {
	ids := make([]NodeID, len(g.nodeOrder))
	copy(ids, g.nodeOrder)
	return ids
}

// Edges returns the identifiers of all present edges in insertion order.
// Removed edges are skipped.
func (g *RoadNetwork) Edges() []EdgeKey {
	ids := make([]EdgeKey, 0, len(g.edges))
	for _, id := range g.edgeOrder {
		if _, ok := g.edges[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// FirstEdge returns the first edge in iteration order, used for weight
// attribute selection.
func (g *RoadNetwork) FirstEdge() (*Edge, bool) {
	for _, id := range g.edgeOrder {
		if e, ok := g.edges[id]; ok {
			return e, true
		}
	}
	return nil, false
}

// OutEdges returns the edges leaving a node, in insertion order.
func (g *RoadNetwork) OutEdges(id NodeID) []*Edge {
	keys := g.out[id]
	edges := make([]*Edge, 0, len(keys))
	for _, k := range keys {
		if e, ok := g.edges[k]; ok {
			edges = append(edges, e)
		}
	}
	return edges
}

// InEdges returns the edges entering a node, in insertion order.
func (g *RoadNetwork) InEdges(id NodeID) []*Edge {
	keys := g.in[id]
	edges := make([]*Edge, 0, len(keys))
	for _, k := range keys {
		if e, ok := g.edges[k]; ok {
			edges = append(edges, e)
		}
	}
	return edges
}

// Clone returns a deep copy of the snapshot. The copy shares nothing with the
// original, so removing edges from it is safe while the original is read
// concurrently.
func (g *RoadNetwork) Clone() *RoadNetwork {
	c := &RoadNetwork{
		city:      g.city,
		nodes:     make(map[NodeID]*Node, len(g.nodes)),
		nodeOrder: make([]NodeID, len(g.nodeOrder)),
		edges:     make(map[EdgeKey]*Edge, len(g.edges)),
		edgeOrder: make([]EdgeKey, len(g.edgeOrder)),
		out:       make(map[NodeID][]EdgeKey, len(g.out)),
		in:        make(map[NodeID][]EdgeKey, len(g.in)),
	}
	copy(c.nodeOrder, g.nodeOrder)
	copy(c.edgeOrder, g.edgeOrder)

	for id, n := range g.nodes {
		nc := *n
		c.nodes[id] = &nc
	}
	for id, e := range g.edges {
		ec := *e
		ec.Highway = append([]string(nil), e.Highway...)
		ec.Geometry = append(orb.LineString(nil), e.Geometry...)
		c.edges[id] = &ec
	}
	for id, keys := range g.out {
		c.out[id] = append([]EdgeKey(nil), keys...)
	}
	for id, keys := range g.in {
		c.in[id] = append([]EdgeKey(nil), keys...)
	}
	return c
}
