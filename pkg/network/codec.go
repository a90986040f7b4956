package network

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/paulmach/orb"
)

// snapshotFile is the on-disk form of a snapshot. Edges are stored in
// insertion order so a decoded network iterates identically to the one that
// was encoded; cache round-trips must not change simulation outcomes.
type snapshotFile struct {
	Version int
	City    string
	Nodes   []Node
	Edges   []Edge
}

const snapshotVersion = 1

// MarshalBinary encodes the snapshot with gob. The cache layer compresses.
func (g *RoadNetwork) MarshalBinary() ([]byte, error) {
	file := snapshotFile{
		Version: snapshotVersion,
		City:    g.city,
		Nodes:   make([]Node, 0, len(g.nodeOrder)),
		Edges:   make([]Edge, 0, len(g.edgeOrder)),
	}
	for _, id := range g.nodeOrder {
		file.Nodes = append(file.Nodes, *g.nodes[id])
	}
	for _, id := range g.edgeOrder {
		if e, ok := g.edges[id]; ok {
			file.Edges = append(file.Edges, *e)
		}
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&file); err != nil {
		return nil, fmt.Errorf("encode network snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a snapshot previously produced by MarshalBinary.
func (g *RoadNetwork) UnmarshalBinary(data []byte) error {
	var file snapshotFile
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&file); err != nil {
		return fmt.Errorf("decode network snapshot: %w", err)
	}
	if file.Version != snapshotVersion {
		return fmt.Errorf("decode network snapshot: unsupported version %d", file.Version)
	}

	*g = *New(file.City)
	for _, n := range file.Nodes {
		g.AddNode(n.ID, n.Lon, n.Lat)
	}
	for _, e := range file.Edges {
		e.Highway = append([]string(nil), e.Highway...)
		e.Geometry = append(orb.LineString(nil), e.Geometry...)
		if _, err := g.AddEdge(e); err != nil {
			return fmt.Errorf("decode network snapshot: %w", err)
		}
	}
	return nil
}
