package simulation

// Metrics are the aggregate impact numbers of one shock simulation.
//
// Invariants: ratios >= 0 (a ratio below 1.0 is legal under directed-graph
// asymmetries and is never clamped); PctDisconnected in [0,100]; NPairs never
// exceeds the requested pair count.
type Metrics struct {
	AvgRatio        float64 `json:"avg_ratio"`
	MedianRatio     float64 `json:"median_ratio"`
	PctDisconnected float64 `json:"pct_disconnected"`
	NRemovedEdges   int     `json:"n_removed_edges"`
	NPairs          int     `json:"n_pairs"`
}

// Result is one simulation outcome stamped with its inputs. This is the
// record callers persist; everything else in a call is ephemeral.
type Result struct {
	City     string  `json:"city"`
	Scenario string  `json:"scenario"`
	Severity float64 `json:"severity"`
	Metrics
}
