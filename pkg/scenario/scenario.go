// Package scenario turns a damage scenario into the set of edges to remove
// from a network snapshot. The scenario kinds form a closed set; unknown
// names are rejected before any network or data access.
package scenario

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

// Scenario is one of the five supported damage scenarios.
type Scenario int

const (
	BridgeCollapse Scenario = iota
	TunnelClosure
	HighwayFlood
	TargetedAttack
	RandomFailure
)

// ErrUnknownScenario rejects a scenario name outside the closed set. It is a
// validation error: callers surface it verbatim without touching any data.
var ErrUnknownScenario = errors.New("unknown scenario")

var scenarioNames = map[Scenario]string{
	BridgeCollapse: "Bridge Collapse",
	TunnelClosure:  "Tunnel Closure",
	HighwayFlood:   "Highway Flood",
	TargetedAttack: "Targeted Attack (Top k%)",
	RandomFailure:  "Random Failure",
}

// String returns the scenario's public name.
func (s Scenario) String() string {
	if name, ok := scenarioNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Scenario(%d)", int(s))
}

// All returns the supported scenarios in their public listing order.
func All() []Scenario {
	return []Scenario{BridgeCollapse, TunnelClosure, HighwayFlood, TargetedAttack, RandomFailure}
}

// Names returns the public names of all supported scenarios.
func Names() []string {
	all := All()
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = s.String()
	}
	return names
}

// Parse resolves a public scenario name. Unknown names fail with
// ErrUnknownScenario.
func Parse(name string) (Scenario, error) {
	for _, s := range All() {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownScenario, name)
}

// Spec describes one damage request. Severity is a fraction in [0,1]; the
// tag-based scenarios (bridge, tunnel) are all-or-nothing and ignore it.
// Hazards only affect Highway Flood. Seed drives every randomized decision
// of the call; it is never shared between calls.
type Spec struct {
	Scenario Scenario
	Severity float64
	Hazards  []orb.Polygon
	Seed     int64
}
