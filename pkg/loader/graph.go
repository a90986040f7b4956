// Package loader acquires road networks and hazard polygons from external
// services, with a persistent snapshot cache in front of each source.
package loader

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/osm"

	"github.com/urbansim/roadshock/pkg/cache"
	"github.com/urbansim/roadshock/pkg/logging"
	"github.com/urbansim/roadshock/pkg/metrics"
	"github.com/urbansim/roadshock/pkg/network"
)

// roadClasses are the highway classes included in fetched networks. Anything
// narrower than residential is noise at the scale shocks are simulated at.
var roadClasses = []string{
	"motorway", "motorway_link",
	"trunk", "trunk_link",
	"primary", "primary_link",
	"secondary", "secondary_link",
	"tertiary", "tertiary_link",
	"residential", "unclassified",
}

// classSpeedKPH are fallback free-flow speeds used when a way carries no
// usable maxspeed tag.
var classSpeedKPH = map[string]float64{
	"motorway":    100,
	"trunk":       80,
	"primary":     60,
	"secondary":   50,
	"tertiary":    40,
	"residential": 30,
}

const defaultSpeedKPH = 40

// GraphProvider loads city road networks, serving from the snapshot cache
// when possible and fetching from an Overpass endpoint otherwise.
type GraphProvider struct {
	cache       *cache.Store
	geocoder    *Geocoder
	overpassURL string
	client      *http.Client
	logger      logging.Logger
	metrics     *metrics.Registry
}

// NewGraphProvider returns a provider backed by store. A nil client uses a
// client with a generous timeout suited to Overpass extracts.
func NewGraphProvider(store *cache.Store, geocoder *Geocoder, overpassURL string, client *http.Client, logger logging.Logger, reg *metrics.Registry) *GraphProvider {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	if reg == nil {
		reg = metrics.DefaultRegistry()
	}
	return &GraphProvider{
		cache:       store,
		geocoder:    geocoder,
		overpassURL: overpassURL,
		client:      client,
		logger:      logger,
		metrics:     reg,
	}
}

// Load returns the road network for city. Cache misses trigger a fetch; the
// fetched snapshot is persisted before returning. Any acquisition failure is
// reported as ErrGraphUnavailable.
func (p *GraphProvider) Load(ctx context.Context, city string) (*network.RoadNetwork, error) {
	key := cache.SanitizeKey(city)
	start := time.Now()

	data, hit, err := p.cache.GetOrFetch(ctx, key, p.fetchFunc(city))
	p.metrics.RecordCacheAccess("graph", hit)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrGraphUnavailable, city, err)
	}

	g := network.New(city)
	if err := g.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("%w: %s: corrupt snapshot: %v", ErrGraphUnavailable, city, err)
	}

	source := "fetch"
	if hit {
		source = "cache"
	}
	p.metrics.RecordGraphLoad(source, time.Since(start))

	p.logger.Info("road network loaded",
		logging.City(city),
		logging.Bool("cache_hit", hit),
		logging.Int("nodes", g.NumNodes()),
		logging.Int("edges", g.NumEdges()),
		logging.Latency(time.Since(start)))
	return g, nil
}

func (p *GraphProvider) fetchFunc(city string) cache.FetchFunc {
	return func(ctx context.Context) ([]byte, error) {
		return p.fetch(ctx, city)
	}
}

func (p *GraphProvider) fetch(ctx context.Context, city string) ([]byte, error) {
	bbox, err := p.geocoder.BoundingBox(ctx, city)
	if err != nil {
		return nil, err
	}

	raw, err := p.queryOverpass(ctx, bbox)
	if err != nil {
		return nil, err
	}

	var doc osm.OSM
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse overpass response: %w", err)
	}

	g, err := buildNetwork(city, &doc)
	if err != nil {
		return nil, err
	}
	return g.MarshalBinary()
}

func (p *GraphProvider) queryOverpass(ctx context.Context, bbox BBox) ([]byte, error) {
	query := fmt.Sprintf(
		`[out:xml][timeout:180];(way["highway"~"^(%s)$"](%f,%f,%f,%f);>;);out body;`,
		strings.Join(roadClasses, "|"),
		bbox.South, bbox.West, bbox.North, bbox.East)

	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.overpassURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "roadshock/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("overpass: unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// buildNetwork turns an OSM extract into a directed road network with one
// edge per way segment. Two-way streets produce an edge in each direction.
func buildNetwork(city string, doc *osm.OSM) (*network.RoadNetwork, error) {
	coords := make(map[osm.NodeID]orb.Point, len(doc.Nodes))
	for _, n := range doc.Nodes {
		coords[n.ID] = orb.Point{n.Lon, n.Lat}
	}

	g := network.New(city)
	for _, way := range doc.Ways {
		highway := way.Tags.Find("highway")
		if highway == "" || len(way.Nodes) < 2 {
			continue
		}

		speed := waySpeedKPH(way.Tags, highway)
		bridge := way.Tags.Find("bridge")
		tunnel := way.Tags.Find("tunnel")
		classes := strings.Split(highway, ";")

		forward, backward := wayDirections(way.Tags)

		for i := 0; i+1 < len(way.Nodes); i++ {
			a, b := way.Nodes[i].ID, way.Nodes[i+1].ID
			pa, okA := coords[a]
			pb, okB := coords[b]
			if !okA || !okB {
				continue
			}
			g.AddNode(network.NodeID(a), pa[0], pa[1])
			g.AddNode(network.NodeID(b), pb[0], pb[1])

			if forward {
				if err := addSegment(g, network.NodeID(a), network.NodeID(b), pa, pb, classes, bridge, tunnel, speed); err != nil {
					return nil, err
				}
			}
			if backward {
				if err := addSegment(g, network.NodeID(b), network.NodeID(a), pb, pa, classes, bridge, tunnel, speed); err != nil {
					return nil, err
				}
			}
		}
	}

	if g.NumEdges() == 0 {
		return nil, fmt.Errorf("build network %s: %w", city, network.ErrEmptyNetwork)
	}
	return g, nil
}

func addSegment(g *network.RoadNetwork, from, to network.NodeID, pFrom, pTo orb.Point, classes []string, bridge, tunnel string, speedKPH float64) error {
	length := geo.DistanceHaversine(pFrom, pTo)
	e := network.Edge{
		From:       from,
		To:         to,
		Key:        -1,
		Bridge:     bridge,
		Tunnel:     tunnel,
		Highway:    classes,
		Geometry:   orb.LineString{pFrom, pTo},
		Length:     length,
		SpeedKPH:   speedKPH,
		TravelTime: length / (speedKPH / 3.6),
	}
	_, err := g.AddEdge(e)
	return err
}

// wayDirections reports whether a way carries traffic forward and backward.
func wayDirections(tags osm.Tags) (forward, backward bool) {
	switch tags.Find("oneway") {
	case "yes", "true", "1":
		return true, false
	case "-1", "reverse":
		return false, true
	default:
		return true, true
	}
}

// waySpeedKPH derives the free-flow speed from the maxspeed tag, falling back
// to the highway-class default.
func waySpeedKPH(tags osm.Tags, highway string) float64 {
	if v := parseMaxSpeed(tags.Find("maxspeed")); v > 0 {
		return v
	}
	base := strings.TrimSuffix(strings.SplitN(highway, ";", 2)[0], "_link")
	if v, ok := classSpeedKPH[base]; ok {
		return v
	}
	return defaultSpeedKPH
}

// parseMaxSpeed handles plain km/h values and "N mph". Anything else, such as
// "signals" or "none", yields zero.
func parseMaxSpeed(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if mph, ok := strings.CutSuffix(raw, " mph"); ok {
		if v, err := strconv.ParseFloat(strings.TrimSpace(mph), 64); err == nil {
			return v * 1.609344
		}
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}
