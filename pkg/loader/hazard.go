package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/urbansim/roadshock/pkg/cache"
	"github.com/urbansim/roadshock/pkg/logging"
	"github.com/urbansim/roadshock/pkg/metrics"
)

// HazardProvider fetches flood hazard polygons for a city from an OGC API
// Features endpoint. Hazard data is advisory: every failure mode degrades to
// "no hazard data" rather than an error, so a flaky hazard service never
// blocks a simulation.
type HazardProvider struct {
	cache      *cache.Store
	geocoder   *Geocoder
	apiURL     string
	collection string
	client     *http.Client
	logger     logging.Logger
	metrics    *metrics.Registry
}

// NewHazardProvider returns a provider backed by store. A nil client uses a
// client with a 30 second timeout.
func NewHazardProvider(store *cache.Store, geocoder *Geocoder, apiURL, collection string, client *http.Client, logger logging.Logger, reg *metrics.Registry) *HazardProvider {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	if reg == nil {
		reg = metrics.DefaultRegistry()
	}
	return &HazardProvider{
		cache:      store,
		geocoder:   geocoder,
		apiURL:     apiURL,
		collection: collection,
		client:     client,
		logger:     logger,
		metrics:    reg,
	}
}

// Hazards returns the flood polygons covering city. The second return value
// reports whether usable hazard data was obtained; callers fall back to
// severity-driven selection when it is false.
func (p *HazardProvider) Hazards(ctx context.Context, city string) ([]orb.Polygon, bool) {
	key := cache.SanitizeKey(city) + "_hazard"

	data, hit, err := p.cache.GetOrFetch(ctx, key, func(ctx context.Context) ([]byte, error) {
		return p.fetch(ctx, city)
	})
	p.metrics.RecordCacheAccess("hazard", hit)
	if err != nil {
		p.logger.Warn("hazard data unavailable", logging.City(city), logging.Error(err))
		return nil, false
	}

	polygons, err := decodeHazardPolygons(data)
	if err != nil || len(polygons) == 0 {
		p.logger.Warn("hazard data unusable",
			logging.City(city),
			logging.Bool("cache_hit", hit),
			logging.Error(err))
		return nil, false
	}

	p.logger.Info("hazard data loaded",
		logging.City(city),
		logging.Bool("cache_hit", hit),
		logging.Int("polygons", len(polygons)))
	return polygons, true
}

func (p *HazardProvider) fetch(ctx context.Context, city string) ([]byte, error) {
	bbox, err := p.geocoder.BoundingBox(ctx, city)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("f", "json")
	q.Set("bbox", fmt.Sprintf("%f,%f,%f,%f", bbox.West, bbox.South, bbox.East, bbox.North))

	endpoint := fmt.Sprintf("%s/collections/%s/items?%s", p.apiURL, p.collection, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "roadshock/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hazard api: unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// decodeHazardPolygons extracts polygon geometries from a GeoJSON feature
// collection. MultiPolygons are flattened; other geometry types are skipped.
func decodeHazardPolygons(data []byte) ([]orb.Polygon, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse hazard geojson: %w", err)
	}

	var polygons []orb.Polygon
	for _, f := range fc.Features {
		switch geom := f.Geometry.(type) {
		case orb.Polygon:
			polygons = append(polygons, geom)
		case orb.MultiPolygon:
			polygons = append(polygons, geom...)
		}
	}
	return polygons, nil
}
