package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// BBox is a geographic bounding box in degrees.
type BBox struct {
	South, North, West, East float64
}

// Geocoder resolves place names to bounding boxes via a Nominatim-compatible
// search endpoint.
type Geocoder struct {
	baseURL string
	client  *http.Client
}

// NewGeocoder returns a Geocoder against baseURL. A nil client uses
// http.DefaultClient.
func NewGeocoder(baseURL string, client *http.Client) *Geocoder {
	if client == nil {
		client = http.DefaultClient
	}
	return &Geocoder{baseURL: baseURL, client: client}
}

type geocodeResult struct {
	BoundingBox []string `json:"boundingbox"`
}

// BoundingBox resolves place to its bounding box, taking the first match.
func (g *Geocoder) BoundingBox(ctx context.Context, place string) (BBox, error) {
	q := url.Values{}
	q.Set("q", place)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return BBox{}, fmt.Errorf("geocode %s: %w", place, err)
	}
	req.Header.Set("User-Agent", "roadshock/1.0")

	resp, err := g.client.Do(req)
	if err != nil {
		return BBox{}, fmt.Errorf("geocode %s: %w", place, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return BBox{}, fmt.Errorf("geocode %s: unexpected status %d", place, resp.StatusCode)
	}

	var results []geocodeResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return BBox{}, fmt.Errorf("geocode %s: %w", place, err)
	}
	if len(results) == 0 || len(results[0].BoundingBox) != 4 {
		return BBox{}, fmt.Errorf("geocode %s: no match", place)
	}

	// Nominatim order is south, north, west, east.
	vals := make([]float64, 4)
	for i, s := range results[0].BoundingBox {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return BBox{}, fmt.Errorf("geocode %s: bad bounding box: %w", place, err)
		}
		vals[i] = v
	}
	return BBox{South: vals[0], North: vals[1], West: vals[2], East: vals[3]}, nil
}
