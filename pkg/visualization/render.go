// Package visualization renders road networks as raster images for quick
// inspection of a shock's footprint.
package visualization

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/urbansim/roadshock/pkg/network"
)

// Options controls rendering. Zero values fall back to defaults.
type Options struct {
	Width  int
	Height int
	// Background, Road, and Removed override the default palette when set.
	Background color.Color
	Road       color.Color
	Removed    color.Color
}

const (
	defaultWidth  = 1200
	defaultHeight = 900
	margin        = 24
)

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = defaultWidth
	}
	if o.Height <= 0 {
		o.Height = defaultHeight
	}
	if o.Background == nil {
		o.Background = color.White
	}
	if o.Road == nil {
		o.Road = color.RGBA{R: 0xb0, G: 0xb0, B: 0xb0, A: 0xff}
	}
	if o.Removed == nil {
		o.Removed = color.RGBA{R: 0xd0, G: 0x20, B: 0x20, A: 0xff}
	}
	return o
}

// RenderPNG draws the network with removed edges highlighted and returns the
// encoded PNG. Removed edges are drawn last so they stay visible on top of
// the intact network.
func RenderPNG(g *network.RoadNetwork, removed []network.EdgeKey, opts Options) ([]byte, error) {
	if g.NumNodes() == 0 {
		return nil, fmt.Errorf("render %s: %w", g.City(), network.ErrEmptyNetwork)
	}
	opts = opts.withDefaults()

	proj := newProjection(g, opts.Width, opts.Height)
	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	fill(img, opts.Background)

	removedSet := make(map[network.EdgeKey]bool, len(removed))
	for _, id := range removed {
		removedSet[id] = true
	}

	for _, id := range g.Edges() {
		if removedSet[id] {
			continue
		}
		drawEdge(img, g, id, proj, opts.Road)
	}
	for _, id := range removed {
		if g.HasEdge(id) {
			drawEdge(img, g, id, proj, opts.Removed)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("render %s: %w", g.City(), err)
	}
	return buf.Bytes(), nil
}

// RenderPNGBase64 is RenderPNG with the payload base64-encoded for JSON
// transport.
func RenderPNGBase64(g *network.RoadNetwork, removed []network.EdgeKey, opts Options) (string, error) {
	data, err := RenderPNG(g, removed, opts)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// projection maps lon/lat onto pixel coordinates, preserving aspect ratio by
// fitting the network's bounding box inside the image margins.
type projection struct {
	minLon, minLat float64
	scale          float64
	offX, offY     float64
	height         int
}

func newProjection(g *network.RoadNetwork, width, height int) projection {
	first := true
	var minLon, maxLon, minLat, maxLat float64
	for _, id := range g.Nodes() {
		n, _ := g.Node(id)
		if first {
			minLon, maxLon = n.Lon, n.Lon
			minLat, maxLat = n.Lat, n.Lat
			first = false
			continue
		}
		minLon = min(minLon, n.Lon)
		maxLon = max(maxLon, n.Lon)
		minLat = min(minLat, n.Lat)
		maxLat = max(maxLat, n.Lat)
	}

	spanLon := maxLon - minLon
	spanLat := maxLat - minLat
	if spanLon == 0 {
		spanLon = 1e-9
	}
	if spanLat == 0 {
		spanLat = 1e-9
	}

	usableW := float64(width - 2*margin)
	usableH := float64(height - 2*margin)
	scale := min(usableW/spanLon, usableH/spanLat)

	// Center the drawing inside the frame.
	offX := (usableW - spanLon*scale) / 2
	offY := (usableH - spanLat*scale) / 2

	return projection{
		minLon: minLon, minLat: minLat,
		scale:  scale,
		offX:   float64(margin) + offX,
		offY:   float64(margin) + offY,
		height: height,
	}
}

func (p projection) point(lon, lat float64) (int, int) {
	x := p.offX + (lon-p.minLon)*p.scale
	// Latitude grows north, image y grows down.
	y := float64(p.height) - (p.offY + (lat-p.minLat)*p.scale)
	return int(x + 0.5), int(y + 0.5)
}

func drawEdge(img *image.RGBA, g *network.RoadNetwork, id network.EdgeKey, proj projection, c color.Color) {
	e, ok := g.Edge(id)
	if !ok {
		return
	}
	for i := 0; i+1 < len(e.Geometry); i++ {
		x0, y0 := proj.point(e.Geometry[i][0], e.Geometry[i][1])
		x1, y1 := proj.point(e.Geometry[i+1][0], e.Geometry[i+1][1])
		drawLine(img, x0, y0, x1, y1, c)
	}
}

func fill(img *image.RGBA, c color.Color) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.Set(x, y, c)
		}
	}
}

// drawLine rasterizes a segment with Bresenham's algorithm.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		img.Set(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
