package scenario

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// lineIntersectsPolygon reports whether a road geometry touches a hazard
// polygon: either a vertex lies inside the polygon or a segment crosses one
// of its rings. Planar tests are fine at city extents.
func lineIntersectsPolygon(line orb.LineString, polygon orb.Polygon) bool {
	if len(line) == 0 || len(polygon) == 0 {
		return false
	}

	for _, pt := range line {
		if planar.PolygonContains(polygon, pt) {
			return true
		}
	}

	for i := 0; i+1 < len(line); i++ {
		for _, ring := range polygon {
			for j := 0; j+1 < len(ring); j++ {
				if segmentsCross(line[i], line[i+1], ring[j], ring[j+1]) {
					return true
				}
			}
		}
	}

	return false
}

// segmentsCross reports whether segments pq and rs intersect, including the
// collinear-overlap cases.
func segmentsCross(p, q, r, s orb.Point) bool {
	d1 := orientation(r, s, p)
	d2 := orientation(r, s, q)
	d3 := orientation(p, q, r)
	d4 := orientation(p, q, s)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	switch {
	case d1 == 0 && onSegment(r, s, p):
		return true
	case d2 == 0 && onSegment(r, s, q):
		return true
	case d3 == 0 && onSegment(p, q, r):
		return true
	case d4 == 0 && onSegment(p, q, s):
		return true
	}
	return false
}

// orientation returns the sign of the cross product (b-a) x (c-a).
func orientation(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

// onSegment reports whether point c, known collinear with ab, lies on ab.
func onSegment(a, b, c orb.Point) bool {
	return min(a[0], b[0]) <= c[0] && c[0] <= max(a[0], b[0]) &&
		min(a[1], b[1]) <= c[1] && c[1] <= max(a[1], b[1])
}
