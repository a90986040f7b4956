package scenario

import (
	"testing"

	"github.com/paulmach/orb"
)

var unitSquare = orb.Polygon{orb.Ring{
	{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0},
}}

func TestLineIntersectsPolygon(t *testing.T) {
	cases := []struct {
		name string
		line orb.LineString
		want bool
	}{
		{"vertex inside", orb.LineString{{0.5, 0.5}, {2, 2}}, true},
		{"fully inside", orb.LineString{{0.2, 0.2}, {0.8, 0.8}}, true},
		{"crossing without interior vertex", orb.LineString{{-0.5, 0.5}, {1.5, 0.5}}, true},
		{"fully outside", orb.LineString{{2, 2}, {3, 3}}, false},
		{"outside along edge extension", orb.LineString{{1.5, 0}, {2.5, 0}}, false},
		{"touching a corner", orb.LineString{{1, 1}, {2, 2}}, true},
		{"empty line", orb.LineString{}, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := lineIntersectsPolygon(c.line, unitSquare); got != c.want {
				t.Errorf("lineIntersectsPolygon(%v) = %v, expected %v", c.line, got, c.want)
			}
		})
	}
}

func TestLineIntersectsPolygonWithHole(t *testing.T) {
	withHole := orb.Polygon{
		orb.Ring{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}},
		orb.Ring{{1, 1}, {3, 1}, {3, 3}, {1, 3}, {1, 1}},
	}

	// A segment inside the hole still crosses the inner ring when it spans it.
	spanning := orb.LineString{{0.5, 2}, {3.5, 2}}
	if !lineIntersectsPolygon(spanning, withHole) {
		t.Error("segment spanning the hole should intersect the polygon")
	}
}

func TestSegmentsCross(t *testing.T) {
	cases := []struct {
		name       string
		p, q, r, s orb.Point
		want       bool
	}{
		{"plain crossing", orb.Point{0, 0}, orb.Point{2, 2}, orb.Point{0, 2}, orb.Point{2, 0}, true},
		{"parallel", orb.Point{0, 0}, orb.Point{1, 0}, orb.Point{0, 1}, orb.Point{1, 1}, false},
		{"collinear overlap", orb.Point{0, 0}, orb.Point{2, 0}, orb.Point{1, 0}, orb.Point{3, 0}, true},
		{"collinear disjoint", orb.Point{0, 0}, orb.Point{1, 0}, orb.Point{2, 0}, orb.Point{3, 0}, false},
		{"shared endpoint", orb.Point{0, 0}, orb.Point{1, 1}, orb.Point{1, 1}, orb.Point{2, 0}, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := segmentsCross(c.p, c.q, c.r, c.s); got != c.want {
				t.Errorf("segmentsCross = %v, expected %v", got, c.want)
			}
		})
	}
}
