package geo

import (
	"errors"
	"fmt"

	"github.com/golang/geo/r2"
)

// ErrInvalidPolygon is returned when a flat coordinate list does not
// describe a polygon.
var ErrInvalidPolygon = errors.New("invalid polygon")

// Polygon is a simple closed region stored as a flat coordinate list:
// lat0, lon0, lat1, lon1, ... The last vertex implicitly connects back to
// the first.
type Polygon []float64

// NumVertices returns the number of vertices.
func (p Polygon) NumVertices() int { return len(p) / 2 }

// Vertex returns vertex i in planar form (X = lon, Y = lat).
func (p Polygon) Vertex(i int) r2.Point {
	return r2.Point{X: p[2*i+1], Y: p[2*i]}
}

// Bound returns the axis-aligned bounding rectangle of the polygon.
func (p Polygon) Bound() r2.Rect {
	pts := make([]r2.Point, p.NumVertices())
	for i := range pts {
		pts[i] = p.Vertex(i)
	}
	return r2.RectFromPoints(pts...)
}

// Validate checks that p has an even number of coordinates and at least
// three vertices.
func (p Polygon) Validate() error {
	if len(p)%2 != 0 {
		return fmt.Errorf("%w: odd coordinate count %d", ErrInvalidPolygon, len(p))
	}
	if p.NumVertices() < 3 {
		return fmt.Errorf("%w: %d vertices, need at least 3", ErrInvalidPolygon, p.NumVertices())
	}
	return nil
}

// PointInPolygon reports whether (lat, lon) lies inside poly using the
// even-odd ray casting rule.
func PointInPolygon(lat, lon float64, poly Polygon) bool {
	n := poly.NumVertices()
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		yi, xi := poly[2*i], poly[2*i+1]
		yj, xj := poly[2*j], poly[2*j+1]
		if (yi > lat) != (yj > lat) && lon < (xj-xi)*(lat-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// EdgeCrossesPolygon reports whether the segment (lat1, lon1)-(lat2, lon2)
// intersects any boundary edge of poly.
func EdgeCrossesPolygon(lat1, lon1, lat2, lon2 float64, poly Polygon) bool {
	a := r2.Point{X: lon1, Y: lat1}
	b := r2.Point{X: lon2, Y: lat2}
	n := poly.NumVertices()
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		if SegmentsIntersect(a, b, poly.Vertex(i), poly.Vertex(j)) {
			return true
		}
	}
	return false
}

// Euclidean returns the planar distance between two points in coordinate
// units (degrees).
func Euclidean(lat1, lon1, lat2, lon2 float64) float64 {
	return r2.Point{X: lon1, Y: lat1}.Sub(r2.Point{X: lon2, Y: lat2}).Norm()
}
