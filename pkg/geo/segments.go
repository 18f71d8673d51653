package geo

import (
	"math"

	"github.com/golang/geo/r2"
)

// SegmentsIntersect reports whether segment p1-p2 intersects segment p3-p4.
// Segments sharing an endpoint always intersect.
//
// See Franklin Antonio, "Faster Line Segment Intersection", Graphics Gems III.
func SegmentsIntersect(p1, p2, p3, p4 r2.Point) bool {
	if p1 == p3 || p1 == p4 || p2 == p3 || p2 == p4 {
		return true
	}

	d12 := p1.Sub(p2)
	d13 := p1.Sub(p3)
	d34 := p3.Sub(p4)

	denominator := d12.Cross(d34)
	numerator1 := d13.Cross(d34)

	if denominator == 0 {
		// Parallel. Only collinear overlapping segments touch.
		if numerator1 != 0 {
			return false
		}
		return overlaps(p1.X, p2.X, p3.X, p4.X) && overlaps(p1.Y, p2.Y, p3.Y, p4.Y)
	}

	if denominator > 0 {
		if numerator1 < 0 || numerator1 > denominator {
			return false
		}
	} else if numerator1 > 0 || numerator1 < denominator {
		return false
	}

	numerator2 := d13.Cross(d12)
	if denominator > 0 {
		return 0 <= numerator2 && numerator2 <= denominator
	}
	return 0 >= numerator2 && numerator2 >= denominator
}

// overlaps reports whether the closed intervals [a1,a2] and [b1,b2]
// (in either order) share a point.
func overlaps(a1, a2, b1, b2 float64) bool {
	return math.Max(math.Min(a1, a2), math.Min(b1, b2)) <= math.Min(math.Max(a1, a2), math.Max(b1, b2))
}

// SegmentsCross reports whether segment p1-p2 properly crosses p3-p4: the
// two segments meet in a single point interior to both. Touching at an
// endpoint or a vertex does not count.
func SegmentsCross(p1, p2, p3, p4 r2.Point) bool {
	d := p2.Sub(p1)
	o1 := d.Cross(p3.Sub(p1))
	o2 := d.Cross(p4.Sub(p1))
	e := p4.Sub(p3)
	o3 := e.Cross(p1.Sub(p3))
	o4 := e.Cross(p2.Sub(p3))
	return ((o1 > 0 && o2 < 0) || (o1 < 0 && o2 > 0)) &&
		((o3 > 0 && o4 < 0) || (o3 < 0 && o4 > 0))
}
