package geo

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ParsePolygons extracts avoid polygons from a GeoJSON document. Polygon
// and MultiPolygon features contribute their outer rings; holes are ignored
// since an avoid area with a hole is still avoided as a whole.
func ParsePolygons(data []byte) ([]Polygon, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode feature collection: %w", err)
	}

	var polys []Polygon
	for i, f := range fc.Features {
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			if len(g) == 0 {
				continue
			}
			p, err := fromRing(g[0])
			if err != nil {
				return nil, fmt.Errorf("feature %d: %w", i, err)
			}
			polys = append(polys, p)
		case orb.MultiPolygon:
			for _, mp := range g {
				if len(mp) == 0 {
					continue
				}
				p, err := fromRing(mp[0])
				if err != nil {
					return nil, fmt.Errorf("feature %d: %w", i, err)
				}
				polys = append(polys, p)
			}
		}
	}
	return polys, nil
}

// LoadPolygons reads avoid polygons from a GeoJSON file.
func LoadPolygons(path string) ([]Polygon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read polygons: %w", err)
	}
	return ParsePolygons(data)
}

// MarshalPolygons encodes polys as a GeoJSON feature collection with one
// Polygon feature each. Every polygon must pass Validate.
func MarshalPolygons(polys []Polygon) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for i, p := range polys {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("polygon %d: %w", i, err)
		}
		fc.Append(geojson.NewFeature(orb.Polygon{toRing(p)}))
	}
	return fc.MarshalJSON()
}

// SavePolygons writes polys to path as GeoJSON.
func SavePolygons(path string, polys []Polygon) error {
	data, err := MarshalPolygons(polys)
	if err != nil {
		return fmt.Errorf("encode polygons: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write polygons: %w", err)
	}
	return nil
}

// fromRing converts a GeoJSON ring (lon, lat points, usually closed) into a
// Polygon. The closing duplicate vertex is dropped.
func fromRing(r orb.Ring) (Polygon, error) {
	if len(r) > 1 && r[0] == r[len(r)-1] {
		r = r[:len(r)-1]
	}
	p := make(Polygon, 0, 2*len(r))
	for _, pt := range r {
		p = append(p, pt.Lat(), pt.Lon())
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func toRing(p Polygon) orb.Ring {
	r := make(orb.Ring, 0, p.NumVertices()+1)
	for i := 0; i < p.NumVertices(); i++ {
		r = append(r, orb.Point{p[2*i+1], p[2*i]})
	}
	return append(r, r[0])
}
