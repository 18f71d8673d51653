package osm

import (
	"testing"

	"github.com/paulmach/osm"
)

func TestIsCarAccessible(t *testing.T) {
	tests := []struct {
		name string
		tags osm.Tags
		want bool
	}{
		{
			name: "residential road",
			tags: osm.Tags{{Key: "highway", Value: "residential"}},
			want: true,
		},
		{
			name: "motorway",
			tags: osm.Tags{{Key: "highway", Value: "motorway"}},
			want: true,
		},
		{
			name: "footway (not car accessible)",
			tags: osm.Tags{{Key: "highway", Value: "footway"}},
			want: false,
		},
		{
			name: "cycleway",
			tags: osm.Tags{{Key: "highway", Value: "cycleway"}},
			want: false,
		},
		{
			name: "private access",
			tags: osm.Tags{
				{Key: "highway", Value: "residential"},
				{Key: "access", Value: "private"},
			},
			want: false,
		},
		{
			name: "no access",
			tags: osm.Tags{
				{Key: "highway", Value: "residential"},
				{Key: "access", Value: "no"},
			},
			want: false,
		},
		{
			name: "motor_vehicle=no",
			tags: osm.Tags{
				{Key: "highway", Value: "residential"},
				{Key: "motor_vehicle", Value: "no"},
			},
			want: false,
		},
		{
			name: "area=yes (pedestrian plaza)",
			tags: osm.Tags{
				{Key: "highway", Value: "service"},
				{Key: "area", Value: "yes"},
			},
			want: false,
		},
		{
			name: "service road",
			tags: osm.Tags{{Key: "highway", Value: "service"}},
			want: true,
		},
		{
			name: "living_street",
			tags: osm.Tags{{Key: "highway", Value: "living_street"}},
			want: true,
		},
		{
			name: "no highway tag",
			tags: osm.Tags{{Key: "name", Value: "Some Street"}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isCarAccessible(tt.tags)
			if got != tt.want {
				t.Errorf("isCarAccessible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDirectionFlags(t *testing.T) {
	tests := []struct {
		name        string
		tags        osm.Tags
		wantForward bool
		wantBackward bool
	}{
		{
			name:        "default bidirectional",
			tags:        osm.Tags{{Key: "highway", Value: "residential"}},
			wantForward: true,
			wantBackward: true,
		},
		{
			name:        "motorway implied oneway",
			tags:        osm.Tags{{Key: "highway", Value: "motorway"}},
			wantForward: true,
			wantBackward: false,
		},
		{
			name:        "motorway_link implied oneway",
			tags:        osm.Tags{{Key: "highway", Value: "motorway_link"}},
			wantForward: true,
			wantBackward: false,
		},
		{
			name:        "roundabout implied oneway",
			tags:        osm.Tags{
				{Key: "highway", Value: "residential"},
				{Key: "junction", Value: "roundabout"},
			},
			wantForward: true,
			wantBackward: false,
		},
		{
			name:        "explicit oneway=yes",
			tags:        osm.Tags{
				{Key: "highway", Value: "primary"},
				{Key: "oneway", Value: "yes"},
			},
			wantForward: true,
			wantBackward: false,
		},
		{
			name:        "explicit oneway=true",
			tags:        osm.Tags{
				{Key: "highway", Value: "primary"},
				{Key: "oneway", Value: "true"},
			},
			wantForward: true,
			wantBackward: false,
		},
		{
			name:        "explicit oneway=1",
			tags:        osm.Tags{
				{Key: "highway", Value: "primary"},
				{Key: "oneway", Value: "1"},
			},
			wantForward: true,
			wantBackward: false,
		},
		{
			name:        "explicit oneway=-1 (reverse)",
			tags:        osm.Tags{
				{Key: "highway", Value: "primary"},
				{Key: "oneway", Value: "-1"},
			},
			wantForward: false,
			wantBackward: true,
		},
		{
			name:        "explicit oneway=reverse",
			tags:        osm.Tags{
				{Key: "highway", Value: "primary"},
				{Key: "oneway", Value: "reverse"},
			},
			wantForward: false,
			wantBackward: true,
		},
		{
			name:        "explicit oneway=no overrides implied",
			tags:        osm.Tags{
				{Key: "highway", Value: "motorway"},
				{Key: "oneway", Value: "no"},
			},
			wantForward: true,
			wantBackward: true,
		},
		{
			name:        "oneway=reversible skips entirely",
			tags:        osm.Tags{
				{Key: "highway", Value: "primary"},
				{Key: "oneway", Value: "reversible"},
			},
			wantForward: false,
			wantBackward: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fwd, bwd := directionFlags(tt.tags)
			if fwd != tt.wantForward || bwd != tt.wantBackward {
				t.Errorf("directionFlags() = (%v, %v), want (%v, %v)", fwd, bwd, tt.wantForward, tt.wantBackward)
			}
		})
	}
}

func closedWay(tags osm.Tags, ids ...osm.NodeID) *osm.Way {
	w := &osm.Way{Tags: tags}
	for _, id := range ids {
		w.Nodes = append(w.Nodes, osm.WayNode{ID: id})
	}
	return w
}

func TestMatchesAvoid(t *testing.T) {
	opt := ParseOptions{AvoidTags: osm.Tags{
		{Key: "landuse", Value: "military"},
		{Key: "aeroway", Value: ""},
	}}

	tests := []struct {
		name string
		way  *osm.Way
		want bool
	}{
		{
			name: "military area",
			way:  closedWay(osm.Tags{{Key: "landuse", Value: "military"}}, 1, 2, 3, 1),
			want: true,
		},
		{
			name: "any aeroway value",
			way:  closedWay(osm.Tags{{Key: "aeroway", Value: "apron"}}, 1, 2, 3, 1),
			want: true,
		},
		{
			name: "other landuse",
			way:  closedWay(osm.Tags{{Key: "landuse", Value: "forest"}}, 1, 2, 3, 1),
			want: false,
		},
		{
			name: "open way",
			way:  closedWay(osm.Tags{{Key: "landuse", Value: "military"}}, 1, 2, 3, 4),
			want: false,
		},
		{
			name: "too few nodes",
			way:  closedWay(osm.Tags{{Key: "landuse", Value: "military"}}, 1, 2, 1),
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := opt.matchesAvoid(tt.way); got != tt.want {
				t.Errorf("matchesAvoid() = %v, want %v", got, tt.want)
			}
		})
	}

	if (ParseOptions{}).matchesAvoid(closedWay(osm.Tags{{Key: "landuse", Value: "military"}}, 1, 2, 3, 1)) {
		t.Error("matchesAvoid without AvoidTags should be false")
	}
}

func TestBuildPolygons(t *testing.T) {
	nodeLat := map[osm.NodeID]float64{1: 0, 2: 0, 3: 1, 4: 1}
	nodeLon := map[osm.NodeID]float64{1: 0, 2: 1, 3: 1, 4: 0}

	polys := buildPolygons([][]osm.NodeID{
		{1, 2, 3, 4},
		{1, 2, 99}, // missing node
		{1, 2},     // degenerate
	}, nodeLat, nodeLon)

	if len(polys) != 1 {
		t.Fatalf("got %d polygons, want 1", len(polys))
	}
	want := []float64{0, 0, 0, 1, 1, 1, 1, 0}
	for i, v := range want {
		if polys[0][i] != v {
			t.Errorf("polygon[%d] = %v, want %v", i, polys[0][i], v)
		}
	}
}

func TestEdgeWeight(t *testing.T) {
	if got := EdgeWeight(1.3521, 103.8198, 1.3521, 103.8198); got != 1 {
		t.Errorf("EdgeWeight(same point) = %d, want 1", got)
	}

	// East-west at 60N: great-circle length is about half the planar bound.
	w := EdgeWeight(60, 10, 60, 10.01)
	if w < 1110 {
		t.Errorf("EdgeWeight = %d, want at least the planar bound 1110", w)
	}

	// North-south: great-circle length exceeds the planar bound.
	w = EdgeWeight(0, 0, 0.01, 0)
	if w < 1111 || w > 1113 {
		t.Errorf("EdgeWeight = %d, want ~1112", w)
	}
}

func TestParseTagList(t *testing.T) {
	got := ParseTagList(" landuse=military, aeroway ,,boundary = protected_area")
	want := osm.Tags{
		{Key: "landuse", Value: "military"},
		{Key: "aeroway", Value: ""},
		{Key: "boundary", Value: "protected_area"},
	}
	if len(got) != len(want) {
		t.Fatalf("ParseTagList = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tag %d = %v, want %v", i, got[i], want[i])
		}
	}
	if len(ParseTagList("")) != 0 {
		t.Error("ParseTagList(\"\") should be empty")
	}
}
