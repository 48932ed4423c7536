package geospatial

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"uia-atlas/atlas-portal/pkg/catalog"
)

// Point converts a catalog location to an orb point (lng, lat).
func Point(loc catalog.Location) orb.Point {
	return orb.Point{loc.Lng, loc.Lat}
}

// FromPoint converts back to a catalog location.
func FromPoint(p orb.Point) catalog.Location {
	return catalog.Location{Lat: p.Lat(), Lng: p.Lon()}
}

// Viewport is the map framing for a set of markers.
type Viewport struct {
	SouthWest catalog.Location `json:"southWest"`
	NorthEast catalog.Location `json:"northEast"`
	Center    catalog.Location `json:"center"`
}

// Frame computes a viewport covering every marker. It returns false when
// there is nothing to frame.
func Frame(markers []catalog.MapMarker) (Viewport, bool) {
	if len(markers) == 0 {
		return Viewport{}, false
	}
	mp := make(orb.MultiPoint, 0, len(markers))
	for _, m := range markers {
		mp = append(mp, Point(m.Location))
	}
	bound := mp.Bound()
	return Viewport{
		SouthWest: FromPoint(bound.Min),
		NorthEast: FromPoint(bound.Max),
		Center:    FromPoint(bound.Center()),
	}, true
}

// DistanceKm returns the great-circle distance between two locations.
func DistanceKm(a, b catalog.Location) float64 {
	return geo.Distance(Point(a), Point(b)) / 1000
}

// Within returns the markers no further than radiusKm from center, nearest first.
func Within(markers []catalog.MapMarker, center catalog.Location, radiusKm float64) []catalog.MapMarker {
	type hit struct {
		marker catalog.MapMarker
		dist   float64
	}
	var hits []hit
	for _, m := range markers {
		if d := DistanceKm(center, m.Location); d <= radiusKm {
			hits = append(hits, hit{m, d})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })

	out := make([]catalog.MapMarker, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.marker)
	}
	return out
}
