package geospatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uia-atlas/atlas-portal/pkg/catalog"
)

func marker(id string, lat, lng float64) catalog.MapMarker {
	return catalog.MapMarker{ID: id, Location: catalog.Location{Lat: lat, Lng: lng}}
}

func TestFrame(t *testing.T) {
	_, ok := Frame(nil)
	assert.False(t, ok)

	vp, ok := Frame([]catalog.MapMarker{
		marker("lisbon", 38.72, -9.14),
		marker("athens", 37.98, 23.73),
		marker("oslo", 59.91, 10.75),
	})
	require.True(t, ok)
	assert.InDelta(t, 37.98, vp.SouthWest.Lat, 1e-9)
	assert.InDelta(t, -9.14, vp.SouthWest.Lng, 1e-9)
	assert.InDelta(t, 59.91, vp.NorthEast.Lat, 1e-9)
	assert.InDelta(t, 23.73, vp.NorthEast.Lng, 1e-9)
	assert.InDelta(t, (37.98+59.91)/2, vp.Center.Lat, 1e-9)
}

func TestWithin(t *testing.T) {
	paris := catalog.Location{Lat: 48.8566, Lng: 2.3522}
	markers := []catalog.MapMarker{
		marker("london", 51.5074, -0.1278),
		marker("versailles", 48.8049, 2.1204),
		marker("tokyo", 35.6762, 139.6503),
	}

	near := Within(markers, paris, 400)
	require.Len(t, near, 2)
	assert.Equal(t, "versailles", near[0].ID)
	assert.Equal(t, "london", near[1].ID)

	assert.InDelta(t, 344, DistanceKm(paris, markers[0].Location), 10)
}
