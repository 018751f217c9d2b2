package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picnichood/picnic-cli/internal/api"
)

func point(lon, lat float64) api.Location {
	return api.Location{Type: "Point", Coordinates: []float64{lon, lat}}
}

func TestDistance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		lat1, lon1 float64
		lat2, lon2 float64
		wantKm     float64
		delta      float64
	}{
		{name: "same point", lat1: 52.52, lon1: 13.405, lat2: 52.52, lon2: 13.405, wantKm: 0, delta: 1e-9},
		{name: "berlin to hamburg", lat1: 52.52, lon1: 13.405, lat2: 53.5511, lon2: 9.9937, wantKm: 255, delta: 5},
		{name: "one degree of latitude", lat1: 0, lon1: 0, lat2: 1, lon2: 0, wantKm: 111.2, delta: 0.5},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Distance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.wantKm, got, tt.delta)
		})
	}
}

func TestNearby_FiltersAndSorts(t *testing.T) {
	t.Parallel()

	// User at Berlin Alexanderplatz; offsets of ~0.005 deg lat are ~550m.
	userLat, userLon := 52.5219, 13.4132
	communities := []api.Community{
		{ID: "far", Name: "Far away", Location: point(13.5, 53.0)},
		{ID: "near", Name: "Round the corner", Location: point(13.4132, 52.5239)},
		{ID: "nearest", Name: "Next door", Location: point(13.4132, 52.5221)},
		{ID: "edge", Name: "Just outside", Location: point(13.4132, 52.5350)},
	}

	nearby := Nearby(communities, userLat, userLon, 1.0)
	require.Len(t, nearby, 2)
	assert.Equal(t, "nearest", nearby[0].ID)
	assert.Equal(t, "near", nearby[1].ID)
	assert.Less(t, nearby[0].DistanceKm, nearby[1].DistanceKm)
	for _, c := range nearby {
		assert.LessOrEqual(t, c.DistanceKm, 1.0)
	}
}

func TestNearby_MissingCoordinates(t *testing.T) {
	t.Parallel()

	// A record without coordinates resolves to (0, 0) and falls outside
	// any realistic 1km radius instead of crashing the view.
	communities := []api.Community{{ID: "broken", Location: api.Location{Type: "Point"}}}
	nearby := Nearby(communities, 52.52, 13.405, 1.0)
	assert.Empty(t, nearby)
}
