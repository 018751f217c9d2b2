// Package geo implements the distance math behind the nearby-communities
// screen.
package geo

import (
	"math"
	"sort"

	"github.com/picnichood/picnic-cli/internal/api"
)

const earthRadiusKm = 6371

// Distance returns the great-circle distance in kilometers between two
// points (Haversine).
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// NearbyCommunity is a community annotated with its distance from the
// user.
type NearbyCommunity struct {
	api.Community
	DistanceKm float64
}

// Nearby keeps communities within radiusKm of (lat, lon), closest first.
func Nearby(communities []api.Community, lat, lon, radiusKm float64) []NearbyCommunity {
	nearby := make([]NearbyCommunity, 0, len(communities))
	for _, c := range communities {
		d := Distance(lat, lon, c.Location.Latitude(), c.Location.Longitude())
		if d <= radiusKm {
			nearby = append(nearby, NearbyCommunity{Community: c, DistanceKm: d})
		}
	}
	sort.Slice(nearby, func(i, j int) bool { return nearby[i].DistanceKm < nearby[j].DistanceKm })
	return nearby
}
