// Package qibla computes the direction and distance from a point to the Kaaba.
package qibla

import (
	"math"

	"github.com/halalcities/halalcities/internal/angle"
	"github.com/halalcities/halalcities/internal/geo"
)

// Kaaba is the fixed position of the Kaaba in Makkah.
var Kaaba = geo.Coordinate{Latitude: 21.4225, Longitude: 39.8262}

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// Result is the great-circle direction to the Kaaba.
type Result struct {
	// BearingDegrees is the initial bearing clockwise from true north, in [0, 360).
	BearingDegrees float64 `json:"bearing_degrees"`
	DistanceKm     float64 `json:"distance_km"`
}

// Compute returns the initial great-circle bearing and haversine distance
// from coord to the Kaaba. coord is assumed valid.
func Compute(coord geo.Coordinate) Result {
	lat1, lat2 := coord.Latitude, Kaaba.Latitude
	dLon := Kaaba.Longitude - coord.Longitude

	y := angle.SinD(dLon) * angle.CosD(lat2)
	x := angle.CosD(lat1)*angle.SinD(lat2) - angle.SinD(lat1)*angle.CosD(lat2)*angle.CosD(dLon)
	bearing := angle.Normalize360(angle.Atan2D(y, x))

	return Result{
		BearingDegrees: bearing,
		DistanceKm:     haversine(coord, Kaaba),
	}
}

func haversine(a, b geo.Coordinate) float64 {
	dLat := angle.Deg2Rad(b.Latitude - a.Latitude)
	dLon := angle.Deg2Rad(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		angle.CosD(a.Latitude)*angle.CosD(b.Latitude)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

var compassPoints = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// Compass returns the 16-point compass label nearest the bearing.
func (r Result) Compass() string {
	i := int(math.Round(angle.Normalize360(r.BearingDegrees)/22.5)) % 16
	return compassPoints[i]
}
