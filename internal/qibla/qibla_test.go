package qibla

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/halalcities/halalcities/internal/geo"
)

func TestCompute_KnownCities(t *testing.T) {
	tests := []struct {
		name         string
		coord        geo.Coordinate
		wantBearing  float64
		wantDistance float64
	}{
		{"London", geo.Coordinate{Latitude: 51.5074, Longitude: -0.1278}, 119.0, 4790},
		{"New York", geo.Coordinate{Latitude: 40.7128, Longitude: -74.0060}, 58.5, 10300},
		{"Jakarta", geo.Coordinate{Latitude: -6.2088, Longitude: 106.8456}, 295.1, 7920},
		{"Cairo", geo.Coordinate{Latitude: 30.0444, Longitude: 31.2357}, 136.1, 1280},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.coord)
			assert.InDelta(t, tt.wantBearing, got.BearingDegrees, 2, "bearing")
			assert.InDelta(t, tt.wantDistance, got.DistanceKm, 100, "distance")
		})
	}
}

func TestCompute_AtKaaba(t *testing.T) {
	got := Compute(Kaaba)
	assert.InDelta(t, 0, got.DistanceKm, 1e-6)
	assert.GreaterOrEqual(t, got.BearingDegrees, 0.0)
	assert.Less(t, got.BearingDegrees, 360.0)
}

func TestCompute_BearingRange(t *testing.T) {
	for lat := -89.0; lat <= 89; lat += 17 {
		for lon := -180.0; lon <= 180; lon += 23 {
			got := Compute(geo.Coordinate{Latitude: lat, Longitude: lon})
			if got.BearingDegrees < 0 || got.BearingDegrees >= 360 || math.IsNaN(got.BearingDegrees) {
				t.Errorf("(%v, %v): bearing %v out of [0,360)", lat, lon, got.BearingDegrees)
			}
			if got.DistanceKm < 0 || got.DistanceKm > math.Pi*EarthRadiusKm+1 {
				t.Errorf("(%v, %v): distance %v out of range", lat, lon, got.DistanceKm)
			}
		}
	}
}

func TestCompute_Idempotent(t *testing.T) {
	c := geo.Coordinate{Latitude: 33.5731, Longitude: -7.5898}
	assert.Equal(t, Compute(c), Compute(c))
}

func TestResult_Compass(t *testing.T) {
	tests := []struct {
		bearing float64
		want    string
	}{
		{0, "N"},
		{11, "N"},
		{12, "NNE"},
		{58.5, "ENE"},
		{119, "ESE"},
		{180, "S"},
		{295, "WNW"},
		{359, "N"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Result{BearingDegrees: tt.bearing}.Compass(), "bearing %v", tt.bearing)
	}
}
