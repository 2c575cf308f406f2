package geo

import (
	"errors"
	"math"
	"testing"
)

func TestCoordinateValidate(t *testing.T) {
	tests := []struct {
		name    string
		c       Coordinate
		wantErr bool
	}{
		{"london", Coordinate{51.5074, -0.1278}, false},
		{"north pole", Coordinate{90, 0}, false},
		{"antimeridian", Coordinate{-33.9, 180}, false},
		{"latitude too high", Coordinate{90.5, 0}, true},
		{"latitude too low", Coordinate{-91, 0}, true},
		{"longitude too high", Coordinate{0, 181}, true},
		{"longitude too low", Coordinate{0, -180.01}, true},
		{"nan latitude", Coordinate{math.NaN(), 0}, true},
		{"nan longitude", Coordinate{0, math.NaN()}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCoordinate) {
					t.Fatalf("Validate(%v) = %v, want ErrInvalidCoordinate", tt.c, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate(%v) unexpected error: %v", tt.c, err)
			}
		})
	}
}

func TestCoordinateString(t *testing.T) {
	got := Coordinate{Latitude: 21.4225, Longitude: 39.8262}.String()
	if got != "21.4225, 39.8262" {
		t.Errorf("String() = %q", got)
	}
}

func TestCoordinateIsZero(t *testing.T) {
	if !(Coordinate{}).IsZero() {
		t.Error("zero coordinate should report IsZero")
	}
	if (Coordinate{Latitude: 1}).IsZero() {
		t.Error("non-zero coordinate should not report IsZero")
	}
}
