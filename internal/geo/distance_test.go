package geo

import (
	"math"
	"testing"
)

func TestDistance3D_Zero(t *testing.T) {
	if d := Distance3D(1, 2, 3, 1, 2, 3); d != 0 {
		t.Fatalf("zero distance expected, got %v", d)
	}
}

func TestDistance3D_Orthogonal(t *testing.T) {
	d := Distance3D(0, 0, 0, 3, 4, 0)
	if math.Abs(d-5) > 1e-9 {
		t.Fatalf("expected 5, got %v", d)
	}
}

func TestHaversineMeters_ZeroDistance(t *testing.T) {
	d := HaversineMeters(10, 20, 10, 20)
	if d < 0 || d > 1e-6 {
		t.Fatalf("zero distance expected ~0, got %v", d)
	}
}

func TestENUFromGeodetic_RoundTrip(t *testing.T) {
	anchor := Anchor{LatDeg: 37.7749, LngDeg: -122.4194}
	x, y, z := ENUFromGeodetic(anchor, 37.7760, -122.4180, 50)
	lat, lng, alt := GeodeticFromENU(anchor, x, y, z)
	if math.Abs(lat-37.7760) > 1e-6 || math.Abs(lng-(-122.4180)) > 1e-6 || alt != 50 {
		t.Fatalf("round trip mismatch: lat=%v lng=%v alt=%v", lat, lng, alt)
	}
}

func TestENUFromGeodetic_AnchorIsOrigin(t *testing.T) {
	anchor := Anchor{LatDeg: 10, LngDeg: 20}
	x, y, z := ENUFromGeodetic(anchor, 10, 20, 0)
	if x != 0 || y != 0 || z != 0 {
		t.Fatalf("anchor should project to origin, got (%v,%v,%v)", x, y, z)
	}
}
