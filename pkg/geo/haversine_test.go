package geo

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name             string
		lat1, lon1       float64
		lat2, lon2       float64
		wantMeters       float64
		tolerancePercent float64
	}{
		{
			name: "Auckland CBD to Auckland Airport",
			lat1: -36.8485, lon1: 174.7633,
			lat2: -37.0082, lon2: 174.7850,
			wantMeters:       17_900,
			tolerancePercent: 1.5,
		},
		{
			name: "Same point",
			lat1: -36.8485, lon1: 174.7633,
			lat2: -36.8485, lon2: 174.7633,
			wantMeters:       0,
			tolerancePercent: 0,
		},
		{
			name: "London to Paris",
			lat1: 51.5074, lon1: -0.1278,
			lat2: 48.8566, lon2: 2.3522,
			wantMeters:       343_500,
			tolerancePercent: 1,
		},
		{
			name: "Short distance (~100m)",
			lat1: 1.3521, lon1: 103.8198,
			lat2: 1.3530, lon2: 103.8198,
			wantMeters:       100,
			tolerancePercent: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if tt.wantMeters == 0 {
				if got != 0 {
					t.Errorf("expected 0, got %f", got)
				}
				return
			}
			diff := math.Abs(got-tt.wantMeters) / tt.wantMeters * 100
			if diff > tt.tolerancePercent {
				t.Errorf("Haversine = %f m, want ~%f m (diff %.1f%%)", got, tt.wantMeters, diff)
			}
		})
	}
}

func TestEquirectangularDist(t *testing.T) {
	lat1, lon1 := -36.8485, 174.7633
	lat2, lon2 := -36.8600, 174.7800

	h := Haversine(lat1, lon1, lat2, lon2)
	e := EquirectangularDist(lat1, lon1, lat2, lon2)

	diffPercent := math.Abs(h-e) / h * 100
	if diffPercent > 0.5 {
		t.Errorf("EquirectangularDist differs from Haversine by %.2f%% (haversine=%f, equirect=%f)", diffPercent, h, e)
	}
}

func TestEquirectangularProjection(t *testing.T) {
	proj := Equirectangular(-36.85)
	a := orb.Point{174.7633, -36.8485}
	b := orb.Point{174.7800, -36.8600}

	planarDist := planar.Distance(proj(a), proj(b))
	want := EquirectangularDist(a[1], a[0], b[1], b[0])
	if math.Abs(planarDist-want)/want > 0.001 {
		t.Errorf("projected distance = %f, want ~%f", planarDist, want)
	}
}

func BenchmarkHaversine(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Haversine(-36.8485, 174.7633, -37.0082, 174.7850)
	}
}

func BenchmarkEquirectangularDist(b *testing.B) {
	for i := 0; i < b.N; i++ {
		EquirectangularDist(-36.8485, 174.7633, -37.0082, 174.7850)
	}
}
