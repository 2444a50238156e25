package worldmap

import "testing"

func TestHexDistance(t *testing.T) {
	tests := []struct {
		a, b HexCoord
		want int
	}{
		{HexCoord{0, 0}, HexCoord{0, 0}, 0},
		{HexCoord{0, 0}, HexCoord{1, 0}, 1},
		{HexCoord{0, 0}, HexCoord{0, 1}, 1},
		{HexCoord{0, 0}, HexCoord{1, -1}, 1},
		{HexCoord{0, 0}, HexCoord{3, 0}, 3},
		{HexCoord{0, 0}, HexCoord{2, 2}, 4},
		{HexCoord{-2, 1}, HexCoord{3, -1}, 5},
	}
	for _, tt := range tests {
		if got := Distance(tt.a, tt.b); got != tt.want {
			t.Errorf("Distance(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
		if got := Distance(tt.b, tt.a); got != tt.want {
			t.Errorf("Distance(%v, %v) = %d, want %d (asymmetric)", tt.b, tt.a, got, tt.want)
		}
	}
}

func TestCubeCoordinateInvariant(t *testing.T) {
	coords := []HexCoord{{0, 0}, {3, -1}, {-5, 2}, {7, 7}}
	for _, c := range coords {
		if c.Q+c.R+c.S() != 0 {
			t.Errorf("coord %v: q+r+s = %d, want 0", c, c.Q+c.R+c.S())
		}
	}
}

func TestNeighborsAreAdjacent(t *testing.T) {
	center := HexCoord{2, -3}
	seen := make(map[HexCoord]bool)
	for _, n := range center.Neighbors() {
		if Distance(center, n) != 1 {
			t.Errorf("neighbor %v at distance %d", n, Distance(center, n))
		}
		if seen[n] {
			t.Errorf("duplicate neighbor %v", n)
		}
		seen[n] = true
	}
	if len(seen) != 6 {
		t.Errorf("got %d distinct neighbors, want 6", len(seen))
	}
}
