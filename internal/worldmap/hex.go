// Package worldmap provides the hex tile grid, cities, and the transport
// infrastructure (roads, railroads, harbors) that capital connectivity is
// computed over. Uses axial coordinates (q, r).
package worldmap

// HexCoord represents a position on the hex grid using axial coordinates.
// The third cube coordinate s is derived: s = -q - r.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

// HexNeighborDirections defines the six neighbor offsets in axial coordinates.
var HexNeighborDirections = [6]HexCoord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Neighbors returns the six adjacent hex coordinates.
func (h HexCoord) Neighbors() [6]HexCoord {
	var result [6]HexCoord
	for i, dir := range HexNeighborDirections {
		result[i] = HexCoord{Q: h.Q + dir.Q, R: h.R + dir.R}
	}
	return result
}

// Distance returns the hex distance between two coordinates.
func Distance(a, b HexCoord) int {
	dq := abs(a.Q - b.Q)
	dr := abs(a.R - b.R)
	ds := abs(a.S() - b.S())
	max := dq
	if dr > max {
		max = dr
	}
	if ds > max {
		max = ds
	}
	return max
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Terrain types for tiles. The diplomacy engine only distinguishes passable
// land, water, and impassable peaks; richer terrain lives in the ruleset.
type Terrain uint8

const (
	TerrainLand     Terrain = iota // Passable ground — can carry roads and rail
	TerrainWater                   // Ocean and coast — harbor routes only
	TerrainMountain                // Impassable for route purposes
)

