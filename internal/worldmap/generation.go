// Demo world generation using layered simplex noise. Produces the
// land/water/mountain split the route engine runs over; cities, roads, and
// camps are placed afterwards by the caller.

package worldmap

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds world generation parameters.
type GenConfig struct {
	Radius      int     // Hex grid radius
	Seed        int64   // Noise seed
	SeaLevel    float64 // Elevation threshold for water (0.0–1.0)
	MountainLvl float64 // Elevation threshold for mountains (0.0–1.0)
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Radius:      20,
		Seed:        42,
		SeaLevel:    0.30,
		MountainLvl: 0.80,
	}
}

// SmallTestConfig returns a tiny world for rapid iteration and tests.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Radius:      6,
		Seed:        42,
		SeaLevel:    0.25,
		MountainLvl: 0.85,
	}
}

// Generate creates a complete world map with terrain derived from elevation
// noise. Deterministic for a given seed.
func Generate(cfg GenConfig) *Map {
	elevNoise := opensimplex.NewNormalized(cfg.Seed)

	m := NewMap(cfg.Radius)

	for q := -cfg.Radius; q <= cfg.Radius; q++ {
		for r := -cfg.Radius; r <= cfg.Radius; r++ {
			coord := HexCoord{Q: q, R: r}
			if !m.InBounds(coord) {
				continue
			}

			// Hex axial → cartesian for noise sampling.
			x := float64(q) + float64(r)*0.5
			y := float64(r) * math.Sqrt(3.0) / 2.0

			elev := octaveNoise(elevNoise, x*0.08, y*0.08, 4, 1.0, 0.5)

			terrain := TerrainLand
			switch {
			case elev < cfg.SeaLevel:
				terrain = TerrainWater
			case elev > cfg.MountainLvl:
				terrain = TerrainMountain
			}

			m.Set(&Tile{Coord: coord, Terrain: terrain})
		}
	}

	return m
}

// octaveNoise sums multiple noise layers for natural-looking variation.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxValue := 0.0
	freq := frequency

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*freq, y*freq) * amplitude
		maxValue += amplitude
		amplitude *= persistence
		freq *= 2
	}

	if maxValue == 0 {
		return 0
	}
	return total / maxValue
}

// LayRoad marks a road along a straight hex line between two coordinates,
// skipping water and mountains. Used by demo setup; real games inherit
// infrastructure from the map loader.
func (m *Map) LayRoad(from, to HexCoord, rail bool) {
	for _, coord := range hexLine(from, to) {
		tile := m.Get(coord)
		if tile == nil || tile.Terrain != TerrainLand {
			continue
		}
		if rail {
			tile.HasRailroad = true
		} else {
			tile.HasRoad = true
		}
	}
}

// hexLine returns the coordinates on a straight line between two hexes,
// endpoints included.
func hexLine(a, b HexCoord) []HexCoord {
	n := Distance(a, b)
	if n == 0 {
		return []HexCoord{a}
	}

	line := make([]HexCoord, 0, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		q := float64(a.Q) + (float64(b.Q)-float64(a.Q))*t
		r := float64(a.R) + (float64(b.R)-float64(a.R))*t
		line = append(line, roundHex(q, r))
	}
	return line
}

// roundHex rounds fractional axial coordinates to the nearest hex.
func roundHex(qf, rf float64) HexCoord {
	sf := -qf - rf
	q := math.Round(qf)
	r := math.Round(rf)
	s := math.Round(sf)

	dq := math.Abs(q - qf)
	dr := math.Abs(r - rf)
	ds := math.Abs(s - sf)

	if dq > dr && dq > ds {
		q = -r - s
	} else if dr > ds {
		r = -q - s
	}
	return HexCoord{Q: int(q), R: int(r)}
}
