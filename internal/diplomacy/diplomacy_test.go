package diplomacy

import (
	"testing"

	"github.com/talgya/citystates/internal/civ"
	"github.com/talgya/citystates/internal/worldmap"
)

// fixture is the shared test world: a flat map with one capital per civ,
// everyone already in contact.
type fixture struct {
	reg *civ.Registry
	led *Ledger
	m   *worldmap.Map
}

func newFixture(t *testing.T, mapRadius int) *fixture {
	t.Helper()
	m := worldmap.NewMap(mapRadius)
	for q := -mapRadius; q <= mapRadius; q++ {
		for r := -mapRadius; r <= mapRadius; r++ {
			coord := worldmap.HexCoord{Q: q, R: r}
			if m.InBounds(coord) {
				m.Set(&worldmap.Tile{Coord: coord, Terrain: worldmap.TerrainLand})
			}
		}
	}
	return &fixture{reg: civ.NewRegistry(), led: NewLedger(), m: m}
}

func (f *fixture) addMajor(t *testing.T, id string, at worldmap.HexCoord) *civ.Civilization {
	t.Helper()
	c := &civ.Civilization{ID: civ.ID(id), Name: id}
	f.addAt(t, c, at)
	return c
}

func (f *fixture) addCityState(t *testing.T, id string, at worldmap.HexCoord) *civ.Civilization {
	t.Helper()
	c := &civ.Civilization{ID: civ.ID(id), Name: id, CityState: true}
	f.addAt(t, c, at)
	return c
}

func (f *fixture) addAt(t *testing.T, c *civ.Civilization, at worldmap.HexCoord) {
	t.Helper()
	for _, other := range f.reg.All() {
		f.led.Contact(c.ID, other.ID)
	}
	f.reg.Add(c)
	if _, err := f.m.FoundCity(c.Name, string(c.ID), at, true); err != nil {
		t.Fatalf("found capital for %s: %v", c.ID, err)
	}
}

func (f *fixture) setInfluence(t *testing.T, cs, major civ.ID, influence float64) {
	t.Helper()
	rel := f.led.Rel(cs, major)
	if rel == nil {
		t.Fatalf("no relationship %s -> %s", cs, major)
	}
	rel.Influence = influence
}
