package worldmap

import "fmt"

// CityID is a unique identifier for a city.
type CityID uint64

// Improvement names the engine cares about. Other improvements pass through
// untouched as opaque strings.
const ImprovementBarbarianCamp = "Barbarian encampment"

// Tile is a single hex on the world map.
type Tile struct {
	Coord   HexCoord `json:"coord"`
	Terrain Terrain  `json:"terrain"`

	// Transport infrastructure.
	HasRoad     bool `json:"has_road,omitempty"`
	HasRailroad bool `json:"has_railroad,omitempty"`

	// Improvement on this tile, if any (barbarian camps live here).
	Improvement string `json:"improvement,omitempty"`

	// Natural wonder name, if this tile holds one.
	NaturalWonder string `json:"natural_wonder,omitempty"`

	// City whose center sits on this tile, if any.
	CityID *CityID `json:"city_id,omitempty"`
}

// IsWater reports whether the tile is a water tile.
func (t *Tile) IsWater() bool {
	return t.Terrain == TerrainWater
}

// IsCityCenter reports whether a city center sits on this tile.
func (t *Tile) IsCityCenter() bool {
	return t.CityID != nil
}

// City is a population center owned by a civilization. Civilizations are
// referenced by name only; the central registry resolves them.
type City struct {
	ID         CityID   `json:"id"`
	Name       string   `json:"name"`
	Owner      string   `json:"owner"` // owning civilization id
	Center     HexCoord `json:"center"`
	Population int      `json:"population"`
	HasHarbor  bool     `json:"has_harbor"`
	Capital    bool     `json:"capital"`
}

// Map holds the complete hex grid world state.
type Map struct {
	Tiles  map[HexCoord]*Tile `json:"-"` // All tiles keyed by coordinate
	Cities map[CityID]*City   `json:"-"` // All cities keyed by id
	Radius int                `json:"radius"`

	nextCityID CityID
}

// NewMap creates an empty map with the given radius.
// A hex grid of radius R contains tiles where max(|q|, |r|, |s|) <= R.
func NewMap(radius int) *Map {
	return &Map{
		Tiles:  make(map[HexCoord]*Tile),
		Cities: make(map[CityID]*City),
		Radius: radius,
	}
}

// Get returns the tile at the given coordinate, or nil if out of bounds.
func (m *Map) Get(coord HexCoord) *Tile {
	return m.Tiles[coord]
}

// Set places a tile at its coordinate.
func (m *Map) Set(tile *Tile) {
	m.Tiles[tile.Coord] = tile
}

// InBounds returns true if the coordinate is within the map radius.
func (m *Map) InBounds(coord HexCoord) bool {
	q, r, s := abs(coord.Q), abs(coord.R), abs(coord.S())
	max := q
	if r > max {
		max = r
	}
	if s > max {
		max = s
	}
	return max <= m.Radius
}

// FoundCity creates a city at the given coordinate and marks its center
// tile. The tile must exist.
func (m *Map) FoundCity(name, owner string, at HexCoord, capital bool) (*City, error) {
	tile := m.Get(at)
	if tile == nil {
		return nil, fmt.Errorf("found city %q: no tile at %v", name, at)
	}
	if tile.CityID != nil {
		return nil, fmt.Errorf("found city %q: tile %v already has a city", name, at)
	}

	m.nextCityID++
	city := &City{
		ID:         m.nextCityID,
		Name:       name,
		Owner:      owner,
		Center:     at,
		Population: 1,
		Capital:    capital,
	}
	m.Cities[city.ID] = city
	id := city.ID
	tile.CityID = &id
	return city, nil
}

// RestoreCity reinserts a previously saved city and keeps the id counter
// ahead of it, so future FoundCity calls never collide.
func (m *Map) RestoreCity(c *City) {
	m.Cities[c.ID] = c
	if tile := m.Get(c.Center); tile != nil {
		id := c.ID
		tile.CityID = &id
	}
	if c.ID > m.nextCityID {
		m.nextCityID = c.ID
	}
}

// City returns the city with the given id, or nil.
func (m *Map) City(id CityID) *City {
	return m.Cities[id]
}

// CityAt returns the city whose center is the given coordinate, or nil.
func (m *Map) CityAt(coord HexCoord) *City {
	tile := m.Get(coord)
	if tile == nil || tile.CityID == nil {
		return nil
	}
	return m.Cities[*tile.CityID]
}

// CitiesOf returns all cities owned by the given civilization id.
func (m *Map) CitiesOf(owner string) []*City {
	var out []*City
	for _, c := range m.Cities {
		if c.Owner == owner {
			out = append(out, c)
		}
	}
	return out
}

// CapitalOf returns the capital city of the given civilization, or nil.
func (m *Map) CapitalOf(owner string) *City {
	for _, c := range m.Cities {
		if c.Owner == owner && c.Capital {
			return c
		}
	}
	return nil
}

// TileCount returns the total number of tiles in the map.
func (m *Map) TileCount() int {
	return len(m.Tiles)
}

// String returns a summary of the map.
func (m *Map) String() string {
	return fmt.Sprintf("Map(radius=%d, tiles=%d, cities=%d)", m.Radius, len(m.Tiles), len(m.Cities))
}
