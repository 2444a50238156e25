// Package connectivity computes which cities are connected to a
// civilization's capital, and by which transport mediums. The result feeds
// the route quest and empire-wide trade bonuses.
package connectivity

import (
	"github.com/talgya/citystates/internal/worldmap"
)

// Medium is a transport method by which a city is reached from the capital.
type Medium uint8

const (
	Start    Medium = iota // the capital itself
	Road
	Railroad
	Harbor
)

var mediumNames = [...]string{"Start", "Road", "Railroad", "Harbor"}

func (m Medium) String() string {
	if int(m) < len(mediumNames) {
		return mediumNames[m]
	}
	return "Unknown"
}

// Set is the set of mediums a city was reached by.
type Set map[Medium]bool

// Result maps each reached city to its mediums. The capital always maps to
// {Start}; every other entry is reachable by at least one listed medium.
type Result map[worldmap.CityID]Set

// Connected reports whether the city is in the result at all.
func (r Result) Connected(id worldmap.CityID) bool {
	return len(r[id]) > 0
}

// TechAccess carries the researched-technology gates for land routes.
type TechAccess struct {
	Roads     bool // prerequisite tech for road connections
	Railroads bool // prerequisite tech for railroad connections
}

// Find runs the capital-connectivity search. cities is the full set of
// cities in the game (any owner — trade routes pass through foreign and
// city-state harbors alike). A nil capital yields an empty result.
func Find(m *worldmap.Map, capital *worldmap.City, cities []*worldmap.City, tech TechAccess) Result {
	result := make(Result)
	if capital == nil {
		return result
	}
	result[capital.ID] = Set{Start: true}

	frontier := []*worldmap.City{capital}

	for len(frontier) > 0 && len(result) < len(cities) {
		var next []*worldmap.City

		reach := func(city *worldmap.City, medium Medium) {
			if city.ID == capital.ID {
				return
			}
			set, known := result[city.ID]
			if !known {
				set = Set{}
				result[city.ID] = set
				next = append(next, city)
			}
			// Railroad overrides road: a rail-connected city is never
			// additionally tagged as road-connected.
			if medium == Road && set[Railroad] {
				return
			}
			set[medium] = true
		}

		for _, from := range frontier {
			if from.HasHarbor {
				for _, city := range citiesReachedBy(m, from, waterTraversable) {
					if city.HasHarbor {
						reach(city, Harbor)
					}
				}
			}
			if tech.Railroads {
				for _, city := range citiesReachedBy(m, from, railTraversable) {
					reach(city, Railroad)
				}
			}
			if tech.Roads {
				for _, city := range citiesReachedBy(m, from, roadTraversable) {
					reach(city, Road)
				}
			}
		}

		frontier = next
	}

	return result
}

func waterTraversable(t *worldmap.Tile) bool {
	return t.IsWater() || t.IsCityCenter()
}

func railTraversable(t *worldmap.Tile) bool {
	return t.HasRailroad || t.IsCityCenter()
}

func roadTraversable(t *worldmap.Tile) bool {
	return t.HasRoad || t.HasRailroad || t.IsCityCenter()
}

// citiesReachedBy runs one exhaustive breadth-first search from the city's
// center over tiles passing the predicate and returns every city whose
// center was visited. The search never exits early: the full reachability
// set is wanted, not the nearest hit.
func citiesReachedBy(m *worldmap.Map, from *worldmap.City, traversable func(*worldmap.Tile) bool) []*worldmap.City {
	start := m.Get(from.Center)
	if start == nil {
		return nil
	}

	visited := map[worldmap.HexCoord]bool{from.Center: true}
	queue := []*worldmap.Tile{start}
	var found []*worldmap.City

	for len(queue) > 0 {
		tile := queue[0]
		queue = queue[1:]

		if tile.CityID != nil {
			if city := m.City(*tile.CityID); city != nil && city.ID != from.ID {
				found = append(found, city)
			}
		}

		for _, nc := range tile.Coord.Neighbors() {
			if visited[nc] {
				continue
			}
			neighbor := m.Get(nc)
			if neighbor == nil || !traversable(neighbor) {
				continue
			}
			visited[nc] = true
			queue = append(queue, neighbor)
		}
	}

	return found
}
