package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/talgya/citystates/internal/civ"
	"github.com/talgya/citystates/internal/diplomacy"
	"github.com/talgya/citystates/internal/engine"
	"github.com/talgya/citystates/internal/entropy"
	"github.com/talgya/citystates/internal/quest"
	"github.com/talgya/citystates/internal/ruleset"
	"github.com/talgya/citystates/internal/worldmap"
)

// LoadCivs reads every saved civilization.
func (db *DB) LoadCivs() ([]*civ.Civilization, error) {
	var blobs []string
	if err := db.conn.Select(&blobs, "SELECT state_json FROM civs ORDER BY id"); err != nil {
		return nil, err
	}

	civs := make([]*civ.Civilization, 0, len(blobs))
	for _, blob := range blobs {
		c := &civ.Civilization{}
		if err := json.Unmarshal([]byte(blob), c); err != nil {
			return nil, fmt.Errorf("unmarshal civ: %w", err)
		}
		civs = append(civs, c)
	}
	return civs, nil
}

// LoadRelationships rebuilds the diplomacy ledger.
func (db *DB) LoadRelationships() (*diplomacy.Ledger, error) {
	var blobs []string
	if err := db.conn.Select(&blobs, "SELECT state_json FROM relationships ORDER BY from_id, to_id"); err != nil {
		return nil, err
	}

	led := diplomacy.NewLedger()
	for _, blob := range blobs {
		rel := &diplomacy.Relationship{}
		if err := json.Unmarshal([]byte(blob), rel); err != nil {
			return nil, fmt.Errorf("unmarshal relationship: %w", err)
		}
		led.Restore(rel)
	}
	return led, nil
}

// LoadQuestManagers reads every city-state's quest state.
func (db *DB) LoadQuestManagers() (map[civ.ID]*quest.Manager, error) {
	var blobs []string
	if err := db.conn.Select(&blobs, "SELECT state_json FROM quest_managers ORDER BY city_state"); err != nil {
		return nil, err
	}

	managers := make(map[civ.ID]*quest.Manager, len(blobs))
	for _, blob := range blobs {
		mgr := &quest.Manager{}
		if err := json.Unmarshal([]byte(blob), mgr); err != nil {
			return nil, fmt.Errorf("unmarshal quest manager: %w", err)
		}
		if mgr.IndividualCountdowns == nil {
			mgr.IndividualCountdowns = make(map[civ.ID]int)
		}
		if mgr.WarTrackers == nil {
			mgr.WarTrackers = make(map[civ.ID]*quest.WarTracker)
		}
		managers[mgr.CityState] = mgr
	}
	return managers, nil
}

// LoadMap rebuilds the world map from saved tiles and cities.
func (db *DB) LoadMap() (*worldmap.Map, error) {
	radiusStr, err := db.GetMeta("map_radius")
	if err != nil {
		return nil, fmt.Errorf("map radius: %w", err)
	}
	radius, err := strconv.Atoi(radiusStr)
	if err != nil {
		return nil, fmt.Errorf("map radius: %w", err)
	}

	m := worldmap.NewMap(radius)

	rows, err := db.conn.Queryx("SELECT q, r, terrain, has_road, has_railroad, improvement, natural_wonder FROM tiles")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var q, r, terrain, road, rail int
		var improvement, wonder string
		if err := rows.Scan(&q, &r, &terrain, &road, &rail, &improvement, &wonder); err != nil {
			return nil, fmt.Errorf("scan tile: %w", err)
		}
		m.Set(&worldmap.Tile{
			Coord:         worldmap.HexCoord{Q: q, R: r},
			Terrain:       worldmap.Terrain(terrain),
			HasRoad:       road != 0,
			HasRailroad:   rail != 0,
			Improvement:   improvement,
			NaturalWonder: wonder,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	cityRows, err := db.conn.Queryx("SELECT id, name, owner, q, r, population, has_harbor, capital FROM cities")
	if err != nil {
		return nil, err
	}
	defer cityRows.Close()
	for cityRows.Next() {
		var id uint64
		var name, owner string
		var q, r, pop, harbor, capital int
		if err := cityRows.Scan(&id, &name, &owner, &q, &r, &pop, &harbor, &capital); err != nil {
			return nil, fmt.Errorf("scan city: %w", err)
		}
		m.RestoreCity(&worldmap.City{
			ID:         worldmap.CityID(id),
			Name:       name,
			Owner:      owner,
			Center:     worldmap.HexCoord{Q: q, R: r},
			Population: pop,
			HasHarbor:  harbor != 0,
			Capital:    capital != 0,
		})
	}
	return m, cityRows.Err()
}

// LoadGameState rebuilds a full simulation from the database. The entropy
// source is supplied by the caller; the RNG stream is not part of a save.
func (db *DB) LoadGameState(rng *entropy.Source) (*engine.Simulation, error) {
	civs, err := db.LoadCivs()
	if err != nil {
		return nil, fmt.Errorf("load civs: %w", err)
	}
	reg := civ.NewRegistry()
	for _, c := range civs {
		reg.Add(c)
	}

	led, err := db.LoadRelationships()
	if err != nil {
		return nil, fmt.Errorf("load relationships: %w", err)
	}

	m, err := db.LoadMap()
	if err != nil {
		return nil, fmt.Errorf("load map: %w", err)
	}

	managers, err := db.LoadQuestManagers()
	if err != nil {
		return nil, fmt.Errorf("load quests: %w", err)
	}

	speedName, err := db.GetMeta("speed")
	if err != nil {
		return nil, fmt.Errorf("load speed: %w", err)
	}
	turnStr, err := db.GetMeta("turn")
	if err != nil {
		return nil, fmt.Errorf("load turn: %w", err)
	}
	turn, err := strconv.Atoi(turnStr)
	if err != nil {
		return nil, fmt.Errorf("load turn: %w", err)
	}

	sim := engine.NewSimulation(reg, led, m, ruleset.SpeedByName(speedName), rng)
	sim.Turn = turn
	for id, mgr := range managers {
		sim.Quests[id] = mgr
	}

	slog.Info("game state loaded", "turn", turn, "civs", reg.Count())
	return sim, nil
}
