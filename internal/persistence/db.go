// Package persistence provides SQLite-based game state storage.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/citystates/internal/civ"
	"github.com/talgya/citystates/internal/diplomacy"
	"github.com/talgya/citystates/internal/engine"
	"github.com/talgya/citystates/internal/quest"
	"github.com/talgya/citystates/internal/worldmap"
)

// DB wraps a SQLite connection for game state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS civs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		city_state INTEGER NOT NULL,
		defeated INTEGER NOT NULL,
		gold INTEGER NOT NULL,
		state_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS relationships (
		from_id TEXT NOT NULL,
		to_id TEXT NOT NULL,
		influence REAL NOT NULL,
		status INTEGER NOT NULL,
		state_json TEXT NOT NULL,
		PRIMARY KEY (from_id, to_id)
	);

	CREATE TABLE IF NOT EXISTS quest_managers (
		city_state TEXT PRIMARY KEY,
		state_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tiles (
		q INTEGER NOT NULL,
		r INTEGER NOT NULL,
		terrain INTEGER NOT NULL,
		has_road INTEGER NOT NULL,
		has_railroad INTEGER NOT NULL,
		improvement TEXT NOT NULL,
		natural_wonder TEXT NOT NULL,
		PRIMARY KEY (q, r)
	);

	CREATE TABLE IF NOT EXISTS cities (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		owner TEXT NOT NULL,
		q INTEGER NOT NULL,
		r INTEGER NOT NULL,
		population INTEGER NOT NULL,
		has_harbor INTEGER NOT NULL,
		capital INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		turn INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS game_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_turn ON events(turn);
	CREATE INDEX IF NOT EXISTS idx_cities_owner ON cities(owner);
	`
	_, err := db.conn.Exec(schema)
	return err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// SaveCivs writes all civilizations to the database (full replace).
func (db *DB) SaveCivs(civs []*civ.Civilization) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM civs"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO civs
		(id, name, city_state, defeated, gold, state_json)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range civs {
		state, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshal civ %s: %w", c.ID, err)
		}
		if _, err := stmt.Exec(string(c.ID), c.Name, boolInt(c.CityState), boolInt(c.Defeated), c.Gold, string(state)); err != nil {
			return fmt.Errorf("insert civ %s: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

// SaveRelationships writes the full diplomacy ledger (full replace).
func (db *DB) SaveRelationships(led *diplomacy.Ledger) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM relationships"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO relationships
		(from_id, to_id, influence, status, state_json)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rel := range led.All() {
		state, err := json.Marshal(rel)
		if err != nil {
			return fmt.Errorf("marshal rel %s->%s: %w", rel.From, rel.To, err)
		}
		if _, err := stmt.Exec(string(rel.From), string(rel.To), rel.Influence, int(rel.Status), string(state)); err != nil {
			return fmt.Errorf("insert rel %s->%s: %w", rel.From, rel.To, err)
		}
	}

	return tx.Commit()
}

// SaveQuestManagers writes every city-state's quest state (full replace).
func (db *DB) SaveQuestManagers(managers map[civ.ID]*quest.Manager) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM quest_managers"); err != nil {
		return err
	}

	for id, mgr := range managers {
		state, err := json.Marshal(mgr)
		if err != nil {
			return fmt.Errorf("marshal quests %s: %w", id, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO quest_managers (city_state, state_json) VALUES (?, ?)",
			string(id), string(state),
		); err != nil {
			return fmt.Errorf("insert quests %s: %w", id, err)
		}
	}

	return tx.Commit()
}

// SaveMap writes all tiles and cities (full replace).
func (db *DB) SaveMap(m *worldmap.Map) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM tiles"); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM cities"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO tiles
		(q, r, terrain, has_road, has_railroad, improvement, natural_wonder)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range m.Tiles {
		if _, err := stmt.Exec(
			t.Coord.Q, t.Coord.R, int(t.Terrain),
			boolInt(t.HasRoad), boolInt(t.HasRailroad),
			t.Improvement, t.NaturalWonder,
		); err != nil {
			return fmt.Errorf("insert tile %v: %w", t.Coord, err)
		}
	}

	for _, c := range m.Cities {
		if _, err := tx.Exec(`INSERT INTO cities
			(id, name, owner, q, r, population, has_harbor, capital)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			uint64(c.ID), c.Name, c.Owner, c.Center.Q, c.Center.R,
			c.Population, boolInt(c.HasHarbor), boolInt(c.Capital),
		); err != nil {
			return fmt.Errorf("insert city %d: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

// SaveEvents appends events to the database.
func (db *DB) SaveEvents(events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		if _, err := tx.Exec(
			"INSERT INTO events (turn, description, category) VALUES (?, ?, ?)",
			e.Turn, e.Description, e.Category,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SaveMeta stores a key-value pair in game metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO game_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM game_meta WHERE key = ?", key)
	return value, err
}

// SaveGameState performs a full save of the simulation.
func (db *DB) SaveGameState(sim *engine.Simulation) error {
	slog.Info("saving game state", "turn", sim.Turn, "civs", sim.Reg.Count())

	if err := db.SaveCivs(sim.Reg.All()); err != nil {
		return fmt.Errorf("save civs: %w", err)
	}
	if err := db.SaveRelationships(sim.Led); err != nil {
		return fmt.Errorf("save relationships: %w", err)
	}
	if err := db.SaveQuestManagers(sim.Quests); err != nil {
		return fmt.Errorf("save quests: %w", err)
	}
	if err := db.SaveMap(sim.Map); err != nil {
		return fmt.Errorf("save map: %w", err)
	}
	if err := db.SaveEvents(sim.Events); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	if err := db.SaveMeta("turn", fmt.Sprintf("%d", sim.Turn)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	if err := db.SaveMeta("speed", sim.Speed.Name); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	if err := db.SaveMeta("map_radius", fmt.Sprintf("%d", sim.Map.Radius)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	slog.Info("game state saved")
	return nil
}

// RecentEvents returns the most recent N events.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT turn, description, category FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return events, err
}
