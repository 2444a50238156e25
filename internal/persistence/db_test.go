package persistence

import (
	"path/filepath"
	"testing"

	"github.com/talgya/citystates/internal/civ"
	"github.com/talgya/citystates/internal/diplomacy"
	"github.com/talgya/citystates/internal/engine"
	"github.com/talgya/citystates/internal/entropy"
	"github.com/talgya/citystates/internal/quest"
	"github.com/talgya/citystates/internal/ruleset"
	"github.com/talgya/citystates/internal/worldmap"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "game.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// sampleSim builds a small world with enough varied state to exercise every
// table: flags, modifiers, an assigned quest, a war tracker, roads and an
// encampment on the map.
func sampleSim(t *testing.T) *engine.Simulation {
	t.Helper()
	const radius = 6
	m := worldmap.NewMap(radius)
	for q := -radius; q <= radius; q++ {
		for r := -radius; r <= radius; r++ {
			coord := worldmap.HexCoord{Q: q, R: r}
			if m.InBounds(coord) {
				m.Set(&worldmap.Tile{Coord: coord, Terrain: worldmap.TerrainLand})
			}
		}
	}
	m.Get(worldmap.HexCoord{Q: 0, R: 3}).Improvement = worldmap.ImprovementBarbarianCamp
	m.LayRoad(worldmap.HexCoord{Q: -4, R: 0}, worldmap.HexCoord{Q: 4, R: 0}, false)

	reg := civ.NewRegistry()
	led := diplomacy.NewLedger()

	rome := &civ.Civilization{
		ID: "rome", Name: "Rome", Gold: 420,
		Techs: map[string]bool{ruleset.TechForRoads: true},
		Units: []civ.Unit{{Name: "Swordsman", Force: 30, Military: true, Pos: worldmap.HexCoord{Q: -4, R: 0}}},
	}
	rome.SetFlag("ceasefire", 7)
	cs := &civ.Civilization{ID: "geneva", Name: "Geneva", CityState: true, Type: civ.Maritime, Personality: civ.Neutral}
	reg.Add(rome)
	reg.Add(cs)
	led.Contact(rome.ID, cs.ID)

	if _, err := m.FoundCity("Rome", "rome", worldmap.HexCoord{Q: -4, R: 0}, true); err != nil {
		t.Fatalf("found city: %v", err)
	}
	if _, err := m.FoundCity("Geneva", "geneva", worldmap.HexCoord{Q: 4, R: 0}, true); err != nil {
		t.Fatalf("found city: %v", err)
	}

	rel := led.Rel(cs.ID, rome.ID)
	rel.Influence = 35.5
	rel.SetFlag(diplomacy.FlagBullied, 12)
	rel.Wary = true
	led.Rel(rome.ID, cs.ID).Modifiers = map[diplomacy.Modifier]float64{
		diplomacy.ModBulliedProtectedMinor: ruleset.PenaltyBulliedProtected,
	}

	sim := engine.NewSimulation(reg, led, m, ruleset.SpeedEpic, entropy.NewSource(3))
	sim.Turn = 87

	mgr := sim.Quests[cs.ID]
	mgr.GlobalCountdown = 14
	mgr.IndividualCountdowns[rome.ID] = 5
	mgr.Assigned = append(mgr.Assigned, &quest.Assigned{
		Name:       ruleset.QuestConnectResource,
		Assigner:   cs.ID,
		Assignee:   rome.ID,
		AssignedOn: 80,
		Data1:      "Iron",
	})
	mgr.WarTrackers["carthage"] = &quest.WarTracker{
		Attacker:    "carthage",
		TargetKills: 4,
		Kills:       map[civ.ID]int{"rome": 2},
	}

	sim.Events = append(sim.Events, engine.Event{Turn: 87, Description: "Rome gifted 100 gold to Geneva", Category: "diplomacy"})
	return sim
}

func TestSaveLoadRoundTrip(t *testing.T) {
	db := openTestDB(t)
	saved := sampleSim(t)

	if err := db.SaveGameState(saved); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := db.LoadGameState(entropy.NewSource(3))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if loaded.Turn != saved.Turn {
		t.Errorf("turn = %d, want %d", loaded.Turn, saved.Turn)
	}
	if loaded.Speed.Name != "Epic" {
		t.Errorf("speed = %s, want Epic", loaded.Speed.Name)
	}

	rome := loaded.Reg.Get("rome")
	if rome == nil {
		t.Fatal("rome not loaded")
	}
	if rome.Gold != 420 || !rome.HasTech(ruleset.TechForRoads) || rome.GetFlag("ceasefire") != 7 {
		t.Errorf("rome state not preserved: %+v", rome)
	}
	if len(rome.Units) != 1 || rome.Units[0].Name != "Swordsman" {
		t.Errorf("rome units not preserved: %+v", rome.Units)
	}
	cs := loaded.Reg.Get("geneva")
	if cs == nil || !cs.CityState || cs.Type != civ.Maritime || cs.Personality != civ.Neutral {
		t.Errorf("city-state traits not preserved: %+v", cs)
	}

	rel := loaded.Led.Rel("geneva", "rome")
	if rel == nil {
		t.Fatal("relationship not loaded")
	}
	if rel.Influence != 35.5 || !rel.Wary || rel.GetFlag(diplomacy.FlagBullied) != 12 {
		t.Errorf("relationship state not preserved: %+v", rel)
	}
	mirror := loaded.Led.Rel("rome", "geneva")
	if mirror == nil || mirror.Modifiers[diplomacy.ModBulliedProtectedMinor] != ruleset.PenaltyBulliedProtected {
		t.Errorf("mirror relationship modifiers not preserved: %+v", mirror)
	}

	mgr, ok := loaded.Quests["geneva"]
	if !ok {
		t.Fatal("quest manager not loaded")
	}
	if mgr.GlobalCountdown != 14 || mgr.IndividualCountdowns["rome"] != 5 {
		t.Errorf("countdowns not preserved: global=%d individual=%v", mgr.GlobalCountdown, mgr.IndividualCountdowns)
	}
	if len(mgr.Assigned) != 1 {
		t.Fatalf("assigned quests = %d, want 1", len(mgr.Assigned))
	}
	q := mgr.Assigned[0]
	if q.Name != ruleset.QuestConnectResource || q.Assignee != "rome" || q.AssignedOn != 80 || q.Data1 != "Iron" {
		t.Errorf("quest instance not preserved: %+v", q)
	}
	tracker := mgr.WarTrackers["carthage"]
	if tracker == nil || tracker.TargetKills != 4 || tracker.Kills["rome"] != 2 {
		t.Errorf("war tracker not preserved: %+v", tracker)
	}

	if loaded.Map.Radius != saved.Map.Radius || loaded.Map.TileCount() != saved.Map.TileCount() {
		t.Errorf("map shape not preserved: radius=%d tiles=%d", loaded.Map.Radius, loaded.Map.TileCount())
	}
	if got := loaded.Map.Get(worldmap.HexCoord{Q: 0, R: 3}).Improvement; got != worldmap.ImprovementBarbarianCamp {
		t.Errorf("encampment not preserved, improvement = %q", got)
	}
	if !loaded.Map.Get(worldmap.HexCoord{Q: 0, R: 0}).HasRoad {
		t.Error("road not preserved")
	}
	capital := loaded.Map.CapitalOf("geneva")
	if capital == nil || capital.Center != (worldmap.HexCoord{Q: 4, R: 0}) {
		t.Errorf("city-state capital not preserved: %+v", capital)
	}
	if city := loaded.Map.CityAt(worldmap.HexCoord{Q: -4, R: 0}); city == nil || city.Owner != "rome" {
		t.Errorf("center tile link not restored: %+v", city)
	}
}

func TestFoundCityAfterLoadAvoidsIDCollision(t *testing.T) {
	db := openTestDB(t)
	if err := db.SaveGameState(sampleSim(t)); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := db.LoadGameState(entropy.NewSource(3))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	city, err := loaded.Map.FoundCity("Ostia", "rome", worldmap.HexCoord{Q: 0, R: -4}, false)
	if err != nil {
		t.Fatalf("found city: %v", err)
	}
	if existing := loaded.Map.City(city.ID); existing != city {
		t.Errorf("new city id %d collides with a restored city", city.ID)
	}
	if len(loaded.Map.Cities) != 3 {
		t.Errorf("cities = %d, want 3", len(loaded.Map.Cities))
	}
}

func TestEventsPersistAndReadBackNewestFirst(t *testing.T) {
	db := openTestDB(t)

	events := []engine.Event{
		{Turn: 1, Description: "first", Category: "diplomacy"},
		{Turn: 2, Description: "second", Category: "war"},
		{Turn: 3, Description: "third", Category: "quest"},
	}
	if err := db.SaveEvents(events); err != nil {
		t.Fatalf("save events: %v", err)
	}

	got, err := db.RecentEvents(2)
	if err != nil {
		t.Fatalf("recent events: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("events = %d, want 2", len(got))
	}
	if got[0].Description != "third" || got[1].Description != "second" {
		t.Errorf("order = %q, %q, want newest first", got[0].Description, got[1].Description)
	}

	// Saving no events is a no-op, not an error.
	if err := db.SaveEvents(nil); err != nil {
		t.Errorf("empty save errored: %v", err)
	}
}

func TestMetaOverwrites(t *testing.T) {
	db := openTestDB(t)

	if _, err := db.GetMeta("missing"); err == nil {
		t.Error("missing key returned no error")
	}
	if err := db.SaveMeta("turn", "10"); err != nil {
		t.Fatalf("save meta: %v", err)
	}
	if err := db.SaveMeta("turn", "11"); err != nil {
		t.Fatalf("overwrite meta: %v", err)
	}
	v, err := db.GetMeta("turn")
	if err != nil {
		t.Fatalf("get meta: %v", err)
	}
	if v != "11" {
		t.Errorf("meta = %q, want 11", v)
	}
}
