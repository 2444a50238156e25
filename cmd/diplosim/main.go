// Command diplosim runs a headless city-state diplomacy simulation: majors
// court, bully, and protect a set of minor civs while the quest engine
// hands out work. State persists to SQLite and is observable over HTTP.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/talgya/citystates/internal/api"
	"github.com/talgya/citystates/internal/civ"
	"github.com/talgya/citystates/internal/diplomacy"
	"github.com/talgya/citystates/internal/engine"
	"github.com/talgya/citystates/internal/entropy"
	"github.com/talgya/citystates/internal/persistence"
	"github.com/talgya/citystates/internal/ruleset"
	"github.com/talgya/citystates/internal/worldmap"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	seed := int64(envInt("CITYSTATES_SEED", 42))
	turns := envInt("CITYSTATES_TURNS", 300)
	dbPath := envOrDefault("CITYSTATES_DB", "data/citystates.db")
	apiPort := envInt("CITYSTATES_PORT", 8080)
	speed := ruleset.SpeedByName(envOrDefault("CITYSTATES_SPEED", "Standard"))

	os.MkdirAll("data", 0755)
	db, err := persistence.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", dbPath)

	rng := entropy.NewSource(seed)

	var sim *engine.Simulation
	if _, err := db.GetMeta("turn"); err == nil {
		slog.Info("found saved game state, loading...")
		sim, err = db.LoadGameState(rng)
		if err != nil {
			slog.Error("failed to load game state", "error", err)
			os.Exit(1)
		}
	} else {
		slog.Info("no saved state found, seeding new game...")
		sim = seedGame(seed, speed, rng)
		if err := db.SaveGameState(sim); err != nil {
			slog.Error("initial save failed", "error", err)
		}
	}

	apiServer := &api.Server{Sim: sim, DB: db, Port: apiPort}
	apiServer.Start()

	fmt.Printf("Simulating %d turns from turn %d (%d civs, %d city-states)\n",
		turns, sim.Turn, sim.Reg.Count(), len(sim.Reg.CityStates()))

	for i := 0; i < turns; i++ {
		autoplay(sim)
		sim.EndTurn()

		if sim.Turn%50 == 0 {
			if err := db.SaveGameState(sim); err != nil {
				slog.Error("autosave failed", "turn", sim.Turn, "error", err)
			}
		}
	}

	if err := db.SaveGameState(sim); err != nil {
		slog.Error("final save failed", "error", err)
	}

	printStandings(sim)
}

// seedGame builds a fresh world: generated terrain, four majors, six
// city-states, first contacts, and a few barbarian camps to quest over.
func seedGame(seed int64, speed ruleset.Speed, rng *entropy.Source) *engine.Simulation {
	cfg := worldmap.DefaultGenConfig()
	cfg.Seed = seed
	m := worldmap.Generate(cfg)
	slog.Info("world generated", "map", m.String())

	reg := civ.NewRegistry()
	led := diplomacy.NewLedger()

	majors := []struct {
		id, name string
	}{
		{"rome", "Rome"},
		{"egypt", "Egypt"},
		{"greece", "Greece"},
		{"babylon", "Babylon"},
	}
	minors := []struct {
		id, name    string
		csType      civ.CityStateType
		personality civ.Personality
	}{
		{"geneva", "Geneva", civ.Cultured, civ.Friendly},
		{"valletta", "Valletta", civ.Maritime, civ.Neutral},
		{"zanzibar", "Zanzibar", civ.Mercantile, civ.Neutral},
		{"kabul", "Kabul", civ.Militaristic, civ.Hostile},
		{"lhasa", "Lhasa", civ.Religious, civ.Friendly},
		{"tyre", "Tyre", civ.Mercantile, civ.Irrational},
	}

	sites := landSites(m, len(majors)+len(minors))
	if len(sites) < len(majors)+len(minors) {
		slog.Error("not enough land to place civilizations", "sites", len(sites))
		os.Exit(1)
	}

	for i, mj := range majors {
		c := &civ.Civilization{
			ID:    civ.ID(mj.id),
			Name:  mj.name,
			Gold:  500,
			Techs: map[string]bool{ruleset.TechForRoads: true},
			Units: []civ.Unit{
				{Name: "Warrior", Force: 8, Military: true, Pos: sites[i]},
				{Name: "Warrior", Force: 8, Military: true, Pos: sites[i]},
				{Name: "Archer", Force: 7, Military: true, Pos: sites[i]},
			},
			TechCount: 1,
		}
		reg.Add(c)
		if _, err := m.FoundCity(mj.name, mj.id, sites[i], true); err != nil {
			slog.Error("found capital failed", "civ", mj.id, "error", err)
			os.Exit(1)
		}
	}

	for i, mn := range minors {
		at := sites[len(majors)+i]
		c := &civ.Civilization{
			ID:          civ.ID(mn.id),
			Name:        mn.name,
			CityState:   true,
			Type:        mn.csType,
			Personality: mn.personality,
			Gold:        100,
			Units: []civ.Unit{
				{Name: "Warrior", Force: 8, Military: true, Pos: at},
			},
		}
		reg.Add(c)
		city, err := m.FoundCity(mn.name, mn.id, at, true)
		if err != nil {
			slog.Error("found city-state failed", "civ", mn.id, "error", err)
			os.Exit(1)
		}
		city.Population = 3 + rng.Intn(4)
	}

	// Everyone has met everyone; a fog-of-war layer would stage this.
	all := reg.All()
	for i := range all {
		for j := i + 1; j < len(all); j++ {
			led.Contact(all[i].ID, all[j].ID)
		}
	}

	// Roads from each major's capital toward the nearest city-state.
	for _, mj := range reg.Majors() {
		capital := m.CapitalOf(string(mj.ID))
		nearest := nearestCityStateCapital(m, reg, capital)
		if capital != nil && nearest != nil {
			m.LayRoad(capital.Center, nearest.Center, false)
		}
	}

	// Scatter a few barbarian camps on open land.
	camps := 0
	for _, site := range landSites(m, 40) {
		if camps >= 5 {
			break
		}
		if tile := m.Get(site); tile != nil && tile.CityID == nil && tile.Improvement == "" {
			tile.Improvement = worldmap.ImprovementBarbarianCamp
			camps++
		}
	}

	// Place natural wonders on mountain tiles.
	placed := 0
	for _, tile := range mountainTiles(m) {
		if placed >= len(ruleset.NaturalWonders) {
			break
		}
		tile.NaturalWonder = ruleset.NaturalWonders[placed]
		placed++
	}

	return engine.NewSimulation(reg, led, m, speed, rng)
}

// autoplay drives simple major-civ behavior each turn so the diplomacy and
// quest systems have something to react to.
func autoplay(sim *engine.Simulation) {
	for _, mj := range sim.Reg.Majors() {
		mj.Gold += 20
		mj.Culture += 2 + sim.Rand.Float()*3
		mj.Faith += 1 + sim.Rand.Float()*2

		// Occasionally research, gift, demand, or pledge.
		switch sim.Rand.Intn(20) {
		case 0:
			mj.TechCount++
		case 1, 2:
			if cs := randomCityState(sim); cs != nil && mj.Gold >= 100 {
				sim.GiftGold(mj.ID, cs.ID, 100)
			}
		case 3:
			if cs := randomCityState(sim); cs != nil {
				if _, err := sim.DemandGold(mj.ID, cs.ID); err != nil {
					slog.Debug("tribute refused", "major", mj.ID, "cs", cs.ID)
				}
			}
		case 4:
			if cs := randomCityState(sim); cs != nil {
				sim.PledgeProtection(mj.ID, cs.ID)
			}
		}
	}
}

func randomCityState(sim *engine.Simulation) *civ.Civilization {
	states := sim.Reg.CityStates()
	if len(states) == 0 {
		return nil
	}
	return states[sim.Rand.Intn(len(states))]
}

// landSites returns spaced-out land coordinates suitable for city placement.
func landSites(m *worldmap.Map, want int) []worldmap.HexCoord {
	var sites []worldmap.HexCoord
	minGap := m.Radius / 3
	if minGap < 3 {
		minGap = 3
	}

	for q := -m.Radius; q <= m.Radius; q++ {
		for r := -m.Radius; r <= m.Radius; r++ {
			coord := worldmap.HexCoord{Q: q, R: r}
			tile := m.Get(coord)
			if tile == nil || tile.Terrain != worldmap.TerrainLand || tile.CityID != nil {
				continue
			}
			tooClose := false
			for _, s := range sites {
				if worldmap.Distance(coord, s) < minGap {
					tooClose = true
					break
				}
			}
			if tooClose {
				continue
			}
			sites = append(sites, coord)
			if len(sites) >= want {
				return sites
			}
		}
	}
	return sites
}

func mountainTiles(m *worldmap.Map) []*worldmap.Tile {
	var out []*worldmap.Tile
	for q := -m.Radius; q <= m.Radius; q++ {
		for r := -m.Radius; r <= m.Radius; r++ {
			if tile := m.Get(worldmap.HexCoord{Q: q, R: r}); tile != nil && tile.Terrain == worldmap.TerrainMountain {
				out = append(out, tile)
			}
		}
	}
	return out
}

func nearestCityStateCapital(m *worldmap.Map, reg *civ.Registry, from *worldmap.City) *worldmap.City {
	if from == nil {
		return nil
	}
	var best *worldmap.City
	bestDist := 1 << 30
	for _, cs := range reg.CityStates() {
		capital := m.CapitalOf(string(cs.ID))
		if capital == nil {
			continue
		}
		if d := worldmap.Distance(from.Center, capital.Center); d < bestDist {
			best = capital
			bestDist = d
		}
	}
	return best
}

func printStandings(sim *engine.Simulation) {
	fmt.Printf("\nFinal standings after turn %d:\n", sim.Turn)
	for _, cs := range sim.Reg.CityStates() {
		ally := "none"
		if cs.AllyID != civ.None {
			if a := sim.Reg.Get(cs.AllyID); a != nil {
				ally = a.Name
			}
		}
		fmt.Printf("  %-10s (%s, %s) ally: %s\n", cs.Name, cs.Type, cs.Personality, ally)
		for _, rel := range sim.Led.RelsFrom(cs.ID) {
			if to := sim.Reg.Get(rel.To); to != nil && to.Major() {
				fmt.Printf("    %-10s influence %.0f (%s)\n", to.Name, rel.Influence, rel.Status)
			}
		}
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}
