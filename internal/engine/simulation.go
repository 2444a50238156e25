// Package engine ties the diplomacy ledger, quest managers, and world map
// together and runs them each turn.
package engine

import (
	"log/slog"
	"sort"

	"github.com/talgya/citystates/internal/civ"
	"github.com/talgya/citystates/internal/connectivity"
	"github.com/talgya/citystates/internal/diplomacy"
	"github.com/talgya/citystates/internal/entropy"
	"github.com/talgya/citystates/internal/quest"
	"github.com/talgya/citystates/internal/ruleset"
	"github.com/talgya/citystates/internal/worldmap"
)

// Event is a notable occurrence in the world.
type Event struct {
	Turn        int    `json:"turn"`
	Description string `json:"description"`
	Category    string `json:"category"` // "diplomacy", "quest", "tribute", "war"
}

// Simulation holds the complete game state and wires systems together.
type Simulation struct {
	Reg   *civ.Registry
	Led   *diplomacy.Ledger
	Map   *worldmap.Map
	Speed ruleset.Speed
	Rand  *entropy.Source
	Turn  int

	// One quest manager per city-state, keyed by its id.
	Quests map[civ.ID]*quest.Manager

	Events []Event // Recent events (ring buffer in production)
	Popups *PopupQueue

	// Connectivity results from the most recent turn, per major civ.
	Connectivity map[civ.ID]connectivity.Result
}

// NewSimulation creates a Simulation over already-registered civs. A quest
// manager is created for every living city-state.
func NewSimulation(reg *civ.Registry, led *diplomacy.Ledger, m *worldmap.Map, speed ruleset.Speed, rng *entropy.Source) *Simulation {
	s := &Simulation{
		Reg:    reg,
		Led:    led,
		Map:    m,
		Speed:  speed,
		Rand:   rng,
		Quests: make(map[civ.ID]*quest.Manager),
		Popups: NewPopupQueue(),
	}
	for _, cs := range reg.CityStates() {
		s.Quests[cs.ID] = quest.NewManager(cs.ID)
	}
	return s
}

// EndTurn advances the simulation one turn: expire timed flags, refresh
// capital connectivity, run every city-state's quest sweep, then settle
// alliances. Returns the notifications raised this turn.
func (s *Simulation) EndTurn() []civ.Notification {
	s.Turn++

	for _, c := range s.Reg.All() {
		if c.Alive() {
			c.TickFlags()
		}
	}
	s.Led.TickFlags()

	s.refreshConnectivity()
	ctx := s.questContext()

	var notes []civ.Notification
	for _, cs := range s.Reg.CityStates() {
		mgr, ok := s.Quests[cs.ID]
		if !ok {
			mgr = quest.NewManager(cs.ID)
			s.Quests[cs.ID] = mgr
		}
		questNotes := mgr.EndTurn(ctx)
		allyNotes := diplomacy.UpdateAlly(s.Reg, s.Led, s.Map, cs)
		s.deliver(questNotes, "quest")
		s.deliver(allyNotes, "diplomacy")
		notes = append(notes, questNotes...)
		notes = append(notes, allyNotes...)
	}

	return notes
}

// refreshConnectivity recomputes which cities each living major can reach
// from its capital with its current techs.
func (s *Simulation) refreshConnectivity() {
	results := make(map[civ.ID]connectivity.Result)
	for _, major := range s.Reg.Majors() {
		capital := s.Map.CapitalOf(string(major.ID))
		if capital == nil {
			continue
		}
		var cities []*worldmap.City
		for _, c := range s.Map.Cities {
			cities = append(cities, c)
		}
		tech := connectivity.TechAccess{
			Roads:     major.HasTech(ruleset.TechForRoads),
			Railroads: major.HasTech(ruleset.TechForRailroads),
		}
		results[major.ID] = connectivity.Find(s.Map, capital, cities, tech)
	}
	s.Connectivity = results
}

// questContext builds the per-turn context shared by all quest managers.
func (s *Simulation) questContext() *quest.Context {
	return &quest.Context{
		Reg:          s.Reg,
		Led:          s.Led,
		Map:          s.Map,
		Speed:        s.Speed,
		Turn:         s.Turn,
		Rand:         s.Rand,
		Connectivity: s.Connectivity,
	}
}

// managers returns the quest managers in city-state id order so fan-out
// over them is deterministic.
func (s *Simulation) managers() []*quest.Manager {
	ids := make([]civ.ID, 0, len(s.Quests))
	for id := range s.Quests {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*quest.Manager, len(ids))
	for i, id := range ids {
		out[i] = s.Quests[id]
	}
	return out
}

// deliver records notifications as events and logs them.
func (s *Simulation) deliver(notes []civ.Notification, category string) {
	for _, n := range notes {
		s.Events = append(s.Events, Event{
			Turn:        s.Turn,
			Description: n.Text,
			Category:    category,
		})
		slog.Debug("notification", "turn", s.Turn, "target", n.Target, "text", n.Text)
	}
}
