// Package quest provides the city-state quest engine: countdown seeding,
// weighted assignment, per-quest lifecycle tracking, and the war-with-major
// pseudo-quest. Each city-state owns one Manager; all mutation happens in
// its own end-of-turn sweep.
package quest

import (
	"sort"

	"github.com/talgya/citystates/internal/civ"
	"github.com/talgya/citystates/internal/connectivity"
	"github.com/talgya/citystates/internal/diplomacy"
	"github.com/talgya/citystates/internal/entropy"
	"github.com/talgya/citystates/internal/ruleset"
	"github.com/talgya/citystates/internal/worldmap"
)

// Context bundles the read-mostly collaborators every quest predicate needs.
// Built fresh by the engine each turn.
type Context struct {
	Reg   *civ.Registry
	Led   *diplomacy.Ledger
	Map   *worldmap.Map
	Speed ruleset.Speed
	Turn  int
	Rand  *entropy.Source

	// Connectivity results per living major civ, computed this turn.
	Connectivity map[civ.ID]connectivity.Result
}

// Assigned is one live quest instance. Identity is immutable; Data1/Data2
// are quest-specific payload slots (resource name, target civ id, camp
// coordinates). Data2 doubles as the hook-driven completion mark for quests
// resolved by external events.
type Assigned struct {
	Name       ruleset.QuestName `json:"name"`
	Assigner   civ.ID            `json:"assigner"`
	Assignee   civ.ID            `json:"assignee"`
	AssignedOn int               `json:"assigned_on"`
	Data1      string            `json:"data1,omitempty"`
	Data2      string            `json:"data2,omitempty"`
}

// hookDone is the Data2 mark set by event hooks for quests completed
// outside the sweep; the completion predicate reads it at the next sweep.
const hookDone = "done"

// Def returns the catalog row for this quest.
func (a *Assigned) Def() ruleset.QuestDef {
	return ruleset.Quests[a.Name]
}

// RemainingTurns returns turns until expiry, floored at zero. Quests with a
// zero base duration never expire and report -1.
func (a *Assigned) RemainingTurns(speed ruleset.Speed, turn int) int {
	base := a.Def().Duration
	if base == 0 {
		return -1
	}
	remaining := a.AssignedOn + speed.ScaledDuration(base) - turn
	if remaining < 0 {
		return 0
	}
	return remaining
}

// WarTracker follows a war between the city-state and a major attacker: a
// kill target derived from the attacker's army, and kills credited per
// defending civ. A third party reaching the target is rewarded and the
// tracker ends.
type WarTracker struct {
	Attacker    civ.ID         `json:"attacker"`
	TargetKills int            `json:"target_kills"`
	Kills       map[civ.ID]int `json:"kills"`
}

// Manager is the per-city-state quest state machine.
type Manager struct {
	CityState civ.ID `json:"city_state"`

	Assigned []*Assigned `json:"assigned"`

	// Countdowns to the next assignment. CountdownUnset until seeded.
	GlobalCountdown      int            `json:"global_countdown"`
	IndividualCountdowns map[civ.ID]int `json:"individual_countdowns"`

	// Active war pseudo-quests keyed by attacker.
	WarTrackers map[civ.ID]*WarTracker `json:"war_trackers,omitempty"`
}

// NewManager creates an empty manager for the city-state.
func NewManager(cityState civ.ID) *Manager {
	return &Manager{
		CityState:            cityState,
		GlobalCountdown:      ruleset.CountdownUnset,
		IndividualCountdowns: make(map[civ.ID]int),
		WarTrackers:          make(map[civ.ID]*WarTracker),
	}
}

// globalQuestCount returns the number of distinct active global quests
// (a fanned-out global quest counts once, not per assignee).
func (m *Manager) globalQuestCount() int {
	seen := make(map[ruleset.QuestName]bool)
	for _, q := range m.Assigned {
		if q.Def().Global {
			seen[q.Name] = true
		}
	}
	return len(seen)
}

// individualQuestCount returns the number of individual quests currently
// assigned to the given civ.
func (m *Manager) individualQuestCount(assignee civ.ID) int {
	n := 0
	for _, q := range m.Assigned {
		if !q.Def().Global && q.Assignee == assignee {
			n++
		}
	}
	return n
}

// hasQuest reports whether the civ already holds a quest of this name.
func (m *Manager) hasQuest(name ruleset.QuestName, assignee civ.ID) bool {
	for _, q := range m.Assigned {
		if q.Name == name && q.Assignee == assignee {
			return true
		}
	}
	return false
}

// instancesOf returns every instance of the named quest, in assignment
// order (global quests fan out to several assignees).
func (m *Manager) instancesOf(name ruleset.QuestName) []*Assigned {
	var out []*Assigned
	for _, q := range m.Assigned {
		if q.Name == name {
			out = append(out, q)
		}
	}
	return out
}

// remove deletes specific quest instances, preserving order.
func (m *Manager) remove(drop map[*Assigned]bool) {
	if len(drop) == 0 {
		return
	}
	kept := m.Assigned[:0]
	for _, q := range m.Assigned {
		if !drop[q] {
			kept = append(kept, q)
		}
	}
	m.Assigned = kept
}

// sortedMajorIDs returns the ids of living majors known to the city-state,
// sorted for deterministic iteration.
func (m *Manager) sortedMajorIDs(ctx *Context) []civ.ID {
	var ids []civ.ID
	for _, major := range ctx.Reg.Majors() {
		if ctx.Led.Knows(m.CityState, major.ID) {
			ids = append(ids, major.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
