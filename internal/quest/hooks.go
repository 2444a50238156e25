package quest

import (
	"fmt"
	"sort"

	"github.com/talgya/citystates/internal/civ"
	"github.com/talgya/citystates/internal/ruleset"
	"github.com/talgya/citystates/internal/worldmap"
)

// Event hooks. These fire between sweeps and only record facts; lifecycle
// transitions stay in EndTurn. The two exceptions are camp clearing and the
// war kill target, whose rewards are tied to the moment the event happens.

// BarbarianCampCleared credits the clearer if they hold a matching camp
// quest. The clearer is paid immediately; other assignees' instances
// obsolete at the next sweep once the camp improvement is gone.
func (m *Manager) BarbarianCampCleared(ctx *Context, at worldmap.HexCoord, clearer civ.ID) []civ.Notification {
	cs := ctx.Reg.Get(m.CityState)
	if cs == nil || cs.Defeated {
		return nil
	}

	var notes []civ.Notification
	drop := make(map[*Assigned]bool)
	for _, q := range m.instancesOf(ruleset.QuestClearBarbarianCamp) {
		coord, ok := campCoord(q)
		if !ok || coord != at || q.Assignee != clearer {
			continue
		}
		notes = append(notes, m.giveReward(ctx, cs, q))
		drop[q] = true
	}
	m.remove(drop)
	return notes
}

// CityStateBullied marks bully quests targeting the victim as done for the
// bullying assignee. The reward lands at the next sweep.
func (m *Manager) CityStateBullied(victim, bully civ.ID) {
	for _, q := range m.instancesOf(ruleset.QuestBullyCityState) {
		if civ.ID(q.Data1) == victim && q.Assignee == bully {
			q.Data2 = hookDone
		}
	}
}

// ReceivedGoldGift marks the donor's give-gold quest as done. Conquest and
// contest outcomes need no mark: their predicates read registry state.
func (m *Manager) ReceivedGoldGift(donor civ.ID) {
	for _, q := range m.instancesOf(ruleset.QuestGiveGold) {
		if q.Assignee == donor {
			q.Data2 = hookDone
		}
	}
}

// WasAttackedBy opens the war pseudo-quest against the attacking major:
// every major at peace with the city-state is invited to thin the
// attacker's army. The kill target scales with the attacker's forces.
func (m *Manager) WasAttackedBy(ctx *Context, attacker *civ.Civilization) []civ.Notification {
	cs := ctx.Reg.Get(m.CityState)
	if cs == nil || cs.Defeated || !attacker.Major() {
		return nil
	}
	if _, ongoing := m.WarTrackers[attacker.ID]; ongoing {
		return nil
	}

	target := attacker.MilitaryUnitCount() / 2
	if target < ruleset.MinimumWarWithMajorKillTarget {
		target = ruleset.MinimumWarWithMajorKillTarget
	}
	m.WarTrackers[attacker.ID] = &WarTracker{
		Attacker:    attacker.ID,
		TargetKills: target,
		Kills:       make(map[civ.ID]int),
	}

	var notes []civ.Notification
	for _, id := range m.sortedMajorIDs(ctx) {
		if id == attacker.ID || ctx.Led.AtWar(cs.ID, id) {
			continue
		}
		notes = append(notes, m.warQuestNotice(ctx, cs, attacker, id, target))
	}
	return notes
}

// MilitaryUnitKilledBy credits a kill against an open war tracker. The
// first civ to reach the target collects the flat reward and the tracker
// closes for everyone.
func (m *Manager) MilitaryUnitKilledBy(ctx *Context, attacker, killer civ.ID) []civ.Notification {
	tracker, ok := m.WarTrackers[attacker]
	if !ok || killer == attacker || killer == m.CityState {
		return nil
	}
	cs := ctx.Reg.Get(m.CityState)
	if cs == nil || cs.Defeated {
		return nil
	}

	tracker.Kills[killer]++
	if tracker.Kills[killer] < tracker.TargetKills {
		return nil
	}

	delete(m.WarTrackers, attacker)
	if rel := ctx.Led.Rel(cs.ID, killer); rel != nil {
		rel.AddInfluence(ruleset.WarWithMajorReward)
	}
	name := string(attacker)
	if a := ctx.Reg.Get(attacker); a != nil {
		name = a.Name
	}
	return []civ.Notification{{
		Target:   killer,
		Text:     fmt.Sprintf("%s is grateful that you weakened the army of %s", cs.Name, name),
		Location: capitalLocation(ctx, cs),
		Icon:     string(cs.ID),
	}}
}

// JustMet replays any open war pseudo-quests to a major the city-state has
// just encountered, so latecomers can still take part.
func (m *Manager) JustMet(ctx *Context, other civ.ID) []civ.Notification {
	cs := ctx.Reg.Get(m.CityState)
	if cs == nil || cs.Defeated {
		return nil
	}
	newcomer := ctx.Reg.Get(other)
	if newcomer == nil || !newcomer.Major() || newcomer.Defeated {
		return nil
	}

	var notes []civ.Notification
	for _, id := range sortedTrackerIDs(m.WarTrackers) {
		tracker := m.WarTrackers[id]
		if other == id || ctx.Led.AtWar(cs.ID, other) {
			continue
		}
		attacker := ctx.Reg.Get(id)
		if attacker == nil || attacker.Defeated {
			continue
		}
		notes = append(notes, m.warQuestNotice(ctx, cs, attacker, other, tracker.TargetKills))
	}
	return notes
}

func (m *Manager) warQuestNotice(ctx *Context, cs, attacker *civ.Civilization, to civ.ID, target int) civ.Notification {
	return civ.Notification{
		Target:   to,
		Text:     fmt.Sprintf("%s is at war with %s and will reward whoever destroys %d of their units", cs.Name, attacker.Name, target),
		Location: capitalLocation(ctx, cs),
		Icon:     string(cs.ID),
	}
}

func sortedTrackerIDs(trackers map[civ.ID]*WarTracker) []civ.ID {
	ids := make([]civ.ID, 0, len(trackers))
	for id := range trackers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
