package quest

import (
	"fmt"
	"strings"

	"github.com/talgya/citystates/internal/civ"
	"github.com/talgya/citystates/internal/diplomacy"
	"github.com/talgya/citystates/internal/ruleset"
	"github.com/talgya/citystates/internal/worldmap"
)

// EndTurn runs the city-state's quest machinery for one turn, in the fixed
// order the engine guarantees: countdown decrement, then the
// expiry/completion sweep, then seeding and new assignment, then war
// pseudo-quest cleanup. Returns the notifications emitted.
func (m *Manager) EndTurn(ctx *Context) []civ.Notification {
	cs := ctx.Reg.Get(m.CityState)
	if cs == nil || cs.Defeated {
		m.Assigned = nil
		m.WarTrackers = make(map[civ.ID]*WarTracker)
		return nil
	}

	var notes []civ.Notification

	m.tickCountdowns(ctx)
	notes = append(notes, m.sweep(ctx, cs)...)
	m.seedCountdowns(ctx)
	notes = append(notes, m.tryAssignments(ctx, cs)...)
	m.cleanupWarTrackers(ctx)

	return notes
}

// tickCountdowns decrements seeded countdowns by exactly one, never past
// zero and never touching the unset sentinel.
func (m *Manager) tickCountdowns(ctx *Context) {
	if m.GlobalCountdown > 0 {
		m.GlobalCountdown--
	}
	for id, c := range m.IndividualCountdowns {
		if c > 0 {
			m.IndividualCountdowns[id] = c - 1
		}
	}
}

// seedCountdowns seeds any unset countdown once the game is old enough.
// Values are randomized and scaled by game speed.
func (m *Manager) seedCountdowns(ctx *Context) {
	if ctx.Turn < ruleset.QuestFirstPossibleTurn {
		return
	}

	if m.GlobalCountdown == ruleset.CountdownUnset {
		span := ctx.Rand.Between(ruleset.GlobalQuestMinTurns, ruleset.GlobalQuestMinTurns+ruleset.GlobalQuestRandTurns)
		m.GlobalCountdown = ctx.Speed.ScaledDuration(span)
	}

	for _, id := range m.sortedMajorIDs(ctx) {
		c, ok := m.IndividualCountdowns[id]
		if !ok || c == ruleset.CountdownUnset {
			span := ctx.Rand.Between(ruleset.IndividualQuestMinTurns, ruleset.IndividualQuestMinTurns+ruleset.IndividualQuestRandTurns)
			m.IndividualCountdowns[id] = ctx.Speed.ScaledDuration(span)
		}
	}
}

// sweep advances every assigned quest through its lifecycle. Transition
// priority per quest: invalidated → silent removal; completed → reward;
// obsolete → notify; expired → notify (global quests resolve the contest).
func (m *Manager) sweep(ctx *Context, cs *civ.Civilization) []civ.Notification {
	var notes []civ.Notification
	drop := make(map[*Assigned]bool)
	expiredGlobals := make(map[ruleset.QuestName]bool)

	for _, q := range m.Assigned {
		if drop[q] {
			continue
		}
		assignee := ctx.Reg.Get(q.Assignee)
		if assignee == nil || assignee.Defeated || ctx.Led.AtWar(cs.ID, q.Assignee) {
			drop[q] = true
			continue
		}

		h := handlers[q.Name]
		switch {
		case h.completed != nil && h.completed(ctx, m, q):
			notes = append(notes, m.giveReward(ctx, cs, q))
			drop[q] = true

		case h.obsolete != nil && h.obsolete(ctx, m, q):
			notes = append(notes, civ.Notification{
				Target: q.Assignee,
				Text:   fmt.Sprintf("The %s quest from %s is no longer relevant", q.Name, cs.Name),
				Icon:   string(cs.ID),
			})
			drop[q] = true

		case q.RemainingTurns(ctx.Speed, ctx.Turn) == 0:
			if q.Def().Global {
				expiredGlobals[q.Name] = true
			} else {
				notes = append(notes, civ.Notification{
					Target: q.Assignee,
					Text:   fmt.Sprintf("The %s quest from %s has expired", q.Name, cs.Name),
					Icon:   string(cs.ID),
				})
				drop[q] = true
			}
		}
	}

	for name := range expiredGlobals {
		notes = append(notes, m.resolveGlobal(ctx, cs, name, drop)...)
	}

	m.remove(drop)
	return notes
}

// resolveGlobal scores every surviving instance of an expired global quest.
// The maximum scorers win and share the reward; everyone else learns who
// won. A maximum of zero means nobody achieved anything and nobody wins.
func (m *Manager) resolveGlobal(ctx *Context, cs *civ.Civilization, name ruleset.QuestName, drop map[*Assigned]bool) []civ.Notification {
	instances := m.instancesOf(name)
	h := handlers[name]

	maxScore := 0.0
	scores := make(map[*Assigned]float64, len(instances))
	for _, q := range instances {
		if drop[q] {
			continue
		}
		s := 0.0
		if h.score != nil {
			s = h.score(ctx, q)
		} else if q.Data2 == hookDone {
			s = 1
		}
		scores[q] = s
		if s > maxScore {
			maxScore = s
		}
	}

	var notes []civ.Notification
	var winners []string
	if maxScore > 0 {
		for _, q := range instances {
			if drop[q] {
				continue
			}
			if scores[q] == maxScore {
				if winner := ctx.Reg.Get(q.Assignee); winner != nil {
					winners = append(winners, winner.Name)
				}
				notes = append(notes, m.giveReward(ctx, cs, q))
			}
		}
	}

	for _, q := range instances {
		if drop[q] {
			continue
		}
		if scores[q] != maxScore || maxScore <= 0 {
			text := fmt.Sprintf("The %s quest from %s has ended", name, cs.Name)
			if len(winners) > 0 {
				text = fmt.Sprintf("The %s quest from %s was won by %s", name, cs.Name, strings.Join(winners, ", "))
			}
			notes = append(notes, civ.Notification{Target: q.Assignee, Text: text, Icon: string(cs.ID)})
		}
		drop[q] = true
	}
	return notes
}

// giveReward pays the catalog influence to the assignee and tells them.
func (m *Manager) giveReward(ctx *Context, cs *civ.Civilization, q *Assigned) civ.Notification {
	if rel := ctx.Led.Rel(cs.ID, q.Assignee); rel != nil {
		rel.AddInfluence(q.Def().Influence)
	}
	return civ.Notification{
		Target:   q.Assignee,
		Text:     fmt.Sprintf("You have completed the %s quest for %s", q.Name, cs.Name),
		Location: capitalLocation(ctx, cs),
		Icon:     string(cs.ID),
	}
}

// tryAssignments attempts new assignments for every countdown that has
// reached zero. A successful assignment resets its countdown to the unset
// sentinel, so it reseeds on the next turn; a failed attempt leaves the
// countdown at zero and retries next turn.
func (m *Manager) tryAssignments(ctx *Context, cs *civ.Civilization) []civ.Notification {
	var notes []civ.Notification

	if m.GlobalCountdown == 0 {
		if assigned := m.tryAssignGlobal(ctx, cs, &notes); assigned {
			m.GlobalCountdown = ruleset.CountdownUnset
		}
	}

	for _, id := range m.sortedMajorIDs(ctx) {
		if m.IndividualCountdowns[id] != 0 {
			continue
		}
		challenger := ctx.Reg.Get(id)
		if challenger == nil {
			continue
		}
		if assigned := m.tryAssignIndividual(ctx, cs, challenger, &notes); assigned {
			m.IndividualCountdowns[id] = ruleset.CountdownUnset
		}
	}

	return notes
}

// eligible reports whether the challenger may receive the named quest from
// this city-state right now.
func (m *Manager) eligible(ctx *Context, cs, challenger *civ.Civilization, name ruleset.QuestName) bool {
	if !challenger.Major() || challenger.Defeated {
		return false
	}
	if !ctx.Led.Knows(cs.ID, challenger.ID) || ctx.Led.AtWar(cs.ID, challenger.ID) {
		return false
	}
	// A civ that recently bullied this city-state gets nothing from it.
	if rel := ctx.Led.Rel(cs.ID, challenger.ID); rel != nil && rel.HasFlag(diplomacy.FlagBullied) {
		return false
	}
	if m.hasQuest(name, challenger.ID) {
		return false
	}
	if !ruleset.Quests[name].Global && m.individualQuestCount(challenger.ID) >= ruleset.MaxIndividualQuestsPerCiv {
		return false
	}
	return true
}

// tryAssignGlobal picks one global quest by weight and fans it out to every
// eligible major. Returns true when a quest was assigned.
func (m *Manager) tryAssignGlobal(ctx *Context, cs *civ.Civilization, notes *[]civ.Notification) bool {
	if m.globalQuestCount() >= ruleset.MaxGlobalQuests {
		return false
	}

	type candidate struct {
		name      ruleset.QuestName
		assignees []*civ.Civilization
	}
	var candidates []candidate
	var weights []float64

	for _, name := range ruleset.AllQuestNames() {
		def := ruleset.Quests[name]
		if !def.Global {
			continue
		}
		h := handlers[name]
		if h.valid != nil && !h.valid(ctx, m, cs, nil) {
			continue
		}
		w := Weight(name, cs.Type, cs.Personality)
		if w <= 0 {
			continue
		}
		var assignees []*civ.Civilization
		for _, major := range ctx.Reg.Majors() {
			if m.eligible(ctx, cs, major, name) {
				assignees = append(assignees, major)
			}
		}
		if len(assignees) < def.MinCivs {
			continue
		}
		candidates = append(candidates, candidate{name, assignees})
		weights = append(weights, w)
	}

	idx := ctx.Rand.WeightedIndex(weights)
	if idx < 0 {
		return false
	}

	chosen := candidates[idx]
	h := handlers[chosen.name]
	for _, assignee := range chosen.assignees {
		data1, data2 := "", ""
		if h.dataFor != nil {
			var ok bool
			data1, data2, ok = h.dataFor(ctx, m, cs, assignee)
			if !ok {
				continue
			}
		}
		q := &Assigned{Name: chosen.name, Assigner: cs.ID, Assignee: assignee.ID, AssignedOn: ctx.Turn, Data1: data1, Data2: data2}
		m.Assigned = append(m.Assigned, q)
		*notes = append(*notes, m.assignmentNotice(ctx, cs, q))
	}
	return true
}

// tryAssignIndividual picks one individual quest by weight for a single
// challenger. Returns true when a quest was assigned.
func (m *Manager) tryAssignIndividual(ctx *Context, cs, challenger *civ.Civilization, notes *[]civ.Notification) bool {
	var candidates []ruleset.QuestName
	var weights []float64

	for _, name := range ruleset.AllQuestNames() {
		def := ruleset.Quests[name]
		if def.Global {
			continue
		}
		if !m.eligible(ctx, cs, challenger, name) {
			continue
		}
		h := handlers[name]
		if h.valid != nil && !h.valid(ctx, m, cs, challenger) {
			continue
		}
		w := Weight(name, cs.Type, cs.Personality)
		if w <= 0 {
			continue
		}
		candidates = append(candidates, name)
		weights = append(weights, w)
	}

	idx := ctx.Rand.WeightedIndex(weights)
	if idx < 0 {
		return false
	}

	name := candidates[idx]
	data1, data2 := "", ""
	if h := handlers[name]; h.dataFor != nil {
		var ok bool
		data1, data2, ok = h.dataFor(ctx, m, cs, challenger)
		if !ok {
			return false
		}
	}
	q := &Assigned{Name: name, Assigner: cs.ID, Assignee: challenger.ID, AssignedOn: ctx.Turn, Data1: data1, Data2: data2}
	m.Assigned = append(m.Assigned, q)
	*notes = append(*notes, m.assignmentNotice(ctx, cs, q))
	return true
}

// assignmentNotice builds the "new quest" notification from the catalog
// description template.
func (m *Manager) assignmentNotice(ctx *Context, cs *civ.Civilization, q *Assigned) civ.Notification {
	desc := q.Def().Description
	if strings.Contains(desc, "%s") {
		slot := q.Data1
		if q.Name == ruleset.QuestClearBarbarianCamp {
			slot = fmt.Sprintf("(%s, %s)", q.Data1, q.Data2)
		}
		if q.Name == ruleset.QuestRoute {
			slot = cs.Name
		}
		if target := ctx.Reg.Get(civ.ID(q.Data1)); target != nil {
			slot = target.Name
		}
		desc = strings.Replace(desc, "%s", slot, 1)
	}
	return civ.Notification{
		Target:   q.Assignee,
		Text:     fmt.Sprintf("%s asks: %s", cs.Name, desc),
		Location: capitalLocation(ctx, cs),
		Icon:     string(cs.ID),
	}
}

func capitalLocation(ctx *Context, cs *civ.Civilization) *worldmap.HexCoord {
	if capital := ctx.Map.CapitalOf(string(cs.ID)); capital != nil {
		c := capital.Center
		return &c
	}
	return nil
}

// cleanupWarTrackers drops trackers whose war ended or whose attacker left
// the game.
func (m *Manager) cleanupWarTrackers(ctx *Context) {
	for id := range m.WarTrackers {
		attacker := ctx.Reg.Get(id)
		if attacker == nil || attacker.Defeated || !ctx.Led.AtWar(m.CityState, id) {
			delete(m.WarTrackers, id)
		}
	}
}
