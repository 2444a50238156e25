package quest

import (
	"sort"
	"strconv"

	"github.com/talgya/citystates/internal/civ"
	"github.com/talgya/citystates/internal/diplomacy"
	"github.com/talgya/citystates/internal/ruleset"
	"github.com/talgya/citystates/internal/worldmap"
)

// handlerFuncs is the per-quest function table. Any nil entry means "not
// applicable": a nil completed never completes (contest quests resolve at
// expiry instead), a nil obsolete never obsoletes, a nil score is binary.
type handlerFuncs struct {
	// valid gates candidacy. challenger is nil while testing a global
	// quest's world preconditions.
	valid func(ctx *Context, m *Manager, cs, challenger *civ.Civilization) bool

	// dataFor fills the payload slots at assignment. Must be
	// deterministic: global fan-out calls it once per assignee.
	dataFor func(ctx *Context, m *Manager, cs, challenger *civ.Civilization) (string, string, bool)

	completed func(ctx *Context, m *Manager, q *Assigned) bool
	obsolete  func(ctx *Context, m *Manager, q *Assigned) bool

	// score ranks global-quest participants at expiry.
	score func(ctx *Context, q *Assigned) float64
}

var handlers = map[ruleset.QuestName]handlerFuncs{
	ruleset.QuestRoute: {
		valid: func(ctx *Context, m *Manager, cs, ch *civ.Civilization) bool {
			if !ch.HasTech(ruleset.TechForRoads) {
				return false
			}
			csCapital := ctx.Map.CapitalOf(string(cs.ID))
			if csCapital == nil || ctx.Map.CapitalOf(string(ch.ID)) == nil {
				return false
			}
			return !ctx.Connectivity[ch.ID].Connected(csCapital.ID)
		},
		completed: func(ctx *Context, m *Manager, q *Assigned) bool {
			capital := ctx.Map.CapitalOf(string(q.Assigner))
			return capital != nil && ctx.Connectivity[q.Assignee].Connected(capital.ID)
		},
		obsolete: func(ctx *Context, m *Manager, q *Assigned) bool {
			return ctx.Map.CapitalOf(string(q.Assigner)) == nil
		},
	},

	ruleset.QuestClearBarbarianCamp: {
		valid: func(ctx *Context, m *Manager, cs, ch *civ.Civilization) bool {
			return nearestCamp(ctx, cs) != nil
		},
		dataFor: func(ctx *Context, m *Manager, cs, ch *civ.Civilization) (string, string, bool) {
			camp := nearestCamp(ctx, cs)
			if camp == nil {
				return "", "", false
			}
			return strconv.Itoa(camp.Coord.Q), strconv.Itoa(camp.Coord.R), true
		},
		// Completion is hook-driven: the clearing assignee is rewarded when
		// BarbarianCampCleared fires. Everyone else's instance obsoletes at
		// the next sweep once the camp improvement is gone.
		obsolete: func(ctx *Context, m *Manager, q *Assigned) bool {
			coord, ok := campCoord(q)
			if !ok {
				return true
			}
			tile := ctx.Map.Get(coord)
			return tile == nil || tile.Improvement != worldmap.ImprovementBarbarianCamp
		},
	},

	ruleset.QuestConstructWonder: {
		valid: func(ctx *Context, m *Manager, cs, ch *civ.Civilization) bool {
			return firstUnbuiltWonder(ctx) != ""
		},
		dataFor: func(ctx *Context, m *Manager, cs, ch *civ.Civilization) (string, string, bool) {
			w := firstUnbuiltWonder(ctx)
			return w, "", w != ""
		},
		completed: func(ctx *Context, m *Manager, q *Assigned) bool {
			assignee := ctx.Reg.Get(q.Assignee)
			return assignee != nil && assignee.BuiltWonders[q.Data1]
		},
		obsolete: func(ctx *Context, m *Manager, q *Assigned) bool {
			for _, c := range ctx.Reg.All() {
				if c.ID != q.Assignee && c.BuiltWonders[q.Data1] {
					return true
				}
			}
			return false
		},
	},

	ruleset.QuestConnectResource: {
		valid: func(ctx *Context, m *Manager, cs, ch *civ.Civilization) bool {
			return firstMissing(ruleset.Resources, ch.Resources) != ""
		},
		dataFor: func(ctx *Context, m *Manager, cs, ch *civ.Civilization) (string, string, bool) {
			r := firstMissing(ruleset.Resources, ch.Resources)
			return r, "", r != ""
		},
		completed: func(ctx *Context, m *Manager, q *Assigned) bool {
			assignee := ctx.Reg.Get(q.Assignee)
			return assignee != nil && assignee.Resources[q.Data1]
		},
	},

	ruleset.QuestAcquireGreatPerson: {
		valid: func(ctx *Context, m *Manager, cs, ch *civ.Civilization) bool {
			return firstMissing(ruleset.GreatPeople, ch.GreatPeople) != ""
		},
		dataFor: func(ctx *Context, m *Manager, cs, ch *civ.Civilization) (string, string, bool) {
			g := firstMissing(ruleset.GreatPeople, ch.GreatPeople)
			return g, "", g != ""
		},
		completed: func(ctx *Context, m *Manager, q *Assigned) bool {
			assignee := ctx.Reg.Get(q.Assignee)
			return assignee != nil && assignee.GreatPeople[q.Data1]
		},
	},

	ruleset.QuestConquerCityState: {
		valid: func(ctx *Context, m *Manager, cs, ch *civ.Civilization) bool {
			return conquerTarget(ctx, cs, ch) != civ.None
		},
		dataFor: func(ctx *Context, m *Manager, cs, ch *civ.Civilization) (string, string, bool) {
			t := conquerTarget(ctx, cs, ch)
			return string(t), "", t != civ.None
		},
		completed: func(ctx *Context, m *Manager, q *Assigned) bool {
			target := ctx.Reg.Get(civ.ID(q.Data1))
			return target != nil && target.Defeated && target.DefeatedBy == q.Assignee
		},
		obsolete: func(ctx *Context, m *Manager, q *Assigned) bool {
			target := ctx.Reg.Get(civ.ID(q.Data1))
			return target == nil || (target.Defeated && target.DefeatedBy != q.Assignee)
		},
	},

	ruleset.QuestFindCiv: {
		valid: func(ctx *Context, m *Manager, cs, ch *civ.Civilization) bool {
			return unmetMajor(ctx, ch) != civ.None
		},
		dataFor: func(ctx *Context, m *Manager, cs, ch *civ.Civilization) (string, string, bool) {
			t := unmetMajor(ctx, ch)
			return string(t), "", t != civ.None
		},
		completed: func(ctx *Context, m *Manager, q *Assigned) bool {
			return ctx.Led.Knows(q.Assignee, civ.ID(q.Data1))
		},
		obsolete: func(ctx *Context, m *Manager, q *Assigned) bool {
			target := ctx.Reg.Get(civ.ID(q.Data1))
			return target == nil || target.Defeated
		},
	},

	ruleset.QuestFindNaturalWonder: {
		valid: func(ctx *Context, m *Manager, cs, ch *civ.Civilization) bool {
			return firstUnfoundWonder(ctx, ch) != ""
		},
		dataFor: func(ctx *Context, m *Manager, cs, ch *civ.Civilization) (string, string, bool) {
			w := firstUnfoundWonder(ctx, ch)
			return w, "", w != ""
		},
		completed: func(ctx *Context, m *Manager, q *Assigned) bool {
			assignee := ctx.Reg.Get(q.Assignee)
			return assignee != nil && assignee.NaturalWondersFound[q.Data1]
		},
	},

	ruleset.QuestGiveGold: {
		valid: func(ctx *Context, m *Manager, cs, ch *civ.Civilization) bool {
			return cs.HasFlag(civ.FlagRecentlyBullied)
		},
		dataFor: func(ctx *Context, m *Manager, cs, ch *civ.Civilization) (string, string, bool) {
			return strconv.Itoa(ch.GoldGiftedTo[cs.ID]), "", true
		},
		completed: func(ctx *Context, m *Manager, q *Assigned) bool {
			if q.Data2 == hookDone {
				return true
			}
			assignee := ctx.Reg.Get(q.Assignee)
			if assignee == nil {
				return false
			}
			baseline, _ := strconv.Atoi(q.Data1)
			return assignee.GoldGiftedTo[civ.ID(q.Assigner)] > baseline
		},
	},

	ruleset.QuestPledgeToProtect: {
		valid: func(ctx *Context, m *Manager, cs, ch *civ.Civilization) bool {
			return diplomacy.CanPledgeProtection(ctx.Led, cs, ch)
		},
		completed: func(ctx *Context, m *Manager, q *Assigned) bool {
			rel := ctx.Led.Rel(civ.ID(q.Assigner), q.Assignee)
			return rel != nil && rel.Status == diplomacy.Protector
		},
	},

	ruleset.QuestContestCulture: {
		dataFor: func(ctx *Context, m *Manager, cs, ch *civ.Civilization) (string, string, bool) {
			return strconv.FormatFloat(ch.Culture, 'f', -1, 64), "", true
		},
		score: statDelta(func(c *civ.Civilization) float64 { return c.Culture }),
	},

	ruleset.QuestContestFaith: {
		dataFor: func(ctx *Context, m *Manager, cs, ch *civ.Civilization) (string, string, bool) {
			return strconv.FormatFloat(ch.Faith, 'f', -1, 64), "", true
		},
		score: statDelta(func(c *civ.Civilization) float64 { return c.Faith }),
	},

	ruleset.QuestContestTechnologies: {
		dataFor: func(ctx *Context, m *Manager, cs, ch *civ.Civilization) (string, string, bool) {
			return strconv.Itoa(ch.TechCount), "", true
		},
		score: statDelta(func(c *civ.Civilization) float64 { return float64(c.TechCount) }),
	},

	ruleset.QuestInvest: {
		dataFor: func(ctx *Context, m *Manager, cs, ch *civ.Civilization) (string, string, bool) {
			return strconv.Itoa(ch.GoldGiftedTo[cs.ID]), "", true
		},
		score: func(ctx *Context, q *Assigned) float64 {
			assignee := ctx.Reg.Get(q.Assignee)
			if assignee == nil {
				return 0
			}
			baseline, _ := strconv.Atoi(q.Data1)
			return float64(assignee.GoldGiftedTo[civ.ID(q.Assigner)] - baseline)
		},
	},

	ruleset.QuestBullyCityState: {
		valid: func(ctx *Context, m *Manager, cs, ch *civ.Civilization) bool {
			return bullyTarget(ctx, cs, ch) != civ.None
		},
		dataFor: func(ctx *Context, m *Manager, cs, ch *civ.Civilization) (string, string, bool) {
			t := bullyTarget(ctx, cs, ch)
			return string(t), "", t != civ.None
		},
		completed: func(ctx *Context, m *Manager, q *Assigned) bool {
			return q.Data2 == hookDone
		},
		obsolete: func(ctx *Context, m *Manager, q *Assigned) bool {
			target := ctx.Reg.Get(civ.ID(q.Data1))
			return target == nil || target.Defeated
		},
	},

	ruleset.QuestDenounceCiv: {
		valid: func(ctx *Context, m *Manager, cs, ch *civ.Civilization) bool {
			return denounceTarget(ctx, m, ch) != civ.None
		},
		dataFor: func(ctx *Context, m *Manager, cs, ch *civ.Civilization) (string, string, bool) {
			t := denounceTarget(ctx, m, ch)
			return string(t), "", t != civ.None
		},
		completed: func(ctx *Context, m *Manager, q *Assigned) bool {
			assignee := ctx.Reg.Get(q.Assignee)
			return assignee != nil && assignee.Denounced[civ.ID(q.Data1)]
		},
		obsolete: func(ctx *Context, m *Manager, q *Assigned) bool {
			// The grievance lapses when the war pseudo-quest ends.
			target := ctx.Reg.Get(civ.ID(q.Data1))
			if target == nil || target.Defeated {
				return true
			}
			_, warOngoing := m.WarTrackers[target.ID]
			return !warOngoing
		},
	},

	ruleset.QuestSpreadReligion: {
		valid: func(ctx *Context, m *Manager, cs, ch *civ.Civilization) bool {
			return ch.Religion != "" && cs.Religion != ch.Religion
		},
		dataFor: func(ctx *Context, m *Manager, cs, ch *civ.Civilization) (string, string, bool) {
			return ch.Religion, "", ch.Religion != ""
		},
		completed: func(ctx *Context, m *Manager, q *Assigned) bool {
			assigner := ctx.Reg.Get(civ.ID(q.Assigner))
			return assigner != nil && assigner.Religion == q.Data1
		},
	},
}

// statDelta builds a contest score function over a civ-stat accessor.
func statDelta(stat func(*civ.Civilization) float64) func(ctx *Context, q *Assigned) float64 {
	return func(ctx *Context, q *Assigned) float64 {
		assignee := ctx.Reg.Get(q.Assignee)
		if assignee == nil {
			return 0
		}
		baseline, _ := strconv.ParseFloat(q.Data1, 64)
		return stat(assignee) - baseline
	}
}

// nearestCamp finds the closest barbarian encampment within quest range of
// the city-state's capital. Deterministic: ties break by coordinate.
func nearestCamp(ctx *Context, cs *civ.Civilization) *worldmap.Tile {
	capital := ctx.Map.CapitalOf(string(cs.ID))
	if capital == nil {
		return nil
	}

	var best *worldmap.Tile
	bestDist := ruleset.BarbarianCampSearchRadius + 1
	for _, tile := range sortedTiles(ctx.Map) {
		if tile.Improvement != worldmap.ImprovementBarbarianCamp {
			continue
		}
		d := worldmap.Distance(tile.Coord, capital.Center)
		if d < bestDist {
			best = tile
			bestDist = d
		}
	}
	return best
}

func campCoord(q *Assigned) (worldmap.HexCoord, bool) {
	qq, err1 := strconv.Atoi(q.Data1)
	rr, err2 := strconv.Atoi(q.Data2)
	if err1 != nil || err2 != nil {
		return worldmap.HexCoord{}, false
	}
	return worldmap.HexCoord{Q: qq, R: rr}, true
}

// sortedTiles returns map tiles in coordinate order for deterministic scans.
func sortedTiles(m *worldmap.Map) []*worldmap.Tile {
	out := make([]*worldmap.Tile, 0, len(m.Tiles))
	for _, t := range m.Tiles {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Coord.Q != out[j].Coord.Q {
			return out[i].Coord.Q < out[j].Coord.Q
		}
		return out[i].Coord.R < out[j].Coord.R
	})
	return out
}

// firstUnbuiltWonder returns the first catalog wonder no civ has built.
func firstUnbuiltWonder(ctx *Context) string {
	for _, w := range ruleset.Wonders {
		built := false
		for _, c := range ctx.Reg.All() {
			if c.BuiltWonders[w] {
				built = true
				break
			}
		}
		if !built {
			return w
		}
	}
	return ""
}

// firstMissing returns the first table entry absent from the civ's set.
func firstMissing(table []string, have map[string]bool) string {
	for _, entry := range table {
		if !have[entry] {
			return entry
		}
	}
	return ""
}

// firstUnfoundWonder returns the first natural wonder present on the map
// that the civ has not yet found.
func firstUnfoundWonder(ctx *Context, c *civ.Civilization) string {
	present := make(map[string]bool)
	for _, t := range ctx.Map.Tiles {
		if t.NaturalWonder != "" {
			present[t.NaturalWonder] = true
		}
	}
	for _, w := range ruleset.NaturalWonders {
		if present[w] && !c.NaturalWondersFound[w] {
			return w
		}
	}
	return ""
}

// unmetMajor returns the first living major the challenger has not met.
func unmetMajor(ctx *Context, ch *civ.Civilization) civ.ID {
	for _, other := range ctx.Reg.Majors() {
		if other.ID != ch.ID && !ctx.Led.Knows(ch.ID, other.ID) {
			return other.ID
		}
	}
	return civ.None
}

// conquerTarget returns the first other living city-state the challenger
// knows and does not protect.
func conquerTarget(ctx *Context, cs, ch *civ.Civilization) civ.ID {
	for _, other := range ctx.Reg.CityStates() {
		if other.ID == cs.ID || !ctx.Led.Knows(ch.ID, other.ID) {
			continue
		}
		if rel := ctx.Led.Rel(other.ID, ch.ID); rel != nil && rel.Status == diplomacy.Protector {
			continue
		}
		return other.ID
	}
	return civ.None
}

// bullyTarget returns the first other living city-state the challenger
// knows and is at peace with.
func bullyTarget(ctx *Context, cs, ch *civ.Civilization) civ.ID {
	for _, other := range ctx.Reg.CityStates() {
		if other.ID == cs.ID || !ctx.Led.Knows(ch.ID, other.ID) {
			continue
		}
		if ctx.Led.AtWar(ch.ID, other.ID) {
			continue
		}
		return other.ID
	}
	return civ.None
}

// denounceTarget returns the attacker of an active war pseudo-quest the
// challenger knows and is not itself.
func denounceTarget(ctx *Context, m *Manager, ch *civ.Civilization) civ.ID {
	var attackers []civ.ID
	for id := range m.WarTrackers {
		attackers = append(attackers, id)
	}
	sort.Slice(attackers, func(i, j int) bool { return attackers[i] < attackers[j] })

	for _, id := range attackers {
		if id == ch.ID || !ctx.Led.Knows(ch.ID, id) {
			continue
		}
		if attacker := ctx.Reg.Get(id); attacker != nil && attacker.Alive() {
			return id
		}
	}
	return civ.None
}
