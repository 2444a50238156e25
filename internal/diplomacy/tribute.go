package diplomacy

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/talgya/citystates/internal/civ"
	"github.com/talgya/citystates/internal/ruleset"
	"github.com/talgya/citystates/internal/worldmap"
)

// TributeTerm is one reason/score row of a tribute willingness breakdown.
type TributeTerm struct {
	Reason string
	Value  int
}

func sumTerms(terms []TributeTerm) int {
	total := 0
	for _, t := range terms {
		total += t.Value
	}
	return total
}

// TributeModifiers produces the ordered willingness breakdown for a tribute
// demand against the city-state. The order of terms and the two early exits
// are part of the contract: callers that only need the sign of the total
// (forceFull=false) skip the expensive military terms when the demand is
// already hopeless.
func TributeModifiers(reg *civ.Registry, led *Ledger, m *worldmap.Map, cs, demander *civ.Civilization, demandingWorker, forceFull bool) []TributeTerm {
	if !cs.CityState {
		return []TributeTerm{{"Major Civ", -999}}
	}
	if !demander.Major() {
		return []TributeTerm{{"Not a Major Civ", -999}}
	}
	capital := m.CapitalOf(string(cs.ID))
	if capital == nil || len(m.CitiesOf(string(cs.ID))) == 0 {
		return []TributeTerm{{"No Cities", -999}}
	}

	terms := []TributeTerm{{"Base value", -110}}

	if cs.Personality == civ.Hostile {
		terms = append(terms, TributeTerm{"Has Hostile personality", -10})
	}
	if cs.Type == civ.Militaristic {
		terms = append(terms, TributeTerm{"Is Militaristic", -10})
	}
	if cs.AllyID != civ.None && cs.AllyID != demander.ID {
		terms = append(terms, TributeTerm{"Has another ally", -10})
	}
	if hasOtherProtector(reg, led, cs, demander.ID) {
		terms = append(terms, TributeTerm{"Has another protector", -20})
	}
	if demandingWorker {
		terms = append(terms, TributeTerm{"Demanding a worker", -30})
		if capital.Population < 4 {
			terms = append(terms, TributeTerm{"Demanding a worker from a small city-state", -300})
		}
	}
	// Recently-bullied memory: the first stretch of the countdown reads as
	// "very recently" and all but forbids a second demand.
	if bullied := cs.GetFlag(civ.FlagRecentlyBullied); bullied > 10 {
		terms = append(terms, TributeTerm{"Very recently paid tribute", -300})
	} else if bullied > 0 {
		terms = append(terms, TributeTerm{"Recently paid tribute", -40})
	}
	if rel := led.Rel(cs.ID, demander.ID); rel != nil && rel.Influence < -30 {
		terms = append(terms, TributeTerm{"Influence below -30", -300})
	}

	if sumTerms(terms) < -200 && !forceFull {
		return terms
	}

	// Military rank: the strongest major gets close to +100, the weakest
	// close to zero.
	totalPlayers := len(reg.Majors())
	if totalPlayers > 0 {
		rank := forceRank(reg, demander.ID)
		terms = append(terms, TributeTerm{"Military rank", 100 - (100/totalPlayers)*rank})
	}

	if sumTerms(terms) < -100 && !forceFull {
		return terms
	}

	terms = append(terms, TributeTerm{"Military near city-state", localForceScore(m, cs, demander, capital)})
	return terms
}

// TributeWillingness sums the modifier breakdown; a demand at or above zero
// is expected to succeed.
func TributeWillingness(reg *civ.Registry, led *Ledger, m *worldmap.Map, cs, demander *civ.Civilization, demandingWorker bool) int {
	return sumTerms(TributeModifiers(reg, led, m, cs, demander, demandingWorker, false))
}

func hasOtherProtector(reg *civ.Registry, led *Ledger, cs *civ.Civilization, except civ.ID) bool {
	for _, p := range led.ProtectorsOf(reg, cs.ID) {
		if p.ID != except {
			return true
		}
	}
	return false
}

// forceRank returns the zero-based rank of the civ among living majors
// ordered by descending force.
func forceRank(reg *civ.Registry, id civ.ID) int {
	for i, c := range reg.MajorsByForce() {
		if c.ID == id {
			return i
		}
	}
	return len(reg.Majors())
}

// localForceScore maps the demander-to-defender force ratio around the
// city-state's capital to a fixed score tier.
func localForceScore(m *worldmap.Map, cs, demander *civ.Civilization, capital *worldmap.City) int {
	radius := m.Radius / 4
	if radius < 5 {
		radius = 5
	}
	if radius > 10 {
		radius = 10
	}

	demanderForce := 0.0
	for _, u := range demander.Units {
		if u.Military && worldmap.Distance(u.Pos, capital.Center) <= radius {
			demanderForce += u.Force
		}
	}

	defenderForce := capitalDefenseForce(capital)
	for _, u := range cs.Units {
		if u.Military && worldmap.Distance(u.Pos, capital.Center) <= radius {
			defenderForce += u.Force
		}
	}

	ratio := demanderForce / defenderForce
	switch {
	case ratio > 3:
		return 100
	case ratio > 2:
		return 80
	case ratio > 1.5:
		return 60
	case ratio > 1:
		return 40
	case ratio > 0.5:
		return 20
	default:
		return 0
	}
}

// capitalDefenseForce approximates the garrison value of the capital so the
// ratio is never a division by zero.
func capitalDefenseForce(capital *worldmap.City) float64 {
	return 15 + 3*float64(capital.Population)
}

// GoldGainedByTribute returns the gold a tribute demand yields at the given
// turn: a speed-scaled base floored to a multiple of 5, growing by 5 per
// scaling interval elapsed.
func GoldGainedByTribute(speed ruleset.Speed, turn int) int {
	base := int(float64(ruleset.TributeBaseGold)*speed.GoldGiftModifier) / 5 * 5
	return base + 5*(turn/speed.CityStateTributeScalingInterval)
}

// TributeGold extracts a gold tribute: the demander gains gold, influence
// drops, the city-state remembers being bullied, and protectors react.
// Returns the gold taken and the notifications emitted. Demanding from a
// non-city-state is a caller bug and mutates nothing.
func TributeGold(reg *civ.Registry, led *Ledger, m *worldmap.Map, cs, demander *civ.Civilization, turn int, speed ruleset.Speed, popups civ.PopupSink, quests QuestReactor) (int, []civ.Notification) {
	if !cs.CityState {
		return 0, nil
	}

	gold := GoldGainedByTribute(speed, turn)
	demander.Gold += gold
	if rel := led.Rel(cs.ID, demander.ID); rel != nil {
		rel.AddInfluence(-ruleset.TributeGoldInfluenceCost)
	}
	cs.SetFlag(civ.FlagRecentlyBullied, ruleset.RecentlyBulliedTurns)

	out := OnBullied(reg, led, m, cs, demander, popups, quests)
	out = append(out, civ.Notification{
		Target: cs.ID,
		Text:   fmt.Sprintf("%s has extracted %s gold from us", demander.Name, humanize.Comma(int64(gold))),
		Icon:   string(demander.ID),
	})
	return gold, out
}

// TributeWorker extracts a worker: the demander gains a worker unit, the
// influence penalty is steeper than for gold, and the same bullying
// reactions fire.
func TributeWorker(reg *civ.Registry, led *Ledger, m *worldmap.Map, cs, demander *civ.Civilization, popups civ.PopupSink, quests QuestReactor) []civ.Notification {
	if !cs.CityState {
		return nil
	}

	spawnAt := worldmap.HexCoord{}
	if capital := m.CapitalOf(string(cs.ID)); capital != nil {
		spawnAt = capital.Center
	}
	demander.Units = append(demander.Units, civ.Unit{Name: "Worker", Force: 0, Military: false, Pos: spawnAt})

	if rel := led.Rel(cs.ID, demander.ID); rel != nil {
		rel.AddInfluence(-ruleset.TributeWorkerInfluence)
	}
	cs.SetFlag(civ.FlagRecentlyBullied, ruleset.RecentlyBulliedTurns)

	out := OnBullied(reg, led, m, cs, demander, popups, quests)
	out = append(out, civ.Notification{
		Target: cs.ID,
		Text:   fmt.Sprintf("%s has taken a worker from us", demander.Name),
		Icon:   string(demander.ID),
	})
	return out
}
