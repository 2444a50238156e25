package diplomacy

import (
	"fmt"

	"github.com/talgya/citystates/internal/civ"
	"github.com/talgya/citystates/internal/entropy"
	"github.com/talgya/citystates/internal/ruleset"
	"github.com/talgya/citystates/internal/worldmap"
)

// QuestReactor receives the event hooks the quest engine exposes to the
// diplomatic layer. The engine wires its quest managers behind this
// interface so this package never imports the quest package.
type QuestReactor interface {
	CityStateBullied(cityState, bully civ.ID)
	CityStateAttacked(cityState, attacker civ.ID)
	CityStateConquered(cityState, attacker civ.ID)
}

// NopQuestReactor ignores every hook. Test double and wiring default.
type NopQuestReactor struct{}

func (NopQuestReactor) CityStateBullied(civ.ID, civ.ID)   {}
func (NopQuestReactor) CityStateAttacked(civ.ID, civ.ID)  {}
func (NopQuestReactor) CityStateConquered(civ.ID, civ.ID) {}

// CanPledgeProtection reports whether the major may pledge to protect the
// city-state: they must have met, be at peace, not already be a protector,
// carry at least the minimum influence, and be past any withdraw cooldown.
func CanPledgeProtection(led *Ledger, cs, major *civ.Civilization) bool {
	if !cs.CityState || !major.Major() || cs.Defeated || major.Defeated {
		return false
	}
	rel := led.Rel(cs.ID, major.ID)
	if rel == nil {
		return false
	}
	if led.AtWar(cs.ID, major.ID) {
		return false
	}
	if rel.Status == Protector {
		return false
	}
	if rel.Influence < ruleset.MinInfluenceToPledge {
		return false
	}
	if rel.HasFlag(FlagRecentlyWithdrew) {
		return false
	}
	return true
}

// AddProtector establishes a protector pact. Returns false when the
// eligibility gates fail; nothing is mutated in that case.
func AddProtector(led *Ledger, cs, major *civ.Civilization) bool {
	if !CanPledgeProtection(led, cs, major) {
		return false
	}
	rel := led.Rel(cs.ID, major.ID)
	rel.Status = Protector
	rel.SetFlag(FlagRecentlyPledged, ruleset.PledgeCooldown)
	return true
}

// CanWithdrawProtection reports whether the major may withdraw: they must
// currently protect the city-state and be past the pledge cooldown.
func CanWithdrawProtection(led *Ledger, cs, major *civ.Civilization) bool {
	rel := led.Rel(cs.ID, major.ID)
	if rel == nil || rel.Status != Protector {
		return false
	}
	return !rel.HasFlag(FlagRecentlyPledged)
}

// RemoveProtector ends a protector pact. A voluntary withdrawal costs
// influence and starts the re-pledge cooldown; a forced removal (war,
// defeat) skips both. Returns false if nothing was removed.
func RemoveProtector(led *Ledger, cs, major *civ.Civilization, forced bool) bool {
	rel := led.Rel(cs.ID, major.ID)
	if rel == nil || rel.Status != Protector {
		return false
	}
	if !forced && !CanWithdrawProtection(led, cs, major) {
		return false
	}
	rel.Status = Peace
	if !forced {
		rel.AddInfluence(-ruleset.WithdrawInfluenceCost)
		rel.SetFlag(FlagRecentlyWithdrew, ruleset.WithdrawCooldown)
	}
	return true
}

// OnBullied reacts to a tribute demand against the city-state: every
// protector that knows the bully takes a diplomatic stand (smaller penalty
// for repeat offences inside the memory window, but the window resets),
// the bully is barred from new quests for a while, and the quest system is
// told so other city-states hear of it.
func OnBullied(reg *civ.Registry, led *Ledger, m *worldmap.Map, cs, bully *civ.Civilization, popups civ.PopupSink, quests QuestReactor) []civ.Notification {
	var out []civ.Notification

	for _, protector := range led.ProtectorsOf(reg, cs.ID) {
		if protector.ID == bully.ID || !led.Knows(protector.ID, bully.ID) {
			continue
		}
		rel := led.Rel(protector.ID, bully.ID)
		penalty := ruleset.PenaltyBulliedProtected
		if rel.GetFlag(FlagRememberBullied) > ruleset.RepeatOffenceWindow {
			penalty = ruleset.PenaltyBulliedRepeat
		}
		rel.AddModifier(ModBulliedProtectedMinor, penalty)
		rel.SetFlag(FlagRememberBullied, ruleset.RememberBulliedTurns)

		if protector.Human {
			popups.RaisePopup(protector.ID, civ.AlertBulliedProtectedMinor, fmt.Sprintf("%s;%s", cs.ID, bully.ID))
		} else {
			out = append(out, civ.Notification{
				Target: protector.ID,
				Text:   fmt.Sprintf("%s has demanded tribute from %s, a city-state under your protection", bully.Name, cs.Name),
				Icon:   string(bully.ID),
			})
		}
	}

	if rel := led.Rel(cs.ID, bully.ID); rel != nil {
		rel.SetFlag(FlagBullied, ruleset.BulliedQuestBlockTurns)
	}

	quests.CityStateBullied(cs.ID, bully.ID)
	return out
}

// OnAttacked reacts to a declaration of war against the city-state:
// protector penalties as for bullying but harsher, a wariness cascade over
// the whole city-state world keyed to the attacker's record and proximity,
// the unit-gift reminder, and the war-with-major pseudo-quest.
func OnAttacked(reg *civ.Registry, led *Ledger, m *worldmap.Map, cs, attacker *civ.Civilization, rng *entropy.Source, popups civ.PopupSink, quests QuestReactor) []civ.Notification {
	var out []civ.Notification

	attacker.AttacksOnCityStates++

	for _, protector := range led.ProtectorsOf(reg, cs.ID) {
		if protector.ID == attacker.ID || !led.Knows(protector.ID, attacker.ID) {
			continue
		}
		rel := led.Rel(protector.ID, attacker.ID)
		penalty := ruleset.PenaltyAttackedProtected
		if rel.GetFlag(FlagRememberAttacked) > ruleset.RepeatOffenceWindow {
			penalty = ruleset.PenaltyAttackedRepeat
		}
		rel.AddModifier(ModAttackedProtectedMinor, penalty)
		rel.SetFlag(FlagRememberAttacked, ruleset.RememberAttackedTurns)

		if protector.Human {
			popups.RaisePopup(protector.ID, civ.AlertAttackedProtectedMinor, fmt.Sprintf("%s;%s", cs.ID, attacker.ID))
		} else {
			out = append(out, civ.Notification{
				Target: protector.ID,
				Text:   fmt.Sprintf("%s has attacked %s, a city-state under your protection", attacker.Name, cs.Name),
				Icon:   string(attacker.ID),
			})
		}
	}

	// The victim's own wariness depends only on the attacker's record.
	if rel := led.Rel(cs.ID, attacker.ID); rel != nil {
		switch {
		case attacker.AttacksOnCityStates >= ruleset.WarinessCertainAttacks:
			rel.Wary = true
		case attacker.AttacksOnCityStates >= ruleset.WarinessCoinflipAttack:
			if rng.Chance(0.5) {
				rel.Wary = true
			}
		}
	}

	// Bystander city-states may take note, the nearer the likelier.
	mild := attacker.AttacksOnCityStates < ruleset.WarinessMildThreshold
	for _, other := range reg.CityStates() {
		if other.ID == cs.ID || !led.Knows(other.ID, attacker.ID) {
			continue
		}
		rel := led.Rel(other.ID, attacker.ID)
		if rel.Wary {
			continue
		}
		chance := ruleset.WarinessBaseChance(ProximityBetween(m, other, attacker), mild)
		if led.AtWar(other.ID, attacker.ID) {
			chance += ruleset.WarinessAtWarBonus
		}
		if rng.Chance(float64(chance) / 100) {
			rel.Wary = true
		}
	}

	// Remind the city-state to ask friends for unit gifts.
	cs.SetFlag(civ.FlagRecentlyAttacked, ruleset.UnitGiftReminderTurns)

	quests.CityStateAttacked(cs.ID, attacker.ID)
	return out
}

// OnDestroyed reacts to the city-state's destruction: a one-time heavier
// penalty for every protector, notified regardless of player type.
func OnDestroyed(reg *civ.Registry, led *Ledger, cs, attacker *civ.Civilization, quests QuestReactor) []civ.Notification {
	var out []civ.Notification

	for _, protector := range led.ProtectorsOf(reg, cs.ID) {
		if protector.ID == attacker.ID || !led.Knows(protector.ID, attacker.ID) {
			continue
		}
		rel := led.Rel(protector.ID, attacker.ID)
		penalty := ruleset.PenaltyDestroyedProtected
		if rel.GetFlag(FlagRememberDestroyed) > ruleset.RepeatOffenceWindow {
			penalty = ruleset.PenaltyDestroyedRepeat
		}
		rel.AddModifier(ModDestroyedProtectedMinor, penalty)
		rel.SetFlag(FlagRememberDestroyed, ruleset.RememberDestroyedTurns)

		out = append(out, civ.Notification{
			Target: protector.ID,
			Text:   fmt.Sprintf("%s has destroyed %s, a city-state under your protection", attacker.Name, cs.Name),
			Icon:   string(attacker.ID),
		})
	}

	quests.CityStateConquered(cs.ID, attacker.ID)
	return out
}

// ProximityBetween classifies how close two civilizations are, from capital
// distance relative to map size. Missing capitals read as Distant.
func ProximityBetween(m *worldmap.Map, a, b *civ.Civilization) ruleset.Proximity {
	capA := m.CapitalOf(string(a.ID))
	capB := m.CapitalOf(string(b.ID))
	if capA == nil || capB == nil {
		return ruleset.ProximityDistant
	}
	d := worldmap.Distance(capA.Center, capB.Center)
	switch {
	case d <= m.Radius/3:
		return ruleset.ProximityNeighbors
	case d <= 2*m.Radius/3:
		return ruleset.ProximityClose
	case d <= m.Radius:
		return ruleset.ProximityFar
	default:
		return ruleset.ProximityDistant
	}
}
