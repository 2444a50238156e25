package diplomacy

import (
	"fmt"

	"github.com/talgya/citystates/internal/civ"
	"github.com/talgya/citystates/internal/ruleset"
	"github.com/talgya/citystates/internal/worldmap"
)

// UpdateAlly recomputes the city-state's ally from current influence and
// applies the consequences of a change: notifications to the old and new
// ally, the annex-cooldown flag for allies with the matching unique, and —
// the important part — the city-state joining every war the new ally is
// fighting, forcing first contact where needed. All of that fires only on
// an actual ally change; calling this twice in a turn is a no-op the second
// time.
//
// Returns the notifications emitted by the transition; the caller forwards
// them to its sink.
func UpdateAlly(reg *civ.Registry, led *Ledger, m *worldmap.Map, cs *civ.Civilization) []civ.Notification {
	if !cs.CityState || cs.Defeated {
		return nil
	}

	oldAllyID := cs.AllyID
	newAllyID := civ.None
	bestInfluence := ruleset.AllianceInfluence - 1

	// The incumbent is checked first so an exact tie never flips the ally.
	if old := reg.Get(oldAllyID); old != nil && old.Major() && old.Alive() {
		if r := led.Rel(cs.ID, oldAllyID); r != nil && r.Influence >= ruleset.AllianceInfluence {
			newAllyID = oldAllyID
			bestInfluence = r.Influence
		}
	}
	for _, r := range led.RelsFrom(cs.ID) {
		other := reg.Get(r.To)
		if other == nil || !other.Major() || !other.Alive() || r.To == oldAllyID {
			continue
		}
		if r.Influence >= ruleset.AllianceInfluence && r.Influence > bestInfluence {
			newAllyID = r.To
			bestInfluence = r.Influence
		}
	}

	if newAllyID == oldAllyID {
		return nil
	}
	cs.AllyID = newAllyID

	var loc *worldmap.HexCoord
	if capital := m.CapitalOf(string(cs.ID)); capital != nil {
		c := capital.Center
		loc = &c
	}

	var out []civ.Notification
	if oldAllyID != civ.None {
		out = append(out, civ.Notification{
			Target:   oldAllyID,
			Text:     fmt.Sprintf("We have lost our alliance with %s", cs.Name),
			Location: loc,
			Icon:     string(cs.ID),
		})
	}

	newAlly := reg.Get(newAllyID)
	if newAlly == nil {
		return out
	}

	out = append(out, civ.Notification{
		Target:   newAllyID,
		Text:     fmt.Sprintf("We are now allied with %s", cs.Name),
		Location: loc,
		Icon:     string(cs.ID),
	})

	// An ally with the annex unique may buy the city-state after a cooldown.
	if newAlly.HasBonus(civ.BonusAnnexCityState) {
		led.Rel(cs.ID, newAllyID).SetFlag(FlagAnnexCooldown, ruleset.AnnexCooldownTurns)
	}

	// Join every war the new ally is currently fighting. Unmet enemies are
	// force-contacted and immediately at war.
	for _, allyRel := range led.RelsFrom(newAllyID) {
		if allyRel.Status != War || allyRel.To == cs.ID {
			continue
		}
		enemy := reg.Get(allyRel.To)
		if enemy == nil || !enemy.Alive() {
			continue
		}
		if led.AtWar(cs.ID, enemy.ID) {
			continue
		}
		if !led.Knows(cs.ID, enemy.ID) {
			led.Contact(cs.ID, enemy.ID)
			out = append(out, civ.Notification{
				Target: enemy.ID,
				Text:   fmt.Sprintf("You have encountered %s", cs.Name),
				Icon:   string(cs.ID),
			})
		}
		led.DeclareWar(cs.ID, enemy.ID)
		out = append(out, civ.Notification{
			Target:   enemy.ID,
			Text:     fmt.Sprintf("%s has declared war on you as an ally of %s", cs.Name, newAlly.Name),
			Location: loc,
			Icon:     string(cs.ID),
		})
	}

	return out
}
