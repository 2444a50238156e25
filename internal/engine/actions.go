package engine

import (
	"fmt"

	"github.com/talgya/citystates/internal/civ"
	"github.com/talgya/citystates/internal/diplomacy"
	"github.com/talgya/citystates/internal/worldmap"
)

// Actions taken by majors against city-states. Each validates, mutates
// ledger and registry state, and feeds the resulting notifications into the
// event log.

func (s *Simulation) pair(a, b civ.ID) (*civ.Civilization, *civ.Civilization, error) {
	ca, cb := s.Reg.Get(a), s.Reg.Get(b)
	if ca == nil || !ca.Alive() {
		return nil, nil, fmt.Errorf("unknown or defeated civ %q", a)
	}
	if cb == nil || !cb.Alive() {
		return nil, nil, fmt.Errorf("unknown or defeated civ %q", b)
	}
	return ca, cb, nil
}

// Meet establishes first contact both ways. If either side is a city-state
// with open war pseudo-quests, the newcomer hears about them.
func (s *Simulation) Meet(a, b civ.ID) error {
	ca, cb, err := s.pair(a, b)
	if err != nil {
		return err
	}
	s.Led.Contact(a, b)

	ctx := s.questContext()
	if mgr, ok := s.Quests[ca.ID]; ok {
		s.deliver(mgr.JustMet(ctx, cb.ID), "war")
	}
	if mgr, ok := s.Quests[cb.ID]; ok {
		s.deliver(mgr.JustMet(ctx, ca.ID), "war")
	}
	return nil
}

// DeclareWarOnCityState opens hostilities: protectors take the diplomatic
// hit, the victim and bystander city-states grow wary, and the victim's war
// pseudo-quest begins.
func (s *Simulation) DeclareWarOnCityState(attacker, cityState civ.ID) error {
	a, cs, err := s.pair(attacker, cityState)
	if err != nil {
		return err
	}
	if !a.Major() || !cs.CityState {
		return fmt.Errorf("war declaration requires a major against a city-state")
	}
	if s.Led.AtWar(attacker, cityState) {
		return nil
	}

	s.Led.DeclareWar(attacker, cityState)
	notes := diplomacy.OnAttacked(s.Reg, s.Led, s.Map, cs, a, s.Rand, s.Popups, s)
	s.deliver(notes, "war")
	return nil
}

// DemandGold extorts gold from an unwilling city-state. Fails when the
// city-state judges the demander too weak.
func (s *Simulation) DemandGold(demander, cityState civ.ID) (int, error) {
	d, cs, err := s.pair(demander, cityState)
	if err != nil {
		return 0, err
	}
	if diplomacy.TributeWillingness(s.Reg, s.Led, s.Map, cs, d, false) <= 0 {
		return 0, fmt.Errorf("%s will not pay tribute to %s", cs.Name, d.Name)
	}
	gold, notes := diplomacy.TributeGold(s.Reg, s.Led, s.Map, cs, d, s.Turn, s.Speed, s.Popups, s)
	s.deliver(notes, "tribute")
	return gold, nil
}

// DemandWorker presses a worker out of a city-state. Harder to pull off
// than a gold demand.
func (s *Simulation) DemandWorker(demander, cityState civ.ID) error {
	d, cs, err := s.pair(demander, cityState)
	if err != nil {
		return err
	}
	if diplomacy.TributeWillingness(s.Reg, s.Led, s.Map, cs, d, true) <= 0 {
		return fmt.Errorf("%s will not give up a worker to %s", cs.Name, d.Name)
	}
	notes := diplomacy.TributeWorker(s.Reg, s.Led, s.Map, cs, d, s.Popups, s)
	s.deliver(notes, "tribute")
	return nil
}

// PledgeProtection makes the major a protector of the city-state.
func (s *Simulation) PledgeProtection(major, cityState civ.ID) error {
	m, cs, err := s.pair(major, cityState)
	if err != nil {
		return err
	}
	if !diplomacy.AddProtector(s.Led, cs, m) {
		return fmt.Errorf("%s cannot pledge to protect %s", m.Name, cs.Name)
	}
	s.Events = append(s.Events, Event{
		Turn:        s.Turn,
		Description: fmt.Sprintf("%s pledged to protect %s", m.Name, cs.Name),
		Category:    "diplomacy",
	})
	return nil
}

// WithdrawProtection ends the pact voluntarily, at an influence cost.
func (s *Simulation) WithdrawProtection(major, cityState civ.ID) error {
	m, cs, err := s.pair(major, cityState)
	if err != nil {
		return err
	}
	if !diplomacy.RemoveProtector(s.Led, cs, m, false) {
		return fmt.Errorf("%s is not in a position to withdraw protection of %s", m.Name, cs.Name)
	}
	s.Events = append(s.Events, Event{
		Turn:        s.Turn,
		Description: fmt.Sprintf("%s withdrew protection of %s", m.Name, cs.Name),
		Category:    "diplomacy",
	})
	return nil
}

// GiftGold transfers gold from a major to a city-state for influence. The
// influence gained scales with game speed; give-gold quests observe it.
func (s *Simulation) GiftGold(donor, cityState civ.ID, amount int) error {
	d, cs, err := s.pair(donor, cityState)
	if err != nil {
		return err
	}
	if amount <= 0 || d.Gold < amount {
		return fmt.Errorf("%s cannot gift %d gold", d.Name, amount)
	}

	d.Gold -= amount
	cs.Gold += amount
	d.GiftGold(cs.ID, amount)
	if rel := s.Led.Rel(cs.ID, d.ID); rel != nil {
		rel.AddInfluence(float64(amount) / 10 * s.Speed.GoldGiftModifier)
	}
	if mgr, ok := s.Quests[cs.ID]; ok {
		mgr.ReceivedGoldGift(d.ID)
	}
	s.Events = append(s.Events, Event{
		Turn:        s.Turn,
		Description: fmt.Sprintf("%s gifted %d gold to %s", d.Name, amount, cs.Name),
		Category:    "diplomacy",
	})
	return nil
}

// Denounce publicly condemns another civ. Denounce quests observe it.
func (s *Simulation) Denounce(by, target civ.ID) error {
	b, t, err := s.pair(by, target)
	if err != nil {
		return err
	}
	if b.Denounced == nil {
		b.Denounced = make(map[civ.ID]bool)
	}
	b.Denounced[t.ID] = true
	s.Events = append(s.Events, Event{
		Turn:        s.Turn,
		Description: fmt.Sprintf("%s denounced %s", b.Name, t.Name),
		Category:    "diplomacy",
	})
	return nil
}

// RecordUnitKill credits a military unit kill to the killer against every
// open war pseudo-quest tracking the unit's owner.
func (s *Simulation) RecordUnitKill(owner, killer civ.ID) {
	ctx := s.questContext()
	for _, mgr := range s.managers() {
		s.deliver(mgr.MilitaryUnitKilledBy(ctx, owner, killer), "war")
	}
}

// ClearBarbarianCamp removes the encampment at the given tile and credits
// the clearer on every camp quest targeting it.
func (s *Simulation) ClearBarbarianCamp(at worldmap.HexCoord, clearer civ.ID) error {
	tile := s.Map.Get(at)
	if tile == nil || tile.Improvement != worldmap.ImprovementBarbarianCamp {
		return fmt.Errorf("no barbarian encampment at %v", at)
	}
	tile.Improvement = ""

	ctx := s.questContext()
	for _, mgr := range s.managers() {
		s.deliver(mgr.BarbarianCampCleared(ctx, at, clearer), "quest")
	}
	return nil
}

// DestroyCityState eliminates a city-state. Its cities pass to the
// conqueror, its protectors remember, and its quest state ends.
func (s *Simulation) DestroyCityState(cityState, by civ.ID) error {
	conqueror, cs, err := s.pair(by, cityState)
	if err != nil {
		return err
	}
	if !cs.CityState {
		return fmt.Errorf("%s is not a city-state", cs.Name)
	}

	cs.Defeated = true
	cs.DefeatedBy = conqueror.ID
	for _, city := range s.Map.CitiesOf(string(cs.ID)) {
		city.Owner = string(conqueror.ID)
		city.Capital = false
	}

	notes := diplomacy.OnDestroyed(s.Reg, s.Led, cs, conqueror, s)
	s.deliver(notes, "war")
	s.CityStateConquered(cs.ID, conqueror.ID)
	s.Events = append(s.Events, Event{
		Turn:        s.Turn,
		Description: fmt.Sprintf("%s has been destroyed by %s", cs.Name, conqueror.Name),
		Category:    "war",
	})
	return nil
}
