package engine

import (
	"github.com/talgya/citystates/internal/civ"
)

// The simulation is the diplomacy package's quest reactor: diplomatic
// incidents fan out to every city-state's quest manager so bully quests,
// war pseudo-quests, and conquest quests observe them.

// CityStateBullied records a tribute extortion against a city-state.
func (s *Simulation) CityStateBullied(victim, bully civ.ID) {
	for _, mgr := range s.managers() {
		mgr.CityStateBullied(victim, bully)
	}
}

// CityStateAttacked opens the victim's war pseudo-quest against the
// attacker and announces it to majors at peace with the victim.
func (s *Simulation) CityStateAttacked(victim, attacker civ.ID) {
	mgr, ok := s.Quests[victim]
	if !ok {
		return
	}
	a := s.Reg.Get(attacker)
	if a == nil {
		return
	}
	s.deliver(mgr.WasAttackedBy(s.questContext(), a), "war")
}

// CityStateConquered is recorded through the registry (Defeated and
// DefeatedBy); conquest quests read that state at the next sweep.
func (s *Simulation) CityStateConquered(victim, conqueror civ.ID) {
	delete(s.Quests, victim)
}
