package diplomacy

import (
	"strings"
	"testing"

	"github.com/talgya/citystates/internal/civ"
	"github.com/talgya/citystates/internal/ruleset"
	"github.com/talgya/citystates/internal/worldmap"
)

func TestNoAllyBelowThreshold(t *testing.T) {
	f := newFixture(t, 10)
	f.addMajor(t, "rome", worldmap.HexCoord{Q: -5, R: 0})
	cs := f.addCityState(t, "geneva", worldmap.HexCoord{Q: 5, R: 0})

	f.setInfluence(t, cs.ID, "rome", ruleset.AllianceInfluence-1)
	if notes := UpdateAlly(f.reg, f.led, f.m, cs); len(notes) != 0 {
		t.Fatalf("got %d notifications, want none", len(notes))
	}
	if cs.AllyID != civ.None {
		t.Errorf("ally = %q, want none", cs.AllyID)
	}
}

func TestAllyAtExactThreshold(t *testing.T) {
	f := newFixture(t, 10)
	f.addMajor(t, "rome", worldmap.HexCoord{Q: -5, R: 0})
	cs := f.addCityState(t, "geneva", worldmap.HexCoord{Q: 5, R: 0})

	f.setInfluence(t, cs.ID, "rome", ruleset.AllianceInfluence)
	notes := UpdateAlly(f.reg, f.led, f.m, cs)
	if cs.AllyID != "rome" {
		t.Fatalf("ally = %q, want rome", cs.AllyID)
	}
	if len(notes) != 1 || notes[0].Target != "rome" {
		t.Errorf("notes = %+v, want one gained-ally note to rome", notes)
	}

	// Second call with no change is a no-op.
	if notes := UpdateAlly(f.reg, f.led, f.m, cs); len(notes) != 0 {
		t.Errorf("repeat call emitted %d notifications", len(notes))
	}
}

func TestTieNeverFlipsIncumbent(t *testing.T) {
	f := newFixture(t, 10)
	f.addMajor(t, "rome", worldmap.HexCoord{Q: -5, R: 0})
	f.addMajor(t, "egypt", worldmap.HexCoord{Q: -5, R: 5})
	cs := f.addCityState(t, "geneva", worldmap.HexCoord{Q: 5, R: 0})

	f.setInfluence(t, cs.ID, "rome", 80)
	UpdateAlly(f.reg, f.led, f.m, cs)
	if cs.AllyID != "rome" {
		t.Fatalf("setup: ally = %q, want rome", cs.AllyID)
	}

	f.setInfluence(t, cs.ID, "egypt", 80)
	UpdateAlly(f.reg, f.led, f.m, cs)
	if cs.AllyID != "rome" {
		t.Errorf("exact tie flipped ally to %q", cs.AllyID)
	}
}

func TestHigherInfluenceFlipsAlly(t *testing.T) {
	f := newFixture(t, 10)
	f.addMajor(t, "rome", worldmap.HexCoord{Q: -5, R: 0})
	f.addMajor(t, "egypt", worldmap.HexCoord{Q: -5, R: 5})
	cs := f.addCityState(t, "geneva", worldmap.HexCoord{Q: 5, R: 0})

	f.setInfluence(t, cs.ID, "rome", 80)
	UpdateAlly(f.reg, f.led, f.m, cs)

	f.setInfluence(t, cs.ID, "egypt", 81)
	notes := UpdateAlly(f.reg, f.led, f.m, cs)
	if cs.AllyID != "egypt" {
		t.Fatalf("ally = %q, want egypt", cs.AllyID)
	}

	var lost, gained bool
	for _, n := range notes {
		if n.Target == "rome" && strings.Contains(n.Text, "lost") {
			lost = true
		}
		if n.Target == "egypt" && strings.Contains(n.Text, "allied") {
			gained = true
		}
	}
	if !lost || !gained {
		t.Errorf("notes = %+v, want lost-ally and gained-ally", notes)
	}
}

func TestNewAllyWarsAreJoined(t *testing.T) {
	f := newFixture(t, 10)
	rome := f.addMajor(t, "rome", worldmap.HexCoord{Q: -5, R: 0})
	f.addMajor(t, "egypt", worldmap.HexCoord{Q: -5, R: 5})
	cs := f.addCityState(t, "geneva", worldmap.HexCoord{Q: 5, R: 0})

	f.led.DeclareWar(rome.ID, "egypt")

	f.setInfluence(t, cs.ID, "rome", 70)
	notes := UpdateAlly(f.reg, f.led, f.m, cs)
	if cs.AllyID != "rome" {
		t.Fatalf("ally = %q, want rome", cs.AllyID)
	}
	if !f.led.AtWar(cs.ID, "egypt") {
		t.Error("city-state did not join its new ally's war")
	}

	var declared bool
	for _, n := range notes {
		if n.Target == "egypt" && strings.Contains(n.Text, "declared war") {
			declared = true
		}
	}
	if !declared {
		t.Errorf("notes = %+v, want war declaration to egypt", notes)
	}
}

func TestWarJoinForcesContact(t *testing.T) {
	f := newFixture(t, 10)
	rome := f.addMajor(t, "rome", worldmap.HexCoord{Q: -5, R: 0})
	cs := f.addCityState(t, "geneva", worldmap.HexCoord{Q: 5, R: 0})

	// Babylon has never met the city-state.
	babylon := &civ.Civilization{ID: "babylon", Name: "babylon"}
	f.reg.Add(babylon)
	f.led.Contact(rome.ID, babylon.ID)
	f.led.DeclareWar(rome.ID, babylon.ID)

	f.setInfluence(t, cs.ID, "rome", 70)
	UpdateAlly(f.reg, f.led, f.m, cs)

	if !f.led.Knows(cs.ID, babylon.ID) {
		t.Error("unmet enemy was not force-contacted")
	}
	if !f.led.AtWar(cs.ID, babylon.ID) {
		t.Error("city-state not at war with the unmet enemy")
	}
}

func TestDefeatedAllyIsDropped(t *testing.T) {
	f := newFixture(t, 10)
	rome := f.addMajor(t, "rome", worldmap.HexCoord{Q: -5, R: 0})
	cs := f.addCityState(t, "geneva", worldmap.HexCoord{Q: 5, R: 0})

	f.setInfluence(t, cs.ID, "rome", 90)
	UpdateAlly(f.reg, f.led, f.m, cs)
	if cs.AllyID != "rome" {
		t.Fatalf("setup: ally = %q, want rome", cs.AllyID)
	}

	rome.Defeated = true
	UpdateAlly(f.reg, f.led, f.m, cs)
	if cs.AllyID != civ.None {
		t.Errorf("ally = %q after ally's defeat, want none", cs.AllyID)
	}
}
