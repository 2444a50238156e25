package diplomacy

import (
	"testing"

	"github.com/talgya/citystates/internal/civ"
	"github.com/talgya/citystates/internal/ruleset"
	"github.com/talgya/citystates/internal/worldmap"
)

func strongUnits(at worldmap.HexCoord) []civ.Unit {
	return []civ.Unit{
		{Name: "Swordsman", Force: 30, Military: true, Pos: at},
		{Name: "Swordsman", Force: 30, Military: true, Pos: at},
	}
}

func TestTributeGuards(t *testing.T) {
	f := newFixture(t, 20)
	rome := f.addMajor(t, "rome", worldmap.HexCoord{Q: -8, R: 0})
	egypt := f.addMajor(t, "egypt", worldmap.HexCoord{Q: -8, R: 8})

	terms := TributeModifiers(f.reg, f.led, f.m, rome, egypt, false, false)
	if len(terms) != 1 || terms[0].Reason != "Major Civ" {
		t.Errorf("major target terms = %+v, want the Major Civ guard", terms)
	}

	// Only majors demand tribute; a city-state demander is rejected outright.
	geneva := f.addCityState(t, "geneva", worldmap.HexCoord{Q: 8, R: 0})
	tyre := f.addCityState(t, "tyre", worldmap.HexCoord{Q: 8, R: -8})
	terms = TributeModifiers(f.reg, f.led, f.m, geneva, tyre, false, false)
	if len(terms) != 1 || terms[0].Reason != "Not a Major Civ" {
		t.Errorf("city-state demander terms = %+v, want the Not a Major Civ guard", terms)
	}

	// City-state without cities.
	homeless := &civ.Civilization{ID: "lost", Name: "lost", CityState: true}
	f.reg.Add(homeless)
	f.led.Contact(homeless.ID, rome.ID)
	terms = TributeModifiers(f.reg, f.led, f.m, homeless, rome, false, false)
	if len(terms) != 1 || terms[0].Reason != "No Cities" {
		t.Errorf("homeless terms = %+v, want the No Cities guard", terms)
	}
}

func TestStrongDemanderSucceeds(t *testing.T) {
	f := newFixture(t, 20)
	csAt := worldmap.HexCoord{Q: 8, R: 0}
	rome := f.addMajor(t, "rome", worldmap.HexCoord{Q: -8, R: 0})
	cs := f.addCityState(t, "geneva", csAt)

	rome.Units = strongUnits(csAt)

	// Sole major: rank term 100. Capital pop 1: defense 18, ratio
	// 60/18 > 3: local force 100. Total -110 + 100 + 100 = 90.
	if got := TributeWillingness(f.reg, f.led, f.m, cs, rome, false); got != 90 {
		t.Errorf("willingness = %d, want 90", got)
	}
}

func TestDistantDemanderFails(t *testing.T) {
	f := newFixture(t, 20)
	rome := f.addMajor(t, "rome", worldmap.HexCoord{Q: -8, R: 0})
	cs := f.addCityState(t, "geneva", worldmap.HexCoord{Q: 8, R: 0})

	// Army at home, far outside the evaluation radius.
	rome.Units = strongUnits(worldmap.HexCoord{Q: -8, R: 0})

	// Rank 100, local force 0: total -110 + 100 + 0 = -10.
	if got := TributeWillingness(f.reg, f.led, f.m, cs, rome, false); got != -10 {
		t.Errorf("willingness = %d, want -10", got)
	}
}

func TestHopelessDemandSkipsMilitaryTerms(t *testing.T) {
	f := newFixture(t, 20)
	rome := f.addMajor(t, "rome", worldmap.HexCoord{Q: -8, R: 0})
	cs := f.addCityState(t, "geneva", worldmap.HexCoord{Q: 8, R: 0})

	// Worker demand from a pop-1 capital: -110 - 30 - 300, below -200
	// before any military term is computed.
	terms := TributeModifiers(f.reg, f.led, f.m, cs, rome, true, false)
	for _, term := range terms {
		if term.Reason == "Military rank" || term.Reason == "Military near city-state" {
			t.Errorf("hopeless demand computed %q", term.Reason)
		}
	}

	// forceFull bypasses the early exits for UI breakdowns.
	full := TributeModifiers(f.reg, f.led, f.m, cs, rome, true, true)
	var sawRank, sawLocal bool
	for _, term := range full {
		switch term.Reason {
		case "Military rank":
			sawRank = true
		case "Military near city-state":
			sawLocal = true
		}
	}
	if !sawRank || !sawLocal {
		t.Errorf("forceFull terms = %+v, want both military terms", full)
	}
}

func TestRecentTributeMemory(t *testing.T) {
	f := newFixture(t, 20)
	csAt := worldmap.HexCoord{Q: 8, R: 0}
	rome := f.addMajor(t, "rome", worldmap.HexCoord{Q: -8, R: 0})
	cs := f.addCityState(t, "geneva", csAt)
	rome.Units = strongUnits(csAt)

	base := TributeWillingness(f.reg, f.led, f.m, cs, rome, false)

	// Fresh flag: reads as very recent, effectively forbidding a repeat.
	cs.SetFlag(civ.FlagRecentlyBullied, ruleset.RecentlyBulliedTurns)
	veryRecent := TributeWillingness(f.reg, f.led, f.m, cs, rome, false)
	if veryRecent >= base {
		t.Fatalf("very recent tribute did not lower willingness: %d -> %d", base, veryRecent)
	}

	// Decay the flag to the tail end of the countdown: milder penalty.
	cs.SetFlag(civ.FlagRecentlyBullied, 5)
	faded := TributeWillingness(f.reg, f.led, f.m, cs, rome, false)
	if faded != base-40 {
		t.Errorf("faded memory willingness = %d, want %d", faded, base-40)
	}
	if veryRecent >= faded {
		t.Errorf("very recent (%d) should be lower than faded (%d)", veryRecent, faded)
	}
}

func TestGoldGainedByTribute(t *testing.T) {
	tests := []struct {
		speed ruleset.Speed
		turn  int
		want  int
	}{
		{ruleset.SpeedStandard, 0, 50},
		{ruleset.SpeedStandard, 9, 50},
		{ruleset.SpeedStandard, 10, 55},
		{ruleset.SpeedStandard, 100, 100},
		{ruleset.SpeedQuick, 0, 30},
		{ruleset.SpeedQuick, 10, 40},
		{ruleset.SpeedEpic, 0, 75},
	}
	for _, tt := range tests {
		if got := GoldGainedByTribute(tt.speed, tt.turn); got != tt.want {
			t.Errorf("GoldGainedByTribute(%s, %d) = %d, want %d", tt.speed.Name, tt.turn, got, tt.want)
		}
	}
}

func TestTributeGoldSideEffects(t *testing.T) {
	f := newFixture(t, 20)
	csAt := worldmap.HexCoord{Q: 8, R: 0}
	rome := f.addMajor(t, "rome", worldmap.HexCoord{Q: -8, R: 0})
	egypt := f.addMajor(t, "egypt", worldmap.HexCoord{Q: -8, R: 8})
	cs := f.addCityState(t, "geneva", csAt)

	// Egypt protects the city-state.
	f.setInfluence(t, cs.ID, egypt.ID, 10)
	if !AddProtector(f.led, cs, egypt) {
		t.Fatal("setup: pledge failed")
	}

	startGold := rome.Gold
	gold, notes := TributeGold(f.reg, f.led, f.m, cs, rome, 0, ruleset.SpeedStandard, civ.NopPopupSink{}, NopQuestReactor{})

	if rome.Gold != startGold+gold {
		t.Errorf("demander gold = %d, want %d", rome.Gold, startGold+gold)
	}
	if got := f.led.Rel(cs.ID, rome.ID).Influence; got != -ruleset.TributeGoldInfluenceCost {
		t.Errorf("influence = %.0f, want %.0f", got, -ruleset.TributeGoldInfluenceCost)
	}
	if !cs.HasFlag(civ.FlagRecentlyBullied) {
		t.Error("recently-bullied flag not set")
	}
	if !f.led.Rel(cs.ID, rome.ID).HasFlag(FlagBullied) {
		t.Error("per-pair bullied flag not set")
	}

	// The protector took a diplomatic hit and was told.
	protRel := f.led.Rel(egypt.ID, rome.ID)
	if protRel.Modifiers[ModBulliedProtectedMinor] != ruleset.PenaltyBulliedProtected {
		t.Errorf("protector modifier = %v, want %v", protRel.Modifiers[ModBulliedProtectedMinor], ruleset.PenaltyBulliedProtected)
	}
	var protectorTold bool
	for _, n := range notes {
		if n.Target == egypt.ID {
			protectorTold = true
		}
	}
	if !protectorTold {
		t.Errorf("notes = %+v, want a protector notification", notes)
	}
}

func TestTributeWorkerSpawnsWorker(t *testing.T) {
	f := newFixture(t, 20)
	csAt := worldmap.HexCoord{Q: 8, R: 0}
	rome := f.addMajor(t, "rome", worldmap.HexCoord{Q: -8, R: 0})
	cs := f.addCityState(t, "geneva", csAt)

	TributeWorker(f.reg, f.led, f.m, cs, rome, civ.NopPopupSink{}, NopQuestReactor{})

	if len(rome.Units) != 1 || rome.Units[0].Name != "Worker" || rome.Units[0].Military {
		t.Fatalf("units = %+v, want one civilian worker", rome.Units)
	}
	if rome.Units[0].Pos != csAt {
		t.Errorf("worker spawned at %v, want the capital %v", rome.Units[0].Pos, csAt)
	}
	if got := f.led.Rel(cs.ID, rome.ID).Influence; got != -ruleset.TributeWorkerInfluence {
		t.Errorf("influence = %.0f, want %.0f", got, -ruleset.TributeWorkerInfluence)
	}
}
