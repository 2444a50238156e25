package diplomacy

import (
	"testing"

	"github.com/talgya/citystates/internal/civ"
	"github.com/talgya/citystates/internal/entropy"
	"github.com/talgya/citystates/internal/ruleset"
	"github.com/talgya/citystates/internal/worldmap"
)

func TestPledgeEligibility(t *testing.T) {
	f := newFixture(t, 12)
	rome := f.addMajor(t, "rome", worldmap.HexCoord{Q: -5, R: 0})
	cs := f.addCityState(t, "geneva", worldmap.HexCoord{Q: 5, R: 0})

	if !CanPledgeProtection(f.led, cs, rome) {
		t.Fatal("baseline pledge should be allowed")
	}

	// Negative influence blocks the pledge.
	f.setInfluence(t, cs.ID, rome.ID, -1)
	if CanPledgeProtection(f.led, cs, rome) {
		t.Error("pledge allowed with negative influence")
	}
	f.setInfluence(t, cs.ID, rome.ID, 0)

	// War blocks the pledge.
	f.led.DeclareWar(cs.ID, rome.ID)
	if CanPledgeProtection(f.led, cs, rome) {
		t.Error("pledge allowed while at war")
	}
	f.led.MakePeace(cs.ID, rome.ID)

	// An unmet major cannot pledge.
	stranger := &civ.Civilization{ID: "babylon", Name: "babylon"}
	f.reg.Add(stranger)
	if CanPledgeProtection(f.led, cs, stranger) {
		t.Error("pledge allowed without contact")
	}
}

func TestPledgeAndWithdrawCooldowns(t *testing.T) {
	f := newFixture(t, 12)
	rome := f.addMajor(t, "rome", worldmap.HexCoord{Q: -5, R: 0})
	cs := f.addCityState(t, "geneva", worldmap.HexCoord{Q: 5, R: 0})

	if !AddProtector(f.led, cs, rome) {
		t.Fatal("pledge failed")
	}
	f.setInfluence(t, cs.ID, rome.ID, 50)
	rel := f.led.Rel(cs.ID, rome.ID)
	if rel.Status != Protector {
		t.Fatalf("status = %v, want Protector", rel.Status)
	}
	if AddProtector(f.led, cs, rome) {
		t.Error("second pledge while already protecting succeeded")
	}

	// Withdrawal is locked for the pledge cooldown.
	if CanWithdrawProtection(f.led, cs, rome) {
		t.Error("withdraw allowed immediately after pledging")
	}
	for i := 0; i < ruleset.PledgeCooldown; i++ {
		f.led.TickFlags()
	}
	if !CanWithdrawProtection(f.led, cs, rome) {
		t.Fatal("withdraw still locked after the cooldown")
	}

	// Voluntary withdrawal costs influence and bars re-pledging.
	before := rel.Influence
	if !RemoveProtector(f.led, cs, rome, false) {
		t.Fatal("withdraw failed")
	}
	if rel.Status != Peace {
		t.Errorf("status = %v after withdrawal, want Peace", rel.Status)
	}
	if rel.Influence != before-ruleset.WithdrawInfluenceCost {
		t.Errorf("influence = %.0f, want %.0f", rel.Influence, before-ruleset.WithdrawInfluenceCost)
	}
	if CanPledgeProtection(f.led, cs, rome) {
		t.Error("re-pledge allowed during withdraw cooldown")
	}
	for i := 0; i < ruleset.WithdrawCooldown; i++ {
		f.led.TickFlags()
	}
	if !CanPledgeProtection(f.led, cs, rome) {
		t.Error("re-pledge still blocked after the withdraw cooldown")
	}
}

func TestForcedRemovalSkipsCosts(t *testing.T) {
	f := newFixture(t, 12)
	rome := f.addMajor(t, "rome", worldmap.HexCoord{Q: -5, R: 0})
	cs := f.addCityState(t, "geneva", worldmap.HexCoord{Q: 5, R: 0})

	AddProtector(f.led, cs, rome)
	rel := f.led.Rel(cs.ID, rome.ID)
	before := rel.Influence

	// Forced removal works even inside the pledge cooldown.
	if !RemoveProtector(f.led, cs, rome, true) {
		t.Fatal("forced removal failed")
	}
	if rel.Influence != before {
		t.Errorf("forced removal changed influence: %.0f -> %.0f", before, rel.Influence)
	}
	if rel.HasFlag(FlagRecentlyWithdrew) {
		t.Error("forced removal set the withdraw cooldown")
	}
}

func TestRepeatOffencePenalties(t *testing.T) {
	f := newFixture(t, 12)
	rome := f.addMajor(t, "rome", worldmap.HexCoord{Q: -5, R: 0})
	egypt := f.addMajor(t, "egypt", worldmap.HexCoord{Q: -5, R: 5})
	cs := f.addCityState(t, "geneva", worldmap.HexCoord{Q: 5, R: 0})

	AddProtector(f.led, cs, egypt)

	OnBullied(f.reg, f.led, f.m, cs, rome, civ.NopPopupSink{}, NopQuestReactor{})
	rel := f.led.Rel(egypt.ID, rome.ID)
	if got := rel.Modifiers[ModBulliedProtectedMinor]; got != ruleset.PenaltyBulliedProtected {
		t.Fatalf("first offence modifier = %v, want %v", got, ruleset.PenaltyBulliedProtected)
	}

	// A second offence inside the memory window costs less.
	OnBullied(f.reg, f.led, f.m, cs, rome, civ.NopPopupSink{}, NopQuestReactor{})
	want := ruleset.PenaltyBulliedProtected + ruleset.PenaltyBulliedRepeat
	if got := rel.Modifiers[ModBulliedProtectedMinor]; got != want {
		t.Fatalf("accumulated modifier = %v, want %v", got, want)
	}

	// Let the memory fade past the repeat window: full penalty again.
	for i := 0; i < ruleset.RememberBulliedTurns-ruleset.RepeatOffenceWindow; i++ {
		f.led.TickFlags()
	}
	OnBullied(f.reg, f.led, f.m, cs, rome, civ.NopPopupSink{}, NopQuestReactor{})
	want += ruleset.PenaltyBulliedProtected
	if got := rel.Modifiers[ModBulliedProtectedMinor]; got != want {
		t.Errorf("post-window modifier = %v, want %v", got, want)
	}
}

func TestVictimWarinessIsCertainForSerialAttackers(t *testing.T) {
	f := newFixture(t, 12)
	rome := f.addMajor(t, "rome", worldmap.HexCoord{Q: -5, R: 0})
	cs := f.addCityState(t, "geneva", worldmap.HexCoord{Q: 5, R: 0})

	rome.AttacksOnCityStates = ruleset.WarinessCertainAttacks - 1
	OnAttacked(f.reg, f.led, f.m, cs, rome, entropy.NewSource(1), civ.NopPopupSink{}, NopQuestReactor{})

	if rome.AttacksOnCityStates != ruleset.WarinessCertainAttacks {
		t.Errorf("attack count = %d, want %d", rome.AttacksOnCityStates, ruleset.WarinessCertainAttacks)
	}
	if !f.led.Rel(cs.ID, rome.ID).Wary {
		t.Error("victim not wary of a serial attacker")
	}
	if !cs.HasFlag(civ.FlagRecentlyAttacked) {
		t.Error("unit-gift reminder flag not set")
	}
}

func TestFirstAttackLeavesVictimCalm(t *testing.T) {
	f := newFixture(t, 12)
	rome := f.addMajor(t, "rome", worldmap.HexCoord{Q: -5, R: 0})
	cs := f.addCityState(t, "geneva", worldmap.HexCoord{Q: 5, R: 0})

	OnAttacked(f.reg, f.led, f.m, cs, rome, entropy.NewSource(1), civ.NopPopupSink{}, NopQuestReactor{})

	// One lifetime attack: below the coin-flip threshold, never wary.
	if f.led.Rel(cs.ID, rome.ID).Wary {
		t.Error("victim wary after the attacker's first ever attack")
	}
}

func TestAttackPenaltyHarsherThanBullying(t *testing.T) {
	if !(ruleset.PenaltyAttackedProtected < ruleset.PenaltyBulliedProtected) {
		t.Errorf("attack penalty %v not harsher than bully penalty %v",
			ruleset.PenaltyAttackedProtected, ruleset.PenaltyBulliedProtected)
	}
	if !(ruleset.PenaltyDestroyedProtected < ruleset.PenaltyAttackedProtected) {
		t.Errorf("destruction penalty %v not harsher than attack penalty %v",
			ruleset.PenaltyDestroyedProtected, ruleset.PenaltyAttackedProtected)
	}
}

func TestOnDestroyedNotifiesHumansToo(t *testing.T) {
	f := newFixture(t, 12)
	rome := f.addMajor(t, "rome", worldmap.HexCoord{Q: -5, R: 0})
	egypt := f.addMajor(t, "egypt", worldmap.HexCoord{Q: -5, R: 5})
	cs := f.addCityState(t, "geneva", worldmap.HexCoord{Q: 5, R: 0})

	egypt.Human = true
	AddProtector(f.led, cs, egypt)

	notes := OnDestroyed(f.reg, f.led, cs, rome, NopQuestReactor{})
	var told bool
	for _, n := range notes {
		if n.Target == egypt.ID {
			told = true
		}
	}
	if !told {
		t.Errorf("notes = %+v, want a notification to the human protector", notes)
	}
	rel := f.led.Rel(egypt.ID, rome.ID)
	if rel.Modifiers[ModDestroyedProtectedMinor] != ruleset.PenaltyDestroyedProtected {
		t.Errorf("modifier = %v, want %v", rel.Modifiers[ModDestroyedProtectedMinor], ruleset.PenaltyDestroyedProtected)
	}
}

func TestProximityTiers(t *testing.T) {
	f := newFixture(t, 12)
	a := f.addMajor(t, "rome", worldmap.HexCoord{Q: -6, R: 0})

	tests := []struct {
		id   string
		at   worldmap.HexCoord
		want ruleset.Proximity
	}{
		{"near", worldmap.HexCoord{Q: -3, R: 0}, ruleset.ProximityNeighbors},
		{"close", worldmap.HexCoord{Q: 1, R: 0}, ruleset.ProximityClose},
		{"far", worldmap.HexCoord{Q: 5, R: 0}, ruleset.ProximityFar},
		{"distant", worldmap.HexCoord{Q: 12, R: 0}, ruleset.ProximityDistant},
	}
	for _, tt := range tests {
		b := f.addCityState(t, tt.id, tt.at)
		if got := ProximityBetween(f.m, a, b); got != tt.want {
			t.Errorf("proximity(%s) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
