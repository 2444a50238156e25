package quest

import (
	"github.com/talgya/citystates/internal/civ"
	"github.com/talgya/citystates/internal/ruleset"
)

// Weight returns the selection weight for a quest as seen by a city-state
// of the given type and personality. A zero weight removes the quest from
// candidacy entirely.
func Weight(name ruleset.QuestName, t civ.CityStateType, p civ.Personality) float64 {
	w := 1.0

	switch t {
	case civ.Cultured:
		switch name {
		case ruleset.QuestContestCulture:
			w *= 3
		case ruleset.QuestConstructWonder, ruleset.QuestAcquireGreatPerson:
			w *= 2
		}
	case civ.Maritime:
		switch name {
		case ruleset.QuestRoute:
			w *= 3
		case ruleset.QuestConnectResource:
			w *= 2
		}
	case civ.Mercantile:
		switch name {
		case ruleset.QuestConnectResource, ruleset.QuestInvest:
			w *= 3
		case ruleset.QuestGiveGold:
			w *= 2
		}
	case civ.Militaristic:
		switch name {
		case ruleset.QuestClearBarbarianCamp:
			w *= 3
		case ruleset.QuestConquerCityState, ruleset.QuestBullyCityState:
			w *= 2
		}
	case civ.Religious:
		switch name {
		case ruleset.QuestContestFaith, ruleset.QuestSpreadReligion:
			w *= 3
		}
	}

	switch p {
	case civ.Friendly:
		switch name {
		case ruleset.QuestGiveGold, ruleset.QuestPledgeToProtect:
			w *= 2
		case ruleset.QuestBullyCityState, ruleset.QuestConquerCityState:
			w *= 0.5
		}
	case civ.Hostile:
		switch name {
		case ruleset.QuestBullyCityState:
			w *= 2
		case ruleset.QuestClearBarbarianCamp, ruleset.QuestDenounceCiv:
			w *= 1.5
		case ruleset.QuestFindNaturalWonder:
			w *= 0.5
		}
	case civ.Irrational:
		// Swings both ways; the table is fixed so replays stay stable.
		switch name {
		case ruleset.QuestConquerCityState, ruleset.QuestFindCiv:
			w *= 2
		case ruleset.QuestInvest, ruleset.QuestContestTechnologies:
			w *= 0.5
		}
	}

	return w
}
