// Package ruleset holds the read-only data tables the engine consumes:
// quest definitions, game speeds, technology prerequisites, and the tuning
// constants for influence, tribute, and protection.
package ruleset

// QuestName is the closed set of quest types. Every quest-specific branch in
// the engine switches over this type, so a new quest fails loudly everywhere
// it needs handling instead of silently matching no string.
type QuestName uint8

const (
	QuestRoute QuestName = iota
	QuestClearBarbarianCamp
	QuestConstructWonder
	QuestConnectResource
	QuestAcquireGreatPerson
	QuestConquerCityState
	QuestFindCiv
	QuestFindNaturalWonder
	QuestGiveGold
	QuestPledgeToProtect
	QuestContestCulture
	QuestContestFaith
	QuestContestTechnologies
	QuestInvest
	QuestBullyCityState
	QuestDenounceCiv
	QuestSpreadReligion

	questNameCount // sentinel, keep last
)

var questNames = [...]string{
	"Route",
	"Clear Barbarian Camp",
	"Construct Wonder",
	"Connect Resource",
	"Acquire Great Person",
	"Conquer City State",
	"Find Civilization",
	"Find Natural Wonder",
	"Give Gold",
	"Pledge to Protect",
	"Contest Culture",
	"Contest Faith",
	"Contest Technologies",
	"Invest",
	"Bully City State",
	"Denounce Civilization",
	"Spread Religion",
}

func (n QuestName) String() string {
	if int(n) < len(questNames) {
		return questNames[n]
	}
	return "Unknown"
}

// QuestNameFromString resolves a display name back to its QuestName, for
// save-file loading. The second return is false for unknown names.
func QuestNameFromString(s string) (QuestName, bool) {
	for i, name := range questNames {
		if name == s {
			return QuestName(i), true
		}
	}
	return 0, false
}

// QuestDef is one row of the quest table.
type QuestDef struct {
	Name        QuestName
	Global      bool    // fan-out to all eligible majors vs one target
	MinCivs     int     // global quests need at least this many participants
	Duration    int     // base duration in turns, 0 = never expires
	Influence   float64 // reward on completion or contest victory
	Description string  // notification template; %s slots are quest data
}

// Quests is the full quest catalog, indexed by QuestName.
var Quests = [questNameCount]QuestDef{
	QuestRoute:               {QuestRoute, false, 0, 50, 50, "Connect your capital to %s by road"},
	QuestClearBarbarianCamp:  {QuestClearBarbarianCamp, true, 1, 30, 50, "Destroy the barbarian encampment near %s"},
	QuestConstructWonder:     {QuestConstructWonder, false, 0, 50, 40, "Construct the wonder %s"},
	QuestConnectResource:     {QuestConnectResource, false, 0, 50, 40, "Connect the resource %s to your trade network"},
	QuestAcquireGreatPerson:  {QuestAcquireGreatPerson, false, 0, 50, 40, "Acquire a %s"},
	QuestConquerCityState:    {QuestConquerCityState, false, 0, 50, 80, "Conquer the city-state of %s"},
	QuestFindCiv:             {QuestFindCiv, false, 0, 50, 35, "Find the civilization of %s"},
	QuestFindNaturalWonder:   {QuestFindNaturalWonder, false, 0, 50, 40, "Find %s"},
	QuestGiveGold:            {QuestGiveGold, false, 0, 50, 20, "Give a gold gift to help us recover"},
	QuestPledgeToProtect:     {QuestPledgeToProtect, false, 0, 50, 20, "Pledge to protect us"},
	QuestContestCulture:      {QuestContestCulture, true, 2, 30, 40, "Generate the most culture"},
	QuestContestFaith:        {QuestContestFaith, true, 2, 30, 40, "Generate the most faith"},
	QuestContestTechnologies: {QuestContestTechnologies, true, 2, 30, 40, "Research the most technologies"},
	QuestInvest:              {QuestInvest, true, 2, 30, 40, "Invest the most gold in our city"},
	QuestBullyCityState:      {QuestBullyCityState, false, 0, 50, 40, "Demand tribute from the city-state of %s"},
	QuestDenounceCiv:         {QuestDenounceCiv, false, 0, 50, 40, "Denounce the civilization of %s"},
	QuestSpreadReligion:      {QuestSpreadReligion, false, 0, 50, 40, "Spread your religion %s to our city"},
}

// AllQuestNames returns every quest name in catalog order.
func AllQuestNames() []QuestName {
	out := make([]QuestName, 0, questNameCount)
	for n := QuestName(0); n < questNameCount; n++ {
		out = append(out, n)
	}
	return out
}
