package ruleset

// Technology prerequisites for route mediums.
const (
	TechForRoads     = "The Wheel"
	TechForRailroads = "Railroads"
)

// Influence thresholds and protection tuning.
const (
	// AllianceInfluence is the minimum influence for ally status.
	AllianceInfluence = 60.0

	// MinInfluenceToPledge: a major below zero influence cannot pledge
	// protection.
	MinInfluenceToPledge = 0.0

	// PledgeCooldown: turns after pledging before it can be withdrawn.
	PledgeCooldown = 10

	// WithdrawCooldown: turns after withdrawing before re-pledging.
	WithdrawCooldown = 20

	// WithdrawInfluenceCost is subtracted when protection is withdrawn.
	WithdrawInfluenceCost = 20.0

	// AnnexCooldownTurns: turns a fresh ally with the annex unique must
	// wait before annexing for gold.
	AnnexCooldownTurns = 5
)

// Tribute tuning.
const (
	TributeBaseGold          = 50  // scaled by speed, floored to multiple of 5
	TributeGoldInfluenceCost = 15.0
	TributeWorkerInfluence   = 50.0
	RecentlyBulliedTurns     = 20 // countdown for the recently-bullied flag
	BulliedQuestBlockTurns   = 20 // per-pair flag blocking new quests
)

// Protector diplomatic penalties and memory windows.
const (
	PenaltyBulliedProtected   = -15.0
	PenaltyBulliedRepeat      = -10.0
	RememberBulliedTurns      = 75
	PenaltyAttackedProtected  = -20.0
	PenaltyAttackedRepeat     = -15.0
	RememberAttackedTurns     = 75
	PenaltyDestroyedProtected = -40.0
	PenaltyDestroyedRepeat    = -10.0
	RememberDestroyedTurns    = 125

	// RepeatOffenceWindow: a remaining memory above this counts the new
	// offence as a repeat (smaller per-incident penalty).
	RepeatOffenceWindow = 50
)

// Quest scheduling.
const (
	QuestFirstPossibleTurn = 30 // no countdown is seeded before this turn

	GlobalQuestMinTurns  = 40 // countdown seed floor (before speed scaling)
	GlobalQuestRandTurns = 25 // additional random spread

	IndividualQuestMinTurns  = 20
	IndividualQuestRandTurns = 25

	// CountdownUnset is the sentinel for an unseeded countdown.
	CountdownUnset = -1

	MaxGlobalQuests               = 1
	MaxIndividualQuestsPerCiv     = 2
	BarbarianCampSearchRadius     = 8   // camps further from the capital are not quest targets
	WarWithMajorReward            = 100 // flat influence for reaching the kill target
	UnitGiftReminderTurns         = 2
	MinimumWarWithMajorKillTarget = 3
)

// Wariness probabilities by proximity tier, in percent. The mild table
// applies when the aggressor has fewer than WarinessMildThreshold recorded
// attacks on city-states.
const (
	WarinessCertainAttacks = 4  // at or above: unconditionally wary
	WarinessCoinflipAttack = 2  // at or above: 50% chance for the victim's peers
	WarinessMildThreshold  = 3  // below: halved proximity table
	WarinessAtWarBonus     = 50 // flat percentage points when already at war
)

// Proximity tiers between civilizations, derived from capital distance.
type Proximity uint8

const (
	ProximityNeighbors Proximity = iota
	ProximityClose
	ProximityFar
	ProximityDistant
)

var proximityNames = [...]string{"Neighbors", "Close", "Far", "Distant"}

func (p Proximity) String() string {
	if int(p) < len(proximityNames) {
		return proximityNames[p]
	}
	return "Unknown"
}

// WarinessBaseChance returns the percent chance of becoming wary for a
// bystander city-state at the given proximity to the aggressor.
func WarinessBaseChance(p Proximity, mildAggressor bool) int {
	base := 0
	switch p {
	case ProximityNeighbors:
		base = 50
	case ProximityClose:
		base = 35
	case ProximityFar:
		base = 20
	case ProximityDistant:
		base = 10
	}
	if mildAggressor {
		base /= 2
	}
	return base
}
