// Package civ provides the civilization data model and the central registry
// that resolves civilization ids to records. Civilizations never hold live
// pointers to each other; cross-civilization state lives in the diplomacy
// ledger keyed by id pairs.
package civ

import "github.com/talgya/citystates/internal/worldmap"

// ID is a stable civilization identifier.
type ID string

// None is the absent civilization id (no ally, no conqueror).
const None ID = ""

// CityStateType is the enumerated trait of a minor civilization.
type CityStateType uint8

const (
	Cultured     CityStateType = iota // Culture bonuses to friends and allies
	Maritime                          // Food bonuses, harbor affinity
	Mercantile                        // Gold and luxury bonuses
	Militaristic                      // Periodic unit gifts
	Religious                         // Faith bonuses
)

// CityStateTypeNames maps the trait to its display name.
var CityStateTypeNames = [...]string{"Cultured", "Maritime", "Mercantile", "Militaristic", "Religious"}

func (t CityStateType) String() string {
	if int(t) < len(CityStateTypeNames) {
		return CityStateTypeNames[t]
	}
	return "Unknown"
}

// Personality shapes how a city-state weighs quests and reacts to majors.
type Personality uint8

const (
	Friendly   Personality = iota // Generous, slow to anger
	Neutral                       // Baseline behavior
	Hostile                       // Aggressive quest weights, easy to offend
	Irrational                    // Unpredictable weight shifts
)

// PersonalityNames maps the personality to its display name.
var PersonalityNames = [...]string{"Friendly", "Neutral", "Hostile", "Irrational"}

func (p Personality) String() string {
	if int(p) < len(PersonalityNames) {
		return PersonalityNames[p]
	}
	return "Unknown"
}

// Bonus is a civ-wide unique ability marker.
type Bonus string

const (
	// BonusAnnexCityState lets its holder annex an allied city-state for
	// gold after a cooldown; a fresh alliance seeds the countdown flag.
	BonusAnnexCityState Bonus = "annex-city-state"
)

// Flag names for civ-wide timed flags (flag → remaining turns).
const (
	// FlagRecentlyBullied is set on a city-state for 20 turns after any
	// major extracts tribute from it.
	FlagRecentlyBullied = "recently-bullied"

	// FlagRecentlyAttacked reminds an attacked city-state to ask friends
	// for unit gifts while it counts down.
	FlagRecentlyAttacked = "recently-attacked"
)

// Unit is a simplified unit record: enough for force evaluation and the
// war-with-major kill targets. Movement and combat are external systems.
type Unit struct {
	Name     string            `json:"name"`
	Force    float64           `json:"force"`
	Military bool              `json:"military"`
	Pos      worldmap.HexCoord `json:"pos"`
}

// Civilization is one polity, major or minor.
type Civilization struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`

	CityState   bool          `json:"city_state"`
	Type        CityStateType `json:"type"`        // meaningful for city-states only
	Personality Personality   `json:"personality"` // meaningful for city-states only

	Human      bool `json:"human"`
	Defeated   bool `json:"defeated"`
	DefeatedBy ID   `json:"defeated_by,omitempty"`

	Gold  int    `json:"gold"`
	Units []Unit `json:"units"`

	// Researched technologies by name.
	Techs map[string]bool `json:"techs"`

	// Civ-wide unique abilities.
	Bonuses map[Bonus]bool `json:"bonuses,omitempty"`

	// Timed civ-wide flags: name → remaining turns. Removed at zero.
	Flags map[string]int `json:"flags,omitempty"`

	// Current ally (city-states only). None when uncommitted.
	AllyID ID `json:"ally_id,omitempty"`

	// Aggregate stat counters consumed by contest quests.
	Culture   float64 `json:"culture"`
	Faith     float64 `json:"faith"`
	TechCount int     `json:"tech_count"`

	// Religion founded (majors) or majority religion (city-states).
	Religion string `json:"religion,omitempty"`

	// Accumulators consumed by quest predicates.
	BuiltWonders        map[string]bool `json:"built_wonders,omitempty"`
	Resources           map[string]bool `json:"resources,omitempty"`
	GreatPeople         map[string]bool `json:"great_people,omitempty"`
	NaturalWondersFound map[string]bool `json:"natural_wonders_found,omitempty"`
	Denounced           map[ID]bool     `json:"denounced,omitempty"`
	GoldGiftedTo        map[ID]int      `json:"gold_gifted_to,omitempty"`

	// Lifetime count of city-states this civ has attacked; drives wariness.
	AttacksOnCityStates int `json:"attacks_on_city_states"`
}

// Major reports whether the civilization is a major (playable) civ.
func (c *Civilization) Major() bool {
	return !c.CityState
}

// Alive reports whether the civilization is still in the game.
func (c *Civilization) Alive() bool {
	return !c.Defeated
}

// HasTech reports whether the civilization has researched the named tech.
func (c *Civilization) HasTech(name string) bool {
	return c.Techs[name]
}

// HasBonus reports whether the civilization carries the given unique.
func (c *Civilization) HasBonus(b Bonus) bool {
	return c.Bonuses[b]
}

// MilitaryUnitCount returns the number of living military units.
func (c *Civilization) MilitaryUnitCount() int {
	n := 0
	for _, u := range c.Units {
		if u.Military {
			n++
		}
	}
	return n
}

// Force returns the summed force evaluation of all military units.
func (c *Civilization) Force() float64 {
	total := 0.0
	for _, u := range c.Units {
		if u.Military {
			total += u.Force
		}
	}
	return total
}

// SetFlag sets a civ-wide timed flag.
func (c *Civilization) SetFlag(name string, turns int) {
	if c.Flags == nil {
		c.Flags = make(map[string]int)
	}
	c.Flags[name] = turns
}

// GetFlag returns the remaining turns for a flag, 0 if absent.
func (c *Civilization) GetFlag(name string) int {
	return c.Flags[name]
}

// HasFlag reports whether the flag is set with turns remaining.
func (c *Civilization) HasFlag(name string) bool {
	return c.Flags[name] > 0
}

// RemoveFlag clears a flag.
func (c *Civilization) RemoveFlag(name string) {
	delete(c.Flags, name)
}

// TickFlags decrements every timed flag once and drops expired entries.
// Called exactly once per turn by the engine.
func (c *Civilization) TickFlags() {
	for name, turns := range c.Flags {
		if turns <= 1 {
			delete(c.Flags, name)
		} else {
			c.Flags[name] = turns - 1
		}
	}
}

// GiftGold records a gold gift toward another civilization, for quest
// scoring. The actual treasury transfer is the caller's concern.
func (c *Civilization) GiftGold(to ID, amount int) {
	if c.GoldGiftedTo == nil {
		c.GoldGiftedTo = make(map[ID]int)
	}
	c.GoldGiftedTo[to] += amount
}
