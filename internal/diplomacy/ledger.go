// Package diplomacy provides the influence ledger between city-states and
// major civilizations, alliance resolution, tribute evaluation, and
// protector pacts. All cross-civilization state lives here, keyed by id
// pairs; civilization records never point at each other.
package diplomacy

import (
	"sort"

	"github.com/talgya/citystates/internal/civ"
)

// Status is the diplomatic status of one relationship direction.
type Status uint8

const (
	Peace     Status = iota
	War              // symmetric, set on both directions
	Protector        // on rel(cityState → major): the major protects the city-state
)

var statusNames = [...]string{"Peace", "War", "Protector"}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "Unknown"
}

// Modifier names a diplomatic penalty with memory. Values accumulate.
type Modifier string

const (
	ModBulliedProtectedMinor   Modifier = "bullied-protected-minor"
	ModAttackedProtectedMinor  Modifier = "attacked-protected-minor"
	ModDestroyedProtectedMinor Modifier = "destroyed-protected-minor"
)

// Relationship flag names (flag → remaining-turns countdown).
const (
	// FlagRecentlyPledged blocks withdrawing protection right after pledging.
	FlagRecentlyPledged = "recently-pledged-protection"
	// FlagRecentlyWithdrew blocks re-pledging right after withdrawing.
	FlagRecentlyWithdrew = "recently-withdrew-protection"
	// FlagBullied on rel(cityState → bully) blocks new quests to that civ.
	FlagBullied = "bullied"
	// FlagAnnexCooldown counts down until the ally may annex for gold.
	FlagAnnexCooldown = "annex-cooldown"
	// Memory windows for repeat-offence penalty scaling.
	FlagRememberBullied   = "remember-bullied-city-state"
	FlagRememberAttacked  = "remember-attacked-city-state"
	FlagRememberDestroyed = "remember-destroyed-city-state"
)

// Relationship is one direction of a civilization pair's state. Influence
// is meaningful on rel(cityState → major): how much the major has earned
// with the city-state.
type Relationship struct {
	From civ.ID `json:"from"`
	To   civ.ID `json:"to"`

	Influence float64 `json:"influence"`
	Status    Status  `json:"status"`

	// Wary marks a city-state's permanent distrust of an aggressor major.
	Wary bool `json:"wary,omitempty"`

	// Timed flags: name → remaining turns. Entries are removed at zero.
	Flags map[string]int `json:"flags,omitempty"`

	// Accumulated diplomatic modifiers (penalty memory).
	Modifiers map[Modifier]float64 `json:"modifiers,omitempty"`
}

// AddInfluence shifts influence by delta. Unbounded above, can go negative.
func (r *Relationship) AddInfluence(delta float64) {
	r.Influence += delta
}

// SetFlag sets a countdown flag.
func (r *Relationship) SetFlag(name string, turns int) {
	if r.Flags == nil {
		r.Flags = make(map[string]int)
	}
	r.Flags[name] = turns
}

// GetFlag returns the remaining turns for a flag, 0 if absent.
func (r *Relationship) GetFlag(name string) int {
	return r.Flags[name]
}

// HasFlag reports whether a flag is set with turns remaining.
func (r *Relationship) HasFlag(name string) bool {
	return r.Flags[name] > 0
}

// RemoveFlag clears a flag.
func (r *Relationship) RemoveFlag(name string) {
	delete(r.Flags, name)
}

// AddModifier accumulates a diplomatic penalty (or bonus) under a name.
func (r *Relationship) AddModifier(m Modifier, value float64) {
	if r.Modifiers == nil {
		r.Modifiers = make(map[Modifier]float64)
	}
	r.Modifiers[m] += value
}

// tickFlags decrements every flag once and drops expired entries.
func (r *Relationship) tickFlags() {
	for name, turns := range r.Flags {
		if turns <= 1 {
			delete(r.Flags, name)
		} else {
			r.Flags[name] = turns - 1
		}
	}
}

type pairKey struct {
	from, to civ.ID
}

// Ledger owns every Relationship. A relationship exists only once the two
// civilizations have met.
type Ledger struct {
	rels map[pairKey]*Relationship
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{rels: make(map[pairKey]*Relationship)}
}

// Contact establishes first contact: both relationship directions are
// created if absent. Idempotent.
func (l *Ledger) Contact(a, b civ.ID) {
	if a == b {
		return
	}
	for _, k := range []pairKey{{a, b}, {b, a}} {
		if _, ok := l.rels[k]; !ok {
			l.rels[k] = &Relationship{From: k.from, To: k.to}
		}
	}
}

// Knows reports whether the two civilizations have met.
func (l *Ledger) Knows(a, b civ.ID) bool {
	_, ok := l.rels[pairKey{a, b}]
	return ok
}

// Rel returns the relationship from one civ toward another, or nil when
// they have not met.
func (l *Ledger) Rel(from, to civ.ID) *Relationship {
	return l.rels[pairKey{from, to}]
}

// Restore inserts a relationship record directly (save loading).
func (l *Ledger) Restore(r *Relationship) {
	l.rels[pairKey{r.From, r.To}] = r
}

// RelsFrom returns every relationship originating at the given civ, sorted
// by counterpart id for deterministic iteration.
func (l *Ledger) RelsFrom(from civ.ID) []*Relationship {
	var out []*Relationship
	for k, r := range l.rels {
		if k.from == from {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].To < out[j].To })
	return out
}

// All returns every relationship, sorted for deterministic iteration.
func (l *Ledger) All() []*Relationship {
	out := make([]*Relationship, 0, len(l.rels))
	for _, r := range l.rels {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

// DeclareWar forces contact and sets War on both directions. A protector
// going to war loses Protector status implicitly (status is overwritten).
func (l *Ledger) DeclareWar(a, b civ.ID) {
	l.Contact(a, b)
	l.rels[pairKey{a, b}].Status = War
	l.rels[pairKey{b, a}].Status = War
}

// MakePeace resets both directions to Peace.
func (l *Ledger) MakePeace(a, b civ.ID) {
	if !l.Knows(a, b) {
		return
	}
	l.rels[pairKey{a, b}].Status = Peace
	l.rels[pairKey{b, a}].Status = Peace
}

// AtWar reports whether the two civilizations are at war.
func (l *Ledger) AtWar(a, b civ.ID) bool {
	r := l.Rel(a, b)
	return r != nil && r.Status == War
}

// ProtectorsOf returns the living majors currently protecting the
// city-state, sorted by id. At most one Protector entry exists per major.
func (l *Ledger) ProtectorsOf(reg *civ.Registry, cityState civ.ID) []*civ.Civilization {
	var out []*civ.Civilization
	for _, r := range l.RelsFrom(cityState) {
		if r.Status != Protector {
			continue
		}
		c := reg.Get(r.To)
		if c != nil && c.Major() && c.Alive() {
			out = append(out, c)
		}
	}
	return out
}

// TickFlags runs the once-per-turn countdown sweep over every relationship.
func (l *Ledger) TickFlags() {
	for _, r := range l.rels {
		r.tickFlags()
	}
}
