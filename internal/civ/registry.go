package civ

import "sort"

// Registry resolves civilization ids to records. Iteration order is the
// insertion order, so a fixed setup gives deterministic turn processing.
type Registry struct {
	civs  map[ID]*Civilization
	order []ID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{civs: make(map[ID]*Civilization)}
}

// Add registers a civilization. Re-adding an existing id replaces the
// record but keeps its position.
func (r *Registry) Add(c *Civilization) {
	if _, exists := r.civs[c.ID]; !exists {
		r.order = append(r.order, c.ID)
	}
	r.civs[c.ID] = c
}

// Get returns the civilization with the given id, or nil.
func (r *Registry) Get(id ID) *Civilization {
	return r.civs[id]
}

// All returns every civilization in insertion order.
func (r *Registry) All() []*Civilization {
	out := make([]*Civilization, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.civs[id])
	}
	return out
}

// Majors returns every living major civilization in insertion order.
func (r *Registry) Majors() []*Civilization {
	var out []*Civilization
	for _, id := range r.order {
		c := r.civs[id]
		if c.Major() && c.Alive() {
			out = append(out, c)
		}
	}
	return out
}

// CityStates returns every living city-state in insertion order.
func (r *Registry) CityStates() []*Civilization {
	var out []*Civilization
	for _, id := range r.order {
		c := r.civs[id]
		if c.CityState && c.Alive() {
			out = append(out, c)
		}
	}
	return out
}

// Count returns the number of registered civilizations, defeated included.
func (r *Registry) Count() int {
	return len(r.civs)
}

// MajorsByForce returns living majors sorted by descending military force.
// Ties break by id so ranking is stable.
func (r *Registry) MajorsByForce() []*Civilization {
	majors := r.Majors()
	sort.SliceStable(majors, func(i, j int) bool {
		fi, fj := majors[i].Force(), majors[j].Force()
		if fi != fj {
			return fi > fj
		}
		return majors[i].ID < majors[j].ID
	})
	return majors
}
