package economy

import "sort"

// Seed is the initial economy of a world.
type Seed struct {
	Bases    []BaseSpec         `json:"bases" yaml:"bases"`
	Outposts []OutpostSpec      `json:"outposts" yaml:"outposts"`
	Factions []FactionSpec      `json:"factions" yaml:"factions"`
	Prices   map[string]float64 `json:"prices" yaml:"prices"`
}

// World is the set of bases, outposts and factions.
type World struct {
	bases    map[string]*Base
	outposts map[string]*Outpost
	Factions *FactionBook
	prices   map[string]float64
}

// NewWorld builds a World from a seed.
func NewWorld(seed Seed) *World {
	w := &World{
		bases:    make(map[string]*Base, len(seed.Bases)),
		outposts: make(map[string]*Outpost, len(seed.Outposts)),
		Factions: NewFactionBook(seed.Factions, seed.Prices),
		prices:   seed.Prices,
	}
	for _, b := range seed.Bases {
		w.bases[b.ID] = NewBase(b)
	}
	for _, o := range seed.Outposts {
		w.outposts[o.ID] = NewOutpost(o)
	}
	return w
}

// Base returns a base by id.
func (w *World) Base(id string) (*Base, bool) {
	b, ok := w.bases[id]
	return b, ok
}

// Outpost returns an outpost by id.
func (w *World) Outpost(id string) (*Outpost, bool) {
	o, ok := w.outposts[id]
	return o, ok
}

// BaseIDs returns every base id, sorted.
func (w *World) BaseIDs() []string {
	ids := make([]string, 0, len(w.bases))
	for id := range w.bases {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// OutpostIDs returns every outpost id, sorted.
func (w *World) OutpostIDs() []string {
	ids := make([]string, 0, len(w.outposts))
	for id := range w.outposts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// State captures the current economy in seed form, so it can be persisted
// and fed back through NewWorld.
func (w *World) State() Seed {
	s := Seed{Prices: w.prices}
	for _, id := range w.BaseIDs() {
		s.Bases = append(s.Bases, w.bases[id].Spec())
	}
	for _, id := range w.OutpostIDs() {
		s.Outposts = append(s.Outposts, w.outposts[id].Spec())
	}
	ids := make([]string, 0, len(w.Factions.factions))
	for id := range w.Factions.factions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		f := w.Factions.factions[id]
		s.Factions = append(s.Factions, FactionSpec{ID: f.ID, Name: f.Name, Reputation: f.Reputation})
	}
	return s
}
