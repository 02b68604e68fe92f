package economy

import "math"

// Reputation bounds.
const (
	MinReputation = -100.0
	MaxReputation = 100.0
)

// FactionSpec seeds a faction.
type FactionSpec struct {
	ID         string  `json:"id" yaml:"id"`
	Name       string  `json:"name" yaml:"name"`
	Reputation float64 `json:"reputation" yaml:"reputation"`
}

// Faction is a trading faction and the player's standing with it.
type Faction struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Reputation float64 `json:"reputation"`
}

// FactionBook prices trades from a base price table scaled by reputation.
// Good standing raises what a faction pays and lowers what it charges, by up
// to half the base price at either end of the scale.
type FactionBook struct {
	factions   map[string]*Faction
	basePrices map[string]float64
	// DefaultPrice applies to resources missing from the price table.
	DefaultPrice float64
}

// NewFactionBook creates a FactionBook.
func NewFactionBook(factions []FactionSpec, basePrices map[string]float64) *FactionBook {
	fb := &FactionBook{
		factions:     make(map[string]*Faction, len(factions)),
		basePrices:   make(map[string]float64, len(basePrices)),
		DefaultPrice: 1,
	}
	for _, f := range factions {
		fb.factions[f.ID] = &Faction{ID: f.ID, Name: f.Name, Reputation: clampReputation(f.Reputation)}
	}
	for res, p := range basePrices {
		fb.basePrices[res] = p
	}
	return fb
}

func clampReputation(r float64) float64 {
	return math.Max(MinReputation, math.Min(MaxReputation, r))
}

func (fb *FactionBook) basePrice(resourceID string) float64 {
	if p, ok := fb.basePrices[resourceID]; ok {
		return p
	}
	return fb.DefaultPrice
}

func (fb *FactionBook) standing(factionID string) float64 {
	if f, ok := fb.factions[factionID]; ok {
		return f.Reputation / MaxReputation
	}
	return 0
}

// SellPrice is what the faction pays for amount units.
func (fb *FactionBook) SellPrice(factionID, resourceID string, amount int) float64 {
	if amount <= 0 {
		return 0
	}
	return fb.basePrice(resourceID) * float64(amount) * (1 + 0.5*fb.standing(factionID))
}

// BuyPrice is what the faction charges for amount units.
func (fb *FactionBook) BuyPrice(factionID, resourceID string, amount int) float64 {
	if amount <= 0 {
		return 0
	}
	return fb.basePrice(resourceID) * float64(amount) * (1 - 0.5*fb.standing(factionID))
}

// ModifyReputation shifts a faction's reputation, clamped to its bounds.
// Unknown factions are created on first contact.
func (fb *FactionBook) ModifyReputation(factionID string, delta float64) {
	f, ok := fb.factions[factionID]
	if !ok {
		f = &Faction{ID: factionID, Name: factionID}
		fb.factions[factionID] = f
	}
	f.Reputation = clampReputation(f.Reputation + delta)
}

// Faction returns a copy of one faction.
func (fb *FactionBook) Faction(id string) (Faction, bool) {
	f, ok := fb.factions[id]
	if !ok {
		return Faction{}, false
	}
	return *f, true
}
