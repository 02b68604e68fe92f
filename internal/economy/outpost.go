package economy

import "github.com/c74oyo/overland-logistics/internal/domain"

// OutpostSpec seeds a trading counterparty.
type OutpostSpec struct {
	ID        string         `json:"id" yaml:"id"`
	Name      string         `json:"name" yaml:"name"`
	Area      domain.Area    `json:"area" yaml:"area"`
	FactionID string         `json:"faction_id" yaml:"faction"`
	SellStock map[string]int `json:"sell_stock" yaml:"sell_stock"`
}

// DemandEntry is the goods an outpost has bought and the average price paid.
type DemandEntry struct {
	Amount    int     `json:"amount"`
	UnitPrice float64 `json:"unit_price"`
}

// Outpost is a faction-owned trading post.
type Outpost struct {
	ID        string
	Name      string
	Area      domain.Area
	factionID string
	sell      map[string]int
	demand    map[string]DemandEntry
}

// NewOutpost creates an Outpost from its seed.
func NewOutpost(spec OutpostSpec) *Outpost {
	o := &Outpost{
		ID:        spec.ID,
		Name:      spec.Name,
		Area:      spec.Area,
		factionID: spec.FactionID,
		sell:      make(map[string]int),
		demand:    make(map[string]DemandEntry),
	}
	for res, n := range spec.SellStock {
		if n > 0 {
			o.sell[res] = n
		}
	}
	return o
}

// SellStock returns the units of a resource the outpost offers.
func (o *Outpost) SellStock(resourceID string) int {
	return o.sell[resourceID]
}

// TryDeductSellStock removes amount units if all of them are offered.
func (o *Outpost) TryDeductSellStock(resourceID string, amount int) bool {
	if amount <= 0 || o.sell[resourceID] < amount {
		return false
	}
	o.sell[resourceID] -= amount
	return true
}

// AddBuyDemand records goods delivered to the outpost. UnitPrice is folded
// into a running average.
func (o *Outpost) AddBuyDemand(resourceID string, amount int, unitPrice float64) {
	if amount <= 0 {
		return
	}
	e := o.demand[resourceID]
	total := e.UnitPrice*float64(e.Amount) + unitPrice*float64(amount)
	e.Amount += amount
	e.UnitPrice = total / float64(e.Amount)
	o.demand[resourceID] = e
}

// Demand returns what the outpost has bought of a resource.
func (o *Outpost) Demand(resourceID string) DemandEntry {
	return o.demand[resourceID]
}

// FactionID returns the owning faction.
func (o *Outpost) FactionID() string { return o.factionID }

// Spec returns the outpost's current state in seed form.
func (o *Outpost) Spec() OutpostSpec {
	s := OutpostSpec{ID: o.ID, Name: o.Name, Area: o.Area, FactionID: o.factionID, SellStock: make(map[string]int, len(o.sell))}
	for res, n := range o.sell {
		s.SellStock[res] = n
	}
	return s
}
