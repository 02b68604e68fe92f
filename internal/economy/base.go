// Package economy holds the in-memory stock, money and faction state the
// transport coordinator trades against.
package economy

import "github.com/c74oyo/overland-logistics/internal/domain"

// BaseSpec seeds a production site.
type BaseSpec struct {
	ID       string         `json:"id" yaml:"id"`
	Name     string         `json:"name" yaml:"name"`
	Area     domain.Area    `json:"area" yaml:"area"`
	Money    float64        `json:"money" yaml:"money"`
	Vehicles int            `json:"vehicles" yaml:"vehicles"`
	Stock    map[string]int `json:"stock" yaml:"stock"`
}

// Base is a production site's stock and money ledger.
type Base struct {
	ID    string
	Name  string
	Area  domain.Area
	money float64
	stock map[string]int
}

// NewBase creates a Base from its seed.
func NewBase(spec BaseSpec) *Base {
	b := &Base{ID: spec.ID, Name: spec.Name, Area: spec.Area, money: spec.Money, stock: make(map[string]int)}
	for res, n := range spec.Stock {
		if n > 0 {
			b.stock[res] = n
		}
	}
	return b
}

// ResourceAmount returns the stock of a resource.
func (b *Base) ResourceAmount(resourceID string) int {
	return b.stock[resourceID]
}

// TryConsumeResource removes amount units if all of them are in stock.
func (b *Base) TryConsumeResource(resourceID string, amount int) bool {
	if amount <= 0 || b.stock[resourceID] < amount {
		return false
	}
	b.stock[resourceID] -= amount
	return true
}

// AddResource adds amount units to stock.
func (b *Base) AddResource(resourceID string, amount int) {
	if amount <= 0 {
		return
	}
	b.stock[resourceID] += amount
}

// Money returns the base's balance.
func (b *Base) Money() float64 { return b.money }

// SetMoney sets the base's balance.
func (b *Base) SetMoney(amount float64) { b.money = amount }

// Spec returns the base's current state in seed form.
func (b *Base) Spec() BaseSpec {
	s := BaseSpec{ID: b.ID, Name: b.Name, Area: b.Area, Money: b.money, Stock: make(map[string]int, len(b.stock))}
	for res, n := range b.stock {
		s.Stock[res] = n
	}
	return s
}
