package economy

import (
	"math"
	"testing"
)

func TestBase_Ledger(t *testing.T) {
	b := NewBase(BaseSpec{ID: "b1", Money: 100, Stock: map[string]int{"ore": 50, "junk": 0}})

	if b.TryConsumeResource("ore", 60) {
		t.Error("TryConsumeResource beyond stock = true, want false")
	}
	if !b.TryConsumeResource("ore", 20) {
		t.Fatal("TryConsumeResource = false, want true")
	}
	if got := b.ResourceAmount("ore"); got != 30 {
		t.Errorf("ore = %d, want 30", got)
	}
	b.AddResource("wood", 5)
	b.AddResource("wood", -5)
	if got := b.ResourceAmount("wood"); got != 5 {
		t.Errorf("wood = %d, want 5", got)
	}
	b.SetMoney(b.Money() + 25)
	if b.Money() != 125 {
		t.Errorf("Money = %f, want 125", b.Money())
	}
	if _, ok := b.Spec().Stock["junk"]; ok {
		t.Error("zero seed stock should not be tracked")
	}
}

func TestOutpost_Demand(t *testing.T) {
	o := NewOutpost(OutpostSpec{ID: "o1", FactionID: "guild", SellStock: map[string]int{"grain": 10}})

	if o.TryDeductSellStock("grain", 11) {
		t.Error("TryDeductSellStock beyond stock = true, want false")
	}
	if !o.TryDeductSellStock("grain", 4) || o.SellStock("grain") != 6 {
		t.Errorf("grain = %d after deduct, want 6", o.SellStock("grain"))
	}

	o.AddBuyDemand("ore", 10, 2)
	o.AddBuyDemand("ore", 30, 4)
	d := o.Demand("ore")
	if d.Amount != 40 || d.UnitPrice != 3.5 {
		t.Errorf("Demand = %+v, want 40 @ 3.5", d)
	}
	if o.FactionID() != "guild" {
		t.Errorf("FactionID = %q, want guild", o.FactionID())
	}
}

func TestFactionBook_Prices(t *testing.T) {
	fb := NewFactionBook([]FactionSpec{
		{ID: "friend", Reputation: 100},
		{ID: "foe", Reputation: -250},
		{ID: "neutral"},
	}, map[string]float64{"ore": 4})

	tests := []struct {
		faction  string
		sell     float64
		buy      float64
		resource string
	}{
		{faction: "neutral", resource: "ore", sell: 40, buy: 40},
		{faction: "friend", resource: "ore", sell: 60, buy: 20},
		{faction: "foe", resource: "ore", sell: 20, buy: 60},
		{faction: "stranger", resource: "ore", sell: 40, buy: 40},
		{faction: "neutral", resource: "silk", sell: 10, buy: 10},
	}
	for _, tt := range tests {
		if got := fb.SellPrice(tt.faction, tt.resource, 10); math.Abs(got-tt.sell) > 1e-9 {
			t.Errorf("SellPrice(%s, %s) = %f, want %f", tt.faction, tt.resource, got, tt.sell)
		}
		if got := fb.BuyPrice(tt.faction, tt.resource, 10); math.Abs(got-tt.buy) > 1e-9 {
			t.Errorf("BuyPrice(%s, %s) = %f, want %f", tt.faction, tt.resource, got, tt.buy)
		}
	}
}

func TestFactionBook_ModifyReputation(t *testing.T) {
	fb := NewFactionBook([]FactionSpec{{ID: "guild", Reputation: 95}}, nil)
	fb.ModifyReputation("guild", 10)
	if f, _ := fb.Faction("guild"); f.Reputation != MaxReputation {
		t.Errorf("Reputation = %f, want clamp at %f", f.Reputation, MaxReputation)
	}
	fb.ModifyReputation("pirates", -5)
	if f, ok := fb.Faction("pirates"); !ok || f.Reputation != -5 {
		t.Errorf("new faction = (%+v, %v), want reputation -5", f, ok)
	}
}

func TestWorld_StateRoundTrip(t *testing.T) {
	w := NewWorld(Seed{
		Bases:    []BaseSpec{{ID: "b1", Money: 10, Stock: map[string]int{"ore": 5}}},
		Outposts: []OutpostSpec{{ID: "o1", FactionID: "guild", SellStock: map[string]int{"grain": 3}}},
		Factions: []FactionSpec{{ID: "guild", Reputation: 7}},
		Prices:   map[string]float64{"ore": 2},
	})
	b, _ := w.Base("b1")
	b.TryConsumeResource("ore", 2)
	w.Factions.ModifyReputation("guild", 3)

	again := NewWorld(w.State())
	b2, ok := again.Base("b1")
	if !ok || b2.ResourceAmount("ore") != 3 || b2.Money() != 10 {
		t.Errorf("restored base = %+v", b2.Spec())
	}
	if f, _ := again.Factions.Faction("guild"); f.Reputation != 10 {
		t.Errorf("restored reputation = %f, want 10", f.Reputation)
	}
	if _, ok := again.Outpost("o1"); !ok {
		t.Error("restored outpost missing")
	}
}
