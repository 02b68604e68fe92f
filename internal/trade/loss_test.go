package trade

import (
	"testing"

	"github.com/c74oyo/overland-logistics/internal/roads"
)

func TestCargoLoss(t *testing.T) {
	tests := []struct {
		name    string
		amount  int
		rate    float64
		profile roads.LossProfile
		want    int
	}{
		{name: "zero amount", amount: 0, rate: 0.1, want: 0},
		{name: "negative amount", amount: -5, rate: 0.1, want: 0},
		{name: "base only", amount: 100, rate: 0.05, want: 5},
		{name: "half protection", amount: 100, rate: 0.05, profile: roads.LossProfile{AvgProtection: 0.5}, want: 2},
		{name: "severe damage", amount: 100, rate: 0.05, profile: roads.LossProfile{MaxDamageLossRate: 0.05}, want: 10},
		{name: "full protection still takes damage", amount: 100, rate: 0.05, profile: roads.LossProfile{AvgProtection: 1, MaxDamageLossRate: 0.05}, want: 5},
		{name: "clamped to leave one unit", amount: 10, rate: 2, want: 9},
		{name: "single unit never lost", amount: 1, rate: 0.9, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CargoLoss(tt.amount, tt.rate, tt.profile); got != tt.want {
				t.Errorf("CargoLoss = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCargoLoss_Bound(t *testing.T) {
	rates := []float64{0, 0.01, 0.1, 0.5, 1, 3}
	protections := []float64{0, 0.25, 0.8, 1}
	damage := []float64{0, 0.05}
	for amount := 1; amount <= 400; amount++ {
		for _, r := range rates {
			for _, p := range protections {
				for _, d := range damage {
					loss := CargoLoss(amount, r, roads.LossProfile{AvgProtection: p, MaxDamageLossRate: d})
					if loss < 0 || loss > amount-1 {
						t.Fatalf("CargoLoss(%d, %v, %v/%v) = %d, outside [0, %d]", amount, r, p, d, loss, amount-1)
					}
				}
			}
		}
	}
}
