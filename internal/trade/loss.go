package trade

import (
	"math"

	"github.com/c74oyo/overland-logistics/internal/roads"
)

// CargoLoss returns the units lost when shipping amount over a path with the
// given loss profile:
//
//	floor(amount*baseRate*(1-avgProtection) + amount*maxDamageLossRate)
//
// clamped so at least one unit always arrives.
func CargoLoss(amount int, baseRate float64, p roads.LossProfile) int {
	if amount <= 0 {
		return 0
	}
	protection := math.Max(0, math.Min(1, p.AvgProtection))
	raw := float64(amount)*baseRate*(1-protection) + float64(amount)*p.MaxDamageLossRate
	loss := int(math.Floor(raw))
	if loss < 0 {
		return 0
	}
	if loss > amount-1 {
		return amount - 1
	}
	return loss
}

// LossRate is the fractional loss rate a path applies before rounding.
func LossRate(baseRate float64, p roads.LossProfile) float64 {
	protection := math.Max(0, math.Min(1, p.AvgProtection))
	return baseRate*(1-protection) + p.MaxDamageLossRate
}
