package roads

import (
	"math"

	"github.com/c74oyo/overland-logistics/internal/domain"
)

// ApplyWear adds volume to the transported counter of every segment on the
// path. Past the type's wear-free threshold, durability follows
// 100 - excess/decayRate, clamped to [0,100] and never raised. It returns
// whether every segment on the path is still passable.
func (g *Graph) ApplyWear(path []domain.Cell, volume float64) bool {
	passable := true
	for _, c := range path {
		seg, ok := g.segments[c]
		if !ok {
			passable = false
			continue
		}
		if volume > 0 {
			seg.Transported += volume
			g.decay(seg)
		}
		if !seg.Tier().Passable() {
			passable = false
		}
	}
	return passable
}

func (g *Graph) decay(seg *domain.RoadSegment) {
	rt, ok := g.catalog.RoadType(seg.RoadTypeID)
	if !ok || rt.DecayRate <= 0 {
		return
	}
	excess := seg.Transported - rt.WearFreeThreshold
	if excess <= 0 {
		return
	}
	d := clampDurability(domain.MaxDurability - excess/rt.DecayRate)
	if d < seg.Durability {
		seg.Durability = d
	}
}

// Repair raises durability by percent, clamped to 100. The transported
// counter is left alone, so the next wear pass measures from the full
// volume again.
func (g *Graph) Repair(c domain.Cell, percent float64) bool {
	seg, ok := g.segments[c]
	if !ok || percent <= 0 {
		return false
	}
	seg.Durability = clampDurability(seg.Durability + percent)
	return true
}

// RepairFull restores durability to 100 and resets the transported counter.
func (g *Graph) RepairFull(c domain.Cell) bool {
	seg, ok := g.segments[c]
	if !ok {
		return false
	}
	seg.Durability = domain.MaxDurability
	seg.Transported = 0
	return true
}

// RepairCost prices a repair of percent points (or the missing durability
// when percent <= 0 or exceeds it).
func (g *Graph) RepairCost(c domain.Cell, percent float64) (float64, bool) {
	seg, ok := g.segments[c]
	if !ok {
		return 0, false
	}
	rt, ok := g.catalog.RoadType(seg.RoadTypeID)
	if !ok {
		return 0, false
	}
	missing := domain.MaxDurability - seg.Durability
	if percent <= 0 || percent > missing {
		percent = missing
	}
	return percent * rt.RepairCostPerPercent, true
}

// IsPathPassable reports whether path is non-empty, contiguous, connected
// and free of broken segments.
func (g *Graph) IsPathPassable(path []domain.Cell) bool {
	if len(path) == 0 {
		return false
	}
	for i, c := range path {
		seg, ok := g.passableAt(c)
		if !ok {
			return false
		}
		if i == 0 {
			continue
		}
		prev := path[i-1]
		if !prev.Adjacent(c) || !seg.Connections.Has(directionTo(c, prev)) {
			return false
		}
	}
	return true
}

// TravelTime is the road-only traversal time of path: for every cell,
// baseTimePerCell / speedMultiplier scaled by the durability tier. It is +Inf
// when the path is not passable.
func (g *Graph) TravelTime(path []domain.Cell, baseTimePerCell float64) float64 {
	if !g.IsPathPassable(path) {
		return math.Inf(1)
	}
	total := 0.0
	for _, c := range path {
		seg := g.segments[c]
		total += baseTimePerCell * g.stepCost(seg) * seg.Tier().TimeMultiplier()
	}
	return total
}

// LossProfile summarizes how a path affects cargo loss.
type LossProfile struct {
	// AvgProtection is the mean loss protection of the path's road types.
	AvgProtection float64
	// MaxDamageLossRate is the worst extra loss rate of any segment.
	MaxDamageLossRate float64
}

// LossProfile computes the loss profile of path. Cells without a road or
// with an unknown type contribute zero protection.
func (g *Graph) LossProfile(path []domain.Cell) LossProfile {
	var p LossProfile
	if len(path) == 0 {
		return p
	}
	sum := 0.0
	for _, c := range path {
		seg, ok := g.segments[c]
		if !ok {
			continue
		}
		if rt, ok := g.catalog.RoadType(seg.RoadTypeID); ok {
			sum += rt.LossProtection
		}
		if r := seg.Tier().ExtraLossRate(); r > p.MaxDamageLossRate {
			p.MaxDamageLossRate = r
		}
	}
	p.AvgProtection = sum / float64(len(path))
	return p
}

// directionTo returns the direction from c to its neighbour n.
func directionTo(c, n domain.Cell) domain.DirMask {
	for _, d := range domain.Directions {
		if c.Neighbor(d) == n {
			return d
		}
	}
	return 0
}

func clampDurability(d float64) float64 {
	return math.Max(0, math.Min(domain.MaxDurability, d))
}
