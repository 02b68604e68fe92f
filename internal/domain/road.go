// Package domain defines the core types for the overland logistics engine.
package domain

import "fmt"

// Cell is one square of the world grid.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String renders the cell as "x,y".
func (c Cell) String() string {
	return fmt.Sprintf("%d,%d", c.X, c.Y)
}

// Neighbor returns the adjacent cell in the given direction.
func (c Cell) Neighbor(d DirMask) Cell {
	switch d {
	case North:
		return Cell{X: c.X, Y: c.Y + 1}
	case South:
		return Cell{X: c.X, Y: c.Y - 1}
	case East:
		return Cell{X: c.X + 1, Y: c.Y}
	case West:
		return Cell{X: c.X - 1, Y: c.Y}
	}
	return c
}

// Manhattan returns the grid distance between two cells.
func (c Cell) Manhattan(o Cell) int {
	return abs(c.X-o.X) + abs(c.Y-o.Y)
}

// Adjacent reports whether o is one of c's four neighbours.
func (c Cell) Adjacent(o Cell) bool {
	return c.Manhattan(o) == 1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// DirMask is a 4-bit connectivity mask.
type DirMask uint8

const (
	North DirMask = 1 << iota
	South
	East
	West
)

// Directions lists the four directions in neighbour iteration order.
var Directions = [4]DirMask{North, South, East, West}

// Opposite returns the reverse direction.
func (d DirMask) Opposite() DirMask {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	}
	return 0
}

// Has reports whether every bit of d2 is set in d.
func (d DirMask) Has(d2 DirMask) bool {
	return d2 != 0 && d&d2 == d2
}

// RoadType is static, externally configured road data.
type RoadType struct {
	ID                   string  `json:"id" yaml:"id"`
	Name                 string  `json:"name" yaml:"name"`
	SpeedMultiplier      float64 `json:"speed_multiplier" yaml:"speed_multiplier"`             // >1 is faster
	BuildCost            float64 `json:"build_cost" yaml:"build_cost"`                         // money per cell
	RepairCostPerPercent float64 `json:"repair_cost_per_percent" yaml:"repair_cost_per_percent"` // money per durability point
	WearFreeThreshold    float64 `json:"wear_free_threshold" yaml:"wear_free_threshold"`       // cargo volume before decay starts
	DecayRate            float64 `json:"decay_rate" yaml:"decay_rate"`                         // cargo units per 1% durability lost
	LossProtection       float64 `json:"loss_protection" yaml:"loss_protection"`               // fraction of base loss avoided
	UpgradeTo            string  `json:"upgrade_to,omitempty" yaml:"upgrade_to"`               // successor type id, empty if none
}

// RoadSegment is one cell's road record.
type RoadSegment struct {
	Cell        Cell    `json:"cell"`
	NetworkID   int     `json:"network_id"`
	RoadTypeID  string  `json:"road_type"`
	Connections DirMask `json:"connections"`
	Durability  float64 `json:"durability"`
	Transported float64 `json:"transported"`
}

// MaxDurability is the durability of a new or fully repaired segment.
const MaxDurability = 100.0

// DurabilityTier buckets a durability value.
type DurabilityTier int

const (
	TierNormal DurabilityTier = iota
	TierLight
	TierSevere
	TierBroken
)

func (t DurabilityTier) String() string {
	switch t {
	case TierNormal:
		return "normal"
	case TierLight:
		return "light"
	case TierSevere:
		return "severe"
	case TierBroken:
		return "broken"
	default:
		return "unknown"
	}
}

// TierFor derives the tier from a durability percentage.
func TierFor(durability float64) DurabilityTier {
	switch {
	case durability <= 0:
		return TierBroken
	case durability <= 25:
		return TierSevere
	case durability <= 50:
		return TierLight
	default:
		return TierNormal
	}
}

// TimeMultiplier is the travel time factor for the tier.
// Broken segments cannot be traversed and report 0.
func (t DurabilityTier) TimeMultiplier() float64 {
	switch t {
	case TierNormal:
		return 1.0
	case TierLight:
		return 1.5
	case TierSevere:
		return 2.0
	}
	return 0
}

// ExtraLossRate is the additional cargo loss fraction caused by damage.
func (t DurabilityTier) ExtraLossRate() float64 {
	if t == TierSevere {
		return 0.05
	}
	return 0
}

// Passable reports whether vehicles may traverse a segment of this tier.
func (t DurabilityTier) Passable() bool {
	return t != TierBroken
}

// Tier returns the segment's current durability tier.
func (s RoadSegment) Tier() DurabilityTier {
	return TierFor(s.Durability)
}

// Area is a rectangular footprint anchored at its minimum corner.
type Area struct {
	Anchor Cell `json:"anchor" yaml:"anchor"`
	Width  int  `json:"width" yaml:"width"`
	Height int  `json:"height" yaml:"height"`
}

// Valid reports whether the footprint covers at least one cell.
func (a Area) Valid() bool {
	return a.Width >= 1 && a.Height >= 1
}

// Contains reports whether c lies inside the footprint.
func (a Area) Contains(c Cell) bool {
	return c.X >= a.Anchor.X && c.X < a.Anchor.X+a.Width &&
		c.Y >= a.Anchor.Y && c.Y < a.Anchor.Y+a.Height
}

// Ring returns the 1-cell ring around the footprint, walking the bottom
// row, top row, left column, right column, then the four diagonal corners
// (bottom-left, bottom-right, top-left, top-right).
func (a Area) Ring() []Cell {
	if !a.Valid() {
		return nil
	}
	ring := make([]Cell, 0, 2*(a.Width+a.Height)+4)
	for x := a.Anchor.X; x < a.Anchor.X+a.Width; x++ {
		ring = append(ring, Cell{X: x, Y: a.Anchor.Y - 1})
	}
	for x := a.Anchor.X; x < a.Anchor.X+a.Width; x++ {
		ring = append(ring, Cell{X: x, Y: a.Anchor.Y + a.Height})
	}
	for y := a.Anchor.Y; y < a.Anchor.Y+a.Height; y++ {
		ring = append(ring, Cell{X: a.Anchor.X - 1, Y: y})
	}
	for y := a.Anchor.Y; y < a.Anchor.Y+a.Height; y++ {
		ring = append(ring, Cell{X: a.Anchor.X + a.Width, Y: y})
	}
	left, right := a.Anchor.X-1, a.Anchor.X+a.Width
	bottom, top := a.Anchor.Y-1, a.Anchor.Y+a.Height
	return append(ring,
		Cell{X: left, Y: bottom}, Cell{X: right, Y: bottom},
		Cell{X: left, Y: top}, Cell{X: right, Y: top},
	)
}
