package domain

// CargoDirection tells whether goods leave the source or come back to it.
type CargoDirection string

const (
	Export CargoDirection = "export"
	Import CargoDirection = "import"
)

// Valid reports whether d is a known direction.
func (d CargoDirection) Valid() bool {
	return d == Export || d == Import
}

// CargoLine is one resource entry of a manifest.
type CargoLine struct {
	ResourceID string         `json:"resource_id"`
	Amount     int            `json:"amount"`
	Direction  CargoDirection `json:"direction"`
}

// TotalAmount sums the amounts of a manifest.
func TotalAmount(lines []CargoLine) int {
	total := 0
	for _, l := range lines {
		total += l.Amount
	}
	return total
}

// CloneCargo returns an independent copy of a manifest.
func CloneCargo(lines []CargoLine) []CargoLine {
	if lines == nil {
		return nil
	}
	out := make([]CargoLine, len(lines))
	copy(out, lines)
	return out
}

// TradeRoute is a named, cached connection between a source area and a
// target area with a cargo manifest.
type TradeRoute struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	SourceID         string      `json:"source_id"`
	TargetID         string      `json:"target_id"`
	FactionID        string      `json:"faction_id"`
	SourceArea       Area        `json:"source_area"`
	TargetArea       Area        `json:"target_area"`
	Path             []Cell      `json:"path"`
	Valid            bool        `json:"valid"`
	Active           bool        `json:"active"`
	AutoDispatch     bool        `json:"auto_dispatch"`
	DispatchInterval float64     `json:"dispatch_interval"`
	LastDispatch     float64     `json:"last_dispatch"`
	Cargo            []CargoLine `json:"cargo"`
}

// AddCargo merges amount into the line keyed by (resourceID, dir), appending
// a new line when none exists. Non-positive amounts are ignored.
func (r *TradeRoute) AddCargo(resourceID string, amount int, dir CargoDirection) {
	if amount <= 0 || resourceID == "" || !dir.Valid() {
		return
	}
	for i := range r.Cargo {
		if r.Cargo[i].ResourceID == resourceID && r.Cargo[i].Direction == dir {
			r.Cargo[i].Amount += amount
			return
		}
	}
	r.Cargo = append(r.Cargo, CargoLine{ResourceID: resourceID, Amount: amount, Direction: dir})
}

// RemoveCargo drops the line keyed by (resourceID, dir).
func (r *TradeRoute) RemoveCargo(resourceID string, dir CargoDirection) bool {
	for i := range r.Cargo {
		if r.Cargo[i].ResourceID == resourceID && r.Cargo[i].Direction == dir {
			r.Cargo = append(r.Cargo[:i], r.Cargo[i+1:]...)
			return true
		}
	}
	return false
}

// IsDispatchEligible reports whether the route should auto-dispatch at now.
func (r *TradeRoute) IsDispatchEligible(now float64) bool {
	if !r.Active || !r.Valid || !r.AutoDispatch || len(r.Cargo) == 0 {
		return false
	}
	return now-r.LastDispatch >= r.DispatchInterval
}

// HasPath reports whether a cached path is present.
func (r *TradeRoute) HasPath() bool {
	return len(r.Path) > 0
}

// Clone returns a deep copy suitable for handing to readers.
func (r *TradeRoute) Clone() TradeRoute {
	c := *r
	if r.Path != nil {
		c.Path = make([]Cell, len(r.Path))
		copy(c.Path, r.Path)
	}
	c.Cargo = CloneCargo(r.Cargo)
	return c
}
