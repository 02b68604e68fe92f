package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/c74oyo/overland-logistics/internal/domain"
	"github.com/c74oyo/overland-logistics/internal/economy"
)

// World is the static description of a map: road types, sites and factions.
type World struct {
	RoadTypes []domain.RoadType     `yaml:"road_types"`
	Blocked   []domain.Cell         `yaml:"blocked"`
	Bases     []economy.BaseSpec    `yaml:"bases"`
	Outposts  []economy.OutpostSpec `yaml:"outposts"`
	Factions  []economy.FactionSpec `yaml:"factions"`
	Prices    map[string]float64    `yaml:"prices"`
}

// LoadWorld reads and validates a YAML world file.
func LoadWorld(path string) (*World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read world file: %w", err)
	}
	return ParseWorld(data)
}

// ParseWorld decodes and validates a YAML world document.
func ParseWorld(data []byte) (*World, error) {
	var w World
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("parse world YAML: %w", err)
	}
	if err := w.validate(); err != nil {
		return nil, err
	}
	return &w, nil
}

func (w *World) validate() error {
	var problems []string

	types := make(map[string]bool, len(w.RoadTypes))
	for i, rt := range w.RoadTypes {
		switch {
		case rt.ID == "":
			problems = append(problems, fmt.Sprintf("road_types[%d]: id is required", i))
			continue
		case types[rt.ID]:
			problems = append(problems, fmt.Sprintf("road type %q declared twice", rt.ID))
		}
		types[rt.ID] = true
		if rt.SpeedMultiplier <= 0 {
			problems = append(problems, fmt.Sprintf("road type %q: speed_multiplier must be positive", rt.ID))
		}
		if rt.DecayRate < 0 || rt.WearFreeThreshold < 0 {
			problems = append(problems, fmt.Sprintf("road type %q: wear settings must not be negative", rt.ID))
		}
		if rt.LossProtection < 0 || rt.LossProtection > 1 {
			problems = append(problems, fmt.Sprintf("road type %q: loss_protection must be within [0, 1]", rt.ID))
		}
	}
	for _, rt := range w.RoadTypes {
		if rt.UpgradeTo != "" && !types[rt.UpgradeTo] {
			problems = append(problems, fmt.Sprintf("road type %q upgrades to unknown %q", rt.ID, rt.UpgradeTo))
		}
	}
	if len(w.RoadTypes) == 0 {
		problems = append(problems, "at least one road type is required")
	}

	sites := make(map[string]bool)
	for _, b := range w.Bases {
		if b.ID == "" || sites[b.ID] {
			problems = append(problems, fmt.Sprintf("base id %q is empty or duplicated", b.ID))
		}
		sites[b.ID] = true
		if b.Vehicles < 0 {
			problems = append(problems, fmt.Sprintf("base %q: vehicles must not be negative", b.ID))
		}
	}
	factions := make(map[string]bool, len(w.Factions))
	for _, f := range w.Factions {
		factions[f.ID] = true
	}
	for _, o := range w.Outposts {
		if o.ID == "" || sites[o.ID] {
			problems = append(problems, fmt.Sprintf("outpost id %q is empty or duplicated", o.ID))
		}
		sites[o.ID] = true
		if o.FactionID != "" && !factions[o.FactionID] {
			problems = append(problems, fmt.Sprintf("outpost %q belongs to unknown faction %q", o.ID, o.FactionID))
		}
	}

	if len(problems) > 0 {
		return domain.NewEngineError(domain.ErrConfigInvalid.Code,
			fmt.Sprintf("%s: %v", domain.ErrConfigInvalid.Message, problems))
	}
	return nil
}

// Seed returns the economy part of the world.
func (w *World) Seed() economy.Seed {
	return economy.Seed{Bases: w.Bases, Outposts: w.Outposts, Factions: w.Factions, Prices: w.Prices}
}

// Catalog returns the road types keyed by id.
func (w *World) Catalog() RoadCatalog {
	c := make(RoadCatalog, len(w.RoadTypes))
	for _, rt := range w.RoadTypes {
		c[rt.ID] = rt
	}
	return c
}

// Blocker returns the set of cells where no road may be built: the listed
// cells plus every base and outpost footprint.
func (w *World) Blocker() BlockedCells {
	b := make(BlockedCells, len(w.Blocked))
	for _, c := range w.Blocked {
		b[c] = true
	}
	for _, s := range w.Bases {
		b.addArea(s.Area)
	}
	for _, o := range w.Outposts {
		b.addArea(o.Area)
	}
	return b
}

func (b BlockedCells) addArea(a domain.Area) {
	if !a.Valid() {
		return
	}
	for x := a.Anchor.X; x < a.Anchor.X+a.Width; x++ {
		for y := a.Anchor.Y; y < a.Anchor.Y+a.Height; y++ {
			b[domain.Cell{X: x, Y: y}] = true
		}
	}
}

// SiteArea returns the footprint of a base or outpost.
func (w *World) SiteArea(id string) (domain.Area, bool) {
	for _, s := range w.Bases {
		if s.ID == id {
			return s.Area, s.Area.Valid()
		}
	}
	for _, o := range w.Outposts {
		if o.ID == id {
			return o.Area, o.Area.Valid()
		}
	}
	return domain.Area{}, false
}

// RoadCatalog looks road types up by id.
type RoadCatalog map[string]domain.RoadType

// RoadType returns the road type with the given id.
func (c RoadCatalog) RoadType(id string) (domain.RoadType, bool) {
	rt, ok := c[id]
	return rt, ok
}

// BlockedCells is a set of unbuildable cells.
type BlockedCells map[domain.Cell]bool

// Blocked reports whether c is unbuildable.
func (b BlockedCells) Blocked(c domain.Cell) bool { return b[c] }
