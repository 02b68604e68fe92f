// Package trade caches and evaluates the paths of trade routes.
package trade

import (
	"math"

	"github.com/c74oyo/overland-logistics/internal/domain"
	"github.com/c74oyo/overland-logistics/internal/roads"
)

// Planner answers route path, time and loss questions against a road graph.
type Planner struct {
	Graph           *roads.Graph
	BaseTimePerCell float64
	BaseLossRate    float64
}

// NewPlanner creates a Planner over graph.
func NewPlanner(graph *roads.Graph, baseTimePerCell, baseLossRate float64) *Planner {
	return &Planner{Graph: graph, BaseTimePerCell: baseTimePerCell, BaseLossRate: baseLossRate}
}

// Plan recomputes the cached path of route between its two footprints and
// sets Valid accordingly. It returns the new validity.
func (p *Planner) Plan(route *domain.TradeRoute) bool {
	route.Path = p.Graph.FindPathBetweenAreas(route.SourceArea, route.TargetArea)
	route.Valid = route.Path != nil
	return route.Valid
}

// TravelTime returns the one-way road time of the cached path. When the path
// is missing or no longer passable it returns +Inf and clears Valid.
func (p *Planner) TravelTime(route *domain.TradeRoute) float64 {
	if !route.HasPath() {
		route.Valid = false
		return math.Inf(1)
	}
	t := p.Graph.TravelTime(route.Path, p.BaseTimePerCell)
	if math.IsInf(t, 1) {
		route.Valid = false
	}
	return t
}

// Revalidate recomputes Valid from the cached path without touching it.
func (p *Planner) Revalidate(route *domain.TradeRoute) bool {
	route.Valid = route.HasPath() && p.Graph.IsPathPassable(route.Path)
	return route.Valid
}

// Estimate summarizes a route for display.
type Estimate struct {
	Cells     int     `json:"cells"`
	OneWay    float64 `json:"one_way"`
	RoundTrip float64 `json:"round_trip"`
	LossRate  float64 `json:"loss_rate"`
	Passable  bool    `json:"passable"`
}

// Estimate reports the current cost of running route. Times are zero when
// the path is not passable. It does not alter the route.
func (p *Planner) Estimate(route domain.TradeRoute) Estimate {
	e := Estimate{Cells: len(route.Path)}
	if !route.HasPath() || !p.Graph.IsPathPassable(route.Path) {
		return e
	}
	e.Passable = true
	e.OneWay = p.Graph.TravelTime(route.Path, p.BaseTimePerCell)
	e.RoundTrip = 2 * e.OneWay
	e.LossRate = LossRate(p.BaseLossRate, p.Graph.LossProfile(route.Path))
	return e
}
