package transport

import (
	"github.com/google/uuid"

	"github.com/c74oyo/overland-logistics/internal/domain"
	"github.com/c74oyo/overland-logistics/internal/roads"
	"github.com/c74oyo/overland-logistics/internal/trade"
)

// Options tunes the coordinator.
type Options struct {
	// ReputationPerDelivery is added to the faction's reputation once for
	// every order that delivers exported goods.
	ReputationPerDelivery float64
	// NewID generates entity ids. Defaults to random UUIDs.
	NewID func() string
}

// Observer receives events after the tick that produced them.
type Observer func(domain.Event)

// Coordinator owns routes, jobs and orders and advances them on the
// simulation clock. It is not safe for concurrent use; callers serialize
// access at the tick boundary.
type Coordinator struct {
	graph   *roads.Graph
	planner *trade.Planner
	catalog roads.Catalog
	dir     Directory
	pricing Pricing
	fleet   *Fleet
	gates   GateChain
	opts    Options

	now      float64
	eventSeq int64

	routes   map[string]*domain.TradeRoute
	routeIDs []string
	jobs     map[string]*domain.MultiTripJob
	jobIDs   []string
	orders   map[string]*domain.TransportOrder
	orderIDs []string

	queue     []domain.Event
	observers []Observer
}

// NewCoordinator wires a coordinator to its collaborators.
func NewCoordinator(planner *trade.Planner, catalog roads.Catalog, dir Directory, pricing Pricing, fleet *Fleet, opts Options) *Coordinator {
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Coordinator{
		graph:   planner.Graph,
		planner: planner,
		catalog: catalog,
		dir:     dir,
		pricing: pricing,
		fleet:   fleet,
		gates:   GateChain{&PathGate{Planner: planner}, &StockGate{}},
		opts:    opts,
		routes:  make(map[string]*domain.TradeRoute),
		jobs:    make(map[string]*domain.MultiTripJob),
		orders:  make(map[string]*domain.TransportOrder),
	}
}

// Now returns the simulation clock.
func (c *Coordinator) Now() float64 { return c.now }

// Subscribe registers an observer for drained events.
func (c *Coordinator) Subscribe(obs Observer) {
	c.observers = append(c.observers, obs)
}

func (c *Coordinator) emit(e domain.Event) {
	c.eventSeq++
	e.ID = c.opts.NewID()
	e.Seq = c.eventSeq
	e.SimTime = c.now
	c.queue = append(c.queue, e)
}

// Flush delivers queued events to observers. Tick calls it last; callers
// may call it after commands issued between ticks.
func (c *Coordinator) Flush() []domain.Event {
	events := c.queue
	c.queue = nil
	for _, e := range events {
		for _, obs := range c.observers {
			obs(e)
		}
	}
	return events
}

// ---- Roads ----

// BuildRoad places one road cell.
func (c *Coordinator) BuildRoad(cell domain.Cell, roadTypeID string) error {
	return c.BuildRoadPath([]domain.Cell{cell}, roadTypeID)
}

// BuildRoadPath places a path of road cells, all or nothing.
func (c *Coordinator) BuildRoadPath(cells []domain.Cell, roadTypeID string) error {
	if _, ok := c.catalog.RoadType(roadTypeID); !ok {
		return domain.Detail(domain.ErrUnknownRoadType, "%q", roadTypeID)
	}
	if len(cells) == 0 || !c.graph.BuildPath(cells, roadTypeID) {
		return domain.Detail(domain.ErrRoadRejected, "build %d cells of %s", len(cells), roadTypeID)
	}
	c.emit(domain.Event{Kind: domain.EventRoadBuilt, Cells: copyCells(cells)})
	c.revalidateRoutes()
	return nil
}

// RemoveRoad removes one road cell.
func (c *Coordinator) RemoveRoad(cell domain.Cell) error {
	if !c.graph.Remove(cell) {
		return domain.Detail(domain.ErrNoRoad, "%s", cell)
	}
	c.emit(domain.Event{Kind: domain.EventRoadRemoved, Cells: []domain.Cell{cell}})
	c.revalidateRoutes()
	return nil
}

// RemoveRoadPath removes every road among cells and returns how many were
// removed.
func (c *Coordinator) RemoveRoadPath(cells []domain.Cell) int {
	var removed []domain.Cell
	for _, cell := range cells {
		if c.graph.Remove(cell) {
			removed = append(removed, cell)
		}
	}
	if len(removed) > 0 {
		c.emit(domain.Event{Kind: domain.EventRoadRemoved, Cells: removed})
		c.revalidateRoutes()
	}
	return len(removed)
}

// UpgradeRoad swaps a segment to its successor type.
func (c *Coordinator) UpgradeRoad(cell domain.Cell) error {
	if !c.graph.HasRoad(cell) {
		return domain.Detail(domain.ErrNoRoad, "%s", cell)
	}
	if !c.graph.Upgrade(cell) {
		return domain.Detail(domain.ErrRoadRejected, "%s has no upgrade", cell)
	}
	c.emit(domain.Event{Kind: domain.EventRoadBuilt, Cells: []domain.Cell{cell}})
	return nil
}

// RepairRoad repairs a segment by percent points, or fully when percent is
// not positive, and returns the repair cost.
func (c *Coordinator) RepairRoad(cell domain.Cell, percent float64) (float64, error) {
	cost, ok := c.graph.RepairCost(cell, percent)
	if !ok {
		return 0, domain.Detail(domain.ErrNoRoad, "%s", cell)
	}
	if percent <= 0 {
		c.graph.RepairFull(cell)
	} else {
		c.graph.Repair(cell, percent)
	}
	c.emit(domain.Event{Kind: domain.EventRoadRepaired, Cells: []domain.Cell{cell}})
	c.revalidateRoutes()
	return cost, nil
}

// Segments returns a copy of every road segment.
func (c *Coordinator) Segments() []domain.RoadSegment {
	return c.graph.Segments()
}

// revalidateRoutes re-checks every cached path after the graph changed.
// Paths are never recomputed here; a route left invalid stays so until a
// repair makes its path passable again or RefreshRoute plans a new one.
func (c *Coordinator) revalidateRoutes() {
	for _, id := range c.routeIDs {
		r := c.routes[id]
		wasValid := r.Valid
		if !c.planner.Revalidate(r) && wasValid {
			c.emit(domain.Event{Kind: domain.EventRouteInvalidated, RouteID: r.ID})
		}
	}
}

func copyCells(cells []domain.Cell) []domain.Cell {
	out := make([]domain.Cell, len(cells))
	copy(out, cells)
	return out
}

// ---- Snapshot ----

// Snapshot captures the live world. Terminal jobs and orders are left out.
func (c *Coordinator) Snapshot() domain.WorldSnapshot {
	s := domain.WorldSnapshot{
		SimTime:  c.now,
		EventSeq: c.eventSeq,
		Segments: c.graph.Segments(),
		Routes:   c.Routes(),
		Pools:    c.fleet.Pools(),
	}
	for _, id := range c.jobIDs {
		if j := c.jobs[id]; !j.State.Terminal() {
			s.Jobs = append(s.Jobs, j.Clone())
		}
	}
	for _, id := range c.orderIDs {
		if o := c.orders[id]; !o.State.Terminal() {
			s.Orders = append(s.Orders, o.Clone())
		}
	}
	return s
}

// Restore replaces the whole world with s. Pending events are dropped.
func (c *Coordinator) Restore(s domain.WorldSnapshot) {
	c.now = s.SimTime
	c.eventSeq = s.EventSeq
	c.queue = nil
	c.graph.Restore(s.Segments)
	c.fleet.Restore(s.Pools)

	c.routes = make(map[string]*domain.TradeRoute, len(s.Routes))
	c.routeIDs = c.routeIDs[:0]
	for i := range s.Routes {
		r := s.Routes[i].Clone()
		c.routes[r.ID] = &r
		c.routeIDs = append(c.routeIDs, r.ID)
	}
	c.jobs = make(map[string]*domain.MultiTripJob, len(s.Jobs))
	c.jobIDs = c.jobIDs[:0]
	for i := range s.Jobs {
		j := s.Jobs[i].Clone()
		c.jobs[j.ID] = &j
		c.jobIDs = append(c.jobIDs, j.ID)
	}
	c.orders = make(map[string]*domain.TransportOrder, len(s.Orders))
	c.orderIDs = c.orderIDs[:0]
	for i := range s.Orders {
		o := s.Orders[i].Clone()
		c.orders[o.ID] = &o
		c.orderIDs = append(c.orderIDs, o.ID)
	}
}
