package transport

import (
	"errors"
	"fmt"
	"testing"

	"github.com/c74oyo/overland-logistics/internal/domain"
	"github.com/c74oyo/overland-logistics/internal/economy"
	"github.com/c74oyo/overland-logistics/internal/roads"
	"github.com/c74oyo/overland-logistics/internal/trade"
)

type testCatalog map[string]domain.RoadType

func (c testCatalog) RoadType(id string) (domain.RoadType, bool) {
	rt, ok := c[id]
	return rt, ok
}

var catalog = testCatalog{
	"dirt": {ID: "dirt", SpeedMultiplier: 1, WearFreeThreshold: 1e6, DecayRate: 10, RepairCostPerPercent: 1},
	"mud":  {ID: "mud", SpeedMultiplier: 1, WearFreeThreshold: 100, DecayRate: 10, RepairCostPerPercent: 1},
}

type fixture struct {
	c        *Coordinator
	graph    *roads.Graph
	fleet    *Fleet
	base     *economy.Base
	outpost  *economy.Outpost
	factions *economy.FactionBook
	events   []domain.Event
}

// newFixture builds a source area at (0,0) and a target area at (6,0), both
// 1x1. No road is laid.
func newFixture(t *testing.T, vehicles int, baseLossRate float64) *fixture {
	t.Helper()
	graph := roads.NewGraph(catalog, nil)
	planner := trade.NewPlanner(graph, 1, baseLossRate)

	base := economy.NewBase(economy.BaseSpec{
		ID: "b1", Money: 1000, Stock: map[string]int{"ore": 1000},
	})
	outpost := economy.NewOutpost(economy.OutpostSpec{
		ID: "o1", FactionID: "guild", SellStock: map[string]int{"grain": 50},
	})
	factions := economy.NewFactionBook(
		[]economy.FactionSpec{{ID: "guild"}},
		map[string]float64{"ore": 2, "grain": 1},
	)
	dir := MapDirectory{
		Ledgers:        map[string]Ledger{"b1": base},
		Counterparties: map[string]Counterparty{"o1": outpost},
	}
	fleet := NewFleet()
	fleet.SetPool("b1", vehicles)

	n := 0
	f := &fixture{graph: graph, fleet: fleet, base: base, outpost: outpost, factions: factions}
	f.c = NewCoordinator(planner, catalog, dir, factions, fleet, Options{
		ReputationPerDelivery: 1,
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	})
	f.c.Subscribe(func(e domain.Event) { f.events = append(f.events, e) })
	return f
}

func row(x0, x1, y int) []domain.Cell {
	var cells []domain.Cell
	for x := x0; x <= x1; x++ {
		cells = append(cells, domain.Cell{X: x, Y: y})
	}
	return cells
}

func (f *fixture) layRoad(t *testing.T, roadType string) {
	t.Helper()
	if err := f.c.BuildRoadPath(row(1, 5, 0), roadType); err != nil {
		t.Fatalf("BuildRoadPath: %v", err)
	}
}

func (f *fixture) createRoute(t *testing.T, cargo ...domain.CargoLine) domain.TradeRoute {
	t.Helper()
	r, err := f.c.CreateTradeRoute(RouteSpec{
		Name:       "ore run",
		SourceID:   "b1",
		TargetID:   "o1",
		SourceArea: domain.Area{Anchor: domain.Cell{X: 0, Y: 0}, Width: 1, Height: 1},
		TargetArea: domain.Area{Anchor: domain.Cell{X: 6, Y: 0}, Width: 1, Height: 1},
		Cargo:      cargo,
	})
	if err != nil {
		t.Fatalf("CreateTradeRoute: %v", err)
	}
	return r
}

func (f *fixture) count(kind domain.EventKind) int {
	n := 0
	for _, e := range f.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func exportOre(n int) domain.CargoLine {
	return domain.CargoLine{ResourceID: "ore", Amount: n, Direction: domain.Export}
}

func TestCoordinator_JobSplitsIntoTrips(t *testing.T) {
	f := newFixture(t, 2, 0)
	f.layRoad(t, "dirt")
	r := f.createRoute(t, exportOre(250))

	job, err := f.c.CreateJob(JobSpec{RouteID: r.ID, VehicleCapacity: 100, Vehicles: 2, CorrelationID: "quest-7"})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if job.TripsNeeded != 3 || job.State != domain.JobPending {
		t.Fatalf("job = %d trips in %s, want 3 trips pending", job.TripsNeeded, job.State)
	}
	if p, _ := f.fleet.Pool("b1"); p.Available != 0 {
		t.Errorf("Available = %d after reserving, want 0", p.Available)
	}

	f.c.Tick(1)
	got, err := f.c.Job(job.ID)
	if err != nil {
		t.Fatalf("Job: %v", err)
	}
	if got.State != domain.JobActive || got.TripsDispatched != 2 || got.VehiclesInTransit != 2 {
		t.Fatalf("after first tick = %s, dispatched %d, in transit %d; want active, 2, 2",
			got.State, got.TripsDispatched, got.VehiclesInTransit)
	}

	for i := 0; i < 30 && f.count(domain.EventJobCompleted) == 0; i++ {
		f.c.Tick(1)
		live := 0
		for _, o := range f.c.Orders() {
			if o.JobID == job.ID {
				live++
			}
		}
		if live > 2 {
			t.Fatalf("tick %d: %d trips in flight, want at most 2", i, live)
		}
	}

	if f.c.Now() != 20 {
		t.Errorf("job finished at t=%v, want 20", f.c.Now())
	}
	if n := f.count(domain.EventOrderDispatched); n != 3 {
		t.Errorf("dispatched %d orders, want 3", n)
	}
	var done domain.Event
	for _, e := range f.events {
		if e.Kind == domain.EventJobCompleted {
			done = e
		}
	}
	if done.Delivered != 250 || done.ResourceID != "ore" || done.CorrelationID != "quest-7" {
		t.Errorf("job_completed = %+v, want 250 ore for quest-7", done)
	}
	if _, err := f.c.Job(job.ID); !errors.Is(err, domain.ErrJobNotFound) {
		t.Errorf("completed job still listed: err = %v", err)
	}
	if p, _ := f.fleet.Pool("b1"); p.Available != 2 {
		t.Errorf("Available = %d after completion, want 2", p.Available)
	}
	if got := f.base.ResourceAmount("ore"); got != 750 {
		t.Errorf("ore = %d, want 750", got)
	}
	// 250 ore at a base price of 2, nudged up by reputation gained per delivery.
	if got := f.base.Money(); got <= 1500 || got > 1510 {
		t.Errorf("Money = %f, want just above 1500", got)
	}
}

func TestCoordinator_BrokenRoadRejectsDispatch(t *testing.T) {
	f := newFixture(t, 2, 0)
	f.layRoad(t, "mud")
	r := f.createRoute(t, exportOre(10))
	mid := domain.Cell{X: 3, Y: 0}

	f.graph.ApplyWear([]domain.Cell{mid}, 5000)
	if f.graph.IsPathPassable(r.Path) {
		t.Fatal("IsPathPassable = true over a broken segment")
	}

	_, err := f.c.DispatchRoute(r.ID)
	if !errors.Is(err, domain.ErrRouteInvalid) {
		t.Fatalf("DispatchRoute err = %v, want ErrRouteInvalid", err)
	}
	if got, _ := f.c.Route(r.ID); got.Valid {
		t.Error("route still valid after a rejected dispatch")
	}
	if p, _ := f.fleet.Pool("b1"); p.Available != 2 {
		t.Errorf("Available = %d, want 2 after rejected dispatch", p.Available)
	}
	f.c.Flush()
	if f.count(domain.EventRouteInvalidated) != 1 {
		t.Errorf("route_invalidated events = %d, want 1", f.count(domain.EventRouteInvalidated))
	}

	cost, err := f.c.RepairRoad(mid, 0)
	if err != nil {
		t.Fatalf("RepairRoad: %v", err)
	}
	if cost != 100 {
		t.Errorf("repair cost = %f, want 100", cost)
	}
	if _, err := f.c.DispatchRoute(r.ID); err != nil {
		t.Errorf("DispatchRoute after repair: %v", err)
	}
}

func TestCoordinator_NoRoadLeavesRouteInvalid(t *testing.T) {
	f := newFixture(t, 2, 0)
	r := f.createRoute(t, exportOre(10))

	if r.Valid || r.Path != nil {
		t.Fatalf("route = (valid %v, path %v), want invalid without path", r.Valid, r.Path)
	}
	if _, err := f.c.DispatchRoute(r.ID); !errors.Is(err, domain.ErrRouteInvalid) {
		t.Errorf("DispatchRoute err = %v, want ErrRouteInvalid", err)
	}
	if _, err := f.c.CreateJob(JobSpec{RouteID: r.ID, VehicleCapacity: 5, Vehicles: 1}); !errors.Is(err, domain.ErrRouteInvalid) {
		t.Errorf("CreateJob err = %v, want ErrRouteInvalid", err)
	}

	// Laying the road does not plan the route; a refresh does.
	f.layRoad(t, "dirt")
	if got, _ := f.c.Route(r.ID); got.Valid || got.Path != nil {
		t.Errorf("route after building = (valid %v, path %v), want still invalid", got.Valid, got.Path)
	}
	got, err := f.c.RefreshRoute(r.ID)
	if err != nil {
		t.Fatalf("RefreshRoute: %v", err)
	}
	if !got.Valid || len(got.Path) != 5 {
		t.Errorf("route after refresh = (valid %v, %d cells), want valid with 5", got.Valid, len(got.Path))
	}
}

func TestCoordinator_RoadEditsDoNotReplan(t *testing.T) {
	f := newFixture(t, 1, 0)
	f.layRoad(t, "mud")
	r := f.createRoute(t, exportOre(10))
	f.graph.ApplyWear([]domain.Cell{{X: 3, Y: 0}}, 5000)

	// A parallel road one row up would give a fresh path.
	if err := f.c.BuildRoadPath(row(0, 6, 1), "dirt"); err != nil {
		t.Fatalf("BuildRoadPath: %v", err)
	}
	if _, err := f.c.RepairRoad(domain.Cell{X: 0, Y: 1}, 5); err != nil {
		t.Fatalf("RepairRoad: %v", err)
	}

	got, _ := f.c.Route(r.ID)
	if got.Valid {
		t.Fatal("route valid after edits that left its cached path broken")
	}
	want := row(1, 5, 0)
	if len(got.Path) != len(want) {
		t.Fatalf("cached path = %v, want %v untouched", got.Path, want)
	}
	for i := range want {
		if got.Path[i] != want[i] {
			t.Fatalf("cached path = %v, want %v untouched", got.Path, want)
		}
	}
	if _, err := f.c.DispatchRoute(r.ID); !errors.Is(err, domain.ErrRouteInvalid) {
		t.Errorf("DispatchRoute err = %v, want ErrRouteInvalid", err)
	}
	f.c.Flush()
	if n := f.count(domain.EventRouteInvalidated); n != 1 {
		t.Errorf("route_invalidated events = %d, want 1", n)
	}

	got, err := f.c.RefreshRoute(r.ID)
	if err != nil {
		t.Fatalf("RefreshRoute: %v", err)
	}
	if !got.Valid || len(got.Path) != 5 || got.Path[0] != (domain.Cell{X: 1, Y: 1}) {
		t.Errorf("refreshed route = (valid %v, path %v), want valid along row 1", got.Valid, got.Path)
	}
}

func TestCoordinator_CreateTradeRouteRejections(t *testing.T) {
	f := newFixture(t, 1, 0)
	ok := domain.Area{Anchor: domain.Cell{X: 0, Y: 0}, Width: 1, Height: 1}

	tests := []struct {
		name string
		spec RouteSpec
		want error
	}{
		{name: "malformed footprint", spec: RouteSpec{SourceID: "b1", TargetID: "o1", SourceArea: domain.Area{Width: 0, Height: 1}, TargetArea: ok}, want: domain.ErrInvalidFootprint},
		{name: "unknown source", spec: RouteSpec{SourceID: "nope", TargetID: "o1", SourceArea: ok, TargetArea: ok}, want: domain.ErrUnknownSource},
		{name: "unknown target", spec: RouteSpec{SourceID: "b1", TargetID: "nope", SourceArea: ok, TargetArea: ok}, want: domain.ErrUnknownCounterparty},
		{name: "bad cargo", spec: RouteSpec{SourceID: "b1", TargetID: "o1", SourceArea: ok, TargetArea: ok, Cargo: []domain.CargoLine{{ResourceID: "ore", Amount: 1, Direction: "sideways"}}}, want: domain.ErrInvalidCargo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.c.CreateTradeRoute(tt.spec); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCoordinator_SettlementEconomics(t *testing.T) {
	f := newFixture(t, 1, 0.1)
	f.layRoad(t, "dirt")
	r := f.createRoute(t, exportOre(100), domain.CargoLine{ResourceID: "grain", Amount: 20, Direction: domain.Import})

	o, err := f.c.DispatchRoute(r.ID)
	if err != nil {
		t.Fatalf("DispatchRoute: %v", err)
	}
	if o.OutboundDuration != 5 {
		t.Errorf("OutboundDuration = %f, want 5", o.OutboundDuration)
	}
	for i := 0; i < 5; i++ {
		f.c.Tick(1)
	}

	got, err := f.c.Order(o.ID)
	if err != nil {
		t.Fatalf("Order: %v", err)
	}
	if got.State != domain.OrderReturning || got.Elapsed != 0 || got.ReturnDuration != 5 {
		t.Fatalf("order = %s elapsed %f return %f, want returning 0 5", got.State, got.Elapsed, got.ReturnDuration)
	}
	if got.Delivered != 108 || got.Lost != 12 {
		t.Errorf("delivered/lost = %d/%d, want 108/12", got.Delivered, got.Lost)
	}

	if n := f.base.ResourceAmount("ore"); n != 900 {
		t.Errorf("ore = %d, want 900", n)
	}
	if n := f.base.ResourceAmount("grain"); n != 18 {
		t.Errorf("grain = %d, want 18", n)
	}
	if n := f.outpost.SellStock("grain"); n != 30 {
		t.Errorf("outpost grain = %d, want 30", n)
	}
	if d := f.outpost.Demand("ore"); d.Amount != 90 || d.UnitPrice != 2 {
		t.Errorf("outpost demand = %+v, want 90 @ 2", d)
	}
	// +90*2 for the ore, -20*1 for the grain.
	if m := f.base.Money(); m != 1160 {
		t.Errorf("Money = %f, want 1160", m)
	}
	if fa, _ := f.factions.Faction("guild"); fa.Reputation != 1 {
		t.Errorf("Reputation = %f, want 1", fa.Reputation)
	}

	for i := 0; i < 5; i++ {
		f.c.Tick(1)
	}
	if len(f.c.Orders()) != 0 {
		t.Errorf("orders = %d after return, want 0", len(f.c.Orders()))
	}
	if p, _ := f.fleet.Pool("b1"); p.Available != 1 {
		t.Errorf("Available = %d, want 1", p.Available)
	}
	if n := f.count(domain.EventTripCompleted); n != 2 {
		t.Errorf("trip_completed events = %d, want one per resource (2)", n)
	}
}

func TestCoordinator_WearInvalidatesRoute(t *testing.T) {
	f := newFixture(t, 1, 0)
	f.layRoad(t, "mud")
	f.base.AddResource("ore", 500)
	r := f.createRoute(t, exportOre(1200))
	f.c.SetAutoDispatch(r.ID, true, 1)

	for i := 0; i < 5; i++ {
		f.c.Tick(1)
	}
	got, _ := f.c.Route(r.ID)
	if got.Valid {
		t.Fatal("route still valid after 1200 units broke the mud road")
	}
	if f.count(domain.EventRouteInvalidated) != 1 {
		t.Errorf("route_invalidated events = %d, want 1", f.count(domain.EventRouteInvalidated))
	}
	orders := f.c.Orders()
	if len(orders) != 1 || orders[0].ReturnDuration != orders[0].OutboundDuration {
		t.Fatalf("orders = %+v, want one returning over the outbound duration", orders)
	}

	for i := 0; i < 10; i++ {
		f.c.Tick(1)
	}
	if n := f.count(domain.EventOrderDispatched); n != 1 {
		t.Errorf("dispatched %d orders, want 1 while the road is broken", n)
	}
}

func TestCoordinator_AutoDispatchInterval(t *testing.T) {
	f := newFixture(t, 5, 0)
	f.layRoad(t, "dirt")
	r := f.createRoute(t, exportOre(10))
	if _, err := f.c.SetAutoDispatch(r.ID, true, 3); err != nil {
		t.Fatalf("SetAutoDispatch: %v", err)
	}

	for i := 0; i < 7; i++ {
		f.c.Tick(1)
	}
	if n := f.count(domain.EventOrderDispatched); n != 2 {
		t.Errorf("dispatched %d orders by t=7, want 2", n)
	}

	f.c.SetRouteActive(r.ID, false)
	for i := 0; i < 6; i++ {
		f.c.Tick(1)
	}
	if n := f.count(domain.EventOrderDispatched); n != 2 {
		t.Errorf("inactive route dispatched: %d orders, want 2", n)
	}
}

func TestCoordinator_SkipsUnshippableLines(t *testing.T) {
	f := newFixture(t, 1, 0)
	f.layRoad(t, "dirt")
	r := f.createRoute(t, exportOre(5000), domain.CargoLine{ResourceID: "grain", Amount: 10, Direction: domain.Import})

	o, err := f.c.DispatchRoute(r.ID)
	if err != nil {
		t.Fatalf("DispatchRoute: %v", err)
	}
	if len(o.Cargo) != 1 || o.Cargo[0].ResourceID != "grain" {
		t.Errorf("cargo = %+v, want only the grain line", o.Cargo)
	}

	f.c.SetRouteCargo(r.ID, []domain.CargoLine{exportOre(5000)})
	f.fleet.SetPool("b1", 2)
	if _, err := f.c.DispatchRoute(r.ID); !errors.Is(err, domain.ErrNothingToShip) {
		t.Errorf("err = %v, want ErrNothingToShip", err)
	}
}

func TestCoordinator_CancelJobReleasesVehicles(t *testing.T) {
	f := newFixture(t, 3, 0)
	f.layRoad(t, "dirt")
	r := f.createRoute(t, exportOre(500))

	job, err := f.c.CreateJob(JobSpec{RouteID: r.ID, VehicleCapacity: 100, Vehicles: 2})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if _, err := f.c.CreateJob(JobSpec{RouteID: r.ID, VehicleCapacity: 100, Vehicles: 2}); !errors.Is(err, domain.ErrNoVehicles) {
		t.Errorf("second CreateJob err = %v, want ErrNoVehicles", err)
	}
	f.c.Tick(1)

	if err := f.c.CancelJob(job.ID); err != nil {
		t.Fatalf("CancelJob: %v", err)
	}
	if p, _ := f.fleet.Pool("b1"); p.Available != 3 {
		t.Errorf("Available = %d after cancel, want 3", p.Available)
	}
	if err := f.c.CancelJob(job.ID); !errors.Is(err, domain.ErrJobAlreadyDone) {
		t.Errorf("second CancelJob err = %v, want ErrJobAlreadyDone", err)
	}

	for i := 0; i < 12; i++ {
		f.c.Tick(1)
	}
	if n := f.count(domain.EventTripCompleted); n != 2 {
		t.Errorf("in-flight trips completed = %d, want 2", n)
	}
	if f.count(domain.EventJobCompleted) != 0 || f.count(domain.EventJobCancelled) != 1 {
		t.Error("cancelled job should report cancellation only")
	}
	if p, _ := f.fleet.Pool("b1"); p.Available != 3 {
		t.Errorf("Available = %d after trips returned, want 3", p.Available)
	}
	if n := f.count(domain.EventOrderDispatched); n != 2 {
		t.Errorf("dispatched %d orders, want 2", n)
	}
}

func TestCoordinator_CancelledTripIsResent(t *testing.T) {
	f := newFixture(t, 1, 0)
	f.layRoad(t, "dirt")
	r := f.createRoute(t, exportOre(20))
	job, err := f.c.CreateJob(JobSpec{RouteID: r.ID, VehicleCapacity: 10, Vehicles: 1})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	f.c.Tick(1)

	orders := f.c.Orders()
	if len(orders) != 1 {
		t.Fatalf("orders = %d, want 1", len(orders))
	}
	if err := f.c.CancelOrder(orders[0].ID); err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}
	got, _ := f.c.Job(job.ID)
	if got.TripsDispatched != 0 || got.TripsCompleted != 0 || got.VehiclesInTransit != 0 {
		t.Errorf("job after cancel = dispatched %d, completed %d, in transit %d; want 0, 0, 0",
			got.TripsDispatched, got.TripsCompleted, got.VehiclesInTransit)
	}
	if len(got.RequeuedTrips) != 1 || got.RequeuedTrips[0] != 0 {
		t.Errorf("RequeuedTrips = %v, want [0]", got.RequeuedTrips)
	}

	for i := 0; i < 40 && f.count(domain.EventJobCompleted) == 0; i++ {
		f.c.Tick(1)
	}
	var done domain.Event
	for _, e := range f.events {
		if e.Kind == domain.EventJobCompleted {
			done = e
		}
	}
	if done.Kind == "" || done.Delivered != 20 {
		t.Fatalf("job_completed = %+v, want 20 ore delivered", done)
	}
	if n := f.base.ResourceAmount("ore"); n != 980 {
		t.Errorf("ore = %d, want 980", n)
	}
	if n := f.count(domain.EventOrderDispatched); n != 3 {
		t.Errorf("dispatched %d orders, want 3 with the cancelled trip resent", n)
	}
}

func TestCoordinator_CancelOnReturnLegCountsTrip(t *testing.T) {
	f := newFixture(t, 1, 0)
	f.layRoad(t, "dirt")
	r := f.createRoute(t, exportOre(20))
	job, _ := f.c.CreateJob(JobSpec{RouteID: r.ID, VehicleCapacity: 10, Vehicles: 1})

	var returning domain.TransportOrder
	for i := 0; i < 10 && returning.ID == ""; i++ {
		f.c.Tick(1)
		for _, o := range f.c.Orders() {
			if o.State == domain.OrderReturning {
				returning = o
			}
		}
	}
	if returning.ID == "" {
		t.Fatal("no order reached its return leg")
	}
	if err := f.c.CancelOrder(returning.ID); err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}
	got, _ := f.c.Job(job.ID)
	if got.TripsCompleted != 1 || got.Delivered != 10 || len(got.RequeuedTrips) != 0 {
		t.Errorf("job after cancel = completed %d, delivered %d, requeued %v; want 1, 10, none",
			got.TripsCompleted, got.Delivered, got.RequeuedTrips)
	}

	for i := 0; i < 30 && f.count(domain.EventJobCompleted) == 0; i++ {
		f.c.Tick(1)
	}
	if f.count(domain.EventJobCompleted) != 1 {
		t.Fatal("job did not complete")
	}
	if n := f.count(domain.EventOrderDispatched); n != 2 {
		t.Errorf("dispatched %d orders, want 2", n)
	}
	if n := f.base.ResourceAmount("ore"); n != 980 {
		t.Errorf("ore = %d, want 980", n)
	}
}

func TestCoordinator_SettlementUsesDispatchPath(t *testing.T) {
	f := newFixture(t, 1, 0)
	f.layRoad(t, "dirt")
	r := f.createRoute(t, exportOre(10))
	o, err := f.c.DispatchRoute(r.ID)
	if err != nil {
		t.Fatalf("DispatchRoute: %v", err)
	}

	// Cut the road under the order and re-plan over a 9-cell detour.
	detour := append(append([]domain.Cell{{X: 0, Y: 1}}, row(0, 6, 2)...), domain.Cell{X: 6, Y: 1})
	if err := f.c.BuildRoadPath(detour, "dirt"); err != nil {
		t.Fatalf("BuildRoadPath: %v", err)
	}
	if err := f.c.RemoveRoad(domain.Cell{X: 3, Y: 0}); err != nil {
		t.Fatalf("RemoveRoad: %v", err)
	}
	if got, _ := f.c.RefreshRoute(r.ID); !got.Valid || len(got.Path) != 9 {
		t.Fatalf("refreshed route = (valid %v, %d cells), want valid with 9", got.Valid, len(got.Path))
	}

	for i := 0; i < 5; i++ {
		f.c.Tick(1)
	}
	got, err := f.c.Order(o.ID)
	if err != nil {
		t.Fatalf("Order: %v", err)
	}
	if got.State != domain.OrderReturning {
		t.Fatalf("order state = %s, want returning", got.State)
	}
	if got.OutboundDuration != 5 || got.ReturnDuration != 9 {
		t.Errorf("durations = %f out, %f back; want 5 and 9", got.OutboundDuration, got.ReturnDuration)
	}
	if seg, _ := f.graph.Segment(domain.Cell{X: 2, Y: 0}); seg.Transported != 10 {
		t.Errorf("dispatch path wear = %f, want 10", seg.Transported)
	}
	if seg, _ := f.graph.Segment(domain.Cell{X: 2, Y: 2}); seg.Transported != 0 {
		t.Errorf("detour wear = %f, want 0", seg.Transported)
	}
}

func TestCoordinator_RemoveRouteCargo(t *testing.T) {
	f := newFixture(t, 1, 0)
	r := f.createRoute(t, exportOre(10), domain.CargoLine{ResourceID: "grain", Amount: 5, Direction: domain.Import})

	got, err := f.c.RemoveRouteCargo(r.ID, "ore", domain.Export)
	if err != nil {
		t.Fatalf("RemoveRouteCargo: %v", err)
	}
	if len(got.Cargo) != 1 || got.Cargo[0].ResourceID != "grain" {
		t.Errorf("cargo = %+v, want only grain", got.Cargo)
	}
	if _, err := f.c.RemoveRouteCargo(r.ID, "ore", domain.Export); !errors.Is(err, domain.ErrCargoNotFound) {
		t.Errorf("second remove err = %v, want ErrCargoNotFound", err)
	}
	if _, err := f.c.RemoveRouteCargo(r.ID, "grain", domain.Export); !errors.Is(err, domain.ErrCargoNotFound) {
		t.Errorf("wrong direction err = %v, want ErrCargoNotFound", err)
	}
	if _, err := f.c.RemoveRouteCargo("nope", "grain", domain.Import); !errors.Is(err, domain.ErrRouteNotFound) {
		t.Errorf("unknown route err = %v, want ErrRouteNotFound", err)
	}
}

func TestCoordinator_PauseResumeJob(t *testing.T) {
	f := newFixture(t, 1, 0)
	f.layRoad(t, "dirt")
	r := f.createRoute(t, exportOre(100))
	job, _ := f.c.CreateJob(JobSpec{RouteID: r.ID, VehicleCapacity: 100, Vehicles: 1})

	if err := f.c.PauseJob(job.ID); err != nil {
		t.Fatalf("PauseJob: %v", err)
	}
	f.c.Tick(1)
	if n := f.count(domain.EventOrderDispatched); n != 0 {
		t.Errorf("paused job dispatched %d orders", n)
	}
	if err := f.c.PauseJob(job.ID); !errors.Is(err, domain.ErrJobNotActive) {
		t.Errorf("pausing twice err = %v, want ErrJobNotActive", err)
	}
	if err := f.c.ResumeJob(job.ID); err != nil {
		t.Fatalf("ResumeJob: %v", err)
	}
	f.c.Tick(1)
	if n := f.count(domain.EventOrderDispatched); n != 1 {
		t.Errorf("resumed job dispatched %d orders, want 1", n)
	}
}

func TestCoordinator_CancelOrder(t *testing.T) {
	f := newFixture(t, 1, 0)
	f.layRoad(t, "dirt")
	r := f.createRoute(t, exportOre(10))

	o, err := f.c.DispatchRoute(r.ID)
	if err != nil {
		t.Fatalf("DispatchRoute: %v", err)
	}
	if _, err := f.c.DispatchRoute(r.ID); !errors.Is(err, domain.ErrNoVehicles) {
		t.Errorf("second DispatchRoute err = %v, want ErrNoVehicles", err)
	}
	f.c.Tick(1)

	if err := f.c.CancelOrder(o.ID); err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}
	if p, _ := f.fleet.Pool("b1"); p.Available != 1 {
		t.Errorf("Available = %d after cancel, want 1", p.Available)
	}
	if err := f.c.CancelOrder(o.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("second CancelOrder err = %v, want ErrInvalidTransition", err)
	}
	f.c.Tick(1)
	if _, err := f.c.Order(o.ID); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Errorf("cancelled order not reaped: err = %v", err)
	}
	if f.base.ResourceAmount("ore") != 1000 {
		t.Error("cancelled order moved stock")
	}
}

func TestCoordinator_RemoveTradeRoute(t *testing.T) {
	f := newFixture(t, 3, 0)
	f.layRoad(t, "dirt")
	r := f.createRoute(t, exportOre(300))
	f.c.CreateJob(JobSpec{RouteID: r.ID, VehicleCapacity: 100, Vehicles: 2})
	f.c.Tick(1)
	f.c.DispatchRoute(r.ID)

	if err := f.c.RemoveTradeRoute(r.ID); err != nil {
		t.Fatalf("RemoveTradeRoute: %v", err)
	}
	if p, _ := f.fleet.Pool("b1"); p.Available != 3 {
		t.Errorf("Available = %d, want 3", p.Available)
	}
	if _, err := f.c.Route(r.ID); !errors.Is(err, domain.ErrRouteNotFound) {
		t.Errorf("Route err = %v, want ErrRouteNotFound", err)
	}
	f.c.Tick(1)
	if len(f.c.Orders()) != 0 || len(f.c.Jobs()) != 0 {
		t.Errorf("orders/jobs left after removal: %d/%d", len(f.c.Orders()), len(f.c.Jobs()))
	}
	if n := f.count(domain.EventOrderCancelled); n != 3 {
		t.Errorf("order_cancelled events = %d, want 3", n)
	}
}

func TestCoordinator_EventsDrainAtTickEnd(t *testing.T) {
	f := newFixture(t, 1, 0)
	f.layRoad(t, "dirt")
	if len(f.events) != 0 {
		t.Fatalf("events delivered before the tick: %v", f.events)
	}
	if err := f.c.RemoveRoad(domain.Cell{X: 9, Y: 9}); !errors.Is(err, domain.ErrNoRoad) {
		t.Errorf("RemoveRoad err = %v, want ErrNoRoad", err)
	}
	f.c.RemoveRoad(domain.Cell{X: 5, Y: 0})
	f.c.Tick(1)

	if len(f.events) != 2 {
		t.Fatalf("events = %d, want 2", len(f.events))
	}
	if f.events[0].Kind != domain.EventRoadBuilt || f.events[1].Kind != domain.EventRoadRemoved {
		t.Errorf("kinds = %s, %s", f.events[0].Kind, f.events[1].Kind)
	}
	if f.events[0].Seq != 1 || f.events[1].Seq != 2 {
		t.Errorf("seqs = %d, %d, want 1, 2", f.events[0].Seq, f.events[1].Seq)
	}
}

func TestCoordinator_SnapshotRestore(t *testing.T) {
	f := newFixture(t, 2, 0)
	f.layRoad(t, "dirt")
	r := f.createRoute(t, exportOre(200))
	job, _ := f.c.CreateJob(JobSpec{RouteID: r.ID, VehicleCapacity: 100, Vehicles: 2})
	for i := 0; i < 3; i++ {
		f.c.Tick(1)
	}
	snap := f.c.Snapshot()
	if len(snap.Orders) != 2 || len(snap.Jobs) != 1 || len(snap.Segments) != 5 {
		t.Fatalf("snapshot = %d orders, %d jobs, %d segments", len(snap.Orders), len(snap.Jobs), len(snap.Segments))
	}

	g := newFixture(t, 0, 0)
	g.c.Restore(snap)
	if g.c.Now() != 3 {
		t.Errorf("Now = %v, want 3", g.c.Now())
	}
	if p, _ := g.fleet.Pool("b1"); p.Total != 2 || p.Available != 0 {
		t.Errorf("restored pool = %+v", p)
	}
	for i := 0; i < 10; i++ {
		g.c.Tick(1)
	}
	if g.count(domain.EventJobCompleted) != 1 {
		t.Fatal("restored job did not complete")
	}
	if g.events[0].Seq <= snap.EventSeq {
		t.Errorf("event seq %d did not continue after %d", g.events[0].Seq, snap.EventSeq)
	}
	if _, err := g.c.Job(job.ID); !errors.Is(err, domain.ErrJobNotFound) {
		t.Errorf("job not reaped after completion: %v", err)
	}
}
