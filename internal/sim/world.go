// Package sim drives the transport coordinator on a wall clock and
// serializes every external command at the tick boundary.
package sim

import (
	"github.com/c74oyo/overland-logistics/internal/config"
	"github.com/c74oyo/overland-logistics/internal/economy"
	"github.com/c74oyo/overland-logistics/internal/roads"
	"github.com/c74oyo/overland-logistics/internal/trade"
	"github.com/c74oyo/overland-logistics/internal/transport"
)

// Assembly is a coordinator plus the economy it trades against.
type Assembly struct {
	Coordinator *transport.Coordinator
	Economy     *economy.World
}

// Directory exposes every base as a ledger and every outpost as a
// counterparty.
func Directory(w *economy.World) transport.MapDirectory {
	d := transport.MapDirectory{
		Ledgers:        make(map[string]transport.Ledger),
		Counterparties: make(map[string]transport.Counterparty),
	}
	for _, id := range w.BaseIDs() {
		b, _ := w.Base(id)
		d.Ledgers[id] = b
	}
	for _, id := range w.OutpostIDs() {
		o, _ := w.Outpost(id)
		d.Counterparties[id] = o
	}
	return d
}

// Assemble builds the road graph, economy and coordinator for a world
// description. Every base gets a vehicle pool sized from its seed.
func Assemble(w *config.World, seed economy.Seed, tc config.TransportConfig, opts transport.Options) Assembly {
	catalog := w.Catalog()
	graph := roads.NewGraph(catalog, w.Blocker())
	planner := trade.NewPlanner(graph, tc.BaseTimePerCell, tc.BaseLossRate)

	econ := economy.NewWorld(seed)
	fleet := transport.NewFleet()
	for _, b := range seed.Bases {
		fleet.SetPool(b.ID, b.Vehicles)
	}
	if opts.ReputationPerDelivery == 0 {
		opts.ReputationPerDelivery = tc.ReputationPerDelivery
	}
	coord := transport.NewCoordinator(planner, catalog, Directory(econ), econ.Factions, fleet, opts)
	return Assembly{Coordinator: coord, Economy: econ}
}
