package transport

import (
	"fmt"

	"github.com/c74oyo/overland-logistics/internal/domain"
	"github.com/c74oyo/overland-logistics/internal/trade"
)

// DispatchRequest is the input to a dispatch gate.
type DispatchRequest struct {
	Route        *domain.TradeRoute
	Cargo        []domain.CargoLine
	Ledger       Ledger
	Counterparty Counterparty
}

// DispatchDecision is the result of evaluating a dispatch. Cargo holds the
// lines that may ship; Blockers explains anything dropped or refused.
type DispatchDecision struct {
	Allow    bool
	Cargo    []domain.CargoLine
	Blockers []string
}

// Gate decides whether a vehicle may leave on a route.
type Gate interface {
	Name() string
	Evaluate(req DispatchRequest) DispatchDecision
}

// PathGate refuses dispatch over an invalid or impassable route.
type PathGate struct {
	Planner *trade.Planner
}

// Name returns the gate name.
func (g *PathGate) Name() string { return "path" }

// Evaluate revalidates the route's cached path.
func (g *PathGate) Evaluate(req DispatchRequest) DispatchDecision {
	d := DispatchDecision{Allow: true, Cargo: req.Cargo}
	if !req.Route.Valid || !g.Planner.Revalidate(req.Route) {
		d.Allow = false
		d.Blockers = append(d.Blockers, "route has no passable path")
	}
	return d
}

// StockGate keeps only the lines the two ends can cover in full: an export
// line needs source stock, an import line needs counterparty sell stock.
type StockGate struct{}

// Name returns the gate name.
func (g *StockGate) Name() string { return "stock" }

// Evaluate filters the manifest.
func (g *StockGate) Evaluate(req DispatchRequest) DispatchDecision {
	d := DispatchDecision{}
	for _, line := range req.Cargo {
		if line.Amount <= 0 {
			continue
		}
		var have int
		switch line.Direction {
		case domain.Export:
			have = req.Ledger.ResourceAmount(line.ResourceID)
		case domain.Import:
			have = req.Counterparty.SellStock(line.ResourceID)
		default:
			d.Blockers = append(d.Blockers, fmt.Sprintf("%s: unknown direction %q", line.ResourceID, line.Direction))
			continue
		}
		if have < line.Amount {
			d.Blockers = append(d.Blockers, fmt.Sprintf("%s %s: need %d, have %d", line.Direction, line.ResourceID, line.Amount, have))
			continue
		}
		d.Cargo = append(d.Cargo, line)
	}
	d.Allow = len(d.Cargo) > 0
	return d
}

// GateChain runs gates in order. Each gate sees the cargo the previous one
// let through; the first refusal stops the chain.
type GateChain []Gate

// Evaluate runs the chain.
func (c GateChain) Evaluate(req DispatchRequest) DispatchDecision {
	d := DispatchDecision{Allow: true, Cargo: req.Cargo}
	for _, g := range c {
		req.Cargo = d.Cargo
		next := g.Evaluate(req)
		d.Blockers = append(d.Blockers, next.Blockers...)
		d.Cargo = next.Cargo
		if !next.Allow {
			d.Allow = false
			return d
		}
	}
	return d
}
