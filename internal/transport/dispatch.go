package transport

import (
	"math"
	"sort"
	"strings"

	"github.com/c74oyo/overland-logistics/internal/domain"
	"github.com/c74oyo/overland-logistics/internal/trade"
)

// dispatch creates an order for cargo on route r. Route orders take one
// vehicle from the source pool; job trips ride on the job's reservation.
func (c *Coordinator) dispatch(r *domain.TradeRoute, cargo []domain.CargoLine, jobID string, pooled bool) (*domain.TransportOrder, error) {
	ledger, ok := c.dir.Ledger(r.SourceID)
	if !ok {
		return nil, domain.Detail(domain.ErrUnknownSource, "%q", r.SourceID)
	}
	cp, ok := c.dir.Counterparty(r.TargetID)
	if !ok {
		return nil, domain.Detail(domain.ErrUnknownCounterparty, "%q", r.TargetID)
	}

	wasValid := r.Valid
	decision := c.gates.Evaluate(DispatchRequest{Route: r, Cargo: cargo, Ledger: ledger, Counterparty: cp})
	if !r.Valid {
		if wasValid {
			c.emit(domain.Event{Kind: domain.EventRouteInvalidated, RouteID: r.ID})
		}
		return nil, domain.Detail(domain.ErrRouteInvalid, "%s", r.ID)
	}
	if !decision.Allow {
		return nil, domain.Detail(domain.ErrNothingToShip, "route %s: %s", r.ID, strings.Join(decision.Blockers, "; "))
	}

	outbound := c.planner.TravelTime(r)
	if math.IsInf(outbound, 1) {
		c.emit(domain.Event{Kind: domain.EventRouteInvalidated, RouteID: r.ID})
		return nil, domain.Detail(domain.ErrRouteInvalid, "%s", r.ID)
	}
	if pooled {
		if err := c.fleet.Reserve(r.SourceID, 1); err != nil {
			return nil, err
		}
	}

	o := &domain.TransportOrder{
		ID:                c.opts.NewID(),
		RouteID:           r.ID,
		JobID:             jobID,
		SourceID:          r.SourceID,
		TargetID:          r.TargetID,
		Cargo:             domain.CloneCargo(decision.Cargo),
		Path:              copyCells(r.Path),
		State:             domain.OrderDispatched,
		OutboundDuration:  outbound,
		UsesPooledVehicle: pooled,
		DispatchedAt:      c.now,
	}
	c.orders[o.ID] = o
	c.orderIDs = append(c.orderIDs, o.ID)
	c.emit(domain.Event{Kind: domain.EventOrderDispatched, RouteID: r.ID, JobID: jobID, OrderID: o.ID})
	return o, nil
}

// settle runs the Delivering step: per-line loss and economics, then road
// wear for the whole volume and the return leg duration. Loss and wear use
// the path the order was dispatched on; the return leg follows the route's
// current path.
func (c *Coordinator) settle(o *domain.TransportOrder) {
	r := c.routes[o.RouteID]
	ledger, hasLedger := c.dir.Ledger(o.SourceID)
	cp, hasCP := c.dir.Counterparty(o.TargetID)
	if !hasLedger || !hasCP {
		o.ReturnDuration = o.OutboundDuration
		return
	}

	faction := cp.FactionID()
	if r != nil && r.FactionID != "" {
		faction = r.FactionID
	}
	profile := c.graph.LossProfile(o.Path)

	volume := 0
	exported := false
	for _, line := range o.Cargo {
		out := domain.TripOutcome{ResourceID: line.ResourceID, Direction: line.Direction}
		switch line.Direction {
		case domain.Export:
			amount := min(line.Amount, ledger.ResourceAmount(line.ResourceID))
			if amount <= 0 || !ledger.TryConsumeResource(line.ResourceID, amount) {
				amount = 0
			}
			out.Shipped = amount
			out.Lost = trade.CargoLoss(amount, c.planner.BaseLossRate, profile)
			out.Delivered = amount - out.Lost
			if out.Delivered > 0 {
				price := c.pricing.SellPrice(faction, line.ResourceID, out.Delivered)
				cp.AddBuyDemand(line.ResourceID, out.Delivered, price/float64(out.Delivered))
				ledger.SetMoney(ledger.Money() + price)
				out.Money = price
				exported = true
			}
		case domain.Import:
			amount := min(line.Amount, cp.SellStock(line.ResourceID))
			if amount <= 0 || !cp.TryDeductSellStock(line.ResourceID, amount) {
				amount = 0
			}
			out.Shipped = amount
			if amount > 0 {
				price := c.pricing.BuyPrice(faction, line.ResourceID, amount)
				ledger.SetMoney(ledger.Money() - price)
				out.Money = -price
			}
			out.Lost = trade.CargoLoss(amount, c.planner.BaseLossRate, profile)
			out.Delivered = amount - out.Lost
			if out.Delivered > 0 {
				ledger.AddResource(line.ResourceID, out.Delivered)
			}
		}
		volume += out.Shipped
		o.Delivered += out.Delivered
		o.Lost += out.Lost
		o.Outcomes = append(o.Outcomes, out)
	}
	if exported && c.opts.ReputationPerDelivery != 0 {
		c.pricing.ModifyReputation(faction, c.opts.ReputationPerDelivery)
	}

	if volume > 0 {
		c.graph.ApplyWear(o.Path, float64(volume))
	}
	o.ReturnDuration = o.OutboundDuration
	if r == nil {
		return
	}
	wasValid := r.Valid
	ret := c.planner.TravelTime(r)
	if math.IsInf(ret, 1) {
		if wasValid {
			c.emit(domain.Event{Kind: domain.EventRouteInvalidated, RouteID: r.ID})
		}
		return
	}
	o.ReturnDuration = ret
}

// finishOrder books a finished order against its pool and job. A job trip
// that ends before settlement gives its slice back to the job to be sent
// again; a settled trip counts as completed.
func (c *Coordinator) finishOrder(o *domain.TransportOrder, settled bool) {
	if o.UsesPooledVehicle {
		_ = c.fleet.Release(o.SourceID, 1)
	}

	var j *domain.MultiTripJob
	if o.JobID != "" {
		if jj, ok := c.jobs[o.JobID]; ok && !jj.State.Terminal() {
			j = jj
		}
	}
	correlation := ""
	if j != nil {
		correlation = j.CorrelationID
	}
	for _, out := range o.Outcomes {
		c.emit(domain.Event{
			Kind:          domain.EventTripCompleted,
			RouteID:       o.RouteID,
			JobID:         o.JobID,
			OrderID:       o.ID,
			ResourceID:    out.ResourceID,
			Delivered:     out.Delivered,
			Lost:          out.Lost,
			CorrelationID: correlation,
		})
	}
	if j == nil {
		return
	}

	j.VehiclesInTransit--
	if !settled {
		j.TripsDispatched--
		j.RequeuedTrips = append(j.RequeuedTrips, o.TripIndex)
		return
	}
	j.TripsCompleted++
	j.Delivered += o.Delivered
	j.Lost += o.Lost
	if j.Totals == nil {
		j.Totals = make(map[string]domain.ResourceTotals)
	}
	for _, out := range o.Outcomes {
		t := j.Totals[out.ResourceID]
		t.Delivered += out.Delivered
		t.Lost += out.Lost
		j.Totals[out.ResourceID] = t
	}
	if j.IsComplete() {
		c.completeJob(j)
	}
}

// CancelOrder cancels an order that is not settling or finished. A job trip
// cancelled before delivery is sent again; one cancelled on its return leg
// has delivered and counts as completed.
func (c *Coordinator) CancelOrder(id string) error {
	o, ok := c.orders[id]
	if !ok {
		return domain.Detail(domain.ErrOrderNotFound, "%s", id)
	}
	return c.cancelOrder(o)
}

func (c *Coordinator) cancelOrder(o *domain.TransportOrder) error {
	settled := o.State == domain.OrderReturning
	if err := transition(o, domain.OrderCancelled); err != nil {
		return err
	}
	c.emit(domain.Event{Kind: domain.EventOrderCancelled, RouteID: o.RouteID, JobID: o.JobID, OrderID: o.ID})
	c.finishOrder(o, settled)
	return nil
}

// Orders returns copies of every live order in dispatch order.
func (c *Coordinator) Orders() []domain.TransportOrder {
	out := make([]domain.TransportOrder, 0, len(c.orderIDs))
	for _, id := range c.orderIDs {
		out = append(out, c.orders[id].Clone())
	}
	return out
}

// Order returns a copy of one order.
func (c *Coordinator) Order(id string) (domain.TransportOrder, error) {
	o, ok := c.orders[id]
	if !ok {
		return domain.TransportOrder{}, domain.Detail(domain.ErrOrderNotFound, "%s", id)
	}
	return o.Clone(), nil
}

// Pools returns the vehicle pools.
func (c *Coordinator) Pools() []domain.VehiclePool {
	return c.fleet.Pools()
}

// SetPool sets the vehicle count of a source.
func (c *Coordinator) SetPool(sourceID string, total int) error {
	if _, ok := c.dir.Ledger(sourceID); !ok {
		return domain.Detail(domain.ErrUnknownSource, "%q", sourceID)
	}
	c.fleet.SetPool(sourceID, total)
	return nil
}

// Tick advances the simulation by dt: route auto-dispatch, job dispatch,
// order advance, reaping, then event delivery. A route invalidated while
// orders advance is not reconsidered until the next tick.
func (c *Coordinator) Tick(dt float64) []domain.Event {
	if dt < 0 || math.IsNaN(dt) {
		dt = 0
	}
	c.now += dt

	c.dispatchRoutes()
	c.dispatchJobs()
	c.advanceOrders(dt)
	c.reap()
	return c.Flush()
}

func (c *Coordinator) dispatchRoutes() {
	for _, id := range c.routeIDs {
		r := c.routes[id]
		if !r.IsDispatchEligible(c.now) {
			continue
		}
		if _, err := c.dispatch(r, r.Cargo, "", true); err == nil {
			r.LastDispatch = c.now
		}
	}
}

func (c *Coordinator) dispatchJobs() {
	for _, id := range c.jobIDs {
		j := c.jobs[id]
		if j.State == domain.JobPending {
			j.State = domain.JobActive
		}
		for j.CanDispatchMore() {
			r, ok := c.routes[j.RouteID]
			if !ok {
				break
			}
			idx := j.NextTripIndex()
			cargo := j.TripCargo(idx)
			if len(cargo) == 0 {
				break
			}
			o, err := c.dispatch(r, cargo, j.ID, false)
			if err != nil {
				break
			}
			o.TripIndex = idx
			if len(j.RequeuedTrips) > 0 {
				j.RequeuedTrips = j.RequeuedTrips[1:]
			}
			j.TripsDispatched++
			j.VehiclesInTransit++
		}
	}
}

func (c *Coordinator) advanceOrders(dt float64) {
	for _, id := range c.orderIDs {
		o := c.orders[id]
		if o.State.Terminal() {
			continue
		}
		done, err := advanceOrder(o, dt, c)
		if err == nil && done {
			c.finishOrder(o, true)
		}
	}
}

func (c *Coordinator) reap() {
	orderIDs := c.orderIDs[:0]
	for _, id := range c.orderIDs {
		if c.orders[id].State.Terminal() {
			delete(c.orders, id)
			continue
		}
		orderIDs = append(orderIDs, id)
	}
	c.orderIDs = orderIDs

	jobIDs := c.jobIDs[:0]
	for _, id := range c.jobIDs {
		if c.jobs[id].State.Terminal() {
			delete(c.jobs, id)
			continue
		}
		jobIDs = append(jobIDs, id)
	}
	c.jobIDs = jobIDs
}

func sortedResources(totals map[string]domain.ResourceTotals) []string {
	ids := make([]string, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
