package transport

import (
	"github.com/c74oyo/overland-logistics/internal/domain"
	"github.com/c74oyo/overland-logistics/internal/trade"
)

// RouteSpec describes a trade route to create.
type RouteSpec struct {
	Name             string             `json:"name"`
	SourceID         string             `json:"source_id"`
	TargetID         string             `json:"target_id"`
	SourceArea       domain.Area        `json:"source_area"`
	TargetArea       domain.Area        `json:"target_area"`
	Cargo            []domain.CargoLine `json:"cargo"`
	AutoDispatch     bool               `json:"auto_dispatch"`
	DispatchInterval float64            `json:"dispatch_interval"`
}

func validateCargo(lines []domain.CargoLine) error {
	for _, l := range lines {
		if l.ResourceID == "" || l.Amount <= 0 || !l.Direction.Valid() {
			return domain.Detail(domain.ErrInvalidCargo, "%+v", l)
		}
	}
	return nil
}

// CreateTradeRoute registers a route and computes its cached path. A route
// whose footprints have no connecting road is created with Valid=false.
func (c *Coordinator) CreateTradeRoute(spec RouteSpec) (domain.TradeRoute, error) {
	if !spec.SourceArea.Valid() || !spec.TargetArea.Valid() {
		return domain.TradeRoute{}, domain.Detail(domain.ErrInvalidFootprint, "%+v -> %+v", spec.SourceArea, spec.TargetArea)
	}
	if _, ok := c.dir.Ledger(spec.SourceID); !ok {
		return domain.TradeRoute{}, domain.Detail(domain.ErrUnknownSource, "%q", spec.SourceID)
	}
	cp, ok := c.dir.Counterparty(spec.TargetID)
	if !ok {
		return domain.TradeRoute{}, domain.Detail(domain.ErrUnknownCounterparty, "%q", spec.TargetID)
	}
	if err := validateCargo(spec.Cargo); err != nil {
		return domain.TradeRoute{}, err
	}
	if spec.DispatchInterval < 0 {
		spec.DispatchInterval = 0
	}

	r := &domain.TradeRoute{
		ID:               c.opts.NewID(),
		Name:             spec.Name,
		SourceID:         spec.SourceID,
		TargetID:         spec.TargetID,
		FactionID:        cp.FactionID(),
		SourceArea:       spec.SourceArea,
		TargetArea:       spec.TargetArea,
		Active:           true,
		AutoDispatch:     spec.AutoDispatch,
		DispatchInterval: spec.DispatchInterval,
		LastDispatch:     c.now,
	}
	for _, l := range spec.Cargo {
		r.AddCargo(l.ResourceID, l.Amount, l.Direction)
	}
	c.planner.Plan(r)

	c.routes[r.ID] = r
	c.routeIDs = append(c.routeIDs, r.ID)
	return r.Clone(), nil
}

func (c *Coordinator) route(id string) (*domain.TradeRoute, error) {
	r, ok := c.routes[id]
	if !ok {
		return nil, domain.Detail(domain.ErrRouteNotFound, "%s", id)
	}
	return r, nil
}

// RefreshRoute recomputes a route's cached path.
func (c *Coordinator) RefreshRoute(id string) (domain.TradeRoute, error) {
	r, err := c.route(id)
	if err != nil {
		return domain.TradeRoute{}, err
	}
	wasValid := r.Valid
	if !c.planner.Plan(r) && wasValid {
		c.emit(domain.Event{Kind: domain.EventRouteInvalidated, RouteID: r.ID})
	}
	return r.Clone(), nil
}

// RemoveTradeRoute deletes a route, cancelling its jobs and every order
// still on the road.
func (c *Coordinator) RemoveTradeRoute(id string) error {
	if _, err := c.route(id); err != nil {
		return err
	}
	for _, jid := range c.jobIDs {
		if j := c.jobs[jid]; j.RouteID == id && !j.State.Terminal() {
			c.cancelJob(j)
		}
	}
	for _, oid := range c.orderIDs {
		if o := c.orders[oid]; o.RouteID == id && !o.State.Terminal() {
			_ = c.cancelOrder(o)
		}
	}
	delete(c.routes, id)
	c.routeIDs = removeID(c.routeIDs, id)
	return nil
}

// SetRouteCargo replaces a route's manifest. Lines sharing a resource and
// direction are merged.
func (c *Coordinator) SetRouteCargo(id string, lines []domain.CargoLine) (domain.TradeRoute, error) {
	r, err := c.route(id)
	if err != nil {
		return domain.TradeRoute{}, err
	}
	if err := validateCargo(lines); err != nil {
		return domain.TradeRoute{}, err
	}
	r.Cargo = nil
	for _, l := range lines {
		r.AddCargo(l.ResourceID, l.Amount, l.Direction)
	}
	return r.Clone(), nil
}

// RemoveRouteCargo drops the manifest line for resourceID in direction dir.
func (c *Coordinator) RemoveRouteCargo(id, resourceID string, dir domain.CargoDirection) (domain.TradeRoute, error) {
	r, err := c.route(id)
	if err != nil {
		return domain.TradeRoute{}, err
	}
	if !r.RemoveCargo(resourceID, dir) {
		return domain.TradeRoute{}, domain.Detail(domain.ErrCargoNotFound, "%s %s on %s", dir, resourceID, id)
	}
	return r.Clone(), nil
}

// SetAutoDispatch toggles automatic dispatch and sets its interval.
func (c *Coordinator) SetAutoDispatch(id string, auto bool, interval float64) (domain.TradeRoute, error) {
	r, err := c.route(id)
	if err != nil {
		return domain.TradeRoute{}, err
	}
	if interval < 0 {
		interval = 0
	}
	r.AutoDispatch = auto
	r.DispatchInterval = interval
	return r.Clone(), nil
}

// SetRouteActive pauses or resumes a route.
func (c *Coordinator) SetRouteActive(id string, active bool) (domain.TradeRoute, error) {
	r, err := c.route(id)
	if err != nil {
		return domain.TradeRoute{}, err
	}
	r.Active = active
	return r.Clone(), nil
}

// DispatchRoute sends one vehicle from the source pool with the route's
// full manifest.
func (c *Coordinator) DispatchRoute(id string) (domain.TransportOrder, error) {
	r, err := c.route(id)
	if err != nil {
		return domain.TransportOrder{}, err
	}
	if !r.Active {
		return domain.TransportOrder{}, domain.Detail(domain.ErrRouteInactive, "%s", id)
	}
	o, err := c.dispatch(r, r.Cargo, "", true)
	if err != nil {
		return domain.TransportOrder{}, err
	}
	r.LastDispatch = c.now
	return o.Clone(), nil
}

// Routes returns copies of every route in creation order.
func (c *Coordinator) Routes() []domain.TradeRoute {
	out := make([]domain.TradeRoute, 0, len(c.routeIDs))
	for _, id := range c.routeIDs {
		out = append(out, c.routes[id].Clone())
	}
	return out
}

// Route returns a copy of one route.
func (c *Coordinator) Route(id string) (domain.TradeRoute, error) {
	r, err := c.route(id)
	if err != nil {
		return domain.TradeRoute{}, err
	}
	return r.Clone(), nil
}

// EstimateRoute reports the current travel time and loss rate of a route.
func (c *Coordinator) EstimateRoute(id string) (trade.Estimate, error) {
	r, err := c.route(id)
	if err != nil {
		return trade.Estimate{}, err
	}
	return c.planner.Estimate(*r), nil
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
