// Package transport runs transport orders, multi-trip jobs and the
// coordinator that drives them on the simulation clock.
package transport

import (
	"github.com/c74oyo/overland-logistics/internal/domain"
)

// validTransitions defines the legal order state transitions.
// Delivering is left only by settlement, so it has no Cancelled edge.
var validTransitions = map[domain.OrderState]map[domain.OrderState]bool{
	domain.OrderDispatched: {domain.OrderInTransit: true, domain.OrderCancelled: true},
	domain.OrderInTransit:  {domain.OrderDelivering: true, domain.OrderCancelled: true},
	domain.OrderDelivering: {domain.OrderReturning: true},
	domain.OrderReturning:  {domain.OrderCompleted: true, domain.OrderCancelled: true},
}

// IsValidTransition checks if an order state transition is legal.
func IsValidTransition(from, to domain.OrderState) bool {
	targets, ok := validTransitions[from]
	if !ok {
		return false
	}
	return targets[to]
}

// transition moves o to the target state.
func transition(o *domain.TransportOrder, to domain.OrderState) error {
	if !IsValidTransition(o.State, to) {
		if o.State == domain.OrderDelivering && to == domain.OrderCancelled {
			return domain.Detail(domain.ErrOrderSettling, "order %s", o.ID)
		}
		return domain.Detail(domain.ErrInvalidTransition, "order %s: %s -> %s", o.ID, o.State, to)
	}
	o.State = to
	return nil
}

// settler performs the Delivering step of an order.
type settler interface {
	settle(o *domain.TransportOrder)
}

// advanceOrder moves o forward by dt. Dispatched orders enter InTransit and
// start consuming time in the same step. Reaching the outbound duration runs
// settlement once and starts the return leg with elapsed reset. It reports
// whether the order completed during this call.
func advanceOrder(o *domain.TransportOrder, dt float64, s settler) (bool, error) {
	switch o.State {
	case domain.OrderDispatched:
		if err := transition(o, domain.OrderInTransit); err != nil {
			return false, err
		}
		fallthrough
	case domain.OrderInTransit:
		o.Elapsed += dt
		if o.Elapsed < o.OutboundDuration {
			return false, nil
		}
		if err := transition(o, domain.OrderDelivering); err != nil {
			return false, err
		}
		s.settle(o)
		if err := transition(o, domain.OrderReturning); err != nil {
			return false, err
		}
		o.Elapsed = 0
		return false, nil
	case domain.OrderReturning:
		o.Elapsed += dt
		if o.Elapsed < o.ReturnDuration {
			return false, nil
		}
		if err := transition(o, domain.OrderCompleted); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}
