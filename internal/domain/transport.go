package domain

// OrderState is the lifecycle state of a single vehicle round trip.
type OrderState string

const (
	OrderDispatched OrderState = "dispatched"
	OrderInTransit  OrderState = "in_transit"
	OrderDelivering OrderState = "delivering"
	OrderReturning  OrderState = "returning"
	OrderCompleted  OrderState = "completed"
	OrderCancelled  OrderState = "cancelled"
)

// Terminal reports whether no further transitions are possible.
func (s OrderState) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// TripOutcome is the settled result of one cargo line.
type TripOutcome struct {
	ResourceID string         `json:"resource_id"`
	Direction  CargoDirection `json:"direction"`
	Shipped    int            `json:"shipped"`
	Delivered  int            `json:"delivered"`
	Lost       int            `json:"lost"`
	Money      float64        `json:"money"`
}

// TransportOrder is one vehicle's dispatch-to-return cycle.
type TransportOrder struct {
	ID                string        `json:"id"`
	RouteID           string        `json:"route_id"`
	JobID             string        `json:"job_id,omitempty"`
	SourceID          string        `json:"source_id"`
	TargetID          string        `json:"target_id"`
	Cargo             []CargoLine   `json:"cargo"`
	// Path is the route's cached path at dispatch time.
	Path              []Cell        `json:"path"`
	// TripIndex is the manifest slice a job trip carries.
	TripIndex         int           `json:"trip_index"`
	State             OrderState    `json:"state"`
	Elapsed           float64       `json:"elapsed"`
	OutboundDuration  float64       `json:"outbound_duration"`
	ReturnDuration    float64       `json:"return_duration"`
	Delivered         int           `json:"delivered"`
	Lost              int           `json:"lost"`
	Outcomes          []TripOutcome `json:"outcomes,omitempty"`
	UsesPooledVehicle bool          `json:"uses_pooled_vehicle"`
	DispatchedAt      float64       `json:"dispatched_at"`
}

// Clone returns a deep copy of the order.
func (o *TransportOrder) Clone() TransportOrder {
	c := *o
	c.Cargo = CloneCargo(o.Cargo)
	if o.Path != nil {
		c.Path = make([]Cell, len(o.Path))
		copy(c.Path, o.Path)
	}
	if o.Outcomes != nil {
		c.Outcomes = make([]TripOutcome, len(o.Outcomes))
		copy(c.Outcomes, o.Outcomes)
	}
	return c
}

// JobState is the lifecycle state of a multi-trip job.
type JobState string

const (
	JobPending   JobState = "pending"
	JobActive    JobState = "active"
	JobPaused    JobState = "paused"
	JobCompleted JobState = "completed"
	JobCancelled JobState = "cancelled"
)

// Terminal reports whether the job has finished.
func (s JobState) Terminal() bool {
	return s == JobCompleted || s == JobCancelled
}

// ResourceTotals accumulates per-resource outcomes of a job.
type ResourceTotals struct {
	Delivered int `json:"delivered"`
	Lost      int `json:"lost"`
}

// MultiTripJob is a bulk shipment split into several transport orders.
type MultiTripJob struct {
	ID                string                    `json:"id"`
	RouteID           string                    `json:"route_id"`
	SourceID          string                    `json:"source_id"`
	Cargo             []CargoLine               `json:"cargo"`
	VehicleCapacity   int                       `json:"vehicle_capacity"`
	VehiclesAssigned  int                       `json:"vehicles_assigned"`
	TripsNeeded       int                       `json:"trips_needed"`
	TripsDispatched   int                       `json:"trips_dispatched"`
	TripsCompleted    int                       `json:"trips_completed"`
	VehiclesInTransit int                       `json:"vehicles_in_transit"`
	// RequeuedTrips holds trip indexes whose order was cancelled before
	// delivery, oldest first. They are sent again before any fresh slice.
	RequeuedTrips     []int                     `json:"requeued_trips,omitempty"`
	Delivered         int                       `json:"delivered"`
	Lost              int                       `json:"lost"`
	Totals            map[string]ResourceTotals `json:"totals,omitempty"`
	CorrelationID     string                    `json:"correlation_id,omitempty"`
	State             JobState                  `json:"state"`
	CreatedAt         float64                   `json:"created_at"`
}

// TripsFor returns ceil(total / capacity), or 0 for a non-positive capacity.
func TripsFor(total, capacity int) int {
	if capacity <= 0 || total <= 0 {
		return 0
	}
	return (total + capacity - 1) / capacity
}

// TotalAmount is the full shipment size.
func (j *MultiTripJob) TotalAmount() int {
	return TotalAmount(j.Cargo)
}

// IsComplete reports whether every needed trip has come back.
func (j *MultiTripJob) IsComplete() bool {
	return j.TripsCompleted >= j.TripsNeeded
}

// CanDispatchMore reports whether another trip may leave now.
func (j *MultiTripJob) CanDispatchMore() bool {
	return j.State == JobActive &&
		j.TripsDispatched < j.TripsNeeded &&
		j.VehiclesInTransit < j.VehiclesAssigned
}

// NextTripIndex is the manifest slice the next trip carries: the oldest
// requeued slice, else the next fresh one. Without requeued slices every
// issued slice is counted in TripsDispatched, so the fresh index equals it.
func (j *MultiTripJob) NextTripIndex() int {
	if len(j.RequeuedTrips) > 0 {
		return j.RequeuedTrips[0]
	}
	return j.TripsDispatched
}

// NextTripCargo returns the cargo of the next trip.
func (j *MultiTripJob) NextTripCargo() []CargoLine {
	return j.TripCargo(j.NextTripIndex())
}

// TripCargo allocates up to VehicleCapacity units for trip index by walking
// the manifest in order and skipping the index*VehicleCapacity units covered
// by earlier slices. The result depends only on the manifest, the capacity
// and index.
func (j *MultiTripJob) TripCargo(index int) []CargoLine {
	if j.VehicleCapacity <= 0 || index < 0 {
		return nil
	}
	skip := index * j.VehicleCapacity
	room := j.VehicleCapacity

	var out []CargoLine
	for _, line := range j.Cargo {
		if room == 0 {
			break
		}
		avail := line.Amount
		if skip > 0 {
			if skip >= avail {
				skip -= avail
				continue
			}
			avail -= skip
			skip = 0
		}
		take := avail
		if take > room {
			take = room
		}
		if take <= 0 {
			continue
		}
		out = append(out, CargoLine{ResourceID: line.ResourceID, Amount: take, Direction: line.Direction})
		room -= take
	}
	return out
}

// Clone returns a deep copy of the job.
func (j *MultiTripJob) Clone() MultiTripJob {
	c := *j
	c.Cargo = CloneCargo(j.Cargo)
	if j.RequeuedTrips != nil {
		c.RequeuedTrips = make([]int, len(j.RequeuedTrips))
		copy(c.RequeuedTrips, j.RequeuedTrips)
	}
	if j.Totals != nil {
		c.Totals = make(map[string]ResourceTotals, len(j.Totals))
		for k, v := range j.Totals {
			c.Totals[k] = v
		}
	}
	return c
}
