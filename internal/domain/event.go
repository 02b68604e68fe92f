package domain

// EventKind names a notification emitted by the coordinator.
type EventKind string

const (
	EventTripCompleted    EventKind = "trip_completed"
	EventJobCompleted     EventKind = "job_completed"
	EventJobCancelled     EventKind = "job_cancelled"
	EventOrderDispatched  EventKind = "order_dispatched"
	EventOrderCancelled   EventKind = "order_cancelled"
	EventRouteInvalidated EventKind = "route_invalidated"
	EventRoadBuilt        EventKind = "road_built"
	EventRoadRemoved      EventKind = "road_removed"
	EventRoadRepaired     EventKind = "road_repaired"
)

// Event is a notification drained once per tick. Trip and job completions
// carry one event per resource so progress trackers can update
// independently of the core.
type Event struct {
	ID            string    `json:"id"`
	Seq           int64     `json:"seq"`
	Kind          EventKind `json:"kind"`
	SimTime       float64   `json:"sim_time"`
	RouteID       string    `json:"route_id,omitempty"`
	JobID         string    `json:"job_id,omitempty"`
	OrderID       string    `json:"order_id,omitempty"`
	ResourceID    string    `json:"resource_id,omitempty"`
	Delivered     int       `json:"delivered"`
	Lost          int       `json:"lost"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	Cells         []Cell    `json:"cells,omitempty"`
}

// VehiclePool is the vehicle count of one source.
type VehiclePool struct {
	SourceID  string `json:"source_id"`
	Total     int    `json:"total"`
	Available int    `json:"available"`
}

// WorldSnapshot is the persisted shape of the engine state. Only
// non-terminal jobs and orders are included.
type WorldSnapshot struct {
	SimTime  float64          `json:"sim_time"`
	EventSeq int64            `json:"event_seq"`
	Segments []RoadSegment    `json:"segments"`
	Routes   []TradeRoute     `json:"routes"`
	Jobs     []MultiTripJob   `json:"jobs"`
	Orders   []TransportOrder `json:"orders"`
	Pools    []VehiclePool    `json:"pools"`
}
