package transport

import (
	"github.com/c74oyo/overland-logistics/internal/domain"
)

// JobSpec describes a bulk shipment to split across several vehicles.
type JobSpec struct {
	RouteID         string             `json:"route_id"`
	Cargo           []domain.CargoLine `json:"cargo,omitempty"`
	VehicleCapacity int                `json:"vehicle_capacity"`
	Vehicles        int                `json:"vehicles"`
	CorrelationID   string             `json:"correlation_id,omitempty"`
}

// CreateJob reserves vehicles from the route's source pool and queues the
// job. It starts Pending and begins dispatching on the next tick. When
// spec.Cargo is empty the route's manifest is used.
func (c *Coordinator) CreateJob(spec JobSpec) (domain.MultiTripJob, error) {
	r, err := c.route(spec.RouteID)
	if err != nil {
		return domain.MultiTripJob{}, err
	}
	if spec.VehicleCapacity <= 0 || spec.Vehicles <= 0 {
		return domain.MultiTripJob{}, domain.Detail(domain.ErrInvalidJob, "capacity %d, vehicles %d", spec.VehicleCapacity, spec.Vehicles)
	}
	cargo := spec.Cargo
	if len(cargo) == 0 {
		cargo = r.Cargo
	}
	if err := validateCargo(cargo); err != nil {
		return domain.MultiTripJob{}, err
	}
	total := domain.TotalAmount(cargo)
	if total <= 0 {
		return domain.MultiTripJob{}, domain.Detail(domain.ErrInvalidJob, "empty manifest")
	}
	if !r.Valid {
		return domain.MultiTripJob{}, domain.Detail(domain.ErrRouteInvalid, "%s", r.ID)
	}
	if err := c.fleet.Reserve(r.SourceID, spec.Vehicles); err != nil {
		return domain.MultiTripJob{}, err
	}

	j := &domain.MultiTripJob{
		ID:               c.opts.NewID(),
		RouteID:          r.ID,
		SourceID:         r.SourceID,
		Cargo:            domain.CloneCargo(cargo),
		VehicleCapacity:  spec.VehicleCapacity,
		VehiclesAssigned: spec.Vehicles,
		TripsNeeded:      domain.TripsFor(total, spec.VehicleCapacity),
		Totals:           make(map[string]domain.ResourceTotals),
		CorrelationID:    spec.CorrelationID,
		State:            domain.JobPending,
		CreatedAt:        c.now,
	}
	c.jobs[j.ID] = j
	c.jobIDs = append(c.jobIDs, j.ID)
	return j.Clone(), nil
}

func (c *Coordinator) job(id string) (*domain.MultiTripJob, error) {
	j, ok := c.jobs[id]
	if !ok {
		return nil, domain.Detail(domain.ErrJobNotFound, "%s", id)
	}
	return j, nil
}

// CancelJob stops a job and returns its vehicles to the pool at once. Trips
// already on the road finish without touching the job.
func (c *Coordinator) CancelJob(id string) error {
	j, err := c.job(id)
	if err != nil {
		return err
	}
	if j.State.Terminal() {
		return domain.Detail(domain.ErrJobAlreadyDone, "%s is %s", id, j.State)
	}
	c.cancelJob(j)
	return nil
}

func (c *Coordinator) cancelJob(j *domain.MultiTripJob) {
	j.State = domain.JobCancelled
	_ = c.fleet.Release(j.SourceID, j.VehiclesAssigned)
	c.emit(domain.Event{
		Kind:          domain.EventJobCancelled,
		RouteID:       j.RouteID,
		JobID:         j.ID,
		Delivered:     j.Delivered,
		Lost:          j.Lost,
		CorrelationID: j.CorrelationID,
	})
}

func (c *Coordinator) completeJob(j *domain.MultiTripJob) {
	j.State = domain.JobCompleted
	_ = c.fleet.Release(j.SourceID, j.VehiclesAssigned)
	for _, res := range sortedResources(j.Totals) {
		t := j.Totals[res]
		c.emit(domain.Event{
			Kind:          domain.EventJobCompleted,
			RouteID:       j.RouteID,
			JobID:         j.ID,
			ResourceID:    res,
			Delivered:     t.Delivered,
			Lost:          t.Lost,
			CorrelationID: j.CorrelationID,
		})
	}
}

// PauseJob stops a job from dispatching new trips.
func (c *Coordinator) PauseJob(id string) error {
	j, err := c.job(id)
	if err != nil {
		return err
	}
	if j.State != domain.JobActive && j.State != domain.JobPending {
		return domain.Detail(domain.ErrJobNotActive, "%s is %s", id, j.State)
	}
	j.State = domain.JobPaused
	return nil
}

// ResumeJob lets a paused job dispatch again.
func (c *Coordinator) ResumeJob(id string) error {
	j, err := c.job(id)
	if err != nil {
		return err
	}
	if j.State != domain.JobPaused {
		return domain.Detail(domain.ErrJobNotActive, "%s is %s", id, j.State)
	}
	j.State = domain.JobActive
	return nil
}

// Jobs returns copies of every live job in creation order.
func (c *Coordinator) Jobs() []domain.MultiTripJob {
	out := make([]domain.MultiTripJob, 0, len(c.jobIDs))
	for _, id := range c.jobIDs {
		out = append(out, c.jobs[id].Clone())
	}
	return out
}

// Job returns a copy of one job.
func (c *Coordinator) Job(id string) (domain.MultiTripJob, error) {
	j, err := c.job(id)
	if err != nil {
		return domain.MultiTripJob{}, err
	}
	return j.Clone(), nil
}
