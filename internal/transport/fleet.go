package transport

import (
	"sort"

	"github.com/c74oyo/overland-logistics/internal/domain"
)

// Fleet tracks the vehicle pool of every source. Vehicles are reserved by
// jobs for their whole lifetime and by route orders for one round trip.
type Fleet struct {
	pools map[string]*domain.VehiclePool
}

// NewFleet creates an empty Fleet.
func NewFleet() *Fleet {
	return &Fleet{pools: make(map[string]*domain.VehiclePool)}
}

// SetPool sets the total vehicle count of a source. Vehicles already out
// stay out; availability never drops below zero.
func (f *Fleet) SetPool(sourceID string, total int) {
	if total < 0 {
		total = 0
	}
	p, ok := f.pools[sourceID]
	if !ok {
		f.pools[sourceID] = &domain.VehiclePool{SourceID: sourceID, Total: total, Available: total}
		return
	}
	inUse := p.Total - p.Available
	p.Total = total
	p.Available = total - inUse
	if p.Available < 0 {
		p.Available = 0
	}
}

// Reserve takes n vehicles from a source's pool.
func (f *Fleet) Reserve(sourceID string, n int) error {
	p, ok := f.pools[sourceID]
	if !ok {
		return domain.Detail(domain.ErrPoolNotFound, "source %s", sourceID)
	}
	if n <= 0 {
		return domain.Detail(domain.ErrInvalidJob, "reserve %d vehicles", n)
	}
	if p.Available < n {
		return domain.Detail(domain.ErrNoVehicles, "source %s has %d of %d requested", sourceID, p.Available, n)
	}
	p.Available -= n
	return nil
}

// Release returns n vehicles to a source's pool. Releasing more than the
// pool's total is clamped and reported as ErrPoolInconsistent.
func (f *Fleet) Release(sourceID string, n int) error {
	p, ok := f.pools[sourceID]
	if !ok {
		return domain.Detail(domain.ErrPoolNotFound, "source %s", sourceID)
	}
	if n <= 0 {
		return nil
	}
	p.Available += n
	if p.Available > p.Total {
		p.Available = p.Total
		return domain.Detail(domain.ErrPoolInconsistent, "source %s", sourceID)
	}
	return nil
}

// Pool returns a copy of a source's pool.
func (f *Fleet) Pool(sourceID string) (domain.VehiclePool, bool) {
	p, ok := f.pools[sourceID]
	if !ok {
		return domain.VehiclePool{}, false
	}
	return *p, true
}

// Pools returns copies of all pools sorted by source id.
func (f *Fleet) Pools() []domain.VehiclePool {
	out := make([]domain.VehiclePool, 0, len(f.pools))
	for _, p := range f.pools {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SourceID < out[j].SourceID })
	return out
}

// Restore replaces every pool with the given records.
func (f *Fleet) Restore(pools []domain.VehiclePool) {
	f.pools = make(map[string]*domain.VehiclePool, len(pools))
	for _, p := range pools {
		p := p
		if p.Available > p.Total {
			p.Available = p.Total
		}
		f.pools[p.SourceID] = &p
	}
}
