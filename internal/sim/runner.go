package sim

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/c74oyo/overland-logistics/internal/config"
	"github.com/c74oyo/overland-logistics/internal/domain"
	"github.com/c74oyo/overland-logistics/internal/economy"
	"github.com/c74oyo/overland-logistics/internal/store"
	"github.com/c74oyo/overland-logistics/internal/transport"
)

// RunnerConfig holds tunable parameters for the tick loop.
type RunnerConfig struct {
	TickInterval time.Duration
	// TimeScale converts wall seconds into simulation seconds.
	TimeScale float64
	// AutosaveInterval is the wall time between saves. Zero disables autosave.
	AutosaveInterval time.Duration
	Transport        config.TransportConfig
	Options          transport.Options
}

// EventListener receives every tick's events after they are persisted.
type EventListener func([]domain.Event)

// Runner owns the coordinator. All reads and writes go through Do or View.
type Runner struct {
	mu        sync.Mutex
	world     *config.World
	asm       Assembly
	store     *store.WorldStore
	logger    *slog.Logger
	cfg       RunnerConfig
	listeners []EventListener

	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewRunner assembles a fresh world. st may be nil to run without
// persistence.
func NewRunner(w *config.World, st *store.WorldStore, logger *slog.Logger, cfg RunnerConfig) *Runner {
	if cfg.TickInterval == 0 {
		cfg.TickInterval = 100 * time.Millisecond
	}
	if cfg.TimeScale == 0 {
		cfg.TimeScale = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		world:  w,
		asm:    Assemble(w, w.Seed(), cfg.Transport, cfg.Options),
		store:  st,
		logger: logger,
		cfg:    cfg,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Restore replaces the live world with the stored one, if any.
func (r *Runner) Restore(ctx context.Context) (bool, error) {
	if r.store == nil {
		return false, nil
	}
	snap, econ, found, err := r.store.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load world: %w", err)
	}
	if !found {
		return false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.asm = Assemble(r.world, econ, r.cfg.Transport, r.cfg.Options)
	r.asm.Coordinator.Restore(snap)
	r.logger.Info("world restored",
		"sim_time", snap.SimTime,
		"routes", len(snap.Routes),
		"jobs", len(snap.Jobs),
		"orders", len(snap.Orders),
	)
	return true, nil
}

// OnEvents registers a listener for tick events.
func (r *Runner) OnEvents(fn EventListener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Do runs fn with exclusive access to the coordinator. Events fn queues are
// delivered with the next tick or save.
func (r *Runner) Do(fn func(c *transport.Coordinator) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r.asm.Coordinator)
}

// View runs fn with exclusive access to the coordinator and economy.
func (r *Runner) View(fn func(c *transport.Coordinator, e *economy.World)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.asm.Coordinator, r.asm.Economy)
}

// SiteArea returns the footprint of a base or outpost.
func (r *Runner) SiteArea(id string) (domain.Area, bool) {
	return r.world.SiteArea(id)
}

// Step advances the simulation by dt seconds, persists the tick's events
// and hands them to listeners.
func (r *Runner) Step(ctx context.Context, dt float64) []domain.Event {
	r.mu.Lock()
	events := r.asm.Coordinator.Tick(dt)
	listeners := r.copyListeners()
	r.mu.Unlock()

	r.publish(ctx, events, listeners)
	return events
}

func (r *Runner) copyListeners() []EventListener {
	listeners := make([]EventListener, len(r.listeners))
	copy(listeners, r.listeners)
	return listeners
}

func (r *Runner) publish(ctx context.Context, events []domain.Event, listeners []EventListener) {
	if len(events) == 0 {
		return
	}
	if r.store != nil {
		if err := r.store.AppendEvents(ctx, events); err != nil {
			r.logger.Error("append events", "err", err, "count", len(events))
		}
	}
	for _, e := range events {
		r.logger.Debug("event", "kind", e.Kind, "seq", e.Seq, "route", e.RouteID, "job", e.JobID, "order", e.OrderID)
	}
	for _, fn := range listeners {
		fn(events)
	}
}

// Save writes the whole world to the store. Events still queued by commands
// are flushed and appended first, so the saved sequence never runs ahead of
// the event log.
func (r *Runner) Save(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	r.mu.Lock()
	events := r.asm.Coordinator.Flush()
	listeners := r.copyListeners()
	snap := r.asm.Coordinator.Snapshot()
	econ := r.asm.Economy.State()
	r.mu.Unlock()

	r.publish(ctx, events, listeners)
	if err := r.store.Save(ctx, snap, econ); err != nil {
		return fmt.Errorf("save world: %w", err)
	}
	return nil
}

// Start spawns the tick loop. It stops on Stop or when ctx is done.
func (r *Runner) Start(ctx context.Context) {
	dt := r.cfg.TickInterval.Seconds() * r.cfg.TimeScale

	go func() {
		defer close(r.done)
		ticker := time.NewTicker(r.cfg.TickInterval)
		defer ticker.Stop()

		var autosave <-chan time.Time
		if r.cfg.AutosaveInterval > 0 && r.store != nil {
			t := time.NewTicker(r.cfg.AutosaveInterval)
			defer t.Stop()
			autosave = t.C
		}

		for {
			select {
			case <-r.stopCh:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Step(ctx, dt)
			case <-autosave:
				if err := r.Save(ctx); err != nil {
					r.logger.Error("autosave", "err", err)
				}
			}
		}
	}()
	r.logger.Info("simulation started", "tick", r.cfg.TickInterval, "time_scale", r.cfg.TimeScale)
}

// Stop signals the tick loop to stop and waits for it. Safe to call multiple
// times; only valid after Start.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	<-r.done
}
