// Package ipc provides the HTTP API of the logistics engine.
package ipc

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/c74oyo/overland-logistics/internal/domain"
	"github.com/c74oyo/overland-logistics/internal/economy"
	"github.com/c74oyo/overland-logistics/internal/sim"
	"github.com/c74oyo/overland-logistics/internal/store"
	"github.com/c74oyo/overland-logistics/internal/transport"
)

// Handler holds all dependencies for the HTTP handlers.
type Handler struct {
	Runner *sim.Runner
	// Store backs the events endpoint and manual saves. May be nil.
	Store *store.WorldStore
}

// APIError is a structured error response.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RoadRequest is the body of the road build and remove endpoints.
type RoadRequest struct {
	Cells    []domain.Cell `json:"cells"`
	RoadType string        `json:"road_type"`
}

// CellRequest is the body of the upgrade and repair endpoints.
type CellRequest struct {
	Cell domain.Cell `json:"cell"`
	// Percent is the repair amount. Zero or less repairs fully.
	Percent float64 `json:"percent"`
}

// AutoDispatchRequest is the body of POST /api/v1/routes/{id}/auto.
type AutoDispatchRequest struct {
	Auto     bool    `json:"auto"`
	Interval float64 `json:"interval"`
}

// ActiveRequest is the body of POST /api/v1/routes/{id}/active.
type ActiveRequest struct {
	Active bool `json:"active"`
}

// PoolRequest is the body of PUT /api/v1/pools/{sourceID}.
type PoolRequest struct {
	Total int `json:"total"`
}

// WorldView is the response of GET /api/v1/snapshot.
type WorldView struct {
	World   domain.WorldSnapshot `json:"world"`
	Economy economy.Seed         `json:"economy"`
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	var now float64
	h.Runner.View(func(c *transport.Coordinator, _ *economy.World) { now = c.Now() })
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sim_time": now})
}

// ---- Roads ----

// ListRoads handles GET /api/v1/roads.
func (h *Handler) ListRoads(w http.ResponseWriter, r *http.Request) {
	var segs []domain.RoadSegment
	h.Runner.View(func(c *transport.Coordinator, _ *economy.World) { segs = c.Segments() })
	if segs == nil {
		segs = []domain.RoadSegment{}
	}
	writeJSON(w, http.StatusOK, segs)
}

// BuildRoads handles POST /api/v1/roads.
func (h *Handler) BuildRoads(w http.ResponseWriter, r *http.Request) {
	var req RoadRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.Cells) == 0 || req.RoadType == "" {
		writeJSON(w, http.StatusBadRequest, APIError{Code: 400, Message: "cells and road_type are required"})
		return
	}
	err := h.Runner.Do(func(c *transport.Coordinator) error {
		return c.BuildRoadPath(req.Cells, req.RoadType)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"built": len(req.Cells)})
}

// RemoveRoads handles POST /api/v1/roads/remove.
func (h *Handler) RemoveRoads(w http.ResponseWriter, r *http.Request) {
	var req RoadRequest
	if !decode(w, r, &req) {
		return
	}
	var n int
	h.Runner.Do(func(c *transport.Coordinator) error {
		n = c.RemoveRoadPath(req.Cells)
		return nil
	})
	writeJSON(w, http.StatusOK, map[string]int{"removed": n})
}

// UpgradeRoad handles POST /api/v1/roads/upgrade.
func (h *Handler) UpgradeRoad(w http.ResponseWriter, r *http.Request) {
	var req CellRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.Runner.Do(func(c *transport.Coordinator) error { return c.UpgradeRoad(req.Cell) }); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RepairRoad handles POST /api/v1/roads/repair.
func (h *Handler) RepairRoad(w http.ResponseWriter, r *http.Request) {
	var req CellRequest
	if !decode(w, r, &req) {
		return
	}
	var cost float64
	err := h.Runner.Do(func(c *transport.Coordinator) error {
		var err error
		cost, err = c.RepairRoad(req.Cell, req.Percent)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"cost": cost})
}

// ---- Routes ----

// ListRoutes handles GET /api/v1/routes.
func (h *Handler) ListRoutes(w http.ResponseWriter, r *http.Request) {
	var routes []domain.TradeRoute
	h.Runner.View(func(c *transport.Coordinator, _ *economy.World) { routes = c.Routes() })
	writeJSON(w, http.StatusOK, routes)
}

// CreateRoute handles POST /api/v1/routes. Footprints left out of the body
// default to the configured site areas.
func (h *Handler) CreateRoute(w http.ResponseWriter, r *http.Request) {
	var spec transport.RouteSpec
	if !decode(w, r, &spec) {
		return
	}
	if spec.SourceID == "" || spec.TargetID == "" {
		writeJSON(w, http.StatusBadRequest, APIError{Code: 400, Message: "source_id and target_id are required"})
		return
	}
	if spec.SourceArea == (domain.Area{}) {
		spec.SourceArea, _ = h.Runner.SiteArea(spec.SourceID)
	}
	if spec.TargetArea == (domain.Area{}) {
		spec.TargetArea, _ = h.Runner.SiteArea(spec.TargetID)
	}

	var route domain.TradeRoute
	err := h.Runner.Do(func(c *transport.Coordinator) error {
		var err error
		route, err = c.CreateTradeRoute(spec)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, route)
}

// GetRoute handles GET /api/v1/routes/{id}.
func (h *Handler) GetRoute(w http.ResponseWriter, r *http.Request) {
	h.routeOp(w, r, http.StatusOK, func(c *transport.Coordinator, id string) (domain.TradeRoute, error) {
		return c.Route(id)
	})
}

// DeleteRoute handles DELETE /api/v1/routes/{id}.
func (h *Handler) DeleteRoute(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.Runner.Do(func(c *transport.Coordinator) error { return c.RemoveTradeRoute(id) }); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetRouteCargo handles PUT /api/v1/routes/{id}/cargo.
func (h *Handler) SetRouteCargo(w http.ResponseWriter, r *http.Request) {
	var lines []domain.CargoLine
	if !decode(w, r, &lines) {
		return
	}
	h.routeOp(w, r, http.StatusOK, func(c *transport.Coordinator, id string) (domain.TradeRoute, error) {
		return c.SetRouteCargo(id, lines)
	})
}

// RemoveRouteCargo handles DELETE /api/v1/routes/{id}/cargo/{direction}/{resource}.
func (h *Handler) RemoveRouteCargo(w http.ResponseWriter, r *http.Request) {
	dir := domain.CargoDirection(r.PathValue("direction"))
	resource := r.PathValue("resource")
	if !dir.Valid() {
		writeJSON(w, http.StatusBadRequest, APIError{Code: 400, Message: "direction must be export or import"})
		return
	}
	h.routeOp(w, r, http.StatusOK, func(c *transport.Coordinator, id string) (domain.TradeRoute, error) {
		return c.RemoveRouteCargo(id, resource, dir)
	})
}

// SetAutoDispatch handles POST /api/v1/routes/{id}/auto.
func (h *Handler) SetAutoDispatch(w http.ResponseWriter, r *http.Request) {
	var req AutoDispatchRequest
	if !decode(w, r, &req) {
		return
	}
	h.routeOp(w, r, http.StatusOK, func(c *transport.Coordinator, id string) (domain.TradeRoute, error) {
		return c.SetAutoDispatch(id, req.Auto, req.Interval)
	})
}

// SetRouteActive handles POST /api/v1/routes/{id}/active.
func (h *Handler) SetRouteActive(w http.ResponseWriter, r *http.Request) {
	var req ActiveRequest
	if !decode(w, r, &req) {
		return
	}
	h.routeOp(w, r, http.StatusOK, func(c *transport.Coordinator, id string) (domain.TradeRoute, error) {
		return c.SetRouteActive(id, req.Active)
	})
}

// RefreshRoute handles POST /api/v1/routes/{id}/refresh.
func (h *Handler) RefreshRoute(w http.ResponseWriter, r *http.Request) {
	h.routeOp(w, r, http.StatusOK, func(c *transport.Coordinator, id string) (domain.TradeRoute, error) {
		return c.RefreshRoute(id)
	})
}

// DispatchRoute handles POST /api/v1/routes/{id}/dispatch.
func (h *Handler) DispatchRoute(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var order domain.TransportOrder
	err := h.Runner.Do(func(c *transport.Coordinator) error {
		var err error
		order, err = c.DispatchRoute(id)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

// EstimateRoute handles GET /api/v1/routes/{id}/estimate.
func (h *Handler) EstimateRoute(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var est any
	err := h.Runner.Do(func(c *transport.Coordinator) error {
		e, err := c.EstimateRoute(id)
		est = e
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, est)
}

func (h *Handler) routeOp(w http.ResponseWriter, r *http.Request, status int, fn func(*transport.Coordinator, string) (domain.TradeRoute, error)) {
	id := r.PathValue("id")
	var route domain.TradeRoute
	err := h.Runner.Do(func(c *transport.Coordinator) error {
		var err error
		route, err = fn(c, id)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, route)
}

// ---- Jobs ----

// ListJobs handles GET /api/v1/jobs.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	var jobs []domain.MultiTripJob
	h.Runner.View(func(c *transport.Coordinator, _ *economy.World) { jobs = c.Jobs() })
	writeJSON(w, http.StatusOK, jobs)
}

// CreateJob handles POST /api/v1/jobs.
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var spec transport.JobSpec
	if !decode(w, r, &spec) {
		return
	}
	var job domain.MultiTripJob
	err := h.Runner.Do(func(c *transport.Coordinator) error {
		var err error
		job, err = c.CreateJob(spec)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

// GetJob handles GET /api/v1/jobs/{id}.
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var job domain.MultiTripJob
	err := h.Runner.Do(func(c *transport.Coordinator) error {
		var err error
		job, err = c.Job(id)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// CancelJob handles POST /api/v1/jobs/{id}/cancel.
func (h *Handler) CancelJob(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, (*transport.Coordinator).CancelJob)
}

// PauseJob handles POST /api/v1/jobs/{id}/pause.
func (h *Handler) PauseJob(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, (*transport.Coordinator).PauseJob)
}

// ResumeJob handles POST /api/v1/jobs/{id}/resume.
func (h *Handler) ResumeJob(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, (*transport.Coordinator).ResumeJob)
}

// ---- Orders ----

// ListOrders handles GET /api/v1/orders.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	var orders []domain.TransportOrder
	h.Runner.View(func(c *transport.Coordinator, _ *economy.World) { orders = c.Orders() })
	writeJSON(w, http.StatusOK, orders)
}

// GetOrder handles GET /api/v1/orders/{id}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var order domain.TransportOrder
	err := h.Runner.Do(func(c *transport.Coordinator) error {
		var err error
		order, err = c.Order(id)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// CancelOrder handles POST /api/v1/orders/{id}/cancel.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, (*transport.Coordinator).CancelOrder)
}

func (h *Handler) command(w http.ResponseWriter, r *http.Request, fn func(*transport.Coordinator, string) error) {
	id := r.PathValue("id")
	if err := h.Runner.Do(func(c *transport.Coordinator) error { return fn(c, id) }); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- Pools, events, snapshot ----

// ListPools handles GET /api/v1/pools.
func (h *Handler) ListPools(w http.ResponseWriter, r *http.Request) {
	var pools []domain.VehiclePool
	h.Runner.View(func(c *transport.Coordinator, _ *economy.World) { pools = c.Pools() })
	writeJSON(w, http.StatusOK, pools)
}

// SetPool handles PUT /api/v1/pools/{sourceID}.
func (h *Handler) SetPool(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("sourceID")
	var req PoolRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Total < 0 {
		writeJSON(w, http.StatusBadRequest, APIError{Code: 400, Message: "total must not be negative"})
		return
	}
	if err := h.Runner.Do(func(c *transport.Coordinator) error { return c.SetPool(id, req.Total) }); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListEvents handles GET /api/v1/events?since_seq=N&limit=M.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		writeJSON(w, http.StatusServiceUnavailable, APIError{Code: 503, Message: "event log not configured"})
		return
	}
	sinceSeq := int64(0)
	if s := r.URL.Query().Get("since_seq"); s != "" {
		parsed, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			sinceSeq = parsed
		}
	}
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		if parsed, err := strconv.Atoi(s); err == nil {
			limit = parsed
		}
	}

	events, err := h.Store.EventsSince(r.Context(), sinceSeq, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if events == nil {
		events = []domain.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// Snapshot handles GET /api/v1/snapshot.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	var view WorldView
	h.Runner.View(func(c *transport.Coordinator, e *economy.World) {
		view.World = c.Snapshot()
		view.Economy = e.State()
	})
	writeJSON(w, http.StatusOK, view)
}

// Save handles POST /api/v1/save.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	if err := h.Runner.Save(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, APIError{Code: 400, Message: "invalid request body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	var engErr *domain.EngineError
	if errors.As(err, &engErr) {
		writeJSON(w, statusFor(engErr.Code), APIError{Code: engErr.Code, Message: engErr.Message})
		return
	}
	writeJSON(w, http.StatusInternalServerError, APIError{Code: -1, Message: err.Error()})
}

func statusFor(code int) int {
	switch code {
	case domain.ErrRouteNotFound.Code, domain.ErrJobNotFound.Code, domain.ErrOrderNotFound.Code,
		domain.ErrPoolNotFound.Code, domain.ErrNoRoad.Code, domain.ErrCargoNotFound.Code:
		return http.StatusNotFound
	case domain.ErrNoVehicles.Code, domain.ErrOrderSettling.Code, domain.ErrJobAlreadyDone.Code:
		return http.StatusConflict
	case domain.ErrRouteInvalid.Code, domain.ErrRouteInactive.Code, domain.ErrNothingToShip.Code,
		domain.ErrInvalidTransition.Code, domain.ErrJobNotActive.Code, domain.ErrRoadRejected.Code:
		return http.StatusUnprocessableEntity
	case domain.ErrInvalidFootprint.Code, domain.ErrUnknownSource.Code, domain.ErrUnknownCounterparty.Code,
		domain.ErrInvalidCargo.Code, domain.ErrInvalidJob.Code, domain.ErrUnknownRoadType.Code:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
