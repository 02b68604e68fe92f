package ipc

import (
	"context"
	"net/http"
)

// Server wraps an HTTP server with engine-specific routing.
type Server struct {
	httpServer *http.Server
}

// NewServer creates a Server that binds to the given address. hub may be nil
// to disable the websocket stream.
func NewServer(h *Handler, hub *Hub, listenAddr string) *Server {
	srv := &http.Server{
		Addr:    listenAddr,
		Handler: corsMiddleware(Routes(h, hub)),
	}
	return &Server{httpServer: srv}
}

// Routes builds the API mux.
func Routes(h *Handler, hub *Hub) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", h.Health)

	// Road endpoints.
	mux.HandleFunc("GET /api/v1/roads", h.ListRoads)
	mux.HandleFunc("POST /api/v1/roads", h.BuildRoads)
	mux.HandleFunc("POST /api/v1/roads/remove", h.RemoveRoads)
	mux.HandleFunc("POST /api/v1/roads/upgrade", h.UpgradeRoad)
	mux.HandleFunc("POST /api/v1/roads/repair", h.RepairRoad)

	// Route endpoints.
	mux.HandleFunc("GET /api/v1/routes", h.ListRoutes)
	mux.HandleFunc("POST /api/v1/routes", h.CreateRoute)
	mux.HandleFunc("GET /api/v1/routes/{id}", h.GetRoute)
	mux.HandleFunc("DELETE /api/v1/routes/{id}", h.DeleteRoute)
	mux.HandleFunc("PUT /api/v1/routes/{id}/cargo", h.SetRouteCargo)
	mux.HandleFunc("DELETE /api/v1/routes/{id}/cargo/{direction}/{resource}", h.RemoveRouteCargo)
	mux.HandleFunc("POST /api/v1/routes/{id}/auto", h.SetAutoDispatch)
	mux.HandleFunc("POST /api/v1/routes/{id}/active", h.SetRouteActive)
	mux.HandleFunc("POST /api/v1/routes/{id}/refresh", h.RefreshRoute)
	mux.HandleFunc("POST /api/v1/routes/{id}/dispatch", h.DispatchRoute)
	mux.HandleFunc("GET /api/v1/routes/{id}/estimate", h.EstimateRoute)

	// Job endpoints.
	mux.HandleFunc("GET /api/v1/jobs", h.ListJobs)
	mux.HandleFunc("POST /api/v1/jobs", h.CreateJob)
	mux.HandleFunc("GET /api/v1/jobs/{id}", h.GetJob)
	mux.HandleFunc("POST /api/v1/jobs/{id}/cancel", h.CancelJob)
	mux.HandleFunc("POST /api/v1/jobs/{id}/pause", h.PauseJob)
	mux.HandleFunc("POST /api/v1/jobs/{id}/resume", h.ResumeJob)

	// Order endpoints.
	mux.HandleFunc("GET /api/v1/orders", h.ListOrders)
	mux.HandleFunc("GET /api/v1/orders/{id}", h.GetOrder)
	mux.HandleFunc("POST /api/v1/orders/{id}/cancel", h.CancelOrder)

	mux.HandleFunc("GET /api/v1/pools", h.ListPools)
	mux.HandleFunc("PUT /api/v1/pools/{sourceID}", h.SetPool)

	mux.HandleFunc("GET /api/v1/events", h.ListEvents)
	mux.HandleFunc("GET /api/v1/snapshot", h.Snapshot)
	mux.HandleFunc("POST /api/v1/save", h.Save)

	if hub != nil {
		mux.HandleFunc("GET /api/v1/ws", hub.ServeWS)
	}
	return mux
}

// Start begins listening for HTTP connections. Blocks until the server stops.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// corsMiddleware adds CORS headers for browser clients.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
