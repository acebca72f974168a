package ui

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"speclens/domain/audit"
	"speclens/domain/checklist"
	"speclens/ports"
)

// OpsServer is the operational sidecar listener: liveness, readiness, and
// checklist introspection. It stays up even when the primary API is
// saturated.
type OpsServer struct {
	router    *chi.Mux
	repo      ports.ReportRepository
	checklist checklist.Descriptor
}

// NewOpsServer creates the ops listener
func NewOpsServer(repo ports.ReportRepository, descriptor checklist.Descriptor) *OpsServer {
	o := &OpsServer{
		router:    chi.NewRouter(),
		repo:      repo,
		checklist: descriptor,
	}
	o.setupRoutes()
	return o
}

func (o *OpsServer) setupRoutes() {
	o.router.Use(middleware.Recoverer)

	o.router.Get("/healthz", o.handleHealthz)
	o.router.Get("/readyz", o.handleReadyz)
	o.router.Get("/debug/checklist", o.handleChecklist)
}

// Handler exposes the router for tests and embedding
func (o *OpsServer) Handler() http.Handler {
	return o.router
}

// Start blocks serving the ops endpoints
func (o *OpsServer) Start(addr string) error {
	log.Printf("Starting ops listener on http://%s", addr)
	return http.ListenAndServe(addr, o.router)
}

func (o *OpsServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":         "ok",
		"engine_version": audit.EngineVersion,
	})
}

// handleReadyz proves the report store answers before declaring ready
func (o *OpsServer) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	count, err := o.repo.Count(ctx)
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		log.Printf("[Ops] Readiness check failed: %v", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ready",
		"reports": count,
	})
}

func (o *OpsServer) handleChecklist(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(o.checklist)
}
