package ui

import (
	"log"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"speclens/app"
	"speclens/domain/audit"
	"speclens/domain/checklist"
	"speclens/ports"
)

// summaryCacheTTL bounds how stale the list endpoint may serve. New audits
// invalidate the cache immediately; the TTL only covers external writers
// sharing the same database.
const summaryCacheTTL = 10 * time.Second

// Server exposes the audit API over HTTP
type Server struct {
	router    *gin.Engine
	service   *app.AuditService
	exporters map[string]ports.ReportExporter
	checklist checklist.Descriptor

	// maxBodyBytes caps the request body on audit submissions. Zero
	// disables the cap.
	maxBodyBytes int64

	// Summary caching for the list endpoint
	summaryCache     map[string][]audit.ReportSummary
	cacheMutex       sync.RWMutex
	cacheLastUpdated time.Time
}

// NewServer creates a new API server instance
func NewServer(service *app.AuditService, exporters map[string]ports.ReportExporter, maxBodyBytes int64) *Server {
	s := &Server{
		router:       gin.Default(),
		service:      service,
		exporters:    exporters,
		checklist:    service.Checklist(),
		maxBodyBytes: maxBodyBytes,
		summaryCache: make(map[string][]audit.ReportSummary),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.POST("/audits", s.handleCreateAudit)
		api.GET("/audits", s.handleListAudits)
		api.GET("/audits/:id", s.handleGetAudit)
		api.GET("/audits/:id/export", s.handleExportAudit)
		api.GET("/checklist", s.handleChecklist)
	}
}

// Router exposes the underlying engine for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	log.Printf("Starting audit API on http://%s", addr)
	return s.router.Run(addr)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":            "ok",
		"engine_version":    audit.EngineVersion,
		"checklist_version": s.checklist.Version,
	})
}

func (s *Server) handleChecklist(c *gin.Context) {
	c.JSON(200, s.checklist)
}
