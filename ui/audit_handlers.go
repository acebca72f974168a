package ui

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"speclens/app"
	"speclens/domain/audit"
	"speclens/domain/core"
	"speclens/internal/errors"
)

// auditRequestBody is the JSON payload for audit submissions
type auditRequestBody struct {
	Text   string `json:"text"`
	Domain string `json:"domain"`
	Strict *bool  `json:"strict,omitempty"`
}

func (s *Server) handleCreateAudit(c *gin.Context) {
	if s.maxBodyBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBodyBytes)
	}

	var body auditRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": "request body exceeds the maximum audit size",
				"code":  errors.CodeInputTooLarge,
			})
			return
		}
		log.Printf("[API] Invalid audit request body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body - text and domain required",
			"code":  errors.CodeInvalidInput,
		})
		return
	}

	report, err := s.service.RunAudit(c.Request.Context(), app.AuditRequest{
		Text:   body.Text,
		Domain: body.Domain,
		Strict: body.Strict,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	s.invalidateSummaryCache()
	c.JSON(http.StatusCreated, report)
}

func (s *Server) handleListAudits(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	cacheKey := fmt.Sprintf("%d:%d", limit, offset)
	if summaries, ok := s.cachedSummaries(cacheKey); ok {
		c.JSON(http.StatusOK, gin.H{"reports": summaries, "count": len(summaries)})
		return
	}

	summaries, err := s.service.ListReports(c.Request.Context(), limit, offset)
	if err != nil {
		s.respondError(c, err)
		return
	}

	s.storeSummaries(cacheKey, summaries)
	c.JSON(http.StatusOK, gin.H{"reports": summaries, "count": len(summaries)})
}

func (s *Server) handleGetAudit(c *gin.Context) {
	id, err := core.ParseAuditID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid audit id",
			"code":  errors.CodeInvalidInput,
		})
		return
	}

	report, err := s.service.GetReport(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleExportAudit(c *gin.Context) {
	id, err := core.ParseAuditID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid audit id",
			"code":  errors.CodeInvalidInput,
		})
		return
	}

	format := c.DefaultQuery("format", "json")
	exporter, ok := s.exporters[format]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("unsupported export format: %s", format),
			"code":  errors.CodeInvalidInput,
		})
		return
	}

	report, err := s.service.GetReport(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}

	data, err := exporter.Export(report)
	if err != nil {
		log.Printf("[API] Export failed for report %s (%s): %v", id, format, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to export report",
			"code":  errors.CodeInternalError,
		})
		return
	}

	filename := fmt.Sprintf("audit-%s%s", id, exporter.FileExtension())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, exporter.ContentType(), data)
}

// respondError maps service errors onto HTTP statuses
func (s *Server) respondError(c *gin.Context, err error) {
	if core.IsNotFoundError(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "code": errors.CodeNotFound})
		return
	}

	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.CodeInvalidInput:
		status = http.StatusBadRequest
	case errors.CodeInputTooLarge:
		status = http.StatusRequestEntityTooLarge
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeContextualUnavailable:
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		log.Printf("[API] Request failed: %v", err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}

func (s *Server) cachedSummaries(key string) ([]audit.ReportSummary, bool) {
	s.cacheMutex.RLock()
	defer s.cacheMutex.RUnlock()
	if time.Since(s.cacheLastUpdated) > summaryCacheTTL {
		return nil, false
	}
	summaries, ok := s.summaryCache[key]
	return summaries, ok
}

func (s *Server) storeSummaries(key string, summaries []audit.ReportSummary) {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()
	if len(s.summaryCache) == 0 {
		s.cacheLastUpdated = time.Now()
	}
	s.summaryCache[key] = summaries
}

func (s *Server) invalidateSummaryCache() {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()
	s.summaryCache = make(map[string][]audit.ReportSummary)
}
