// =============================================================================
// Invoice Readiness Analyzer - HTTP Handlers
// =============================================================================
//
// Handler implementations for the routes registered in server.go. Error
// responses are always {"error": "<message>"} with a matching status code;
// rule violations never surface here (they live inside the report).
//
// =============================================================================

package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/complyflow/invoice-readiness/internal/analyzer"
	"github.com/complyflow/invoice-readiness/internal/ingest"
	"github.com/complyflow/invoice-readiness/internal/store"
	"github.com/complyflow/invoice-readiness/internal/types"
	"github.com/complyflow/invoice-readiness/pkg/utils"
)

// =============================================================================
// UPLOAD
// =============================================================================

// handleUpload accepts a dataset as a multipart file ("file") or as pasted
// text ("text"), parses it, and stores the parsed rows for later analysis.
func (s *Server) handleUpload(c *gin.Context) {
	var (
		content      []byte
		originalName string
		format       string
	)

	if fileHeader, err := c.FormFile("file"); err == nil {
		if fileHeader.Size == 0 {
			abortError(c, http.StatusBadRequest, "uploaded file is empty")
			return
		}
		if fileHeader.Size > s.cfg.MaxUploadBytes {
			abortError(c, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("file too large: maximum size is %d bytes", s.cfg.MaxUploadBytes))
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			abortError(c, http.StatusBadRequest, "failed to open uploaded file")
			return
		}
		defer file.Close()

		content, err = utils.ReadAllLimited(file, s.cfg.MaxUploadBytes)
		if err != nil {
			abortError(c, http.StatusRequestEntityTooLarge, err.Error())
			return
		}

		originalName = fileHeader.Filename
		format = ingest.FormatForFilename(originalName)
		if format == "" && fileHeader.Filename != "" {
			abortError(c, http.StatusBadRequest, "only CSV, JSON, and XLSX files are allowed")
			return
		}
	} else if text := c.PostForm("text"); text != "" {
		content = []byte(text)
		originalName = "pasted-data"
	} else {
		abortError(c, http.StatusBadRequest, "no file or text data provided")
		return
	}

	result, err := ingest.ParseWithLimit(content, format, s.cfg.MaxRows)
	if err != nil {
		abortError(c, http.StatusBadRequest, err.Error())
		return
	}

	upload := &store.Upload{
		ID:           utils.NewUploadID(),
		OriginalName: originalName,
		Format:       result.Format,
		Country:      defaultString(c.PostForm("country"), "Not specified"),
		ERP:          defaultString(c.PostForm("erp"), "Not specified"),
		RowsParsed:   result.ParsedCount,
		TotalRows:    result.OriginalCount,
		DataScore:    result.DataScore,
		Rows:         result.Rows,
	}

	if err := s.store.SaveUpload(c.Request.Context(), upload); err != nil {
		s.log.WithError(err).Error("failed to save upload")
		abortError(c, http.StatusInternalServerError, "failed to save upload")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"uploadId": upload.ID,
		"meta": gin.H{
			"fileType":     result.Format,
			"rowsParsed":   result.ParsedCount,
			"originalRows": result.OriginalCount,
			"dataScore":    result.DataScore,
		},
	})
}

// handleGetUpload returns upload metadata without the parsed rows.
func (s *Server) handleGetUpload(c *gin.Context) {
	upload, err := s.store.GetUpload(c.Request.Context(), c.Param("id"))
	if err != nil {
		notFoundOrInternal(c, s, err, "upload")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"uploadId":     upload.ID,
		"originalName": upload.OriginalName,
		"fileType":     upload.Format,
		"country":      upload.Country,
		"erp":          upload.ERP,
		"rowsParsed":   upload.RowsParsed,
		"totalRows":    upload.TotalRows,
		"createdAt":    upload.CreatedAt,
	})
}

// handlePreview returns the first rows of the parsed dataset.
func (s *Server) handlePreview(c *gin.Context) {
	limit := intQuery(c, "limit", 20)

	upload, err := s.store.GetUpload(c.Request.Context(), c.Param("id"))
	if err != nil {
		notFoundOrInternal(c, s, err, "upload")
		return
	}

	preview := upload.Rows
	if len(preview) > limit {
		preview = preview[:limit]
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    preview,
		"total":   len(upload.Rows),
		"showing": len(preview),
	})
}

// =============================================================================
// ANALYZE
// =============================================================================

// analyzeRequest is the POST /api/analyze body.
type analyzeRequest struct {
	UploadID      string              `json:"uploadId" binding:"required"`
	Questionnaire types.Questionnaire `json:"questionnaire"`
}

// handleAnalyze runs the full analysis pipeline over a stored upload and
// persists the resulting report.
func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "uploadId is required")
		return
	}

	upload, err := s.store.GetUpload(c.Request.Context(), req.UploadID)
	if err != nil {
		notFoundOrInternal(c, s, err, "upload")
		return
	}
	if len(upload.Rows) == 0 {
		abortError(c, http.StatusBadRequest, "no valid data to analyze")
		return
	}

	result, err := s.analyzer.Run(analyzer.Input{
		Rows:          upload.Rows,
		Questionnaire: req.Questionnaire,
		DataScore:     upload.DataScore,
		Country:       upload.Country,
		ERP:           upload.ERP,
	})
	if err != nil {
		s.log.WithError(err).Error("analysis failed")
		abortError(c, http.StatusInternalServerError, err.Error())
		return
	}

	if err := s.store.SaveReport(c.Request.Context(), upload.ID, result); err != nil {
		s.log.WithError(err).Error("failed to save report")
		abortError(c, http.StatusInternalServerError, "failed to save report")
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleAnalyzeStatus reports whether an upload has been analyzed yet.
func (s *Server) handleAnalyzeStatus(c *gin.Context) {
	summary, err := s.store.ReportForUpload(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{"analyzed": false})
		return
	}
	if err != nil {
		s.log.WithError(err).Error("status check failed")
		abortError(c, http.StatusInternalServerError, "failed to check analysis status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"analyzed":     true,
		"reportId":     summary.ReportID,
		"overallScore": summary.OverallScore,
		"createdAt":    summary.CreatedAt,
	})
}

// =============================================================================
// REPORTS
// =============================================================================

// handleGetReport returns the full stored report.
func (s *Server) handleGetReport(c *gin.Context) {
	result, err := s.store.GetReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		notFoundOrInternal(c, s, err, "report")
		return
	}
	c.JSON(http.StatusOK, result)
}

// handleDownloadReport returns the report with attachment headers so the
// browser saves it as a file.
func (s *Server) handleDownloadReport(c *gin.Context) {
	result, err := s.store.GetReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		notFoundOrInternal(c, s, err, "report")
		return
	}

	c.Header("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "report-"+result.ReportID+".json"))
	c.JSON(http.StatusOK, result)
}

// handleDeleteReport removes a report.
func (s *Server) handleDeleteReport(c *gin.Context) {
	id := c.Param("id")
	if err := s.store.DeleteReport(c.Request.Context(), id); err != nil {
		notFoundOrInternal(c, s, err, "report")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "report deleted successfully",
		"reportId": id,
	})
}

// handleRecentReports lists the newest report summaries.
func (s *Server) handleRecentReports(c *gin.Context) {
	limit := intQuery(c, "limit", s.cfg.RecentReportsLimit)

	summaries, err := s.store.RecentReports(c.Request.Context(), limit)
	if err != nil {
		s.log.WithError(err).Error("failed to list reports")
		abortError(c, http.StatusInternalServerError, "failed to retrieve reports")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reports": summaries,
		"total":   len(summaries),
	})
}

// handleShareReport returns the condensed shareable view of a report.
func (s *Server) handleShareReport(c *gin.Context) {
	result, err := s.store.GetReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		notFoundOrInternal(c, s, err, "report")
		return
	}

	passed, failed := 0, 0
	for _, finding := range result.RuleFindings {
		if finding.OK {
			passed++
		} else {
			failed++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"reportId": result.ReportID,
		"scores":   result.Scores,
		"coverage": gin.H{
			"matched":      result.Coverage.Matched,
			"missing":      result.Coverage.Missing,
			"closeMatches": len(result.Coverage.Close),
		},
		"rulesSummary": gin.H{
			"passed": passed,
			"failed": failed,
			"total":  len(result.RuleFindings),
		},
		"gaps": result.Gaps,
		"meta": gin.H{
			"rowsParsed":     result.Meta.RowsParsed,
			"linesTotal":     result.Meta.LinesTotal,
			"country":        result.Meta.Country,
			"erp":            result.Meta.ERP,
			"readinessLabel": result.Meta.ReadinessLabel,
			"sharedAt":       time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// =============================================================================
// HEALTH
// =============================================================================

// handleHealth reports liveness and database reachability.
func (s *Server) handleHealth(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "degraded",
			"db":     err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"db":     "ok",
	})
}

// =============================================================================
// HELPERS
// =============================================================================

// abortError writes the uniform error response.
func abortError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// notFoundOrInternal maps store errors onto 404 vs 500 responses.
func notFoundOrInternal(c *gin.Context, s *Server, err error, kind string) {
	if errors.Is(err, store.ErrNotFound) {
		abortError(c, http.StatusNotFound, kind+" not found")
		return
	}
	s.log.WithError(err).Errorf("failed to load %s", kind)
	abortError(c, http.StatusInternalServerError, "failed to retrieve "+kind)
}

// intQuery parses an integer query parameter with a fallback.
func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

// defaultString returns fallback when value is empty.
func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
