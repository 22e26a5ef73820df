// =============================================================================
// Invoice Readiness Analyzer - HTTP Service
// =============================================================================
//
// This module hosts the thin HTTP shell around the analysis engine. All
// endpoints are JSON; uploads additionally accept multipart form data.
//
// ROUTES:
//   POST   /api/upload                     accept a dataset (file or text)
//   GET    /api/upload/:id                 upload metadata
//   GET    /api/upload/:id/preview         first rows of the parsed dataset
//   POST   /api/analyze                    run the analysis pipeline
//   GET    /api/analyze/:id/status         has this upload been analyzed?
//   GET    /api/report/:id                 full report
//   GET    /api/report/:id/download        full report as attachment
//   GET    /api/reports                    recent report summaries
//   GET    /api/share/:id                  condensed shareable view
//   DELETE /api/report/:id                 remove a report
//   GET    /api/health                     liveness + database ping
//
// The engine stays pure: every handler parses/loads before calling into it
// and persists/serializes after, never the other way around.
//
// =============================================================================

package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/complyflow/invoice-readiness/internal/analyzer"
	"github.com/complyflow/invoice-readiness/internal/config"
	"github.com/complyflow/invoice-readiness/internal/store"
)

// Server hosts the HTTP API.
type Server struct {
	cfg      *config.Config
	store    *store.Store
	analyzer *analyzer.Analyzer
	log      *logrus.Logger
	engine   *gin.Engine
}

// New assembles the server with its routes and middleware.
func New(cfg *config.Config, st *store.Store, log *logrus.Logger) *Server {
	if log.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:      cfg,
		store:    st,
		analyzer: analyzer.New(log),
		log:      log,
		engine:   gin.New(),
	}

	s.engine.Use(gin.Recovery())
	s.engine.MaxMultipartMemory = cfg.MaxUploadBytes

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	s.engine.Use(cors.New(corsConfig))

	s.routes()
	return s
}

// routes registers all API routes.
func (s *Server) routes() {
	api := s.engine.Group("/api")

	api.POST("/upload", s.handleUpload)
	api.GET("/upload/:id", s.handleGetUpload)
	api.GET("/upload/:id/preview", s.handlePreview)

	api.POST("/analyze", s.handleAnalyze)
	api.GET("/analyze/:id/status", s.handleAnalyzeStatus)

	api.GET("/report/:id", s.handleGetReport)
	api.GET("/report/:id/download", s.handleDownloadReport)
	api.DELETE("/report/:id", s.handleDeleteReport)
	api.GET("/reports", s.handleRecentReports)
	api.GET("/share/:id", s.handleShareReport)

	api.GET("/health", s.handleHealth)
}

// Router exposes the underlying engine (used by tests).
func (s *Server) Router() http.Handler {
	return s.engine
}

// Run starts the HTTP listener and blocks until it fails.
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.log.WithField("addr", addr).Info("starting HTTP service")

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}
