// Package api exposes the generator catalog, test runs, benchmarks and
// comparison matrices over HTTP.
package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"rngbench/adapters/excel"
	"rngbench/app"
	"rngbench/internal"
	"rngbench/internal/config"
	"rngbench/internal/container"
	apperrors "rngbench/internal/errors"
	"rngbench/ports"
)

// Server represents the HTTP API server
type Server struct {
	router     *gin.Engine
	tests      *app.TestService
	bench      *app.BenchmarkService
	generators ports.GeneratorPort
	battery    ports.BatteryPort
	runner     config.RunnerConfig
	export     excel.ExportConfig
	hub        *SSEHub
	logger     *internal.Logger
}

// NewServer creates a server over the container's services
func NewServer(c *container.Container) *Server {
	if c.Config.Server.GinMode != "" {
		gin.SetMode(c.Config.Server.GinMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if c.Config.Server.GinMode != gin.TestMode {
		router.Use(gin.Logger())
	}

	s := &Server{
		router:     router,
		tests:      c.TestService,
		bench:      c.BenchmarkService,
		generators: c.Generators,
		battery:    c.Battery,
		runner:     c.Config.Runner,
		export:     excel.DefaultExportConfig(),
		hub:        NewSSEHub(),
		logger:     c.Logger,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	{
		// Catalog
		api.GET("/generators", s.handleGenerators)
		api.GET("/tests", s.handleTests)

		// Generation and single test runs
		api.POST("/generate", s.handleGenerate)
		api.POST("/tests/run", s.handleRunTest)
		api.GET("/results", s.handleListResults)
		api.GET("/results/:id", s.handleGetResult)

		// Benchmarks and comparison matrices
		api.POST("/benchmark", s.handleBenchmark)
		api.POST("/compare", s.handleCompare)
		api.GET("/compare/events", s.hub.HandleSSE)
		api.GET("/compare/report.html", s.handleCompareReport)
		api.GET("/comparisons/:id", s.handleGetComparison)
		api.GET("/comparisons/:id/export.xlsx", s.handleExportComparison)
	}
}

// Handler returns the underlying http.Handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	log.Printf("Starting rngbench API on http://%s", addr)
	return s.router.Run(addr)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError maps err to a status code and a JSON error body
func (s *Server) respondError(c *gin.Context, err error) {
	appErr := apperrors.FromDomain(err)
	status := apperrors.HTTPStatus(appErr.Code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("[API] %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{
		"error": err.Error(),
		"code":  appErr.Code,
	})
}
