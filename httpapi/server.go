// Package httpapi wires report axis inference, formula evaluation and
// workbook conversion behind a small gin HTTP surface, in the shape of the
// teacher's original router/middleware setup.
package httpapi

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"reportforms/convert"
	"reportforms/internal/apierrors"
	"reportforms/internal/applog"
	"reportforms/internal/monitoring"
	"reportforms/internal/reportcache"
	"reportforms/internal/storage"
	"reportforms/report"
)

// Config controls server construction.
type Config struct {
	UploadDir    string
	CacheConfig  *reportcache.CacheConfig
	WorkerConfig *convert.WorkerConfig
	CORSOrigins  []string
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() *Config {
	return &Config{
		UploadDir:   "./uploads",
		CORSOrigins: []string{"*"},
	}
}

// Server bundles the dependencies the route handlers need.
type Server struct {
	engine    *gin.Engine
	logger    *applog.Logger
	traversers *reportcache.TraverserCache
	converter *convert.Converter
	files     *storage.FileStore
	uploadDir string
}

// NewServer builds a Server with its full middleware stack and route table.
func NewServer(config *Config, logger *applog.Logger) (*Server, error) {
	if config == nil {
		config = DefaultConfig()
	}

	factory := reportcache.TraverserFactory(func(path string) (interface{}, error) {
		decision, err := report.Decide(path)
		if err != nil {
			return nil, err
		}
		return report.NewReportTraverser(path, decision), nil
	})

	traversers, err := reportcache.NewTraverserCache(factory, config.CacheConfig)
	if err != nil {
		return nil, fmt.Errorf("httpapi: failed to build traverser cache: %w", err)
	}

	s := &Server{
		logger:     logger,
		traversers: traversers,
		converter:  convert.NewConverter(config.WorkerConfig),
		files:      storage.NewFileStore(config.UploadDir),
		uploadDir:  config.UploadDir,
	}

	monitoring.InitMonitoring(logger)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(applog.RequestIDMiddleware())
	engine.Use(applog.LoggingMiddleware(logger))
	engine.Use(monitoringMiddleware())
	engine.Use(apierrors.RecoveryHandler())
	engine.Use(apierrors.ErrorHandler())
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	s.engine = engine
	s.registerRoutes()
	return s, nil
}

// Engine exposes the underlying gin.Engine, e.g. for httptest.NewServer.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.handleHealth)

	api := s.engine.Group("/api")
	{
		api.POST("/convert", s.handleConvert)
		api.POST("/evaluate", s.handleEvaluate)
	}
}
