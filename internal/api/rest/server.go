package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/KevinKickass/OpenAssetCore/internal/api/websocket"
	"github.com/KevinKickass/OpenAssetCore/internal/auth"
	"github.com/KevinKickass/OpenAssetCore/internal/cnpj"
	"github.com/KevinKickass/OpenAssetCore/internal/config"
	"github.com/KevinKickass/OpenAssetCore/internal/interfaces"
	"github.com/KevinKickass/OpenAssetCore/internal/lifecycle"
	"github.com/KevinKickass/OpenAssetCore/internal/maintenance"
	"github.com/KevinKickass/OpenAssetCore/internal/ratelimit"
	"github.com/KevinKickass/OpenAssetCore/internal/schema"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// CompanyLookup resolves a CNPJ to its registry entry.
type CompanyLookup interface {
	Lookup(ctx context.Context, raw string) (*cnpj.Company, error)
}

// Deps are the collaborators of the HTTP server. Hub, Companies and Status
// are optional.
type Deps struct {
	Engine      *lifecycle.Engine
	Maintenance *maintenance.Service
	Verifier    *auth.Verifier
	Limiter     ratelimit.Limiter
	Schema      *schema.Validator
	Hub         *websocket.Hub
	Companies   CompanyLookup
	Status      interfaces.StatusProvider
}

type Server struct {
	router *gin.Engine
	server *http.Server
	cfg    *config.Config
	logger *zap.Logger

	engine      *lifecycle.Engine
	maintenance *maintenance.Service
	verifier    *auth.Verifier
	limiter     ratelimit.Limiter
	schema      *schema.Validator
	hub         *websocket.Hub
	companies   CompanyLookup
	status      interfaces.StatusProvider
	validate    *validator.Validate
}

func NewServer(cfg *config.Config, deps Deps, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		router:      gin.New(),
		cfg:         cfg,
		logger:      logger,
		engine:      deps.Engine,
		maintenance: deps.Maintenance,
		verifier:    deps.Verifier,
		limiter:     deps.Limiter,
		schema:      deps.Schema,
		hub:         deps.Hub,
		companies:   deps.Companies,
		status:      deps.Status,
		validate:    validator.New(),
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("REST server failed", zap.Error(err))
		}
	}()
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down REST API server")
	return s.server.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	s.router.Use(gin.Recovery())
	s.router.Use(RequestIDMiddleware())
	s.router.Use(TracingMiddleware())
	s.router.Use(LoggerMiddleware(s.logger))
	s.router.Use(CORSMiddleware(s.cfg.Server.AllowedOrigins))

	// Public
	s.router.GET("/health", s.healthCheck)

	// ==================== SYNC API (x-api-key, rate limited) ====================
	sync := s.router.Group("/sync")
	sync.Use(s.syncEnvelope)
	if s.limiter != nil {
		sync.Use(ratelimit.Middleware(s.limiter, s.logger, syncReject))
	}
	sync.Use(auth.APIKeyMiddleware(s.cfg.Sync.GetAPIKey(), syncReject))
	{
		sync.POST("/create", s.syncCreate)
		sync.PUT("/update/:code", s.syncUpdate)
		sync.PATCH("/move/:code", s.syncMove)
		sync.POST("/bulk", s.syncBulk)
	}

	v1 := s.router.Group("/api/v1")
	{
		// ==================== WEBSOCKET (auth via first message) ====================
		if s.hub != nil {
			v1.GET("/ws/live", gin.WrapF(websocket.Handler(s.hub, s.cfg.Server.AllowedOrigins)))
		}

		authed := v1.Group("")
		authed.Use(auth.AuthMiddleware(s.verifier, appReject))

		// ==================== ASSETS ====================
		assets := authed.Group("/assets")
		{
			assets.GET("", s.listAssets)
			assets.POST("", s.registerAsset)
			assets.GET("/export.xlsx", s.exportAssets)
			assets.GET("/:code", s.getAsset)
			assets.PATCH("/:code", s.updateAsset)
			assets.POST("/:code/move", s.moveAsset)
			assets.POST("/:code/inspection", s.sendToInspection)
			assets.POST("/:code/inspection/resolve", s.resolveInspection)
			assets.POST("/:code/substitute", s.substituteAsset)
			assets.GET("/:code/history", s.assetHistory)
			assets.GET("/:code/cycles", s.assetCycles)
			assets.GET("/:code/maintenance-records", s.listMaintenanceRecords)
			assets.POST("/:code/maintenance-records", s.recordMaintenance)
		}

		// ==================== COMPANIES ====================
		authed.GET("/companies/:cnpj", s.lookupCompany)

		// ==================== SYSTEM ====================
		authed.GET("/system/status", s.getSystemStatus)
		authed.GET("/ws/status", s.wsStatus)
	}
}
