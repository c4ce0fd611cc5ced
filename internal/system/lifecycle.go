package system

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/KevinKickass/OpenAssetCore/internal/api/rest"
	"github.com/KevinKickass/OpenAssetCore/internal/api/websocket"
	"github.com/KevinKickass/OpenAssetCore/internal/auth"
	"github.com/KevinKickass/OpenAssetCore/internal/calendar"
	"github.com/KevinKickass/OpenAssetCore/internal/cnpj"
	"github.com/KevinKickass/OpenAssetCore/internal/config"
	"github.com/KevinKickass/OpenAssetCore/internal/interfaces"
	"github.com/KevinKickass/OpenAssetCore/internal/lifecycle"
	"github.com/KevinKickass/OpenAssetCore/internal/maintenance"
	"github.com/KevinKickass/OpenAssetCore/internal/observability"
	"github.com/KevinKickass/OpenAssetCore/internal/ratelimit"
	"github.com/KevinKickass/OpenAssetCore/internal/schema"
	"github.com/KevinKickass/OpenAssetCore/internal/storage"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const healthService = "openassetcore.AssetLifecycle"

// Backend is what a store driver must provide.
type Backend interface {
	interfaces.AssetStore
	interfaces.MaintenanceRepository
}

// LifecycleManager wires the service together and owns its start and
// shutdown.
type LifecycleManager struct {
	config  *config.Config
	logger  *zap.Logger
	started time.Time

	store       Backend
	closeStore  func()
	redis       *redis.Client
	engine      *lifecycle.Engine
	maintenance *maintenance.Service
	hub         *websocket.Hub
	tracing     *observability.Tracing

	restServer   *rest.Server
	grpcServer   *grpc.Server
	healthServer *health.Server
	grpcAddr     net.Addr

	hubCancel context.CancelFunc

	stateMu      sync.RWMutex
	currentState SystemState

	shutdownOnce sync.Once
}

func NewLifecycleManager(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*LifecycleManager, error) {
	lm := &LifecycleManager{
		config:       cfg,
		logger:       logger,
		currentState: StateInitializing,
		closeStore:   func() {},
	}

	tracing, err := observability.InitTracer(ctx, cfg.Tracing, logger)
	if err != nil {
		return nil, err
	}
	lm.tracing = tracing

	if err := lm.openStore(ctx); err != nil {
		return nil, err
	}

	clock, err := calendar.NewClock(cfg.Business.Timezone)
	if err != nil {
		lm.closeStore()
		return nil, fmt.Errorf("failed to load business timezone: %w", err)
	}

	policy := maintenance.Policy{
		IntervalHours: cfg.Maintenance.DefaultIntervalHours,
		WarningHours:  cfg.Maintenance.WarningHours,
	}
	lm.engine = lifecycle.NewEngine(lm.store, clock, lifecycle.Options{
		RegisterDescription: cfg.Business.RegisterDescription,
		ReturnDescription:   cfg.Business.DepositDescription,
		RetroactiveDays:     cfg.Business.RetroactiveDays,
		Maintenance:         policy,
	}, logger)
	lm.engine.SetMaintenanceRepository(lm.store)
	lm.maintenance = maintenance.NewService(lm.store, lm.engine, clock, logger)

	if !cfg.Auth.IsProductionReady() {
		logger.Warn("JWT secret is the development default or too short")
	}
	verifier := auth.NewVerifier(cfg.Auth.GetJWTSecret(), cfg.Auth.Issuer)
	if cfg.Sync.GetAPIKey() == "" {
		logger.Warn("Sync API key is not set, every sync request will be rejected",
			zap.String("env", cfg.Sync.APIKeyEnv))
	}

	validator, err := schema.NewValidator()
	if err != nil {
		lm.closeStore()
		return nil, err
	}

	lm.hub = websocket.NewHub(logger, verifier)
	lm.engine.SetNotifier(lm.hub)

	lm.restServer = rest.NewServer(cfg, rest.Deps{
		Engine:      lm.engine,
		Maintenance: lm.maintenance,
		Verifier:    verifier,
		Limiter:     lm.newLimiter(ctx),
		Schema:      validator,
		Hub:         lm.hub,
		Companies:   cnpj.NewClient(cfg.CNPJ, logger),
		Status:      lm,
	}, logger)

	return lm, nil
}

func (lm *LifecycleManager) openStore(ctx context.Context) error {
	switch lm.config.Database.Driver {
	case "memory":
		lm.logger.Warn("Using in-memory store, data is lost on restart")
		lm.store = storage.NewMemoryStore()
		return nil
	default:
		db, err := storage.NewPostgresClient(ctx, lm.config.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		if lm.config.Database.AutoMigrate {
			if err := db.Migrate(ctx); err != nil {
				db.Close()
				return err
			}
			lm.logger.Info("Database schema migrated")
		}
		lm.store = db
		lm.closeStore = db.Close
		lm.logger.Info("Database connected successfully",
			zap.String("host", lm.config.Database.Host),
			zap.String("database", lm.config.Database.Database))
		return nil
	}
}

// newLimiter prefers the shared Redis window and falls back to a local
// token bucket when Redis is disabled or unreachable.
func (lm *LifecycleManager) newLimiter(ctx context.Context) ratelimit.Limiter {
	limit := lm.config.Sync.RateLimitPerMinute
	if lm.config.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     lm.config.Redis.Addr,
			Password: lm.config.Redis.Password,
			DB:       lm.config.Redis.DB,
		})
		limiter := ratelimit.NewRedisLimiter(client, limit, time.Minute)

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		err := limiter.Ping(pingCtx)
		if err == nil {
			lm.redis = client
			lm.logger.Info("Sync rate limit backed by Redis", zap.String("addr", lm.config.Redis.Addr))
			return limiter
		}
		lm.logger.Warn("Redis unreachable, using in-process rate limit", zap.Error(err))
		_ = client.Close()
	}
	return ratelimit.NewMemoryLimiter(limit, time.Minute)
}

// Start starts the entire system
func (lm *LifecycleManager) Start() error {
	lm.logger.Info("Starting OpenAssetCore",
		zap.String("store", lm.config.Database.Driver),
		zap.String("timezone", lm.config.Business.Timezone))

	hubCtx, cancel := context.WithCancel(context.Background())
	lm.hubCancel = cancel
	go lm.hub.Run(hubCtx)

	if err := lm.startGRPCServer(); err != nil {
		lm.setError(err)
		return fmt.Errorf("failed to start gRPC: %w", err)
	}

	if err := lm.restServer.Start(); err != nil {
		lm.setError(err)
		return fmt.Errorf("failed to start REST API: %w", err)
	}

	lm.started = time.Now()
	lm.healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	lm.healthServer.SetServingStatus(healthService, healthpb.HealthCheckResponse_SERVING)
	lm.setState(StateRunning)

	lm.logger.Info("System started successfully",
		zap.Int("grpc_port", lm.config.Server.GRPCPort),
		zap.Int("http_port", lm.config.Server.HTTPPort))

	return nil
}

func (lm *LifecycleManager) startGRPCServer() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", lm.config.Server.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	lm.grpcAddr = lis.Addr()

	lm.grpcServer = grpc.NewServer()
	lm.healthServer = health.NewServer()
	lm.healthServer.SetServingStatus(healthService, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(lm.grpcServer, lm.healthServer)

	go func() {
		lm.logger.Info("gRPC server listening",
			zap.String("address", lis.Addr().String()),
			zap.String("services", "grpc.health.v1.Health"))
		if err := lm.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			lm.logger.Error("gRPC server failed", zap.Error(err))
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the system
func (lm *LifecycleManager) Shutdown(ctx context.Context) error {
	var shutdownErr error

	lm.shutdownOnce.Do(func() {
		lm.logger.Info("Shutting down system")
		lm.setState(StateStopping)

		shutdownErr = lm.gracefulShutdown(ctx)

		if lm.hubCancel != nil {
			lm.hubCancel()
		}
		if lm.redis != nil {
			_ = lm.redis.Close()
		}
		lm.closeStore()

		if shutdownErr != nil {
			lm.setError(shutdownErr)
			return
		}
		lm.setState(StateStopped)
	})

	return shutdownErr
}

func (lm *LifecycleManager) gracefulShutdown(ctx context.Context) error {
	if lm.healthServer != nil {
		lm.healthServer.Shutdown()
	}

	var wg sync.WaitGroup
	errChan := make(chan error, 3)

	if lm.restServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := lm.restServer.Shutdown(ctx); err != nil {
				errChan <- fmt.Errorf("rest api shutdown failed: %w", err)
			}
		}()
	}

	if lm.grpcServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lm.logger.Info("Stopping gRPC server")
			lm.grpcServer.GracefulStop()
		}()
	}

	if lm.tracing != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := lm.tracing.Shutdown(ctx); err != nil {
				errChan <- fmt.Errorf("tracer shutdown failed: %w", err)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		select {
		case err := <-errChan:
			return err
		default:
		}
		lm.logger.Info("Graceful shutdown completed")
		return nil
	case <-ctx.Done():
		lm.logger.Warn("Shutdown timeout, forcing stop")
		if lm.grpcServer != nil {
			lm.grpcServer.Stop()
		}
		return fmt.Errorf("shutdown timeout exceeded")
	}
}

func (lm *LifecycleManager) setState(state SystemState) {
	lm.stateMu.Lock()
	defer lm.stateMu.Unlock()
	if err := ValidateTransition(lm.currentState, state); err != nil {
		lm.logger.Warn("Ignoring state change", zap.Error(err))
		return
	}
	lm.currentState = state
}

func (lm *LifecycleManager) setError(err error) {
	lm.logger.Error("System entered error state", zap.Error(err))
	lm.setState(StateError)
}

func (lm *LifecycleManager) State() SystemState {
	lm.stateMu.RLock()
	defer lm.stateMu.RUnlock()
	return lm.currentState
}

// GetCurrentStatus returns current system status (Interface implementation)
func (lm *LifecycleManager) GetCurrentStatus() interfaces.SystemStatus {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	status := interfaces.SystemStatus{
		State:        lm.State().String(),
		StoreDriver:  lm.config.Database.Driver,
		StoreHealthy: lm.store.Ping(ctx) == nil,
		LiveClients:  lm.hub.GetClientCount(),
	}
	if !lm.started.IsZero() {
		status.UptimeSeconds = int64(time.Since(lm.started).Seconds())
	}
	return status
}

// Engine returns the lifecycle engine
func (lm *LifecycleManager) Engine() *lifecycle.Engine {
	return lm.engine
}

// GRPCAddr is the bound address of the gRPC listener, nil before Start.
func (lm *LifecycleManager) GRPCAddr() net.Addr {
	return lm.grpcAddr
}

// Config returns the configuration
func (lm *LifecycleManager) Config() *config.Config {
	return lm.config
}
