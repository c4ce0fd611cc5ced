package system

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/KevinKickass/OpenAssetCore/internal/config"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Database.Driver = "memory"
	cfg.Server.HTTPPort = 0
	cfg.Server.GRPCPort = 0
	return cfg
}

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		from, to SystemState
		ok       bool
	}{
		{StateInitializing, StateRunning, true},
		{StateInitializing, StateStopping, true},
		{StateRunning, StateStopping, true},
		{StateStopping, StateStopped, true},
		{StateError, StateStopped, true},
		{StateRunning, StateInitializing, false},
		{StateStopped, StateRunning, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			err := ValidateTransition(tt.from, tt.to)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestLifecycleManagerStartAndShutdown(t *testing.T) {
	ctx := context.Background()
	lm, err := NewLifecycleManager(ctx, memoryConfig(t), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, StateInitializing, lm.State())

	require.NoError(t, lm.Start())
	assert.Equal(t, StateRunning, lm.State())

	status := lm.GetCurrentStatus()
	assert.Equal(t, "RUNNING", status.State)
	assert.Equal(t, "memory", status.StoreDriver)
	assert.True(t, status.StoreHealthy)
	assert.Zero(t, status.LiveClients)

	w := httptest.NewRecorder()
	lm.restServer.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	conn, err := grpc.NewClient(lm.GRPCAddr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	resp, err := healthpb.NewHealthClient(conn).Check(checkCtx, &healthpb.HealthCheckRequest{Service: healthService})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	shutdownCtx, cancelShutdown := context.WithTimeout(ctx, 5*time.Second)
	defer cancelShutdown()
	require.NoError(t, lm.Shutdown(shutdownCtx))
	assert.Equal(t, StateStopped, lm.State())
	assert.NoError(t, lm.Shutdown(shutdownCtx))
}

func TestLifecycleManagerUsesRedisLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := memoryConfig(t)
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = mr.Addr()

	lm, err := NewLifecycleManager(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)

	assert.NotNil(t, lm.redis)
	require.NoError(t, lm.Shutdown(context.Background()))
	assert.Equal(t, StateStopped, lm.State())
}

func TestLifecycleManagerFallsBackWhenRedisDown(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = "127.0.0.1:1"

	lm, err := NewLifecycleManager(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)

	assert.Nil(t, lm.redis)
	require.NoError(t, lm.Shutdown(context.Background()))
}

func TestLifecycleManagerRejectsUnknownTimezone(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Business.Timezone = "Mars/Olympus"

	_, err := NewLifecycleManager(context.Background(), cfg, zap.NewNop())

	assert.Error(t, err)
}
