package observability

import (
	"context"
	"testing"
	"time"

	"github.com/KevinKickass/OpenAssetCore/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitTracer_Disabled(t *testing.T) {
	tr, err := InitTracer(context.Background(), config.TracingConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, tr.Enabled())
	assert.NoError(t, tr.Shutdown(context.Background()))
}

func TestInitTracer_Enabled(t *testing.T) {
	tr, err := InitTracer(context.Background(), config.TracingConfig{
		Enabled:     true,
		Endpoint:    "127.0.0.1:4317",
		ServiceName: "openassetcore-test",
	}, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, tr.Enabled())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = tr.Shutdown(ctx)
}
