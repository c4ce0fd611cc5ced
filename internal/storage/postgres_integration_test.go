//go:build integration

package storage

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/KevinKickass/OpenAssetCore/internal/config"
	"github.com/KevinKickass/OpenAssetCore/internal/interfaces"
	"github.com/KevinKickass/OpenAssetCore/internal/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getTestClient(t *testing.T) *PostgresClient {
	t.Helper()
	cfg := config.DatabaseConfig{
		Host:     getEnv("TEST_DB_HOST", "localhost"),
		Port:     getEnvInt("TEST_DB_PORT", 5432),
		User:     getEnv("TEST_DB_USER", "postgres"),
		Password: getEnv("TEST_DB_PASSWORD", "postgres"),
		Database: getEnv("TEST_DB_NAME", "openassetcore_test"),
		SSLMode:  getEnv("TEST_DB_SSLMODE", "disable"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := NewPostgresClient(ctx, cfg)
	if err != nil {
		t.Skipf("Skipping integration test: cannot connect to database: %v", err)
	}
	require.NoError(t, client.Migrate(ctx))
	t.Cleanup(client.Close)
	return client
}

func cleanup(t *testing.T, p *PostgresClient, ids ...uuid.UUID) {
	ctx := context.Background()
	for _, id := range ids {
		p.pool.Exec(ctx, `DELETE FROM maintenance_records WHERE asset_id = $1`, id)
		p.pool.Exec(ctx, `DELETE FROM asset_lifecycle_cycles WHERE asset_id = $1`, id)
		p.pool.Exec(ctx, `DELETE FROM asset_history WHERE pat_id = $1`, id)
		p.pool.Exec(ctx, `UPDATE assets SET replaced_by_asset_id = NULL WHERE id = $1`, id)
	}
	for _, id := range ids {
		p.pool.Exec(ctx, `DELETE FROM assets WHERE id = $1`, id)
	}
}

func testCode() string {
	return strconv.Itoa(900000 + int(time.Now().UnixNano()%99999))
}

func TestPostgresAssetRoundTrip(t *testing.T) {
	p := getTestClient(t)
	ctx := context.Background()

	end := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	a := newAsset(testCode())
	a.Location = types.InspectionDetails{
		StartDate: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		Rental: &types.RentalDetails{
			Company:   "ACME",
			WorkSite:  "Obra X",
			StartDate: time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC),
			EndDate:   &end,
		},
	}
	defer cleanup(t, p, a.ID)

	require.NoError(t, p.InTx(ctx, func(tx interfaces.AssetTx) error {
		return tx.CreateAsset(ctx, a)
	}))

	got, err := p.GetAssetByCode(ctx, a.AssetCode)
	require.NoError(t, err)
	assert.Equal(t, types.LocationInspection, got.LocationType())
	insp := got.Location.(types.InspectionDetails)
	require.NotNil(t, insp.Rental)
	assert.Equal(t, "ACME", insp.Rental.Company)
	assert.Equal(t, end, *insp.Rental.EndDate)
	assert.Nil(t, insp.Maintenance)

	err = p.InTx(ctx, func(tx interfaces.AssetTx) error {
		return tx.CreateAsset(ctx, newAsset(a.AssetCode))
	})
	assert.ErrorIs(t, err, interfaces.ErrDuplicateCode)
}

func TestPostgresVersionGuard(t *testing.T) {
	p := getTestClient(t)
	ctx := context.Background()
	a := newAsset(testCode())
	defer cleanup(t, p, a.ID)

	require.NoError(t, p.InTx(ctx, func(tx interfaces.AssetTx) error {
		return tx.CreateAsset(ctx, a)
	}))

	fresh := a.Clone()
	require.NoError(t, p.InTx(ctx, func(tx interfaces.AssetTx) error {
		return tx.UpdateAsset(ctx, fresh)
	}))
	assert.Equal(t, 2, fresh.Version)

	err := p.InTx(ctx, func(tx interfaces.AssetTx) error {
		return tx.UpdateAsset(ctx, a)
	})
	assert.ErrorIs(t, err, interfaces.ErrVersionConflict)
}

func TestPostgresHistoryAndHourmeter(t *testing.T) {
	p := getTestClient(t)
	ctx := context.Background()
	a := newAsset(testCode())
	defer cleanup(t, p, a.ID)

	require.NoError(t, p.InTx(ctx, func(tx interfaces.AssetTx) error {
		if err := tx.CreateAsset(ctx, a); err != nil {
			return err
		}
		return tx.AppendHistory(ctx, &types.HistoryEvent{
			ID:                 uuid.New(),
			PatID:              a.ID,
			CodigoPat:          a.AssetCode,
			TipoEvento:         types.EventSyncCreate,
			DataModificacao:    time.Now(),
			UsuarioModificacao: "sistema",
		})
	}))

	events, err := p.ListHistory(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Nil(t, events[0].CampoAlterado)

	for _, h := range []float64{100, 180} {
		require.NoError(t, p.AddMaintenanceRecord(ctx, &types.MaintenanceRecord{
			ID:          uuid.New(),
			AssetID:     a.ID,
			Hourmeter:   h,
			Preventive:  h == 100,
			PerformedOn: a.RegisteredOn,
			CreatedBy:   "sistema",
			CreatedAt:   time.Now(),
		}))
	}
	last, err := p.LastHourmeter(ctx, a.ID)
	require.NoError(t, err)
	total, err := p.TotalHourmeter(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, last)
	assert.Equal(t, 180.0, total)
}
