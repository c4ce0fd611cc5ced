package storage

import (
	"context"
	"fmt"

	"github.com/KevinKickass/OpenAssetCore/internal/types"
	"github.com/google/uuid"
)

func (p *PostgresClient) AddMaintenanceRecord(ctx context.Context, r *types.MaintenanceRecord) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO maintenance_records (id, asset_id, hourmeter, preventive, cost,
			description, performed_on, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, r.ID, r.AssetID, r.Hourmeter, r.Preventive, r.Cost,
		r.Description, r.PerformedOn, r.CreatedBy, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert maintenance record: %w", err)
	}
	return nil
}

func (p *PostgresClient) ListMaintenanceRecords(ctx context.Context, assetID uuid.UUID) ([]*types.MaintenanceRecord, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, asset_id, hourmeter, preventive, cost, description, performed_on, created_by, created_at
		FROM maintenance_records
		WHERE asset_id = $1
		ORDER BY performed_on DESC, hourmeter DESC
	`, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query maintenance records: %w", err)
	}
	defer rows.Close()

	records := make([]*types.MaintenanceRecord, 0)
	for rows.Next() {
		var r types.MaintenanceRecord
		if err := rows.Scan(&r.ID, &r.AssetID, &r.Hourmeter, &r.Preventive, &r.Cost,
			&r.Description, &r.PerformedOn, &r.CreatedBy, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan maintenance record: %w", err)
		}
		records = append(records, &r)
	}
	return records, rows.Err()
}

// LastHourmeter returns the hourmeter of the last preventive service, 0 if none.
func (p *PostgresClient) LastHourmeter(ctx context.Context, assetID uuid.UUID) (float64, error) {
	var h float64
	err := p.pool.QueryRow(ctx, `
		SELECT COALESCE(MAX(hourmeter), 0) FROM maintenance_records
		WHERE asset_id = $1 AND preventive
	`, assetID).Scan(&h)
	if err != nil {
		return 0, fmt.Errorf("failed to query last hourmeter: %w", err)
	}
	return h, nil
}

// TotalHourmeter returns the highest reading recorded; the hourmeter is cumulative.
func (p *PostgresClient) TotalHourmeter(ctx context.Context, assetID uuid.UUID) (float64, error) {
	var h float64
	err := p.pool.QueryRow(ctx, `
		SELECT COALESCE(MAX(hourmeter), 0) FROM maintenance_records WHERE asset_id = $1
	`, assetID).Scan(&h)
	if err != nil {
		return 0, fmt.Errorf("failed to query total hourmeter: %w", err)
	}
	return h, nil
}
