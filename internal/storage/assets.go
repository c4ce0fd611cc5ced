package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/KevinKickass/OpenAssetCore/internal/interfaces"
	"github.com/KevinKickass/OpenAssetCore/internal/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const assetColumns = `
	id, asset_code, equipment_name, manufacturer, model, serial_number,
	voltage_combustion, supplier, purchase_date, unit_value, equipment_condition,
	location_type,
	deposito_description, malta_collaborator,
	rental_company, rental_work_site, rental_start_date, rental_end_date, rental_contract_number,
	maintenance_company, maintenance_work_site, maintenance_arrival_date, maintenance_departure_date,
	maintenance_description, maintenance_delay_observations,
	inspection_start_date,
	was_replaced, replaced_by_asset_id, replacement_reason,
	available_for_rental, next_maintenance_hourmeter, maintenance_status,
	registered_on, version, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(row rowScanner) (*types.Asset, error) {
	var (
		a            types.Asset
		cols         types.LocationColumns
		locationType string
		condition    string
		status       string
	)

	err := row.Scan(
		&a.ID, &a.AssetCode, &a.EquipmentName, &a.Manufacturer, &a.Model, &a.SerialNumber,
		&a.VoltageCombustion, &a.Supplier, &a.PurchaseDate, &a.UnitValue, &condition,
		&locationType,
		&cols.DepositoDescription, &cols.MaltaCollaborator,
		&cols.RentalCompany, &cols.RentalWorkSite, &cols.RentalStartDate, &cols.RentalEndDate, &cols.RentalContractNumber,
		&cols.MaintenanceCompany, &cols.MaintenanceWorkSite, &cols.MaintenanceArrivalDate, &cols.MaintenanceDepartureDate,
		&cols.MaintenanceDescription, &cols.MaintenanceDelayObservations,
		&cols.InspectionStartDate,
		&a.WasReplaced, &a.ReplacedByAssetID, &a.ReplacementReason,
		&a.AvailableForRental, &a.NextMaintenanceHourmeter, &status,
		&a.RegisteredOn, &a.Version, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.EquipmentCondition = types.EquipmentCondition(condition)
	a.MaintenanceStatus = types.MaintenanceStatus(status)
	a.Location, err = types.DetailsFromColumns(types.LocationType(locationType), cols)
	if err != nil {
		return nil, fmt.Errorf("failed to decode location of asset %s: %w", a.AssetCode, err)
	}
	return &a, nil
}

func getAsset(ctx context.Context, q querier, where string, arg any) (*types.Asset, error) {
	asset, err := scanAsset(q.QueryRow(ctx, `SELECT `+assetColumns+` FROM assets WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query asset: %w", err)
	}
	return asset, nil
}

func (p *PostgresClient) GetAsset(ctx context.Context, id uuid.UUID) (*types.Asset, error) {
	return getAsset(ctx, p.pool, "id = $1", id)
}

func (p *PostgresClient) GetAssetByCode(ctx context.Context, code string) (*types.Asset, error) {
	return getAsset(ctx, p.pool, "asset_code = $1", code)
}

// ListAssets filters by location only; free text search is left to the caller.
func (p *PostgresClient) ListAssets(ctx context.Context, filter types.AssetFilter) ([]*types.Asset, error) {
	sql := `SELECT ` + assetColumns + ` FROM assets WHERE ($1 = '' OR location_type = $1) ORDER BY asset_code`
	args := []any{string(filter.Location)}
	if filter.Limit > 0 {
		sql += ` LIMIT $2`
		args = append(args, filter.Limit)
	}

	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	defer rows.Close()

	assets := make([]*types.Asset, 0)
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assets: %w", err)
	}
	return assets, nil
}

// pgAssetTx implements interfaces.AssetTx over a pgx transaction.
type pgAssetTx struct {
	q querier
}

// GetAsset locks the row for the rest of the transaction.
func (t *pgAssetTx) GetAsset(ctx context.Context, id uuid.UUID) (*types.Asset, error) {
	return getAsset(ctx, t.q, "id = $1 FOR UPDATE", id)
}

func (t *pgAssetTx) GetAssetByCode(ctx context.Context, code string) (*types.Asset, error) {
	return getAsset(ctx, t.q, "asset_code = $1 FOR UPDATE", code)
}

func (t *pgAssetTx) CreateAsset(ctx context.Context, a *types.Asset) error {
	cols := a.Columns()
	_, err := t.q.Exec(ctx, `
		INSERT INTO assets (`+assetColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
			$19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33, $34, $35, $36)
	`, a.ID, a.AssetCode, a.EquipmentName, a.Manufacturer, a.Model, a.SerialNumber,
		a.VoltageCombustion, a.Supplier, a.PurchaseDate, a.UnitValue, string(a.EquipmentCondition),
		string(a.LocationType()),
		cols.DepositoDescription, cols.MaltaCollaborator,
		cols.RentalCompany, cols.RentalWorkSite, cols.RentalStartDate, cols.RentalEndDate, cols.RentalContractNumber,
		cols.MaintenanceCompany, cols.MaintenanceWorkSite, cols.MaintenanceArrivalDate, cols.MaintenanceDepartureDate,
		cols.MaintenanceDescription, cols.MaintenanceDelayObservations,
		cols.InspectionStartDate,
		a.WasReplaced, a.ReplacedByAssetID, a.ReplacementReason,
		a.AvailableForRental, a.NextMaintenanceHourmeter, string(a.MaintenanceStatus),
		a.RegisteredOn, a.Version, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return interfaces.ErrDuplicateCode
		}
		return fmt.Errorf("failed to insert asset: %w", err)
	}
	return nil
}

// UpdateAsset rewrites every mutable column. asset_code is not part of the
// statement.
func (t *pgAssetTx) UpdateAsset(ctx context.Context, a *types.Asset) error {
	cols := a.Columns()
	result, err := t.q.Exec(ctx, `
		UPDATE assets SET
			equipment_name = $3, manufacturer = $4, model = $5, serial_number = $6,
			voltage_combustion = $7, supplier = $8, purchase_date = $9, unit_value = $10,
			equipment_condition = $11, location_type = $12,
			deposito_description = $13, malta_collaborator = $14,
			rental_company = $15, rental_work_site = $16, rental_start_date = $17,
			rental_end_date = $18, rental_contract_number = $19,
			maintenance_company = $20, maintenance_work_site = $21, maintenance_arrival_date = $22,
			maintenance_departure_date = $23, maintenance_description = $24,
			maintenance_delay_observations = $25, inspection_start_date = $26,
			was_replaced = $27, replaced_by_asset_id = $28, replacement_reason = $29,
			available_for_rental = $30, next_maintenance_hourmeter = $31, maintenance_status = $32,
			updated_at = $33, version = version + 1
		WHERE id = $1 AND version = $2
	`, a.ID, a.Version,
		a.EquipmentName, a.Manufacturer, a.Model, a.SerialNumber,
		a.VoltageCombustion, a.Supplier, a.PurchaseDate, a.UnitValue,
		string(a.EquipmentCondition), string(a.LocationType()),
		cols.DepositoDescription, cols.MaltaCollaborator,
		cols.RentalCompany, cols.RentalWorkSite, cols.RentalStartDate,
		cols.RentalEndDate, cols.RentalContractNumber,
		cols.MaintenanceCompany, cols.MaintenanceWorkSite, cols.MaintenanceArrivalDate,
		cols.MaintenanceDepartureDate, cols.MaintenanceDescription,
		cols.MaintenanceDelayObservations, cols.InspectionStartDate,
		a.WasReplaced, a.ReplacedByAssetID, a.ReplacementReason,
		a.AvailableForRental, a.NextMaintenanceHourmeter, string(a.MaintenanceStatus),
		a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update asset: %w", err)
	}

	if result.RowsAffected() == 0 {
		var exists bool
		if err := t.q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM assets WHERE id = $1)`, a.ID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check asset: %w", err)
		}
		if !exists {
			return interfaces.ErrNotFound
		}
		return interfaces.ErrVersionConflict
	}

	a.Version++
	return nil
}
