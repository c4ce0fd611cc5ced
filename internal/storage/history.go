package storage

import (
	"context"
	"fmt"

	"github.com/KevinKickass/OpenAssetCore/internal/types"
	"github.com/google/uuid"
)

func (t *pgAssetTx) AppendHistory(ctx context.Context, e *types.HistoryEvent) error {
	_, err := t.q.Exec(ctx, `
		INSERT INTO asset_history (id, pat_id, codigo_pat, tipo_evento, campo_alterado,
			valor_antigo, valor_novo, detalhes_evento, data_modificacao, usuario_modificacao)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, e.ID, e.PatID, e.CodigoPat, e.TipoEvento, e.CampoAlterado,
		e.ValorAntigo, e.ValorNovo, e.DetalhesEvento, e.DataModificacao, e.UsuarioModificacao)
	if err != nil {
		return fmt.Errorf("failed to insert history event: %w", err)
	}
	return nil
}

// ListHistory returns the events of an asset, newest first.
func (p *PostgresClient) ListHistory(ctx context.Context, assetID uuid.UUID) ([]*types.HistoryEvent, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, pat_id, codigo_pat, tipo_evento, campo_alterado,
			valor_antigo, valor_novo, detalhes_evento, data_modificacao, usuario_modificacao
		FROM asset_history
		WHERE pat_id = $1
		ORDER BY data_modificacao DESC
	`, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	events := make([]*types.HistoryEvent, 0)
	for rows.Next() {
		var e types.HistoryEvent
		if err := rows.Scan(&e.ID, &e.PatID, &e.CodigoPat, &e.TipoEvento, &e.CampoAlterado,
			&e.ValorAntigo, &e.ValorNovo, &e.DetalhesEvento, &e.DataModificacao, &e.UsuarioModificacao); err != nil {
			return nil, fmt.Errorf("failed to scan history event: %w", err)
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}

func (t *pgAssetTx) ArchiveCycle(ctx context.Context, c *types.LifecycleCycle) error {
	_, err := t.q.Exec(ctx, `
		INSERT INTO asset_lifecycle_cycles (id, asset_id, asset_code, kind, company, work_site,
			start_date, end_date, contract_number, description, closed_at, closed_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, c.ID, c.AssetID, c.AssetCode, string(c.Kind), c.Company, c.WorkSite,
		c.StartDate, c.EndDate, c.ContractNumber, c.Description, c.ClosedAt, c.ClosedBy)
	if err != nil {
		return fmt.Errorf("failed to insert lifecycle cycle: %w", err)
	}
	return nil
}

func (p *PostgresClient) ListCycles(ctx context.Context, assetID uuid.UUID) ([]*types.LifecycleCycle, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, asset_id, asset_code, kind, company, work_site,
			start_date, end_date, contract_number, description, closed_at, closed_by
		FROM asset_lifecycle_cycles
		WHERE asset_id = $1
		ORDER BY closed_at DESC
	`, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lifecycle cycles: %w", err)
	}
	defer rows.Close()

	cycles := make([]*types.LifecycleCycle, 0)
	for rows.Next() {
		var (
			c    types.LifecycleCycle
			kind string
		)
		if err := rows.Scan(&c.ID, &c.AssetID, &c.AssetCode, &kind, &c.Company, &c.WorkSite,
			&c.StartDate, &c.EndDate, &c.ContractNumber, &c.Description, &c.ClosedAt, &c.ClosedBy); err != nil {
			return nil, fmt.Errorf("failed to scan lifecycle cycle: %w", err)
		}
		c.Kind = types.CycleKind(kind)
		cycles = append(cycles, &c)
	}
	return cycles, rows.Err()
}
