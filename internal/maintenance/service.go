package maintenance

import (
	"context"
	"fmt"
	"strings"

	"github.com/KevinKickass/OpenAssetCore/internal/calendar"
	"github.com/KevinKickass/OpenAssetCore/internal/interfaces"
	"github.com/KevinKickass/OpenAssetCore/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Assets is the part of the lifecycle engine the service needs.
type Assets interface {
	GetAssetByCode(ctx context.Context, rawCode string) (*types.Asset, error)
	RefreshMaintenanceStatus(ctx context.Context, assetID uuid.UUID) (*types.Asset, error)
}

type ReadingInput struct {
	Hourmeter   float64 `json:"hourmeter"`
	Preventive  bool    `json:"preventive"`
	Cost        string  `json:"cost"`
	Description string  `json:"description"`
	PerformedOn string  `json:"performed_on"`
}

// InvalidReading rejects a reading before it is stored.
type InvalidReading struct {
	Field   string
	Message string
}

func (e *InvalidReading) Error() string {
	return fmt.Sprintf("invalid maintenance reading: %s: %s", e.Field, e.Message)
}

func (e *InvalidReading) UserMessage() string {
	return e.Message
}

type Service struct {
	repo   interfaces.MaintenanceRepository
	assets Assets
	clock  *calendar.Clock
	logger *zap.Logger
}

func NewService(repo interfaces.MaintenanceRepository, assets Assets, clock *calendar.Clock, logger *zap.Logger) *Service {
	return &Service{repo: repo, assets: assets, clock: clock, logger: logger}
}

// RecordReading stores a hourmeter reading and refreshes the derived
// maintenance fields of the asset.
func (s *Service) RecordReading(ctx context.Context, rawCode string, in ReadingInput, actor string) (*types.MaintenanceRecord, *types.Asset, error) {
	asset, err := s.assets.GetAssetByCode(ctx, rawCode)
	if err != nil {
		return nil, nil, err
	}

	record, err := s.buildRecord(ctx, asset, in, actor)
	if err != nil {
		return nil, nil, err
	}

	if err := s.repo.AddMaintenanceRecord(ctx, record); err != nil {
		return nil, nil, fmt.Errorf("failed to store maintenance record: %w", err)
	}

	updated, err := s.assets.RefreshMaintenanceStatus(ctx, asset.ID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("Maintenance reading recorded",
		zap.String("asset_code", asset.AssetCode),
		zap.Float64("hourmeter", record.Hourmeter),
		zap.Bool("preventive", record.Preventive),
		zap.String("status", string(updated.MaintenanceStatus)))

	return record, updated, nil
}

// ListReadings returns the readings of an asset, newest first.
func (s *Service) ListReadings(ctx context.Context, rawCode string) (*types.Asset, []*types.MaintenanceRecord, error) {
	asset, err := s.assets.GetAssetByCode(ctx, rawCode)
	if err != nil {
		return nil, nil, err
	}
	records, err := s.repo.ListMaintenanceRecords(ctx, asset.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list maintenance records: %w", err)
	}
	return asset, records, nil
}

func (s *Service) buildRecord(ctx context.Context, asset *types.Asset, in ReadingInput, actor string) (*types.MaintenanceRecord, error) {
	if in.Hourmeter < 0 {
		return nil, &InvalidReading{Field: "hourmeter", Message: "Horímetro não pode ser negativo"}
	}
	total, err := s.repo.TotalHourmeter(ctx, asset.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read total hourmeter: %w", err)
	}
	if in.Hourmeter < total {
		return nil, &InvalidReading{
			Field:   "hourmeter",
			Message: fmt.Sprintf("Horímetro %.1f é menor que a última leitura (%.1f)", in.Hourmeter, total),
		}
	}

	today := s.clock.Today()
	performedOn := today
	if raw := strings.TrimSpace(in.PerformedOn); raw != "" {
		d, err := s.clock.ParseDate(raw)
		if err != nil {
			return nil, &InvalidReading{Field: "performed_on", Message: "Data inválida em performed_on: use AAAA-MM-DD"}
		}
		if d.After(today) {
			return nil, &InvalidReading{Field: "performed_on", Message: "Data da manutenção não pode estar no futuro"}
		}
		performedOn = d
	}

	var cost decimal.NullDecimal
	if raw := strings.TrimSpace(in.Cost); raw != "" {
		v, err := types.ParseMoney(raw)
		if err != nil || v.IsNegative() {
			return nil, &InvalidReading{Field: "cost", Message: "Custo inválido"}
		}
		cost = decimal.NewNullDecimal(v)
	}

	return &types.MaintenanceRecord{
		ID:          uuid.New(),
		AssetID:     asset.ID,
		Hourmeter:   in.Hourmeter,
		Preventive:  in.Preventive,
		Cost:        cost,
		Description: strings.TrimSpace(in.Description),
		PerformedOn: performedOn,
		CreatedBy:   actor,
		CreatedAt:   s.clock.Now(),
	}, nil
}
