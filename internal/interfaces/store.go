package interfaces

import (
	"context"
	"errors"

	"github.com/KevinKickass/OpenAssetCore/internal/types"
	"github.com/google/uuid"
)

// Conditions every store implementation reports with these sentinels.
var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicateCode   = errors.New("asset code already exists")
	ErrVersionConflict = errors.New("asset version conflict")
)

// AssetReader is the read side shared by stores and transactions.
type AssetReader interface {
	GetAsset(ctx context.Context, id uuid.UUID) (*types.Asset, error)
	GetAssetByCode(ctx context.Context, code string) (*types.Asset, error)
}

// AssetTx is a unit of work. UpdateAsset only succeeds when the stored
// version equals asset.Version, and bumps it.
type AssetTx interface {
	AssetReader
	CreateAsset(ctx context.Context, asset *types.Asset) error
	UpdateAsset(ctx context.Context, asset *types.Asset) error
	AppendHistory(ctx context.Context, event *types.HistoryEvent) error
	ArchiveCycle(ctx context.Context, cycle *types.LifecycleCycle) error
}

type AssetStore interface {
	AssetReader
	InTx(ctx context.Context, fn func(tx AssetTx) error) error
	ListAssets(ctx context.Context, filter types.AssetFilter) ([]*types.Asset, error)
	ListHistory(ctx context.Context, assetID uuid.UUID) ([]*types.HistoryEvent, error)
	ListCycles(ctx context.Context, assetID uuid.UUID) ([]*types.LifecycleCycle, error)
	Ping(ctx context.Context) error
}

// MaintenanceRepository stores hourmeter readings and exposes the
// aggregates the lifecycle engine reads.
type MaintenanceRepository interface {
	AddMaintenanceRecord(ctx context.Context, record *types.MaintenanceRecord) error
	ListMaintenanceRecords(ctx context.Context, assetID uuid.UUID) ([]*types.MaintenanceRecord, error)
	LastHourmeter(ctx context.Context, assetID uuid.UUID) (float64, error)
	TotalHourmeter(ctx context.Context, assetID uuid.UUID) (float64, error)
}
