package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/KevinKickass/OpenAssetCore/internal/interfaces"
	"github.com/KevinKickass/OpenAssetCore/internal/types"
	"github.com/google/uuid"
)

// MemoryStore keeps everything in process. Transactions are serialized and
// roll back by restoring a snapshot.
type MemoryStore struct {
	mu sync.RWMutex

	assets  map[uuid.UUID]*types.Asset
	byCode  map[string]uuid.UUID
	history []*types.HistoryEvent
	cycles  []*types.LifecycleCycle
	records []*types.MaintenanceRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		assets: make(map[uuid.UUID]*types.Asset),
		byCode: make(map[string]uuid.UUID),
	}
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryStore) GetAsset(ctx context.Context, id uuid.UUID) (*types.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getAsset(id)
}

func (m *MemoryStore) GetAssetByCode(ctx context.Context, code string) (*types.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getAssetByCode(code)
}

func (m *MemoryStore) getAsset(id uuid.UUID) (*types.Asset, error) {
	a, ok := m.assets[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return a.Clone(), nil
}

func (m *MemoryStore) getAssetByCode(code string) (*types.Asset, error) {
	id, ok := m.byCode[code]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return m.getAsset(id)
}

func (m *MemoryStore) ListAssets(ctx context.Context, filter types.AssetFilter) ([]*types.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	assets := make([]*types.Asset, 0, len(m.assets))
	for _, a := range m.assets {
		if filter.Location != "" && a.LocationType() != filter.Location {
			continue
		}
		assets = append(assets, a.Clone())
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].AssetCode < assets[j].AssetCode })
	if filter.Limit > 0 && len(assets) > filter.Limit {
		assets = assets[:filter.Limit]
	}
	return assets, nil
}

// ListHistory returns the events of an asset, newest first.
func (m *MemoryStore) ListHistory(ctx context.Context, assetID uuid.UUID) ([]*types.HistoryEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]*types.HistoryEvent, 0)
	for i := len(m.history) - 1; i >= 0; i-- {
		if e := m.history[i]; e.PatID == assetID {
			c := *e
			events = append(events, &c)
		}
	}
	return events, nil
}

func (m *MemoryStore) ListCycles(ctx context.Context, assetID uuid.UUID) ([]*types.LifecycleCycle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cycles := make([]*types.LifecycleCycle, 0)
	for i := len(m.cycles) - 1; i >= 0; i-- {
		if c := m.cycles[i]; c.AssetID == assetID {
			cp := *c
			cycles = append(cycles, &cp)
		}
	}
	return cycles, nil
}

type memorySnapshot struct {
	assets  map[uuid.UUID]*types.Asset
	byCode  map[string]uuid.UUID
	history int
	cycles  int
}

func (m *MemoryStore) snapshot() memorySnapshot {
	s := memorySnapshot{
		assets:  make(map[uuid.UUID]*types.Asset, len(m.assets)),
		byCode:  make(map[string]uuid.UUID, len(m.byCode)),
		history: len(m.history),
		cycles:  len(m.cycles),
	}
	for id, a := range m.assets {
		s.assets[id] = a
	}
	for code, id := range m.byCode {
		s.byCode[code] = id
	}
	return s
}

func (m *MemoryStore) restore(s memorySnapshot) {
	m.assets = s.assets
	m.byCode = s.byCode
	m.history = m.history[:s.history]
	m.cycles = m.cycles[:s.cycles]
}

// InTx holds the write lock for the whole of fn. Stored assets are replaced,
// never mutated, so the snapshot only copies the maps.
func (m *MemoryStore) InTx(ctx context.Context, fn func(tx interfaces.AssetTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	if err := fn(&memoryTx{store: m}); err != nil {
		m.restore(snap)
		return err
	}
	if err := ctx.Err(); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type memoryTx struct {
	store *MemoryStore
}

func (t *memoryTx) GetAsset(ctx context.Context, id uuid.UUID) (*types.Asset, error) {
	return t.store.getAsset(id)
}

func (t *memoryTx) GetAssetByCode(ctx context.Context, code string) (*types.Asset, error) {
	return t.store.getAssetByCode(code)
}

func (t *memoryTx) CreateAsset(ctx context.Context, asset *types.Asset) error {
	if _, ok := t.store.byCode[asset.AssetCode]; ok {
		return interfaces.ErrDuplicateCode
	}
	t.store.assets[asset.ID] = asset.Clone()
	t.store.byCode[asset.AssetCode] = asset.ID
	return nil
}

func (t *memoryTx) UpdateAsset(ctx context.Context, asset *types.Asset) error {
	current, ok := t.store.assets[asset.ID]
	if !ok {
		return interfaces.ErrNotFound
	}
	if current.Version != asset.Version {
		return interfaces.ErrVersionConflict
	}
	asset.Version++
	stored := asset.Clone()
	stored.AssetCode = current.AssetCode
	stored.CreatedAt = current.CreatedAt
	t.store.assets[asset.ID] = stored
	return nil
}

func (t *memoryTx) AppendHistory(ctx context.Context, event *types.HistoryEvent) error {
	c := *event
	t.store.history = append(t.store.history, &c)
	return nil
}

func (t *memoryTx) ArchiveCycle(ctx context.Context, cycle *types.LifecycleCycle) error {
	c := *cycle
	t.store.cycles = append(t.store.cycles, &c)
	return nil
}

func (m *MemoryStore) AddMaintenanceRecord(ctx context.Context, record *types.MaintenanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.assets[record.AssetID]; !ok {
		return interfaces.ErrNotFound
	}
	c := *record
	m.records = append(m.records, &c)
	return nil
}

func (m *MemoryStore) ListMaintenanceRecords(ctx context.Context, assetID uuid.UUID) ([]*types.MaintenanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]*types.MaintenanceRecord, 0)
	for _, r := range m.records {
		if r.AssetID == assetID {
			c := *r
			records = append(records, &c)
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].PerformedOn.Equal(records[j].PerformedOn) {
			return records[i].PerformedOn.After(records[j].PerformedOn)
		}
		return records[i].Hourmeter > records[j].Hourmeter
	})
	return records, nil
}

func (m *MemoryStore) LastHourmeter(ctx context.Context, assetID uuid.UUID) (float64, error) {
	return m.maxHourmeter(assetID, true), nil
}

func (m *MemoryStore) TotalHourmeter(ctx context.Context, assetID uuid.UUID) (float64, error) {
	return m.maxHourmeter(assetID, false), nil
}

func (m *MemoryStore) maxHourmeter(assetID uuid.UUID, preventiveOnly bool) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var h float64
	for _, r := range m.records {
		if r.AssetID != assetID || (preventiveOnly && !r.Preventive) {
			continue
		}
		if r.Hourmeter > h {
			h = r.Hourmeter
		}
	}
	return h
}
