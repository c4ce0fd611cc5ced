package lifecycle

import (
	"time"

	"github.com/KevinKickass/OpenAssetCore/internal/types"
	"github.com/google/uuid"
)

type EventType string

const (
	EventAssetRegistered    EventType = "asset_registered"
	EventAssetMoved         EventType = "asset_moved"
	EventAssetUpdated       EventType = "asset_updated"
	EventInspectionResolved EventType = "inspection_resolved"
	EventAssetSubstituted   EventType = "asset_substituted"
)

// Event is published after a lifecycle operation has committed.
type Event struct {
	Type      EventType          `json:"type"`
	AssetID   uuid.UUID          `json:"asset_id"`
	AssetCode string             `json:"asset_code"`
	From      types.LocationType `json:"from,omitempty"`
	To        types.LocationType `json:"to,omitempty"`
	Related   string             `json:"related_asset_code,omitempty"`
	Actor     string             `json:"actor"`
	At        time.Time          `json:"at"`
}

// Notifier receives committed events. Publish must not block.
type Notifier interface {
	Publish(event Event)
}

type NopNotifier struct{}

func (NopNotifier) Publish(Event) {}
