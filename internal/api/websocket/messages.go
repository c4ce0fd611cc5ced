package websocket

import (
	"time"

	"github.com/KevinKickass/OpenAssetCore/internal/lifecycle"
	"github.com/KevinKickass/OpenAssetCore/internal/types"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Lifecycle messages, one per committed operation
	MessageTypeAssetRegistered    MessageType = "asset_registered"
	MessageTypeAssetMoved         MessageType = "asset_moved"
	MessageTypeAssetUpdated       MessageType = "asset_updated"
	MessageTypeInspectionResolved MessageType = "inspection_resolved"
	MessageTypeAssetSubstituted   MessageType = "asset_substituted"

	// Connection messages
	MessageTypeAuthSuccess MessageType = "auth_success"
	MessageTypeAuthFailed  MessageType = "auth_failed"
	MessageTypeSubscribed  MessageType = "subscribed"
)

// Message represents a WebSocket message
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// AssetEventData is the payload of every lifecycle message.
type AssetEventData struct {
	AssetID          string             `json:"asset_id"`
	AssetCode        string             `json:"asset_code"`
	From             types.LocationType `json:"from,omitempty"`
	To               types.LocationType `json:"to,omitempty"`
	RelatedAssetCode string             `json:"related_asset_code,omitempty"`
	Actor            string             `json:"actor"`
}

// NewMessage creates a new message with current timestamp
func NewMessage(msgType MessageType, data interface{}) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

func NewEventMessage(e lifecycle.Event) Message {
	msg := NewMessage(MessageType(e.Type), AssetEventData{
		AssetID:          e.AssetID.String(),
		AssetCode:        e.AssetCode,
		From:             e.From,
		To:               e.To,
		RelatedAssetCode: e.Related,
		Actor:            e.Actor,
	})
	if !e.At.IsZero() {
		msg.Timestamp = e.At
	}
	return msg
}

// codes lists the assets a message concerns, for subscription filtering.
func (m Message) codes() []string {
	d, ok := m.Data.(AssetEventData)
	if !ok {
		return nil
	}
	if d.RelatedAssetCode != "" {
		return []string{d.AssetCode, d.RelatedAssetCode}
	}
	return []string{d.AssetCode}
}

// clientMessage is anything a client sends: auth first, then subscriptions.
type clientMessage struct {
	Type       string   `json:"type"`
	Token      string   `json:"token,omitempty"`
	AssetCodes []string `json:"asset_codes,omitempty"`
}
