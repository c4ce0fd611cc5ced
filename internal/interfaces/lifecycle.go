package interfaces

// SystemStatus represents the current service state
type SystemStatus struct {
	State         string `json:"state"`
	StoreDriver   string `json:"store_driver"`
	StoreHealthy  bool   `json:"store_healthy"`
	LiveClients   int    `json:"live_clients"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

type StatusProvider interface {
	GetCurrentStatus() SystemStatus
}
