package models

import "time"

// PoolStats is a snapshot of the agent pool's counters.
type PoolStats struct {
	RegisteredCount  int     `json:"registered_count"`
	ActiveCount      int     `json:"active_count"`
	LoadingCount     int     `json:"loading_count"`
	MemoryFraction   float64 `json:"memory_fraction"`
	CacheHitRate     float64 `json:"cache_hit_rate"`
	TotalRequests    int64   `json:"total_requests"`
	LoadOperations   int64   `json:"load_operations"`
	UnloadOperations int64   `json:"unload_operations"`
}

// BusStats is a snapshot of the message bus delivery counters.
// AverageDeliveryTime is a rolling average over the most recent deliveries,
// measured receive-time minus message timestamp.
type BusStats struct {
	TotalSent           int64            `json:"total_sent"`
	TotalReceived       int64            `json:"total_received"`
	TotalBroadcast      int64            `json:"total_broadcast"`
	FailedDeliveries    int64            `json:"failed_deliveries"`
	AverageDeliveryTime time.Duration    `json:"average_delivery_time"`
	MessageTypes        map[string]int64 `json:"message_types"`
}

// QueueStatus reports one recipient queue's fill level.
type QueueStatus struct {
	QueueSize int     `json:"queue_size"`
	MaxSize   int     `json:"max_size"`
	UsageRate float64 `json:"usage_rate"`
}

// SystemStats aggregates component stats for the status API.
type SystemStats struct {
	Running             bool      `json:"running"`
	ActiveConversations int       `json:"active_conversations"`
	Pool                PoolStats `json:"pool"`
	Bus                 BusStats  `json:"bus"`
}
