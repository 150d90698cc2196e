package ipc

import (
	"github.com/ArcCdr/AutomatedFanfic/internal/api"
	"github.com/ArcCdr/AutomatedFanfic/internal/workflow"
)

// Clear scopes accepted by SpoolClearRequest.
const (
	ClearScopeAll       = "all"
	ClearScopeCompleted = "completed"
	ClearScopeFailed    = "failed"
)

// PingRequest probes daemon liveness.
type PingRequest struct{}

// PingResponse confirms the daemon answered.
type PingResponse struct {
	Pong bool `json:"pong"`
	PID  int  `json:"pid"`
}

// StopRequest halts the daemon pipeline.
type StopRequest struct{}

// StopResponse acknowledges that the pipeline shutdown began.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// StatusRequest asks for a full daemon snapshot.
type StatusRequest struct{}

// QueueStatus mirrors the handoff manager's queue summary.
type QueueStatus = workflow.QueueStatus

// StatusResponse represents combined daemon/pipeline status information.
// SystemChecks and PathChecks are filled client-side by daemonctl so status
// output works even when the daemon is offline.
type StatusResponse struct {
	Running       bool             `json:"running"`
	PID           int              `json:"pid"`
	WatchDir      string           `json:"watch_dir"`
	SpoolDBPath   string           `json:"spool_db_path"`
	LockPath      string           `json:"lock_path"`
	MonitorAlive  bool             `json:"monitor_alive"`
	CycleCount    int64            `json:"cycle_count"`
	LastCycleAt   string           `json:"last_cycle_at,omitempty"`
	LastBatchSize int              `json:"last_batch_size"`
	Queues        []QueueStatus    `json:"queues"`
	Spooled       int64            `json:"spooled"`
	Dropped       int64            `json:"dropped"`
	SpoolStats    map[string]int   `json:"spool_stats"`
	SpoolBySite   map[string]int   `json:"spool_by_site"`
	SystemChecks  []api.StatusLine `json:"system_checks,omitempty"`
	PathChecks    []api.StatusLine `json:"path_checks,omitempty"`
}

// ScanNowRequest asks the watcher for an immediate poll cycle.
type ScanNowRequest struct{}

// ScanNowResponse reports whether the scan was triggered.
type ScanNowResponse struct {
	Triggered bool   `json:"triggered"`
	Message   string `json:"message"`
}

// SpoolEntry mirrors the shared transport representation of a spooled story.
type SpoolEntry = api.SpoolEntry

// SpoolListRequest filters spool listing by status.
type SpoolListRequest struct {
	Statuses []string `json:"statuses"`
}

// SpoolListResponse contains spool entries.
type SpoolListResponse struct {
	Items []SpoolEntry `json:"items"`
}

// SpoolClearRequest removes spool items for the given scope.
type SpoolClearRequest struct {
	Scope string `json:"scope"`
}

// SpoolClearResponse reports number of removed entries.
type SpoolClearResponse struct {
	Removed int64 `json:"removed"`
}

// SpoolRetryRequest retries failed items. Empty list means all failed items.
type SpoolRetryRequest struct {
	IDs []int64 `json:"ids"`
}

// SpoolRetryResponse reports number of retried items.
type SpoolRetryResponse struct {
	Updated int64 `json:"updated"`
}

// SpoolHealthRequest fetches aggregate spool diagnostics.
type SpoolHealthRequest struct{}

// SpoolHealthResponse reports spool health counts.
type SpoolHealthResponse struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// DatabaseHealthRequest fetches detailed spool database diagnostics.
type DatabaseHealthRequest struct{}

// DatabaseHealthResponse reports spool database health information.
type DatabaseHealthResponse struct {
	DBPath           string   `json:"db_path"`
	DatabaseExists   bool     `json:"database_exists"`
	DatabaseReadable bool     `json:"database_readable"`
	TableExists      bool     `json:"table_exists"`
	ColumnsPresent   []string `json:"columns_present"`
	MissingColumns   []string `json:"missing_columns"`
	IntegrityCheck   bool     `json:"integrity_check"`
	TotalItems       int      `json:"total_items"`
	Error            string   `json:"error"`
}

// TestNotificationRequest pushes a test message through every configured backend.
type TestNotificationRequest struct{}

// TestNotificationResponse carries the delivery outcome and operator message.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
