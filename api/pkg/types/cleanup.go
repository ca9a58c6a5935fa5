package types

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type CleanupJobKind string

const (
	CleanupJobSessionCleanup   CleanupJobKind = "session-cleanup"
	CleanupJobHealthCheck      CleanupJobKind = "health-check-cleanup"
	CleanupJobOrphanedSessions CleanupJobKind = "orphaned-sessions-cleanup"
	CleanupJobManual           CleanupJobKind = "manual-cleanup"
)

type CleanupJobStatus string

const (
	CleanupJobStatusWaiting   CleanupJobStatus = "waiting"
	CleanupJobStatusActive    CleanupJobStatus = "active"
	CleanupJobStatusCompleted CleanupJobStatus = "completed"
	CleanupJobStatusFailed    CleanupJobStatus = "failed"
)

type CleanupReason string

const (
	CleanupReasonDisconnected       CleanupReason = "disconnected"
	CleanupReasonBackgroundTimeout  CleanupReason = "background-timeout"
	CleanupReasonHealthCheckFailure CleanupReason = "health-check-failure"
	CleanupReasonOrphaned           CleanupReason = "orphaned"
	CleanupReasonManual             CleanupReason = "manual"
)

// CleanupJob is a durable unit of teardown work. Jobs survive restarts,
// retry with exponential backoff up to MaxAttempts and are retained after
// completion for inspection until RetainUntil.
type CleanupJob struct {
	ID   string         `gorm:"type:varchar(255);primaryKey" json:"id"`
	Kind CleanupJobKind `gorm:"type:varchar(100);not null;index" json:"kind"`

	// DedupKey identifies the logical job, e.g. session-cleanup-<sessionID>.
	// The queue keeps at most one waiting job per key.
	DedupKey string `gorm:"type:varchar(255);index" json:"dedup_key,omitempty"`
	Priority int    `gorm:"default:5;index" json:"priority"`

	Status  CleanupJobStatus `gorm:"type:varchar(50);not null;default:'waiting';index" json:"status"`
	Payload datatypes.JSON   `json:"payload,omitempty"`

	Attempts     int       `gorm:"default:0" json:"attempts"`
	MaxAttempts  int       `gorm:"default:3" json:"max_attempts"`
	ScheduledFor time.Time `gorm:"index" json:"scheduled_for"`
	LastError    string    `gorm:"type:text" json:"last_error,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	RetainUntil *time.Time `gorm:"index" json:"retain_until,omitempty"`
}

// SessionCleanupDedupKey builds the dedup key for a single-session job.
func SessionCleanupDedupKey(sessionID string) string {
	return fmt.Sprintf("session-cleanup-%s", sessionID)
}

type SessionCleanupPayload struct {
	SessionID string        `json:"session_id"`
	UserID    string        `json:"user_id"`
	Reason    CleanupReason `json:"reason"`
}

type HealthCheckCleanupPayload struct {
	SessionIDs []string      `json:"session_ids"`
	Reason     CleanupReason `json:"reason"`
}

type OrphanedCleanupPayload struct {
	MaxAgeSeconds int64 `json:"max_age_seconds"`
}

type ManualCleanupPayload struct {
	UserID     string   `json:"user_id"`
	SessionIDs []string `json:"session_ids"`
}

// RunCleanupRequest asks for immediate cleanup of the caller's sessions.
// Empty SessionIDs means every active session the caller owns.
type RunCleanupRequest struct {
	SessionIDs []string `json:"session_ids,omitempty"`
}

type CleanupErrorCode string

const (
	CleanupErrorSessionNotFound       CleanupErrorCode = "SESSION_NOT_FOUND"
	CleanupErrorContainerRemoveFailed CleanupErrorCode = "CONTAINER_REMOVE_FAILED"
	CleanupErrorPermissionDenied      CleanupErrorCode = "PERMISSION_DENIED"
	CleanupErrorTimeout               CleanupErrorCode = "TIMEOUT_ERROR"
	CleanupErrorDatabaseUpdateFailed  CleanupErrorCode = "DATABASE_UPDATE_FAILED"
)

type CleanupError struct {
	SessionID string           `json:"session_id,omitempty"`
	Code      CleanupErrorCode `json:"code"`
	Message   string           `json:"message"`
}

// CleanupResult is what every job handler returns. A job that finds
// nothing left to clean still succeeds, vanished sessions are recorded
// as SESSION_NOT_FOUND entries without failing the job.
type CleanupResult struct {
	Success           bool           `json:"success"`
	ProcessedCount    int            `json:"processed_count"`
	CleanedCount      int            `json:"cleaned_count"`
	CleanedSessionIDs []string       `json:"cleaned_session_ids,omitempty"`
	Errors            []CleanupError `json:"errors,omitempty"`
	CompletedAt       time.Time      `json:"completed_at"`
	DurationMS        int64          `json:"duration_ms"`
}

// CleanupQueueStats summarises queue state for the status endpoint.
type CleanupQueueStats struct {
	Waiting      int64            `json:"waiting"`
	Active       int64            `json:"active"`
	Completed    int64            `json:"completed"`
	Failed       int64            `json:"failed"`
	ByKind       map[string]int64 `json:"by_kind"`
	OldestDue    *time.Time       `json:"oldest_due,omitempty"`
	DispatcherOK bool             `json:"dispatcher_ok"`
}
