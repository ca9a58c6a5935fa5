package types

import (
	"fmt"
	"time"
)

type SessionStatus string

const (
	SessionStatusCreating     SessionStatus = "creating"
	SessionStatusInitializing SessionStatus = "initializing"
	SessionStatusRunning      SessionStatus = "running"
	SessionStatusStopped      SessionStatus = "stopped"
	SessionStatusError        SessionStatus = "error"
)

// ActiveSessionStatuses are the statuses during which a session holds its
// host ports and may own a container.
var ActiveSessionStatuses = []SessionStatus{
	SessionStatusCreating,
	SessionStatusInitializing,
	SessionStatusRunning,
}

func (s SessionStatus) IsTerminal() bool {
	return s == SessionStatusStopped || s == SessionStatusError
}

type ActivityLevel string

const (
	ActivityLevelActive     ActivityLevel = "active"
	ActivityLevelIdle       ActivityLevel = "idle"
	ActivityLevelBackground ActivityLevel = "background"
)

// WorkspaceSession is a single user's ephemeral dev environment: one
// container running the preview dev server plus the in-container tool
// server, addressed by a stable container name on the shared network.
type WorkspaceSession struct {
	ID          string `gorm:"type:varchar(255);primaryKey" json:"id"`
	UserID      string `gorm:"type:varchar(255);not null;index" json:"user_id"`
	WorkspaceID string `gorm:"type:varchar(255);index" json:"workspace_id,omitempty"`

	// ContainerID is set once, when the container is created. ContainerName
	// is derived from the session ID and never changes.
	ContainerID   string `gorm:"type:varchar(255)" json:"container_id,omitempty"`
	ContainerName string `gorm:"type:varchar(255);index" json:"container_name"`

	// Port serves the dev preview, ToolServerPort maps to the in-container
	// tool server. Both are unique among sessions in an active status.
	Port           int    `gorm:"default:0" json:"port"`
	ToolServerPort int    `gorm:"default:0" json:"tool_server_port"`
	PreviewURL     string `gorm:"type:varchar(512)" json:"preview_url,omitempty"`

	Status  SessionStatus `gorm:"type:varchar(50);not null;default:'creating';index" json:"status"`
	IsReady bool          `gorm:"default:false" json:"is_ready"`
	Error   string        `gorm:"type:text" json:"error,omitempty"`

	ActivityLevel         ActivityLevel `gorm:"type:varchar(50);not null;default:'active'" json:"activity_level"`
	ActiveConnectionCount int           `gorm:"default:0" json:"active_connection_count"`
	LastActivityAt        time.Time     `json:"last_activity_at"`
	GracePeriodEndsAt     *time.Time    `json:"grace_period_ends_at,omitempty"`

	HasSavedChanges bool       `gorm:"default:false" json:"has_saved_changes"`
	LastSavedAt     *time.Time `json:"last_saved_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Connection derives the registry descriptor for this session.
func (s *WorkspaceSession) Connection() *ContainerConnection {
	return &ContainerConnection{
		ContainerID:    s.ContainerID,
		ContainerName:  s.ContainerName,
		ToolServerPort: s.ToolServerPort,
	}
}

// ContainerConnection is how callers reach a session's tool server. The
// tool server always listens on its fixed in-container port; containers
// are addressed by name on the shared network, so ToolServerPort is only
// needed when dialing via the host-mapped port.
type ContainerConnection struct {
	ContainerID    string `json:"container_id"`
	ContainerName  string `json:"container_name"`
	ToolServerPort int    `json:"tool_server_port"`
}

func (c *ContainerConnection) String() string {
	return fmt.Sprintf("%s (%s)", c.ContainerName, c.ContainerID)
}

// CreateSessionRequest is the request body for creating a session.
type CreateSessionRequest struct {
	WorkspaceID string `json:"workspace_id,omitempty"`
	// Image overrides the configured default session image.
	Image string `json:"image,omitempty"`
}

// SetActivityRequest switches a session between explicit activity levels.
type SetActivityRequest struct {
	Level ActivityLevel `json:"level"`
}
