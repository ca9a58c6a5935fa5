package types

import "time"

// Workspace groups a user's sessions and saved files under one project.
type Workspace struct {
	ID     string `gorm:"type:varchar(255);primaryKey" json:"id"`
	UserID string `gorm:"type:varchar(255);not null;index" json:"user_id"`
	Name   string `gorm:"type:varchar(255);not null" json:"name"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateWorkspaceRequest is the request body for creating a workspace.
type CreateWorkspaceRequest struct {
	Name string `json:"name"`
}

// DeleteWorkspaceResult reports what the deletion state machine did. The
// per-session entries keep their order, container removal failures leave
// the session listed in Skipped so a re-run can pick it up.
type DeleteWorkspaceResult struct {
	WorkspaceID     string    `json:"workspace_id"`
	DeletedSessions []string  `json:"deleted_sessions"`
	Skipped         []string  `json:"skipped,omitempty"`
	ArchiveDeleted  bool      `json:"archive_deleted"`
	ContextDeleted  bool      `json:"context_deleted"`
	CompletedAt     time.Time `json:"completed_at"`
}
