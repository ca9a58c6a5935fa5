package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/atelierhq/atelier/api/pkg/types"
)

func (s *PostgresStore) CreateSession(ctx context.Context, session *types.WorkspaceSession) (*types.WorkspaceSession, error) {
	if session.ID == "" {
		return nil, fmt.Errorf("session id not specified")
	}
	if session.UserID == "" {
		return nil, fmt.Errorf("session user not specified")
	}

	session.CreatedAt = time.Now()
	session.UpdatedAt = session.CreatedAt
	if session.LastActivityAt.IsZero() {
		session.LastActivityAt = session.CreatedAt
	}

	err := s.gdb.WithContext(ctx).Create(session).Error
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *PostgresStore) GetSession(ctx context.Context, id string) (*types.WorkspaceSession, error) {
	if id == "" {
		return nil, fmt.Errorf("session id cannot be empty")
	}

	var session types.WorkspaceSession
	err := s.gdb.WithContext(ctx).Where("id = ?", id).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (s *PostgresStore) UpdateSession(ctx context.Context, session *types.WorkspaceSession) (*types.WorkspaceSession, error) {
	if session.ID == "" {
		return nil, fmt.Errorf("id not specified")
	}

	session.UpdatedAt = time.Now()
	err := s.gdb.WithContext(ctx).Save(session).Error
	if err != nil {
		return nil, err
	}
	return s.GetSession(ctx, session.ID)
}

func (s *PostgresStore) DeleteSession(ctx context.Context, id string) error {
	return s.gdb.WithContext(ctx).Where("id = ?", id).Delete(&types.WorkspaceSession{}).Error
}

func (s *PostgresStore) ListSessions(ctx context.Context, q *ListSessionsQuery) ([]*types.WorkspaceSession, error) {
	db := s.gdb.WithContext(ctx).Model(&types.WorkspaceSession{})
	if q.UserID != "" {
		db = db.Where("user_id = ?", q.UserID)
	}
	if q.WorkspaceID != "" {
		db = db.Where("workspace_id = ?", q.WorkspaceID)
	}
	if len(q.Statuses) > 0 {
		db = db.Where("status IN ?", q.Statuses)
	}

	db = db.Order("created_at DESC")

	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}
	if q.Offset > 0 {
		db = db.Offset(q.Offset)
	}

	var sessions []*types.WorkspaceSession
	err := db.Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s *PostgresStore) AllocatedPorts(ctx context.Context) ([]int, error) {
	var sessions []*types.WorkspaceSession
	err := s.gdb.WithContext(ctx).
		Select("port", "tool_server_port").
		Where("status IN ?", types.ActiveSessionStatuses).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}

	ports := make([]int, 0, len(sessions)*2)
	for _, session := range sessions {
		if session.Port > 0 {
			ports = append(ports, session.Port)
		}
		if session.ToolServerPort > 0 {
			ports = append(ports, session.ToolServerPort)
		}
	}
	return ports, nil
}

func (s *PostgresStore) UpdateSessionStatus(ctx context.Context, id string, status types.SessionStatus, sessionError string) error {
	updates := map[string]interface{}{
		"status":     status,
		"error":      sessionError,
		"updated_at": time.Now(),
	}
	if status != types.SessionStatusRunning {
		updates["is_ready"] = false
	}

	result := s.gdb.WithContext(ctx).
		Model(&types.WorkspaceSession{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetSessionContainer records the container backing a session. The id is
// written once, a second call with a different container fails.
func (s *PostgresStore) SetSessionContainer(ctx context.Context, id string, containerID string) error {
	result := s.gdb.WithContext(ctx).
		Model(&types.WorkspaceSession{}).
		Where("id = ? AND (container_id = '' OR container_id = ?)", id, containerID).
		Updates(map[string]interface{}{
			"container_id": containerID,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("session %s not found or container already set", id)
	}
	return nil
}

func (s *PostgresStore) MarkSessionReady(ctx context.Context, id string, previewURL string) error {
	result := s.gdb.WithContext(ctx).
		Model(&types.WorkspaceSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      types.SessionStatusRunning,
			"is_ready":    true,
			"error":       "",
			"preview_url": previewURL,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) MarkSessionSaved(ctx context.Context, id string, savedAt time.Time) error {
	return s.gdb.WithContext(ctx).
		Model(&types.WorkspaceSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"has_saved_changes": true,
			"last_saved_at":     savedAt,
			"updated_at":        time.Now(),
		}).Error
}

func (s *PostgresStore) IncrementSessionConnections(ctx context.Context, id string) (*types.WorkspaceSession, error) {
	result := s.gdb.WithContext(ctx).
		Model(&types.WorkspaceSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"active_connection_count": gorm.Expr("active_connection_count + 1"),
			"activity_level":          types.ActivityLevelActive,
			"grace_period_ends_at":    nil,
			"last_activity_at":        time.Now(),
			"updated_at":              time.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetSession(ctx, id)
}

func (s *PostgresStore) DecrementSessionConnections(ctx context.Context, id string) (*types.WorkspaceSession, error) {
	// CASE rather than GREATEST so the expression also runs on the
	// sqlite test store
	result := s.gdb.WithContext(ctx).
		Model(&types.WorkspaceSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"active_connection_count": gorm.Expr("CASE WHEN active_connection_count > 0 THEN active_connection_count - 1 ELSE 0 END"),
			"last_activity_at":        time.Now(),
			"updated_at":              time.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetSession(ctx, id)
}

func (s *PostgresStore) SetSessionActivityLevel(ctx context.Context, id string, level types.ActivityLevel, graceEndsAt *time.Time) error {
	result := s.gdb.WithContext(ctx).
		Model(&types.WorkspaceSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"activity_level":       level,
			"grace_period_ends_at": graceEndsAt,
			"last_activity_at":     time.Now(),
			"updated_at":           time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) TouchSessionActivity(ctx context.Context, id string) error {
	return s.gdb.WithContext(ctx).
		Model(&types.WorkspaceSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_activity_at": time.Now(),
			"updated_at":       time.Now(),
		}).Error
}

func (s *PostgresStore) ListStaleSessions(ctx context.Context, cutoff time.Time) ([]*types.WorkspaceSession, error) {
	var sessions []*types.WorkspaceSession
	err := s.gdb.WithContext(ctx).
		Where("status IN ?", types.ActiveSessionStatuses).
		Where("last_activity_at < ?", cutoff).
		Order("last_activity_at ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}
