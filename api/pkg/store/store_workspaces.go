package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/atelierhq/atelier/api/pkg/types"
)

func (s *PostgresStore) CreateWorkspace(ctx context.Context, workspace *types.Workspace) (*types.Workspace, error) {
	if workspace.ID == "" {
		return nil, errors.New("workspace id not specified")
	}
	if workspace.UserID == "" {
		return nil, errors.New("workspace user not specified")
	}

	workspace.CreatedAt = time.Now()
	workspace.UpdatedAt = workspace.CreatedAt

	err := s.gdb.WithContext(ctx).Create(workspace).Error
	if err != nil {
		return nil, err
	}
	return workspace, nil
}

func (s *PostgresStore) GetWorkspace(ctx context.Context, id string) (*types.Workspace, error) {
	var workspace types.Workspace
	err := s.gdb.WithContext(ctx).Where("id = ?", id).First(&workspace).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &workspace, nil
}

func (s *PostgresStore) ListWorkspaces(ctx context.Context, userID string) ([]*types.Workspace, error) {
	var workspaces []*types.Workspace
	err := s.gdb.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&workspaces).Error
	if err != nil {
		return nil, err
	}
	return workspaces, nil
}

func (s *PostgresStore) DeleteWorkspace(ctx context.Context, id string) error {
	return s.gdb.WithContext(ctx).Where("id = ?", id).Delete(&types.Workspace{}).Error
}
