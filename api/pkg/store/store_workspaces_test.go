package store

import (
	"github.com/atelierhq/atelier/api/pkg/system"
	"github.com/atelierhq/atelier/api/pkg/types"
)

func (suite *PostgresStoreTestSuite) newTestWorkspace(userID string) *types.Workspace {
	workspace := &types.Workspace{
		ID:     system.GenerateWorkspaceID(),
		UserID: userID,
		Name:   "test workspace",
	}
	created, err := suite.db.CreateWorkspace(suite.ctx, workspace)
	suite.Require().NoError(err)
	return created
}

func (suite *PostgresStoreTestSuite) TestCreateAndGetWorkspace() {
	workspace := suite.newTestWorkspace("test-" + system.GenerateUUID())

	fetched, err := suite.db.GetWorkspace(suite.ctx, workspace.ID)
	suite.NoError(err)
	suite.Equal(workspace.ID, fetched.ID)
	suite.Equal(workspace.UserID, fetched.UserID)
	suite.Equal("test workspace", fetched.Name)
	suite.False(fetched.CreatedAt.IsZero())
}

func (suite *PostgresStoreTestSuite) TestCreateWorkspaceValidation() {
	_, err := suite.db.CreateWorkspace(suite.ctx, &types.Workspace{UserID: "user"})
	suite.Error(err)

	_, err = suite.db.CreateWorkspace(suite.ctx, &types.Workspace{ID: system.GenerateWorkspaceID()})
	suite.Error(err)
}

func (suite *PostgresStoreTestSuite) TestGetWorkspaceNotFound() {
	_, err := suite.db.GetWorkspace(suite.ctx, "wsp_does_not_exist")
	suite.ErrorIs(err, ErrNotFound)
}

func (suite *PostgresStoreTestSuite) TestListWorkspacesScopedToUser() {
	userID := "test-" + system.GenerateUUID()
	mine := suite.newTestWorkspace(userID)
	other := suite.newTestWorkspace("test-" + system.GenerateUUID())

	workspaces, err := suite.db.ListWorkspaces(suite.ctx, userID)
	suite.NoError(err)
	suite.Len(workspaces, 1)
	suite.Equal(mine.ID, workspaces[0].ID)

	workspaces, err = suite.db.ListWorkspaces(suite.ctx, other.UserID)
	suite.NoError(err)
	suite.Len(workspaces, 1)
	suite.Equal(other.ID, workspaces[0].ID)
}

func (suite *PostgresStoreTestSuite) TestDeleteWorkspace() {
	workspace := suite.newTestWorkspace("test-" + system.GenerateUUID())

	err := suite.db.DeleteWorkspace(suite.ctx, workspace.ID)
	suite.NoError(err)

	_, err = suite.db.GetWorkspace(suite.ctx, workspace.ID)
	suite.ErrorIs(err, ErrNotFound)

	// deleting again is harmless
	err = suite.db.DeleteWorkspace(suite.ctx, workspace.ID)
	suite.NoError(err)
}
