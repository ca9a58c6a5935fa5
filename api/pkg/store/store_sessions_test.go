package store

import (
	"time"

	"github.com/atelierhq/atelier/api/pkg/system"
	"github.com/atelierhq/atelier/api/pkg/types"
)

func (suite *PostgresStoreTestSuite) newTestSession(status types.SessionStatus, port, toolPort int) *types.WorkspaceSession {
	id := system.GenerateSessionID()
	session := &types.WorkspaceSession{
		ID:             id,
		UserID:         "test-" + system.GenerateUUID(),
		ContainerName:  "atelier-session-" + id,
		Port:           port,
		ToolServerPort: toolPort,
		Status:         status,
		ActivityLevel:  types.ActivityLevelActive,
	}
	created, err := suite.db.CreateSession(suite.ctx, session)
	suite.Require().NoError(err)
	return created
}

func (suite *PostgresStoreTestSuite) TestCreateAndGetSession() {
	session := suite.newTestSession(types.SessionStatusCreating, 10000, 10001)

	fetched, err := suite.db.GetSession(suite.ctx, session.ID)
	suite.NoError(err)
	suite.Equal(session.ID, fetched.ID)
	suite.Equal(session.UserID, fetched.UserID)
	suite.Equal(types.SessionStatusCreating, fetched.Status)
	suite.False(fetched.LastActivityAt.IsZero())
}

func (suite *PostgresStoreTestSuite) TestGetSessionNotFound() {
	_, err := suite.db.GetSession(suite.ctx, "ses_does_not_exist")
	suite.ErrorIs(err, ErrNotFound)
}

func (suite *PostgresStoreTestSuite) TestAllocatedPortsOnlyCountsActiveSessions() {
	running := suite.newTestSession(types.SessionStatusRunning, 10100, 10101)
	creating := suite.newTestSession(types.SessionStatusCreating, 10102, 10103)
	stopped := suite.newTestSession(types.SessionStatusStopped, 10104, 10105)

	ports, err := suite.db.AllocatedPorts(suite.ctx)
	suite.NoError(err)

	suite.Contains(ports, running.Port)
	suite.Contains(ports, running.ToolServerPort)
	suite.Contains(ports, creating.Port)
	suite.Contains(ports, creating.ToolServerPort)
	suite.NotContains(ports, stopped.Port)
	suite.NotContains(ports, stopped.ToolServerPort)
}

func (suite *PostgresStoreTestSuite) TestUpdateSessionStatus() {
	session := suite.newTestSession(types.SessionStatusRunning, 10200, 10201)

	err := suite.db.UpdateSessionStatus(suite.ctx, session.ID, types.SessionStatusError, "container exited")
	suite.NoError(err)

	fetched, err := suite.db.GetSession(suite.ctx, session.ID)
	suite.NoError(err)
	suite.Equal(types.SessionStatusError, fetched.Status)
	suite.Equal("container exited", fetched.Error)
	suite.False(fetched.IsReady)

	err = suite.db.UpdateSessionStatus(suite.ctx, "ses_missing", types.SessionStatusStopped, "")
	suite.ErrorIs(err, ErrNotFound)
}

func (suite *PostgresStoreTestSuite) TestSetSessionContainerIsWriteOnce() {
	session := suite.newTestSession(types.SessionStatusCreating, 10300, 10301)

	err := suite.db.SetSessionContainer(suite.ctx, session.ID, "container-abc")
	suite.NoError(err)

	// setting the same id again is a no-op
	err = suite.db.SetSessionContainer(suite.ctx, session.ID, "container-abc")
	suite.NoError(err)

	// a different id must not overwrite
	err = suite.db.SetSessionContainer(suite.ctx, session.ID, "container-xyz")
	suite.Error(err)

	fetched, err := suite.db.GetSession(suite.ctx, session.ID)
	suite.NoError(err)
	suite.Equal("container-abc", fetched.ContainerID)
}

func (suite *PostgresStoreTestSuite) TestMarkSessionReady() {
	session := suite.newTestSession(types.SessionStatusInitializing, 10400, 10401)

	err := suite.db.MarkSessionReady(suite.ctx, session.ID, "http://localhost:10400")
	suite.NoError(err)

	fetched, err := suite.db.GetSession(suite.ctx, session.ID)
	suite.NoError(err)
	suite.Equal(types.SessionStatusRunning, fetched.Status)
	suite.True(fetched.IsReady)
	suite.Equal("http://localhost:10400", fetched.PreviewURL)
}

func (suite *PostgresStoreTestSuite) TestConnectionCounting() {
	session := suite.newTestSession(types.SessionStatusRunning, 10500, 10501)

	updated, err := suite.db.IncrementSessionConnections(suite.ctx, session.ID)
	suite.NoError(err)
	suite.Equal(1, updated.ActiveConnectionCount)
	suite.Equal(types.ActivityLevelActive, updated.ActivityLevel)
	suite.Nil(updated.GracePeriodEndsAt)

	updated, err = suite.db.IncrementSessionConnections(suite.ctx, session.ID)
	suite.NoError(err)
	suite.Equal(2, updated.ActiveConnectionCount)

	updated, err = suite.db.DecrementSessionConnections(suite.ctx, session.ID)
	suite.NoError(err)
	suite.Equal(1, updated.ActiveConnectionCount)

	updated, err = suite.db.DecrementSessionConnections(suite.ctx, session.ID)
	suite.NoError(err)
	suite.Equal(0, updated.ActiveConnectionCount)

	// never goes negative
	updated, err = suite.db.DecrementSessionConnections(suite.ctx, session.ID)
	suite.NoError(err)
	suite.Equal(0, updated.ActiveConnectionCount)
}

func (suite *PostgresStoreTestSuite) TestSetSessionActivityLevel() {
	session := suite.newTestSession(types.SessionStatusRunning, 10600, 10601)

	graceEnd := time.Now().Add(time.Minute).UTC()
	err := suite.db.SetSessionActivityLevel(suite.ctx, session.ID, types.ActivityLevelIdle, &graceEnd)
	suite.NoError(err)

	fetched, err := suite.db.GetSession(suite.ctx, session.ID)
	suite.NoError(err)
	suite.Equal(types.ActivityLevelIdle, fetched.ActivityLevel)
	suite.NotNil(fetched.GracePeriodEndsAt)
	suite.WithinDuration(graceEnd, *fetched.GracePeriodEndsAt, time.Second)

	err = suite.db.SetSessionActivityLevel(suite.ctx, session.ID, types.ActivityLevelActive, nil)
	suite.NoError(err)

	fetched, err = suite.db.GetSession(suite.ctx, session.ID)
	suite.NoError(err)
	suite.Equal(types.ActivityLevelActive, fetched.ActivityLevel)
	suite.Nil(fetched.GracePeriodEndsAt)
}

func (suite *PostgresStoreTestSuite) TestListStaleSessions() {
	stale := suite.newTestSession(types.SessionStatusRunning, 10700, 10701)
	fresh := suite.newTestSession(types.SessionStatusRunning, 10702, 10703)
	stopped := suite.newTestSession(types.SessionStatusStopped, 10704, 10705)

	// age the stale and stopped sessions
	old := time.Now().Add(-2 * time.Hour)
	for _, id := range []string{stale.ID, stopped.ID} {
		err := suite.db.gdb.WithContext(suite.ctx).
			Model(&types.WorkspaceSession{}).
			Where("id = ?", id).
			Update("last_activity_at", old).Error
		suite.Require().NoError(err)
	}

	sessions, err := suite.db.ListStaleSessions(suite.ctx, time.Now().Add(-time.Hour))
	suite.NoError(err)

	ids := make([]string, 0, len(sessions))
	for _, s := range sessions {
		ids = append(ids, s.ID)
	}
	suite.Contains(ids, stale.ID)
	suite.NotContains(ids, fresh.ID)
	suite.NotContains(ids, stopped.ID)
}

func (suite *PostgresStoreTestSuite) TestListSessionsFilters() {
	session := suite.newTestSession(types.SessionStatusRunning, 10800, 10801)

	byUser, err := suite.db.ListSessions(suite.ctx, &ListSessionsQuery{UserID: session.UserID})
	suite.NoError(err)
	suite.Len(byUser, 1)
	suite.Equal(session.ID, byUser[0].ID)

	byStatus, err := suite.db.ListSessions(suite.ctx, &ListSessionsQuery{
		UserID:   session.UserID,
		Statuses: []types.SessionStatus{types.SessionStatusStopped},
	})
	suite.NoError(err)
	suite.Empty(byStatus)
}

func (suite *PostgresStoreTestSuite) TestDeleteSession() {
	session := suite.newTestSession(types.SessionStatusStopped, 10900, 10901)

	err := suite.db.DeleteSession(suite.ctx, session.ID)
	suite.NoError(err)

	_, err = suite.db.GetSession(suite.ctx, session.ID)
	suite.ErrorIs(err, ErrNotFound)

	// deleting again is harmless
	err = suite.db.DeleteSession(suite.ctx, session.ID)
	suite.NoError(err)
}
