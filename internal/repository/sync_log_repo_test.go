package repository_test

import (
	"context"
	"testing"
	"time"

	"CarnivalSync/internal/model"
	"CarnivalSync/internal/repository"
	"CarnivalSync/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncLogRepository_Lifecycle(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewSyncLogRepository(db)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	first := &model.SyncLog{SyncType: model.SyncTypeMySideline, Status: model.SyncStatusStarted, StartedAt: base}
	require.NoError(t, repo.Create(ctx, first))
	require.NotZero(t, first.ID)

	done := base.Add(time.Minute)
	require.NoError(t, repo.Update(ctx, first.ID, map[string]interface{}{
		"status":           model.SyncStatusCompleted,
		"completed_at":     done,
		"events_processed": 3,
	}))

	second := &model.SyncLog{SyncType: model.SyncTypeMySideline, Status: model.SyncStatusStarted, StartedAt: base.Add(30 * time.Minute)}
	require.NoError(t, repo.Create(ctx, second))
	other := &model.SyncLog{SyncType: "other", Status: model.SyncStatusCompleted, StartedAt: base.Add(40 * time.Minute)}
	require.NoError(t, repo.Create(ctx, other))

	latest, err := repo.GetLatestByStatus(ctx, model.SyncTypeMySideline, model.SyncStatusCompleted)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, first.ID, latest.ID)
	assert.Equal(t, 3, latest.EventsProcessed)
	require.NotNil(t, latest.CompletedAt)

	missing, err := repo.GetLatestByStatus(ctx, model.SyncTypeMySideline, model.SyncStatusFailed)
	require.NoError(t, err)
	assert.Nil(t, missing)

	list, err := repo.ListRecent(ctx, model.SyncTypeMySideline, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	all, err := repo.ListRecent(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSyncLogRepository_UpdateMissing(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewSyncLogRepository(db)

	err := repo.Update(context.Background(), 999, map[string]interface{}{"status": model.SyncStatusFailed})
	assert.Error(t, err)
}
