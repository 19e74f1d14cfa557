package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/crateops/cargoship/internal/domain"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flock needs a real filesystem, so these tests run against a temp dir.
func newTestStateRepo(t *testing.T) StateRepository {
	t.Helper()
	return NewJSONStateRepository(afero.NewOsFs(), filepath.Join(t.TempDir(), "state"))
}

func TestJSONStateRepository_SaveLoad(t *testing.T) {
	t.Run("Should round-trip a run state", func(t *testing.T) {
		repo := newTestStateRepo(t)
		ctx := context.Background()
		state := domain.NewRunState("session-1")
		state.CrateName = "widget"
		state.Version = "v1.2.3"
		state.TagName = "v1.2.3"
		state.AddStep(domain.StepTypePublish)
		state.MarkStepStarted(domain.StepTypePublish)
		state.MarkStepCompleted(domain.StepTypePublish)
		state.Status = domain.RunStatusCompleted
		require.NoError(t, repo.Save(ctx, state))
		loaded, err := repo.Load(ctx, "session-1")
		require.NoError(t, err)
		assert.Equal(t, "widget", loaded.CrateName)
		assert.Equal(t, "v1.2.3", loaded.TagName)
		assert.Equal(t, domain.RunStatusCompleted, loaded.Status)
		require.Len(t, loaded.Steps, 1)
		assert.Equal(t, domain.StepStatusCompleted, loaded.Steps[0].Status)
	})
	t.Run("Should record step failure", func(t *testing.T) {
		repo := newTestStateRepo(t)
		ctx := context.Background()
		state := domain.NewRunState("session-2")
		state.AddStep(domain.StepTypeTag)
		state.MarkStepStarted(domain.StepTypeTag)
		state.MarkStepFailed(domain.StepTypeTag, errors.New("tag already exists"))
		require.NoError(t, repo.Save(ctx, state))
		loaded, err := repo.Load(ctx, "session-2")
		require.NoError(t, err)
		assert.Equal(t, domain.RunStatusFailed, loaded.Status)
		assert.Contains(t, loaded.Error, "tag already exists")
	})
	t.Run("Should fail loading unknown session", func(t *testing.T) {
		repo := newTestStateRepo(t)
		_, err := repo.Load(context.Background(), "missing")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "state not found")
	})
}

func TestJSONStateRepository_LoadLatest(t *testing.T) {
	t.Run("Should load the most recently saved state", func(t *testing.T) {
		repo := newTestStateRepo(t)
		ctx := context.Background()
		first := domain.NewRunState("session-a")
		require.NoError(t, repo.Save(ctx, first))
		second := domain.NewRunState("session-b")
		require.NoError(t, repo.Save(ctx, second))
		latest, err := repo.LoadLatest(ctx)
		require.NoError(t, err)
		assert.Equal(t, "session-b", latest.SessionID)
	})
	t.Run("Should fail when nothing was saved", func(t *testing.T) {
		repo := newTestStateRepo(t)
		_, err := repo.LoadLatest(context.Background())
		assert.Error(t, err)
	})
}

func TestJSONStateRepository_DeleteExists(t *testing.T) {
	t.Run("Should delete a saved state", func(t *testing.T) {
		repo := newTestStateRepo(t)
		ctx := context.Background()
		state := domain.NewRunState("session-d")
		require.NoError(t, repo.Save(ctx, state))
		exists, err := repo.Exists(ctx, "session-d")
		require.NoError(t, err)
		assert.True(t, exists)
		require.NoError(t, repo.Delete(ctx, "session-d"))
		exists, err = repo.Exists(ctx, "session-d")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestJSONStateRepository_AcquireRunLock(t *testing.T) {
	t.Run("Should hold and release the run lock", func(t *testing.T) {
		repo := newTestStateRepo(t)
		release, err := repo.AcquireRunLock(context.Background())
		require.NoError(t, err)
		require.NotNil(t, release)
		release()
		// Lock is reacquirable after release
		release2, err := repo.AcquireRunLock(context.Background())
		require.NoError(t, err)
		release2()
	})
}
