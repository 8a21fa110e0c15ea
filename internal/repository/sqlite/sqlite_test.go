package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	"taskManager/internal/repository"
	"taskManager/internal/repository/repotest"
	"taskManager/internal/repository/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func openMemory(t *testing.T) *sqlite.Storage {
	t.Helper()
	storage, err := sqlite.Open(context.Background(), sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(storage.Close)
	return storage
}

func TestStorage_Contract(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repotest.Store {
		return openMemory(t)
	})
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := sqlite.Open(context.Background(), "  ")
	assert.Error(t, err)
}

func TestOpen_FilePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tasks.db")

	storage, err := sqlite.Open(ctx, path)
	require.NoError(t, err)

	owner := &user.User{Username: "alice", PasswordHash: "h", Salt: "s"}
	require.NoError(t, storage.CreateUser(ctx, owner))
	created := &task.Task{Title: "Buy milk", Description: "2 liters", Status: task.StatusOpen, UserID: owner.ID}
	require.NoError(t, storage.CreateTask(ctx, created))
	storage.Close()

	// migrations must be a no-op the second time
	reopened, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetTask(ctx, created.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", got.Title)
	assert.Equal(t, created.CreatedAt, got.CreatedAt)
}

func TestStorage_ForeignKeyEnforced(t *testing.T) {
	storage := openMemory(t)

	err := storage.CreateTask(context.Background(), &task.Task{
		Title: "orphan", Description: "no owner", Status: task.StatusOpen, UserID: 4242,
	})
	assert.Error(t, err)
}

func TestStorage_StatusCheckEnforced(t *testing.T) {
	ctx := context.Background()
	storage := openMemory(t)

	owner := &user.User{Username: "alice", PasswordHash: "h", Salt: "s"}
	require.NoError(t, storage.CreateUser(ctx, owner))

	err := storage.CreateTask(ctx, &task.Task{
		Title: "bad", Description: "status", Status: task.Status("ARCHIVED"), UserID: owner.ID,
	})
	assert.Error(t, err)
}

func TestStorage_LogsReadFailures(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	prev := logger.Logger
	logger.Logger = zap.New(core)
	t.Cleanup(func() { logger.Logger = prev })

	storage := openMemory(t)
	storage.Close()

	_, err := storage.GetTask(context.Background(), 1, 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrNotFound)

	_, err = storage.GetUserByUsername(context.Background(), "alice")
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrNotFound)

	assert.Equal(t, 1, logs.FilterMessage("Repository: failed to get task").Len())
	assert.Equal(t, 1, logs.FilterMessage("Repository: failed to get user").Len())
}
