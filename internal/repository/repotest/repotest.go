// Package repotest holds the behaviour every task/user store must share.
// Each backend runs it from its own tests.
package repotest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	"taskManager/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Store interface {
	HealthCheck(ctx context.Context) error
	ListTasks(ctx context.Context, ownerID int64, filter task.Filter) ([]*task.Task, error)
	GetTask(ctx context.Context, id, ownerID int64) (*task.Task, error)
	CreateTask(ctx context.Context, t *task.Task) error
	UpdateTaskStatus(ctx context.Context, t *task.Task) error
	DeleteTask(ctx context.Context, id, ownerID int64) (int64, error)
	CreateUser(ctx context.Context, u *user.User) error
	GetUserByUsername(ctx context.Context, username string) (*user.User, error)
}

// Run executes the shared cases. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) Store) {
	cases := []struct {
		name string
		fn   func(t *testing.T, s Store)
	}{
		{"HealthCheck", testHealthCheck},
		{"CreateUser", testCreateUser},
		{"DuplicateUsername", testDuplicateUsername},
		{"UnknownUser", testUnknownUser},
		{"CreateAndGetTask", testCreateAndGetTask},
		{"ListOrderedByID", testListOrderedByID},
		{"ListFilters", testListFilters},
		{"OwnerIsolation", testOwnerIsolation},
		{"UpdateChangesOnlyStatus", testUpdateChangesOnlyStatus},
		{"UpdateForeignTask", testUpdateForeignTask},
		{"DeleteTwice", testDeleteTwice},
		{"ConcurrentCreate", testConcurrentCreate},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.fn(t, newStore(t))
		})
	}
}

func mustUser(t *testing.T, s Store, username string) *user.User {
	t.Helper()
	u := &user.User{Username: username, PasswordHash: "digest-" + username, Salt: "salt-" + username}
	require.NoError(t, s.CreateUser(context.Background(), u))
	require.NotZero(t, u.ID)
	return u
}

func mustTask(t *testing.T, s Store, owner *user.User, title, description string, status task.Status) *task.Task {
	t.Helper()
	tk := &task.Task{Title: title, Description: description, Status: status, UserID: owner.ID}
	require.NoError(t, s.CreateTask(context.Background(), tk))
	require.NotZero(t, tk.ID)
	return tk
}

func ids(tasks []*task.Task) []int64 {
	res := make([]int64, len(tasks))
	for i, t := range tasks {
		res[i] = t.ID
	}
	return res
}

func testHealthCheck(t *testing.T, s Store) {
	assert.NoError(t, s.HealthCheck(context.Background()))
}

func testCreateUser(t *testing.T, s Store) {
	ctx := context.Background()
	u := mustUser(t, s, "alice")
	assert.False(t, u.CreatedAt.IsZero())

	found, err := s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
	assert.Equal(t, "digest-alice", found.PasswordHash)
	assert.Equal(t, "salt-alice", found.Salt)
}

func testDuplicateUsername(t *testing.T, s Store) {
	mustUser(t, s, "alice")

	err := s.CreateUser(context.Background(), &user.User{Username: "alice", PasswordHash: "x", Salt: "y"})
	assert.ErrorIs(t, err, repository.ErrUsernameTaken)
}

func testUnknownUser(t *testing.T, s Store) {
	_, err := s.GetUserByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func testCreateAndGetTask(t *testing.T, s Store) {
	ctx := context.Background()
	alice := mustUser(t, s, "alice")
	created := mustTask(t, s, alice, "Buy milk", "2 liters", task.StatusOpen)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := s.GetTask(ctx, created.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", got.Title)
	assert.Equal(t, "2 liters", got.Description)
	assert.Equal(t, task.StatusOpen, got.Status)
	assert.Equal(t, alice.ID, got.UserID)
	assert.Nil(t, got.UpdatedAt)

	_, err = s.GetTask(ctx, created.ID+1000, alice.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func testListOrderedByID(t *testing.T, s Store) {
	alice := mustUser(t, s, "alice")
	first := mustTask(t, s, alice, "a", "first", task.StatusDone)
	second := mustTask(t, s, alice, "b", "second", task.StatusOpen)
	third := mustTask(t, s, alice, "c", "third", task.StatusInProgress)

	tasks, err := s.ListTasks(context.Background(), alice.ID, task.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []int64{first.ID, second.ID, third.ID}, ids(tasks))
}

func testListFilters(t *testing.T, s Store) {
	ctx := context.Background()
	alice := mustUser(t, s, "alice")
	milk := mustTask(t, s, alice, "Buy milk", "2 liters", task.StatusOpen)
	bread := mustTask(t, s, alice, "Bake bread", "whole grain, no milk", task.StatusDone)
	mustTask(t, s, alice, "Call mom", "Sunday", task.StatusDone)

	search := "milk"
	tasks, err := s.ListTasks(ctx, alice.ID, task.Filter{Search: &search})
	require.NoError(t, err)
	assert.Equal(t, []int64{milk.ID, bread.ID}, ids(tasks), "search matches title or description")

	done := task.StatusDone
	tasks, err = s.ListTasks(ctx, alice.ID, task.Filter{Search: &search, Status: &done})
	require.NoError(t, err)
	assert.Equal(t, []int64{bread.ID}, ids(tasks))

	upper := "MILK"
	tasks, err = s.ListTasks(ctx, alice.ID, task.Filter{Search: &upper})
	require.NoError(t, err)
	assert.Empty(t, tasks, "search is case sensitive")

	wildcard := "%"
	tasks, err = s.ListTasks(ctx, alice.ID, task.Filter{Search: &wildcard})
	require.NoError(t, err)
	assert.Empty(t, tasks, "search is literal")

	inProgress := task.StatusInProgress
	tasks, err = s.ListTasks(ctx, alice.ID, task.Filter{Status: &inProgress})
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func testOwnerIsolation(t *testing.T, s Store) {
	ctx := context.Background()
	alice := mustUser(t, s, "alice")
	bob := mustUser(t, s, "bobby")
	secret := mustTask(t, s, alice, "secret", "alice only", task.StatusOpen)

	_, err := s.GetTask(ctx, secret.ID, bob.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	tasks, err := s.ListTasks(ctx, bob.ID, task.Filter{})
	require.NoError(t, err)
	assert.Empty(t, tasks)

	affected, err := s.DeleteTask(ctx, secret.ID, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, affected)

	_, err = s.GetTask(ctx, secret.ID, alice.ID)
	assert.NoError(t, err, "foreign delete must not remove the task")
}

func testUpdateChangesOnlyStatus(t *testing.T, s Store) {
	ctx := context.Background()
	alice := mustUser(t, s, "alice")
	created := mustTask(t, s, alice, "Buy milk", "2 liters", task.StatusOpen)

	update := &task.Task{ID: created.ID, UserID: alice.ID, Title: "ignored", Description: "ignored"}
	update.Apply(task.WithStatus(task.StatusDone))
	require.NoError(t, s.UpdateTaskStatus(ctx, update))
	require.NotNil(t, update.UpdatedAt)

	got, err := s.GetTask(ctx, created.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusDone, got.Status)
	assert.Equal(t, "Buy milk", got.Title)
	assert.Equal(t, "2 liters", got.Description)
	assert.NotNil(t, got.UpdatedAt)
}

func testUpdateForeignTask(t *testing.T, s Store) {
	ctx := context.Background()
	alice := mustUser(t, s, "alice")
	bob := mustUser(t, s, "bobby")
	created := mustTask(t, s, alice, "Buy milk", "2 liters", task.StatusOpen)

	err := s.UpdateTaskStatus(ctx, &task.Task{ID: created.ID, UserID: bob.ID, Status: task.StatusDone})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	got, err := s.GetTask(ctx, created.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusOpen, got.Status)
}

func testDeleteTwice(t *testing.T, s Store) {
	ctx := context.Background()
	alice := mustUser(t, s, "alice")
	created := mustTask(t, s, alice, "Buy milk", "2 liters", task.StatusOpen)

	affected, err := s.DeleteTask(ctx, created.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = s.DeleteTask(ctx, created.ID, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, affected)

	_, err = s.GetTask(ctx, created.ID, alice.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func testConcurrentCreate(t *testing.T, s Store) {
	ctx := context.Background()
	alice := mustUser(t, s, "alice")

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.CreateTask(ctx, &task.Task{
				Title:       fmt.Sprintf("task %d", i),
				Description: "concurrent",
				Status:      task.StatusOpen,
				UserID:      alice.ID,
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	tasks, err := s.ListTasks(ctx, alice.ID, task.Filter{})
	require.NoError(t, err)
	require.Len(t, tasks, n)
	for i := 1; i < len(tasks); i++ {
		assert.Less(t, tasks[i-1].ID, tasks[i].ID)
	}
}
