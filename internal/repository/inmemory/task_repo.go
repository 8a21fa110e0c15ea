package inmemory

import (
	"context"
	"sync"
	"time"

	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	"taskManager/internal/repository"
)

// Storage keeps users and tasks in maps. Tasks are also kept in
// insertion order so listings come back sorted by id.
type Storage struct {
	mtx *sync.RWMutex

	tasks      map[int64]*task.Task
	ids        []int64
	nextTaskID int64

	users      map[string]*user.User
	nextUserID int64
}

func NewStorage() *Storage {
	return &Storage{
		mtx:   &sync.RWMutex{},
		tasks: make(map[int64]*task.Task),
		ids:   []int64{},
		users: make(map[string]*user.User),
	}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	return ctx.Err()
}

func (s *Storage) Close() {}

func copyTask(t *task.Task) *task.Task {
	c := *t
	if t.UpdatedAt != nil {
		at := *t.UpdatedAt
		c.UpdatedAt = &at
	}
	return &c
}

func (s *Storage) CreateTask(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.nextTaskID++
	taskToCreate.ID = s.nextTaskID
	taskToCreate.CreatedAt = time.Now().UTC()
	taskToCreate.UpdatedAt = nil

	s.tasks[taskToCreate.ID] = copyTask(taskToCreate)
	s.ids = append(s.ids, taskToCreate.ID)
	return nil
}

func (s *Storage) GetTask(ctx context.Context, id, ownerID int64) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	t, ok := s.tasks[id]
	if !ok || t.UserID != ownerID {
		return nil, repository.ErrNotFound
	}
	return copyTask(t), nil
}

func (s *Storage) ListTasks(ctx context.Context, ownerID int64, filter task.Filter) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Task{}
	for _, id := range s.ids {
		t := s.tasks[id]
		if t.UserID != ownerID || !filter.Matches(t) {
			continue
		}
		res = append(res, copyTask(t))
	}
	return res, nil
}

func (s *Storage) UpdateTaskStatus(ctx context.Context, taskToUpdate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored, ok := s.tasks[taskToUpdate.ID]
	if !ok || stored.UserID != taskToUpdate.UserID {
		return repository.ErrNotFound
	}

	now := time.Now().UTC()
	stored.Apply(task.WithStatus(taskToUpdate.Status), task.WithUpdatedAt(now))
	taskToUpdate.Apply(task.WithUpdatedAt(now))
	return nil
}

func (s *Storage) DeleteTask(ctx context.Context, id, ownerID int64) (int64, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	t, ok := s.tasks[id]
	if !ok || t.UserID != ownerID {
		return 0, nil
	}

	delete(s.tasks, id)
	for ind, val := range s.ids {
		if val == id {
			s.ids = append(s.ids[:ind], s.ids[ind+1:]...)
			break
		}
	}
	return 1, nil
}
