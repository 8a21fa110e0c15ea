package inmemory

import (
	"context"
	"time"

	"taskManager/internal/models/user"
	"taskManager/internal/repository"
)

func (s *Storage) CreateUser(ctx context.Context, u *user.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, exists := s.users[u.Username]; exists {
		return repository.ErrUsernameTaken
	}

	s.nextUserID++
	u.ID = s.nextUserID
	u.CreatedAt = time.Now().UTC()

	stored := *u
	s.users[u.Username] = &stored
	return nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	u, ok := s.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	found := *u
	return &found, nil
}
