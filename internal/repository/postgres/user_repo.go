package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/user"
	"taskManager/internal/repository"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// CreateUser inserts u and fills its ID and CreatedAt.
// A duplicate username yields repository.ErrUsernameTaken.
func (s *Storage) CreateUser(ctx context.Context, u *user.User) error {
	start := time.Now()

	query := `INSERT INTO users (username, password, salt)
			VALUES ($1, $2, $3)
			RETURNING id, created_at`

	err := s.pool.QueryRow(ctx, query, u.Username, u.PasswordHash, u.Salt).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrUsernameTaken
		}
		logger.Error("Repository: failed to insert user", err, zap.String("username", u.Username))
		return fmt.Errorf("insert user: %w", err)
	}

	warnIfSlow("create_user", start, 50*time.Millisecond)
	return nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*user.User, error) {
	start := time.Now()

	query := `SELECT id, username, password, salt, created_at
			FROM users
			WHERE username = $1`

	u := &user.User{}
	err := s.pool.QueryRow(ctx, query, username).Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.Salt,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		logger.Error("Repository: failed to get user", err, zap.String("username", username))
		return nil, fmt.Errorf("get user: %w", err)
	}

	warnIfSlow("get_user", start, 50*time.Millisecond)
	return u, nil
}
