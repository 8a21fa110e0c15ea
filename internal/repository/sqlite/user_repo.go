package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/user"
	"taskManager/internal/repository"

	"go.uber.org/zap"
)

type userRow struct {
	ID        int64  `db:"id"`
	Username  string `db:"username"`
	Password  string `db:"password"`
	Salt      string `db:"salt"`
	CreatedAt int64  `db:"created_at"`
}

func (s *Storage) CreateUser(ctx context.Context, u *user.User) error {
	row := userRow{
		Username:  u.Username,
		Password:  u.PasswordHash,
		Salt:      u.Salt,
		CreatedAt: toMillis(time.Now()),
	}

	res, err := s.db.NamedExecContext(ctx,
		`INSERT INTO users (username, password, salt, created_at)
		VALUES (:username, :password, :salt, :created_at)`, row)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrUsernameTaken
		}
		logger.Error("Repository: failed to insert user", err, zap.String("username", u.Username))
		return fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert user id: %w", err)
	}
	u.ID = id
	u.CreatedAt = fromMillis(row.CreatedAt)
	return nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*user.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row,
		`SELECT id, username, password, salt, created_at FROM users WHERE username = ?`, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		logger.Error("Repository: failed to get user", err, zap.String("username", username))
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user.User{
		ID:           row.ID,
		Username:     row.Username,
		PasswordHash: row.Password,
		Salt:         row.Salt,
		CreatedAt:    fromMillis(row.CreatedAt),
	}, nil
}
