package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/migrations"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const uniqueViolation = "23505"

type Options struct {
	MaxConns    int32
	MinConns    int32
	MaxConnIdle time.Duration
}

func defaultOptions() Options {
	return Options{
		MaxConns:    10,
		MinConns:    2,
		MaxConnIdle: 5 * time.Minute,
	}
}

// Storage keeps both users and tasks in one PostgreSQL pool.
type Storage struct {
	pool       *pgxpool.Pool
	connString string
}

func New(ctx context.Context, connString string, opts ...Options) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: failed to parse pool config", err)
		return nil, fmt.Errorf("parse config: %w", err)
	}

	o := defaultOptions()
	if len(opts) > 0 {
		o = mergeOptions(o, opts[0])
	}
	config.MaxConns = o.MaxConns
	config.MinConns = o.MinConns
	config.MaxConnIdleTime = o.MaxConnIdle

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: failed to create pool", err)
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("Repository: ping failed", err)
		return nil, fmt.Errorf("ping: %w", err)
	}

	logger.Info("Repository: connected to PostgreSQL",
		zap.Int32("max_conns", o.MaxConns),
		zap.Int32("min_conns", o.MinConns))
	return &Storage{pool: pool, connString: connString}, nil
}

func mergeOptions(base, o Options) Options {
	if o.MaxConns > 0 {
		base.MaxConns = o.MaxConns
	}
	if o.MinConns > 0 {
		base.MinConns = o.MinConns
	}
	if o.MaxConnIdle > 0 {
		base.MaxConnIdle = o.MaxConnIdle
	}
	return base
}

func (s *Storage) Close() {
	if s.pool == nil {
		return
	}
	s.pool.Close()
	logger.Info("Repository: PostgreSQL connections closed")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: ping failed", err)
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Migrate applies the embedded schema.
func (s *Storage) Migrate(ctx context.Context) error {
	logger.Info("Repository: applying migrations")
	if err := ctx.Err(); err != nil {
		return err
	}
	return migrations.UpPostgres(s.connString)
}

// Down rolls the schema back. Used by integration tests.
func (s *Storage) Down(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return migrations.DownPostgres(s.connString)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func warnIfSlow(operation string, start time.Time, threshold time.Duration) {
	if elapsed := time.Since(start); elapsed > threshold {
		logger.Warn("Repository: slow query",
			zap.String("operation", operation),
			zap.Duration("ms", elapsed))
	}
}
