// Package repository owns every table of the community feed. Handlers
// reach storage only through the repositories in this package.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xrpfuzzy/fuzzy-community-hub/internal/config"
)

// Open connects a pool, verifies it and bootstraps the schema.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("database: parse config: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.ConnMaxIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("database: connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}

	if err := Bootstrap(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

// Bootstrap applies Schema.
func Bootstrap(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("database: bootstrap schema: %w", err)
	}
	return nil
}

var constraintErrors = map[string]error{
	"users_username_key":  ErrDuplicateUsername,
	"posts_user_fk":       ErrUserNotFound,
	"comments_post_fk":    ErrPostNotFound,
	"comments_user_fk":    ErrUserNotFound,
	"likes_post_user_key": ErrDuplicateLike,
	"likes_post_fk":       ErrPostNotFound,
	"likes_user_fk":       ErrUserNotFound,
}

// translateError maps unique and foreign key violations onto the
// package's sentinel errors. Other errors are returned unchanged.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation, pgerrcode.ForeignKeyViolation:
		if mapped, ok := constraintErrors[pgErr.ConstraintName]; ok {
			return mapped
		}
	case pgerrcode.CheckViolation:
		return ErrInvalidInput
	}
	return err
}
