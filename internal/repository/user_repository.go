package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/xrpfuzzy/fuzzy-community-hub/internal/domain"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/logger"
)

// errWalletRace means another request created the same wallet between our
// lookup and insert; the next attempt will find it.
var errWalletRace = errors.New("user created concurrently")

type UserRepository struct {
	conn      *pgxpool.Pool
	allocator *UsernameAllocator
}

func NewUserRepository(conn *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		conn:      conn,
		allocator: NewUsernameAllocator(conn),
	}
}

// CreateUserIfAbsent returns the user for walletAddress, creating it with
// the next fuzzy<N> username on first contact. Safe to call repeatedly and
// concurrently.
func (r *UserRepository) CreateUserIfAbsent(ctx context.Context, walletAddress string) (*domain.User, error) {
	if strings.TrimSpace(walletAddress) == "" {
		return nil, ErrInvalidInput
	}

	var user *domain.User
	operation := func() error {
		existing, err := r.GetUserByID(ctx, walletAddress)
		if err == nil {
			user = existing
			return nil
		}
		if !errors.Is(err, ErrUserNotFound) {
			return backoff.Permanent(err)
		}

		username, err := r.allocator.Next(ctx)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("allocate username: %w", err))
		}

		created, err := r.insertUser(ctx, walletAddress, username)
		switch {
		case errors.Is(err, ErrDuplicateUsername):
			logger.DebugCtx(ctx, "username taken concurrently, retrying",
				zap.String("username", username),
				zap.String("userId", walletAddress))
			return err
		case errors.Is(err, errWalletRace):
			return err
		case err != nil:
			return backoff.Permanent(err)
		}

		user = created
		return nil
	}

	err := backoff.Retry(operation, backoff.WithContext(allocationBackOff(), ctx))
	if errors.Is(err, ErrDuplicateUsername) {
		return nil, fmt.Errorf("%w: %v", ErrUsernameExhausted, err)
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// allocationBackOff is bounded by elapsed time only. Each round of a burst
// has one winner, so N racing first sign-ins settle within N rounds.
func allocationBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 5 * time.Millisecond
	b.MaxInterval = 50 * time.Millisecond
	b.MaxElapsedTime = 10 * time.Second
	return b
}

// insertUser returns errWalletRace when the wallet already has a row.
func (r *UserRepository) insertUser(ctx context.Context, userID, username string) (*domain.User, error) {
	var user domain.User
	err := r.conn.QueryRow(ctx,
		`INSERT INTO users (user_id, username) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO NOTHING
		 RETURNING user_id, username, created_at`,
		userID, username,
	).Scan(&user.UserID, &user.Username, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errWalletRace
	} else if err != nil {
		return nil, translateError(err)
	}

	return &user, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	var user domain.User
	err := r.conn.QueryRow(ctx,
		"SELECT user_id, username, created_at FROM users WHERE user_id = $1",
		userID,
	).Scan(&user.UserID, &user.Username, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	} else if err != nil {
		return nil, err
	}

	return &user, nil
}

// CountUsers counts every known wallet, seeded or real.
func (r *UserRepository) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := r.conn.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}
