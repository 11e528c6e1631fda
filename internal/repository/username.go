package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UsernamePrefix starts every generated display name: fuzzy1, fuzzy2, ...
const UsernamePrefix = "fuzzy"

// ParseUsernameNumber returns N for a username of the form fuzzy<N>.
func ParseUsernameNumber(username string) (int64, bool) {
	digits, ok := strings.CutPrefix(username, UsernamePrefix)
	if !ok || digits == "" {
		return 0, false
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func FormatUsername(n int64) string {
	return UsernamePrefix + strconv.FormatInt(n, 10)
}

// NextUsername returns the name following the highest allocated number.
// A highest of 0 means nothing has been allocated yet.
func NextUsername(highest int64) string {
	if highest < 0 {
		highest = 0
	}
	return FormatUsername(highest + 1)
}

// UsernameAllocator picks the next unused fuzzy<N> name. It does not
// reserve the name: two callers may receive the same one, and the unique
// constraint on users.username decides who keeps it.
type UsernameAllocator struct {
	conn *pgxpool.Pool
}

func NewUsernameAllocator(conn *pgxpool.Pool) *UsernameAllocator {
	return &UsernameAllocator{conn: conn}
}

// Next compares numbers numerically, so fuzzy10 ranks above fuzzy9. The
// digit cap keeps the cast inside BIGINT.
func (a *UsernameAllocator) Next(ctx context.Context) (string, error) {
	var highest string
	err := a.conn.QueryRow(ctx,
		`SELECT username FROM users
		 WHERE username ~ '^fuzzy[0-9]{1,18}$'
		 ORDER BY CAST(SUBSTRING(username FROM 6) AS BIGINT) DESC
		 LIMIT 1`,
	).Scan(&highest)
	if errors.Is(err, pgx.ErrNoRows) {
		return NextUsername(0), nil
	} else if err != nil {
		return "", err
	}

	n, ok := ParseUsernameNumber(highest)
	if !ok {
		return NextUsername(0), nil
	}
	return NextUsername(n), nil
}
