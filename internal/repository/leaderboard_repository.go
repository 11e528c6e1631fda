package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xrpfuzzy/fuzzy-community-hub/internal/domain"
)

const (
	SortByPosts    = "posts"
	SortByComments = "comments"
	SortByLikes    = "likes"

	DefaultLeaderboardLimit = 50
	MaxLeaderboardLimit     = 500
)

// leaderboardOrder whitelists the ORDER BY column per sort key.
var leaderboardOrder = map[string]string{
	SortByPosts:    "post_count",
	SortByComments: "comment_count",
	SortByLikes:    "likes_received",
}

type LeaderboardRepository struct {
	conn *pgxpool.Pool
}

func NewLeaderboardRepository(conn *pgxpool.Pool) *LeaderboardRepository {
	return &LeaderboardRepository{conn: conn}
}

// GetLeaderboard ranks users by activity. Ties go to the earlier member.
func (r *LeaderboardRepository) GetLeaderboard(ctx context.Context, sortBy string, limit int) ([]domain.LeaderboardEntry, error) {
	if sortBy == "" {
		sortBy = SortByPosts
	}
	column, ok := leaderboardOrder[sortBy]
	if !ok {
		return nil, ErrUnknownSortOrder
	}
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		limit = MaxLeaderboardLimit
	}

	query := fmt.Sprintf(`
		SELECT
			u.user_id,
			u.username,
			(SELECT COUNT(*) FROM posts p WHERE p.user_id = u.user_id) AS post_count,
			(SELECT COUNT(*) FROM comments c WHERE c.user_id = u.user_id) AS comment_count,
			(SELECT COUNT(*) FROM likes l
			   INNER JOIN posts p ON p.post_id = l.post_id
			   WHERE p.user_id = u.user_id) AS likes_received
		FROM users u
		ORDER BY %s DESC, u.created_at ASC, u.user_id ASC
		LIMIT $1
	`, column)

	rows, err := r.conn.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.LeaderboardEntry, 0)
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.PostCount, &e.CommentCount, &e.LikesReceived); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
