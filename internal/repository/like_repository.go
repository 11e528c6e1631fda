package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xrpfuzzy/fuzzy-community-hub/internal/domain"
)

type LikeRepository struct {
	conn *pgxpool.Pool
}

func NewLikeRepository(conn *pgxpool.Pool) *LikeRepository {
	return &LikeRepository{conn: conn}
}

// CreateLike relies on likes_post_user_key for de-duplication, so two
// concurrent likes by the same user cannot both succeed.
func (r *LikeRepository) CreateLike(ctx context.Context, postID int64, userID string) (int64, error) {
	if postID <= 0 || userID == "" {
		return 0, ErrInvalidInput
	}

	var likeID int64
	err := r.conn.QueryRow(ctx,
		"INSERT INTO likes (post_id, user_id) VALUES ($1, $2) RETURNING like_id",
		postID, userID,
	).Scan(&likeID)
	if err != nil {
		return 0, translateError(err)
	}

	return likeID, nil
}

func (r *LikeRepository) ListLikes(ctx context.Context, postID int64) ([]domain.LikeEntry, error) {
	rows, err := r.conn.Query(ctx,
		"SELECT user_id FROM likes WHERE post_id = $1 ORDER BY like_id",
		postID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	likes := make([]domain.LikeEntry, 0)
	for rows.Next() {
		var like domain.LikeEntry
		if err := rows.Scan(&like.UserID); err != nil {
			return nil, err
		}
		likes = append(likes, like)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return likes, nil
}
