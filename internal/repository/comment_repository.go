package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xrpfuzzy/fuzzy-community-hub/internal/domain"
)

type CommentRepository struct {
	conn *pgxpool.Pool
}

func NewCommentRepository(conn *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{conn: conn}
}

// CreateComment returns ErrPostNotFound when postID does not exist.
func (r *CommentRepository) CreateComment(ctx context.Context, postID int64, userID, username, content string) (int64, error) {
	if postID <= 0 || userID == "" || username == "" || strings.TrimSpace(content) == "" {
		return 0, ErrInvalidInput
	}

	var commentID int64
	err := r.conn.QueryRow(ctx,
		`INSERT INTO comments (post_id, user_id, username, content)
		 VALUES ($1, $2, $3, $4) RETURNING comment_id`,
		postID, userID, username, content,
	).Scan(&commentID)
	if err != nil {
		return 0, translateError(err)
	}

	return commentID, nil
}

// ListComments returns the comments of a post, oldest first.
func (r *CommentRepository) ListComments(ctx context.Context, postID int64) ([]domain.Comment, error) {
	rows, err := r.conn.Query(ctx,
		`SELECT comment_id, post_id, user_id, username, content, created_at
		 FROM comments
		 WHERE post_id = $1
		 ORDER BY created_at ASC, comment_id ASC`,
		postID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]domain.Comment, 0)
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.CommentID, &c.PostID, &c.UserID, &c.Username, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return comments, nil
}
