package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xrpfuzzy/fuzzy-community-hub/internal/domain"
)

type PostRepository struct {
	conn *pgxpool.Pool
}

func NewPostRepository(conn *pgxpool.Pool) *PostRepository {
	return &PostRepository{conn: conn}
}

// CreatePost stores username as given; it is not checked against users.
func (r *PostRepository) CreatePost(ctx context.Context, userID, username, content string) (int64, error) {
	if userID == "" || username == "" || strings.TrimSpace(content) == "" {
		return 0, ErrInvalidInput
	}

	var postID int64
	err := r.conn.QueryRow(ctx,
		"INSERT INTO posts (user_id, username, content) VALUES ($1, $2, $3) RETURNING post_id",
		userID, username, content,
	).Scan(&postID)
	if err != nil {
		return 0, translateError(err)
	}

	return postID, nil
}

// ListPosts returns every post, newest first.
func (r *PostRepository) ListPosts(ctx context.Context) ([]domain.Post, error) {
	rows, err := r.conn.Query(ctx,
		`SELECT post_id, user_id, username, content, created_at
		 FROM posts
		 ORDER BY created_at DESC, post_id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]domain.Post, 0)
	for rows.Next() {
		var post domain.Post
		if err := rows.Scan(&post.PostID, &post.UserID, &post.Username, &post.Content, &post.CreatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}
