package domain

import "time"

// ============================================
// Domain Models
// ============================================

// User is a wallet holder known to the community. UserID is the wallet
// address and never changes once the row exists.
type User struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// Post carries the author's username as it was when the post was written.
type Post struct {
	PostID    int64     `json:"postId"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type Comment struct {
	CommentID int64     `json:"commentId"`
	PostID    int64     `json:"postId"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// LikeEntry is the listed form of a like: only who liked.
type LikeEntry struct {
	UserID string `json:"userId"`
}

type LeaderboardEntry struct {
	UserID        string `json:"userId"`
	Username      string `json:"username"`
	PostCount     int64  `json:"postCount"`
	CommentCount  int64  `json:"commentCount"`
	LikesReceived int64  `json:"likesReceived"`
}

// ============================================
// Request/Response Models
// ============================================

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type CheckOrCreateRequest struct {
	WalletAddress string `json:"walletAddress"`
}

type CheckOrCreateResponse struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Token    string `json:"token,omitempty"`
}

type CreatePostRequest struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Content  string `json:"content"`
}

type CreatePostResponse struct {
	PostID int64 `json:"postId"`
}

type CreateCommentRequest struct {
	PostID   int64  `json:"postId"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Content  string `json:"content"`
}

type CreateCommentResponse struct {
	CommentID int64 `json:"commentId"`
}

type CreateLikeRequest struct {
	PostID int64  `json:"postId"`
	UserID string `json:"userId"`
}

type CreateLikeResponse struct {
	LikeID int64 `json:"likeId"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
