package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xrpfuzzy/fuzzy-community-hub/internal/auth"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/domain"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/logger"
)

// ============================================
// Users
// ============================================

// CheckOrCreateUser resolves a wallet to its community user, allocating a
// username on first contact.
func CheckOrCreateUser(users UserStore, issuer *auth.Issuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req domain.CheckOrCreateRequest
		if !decodeBody(w, r, &req) {
			return
		}

		wallet := strings.TrimSpace(req.WalletAddress)
		if wallet == "" {
			respondValidationError(w, "walletAddress required")
			return
		}

		user, err := users.CreateUserIfAbsent(ctx, wallet)
		if err != nil {
			respondStoreError(w, r, err, "Failed to assign username")
			return
		}

		token, err := issuer.GenerateToken(user.UserID)
		if err != nil {
			respondInternalError(w, r, err, "Failed to issue token")
			return
		}

		logger.DebugCtx(ctx, "user resolved",
			zap.String("userId", user.UserID),
			zap.String("username", user.Username))

		writeJSON(w, http.StatusOK, domain.CheckOrCreateResponse{
			UserID:   user.UserID,
			Username: user.Username,
			Token:    token,
		})
	}
}

// ============================================
// Posts
// ============================================

func CreatePost(posts PostStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.CreatePostRequest
		if !decodeBody(w, r, &req) {
			return
		}

		if req.UserID == "" || req.Username == "" || strings.TrimSpace(req.Content) == "" {
			respondValidationError(w, msgMissingFields)
			return
		}
		if !authorize(w, r, req.UserID) {
			return
		}

		postID, err := posts.CreatePost(r.Context(), req.UserID, req.Username, req.Content)
		if err != nil {
			respondStoreError(w, r, err, "Failed to create post")
			return
		}

		writeJSON(w, http.StatusOK, domain.CreatePostResponse{PostID: postID})
	}
}

func ListPosts(posts PostStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := posts.ListPosts(r.Context())
		if err != nil {
			respondStoreError(w, r, err, "Failed to fetch posts")
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// ============================================
// Comments
// ============================================

func CreateComment(comments CommentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.CreateCommentRequest
		if !decodeBody(w, r, &req) {
			return
		}

		if req.PostID <= 0 || req.UserID == "" || req.Username == "" || strings.TrimSpace(req.Content) == "" {
			respondValidationError(w, msgMissingFields)
			return
		}
		if !authorize(w, r, req.UserID) {
			return
		}

		commentID, err := comments.CreateComment(r.Context(), req.PostID, req.UserID, req.Username, req.Content)
		if err != nil {
			respondStoreError(w, r, err, "Failed to add comment")
			return
		}

		writeJSON(w, http.StatusOK, domain.CreateCommentResponse{CommentID: commentID})
	}
}

func ListComments(comments CommentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, ok := postIDParam(w, r)
		if !ok {
			return
		}

		list, err := comments.ListComments(r.Context(), postID)
		if err != nil {
			respondStoreError(w, r, err, "Failed to fetch comments")
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// ============================================
// Likes
// ============================================

func CreateLike(likes LikeStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.CreateLikeRequest
		if !decodeBody(w, r, &req) {
			return
		}

		if req.PostID <= 0 || req.UserID == "" {
			respondValidationError(w, msgMissingFields)
			return
		}
		if !authorize(w, r, req.UserID) {
			return
		}

		likeID, err := likes.CreateLike(r.Context(), req.PostID, req.UserID)
		if err != nil {
			respondStoreError(w, r, err, "Failed to add like")
			return
		}

		writeJSON(w, http.StatusOK, domain.CreateLikeResponse{LikeID: likeID})
	}
}

func ListLikes(likes LikeStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, ok := postIDParam(w, r)
		if !ok {
			return
		}

		list, err := likes.ListLikes(r.Context(), postID)
		if err != nil {
			respondStoreError(w, r, err, "Failed to fetch likes")
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func postIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	postID, err := strconv.ParseInt(chi.URLParam(r, "postId"), 10, 64)
	if err != nil || postID <= 0 {
		respondBadRequest(w, "invalid postId")
		return 0, false
	}
	return postID, true
}
