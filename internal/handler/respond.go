package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/xrpfuzzy/fuzzy-community-hub/internal/auth"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/domain"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/ledger"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/logger"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/nft"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/repository"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Client errors (4xx)
	ErrCodeBadRequest       ErrorCode = "bad_request"
	ErrCodeValidationFailed ErrorCode = "validation_failed"
	ErrCodeNotFound         ErrorCode = "not_found"
	ErrCodeConflict         ErrorCode = "conflict"
	ErrCodeUnauthorized     ErrorCode = "unauthorized"

	// Server errors (5xx)
	ErrCodeInternalError ErrorCode = "internal_error"
	ErrCodeUpstreamError ErrorCode = "upstream_error"
)

const msgMissingFields = "Missing required fields"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to encode response", zap.Error(err))
	}
}

func respondWithError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, domain.ErrorResponse{Error: message, Code: string(code)})
}

func respondBadRequest(w http.ResponseWriter, message string) {
	respondWithError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

func respondValidationError(w http.ResponseWriter, message string) {
	respondWithError(w, http.StatusBadRequest, ErrCodeValidationFailed, message)
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	respondWithError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// respondInternalError logs err and hides it from the client
func respondInternalError(w http.ResponseWriter, r *http.Request, err error, message string) {
	logger.ErrorCtx(r.Context(), err,
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path))
	respondWithError(w, http.StatusInternalServerError, ErrCodeInternalError, message)
}

// respondStoreError maps a storage or upstream error onto its status.
// Anything unrecognized is a 500 with fallback as the message.
func respondStoreError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrInvalidInput):
		respondValidationError(w, msgMissingFields)
	case errors.Is(err, repository.ErrUnknownSortOrder):
		respondBadRequest(w, "sort must be one of posts, comments, likes")
	case errors.Is(err, repository.ErrDuplicateLike):
		respondWithError(w, http.StatusConflict, ErrCodeConflict, "Already liked")
	case errors.Is(err, repository.ErrPostNotFound):
		respondWithError(w, http.StatusNotFound, ErrCodeNotFound, "Post not found")
	case errors.Is(err, repository.ErrUserNotFound):
		respondWithError(w, http.StatusNotFound, ErrCodeNotFound, "User not found")
	case errors.Is(err, ledger.ErrAccountNotFound):
		respondWithError(w, http.StatusNotFound, ErrCodeNotFound, "Account not found")
	case errors.Is(err, ledger.ErrUpstreamUnavailable):
		logger.WarnCtx(r.Context(), "upstream unavailable", zap.String("path", r.URL.Path), zap.Error(err))
		respondWithError(w, http.StatusBadGateway, ErrCodeUpstreamError, "Ledger is unavailable")
	case errors.Is(err, nft.ErrUnknownNetwork):
		respondBadRequest(w, "network must be mainnet or testnet")
	case errors.Is(err, nft.ErrNFTNotFound):
		respondWithError(w, http.StatusNotFound, ErrCodeNotFound, "NFT not found")
	case errors.Is(err, nft.ErrIndexUnavailable):
		respondWithError(w, http.StatusBadGateway, ErrCodeUpstreamError, "NFT index is unavailable")
	default:
		respondInternalError(w, r, err, fallback)
	}
}

// AuthError is the auth middleware's failure response.
func AuthError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, auth.ErrTokenMissing) {
		respondUnauthorized(w, "Authorization token required")
		return
	}
	respondUnauthorized(w, "Invalid or expired token")
}

// authorize rejects a body userId that differs from the token's. Without
// a token in context (auth disabled) every userId is accepted.
func authorize(w http.ResponseWriter, r *http.Request, userID string) bool {
	tokenUser, ok := auth.UserIDFromContext(r.Context())
	if !ok || tokenUser == userID {
		return true
	}
	respondUnauthorized(w, "userId does not match token")
	return false
}

// maxBodyBytes matches the 100kb JSON limit the web client was built against.
const maxBodyBytes = 100 << 10

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "request body too large")
			return false
		}
		respondBadRequest(w, "invalid request body")
		return false
	}
	return true
}
