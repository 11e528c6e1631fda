package repository

import "errors"

var (
	ErrInvalidInput      = errors.New("missing required fields")
	ErrUserNotFound      = errors.New("user not found")
	ErrPostNotFound      = errors.New("post not found")
	ErrDuplicateUsername = errors.New("username is already used")
	ErrDuplicateLike     = errors.New("already liked")
	ErrUsernameExhausted = errors.New("could not allocate a username")
	ErrUnknownSortOrder  = errors.New("unknown leaderboard sort order")
)
