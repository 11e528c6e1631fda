// Package feed keeps a merged, render-ready view of the community feed and
// routes user mutations through the API, refetching after each success.
package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/alitto/pond/v2"
	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/xrpfuzzy/fuzzy-community-hub/internal/client"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/domain"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/logger"
)

var (
	ErrNotSignedIn  = errors.New("sign in before posting, commenting or liking")
	ErrEmptyContent = errors.New("content must not be empty")
)

// EnrichedPost is a post with everything needed to render it.
type EnrichedPost struct {
	domain.Post
	Comments      []domain.Comment   `json:"comments"`
	Likes         []domain.LikeEntry `json:"likes"`
	LikedByViewer bool               `json:"likedByViewer"`
}

// Session is the signed-in viewer.
type Session struct {
	UserID   string
	Username string
	Token    string
}

type Feed struct {
	api  *client.Client
	pool pond.Pool

	mu         sync.Mutex
	session    *Session
	authed     *client.Client
	machine    *fsm.FSM
	posts      []EnrichedPost
	err        error
	generation uint64
}

// New creates a feed whose refreshes run at most concurrency requests at
// once. Close releases the workers.
func New(api *client.Client, concurrency int) *Feed {
	if concurrency <= 0 {
		concurrency = 8
	}
	return &Feed{
		api:     api,
		pool:    pond.NewPool(concurrency),
		machine: newStateMachine(),
	}
}

func (f *Feed) Close() {
	f.pool.StopAndWait()
}

// SignIn resolves walletAddress to its community user and remembers it as
// the viewer for later mutations.
func (f *Feed) SignIn(ctx context.Context, walletAddress string) (*Session, error) {
	if strings.TrimSpace(walletAddress) == "" {
		return nil, errors.New("wallet address required")
	}

	resp, err := f.api.CheckOrCreateUser(ctx, walletAddress)
	if err != nil {
		return nil, err
	}

	s := &Session{UserID: resp.UserID, Username: resp.Username, Token: resp.Token}

	f.mu.Lock()
	f.session = s
	f.authed = f.api.WithToken(resp.Token)
	f.mu.Unlock()

	logger.Debug("signed in", zap.String("userId", s.UserID), zap.String("username", s.Username))
	return s, nil
}

// Session returns the signed-in viewer, or nil.
func (f *Feed) Session() *Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session == nil {
		return nil
	}
	s := *f.session
	return &s
}

func (f *Feed) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return State(f.machine.Current())
}

// Err is the failure of the last refresh or mutation, if any.
func (f *Feed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Posts returns the last successfully loaded view, newest post first.
func (f *Feed) Posts() []EnrichedPost {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]EnrichedPost, len(f.posts))
	copy(out, f.posts)
	return out
}

// Refresh refetches posts and then every post's comments and likes in
// parallel. Any failed call fails the whole refresh and the previous view
// stays in place. A refresh overtaken by a newer one is discarded.
func (f *Feed) Refresh(ctx context.Context) error {
	f.mu.Lock()
	f.generation++
	gen := f.generation
	if err := fire(f.machine, EventLoad); err != nil {
		f.mu.Unlock()
		return err
	}
	viewer := ""
	if f.session != nil {
		viewer = f.session.UserID
	}
	f.mu.Unlock()

	view, err := f.load(ctx, viewer)

	f.mu.Lock()
	defer f.mu.Unlock()

	if gen != f.generation {
		logger.Debug("discarding superseded refresh", zap.Uint64("generation", gen))
		return err
	}

	if err != nil {
		f.err = err
		if ferr := fire(f.machine, EventFail); ferr != nil {
			return errors.Join(err, ferr)
		}
		return err
	}

	if err := fire(f.machine, EventLoaded); err != nil {
		return err
	}
	f.posts = view
	f.err = nil
	return nil
}

func (f *Feed) load(ctx context.Context, viewer string) ([]EnrichedPost, error) {
	posts, err := f.api.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	comments := make([][]domain.Comment, len(posts))
	likes := make([][]domain.LikeEntry, len(posts))

	group := f.pool.NewGroup()
	for i, p := range posts {
		group.SubmitErr(func() error {
			list, err := f.api.ListComments(ctx, p.PostID)
			if err != nil {
				cancel()
				return fmt.Errorf("list comments for post %d: %w", p.PostID, err)
			}
			comments[i] = list
			return nil
		})
		group.SubmitErr(func() error {
			list, err := f.api.ListLikes(ctx, p.PostID)
			if err != nil {
				cancel()
				return fmt.Errorf("list likes for post %d: %w", p.PostID, err)
			}
			likes[i] = list
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	view := make([]EnrichedPost, len(posts))
	for i, p := range posts {
		view[i] = EnrichedPost{
			Post:          p,
			Comments:      nonNil(comments[i]),
			Likes:         nonNil(likes[i]),
			LikedByViewer: likedBy(likes[i], viewer),
		}
	}
	return view, nil
}

func likedBy(likes []domain.LikeEntry, viewer string) bool {
	if viewer == "" {
		return false
	}
	for _, l := range likes {
		if l.UserID == viewer {
			return true
		}
	}
	return false
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// mutate runs write for the signed-in viewer and refreshes on success.
// A failed write records the error and leaves the view alone.
func (f *Feed) mutate(ctx context.Context, write func(api *client.Client, s Session) error) error {
	f.mu.Lock()
	if f.session == nil {
		f.mu.Unlock()
		return ErrNotSignedIn
	}
	s := *f.session
	api := f.authed
	f.mu.Unlock()

	if err := write(api, s); err != nil {
		f.mu.Lock()
		f.err = err
		f.mu.Unlock()
		return err
	}

	return f.Refresh(ctx)
}

func (f *Feed) SubmitPost(ctx context.Context, content string) (int64, error) {
	if strings.TrimSpace(content) == "" {
		return 0, ErrEmptyContent
	}

	var postID int64
	err := f.mutate(ctx, func(api *client.Client, s Session) error {
		id, err := api.CreatePost(ctx, domain.CreatePostRequest{
			UserID:   s.UserID,
			Username: s.Username,
			Content:  content,
		})
		postID = id
		return err
	})
	return postID, err
}

func (f *Feed) SubmitComment(ctx context.Context, postID int64, content string) (int64, error) {
	if strings.TrimSpace(content) == "" {
		return 0, ErrEmptyContent
	}

	var commentID int64
	err := f.mutate(ctx, func(api *client.Client, s Session) error {
		id, err := api.CreateComment(ctx, domain.CreateCommentRequest{
			PostID:   postID,
			UserID:   s.UserID,
			Username: s.Username,
			Content:  content,
		})
		commentID = id
		return err
	})
	return commentID, err
}

func (f *Feed) SubmitLike(ctx context.Context, postID int64) (int64, error) {
	var likeID int64
	err := f.mutate(ctx, func(api *client.Client, s Session) error {
		id, err := api.CreateLike(ctx, domain.CreateLikeRequest{PostID: postID, UserID: s.UserID})
		likeID = id
		return err
	})
	return likeID, err
}
