package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xrpfuzzy/fuzzy-community-hub/internal/client"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/domain"
)

// fakeAPI is an in-memory community API.
type fakeAPI struct {
	mu       sync.Mutex
	users    map[string]string
	posts    []domain.Post
	comments map[int64][]domain.Comment
	likes    map[int64][]domain.LikeEntry
	clock    time.Time

	calls     atomic.Int32
	failLikes atomic.Bool
	// onListPosts may replace the GET /posts response.
	onListPosts func(out []domain.Post) []domain.Post
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		users:    map[string]string{},
		comments: map[int64][]domain.Comment{},
		likes:    map[int64][]domain.LikeEntry{},
		clock:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (a *fakeAPI) tick() time.Time {
	a.clock = a.clock.Add(time.Second)
	return a.clock
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /users/checkOrCreate", func(w http.ResponseWriter, r *http.Request) {
		var req domain.CheckOrCreateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		a.mu.Lock()
		defer a.mu.Unlock()
		name, ok := a.users[req.WalletAddress]
		if !ok {
			name = "fuzzy" + strconv.Itoa(len(a.users)+1)
			a.users[req.WalletAddress] = name
		}
		writeJSON(w, http.StatusOK, domain.CheckOrCreateResponse{UserID: req.WalletAddress, Username: name})
	})

	mux.HandleFunc("GET /posts", func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		out := make([]domain.Post, 0, len(a.posts))
		for i := len(a.posts) - 1; i >= 0; i-- {
			out = append(out, a.posts[i])
		}
		a.mu.Unlock()
		if a.onListPosts != nil {
			out = a.onListPosts(out)
		}
		writeJSON(w, http.StatusOK, out)
	})

	mux.HandleFunc("POST /posts", func(w http.ResponseWriter, r *http.Request) {
		var req domain.CreatePostRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		a.mu.Lock()
		defer a.mu.Unlock()
		id := int64(len(a.posts) + 1)
		a.posts = append(a.posts, domain.Post{PostID: id, UserID: req.UserID, Username: req.Username, Content: req.Content, CreatedAt: a.tick()})
		writeJSON(w, http.StatusOK, domain.CreatePostResponse{PostID: id})
	})

	mux.HandleFunc("GET /comments/{postId}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("postId"), 10, 64)
		a.mu.Lock()
		defer a.mu.Unlock()
		writeJSON(w, http.StatusOK, nonNil(a.comments[id]))
	})

	mux.HandleFunc("POST /comments", func(w http.ResponseWriter, r *http.Request) {
		var req domain.CreateCommentRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		a.mu.Lock()
		defer a.mu.Unlock()
		id := int64(len(a.comments[req.PostID]) + 1)
		a.comments[req.PostID] = append(a.comments[req.PostID], domain.Comment{
			CommentID: id, PostID: req.PostID, UserID: req.UserID, Username: req.Username, Content: req.Content, CreatedAt: a.tick(),
		})
		writeJSON(w, http.StatusOK, domain.CreateCommentResponse{CommentID: id})
	})

	mux.HandleFunc("GET /likes/{postId}", func(w http.ResponseWriter, r *http.Request) {
		if a.failLikes.Load() {
			writeJSON(w, http.StatusInternalServerError, domain.ErrorResponse{Error: "Failed to fetch likes", Code: "internal_error"})
			return
		}
		id, _ := strconv.ParseInt(r.PathValue("postId"), 10, 64)
		a.mu.Lock()
		defer a.mu.Unlock()
		writeJSON(w, http.StatusOK, nonNil(a.likes[id]))
	})

	mux.HandleFunc("POST /likes", func(w http.ResponseWriter, r *http.Request) {
		var req domain.CreateLikeRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		a.mu.Lock()
		defer a.mu.Unlock()
		for _, l := range a.likes[req.PostID] {
			if l.UserID == req.UserID {
				writeJSON(w, http.StatusConflict, domain.ErrorResponse{Error: "Already liked", Code: "conflict"})
				return
			}
		}
		a.likes[req.PostID] = append(a.likes[req.PostID], domain.LikeEntry{UserID: req.UserID})
		writeJSON(w, http.StatusOK, domain.CreateLikeResponse{LikeID: int64(len(a.likes[req.PostID]))})
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.calls.Add(1)
		mux.ServeHTTP(w, r)
	})
}

func newTestFeed(t *testing.T, api *fakeAPI) *Feed {
	t.Helper()
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	f := New(client.New(srv.URL, 5*time.Second), 4)
	t.Cleanup(f.Close)
	return f
}

func TestFeed_Scenario(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	alice := newTestFeed(t, api)
	bob := newTestFeed(t, api)

	s, err := alice.SignIn(ctx, "rABC")
	require.NoError(t, err)
	assert.Equal(t, "fuzzy1", s.Username)

	s, err = bob.SignIn(ctx, "rXYZ")
	require.NoError(t, err)
	assert.Equal(t, "fuzzy2", s.Username)

	postID, err := alice.SubmitPost(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, Loaded, alice.State())
	require.Len(t, alice.Posts(), 1)
	assert.Equal(t, "hello", alice.Posts()[0].Content)

	_, err = bob.SubmitLike(ctx, postID)
	require.NoError(t, err)

	_, err = bob.SubmitLike(ctx, postID)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, err, bob.Err())

	posts := bob.Posts()
	require.Len(t, posts, 1)
	assert.Equal(t, []domain.LikeEntry{{UserID: "rXYZ"}}, posts[0].Likes)
	assert.True(t, posts[0].LikedByViewer)

	require.NoError(t, alice.Refresh(ctx))
	assert.False(t, alice.Posts()[0].LikedByViewer)
}

func TestFeed_CommentsOldestFirst(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	f := newTestFeed(t, api)

	_, err := f.SignIn(ctx, "rABC")
	require.NoError(t, err)
	postID, err := f.SubmitPost(ctx, "hello")
	require.NoError(t, err)

	_, err = f.SubmitComment(ctx, postID, "first")
	require.NoError(t, err)
	_, err = f.SubmitComment(ctx, postID, "second")
	require.NoError(t, err)

	posts := f.Posts()
	require.Len(t, posts, 1)
	require.Len(t, posts[0].Comments, 2)
	assert.Equal(t, "first", posts[0].Comments[0].Content)
	assert.Equal(t, "second", posts[0].Comments[1].Content)
	assert.Equal(t, "fuzzy1", posts[0].Comments[0].Username)
}

func TestFeed_MutationsRequireSignIn(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	f := newTestFeed(t, api)

	_, err := f.SubmitPost(ctx, "hello")
	assert.ErrorIs(t, err, ErrNotSignedIn)
	_, err = f.SubmitComment(ctx, 1, "hi")
	assert.ErrorIs(t, err, ErrNotSignedIn)
	_, err = f.SubmitLike(ctx, 1)
	assert.ErrorIs(t, err, ErrNotSignedIn)

	assert.Equal(t, int32(0), api.calls.Load())
	assert.Equal(t, Idle, f.State())
}

func TestFeed_EmptyContent(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	f := newTestFeed(t, api)

	_, err := f.SignIn(ctx, "rABC")
	require.NoError(t, err)
	before := api.calls.Load()

	_, err = f.SubmitPost(ctx, "  ")
	assert.ErrorIs(t, err, ErrEmptyContent)
	_, err = f.SubmitComment(ctx, 1, "")
	assert.ErrorIs(t, err, ErrEmptyContent)
	assert.Equal(t, before, api.calls.Load())
}

func TestFeed_FailedRefreshKeepsLastView(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	f := newTestFeed(t, api)

	_, err := f.SignIn(ctx, "rABC")
	require.NoError(t, err)
	_, err = f.SubmitPost(ctx, "hello")
	require.NoError(t, err)
	require.Len(t, f.Posts(), 1)

	api.failLikes.Store(true)
	_, err = f.SubmitPost(ctx, "second")
	require.Error(t, err)

	assert.Equal(t, Failed, f.State())
	assert.Error(t, f.Err())
	posts := f.Posts()
	require.Len(t, posts, 1)
	assert.Equal(t, "hello", posts[0].Content)

	api.failLikes.Store(false)
	require.NoError(t, f.Refresh(ctx))
	assert.Equal(t, Loaded, f.State())
	assert.NoError(t, f.Err())
	assert.Len(t, f.Posts(), 2)
}

func TestFeed_StaleRefreshDiscarded(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()

	// Once armed, the next GET /posts answers an empty feed, but only after
	// release is closed.
	var armed atomic.Bool
	entered := make(chan struct{})
	release := make(chan struct{})
	api.onListPosts = func(out []domain.Post) []domain.Post {
		if !armed.CompareAndSwap(true, false) {
			return out
		}
		close(entered)
		<-release
		return []domain.Post{}
	}

	f := newTestFeed(t, api)

	_, err := f.SignIn(ctx, "rABC")
	require.NoError(t, err)
	_, err = f.SubmitPost(ctx, "hello")
	require.NoError(t, err)

	armed.Store(true)
	done := make(chan error, 1)
	go func() { done <- f.Refresh(ctx) }()
	<-entered

	require.NoError(t, f.Refresh(ctx))
	require.Len(t, f.Posts(), 1)

	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, Loaded, f.State())
	assert.Len(t, f.Posts(), 1)
}
