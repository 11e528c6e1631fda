package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xrpfuzzy/fuzzy-community-hub/internal/adapter"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/auth"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/domain"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/handler"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/ledger"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/logger"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/mocks"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/nft"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/repository"
)

const (
	walletABC = "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"
	walletXYZ = "rPT1Sjq2YGrBMTttX4GZHjKu9dyfzbpAYe"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func serve(t *testing.T, pattern, method, target, body string, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Method(method, pattern, h)

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCheckOrCreateUser(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		issuer     *auth.Issuer
		setupMocks func(*mocks.MockUserStore)
		wantStatus int
		wantBody   string
		wantToken  bool
	}{
		{
			name: "first contact",
			body: `{"walletAddress":"` + walletABC + `"}`,
			setupMocks: func(m *mocks.MockUserStore) {
				m.EXPECT().CreateUserIfAbsent(gomock.Any(), walletABC).
					Return(&domain.User{UserID: walletABC, Username: "fuzzy1"}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"userId":"` + walletABC + `","username":"fuzzy1"}`,
		},
		{
			name:   "issues token when auth enabled",
			body:   `{"walletAddress":"` + walletABC + `"}`,
			issuer: auth.NewIssuer("secret", time.Hour),
			setupMocks: func(m *mocks.MockUserStore) {
				m.EXPECT().CreateUserIfAbsent(gomock.Any(), walletABC).
					Return(&domain.User{UserID: walletABC, Username: "fuzzy1"}, nil)
			},
			wantStatus: http.StatusOK,
			wantToken:  true,
		},
		{
			name:       "missing wallet",
			body:       `{"walletAddress":"  "}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"walletAddress required","code":"validation_failed"}`,
		},
		{
			name:       "malformed json",
			body:       `{`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"invalid request body","code":"bad_request"}`,
		},
		{
			name: "storage failure",
			body: `{"walletAddress":"` + walletABC + `"}`,
			setupMocks: func(m *mocks.MockUserStore) {
				m.EXPECT().CreateUserIfAbsent(gomock.Any(), walletABC).
					Return(nil, errors.New("connection refused"))
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Failed to assign username","code":"internal_error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			users := mocks.NewMockUserStore(ctrl)
			if tt.setupMocks != nil {
				tt.setupMocks(users)
			}
			issuer := tt.issuer
			if issuer == nil {
				issuer = auth.NewIssuer("", 0)
			}

			rec := serve(t, "/users/checkOrCreate", http.MethodPost, "/users/checkOrCreate", tt.body,
				handler.CheckOrCreateUser(users, issuer))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
			if tt.wantToken {
				assert.Contains(t, rec.Body.String(), `"token":"`)
			}
		})
	}
}

func TestCreatePost(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMocks func(*mocks.MockPostStore)
		wantStatus int
		wantBody   string
	}{
		{
			name: "created",
			body: `{"userId":"` + walletABC + `","username":"fuzzy1","content":"hello"}`,
			setupMocks: func(m *mocks.MockPostStore) {
				m.EXPECT().CreatePost(gomock.Any(), walletABC, "fuzzy1", "hello").Return(int64(1), nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"postId":1}`,
		},
		{
			name:       "empty content",
			body:       `{"userId":"` + walletABC + `","username":"fuzzy1","content":""}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Missing required fields","code":"validation_failed"}`,
		},
		{
			name:       "whitespace content",
			body:       `{"userId":"` + walletABC + `","username":"fuzzy1","content":"   "}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing username",
			body:       `{"userId":"` + walletABC + `","content":"hello"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "unknown author",
			body: `{"userId":"rNobody","username":"fuzzy9","content":"hello"}`,
			setupMocks: func(m *mocks.MockPostStore) {
				m.EXPECT().CreatePost(gomock.Any(), "rNobody", "fuzzy9", "hello").Return(int64(0), repository.ErrUserNotFound)
			},
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"User not found","code":"not_found"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			posts := mocks.NewMockPostStore(ctrl)
			if tt.setupMocks != nil {
				tt.setupMocks(posts)
			}

			rec := serve(t, "/posts", http.MethodPost, "/posts", tt.body, handler.CreatePost(posts))
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestCreatePost_TokenMismatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	issuer := auth.NewIssuer("secret", time.Hour)
	token, err := issuer.GenerateToken(walletXYZ)
	require.NoError(t, err)

	posts := mocks.NewMockPostStore(ctrl)

	r := chi.NewRouter()
	r.With(issuer.Middleware(handler.AuthError)).Post("/posts", handler.CreatePost(posts))

	req := httptest.NewRequest(http.MethodPost, "/posts",
		strings.NewReader(`{"userId":"`+walletABC+`","username":"fuzzy1","content":"hello"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader(`{}`))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Authorization token required","code":"unauthorized"}`, rec.Body.String())
}

func TestListPosts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	posts := mocks.NewMockPostStore(ctrl)
	posts.EXPECT().ListPosts(gomock.Any()).Return([]domain.Post{}, nil)

	rec := serve(t, "/posts", http.MethodGet, "/posts", "", handler.ListPosts(posts))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCreateComment(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMocks func(*mocks.MockCommentStore)
		wantStatus int
		wantBody   string
	}{
		{
			name: "created",
			body: `{"postId":1,"userId":"` + walletXYZ + `","username":"fuzzy2","content":"nice"}`,
			setupMocks: func(m *mocks.MockCommentStore) {
				m.EXPECT().CreateComment(gomock.Any(), int64(1), walletXYZ, "fuzzy2", "nice").Return(int64(7), nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"commentId":7}`,
		},
		{
			name:       "missing post id",
			body:       `{"userId":"` + walletXYZ + `","username":"fuzzy2","content":"nice"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "post does not exist",
			body: `{"postId":99,"userId":"` + walletXYZ + `","username":"fuzzy2","content":"nice"}`,
			setupMocks: func(m *mocks.MockCommentStore) {
				m.EXPECT().CreateComment(gomock.Any(), int64(99), walletXYZ, "fuzzy2", "nice").Return(int64(0), repository.ErrPostNotFound)
			},
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"Post not found","code":"not_found"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			comments := mocks.NewMockCommentStore(ctrl)
			if tt.setupMocks != nil {
				tt.setupMocks(comments)
			}

			rec := serve(t, "/comments", http.MethodPost, "/comments", tt.body, handler.CreateComment(comments))
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestListComments(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	comments := mocks.NewMockCommentStore(ctrl)
	comments.EXPECT().ListComments(gomock.Any(), int64(3)).Return([]domain.Comment{
		{CommentID: 1, PostID: 3, UserID: walletXYZ, Username: "fuzzy2", Content: "first"},
	}, nil)

	rec := serve(t, "/comments/{postId}", http.MethodGet, "/comments/3", "", handler.ListComments(comments))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"content":"first"`)

	rec = serve(t, "/comments/{postId}", http.MethodGet, "/comments/abc", "", handler.ListComments(comments))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateLike(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	likes := mocks.NewMockLikeStore(ctrl)
	gomock.InOrder(
		likes.EXPECT().CreateLike(gomock.Any(), int64(1), walletXYZ).Return(int64(1), nil),
		likes.EXPECT().CreateLike(gomock.Any(), int64(1), walletXYZ).Return(int64(0), repository.ErrDuplicateLike),
	)

	body := `{"postId":1,"userId":"` + walletXYZ + `"}`
	rec := serve(t, "/likes", http.MethodPost, "/likes", body, handler.CreateLike(likes))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"likeId":1}`, rec.Body.String())

	rec = serve(t, "/likes", http.MethodPost, "/likes", body, handler.CreateLike(likes))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"Already liked","code":"conflict"}`, rec.Body.String())

	rec = serve(t, "/likes", http.MethodPost, "/likes", `{"postId":1}`, handler.CreateLike(likes))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListLikes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	likes := mocks.NewMockLikeStore(ctrl)
	likes.EXPECT().ListLikes(gomock.Any(), int64(1)).Return([]domain.LikeEntry{{UserID: walletXYZ}}, nil)

	rec := serve(t, "/likes/{postId}", http.MethodGet, "/likes/1", "", handler.ListLikes(likes))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"userId":"`+walletXYZ+`"}]`, rec.Body.String())
}

func TestGetLeaderboard(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	board := mocks.NewMockLeaderboardStore(ctrl)
	board.EXPECT().GetLeaderboard(gomock.Any(), "posts", repository.DefaultLeaderboardLimit).
		Return([]domain.LeaderboardEntry{{UserID: walletABC, Username: "fuzzy1", PostCount: 2}}, nil)
	board.EXPECT().GetLeaderboard(gomock.Any(), "likes", 5).Return([]domain.LeaderboardEntry{}, nil)
	board.EXPECT().GetLeaderboard(gomock.Any(), "balance", repository.DefaultLeaderboardLimit).
		Return(nil, repository.ErrUnknownSortOrder)

	rec := serve(t, "/leaderboard", http.MethodGet, "/leaderboard", "", handler.GetLeaderboard(board))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"postCount":2`)

	rec = serve(t, "/leaderboard", http.MethodGet, "/leaderboard?sort=likes&limit=5", "", handler.GetLeaderboard(board))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, "/leaderboard", http.MethodGet, "/leaderboard?sort=balance", "", handler.GetLeaderboard(board))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, "/leaderboard", http.MethodGet, "/leaderboard?limit=-1", "", handler.GetLeaderboard(board))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAccount(t *testing.T) {
	tests := []struct {
		name       string
		address    string
		setupMocks func(*mocks.MockLedger)
		wantStatus int
	}{
		{
			name:    "found",
			address: walletABC,
			setupMocks: func(m *mocks.MockLedger) {
				m.EXPECT().AccountInfo(gomock.Any(), walletABC).
					Return(&ledger.AccountInfo{Account: walletABC, BalanceDrops: "1000000", BalanceXRP: "1.000000"}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "malformed address",
			address:    "not-an-address",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:    "unknown account",
			address: walletXYZ,
			setupMocks: func(m *mocks.MockLedger) {
				m.EXPECT().AccountInfo(gomock.Any(), walletXYZ).Return(nil, ledger.ErrAccountNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:    "ledger down",
			address: walletXYZ,
			setupMocks: func(m *mocks.MockLedger) {
				m.EXPECT().AccountInfo(gomock.Any(), walletXYZ).Return(nil, ledger.ErrUpstreamUnavailable)
			},
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			l := mocks.NewMockLedger(ctrl)
			if tt.setupMocks != nil {
				tt.setupMocks(l)
			}

			rec := serve(t, "/accounts/{address}", http.MethodGet, "/accounts/"+tt.address, "", handler.GetAccount(l))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestGetAccountNFTs(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tokens := []ledger.NFToken{{NFTokenID: "000A"}}
	l := mocks.NewMockLedger(ctrl)
	l.EXPECT().AccountNFTs(gomock.Any(), walletABC).Return(tokens, nil)

	enricher := mocks.NewMockNFTEnricher(ctrl)
	enricher.EXPECT().Enrich(gomock.Any(), tokens).Return([]nft.View{
		{NFToken: tokens[0], Metadata: map[string]any{"name": "Fuzzy #1"}},
	})

	rec := serve(t, "/accounts/{address}/nfts", http.MethodGet, "/accounts/"+walletABC+"/nfts", "",
		handler.GetAccountNFTs(l, enricher))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Fuzzy #1"`)
	assert.Contains(t, rec.Body.String(), `"account":"`+walletABC+`"`)
}

func TestHealth(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	db := mocks.NewMockPinger(ctrl)
	db.EXPECT().Ping(gomock.Any()).Return(nil)
	db.EXPECT().Ping(gomock.Any()).Return(context.DeadlineExceeded)

	rec := serve(t, "/healthz", http.MethodGet, "/healthz", "", handler.Health(db))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = serve(t, "/healthz", http.MethodGet, "/healthz", "", handler.Health(db))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetNFT(t *testing.T) {
	const nftID = "000800006203F49C21D5D6E022CB16DE3538F248662FC73C00000B8E00000A2B"

	tests := []struct {
		name       string
		target     string
		setupMocks func(*mocks.MockHTTPClient)
		wantStatus int
		wantBody   string
	}{
		{
			name:   "mainnet card",
			target: "/nfts/" + nftID,
			setupMocks: func(m *mocks.MockHTTPClient) {
				m.EXPECT().
					GetWithHeaders(gomock.Any(), "https://bithomp.com/api/v2/nft/"+nftID, map[string]string{"x-bithomp-token": "tok"}, gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, _ map[string]string, result interface{}) error {
						*(result.(*map[string]any)) = map[string]any{"name": "Fuzzy #2603", "image": "ipfs://QmImage"}
						return nil
					})
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"image":"ipfs://QmImage","name":"Fuzzy #2603","description":"No description available","uri":null}`,
		},
		{
			name:   "testnet defaults",
			target: "/nfts/" + nftID + "?network=testnet",
			setupMocks: func(m *mocks.MockHTTPClient) {
				m.EXPECT().
					GetWithHeaders(gomock.Any(), "https://test.bithomp.com/api/v2/nft/"+nftID, gomock.Any(), gomock.Any()).
					Return(nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"image":null,"name":"NFT #0A2B","description":"No description available","uri":null}`,
		},
		{
			name:       "unknown network",
			target:     "/nfts/" + nftID + "?network=devnet",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed id",
			target:     "/nfts/not-an-nft",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "not indexed",
			target: "/nfts/" + nftID,
			setupMocks: func(m *mocks.MockHTTPClient) {
				m.EXPECT().GetWithHeaders(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(&adapter.StatusError{StatusCode: http.StatusNotFound})
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:   "index unavailable",
			target: "/nfts/" + nftID,
			setupMocks: func(m *mocks.MockHTTPClient) {
				m.EXPECT().GetWithHeaders(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("request failed after retries"))
			},
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			httpClient := mocks.NewMockHTTPClient(ctrl)
			if tt.setupMocks != nil {
				tt.setupMocks(httpClient)
			}
			proxy := nft.NewProxy(httpClient, nft.ProxyConfig{APIToken: "tok"})

			rec := serve(t, "/nfts/{nftId}", http.MethodGet, tt.target, "", handler.GetNFT(proxy))
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestDecodeBody_SizeCap(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No store call is expected for an oversized body.
	posts := mocks.NewMockPostStore(ctrl)

	body := `{"userId":"` + walletABC + `","username":"fuzzy1","content":"` + strings.Repeat("a", 101<<10) + `"}`
	rec := serve(t, "/posts", http.MethodPost, "/posts", body, handler.CreatePost(posts))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"bad_request"`)
}
