// Package client is a typed HTTP client for the community feed API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/xrpfuzzy/fuzzy-community-hub/internal/domain"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/ledger"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/nft"
)

// APIError is returned for every non-2xx response.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client does not retry; callers decide what a failure means.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithToken returns a copy that sends token as a bearer credential.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var e domain.ErrorResponse
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			apiErr.Code = e.Code
			apiErr.Message = e.Error
		} else {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) CheckOrCreateUser(ctx context.Context, walletAddress string) (*domain.CheckOrCreateResponse, error) {
	var out domain.CheckOrCreateResponse
	err := c.do(ctx, http.MethodPost, "/users/checkOrCreate", domain.CheckOrCreateRequest{WalletAddress: walletAddress}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreatePost(ctx context.Context, req domain.CreatePostRequest) (int64, error) {
	var out domain.CreatePostResponse
	if err := c.do(ctx, http.MethodPost, "/posts", req, &out); err != nil {
		return 0, err
	}
	return out.PostID, nil
}

func (c *Client) ListPosts(ctx context.Context) ([]domain.Post, error) {
	var out []domain.Post
	if err := c.do(ctx, http.MethodGet, "/posts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateComment(ctx context.Context, req domain.CreateCommentRequest) (int64, error) {
	var out domain.CreateCommentResponse
	if err := c.do(ctx, http.MethodPost, "/comments", req, &out); err != nil {
		return 0, err
	}
	return out.CommentID, nil
}

func (c *Client) ListComments(ctx context.Context, postID int64) ([]domain.Comment, error) {
	var out []domain.Comment
	if err := c.do(ctx, http.MethodGet, "/comments/"+strconv.FormatInt(postID, 10), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateLike(ctx context.Context, req domain.CreateLikeRequest) (int64, error) {
	var out domain.CreateLikeResponse
	if err := c.do(ctx, http.MethodPost, "/likes", req, &out); err != nil {
		return 0, err
	}
	return out.LikeID, nil
}

func (c *Client) ListLikes(ctx context.Context, postID int64) ([]domain.LikeEntry, error) {
	var out []domain.LikeEntry
	if err := c.do(ctx, http.MethodGet, "/likes/"+strconv.FormatInt(postID, 10), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Leaderboard sorts by "posts", "comments" or "likes". A zero limit uses
// the server default.
func (c *Client) Leaderboard(ctx context.Context, sortBy string, limit int) ([]domain.LeaderboardEntry, error) {
	q := url.Values{}
	if sortBy != "" {
		q.Set("sort", sortBy)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/leaderboard"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out []domain.LeaderboardEntry
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Account(ctx context.Context, address string) (*ledger.AccountInfo, error) {
	var out ledger.AccountInfo
	if err := c.do(ctx, http.MethodGet, "/accounts/"+url.PathEscape(address), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AccountNFTs(ctx context.Context, address string) ([]nft.View, error) {
	var out struct {
		NFTs []nft.View `json:"nfts"`
	}
	if err := c.do(ctx, http.MethodGet, "/accounts/"+url.PathEscape(address)+"/nfts", nil, &out); err != nil {
		return nil, err
	}
	return out.NFTs, nil
}

// NFT fetches the display card of one NFT; an empty network means mainnet.
func (c *Client) NFT(ctx context.Context, nftID, network string) (*nft.Summary, error) {
	path := "/nfts/" + url.PathEscape(nftID)
	if network != "" {
		path += "?" + url.Values{"network": {network}}.Encode()
	}

	var out nft.Summary
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
