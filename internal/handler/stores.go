// Package handler implements the community feed HTTP operations. Every
// handler validates its input before touching storage.
package handler

import (
	"context"

	"github.com/xrpfuzzy/fuzzy-community-hub/internal/domain"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/ledger"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/nft"
)

//go:generate mockgen -source=stores.go -destination=../mocks/stores.go -package=mocks

type UserStore interface {
	CreateUserIfAbsent(ctx context.Context, walletAddress string) (*domain.User, error)
}

type PostStore interface {
	CreatePost(ctx context.Context, userID, username, content string) (int64, error)
	ListPosts(ctx context.Context) ([]domain.Post, error)
}

type CommentStore interface {
	CreateComment(ctx context.Context, postID int64, userID, username, content string) (int64, error)
	ListComments(ctx context.Context, postID int64) ([]domain.Comment, error)
}

type LikeStore interface {
	CreateLike(ctx context.Context, postID int64, userID string) (int64, error)
	ListLikes(ctx context.Context, postID int64) ([]domain.LikeEntry, error)
}

type LeaderboardStore interface {
	GetLeaderboard(ctx context.Context, sortBy string, limit int) ([]domain.LeaderboardEntry, error)
}

// Ledger is the read-only view of an XRPL account.
type Ledger interface {
	AccountInfo(ctx context.Context, address string) (*ledger.AccountInfo, error)
	AccountNFTs(ctx context.Context, address string) ([]ledger.NFToken, error)
}

type NFTEnricher interface {
	Enrich(ctx context.Context, nfts []ledger.NFToken) []nft.View
}

// NFTLookup fetches a single NFT's display card from an external index.
type NFTLookup interface {
	Lookup(ctx context.Context, nftID, network string) (*nft.Summary, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}
