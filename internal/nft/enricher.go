package nft

import (
	"context"
	"fmt"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/xrpfuzzy/fuzzy-community-hub/internal/adapter"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/ledger"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/logger"
)

// Config holds configuration for the metadata enricher
type Config struct {
	// IPFSGateways is the list of IPFS gateways to try, in order
	IPFSGateways []string
	// Concurrency bounds simultaneous metadata fetches
	Concurrency int
}

// View is an NFT as shown on a profile. Metadata is nil when the URI is
// missing, unsupported, or could not be fetched.
type View struct {
	ledger.NFToken
	DecodedURI string         `json:"decodedUri,omitempty"`
	Metadata   map[string]any `json:"metadata"`
}

type Enricher struct {
	httpClient adapter.HTTPClient
	config     Config
	pool       pond.ResultPool[View]
}

func NewEnricher(httpClient adapter.HTTPClient, cfg Config) *Enricher {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}
	return &Enricher{
		httpClient: httpClient,
		config:     cfg,
		pool:       pond.NewResultPool[View](cfg.Concurrency),
	}
}

// FetchMetadata resolves uri and returns the first gateway's JSON document.
func (e *Enricher) FetchMetadata(ctx context.Context, uri string) (map[string]any, error) {
	urls, err := GatewayURLs(uri, e.config.IPFSGateways)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for _, u := range urls {
		var metadata map[string]any
		if err := e.httpClient.Get(ctx, u, &metadata); err != nil {
			logger.DebugCtx(ctx, "metadata gateway failed", zap.String("url", u), zap.Error(err))
			lastErr = err
			continue
		}
		return metadata, nil
	}

	return nil, fmt.Errorf("fetch metadata for %s: %w", uri, lastErr)
}

// Enrich fetches metadata for every NFT concurrently. The result keeps the
// input order and never fails as a whole.
func (e *Enricher) Enrich(ctx context.Context, nfts []ledger.NFToken) []View {
	if len(nfts) == 0 {
		return []View{}
	}

	group := e.pool.NewGroup()
	for _, n := range nfts {
		group.Submit(func() View {
			return e.enrichOne(ctx, n)
		})
	}

	views, err := group.Wait()
	if err != nil {
		// Tasks never return errors; only a pool shutdown gets here.
		logger.WarnCtx(ctx, "NFT enrichment interrupted", zap.Error(err))
		views = make([]View, len(nfts))
		for i, n := range nfts {
			views[i] = View{NFToken: n}
		}
	}

	return views
}

func (e *Enricher) enrichOne(ctx context.Context, n ledger.NFToken) View {
	view := View{NFToken: n}

	uri, err := DecodeURI(n.URI)
	if err != nil {
		logger.WarnCtx(ctx, "undecodable NFT URI", zap.String("nftokenId", n.NFTokenID), zap.Error(err))
		return view
	}
	view.DecodedURI = uri
	if uri == "" {
		return view
	}

	metadata, err := e.FetchMetadata(ctx, uri)
	if err != nil {
		logger.WarnCtx(ctx, "NFT metadata unavailable",
			zap.String("nftokenId", n.NFTokenID),
			zap.String("uri", uri),
			zap.Error(err))
		return view
	}
	view.Metadata = metadata
	return view
}

// Close stops the worker pool, waiting for running fetches.
func (e *Enricher) Close() {
	e.pool.StopAndWait()
}
