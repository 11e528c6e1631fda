package nft

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/xrpfuzzy/fuzzy-community-hub/internal/adapter"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/logger"
)

const (
	NetworkMainnet = "mainnet"
	NetworkTestnet = "testnet"

	defaultDescription = "No description available"
)

var (
	ErrUnknownNetwork   = errors.New("network must be mainnet or testnet")
	ErrNFTNotFound      = errors.New("nft not found")
	ErrIndexUnavailable = errors.New("nft index unavailable")
)

// ProxyConfig points at the Bithomp v2 API of each network.
type ProxyConfig struct {
	APIToken   string
	MainnetURL string
	TestnetURL string
}

// Summary is the display card for a single NFT. Name and Description are
// always set; Image and URI are null when the index has none.
type Summary struct {
	Image       *string `json:"image"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	URI         *string `json:"uri"`
}

// Proxy looks NFTs up on Bithomp so browsers never see the API token.
type Proxy struct {
	httpClient adapter.HTTPClient
	config     ProxyConfig
}

func NewProxy(httpClient adapter.HTTPClient, cfg ProxyConfig) *Proxy {
	if cfg.MainnetURL == "" {
		cfg.MainnetURL = "https://bithomp.com/api/v2"
	}
	if cfg.TestnetURL == "" {
		cfg.TestnetURL = "https://test.bithomp.com/api/v2"
	}
	return &Proxy{httpClient: httpClient, config: cfg}
}

func (p *Proxy) baseURL(network string) (string, error) {
	switch network {
	case "", NetworkMainnet:
		return p.config.MainnetURL, nil
	case NetworkTestnet:
		return p.config.TestnetURL, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownNetwork, network)
	}
}

// Lookup fetches nftID on network; an empty network means mainnet.
func (p *Proxy) Lookup(ctx context.Context, nftID, network string) (*Summary, error) {
	base, err := p.baseURL(network)
	if err != nil {
		return nil, err
	}

	headers := map[string]string{}
	if p.config.APIToken != "" {
		headers["x-bithomp-token"] = p.config.APIToken
	}

	var data map[string]any
	u := strings.TrimRight(base, "/") + "/nft/" + url.PathEscape(nftID)
	if err := p.httpClient.GetWithHeaders(ctx, u, headers, &data); err != nil {
		var statusErr *adapter.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, ErrNFTNotFound
		}
		logger.WarnCtx(ctx, "nft index request failed", zap.String("nftokenId", nftID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}

	summary := &Summary{
		Image:       stringField(data, "image"),
		Name:        "NFT #" + lastN(nftID, 4),
		Description: defaultDescription,
		URI:         stringField(data, "uri"),
	}
	if name := stringField(data, "name"); name != nil {
		summary.Name = *name
	}
	if desc := stringField(data, "description"); desc != nil {
		summary.Description = *desc
	}
	return summary, nil
}

// stringField returns a non-empty string value of data[key], or nil.
func stringField(data map[string]any, key string) *string {
	s, ok := data[key].(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}

func lastN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
