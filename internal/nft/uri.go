// Package nft turns the hex URIs stored on ledger NFTs into fetchable URLs
// and attaches their JSON metadata.
package nft

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var ErrUnsupportedURI = errors.New("unsupported NFT URI")

// DecodeURI decodes a ledger URI field. Empty input decodes to "".
func DecodeURI(uriHex string) (string, error) {
	if uriHex == "" {
		return "", nil
	}
	b, err := hex.DecodeString(uriHex)
	if err != nil {
		return "", fmt.Errorf("invalid hex URI: %w", err)
	}
	return string(b), nil
}

// GatewayURLs lists the URLs to try for uri, in gateway order. ipfs://
// paths are escaped segment by segment; http(s) URLs are used as is.
func GatewayURLs(uri string, gateways []string) ([]string, error) {
	if path, ok := strings.CutPrefix(uri, "ipfs://"); ok {
		path = strings.TrimPrefix(path, "ipfs/")
		if path == "" {
			return nil, fmt.Errorf("%w: empty IPFS path", ErrUnsupportedURI)
		}
		if len(gateways) == 0 {
			return nil, fmt.Errorf("no IPFS gateways configured")
		}

		segments := strings.Split(path, "/")
		for i, s := range segments {
			segments[i] = url.PathEscape(s)
		}
		escaped := strings.Join(segments, "/")

		urls := make([]string, 0, len(gateways))
		for _, gw := range gateways {
			urls = append(urls, fmt.Sprintf("%s/ipfs/%s", strings.TrimRight(gw, "/"), escaped))
		}
		return urls, nil
	}

	if strings.HasPrefix(uri, "https://") || strings.HasPrefix(uri, "http://") {
		return []string{uri}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedURI, uri)
}
