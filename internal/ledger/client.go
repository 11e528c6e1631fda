// Package ledger is a read-only XRPL JSON-RPC client covering the two
// queries the community site needs: account_info and account_nfts.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/xrpfuzzy/fuzzy-community-hub/internal/adapter"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/logger"
)

var (
	// ErrAccountNotFound is returned for addresses the ledger does not know.
	ErrAccountNotFound = errors.New("account not found")
	// ErrUpstreamUnavailable wraps every other ledger failure.
	ErrUpstreamUnavailable = errors.New("ledger unavailable")
)

// dropsPerXRP converts the ledger's integer balance unit.
const dropsPerXRP = 1_000_000

// nftPageLimit is the page size asked of account_nfts; the server may clamp it.
const nftPageLimit = 400

type AccountInfo struct {
	Account      string `json:"account"`
	BalanceDrops string `json:"balanceDrops"`
	BalanceXRP   string `json:"balanceXrp"`
	Sequence     uint32 `json:"sequence"`
	OwnerCount   uint32 `json:"ownerCount"`
}

type NFToken struct {
	NFTokenID string `json:"nftokenId"`
	Issuer    string `json:"issuer"`
	Taxon     uint32 `json:"taxon"`
	Serial    uint32 `json:"serial"`
	Flags     uint32 `json:"flags"`
	// URI is hex encoded as stored on the ledger.
	URI string `json:"uri,omitempty"`
}

// Client is built once per process and injected where needed; each call
// is an independent HTTP request, so there is no connection to manage.
type Client struct {
	http   adapter.HTTPClient
	rpcURL string
}

func NewClient(httpClient adapter.HTTPClient, rpcURL string) *Client {
	return &Client{http: httpClient, rpcURL: rpcURL}
}

type rpcRequest struct {
	Method string `json:"method"`
	Params []any  `json:"params"`
}

type rpcError struct {
	Status       string `json:"status"`
	Error        string `json:"error"`
	ErrorMessage string `json:"error_message"`
}

func (c *Client) call(ctx context.Context, method string, params any, result any) error {
	body, err := json.Marshal(rpcRequest{Method: method, Params: []any{params}})
	if err != nil {
		return err
	}

	raw, err := c.http.Post(ctx, c.rpcURL, "application/json", body)
	if err != nil {
		logger.WarnCtx(ctx, "ledger request failed", zap.String("method", method), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrUpstreamUnavailable, method, err)
	}

	var status rpcError
	if err := json.Unmarshal(envelope.Result, &status); err != nil {
		return fmt.Errorf("%w: decode %s status: %v", ErrUpstreamUnavailable, method, err)
	}
	if status.Status == "error" || status.Error != "" {
		if status.Error == "actNotFound" {
			return ErrAccountNotFound
		}
		return fmt.Errorf("%w: %s: %s %s", ErrUpstreamUnavailable, method, status.Error, status.ErrorMessage)
	}

	if err := json.Unmarshal(envelope.Result, result); err != nil {
		return fmt.Errorf("%w: decode %s result: %v", ErrUpstreamUnavailable, method, err)
	}
	return nil
}

// AccountInfo returns the validated balance and sequence of address.
func (c *Client) AccountInfo(ctx context.Context, address string) (*AccountInfo, error) {
	var res struct {
		AccountData struct {
			Account    string `json:"Account"`
			Balance    string `json:"Balance"`
			Sequence   uint32 `json:"Sequence"`
			OwnerCount uint32 `json:"OwnerCount"`
		} `json:"account_data"`
	}

	err := c.call(ctx, "account_info", map[string]any{
		"account":      address,
		"ledger_index": "validated",
	}, &res)
	if err != nil {
		return nil, err
	}

	balanceXRP, err := DropsToXRP(res.AccountData.Balance)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	return &AccountInfo{
		Account:      res.AccountData.Account,
		BalanceDrops: res.AccountData.Balance,
		BalanceXRP:   balanceXRP,
		Sequence:     res.AccountData.Sequence,
		OwnerCount:   res.AccountData.OwnerCount,
	}, nil
}

// AccountNFTs returns every NFT owned by address, following markers.
func (c *Client) AccountNFTs(ctx context.Context, address string) ([]NFToken, error) {
	nfts := make([]NFToken, 0)
	var marker any

	for {
		params := map[string]any{
			"account":      address,
			"ledger_index": "validated",
			"limit":        nftPageLimit,
		}
		if marker != nil {
			params["marker"] = marker
		}

		var res struct {
			AccountNFTs []struct {
				Flags        uint32 `json:"Flags"`
				Issuer       string `json:"Issuer"`
				NFTokenID    string `json:"NFTokenID"`
				NFTokenTaxon uint32 `json:"NFTokenTaxon"`
				URI          string `json:"URI"`
				Serial       uint32 `json:"nft_serial"`
			} `json:"account_nfts"`
			Marker any `json:"marker"`
		}
		if err := c.call(ctx, "account_nfts", params, &res); err != nil {
			return nil, err
		}

		for _, n := range res.AccountNFTs {
			nfts = append(nfts, NFToken{
				NFTokenID: n.NFTokenID,
				Issuer:    n.Issuer,
				Taxon:     n.NFTokenTaxon,
				Serial:    n.Serial,
				Flags:     n.Flags,
				URI:       n.URI,
			})
		}

		if res.Marker == nil {
			return nfts, nil
		}
		marker = res.Marker
	}
}

// DropsToXRP renders an integer drop amount as a decimal XRP string.
func DropsToXRP(drops string) (string, error) {
	n, err := strconv.ParseInt(drops, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid drops amount %q: %w", drops, err)
	}
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	return fmt.Sprintf("%s%d.%06d", sign, n/dropsPerXRP, n%dropsPerXRP), nil
}
