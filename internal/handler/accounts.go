package handler

import (
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"

	"github.com/xrpfuzzy/fuzzy-community-hub/internal/domain"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/nft"
)

// classicAddress matches the shape of an XRPL classic address. The checksum
// is left to the ledger.
var classicAddress = regexp.MustCompile(`^r[1-9A-HJ-NP-Za-km-z]{24,34}$`)

var nftokenID = regexp.MustCompile(`^[0-9A-Fa-f]{64}$`)

type AccountNFTsResponse struct {
	Account string     `json:"account"`
	NFTs    []nft.View `json:"nfts"`
}

func addressParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	address := chi.URLParam(r, "address")
	if !classicAddress.MatchString(address) {
		respondBadRequest(w, "invalid account address")
		return "", false
	}
	return address, true
}

// GetAccount proxies the ledger's account_info for the profile page.
func GetAccount(ledger Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		address, ok := addressParam(w, r)
		if !ok {
			return
		}

		info, err := ledger.AccountInfo(r.Context(), address)
		if err != nil {
			respondStoreError(w, r, err, "Failed to fetch account")
			return
		}
		writeJSON(w, http.StatusOK, info)
	}
}

// GetAccountNFTs lists the account's NFTs with metadata attached where the
// gateway could serve it.
func GetAccountNFTs(ledger Ledger, enricher NFTEnricher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		address, ok := addressParam(w, r)
		if !ok {
			return
		}

		nfts, err := ledger.AccountNFTs(r.Context(), address)
		if err != nil {
			respondStoreError(w, r, err, "Failed to fetch NFTs")
			return
		}

		writeJSON(w, http.StatusOK, AccountNFTsResponse{
			Account: address,
			NFTs:    enricher.Enrich(r.Context(), nfts),
		})
	}
}

// GetNFT serves GET /nfts/{nftId}?network=mainnet|testnet from the NFT
// index, keeping its API token server side.
func GetNFT(lookup NFTLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nftID := chi.URLParam(r, "nftId")
		if !nftokenID.MatchString(nftID) {
			respondBadRequest(w, "invalid nftId")
			return
		}

		summary, err := lookup.Lookup(r.Context(), nftID, r.URL.Query().Get("network"))
		if err != nil {
			respondStoreError(w, r, err, "Failed to fetch NFT data")
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

func Health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			respondWithError(w, http.StatusServiceUnavailable, ErrCodeInternalError, "Database unavailable")
			return
		}
		writeJSON(w, http.StatusOK, domain.HealthResponse{Status: "ok"})
	}
}
