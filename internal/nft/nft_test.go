package nft_test

import (
	"context"
	"encoding/hex"
	"errors"
	"os"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xrpfuzzy/fuzzy-community-hub/internal/ledger"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/logger"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/mocks"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/nft"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func hexURI(s string) string {
	return hex.EncodeToString([]byte(s))
}

func TestDecodeURI(t *testing.T) {
	got, err := nft.DecodeURI("697066733A2F2F516D41")
	require.NoError(t, err)
	assert.Equal(t, "ipfs://QmA", got)

	got, err = nft.DecodeURI("")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = nft.DecodeURI("zz")
	assert.Error(t, err)
}

func TestGatewayURLs(t *testing.T) {
	gateways := []string{"https://ipfs.xrp.cafe", "https://ipfs.io/"}

	tests := []struct {
		name        string
		uri         string
		expected    []string
		expectedErr error
	}{
		{
			name: "ipfs with path",
			uri:  "ipfs://QmHash/metadata 1.json",
			expected: []string{
				"https://ipfs.xrp.cafe/ipfs/QmHash/metadata%201.json",
				"https://ipfs.io/ipfs/QmHash/metadata%201.json",
			},
		},
		{
			name: "ipfs with redundant prefix",
			uri:  "ipfs://ipfs/QmHash",
			expected: []string{
				"https://ipfs.xrp.cafe/ipfs/QmHash",
				"https://ipfs.io/ipfs/QmHash",
			},
		},
		{
			name:     "https",
			uri:      "https://example.com/1.json",
			expected: []string{"https://example.com/1.json"},
		},
		{
			name:        "unsupported scheme",
			uri:         "ar://abc",
			expectedErr: nft.ErrUnsupportedURI,
		},
		{
			name:        "empty ipfs path",
			uri:         "ipfs://",
			expectedErr: nft.ErrUnsupportedURI,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := nft.GatewayURLs(tt.uri, gateways)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func fillMetadata(name string) func(context.Context, string, interface{}) error {
	return func(_ context.Context, _ string, result interface{}) error {
		out := result.(*map[string]any)
		*out = map[string]any{"name": name}
		return nil
	}
}

func TestEnricher_FetchMetadataFallsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHTTP := mocks.NewMockHTTPClient(ctrl)
	gomock.InOrder(
		mockHTTP.EXPECT().
			Get(gomock.Any(), "https://ipfs.xrp.cafe/ipfs/QmA", gomock.Any()).
			Return(errors.New("gateway timeout")),
		mockHTTP.EXPECT().
			Get(gomock.Any(), "https://ipfs.io/ipfs/QmA", gomock.Any()).
			DoAndReturn(fillMetadata("Fuzzy #1")),
	)

	e := nft.NewEnricher(mockHTTP, nft.Config{IPFSGateways: []string{"https://ipfs.xrp.cafe", "https://ipfs.io"}})
	defer e.Close()

	metadata, err := e.FetchMetadata(context.Background(), "ipfs://QmA")
	require.NoError(t, err)
	assert.Equal(t, "Fuzzy #1", metadata["name"])
}

func TestEnricher_Enrich(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHTTP := mocks.NewMockHTTPClient(ctrl)
	mockHTTP.EXPECT().
		Get(gomock.Any(), "https://ipfs.xrp.cafe/ipfs/QmA", gomock.Any()).
		DoAndReturn(fillMetadata("Fuzzy #1"))
	mockHTTP.EXPECT().
		Get(gomock.Any(), "https://ipfs.xrp.cafe/ipfs/QmB", gomock.Any()).
		Return(errors.New("not found"))

	e := nft.NewEnricher(mockHTTP, nft.Config{IPFSGateways: []string{"https://ipfs.xrp.cafe"}, Concurrency: 2})
	defer e.Close()

	nfts := []ledger.NFToken{
		{NFTokenID: "A", URI: hexURI("ipfs://QmA")},
		{NFTokenID: "B", URI: hexURI("ipfs://QmB")},
		{NFTokenID: "C"},
		{NFTokenID: "D", URI: hexURI("ar://unsupported")},
	}

	views := e.Enrich(context.Background(), nfts)
	require.Len(t, views, 4)

	assert.Equal(t, "A", views[0].NFTokenID)
	assert.Equal(t, "ipfs://QmA", views[0].DecodedURI)
	assert.Equal(t, "Fuzzy #1", views[0].Metadata["name"])

	assert.Equal(t, "B", views[1].NFTokenID)
	assert.Nil(t, views[1].Metadata)

	assert.Equal(t, "C", views[2].NFTokenID)
	assert.Nil(t, views[2].Metadata)

	assert.Equal(t, "D", views[3].NFTokenID)
	assert.Equal(t, "ar://unsupported", views[3].DecodedURI)
	assert.Nil(t, views[3].Metadata)
}

func TestEnricher_EnrichEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	e := nft.NewEnricher(mocks.NewMockHTTPClient(ctrl), nft.Config{})
	defer e.Close()

	views := e.Enrich(context.Background(), nil)
	assert.NotNil(t, views)
	assert.Empty(t, views)
}
