package chainquery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-nft-ticketing/internal/config"
)

// stubIndexer counts requests and replies with a fixed JSON body.
func stubIndexer(t *testing.T, calls *int64, responseBody string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(calls, 1)

		assert.Equal(t, http.MethodPost, r.Method)

		var req graphRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req.Query)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(responseBody))
	}))
}

func aggregatorForURL(url string) *Aggregator {
	resolver := NewResolver(config.ChainConfig{
		Endpoints: map[string]map[string]string{
			"mainnet": {"erc721": url, "erc1155": url},
		},
	})
	return NewAggregator(resolver, http.DefaultClient, nil)
}

func TestExecute_ERC721Normalization(t *testing.T) {
	var calls int64
	server := stubIndexer(t, &calls, `{"data":{"tokens":[{"id":"1"}]}}`)
	defer server.Close()

	agg := aggregatorForURL(server.URL)

	records, err := agg.Execute(context.Background(), NetworkMainnet, StandardERC721,
		QueryParams{Count: 10, Offset: 0, Owner: "0xA"})
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "1", records[0].TokenID)
	assert.Equal(t, "erc721", records[0].Standard)
	assert.EqualValues(t, 1, atomic.LoadInt64(&calls), "exactly one upstream call per invocation")
}

func TestExecute_ERC1155Normalization(t *testing.T) {
	var calls int64
	server := stubIndexer(t, &calls,
		`{"data":{"balances":[{"id":"b1","value":"3","account":{"id":"0xA"},"token":{"id":"0xC-7"}}]}}`)
	defer server.Close()

	agg := aggregatorForURL(server.URL)

	records, err := agg.Execute(context.Background(), NetworkMainnet, StandardERC1155, QueryParams{Count: 1000})
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "0xA", records[0].Owner)
	assert.Equal(t, "0xC-7", records[0].TokenID)
	assert.Equal(t, "3", records[0].Balance)
	assert.Equal(t, "erc1155", records[0].Standard)
}

func TestExecute_EmptyCollectionIsValid(t *testing.T) {
	var calls int64
	server := stubIndexer(t, &calls, `{"data":{"tokens":[]}}`)
	defer server.Close()

	agg := aggregatorForURL(server.URL)

	records, err := agg.Execute(context.Background(), NetworkMainnet, StandardERC721, QueryParams{Count: 10})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestExecute_MissingFieldIsMalformed(t *testing.T) {
	cases := []struct {
		name     string
		standard Standard
		body     string
	}{
		{"no data field", StandardERC721, `{"errors":[{"message":"boom"}]}`},
		{"wrong collection for erc721", StandardERC721, `{"data":{"balances":[]}}`},
		{"wrong collection for erc1155", StandardERC1155, `{"data":{"tokens":[]}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var calls int64
			server := stubIndexer(t, &calls, tc.body)
			defer server.Close()

			agg := aggregatorForURL(server.URL)

			_, err := agg.Execute(context.Background(), NetworkMainnet, tc.standard, QueryParams{Count: 10})
			assert.ErrorIs(t, err, ErrMalformedUpstreamResponse,
				"a missing collection must never be returned as an empty result")
		})
	}
}

func TestExecute_UpstreamErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	agg := aggregatorForURL(server.URL)

	_, err := agg.Execute(context.Background(), NetworkMainnet, StandardERC721, QueryParams{Count: 10})
	assert.ErrorIs(t, err, ErrMalformedUpstreamResponse)
}

func TestExecute_UnsupportedCombinationMakesNoCall(t *testing.T) {
	var calls int64
	server := stubIndexer(t, &calls, `{"data":{"tokens":[]}}`)
	defer server.Close()

	resolver := NewResolver(config.ChainConfig{
		Endpoints: map[string]map[string]string{
			"mainnet": {"erc721": server.URL},
		},
	})
	agg := NewAggregator(resolver, http.DefaultClient, nil)

	_, err := agg.Execute(context.Background(), NetworkRinkeby, StandardERC1155, QueryParams{Count: 10})
	assert.ErrorIs(t, err, ErrUnsupportedCombination)
	assert.EqualValues(t, 0, atomic.LoadInt64(&calls), "resolve failure must not reach the network")
}

func TestExecute_RepeatedQueriesReturnIdenticalResults(t *testing.T) {
	var calls int64
	server := stubIndexer(t, &calls, `{"data":{"tokens":[{"id":"42","owner":{"id":"0xA"}}]}}`)
	defer server.Close()

	agg := aggregatorForURL(server.URL)
	params := QueryParams{Count: 10, Offset: 0, Owner: "0xA"}

	first, err := agg.Execute(context.Background(), NetworkMainnet, StandardERC721, params)
	require.NoError(t, err)
	second, err := agg.Execute(context.Background(), NetworkMainnet, StandardERC721, params)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.EqualValues(t, 2, atomic.LoadInt64(&calls), "one call per invocation, no caching or re-slicing")
}
