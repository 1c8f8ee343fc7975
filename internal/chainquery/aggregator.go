package chainquery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"ms-nft-ticketing/internal/logger"
	"ms-nft-ticketing/internal/models"
)

// Aggregator issues a single query against the resolved indexer endpoint and
// normalizes the standard-specific payload into NormalizedRecords. It is a
// pure read: safe to retry and safe to abandon on timeout.
type Aggregator struct {
	Resolver *Resolver
	Client   *http.Client
	Logger   *logger.Logger
}

func NewAggregator(resolver *Resolver, client *http.Client, log *logger.Logger) *Aggregator {
	if client == nil {
		client = http.DefaultClient
	}
	return &Aggregator{Resolver: resolver, Client: client, Logger: log}
}

type graphRequest struct {
	Query string `json:"query"`
}

type graphResponse struct {
	Data *graphData `json:"data"`
}

type graphData struct {
	Balances []balanceRecord `json:"balances"`
	Tokens   []tokenRecord   `json:"tokens"`
}

type entityRef struct {
	ID string `json:"id"`
}

type balanceRecord struct {
	ID      string     `json:"id"`
	Value   string     `json:"value"`
	Account *entityRef `json:"account"`
	Token   *entityRef `json:"token"`
}

type tokenRecord struct {
	ID       string     `json:"id"`
	Owner    *entityRef `json:"owner"`
	Contract *entityRef `json:"contract"`
}

// Execute resolves the endpoint, builds the query and performs exactly one
// upstream call. Pagination is the caller's job via params; there is no
// implicit follow-up request.
func (a *Aggregator) Execute(ctx context.Context, network Network, standard Standard, params QueryParams) ([]models.NormalizedRecord, error) {
	endpoint, err := a.Resolver.Resolve(network, standard)
	if err != nil {
		return nil, err
	}

	query, err := BuildQuery(standard, params)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(graphRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create indexer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if a.Logger != nil {
		a.Logger.LogChain(network.String(), standard.String(), fmt.Sprintf("querying indexer %s", endpoint))
	}

	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("indexer request failed: %w", err)
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil && a.Logger != nil {
			a.Logger.Error("CHAIN", fmt.Sprintf("Failed to close indexer response body: %v", cerr))
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("indexer returned status %d: %w", resp.StatusCode, ErrMalformedUpstreamResponse)
	}

	var parsed graphResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode indexer response: %w", ErrMalformedUpstreamResponse)
	}

	return normalize(standard, parsed)
}

// normalize flattens the standard-specific collection into the common record
// shape. A nil collection means the expected field was absent from the
// response, which is a malformed upstream payload, not an empty result.
func normalize(standard Standard, resp graphResponse) ([]models.NormalizedRecord, error) {
	if resp.Data == nil {
		return nil, fmt.Errorf("response has no data field: %w", ErrMalformedUpstreamResponse)
	}

	switch standard {
	case StandardERC1155:
		if resp.Data.Balances == nil {
			return nil, fmt.Errorf("response has no balances field: %w", ErrMalformedUpstreamResponse)
		}
		records := make([]models.NormalizedRecord, 0, len(resp.Data.Balances))
		for _, b := range resp.Data.Balances {
			rec := models.NormalizedRecord{Balance: b.Value, Standard: standard.String()}
			if b.Account != nil {
				rec.Owner = b.Account.ID
			}
			if b.Token != nil {
				rec.TokenID = b.Token.ID
			}
			records = append(records, rec)
		}
		return records, nil

	case StandardERC721:
		if resp.Data.Tokens == nil {
			return nil, fmt.Errorf("response has no tokens field: %w", ErrMalformedUpstreamResponse)
		}
		records := make([]models.NormalizedRecord, 0, len(resp.Data.Tokens))
		for _, t := range resp.Data.Tokens {
			rec := models.NormalizedRecord{TokenID: t.ID, Standard: standard.String()}
			if t.Owner != nil {
				rec.Owner = t.Owner.ID
			}
			if t.Contract != nil {
				rec.Contract = t.Contract.ID
			}
			records = append(records, rec)
		}
		return records, nil
	}

	return nil, fmt.Errorf("no extraction rule for standard %q: %w", standard, ErrUnsupportedCombination)
}
