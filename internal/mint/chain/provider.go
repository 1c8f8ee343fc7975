package chain

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

// Provider submits value transfers through a JSON-RPC node. The mint service
// treats it as an opaque collaborator: one call, one receipt or one error.
type Provider struct {
	URL    string
	Client *http.Client
	Logger *logger.Logger
}

func NewProvider(url string, client *http.Client, log *logger.Logger) *Provider {
	if client == nil {
		client = http.DefaultClient
	}
	return &Provider{URL: url, Client: client, Logger: log}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result string    `json:"result"`
	Error  *rpcError `json:"error"`
}

type txParams struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value"`
}

// SubmitTransaction sends a value transfer and returns the transaction hash.
func (p *Provider) SubmitTransaction(ctx context.Context, from, to, value string) (*models.TxReceipt, error) {
	payload := rpcRequest{
		JSONRPC: "2.0",
		Method:  "eth_sendTransaction",
		Params:  []interface{}{txParams{From: from, To: to, Value: value}},
		ID:      1,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transaction: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create provider request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if p.Logger != nil {
		p.Logger.Debug("CHAIN", fmt.Sprintf("Submitting transaction from %s to %s", from, to))
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider request failed: %w", err)
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil && p.Logger != nil {
			p.Logger.Error("CHAIN", fmt.Sprintf("Failed to close provider response body: %v", cerr))
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var parsed rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode provider response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("transaction rejected: %s", parsed.Error.Message)
	}
	if parsed.Result == "" {
		return nil, fmt.Errorf("provider returned no transaction hash")
	}

	return &models.TxReceipt{TxHash: parsed.Result}, nil
}
