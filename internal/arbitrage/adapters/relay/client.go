// Package relay submits signed transactions to a Jito block engine as
// bundles.
package relay

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"

	"github.com/hxuan190/arb-engine/internal/common"
	"github.com/hxuan190/arb-engine/internal/config"
)

var (
	ErrEmptyBundle   = errors.New("bundle has no transactions")
	ErrEmptyBundleID = errors.New("relay returned an empty bundle id")
)

const maxErrorBody = 512

type rpcRequest struct {
	JSONRPC string     `json:"jsonrpc"`
	ID      int        `json:"id"`
	Method  string     `json:"method"`
	Params  [][]string `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      int       `json:"id"`
	Result  string    `json:"result"`
	Error   *rpcError `json:"error"`
}

type Client struct {
	httpClient *http.Client
	url        string
	authUUID   string
}

func NewClient(cfg *config.RelayConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		url:        cfg.URL,
		authUUID:   cfg.AuthUUID,
	}
}

// EncodeTransaction serializes a signed transaction to base58 wire form.
func EncodeTransaction(tx *solana.Transaction) (string, error) {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("marshal transaction: %w", err)
	}
	return base58.Encode(raw), nil
}

// SendBundle submits the transactions as one bundle and returns the bundle
// id assigned by the block engine.
func (c *Client) SendBundle(ctx context.Context, txs ...*solana.Transaction) (string, error) {
	if len(txs) == 0 {
		return "", ErrEmptyBundle
	}

	encoded := make([]string, 0, len(txs))
	for _, tx := range txs {
		s, err := EncodeTransaction(tx)
		if err != nil {
			return "", fmt.Errorf("%w: %v", common.ErrSubmission, err)
		}
		encoded = append(encoded, s)
	}

	body, err := sonic.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "sendBundle",
		Params:  [][]string{encoded},
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", common.ErrSubmission, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: create request: %v", common.ErrSubmission, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authUUID != "" {
		req.Header.Set("x-jito-auth", c.authUUID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrSubmission, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", common.ErrSubmission, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: relay status %d: %s", common.ErrSubmission, resp.StatusCode, truncate(string(respBody), maxErrorBody))
	}

	var out rpcResponse
	if err := sonic.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("%w: parse response: %v", common.ErrSubmission, err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("%w: relay error %d: %s", common.ErrSubmission, out.Error.Code, out.Error.Message)
	}
	if out.Result == "" {
		return "", fmt.Errorf("%w: %w", common.ErrSubmission, ErrEmptyBundleID)
	}
	return out.Result, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
