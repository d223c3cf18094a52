// Package jupiter is an HTTP client for the aggregator quote and
// swap-instructions endpoints.
package jupiter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/hxuan190/arb-engine/internal/common"
	"github.com/hxuan190/arb-engine/internal/config"
	"github.com/hxuan190/arb-engine/internal/domain"
)

const maxErrorBody = 512

// APIError is a non-2xx answer from the aggregator.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("jupiter api error (status %d, %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("jupiter api error (status %d): %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return common.ErrNetwork
}

type errorBody struct {
	Error     string `json:"error"`
	ErrorCode string `json:"errorCode"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(cfg *config.JupiterConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
	}
}

// GetQuote fetches a single-direction quote.
func (c *Client) GetQuote(ctx context.Context, req domain.QuoteRequest) (*domain.Quote, error) {
	if req.InputMint == "" || req.OutputMint == "" {
		return nil, fmt.Errorf("inputMint and outputMint are required")
	}
	if req.Amount == 0 {
		return nil, fmt.Errorf("amount is required")
	}

	query := url.Values{}
	query.Set("inputMint", req.InputMint)
	query.Set("outputMint", req.OutputMint)
	query.Set("amount", strconv.FormatUint(req.Amount, 10))
	query.Set("onlyDirectRoutes", strconv.FormatBool(req.OnlyDirectRoutes))
	query.Set("slippageBps", strconv.FormatUint(uint64(req.SlippageBps), 10))
	if req.MaxAccounts > 0 {
		query.Set("maxAccounts", strconv.Itoa(req.MaxAccounts))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/quote?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var quote domain.Quote
	if err := c.do(httpReq, &quote); err != nil {
		return nil, fmt.Errorf("quote %s->%s: %w", req.InputMint, req.OutputMint, err)
	}
	return &quote, nil
}

// GetSwapInstructions asks the aggregator to decompose a quote into
// instructions.
func (c *Client) GetSwapInstructions(ctx context.Context, req *domain.SwapInstructionsRequest) (*domain.SwapInstructions, error) {
	if req.QuoteResponse == nil {
		return nil, fmt.Errorf("quoteResponse is required")
	}
	if req.UserPublicKey == "" {
		return nil, fmt.Errorf("userPublicKey is required")
	}

	body, err := sonic.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/swap-instructions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var out domain.SwapInstructions
	if err := c.do(httpReq, &out); err != nil {
		return nil, fmt.Errorf("swap instructions: %w", err)
	}
	return &out, nil
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", common.ErrNetwork, err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var eb errorBody
		if sonic.Unmarshal(body, &eb) == nil && eb.Error != "" {
			apiErr.Message = eb.Error
			apiErr.Code = eb.ErrorCode
		} else {
			apiErr.Message = truncate(string(body), maxErrorBody)
		}
		return apiErr
	}

	if err := sonic.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: parse response: %v", common.ErrNetwork, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
