package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Client is a JSON-RPC 2.0 client for Solana nodes with prioritized
// endpoint failover. Each call is bounded by its own timeout via a
// per-request context deadline, not the transport default, so one slow
// endpoint cannot stall a request: on timeout or error we fall through
// to the next endpoint in the list.
type Client struct {
	endpoints  []string
	timeout    time.Duration
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(endpoints []string, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Client{
		endpoints:  endpoints,
		timeout:    timeout,
		httpClient: &http.Client{},
		log:        log,
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// Call tries each configured endpoint in order and returns the first
// non-error JSON-RPC result. Only exhaustion of every endpoint surfaces
// as an error.
func (c *Client) Call(ctx context.Context, method string, params []any, out any) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return err
	}

	var lastErr error
	for _, endpoint := range c.endpoints {
		result, err := c.callOne(ctx, endpoint, body)
		if err != nil {
			c.log.Debug("rpc endpoint failed, trying next",
				zap.String("endpoint", endpoint),
				zap.String("method", method),
				zap.Error(err),
			)
			lastErr = err
			continue
		}
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(result, out); err != nil {
			lastErr = fmt.Errorf("decode %s result: %w", method, err)
			continue
		}
		return nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no rpc endpoints configured")
	}
	return fmt.Errorf("all rpc endpoints failed for %s: %w", method, lastErr)
}

func (c *Client) callOne(ctx context.Context, endpoint string, body []byte) (json.RawMessage, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rpc endpoint returned %d", resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, err
	}
	if rpcResp.Error != nil {
		return nil, fmt.Errorf("rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}
	return rpcResp.Result, nil
}
