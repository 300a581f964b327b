// Package odoo implements the JSON-RPC gateway to the backend ERP. Every
// remote operation goes through the single execute_kw envelope.
package odoo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// RemoteError carries the server-supplied message from an error-shaped
// JSON-RPC response.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote call failed: %s", e.Message)
}

type Config struct {
	Endpoint string
	Database string
	UserID   int
	APIKey   string
}

type Client struct {
	httpClient *http.Client
	cfg        Config
	seq        atomic.Int64
}

func NewClient(cfg Config) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		cfg:        cfg,
	}
	// Seed the request id so ids stay monotonic-ish across restarts.
	c.seq.Store(time.Now().UnixMilli())
	return c
}

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
	ID      int64     `json:"id"`
}

type rpcParams struct {
	Service string        `json:"service"`
	Method  string        `json:"method"`
	Args    []interface{} `json:"args"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Message string `json:"message"`
	Data    struct {
		Message string `json:"message"`
	} `json:"data"`
}

// Call posts one execute_kw envelope and returns the raw result. An
// error-shaped response becomes a RemoteError with the server's message.
func (c *Client) Call(ctx context.Context, model, method string, args []interface{}, kwargs map[string]interface{}) (json.RawMessage, error) {
	if kwargs == nil {
		kwargs = map[string]interface{}{}
	}

	payload := rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		Params: rpcParams{
			Service: "object",
			Method:  "execute_kw",
			Args: []interface{}{
				c.cfg.Database,
				c.cfg.UserID,
				c.cfg.APIKey,
				model,
				method,
				args,
				kwargs,
			},
		},
		ID: c.seq.Add(1),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post rpc request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &RemoteError{Message: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("decode rpc response: %w", err)
	}

	if rpcResp.Error != nil {
		message := rpcResp.Error.Data.Message
		if message == "" {
			message = rpcResp.Error.Message
		}
		return nil, &RemoteError{Message: message}
	}

	return rpcResp.Result, nil
}
