package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"

	"github.com/tidwall/gjson"
)

var ErrTransactionNotFound = errors.New("transaction not found")

// TransportError reports that the RPC node could not be asked or answered with an error,
// as opposed to a transaction that simply does not qualify.
type TransportError struct {
	Method     string
	StatusCode int
	RPCCode    int64
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("solana rpc %s: %v", e.Method, e.Err)
	case e.RPCCode != 0:
		return fmt.Sprintf("solana rpc %s: error %d: %s", e.Method, e.RPCCode, e.Message)
	default:
		return fmt.Sprintf("solana rpc %s: http %d: %s", e.Method, e.StatusCode, e.Message)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Client is a minimal Solana JSON-RPC 2.0 client.
type Client struct {
	rpcURL     string
	httpClient *http.Client
	nextID     atomic.Uint64
}

func NewClient(rpcURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		rpcURL:     rpcURL,
		httpClient: httpClient,
	}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

// GetTransaction fetches a confirmed transaction in jsonParsed encoding.
func (c *Client) GetTransaction(ctx context.Context, signature string) (gjson.Result, error) {
	result, err := c.call(ctx, "getTransaction", signature, map[string]interface{}{
		"encoding":                       "jsonParsed",
		"commitment":                     "confirmed",
		"maxSupportedTransactionVersion": 0,
	})
	if err != nil {
		return gjson.Result{}, err
	}
	if !result.Exists() || result.Type == gjson.Null {
		return gjson.Result{}, ErrTransactionNotFound
	}

	return result, nil
}

func (c *Client) call(ctx context.Context, method string, params ...interface{}) (gjson.Result, error) {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return gjson.Result{}, fmt.Errorf("json.Marshal -> %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(payload))
	if err != nil {
		return gjson.Result{}, &TransportError{Method: method, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, &TransportError{Method: method, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return gjson.Result{}, &TransportError{Method: method, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return gjson.Result{}, &TransportError{Method: method, StatusCode: resp.StatusCode, Message: string(body)}
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, &TransportError{Method: method, StatusCode: resp.StatusCode, Message: "invalid JSON response"}
	}

	parsed := gjson.ParseBytes(body)
	if rpcErr := parsed.Get("error"); rpcErr.Exists() && rpcErr.Type != gjson.Null {
		return gjson.Result{}, &TransportError{
			Method:     method,
			StatusCode: resp.StatusCode,
			RPCCode:    rpcErr.Get("code").Int(),
			Message:    rpcErr.Get("message").String(),
		}
	}

	return parsed.Get("result"), nil
}
