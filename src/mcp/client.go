// Package mcp implements the decoupled tool surface of the assistant over the
// Model Context Protocol: a JSON-RPC client for consuming remote tool
// servers, a server that exposes a local registry, and an adapter that folds
// discovered remote tools back into the dispatch path.
package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// protocolVersion tracks the MCP release the client speaks by default.
// Servers may accept a range; tests can override through Options.
const protocolVersion = "2024-05-01"

// ClientInfo identifies the calling application during the initialize
// handshake.
type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ServerInfo is the server metadata captured during the handshake.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Options control session establishment.
type Options struct {
	ClientInfo      ClientInfo
	Capabilities    map[string]any
	ProtocolVersion string
}

// ToolDefinition mirrors the subset of the MCP tool schema the assistant
// needs.
type ToolDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}

// Content is one content part of a tool invocation result.
type Content struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
	MimeType string          `json:"mimeType,omitempty"`
}

// CallResult is the structured output of a tools/call round-trip.
type CallResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// Text joins the text parts of the result, newline separated.
func (r CallResult) Text() string {
	var segments []string
	for _, part := range r.Content {
		if part.Type != "text" {
			continue
		}
		if trimmed := strings.TrimSpace(part.Text); trimmed != "" {
			segments = append(segments, trimmed)
		}
	}
	return strings.Join(segments, "\n")
}

// JSON returns the first JSON payload in the result, pretty printed.
func (r CallResult) JSON() string {
	for _, part := range r.Content {
		if part.Type != "json" || len(part.Data) == 0 {
			continue
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, part.Data, "", "  "); err != nil {
			return string(part.Data)
		}
		return buf.String()
	}
	return ""
}

// PrimaryText prefers the text parts and falls back to the JSON payload.
func (r CallResult) PrimaryText() string {
	if txt := r.Text(); txt != "" {
		return txt
	}
	return r.JSON()
}

// Transport moves raw JSON-RPC payloads between the two ends of a session.
type Transport interface {
	Send(ctx context.Context, payload []byte) error
	Receive(ctx context.Context) ([]byte, error)
	Close() error
}

// Client speaks the tooling subset of MCP: initialize, tools/list,
// tools/call and shutdown.
type Client struct {
	transport    Transport
	info         ClientInfo
	capabilities map[string]any
	protoVersion string

	idCounter atomic.Uint64
	mu        sync.Mutex
	closed    atomic.Bool

	serverInfo ServerInfo
}

// NewClient performs the initialize handshake over transport. On handshake
// failure the transport is closed.
func NewClient(ctx context.Context, transport Transport, opts Options) (*Client, error) {
	if transport == nil {
		return nil, errors.New("mcp: transport is nil")
	}

	info := opts.ClientInfo
	if strings.TrimSpace(info.Name) == "" {
		info.Name = "go-assistant"
	}
	if strings.TrimSpace(info.Version) == "" {
		info.Version = "dev"
	}

	caps := opts.Capabilities
	if caps == nil {
		caps = map[string]any{
			"tools": map[string]bool{"list": true, "call": true},
		}
	}

	proto := opts.ProtocolVersion
	if strings.TrimSpace(proto) == "" {
		proto = protocolVersion
	}

	client := &Client{
		transport:    transport,
		info:         info,
		capabilities: caps,
		protoVersion: proto,
	}
	if err := client.initialize(ctx); err != nil {
		transport.Close()
		return nil, err
	}
	return client, nil
}

// Close releases the transport. Idempotent.
func (c *Client) Close() error {
	if c == nil || c.closed.Load() {
		return nil
	}
	c.closed.Store(true)
	return c.transport.Close()
}

// Server returns the metadata captured during the handshake.
func (c *Client) Server() ServerInfo {
	if c == nil {
		return ServerInfo{}
	}
	return c.serverInfo
}

// ListTools fetches the server's complete tool list, following pagination
// cursors transparently.
func (c *Client) ListTools(ctx context.Context) ([]ToolDefinition, error) {
	if err := c.ensureOpen(); err != nil {
		return nil, err
	}

	var (
		cursor string
		tools  []ToolDefinition
	)
	for {
		params := map[string]any{}
		if cursor != "" {
			params["cursor"] = cursor
		}

		var resp struct {
			Tools      []ToolDefinition `json:"tools"`
			NextCursor string           `json:"nextCursor,omitempty"`
		}
		if err := c.call(ctx, "tools/list", params, &resp); err != nil {
			return nil, err
		}

		tools = append(tools, resp.Tools...)
		if strings.TrimSpace(resp.NextCursor) == "" {
			break
		}
		cursor = resp.NextCursor
	}
	return tools, nil
}

// CallTool invokes a named tool. When the server marks the result as an
// error, the returned error carries the tool's textual output and the result
// is still returned for inspection.
func (c *Client) CallTool(ctx context.Context, name string, arguments map[string]any) (CallResult, error) {
	if err := c.ensureOpen(); err != nil {
		return CallResult{}, err
	}
	if strings.TrimSpace(name) == "" {
		return CallResult{}, errors.New("mcp: tool name is required")
	}

	params := map[string]any{"name": name}
	if len(arguments) > 0 {
		params["arguments"] = arguments
	}

	var result CallResult
	if err := c.call(ctx, "tools/call", params, &result); err != nil {
		return CallResult{}, err
	}
	if result.IsError {
		message := strings.TrimSpace(result.PrimaryText())
		if message == "" {
			message = "tool reported an error"
		}
		return result, fmt.Errorf("mcp: tool %s failed: %s", name, message)
	}
	return result, nil
}

// Shutdown tells the server the session is ending. Best effort.
func (c *Client) Shutdown(ctx context.Context) error {
	if err := c.ensureOpen(); err != nil {
		return err
	}
	return c.call(ctx, "shutdown", map[string]any{}, &struct{}{})
}

func (c *Client) ensureOpen() error {
	if c == nil {
		return errors.New("mcp: client is nil")
	}
	if c.closed.Load() {
		return errors.New("mcp: client has been closed")
	}
	return nil
}

func (c *Client) initialize(ctx context.Context) error {
	params := map[string]any{
		"protocolVersion": c.protoVersion,
		"clientInfo":      c.info,
		"capabilities":    c.capabilities,
	}

	var resp struct {
		ProtocolVersion string     `json:"protocolVersion"`
		ServerInfo      ServerInfo `json:"serverInfo"`
	}
	if err := c.call(ctx, "initialize", params, &resp); err != nil {
		return err
	}
	c.serverInfo = resp.ServerInfo
	return nil
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type responseEnvelope struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *string         `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type rpcError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (c *Client) call(ctx context.Context, method string, params any, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}

	id := strconv.FormatUint(c.idCounter.Add(1), 10)
	payload, err := json.Marshal(request{JSONRPC: "2.0", ID: id, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("mcp: marshal request: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if c.closed.Load() {
		return errors.New("mcp: client has been closed")
	}
	if err := c.transport.Send(ctx, payload); err != nil {
		return err
	}

	for {
		msg, err := c.transport.Receive(ctx)
		if err != nil {
			return err
		}

		var env responseEnvelope
		if err := json.Unmarshal(msg, &env); err != nil {
			return fmt.Errorf("mcp: decode response: %w", err)
		}
		if env.Method != "" {
			// Server notification; keep waiting for our response.
			continue
		}
		if env.ID == nil || *env.ID != id {
			continue
		}
		if env.Error != nil {
			return errors.New(env.Error.Message)
		}
		if out != nil && len(env.Result) > 0 {
			if err := json.Unmarshal(env.Result, out); err != nil {
				return fmt.Errorf("mcp: decode result: %w", err)
			}
		}
		return nil
	}
}
