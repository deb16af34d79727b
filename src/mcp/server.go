package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	assistant "github.com/Protocol-Lattice/go-assistant"
)

const defaultPageSize = 50

// Server exposes a tool registry over MCP JSON-RPC. Tool faults never become
// protocol errors: they come back as results flagged isError, so a remote
// orchestrator can feed them to its model the same way a local dispatch
// would.
type Server struct {
	registry   *assistant.Registry
	dispatcher *assistant.Dispatcher
	info       ServerInfo
	pageSize   int
}

// NewServer builds a server over registry. pageSize caps tools/list pages;
// zero means the default.
func NewServer(registry *assistant.Registry, info ServerInfo, pageSize int) (*Server, error) {
	if registry == nil {
		return nil, errors.New("mcp: registry is nil")
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if info.Name == "" {
		info.Name = "go-assistant-tools"
	}
	if info.Version == "" {
		info.Version = "dev"
	}
	return &Server{
		registry:   registry,
		dispatcher: assistant.NewDispatcher(registry, 0),
		info:       info,
		pageSize:   pageSize,
	}, nil
}

// Serve answers requests on transport until shutdown is requested, the
// transport closes or ctx ends.
func (s *Server) Serve(ctx context.Context, transport Transport) error {
	for {
		payload, err := transport.Receive(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
				return nil
			}
			return err
		}

		reply, shutdown := s.handle(ctx, payload)
		if reply != nil {
			if err := transport.Send(ctx, reply); err != nil {
				return err
			}
		}
		if shutdown {
			return nil
		}
	}
}

type incoming struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *string         `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

func (s *Server) handle(ctx context.Context, payload []byte) (reply []byte, shutdown bool) {
	var req incoming
	if err := json.Unmarshal(payload, &req); err != nil {
		return marshalError(nil, -32700, "parse error"), false
	}
	if req.ID == nil {
		// Notification; nothing to answer.
		return nil, false
	}

	switch req.Method {
	case "initialize":
		return marshalResult(req.ID, map[string]any{
			"protocolVersion": protocolVersion,
			"serverInfo":      s.info,
			"capabilities": map[string]any{
				"tools": map[string]bool{"list": true, "call": true},
			},
		}), false
	case "tools/list":
		return s.handleList(req), false
	case "tools/call":
		return s.handleCall(ctx, req), false
	case "shutdown":
		return marshalResult(req.ID, map[string]any{}), true
	default:
		return marshalError(req.ID, -32601, fmt.Sprintf("method not found: %s", req.Method)), false
	}
}

func (s *Server) handleList(req incoming) []byte {
	var params struct {
		Cursor string `json:"cursor"`
	}
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return marshalError(req.ID, -32602, "invalid params")
		}
	}

	specs := s.registry.Specs()
	start := 0
	if params.Cursor != "" {
		if _, err := fmt.Sscanf(params.Cursor, "%d", &start); err != nil || start < 0 || start > len(specs) {
			return marshalError(req.ID, -32602, "invalid cursor")
		}
	}

	end := start + s.pageSize
	if end > len(specs) {
		end = len(specs)
	}

	defs := make([]ToolDefinition, 0, end-start)
	for _, spec := range specs[start:end] {
		schema, err := json.Marshal(spec.InputSchema())
		if err != nil {
			return marshalError(req.ID, -32603, fmt.Sprintf("encode schema for %s", spec.Name))
		}
		defs = append(defs, ToolDefinition{
			Name:        spec.Name,
			Description: spec.Description,
			InputSchema: schema,
		})
	}

	result := map[string]any{"tools": defs}
	if end < len(specs) {
		result["nextCursor"] = fmt.Sprintf("%d", end)
	}
	return marshalResult(req.ID, result)
}

func (s *Server) handleCall(ctx context.Context, req incoming) []byte {
	var params struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
		return marshalError(req.ID, -32602, "invalid params: name is required")
	}

	result := s.dispatcher.Dispatch(ctx, assistant.ToolCallRequest{
		Name:      params.Name,
		Arguments: params.Arguments,
	})

	data, err := json.Marshal(result)
	if err != nil {
		return marshalError(req.ID, -32603, "encode tool result")
	}

	text := result.Summary
	if !result.OK() {
		text = result.ErrorDetail
	}
	return marshalResult(req.ID, CallResult{
		Content: []Content{
			{Type: "json", Data: data},
			{Type: "text", Text: text},
		},
		IsError: !result.OK(),
	})
}

func marshalResult(id *string, result any) []byte {
	payload, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	})
	if err != nil {
		return marshalError(id, -32603, "encode result")
	}
	return payload
}

func marshalError(id *string, code int, message string) []byte {
	payload, _ := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error":   map[string]any{"code": code, "message": message},
	})
	return payload
}
