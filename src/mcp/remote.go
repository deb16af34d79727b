package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	assistant "github.com/Protocol-Lattice/go-assistant"
)

// Invoker is the slice of the client used by the remote tool wrapper.
type Invoker interface {
	CallTool(ctx context.Context, name string, arguments map[string]any) (CallResult, error)
}

// Lister is the slice of the client used by discovery.
type Lister interface {
	Invoker
	ListTools(ctx context.Context) ([]ToolDefinition, error)
}

// RemoteTool adapts one MCP server tool to the local tool contract. The
// server-provided schema is advertised verbatim; argument validation is the
// server's business.
type RemoteTool struct {
	assistant.ToolBase

	client Invoker
	spec   assistant.ToolSpec
}

// NewRemoteTool wraps the given tool definition.
func NewRemoteTool(client Invoker, def ToolDefinition) *RemoteTool {
	spec := assistant.ToolSpec{
		Name:        def.Name,
		Description: def.Description,
	}
	if len(def.InputSchema) > 0 {
		var schema map[string]any
		if err := json.Unmarshal(def.InputSchema, &schema); err == nil {
			spec.Schema = schema
		}
	}
	return &RemoteTool{client: client, spec: spec}
}

func (t *RemoteTool) Spec() assistant.ToolSpec { return t.spec }

// Execute calls the remote tool. When the server speaks this module's result
// envelope inside a JSON content part, the envelope passes through
// unchanged; otherwise the textual output is wrapped into a fresh one.
func (t *RemoteTool) Execute(ctx context.Context, args map[string]any) (assistant.ToolResult, error) {
	result, err := t.client.CallTool(ctx, t.spec.Name, args)
	if err != nil {
		return assistant.ToolResult{}, fmt.Errorf("mcp call %s: %w", t.spec.Name, err)
	}

	if envelope, ok := decodeEnvelope(result); ok {
		return envelope, nil
	}

	builder := assistant.NewResponse(t.spec.Name).
		WithResult("output", result.PrimaryText()).
		WithSummaryf("ferramenta remota %s executada", t.spec.Name)
	for key, value := range args {
		builder.WithInput(key, value)
	}
	return builder.Build()
}

func decodeEnvelope(result CallResult) (assistant.ToolResult, bool) {
	for _, part := range result.Content {
		if part.Type != "json" || len(part.Data) == 0 {
			continue
		}
		var envelope assistant.ToolResult
		if err := json.Unmarshal(part.Data, &envelope); err != nil {
			continue
		}
		if envelope.Status == assistant.StatusOK || envelope.Status == assistant.StatusError {
			return envelope, true
		}
	}
	return assistant.ToolResult{}, false
}

// Discover lists the server's tools and registers each on the registry.
// Returns the registered names in server order.
func Discover(ctx context.Context, client Lister, registry *assistant.Registry) ([]string, error) {
	defs, err := client.ListTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("mcp discovery: %w", err)
	}

	var names []string
	for _, def := range defs {
		if err := registry.Register(NewRemoteTool(client, def)); err != nil {
			return names, err
		}
		names = append(names, def.Name)
	}
	return names, nil
}
