package tools

import (
	"context"
	"fmt"
	"strings"

	json "github.com/alpkeskin/gotoon"
	"github.com/universal-tool-calling-protocol/go-utcp/src/providers/base"
	utcptools "github.com/universal-tool-calling-protocol/go-utcp/src/tools"

	assistant "github.com/Protocol-Lattice/go-assistant"
)

// UTCPInvoker is the slice of a UTCP client needed at call time.
type UTCPInvoker interface {
	CallTool(ctx context.Context, toolName string, args map[string]any) (any, error)
}

// UTCPSearcher is the slice of a UTCP client needed at discovery time.
type UTCPSearcher interface {
	UTCPInvoker
	SearchTools(query string, limit int) ([]utcptools.Tool, error)
}

// RemoteUTCPTool adapts one tool of a UTCP provider to the local tool
// contract. Validation is left to the remote side; the server-provided input
// schema is advertised verbatim.
type RemoteUTCPTool struct {
	assistant.ToolBase

	client UTCPInvoker
	name   string
	spec   assistant.ToolSpec
}

// NewRemoteUTCPTool wraps a discovered UTCP tool.
func NewRemoteUTCPTool(client UTCPInvoker, tool utcptools.Tool) *RemoteUTCPTool {
	schema := map[string]any{
		"type":       "object",
		"properties": tool.Inputs.Properties,
	}
	if len(tool.Inputs.Required) > 0 {
		schema["required"] = tool.Inputs.Required
	}
	return &RemoteUTCPTool{
		client: client,
		name:   tool.Name,
		spec: assistant.ToolSpec{
			Name:        sanitizeUTCPName(tool.Name),
			Description: tool.Description,
			Schema:      schema,
		},
	}
}

func (t *RemoteUTCPTool) Spec() assistant.ToolSpec { return t.spec }

func (t *RemoteUTCPTool) Execute(ctx context.Context, args map[string]any) (assistant.ToolResult, error) {
	out, err := t.client.CallTool(ctx, t.name, args)
	if err != nil {
		return assistant.ToolResult{}, fmt.Errorf("utcp call %s: %w", t.name, err)
	}

	builder := assistant.NewResponse(t.spec.Name).
		WithSummaryf("ferramenta remota %s executada", t.spec.Name)
	for key, value := range args {
		builder.WithInput(key, value)
	}
	if payload, ok := out.(map[string]any); ok {
		for key, value := range payload {
			builder.WithResult(key, value)
		}
	} else {
		builder.WithResult("output", out)
	}
	return builder.Build()
}

// DiscoverUTCP registers every tool the UTCP client can see on the registry.
// Returns the names registered, in discovery order.
func DiscoverUTCP(ctx context.Context, client UTCPSearcher, registry *assistant.Registry, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 100
	}
	remote, err := client.SearchTools("", limit)
	if err != nil {
		return nil, fmt.Errorf("utcp discovery: %w", err)
	}

	var names []string
	for _, tool := range remote {
		adapted := NewRemoteUTCPTool(client, tool)
		if err := registry.Register(adapted); err != nil {
			return names, err
		}
		names = append(names, adapted.Spec().Name)
	}
	return names, nil
}

// AsUTCPTool exposes a local tool as a UTCP tool with an in-process handler,
// so the assistant's tool set can be served to UTCP consumers.
func AsUTCPTool(tool assistant.Tool, providerName string) utcptools.Tool {
	spec := tool.Spec()
	schema := spec.InputSchema()

	inputs := utcptools.ToolInputOutputSchema{Type: "object"}
	if props, ok := schema["properties"].(map[string]any); ok {
		inputs.Properties = props
	}
	switch required := schema["required"].(type) {
	case []string:
		inputs.Required = required
	case []any:
		for _, r := range required {
			if s, ok := r.(string); ok {
				inputs.Required = append(inputs.Required, s)
			}
		}
	}

	return utcptools.Tool{
		Name:        spec.Name,
		Description: spec.Description,
		Provider: &base.BaseProvider{
			Name:         providerName,
			ProviderType: base.ProviderCLI, // in-process handler, no remote transport
		},
		Inputs: inputs,
		Outputs: utcptools.ToolInputOutputSchema{
			Type: "object",
			Properties: map[string]any{
				"status":    map[string]any{"type": "string"},
				"operation": map[string]any{"type": "string"},
				"result":    map[string]any{"type": "object"},
				"summary":   map[string]any{"type": "string"},
			},
		},
		// The handler context is UTCP's untyped bag, not a context.Context;
		// execution runs under Background.
		Handler: func(_ map[string]interface{}, inputs map[string]interface{}) (map[string]interface{}, error) {
			if !tool.Validate(inputs) {
				return nil, fmt.Errorf("invalid arguments for tool %s", spec.Name)
			}
			result, err := tool.Execute(context.Background(), inputs)
			if err != nil {
				return nil, err
			}
			return resultEnvelope(result)
		},
	}
}

// resultEnvelope flattens a ToolResult into the map shape UTCP handlers
// return.
func resultEnvelope(result assistant.ToolResult) (map[string]any, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode result for %s: %w", result.Operation, err)
	}
	envelope := map[string]any{}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode result for %s: %w", result.Operation, err)
	}
	return envelope, nil
}

// sanitizeUTCPName strips the provider prefix UTCP uses in qualified names.
func sanitizeUTCPName(name string) string {
	if idx := strings.LastIndex(name, "."); idx >= 0 && idx+1 < len(name) {
		return name[idx+1:]
	}
	return name
}
