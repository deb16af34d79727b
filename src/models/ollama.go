package models

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	ollama "github.com/ollama/ollama/api"
)

// OllamaLLM talks to a local Ollama server through its chat API with tool
// support.
type OllamaLLM struct {
	Client *ollama.Client
	Model  string
}

func NewOllamaLLM(model string) (*OllamaLLM, error) {
	host := os.Getenv("OLLAMA_HOST")
	if host == "" {
		host = "http://localhost:11434"
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid OLLAMA_HOST %q: %w", host, err)
	}

	httpClient := &http.Client{Timeout: 60 * time.Second}
	return &OllamaLLM{Client: ollama.NewClient(u, httpClient), Model: model}, nil
}

func (o *OllamaLLM) Invoke(ctx context.Context, req Request) (*Completion, error) {
	msgs := make([]ollama.Message, 0, len(req.Messages)+1)
	if req.System != "" {
		msgs = append(msgs, ollama.Message{Role: "system", Content: req.System})
	}
	for _, m := range req.Messages {
		om := ollama.Message{Role: m.Role, Content: m.Content}
		for _, tc := range m.ToolCalls {
			om.ToolCalls = append(om.ToolCalls, ollama.ToolCall{
				Function: ollama.ToolCallFunction{
					Name:      tc.Name,
					Arguments: ollama.ToolCallFunctionArguments(tc.Arguments),
				},
			})
		}
		msgs = append(msgs, om)
	}

	var tools ollama.Tools
	for _, spec := range req.Tools {
		tools = append(tools, ollamaTool(spec))
	}

	stream := false
	chatReq := &ollama.ChatRequest{
		Model:    o.Model,
		Messages: msgs,
		Tools:    tools,
		Stream:   &stream,
	}

	var last ollama.ChatResponse
	if err := o.Client.Chat(ctx, chatReq, func(cr ollama.ChatResponse) error {
		last = cr
		return nil
	}); err != nil {
		return nil, fmt.Errorf("%w: ollama: %v", ErrEndpoint, err)
	}

	out := &Completion{Text: last.Message.Content}
	for i, tc := range last.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:        fmt.Sprintf("call_%d", i+1), // Ollama carries no call IDs
			Name:      tc.Function.Name,
			Arguments: map[string]any(tc.Function.Arguments),
		})
	}
	return out, nil
}

func ollamaTool(spec ToolSpec) ollama.Tool {
	tool := ollama.Tool{Type: "function"}
	tool.Function.Name = spec.Name
	tool.Function.Description = spec.Description
	tool.Function.Parameters.Type = "object"

	switch required := spec.InputSchema["required"].(type) {
	case []string:
		tool.Function.Parameters.Required = required
	case []any:
		for _, r := range required {
			if s, ok := r.(string); ok {
				tool.Function.Parameters.Required = append(tool.Function.Parameters.Required, s)
			}
		}
	}

	props, _ := spec.InputSchema["properties"].(map[string]any)
	if len(props) == 0 {
		return tool
	}
	tool.Function.Parameters.Properties = make(map[string]ollama.ToolProperty, len(props))
	for name, raw := range props {
		prop, _ := raw.(map[string]any)
		tp := ollama.ToolProperty{}
		if t, ok := prop["type"].(string); ok {
			tp.Type = ollama.PropertyType{t}
		}
		if desc, ok := prop["description"].(string); ok {
			tp.Description = desc
		}
		switch enum := prop["enum"].(type) {
		case []any:
			tp.Enum = enum
		case []string:
			for _, e := range enum {
				tp.Enum = append(tp.Enum, e)
			}
		}
		tool.Function.Parameters.Properties[name] = tp
	}
	return tool
}
