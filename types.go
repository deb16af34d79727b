// Package assistant implements the tool-invocation core of a conversational
// assistant: a registry that advertises callable tools to a language model,
// a dispatcher that validates and executes model-selected tool calls, and an
// orchestrator that drives the request/response loop with the inference
// endpoint until a final answer is produced.
package assistant

import (
	"strings"
)

// Param describes one tool parameter. The ordered parameter list of a
// ToolSpec is rendered into a JSON schema when the tool is advertised.
type Param struct {
	Name        string
	Type        string
	Description string
	Required    bool
	Default     any
	Enum        []string
}

// ToolSpec is the immutable descriptor a tool advertises to the model.
// Name must be unique within a registry and is never mutated after
// registration.
type ToolSpec struct {
	Name        string
	Description string
	Params      []Param

	// Schema, when set, overrides the schema derived from Params. Remote
	// tools discovered over MCP or UTCP carry their server-provided schema
	// here verbatim.
	Schema map[string]any
}

// InputSchema renders the spec as a JSON-schema object suitable for the
// model's tool-advertisement payload.
func (s ToolSpec) InputSchema() map[string]any {
	if s.Schema != nil {
		return s.Schema
	}

	properties := make(map[string]any, len(s.Params))
	var required []string
	for _, p := range s.Params {
		prop := map[string]any{"type": p.Type}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		if p.Default != nil {
			prop["default"] = p.Default
		}
		if len(p.Enum) > 0 {
			values := make([]any, 0, len(p.Enum))
			for _, v := range p.Enum {
				values = append(values, v)
			}
			prop["enum"] = values
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// ToolCallRequest is a model-issued request to execute a tool. Arguments are
// raw and untyped; validation happens at dispatch time.
type ToolCallRequest struct {
	Name      string
	Arguments map[string]any
}

// Result statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ToolResult is the normalized envelope every tool execution produces.
// Exactly one of Payload and ErrorDetail is populated.
type ToolResult struct {
	Status      string         `json:"status"`
	Operation   string         `json:"operation"`
	Input       map[string]any `json:"input,omitempty"`
	Payload     map[string]any `json:"result,omitempty"`
	Summary     string         `json:"summary,omitempty"`
	ErrorDetail string         `json:"error,omitempty"`
}

// OK reports whether the execution succeeded.
func (r ToolResult) OK() bool { return r.Status == StatusOK }

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationTurn is one user or assistant message. The history is owned by
// the caller; a run treats it as immutable input and returns it augmented
// with the turns that completed.
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewUserTurn builds a user turn with trimmed content.
func NewUserTurn(content string) ConversationTurn {
	return ConversationTurn{Role: RoleUser, Content: strings.TrimSpace(content)}
}

// NewAssistantTurn builds an assistant turn.
func NewAssistantTurn(content string) ConversationTurn {
	return ConversationTurn{Role: RoleAssistant, Content: content}
}
