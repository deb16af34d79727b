package models

import (
	"context"
	"errors"
)

// Chat roles used in the provider-neutral transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ErrEndpoint marks any failure of the inference endpoint itself: transport
// errors, provider error statuses, empty or malformed responses. Callers
// treat it as terminal for the current run.
var ErrEndpoint = errors.New("inference endpoint failure")

// Message is one turn of the transcript sent to a provider. Assistant turns
// that requested tools carry ToolCalls; tool-result turns carry the ID and
// name of the call they answer.
type Message struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
	ToolName   string
}

// ToolCall is one tool invocation requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// ToolSpec advertises one callable tool to the model. InputSchema is a JSON
// Schema object describing the accepted arguments.
type ToolSpec struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// Request is a single model round-trip: system instructions, the transcript
// so far and the tools the model may call.
type Request struct {
	System    string
	Messages  []Message
	Tools     []ToolSpec
	MaxTokens int
}

// Completion is what the model answered: final text, or one or more tool
// calls, or (rarely) both.
type Completion struct {
	Text      string
	ToolCalls []ToolCall
}

// Agent abstracts an inference endpoint. Implementations translate the
// neutral Request into their provider's wire format and back.
type Agent interface {
	Invoke(ctx context.Context, req Request) (*Completion, error)
}
