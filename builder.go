package assistant

import (
	"fmt"
	"strings"
)

// ResponseBuilder accumulates a tool's heterogeneous output into the
// normalized ToolResult envelope. The three accumulation operations may be
// applied in any order; Build fails when no result payload was recorded.
// Builders are single-use.
type ResponseBuilder struct {
	operation string
	input     map[string]any
	payload   map[string]any
	summary   string
}

// NewResponse starts a builder for the named operation.
func NewResponse(operation string) *ResponseBuilder {
	return &ResponseBuilder{operation: strings.TrimSpace(operation)}
}

// WithInput records one argument the tool actually used.
func (b *ResponseBuilder) WithInput(key string, value any) *ResponseBuilder {
	if b.input == nil {
		b.input = make(map[string]any)
	}
	b.input[key] = value
	return b
}

// WithResult records one entry of the tool-specific result payload.
func (b *ResponseBuilder) WithResult(key string, value any) *ResponseBuilder {
	if b.payload == nil {
		b.payload = make(map[string]any)
	}
	b.payload[key] = value
	return b
}

// WithSummary records the human-readable summary as-is. Optional; Build
// derives a default from the operation label when omitted.
func (b *ResponseBuilder) WithSummary(summary string) *ResponseBuilder {
	b.summary = summary
	return b
}

// WithSummaryf is WithSummary with Sprintf formatting.
func (b *ResponseBuilder) WithSummaryf(format string, args ...any) *ResponseBuilder {
	b.summary = fmt.Sprintf(format, args...)
	return b
}

// Build finalizes the envelope. It fails with ErrIncompleteResponse when no
// result payload was ever recorded.
func (b *ResponseBuilder) Build() (ToolResult, error) {
	if len(b.payload) == 0 {
		return ToolResult{}, fmt.Errorf("%w: operation %q", ErrIncompleteResponse, b.operation)
	}
	summary := b.summary
	if strings.TrimSpace(summary) == "" {
		summary = fmt.Sprintf("operation %s completed", b.operation)
	}
	return ToolResult{
		Status:    StatusOK,
		Operation: b.operation,
		Input:     b.input,
		Payload:   b.payload,
		Summary:   summary,
	}, nil
}
