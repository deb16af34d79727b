package assistant

import "context"

// Tool is the capability contract every callable tool implements.
//
// Spec must be pure and deterministic. Validate is a pure predicate over the
// raw arguments; it rejects missing required arguments, out-of-range numbers
// and empty required strings. Execute may have side effects (HTTP lookups,
// hashing) and is free to return an error or even panic: the dispatch
// boundary, not the tool, converts faults into error ToolResults.
type Tool interface {
	Spec() ToolSpec
	Validate(args map[string]any) bool
	Execute(ctx context.Context, args map[string]any) (ToolResult, error)
}

// ToolBase provides the permissive default Validate. Tools embed it and
// override Validate only when they have something to check.
type ToolBase struct{}

// Validate accepts any arguments.
func (ToolBase) Validate(map[string]any) bool { return true }
