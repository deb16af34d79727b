package assistant

import (
	"errors"
	"fmt"
)

// Tool-level faults. These are absorbed at the dispatch boundary and turned
// into error ToolResults the model can see and recover from.
var (
	ErrUnknownTool      = errors.New("unknown tool")
	ErrInvalidArguments = errors.New("invalid arguments")
	ErrToolExecution    = errors.New("tool execution failed")
)

// Setup-time programmer errors. These fail fast during registration or
// response building rather than at request time.
var (
	ErrDuplicateTool      = errors.New("tool already registered")
	ErrIncompleteResponse = errors.New("response built without a result payload")
)

// Orchestration-level faults. These terminate the run with a FAILED status.
var (
	ErrStepLimitExceeded = errors.New("step limit exceeded")
)

// Machine-readable error kinds carried on the response envelope.
const (
	KindEndpoint  = "endpoint_error"
	KindStepLimit = "step_limit_exceeded"
	KindTimeout   = "timeout"
	KindCanceled  = "canceled"
	KindBadInput  = "invalid_request"
)

// RunError is the terminal failure of an orchestration run: a machine
// readable kind plus a human readable message, wrapping the underlying
// cause.
type RunError struct {
	Kind    string
	Message string
	cause   error
}

func newRunError(kind string, cause error) *RunError {
	return &RunError{Kind: kind, Message: cause.Error(), cause: cause}
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *RunError) Unwrap() error { return e.cause }
