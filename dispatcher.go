package assistant

import (
	"context"
	"fmt"

	"github.com/Protocol-Lattice/go-assistant/src/concurrent"
)

// Dispatcher resolves, validates and executes model-issued tool calls. It is
// the single place faults are absorbed: a hallucinated tool name, rejected
// arguments, a returned error or a panicking tool all degrade to an error
// ToolResult the model can see, never to a terminated run.
type Dispatcher struct {
	registry    *Registry
	concurrency int
}

// NewDispatcher builds a dispatcher over the registry. maxConcurrency bounds
// how many calls of one batch run in parallel; values below one fall back to
// a small default.
func NewDispatcher(registry *Registry, maxConcurrency int) *Dispatcher {
	if maxConcurrency <= 0 {
		maxConcurrency = 4
	}
	return &Dispatcher{registry: registry, concurrency: maxConcurrency}
}

// Dispatch executes one tool call and always returns a well-formed result.
func (d *Dispatcher) Dispatch(ctx context.Context, req ToolCallRequest) ToolResult {
	tool, err := d.registry.Get(req.Name)
	if err != nil {
		return errorResult(req, fmt.Sprintf("unknown tool %s", req.Name))
	}

	if !tool.Validate(req.Arguments) {
		return errorResult(req, fmt.Sprintf("invalid arguments for tool %s", req.Name))
	}

	result, err := d.execute(ctx, tool, req)
	if err != nil {
		return errorResult(req, err.Error())
	}
	if result.Operation == "" {
		result.Operation = req.Name
	}
	return result
}

// DispatchAll executes a batch of tool calls requested in the same model
// turn. Calls have no ordering dependency on each other, so they run
// concurrently; results come back in request order and the batch is joined
// before returning.
func (d *Dispatcher) DispatchAll(ctx context.Context, reqs []ToolCallRequest) []ToolResult {
	if len(reqs) == 0 {
		return nil
	}
	if len(reqs) == 1 {
		return []ToolResult{d.Dispatch(ctx, reqs[0])}
	}

	results, err := concurrent.ParallelMap(ctx, reqs, func(req ToolCallRequest) (ToolResult, error) {
		return d.Dispatch(ctx, req), nil
	}, d.concurrency)
	if err != nil {
		// Context expired mid-batch. Entries the pool never ran are still
		// zero; replace them with proper error envelopes.
		for i := range results {
			if results[i].Status == "" {
				results[i] = errorResult(reqs[i], err.Error())
			}
		}
	}
	return results
}

// execute shields the orchestration loop from panicking tools.
func (d *Dispatcher) execute(ctx context.Context, tool Tool, req ToolCallRequest) (result ToolResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic in tool %s: %v", ErrToolExecution, req.Name, r)
		}
	}()

	result, err = tool.Execute(ctx, req.Arguments)
	if err != nil {
		return ToolResult{}, fmt.Errorf("%w: %v", ErrToolExecution, err)
	}
	return result, nil
}

func errorResult(req ToolCallRequest, detail string) ToolResult {
	return ToolResult{
		Status:      StatusError,
		Operation:   req.Name,
		Input:       req.Arguments,
		ErrorDetail: detail,
	}
}
