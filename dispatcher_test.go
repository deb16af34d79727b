package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestDispatchUnknownToolIsAbsorbed(t *testing.T) {
	d := NewDispatcher(NewRegistry(), 0)

	result := d.Dispatch(context.Background(), ToolCallRequest{
		Name:      "inventada",
		Arguments: map[string]any{"texto": "oi"},
	})

	if result.OK() {
		t.Fatal("expected an error result for an unknown tool")
	}
	if result.Operation != "inventada" {
		t.Fatalf("Operation = %q, want %q", result.Operation, "inventada")
	}
	if !strings.Contains(result.ErrorDetail, "unknown tool") {
		t.Fatalf("ErrorDetail = %q, want unknown-tool detail", result.ErrorDetail)
	}
}

func TestDispatchRejectedArgumentsSkipExecution(t *testing.T) {
	tool := newStubTool("strict")
	tool.valid = false

	reg := NewRegistry()
	if err := reg.Register(tool); err != nil {
		t.Fatalf("Register: %v", err)
	}
	d := NewDispatcher(reg, 0)

	result := d.Dispatch(context.Background(), ToolCallRequest{Name: "strict"})

	if result.OK() {
		t.Fatal("expected an error result for rejected arguments")
	}
	if tool.executions != 0 {
		t.Fatalf("Execute ran %d times despite failed validation", tool.executions)
	}
	if !strings.Contains(result.ErrorDetail, "invalid arguments") {
		t.Fatalf("ErrorDetail = %q, want invalid-arguments detail", result.ErrorDetail)
	}
}

func TestDispatchExecutionErrorIsAbsorbed(t *testing.T) {
	tool := newStubTool("flaky")
	tool.err = errors.New("upstream unavailable")

	reg := NewRegistry()
	if err := reg.Register(tool); err != nil {
		t.Fatalf("Register: %v", err)
	}
	d := NewDispatcher(reg, 0)

	result := d.Dispatch(context.Background(), ToolCallRequest{Name: "flaky"})

	if result.OK() {
		t.Fatal("expected an error result")
	}
	if !strings.Contains(result.ErrorDetail, "upstream unavailable") {
		t.Fatalf("ErrorDetail = %q, want the execution error", result.ErrorDetail)
	}
}

func TestDispatchPanicIsAbsorbed(t *testing.T) {
	tool := newStubTool("wild")
	tool.panicMsg = "index out of range"

	reg := NewRegistry()
	if err := reg.Register(tool); err != nil {
		t.Fatalf("Register: %v", err)
	}
	d := NewDispatcher(reg, 0)

	result := d.Dispatch(context.Background(), ToolCallRequest{Name: "wild"})

	if result.OK() {
		t.Fatal("expected an error result for a panicking tool")
	}
	if !strings.Contains(result.ErrorDetail, "panic in tool wild") {
		t.Fatalf("ErrorDetail = %q, want panic detail", result.ErrorDetail)
	}
}

func TestDispatchFillsOperationFromRequest(t *testing.T) {
	tool := newStubTool("anon")
	tool.result.Operation = ""

	reg := NewRegistry()
	if err := reg.Register(tool); err != nil {
		t.Fatalf("Register: %v", err)
	}
	d := NewDispatcher(reg, 0)

	result := d.Dispatch(context.Background(), ToolCallRequest{Name: "anon"})
	if result.Operation != "anon" {
		t.Fatalf("Operation = %q, want %q", result.Operation, "anon")
	}
}

func TestDispatchAllPreservesRequestOrder(t *testing.T) {
	reg := NewRegistry()
	const n = 16
	for i := 0; i < n; i++ {
		tool := newStubTool(fmt.Sprintf("tool%d", i))
		if err := reg.Register(tool); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}
	d := NewDispatcher(reg, 3)

	reqs := make([]ToolCallRequest, n)
	for i := range reqs {
		reqs[i] = ToolCallRequest{Name: fmt.Sprintf("tool%d", i)}
	}

	results := d.DispatchAll(context.Background(), reqs)
	if len(results) != n {
		t.Fatalf("got %d results, want %d", len(results), n)
	}
	for i, result := range results {
		want := fmt.Sprintf("tool%d", i)
		if result.Operation != want {
			t.Fatalf("results[%d].Operation = %q, want %q", i, result.Operation, want)
		}
	}
}

func TestDispatchAllCanceledContextKeepsEnvelopesWellFormed(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(newStubTool("eco")); err != nil {
		t.Fatalf("Register: %v", err)
	}
	d := NewDispatcher(reg, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	const n = 8
	reqs := make([]ToolCallRequest, n)
	for i := range reqs {
		reqs[i] = ToolCallRequest{Name: "eco", Arguments: map[string]any{"texto": "oi"}}
	}

	results := d.DispatchAll(ctx, reqs)
	if len(results) != n {
		t.Fatalf("got %d results, want %d", len(results), n)
	}
	for i, result := range results {
		if result.Status != StatusOK && result.Status != StatusError {
			t.Fatalf("results[%d] has no status: %+v", i, result)
		}
		if result.Operation != "eco" {
			t.Fatalf("results[%d].Operation = %q, want %q", i, result.Operation, "eco")
		}
		if result.Status == StatusError && !strings.Contains(result.ErrorDetail, "context canceled") {
			t.Fatalf("results[%d].ErrorDetail = %q, want the cancellation cause", i, result.ErrorDetail)
		}
	}
}

func TestDispatchAllMixesSuccessesAndFaults(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(newStubTool("fine")); err != nil {
		t.Fatalf("Register: %v", err)
	}
	d := NewDispatcher(reg, 2)

	results := d.DispatchAll(context.Background(), []ToolCallRequest{
		{Name: "fine"},
		{Name: "ghost"},
	})

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if !results[0].OK() {
		t.Fatalf("results[0] = %+v, want success", results[0])
	}
	if results[1].OK() {
		t.Fatal("results[1] should be the unknown-tool fault")
	}
}
