package mcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	assistant "github.com/Protocol-Lattice/go-assistant"
)

type echoTool struct {
	assistant.ToolBase
	name string
}

func (t echoTool) Spec() assistant.ToolSpec {
	return assistant.ToolSpec{
		Name:        t.name,
		Description: "devolve o texto recebido",
		Params: []assistant.Param{
			{Name: "texto", Type: "string", Required: true},
		},
	}
}

func (t echoTool) Validate(args map[string]any) bool {
	_, ok := assistant.TextArg(args, "texto")
	return ok
}

func (t echoTool) Execute(_ context.Context, args map[string]any) (assistant.ToolResult, error) {
	texto, _ := assistant.TextArg(args, "texto")
	return assistant.NewResponse("eco").
		WithInput("texto", texto).
		WithResult("eco", texto).
		WithSummaryf("eco de '%s'", texto).
		Build()
}

// startSession wires a server and a client over an in-process pipe. The
// returned cleanup shuts the session down and waits for Serve to return.
func startSession(t *testing.T, registry *assistant.Registry, pageSize int) (*Client, func()) {
	t.Helper()

	server, err := NewServer(registry, ServerInfo{Name: "test-tools", Version: "0.1.0"}, pageSize)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	clientEnd, serverEnd := NewPipe()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.Serve(context.Background(), serverEnd); err != nil {
			t.Errorf("Serve: %v", err)
		}
	}()

	client, err := NewClient(context.Background(), clientEnd, Options{})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	return client, func() {
		_ = client.Shutdown(context.Background())
		_ = client.Close()
		wg.Wait()
	}
}

func TestHandshakeCapturesServerInfo(t *testing.T) {
	client, done := startSession(t, assistant.NewRegistry(), 0)
	defer done()

	info := client.Server()
	if info.Name != "test-tools" || info.Version != "0.1.0" {
		t.Fatalf("Server() = %+v", info)
	}
}

func TestListToolsFollowsPagination(t *testing.T) {
	registry := assistant.NewRegistry()
	var want []string
	for i := 0; i < 7; i++ {
		name := fmt.Sprintf("ferramenta%d", i)
		want = append(want, name)
		if err := registry.Register(echoTool{name: name}); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}

	// Page size 3 forces three round-trips.
	client, done := startSession(t, registry, 3)
	defer done()

	defs, err := client.ListTools(context.Background())
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	if len(defs) != len(want) {
		t.Fatalf("got %d tools, want %d", len(defs), len(want))
	}
	for i, def := range defs {
		if def.Name != want[i] {
			t.Fatalf("defs[%d].Name = %q, want %q", i, def.Name, want[i])
		}
		if len(def.InputSchema) == 0 {
			t.Fatalf("defs[%d] carries no schema", i)
		}
	}
}

func TestCallToolSuccess(t *testing.T) {
	registry := assistant.NewRegistry()
	if err := registry.Register(echoTool{name: "eco"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	client, done := startSession(t, registry, 0)
	defer done()

	result, err := client.CallTool(context.Background(), "eco", map[string]any{"texto": "olá"})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if result.IsError {
		t.Fatal("IsError = true")
	}
	if result.Text() != "eco de 'olá'" {
		t.Fatalf("Text() = %q", result.Text())
	}
	if !strings.Contains(result.JSON(), `"eco"`) {
		t.Fatalf("JSON() = %q", result.JSON())
	}
}

func TestCallToolFaultComesBackAsErrorResult(t *testing.T) {
	client, done := startSession(t, assistant.NewRegistry(), 0)
	defer done()

	result, err := client.CallTool(context.Background(), "fantasma", nil)
	if err == nil {
		t.Fatal("expected an error for an unknown tool")
	}
	if !result.IsError {
		t.Fatal("result.IsError = false; tool faults must be flagged results, not protocol errors")
	}
	if !strings.Contains(err.Error(), "unknown tool") {
		t.Fatalf("err = %v", err)
	}
}

func TestUnknownMethod(t *testing.T) {
	client, done := startSession(t, assistant.NewRegistry(), 0)
	defer done()

	err := client.call(context.Background(), "tools/rename", nil, &struct{}{})
	if err == nil || !strings.Contains(err.Error(), "method not found") {
		t.Fatalf("err = %v", err)
	}
}

func TestDiscoverRegistersRemoteTools(t *testing.T) {
	serverRegistry := assistant.NewRegistry()
	if err := serverRegistry.Register(echoTool{name: "eco"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	client, done := startSession(t, serverRegistry, 0)
	defer done()

	localRegistry := assistant.NewRegistry()
	names, err := Discover(context.Background(), client, localRegistry)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(names) != 1 || names[0] != "eco" {
		t.Fatalf("names = %v", names)
	}

	// Remote dispatch must look exactly like local dispatch: the result
	// envelope passes through unchanged.
	d := assistant.NewDispatcher(localRegistry, 0)
	result := d.Dispatch(context.Background(), assistant.ToolCallRequest{
		Name:      "eco",
		Arguments: map[string]any{"texto": "mundo"},
	})
	if !result.OK() {
		t.Fatalf("result = %+v", result)
	}
	if result.Operation != "eco" {
		t.Fatalf("Operation = %q", result.Operation)
	}
	if result.Payload["eco"] != "mundo" {
		t.Fatalf("Payload = %v", result.Payload)
	}
	if result.Summary != "eco de 'mundo'" {
		t.Fatalf("Summary = %q", result.Summary)
	}
}

type scriptedInvoker struct {
	result CallResult
	err    error
}

func (s scriptedInvoker) CallTool(context.Context, string, map[string]any) (CallResult, error) {
	return s.result, s.err
}

func TestRemoteToolWrapsForeignOutput(t *testing.T) {
	tool := NewRemoteTool(scriptedInvoker{
		result: CallResult{Content: []Content{{Type: "text", Text: "42"}}},
	}, ToolDefinition{Name: "resposta"})

	result, err := tool.Execute(context.Background(), map[string]any{"pergunta": "tudo"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Payload["output"] != "42" {
		t.Fatalf("Payload = %v", result.Payload)
	}
	if result.Input["pergunta"] != "tudo" {
		t.Fatalf("Input = %v", result.Input)
	}
}

func TestRemoteToolPropagatesCallFailure(t *testing.T) {
	tool := NewRemoteTool(scriptedInvoker{err: errors.New("conexão recusada")}, ToolDefinition{Name: "fora"})

	_, err := tool.Execute(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "conexão recusada") {
		t.Fatalf("err = %v", err)
	}
}

func TestStreamTransportFraming(t *testing.T) {
	var buf bytes.Buffer
	out := NewStreamTransport(strings.NewReader(""), &buf)

	payload := []byte(`{"jsonrpc":"2.0","id":"1","method":"initialize"}`)
	if err := out.Send(context.Background(), payload); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !strings.HasPrefix(buf.String(), fmt.Sprintf("Content-Length: %d\r\n\r\n", len(payload))) {
		t.Fatalf("framed output = %q", buf.String())
	}

	in := NewStreamTransport(bytes.NewReader(buf.Bytes()), &bytes.Buffer{})
	got, err := in.Receive(context.Background())
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("Receive = %q, want %q", got, payload)
	}
}

func TestPipeDrainsAfterPeerClose(t *testing.T) {
	a, b := NewPipe()

	if err := a.Send(context.Background(), []byte("last words")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	msg, err := b.Receive(context.Background())
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if string(msg) != "last words" {
		t.Fatalf("msg = %q", msg)
	}

	if _, err := b.Receive(context.Background()); !errors.Is(err, io.EOF) {
		t.Fatalf("Receive after drain = %v, want io.EOF", err)
	}
}
