package tools

import (
	"context"
	"errors"
	"strings"
	"testing"

	utcptools "github.com/universal-tool-calling-protocol/go-utcp/src/tools"

	assistant "github.com/Protocol-Lattice/go-assistant"
)

// scriptedUTCP stands in for a UTCP client: a fixed catalog and a canned
// call outcome.
type scriptedUTCP struct {
	catalog []utcptools.Tool
	out     any
	err     error

	called     string
	calledArgs map[string]any
}

func (s *scriptedUTCP) CallTool(_ context.Context, toolName string, args map[string]any) (any, error) {
	s.called = toolName
	s.calledArgs = args
	if s.err != nil {
		return nil, s.err
	}
	return s.out, nil
}

func (s *scriptedUTCP) SearchTools(_ string, limit int) ([]utcptools.Tool, error) {
	if limit < len(s.catalog) {
		return s.catalog[:limit], nil
	}
	return s.catalog, nil
}

func weatherCatalog() []utcptools.Tool {
	return []utcptools.Tool{{
		Name:        "clima.previsao",
		Description: "Previsão do tempo por cidade",
		Inputs: utcptools.ToolInputOutputSchema{
			Type: "object",
			Properties: map[string]any{
				"cidade": map[string]any{"type": "string"},
			},
			Required: []string{"cidade"},
		},
	}}
}

func TestDiscoverUTCPRegistersAndDispatches(t *testing.T) {
	client := &scriptedUTCP{
		catalog: weatherCatalog(),
		out:     map[string]any{"temperatura": 22.5, "condicao": "nublado"},
	}
	registry := assistant.NewRegistry()

	names, err := DiscoverUTCP(context.Background(), client, registry, 0)
	if err != nil {
		t.Fatalf("DiscoverUTCP: %v", err)
	}
	if len(names) != 1 || names[0] != "previsao" {
		t.Fatalf("names = %v, want [previsao]", names)
	}

	d := assistant.NewDispatcher(registry, 0)
	result := d.Dispatch(context.Background(), assistant.ToolCallRequest{
		Name:      "previsao",
		Arguments: map[string]any{"cidade": "Recife"},
	})

	if !result.OK() {
		t.Fatalf("result = %+v, want success", result)
	}
	if client.called != "clima.previsao" {
		t.Fatalf("CallTool saw %q, want the qualified remote name", client.called)
	}
	if client.calledArgs["cidade"] != "Recife" {
		t.Fatalf("CallTool args = %v", client.calledArgs)
	}
	if result.Payload["condicao"] != "nublado" {
		t.Fatalf("Payload = %v, want the remote map spread into it", result.Payload)
	}
}

func TestRemoteUTCPToolAdvertisesRemoteSchema(t *testing.T) {
	tool := NewRemoteUTCPTool(&scriptedUTCP{}, weatherCatalog()[0])

	spec := tool.Spec()
	if spec.Name != "previsao" {
		t.Fatalf("Name = %q, want the provider prefix stripped", spec.Name)
	}
	schema := spec.InputSchema()
	props, ok := schema["properties"].(map[string]any)
	if !ok || props["cidade"] == nil {
		t.Fatalf("schema = %v, want the remote properties verbatim", schema)
	}
	required, ok := schema["required"].([]string)
	if !ok || len(required) != 1 || required[0] != "cidade" {
		t.Fatalf("required = %v", schema["required"])
	}
}

func TestRemoteUTCPToolWrapsScalarOutput(t *testing.T) {
	client := &scriptedUTCP{catalog: weatherCatalog(), out: "22 graus"}
	tool := NewRemoteUTCPTool(client, client.catalog[0])

	result, err := tool.Execute(context.Background(), map[string]any{"cidade": "Natal"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Payload["output"] != "22 graus" {
		t.Fatalf("Payload = %v, want scalar output under %q", result.Payload, "output")
	}
}

func TestRemoteUTCPToolCallFailureIsAbsorbedByDispatch(t *testing.T) {
	client := &scriptedUTCP{catalog: weatherCatalog(), err: errors.New("provider offline")}
	registry := assistant.NewRegistry()
	if _, err := DiscoverUTCP(context.Background(), client, registry, 0); err != nil {
		t.Fatalf("DiscoverUTCP: %v", err)
	}

	d := assistant.NewDispatcher(registry, 0)
	result := d.Dispatch(context.Background(), assistant.ToolCallRequest{
		Name:      "previsao",
		Arguments: map[string]any{"cidade": "Recife"},
	})

	if result.OK() {
		t.Fatal("expected an error result for a failed remote call")
	}
	if !strings.Contains(result.ErrorDetail, "provider offline") {
		t.Fatalf("ErrorDetail = %q", result.ErrorDetail)
	}
}

func TestAsUTCPToolHandlerRoundTrip(t *testing.T) {
	ut := AsUTCPTool(&Calculator{}, "assistente")

	if ut.Name != "calculadora_basica" {
		t.Fatalf("Name = %q", ut.Name)
	}
	if len(ut.Inputs.Required) != 3 {
		t.Fatalf("Required = %v, want the three calculator parameters", ut.Inputs.Required)
	}
	if ut.Handler == nil {
		t.Fatal("Handler is nil")
	}

	envelope, err := ut.Handler(nil, map[string]any{
		"operacao": "*",
		"numero1":  6,
		"numero2":  7,
	})
	if err != nil {
		t.Fatalf("Handler: %v", err)
	}
	if envelope["status"] != "ok" {
		t.Fatalf("envelope = %v", envelope)
	}
	payload, ok := envelope["result"].(map[string]any)
	if !ok || payload["resultado"] != 42.0 {
		t.Fatalf("result = %v, want resultado 42", envelope["result"])
	}
}

func TestAsUTCPToolHandlerRejectsInvalidArguments(t *testing.T) {
	ut := AsUTCPTool(&Calculator{}, "assistente")

	if _, err := ut.Handler(nil, map[string]any{"operacao": "^"}); err == nil {
		t.Fatal("expected a validation error for an unsupported operation")
	}
}
