package tools

import (
	"context"
	"strings"
	"testing"

	assistant "github.com/Protocol-Lattice/go-assistant"
)

func TestCalculatorOperations(t *testing.T) {
	tool := Calculator{}

	cases := []struct {
		op   string
		n1   any
		n2   any
		want float64
	}{
		{"+", 2, 3, 5},
		{"-", 10, 4, 6},
		{"*", 2.5, 4, 10},
		{"/", 9, 3, 3},
		{"+", "1.5", "2.5", 4}, // providers sometimes send numbers as strings
	}
	for _, c := range cases {
		result, err := tool.Execute(context.Background(), map[string]any{
			"operacao": c.op,
			"numero1":  c.n1,
			"numero2":  c.n2,
		})
		if err != nil {
			t.Fatalf("Execute(%v %s %v): %v", c.n1, c.op, c.n2, err)
		}
		if result.Payload["resultado"] != c.want {
			t.Fatalf("resultado(%v %s %v) = %v, want %v", c.n1, c.op, c.n2, result.Payload["resultado"], c.want)
		}
	}
}

func TestCalculatorDivisionByZero(t *testing.T) {
	tool := Calculator{}

	_, err := tool.Execute(context.Background(), map[string]any{
		"operacao": "/",
		"numero1":  1,
		"numero2":  0,
	})
	if err == nil {
		t.Fatal("expected an error for division by zero")
	}
	if !strings.Contains(err.Error(), "divisão por zero") {
		t.Fatalf("err = %v", err)
	}
}

// Division by zero must surface to the model as an error result, not kill the
// dispatch.
func TestCalculatorDivisionByZeroThroughDispatcher(t *testing.T) {
	reg := assistant.NewRegistry()
	if err := reg.Register(&Calculator{}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	d := assistant.NewDispatcher(reg, 0)

	result := d.Dispatch(context.Background(), assistant.ToolCallRequest{
		Name: "calculadora_basica",
		Arguments: map[string]any{
			"operacao": "/",
			"numero1":  float64(10),
			"numero2":  float64(0),
		},
	})

	if result.OK() {
		t.Fatal("expected an error result")
	}
	if !strings.Contains(result.ErrorDetail, "divisão por zero") {
		t.Fatalf("ErrorDetail = %q", result.ErrorDetail)
	}
}

func TestCalculatorValidate(t *testing.T) {
	tool := Calculator{}

	if tool.Validate(map[string]any{"operacao": "%", "numero1": 1, "numero2": 2}) {
		t.Fatal("Validate accepted unsupported operation")
	}
	if tool.Validate(map[string]any{"operacao": "+", "numero1": "dez", "numero2": 2}) {
		t.Fatal("Validate accepted non-numeric operand")
	}
	if !tool.Validate(map[string]any{"operacao": "+", "numero1": 1, "numero2": 2}) {
		t.Fatal("Validate rejected good arguments")
	}
}

func TestHashGeneratorKnownDigests(t *testing.T) {
	tool := HashGenerator{}

	cases := []struct {
		algoritmo string
		want      string
	}{
		{"md5", "900150983cd24fb0d6963f7d28e17f72"},
		{"sha1", "a9993e364706816aba3e25717850c26c9cd0d89d"},
		{"sha256", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
	}
	for _, c := range cases {
		result, err := tool.Execute(context.Background(), map[string]any{
			"texto":     "abc",
			"algoritmo": c.algoritmo,
		})
		if err != nil {
			t.Fatalf("Execute(%s): %v", c.algoritmo, err)
		}
		if result.Payload["hash"] != c.want {
			t.Fatalf("hash(%s) = %v, want %s", c.algoritmo, result.Payload["hash"], c.want)
		}
	}
}

func TestHashGeneratorDefaultsToMD5(t *testing.T) {
	tool := HashGenerator{}

	result, err := tool.Execute(context.Background(), map[string]any{"texto": "abc"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Payload["hash"] != "900150983cd24fb0d6963f7d28e17f72" {
		t.Fatalf("hash = %v", result.Payload["hash"])
	}
	if result.Summary != "Hash MD5 gerado com sucesso" {
		t.Fatalf("Summary = %q", result.Summary)
	}
}

func TestHashGeneratorValidateRejectsUnknownAlgorithm(t *testing.T) {
	tool := HashGenerator{}

	if tool.Validate(map[string]any{"texto": "abc", "algoritmo": "crc32"}) {
		t.Fatal("Validate accepted unsupported algorithm")
	}
	if !tool.Validate(map[string]any{"texto": "abc"}) {
		t.Fatal("Validate rejected missing algorithm")
	}
}
