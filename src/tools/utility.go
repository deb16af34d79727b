package tools

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strings"

	assistant "github.com/Protocol-Lattice/go-assistant"
)

// Calculator performs the four basic arithmetic operations.
type Calculator struct {
	assistant.ToolBase
}

var calculatorOps = []string{"+", "-", "*", "/"}

func (Calculator) Spec() assistant.ToolSpec {
	return assistant.ToolSpec{
		Name:        "calculadora_basica",
		Description: "Realiza operações matemáticas básicas",
		Params: []assistant.Param{
			{Name: "operacao", Type: "string", Description: "Tipo de operação", Required: true, Enum: calculatorOps},
			{Name: "numero1", Type: "number", Description: "Primeiro número", Required: true},
			{Name: "numero2", Type: "number", Description: "Segundo número", Required: true},
		},
	}
}

func (Calculator) Validate(args map[string]any) bool {
	op, ok := assistant.TextArg(args, "operacao")
	if !ok || !assistant.ValidOperation(op, calculatorOps) {
		return false
	}
	_, ok1 := assistant.NumberArg(args, "numero1")
	_, ok2 := assistant.NumberArg(args, "numero2")
	return ok1 && ok2
}

func (Calculator) Execute(_ context.Context, args map[string]any) (assistant.ToolResult, error) {
	op, _ := assistant.TextArg(args, "operacao")
	n1, _ := assistant.NumberArg(args, "numero1")
	n2, _ := assistant.NumberArg(args, "numero2")

	var resultado float64
	switch op {
	case "+":
		resultado = n1 + n2
	case "-":
		resultado = n1 - n2
	case "*":
		resultado = n1 * n2
	case "/":
		if n2 == 0 {
			return assistant.ToolResult{}, errors.New("divisão por zero não é permitida")
		}
		resultado = n1 / n2
	default:
		return assistant.ToolResult{}, fmt.Errorf("operação '%s' não suportada", op)
	}

	return assistant.NewResponse("calculo_matematico").
		WithInput("operacao", op).
		WithInput("numero1", n1).
		WithInput("numero2", n2).
		WithResult("resultado", resultado).
		WithSummaryf("%v %s %v = %v", n1, op, n2, resultado).
		Build()
}

// HashGenerator hashes a text with one of the supported algorithms.
type HashGenerator struct {
	assistant.ToolBase
}

var hashAlgorithms = []string{"md5", "sha1", "sha256"}

func (HashGenerator) Spec() assistant.ToolSpec {
	return assistant.ToolSpec{
		Name:        "gerar_hash",
		Description: "Gera hash de um texto usando diferentes algoritmos",
		Params: []assistant.Param{
			{Name: "texto", Type: "string", Description: "Texto para gerar hash", Required: true},
			{Name: "algoritmo", Type: "string", Description: "Algoritmo de hash", Default: "md5", Enum: hashAlgorithms},
		},
	}
}

func (HashGenerator) Validate(args map[string]any) bool {
	if _, ok := assistant.TextArg(args, "texto"); !ok {
		return false
	}
	if _, present := args["algoritmo"]; !present {
		return true
	}
	algoritmo, _ := assistant.TextArg(args, "algoritmo")
	return assistant.ValidOperation(algoritmo, hashAlgorithms)
}

func (HashGenerator) Execute(_ context.Context, args map[string]any) (assistant.ToolResult, error) {
	texto, _ := assistant.TextArg(args, "texto")
	algoritmo, ok := assistant.TextArg(args, "algoritmo")
	if !ok {
		algoritmo = "md5"
	}

	var h hash.Hash
	switch algoritmo {
	case "md5":
		h = md5.New()
	case "sha1":
		h = sha1.New()
	case "sha256":
		h = sha256.New()
	default:
		return assistant.ToolResult{}, fmt.Errorf("algoritmo '%s' não suportado", algoritmo)
	}
	h.Write([]byte(texto))

	return assistant.NewResponse("geracao_hash").
		WithInput("texto_original", texto).
		WithInput("algoritmo", algoritmo).
		WithResult("hash", hex.EncodeToString(h.Sum(nil))).
		WithSummaryf("Hash %s gerado com sucesso", strings.ToUpper(algoritmo)).
		Build()
}
