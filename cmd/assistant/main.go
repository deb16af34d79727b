// Command assistant answers a single query from the terminal and prints the
// final answer plus the tools the model used.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	assistant "github.com/Protocol-Lattice/go-assistant"
	"github.com/Protocol-Lattice/go-assistant/src/models"
	"github.com/Protocol-Lattice/go-assistant/src/tools"
)

func main() {
	_ = godotenv.Load()

	var (
		provider = flag.String("provider", "openai", "inference provider (openai, anthropic, gemini, ollama)")
		model    = flag.String("model", "gpt-4o-mini", "model name")
		maxSteps = flag.Int("max-steps", 5, "model round-trips allowed")
	)
	flag.Parse()

	query := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if query == "" {
		fmt.Fprintln(os.Stderr, "usage: assistant [flags] <query>")
		os.Exit(2)
	}

	ctx := context.Background()

	registry := assistant.NewRegistry()
	if err := tools.RegisterBuiltin(registry); err != nil {
		fatal(err)
	}

	endpoint, err := models.NewLLMProvider(ctx, *provider, *model)
	if err != nil {
		fatal(err)
	}

	orchestrator, err := assistant.New(assistant.Options{
		Model:    endpoint,
		Registry: registry,
		MaxSteps: *maxSteps,
	})
	if err != nil {
		fatal(err)
	}

	result := orchestrator.Run(ctx, query, nil)
	if result.Status != assistant.StateDone {
		fmt.Fprintf(os.Stderr, "run failed: %s\n", result.Err)
		os.Exit(1)
	}

	fmt.Println(result.FinalAnswer)
	if len(result.ToolsUsed) > 0 {
		fmt.Fprintf(os.Stderr, "tools used: %s\n", strings.Join(result.ToolsUsed, ", "))
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
