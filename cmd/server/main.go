// Command server runs the assistant's HTTP service: POST /v1/invoke answers
// queries with the configured inference endpoint and tool set, GET /v1/tools
// lists the advertised tools.
package main

import (
	"context"
	"flag"
	"os"
	"strings"

	"github.com/joho/godotenv"
	utcp "github.com/universal-tool-calling-protocol/go-utcp"

	assistant "github.com/Protocol-Lattice/go-assistant"
	"github.com/Protocol-Lattice/go-assistant/src/history"
	"github.com/Protocol-Lattice/go-assistant/src/logger"
	"github.com/Protocol-Lattice/go-assistant/src/mcp"
	"github.com/Protocol-Lattice/go-assistant/src/models"
	"github.com/Protocol-Lattice/go-assistant/src/service"
	"github.com/Protocol-Lattice/go-assistant/src/speech"
	"github.com/Protocol-Lattice/go-assistant/src/tools"
)

func main() {
	_ = godotenv.Load()

	var (
		addr       = flag.String("addr", ":8080", "listen address")
		provider   = flag.String("provider", "openai", "inference provider (openai, anthropic, gemini, ollama)")
		model      = flag.String("model", "gpt-4o-mini", "model name")
		maxSteps   = flag.Int("max-steps", 5, "model round-trips allowed per query")
		historyURI = flag.String("history", "", "history store: empty for in-memory, mongodb:// or postgres:// DSN")
		withSpeech = flag.Bool("speech", false, "synthesize final answers to audio")
		spoolDir   = flag.String("spool-dir", "audio", "directory for synthesized audio files")
		mcpCommand = flag.String("mcp-server", "", "optional MCP tool server command to spawn and discover")
		utcpConfig = flag.String("utcp-config", "", "optional UTCP providers file to load and discover")
		logFile    = flag.String("log-file", "", "log file path, stdout only when empty")
	)
	flag.Parse()

	if err := logger.InitLog(*logFile); err != nil {
		logger.Error("[Server] init log: %v", err)
		os.Exit(1)
	}

	ctx := context.Background()

	registry := assistant.NewRegistry()
	if err := tools.RegisterBuiltin(registry); err != nil {
		logger.Error("[Server] register tools: %v", err)
		os.Exit(1)
	}

	if *mcpCommand != "" {
		parts := strings.Fields(*mcpCommand)
		client, err := mcp.NewStdioClient(ctx, mcp.StdioConfig{Command: parts[0], Args: parts[1:]})
		if err != nil {
			logger.Error("[Server] connect MCP server: %v", err)
			os.Exit(1)
		}
		defer client.Close()

		names, err := mcp.Discover(ctx, client, registry)
		if err != nil {
			logger.Error("[Server] MCP discovery: %v", err)
			os.Exit(1)
		}
		logger.Info("[Server] discovered %d MCP tools: %s", len(names), strings.Join(names, ", "))
	}

	if *utcpConfig != "" {
		client, err := utcp.NewUTCPClient(ctx, &utcp.UtcpClientConfig{ProvidersFilePath: *utcpConfig}, nil, nil)
		if err != nil {
			logger.Error("[Server] init UTCP client: %v", err)
			os.Exit(1)
		}

		names, err := tools.DiscoverUTCP(ctx, client, registry, 0)
		if err != nil {
			logger.Error("[Server] UTCP discovery: %v", err)
			os.Exit(1)
		}
		logger.Info("[Server] discovered %d UTCP tools: %s", len(names), strings.Join(names, ", "))
	}

	endpoint, err := models.NewLLMProvider(ctx, *provider, *model)
	if err != nil {
		logger.Error("[Server] init provider: %v", err)
		os.Exit(1)
	}
	endpoint = models.TryCreateCachedLLM(endpoint)

	orchestrator, err := assistant.New(assistant.Options{
		Model:    endpoint,
		Registry: registry,
		MaxSteps: *maxSteps,
	})
	if err != nil {
		logger.Error("[Server] init orchestrator: %v", err)
		os.Exit(1)
	}

	store, err := openHistoryStore(ctx, *historyURI)
	if err != nil {
		logger.Error("[Server] init history store: %v", err)
		os.Exit(1)
	}
	defer store.Close(ctx)

	var synth speech.Synthesizer
	if *withSpeech {
		synth, err = speech.NewGoogleSynthesizer(ctx, *spoolDir)
		if err != nil {
			logger.Error("[Server] init speech: %v", err)
			os.Exit(1)
		}
	}

	svc := service.New(service.Options{
		Orchestrator: orchestrator,
		Registry:     registry,
		Store:        store,
		Synthesizer:  synth,
	})

	logger.Info("[Server] listening on %s (provider=%s model=%s) tools: %s",
		*addr, *provider, *model, strings.Join(registry.Names(), ", "))
	if err := service.NewRouter(svc).Run(*addr); err != nil {
		logger.Error("[Server] serve: %v", err)
		os.Exit(1)
	}
}

func openHistoryStore(ctx context.Context, uri string) (history.Store, error) {
	switch {
	case uri == "":
		return history.NewInMemoryStore(), nil
	case strings.HasPrefix(uri, "mongodb://"), strings.HasPrefix(uri, "mongodb+srv://"):
		return history.NewMongoStore(ctx, uri, os.Getenv("ASSISTANT_MONGO_DB"), os.Getenv("ASSISTANT_MONGO_COLLECTION"))
	default:
		return history.NewPostgresStore(ctx, uri)
	}
}
