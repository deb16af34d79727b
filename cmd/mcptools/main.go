// Command mcptools serves the built-in tool set over the Model Context
// Protocol on stdin/stdout, so any MCP-speaking orchestrator can discover
// and call the assistant's tools without linking them in.
package main

import (
	"context"
	"os"

	assistant "github.com/Protocol-Lattice/go-assistant"
	"github.com/Protocol-Lattice/go-assistant/src/logger"
	"github.com/Protocol-Lattice/go-assistant/src/mcp"
	"github.com/Protocol-Lattice/go-assistant/src/tools"
)

func main() {
	registry := assistant.NewRegistry()
	if err := tools.RegisterBuiltin(registry); err != nil {
		logger.Error("[MCPTools] register tools: %v", err)
		os.Exit(1)
	}

	server, err := mcp.NewServer(registry, mcp.ServerInfo{Name: "go-assistant-tools", Version: "1.0.0"}, 0)
	if err != nil {
		logger.Error("[MCPTools] init server: %v", err)
		os.Exit(1)
	}

	// Protocol traffic owns stdout; logs go to stderr.
	logger.SetOutput(os.Stderr)

	transport := mcp.NewStreamTransport(os.Stdin, os.Stdout)
	if err := server.Serve(context.Background(), transport); err != nil {
		logger.Error("[MCPTools] serve: %v", err)
		os.Exit(1)
	}
}
