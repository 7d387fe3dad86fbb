package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	grafitemcp "github.com/sferro/grafite/internal/mcp"
	"github.com/sferro/grafite/internal/server"
	"github.com/sferro/grafite/pkg/graph"
)

func main() {
	httpAddr := flag.String("http-addr", ":9091", "Address and port for the REST API server (e.g. :9091)")
	configPath := flag.String("config", "", "Path to the YAML configuration file")
	authToken := flag.String("auth-token", "", "Bearer token required on API calls (overrides config)")
	mcpMode := flag.Bool("mcp", false, "Run as an MCP server over stdio instead of HTTP")

	flag.Parse()

	cfg, err := server.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Could not load configuration", "error", err)
		os.Exit(1)
	}

	opts, err := cfg.Engine.EngineOptions()
	if err != nil {
		slog.Error("Invalid engine configuration", "error", err)
		os.Exit(1)
	}

	eng := graph.New[string](opts)

	// MCP mode: speak the protocol on stdin/stdout and exit when the
	// client disconnects. Logs go to stderr, never stdout.
	if *mcpMode {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
		mcpServer := grafitemcp.NewMCPServer(eng)
		if err := mcpServer.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
			slog.Error("MCP server stopped", "error", err)
			os.Exit(1)
		}
		return
	}

	// Flags override the config file.
	addr := cfg.HTTPAddr
	if addr == "" || flagWasSet("http-addr") {
		addr = *httpAddr
	}
	token := cfg.AuthToken
	if *authToken != "" {
		token = *authToken
	}

	srv := server.NewServer(eng, addr, token)

	// Channel listening for the interrupt signal (Ctrl+C)
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	// Start the HTTP server in a goroutine so main can wait on signals
	go func() {
		if err := srv.Run(); err != nil {
			slog.Error("Server stopped", "error", err)
			os.Exit(1)
		}
	}()

	// Block until the shutdown signal arrives
	<-shutdownChan

	// Perform a clean shutdown
	srv.Shutdown()
}

// flagWasSet reports whether the named flag was passed on the command line.
func flagWasSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
