package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/ironsheep/tile-filter-mcp/internal/config"
	"github.com/ironsheep/tile-filter-mcp/internal/engine"
	"github.com/ironsheep/tile-filter-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("tile-filter-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("tile-filter-mcp - MCP server for tile-parallel image filtering")
			fmt.Println()
			fmt.Println("Usage: tile-filter-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  TILEFILTER_TILE_SIZE=50               Default tile edge length")
			fmt.Println("  TILEFILTER_OUTPUT_DIR=output          Directory for timestamped outputs")
			fmt.Println("  TILEFILTER_LIVE_BUFFER=64             Progress queue capacity")
			fmt.Println("  TILEFILTER_REDIS_ADDR=host:port       Enable publishing tiles to Redis")
			fmt.Println("  TILEFILTER_REDIS_STREAM=tilefilter:tiles")
			fmt.Println("  TILEFILTER_LOG_LEVEL=debug            Enable debug logging")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client.")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	engine.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	if cfg.Debug() {
		log.Printf("Tile Filter MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
		log.Printf("Tile size %d, output dir %s", cfg.TileSize, cfg.OutputDir)
	}

	srv := server.New(cfg)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
