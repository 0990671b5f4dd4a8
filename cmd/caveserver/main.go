package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lawnchairsociety/deepcave/internal/cave"
	"github.com/lawnchairsociety/deepcave/internal/config"
	"github.com/lawnchairsociety/deepcave/internal/logger"
	"github.com/lawnchairsociety/deepcave/internal/server"
)

func main() {
	configFile := flag.String("config", "data/config.yaml", "Path to config YAML file (also holds the logging section)")
	seed := flag.Int64("seed", 0, "Cave seed (default: cave.seed from config, or random)")
	wsAddr := flag.String("addr", "", "WebSocket listen address (default: server.address from config)")
	tcpAddr := flag.String("tcp", "", "Optional line-protocol TCP listen address, e.g. :4001")
	flag.Parse()

	// Initialize logger first (before any logging)
	logConfig, _ := logger.LoadConfig(*configFile)
	if err := logger.Initialize(logConfig); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	logger.Info("Starting deepcave inspector")

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	caveSeed := *seed
	if caveSeed == 0 {
		caveSeed = cfg.Cave.Seed
	}
	if caveSeed == 0 {
		caveSeed = time.Now().UnixNano()
		logger.Info("Cave seed selected", "seed", caveSeed, "random", true)
	} else {
		logger.Info("Cave seed selected", "seed", caveSeed, "random", false)
	}

	gc, err := cfg.GeneratorConfig()
	if err != nil {
		log.Fatalf("Failed to load rules: %v", err)
	}
	gen, err := cave.NewGenerator(gc)
	if err != nil {
		log.Fatalf("Failed to create generator: %v", err)
	}

	store, closer, err := cfg.OpenStore()
	if err != nil {
		log.Fatalf("Failed to open memento store: %v", err)
	}
	defer closer.Close()
	logger.Info("Memento store opened", "driver", cfg.Storage.Driver)

	if len(cfg.Server.WebSocket.AllowedOrigins) == 0 {
		logger.Info("WebSocket CORS policy", "mode", "same-origin")
	} else if len(cfg.Server.WebSocket.AllowedOrigins) == 1 && cfg.Server.WebSocket.AllowedOrigins[0] == "*" {
		logger.Warning("WebSocket CORS allows all origins (not recommended for production)")
	} else {
		logger.Info("WebSocket CORS policy", "allowed_origins", cfg.Server.WebSocket.AllowedOrigins)
	}

	srv := server.NewServer(cfg.Server, gen, store, caveSeed, cfg.Cave.MaxFloor)

	addr := *wsAddr
	if addr == "" {
		addr = cfg.Server.Address
	}
	go func() {
		if err := srv.StartWebSocket(addr); err != nil {
			log.Fatalf("WebSocket server error: %v", err)
		}
	}()

	if *tcpAddr != "" {
		go func() {
			if err := srv.Start(*tcpAddr); err != nil {
				log.Fatalf("TCP server error: %v", err)
			}
		}()
	}

	logger.Info("Inspector running", "websocket", addr, "tcp", *tcpAddr)
	logger.Info("Press Ctrl+C to shutdown")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server")
	srv.Shutdown()
	logger.Info("Server stopped")
}
