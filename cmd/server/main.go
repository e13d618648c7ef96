package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/vorld-bridge/backend/internal/arena"
	"github.com/vorld-bridge/backend/internal/bridge"
	"github.com/vorld-bridge/backend/internal/channel"
	"github.com/vorld-bridge/backend/internal/config"
	"github.com/vorld-bridge/backend/internal/mock"
	"github.com/vorld-bridge/backend/internal/relay"
)

func main() {
	mockMode := flag.Bool("mock", false, "Feed synthetic arena events (no upstream connection)")
	configPath := flag.String("config", "config.yaml", "Path to config file")
	port := flag.Int("port", 0, "Override server port")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	if cfg.Vorld.UserToken == "" {
		log.Println("USER_TOKEN not provided. Set it via POST /api/config/user-token before initializing the game.")
	}

	client := arena.NewClient(
		cfg.Vorld.GameAPIURL,
		cfg.Vorld.AuthAPIURL,
		cfg.Vorld.AppID,
		cfg.Vorld.ArenaGameID,
		cfg.Vorld.UserToken,
	)
	svc := arena.NewService(client, cfg.Vorld.StreamURL)
	ch := channel.New()
	rl := relay.New()
	b := bridge.New(cfg, svc, ch, rl)

	mux := http.NewServeMux()
	rl.SetupRoutes(mux)
	b.SetupRoutes(mux)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *mockMode {
		log.Println("Starting in mock mode (synthetic arena events)")
		gen := mock.NewGenerator(rl)
		gen.Start(ctx)
	} else if cfg.AutoInit && cfg.Vorld.UserToken != "" {
		go func() {
			log.Println("Auto-initializing game session with configured STREAM_URL...")
			result := b.Initialize(ctx, "")
			if !result.Success {
				log.Printf("Auto-initialization failed: %s", result.Error)
				log.Println("Use POST /api/games with {\"streamUrl\": \"...\"} to retry.")
			}
		}()
	} else if !cfg.AutoInit {
		log.Println("Auto-initialization disabled (AUTO_INIT=false). Use POST /api/games to start a session.")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutting down...")
		b.Disconnect()
		cancel()
		os.Exit(0)
	}()

	if err := relay.ListenAndServe(cfg.Server.Host, cfg.Server.Port, mux); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
