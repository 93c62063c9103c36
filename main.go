package main

import (
	"context"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"

	"github.com/NotYuSheng/mernverse/config"
	"github.com/NotYuSheng/mernverse/modules/api"
	"github.com/NotYuSheng/mernverse/modules/broadcast"
	"github.com/NotYuSheng/mernverse/modules/chat"
	"github.com/NotYuSheng/mernverse/modules/history"
	"github.com/NotYuSheng/mernverse/modules/identity"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== MERNverse Chat Engine ===")

	cfg := config.Load()

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Create modules
	identityModule := identity.NewModule(cfg.SessionTTL, cfg.SweepInterval)
	historyModule := history.NewModule(cfg.DBPath, cfg.RedisAddr)
	broadcastModule := broadcast.NewModule()

	chatModule := chat.NewModule(
		identityModule.Store(),
		broadcastModule.Hub(),
		historyModule,
	)

	apiModule := api.NewModule(
		cfg.Port,
		cfg.CORSOrigins,
		cfg.MessageRate,
		cfg.MessageBurst,
		chatModule.Engine(),
		broadcastModule.Hub(),
	)

	// Register modules with the framework.
	// Order: independent modules first, then modules with dependencies
	app.Register(identityModule)  // Session store + expiry sweeper
	app.Register(historyModule)   // Durable message store (+ cache)
	app.Register(chatModule)      // Engine + presence event emitter
	app.Register(broadcastModule) // Hub + presence event consumer
	app.Register(apiModule)       // HTTP/WebSocket gateway

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(cfg *config.Config) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%s):", cfg.Port)
	log.Println("  GET    /health               - Health check")
	log.Println("  GET    /metrics              - Prometheus metrics")
	log.Println("  GET    /messages/:roomId     - Room message history")
	log.Println("  POST   /api/v1/rooms         - Mint a new room id")
	log.Println("")
	log.Printf("WebSocket Endpoint (ws://localhost:%s/ws):", cfg.Port)
	log.Println("  Frame types: resolve-identity, join-room, send-message")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
