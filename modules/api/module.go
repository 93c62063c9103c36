package api

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-monolith/mono"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/NotYuSheng/mernverse/modules/broadcast"
	"github.com/NotYuSheng/mernverse/modules/chat"
)

// Module is the transport gateway: the Fiber HTTP server and the
// WebSocket endpoint the chat engine sits behind.
type Module struct {
	app          *fiber.App
	engine       *chat.Engine
	hub          *broadcast.Hub
	port         string
	corsOrigins  string
	messageRate  int
	messageBurst int
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates the API module.
func NewModule(port, corsOrigins string, messageRate, messageBurst int, engine *chat.Engine, hub *broadcast.Hub) *Module {
	return &Module{
		engine:       engine,
		hub:          hub,
		port:         port,
		corsOrigins:  corsOrigins,
		messageRate:  messageRate,
		messageBurst: messageBurst,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "api"
}

// Start initializes the Fiber HTTP server.
func (m *Module) Start(_ context.Context) error {
	if m.engine == nil || m.hub == nil {
		return fmt.Errorf("api module dependencies not set")
	}

	m.app = fiber.New(fiber.Config{
		AppName:               "MERNverse",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          60 * time.Second,
		IdleTimeout:           120 * time.Second,
	})

	m.app.Use(recover.New())
	m.app.Use(cors.New(cors.Config{
		AllowOrigins: m.corsOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))
	m.app.Use(requestLogger())

	m.setupRoutes()

	// Start server in goroutine with startup error detection
	errCh := make(chan error, 1)
	go func() {
		if err := m.app.Listen(":" + m.port); err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	log.Printf("[api] HTTP server started on :%s", m.port)
	return nil
}

// Stop shuts down the HTTP server.
func (m *Module) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	return m.app.ShutdownWithContext(ctx)
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port": m.port,
		},
	}
}

func (m *Module) setupRoutes() {
	m.app.Get("/health", m.healthHandler)
	m.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Read-only history pass-through, same route shape as the REST API
	// clients already use.
	m.app.Get("/messages/:roomId", m.getHistory)

	api := m.app.Group("/api/v1")
	api.Post("/rooms", m.createRoom)

	m.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	m.app.Get("/ws", websocket.New(m.handleWebSocket))
}

// errorHandler handles Fiber errors globally.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}

// requestLogger returns a Fiber middleware for request logging.
func requestLogger() fiber.Handler {
	return logger.New(logger.Config{
		Format: "[${time}] ${status} ${method} ${path} ${latency}\n",
		Next: func(c *fiber.Ctx) bool {
			// WebSocket upgrades log through the connection lifecycle.
			return c.Get("Upgrade") == "websocket"
		},
	})
}
