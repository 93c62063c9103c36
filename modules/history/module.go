package history

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-monolith/mono"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Module provides durable message storage via GORM + SQLite, optionally
// fronted by a Redis cache for room history reads.
type Module struct {
	db        *gorm.DB
	store     MessageStore
	redis     *redis.Client
	dbPath    string
	redisAddr string
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates the history module. An empty redisAddr disables the
// cache layer.
func NewModule(dbPath, redisAddr string) *Module {
	return &Module{
		dbPath:    dbPath,
		redisAddr: redisAddr,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "history"
}

// Store returns the message store for other modules to use. Valid after
// Start.
func (m *Module) Store() MessageStore {
	return m.store
}

// Start opens the database, runs migrations, and wires the cache layer
// when Redis is configured.
func (m *Module) Start(ctx context.Context) error {
	log.Printf("[history] Connecting to SQLite database: %s", m.dbPath)

	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "true" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	if err := m.db.AutoMigrate(&Record{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	m.store = NewRepository(m.db)

	if m.redisAddr != "" {
		m.redis = redis.NewClient(&redis.Options{Addr: m.redisAddr})
		if err := m.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis at %s: %w", m.redisAddr, err)
		}
		m.store = NewCachedStore(m.store, m.redis)
		log.Printf("[history] Room history cache enabled via Redis at %s", m.redisAddr)
	}

	log.Println("[history] Module started")
	return nil
}

// Stop closes the database and Redis connections.
func (m *Module) Stop(_ context.Context) error {
	if m.redis != nil {
		if err := m.redis.Close(); err != nil {
			log.Printf("[history] Failed to close Redis client: %v", err)
		}
	}
	if m.db == nil {
		return nil
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	log.Println("[history] Module stopped")
	return nil
}

// Health performs a database ping.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get sql.DB: %v", err),
		}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"driver":        "sqlite",
			"path":          m.dbPath,
			"cache_enabled": m.redis != nil,
		},
	}
}
