// Package backend builds the configured gateway implementation. The stores
// and session code only ever see the gateway interfaces, so swapping the
// hosted service for the offline or in-memory backend is a config change.
package backend

import (
	"fmt"

	"caixamei/internal/config"
	"caixamei/internal/gateway"
	"caixamei/internal/gateway/memory"
	"caixamei/internal/gateway/sqlite"
	"caixamei/internal/gateway/supabase"
	"caixamei/internal/log"
)

// Type names accepted in config.
const (
	SupabaseBackend = "supabase"
	SQLiteBackend   = "sqlite"
	MemoryBackend   = "memory"
)

// Result carries the gateway and an optional cleanup to run at shutdown.
type Result struct {
	Gateway gateway.Gateway
	Cleanup gateway.CleanupFunc
}

// Factory creates gateways based on configuration.
type Factory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) *Factory {
	return &Factory{logger: logger.WithComponent(log.ComponentGateway)}
}

// CreateGateway builds the backend named by cfg.DataBackend.
func (f *Factory) CreateGateway(cfg *config.Config) (*Result, error) {
	switch cfg.DataBackend {
	case SupabaseBackend:
		cli, err := supabase.New(cfg.SupabaseURL, cfg.SupabaseAnonKey)
		if err != nil {
			return nil, fmt.Errorf("initialize supabase gateway: %w", err)
		}
		f.logger.Info("Initialized supabase gateway", log.FieldBackend, SupabaseBackend)
		return &Result{Gateway: cli}, nil

	case SQLiteBackend:
		repo, err := sqlite.NewRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite gateway: %w", err)
		}
		f.logger.Info("Initialized sqlite gateway",
			log.FieldBackend, SQLiteBackend, "db_path", cfg.SQLiteDBPath)
		return &Result{Gateway: repo, Cleanup: repo.Close}, nil

	case MemoryBackend:
		f.logger.Info("Initialized memory gateway", log.FieldBackend, MemoryBackend)
		return &Result{Gateway: memory.New()}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.DataBackend)
	}
}
