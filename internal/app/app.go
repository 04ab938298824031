// Package app wires configuration into a ready-to-use task store and
// suggester shared by the CLI, the terminal UI and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/idilsaglam/taskday/internal/auth"
	"github.com/idilsaglam/taskday/internal/config"
	"github.com/idilsaglam/taskday/internal/logger"
	"github.com/idilsaglam/taskday/internal/persist"
	"github.com/idilsaglam/taskday/internal/store"
	"github.com/idilsaglam/taskday/internal/store/jsonstore"
	"github.com/idilsaglam/taskday/internal/store/redisstore"
	"github.com/idilsaglam/taskday/internal/store/slot"
	"github.com/idilsaglam/taskday/internal/store/sqlitestore"
	"github.com/idilsaglam/taskday/internal/suggest"
)

// App is one session: the store loaded from the configured slot plus the
// suggester.
type App struct {
	Config    *config.Config
	Store     *store.Store
	Persist   *persist.Adapter
	Suggester suggest.Suggester

	// Now is the clock used for bucketing.
	Now func() time.Time

	slot      slot.Slot
	suggester io.Closer
}

// OpenSlot opens the configured storage backend.
func OpenSlot(ctx context.Context, cfg *config.Config) (slot.Slot, error) {
	switch cfg.Storage.Backend {
	case config.BackendFile, "":
		return jsonstore.New(cfg.DataDir)
	case config.BackendSQLite:
		return sqlitestore.New(cfg.SQLitePath())
	case config.BackendRedis:
		return redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// Open loads the task collection and builds the suggester.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	s, err := OpenSlot(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Backend, err)
	}
	a := New(ctx, cfg, s, NewSuggester(ctx, cfg))
	logger.Debug("session opened", "backend", cfg.Storage.Backend, "tasks", a.Store.Len())
	return a, nil
}

// New builds an App over an already open slot.
func New(ctx context.Context, cfg *config.Config, s slot.Slot, sg suggest.Suggester) *App {
	adapter := persist.New(s, persist.Options{
		Key:       cfg.Storage.Key,
		SkipEmpty: cfg.Storage.SkipEmpty,
	})
	guard := suggest.NewGuard(sg)
	if cfg.Gemini.Timeout > 0 {
		guard.Timeout = cfg.Gemini.Timeout
	}
	a := &App{
		Config:    cfg,
		Store:     store.Open(ctx, adapter, adapter),
		Persist:   adapter,
		Suggester: guard,
		Now:       time.Now,
		slot:      s,
	}
	if c, ok := sg.(io.Closer); ok {
		a.suggester = c
	}
	return a
}

// NewSuggester picks the API key (env, stored credentials, then config)
// and falls back to Application Default Credentials. When nothing works
// the returned suggester reports ErrUnavailable on every call.
func NewSuggester(ctx context.Context, cfg *config.Config) suggest.Suggester {
	key := cfg.Gemini.APIKey
	ki, err := auth.Store{Path: cfg.CredentialsPath()}.GetKey()
	if err != nil {
		logger.Warn("ignoring stored credentials", "err", err)
	} else if ki != nil {
		key = ki.Key
	}

	g, err := suggest.NewGemini(ctx, suggest.GeminiConfig{
		APIKey:  key,
		Model:   cfg.Gemini.Model,
		Timeout: cfg.Gemini.Timeout,
	})
	if err != nil {
		logger.Debug("suggestions disabled", "err", err)
		return suggest.Unavailable(err)
	}
	return g
}

// Close releases the storage backend and the suggestion client.
func (a *App) Close() error {
	var errs []error
	if a.suggester != nil {
		errs = append(errs, a.suggester.Close())
	}
	if a.slot != nil {
		errs = append(errs, a.slot.Close())
	}
	return errors.Join(errs...)
}
