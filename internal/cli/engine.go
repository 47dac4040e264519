package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"chatsearch/config"
	"chatsearch/internal/adapter/fs"
	"chatsearch/internal/adapter/memstore"
	"chatsearch/internal/adapter/store"
	"chatsearch/internal/adapter/watcher"
	"chatsearch/internal/port"
	"chatsearch/internal/usecase"
)

// app is an engine bound to the on-disk catalog.
type app struct {
	engine  *usecase.Engine
	catalog *store.BoltStore
	closers []func() error
}

func (rt *app) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			logger.Warn().Err(err).Msg("close failed")
		}
	}
}

// openApp opens the catalog database, picks the session store and loads
// the stored catalog into a fresh engine. durable forces sessions onto disk
// when the configured backend would lose them at exit.
func openApp(ctx context.Context, durable bool) (*app, error) {
	cfg := GetConfig()
	dbPath := config.CatalogDBPath(GetRootDir())
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("no catalog found. Run 'chatsearch index' first")
	}

	st, err := store.NewBoltStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	rt := &app{catalog: st, closers: []func() error{st.Close}}

	sessions, err := sessionStore(cfg, st, durable)
	if err != nil {
		rt.Close()
		return nil, err
	}
	if c, ok := sessions.(interface{ Close() error }); ok && port.SessionStore(st) != sessions {
		rt.closers = append(rt.closers, c.Close)
	}

	engine, err := usecase.NewEngine(cfg, usecase.WithLogger(logger), usecase.WithSessionStore(sessions))
	if err != nil {
		rt.Close()
		return nil, err
	}
	if err := engine.Init(ctx); err != nil {
		rt.Close()
		return nil, err
	}

	n, err := usecase.NewIndexUseCase(st, nil).LoadInto(engine)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	logger.Debug().Int("items", n).Str("db", dbPath).Msg("catalog loaded")

	rt.engine = engine
	return rt, nil
}

func sessionStore(cfg *config.Config, st *store.BoltStore, durable bool) (port.SessionStore, error) {
	switch cfg.Storage.Backend {
	case "redis":
		rs, err := store.NewRedisSessionStore(cfg.Storage.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to connect session store: %w", err)
		}
		return rs, nil
	case "bolt":
		return st, nil
	case "", "memory":
		if durable {
			return st, nil
		}
		return memstore.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Storage.Backend)
	}
}

// watch re-reads dir into the catalog database on every settled change and
// swaps the result into the engine. It blocks until ctx is done.
func (rt *app) watch(ctx context.Context, dir string) error {
	walker := fs.NewWalker(nil, nil)
	cw, err := watcher.NewCatalogWatcher(dir, walker, 0, logger)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	defer cw.Close()

	indexUC := usecase.NewIndexUseCase(rt.catalog, walker)
	logger.Info().Str("dir", dir).Msg("watching catalog")

	err = cw.Run(ctx, func() {
		result, err := indexUC.Index(dir, nil)
		if err != nil {
			logger.Error().Err(err).Msg("catalog reload failed")
			return
		}
		n, err := indexUC.LoadInto(rt.engine)
		if err != nil {
			logger.Error().Err(err).Msg("catalog reload failed")
			return
		}
		logger.Info().
			Int("items", n).
			Int("deleted", result.ItemsDeleted).
			Int("failed_files", result.FilesFailed).
			Msg("catalog reloaded")
	})
	if err == context.Canceled {
		return nil
	}
	return err
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
