package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"pet-marketplace/internal/adapters/auth/odin"
	"pet-marketplace/internal/adapters/objects/disk"
	pg "pet-marketplace/internal/adapters/storage/postgres"
	"pet-marketplace/internal/adapters/storage/sqlite"
	"pet-marketplace/internal/platform/config"
	"pet-marketplace/internal/platform/logger"
	"pet-marketplace/internal/ports/auth"
	"pet-marketplace/internal/realtime"
	"pet-marketplace/internal/router"
)

// @title Pet Marketplace API
// @version 1.0
// @description Backend colaborador de petsync: CRUD de mascotas, fotos y feed realtime.
// @BasePath /
func main() {
	if _, err := config.LoadEnvFile(os.Getenv("ENV_FILE")); err != nil {
		logger.NewFromEnv().Error("env file", map[string]any{"err": err.Error()})
		os.Exit(1)
	}

	log := logger.NewFromEnv()
	if err := run(log); err != nil {
		log.Error("server stopped", map[string]any{"err": err.Error()})
		os.Exit(1)
	}
}

func run(log logger.Logger) error {
	cfg, err := config.LoadServer()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := router.Options{Logger: log}

	// Storage de pets: Postgres > SQLite > in-memory.
	var db *sql.DB
	switch {
	case cfg.DBDSN != "":
		db, err = pg.Open(cfg.DBDSN)
		if err != nil {
			return err
		}
		if err := pg.EnsureSchema(ctx, db); err != nil {
			return err
		}
		opts.DB = db
		log.Info("using postgres storage", nil)
	case cfg.SQLitePath != "":
		db, err = sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return err
		}
		opts.PetsRepo = sqlite.NewPetsRepo(db)
		log.Info("using sqlite storage", map[string]any{"path": cfg.SQLitePath})
	default:
		log.Warn("no DB_DSN or SQLITE_PATH, using in-memory storage", nil)
	}
	if db != nil {
		defer db.Close()
	}

	objects, err := disk.NewStore(cfg.StorageDir, cfg.PublicBaseURL)
	if err != nil {
		return err
	}
	opts.Objects = objects

	if cfg.OdinEnabled() {
		client, err := odin.NewClient(odin.Config{
			BaseURL: cfg.OdinBaseURL,
			APIKey:  cfg.OdinAPIKey,
			Timeout: cfg.OdinTimeout,
		})
		if err != nil {
			return err
		}
		var verifier auth.AuthVerifier = odin.NewVerifier(client)
		opts.AuthVerifier = verifier
		log.Info("odin auth enabled", map[string]any{"base_url": cfg.OdinBaseURL})
	} else {
		log.Warn("odin not configured, accepting X-Debug-User-ID (dev mode)", nil)
	}

	hub := realtime.NewHub(log)
	opts.Hub = hub

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router.NewRouter(opts),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting server", map[string]any{"addr": cfg.Addr, "storage_dir": cfg.StorageDir})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down", nil)

		// Los websockets no terminan solos: se cierran antes del Shutdown.
		hub.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
