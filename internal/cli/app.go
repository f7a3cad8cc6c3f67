package cli

import (
	"context"
	"io"
	"strings"

	"pet-marketplace/internal/adapters/gateway/rest"
	"pet-marketplace/internal/petstore"
	"pet-marketplace/internal/platform/httpclient"
	"pet-marketplace/internal/platform/logger"
	"pet-marketplace/internal/ports/auth"
	"pet-marketplace/internal/realtime"
)

// app arma las piezas cliente a partir de la config.
type app struct {
	cfg     Config
	log     logger.Logger
	client  *httpclient.Client
	session auth.Session

	listener *realtime.Listener
}

func newApp(cfg Config, stderr io.Writer) (*app, error) {
	client, err := httpclient.NewWithBaseURL(cfg.APIURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	var out io.Writer = stderr
	if strings.TrimSpace(cfg.LogFile) != "" {
		out = nil
	}
	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    "petsync",
		File:   cfg.LogFile,
		Output: out,
	})

	return &app{
		cfg:     cfg,
		log:     log,
		client:  client,
		session: auth.StaticSession{UserID: cfg.UserID, Token: cfg.Token},
	}, nil
}

type storeOptions struct {
	realtime     bool
	onProgress   func(int)
	onChange     func()
	onFeedClosed func(error)

	// wrap decora la suscripción realtime (watch imprime cada evento).
	wrap func(petstore.Subscriber) petstore.Subscriber
}

// openStore crea el store e Init para el usuario de la sesión.
func (a *app) openStore(ctx context.Context, opts storeOptions) (*petstore.Store, error) {
	var sub petstore.Subscriber
	if opts.realtime {
		a.listener = realtime.NewListener(realtime.NewWebsocketDialer(a.client, a.session), a.log)
		sub = a.listener
		if opts.wrap != nil {
			sub = opts.wrap(sub)
		}
	}

	store, err := petstore.New(petstore.Options{
		Gateway:      rest.New(a.client, a.session),
		Listener:     sub,
		Logger:       a.log,
		OnChange:     opts.onChange,
		OnProgress:   opts.onProgress,
		OnFeedClosed: opts.onFeedClosed,
	})
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx, a.cfg.UserID); err != nil {
		store.Dispose()
		return nil, err
	}
	return store, nil
}

func (a *app) close() {
	if a.listener != nil {
		a.listener.Close()
	}
}
