// Package app wires configuration into the concrete backends shared by the
// command-line tools.
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"ipgeo-client/internal/apiclient"
	"ipgeo-client/internal/auth"
	"ipgeo-client/internal/config"
	"ipgeo-client/internal/geo"
	"ipgeo-client/internal/history"
	"ipgeo-client/internal/repository"
	"ipgeo-client/internal/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// NewLogger returns a console logger at the configured level.
func NewLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()
}

// OpenStorage opens the key-value backend selected by cfg.StorageDriver. The
// returned func releases it.
func OpenStorage(ctx context.Context, cfg config.Config, logger zerolog.Logger) (storage.KeyValue, func(), error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		return storage.NewMemory(), func() {}, nil
	case config.DriverFile:
		f, err := storage.NewFile(cfg.StoragePath, storage.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		return f, func() {}, nil
	case config.DriverSQLite:
		db, err := storage.NewSQLite(cfg.StoragePath)
		if err != nil {
			return nil, nil, err
		}
		return db, func() { _ = db.Close() }, nil
	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.DBSource)
		if err != nil {
			return nil, nil, fmt.Errorf("app: cannot connect to db: %w", err)
		}
		kv := repository.NewPostgresKV(pool)
		if err := kv.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return kv, pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("app: unknown storage driver %q", cfg.StorageDriver)
	}
}

// Client bundles everything a command needs to talk to the services and
// keep local state.
type Client struct {
	Session *auth.Session
	Auth    *auth.Client
	Geo     *geo.Client
	History *history.Store
	Log     zerolog.Logger
	close   func()
}

// Close releases the storage backend.
func (c *Client) Close() {
	if c.close != nil {
		c.close()
	}
}

// NewClient opens storage, restores the session and hydrates the history.
func NewClient(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*Client, error) {
	kv, closeFn, err := OpenStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	session := auth.NewSession(kv, logger)
	session.Restore(ctx)

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	authAPI := apiclient.New(cfg.APIBaseURL, httpClient, cfg.RequestTimeout, nil)
	geoAPI := apiclient.New(cfg.APIBaseURL, httpClient, cfg.RequestTimeout, session.Token)

	store := history.NewStore(ctx, kv,
		history.WithLimit(cfg.HistoryLimit),
		history.WithLogger(logger),
	)

	return &Client{
		Session: session,
		Auth:    auth.NewClient(authAPI),
		Geo:     geo.NewClient(geoAPI),
		History: store,
		Log:     logger,
		close:   closeFn,
	}, nil
}
