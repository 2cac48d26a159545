package main

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"storefront/backend/internal/cart"
	"storefront/backend/internal/config"
	"storefront/backend/internal/database"
	"storefront/backend/internal/handler"
	"storefront/backend/internal/hub"
	"storefront/backend/internal/listing"
	"storefront/backend/internal/media"
	"storefront/backend/internal/repository"

	"gorm.io/gorm"
)

type loader func() (*config.Config, error)

// app holds the long-lived dependencies shared by the subcommands.
type app struct {
	cfg     *config.Config
	db      *gorm.DB
	store   media.Store
	ledger  media.Ledger
	manager *media.Manager
	carts   *cart.Sessions
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}

	store, err := media.Open(ctx, storageConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("open media storage: %w", err)
	}
	ledger, err := media.OpenLedger(ctx, cfg.LedgerDriver, db, cfg.RedisAddr)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("open upload ledger: %w", err)
	}

	manager := media.NewManager(store, ledger, media.ManagerOptions{
		Bucket:        cfg.StorageBucket,
		PublicBaseURL: cfg.MediaPublicBaseURL(),
		MaxCount:      cfg.MediaMaxCount,
	})
	carts := cart.NewSessions(cart.WithMaxSessions(cfg.CartMaxSessions), cart.WithIdleTTL(cfg.CartIdleTTL))
	return &app{cfg: cfg, db: db, store: store, ledger: ledger, manager: manager, carts: carts}, nil
}

func (a *app) newHandler() *handler.Handler {
	h := hub.NewHub()
	svc := listing.NewService(repository.NewListingRepository(a.db), a.manager, h)
	return handler.New(svc, a.manager, a.carts, h)
}

func (a *app) routerOptions() handler.RouterOptions {
	opts := handler.RouterOptions{
		JWTSecret:      a.cfg.JWTSecret,
		AllowedOrigins: a.cfg.AllowedOrigins(),
		RateLimitRPS:   a.cfg.RateLimitRPS,
		RateLimitBurst: a.cfg.RateLimitBurst,
	}
	// The file driver has no public endpoint of its own; this server is it.
	if strings.EqualFold(a.cfg.StorageDriver, "file") && a.cfg.StoragePublicBaseURL == "" {
		if u, err := url.Parse(a.manager.PublicBaseURL()); err == nil {
			opts.MediaDir = a.cfg.StorageBaseDir
			opts.MediaPath = u.Path
		}
	}
	return opts
}

func (a *app) sweeper() *media.Sweeper {
	return media.NewSweeper(a.store, a.ledger, a.cfg.MediaOrphanTTL)
}

func (a *app) Close() {
	_ = a.store.Close()
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func storageConfig(cfg *config.Config) media.Config {
	return media.Config{
		Driver:         cfg.StorageDriver,
		Bucket:         cfg.StorageBucket,
		Region:         cfg.StorageRegion,
		Endpoint:       cfg.StorageEndpoint,
		AccessKey:      cfg.StorageAccessKey,
		SecretKey:      cfg.StorageSecretKey,
		ForcePathStyle: cfg.StorageForcePathStyle,
		BaseDir:        cfg.StorageBaseDir,
	}
}
