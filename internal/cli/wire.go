package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/caerus-app/caerus-backend/internal/auth"
	"github.com/caerus-app/caerus-backend/internal/config"
	httpapi "github.com/caerus-app/caerus-backend/internal/http"
	"github.com/caerus-app/caerus-backend/internal/iap"
	"github.com/caerus-app/caerus-backend/internal/notify"
	"github.com/caerus-app/caerus-backend/internal/push"
	"github.com/caerus-app/caerus-backend/internal/repo"
	"github.com/caerus-app/caerus-backend/internal/search"
	"github.com/caerus-app/caerus-backend/internal/storage"
	"github.com/caerus-app/caerus-backend/internal/support"
	"github.com/caerus-app/caerus-backend/internal/sysutil"
)

// app is what every command needs: configuration, a logger and the database.
type app struct {
	cfg config.Config
	log zerolog.Logger
	db  *gorm.DB
}

func wireApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := sysutil.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogPretty)

	db, err := repo.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &app{cfg: cfg, log: log, db: db}, nil
}

func (a *app) Close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// wireDeps builds the outbound clients. Integrations without configuration
// are left nil and degrade as documented on httpapi.Deps. The returned func
// drains the notification queue and releases connections.
func (a *app) wireDeps(ctx context.Context) (httpapi.Deps, func(), error) {
	cfg := a.cfg
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	sessions, err := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiration)
	if err != nil {
		return httpapi.Deps{}, cleanup, fmt.Errorf("session issuer: %w", err)
	}

	deps := httpapi.Deps{
		DB:       a.db,
		Sessions: sessions,
		Storage:  storage.New(cfg.Storage),
		Log:      a.log,
	}

	identity, err := a.identityVerifier(ctx)
	if err != nil {
		return httpapi.Deps{}, cleanup, err
	}
	if identity != nil {
		deps.Identity = identity
	} else {
		a.log.Warn().Msg("no identity provider configured; signup and login are disabled")
	}

	if !cfg.Storage.Enabled() {
		a.log.Warn().Msg("storage not configured; video uploads and playback are disabled")
	}

	if cfg.Apple.SharedSecret != "" {
		deps.Receipts = iap.NewAppleClient(cfg.Apple, cfg.OutboundTimeout)
	} else {
		a.log.Warn().Msg("APPLE_SHARED_SECRET not set; receipt verification is disabled")
	}

	dedup, closeDedup, err := a.deduper(ctx)
	if err != nil {
		return httpapi.Deps{}, cleanup, err
	}
	closers = append(closers, closeDedup)
	dispatcher := notify.NewDispatcher(push.NewExpoClient(cfg.Notify.ExpoURL, cfg.OutboundTimeout), notify.Options{
		Workers:   cfg.Notify.Workers,
		QueueSize: cfg.Notify.QueueSize,
		Timeout:   cfg.OutboundTimeout,
		Dedup:     dedup,
		Logger:    a.log,
	})
	closers = append(closers, dispatcher.Close)
	deps.Notifier = dispatcher

	assistant, err := a.assistant(ctx)
	if err != nil {
		cleanup()
		return httpapi.Deps{}, func() {}, err
	}
	deps.Responder = assistant

	return deps, cleanup, nil
}

// identityVerifier returns Firebase verification when a project is set.
// Development also accepts "dev_<name>" tokens.
func (a *app) identityVerifier(ctx context.Context) (auth.IdentityVerifier, error) {
	cfg := a.cfg
	var next auth.IdentityVerifier
	if cfg.Auth.FirebaseProjectID != "" {
		fv, err := auth.NewFirebaseVerifier(ctx, cfg.Auth.FirebaseProjectID, cfg.Auth.FirebaseJWKSURL)
		if err != nil {
			return nil, fmt.Errorf("firebase verifier: %w", err)
		}
		next = fv
	}
	if cfg.IsDevelopment() {
		return auth.DevVerifier{Next: next}, nil
	}
	return next, nil
}

func (a *app) deduper(ctx context.Context) (notify.Deduper, func(), error) {
	cfg := a.cfg.Notify
	if cfg.RedisURL == "" {
		return notify.NewMemoryDeduper(cfg.DedupTTL), func() {}, nil
	}
	client, err := notify.ConnectRedis(ctx, cfg.RedisURL, a.cfg.OutboundTimeout)
	if err != nil {
		return nil, func() {}, fmt.Errorf("redis: %w", err)
	}
	return notify.NewRedisDeduper(client, cfg.DedupTTL), func() { _ = client.Close() }, nil
}

func (a *app) assistant(ctx context.Context) (*support.Assistant, error) {
	cfg := a.cfg.Support
	entries := support.DefaultFAQ()
	if cfg.FAQPath != "" {
		loaded, err := search.LoadFAQ(cfg.FAQPath)
		if err != nil {
			return nil, fmt.Errorf("load FAQ %s: %w", cfg.FAQPath, err)
		}
		entries = loaded
	}

	as := &support.Assistant{
		Index:     search.NewIndex(entries),
		Threshold: cfg.Threshold,
		Timeout:   a.cfg.OutboundTimeout,
		Log:       a.log,
	}
	if cfg.GeminiAPIKey != "" {
		model, err := support.NewGeminiResponder(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		as.Model = model
	}
	return as, nil
}
