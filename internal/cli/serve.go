package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	httpapi "github.com/caerus-app/caerus-backend/internal/http"
	"github.com/caerus-app/caerus-backend/internal/observability"
	"github.com/caerus-app/caerus-backend/internal/repo"
	"github.com/caerus-app/caerus-backend/internal/sysutil"
)

const (
	shutdownGrace = 15 * time.Second
	purgeInterval = 10 * time.Minute
)

func newServeCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := wireApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if migrate || sysutil.EnvTruthy("AUTO_MIGRATE") {
				if err := repo.AutoMigrate(a.db); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
			}

			shutdownTracing, err := observability.SetupTracing(ctx, a.cfg.OTEL, observability.ServiceInfo{
				Name:        sysutil.FirstNonEmpty(a.cfg.OTEL.ServiceName, "caerus-backend"),
				Version:     Version,
				Environment: a.cfg.Environment,
			})
			if err != nil {
				return fmt.Errorf("tracing: %w", err)
			}
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
				defer cancel()
				if err := shutdownTracing(sctx); err != nil {
					a.log.Warn().Err(err).Msg("tracing shutdown")
				}
			}()

			deps, cleanup, err := a.wireDeps(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			gin.SetMode(a.cfg.GinMode)
			r := gin.New()
			httpapi.RegisterRoutes(r, deps, a.cfg)

			srv := &http.Server{
				Addr:              net.JoinHostPort("", a.cfg.Port),
				Handler:           r,
				ReadTimeout:       a.cfg.ReadTimeout,
				ReadHeaderTimeout: a.cfg.ReadHeaderTimeout,
				WriteTimeout:      a.cfg.WriteTimeout,
				IdleTimeout:       a.cfg.IdleTimeout,
				MaxHeaderBytes:    a.cfg.MaxHeaderBytes,
			}

			go a.purgeLoop(ctx, purgeInterval)

			errCh := make(chan error, 1)
			go func() {
				a.log.Info().
					Str("addr", srv.Addr).
					Str("env", a.cfg.Environment).
					Str("version", Version).
					Msg("listening")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("listen: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			a.log.Info().Msg("shutting down")
			sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply schema migrations before serving (also AUTO_MIGRATE=true)")
	return cmd
}

// purgeLoop removes expired idempotency records until ctx is done.
func (a *app) purgeLoop(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := repo.PurgeExpiredIdempotency(ctx, a.db, now)
			if err != nil {
				a.log.Warn().Err(err).Msg("purge idempotency keys")
				continue
			}
			if n > 0 {
				a.log.Debug().Int64("removed", n).Msg("purged idempotency keys")
			}
		}
	}
}
