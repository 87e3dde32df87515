// main wires the application: configuration, stores, the auth service, the
// router, and the server lifecycle. Business logic lives in the internal
// packages; this file only connects them.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"daystack/internal/audit"
	"daystack/internal/auth/oauth"
	"daystack/internal/auth/service"
	"daystack/internal/auth/session"
	"daystack/internal/auth/store"
	"daystack/internal/auth/store/revocation"
	"daystack/internal/auth/store/user"
	"daystack/internal/content"
	"daystack/internal/platform/config"
	"daystack/internal/platform/httpserver"
	"daystack/internal/platform/logger"
	"daystack/internal/platform/postgres"
	platformredis "daystack/internal/platform/redis"
	httptransport "daystack/internal/transport/http"
	authmw "daystack/pkg/platform/middleware/auth"
)

const auditInboxSize = 256

func main() {
	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("configuration invalid", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores fall back to memory when no backing service is configured, so
	// a local checkout runs with nothing but the four token keys.
	var users store.UserStore = user.NewMemory()
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("postgres unavailable", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer db.Close()
		users = user.NewPostgres(db)
	}

	var tags content.TagRepository = content.NewMemoryTagStore()
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("postgres pool unavailable", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer pool.Close()
		tags = content.NewTagStore(pool)
	}

	var revoker revocation.List = revocation.NewMemory()
	if cfg.RedisURL != "" {
		client, err := platformredis.New(ctx, cfg.RedisURL)
		if err != nil {
			log.Error("redis unavailable", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer client.Close()
		revoker = revocation.NewRedis(client)
	}

	auditInbox := make(chan audit.Event, auditInboxSize)
	auditWorker := audit.NewWorker(audit.NewMemoryStore(), auditInbox, log)

	cookieCfg := session.Config{
		Domain:           cfg.CookieDomain,
		Secure:           cfg.CookieSecure,
		AccessMaxAgeMin:  cfg.AccessTokenMaxAgeMin,
		RefreshMaxAgeMin: cfg.RefreshTokenMaxAgeMin,
	}

	svc := service.New(
		users,
		revoker,
		oauth.NewGoogle(oauth.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
		}),
		service.Keys{
			AccessPrivate:  cfg.AccessTokenPrivateKey,
			AccessPublic:   cfg.AccessTokenPublicKey,
			RefreshPrivate: cfg.RefreshTokenPrivateKey,
			RefreshPublic:  cfg.RefreshTokenPublicKey,
		},
		cookieCfg,
		audit.NewAsyncTrail(auditInbox, log),
		log,
	)

	authHandler := httptransport.NewAuthHandler(svc, cfg.FrontendOrigin, log)
	contentHandler := content.NewHandler(
		content.NewMemoryStore[content.Task](),
		tags,
		log,
	)
	gate := authmw.Gate(cfg.AccessTokenPublicKey, revoker, users, log)

	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(authHandler, contentHandler, gate))

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server listening", slog.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		if err := auditWorker.Run(gCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("server stopped")
}
