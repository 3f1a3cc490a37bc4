// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/members-only/internal/admin"
	"github.com/yourusername/members-only/internal/auth"
	"github.com/yourusername/members-only/internal/config"
	"github.com/yourusername/members-only/internal/logger"
	"github.com/yourusername/members-only/internal/password"
	"github.com/yourusername/members-only/internal/server"
	"github.com/yourusername/members-only/internal/storage"
	"github.com/yourusername/members-only/internal/validation"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		logger.NewLogger("api", "error").Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.NewLogger("api", cfg.LogLevel)

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := setupDatabase(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up database")
	}
	defer db.Close()

	redisClient, store, sm, err := setupSessionStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up session store")
	}
	defer redisClient.Close()

	users := storage.NewUserRepository(db)
	v := validation.New()
	authManager := auth.NewManager(users, password.NewHasher(cfg.BcryptCost), v, sm)

	// 管理者が1人もいなければ初期管理者を作成
	if cfg.Admin.Enabled() {
		created, err := authManager.SeedAdmin(ctx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to seed admin")
		}
		if created {
			log.Info().Str("name", cfg.Admin.Name).Msg("initial admin created")
		}
	}

	router := server.NewRouter(server.Deps{
		Logger:       log,
		Auth:         authManager,
		Admin:        admin.NewHandler(users, v),
		SessionStore: store,
		CookieName:   cfg.Session.CookieName,
		AllowOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// サーバーの起動
	go func() {
		log.Info().Str("addr", srv.Addr).Str("mode", cfg.GinMode).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Err(err).Msg("graceful shutdown failed")
	}
}
