package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"
	redis "github.com/redis/go-redis/v9"

	"github.com/yourusername/members-only/internal/auth"
	"github.com/yourusername/members-only/internal/config"
	"github.com/yourusername/members-only/internal/logger"
	"github.com/yourusername/members-only/internal/session"
	"github.com/yourusername/members-only/internal/storage"
	"github.com/yourusername/members-only/migrations"
)

const startupTimeout = 10 * time.Second

// setupDatabase は PostgreSQL に接続し、マイグレーションを適用します。
func setupDatabase(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage.DB, error) {
	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	db, err := storage.NewConnectPostgres(ctx, cfg.DB.DSN(), log)
	if err != nil {
		return nil, err
	}
	if err := migrations.Migrate(db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info().Msg("migrations applied")
	return db, nil
}

// setupSessionStore は Redis に接続し、セッションストアとセッションマネージャーを作成します。
func setupSessionStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (*redis.Client, *session.RedisStore, *auth.SessionManager, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	redisClient := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	cookieSecret := secretOrRandom(cfg.Session.Secret, "SESSION_SECRET", log)
	storeSecret := secretOrRandom(cfg.Session.StoreSecret, "SESSION_STORE_SECRET", log)
	store := session.NewRedisStore(redisClient, cookieSecret, storeSecret)

	sm := auth.NewSessionManager(cfg.Session.MaxAge, sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	})
	store.Options(sm.CookieOptions())

	return redisClient, store, sm, nil
}

// secretOrRandom は未設定の秘密鍵をプロセス内限りのランダムな鍵で置き換えます。
// release モードでは Validate が未設定を弾くため、ここに来るのは開発時のみです。
func secretOrRandom(secret, name string, log *logger.Logger) []byte {
	if secret != "" {
		return []byte(secret)
	}
	log.Warn().Str("env", name).Msg("secret is not set; using a random key (sessions will not survive restarts)")
	return securecookie.GenerateRandomKey(32)
}
