// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port     string `env:"PORT" envDefault:"8000"`       // HTTPサーバーのポート番号
	GinMode  string `env:"GIN_MODE" envDefault:"debug"`  // Ginの実行モード (debug, release, test)
	LogLevel string `env:"LOG_LEVEL" envDefault:"debug"` // zerolog のログレベル

	// CORS許可オリジン（カンマ区切り）
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:8000"`

	// ユーザー情報を保存するデータベース
	DB DB `envPrefix:"DB_"`

	// セッションストア用Redis接続URL
	RedisURL string `env:"REDIS_URL" envDefault:"redis://127.0.0.1:6379/0"`

	Session Session `envPrefix:"SESSION_"`

	// bcrypt のコスト
	BcryptCost int `env:"BCRYPT_COST" envDefault:"12"`

	// 起動時に作成する管理者（任意）
	Admin Admin `envPrefix:"ADMIN_"`
}

// DB は PostgreSQL の接続設定です。
type DB struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"5432"`
	User     string `env:"USER"`
	Password string `env:"PASSWORD"`
	Name     string `env:"NAME"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`
}

// Session はセッション関連の設定です。
type Session struct {
	Secret      string        `env:"SECRET"`       // クッキー署名用の秘密鍵
	StoreSecret string        `env:"STORE_SECRET"` // ストア内ペイロード暗号化用の秘密鍵
	MaxAge      time.Duration `env:"MAX_AGE" envDefault:"1h"`
	CookieName  string        `env:"COOKIE_NAME" envDefault:"member_session"`
}

// Admin は初期管理者の設定です。Email と Password が揃っている場合のみ使われます。
type Admin struct {
	Name     string `env:"NAME" envDefault:"admin"`
	Email    string `env:"EMAIL"`
	Password string `env:"PASSWORD"`
}

// Enabled は初期管理者の作成が設定されているかを返します。
func (a Admin) Enabled() bool {
	return a.Email != "" && a.Password != ""
}

// DSN は pgx 向けの接続文字列を組み立てます。
func (d DB) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	if d.User != "" {
		u.User = url.UserPassword(d.User, d.Password)
	}
	return u.String()
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	// .env.local ファイルを読み込む（存在しない場合はスキップ）
	loadEnvFile()

	return parse()
}

func parse() (*Config, error) {
	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	// 必須設定のバリデーション
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.Session.MaxAge <= 0 {
		return errors.New("SESSION_MAX_AGE must be positive")
	}

	// ローカル開発では秘密鍵は任意（起動時に一時的な鍵を生成する）
	if c.GinMode == "release" {
		if c.Session.Secret == "" {
			return errors.New("SESSION_SECRET is required in release mode")
		}
		if c.Session.StoreSecret == "" {
			return errors.New("SESSION_STORE_SECRET is required in release mode")
		}
		if c.DB.User == "" || c.DB.Name == "" {
			return errors.New("DB_USER and DB_NAME are required in release mode")
		}
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required in release mode")
		}
	}

	return nil
}
