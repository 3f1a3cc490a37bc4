// Package server はルーティングとミドルウェアの配線を行います。
package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/members-only/internal/admin"
	"github.com/yourusername/members-only/internal/auth"
	"github.com/yourusername/members-only/internal/logger"
	"github.com/yourusername/members-only/internal/web"
)

// Deps はルーターが必要とする依存関係です。すべて起動時に main で組み立てます。
type Deps struct {
	Logger       *logger.Logger
	Auth         *auth.Manager
	Admin        *admin.Handler
	SessionStore sessions.Store
	CookieName   string
	AllowOrigins []string
}

// NewRouter はミドルウェアとルートを登録した gin.Engine を返します。
func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), logger.Middleware(d.Logger))

	if len(d.AllowOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = d.AllowOrigins
		corsConfig.AllowCredentials = true
		router.Use(cors.New(corsConfig))
	}

	router.Use(sessions.Sessions(d.CookieName, d.SessionStore))
	router.SetHTMLTemplate(web.Templates())

	router.GET("/health", handleHealth)

	router.GET("/", d.Auth.Home)
	router.GET("/signup", d.Auth.SignupPage)
	router.GET("/login", d.Auth.LoginPage)
	router.POST("/submitUser", d.Auth.SubmitUser)
	router.POST("/loggingin", d.Auth.LoggingIn)
	router.GET("/members", d.Auth.RequireSession("/"), d.Auth.Members)
	router.GET("/logout", d.Auth.Logout)

	adminOnly := router.Group("")
	adminOnly.Use(d.Auth.RequireSession("/login"), d.Auth.RequireAdmin())
	{
		adminOnly.GET("/admin", d.Admin.Page)
		adminOnly.POST("/handleAdminClick", d.Admin.HandleAction)
	}

	router.NoRoute(web.NotFound)
	return router
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "members-only",
	})
}
