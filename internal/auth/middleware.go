package auth

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/members-only/internal/logger"
	"github.com/yourusername/members-only/internal/web"
)

// RequireSession はセッションを検証するミドルウェアを返します。
// 未認証の場合は redirectTo へリダイレクトします。期限切れのセッションは破棄します。
func (m *Manager) RequireSession(redirectTo string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		ident, ok := m.sessions.Identity(session)
		if !ok {
			if session.Get(sessionKeyAuthenticated) != nil && m.sessions.Expired(session) {
				if err := m.sessions.Destroy(session); err != nil {
					logger.FromContext(c.Request.Context()).Warn().Err(err).Msg("failed to destroy expired session")
				}
			}
			c.Redirect(http.StatusFound, redirectTo)
			c.Abort()
			return
		}

		c.Set(ContextIdentityKey, ident)
		c.Next()
	}
}

// RequireAdmin はセッションのロールが admin でなければ 403 を返すミドルウェアです。
func (m *Manager) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := m.sessions.Identity(sessions.Default(c))
		if !ok || !ident.IsAdmin() {
			web.Abort(c, http.StatusForbidden, web.MessageNotAuthorized)
			return
		}
		c.Next()
	}
}
