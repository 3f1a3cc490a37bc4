// Package auth は認証・認可機能を提供します。
package auth

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/members-only/internal/logger"
	"github.com/yourusername/members-only/internal/models"
	"github.com/yourusername/members-only/internal/storage"
	"github.com/yourusername/members-only/internal/validation"
	"github.com/yourusername/members-only/internal/web"
)

// Home は / のハンドラーです。ログイン状態に応じてトップページを出し分けます。
func (m *Manager) Home(c *gin.Context) {
	ident, ok := m.sessions.Identity(sessions.Default(c))
	if !ok {
		c.HTML(http.StatusOK, web.PageMain, gin.H{})
		return
	}
	c.HTML(http.StatusOK, web.PageHome, gin.H{
		"name":    ident.Name,
		"isAdmin": ident.IsAdmin(),
	})
}

// SignupPage は /signup のハンドラーです。
func (m *Manager) SignupPage(c *gin.Context) {
	c.HTML(http.StatusOK, web.PageSignup, gin.H{"title": "Sign up"})
}

// LoginPage は /login のハンドラーです。
func (m *Manager) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, web.PageLogin, gin.H{"title": "Log in"})
}

// SubmitUser は /submitUser のハンドラーです。ユーザーを登録し、そのままログインさせます。
func (m *Manager) SubmitUser(c *gin.Context) {
	var req validation.SignupRequest
	if err := c.ShouldBind(&req); err != nil {
		web.RenderError(c, http.StatusOK, "invalid form submission", "/signup")
		return
	}
	req.Email = validation.NormalizeEmail(req.Email)
	if !m.validate(c, req, "/signup") {
		return
	}

	hashed, err := m.hasher.Hash(req.Password)
	if err != nil {
		web.InternalError(c, err, "failed to hash password")
		return
	}

	user, err := m.users.CreateUser(c.Request.Context(), models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hashed,
		Role:         models.RoleUser,
	})
	if err != nil {
		if errors.Is(err, storage.ErrEmailAlreadyExists) {
			web.RenderError(c, http.StatusOK, msgEmailTaken, "/signup")
			return
		}
		web.InternalError(c, err, "failed to create user")
		return
	}

	if err := m.sessions.Start(sessions.Default(c), user.Name, user.Role); err != nil {
		web.InternalError(c, err, "failed to save session")
		return
	}

	logger.FromContext(c.Request.Context()).Info().Str("user_id", user.ID.String()).Msg("user signed up")
	c.Redirect(http.StatusFound, "/members")
}

// LoggingIn は /loggingin のハンドラーです。
// メールアドレス未登録とパスワード不一致は同じメッセージで応答します。
func (m *Manager) LoggingIn(c *gin.Context) {
	var req validation.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		web.RenderError(c, http.StatusOK, "invalid form submission", "/login")
		return
	}
	req.Email = validation.NormalizeEmail(req.Email)
	if !m.validate(c, req, "/login") {
		return
	}

	users, err := m.users.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		web.InternalError(c, err, "failed to look up user")
		return
	}
	if len(users) != 1 {
		web.RenderError(c, http.StatusOK, msgInvalidCredentials, "/login")
		return
	}
	user := users[0]

	ok, err := m.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		web.InternalError(c, err, "failed to verify password")
		return
	}
	if !ok {
		web.RenderError(c, http.StatusOK, msgInvalidCredentials, "/login")
		return
	}

	if err := m.sessions.Start(sessions.Default(c), user.Name, user.Role); err != nil {
		web.InternalError(c, err, "failed to save session")
		return
	}
	c.Redirect(http.StatusFound, "/members")
}

// Members は /members のハンドラーです。RequireSession の後段で使います。
func (m *Manager) Members(c *gin.Context) {
	ident, ok := IdentityFrom(c)
	if !ok {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.HTML(http.StatusOK, web.PageMembers, gin.H{
		"title":    "Members",
		"name":     ident.Name,
		"filePath": m.pickImage(),
	})
}

// Logout は /logout のハンドラーです。
func (m *Manager) Logout(c *gin.Context) {
	if err := m.sessions.Destroy(sessions.Default(c)); err != nil {
		web.InternalError(c, err, "failed to destroy session")
		return
	}
	c.Redirect(http.StatusFound, "/")
}
