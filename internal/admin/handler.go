// Package admin はユーザーのロールを変更する管理画面を提供します。
package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/members-only/internal/logger"
	"github.com/yourusername/members-only/internal/validation"
	"github.com/yourusername/members-only/internal/web"
)

const retryPath = "/admin"

// Handler は管理画面のハンドラーです。
type Handler struct {
	store     RoleStore
	validator *validation.Validator
}

// NewHandler は Handler を作成します。
func NewHandler(store RoleStore, v *validation.Validator) *Handler {
	return &Handler{store: store, validator: v}
}

// Page は /admin のハンドラーです。
func (h *Handler) Page(c *gin.Context) {
	h.render(c)
}

// HandleAction は /handleAdminClick のハンドラーです。
// 対象ユーザーのロールを更新し、最新の一覧で管理画面を描画し直します。
func (h *Handler) HandleAction(c *gin.Context) {
	var req validation.AdminActionRequest
	if err := c.ShouldBind(&req); err != nil {
		web.RenderError(c, http.StatusOK, "invalid form submission", retryPath)
		return
	}
	if !web.ValidateForm(c, h.validator, req, retryPath) {
		return
	}

	target, role := req.Target(), req.Role()

	log := logger.FromContext(c.Request.Context())
	n, err := h.store.SetRole(c.Request.Context(), target, role)
	if err != nil {
		web.InternalError(c, err, "failed to update role")
		return
	}
	if n == 0 {
		log.Warn().Str("name", target.Name).Msg("role update matched no users")
	} else {
		log.Info().Str("name", target.Name).Str("role", string(role)).Int64("rows", n).Msg("role updated")
	}

	h.render(c)
}

func (h *Handler) render(c *gin.Context) {
	users, err := h.store.ListUsers(c.Request.Context())
	if err != nil {
		web.InternalError(c, err, "failed to list users")
		return
	}
	c.HTML(http.StatusOK, web.PageAdmin, gin.H{
		"title": "Admin",
		"users": users,
	})
}
