// Package web は HTML テンプレートと、すべてのエラー画面に共通の描画処理を提供します。
package web

import (
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/members-only/internal/logger"
	"github.com/yourusername/members-only/internal/validation"
)

//go:embed templates/*.html
var templateFS embed.FS

// テンプレート名
const (
	PageMain    = "main.html"
	PageHome    = "home.html"
	PageSignup  = "signup.html"
	PageLogin   = "login.html"
	PageMembers = "members.html"
	PageAdmin   = "admin.html"
	PageError   = "error.html"
)

// ユーザーに表示する固定メッセージ
const (
	MessageNotAuthorized = "Not Authorized"
	MessageNotFound      = "Page cannot be found - 404"
	MessageInternal      = "Internal Server Error"
)

// Templates は埋め込みテンプレートをすべて読み込んだテンプレートセットを返します。
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))
}

// RenderError はエラー画面を描画します。retry が空でなければ再試行リンクを表示します。
func RenderError(c *gin.Context, status int, message, retry string) {
	c.HTML(status, PageError, gin.H{
		"title": "Error",
		"error": message,
		"retry": retry,
	})
}

// Abort はエラー画面を描画し、後続のハンドラーを中断します。
func Abort(c *gin.Context, status int, message string) {
	RenderError(c, status, message, "")
	c.Abort()
}

// InternalError は原因をログに残し、詳細を伏せた 500 画面を返します。
func InternalError(c *gin.Context, err error, msg string) {
	logger.FromContext(c.Request.Context()).Err(err).
		Str("path", c.FullPath()).
		Msg(msg)
	_ = c.Error(err)
	Abort(c, http.StatusInternalServerError, MessageInternal)
}

// NotFound は未定義ルート用のハンドラーです。
func NotFound(c *gin.Context) {
	RenderError(c, http.StatusNotFound, MessageNotFound, "")
}

// ValidateForm は payload を検証します。入力エラーは 200 のエラー画面、
// それ以外の失敗は 500 として描画し、いずれの場合も false を返します。
func ValidateForm(c *gin.Context, v *validation.Validator, payload any, retry string) bool {
	err := v.Struct(payload)
	if err == nil {
		return true
	}
	var verr *validation.Error
	if errors.As(err, &verr) {
		RenderError(c, http.StatusOK, verr.Message, retry)
		return false
	}
	InternalError(c, err, "validation failed unexpectedly")
	return false
}
