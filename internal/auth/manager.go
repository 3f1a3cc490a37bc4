package auth

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/members-only/internal/models"
	"github.com/yourusername/members-only/internal/password"
	"github.com/yourusername/members-only/internal/validation"
	"github.com/yourusername/members-only/internal/web"
)

// ContextIdentityKey は、ハンドラー間でログイン済みユーザー情報を共有するためのキーです。
const ContextIdentityKey = "auth.identity"

const (
	msgInvalidCredentials = "Invalid email and password combination."
	msgEmailTaken         = "email is already registered"
)

var memberImages = []string{"cat", "dog", "bunny"}

// Manager は認証処理と状態をまとめた構造体です。
type Manager struct {
	users     UserStore
	hasher    *password.Hasher
	validator *validation.Validator
	sessions  *SessionManager
	pickImage func() string
}

// NewManager は認証マネージャーを作成します。
func NewManager(users UserStore, hasher *password.Hasher, v *validation.Validator, sm *SessionManager) *Manager {
	return &Manager{
		users:     users,
		hasher:    hasher,
		validator: v,
		sessions:  sm,
		pickImage: randomImage,
	}
}

// Sessions はセッションマネージャーを返します。
func (m *Manager) Sessions() *SessionManager {
	return m.sessions
}

// SeedAdmin は管理者が1人もいない場合に限り、指定の管理者を作成します。
// 作成した場合は true を返します。
func (m *Manager) SeedAdmin(ctx context.Context, name, email, plain string) (bool, error) {
	exists, err := m.users.HasAdmin(ctx)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	hashed, err := m.hasher.Hash(plain)
	if err != nil {
		return false, err
	}
	if _, err := m.users.CreateUser(ctx, models.User{
		Name:         name,
		Email:        validation.NormalizeEmail(email),
		PasswordHash: hashed,
		Role:         models.RoleAdmin,
	}); err != nil {
		return false, fmt.Errorf("failed to create admin %s: %w", email, err)
	}
	return true, nil
}

// IdentityFrom は RequireSession が格納したユーザー情報を取り出します。
func IdentityFrom(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(ContextIdentityKey)
	if !ok {
		return Identity{}, false
	}
	ident, ok := v.(Identity)
	return ident, ok
}

// validate は payload を検証し、失敗時はエラー画面を描画して false を返します。
func (m *Manager) validate(c *gin.Context, payload any, retry string) bool {
	return web.ValidateForm(c, m.validator, payload, retry)
}

func randomImage() string {
	return memberImages[rand.IntN(len(memberImages))] + ".jpeg"
}
