package admin

import (
	"context"

	"github.com/yourusername/members-only/internal/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/role_store_mock.go -package=mock

// RoleStore は管理画面が必要とするユーザーストアの操作です。
type RoleStore interface {
	ListUsers(ctx context.Context) ([]models.UserSummary, error)
	SetRole(ctx context.Context, target models.RoleTarget, role models.Role) (int64, error)
}
