package auth

import (
	"context"

	"github.com/yourusername/members-only/internal/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/user_store_mock.go -package=mock

// UserStore は認証処理が必要とするユーザーストアの操作です。
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByEmail(ctx context.Context, email string) ([]models.User, error)
	HasAdmin(ctx context.Context) (bool, error)
}
