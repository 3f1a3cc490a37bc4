// Package models はアプリケーション全体で共有するドメイン型を定義します。
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role はユーザーの権限区分（user_type）です。
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole は保存値をロールに変換します。未設定や未知の値は RoleUser として扱います。
func ParseRole(s string) Role {
	if Role(s) == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// User はユーザーレコードです。PasswordHash には常にハッシュ値のみが入ります。
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// UserSummary は管理画面に渡すユーザー情報です。パスワードは含みません。
type UserSummary struct {
	ID   uuid.UUID
	Name string
	Role Role
}

// RoleTarget はロール変更の対象です。ID が uuid.Nil の場合は Name のみで一致させます。
type RoleTarget struct {
	ID   uuid.UUID
	Name string
}
