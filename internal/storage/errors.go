package storage

import "errors"

var (
	// ErrEmailAlreadyExists は同じメールアドレスのユーザーが既に存在する場合に返ります。
	ErrEmailAlreadyExists = errors.New("email already exists")
)
