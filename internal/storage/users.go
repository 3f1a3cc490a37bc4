package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"

	"github.com/yourusername/members-only/internal/logger"
	"github.com/yourusername/members-only/internal/models"
)

// UserRepository は users テーブルに対する操作をまとめた構造体です。
type UserRepository struct {
	db *DB
}

// NewUserRepository は UserRepository を作成します。
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser は新しいユーザーを登録し、保存された内容を返します。
// ID が未設定なら採番し、ロールが未設定なら user として保存します。
func (r *UserRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}

	// pgx はエラーを Scan 時に返すことがあるため、どちらの経路でも同じ判定をする
	row := r.db.QueryRowContext(ctx, createUser, user.ID, user.Name, user.Email, user.PasswordHash, string(user.Role))
	created, err := scanUser(row)
	if err != nil {
		if postgresError(err) == pgerrcode.UniqueViolation {
			return models.User{}, ErrEmailAlreadyExists
		}
		log.Err(err).Str("func", "*UserRepository.CreateUser").Msg("insert failed")
		return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
	}
	return created, nil
}

// FindByEmail はメールアドレスが一致するユーザーをすべて返します。
// 一致しない場合は空のスライスを返します。
func (r *UserRepository) FindByEmail(ctx context.Context, email string) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, findUsersByEmail, email)
	if err != nil {
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0, 1)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}
	return users, nil
}

// ListUsers は全ユーザーの ID・名前・ロールを登録順に返します。
func (r *UserRepository) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	query, args, err := psql.
		Select("user_id", "name", "user_type").
		From("users").
		OrderBy("created_at", "name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}
	defer rows.Close()

	var users []models.UserSummary
	for rows.Next() {
		var (
			u    models.UserSummary
			role sql.NullString
		)
		if err := rows.Scan(&u.ID, &u.Name, &role); err != nil {
			return nil, err
		}
		u.Role = models.ParseRole(role.String)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}
	return users, nil
}

// SetRole は対象ユーザーのロールを更新し、更新件数を返します。
// target.ID が指定されていれば ID と名前の両方で対象を絞り込みます。
func (r *UserRepository) SetRole(ctx context.Context, target models.RoleTarget, role models.Role) (int64, error) {
	where := sq.Eq{"name": target.Name}
	if target.ID != uuid.Nil {
		where["user_id"] = target.ID.String()
	}

	query, args, err := psql.
		Update("users").
		Set("user_type", string(role)).
		Where(where).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("unexpected DB error: %w", err)
	}
	return res.RowsAffected()
}

// HasAdmin は管理者が1人以上存在するかを返します。
func (r *UserRepository) HasAdmin(ctx context.Context) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, hasAdmin).Scan(&exists); err != nil {
		return false, fmt.Errorf("unexpected DB error: %w", err)
	}
	return exists, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (models.User, error) {
	var (
		u    models.User
		role sql.NullString
	)
	if err := s.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.CreatedAt); err != nil {
		return models.User{}, err
	}
	u.Role = models.ParseRole(role.String)
	return u, nil
}
