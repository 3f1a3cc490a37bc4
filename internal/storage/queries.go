package storage

import sq "github.com/Masterminds/squirrel"

const (
	createUser = `INSERT INTO users (user_id, name, email, password, user_type)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING user_id, name, email, password, user_type, created_at;`

	findUsersByEmail = `SELECT user_id, name, email, password, user_type, created_at
    FROM users
    WHERE email = $1;`

	hasAdmin = `SELECT EXISTS (SELECT 1 FROM users WHERE user_type = 'admin');`
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
