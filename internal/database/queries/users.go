package queries

import (
	"context"
	"database/sql"
)

const userColumns = `id, email, phone, carrier, email_enabled, sms_enabled, password_hash, created_at`

func scanUser(row rowScanner) (*User, error) {
	var i User
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.Phone,
		&i.Carrier,
		&i.EmailEnabled,
		&i.SmsEnabled,
		&i.PasswordHash,
		&i.CreatedAt,
	)
	return &i, err
}

const createUser = `INSERT INTO users (email, phone, carrier, email_enabled, sms_enabled, password_hash)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id`

type CreateUserParams struct {
	Email        string
	Phone        sql.NullString
	Carrier      sql.NullString
	EmailEnabled bool
	SmsEnabled   bool
	PasswordHash sql.NullString
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createUser,
		arg.Email,
		arg.Phone,
		arg.Carrier,
		arg.EmailEnabled,
		arg.SmsEnabled,
		arg.PasswordHash,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const getUser = `SELECT ` + userColumns + ` FROM users WHERE id = ?`

func (q *Queries) GetUser(ctx context.Context, id int64) (*User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUser, id))
}

const getUserByEmail = `SELECT ` + userColumns + ` FROM users WHERE email = ? COLLATE NOCASE`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByEmail, email))
}

const listUsers = `SELECT ` + userColumns + ` FROM users ORDER BY id`

func (q *Queries) ListUsers(ctx context.Context) ([]*User, error) {
	rows, err := q.db.QueryContext(ctx, listUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []*User{}
	for rows.Next() {
		i, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateUserProfile = `UPDATE users SET
    phone = ?,
    carrier = ?,
    email_enabled = ?,
    sms_enabled = ?
WHERE id = ?`

type UpdateUserProfileParams struct {
	Phone        sql.NullString
	Carrier      sql.NullString
	EmailEnabled bool
	SmsEnabled   bool
	ID           int64
}

func (q *Queries) UpdateUserProfile(ctx context.Context, arg UpdateUserProfileParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateUserProfile,
		arg.Phone,
		arg.Carrier,
		arg.EmailEnabled,
		arg.SmsEnabled,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
