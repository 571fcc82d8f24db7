package users

import (
	"context"
	"database/sql"
	"errors"
)

type PGRepo struct {
	DB *sql.DB
}

const userColumns = `id, username, email, picture_url, provider, created_at, last_sign_in_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var user User
	var email, pictureURL sql.NullString
	err := row.Scan(
		&user.ID,
		&user.Username,
		&email,
		&pictureURL,
		&user.Provider,
		&user.CreatedAt,
		&user.LastSignInAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	user.Email = email.String
	user.PictureURL = pictureURL.String
	return user, nil
}

func (r *PGRepo) Upsert(ctx context.Context, user User) (User, error) {
	const query = `
INSERT INTO users (id, username, email, picture_url, provider, created_at, updated_at, last_sign_in_at)
VALUES ($1, $2, $3, $4, $5, now(), now(), now())
ON CONFLICT (id) DO UPDATE SET
  username = EXCLUDED.username,
  email = EXCLUDED.email,
  picture_url = EXCLUDED.picture_url,
  updated_at = now(),
  last_sign_in_at = now()
RETURNING ` + userColumns
	return scanUser(r.DB.QueryRowContext(ctx, query,
		user.ID,
		user.Username,
		nullableString(user.Email),
		nullableString(user.PictureURL),
		user.Provider,
	))
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	return scanUser(r.DB.QueryRowContext(ctx, query, userID))
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
