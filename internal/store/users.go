package store

import (
	"context"

	"minisocial/internal/social"
)

const userColumns = `id, username, password_hash, profile_picture, bio, theme, created_at`

func scanUser(row scanner) (*social.User, error) {
	var (
		u  social.User
		ts int64
	)
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.ProfilePicture, &u.Bio, &u.Theme, &ts); err != nil {
		return nil, err
	}
	u.CreatedAt = fromStamp(ts)
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *social.User) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, profile_picture, bio, theme, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		u.Username, u.PasswordHash, u.ProfilePicture, u.Bio, u.Theme, stamp(u.CreatedAt))
	if isUniqueViolation(err) {
		return social.ErrDuplicateUsername
	}
	if err != nil {
		return wrap("create user", err)
	}
	u.ID, err = res.LastInsertId()
	return wrap("create user", err)
}

func (s *Store) UserByID(ctx context.Context, id int64) (*social.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return nil, wrap("user by id", err)
	}
	return u, nil
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*social.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
	if err != nil {
		return nil, wrap("user by username", err)
	}
	return u, nil
}

// UpdateUser writes the mutable profile fields.
func (s *Store) UpdateUser(ctx context.Context, u *social.User) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET profile_picture = ?, bio = ?, theme = ? WHERE id = ?`,
		u.ProfilePicture, u.Bio, u.Theme, u.ID)
	if err != nil {
		return wrap("update user", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap("update user", err)
	}
	if n == 0 {
		return social.ErrNotFound
	}
	return nil
}
